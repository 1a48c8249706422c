package monitor

import "time"

type Status struct {
	Docstore  bool      `json:"docstore"`
	Redis     bool      `json:"redis"`
	LastCheck time.Time `json:"last_check"`
}
