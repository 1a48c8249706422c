package domain

import (
	"strings"

	"github.com/google/uuid"
)

// CustomerState is the pure persisted record of a customer.
type CustomerState struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	StateMeta
}

// Customer wraps one CustomerState and a transient event queue. It predates
// the AggregateID accessor and still exposes its identity through GetID;
// callers resolve identity via IdentityOf rather than relying on either shape.
type Customer struct {
	EventRecorder
	state CustomerState
}

// NewCustomer registers a customer, validating required contact fields.
func NewCustomer(name, email string) (*Customer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("customer requires a name")
	}
	if !strings.Contains(email, "@") {
		return nil, NewValidationError("customer requires a valid email")
	}
	c := &Customer{
		state: CustomerState{
			ID:    uuid.NewString(),
			Name:  name,
			Email: strings.ToLower(email),
		},
	}
	c.RecordEvent(NewDomainEvent(EventCustomerRegistered, c.state.ID, CustomerRegisteredPayload{
		Name:  c.state.Name,
		Email: c.state.Email,
	}))
	return c, nil
}

// RehydrateCustomer rebuilds the wrapper around a stored state snapshot with
// an empty event queue.
func RehydrateCustomer(state CustomerState) *Customer {
	return &Customer{state: state}
}

// GetID returns the customer identity (legacy accessor shape).
func (c *Customer) GetID() string {
	return c.state.ID
}

// State returns a snapshot copy of the owned state.
func (c *Customer) State() CustomerState {
	return c.state
}

func (c *Customer) StateMeta() StateMeta {
	return c.state.StateMeta
}

func (c *Customer) CommitMeta(meta StateMeta) {
	c.state.StateMeta = meta
}

// Rename changes the customer's display name.
func (c *Customer) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("customer name cannot be empty")
	}
	c.state.Name = name
	c.RecordEvent(NewDomainEvent(EventCustomerRenamed, c.state.ID, CustomerRenamedPayload{
		Name: name,
	}))
	return nil
}
