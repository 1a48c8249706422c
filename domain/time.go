package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Time is a timestamp that always persists as ISO-8601 UTC with an explicit
// offset. Stored values written by older code occasionally lack an offset;
// those are read as UTC rather than left ambiguous. A timestamp-like string
// that cannot be parsed at all is carried through verbatim instead of being
// dropped.
type Time struct {
	t   time.Time
	raw string
}

// Layouts accepted on read. RFC3339 covers everything this code writes;
// the offsetless forms exist for documents persisted by the previous system.
var readLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NewTime builds a Time normalized to UTC.
func NewTime(t time.Time) Time {
	return Time{t: t.UTC()}
}

// Now returns the current instant as a Time.
func Now() Time {
	return NewTime(time.Now())
}

// Std returns the underlying time.Time (zero when only a raw string is held).
func (t Time) Std() time.Time {
	return t.t
}

// Raw returns the unparsable source string, if any.
func (t Time) Raw() string {
	return t.raw
}

func (t Time) IsZero() bool {
	return t.t.IsZero() && t.raw == ""
}

func (t Time) Equal(other Time) bool {
	if t.raw != "" || other.raw != "" {
		return t.raw == other.raw
	}
	return t.t.Equal(other.t)
}

func (t Time) String() string {
	if t.raw != "" {
		return t.raw
	}
	return t.t.UTC().Format(time.RFC3339Nano)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := parseTimestamp(s)
	if !ok {
		// Preserve what was stored; losing the value would be worse
		// than keeping an odd string around.
		*t = Time{raw: s}
		return nil
	}
	*t = Time{t: parsed}
	return nil
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range readLayouts {
		// time.Parse treats a missing zone indicator as UTC, which is
		// exactly the normalization wanted for offsetless documents.
		parsed, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return parsed.UTC(), true
	}
	return time.Time{}, false
}
