// Package codec converts aggregate state records to and from their persisted
// document form. Documents are clean: flat business fields plus the
// persistence bookkeeping, with no type-name wrapper and no nested state
// envelope. The legacy wrapped shape is still accepted on read.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/fastygo/ordercore/domain"
)

// legacyEnvelope is the historical document shape {"type": ..., "state": {...}}.
// It duplicated information already carried by the storage partition and is
// never written anymore.
type legacyEnvelope struct {
	Type  *string         `json:"type"`
	State json.RawMessage `json:"state"`
}

// Serialize renders a state record as a clean persisted document.
func Serialize(state any) ([]byte, error) {
	doc, err := json.Marshal(state)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeSerialization, "state not serializable", err)
	}
	if len(doc) == 0 || doc[0] != '{' {
		return nil, domain.NewError(domain.ErrCodeSerialization, "state must serialize to a document")
	}
	return doc, nil
}

// Deserialize decodes a persisted document into the target state record,
// unwrapping the legacy envelope first when present. Which concrete types the
// fields decode into is driven entirely by the target's declared field types,
// never by the shape of the incoming data.
func Deserialize(doc []byte, target any) error {
	doc = Unwrap(doc)
	if err := json.Unmarshal(doc, target); err != nil {
		var dErr *domain.Error
		if errors.As(err, &dErr) {
			return dErr
		}
		return domain.WrapError(domain.ErrCodeSerialization, "document not decodable", err)
	}
	return nil
}

// Unwrap returns the inner state document when doc matches the legacy
// envelope shape, and doc unchanged otherwise.
func Unwrap(doc []byte) []byte {
	if !bytes.Contains(doc, []byte(`"state"`)) {
		return doc
	}
	var env legacyEnvelope
	if err := json.Unmarshal(doc, &env); err != nil {
		return doc
	}
	if env.Type == nil || len(env.State) == 0 {
		return doc
	}
	inner := bytes.TrimSpace(env.State)
	if len(inner) == 0 || inner[0] != '{' {
		return doc
	}
	return inner
}

// IsWrapped reports whether a stored document still carries the legacy
// envelope. The envelope is strictly larger than the state it wraps, so a
// length comparison against the unwrapped form is sufficient.
func IsWrapped(doc []byte) bool {
	return len(Unwrap(doc)) != len(doc)
}

// StateVersion reads the persisted state version out of a document without
// decoding the full state. Repositories use it for the optimistic-concurrency
// comparison.
func StateVersion(doc []byte) (int, error) {
	var probe struct {
		StateVersion *int `json:"state_version"`
	}
	if err := json.Unmarshal(Unwrap(doc), &probe); err != nil {
		return 0, domain.WrapError(domain.ErrCodeSerialization, "document not decodable", err)
	}
	if probe.StateVersion == nil {
		return 0, domain.NewError(domain.ErrCodeSerialization, "document has no state version")
	}
	return *probe.StateVersion, nil
}
