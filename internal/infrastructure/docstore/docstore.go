// Package docstore defines the pluggable document-store driver consumed by
// the repository layer, plus the bbolt, Postgres and in-memory
// implementations. Drivers evaluate filters themselves; callers never pull a
// whole collection into memory to filter client-side.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Filter matches documents by field path. An empty filter matches everything.
// The "id" key is special: it addresses the storage key the document was
// inserted under, not a field of the body. Older documents wrap their fields
// in an envelope, so key-addressing is the only id lookup that works for
// every stored shape.
type Filter map[string]any

// Driver is the storage contract: raw JSON documents grouped into named
// collections. Implementations are long-lived, shared and internally
// synchronized.
type Driver interface {
	// FindOne returns the first document matching the filter, or ErrNoDocument.
	FindOne(ctx context.Context, collection string, filter Filter) ([]byte, error)
	// Find returns every matching document in stable key order.
	Find(ctx context.Context, collection string, filter Filter) ([][]byte, error)
	// Insert stores a new document under id, failing with ErrDuplicate if
	// the id is already taken.
	Insert(ctx context.Context, collection, id string, doc []byte) error
	// Replace atomically swaps the document matching the filter for doc.
	// ErrNoDocument when nothing matches — which is how conditional writes
	// report a lost race.
	Replace(ctx context.Context, collection string, filter Filter, doc []byte) error
	// Delete removes every matching document, ErrNoDocument when none match.
	Delete(ctx context.Context, collection string, filter Filter) error
}

// Sentinel errors shared by all drivers.
var (
	ErrNoDocument = errors.New("docstore: no matching document")
	ErrDuplicate  = errors.New("docstore: duplicate document id")
)

// keyedID extracts the storage-key address from a filter, if present.
func keyedID(filter Filter) (string, bool) {
	id, ok := filter["id"].(string)
	return id, ok && id != ""
}

// bodyFilter strips the key-addressed id from a filter, leaving only the
// predicates that evaluate against the document body.
func bodyFilter(filter Filter) Filter {
	if _, ok := filter["id"]; !ok {
		return filter
	}
	rest := make(Filter, len(filter))
	for k, v := range filter {
		if k == "id" {
			continue
		}
		rest[k] = v
	}
	return rest
}

// matches evaluates a filter against a raw document. Values are compared by
// their canonical string rendering so that numeric filter values line up with
// JSON numbers regardless of the Go type used to build the filter.
func matches(doc []byte, filter Filter) bool {
	if len(filter) == 0 {
		return true
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return false
	}
	for key, want := range filter {
		raw, ok := fields[key]
		if !ok {
			return false
		}
		var got any
		if err := json.Unmarshal(raw, &got); err != nil {
			return false
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}
