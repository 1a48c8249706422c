// Package document implements the repositories on top of the pluggable
// document-store driver. Only state snapshots cross the serialization
// boundary; pending event queues never reach storage.
package document

import (
	"errors"

	"github.com/fastygo/ordercore/domain"
	"github.com/fastygo/ordercore/internal/infrastructure/docstore"
)

// Document field names used in filters. The storage partition (collection)
// is fixed at repository construction and never duplicated inside documents.
const (
	fieldID           = "id"
	fieldStateVersion = "state_version"
	fieldCustomerID   = "customer_id"
	fieldStatus       = "status"
	fieldEmail        = "email"
)

// stampForAdd prepares the bookkeeping for a first write: version 0 in
// storage, created_at set once, last_modified refreshed.
func stampForAdd(meta domain.StateMeta) domain.StateMeta {
	now := domain.Now()
	meta.StateVersion = 0
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.LastModified = now
	return meta
}

// stampForUpdate advances the version by exactly one. created_at is
// immutable after the first write.
func stampForUpdate(meta domain.StateMeta) domain.StateMeta {
	meta.StateVersion++
	meta.LastModified = domain.Now()
	return meta
}

// storageErr classifies driver failures that are not part of the contract as
// storage unavailability. Sentinels pass through for the caller to translate.
func storageErr(message string, err error) error {
	if errors.Is(err, docstore.ErrNoDocument) || errors.Is(err, docstore.ErrDuplicate) {
		return err
	}
	return domain.WrapError(domain.ErrCodeUnavailable, message, err)
}
