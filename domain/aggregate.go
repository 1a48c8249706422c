package domain

// Aggregate is the capability shared by every behavior-bearing wrapper: it
// owns a transient queue of domain events describing mutations applied since
// it was loaded or created. The queue is never persisted.
type Aggregate interface {
	PendingEvents() []DomainEvent
	ClearPendingEvents()
}

// Identifiable is the current identity shape for aggregates.
type Identifiable interface {
	AggregateID() string
}

// legacyIdentifiable covers aggregates written before the identity accessor
// was standardized; they expose a getter instead.
type legacyIdentifiable interface {
	GetID() string
}

// IdentityOf resolves an aggregate's identity through a single capability
// check. All code retrieving identities goes through here — the two historical
// accessor shapes must never be branched on anywhere else.
func IdentityOf(v any) (string, error) {
	switch a := v.(type) {
	case Identifiable:
		return a.AggregateID(), nil
	case legacyIdentifiable:
		return a.GetID(), nil
	default:
		return "", NewError(ErrCodeInternal, "aggregate exposes no identity")
	}
}

// EventRecorder implements the pending-event queue. Aggregates embed it;
// it is not safe for concurrent use, matching the one-operation-one-aggregate
// ownership model.
type EventRecorder struct {
	pending []DomainEvent
}

// RecordEvent appends an event to the pending queue and returns it so the
// caller can apply its effect immediately if desired.
func (r *EventRecorder) RecordEvent(ev DomainEvent) DomainEvent {
	r.pending = append(r.pending, ev)
	return ev
}

// PendingEvents returns a snapshot copy of the queued events in record order.
func (r *EventRecorder) PendingEvents() []DomainEvent {
	if len(r.pending) == 0 {
		return nil
	}
	out := make([]DomainEvent, len(r.pending))
	copy(out, r.pending)
	return out
}

// ClearPendingEvents empties the queue.
func (r *EventRecorder) ClearPendingEvents() {
	r.pending = nil
}

// StateMeta carries the persistence bookkeeping embedded in every aggregate
// state record. CreatedAt is immutable after the first write.
type StateMeta struct {
	StateVersion int  `json:"state_version"`
	CreatedAt    Time `json:"created_at"`
	LastModified Time `json:"last_modified"`
}

// Persistable is implemented by aggregates whose state snapshots the
// repositories persist. CommitMeta is called by a repository after a
// successful write so the in-memory aggregate reflects the stored version.
type Persistable interface {
	StateMeta() StateMeta
	CommitMeta(StateMeta)
}
