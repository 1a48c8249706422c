package codec

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fastygo/ordercore/domain"
)

func sampleState(t *testing.T) domain.OrderState {
	t.Helper()
	line, err := domain.NewOrderLine("sku-1", "espresso", domain.SizeLarge, 2, decimal.RequireFromString("12.99"))
	if err != nil {
		t.Fatalf("NewOrderLine: %v", err)
	}
	state := domain.OrderState{
		ID:         "ord-1",
		CustomerID: "cust-1",
		Status:     domain.OrderStatusOpen,
		Lines:      []domain.OrderLine{line},
	}
	state.StateVersion = 3
	state.CreatedAt = domain.Now()
	state.LastModified = domain.Now()
	return state
}

func TestSerializeProducesCleanDocument(t *testing.T) {
	doc, err := Serialize(sampleState(t))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	body := string(doc)
	for _, want := range []string{`"id":"ord-1"`, `"status":"open"`, `"state_version":3`, `"unit_price":"12.99"`, `"size":"large"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("document %s missing %s", body, want)
		}
	}
	// No type-name wrapper, no nested state envelope.
	for _, banned := range []string{`"type"`, `"state":`} {
		if strings.Contains(body, banned) {
			t.Fatalf("document %s contains legacy field %s", body, banned)
		}
	}
}

func TestSerializeRejectsNonDocuments(t *testing.T) {
	if _, err := Serialize("just a string"); !domain.IsDomainError(err, domain.ErrCodeSerialization) {
		t.Fatalf("expected serialization error, got %v", err)
	}
	if _, err := Serialize(make(chan int)); !domain.IsDomainError(err, domain.ErrCodeSerialization) {
		t.Fatalf("expected serialization error for unmarshalable value, got %v", err)
	}
}

func TestDeserializeRoundTrip(t *testing.T) {
	original := sampleState(t)
	doc, err := Serialize(original)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	var decoded domain.OrderState
	if err := Deserialize(doc, &decoded); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if decoded.ID != original.ID || decoded.Status != original.Status {
		t.Fatalf("decoded %+v != original %+v", decoded, original)
	}
	if decoded.StateVersion != 3 {
		t.Fatalf("state version = %d, want 3", decoded.StateVersion)
	}
	if len(decoded.Lines) != 1 || !decoded.Lines[0].Equal(original.Lines[0]) {
		t.Fatalf("lines did not survive the round trip: %+v", decoded.Lines)
	}
	if !decoded.CreatedAt.Equal(original.CreatedAt) {
		t.Fatalf("created_at %v != %v", decoded.CreatedAt, original.CreatedAt)
	}
}

func TestDeserializeUnwrapsLegacyEnvelope(t *testing.T) {
	clean := []byte(`{"id":"ord-1","customer_id":"cust-1","status":"open","lines":[],"state_version":1}`)
	wrapped := []byte(`{"type":"Order","state":` + string(clean) + `}`)

	var fromClean, fromWrapped domain.OrderState
	if err := Deserialize(clean, &fromClean); err != nil {
		t.Fatalf("Deserialize clean: %v", err)
	}
	if err := Deserialize(wrapped, &fromWrapped); err != nil {
		t.Fatalf("Deserialize wrapped: %v", err)
	}
	// Both shapes decode to identical state.
	if fromClean.ID != fromWrapped.ID || fromClean.Status != fromWrapped.Status || fromClean.StateVersion != fromWrapped.StateVersion {
		t.Fatalf("legacy envelope decoded differently: %+v vs %+v", fromWrapped, fromClean)
	}
}

func TestUnwrapLeavesOrdinaryDocumentsAlone(t *testing.T) {
	// A document that merely contains a field named "state" is not an envelope.
	doc := []byte(`{"id":"x","state":"california"}`)
	if got := Unwrap(doc); string(got) != string(doc) {
		t.Fatalf("Unwrap mangled a non-envelope document: %s", got)
	}

	// Envelope detection requires both marker fields.
	doc = []byte(`{"state":{"id":"x"}}`)
	if got := Unwrap(doc); string(got) != string(doc) {
		t.Fatalf("Unwrap treated a type-less document as an envelope: %s", got)
	}
}

func TestDeserializeAcceptsSymbolicEnumNames(t *testing.T) {
	doc := []byte(`{"id":"ord-1","customer_id":"cust-1","status":"OPEN","lines":[{"sku":"s","name":"n","size":"LARGE","quantity":1,"unit_price":"2.50"}],"state_version":0}`)
	var state domain.OrderState
	if err := Deserialize(doc, &state); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if state.Status != domain.OrderStatusOpen {
		t.Fatalf("status = %q", state.Status)
	}
	if state.Lines[0].Size() != domain.SizeLarge {
		t.Fatalf("size = %q", state.Lines[0].Size())
	}
}

func TestDeserializeSurfacesEnumErrors(t *testing.T) {
	doc := []byte(`{"id":"ord-1","customer_id":"cust-1","status":"pending","lines":[],"state_version":0}`)
	var state domain.OrderState
	if err := Deserialize(doc, &state); !domain.IsDomainError(err, domain.ErrCodeSerialization) {
		t.Fatalf("expected serialization error for unknown status, got %v", err)
	}
}

func TestStateVersionProbe(t *testing.T) {
	version, err := StateVersion([]byte(`{"id":"x","state_version":7}`))
	if err != nil || version != 7 {
		t.Fatalf("StateVersion = %d, %v", version, err)
	}

	version, err = StateVersion([]byte(`{"type":"Order","state":{"id":"x","state_version":2}}`))
	if err != nil || version != 2 {
		t.Fatalf("StateVersion through envelope = %d, %v", version, err)
	}

	if _, err := StateVersion([]byte(`{"id":"x"}`)); !domain.IsDomainError(err, domain.ErrCodeSerialization) {
		t.Fatalf("expected serialization error for missing version, got %v", err)
	}
}
