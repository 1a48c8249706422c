package document

import (
	"context"
	"testing"

	"github.com/fastygo/ordercore/domain"
	"github.com/fastygo/ordercore/internal/infrastructure/docstore"
)

func TestCustomerRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepository(docstore.NewMemory())

	customer, err := domain.NewCustomer("Ada", "Ada@Example.com")
	if err != nil {
		t.Fatalf("NewCustomer: %v", err)
	}
	if err := repo.Add(ctx, customer); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := customer.StateMeta().StateVersion; got != 0 {
		t.Fatalf("version after add = %d, want 0", got)
	}

	loaded, err := repo.Get(ctx, customer.GetID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded.PendingEvents() != nil {
		t.Fatal("loaded customer has pending events")
	}
	if loaded.State().Email != "ada@example.com" {
		t.Fatalf("email = %q", loaded.State().Email)
	}
}

func TestCustomerRepositoryFindByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepository(docstore.NewMemory())

	customer, _ := domain.NewCustomer("Ada", "ada@example.com")
	if err := repo.Add(ctx, customer); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Lookup is case-insensitive because stored emails are normalized.
	found, err := repo.FindByEmail(ctx, "ADA@example.COM")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if found.GetID() != customer.GetID() {
		t.Fatalf("found %q, want %q", found.GetID(), customer.GetID())
	}

	if _, err := repo.FindByEmail(ctx, "nobody@example.com"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("FindByEmail missing = %v, want not found", err)
	}
}

func TestCustomerRepositoryUpdateConflicts(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepository(docstore.NewMemory())

	customer, _ := domain.NewCustomer("Ada", "ada@example.com")
	if err := repo.Add(ctx, customer); err != nil {
		t.Fatalf("Add: %v", err)
	}

	first, _ := repo.Get(ctx, customer.GetID())
	second, _ := repo.Get(ctx, customer.GetID())

	if err := first.Rename("Ada L."); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := first.StateMeta().StateVersion; got != 1 {
		t.Fatalf("version = %d, want 1", got)
	}

	if err := second.Rename("Countess"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if err := repo.Update(ctx, second); err != domain.ErrConcurrencyConflict {
		t.Fatalf("stale update = %v, want ErrConcurrencyConflict", err)
	}

	loaded, _ := repo.Get(ctx, customer.GetID())
	if loaded.State().Name != "Ada L." {
		t.Fatalf("stored name = %q, want the winner's write", loaded.State().Name)
	}
}
