package document

import (
	"context"
	"errors"
	"strings"

	"github.com/fastygo/ordercore/codec"
	"github.com/fastygo/ordercore/domain"
	"github.com/fastygo/ordercore/internal/infrastructure/docstore"
	"github.com/fastygo/ordercore/repository"
)

const customerCollection = "customers"

type customerRepository struct {
	driver     docstore.Driver
	collection string
}

// NewCustomerRepository returns a document-store-backed CustomerRepository.
func NewCustomerRepository(driver docstore.Driver) repository.CustomerRepository {
	return &customerRepository{driver: driver, collection: customerCollection}
}

func (r *customerRepository) Get(ctx context.Context, id string) (*domain.Customer, error) {
	doc, err := r.driver.FindOne(ctx, r.collection, docstore.Filter{fieldID: id})
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, storageErr("customer lookup failed", err)
	}
	return r.rehydrate(doc)
}

func (r *customerRepository) Add(ctx context.Context, customer *domain.Customer) error {
	if customer == nil {
		return domain.ErrInvalidPayload
	}
	id, err := domain.IdentityOf(customer)
	if err != nil {
		return err
	}

	state := customer.State()
	state.StateMeta = stampForAdd(state.StateMeta)

	doc, err := codec.Serialize(state)
	if err != nil {
		return err
	}
	if err := r.driver.Insert(ctx, r.collection, id, doc); err != nil {
		if errors.Is(err, docstore.ErrDuplicate) {
			return domain.NewError(domain.ErrCodeConflict, "customer already persisted")
		}
		return storageErr("customer insert failed", err)
	}

	customer.CommitMeta(state.StateMeta)
	return nil
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	if customer == nil {
		return domain.ErrInvalidPayload
	}
	id, err := domain.IdentityOf(customer)
	if err != nil {
		return err
	}

	state := customer.State()
	expected := state.StateVersion

	stored, err := r.driver.FindOne(ctx, r.collection, docstore.Filter{fieldID: id})
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			return domain.ErrCustomerNotFound
		}
		return storageErr("customer lookup failed", err)
	}
	storedVersion, err := codec.StateVersion(stored)
	if err != nil {
		return err
	}
	if storedVersion != expected {
		return domain.ErrConcurrencyConflict
	}

	state.StateMeta = stampForUpdate(state.StateMeta)
	doc, err := codec.Serialize(state)
	if err != nil {
		return err
	}

	filter := docstore.Filter{fieldID: id, fieldStateVersion: expected}
	if codec.IsWrapped(stored) {
		filter = docstore.Filter{fieldID: id}
	}
	if err := r.driver.Replace(ctx, r.collection, filter, doc); err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			return domain.ErrConcurrencyConflict
		}
		return storageErr("customer update failed", err)
	}

	customer.CommitMeta(state.StateMeta)
	return nil
}

func (r *customerRepository) Remove(ctx context.Context, id string) error {
	if err := r.driver.Delete(ctx, r.collection, docstore.Filter{fieldID: id}); err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			return domain.ErrCustomerNotFound
		}
		return storageErr("customer delete failed", err)
	}
	return nil
}

func (r *customerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	filter := docstore.Filter{fieldEmail: strings.ToLower(email)}
	doc, err := r.driver.FindOne(ctx, r.collection, filter)
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, storageErr("customer lookup failed", err)
	}
	return r.rehydrate(doc)
}

func (r *customerRepository) rehydrate(doc []byte) (*domain.Customer, error) {
	var state domain.CustomerState
	if err := codec.Deserialize(doc, &state); err != nil {
		return nil, err
	}
	return domain.RehydrateCustomer(state), nil
}
