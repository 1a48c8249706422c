package customer

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/ordercore/domain"
	"github.com/fastygo/ordercore/repository"
	"github.com/fastygo/ordercore/usecase"
)

const (
	CmdRegisterCustomer = "customer.register"
	CmdRenameCustomer   = "customer.rename"

	QueryGetCustomer = "customer.get"
)

type RegisterInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RenameInput struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
}

type UseCase struct {
	customers repository.CustomerRepository
	logger    *zap.Logger
}

func New(customers repository.CustomerRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		customers: customers,
		logger:    logger,
	}
}

// Register wires the use case into the dispatcher.
func (uc *UseCase) Register(d *usecase.Dispatcher) {
	d.RegisterCommand(CmdRegisterCustomer, uc.RegisterCustomer)
	d.RegisterCommand(CmdRenameCustomer, uc.RenameCustomer)
	d.RegisterQuery(QueryGetCustomer, uc.GetCustomer)
}

func (uc *UseCase) RegisterCustomer(ctx context.Context, payload interface{}) (interface{}, error) {
	input, ok := payload.(RegisterInput)
	if !ok {
		return nil, domain.ErrInvalidPayload
	}
	if existing, err := uc.customers.FindByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, domain.NewError(domain.ErrCodeConflict, "email already registered")
	}

	customer, err := domain.NewCustomer(input.Name, input.Email)
	if err != nil {
		return nil, err
	}

	uc.track(ctx, customer)
	if err := uc.customers.Add(ctx, customer); err != nil {
		return nil, err
	}
	return customer.State(), nil
}

func (uc *UseCase) RenameCustomer(ctx context.Context, payload interface{}) (interface{}, error) {
	input, ok := payload.(RenameInput)
	if !ok {
		return nil, domain.ErrInvalidPayload
	}

	customer, err := uc.customers.Get(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := customer.Rename(input.Name); err != nil {
		return nil, err
	}

	uc.track(ctx, customer)
	if err := uc.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer.State(), nil
}

func (uc *UseCase) GetCustomer(ctx context.Context, params interface{}) (interface{}, error) {
	id, ok := params.(string)
	if !ok || id == "" {
		return nil, domain.ErrInvalidPayload
	}
	customer, err := uc.customers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return customer.State(), nil
}

func (uc *UseCase) track(ctx context.Context, customer *domain.Customer) {
	if uow := usecase.UnitOfWorkFrom(ctx); uow != nil {
		uow.Register(customer)
	}
}
