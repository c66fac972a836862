package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/milkroute/delivery-gateway/internal/model"
	"github.com/milkroute/delivery-gateway/internal/repository"
	"github.com/milkroute/delivery-gateway/pkg/logger"
)

// CustomerRepository is the customer store surface the service consumes.
type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) (*model.Customer, error)
	GetByID(ctx context.Context, id model.CustomerID) (*model.Customer, error)
	GetByMobile(ctx context.Context, mobile string) (*model.Customer, error)
	List(ctx context.Context) ([]*model.Customer, error)
	Update(ctx context.Context, id model.CustomerID, req model.CustomerUpsertRequest) (bool, error)
	Delete(ctx context.Context, id model.CustomerID) (bool, error)
}

// CustomerService manages the customer roster. Mutations are reserved for
// administrators; any authenticated identity may read.
type CustomerService struct {
	customers CustomerRepository
	auth      *AuthService
}

func NewCustomerService(customers CustomerRepository, auth *AuthService) *CustomerService {
	return &CustomerService{customers: customers, auth: auth}
}

func (s *CustomerService) Create(ctx context.Context, acting *model.User, req model.CustomerUpsertRequest) (*model.Customer, error) {
	if err := s.auth.RequireAdmin(acting); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	created, err := s.customers.Create(ctx, &model.Customer{
		Name:    req.Name,
		Address: req.Address,
		Mobile:  req.Mobile,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("customer created", "customer_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *CustomerService) Get(ctx context.Context, id model.CustomerID) (*model.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) GetByMobile(ctx context.Context, mobile string) (*model.Customer, error) {
	customer, err := s.customers.GetByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) List(ctx context.Context, acting *model.User) ([]*model.Customer, error) {
	if err := s.auth.RequireAdmin(acting); err != nil {
		return nil, err
	}
	return s.customers.List(ctx)
}

// Update replaces the profile fields. Concurrent updates resolve to whichever
// write lands last; there is no version token.
func (s *CustomerService) Update(ctx context.Context, acting *model.User, id model.CustomerID, req model.CustomerUpsertRequest) (*model.Customer, error) {
	if err := s.auth.RequireAdmin(acting); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	ok, err := s.customers.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes the customer record only. Ledger entries referencing it are
// left in place and render a null customer on read.
func (s *CustomerService) Delete(ctx context.Context, acting *model.User, id model.CustomerID) error {
	if err := s.auth.RequireAdmin(acting); err != nil {
		return err
	}
	ok, err := s.customers.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	logger.Info("customer deleted", "customer_id", id)
	return nil
}
