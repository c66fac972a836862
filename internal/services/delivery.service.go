package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/milkroute/delivery-gateway/internal/model"
	"github.com/milkroute/delivery-gateway/internal/repository"
	"github.com/milkroute/delivery-gateway/pkg/logger"
	"github.com/milkroute/delivery-gateway/pkg/prom"
)

// DeliveryRepository is the ledger surface the service consumes.
type DeliveryRepository interface {
	Create(ctx context.Context, d *model.Delivery) (*model.Delivery, error)
	GetByID(ctx context.Context, id model.DeliveryID) (*model.Delivery, error)
	Update(ctx context.Context, id model.DeliveryID, req model.DeliveryUpdateRequest, updatedBy model.UserID) (bool, error)
	ListByDateAndAgent(ctx context.Context, date model.Date, agent model.UserID) ([]*model.Delivery, error)
	ListByCustomer(ctx context.Context, id model.CustomerID) ([]*model.Delivery, error)
	ListAll(ctx context.Context) ([]*model.Delivery, error)
}

// DeliveryService owns the append-mostly delivery ledger.
type DeliveryService struct {
	deliveries DeliveryRepository
	customers  CustomerRepository
	users      UserRepository
}

func NewDeliveryService(deliveries DeliveryRepository, customers CustomerRepository, users UserRepository) *DeliveryService {
	return &DeliveryService{deliveries: deliveries, customers: customers, users: users}
}

// Create appends a ledger entry. The customer and agent references are taken
// on faith: consistency is advisory, and a reference that never resolves
// simply renders null in detail views.
func (s *DeliveryService) Create(ctx context.Context, req model.DeliveryCreateRequest) (*model.Delivery, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	status := req.Status
	if status == "" {
		status = model.DeliveryPending
	}
	created, err := s.deliveries.Create(ctx, &model.Delivery{
		CustomerID:    req.CustomerID,
		AgentID:       req.AgentID,
		DeliveryDate:  req.DeliveryDate,
		Quantity:      req.Quantity,
		Status:        status,
		Notes:         req.Notes,
		PhotoProofURL: req.PhotoProofURL,
	})
	if err != nil {
		return nil, err
	}
	prom.IncDeliveryCreated(string(created.Status))
	logger.Debug("delivery recorded", "delivery_id", created.ID, "date", created.DeliveryDate.String())
	return created, nil
}

// Update mutates the lifecycle fields of an existing entry and stamps who
// touched it. Administrators may update any entry; a delivery agent only
// entries assigned to them. The entry's customer, agent and date never
// change here.
func (s *DeliveryService) Update(ctx context.Context, acting *model.User, id model.DeliveryID, req model.DeliveryUpdateRequest) (*model.Delivery, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	existing, err := s.deliveries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDeliveryNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !acting.IsAdmin() && existing.AgentID != acting.ID {
		return nil, ErrForbidden
	}
	ok, err := s.deliveries.Update(ctx, id, req, acting.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	prom.IncDeliveryUpdated()
	updated, err := s.deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *DeliveryService) Get(ctx context.Context, id model.DeliveryID) (*model.DeliveryView, error) {
	delivery, err := s.deliveries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDeliveryNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	view := s.toView(ctx, delivery)
	return &view, nil
}

// Worklist returns one day's entries, optionally narrowed to one agent. A
// delivery agent is always narrowed to their own entries regardless of the
// requested filter.
func (s *DeliveryService) Worklist(ctx context.Context, acting *model.User, date model.Date, agent model.UserID) ([]model.DeliveryView, error) {
	if acting.Role == model.RoleDeliveryAgent {
		agent = acting.ID
	}
	deliveries, err := s.deliveries.ListByDateAndAgent(ctx, date, agent)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, deliveries), nil
}

func (s *DeliveryService) ListByCustomer(ctx context.Context, id model.CustomerID) ([]model.DeliveryView, error) {
	deliveries, err := s.deliveries.ListByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, deliveries), nil
}

func (s *DeliveryService) ListAll(ctx context.Context) ([]model.DeliveryView, error) {
	deliveries, err := s.deliveries.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, deliveries), nil
}

// toView dereferences the customer and agent for display. Lookup failures
// leave the pointer nil rather than failing the read.
func (s *DeliveryService) toView(ctx context.Context, d *model.Delivery) model.DeliveryView {
	view := model.DeliveryView{Delivery: *d}
	if customer, err := s.customers.GetByID(ctx, d.CustomerID); err == nil {
		view.Customer = customer
	}
	if agent, err := s.users.GetByID(ctx, d.AgentID); err == nil {
		view.Agent = agent
	}
	return view
}

func (s *DeliveryService) toViews(ctx context.Context, deliveries []*model.Delivery) []model.DeliveryView {
	views := make([]model.DeliveryView, len(deliveries))
	for i, d := range deliveries {
		views[i] = s.toView(ctx, d)
	}
	return views
}
