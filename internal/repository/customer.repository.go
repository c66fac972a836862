package repository

import (
	"context"
	"errors"
	"time"

	"github.com/milkroute/delivery-gateway/internal/model"
	"github.com/milkroute/delivery-gateway/pkg/docstore"
)

type CustomerRepository struct {
	store docstore.Store
}

func NewCustomerRepository(store docstore.Store) *CustomerRepository {
	return &CustomerRepository{store: store}
}

func (r *CustomerRepository) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	id, err := r.store.InsertOne(ctx, customerCollection, toCustomerDoc(c))
	if err != nil {
		return nil, err
	}
	created := *c
	created.ID = model.CustomerID(id)
	return &created, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id model.CustomerID) (*model.Customer, error) {
	doc, err := r.store.FindOne(ctx, customerCollection, docstore.Filter{docstore.IDField: string(id)})
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return toCustomerModel(doc), nil
}

func (r *CustomerRepository) GetByMobile(ctx context.Context, mobile string) (*model.Customer, error) {
	doc, err := r.store.FindOne(ctx, customerCollection, docstore.Filter{"mobile": mobile})
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return toCustomerModel(doc), nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]*model.Customer, error) {
	docs, err := r.store.FindMany(ctx, customerCollection, nil, &docstore.FindOptions{SortField: "name"})
	if err != nil {
		return nil, err
	}
	customers := make([]*model.Customer, len(docs))
	for i, doc := range docs {
		customers[i] = toCustomerModel(doc)
	}
	return customers, nil
}

// Update overwrites the profile fields of an existing customer. The
// reported bool is false when no record carries the identifier.
func (r *CustomerRepository) Update(ctx context.Context, id model.CustomerID, req model.CustomerUpsertRequest) (bool, error) {
	set := docstore.Document{
		"name":    req.Name,
		"address": req.Address,
		"mobile":  req.Mobile,
	}
	matched, err := r.store.UpdateOne(ctx, customerCollection, docstore.Filter{docstore.IDField: string(id)}, set)
	if err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id model.CustomerID) (bool, error) {
	deleted, err := r.store.DeleteOne(ctx, customerCollection, docstore.Filter{docstore.IDField: string(id)})
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}
