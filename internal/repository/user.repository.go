package repository

import (
	"context"
	"errors"
	"time"

	"github.com/milkroute/delivery-gateway/internal/model"
	"github.com/milkroute/delivery-gateway/pkg/docstore"
)

// UserRepository owns identity records. There are deliberately no update or
// delete operations: password rotation and deactivation are out of scope.
type UserRepository struct {
	store docstore.Store
}

func NewUserRepository(store docstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create persists a new user. Username uniqueness is enforced by the store's
// insert guard, not by a separate lookup, so concurrent registrations cannot
// both slip past the check.
func (r *UserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	id, err := r.store.InsertUnique(ctx, userCollection, toUserDoc(u), "username")
	if err != nil {
		if errors.Is(err, docstore.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}
	created := *u
	created.ID = model.UserID(id)
	return &created, nil
}

// CreateAdmin persists the bootstrap administrator. The guard runs on the
// role field: the insert fails whenever any admin record already exists,
// which makes the first-run bootstrap an exactly-once operation even under
// concurrent requests.
func (r *UserRepository) CreateAdmin(ctx context.Context, u *model.User) (*model.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	id, err := r.store.InsertUnique(ctx, userCollection, toUserDoc(u), "role")
	if err != nil {
		if errors.Is(err, docstore.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}
	created := *u
	created.ID = model.UserID(id)
	return &created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id model.UserID) (*model.User, error) {
	doc, err := r.store.FindOne(ctx, userCollection, docstore.Filter{docstore.IDField: string(id)})
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserModel(doc), nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	doc, err := r.store.FindOne(ctx, userCollection, docstore.Filter{"username": username})
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserModel(doc), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	docs, err := r.store.FindMany(ctx, userCollection, nil, nil)
	if err != nil {
		return nil, err
	}
	users := make([]*model.User, len(docs))
	for i, doc := range docs {
		users[i] = toUserModel(doc)
	}
	return users, nil
}
