package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/milkroute/delivery-gateway/internal/model"
	"github.com/milkroute/delivery-gateway/internal/repository"
	"github.com/milkroute/delivery-gateway/internal/token"
	"github.com/milkroute/delivery-gateway/pkg/logger"
	"github.com/milkroute/delivery-gateway/pkg/prom"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenMissing       = errors.New("authorization token missing")
	ErrTokenExpired       = errors.New("authorization token expired")
	ErrTokenInvalid       = errors.New("authorization token invalid")
	ErrForbidden          = errors.New("operation not permitted for this role")
	ErrAdminExists        = errors.New("an administrator already exists")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidRole        = errors.New("role outside the permitted set")
	ErrNotFound           = errors.New("resource not found")
	// ErrValidation wraps request payload failures so transport code can
	// distinguish them from internal errors.
	ErrValidation = errors.New("invalid request")
)

const bootstrapUsername = "admin"
const bootstrapName = "System Administrator"

// UserRepository is the identity store surface the auth service needs.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	CreateAdmin(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, id model.UserID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}

// AuthService is the single gate in front of every protected operation. It
// exchanges credentials for session tokens and resolves tokens back to
// identity records on each request.
type AuthService struct {
	users  UserRepository
	tokens *token.Manager
}

func NewAuthService(users UserRepository, tokens *token.Manager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Authenticate verifies the credential pair and issues a session token. The
// caller cannot distinguish an unknown username from a wrong password.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			prom.IncAuthFailure("credentials")
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		prom.IncAuthFailure("credentials")
		return "", nil, ErrInvalidCredentials
	}
	signed, err := s.tokens.Issue(string(user.ID))
	if err != nil {
		return "", nil, err
	}
	return signed, user, nil
}

// ResolveIdentity maps a bearer token to the current identity record. Role
// and display data are read fresh so a role change is visible on the very
// next request, not at the next login.
func (s *AuthService) ResolveIdentity(ctx context.Context, raw string) (*model.User, error) {
	if raw == "" {
		prom.IncAuthFailure("missing")
		return nil, ErrTokenMissing
	}
	subject, err := s.tokens.Parse(raw)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			prom.IncAuthFailure("expired")
			return nil, ErrTokenExpired
		}
		prom.IncAuthFailure("invalid")
		return nil, ErrTokenInvalid
	}
	user, err := s.users.GetByID(ctx, model.UserID(subject))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			prom.IncAuthFailure("unknown_subject")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

// BootstrapAdmin creates the first administrator. It is deliberately
// unauthenticated and succeeds at most once over the lifetime of the store,
// even when called concurrently.
func (s *AuthService) BootstrapAdmin(ctx context.Context, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	created, err := s.users.CreateAdmin(ctx, &model.User{
		Username:     bootstrapUsername,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Name:         bootstrapName,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAdminExists
		}
		return nil, err
	}
	logger.Info("bootstrap administrator created", "username", created.Username)
	return created, nil
}

// Register creates a new account. Only administrators may register users;
// there is no self-service signup.
func (s *AuthService) Register(ctx context.Context, acting *model.User, req model.UserCreateRequest) (*model.User, error) {
	if err := s.RequireAdmin(acting); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	created, err := s.users.Create(ctx, &model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
		Name:         req.Name,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	logger.Info("user registered", "username", created.Username, "role", created.Role)
	return created, nil
}

func (s *AuthService) ListUsers(ctx context.Context, acting *model.User) ([]*model.User, error) {
	if err := s.RequireAdmin(acting); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// RequireAdmin is the uniform role gate shared by user, customer and report
// operations.
func (s *AuthService) RequireAdmin(u *model.User) error {
	if u == nil || !u.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
