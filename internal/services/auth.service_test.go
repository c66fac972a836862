package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milkroute/delivery-gateway/internal/model"
	"github.com/milkroute/delivery-gateway/internal/repository"
	"github.com/milkroute/delivery-gateway/internal/token"
	"github.com/milkroute/delivery-gateway/pkg/docstore"
)

func newAuthService(t *testing.T) (*AuthService, *repository.UserRepository) {
	t.Helper()
	users := repository.NewUserRepository(docstore.NewMemoryStore())
	return NewAuthService(users, token.NewManager("test-secret", time.Minute)), users
}

func bootstrapAndLogin(t *testing.T, svc *AuthService) (*model.User, string) {
	t.Helper()
	ctx := context.Background()
	admin, err := svc.BootstrapAdmin(ctx, "admin123")
	require.NoError(t, err)
	signed, _, err := svc.Authenticate(ctx, "admin", "admin123")
	require.NoError(t, err)
	return admin, signed
}

func TestAuthService_AuthenticateAndResolve(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	admin, signed := bootstrapAndLogin(t, svc)

	resolved, err := svc.ResolveIdentity(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, resolved.ID)
	assert.Equal(t, model.RoleAdmin, resolved.Role)

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Authenticate(ctx, "admin", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, _, err := svc.Authenticate(ctx, "ghost", "admin123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_ResolveIdentityFailures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	bootstrapAndLogin(t, svc)

	t.Run("missing", func(t *testing.T) {
		_, err := svc.ResolveIdentity(ctx, "")
		assert.ErrorIs(t, err, ErrTokenMissing)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ResolveIdentity(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		users := repository.NewUserRepository(docstore.NewMemoryStore())
		expired := NewAuthService(users, token.NewManager("test-secret", -time.Minute))
		admin, err := expired.BootstrapAdmin(ctx, "admin123")
		require.NoError(t, err)
		_ = admin
		signed, _, err := expired.Authenticate(ctx, "admin", "admin123")
		require.NoError(t, err)
		_, err = expired.ResolveIdentity(ctx, signed)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("subject no longer resolvable", func(t *testing.T) {
		other := token.NewManager("test-secret", time.Minute)
		signed, err := other.Issue("deleted-user")
		require.NoError(t, err)
		_, err = svc.ResolveIdentity(ctx, signed)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_BootstrapAdminOnce(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	admin, err := svc.BootstrapAdmin(ctx, "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Username)
	assert.Equal(t, "System Administrator", admin.Name)

	_, err = svc.BootstrapAdmin(ctx, "admin123")
	assert.ErrorIs(t, err, ErrAdminExists)
}

func TestAuthService_BootstrapAdminConcurrent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.BootstrapAdmin(ctx, "admin123")
		}(i)
	}
	wg.Wait()

	var created int
	for _, err := range errs {
		if err == nil {
			created++
		} else {
			assert.ErrorIs(t, err, ErrAdminExists)
		}
	}
	assert.Equal(t, 1, created)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	admin, _ := bootstrapAndLogin(t, svc)

	req := model.UserCreateRequest{Username: "ravi", Password: "secret", Role: model.RoleDeliveryAgent, Name: "Ravi Kumar"}

	t.Run("admin registers agent", func(t *testing.T) {
		created, err := svc.Register(ctx, admin, req)
		require.NoError(t, err)
		assert.Equal(t, model.RoleDeliveryAgent, created.Role)
		assert.NotEmpty(t, created.PasswordHash)

		_, agentUser, err := svc.Authenticate(ctx, "ravi", "secret")
		require.NoError(t, err)
		assert.Equal(t, created.ID, agentUser.ID)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		agent, err := svc.users.GetByUsername(ctx, "ravi")
		require.NoError(t, err)
		_, err = svc.Register(ctx, agent, model.UserCreateRequest{Username: "x", Password: "y", Role: model.RoleViewer, Name: "X"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Register(ctx, admin, req)
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("unknown role", func(t *testing.T) {
		bad := req
		bad.Username = "other"
		bad.Role = "superuser"
		_, err := svc.Register(ctx, admin, bad)
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestAuthService_ListUsers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	admin, _ := bootstrapAndLogin(t, svc)

	_, err := svc.Register(ctx, admin, model.UserCreateRequest{Username: "ravi", Password: "secret", Role: model.RoleDeliveryAgent, Name: "Ravi Kumar"})
	require.NoError(t, err)

	users, err := svc.ListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	agent, err := svc.users.GetByUsername(ctx, "ravi")
	require.NoError(t, err)
	_, err = svc.ListUsers(ctx, agent)
	assert.ErrorIs(t, err, ErrForbidden)
}
