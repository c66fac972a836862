package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/milkroute/delivery-gateway/internal/config"
	"github.com/milkroute/delivery-gateway/internal/model"
	"github.com/milkroute/delivery-gateway/internal/repository"
	"github.com/milkroute/delivery-gateway/internal/services"
	"github.com/milkroute/delivery-gateway/internal/token"
	"github.com/milkroute/delivery-gateway/pkg/docstore"
)

// Seeds a fresh database with the bootstrap administrator and one sample
// delivery agent so a new deployment can be exercised immediately.
// Safe to rerun: existing accounts are left untouched.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := config.Load(getEnvPath()); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	store, driver, err := openStore()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	log.Info().Str("driver", driver).Msg("store ready")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := repository.NewUserRepository(store)
	auth := services.NewAuthService(users, token.NewManager(config.Get().JWTSecret, token.DefaultTTL))

	admin, err := auth.BootstrapAdmin(ctx, config.Get().BootstrapAdminPassword)
	switch {
	case errors.Is(err, services.ErrAdminExists):
		log.Info().Msg("administrator already present, skipping")
		admin, err = lookupAdmin(ctx, users)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to resolve existing administrator")
		}
	case err != nil:
		log.Fatal().Err(err).Msg("failed to bootstrap administrator")
	default:
		log.Info().Str("username", admin.Username).Msg("administrator created")
	}

	agent, err := auth.Register(ctx, admin, model.UserCreateRequest{
		Username: "ravi",
		Password: "agent123",
		Role:     model.RoleDeliveryAgent,
		Name:     "Ravi Kumar",
	})
	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		log.Info().Str("username", "ravi").Msg("sample agent already present, skipping")
	case err != nil:
		log.Fatal().Err(err).Msg("failed to create sample agent")
	default:
		log.Info().Str("username", agent.Username).Str("role", string(agent.Role)).Msg("sample agent created")
	}

	log.Info().Msg("seeding complete")
}

func lookupAdmin(ctx context.Context, users *repository.UserRepository) (*model.User, error) {
	all, err := users.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range all {
		if u.Role == model.RoleAdmin {
			return u, nil
		}
	}
	return nil, errors.New("no administrator account found")
}

func openStore() (docstore.Store, string, error) {
	if config.Get().StoreDriver != "postgres" {
		return docstore.NewMemoryStore(), "memory", nil
	}
	db, err := docstore.OpenPostgres(docstore.Config{
		User:     config.Get().PostgresUser,
		Host:     config.Get().PostgresHost,
		Port:     config.Get().PostgresPort,
		Password: config.Get().PostgresPassword,
		Database: config.Get().PostgresDatabase,
	}, false)
	if err != nil {
		return nil, "", err
	}
	return docstore.NewGormStore(db), "postgres", nil
}

func getEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				log.Error().Err(err).Msg("failed to open the passed env file")
				return ""
			}
			return s[1]
		}
	}
	if _, err := os.Open(".env"); err != nil {
		return ""
	}
	return ".env"
}
