package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/milkroute/delivery-gateway/internal/config"
	"github.com/milkroute/delivery-gateway/internal/handlers"
	"github.com/milkroute/delivery-gateway/internal/repository"
	"github.com/milkroute/delivery-gateway/internal/services"
	"github.com/milkroute/delivery-gateway/internal/token"
	"github.com/milkroute/delivery-gateway/pkg/docstore"
	xhttp "github.com/milkroute/delivery-gateway/pkg/http"
	"github.com/milkroute/delivery-gateway/pkg/logger"
	"github.com/milkroute/delivery-gateway/pkg/prom"
	"github.com/milkroute/delivery-gateway/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	defer logger.Sync()

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.CORSMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	store, driver := openStore()
	logger.Info("storage ready", "driver", driver)

	// optional report cache
	var cache *services.SummaryCache
	if config.Get().RedisAddr != "" {
		redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
			Addrs:      []string{config.Get().RedisAddr},
			ClientName: "default",
			DB:         config.Get().RedisDatabase,
			Username:   config.Get().RedisUsername,
			Password:   config.Get().RedisPassword,
		})
		if err != nil {
			logger.Warn("redis unreachable, reports run uncached", "error", err)
		} else {
			cache = services.NewSummaryCache(redisAdap)
		}
	}

	if config.Get().AppDebugMetricsAddr != "" {
		if err := prom.Create(hostname(), config.Get().AppEnv, config.Get().PromNamespace); err != nil {
			logger.Warn("failed registering metrics", "error", err)
		}
		go prom.ListenAndServer(config.Get().AppDebugMetricsAddr, config.Get().AppDebugMetricsURI)
	}

	userRepo := repository.NewUserRepository(store)
	customerRepo := repository.NewCustomerRepository(store)
	deliveryRepo := repository.NewDeliveryRepository(store)

	// services
	tokens := token.NewManager(config.Get().JWTSecret, token.DefaultTTL)
	authService := services.NewAuthService(userRepo, tokens)
	customerService := services.NewCustomerService(customerRepo, authService)
	deliveryService := services.NewDeliveryService(deliveryRepo, customerRepo, userRepo)
	reportService := services.NewReportService(deliveryRepo, customerRepo, userRepo, authService, cache)

	// v1 handlers
	guard := handlers.NewGuard(authService)
	authHandler := handlers.NewAuthHandler(authService, config.Get().BootstrapAdminPassword)
	customerHandler := handlers.NewCustomerHandler(customerService)
	deliveryHandler := handlers.NewDeliveryHandler(deliveryService)
	reportHandler := handlers.NewReportHandler(reportService)
	healthHandler := handlers.NewHealthHandler(driver)

	g := s.Router.Group("/api/v1")
	handlers.RegisterAuthRoutes(g, authHandler, guard)
	handlers.RegisterCustomerRoutes(g, customerHandler, guard)
	handlers.RegisterDeliveryRoutes(g, deliveryHandler, guard)
	handlers.RegisterReportRoutes(g, reportHandler, guard)
	handlers.RegisterHealthRoutes(g, healthHandler)

	logger.Info("starting api", "version", version, "commit", commit, "build_date", date)

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
}

// openStore picks the configured backend. An unreachable postgres degrades
// to the in-memory store so the service still comes up in a dev or demo
// environment; durable deployments should treat the warning as fatal.
func openStore() (docstore.Store, string) {
	if config.Get().StoreDriver != "postgres" {
		return docstore.NewMemoryStore(), "memory"
	}
	db, err := docstore.OpenPostgres(docstore.Config{
		User:     config.Get().PostgresUser,
		Host:     config.Get().PostgresHost,
		Port:     config.Get().PostgresPort,
		Password: config.Get().PostgresPassword,
		Database: config.Get().PostgresDatabase,
	}, config.Get().AppEnv == "dev")
	if err != nil {
		logger.Warn("postgres unreachable, falling back to in-memory store", "error", err)
		return docstore.NewMemoryStore(), "memory"
	}
	return docstore.NewGormStore(db), "postgres"
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
