package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/millennialbroker/broker-backend/api/routes"
	"github.com/millennialbroker/broker-backend/internal/auth"
	"github.com/millennialbroker/broker-backend/internal/clients"
	"github.com/millennialbroker/broker-backend/internal/insurers"
	"github.com/millennialbroker/broker-backend/internal/movements"
	"github.com/millennialbroker/broker-backend/internal/policies"
	"github.com/millennialbroker/broker-backend/internal/users"
	"github.com/millennialbroker/broker-backend/pkg/auth/session"
	"github.com/millennialbroker/broker-backend/pkg/config"
	"github.com/millennialbroker/broker-backend/pkg/db"
	"github.com/millennialbroker/broker-backend/pkg/logger"
	"github.com/millennialbroker/broker-backend/pkg/migrate"
	"github.com/millennialbroker/broker-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(userRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	clientsRepo := clients.NewRepository(dbClient.DB())
	clientsService, err := clients.NewService(clientsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create clients service", err)
		os.Exit(1)
	}

	insurersRepo := insurers.NewRepository(dbClient.DB())
	insurersService, err := insurers.NewService(insurersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create insurers service", err)
		os.Exit(1)
	}

	policiesService, err := policies.NewService(policies.ServiceParams{
		Repo:     policies.NewRepository(dbClient.DB()),
		Clients:  clientsRepo,
		Insurers: insurersRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create policies service", err)
		os.Exit(1)
	}

	movementsService, err := movements.NewService(movements.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create movements service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			clientsService,
			insurersService,
			policiesService,
			movementsService,
			usersService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
