package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/millennialbroker/broker-backend/api/controllers"
	"github.com/millennialbroker/broker-backend/api/middleware"
	"github.com/millennialbroker/broker-backend/internal/auth"
	"github.com/millennialbroker/broker-backend/internal/clients"
	"github.com/millennialbroker/broker-backend/internal/insurers"
	"github.com/millennialbroker/broker-backend/internal/movements"
	"github.com/millennialbroker/broker-backend/internal/policies"
	"github.com/millennialbroker/broker-backend/internal/users"
	"github.com/millennialbroker/broker-backend/pkg/auth/session"
	"github.com/millennialbroker/broker-backend/pkg/config"
	"github.com/millennialbroker/broker-backend/pkg/db"
	"github.com/millennialbroker/broker-backend/pkg/enums"
	"github.com/millennialbroker/broker-backend/pkg/logger"
	"github.com/millennialbroker/broker-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database *db.Client,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	authService auth.Service,
	clientsService clients.Service,
	insurersService insurers.Service,
	policiesService policies.Service,
	movementsService movements.Service,
	usersService users.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, database, redisClient, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.With(middleware.Auth(cfg.JWT, sessionChecker, logg)).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", controllers.ClientList(clientsService, logg))
			r.Get("/{clientId}", controllers.ClientGet(clientsService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireWrite(logg))
				r.Post("/", controllers.ClientCreate(clientsService, logg))
				r.Patch("/{clientId}", controllers.ClientUpdate(clientsService, logg))
				r.Delete("/{clientId}", controllers.ClientDelete(clientsService, logg))
			})
		})

		r.Route("/insurers", func(r chi.Router) {
			r.Get("/", controllers.InsurerList(insurersService, logg))
			r.Get("/{insurerId}", controllers.InsurerGet(insurersService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireWrite(logg))
				r.Post("/", controllers.InsurerCreate(insurersService, logg))
				r.Patch("/{insurerId}", controllers.InsurerUpdate(insurersService, logg))
			})
		})

		r.Route("/policies", func(r chi.Router) {
			r.Get("/", controllers.PolicyList(policiesService, logg))
			r.Get("/{policyId}", controllers.PolicyGet(policiesService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireWrite(logg))
				r.Post("/", controllers.PolicyCreate(policiesService, logg))
			})
		})

		r.Route("/movements", func(r chi.Router) {
			r.Get("/", controllers.MovementList(movementsService, logg))
			r.Get("/{movementId}", controllers.MovementGet(movementsService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireWrite(logg))
				r.Post("/", controllers.MovementCreate(movementsService, logg))
				r.Post("/{movementId}/approve", controllers.MovementApprove(movementsService, logg))
				r.Post("/{movementId}/apply", controllers.MovementApply(movementsService, logg))
				r.Delete("/{movementId}", controllers.MovementDelete(movementsService, logg))
			})
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", controllers.DocumentList(movementsService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
			r.Get("/", controllers.UserList(usersService, logg))
			r.Get("/{userId}", controllers.UserGet(usersService, logg))
			r.Post("/", controllers.UserCreate(usersService, logg))
			r.Post("/{userId}/reset-password", controllers.UserResetPassword(usersService, logg))
			r.Patch("/{userId}/active", controllers.UserSetActive(usersService, logg))
		})
	})

	return r
}
