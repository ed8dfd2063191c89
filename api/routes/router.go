package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gudangmitra/gudang-backend/api/controllers"
	"github.com/gudangmitra/gudang-backend/api/middleware"
	"github.com/gudangmitra/gudang-backend/internal/auth"
	"github.com/gudangmitra/gudang-backend/internal/facade"
	"github.com/gudangmitra/gudang-backend/pkg/config"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
	"github.com/gudangmitra/gudang-backend/pkg/logger"
)

// Deps carries everything the router wires into handlers. Redis and
// RateCounter are nil when redis is not configured.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       controllers.Pinger
	RateCounter middleware.RateCounter
	Auth        auth.Service
	Facade      *facade.Facade
	Metrics     prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger
	api := deps.Facade

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.LoginRateLimitPolicy{
		Window:     cfg.AuthRateLimit.LoginWindow,
		IPLimit:    cfg.AuthRateLimit.LoginIPLimit,
		EmailLimit: cfg.AuthRateLimit.LoginEmailLimit,
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.LoginRateLimit(loginPolicy, deps.RateCounter, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.LoginRateLimit(loginPolicy, deps.RateCounter, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		reviewer := middleware.RequireRoles(logg, enums.UserRoleAdmin, enums.UserRoleManager)

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", controllers.RequestsAction(api, logg))
			r.Get("/", controllers.ListRequests(api, logg))
			r.Post("/create", controllers.CreateRequest(api, logg))
			r.Get("/{id}", controllers.GetRequest(api, logg))
			r.Patch("/{id}", controllers.UpdateRequest(api, logg))
			r.Delete("/{id}", controllers.DeleteRequest(api, logg))
			r.Post("/{id}/comments", controllers.AddRequestComment(api, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.ListInventory(api, logg))
			r.Get("/{id}", controllers.GetInventoryItem(api, logg))
			r.With(reviewer).Post("/", controllers.CreateInventoryItem(api, logg))
			r.With(reviewer).Patch("/{id}", controllers.UpdateInventoryItem(api, logg))
			r.With(reviewer).Delete("/{id}", controllers.DeleteInventoryItem(api, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(api, logg))
			r.Get("/{id}", controllers.GetCategory(api, logg))
			r.With(reviewer).Post("/", controllers.CreateCategory(api, logg))
			r.With(reviewer).Patch("/{id}", controllers.UpdateCategory(api, logg))
			r.With(reviewer).Delete("/{id}", controllers.DeleteCategory(api, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.ListUsers(api, logg))
			r.Get("/{id}", controllers.GetUser(api, logg))
			r.With(reviewer).Post("/", controllers.CreateUser(api, logg))
			r.Patch("/{id}", controllers.UpdateUser(api, logg))
			r.With(reviewer).Delete("/{id}", controllers.DeleteUser(api, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(api, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(api, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(api, logg))
		})
	})

	return r
}
