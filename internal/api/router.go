package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/linkdeck/linkdeck/internal/access"
	"github.com/linkdeck/linkdeck/internal/api/handlers"
	"github.com/linkdeck/linkdeck/internal/api/middleware"
	"github.com/linkdeck/linkdeck/internal/auth"
	"github.com/linkdeck/linkdeck/internal/clicks"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	AsynqClient    *asynq.Client
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow localhost in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize services
	accessService := access.NewService(cfg.DB)
	clickService := clicks.NewService(cfg.DB, cfg.AsynqClient, cfg.Logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	tenantHandler := handlers.NewTenantHandler(cfg.DB, accessService)
	profileHandler := handlers.NewProfileHandler(cfg.DB, accessService)
	sectionHandler := handlers.NewSectionHandler(cfg.DB, accessService)
	blockHandler := handlers.NewBlockHandler(cfg.DB, accessService)
	analyticsHandler := handlers.NewAnalyticsHandler(accessService, clickService)
	publicHandler := handlers.NewPublicHandler(cfg.DB)
	redirectHandler := handlers.NewRedirectHandler(cfg.DB, clickService, cfg.Logger)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Public profile surface
	r.Get("/p/{handle}", publicHandler.Profile)
	r.Get("/go/{handle}/{blockId}", redirectHandler.Go)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
				userID := middleware.GetUserID(r.Context())
				user, err := cfg.AuthService.GetUserByID(r.Context(), userID)
				if err != nil {
					http.Error(w, "User not found", http.StatusNotFound)
					return
				}
				writeJSON(w, http.StatusOK, user)
			})

			r.Route("/tenants", func(r chi.Router) {
				r.Get("/", tenantHandler.List)
				r.Get("/{slug}", tenantHandler.Get)
				r.Get("/{slug}/members", tenantHandler.Members)
				r.Post("/{slug}/members", tenantHandler.AddMember)
				r.Put("/{slug}/members/{userId}", tenantHandler.UpdateMember)
				r.Get("/{slug}/analytics", analyticsHandler.Get)
			})

			r.Route("/profiles", func(r chi.Router) {
				r.Post("/", profileHandler.Create)
				r.Get("/{id}", profileHandler.Get)
				r.Patch("/{id}", profileHandler.Update)
				r.Delete("/{id}", profileHandler.Delete)
			})

			r.Route("/sections", func(r chi.Router) {
				r.Post("/", sectionHandler.Create)
				r.Patch("/{id}", sectionHandler.Update)
				r.Delete("/{id}", sectionHandler.Delete)
			})

			r.Route("/blocks", func(r chi.Router) {
				r.Post("/", blockHandler.Create)
				r.Patch("/{id}", blockHandler.Update)
				r.Delete("/{id}", blockHandler.Delete)
			})
		})
	})

	return &Router{r}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
