package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/taskforge/taskforge/internal/api/handlers"
	"github.com/taskforge/taskforge/internal/api/middleware"
	"github.com/taskforge/taskforge/internal/auth"
	"github.com/taskforge/taskforge/internal/projects"
	"github.com/taskforge/taskforge/internal/tasks"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	AuthService    *auth.Service
	AllowedOrigins []string
	RateLimitReqs  int // requests per window, whole API
	RateLimitAuth  int // requests per window, /api/auth endpoints
	RateLimitSecs  int // window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimitReqs, cfg.RateLimitSecs).Middleware)
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		// Default to localhost for development - configure in production
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize services
	projectService := projects.NewService(cfg.DB)
	taskService := tasks.NewService(cfg.DB)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	userHandler := handlers.NewUserHandler()
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)

	r.Route("/api", func(r chi.Router) {
		// Public liveness probe
		r.Get("/health", healthHandler.Health)

		// Auth endpoints get their own stricter throttle
		r.Route("/auth", func(r chi.Router) {
			if cfg.RateLimitAuth > 0 {
				r.Use(middleware.NewRateLimiter(cfg.RateLimitAuth, cfg.RateLimitSecs).Middleware)
			}

			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.AuthService))
				r.Post("/logout", authHandler.Logout)
				r.Post("/logout-all", authHandler.LogoutAll)
				r.Post("/refresh", authHandler.Refresh)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.AuthService))

			r.Get("/user", userHandler.Me)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.List)
				r.Post("/", projectHandler.Create)
				r.Get("/{id}", projectHandler.Get)
				r.Put("/{id}", projectHandler.Update)
				r.Delete("/{id}", projectHandler.Delete)
				r.Get("/{id}/tasks", taskHandler.ListForProject)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Get("/{id}", taskHandler.Get)
				r.Put("/{id}", taskHandler.Update)
				r.Delete("/{id}", taskHandler.Delete)
			})
		})
	})

	return &Router{r}
}
