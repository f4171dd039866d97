package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/altheia/backend/internal/middleware"
)

// RouterConfig carries the handlers and settings the router needs.
type RouterConfig struct {
	Auth     *AuthHandler
	Logs     *LogHandler
	Articles *ArticleHandler
	Chat     *ChatHandler
	Calendar *CalendarHandler

	Logger      *zap.Logger
	JWTSecret   string
	CORSOrigins []string
}

// NewRouter constructs the HTTP handler serving the Altheia API.
//
// Public routes: health checks, signup, login, and article listing.
// Everything else sits behind bearer-token authentication.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(cfg.Logger))

	// Health check endpoints
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"message": "Altheia Backend API is running",
		})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/auth/signup", cfg.Auth.SignUp)
			r.Post("/auth/login", cfg.Auth.Login)
		})
		r.Get("/articles", cfg.Articles.List)

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.JWTSecret))

			r.Get("/auth/me", cfg.Auth.Me)
			r.Put("/auth/me", cfg.Auth.UpdateMe)

			r.Route("/logs", func(r chi.Router) {
				r.Post("/", cfg.Logs.Upsert)
				r.Get("/", cfg.Logs.List)
				r.Delete("/{date}", cfg.Logs.Delete)
			})

			r.Post("/articles/refresh", cfg.Articles.Refresh)
			r.Post("/chat", cfg.Chat.Chat)

			r.Route("/google-calendar", func(r chi.Router) {
				r.Get("/auth", cfg.Calendar.Auth)
				r.Get("/callback", cfg.Calendar.Callback)
				r.Post("/disconnect", cfg.Calendar.Disconnect)
				r.Get("/status", cfg.Calendar.Status)
				r.Post("/sync", cfg.Calendar.SyncOne)
				r.Post("/sync-all", cfg.Calendar.SyncAll)
				r.Delete("/sync/{log_id}", cfg.Calendar.DeleteSync)
				r.Post("/toggle-sync", cfg.Calendar.ToggleSync)
			})
		})
	})

	return r
}
