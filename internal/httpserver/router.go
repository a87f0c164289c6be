package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"messagely/internal/config"
	"messagely/internal/domain"
	"messagely/internal/security"
	"messagely/internal/service"
	"messagely/internal/ws"

	_ "messagely/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter constructs the main HTTP router and wires routes, services, and
// middleware. Repositories are passed in so tests can substitute stores.
func NewRouter(cfg *config.Config, users domain.UserRepository, messages domain.MessageRepository, hub *ws.Hub, tokenSvc *security.TokenService, passwordHasher *security.PasswordHasher) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Services
	authSvc := service.NewAuthService(users, tokenSvc, passwordHasher)
	userSvc := service.NewUserService(users)
	msgSvc := service.NewMessageService(messages, hub)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"messagely API","version":"1.0.0","docs":"/docs"}`))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// Auth routes (no auth required)
	r.Post("/login", handleLogin(authSvc))
	r.Post("/register", handleRegister(authSvc))

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(tokenSvc, users))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", handleListUsers(userSvc))

			r.Route("/{username}", func(r chi.Router) {
				r.Use(RequireCorrectUser)
				r.Get("/", handleGetUser(userSvc))
				r.Get("/to", handleMessagesTo(userSvc))
				r.Get("/from", handleMessagesFrom(userSvc))
			})
		})

		r.Route("/messages", func(r chi.Router) {
			r.Post("/", handleCreateMessage(msgSvc))
			r.Get("/{id}", handleGetMessage(msgSvc))
			r.Post("/{id}/read", handleMarkRead(msgSvc))
		})
	})

	// WebSocket endpoint
	r.Get("/ws", ws.MakeHandler(hub, tokenSvc, cfg.CORSOrigins))

	return r
}
