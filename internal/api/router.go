package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lexara-com/engage-sub006/internal/api/handler"
	custommiddleware "github.com/lexara-com/engage-sub006/internal/api/middleware"
	"github.com/lexara-com/engage-sub006/internal/config"
	"github.com/lexara-com/engage-sub006/internal/repository/redis"
	"github.com/lexara-com/engage-sub006/internal/security"
	"github.com/lexara-com/engage-sub006/internal/service"
)

// Deps carries the wired collaborators the router needs
type Deps struct {
	Store       handler.Pinger
	Sessions    *service.SessionService
	Conflicts   *service.ConflictService
	RateLimiter *redis.RateLimiter
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	tokenVerifier := security.NewServiceTokenVerifier(cfg.Auth.ServiceTokenHashes)

	authMiddleware := custommiddleware.NewAuthMiddleware(jwtManager)
	serviceTokenMiddleware := custommiddleware.NewServiceTokenMiddleware(tokenVerifier)
	rateLimitMiddleware := custommiddleware.NewRateLimitMiddleware(deps.RateLimiter)

	sessionHandler := handler.NewSessionHandler(deps.Sessions, cfg.Intake.MaxListLimit)
	goalHandler := handler.NewGoalHandler(deps.Sessions)
	conflictHandler := handler.NewConflictHandler(deps.Conflicts)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(deps.Store))

		r.Route("/firms/{firmID}", func(r chi.Router) {
			r.Use(custommiddleware.FirmContext)
			r.Use(rateLimitMiddleware.Limit)

			// Admin-portal routes
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)

				r.Route("/sessions", func(r chi.Router) {
					r.Get("/", sessionHandler.List)
					r.Post("/", sessionHandler.Create)
					r.Post("/expire", sessionHandler.ExpireIdle)

					r.Route("/{sessionID}", func(r chi.Router) {
						r.Get("/", sessionHandler.Get)
						r.Delete("/", sessionHandler.Delete)
						r.Get("/messages", sessionHandler.GetTranscript)
						r.Post("/messages", sessionHandler.PostMessage)
						r.Post("/auth", sessionHandler.MarkAuthenticated)
						r.Post("/terminate", sessionHandler.Terminate)
						r.Post("/goals/{goalID}/override", sessionHandler.OverrideGoal)
					})
				})

				r.Route("/parties", func(r chi.Router) {
					r.Get("/", conflictHandler.ListParties)
					r.Post("/", conflictHandler.CreateParty)
					r.Delete("/{partyID}", conflictHandler.DeleteParty)
				})
			})

			// MCP tool-caller routes
			r.Route("/tools/sessions/{sessionID}", func(r chi.Router) {
				r.Use(serviceTokenMiddleware.Authenticate)

				r.Post("/goals", goalHandler.AddGoals)
				r.Post("/goals/assessment", goalHandler.ApplyAssessment)
				r.Post("/conflict", conflictHandler.PushResult)
				r.Post("/conflict/check", conflictHandler.RunCheck)
			})
		})
	})

	return r
}
