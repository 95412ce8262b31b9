package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fcdesk/credvault/internal/logging"
)

// Handlers bundles the endpoint handlers the router mounts.
type Handlers struct {
	Login    *LoginHandler
	Otp      *OtpHandler
	Password *PasswordHandler
	Identity *IdentityHandler
	Internal *InternalHandler
}

// RouterConfig carries the transport-level settings.
type RouterConfig struct {
	// AllowedOrigins is the CORS allowlist; requests from other origins
	// never reach the handlers.
	AllowedOrigins []string

	// ServiceSecret gates the /internal routes.
	ServiceSecret string
}

// NewRouter mounts the API:
//
//	POST /api/login
//	POST /api/set-password
//	POST /api/request-otp
//	POST /api/verify-otp
//	POST /api/store-identity
//	POST /api/request-password-reset
//	POST /api/reset-password
//	POST /internal/resident-numbers   (service secret required)
func NewRouter(h Handlers, cfg RouterConfig, logger logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login.Login)
		r.Post("/set-password", h.Password.SetPassword)
		r.Post("/request-otp", h.Otp.Request)
		r.Post("/verify-otp", h.Otp.Verify)
		r.Post("/store-identity", h.Identity.Store)
		r.Post("/request-password-reset", h.Password.RequestReset)
		r.Post("/reset-password", h.Password.ResetPassword)
	})

	r.Route("/internal", func(r chi.Router) {
		r.Use(RequireServiceSecret(cfg.ServiceSecret))
		r.Post("/resident-numbers", h.Internal.ResidentNumbers)
	})

	return r
}
