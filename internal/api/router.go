package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/viewtube-app/viewtube-be/internal/api/handlers"
	"github.com/viewtube-app/viewtube-be/internal/auth"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(corsOrigin string, issuer *auth.TokenIssuer, userHandler *handlers.UserHandler, subscriptionHandler *handlers.SubscriptionHandler) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1/users", func(r chi.Router) {
		// Public routes
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Post("/refresh-token", userHandler.RefreshToken)

		// Routes requiring a valid access token
		r.Group(func(r chi.Router) {
			r.Use(issuer.Middleware())

			r.Post("/logout", userHandler.Logout)
			r.Post("/change-password", userHandler.ChangePassword)
			r.Get("/current-user", userHandler.GetCurrentUser)
			r.Patch("/account-details", userHandler.UpdateAccountDetails)
			r.Patch("/avatar", userHandler.UpdateAvatar)
			r.Patch("/cover-image", userHandler.UpdateCoverImage)

			r.Get("/channel/{username}", subscriptionHandler.ChannelProfile)
			r.Post("/subscriptions/{channelId}", subscriptionHandler.Toggle)
		})
	})

	return r
}
