// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// YaMDb API. Every resource group carries the permission policy that
// guards it; object-level checks happen inside the handlers.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yamdb/internal/handlers"
	"yamdb/internal/metrics"
	"yamdb/internal/middleware"
	"yamdb/internal/models"
	"yamdb/internal/permission"
)

// Handlers are the resource controllers mounted under /v1.
type Handlers struct {
	Auth       *handlers.Auth
	Categories *handlers.SlugResource[models.Category]
	Genres     *handlers.SlugResource[models.Genre]
	Titles     *handlers.Titles
	Reviews    *handlers.Reviews
	Comments   *handlers.Comments
	Users      *handlers.Users
}

// Options configure the middleware chain.
type Options struct {
	Tokens        middleware.TokenParser
	Users         middleware.UserLoader
	CORSOrigins   []string
	AuthRateLimit int // requests per minute per client IP on /v1/auth; 0 disables
}

// New creates and returns the configured Chi router.
func New(h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	// Set before any Route call so subrouters inherit them.
	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.SecureHeaders)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         86400,
	}))

	r.Get("/health", handlers.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.Tokens, opts.Users))

		r.Route("/auth", func(r chi.Router) {
			if opts.AuthRateLimit > 0 {
				r.Use(httprate.Limit(opts.AuthRateLimit, time.Minute,
					httprate.WithKeyFuncs(httprate.KeyByIP),
					httprate.WithLimitHandler(tooManyRequests),
				))
			}
			r.Post("/email", h.Auth.SendCode)
			r.Post("/signup", h.Auth.SendCode)
			r.Post("/token", h.Auth.Token)
			r.Post("/token/refresh", h.Auth.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(permission.CatalogPolicy))

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.Categories.List)
				r.Post("/", h.Categories.Create)
				r.Delete("/{slug}", h.Categories.Delete)
			})
			r.Route("/genres", func(r chi.Router) {
				r.Get("/", h.Genres.List)
				r.Post("/", h.Genres.Create)
				r.Delete("/{slug}", h.Genres.Delete)
			})
			r.Route("/titles", func(r chi.Router) {
				r.Get("/", h.Titles.List)
				r.Post("/", h.Titles.Create)
				r.Get("/{title_id}", h.Titles.Get)
				r.Patch("/{title_id}", h.Titles.Update)
				r.Delete("/{title_id}", h.Titles.Delete)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(permission.FeedbackPolicy))

			r.Route("/titles/{title_id}/reviews", func(r chi.Router) {
				r.Get("/", h.Reviews.List)
				r.Post("/", h.Reviews.Create)
				r.Get("/{review_id}", h.Reviews.Get)
				r.Patch("/{review_id}", h.Reviews.Update)
				r.Delete("/{review_id}", h.Reviews.Delete)

				r.Route("/{review_id}/comments", func(r chi.Router) {
					r.Get("/", h.Comments.List)
					r.Post("/", h.Comments.Create)
					r.Get("/{comment_id}", h.Comments.Get)
					r.Patch("/{comment_id}", h.Comments.Update)
					r.Delete("/{comment_id}", h.Comments.Delete)
				})
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(middleware.Authorize(permission.SelfPolicy)).Get("/me", h.Users.Me)
			r.With(middleware.Authorize(permission.SelfPolicy)).Patch("/me", h.Users.UpdateMe)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authorize(permission.UserAdminPolicy))
				r.Get("/", h.Users.List)
				r.Post("/", h.Users.Create)
				r.Get("/{username}", h.Users.Get)
				r.Patch("/{username}", h.Users.Update)
				r.Delete("/{username}", h.Users.Delete)
			})
		})
	})

	return r
}

// tooManyRequests is the JSON 429 returned by the auth rate limiter.
func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"detail":"Request was throttled."}`))
}
