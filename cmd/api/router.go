package main

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/config"
	"github.com/inkwell/inkwell/internal/handlers"
	"github.com/inkwell/inkwell/internal/middleware"
	"github.com/inkwell/inkwell/internal/repo"
	"github.com/inkwell/inkwell/internal/storage"
)

// newRouter wires repositories, handlers, and the middleware chain. It is a
// pure function of its inputs so tests can build the full API around a
// sqlmock-backed DB.
func newRouter(db *sql.DB, files storage.FileStore, cfg config.Config) chi.Router {
	tokens := &auth.Tokens{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL()}

	userRepo := repo.NewUserRepo(db)
	postRepo := repo.NewPostRepo(db)

	useTLS := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""

	authHandler := &handlers.AuthHandler{UserRepo: userRepo, Tokens: tokens, SecureCookie: useTLS}
	postHandler := &handlers.PostHandler{Posts: postRepo, Users: userRepo, Files: files}
	userHandler := &handlers.UserHandler{UserRepo: userRepo}
	uploadHandler := &handlers.UploadHandler{Files: files, MaxBytes: cfg.UploadMaxBytes}

	requireAuth := middleware.RequireAuth(tokens)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(useTLS))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Local uploads are served straight off disk; the s3 backend returns
	// absolute bucket URLs instead, so no route is needed there.
	if local, ok := files.(*storage.LocalStore); ok {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.Dir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AuthRateLimiter().Middleware)
			r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
		})

		r.Route("/posts", func(r chi.Router) {
			// Read paths are public.
			r.Get("/", postHandler.ListPosts)
			r.Get("/{id}", postHandler.GetPost)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
				r.Post("/", postHandler.CreatePost)
				r.Put("/{id}", postHandler.UpdatePost)
				r.Delete("/{id}", postHandler.DeletePost)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{id}", userHandler.GetUser)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
				r.Put("/{id}", userHandler.UpdateUser)
			})
		})

		// Upload carries no session guard. Size and content-type checks
		// still apply.
		r.Post("/upload", uploadHandler.Upload)
	})

	return r
}
