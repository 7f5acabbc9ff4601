package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/undertheriver/sgsg/api/v1/database"
	"github.com/undertheriver/sgsg/api/v1/handlers"
	"github.com/undertheriver/sgsg/api/v1/middleware"
	"github.com/undertheriver/sgsg/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if cfg.Env == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	pool, err := database.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	auth := middleware.NewAuthMiddleware(cfg.JWTSecret, cfg.TokenExpiry)

	oauthHandler, err := handlers.NewOAuthHandler(pool, auth, handlers.OAuthOptions{
		GoogleClientID:         cfg.GoogleClientID,
		GoogleClientSecret:     cfg.GoogleClientSecret,
		RedirectBaseURL:        cfg.OAuthRedirectBaseURL,
		AuthorizedRedirectURIs: cfg.AuthorizedRedirectURIs,
		DefaultRedirectURL:     cfg.DefaultRedirectURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid OAuth configuration")
	}

	folderHandler := &handlers.FolderHandler{
		DB:              pool,
		FolderLimit:     cfg.FolderLimit,
		DefaultPageSize: cfg.DefaultPageSize,
	}
	memoHandler := &handlers.MemoHandler{DB: pool, FolderLimit: cfg.FolderLimit}
	userHandler := &handlers.UserHandler{DB: pool}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", handlers.HomeHandler)
	r.Get("/health", handlers.HealthHandler)

	r.Get("/oauth2/authorize/google", oauthHandler.Authorize)
	r.Get("/oauth2/callback/google", oauthHandler.Callback)

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(100, time.Minute))

		r.Get("/", handlers.ApiInfoHandler)

		r.Route("/v1", func(r chi.Router) {
			r.Use(auth.RequireAuth)

			r.Route("/folders", func(r chi.Router) {
				r.Post("/", folderHandler.CreateFolder)
				r.Get("/", folderHandler.GetFolders)
				r.Get("/color", folderHandler.GetNextFolderColor)
				r.Put("/{id}/title", folderHandler.UpdateFolderTitle)
				r.Delete("/{id}", folderHandler.DeleteFolder)
				r.Get("/{id}/memos", folderHandler.GetFolderMemos)
			})

			r.Route("/memos", func(r chi.Router) {
				r.Post("/", memoHandler.CreateMemo)
				r.Put("/{id}", memoHandler.UpdateMemo)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", userHandler.Me)
				r.Put("/secret-memo-password", userHandler.SetSecretMemoPassword)
			})
		})
	})

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
