// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"yamdb/internal/cache"
	"yamdb/internal/confirm"
	"yamdb/internal/database"
	"yamdb/internal/handlers"
	"yamdb/internal/mail"
	"yamdb/internal/router"
	"yamdb/internal/store"
	"yamdb/internal/token"
)

// mailBreakerTimeout is how long the mail circuit stays open.
const mailBreakerTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return err
		}
	}

	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	tokens, err := token.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
		token.NewValkeyRefreshStore(valkeyClient))
	if err != nil {
		return fmt.Errorf("token manager: %w", err)
	}
	codes := confirm.NewGenerator([]byte(cfg.JWTSecret), cfg.ConfirmationTTL)
	mailer := mail.NewBreaker(mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	}), mailBreakerTimeout)

	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	genreStore := store.NewGenreStore(db)
	titleStore := store.NewTitleStore(db)
	reviewStore := store.NewReviewStore(db)
	commentStore := store.NewCommentStore(db)

	pager := handlers.Pager{DefaultSize: cfg.PageSize, MaxSize: cfg.MaxPageSize}
	r := router.New(router.Handlers{
		Auth:       handlers.NewAuth(userStore, codes, tokens, mailer, cfg.SMTPFrom),
		Categories: handlers.NewCategories(categoryStore, pager),
		Genres:     handlers.NewGenres(genreStore, pager),
		Titles:     handlers.NewTitles(titleStore, categoryStore, genreStore, pager),
		Reviews:    handlers.NewReviews(titleStore, reviewStore, pager),
		Comments:   handlers.NewComments(reviewStore, commentStore, pager),
		Users:      handlers.NewUsers(userStore, pager),
	}, router.Options{
		Tokens:        tokens,
		Users:         userStore,
		CORSOrigins:   cfg.CORSOrigins,
		AuthRateLimit: cfg.AuthRateLimit,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
