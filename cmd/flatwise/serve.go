package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/flatwise/internal/auth"
	"github.com/mmynk/flatwise/internal/metrics"
	"github.com/mmynk/flatwise/internal/router"
	"github.com/mmynk/flatwise/internal/service"
	"github.com/mmynk/flatwise/internal/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the flatwise REST API. Migrations run on startup.

The server speaks HTTP/1.1 and cleartext HTTP/2 (h2c). A JWT secret is
required, set it with jwt.secret in the config file or FLATWISE_JWT_SECRET.`,
		RunE: runServe,
	}

	cmd.Flags().Int("port", 8080, "listen port")
	cmd.Flags().String("mode", "release", "gin mode (debug, release, test)")
	bindFlag(cmd, "server.port", "port")
	bindFlag(cmd, "server.mode", "mode")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	c := cfg
	if err := c.Validate(); err != nil {
		return err
	}

	store, err := sqlite.New(c.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", c.Database.Path)

	m := metrics.New()
	authenticator := auth.NewPasswordAuthenticator(store, c.Security.BcryptCost)
	jwtManager := auth.NewJWTManager(c.JWT.Secret, c.JWT.Issuer, c.JWT.Expiry())

	engine := router.Setup(c.Server.Mode, router.Services{
		Auth:         service.NewAuthService(authenticator, jwtManager, store, slog.Default()),
		Users:        service.NewUserService(store, authenticator),
		Flats:        service.NewFlatService(store, m),
		Items:        service.NewItemService(store, m),
		Transactions: service.NewTransactionService(store, m),
		Metrics:      m,
	})

	srv := &http.Server{
		Addr:              c.Server.Addr(),
		Handler:           h2c.NewHandler(engine, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", srv.Addr, "mode", c.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-cmd.Context().Done():
	}

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
