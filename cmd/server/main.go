package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gistree/server/auth"
	"github.com/gistree/server/identity"
	"github.com/gistree/server/internal/config"
	"github.com/gistree/server/internal/logging"
	"github.com/gistree/server/internal/metrics"
	"github.com/gistree/server/messages"
	"github.com/gistree/server/server"
	"github.com/gistree/server/storage/sqlite"
	"github.com/gistree/server/token"
	"github.com/gistree/server/token/jwt"
	"github.com/gistree/server/trees"
	"github.com/gistree/server/users"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const revocationCleanupInterval = 10 * time.Minute

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run() error {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	c, err := config.Load()
	if err != nil {
		return err
	}
	if err := logging.Setup(c.GetEnv(), c.GetLogLevel(), os.Stdout); err != nil {
		return err
	}
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(ctx, c.GetDBPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Err(err).Msg("failed to close database")
		}
	}()

	idp, err := identity.NewProvider(ctx, c)
	if err != nil {
		return err
	}

	signer, err := token.NewHMACSigner(c.GetJWTSecret())
	if err != nil {
		return err
	}
	revoked := token.NewInMemoryRevokedTokenCache()
	go token.RunCleanup(ctx, revoked, revocationCleanupInterval)

	userStore := sqlite.NewUserStore(db)
	ornamentStore := sqlite.NewOrnamentStore(db)
	resolver := users.NewResolver(userStore, c.GetAllowedEmailDomains(), ornamentStore)

	handler, err := server.New(c, server.Dependencies{
		Login:         auth.NewLoginService(idp, resolver, jwt.NewCreator(signer, c.GetSessionTTL()), c.GetFrontendURL()),
		Sessions:      jwt.NewInspector(signer, revoked),
		Revoked:       revoked,
		Users:         userStore,
		Messages:      messages.NewService(sqlite.NewMessageStore(db), userStore, ornamentStore),
		Ornaments:     ornamentStore,
		Trees:         trees.NewService(sqlite.NewTreeStore(db), userStore, ornamentStore),
		Notifications: sqlite.NewNotificationStore(db),
		Health:        db,
		Metrics:       metrics.New(),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(srv) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return shutdown(srv)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
