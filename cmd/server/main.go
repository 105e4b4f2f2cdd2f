// Command talkie-server starts the Talkie HTTP API server.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/osokin/talkie/internal/migrate"
	"github.com/osokin/talkie/internal/repository/postgres"
	httpserver "github.com/osokin/talkie/internal/server/http"
	"github.com/osokin/talkie/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main parses configuration, runs migrations, and starts the HTTP server.
func main() {
	// .env is optional; flags win over environment values.
	_ = godotenv.Load()

	addr := flag.String("addr", ":8080", "listen address")
	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "PostgreSQL DSN")
	codeTTL := flag.Duration("code-ttl", 5*time.Minute, "verification code TTL")
	maxAttempts := flag.Int("max-attempts", 3, "failed verification attempts before a code is voided")
	dev := flag.Bool("dev", false, "echo verification codes in API responses (dev only)")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", *addr),
	)

	if *dsn == "" {
		logger.Fatal("missing PostgreSQL DSN (--dsn or DATABASE_URL)")
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, *dsn); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// DB pool
	db, err := postgres.New(ctx, *dsn)
	if err != nil {
		logger.Fatal("postgres.New", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	codeRepo := postgres.NewCodeRepo(db)
	friendRepo := postgres.NewFriendRepo(db)
	chatRepo := postgres.NewChatRepo(db)

	// Services
	authSvc := service.NewAuthService(codeRepo, userRepo, *codeTTL, *maxAttempts, *dev)
	userSvc := service.NewUserService(userRepo)
	friendSvc := service.NewFriendService(friendRepo)
	chatSvc := service.NewChatService(chatRepo)

	app := httpserver.New(authSvc, userSvc, friendSvc, chatSvc, logger)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", *addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
