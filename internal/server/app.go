// Package server initializes and runs the credential vault server. It loads
// configuration, opens the database and runs migrations, builds the crypto
// material and SMS client, wires the services, and serves the HTTP API with
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/fcdesk/credvault/internal/logging"
	"github.com/fcdesk/credvault/internal/piicrypt"
	"github.com/fcdesk/credvault/internal/server/config"
	"github.com/fcdesk/credvault/internal/server/httpapi"
	"github.com/fcdesk/credvault/internal/server/repositories/repomanager"
	"github.com/fcdesk/credvault/internal/server/services"
	"github.com/fcdesk/credvault/internal/sms"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	current, keys, err := cfg.PIIKeys()
	if err != nil {
		return nil, err
	}
	keyring, err := piicrypt.NewKeyring(current, keys)
	if err != nil {
		return nil, err
	}
	hasher, err := piicrypt.NewLookupHasher([]byte(cfg.LookupHashSalt))
	if err != nil {
		return nil, err
	}

	var sender sms.Sender
	if cfg.TestSMSMode {
		sender = sms.NoopSender{}
		logger.Warn(context.Background(), "test SMS mode is on, no real messages will be sent")
	} else {
		sender = sms.NewSENSClient(cfg.SENSAccessKey, cfg.SENSSecretKey, cfg.SENSServiceID, cfg.SMSFrom, "")
	}

	handlers := httpapi.Handlers{
		Login:    &httpapi.LoginHandler{Service: services.NewLoginService(db, rm), Logger: logger},
		Otp:      &httpapi.OtpHandler{Service: services.NewOtpService(db, rm, sender, cfg.TestSMSMode, cfg.TestSMSCode), Logger: logger},
		Password: &httpapi.PasswordHandler{Service: services.NewPasswordService(db, rm, sender, cfg.TestSMSMode, cfg.TestSMSCode), Logger: logger},
		Identity: &httpapi.IdentityHandler{Service: services.NewIdentityService(db, rm, keyring, hasher), Logger: logger},
		Internal: &httpapi.InternalHandler{Service: services.NewResidentNumberService(db, rm, keyring, logger), Logger: logger},
	}

	handler := httpapi.NewRouter(handlers, httpapi.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		ServiceSecret:  cfg.ServiceSecret,
	}, logger)

	return &App{config: cfg, logger: logger, db: db, handler: handler}, nil
}

// Run serves the HTTP API until the context is cancelled or a termination
// signal arrives, then shuts down gracefully.
func (app *App) Run(ctx context.Context) error {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.initSignalHandler(cancel)

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr, "environment", app.config.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		app.logger.Info(ctx, "shutting down")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}
