// Package server wires the library application together: configuration,
// logging, the database pool and migrations, the optional Redis rate limiter,
// services and the HTTP server, plus signal handling and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/library/internal/logging"
	"github.com/dmitrijs2005/library/internal/server/config"
	"github.com/dmitrijs2005/library/internal/server/ratelimit"
	"github.com/dmitrijs2005/library/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/library/internal/server/rest"
	"github.com/dmitrijs2005/library/internal/server/services"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	redis          *redis.Client
	repomanager    repomanager.RepositoryManager
	accountService *services.AccountService
	bookService    *services.BookService
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	as, err := services.NewAccountService(db, rm, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("account service init error: %w", err)
	}
	bs := services.NewBookService(db, rm)

	app := &App{
		config:         c,
		logger:         logger,
		db:             db,
		repomanager:    rm,
		accountService: as,
		bookService:    bs,
	}

	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	}

	return app, nil
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

func (app *App) handler() *rest.Handler {
	opts := rest.Options{
		SecretKey:              []byte(app.config.SecretKey),
		LibraryAddRequiresAuth: app.config.LibraryAddRequiresAuth,
		EnableHashDemo:         app.config.EnableHashDemo,
	}
	if app.redis != nil {
		opts.Limiter = ratelimit.NewLimiter(app.redis, app.config.RateLimitRequests, app.config.RateLimitWindow, "auth")
	}
	return rest.NewHandler(app.accountService, app.bookService, app.logger, opts)
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	s := rest.NewHTTPServer(app.config.EndpointAddrHTTP, app.handler().Routes(), app.logger, app.config.ShutdownTimeout)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(ctx, "redis close error", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}

// Run migrates the schema and serves until a termination signal arrives or
// ctx is cancelled. A server that fails to start or stop cleanly makes Run
// return its error.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.close(ctx)

	app.logger.Info(ctx, "Starting app...")

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var (
		wg        sync.WaitGroup
		serverErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		serverErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	if serverErr != nil {
		return fmt.Errorf("http server error: %w", serverErr)
	}
	return nil
}
