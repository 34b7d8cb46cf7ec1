package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/database"
	"github.com/vancomm/minesweeper-engine/internal/middleware"
	"github.com/vancomm/minesweeper-engine/internal/records"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	cfg    *config.Config
	logger *logrus.Logger
	store  *session.Store
	jwt    *config.JWT
	ws     *config.WebSocket
	now    func() time.Time
}

func New(cfg *config.Config, logger *logrus.Logger) (*App, error) {
	jwt, err := config.NewJWT(cfg.Token)
	if err != nil {
		return nil, err
	}
	ws, err := config.NewWebSocket()
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:    cfg,
		logger: logger,
		store:  session.NewStore(),
		jwt:    jwt,
		ws:     ws,
		now:    time.Now,
	}

	return app, nil
}

// Handler returns the routes mounted under the base path, wrapped in the
// middleware chain.
func (a *App) Handler(recorder records.Recorder) http.Handler {
	router := http.NewServeMux()
	a.loadRoutes(router, recorder)

	var h http.Handler = router
	if base := strings.TrimRight(a.cfg.BasePath, "/"); base != "" {
		root := http.NewServeMux()
		root.Handle(base+"/", http.StripPrefix(base, router))
		h = root
	}

	return middleware.Wrap(
		h,
		middleware.Auth(a.logger, a.jwt),
		middleware.Cors(),
		middleware.Logging(a.logger),
	)
}

func (a *App) connectRecorder(ctx context.Context) (records.Recorder, error) {
	if !a.cfg.Database.Enabled() {
		a.logger.Warn("no database configured, finished games will not be recorded")
		return records.Nop{}, nil
	}
	url, err := a.cfg.Database.ConnString()
	if err != nil {
		return nil, err
	}
	db, err := database.ConnectAndMigrate(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to db: %w", err)
	}
	return records.NewPostgres(db), nil
}

// sweep drops sessions idle for longer than the configured TTL.
func (a *App) sweep() int {
	n := a.store.Sweep(a.now().Add(-a.cfg.Game.SessionTTL))
	if n > 0 {
		a.logger.WithFields(logrus.Fields{
			"evicted":   n,
			"remaining": a.store.Count(),
		}).Info("swept idle sessions")
	}
	return n
}

func (a *App) Start(ctx context.Context) error {
	recorder, err := a.connectRecorder(ctx)
	if err != nil {
		return err
	}
	defer recorder.Close()

	server := &http.Server{
		Addr:    a.cfg.Addr,
		Handler: a.Handler(recorder),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.WithField("addr", a.cfg.Addr).Info("server listening")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down")
		return server.Shutdown(ctx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(a.cfg.Game.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				a.sweep()
			}
		}
	})

	return g.Wait()
}
