// Package restserver exposes the route energy estimator over HTTP. It is
// the surface a dashboard or plotting frontend consumes; rendering is the
// frontend's concern.
package restserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/solarvoyage/internal/database"
	"github.com/chrissnell/solarvoyage/internal/estimator"
	"github.com/chrissnell/solarvoyage/internal/log"
	"github.com/chrissnell/solarvoyage/pkg/config"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx       context.Context
	wg        *sync.WaitGroup
	cfg       config.HTTPData
	Server    http.Server
	Estimator *estimator.Estimator
	DB        *database.Client
	DBEnabled bool
	logger    *zap.SugaredLogger
	handlers  *Handlers
}

// NewController creates a new REST server controller. db may be nil when no
// run-history storage is configured.
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg config.HTTPData, est *estimator.Estimator, db *database.Client, logger *zap.SugaredLogger) (*Controller, error) {
	if est == nil {
		return nil, errors.New("restserver requires an estimator")
	}

	ctrl := &Controller{
		ctx:       ctx,
		wg:        wg,
		cfg:       cfg,
		Estimator: est,
		DB:        db,
		DBEnabled: db != nil,
		logger:    logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	return ctrl, nil
}

func (c *Controller) router() http.Handler {
	router := mux.NewRouter().StrictSlash(true)

	router.HandleFunc("/healthz", c.handlers.Healthz).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/estimate", c.handlers.CreateEstimate).Methods(http.MethodPost)
	api.HandleFunc("/runs", c.handlers.ListRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", c.handlers.GetRun).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}/sample", c.handlers.GetRunSample).Methods(http.MethodGet)

	origins := c.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return handlers.CombinedLoggingHandler(
		&zapLogWriter{},
		handlers.CompressHandler(
			handlers.CORS(
				handlers.AllowedOrigins(origins),
				handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
				handlers.AllowedHeaders([]string{"Content-Type"}),
			)(router),
		),
	)
}

// zapLogWriter feeds the access log through the zap logger
type zapLogWriter struct{}

func (zapLogWriter) Write(p []byte) (int, error) {
	log.Debug(string(p))
	return len(p), nil
}

// StartController starts the HTTP server and arranges graceful shutdown
// when the controller context is cancelled.
func (c *Controller) StartController() error {
	c.Server = http.Server{
		Addr:         c.cfg.ListenAddr,
		Handler:      c.router(),
		ReadTimeout:  time.Duration(c.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(c.cfg.WriteTimeout) * time.Second,
	}

	log.Infof("Starting REST server on %s", c.cfg.ListenAddr)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("REST server shutdown error: %v", err)
		}
	}()

	return nil
}

func (c *Controller) String() string {
	return fmt.Sprintf("restserver[%s]", c.cfg.ListenAddr)
}
