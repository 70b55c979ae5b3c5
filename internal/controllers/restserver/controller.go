package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/powerstats/internal/controllers/reloader"
	"github.com/chrissnell/powerstats/internal/log"
	"github.com/chrissnell/powerstats/internal/snapshot"
	"github.com/chrissnell/powerstats/pkg/config"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Reloader rebuilds the served snapshot on demand
type Reloader interface {
	Reload(ctx context.Context, force bool) (reloader.Result, error)
}

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	holder     *snapshot.Holder
	reloader   Reloader
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller. rl may be nil, in which case the
// reload endpoint answers 404.
func NewController(ctx context.Context, wg *sync.WaitGroup, holder *snapshot.Holder, rc config.RESTServerData, rl Reloader, logger *zap.SugaredLogger) (*Controller, error) {
	if holder == nil {
		return nil, fmt.Errorf("REST server needs a snapshot holder")
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		holder:     holder,
		reloader:   rl,
		logger:     logger,
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if ctrl.restConfig.ListenAddr == "" {
		logger.Info("rest.listen-addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		ctrl.restConfig.ListenAddr = config.DefaultListenAddr
	}

	// Set default HTTP port if not specified
	if ctrl.restConfig.HTTPPort == 0 {
		logger.Infof("rest.http-port not provided; defaulting to %d", config.DefaultHTTPPort)
		ctrl.restConfig.HTTPPort = config.DefaultHTTPPort
	}

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", ctrl.restConfig.ListenAddr, ctrl.restConfig.HTTPPort)
	ctrl.Server.Handler = ctrl.Handler()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Infof("Starting REST server controller on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.TLSCertPath != "" && c.restConfig.TLSKeyPath != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.TLSCertPath, c.restConfig.TLSKeyPath); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// Handler returns the complete HTTP handler with middleware applied
func (c *Controller) Handler() http.Handler {
	var h http.Handler = c.setupRouter()

	if c.restConfig.EnableCORS {
		h = handlers.CORS(
			handlers.AllowedOrigins([]string{"*"}),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Accept", "Content-Type"}),
		)(h)
	}

	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{c.logger}),
		handlers.PrintRecoveryStack(true),
	)(h)

	return httpLogMiddleware(h)
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/years", c.handlers.GetYears).Methods(http.MethodGet)
	api.HandleFunc("/years/{year}", c.handlers.GetYear).Methods(http.MethodGet)
	api.HandleFunc("/years/{year}/months/{month}/timeline", c.handlers.GetMonthTimeline).Methods(http.MethodGet)
	api.HandleFunc("/days/{date}", c.handlers.GetDay).Methods(http.MethodGet)
	api.HandleFunc("/days/{date}/segments", c.handlers.GetDaySegments).Methods(http.MethodGet)
	api.HandleFunc("/days/{date}/status", c.handlers.GetMinuteStatus).Methods(http.MethodGet)
	api.HandleFunc("/summary", c.handlers.GetSummary).Methods(http.MethodGet)
	api.HandleFunc("/status", c.handlers.GetStatus).Methods(http.MethodGet)
	api.HandleFunc("/logs/http", c.handlers.GetHTTPLogs).Methods(http.MethodGet)
	api.HandleFunc("/reload", c.handlers.PostReload).Methods(http.MethodPost)

	router.HandleFunc("/healthz", c.handlers.Healthz).Methods(http.MethodGet)

	return router
}
