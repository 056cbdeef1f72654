// Package trackerservice boots the regularity HTTP service: config,
// store, engine, routes, health checking and graceful shutdown.
package trackerservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/kaezarrex/regularity/internal/api"
	"github.com/kaezarrex/regularity/internal/api/recovery"
	"github.com/kaezarrex/regularity/internal/config"
	"github.com/kaezarrex/regularity/internal/engine"
	"github.com/kaezarrex/regularity/internal/factory"
	"github.com/kaezarrex/regularity/internal/health"
	"github.com/kaezarrex/regularity/internal/logger"
	"github.com/kaezarrex/regularity/internal/services"
	"github.com/kaezarrex/regularity/internal/store"
)

// Run starts the regularity service HTTP server and blocks until
// shutdown or error.
func Run() error {
	log := logger.New("regularity-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Int("contiguity_buffer_seconds", cfg.ContiguityBufferSeconds).
		Msg("Regularity service starting")

	// Cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return err
	}

	eng := engine.New(st, cfg.ContiguityBuffer())
	router := buildRouter(st, eng)

	svcHealth := startHealthCheckers(ctx, cfg, log, st)
	api.BindServiceHealth(svcHealth.IsHealthy)

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(st store.Store, eng *engine.Engine) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	// Owners
	owner := api.NewOwnerHandler(services.NewOwnerService(st))
	root.HandleFunc("/api/owners", owner.CreateOwner).Methods("POST")
	root.HandleFunc("/api/owners/{ownerId}", owner.GetOwner).Methods("GET")

	// Timelines
	timeline := api.NewTimelineHandler(services.NewTimelineService(st, eng))
	root.HandleFunc("/api/owners/{ownerId}/timelines", timeline.CreateTimeline).Methods("POST")
	root.HandleFunc("/api/owners/{ownerId}/timelines", timeline.ListTimelines).Methods("GET")

	// Dots
	dot := api.NewDotHandler(services.NewDotService(st))
	root.HandleFunc("/api/owners/{ownerId}/dots", dot.LogDot).Methods("POST")
	root.HandleFunc("/api/owners/{ownerId}/dots", dot.ListDots).Methods("GET")
	root.HandleFunc("/api/owners/{ownerId}/dots/{dotId}", dot.GetDot).Methods("GET")
	root.HandleFunc("/api/owners/{ownerId}/dots/{dotId}", dot.UpdateDot).Methods("PUT")
	root.HandleFunc("/api/owners/{ownerId}/dots/{dotId}", dot.DeleteDot).Methods("DELETE")

	// Dashes
	dash := api.NewDashHandler(services.NewDashService(st, eng))
	root.HandleFunc("/api/owners/{ownerId}/dashes", dash.LogDash).Methods("POST")
	root.HandleFunc("/api/owners/{ownerId}/dashes", dash.ListDashes).Methods("GET")
	root.HandleFunc("/api/owners/{ownerId}/dashes/{dashId}", dash.GetDash).Methods("GET")
	root.HandleFunc("/api/owners/{ownerId}/dashes/{dashId}", dash.DeleteDash).Methods("DELETE")

	// Pendings
	pending := api.NewPendingHandler(services.NewPendingService(st, eng))
	root.HandleFunc("/api/owners/{ownerId}/pendings", pending.StartPending).Methods("POST")
	root.HandleFunc("/api/owners/{ownerId}/pendings", pending.ListPendings).Methods("GET")
	root.HandleFunc("/api/owners/{ownerId}/pendings", pending.CancelPending).Methods("DELETE")
	root.HandleFunc("/api/owners/{ownerId}/pendings/finish", pending.FinishPending).Methods("POST")

	// Search + spliced event listing
	search := api.NewSearchHandler(services.NewSearchService(st))
	root.HandleFunc("/api/owners/{ownerId}/search", search.Search).Methods("GET")
	root.HandleFunc("/api/owners/{ownerId}/events", search.ListEvents).Methods("GET")

	// Health
	healthHandler := api.NewHealthHandler()
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	return root
}

// startHealthCheckers starts the store checker and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
