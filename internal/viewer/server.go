// Package viewer serves the read-only experiment API: profiles,
// experiment listings, and the reconstructed marketplace report.
package viewer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/zulandar/marketlens/internal/analytics"
	"github.com/zulandar/marketlens/internal/config"
)

// StartOpts holds configuration for the viewer server.
type StartOpts struct {
	Config     *config.Config
	Port       int    // overrides cfg.Viewer.Port when > 0
	Experiment string // overrides cfg.Viewer.Experiment when set
	Out        io.Writer
}

// Start launches the viewer HTTP server. It blocks until ctx is
// cancelled, then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Config == nil {
		return fmt.Errorf("viewer: config is required")
	}
	port := opts.Port
	if port <= 0 {
		port = opts.Config.Viewer.Port
	}
	experiment := opts.Experiment
	if experiment == "" {
		experiment = opts.Config.Viewer.Experiment
	}

	srv := &server{cfg: opts.Config, experiment: experiment}

	// Optional scheduled precompute of the configured experiment's
	// report. The cache only ever holds complete, immutable reports.
	if spec := opts.Config.Viewer.RefreshCron; spec != "" && experiment != "" {
		c := cron.New()
		if _, err := c.AddFunc(spec, srv.refreshReport); err != nil {
			return fmt.Errorf("viewer: refresh cron %q: %w", spec, err)
		}
		c.Start()
		defer c.Stop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	registerRoutes(router, srv)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		httpSrv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Viewer running at http://localhost:%d\n", port)
		if experiment != "" {
			fmt.Fprintf(opts.Out, "Serving experiment %s\n", experiment)
		}
	}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}

// server holds per-process viewer state. The cached report is replaced
// wholesale under mu; request handlers otherwise share nothing.
type server struct {
	cfg        *config.Config
	experiment string

	mu     sync.RWMutex
	cached *analytics.Report
}

func (s *server) cachedReport() *analytics.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cached
}

func (s *server) storeReport(r *analytics.Report) {
	s.mu.Lock()
	s.cached = r
	s.mu.Unlock()
}
