package viewer

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/marketlens/internal/agents"
	"github.com/zulandar/marketlens/internal/analytics"
	"github.com/zulandar/marketlens/internal/pipeline"
	"github.com/zulandar/marketlens/internal/store"
)

// registerRoutes sets up all viewer routes on the Gin router.
func registerRoutes(router *gin.Engine, s *server) {
	router.GET("/health", handleHealth())
	router.GET("/api/experiments", s.handleExperiments)
	router.GET("/api/customers", s.handleCustomers)
	router.GET("/api/businesses", s.handleBusinesses)
	router.GET("/api/marketplace-data", s.handleMarketplaceData)
}

func handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

func (s *server) handleExperiments(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	infos, err := store.ListExperiments(s.cfg.Storage, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, infos)
}

func (s *server) handleCustomers(c *gin.Context) {
	s.handleProfiles(c, agents.RoleCustomer)
}

func (s *server) handleBusinesses(c *gin.Context) {
	s.handleProfiles(c, agents.RoleBusiness)
}

// handleProfiles serves the roster of one role for the configured
// experiment. Each request opens and releases its own store handle.
func (s *server) handleProfiles(c *gin.Context, role string) {
	if s.experiment == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no experiment configured"})
		return
	}
	st, err := store.Open(s.cfg.Storage, s.experiment)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.Storage.FetchTimeout())
	defer cancel()
	rows, err := st.AllAgents(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	dir := agents.BuildDirectory(rows)
	if role == agents.RoleCustomer {
		c.JSON(http.StatusOK, dir.Customers())
		return
	}
	c.JSON(http.StatusOK, dir.Businesses())
}

func (s *server) handleMarketplaceData(c *gin.Context) {
	if s.experiment == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no experiment configured"})
		return
	}
	if cached := s.cachedReport(); cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}
	report, err := s.computeReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// computeReport runs one pipeline invocation against a fresh store
// handle.
func (s *server) computeReport(ctx context.Context) (*analytics.Report, error) {
	st, err := store.Open(s.cfg.Storage, s.experiment)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return pipeline.Run(ctx, st, pipeline.Options{
		FetchTimeout: s.cfg.Storage.FetchTimeout(),
	})
}

// refreshReport recomputes and caches the configured experiment's
// report. Best-effort: a failed refresh keeps the previous cache.
func (s *server) refreshReport() {
	report, err := s.computeReport(context.Background())
	if err != nil {
		log.Printf("viewer: refresh %s: %v", s.experiment, err)
		return
	}
	s.storeReport(report)
}
