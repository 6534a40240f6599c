package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gpu-price-tracker/src/analysis"
	"gpu-price-tracker/src/interfaces"
	"gpu-price-tracker/src/logger"
	"gpu-price-tracker/src/models"
	"gpu-price-tracker/src/views"
)

// TrendWindows are the windows offered to clients.
var TrendWindows = []string{"1", "3", "7", "30", "all"}

// -----------------------------------------------------------------------------
// HTTPServer
// -----------------------------------------------------------------------------

type HTTPServer struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	Store   interfaces.ISeriesStore
	Facade  *analysis.AnalysisFacade
	Metrics *Metrics

	// Now is the clock used for trend windows.
	Now func() time.Time

	engine     *gin.Engine
	httpServer *http.Server
}

var _ interfaces.IDataExchanger = (*HTTPServer)(nil)

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewHTTPServer(cfg *models.MConfig, store interfaces.ISeriesStore, log *logger.Logger) *HTTPServer {
	if log == nil {
		log = logger.Discard("HTTPServer")
	}
	// Set Gin mode
	if !strings.EqualFold(cfg.LogLevel, "DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &HTTPServer{
		Config:  cfg,
		Logger:  log,
		Store:   store,
		Facade:  analysis.NewAnalysisFacade(cfg, log.Named("Analysis")),
		Metrics: NewMetrics(),
		Now:     time.Now,
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.instrument())

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *HTTPServer) setupRoutes() {
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/series", s.listSeries)
	s.engine.GET("/api/series/:id", s.getSeries)
	s.engine.GET("/api/series/:id/latest", s.getLatest)
	s.engine.GET("/api/series/:id/trend", s.getTrend)

	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{})))
}

// Handler exposes the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.Metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		s.Metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *HTTPServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *HTTPServer) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *HTTPServer) getHealth(c *gin.Context) {
	keys, err := s.Store.Keys(c.Request.Context())
	if err != nil {
		s.Logger.Error("Health check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"series": len(keys),
	})
}

// -----------------------------------------------------------------------------

func (s *HTTPServer) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"gpu_types":         s.Config.Tracking.GPUTypes,
		"socket_partitions": s.Config.Tracking.SocketPartitions,
		"windows":           TrendWindows,
		"default_window":    s.Config.Viewer.DefaultWindow,
		"smoothing":         s.Config.Viewer.Smoothing,
	})
}

// -----------------------------------------------------------------------------

func (s *HTTPServer) listSeries(c *gin.Context) {
	keys, err := s.Store.Keys(c.Request.Context())
	if err != nil {
		s.Logger.Error("Listing series failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(keys))
	for _, k := range keys {
		out = append(out, gin.H{"id": k.ID(), "gpu_type": k.GPUType, "socket_type": k.SocketType, "label": k.String()})
	}
	c.JSON(http.StatusOK, gin.H{"series": out})
}

// -----------------------------------------------------------------------------

// isTracked reports whether the configuration asks for key.
func (s *HTTPServer) isTracked(key models.SeriesKey) bool {
	for _, k := range s.Facade.TrackedKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// readSeries loads the series named by the :id parameter. It writes the error
// response itself and returns ok=false when the handler should stop. An empty
// series is a 404 unless allowEmpty is set and the series is tracked.
func (s *HTTPServer) readSeries(c *gin.Context, allowEmpty bool) (models.SeriesKey, []models.Snapshot, bool) {
	id := c.Param("id")
	key := models.ParseSeriesID(id, s.Config.Tracking.SocketPartitions)

	series, err := s.Store.Read(c.Request.Context(), key)
	if err != nil {
		s.Metrics.LoadErrorsTotal.WithLabelValues(id).Inc()
		s.Logger.Error("Reading series %s failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "series_id": id})
		return key, nil, false
	}
	if len(series) == 0 && !(allowEmpty && s.isTracked(key)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "series not found", "series_id": id})
		return key, nil, false
	}
	s.Metrics.SeriesSnapshots.WithLabelValues(key.ID()).Set(float64(len(series)))
	return key, series, true
}

// -----------------------------------------------------------------------------

// getSeries streams the whole series as newline-delimited JSON. A tracked
// series without snapshots yet is an empty body.
func (s *HTTPServer) getSeries(c *gin.Context) {
	_, series, ok := s.readSeries(c, true)
	if !ok {
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "application/x-ndjson")
	enc := json.NewEncoder(c.Writer)
	for i := range series {
		if err := enc.Encode(&series[i]); err != nil {
			s.Logger.Error("Writing series failed: %v", err)
			return
		}
	}
}

// -----------------------------------------------------------------------------

func (s *HTTPServer) getLatest(c *gin.Context) {
	_, series, ok := s.readSeries(c, false)
	if !ok {
		return
	}
	report, _ := views.BuildLatestReport(series)
	c.JSON(http.StatusOK, report)
}

// -----------------------------------------------------------------------------

func (s *HTTPServer) getTrend(c *gin.Context) {
	windowParam := c.DefaultQuery("window", s.Config.Viewer.DefaultWindow)
	window, err := analysis.ParseTimeWindow(windowParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	smooth := s.Config.Viewer.Smoothing
	if raw, ok := c.GetQuery("smooth"); ok {
		if smooth, err = strconv.ParseBool(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid smooth flag"})
			return
		}
	}

	key, series, ok := s.readSeries(c, false)
	if !ok {
		return
	}

	points := s.Facade.Trend(series, window, smooth, s.Now().UTC())
	c.JSON(http.StatusOK, gin.H{
		"series_id": key.ID(),
		"window":    window.String(),
		"bucket":    analysis.RuleFor(window).Name,
		"smooth":    smooth,
		"points":    points,
	})
}
