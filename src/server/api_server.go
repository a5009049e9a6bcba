package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"stock-predictor/src/interfaces"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config  *models.MConfig
	Service interfaces.IStockService
	Logger  *logger.Logger
	Memory  heapReporter

	engine *gin.Engine
	http   *http.Server
	hub    *StreamHub

	cancel context.CancelFunc
}

// heapReporter is satisfied by utils.MemoryManager.
type heapReporter interface {
	GetProcessMemoryMB() float64
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *models.MConfig, svc interfaces.IStockService, mem heapReporter, log *logger.Logger) *APIServer {
	// Set Gin mode
	if !strings.EqualFold(cfg.LogLevel, "DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}

	log = log.Named("APIServer")
	engine := gin.New()
	engine.Use(gin.Recovery())
	if strings.EqualFold(cfg.LogLevel, "DEBUG") {
		engine.Use(gin.Logger())
	}
	engine.Use(cors.New(corsConfig(cfg.Cors)))

	interval := time.Duration(cfg.Stream.IntervalSeconds) * time.Second
	s := &APIServer{
		Config:  cfg,
		Service: svc,
		Logger:  log,
		Memory:  mem,
		engine:  engine,
		hub:     NewStreamHub(svc, interval, log.Named("StreamHub")),
	}
	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------

func corsConfig(c models.MCorsConfig) cors.Config {
	conf := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"*"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(c.AllowOrigins) == 0 || (len(c.AllowOrigins) == 1 && c.AllowOrigins[0] == "*") {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = c.AllowOrigins
		conf.AllowCredentials = true
	}
	return conf
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	s.engine.GET("/", s.getRoot)

	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/stocks/trending", s.getTrending)

	stock := api.Group("/stock/:ticker")
	stock.GET("", s.getPrice)
	stock.GET("/history", s.getHistory)
	stock.GET("/indicators", s.getIndicators)
	stock.GET("/predict/linear", s.getPredictLinear)
	stock.GET("/predict/lstm", s.getPredictLSTM)
	stock.GET("/news", s.getNews)
	stock.GET("/info", s.getInfo)
	stock.GET("/forecasts", s.getForecasts)

	// WebSocket endpoint
	s.engine.GET("/ws/stock/:ticker", s.handleWebSocket)
}

// Handler exposes the routes for tests and embedding.
func (s *APIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start blocks serving requests until Stop is called.
func (s *APIServer) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.hub.Run(ctx)

	s.Logger.Info("Starting server on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop drains in-flight requests and closes stream subscribers.
func (s *APIServer) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.http.Shutdown(ctx)
}

var _ interfaces.IAPIServer = (*APIServer)(nil)
