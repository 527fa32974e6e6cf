// Package http 提供HTTP服务器功能
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"grocerysales/display"
	"grocerysales/inference"
	"grocerysales/monitoring"
	"grocerysales/schema"
)

// Server HTTP服务器
type Server struct {
	server  *http.Server
	config  ServerConfig
	handler http.Handler
	logger  *zap.Logger
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	AllowedOrigins []string
	CacheSize      int
	MaxBodyBytes   int64
	Locale         string
	CurrencySymbol string
}

// DefaultServerConfig 默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8080,
		Timeout:        30 * time.Second,
		AllowedOrigins: []string{"*"},
		CacheSize:      1024,
		MaxBodyBytes:   64 << 10,
		Locale:         "en-US",
		CurrencySymbol: "$",
	}
}

// NewServer 创建HTTP服务器
func NewServer(config ServerConfig, adapter *inference.Adapter, metrics *monitoring.MetricsCollector, logger *zap.Logger) (*Server, error) {
	if adapter == nil {
		return nil, errors.New("inference adapter is required")
	}
	if metrics == nil {
		metrics = monitoring.NewMetricsCollector()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	validator, err := schema.CompileJSONSchema()
	if err != nil {
		return nil, err
	}
	cache, err := newPredictionCache(config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("prediction cache: %w", err)
	}
	formatter, err := display.NewFormatter(config.Locale, config.CurrencySymbol)
	if err != nil {
		return nil, err
	}

	h := &handlers{
		adapter:   adapter,
		validator: validator,
		cache:     cache,
		display:   formatter,
		metrics:   metrics,
		logger:    logger,
		upgrader:  newUpgrader(config.AllowedOrigins),
	}

	api := http.NewServeMux()
	RegisterHandlers(api, h)

	chain := Chain(
		RecoveryMiddleware(logger),             // 1. 恢复中间件（最先执行，捕获panic）
		LoggerMiddleware(logger),               // 2. 日志中间件
		SecurityHeadersMiddleware,              // 3. 安全头中间件
		CORSMiddleware(config.AllowedOrigins),  // 4. CORS中间件
		TimeoutMiddleware(config.Timeout),      // 5. 超时中间件
		RequestSizeMiddleware(config.MaxBodyBytes),
	)

	// The form socket is long lived and needs the raw connection, so it
	// skips the timeout and header middleware.
	root := http.NewServeMux()
	root.Handle("GET /api/ws/predict", Chain(RecoveryMiddleware(logger), LoggerMiddleware(logger))(http.HandlerFunc(h.handleFormSession)))
	root.Handle("/", chain(api))

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.Port),
			Handler:           root,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		config:  config,
		handler: root,
		logger:  logger,
	}, nil
}

// Handler returns the fully wired handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("starting http server",
		zap.String("addr", s.server.Addr),
		zap.String("form_socket", "/api/ws/predict"))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop 停止服务器
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down http server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Addr 返回服务器地址
func (s *Server) Addr() string {
	return s.server.Addr
}
