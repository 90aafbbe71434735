package fakeapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Config configures the fake server.
type Config struct {
	BindAddress string
	Port        int
	// Token is the bearer token clients must present. Empty accepts anything.
	Token    string
	Username string
	// AutoLink links every issued OOB code to Token straight away.
	AutoLink bool
}

// Server is an in-process stand-in for the put.io API.
type Server struct {
	config  Config
	handler *Handler
	logger  *logrus.Logger
	router  *gin.Engine
	srv     *http.Server
}

// NewServer creates a fake server backed by store.
func NewServer(cfg Config, store *Store, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	if store == nil {
		store = NewStore()
	}

	// Set gin mode based on log level
	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("fake put.io request")
	})

	handler := NewHandler(cfg, store, logger)
	handler.Register(router.Group("/v2"))

	return &Server{
		config:  cfg,
		handler: handler,
		logger:  logger,
		router:  router,
	}
}

// Handler returns the HTTP handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store returns the backing store.
func (s *Server) Store() *Store {
	return s.handler.store
}

// StartWithContext serves until ctx is canceled, then shuts down gracefully.
func (s *Server) StartWithContext(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.BindAddress, s.config.Port)
	s.logger.Infof("Starting fake put.io API at http://%s/v2", addr)

	s.srv = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}
