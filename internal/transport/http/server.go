// Package apihttp exposes the recommendation, usage and gate operations
// over a minimal REST surface.
package apihttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"alphaforge/internal/feedback"
	"alphaforge/internal/gatelog"
	"alphaforge/internal/logger"
	"alphaforge/internal/rationale"
	"alphaforge/internal/template"
	"alphaforge/internal/usage"

	"github.com/gin-gonic/gin"
)

// Server hosts the /api/v1 surface.
type Server struct {
	addr   string
	router *gin.Engine
}

// Deps wires the server to the core engines.
type Deps struct {
	Addr      string
	Loop      *feedback.Integrator
	Usage     *usage.Store
	Registry  *template.Registry
	Rationale *rationale.Generator
	GateLog   *gatelog.Store
}

func NewServer(deps Deps) (*Server, error) {
	if deps.Loop == nil || deps.Usage == nil || deps.Registry == nil {
		return nil, errors.New("api server requires loop, usage store and registry")
	}
	if deps.Addr == "" {
		deps.Addr = ":9840"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &handlers{deps: deps}
	h.register(router.Group("/api/v1"))

	return &Server{addr: deps.Addr, router: router}, nil
}

// Handler exposes the underlying router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("api server listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api server shutdown failed: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}
		c.Next()
		logger.Debugf("http %s %s status=%d dur=%s client=%s",
			method, path, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}
