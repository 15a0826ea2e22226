// Package app wires configuration, stores and engines into a runnable
// service.
package app

import (
	"context"

	"alphaforge/internal/config"
	"alphaforge/internal/feedback"
	"alphaforge/internal/gatelog"
	"alphaforge/internal/logger"
	"alphaforge/internal/rationale"
	"alphaforge/internal/template"
	apihttp "alphaforge/internal/transport/http"
	"alphaforge/internal/usage"

	"golang.org/x/sync/errgroup"
)

// App is the assembled service. The exported fields let CLI subcommands
// reach the engines without going through HTTP.
type App struct {
	cfg     *config.Config
	server  *apihttp.Server
	closers []func() error

	Loop      *feedback.Integrator
	Usage     *usage.Store
	Registry  *template.Registry
	GateLog   *gatelog.Store
	Rationale *rationale.Generator
}

// New builds the application from config.
func New(cfg *config.Config) (*App, error) {
	return NewBuilder(cfg).Build()
}

// Run serves the HTTP API until ctx is cancelled, then closes the stores.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.server.Run(ctx)
	})
	return g.Wait()
}

// Close releases every store in reverse construction order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warnf("close failed: %v", err)
		}
	}
	a.closers = nil
}
