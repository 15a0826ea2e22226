package app

import (
	"fmt"
	"strings"

	"alphaforge/internal/champion"
	"alphaforge/internal/config"
	"alphaforge/internal/feedback"
	"alphaforge/internal/gatelog"
	"alphaforge/internal/logger"
	"alphaforge/internal/rationale"
	"alphaforge/internal/recommend"
	"alphaforge/internal/template"
	apihttp "alphaforge/internal/transport/http"
	"alphaforge/internal/usage"
)

// Builder assembles the application from configuration. Construction is
// explicit: every engine receives its dependencies by reference, nothing
// is registered through import side effects.
type Builder struct {
	cfg *config.Config
}

func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg}
}

func (b *Builder) Build() (*App, error) {
	cfg := b.cfg
	if cfg == nil {
		return nil, fmt.Errorf("app builder requires a config")
	}

	registry, err := b.buildRegistry()
	if err != nil {
		return nil, err
	}

	store, err := usage.NewStore(cfg.UsagePath())
	if err != nil {
		return nil, fmt.Errorf("open usage store failed: %w", err)
	}

	app := &App{cfg: cfg}

	var champions champion.Repository
	if path := cfg.ChampionDBPath(); path != "" {
		repo, err := champion.NewGormRepository(path)
		if err != nil {
			return nil, fmt.Errorf("open champion repository failed: %w", err)
		}
		champions = repo
		app.closers = append(app.closers, repo.Close)
	} else {
		logger.Infof("champion repository disabled (no store.champion_db configured)")
	}

	gateLog, err := gatelog.NewStore(cfg.GateLogDBPath())
	if err != nil {
		return nil, fmt.Errorf("open gatelog store failed: %w", err)
	}
	app.closers = append(app.closers, gateLog.Close)

	recommender := recommend.New(registry, recommend.Options{
		Champions:           champions,
		Stats:               store,
		ExplorationInterval: cfg.Recommender.ExplorationInterval,
		RecentWindow:        cfg.Recommender.RecentWindow,
		HistoryCap:          cfg.Recommender.HistoryCap,
		ChampionMinSharpe:   cfg.Recommender.ChampionMinSharpe,
	})
	loop := feedback.NewIntegrator(recommender, store, feedback.Options{
		HistoryCap:  cfg.Feedback.HistoryCap,
		TrendWindow: cfg.Feedback.TrendWindow,
	})
	gen := rationale.NewGenerator(registry, store)

	server, err := apihttp.NewServer(apihttp.Deps{
		Addr:      cfg.Server.Addr,
		Loop:      loop,
		Usage:     store,
		Registry:  registry,
		Rationale: gen,
		GateLog:   gateLog,
	})
	if err != nil {
		return nil, err
	}

	app.server = server
	app.Loop = loop
	app.Usage = store
	app.Registry = registry
	app.GateLog = gateLog
	app.Rationale = gen
	return app, nil
}

func (b *Builder) buildRegistry() (*template.Registry, error) {
	path := strings.TrimSpace(b.cfg.Templates.Path)
	if path == "" {
		logger.Infof("template registry using built-in template set")
		return template.NewStaticRegistry(template.Builtin()), nil
	}
	registry, err := template.NewRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load template registry failed: %w", err)
	}
	return registry, nil
}
