package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load reads the YAML config at path and applies defaults plus validation.
// A missing file is not an error: the defaults describe a runnable setup.
func Load(path string) (*Config, error) {
	cfg := Default()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return cfg, nil
	}
	v := viper.New()
	v.SetConfigFile(abs)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file failed (%s): %w", abs, err)
	}
	if err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	cfg.applyDefaults()
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Recommender.ExplorationInterval < 2 {
		return fmt.Errorf("recommender.exploration_interval must be >= 2, got %d", cfg.Recommender.ExplorationInterval)
	}
	if cfg.Recommender.RecentWindow < 1 {
		return fmt.Errorf("recommender.recent_window must be >= 1, got %d", cfg.Recommender.RecentWindow)
	}
	if cfg.Recommender.HistoryCap < cfg.Recommender.RecentWindow {
		return fmt.Errorf("recommender.history_cap (%d) must not be smaller than recent_window (%d)",
			cfg.Recommender.HistoryCap, cfg.Recommender.RecentWindow)
	}
	if cfg.Feedback.HistoryCap < 1 {
		return fmt.Errorf("feedback.history_cap must be >= 1, got %d", cfg.Feedback.HistoryCap)
	}
	if cfg.Feedback.TrendWindow < 2 {
		return fmt.Errorf("feedback.trend_window must be >= 2, got %d", cfg.Feedback.TrendWindow)
	}
	if strings.TrimSpace(cfg.Store.DataDir) == "" {
		return fmt.Errorf("store.data_dir cannot be empty")
	}
	return nil
}

// UsagePath resolves the usage ledger location under the data dir.
func (c *Config) UsagePath() string {
	return c.resolve(c.Store.UsageFile)
}

// ChampionDBPath resolves the champion repository database path.
// Empty means the champion repository is disabled.
func (c *Config) ChampionDBPath() string {
	if strings.TrimSpace(c.Store.ChampionDB) == "" {
		return ""
	}
	return c.resolve(c.Store.ChampionDB)
}

// GateLogDBPath resolves the gate-report history database path.
func (c *Config) GateLogDBPath() string {
	return c.resolve(c.Store.GateLogDB)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Store.DataDir, name)
}
