package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "data", cfg.Store.DataDir)
	assert.Equal(t, 5, cfg.Recommender.ExplorationInterval)
	assert.Equal(t, 3, cfg.Recommender.RecentWindow)
	assert.Equal(t, 10, cfg.Recommender.HistoryCap)
	assert.Equal(t, 1.5, cfg.Recommender.ChampionMinSharpe)
	assert.Equal(t, 50, cfg.Feedback.HistoryCap)
	assert.Equal(t, 10, cfg.Feedback.TrendWindow)
	assert.Equal(t, ":9840", cfg.Server.Addr)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  env: prod
  log_level: warn
store:
  data_dir: /var/lib/alphaforge
  champion_db: champions.db
recommender:
  exploration_interval: 7
server:
  addr: ":8080"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, "warn", cfg.App.LogLevel)
	assert.Equal(t, 7, cfg.Recommender.ExplorationInterval)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	// untouched knobs keep their defaults
	assert.Equal(t, 3, cfg.Recommender.RecentWindow)
	assert.Equal(t, "template_usage.json", cfg.Store.UsageFile)
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"exploration interval too small", "recommender:\n  exploration_interval: 1\n", "exploration_interval"},
		{"history cap below window", "recommender:\n  recent_window: 5\n  history_cap: 3\n", "history_cap"},
		{"trend window too small", "feedback:\n  trend_window: 1\n", "trend_window"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0o644))
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestConfig_PathResolution(t *testing.T) {
	cfg := Default()
	cfg.Store.DataDir = "/srv/alphaforge"

	assert.Equal(t, "/srv/alphaforge/template_usage.json", cfg.UsagePath())
	assert.Equal(t, "/srv/alphaforge/gate_reports.db", cfg.GateLogDBPath())

	// champion repository is opt-in
	assert.Empty(t, cfg.ChampionDBPath())
	cfg.Store.ChampionDB = "champions.db"
	assert.Equal(t, "/srv/alphaforge/champions.db", cfg.ChampionDBPath())

	// absolute paths bypass the data dir
	cfg.Store.ChampionDB = "/tmp/other.db"
	assert.Equal(t, "/tmp/other.db", cfg.ChampionDBPath())
}
