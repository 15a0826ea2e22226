package config

// Default returns a runnable configuration with every knob at its
// documented default.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Store.DataDir == "" {
		c.Store.DataDir = "data"
	}
	if c.Store.UsageFile == "" {
		c.Store.UsageFile = "template_usage.json"
	}
	if c.Store.GateLogDB == "" {
		c.Store.GateLogDB = "gate_reports.db"
	}
	if c.Recommender.ExplorationInterval == 0 {
		c.Recommender.ExplorationInterval = 5
	}
	if c.Recommender.RecentWindow == 0 {
		c.Recommender.RecentWindow = 3
	}
	if c.Recommender.HistoryCap == 0 {
		c.Recommender.HistoryCap = 10
	}
	if c.Recommender.ChampionMinSharpe == 0 {
		c.Recommender.ChampionMinSharpe = 1.5
	}
	if c.Feedback.HistoryCap == 0 {
		c.Feedback.HistoryCap = 50
	}
	if c.Feedback.TrendWindow == 0 {
		c.Feedback.TrendWindow = 10
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":9840"
	}
}
