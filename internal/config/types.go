package config

// Config is the top-level configuration carrier for alphaforge.
type Config struct {
	App         AppConfig         `yaml:"app"`
	Store       StoreConfig       `yaml:"store"`
	Templates   TemplatesConfig   `yaml:"templates"`
	Recommender RecommenderConfig `yaml:"recommender"`
	Feedback    FeedbackConfig    `yaml:"feedback"`
	Server      ServerConfig      `yaml:"server"`
}

type AppConfig struct {
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	LogPath  string `yaml:"log_path"`
}

// StoreConfig points the durable stores at their on-disk locations.
// UsageFile holds the append-only usage ledger; ChampionDB and GateLogDB
// are SQLite files. An empty ChampionDB disables champion enrichment.
type StoreConfig struct {
	DataDir    string `yaml:"data_dir"`
	UsageFile  string `yaml:"usage_file"`
	ChampionDB string `yaml:"champion_db"`
	GateLogDB  string `yaml:"gatelog_db"`
}

// TemplatesConfig selects the template registry source. When Path is empty
// the built-in template set is used and hot reload is disabled.
type TemplatesConfig struct {
	Path string `yaml:"path"`
}

type RecommenderConfig struct {
	ExplorationInterval int     `yaml:"exploration_interval"`
	RecentWindow        int     `yaml:"recent_window"`
	HistoryCap          int     `yaml:"history_cap"`
	ChampionMinSharpe   float64 `yaml:"champion_min_sharpe"`
}

type FeedbackConfig struct {
	HistoryCap  int `yaml:"history_cap"`
	TrendWindow int `yaml:"trend_window"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}
