package phishk

// EngineConfig for detection
type EngineConfig struct {
	EnabledDefault bool `toml:"enabled_default"` // used when the store has no flag
}

// ReportConfig where reports are sent
type ReportConfig struct {
	Endpoint  string `toml:"endpoint"`   // host threat intake, empty disables http dispatch
	TimeoutMS int    `toml:"timeout_ms"` // per report dispatch timeout
}

// StoreConfig for the settings/lists database
type StoreConfig struct {
	DataPath string `toml:"data_path"`
}

// ServerConfig for the host service
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// BrowserConfig for live page monitoring
type BrowserConfig struct {
	Chrome         string `toml:"chrome"`           // path to chrome, empty uses platform default
	LeaserSocket   string `toml:"leaser_socket"`    // lease browsers from this unix socket instead of starting chrome
	PollIntervalMS int    `toml:"poll_interval_ms"` // how often page changes are collected
	LoadTimeoutMS  int    `toml:"load_timeout_ms"`
}

// Config for phishker
type Config struct {
	URL     string        `toml:"url"`
	Engine  EngineConfig  `toml:"engine"`
	Report  ReportConfig  `toml:"report"`
	Store   StoreConfig   `toml:"store"`
	Server  ServerConfig  `toml:"server"`
	Browser BrowserConfig `toml:"browser"`
}

// DefaultConfig values, callers overwrite with file and flag values
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{EnabledDefault: true},
		Report: ReportConfig{TimeoutMS: 3000},
		Store:  StoreConfig{DataPath: "phishkerdata"},
		Server: ServerConfig{Addr: "127.0.0.1:8087"},
		Browser: BrowserConfig{
			PollIntervalMS: 250,
			LoadTimeoutMS:  30000,
		},
	}
}
