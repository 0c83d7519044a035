package models

import "time"

type EnvConfig struct {
	ConfigPath    string
	BaseDirectory string
	ArchiveDSN    string

	HTTPSProxy string
	HTTPProxy  string
	NoProxy    string

	ProfilerPort int
	LogLevel     string
	LogFile      string
}

// ExtractorConfig holds the typed per-extractor settings of the
// "extractor" tree of the config file.
type ExtractorConfig struct {
	HTTPProxy    string        `yaml:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy"`
	EdgeProxyURL string        `yaml:"edge_proxy_url"`
	Cookies      string        `yaml:"cookies"`
	UserAgent    string        `yaml:"user-agent"`
	Retries      int           `yaml:"retries"`
	Timeout      time.Duration `yaml:"timeout"`
	SleepRequest float64       `yaml:"sleep-request"`

	IsDisabled bool `yaml:"disabled"`
}
