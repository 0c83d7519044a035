package models

import (
	"net/http"
	"time"
)

type DownloadConfig struct {
	ChunkSize       int               // size of each chunk in bytes
	Concurrency     int               // maximum number of concurrent chunk requests
	Timeout         time.Duration     // timeout for individual HTTP requests
	RetryAttempts   int               // number of retry attempts per chunk
	RetryDelay      time.Duration     // delay between retries
	ProgressUpdater func(float64)     // optional function to report download progress
	Headers         map[string]string // custom HTTP headers for the request
	Cookies         []*http.Cookie    // cookies to send with the request
	Client          HTTPClient        // defaults to the shared download client
}

func DefaultDownloadConfig() *DownloadConfig {
	return &DownloadConfig{
		ChunkSize:     10 * 1024 * 1024, // 10MB
		Concurrency:   4,
		Timeout:       30 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    2 * time.Second,
		Headers:       make(map[string]string),
		Cookies:       make([]*http.Cookie, 0),
	}
}

// GetDownloadConfig returns the provided config with defaults filled in,
// or a default config when it is nil.
func GetDownloadConfig(config *DownloadConfig) *DownloadConfig {
	if config == nil {
		return DefaultDownloadConfig()
	}
	config.Ensure()
	return config
}

func (cfg *DownloadConfig) Ensure() {
	defaultConfig := DefaultDownloadConfig()

	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultConfig.ChunkSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConfig.Concurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultConfig.Timeout
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultConfig.RetryAttempts
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = defaultConfig.RetryDelay
	}
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}
	if cfg.Cookies == nil {
		cfg.Cookies = make([]*http.Cookie, 0)
	}
}
