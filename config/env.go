package config

import (
	"os"
	"strconv"

	"gdl/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var Env = GetDefaultConfig()

// LoadEnv reads an optional .env file, then overrides the defaults
// with whatever is set in the environment.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		zap.S().Warnf("failed to load .env file: %v", err)
	}
	if value := os.Getenv("CONFIG_PATH"); value != "" {
		Env.ConfigPath = value
	}
	if value := os.Getenv("BASE_DIRECTORY"); value != "" {
		Env.BaseDirectory = value
	}
	if value := os.Getenv("ARCHIVE_DSN"); value != "" {
		Env.ArchiveDSN = value
	}
	if value := os.Getenv("HTTP_PROXY"); value != "" {
		Env.HTTPProxy = value
	}
	if value := os.Getenv("HTTPS_PROXY"); value != "" {
		Env.HTTPSProxy = value
	}
	if value := os.Getenv("NO_PROXY"); value != "" {
		Env.NoProxy = value
	}
	if value := os.Getenv("PROFILER_PORT"); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			zap.S().Warnf("PROFILER_PORT env is not a valid integer: %s", value)
		} else {
			Env.ProfilerPort = port
		}
	}
	if value := os.Getenv("LOG_LEVEL"); value != "" {
		Env.LogLevel = value
	}
	if value := os.Getenv("LOG_FILE"); value != "" {
		Env.LogFile = value
	}
	return nil
}

func GetDefaultConfig() *models.EnvConfig {
	return &models.EnvConfig{
		ConfigPath:    "config.yaml",
		BaseDirectory: "downloads",
		LogLevel:      "info",
	}
}
