package main

import (
	"fmt"
	"net/http"
	_ "net/http/pprof" // profiling
	"os"

	"gdl/cmd"
	"gdl/config"
	"gdl/ext"
	"gdl/logger"
	"gdl/metrics"

	"go.uber.org/zap"
)

func main() {
	// load environment variables and configurations
	if err := config.Load(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(config.Env.LogLevel, config.Env.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zap.S().Debugf("loaded %d extractors", len(ext.List))

	// setup pprof profiler and metrics endpoint
	if config.Env.ProfilerPort > 0 {
		http.Handle("/metrics", metrics.Handler())
		go func() {
			zap.S().Infof("starting profiler on port %d", config.Env.ProfilerPort)
			if err := http.ListenAndServe(fmt.Sprintf(":%d", config.Env.ProfilerPort), nil); err != nil {
				zap.S().Errorf("failed to start profiler: %v", err)
			}
		}()
	}

	code := cmd.Execute()
	logger.Sync()
	os.Exit(code)
}
