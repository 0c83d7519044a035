package config

import "fmt"

func Load() error {
	if err := LoadEnv(); err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}
	if err := LoadFile(Env.ConfigPath); err != nil {
		return err
	}
	return nil
}
