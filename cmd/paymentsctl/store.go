package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/damon-houk/payment-query-service/internal/config"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/logger"
)

// loadConfig reads the --config flag and builds a logger that writes to
// stderr so stdout stays machine-readable
func loadConfig(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	level, _ := cfg.Level()
	return cfg, logger.NewJSONLogger(os.Stderr, level), nil
}
