package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/blekbd/pkg/config"
)

// configureLogger creates a logger whose level comes from --log-level, then
// --verbose, then the configuration file.
func configureLogger(cmd *cobra.Command, cfg *config.Config) (*logrus.Logger, error) {
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		if _, err := logrus.ParseLevel(lvl); err != nil {
			return nil, fmt.Errorf("invalid log level: %s (must be trace, debug, info, warn, or error)", lvl)
		}
		cfg.LogLevel = lvl
	} else if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = logrus.DebugLevel.String()
	}

	logger := cfg.NewLogger()
	logger.SetOutput(cmd.ErrOrStderr())
	return logger, nil
}
