package main

import (
	"github.com/spf13/cobra"

	"github.com/srg/blekbd/pkg/config"
)

// loadConfig reads --config (or the defaults) and applies explicitly set
// command flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			apply()
		}
	}
	set("adapter", func() { cfg.Adapter, _ = flags.GetString("adapter") })
	set("name", func() { cfg.LocalName, _ = flags.GetString("name") })
	set("period", func() { cfg.Period, _ = flags.GetDuration("period") })
	set("release", func() { cfg.ReleaseDelay, _ = flags.GetDuration("release") })
	set("key", func() { cfg.Key, _ = flags.GetString("key") })
	set("text", func() { cfg.Text, _ = flags.GetString("text") })
	set("control-point", func() { cfg.ControlPoint, _ = flags.GetBool("control-point") })

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
