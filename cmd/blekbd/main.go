package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// formatVersion adds 'v' prefix if version starts with a digit
func formatVersion(ver string) string {
	if len(ver) > 0 && unicode.IsDigit(rune(ver[0])) {
		return "v" + ver
	}
	return ver
}

// newRootCmd builds the command tree. Tests build a fresh tree per run so
// flag state never leaks between executions.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "blekbd",
		Short: "Bluetooth LE HID keyboard peripheral for BlueZ",
		Long: `Runs a HID-over-GATT keyboard peripheral on a BlueZ adapter:

- Exports the HID service (Protocol Mode, HID Information, Input Report, Report Map)
- Advertises as a keyboard and registers with BlueZ
- Periodically types a key (or a text) while a host is subscribed

The tree, report-map and report commands inspect the GATT tree and HID
reports offline, without a Bluetooth adapter.`,
		Version:       formatVersion(version),
		SilenceErrors: true,
	}
	root.SetVersionTemplate(fmt.Sprintf("{{.Name}} {{.Version}} (commit %s, built %s)\n", commit, date))

	root.PersistentFlags().String("config", "", "YAML configuration file")
	root.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")
	root.PersistentFlags().BoolP("verbose", "V", false, "Verbose output (debug log level)")
	root.Flags().BoolP("version", "v", false, "Show version information")

	root.AddCommand(newRunCmd())
	root.AddCommand(newTreeCmd())
	root.AddCommand(newReportMapCmd())
	root.AddCommand(newReportCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Ctrl+C is a normal exit, not an error - exit silently
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", FormatUserError(err))
		os.Exit(1)
	}
}
