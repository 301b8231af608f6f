package main

import (
	"github.com/spf13/cobra"

	"github.com/srg/blekbd/internal/hid"
)

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <text>",
		Short: "Show the input reports that type a text",
		Long: `Prints the press report for each character of the text, followed by the
release report the keyboard sends after it.`,
		Example: `  blekbd report "Hi 42"`,
		Args:    cobra.ExactArgs(1),
		RunE:    runReport,
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	out := newPrinter(cmd.OutOrStdout())
	release := hid.Release()
	for _, r := range args[0] {
		press, err := hid.ReportForRune(r)
		if err != nil {
			return err
		}
		out.printf("%-6q %s  %s  %s\n",
			r,
			out.value.Sprint(press),
			out.dim.Sprint(release),
			describeReport(press))
	}
	return nil
}
