package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/srg/blekbd/internal/hid"
)

func newReportMapCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "report-map",
		Aliases: []string{"reportmap"},
		Short:   "Decode the HID report map served by the keyboard",
		Long: `Prints the items of the HID report descriptor exposed by the Report Map
characteristic, one per line with its offset and raw bytes.`,
		Args: cobra.NoArgs,
		RunE: runReportMap,
	}
}

func runReportMap(cmd *cobra.Command, _ []string) error {
	raw := hid.ReportMap()
	items, err := hid.ParseReportMap(raw)
	if err != nil {
		return err
	}

	out := newPrinter(cmd.OutOrStdout())
	out.printf("%s\n", out.header.Sprintf("Report map: %d bytes, %d items", len(raw), len(items)))
	depth := 0
	for _, it := range items {
		if it.Type == hid.ItemMain && it.Name() == "End Collection" && depth > 0 {
			depth--
		}
		item := raw[it.Offset : it.Offset+1+len(it.Data)]
		out.printf("%s  %-12s %s%s\n",
			out.dim.Sprintf("%04x", it.Offset),
			fmt.Sprintf("% x", item),
			strings.Repeat("  ", depth),
			out.value.Sprint(it))
		if it.Type == hid.ItemMain && it.Name() == "Collection" {
			depth++
		}
	}
	return nil
}
