package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/srg/blekbd/internal/bledb"
	"github.com/srg/blekbd/internal/gatt"
)

// Output formats of the tree command.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the GATT objects the keyboard exports",
		Long: `Builds the keyboard object tree from the configuration and prints it the way
GetManagedObjects reports it to BlueZ, in registration order. No Bluetooth
adapter or D-Bus connection is needed.`,
		Example: `  blekbd tree
  blekbd tree --control-point --format json
  blekbd tree --advertisement --format yaml`,
		Args: cobra.NoArgs,
		RunE: runTree,
	}
	cmd.Flags().StringP("format", "f", formatText, "Output format: text, json or yaml")
	cmd.Flags().Bool("control-point", false, "Include the HID Control Point characteristic")
	cmd.Flags().Bool("advertisement", false, "Print the advertisement instead of the GATT tree")
	return cmd
}

func runTree(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case formatText, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unsupported format %q (must be text, json or yaml)", format)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := configureLogger(cmd, cfg)
	if err != nil {
		return err
	}
	kb, err := buildKeyboard(cfg, logger)
	if err != nil {
		return err
	}

	out := newPrinter(cmd.OutOrStdout())
	if adv, _ := cmd.Flags().GetBool("advertisement"); adv {
		return printAdvertisement(out, kb.adv, format)
	}

	switch format {
	case formatJSON:
		return encodeJSON(out, kb.app.PlainSnapshot())
	case formatYAML:
		node, err := orderedYAML(kb.app.PlainSnapshot())
		if err != nil {
			return err
		}
		return encodeYAML(out, node)
	}
	for pair := kb.app.Snapshot().Oldest(); pair != nil; pair = pair.Next() {
		printObject(out, pair.Key, pair.Value)
	}
	return nil
}

func printAdvertisement(out *printer, adv *gatt.Advertisement, format string) error {
	props, err := adv.GetAll(adv.Interface())
	if err != nil {
		return err
	}
	if format == formatText {
		printObject(out, adv.Path(), gatt.Interfaces{adv.Interface(): props})
		return nil
	}
	plain := make(map[string]any, len(props))
	for name, v := range props {
		plain[name] = gatt.Plain(v)
	}
	doc := map[string]map[string]map[string]any{
		string(adv.Path()): {adv.Interface(): plain},
	}
	if format == formatJSON {
		return encodeJSON(out, doc)
	}
	return encodeYAML(out, doc)
}

func encodeJSON(out *printer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	out.println(string(b))
	return nil
}

func encodeYAML(out *printer, v any) error {
	enc := yaml.NewEncoder(out.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// orderedYAML keeps the snapshot's registration order in the YAML output.
func orderedYAML(snap *orderedmap.OrderedMap[string, map[string]map[string]any]) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for pair := snap.Oldest(); pair != nil; pair = pair.Next() {
		var value yaml.Node
		if err := value.Encode(pair.Value); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", pair.Key, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: pair.Key}, &value)
	}
	return node, nil
}

// printObject prints one object with its properties sorted by name.
func printObject(out *printer, path dbus.ObjectPath, ifaces gatt.Interfaces) {
	out.printf("%s\n", out.header.Sprint(path))
	for _, iface := range slices.Sorted(maps.Keys(ifaces)) {
		out.printf("  %s\n", out.label.Sprint(iface))
		props := ifaces[iface]
		for _, name := range slices.Sorted(maps.Keys(props)) {
			out.printf("    %s = %s\n", name, out.value.Sprint(formatProperty(name, props[name])))
		}
	}
}

func formatProperty(name string, v dbus.Variant) string {
	switch val := v.Value().(type) {
	case []byte:
		return fmt.Sprintf("[% x]", val)
	case []string:
		if name == "ServiceUUIDs" || name == "SolicitUUIDs" {
			named := make([]string, len(val))
			for i, u := range val {
				named[i] = withKnownName(u)
			}
			return "[" + strings.Join(named, ", ") + "]"
		}
		return "[" + strings.Join(val, ", ") + "]"
	case string:
		if name == "UUID" {
			return withKnownName(val)
		}
		return val
	case dbus.ObjectPath:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

func withKnownName(uuid string) string {
	if n := bledb.KnownName(uuid); n != "" {
		return fmt.Sprintf("%s (%s)", uuid, n)
	}
	return uuid
}
