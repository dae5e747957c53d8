package updaterepos

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

type outputKind string

const (
	outputKindTable outputKind = "table"
	outputKindJSON  outputKind = "json"
	outputKindYAML  outputKind = "yaml"
)

func addFormatFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().StringP("output", "o", "", usage)
}

func parseOutputKind(format string) (outputKind, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", string(outputKindTable):
		return outputKindTable, nil
	case string(outputKindJSON):
		return outputKindJSON, nil
	case string(outputKindYAML):
		return outputKindYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

func outputKindFor(cmd *cobra.Command) (outputKind, error) {
	format, _ := cmd.Flags().GetString("output")
	return parseOutputKind(format)
}

// writeEncoded marshals value as JSON or YAML. Table rendering stays with
// the individual commands.
func writeEncoded(w io.Writer, kind outputKind, value any) error {
	switch kind {
	case outputKindJSON:
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case outputKindYAML:
		data, err := yaml.Marshal(value)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("no encoder for format %q", kind)
	}
}
