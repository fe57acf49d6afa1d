package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// printOutput writes v as indented JSON or as YAML with the same keys.
func printOutput(w io.Writer, format string, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	switch format {
	case outputJSON, "":
		_, err = fmt.Fprintln(w, string(encoded))
		return err
	case outputYAML:
		decoder := json.NewDecoder(bytes.NewReader(encoded))
		decoder.UseNumber()

		var generic any
		if err := decoder.Decode(&generic); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}

		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(generic); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}

		return encoder.Close()
	default:
		return fmt.Errorf("unknown output format %q, use json or yaml", format)
	}
}
