package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type format int

const (
	formatTable format = iota
	formatJSON
	formatYAML
)

func parseFormat(s string) (format, error) {
	switch strings.ToLower(s) {
	case "", "table":
		return formatTable, nil
	case "json":
		return formatJSON, nil
	case "yaml", "yml":
		return formatYAML, nil
	}
	return formatTable, fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
}

// encode writes v as JSON (the service's wire shape) or YAML.
func encode(w io.Writer, f format, v any) error {
	switch f {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("encode: table is not a data format")
}
