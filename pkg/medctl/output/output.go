package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatRaw   Format = "raw"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatRaw, FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatRaw, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

func WriteObject(w io.Writer, format Format, obj any) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		data, err := yaml.Marshal(obj)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, string(data))
		return err
	case FormatTable:
		return fmt.Errorf("table format requires a specific formatter")
	case FormatRaw:
		return fmt.Errorf("raw format renders responses, not objects")
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
