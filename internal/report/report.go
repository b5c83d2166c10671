// Package report renders calculation runs as text, JSON or Excel.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/christopherklint97/plantbill/internal/runner"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatXLSX:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want text, json or xlsx)", s)
	}
}

// Write renders res in format f.
func Write(w io.Writer, f Format, res *runner.Result) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatXLSX:
		return WriteXLSX(w, res)
	default:
		return WriteText(w, res)
	}
}

func WriteJSON(w io.Writer, res *runner.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// Schema returns the JSON schema of the JSON report.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
	}
	s := r.Reflect(&runner.Result{})
	s.Title = "plantbill EPH report"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	return data, nil
}
