// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/telekom/hoptrace/internal/traceroute"
	"gopkg.in/yaml.v3"
)

// Format is an output format of a route.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists all supported output formats.
var Formats = []Format{FormatText, FormatJSON, FormatYAML}

// ParseFormat returns the format with the given case-insensitive name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("unsupported output format %q, must be one of %v", s, Formats)
	}
	return f, nil
}

// Encode writes the route in a machine readable format.
func Encode(w io.Writer, format Format, route traceroute.Route) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(route); err != nil {
			return fmt.Errorf("failed to encode route as json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(route); err != nil {
			return fmt.Errorf("failed to encode route as yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("cannot encode route as %q", format)
	}
}
