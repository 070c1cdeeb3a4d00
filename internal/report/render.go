package report

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseFormat normalises a format name.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(s); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// Write renders reports to w. JSON output is a single object for one
// report and an array otherwise; YAML output is one document per report.
func Write(w io.Writer, format string, reports ...*Report) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(reports) == 1 {
			return enc.Encode(reports[0])
		}
		return enc.Encode(reports)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, r := range reports {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return enc.Close()
	case FormatText, "":
		for _, r := range reports {
			if _, err := io.WriteString(w, r.Text()); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Text renders the report as a short human readable block.
func (r *Report) Text() string {
	var b strings.Builder
	if !r.Valid() {
		fmt.Fprintf(&b, "%s: %s: %s", r.Source, r.Verdict, r.Failure.Kind)
		if r.Failure.Kind != "io" && r.Failure.Kind != "too-large" {
			fmt.Fprintf(&b, " at offset %d", r.Failure.Offset)
		}
		fmt.Fprintf(&b, ": %s\n", r.Failure.Message)
		if r.Digest != "" {
			fmt.Fprintf(&b, "  digest    %s\n", r.Digest)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "%s: %s\n", r.Source, r.Verdict)
	fmt.Fprintf(&b, "  namespace %s %s\n", r.Namespace, r.Version)
	fmt.Fprintf(&b, "  entries   %d (%d local)\n", r.Entries, r.LocalEntries)
	if len(r.Kinds) > 0 {
		parts := make([]string, 0, len(r.Kinds))
		for _, k := range slices.Sorted(maps.Keys(r.Kinds)) {
			parts = append(parts, fmt.Sprintf("%s=%d", k, r.Kinds[k]))
		}
		fmt.Fprintf(&b, "  kinds     %s\n", strings.Join(parts, " "))
	}
	fmt.Fprintf(&b, "  size      %d bytes\n", r.Size)
	fmt.Fprintf(&b, "  digest    %s\n", r.Digest)
	return b.String()
}
