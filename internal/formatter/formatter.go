// package formatter exports table views to CSV, Markdown, JSON or a terminal table
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/table"
)

// Format is an output format for list commands.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatTable, FormatCSV, FormatMarkdown, FormatJSON}

// ParseFormat parses a format name. "md" is accepted for Markdown and the empty string means [FormatTable].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case "md":
		return FormatMarkdown, nil
	case FormatTable, FormatCSV, FormatMarkdown, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: format must be one of %v, got %q", shared.ErrInvalidFlag, Formats, s)
	}
}

// Ext returns the file extension for f.
func (f Format) Ext() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Records flattens every filtered and sorted row of v (all pages) into raw string records.
func Records[T any](v *table.View[T]) (keys, headers []string, rows [][]string) {
	cols := v.Columns()
	keys = make([]string, len(cols))
	headers = make([]string, len(cols))
	for i, c := range cols {
		keys[i], headers[i] = c.Key, c.Label
	}

	sorted := v.Sorted()
	rows = make([][]string, 0, len(sorted))
	for _, row := range sorted {
		record := make([]string, len(cols))
		for i, c := range cols {
			record[i] = table.Stringify(c.Raw(row))
		}
		rows = append(rows, record)
	}
	return keys, headers, rows
}

// Export renders v in format f. The table format renders the current page; the others export every matching row.
func Export[T any](v *table.View[T], f Format) ([]byte, error) {
	if f == FormatTable {
		return []byte(table.Render(v, table.RenderOpts{Selected: -1}) + "\n"), nil
	}

	keys, headers, rows := Records(v)
	switch f {
	case FormatCSV:
		return ExportToCSV(headers, rows)
	case FormatMarkdown:
		return ExportToMarkdown(v.Options().Title, headers, rows)
	case FormatJSON:
		return ExportToJSON(keys, rows)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
	}
}

// ExportToCSV writes a header line followed by one record per row.
func ExportToCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, record := range rows {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown writes a GitHub-flavored Markdown table with an optional heading.
func ExportToMarkdown(title string, headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer

	if title != "" {
		buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	}
	buf.WriteString(fmt.Sprintf("**Rows**: %d\n\n", len(rows)))

	if len(headers) == 0 {
		return buf.Bytes(), nil
	}

	writeRow := func(cells []string) {
		buf.WriteString("|")
		for _, c := range cells {
			buf.WriteString(" " + escapeMarkdown(c) + " |")
		}
		buf.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)
	for _, r := range rows {
		writeRow(r)
	}

	return buf.Bytes(), nil
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// ExportToJSON writes an array of objects keyed by column key.
func ExportToJSON(keys []string, rows [][]string) ([]byte, error) {
	out := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		obj := make(map[string]string, len(keys))
		for i, k := range keys {
			if i < len(r) {
				obj[k] = r[i]
			}
		}
		out = append(out, obj)
	}
	return shared.MarshalJSON(out, true)
}

// WriteExport writes data to path, creating parent directories. The format's extension is appended when path has
// none.
func WriteExport(path string, f Format, data []byte) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: output path is required", shared.ErrMissingArgument)
	}
	if filepath.Ext(path) == "" {
		path += f.Ext()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
