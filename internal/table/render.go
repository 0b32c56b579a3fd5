package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lt "github.com/charmbracelet/lipgloss/table"
)

// Theme holds the styles used by [Render].
type Theme struct {
	Title    lipgloss.Style
	Subtle   lipgloss.Style
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Selected lipgloss.Style
	Border   lipgloss.Style
	Tones    map[Tone]lipgloss.Style
}

// DefaultTheme is the theme shared by the TUI and the CLI.
var DefaultTheme = Theme{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
	Subtle:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#626262")),
	Header:   lipgloss.NewStyle().Bold(true).Padding(0, 1),
	Cell:     lipgloss.NewStyle().Padding(0, 1),
	Selected: lipgloss.NewStyle().Padding(0, 1).Reverse(true),
	Border:   lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
	Tones: map[Tone]lipgloss.Style{
		ToneNeutral: lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#A0A0A0")),
		ToneSuccess: lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#04B575")),
		ToneWarning: lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#FFA500")),
		ToneDanger:  lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#FF0000")),
	},
}

// skeletonRows is the number of placeholder rows drawn while loading.
const skeletonRows = 3

// RenderOpts tunes a single [Render] call.
type RenderOpts struct {
	Theme *Theme
	// Selected is the index of the highlighted row within the current page, or -1.
	Selected int
	Width    int
}

// HeaderLabel returns a column label decorated with its sort indicator.
func HeaderLabel(label string, sortable bool, dir Direction) string {
	if !sortable {
		return label
	}
	switch dir {
	case Asc:
		return label + " ▲"
	case Desc:
		return label + " ▼"
	default:
		return label + " ↕"
	}
}

// Headers returns the decorated header labels for v.
func Headers[T any](v *View[T]) []string {
	spec := v.Sort()
	headers := make([]string, 0, len(v.columns)+1)
	for _, c := range v.columns {
		dir := None
		if c.Key == spec.Key {
			dir = spec.Direction
		}
		headers = append(headers, HeaderLabel(c.Label, c.Sortable, dir))
	}
	if v.HasActions() {
		headers = append(headers, "")
	}
	return headers
}

// Footer returns the "Page x of y" summary followed by the page window.
func Footer[T any](v *View[T]) string {
	current := v.PageIndex() + 1
	parts := make([]string, 0, MaxPageButtons)
	for _, p := range v.PageWindow() {
		if p == current {
			parts = append(parts, fmt.Sprintf("[%d]", p))
		} else {
			parts = append(parts, fmt.Sprintf("%d", p))
		}
	}
	return fmt.Sprintf("Page %d of %d  ‹ %s ›", current, v.TotalPages(), strings.Join(parts, " "))
}

// Render draws the view's current page as a bordered terminal table.
func Render[T any](v *View[T], opts RenderOpts) string {
	theme := opts.Theme
	if theme == nil {
		theme = &DefaultTheme
	}

	var b strings.Builder
	if v.opts.Title != "" {
		b.WriteString(theme.Title.Render(v.opts.Title))
		b.WriteString("\n")
	}
	if v.opts.Description != "" {
		b.WriteString(theme.Subtle.Render(v.opts.Description))
		b.WriteString("\n")
	}
	if v.opts.Searchable && v.search != "" {
		b.WriteString(theme.Subtle.Render("Search: " + v.search))
		b.WriteString("\n")
	}

	headers := Headers(v)
	rows := v.Page()

	var records [][]string
	var tones [][]Tone
	switch {
	case v.loading:
		records, tones = skeleton(len(headers))
	case len(rows) == 0:
		b.WriteString(tableOf(theme, headers, nil, nil, -1, opts.Width).Render())
		b.WriteString("\n")
		b.WriteString(theme.Subtle.Render(v.opts.EmptyMessage))
		return b.String()
	default:
		records, tones = cells(v, rows)
	}

	b.WriteString(tableOf(theme, headers, records, tones, opts.Selected, opts.Width).Render())
	if v.opts.Paginated && !v.loading {
		b.WriteString("\n")
		b.WriteString(theme.Subtle.Render(Footer(v)))
	}
	return b.String()
}

func cells[T any](v *View[T], rows []T) ([][]string, [][]Tone) {
	records := make([][]string, 0, len(rows))
	tones := make([][]Tone, 0, len(rows))
	for _, row := range rows {
		record := make([]string, 0, len(v.columns)+1)
		tone := make([]Tone, 0, len(v.columns)+1)
		for _, c := range v.columns {
			text := Cell(c, row)
			record = append(record, truncate(text, c.Width))
			if c.Kind == KindStatus && c.Render == nil {
				tone = append(tone, StatusTone(text))
			} else {
				tone = append(tone, -1)
			}
		}
		if v.HasActions() {
			record = append(record, "⋯")
			tone = append(tone, -1)
		}
		records = append(records, record)
		tones = append(tones, tone)
	}
	return records, tones
}

func skeleton(width int) ([][]string, [][]Tone) {
	records := make([][]string, skeletonRows)
	tones := make([][]Tone, skeletonRows)
	for i := range records {
		records[i] = make([]string, width)
		tones[i] = make([]Tone, width)
		for j := range records[i] {
			records[i][j] = "░░░░░░"
			tones[i][j] = ToneNeutral
		}
	}
	return records, tones
}

func tableOf(theme *Theme, headers []string, records [][]string, tones [][]Tone, selected, width int) *lt.Table {
	t := lt.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(theme.Border).
		Headers(headers...).
		Rows(records...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lt.HeaderRow {
				return theme.Header
			}
			if row == selected {
				return theme.Selected
			}
			if row >= 0 && row < len(tones) && col < len(tones[row]) {
				if style, ok := theme.Tones[tones[row][col]]; ok {
					return style
				}
			}
			return theme.Cell
		})
	if width > 0 {
		t = t.Width(width)
	}
	return t
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
