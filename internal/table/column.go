package table

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind selects a built-in cell convenience for a column.
type Kind int

const (
	KindText   Kind = iota // plain stringified value
	KindStatus             // labeled badge keyed by [StatusTone]
	KindDate               // local date formatting
	KindFile               // play / download affordance for a file URL
)

// Column describes one column of a [View].
//
// Value resolves the raw value used for searching and sorting. Render, when set, replaces the display text only.
type Column[T any] struct {
	Key      string
	Label    string
	Value    func(T) any
	Render   func(T) string
	Sortable bool
	Width    int
	Kind     Kind
}

// Raw resolves the column's raw value for row. A panicking accessor yields nil.
func (c Column[T]) Raw(row T) any { return c.value(row) }

func (c Column[T]) value(row T) (v any) {
	if c.Value == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			v = nil
		}
	}()
	return c.Value(row)
}

// Tone is the visual weight of a status badge.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneSuccess
	ToneWarning
	ToneDanger
)

var statusTones = map[string]Tone{
	"approved":   ToneSuccess,
	"active":     ToneSuccess,
	"paid":       ToneSuccess,
	"pending":    ToneWarning,
	"processing": ToneWarning,
	"rejected":   ToneDanger,
	"overdue":    ToneDanger,
	"failed":     ToneDanger,
}

// StatusTone maps a status value onto the fixed badge vocabulary. Unknown statuses are neutral.
func StatusTone(status string) Tone {
	return statusTones[strings.ToLower(strings.TrimSpace(status))]
}

// StatusLabel returns the badge label for a status value.
func StatusLabel(status string) string {
	s := strings.TrimSpace(status)
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// FileAffordance is the display text for a file-reference cell.
const FileAffordance = "▶ play  ⬇ download"

func displayValue(kind Kind, v any) string {
	s := Stringify(v)
	if s == "" {
		return ""
	}
	switch kind {
	case KindStatus:
		return StatusLabel(s)
	case KindFile:
		return FileAffordance
	default:
		return s
	}
}

// Cell resolves the display text of a column for a row.
//
// Render wins when set. Absent, empty or malformed values (including a panicking accessor or renderer) yield
// [Placeholder].
func Cell[T any](c Column[T], row T) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = Placeholder
		}
	}()

	if c.Render != nil {
		out = c.Render(row)
	} else {
		out = displayValue(c.Kind, c.value(row))
	}

	if strings.TrimSpace(out) == "" {
		return Placeholder
	}
	return out
}

// Variant is the visual treatment of a row action.
type Variant int

const (
	VariantDefault Variant = iota
	VariantPrimary
	VariantDanger
)

// Action describes a per-row overflow action.
//
// A nil Visible means always visible, a nil Disabled means never disabled.
type Action[T any] struct {
	Label    string
	Icon     string
	Handler  func(T) error
	Variant  Variant
	Visible  func(T) bool
	Disabled func(T) bool
}

// IsVisible evaluates the visibility predicate for row.
func (a Action[T]) IsVisible(row T) bool {
	return a.Visible == nil || a.Visible(row)
}

// IsDisabled evaluates the disabled predicate for row.
func (a Action[T]) IsDisabled(row T) bool {
	return a.Disabled != nil && a.Disabled(row)
}

// RowAction is an [Action] resolved against one row.
type RowAction[T any] struct {
	Action[T]
	Disabled bool
}

// String renders the action label with its icon.
func (a RowAction[T]) String() string {
	if a.Icon == "" {
		return a.Label
	}
	return fmt.Sprintf("%s %s", a.Icon, a.Label)
}
