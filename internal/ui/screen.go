package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/table"
	"github.com/desertthunder/mrx/internal/tasks"
)

// screen is one navigable resource view.
type screen interface {
	Name() string
	Title() string
	Roles() []models.Role
	// Seed installs rows from a dashboard load and reports whether the section was present and healthy.
	Seed(d *tasks.Dashboard) bool
	Loaded() bool
	Count() int
	Load(ctx context.Context) tea.Cmd
	HandleKey(ctx context.Context, msg tea.KeyMsg) tea.Cmd
	// Capturing reports whether the screen consumes esc and printable keys itself.
	Capturing() bool
	View(width int) string
}

// tableScreen adapts a [table.View] to keyboard navigation.
type tableScreen[T any] struct {
	name  string
	roles []models.Role
	view  *table.View[T]
	fetch func(context.Context) ([]T, error)
	seed  func(*tasks.Dashboard) []T

	keys   keyMap
	loaded bool
	err    error

	cursor     int
	searching  bool
	input      textinput.Model
	menu       bool
	menuCursor int
}

var _ screen = (*tableScreen[models.Track])(nil)

func newTableScreen[T any](
	name string,
	roles []models.Role,
	columns []table.Column[T],
	actions []table.Action[T],
	opts table.Options,
	fetch func(context.Context) ([]T, error),
	seed func(*tasks.Dashboard) []T,
) *tableScreen[T] {
	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "search"
	input.CharLimit = 64

	return &tableScreen[T]{
		name:  name,
		roles: roles,
		view:  table.New(columns, actions, opts),
		fetch: fetch,
		seed:  seed,
		keys:  newKeyMap(),
		input: input,
	}
}

func (s *tableScreen[T]) Name() string         { return s.name }
func (s *tableScreen[T]) Title() string        { return s.view.Options().Title }
func (s *tableScreen[T]) Roles() []models.Role { return s.roles }
func (s *tableScreen[T]) Loaded() bool         { return s.loaded }
func (s *tableScreen[T]) Count() int           { return len(s.view.Rows()) }
func (s *tableScreen[T]) Capturing() bool      { return s.searching || s.menu }

func (s *tableScreen[T]) Seed(d *tasks.Dashboard) bool {
	if s.seed == nil || d == nil {
		return false
	}
	i := slices.IndexFunc(d.Sections, func(sec tasks.Section) bool { return sec.Name == s.name })
	if i < 0 || d.Sections[i].Err != nil {
		return false
	}
	s.setRows(s.seed(d))
	return true
}

func (s *tableScreen[T]) setRows(rows []T) {
	s.view.SetRows(rows)
	s.view.SetLoading(false)
	s.loaded = true
	s.err = nil
	s.cursor = 0
	s.menu = false
	s.searching = false
	s.input.SetValue("")
	s.input.Blur()
}

// Load fetches the rows in the background. The rows are installed when the returned message reaches the update loop.
func (s *tableScreen[T]) Load(ctx context.Context) tea.Cmd {
	s.view.SetLoading(true)
	fetch := s.fetch
	return func() tea.Msg {
		rows, err := fetch(ctx)
		return rowsLoadedMsg(s.name, func() {
			if err != nil {
				s.view.SetLoading(false)
				s.err = err
				return
			}
			s.setRows(rows)
		}, err)
	}
}

// selected returns the highlighted row of the current page.
func (s *tableScreen[T]) selected() (T, bool) {
	page := s.view.Page()
	if s.cursor < 0 || s.cursor >= len(page) {
		var zero T
		return zero, false
	}
	return page[s.cursor], true
}

func (s *tableScreen[T]) clampCursor() {
	n := len(s.view.Page())
	switch {
	case n == 0:
		s.cursor = 0
	case s.cursor >= n:
		s.cursor = n - 1
	case s.cursor < 0:
		s.cursor = 0
	}
}

// nextSortKey returns the sortable column after the active one, wrapping around.
func (s *tableScreen[T]) nextSortKey() string {
	var keys []string
	for _, c := range s.view.Columns() {
		if c.Sortable {
			keys = append(keys, c.Key)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	i := slices.Index(keys, s.view.Sort().Key)
	return keys[(i+1)%len(keys)]
}

func (s *tableScreen[T]) HandleKey(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	switch {
	case s.searching:
		return s.handleSearchKeys(msg)
	case s.menu:
		return s.handleMenuKeys(msg)
	}

	switch {
	case key.Matches(msg, s.keys.up):
		s.cursor--
	case key.Matches(msg, s.keys.down):
		s.cursor++
	case key.Matches(msg, s.keys.left):
		s.view.PrevPage()
		s.cursor = 0
	case key.Matches(msg, s.keys.right):
		s.view.NextPage()
		s.cursor = 0
	case key.Matches(msg, s.keys.search):
		if s.view.Options().Searchable {
			s.searching = true
			s.input.SetValue(s.view.Search())
			return s.input.Focus()
		}
	case key.Matches(msg, s.keys.sort):
		if k := s.nextSortKey(); k != "" {
			s.view.ToggleSort(k)
		}
	case key.Matches(msg, s.keys.reverse):
		if k := s.view.Sort().Key; k != "" {
			s.view.ToggleSort(k)
		}
	case key.Matches(msg, s.keys.actions):
		if _, ok := s.selected(); ok && s.view.HasActions() {
			s.menu = true
			s.menuCursor = 0
		}
	case key.Matches(msg, s.keys.refresh):
		return s.Load(ctx)
	}
	s.clampCursor()
	return nil
}

func (s *tableScreen[T]) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		s.searching = false
		s.input.Blur()
		return nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.view.SetSearch(s.input.Value())
	s.cursor = 0
	return cmd
}

func (s *tableScreen[T]) handleMenuKeys(msg tea.KeyMsg) tea.Cmd {
	row, ok := s.selected()
	if !ok {
		s.menu = false
		return nil
	}
	actions := s.view.Actions(row)

	switch {
	case key.Matches(msg, s.keys.back):
		s.menu = false
	case key.Matches(msg, s.keys.up):
		if s.menuCursor > 0 {
			s.menuCursor--
		}
	case key.Matches(msg, s.keys.down):
		if s.menuCursor < len(actions)-1 {
			s.menuCursor++
		}
	case key.Matches(msg, s.keys.enter):
		if s.menuCursor >= len(actions) || actions[s.menuCursor].Disabled {
			return nil
		}
		s.menu = false
		return s.invoke(row, actions[s.menuCursor].Label)
	}
	return nil
}

// invoke runs the action off the update loop. Handlers only receive the row, never the screen.
func (s *tableScreen[T]) invoke(row T, label string) tea.Cmd {
	view, name := s.view, s.name
	return func() tea.Msg {
		ran, err := view.Invoke(row, label)
		return actionDoneMsg(name, label, ran, err)
	}
}

func (s *tableScreen[T]) View(width int) string {
	var b strings.Builder

	selected := s.cursor
	if s.view.Loading() {
		selected = -1
	}
	b.WriteString(table.Render(s.view, table.RenderOpts{Selected: selected, Width: width}))
	b.WriteString("\n")

	if s.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Could not load %s: %v", strings.ToLower(s.Title()), s.err)))
		b.WriteString("\n")
	}
	if s.searching {
		b.WriteString(s.input.View())
		b.WriteString("\n")
	}
	if s.menu {
		b.WriteString(s.menuView())
		b.WriteString("\n")
	}
	return b.String()
}

func (s *tableScreen[T]) menuView() string {
	row, ok := s.selected()
	if !ok {
		return ""
	}
	actions := s.view.Actions(row)
	if len(actions) == 0 {
		return styles.box.Render(styles.muted.Render("No actions"))
	}

	lines := make([]string, 0, len(actions)+1)
	lines = append(lines, styles.title.Render("Actions"))
	for i, a := range actions {
		label := a.String()
		switch {
		case a.Disabled:
			label = styles.muted.Render(label + " (unavailable)")
		case i == s.menuCursor:
			label = styles.selected.Render(label)
		case a.Variant == table.VariantDanger:
			label = styles.err.Render(label)
		case a.Variant == table.VariantPrimary:
			label = styles.ok.Render(label)
		}
		if i == s.menuCursor {
			label = "> " + label
		} else {
			label = "  " + label
		}
		lines = append(lines, label)
	}
	return styles.box.Render(strings.Join(lines, "\n"))
}
