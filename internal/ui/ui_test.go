package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/services"
	"github.com/desertthunder/mrx/internal/session"
	"github.com/desertthunder/mrx/internal/table"
	"github.com/desertthunder/mrx/internal/tasks"
	tu "github.com/desertthunder/mrx/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusCall struct {
	resource services.Resource
	id       string
	status   models.Status
}

// fakeAPI serves canned lists and records mutations.
type fakeAPI struct {
	mu sync.Mutex

	members  []models.Member
	tracks   []models.Track
	invoices []models.Invoice
	fail     map[string]error

	loads    map[string]int
	statuses []statusCall
	deleted  []string
}

func newFakeAPI() *fakeAPI {
	api := &fakeAPI{fail: map[string]error{}, loads: map[string]int{}}
	for i := 1; i <= 12; i++ {
		status := models.StatusPending
		if i%3 == 0 {
			status = models.StatusApproved
		}
		api.members = append(api.members, models.Member{
			ID:       fmt.Sprintf("m%02d", i),
			FullName: fmt.Sprintf("Artist %02d", i),
			Email:    fmt.Sprintf("artist%02d@example.com", i),
			Status:   status,
		})
	}
	api.members[0].FullName = "Alice Walker"
	api.tracks = []models.Track{
		{ID: "t1", Title: "Blue", Status: models.StatusApproved, FileURL: "/files/t1.mp3"},
		{ID: "t2", Title: "Red", Status: models.StatusPending},
	}
	return api
}

func serve[T any](api *fakeAPI, name string, rows []T) ([]T, error) {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.loads[name]++
	if err := api.fail[name]; err != nil {
		return nil, err
	}
	return append([]T(nil), rows...), nil
}

func (f *fakeAPI) MemberTracks(context.Context) ([]models.Track, error) {
	return serve(f, "member-tracks", f.tracks)
}
func (f *fakeAPI) Licenses(context.Context) ([]models.License, error) {
	return serve[models.License](f, "licenses", nil)
}
func (f *fakeAPI) Invoices(context.Context) ([]models.Invoice, error) {
	return serve(f, "invoices", f.invoices)
}
func (f *fakeAPI) Payments(context.Context) ([]models.Payment, error) {
	return serve[models.Payment](f, "payments", nil)
}
func (f *fakeAPI) Members(context.Context) ([]models.Member, error) {
	return serve(f, "members", f.members)
}
func (f *fakeAPI) Licensees(context.Context) ([]models.Licensee, error) {
	return serve[models.Licensee](f, "licensees", nil)
}
func (f *fakeAPI) Tracks(context.Context) ([]models.Track, error) { return serve(f, "tracks", f.tracks) }
func (f *fakeAPI) AdminLicenses(context.Context) ([]models.License, error) {
	return serve[models.License](f, "admin-licenses", nil)
}
func (f *fakeAPI) AdminInvoices(context.Context) ([]models.Invoice, error) {
	return serve(f, "admin-invoices", f.invoices)
}
func (f *fakeAPI) AdminPayments(context.Context) ([]models.Payment, error) {
	return serve[models.Payment](f, "admin-payments", nil)
}
func (f *fakeAPI) Genres(context.Context) ([]models.Lookup, error) {
	return serve(f, "genres", []models.Lookup{{ID: "pop", Name: "Pop"}})
}
func (f *fakeAPI) Languages(context.Context) ([]models.Lookup, error) {
	return serve[models.Lookup](f, "languages", nil)
}
func (f *fakeAPI) Countries(context.Context) ([]models.Lookup, error) {
	return serve[models.Lookup](f, "countries", nil)
}
func (f *fakeAPI) Download(context.Context, string, io.Writer) (int64, error) {
	return 0, nil
}

func (f *fakeAPI) URL(path string) string {
	return "https://api.test" + path
}

func (f *fakeAPI) DeleteTrack(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) SetStatus(_ context.Context, resource services.Resource, id string, status models.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["status"]; err != nil {
		return err
	}
	f.statuses = append(f.statuses, statusCall{resource, id, status})
	return nil
}

func (f *fakeAPI) loadCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads[name]
}

type harness struct {
	app    *App
	api    *fakeAPI
	auth   *tu.FakeAuth
	store  *session.Store
	opened []string
	sent   chan tea.Msg
}

func newHarness(t *testing.T, role models.Role) *harness {
	t.Helper()
	h := &harness{
		api:  newFakeAPI(),
		auth: &tu.FakeAuth{},
		sent: make(chan tea.Msg, 64),
	}
	h.store = session.NewStore(session.StoreOpts{API: h.auth})
	h.store.Init()
	if role != "" {
		h.auth.Result = &models.LoginResult{
			Token: "tok",
			User:  models.Identity{ID: "u1", Email: "user@example.com", Role: role},
		}
		_, err := h.store.Login(context.Background(), "user@example.com", "secret")
		require.NoError(t, err)
	}

	h.app = NewApp(context.Background(), Deps{
		Store:    h.store,
		API:      h.api,
		PageSize: 5,
		Open: func(url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
	})
	h.app.Bind(func(msg tea.Msg) { h.sent <- msg })
	return h
}

// run executes cmd and returns its message, giving up on timer-driven commands such as cursor blinks.
func run(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(50 * time.Millisecond):
		return nil, false
	}
}

// drain runs cmd and every command it leads to, feeding the app's own messages back into it.
func (h *harness) drain(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for steps := 0; steps < 200; steps++ {
		if len(queue) == 0 {
			select {
			case msg := <-h.sent:
				_, next := h.app.Update(msg)
				queue = append(queue, next)
				continue
			default:
				return
			}
		}

		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := run(c)
		if !ok {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case Msg:
			_, next := h.app.Update(msg)
			queue = append(queue, next)
		}
	}
}

func (h *harness) press(keys ...tea.KeyMsg) {
	for _, k := range keys {
		_, cmd := h.app.Update(k)
		h.drain(cmd)
	}
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }
func keyOf(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func typeText(s string) []tea.KeyMsg {
	out := make([]tea.KeyMsg, 0, len(s))
	for _, r := range s {
		out = append(out, runes(string(r)))
	}
	return out
}

func activeScreen[T any](t *testing.T, h *harness) *tableScreen[T] {
	t.Helper()
	s, ok := h.app.Model().active.(*tableScreen[T])
	require.True(t, ok, "active screen has unexpected type %T", h.app.Model().active)
	return s
}

func TestSignIn(t *testing.T) {
	t.Run("starts anonymous at the sign-in view", func(t *testing.T) {
		h := newHarness(t, "")
		assert.Equal(t, SignInView, h.app.Model().ViewState())
		assert.Contains(t, h.app.View(), "Music rights portal")
	})

	t.Run("submits normalized credentials and lands on the role home", func(t *testing.T) {
		h := newHarness(t, "")
		h.auth.Result = &models.LoginResult{
			Token: "tok",
			User:  models.Identity{ID: "a1", Email: "admin@example.com", Role: models.RoleAdmin},
		}

		h.press(typeText("Admin@Example.com")...)
		h.press(keyOf(tea.KeyEnter))
		h.press(typeText("hunter2")...)
		h.press(keyOf(tea.KeyEnter))

		require.Len(t, h.auth.Calls, 1)
		assert.Equal(t, "admin@example.com", h.auth.Calls[0].Email)
		assert.Equal(t, "hunter2", h.auth.Calls[0].Password)

		m := h.app.Model()
		assert.Equal(t, HomeView, m.ViewState())
		assert.Equal(t, 1, h.api.loadCount("members"))
		members := m.lookup(tasks.SectionMembers)
		require.NotNil(t, members)
		assert.True(t, members.Loaded())
		assert.Equal(t, 12, members.Count())

		text, ok := h.app.Notice()
		assert.True(t, ok)
		assert.Equal(t, session.MsgLoginSuccess, text)
	})

	t.Run("stays on the form after a rejected login", func(t *testing.T) {
		h := newHarness(t, "")
		h.auth.Err = &services.APIError{Status: 400, Message: "Invalid credentials"}

		h.press(typeText("someone@example.com")...)
		h.press(keyOf(tea.KeyTab))
		h.press(typeText("wrong")...)
		h.press(keyOf(tea.KeyEnter))

		assert.Equal(t, SignInView, h.app.Model().ViewState())
		assert.False(t, h.app.Model().signin.busy)
		assert.Empty(t, h.app.Model().signin.password.Value())

		text, ok := h.app.Notice()
		assert.False(t, ok)
		assert.Equal(t, "Invalid credentials", text)
	})

	t.Run("ignores enter with an empty password", func(t *testing.T) {
		h := newHarness(t, "")
		h.press(typeText("someone@example.com")...)
		h.press(keyOf(tea.KeyEnter), keyOf(tea.KeyEnter))
		assert.Empty(t, h.auth.Calls)
	})
}

func TestTableScreen(t *testing.T) {
	open := func(t *testing.T) *harness {
		h := newHarness(t, models.RoleAdmin)
		h.drain(h.app.Init())
		require.Equal(t, HomeView, h.app.Model().ViewState())
		h.press(keyOf(tea.KeyEnter))
		name, ok := h.app.Model().Active()
		require.True(t, ok)
		require.Equal(t, tasks.SectionMembers, name)
		return h
	}

	t.Run("opens seeded from the dashboard without refetching", func(t *testing.T) {
		h := open(t)
		assert.Equal(t, TableView, h.app.Model().ViewState())
		assert.Equal(t, 1, h.api.loadCount("members"))
		assert.Contains(t, h.app.View(), "Alice")
	})

	t.Run("search narrows rows and resets the cursor", func(t *testing.T) {
		h := open(t)
		s := activeScreen[models.Member](t, h)

		h.press(keyOf(tea.KeyDown))
		assert.Equal(t, 1, s.cursor)

		h.press(runes("/"))
		assert.True(t, s.Capturing())
		h.press(typeText("alice")...)
		assert.Equal(t, "alice", s.view.Search())
		assert.Equal(t, 1, s.view.Len())
		assert.Equal(t, 0, s.cursor)

		h.press(keyOf(tea.KeyEnter))
		assert.False(t, s.Capturing())
	})

	t.Run("typing q while searching does not quit", func(t *testing.T) {
		h := open(t)
		h.press(runes("/"))
		_, cmd := h.app.Update(runes("q"))
		if cmd != nil {
			msg, ok := run(cmd)
			if ok {
				_, quit := msg.(tea.QuitMsg)
				assert.False(t, quit)
			}
		}
		assert.Equal(t, "q", activeScreen[models.Member](t, h).view.Search())
	})

	t.Run("s cycles sortable columns and S flips direction", func(t *testing.T) {
		h := open(t)
		s := activeScreen[models.Member](t, h)

		h.press(runes("s"))
		assert.Equal(t, table.SortSpec{Key: "fullName", Direction: table.Asc}, s.view.Sort())
		h.press(runes("s"))
		assert.Equal(t, table.SortSpec{Key: "email", Direction: table.Asc}, s.view.Sort())
		h.press(runes("S"))
		assert.Equal(t, table.SortSpec{Key: "email", Direction: table.Desc}, s.view.Sort())

		for range 3 {
			h.press(runes("s"))
		}
		assert.Equal(t, "createdAt", s.view.Sort().Key)
		h.press(runes("s"))
		assert.Equal(t, "fullName", s.view.Sort().Key, "wraps to the first sortable column")
	})

	t.Run("arrows page through the rows", func(t *testing.T) {
		h := open(t)
		s := activeScreen[models.Member](t, h)
		assert.Equal(t, 3, s.view.TotalPages())

		h.press(keyOf(tea.KeyRight), keyOf(tea.KeyRight), keyOf(tea.KeyRight))
		assert.Equal(t, 2, s.view.PageIndex())
		assert.Len(t, s.view.Page(), 2)

		h.press(keyOf(tea.KeyDown), keyOf(tea.KeyDown), keyOf(tea.KeyDown))
		assert.Equal(t, 1, s.cursor, "cursor stays within the page")

		h.press(keyOf(tea.KeyLeft))
		assert.Equal(t, 1, s.view.PageIndex())
		assert.Equal(t, 0, s.cursor)
	})

	t.Run("disabled actions are shown but do nothing", func(t *testing.T) {
		h := open(t)
		s := activeScreen[models.Member](t, h)

		// m03 is approved; sorting by name puts it third.
		h.press(runes("s"), keyOf(tea.KeyDown), keyOf(tea.KeyDown))
		row, ok := s.selected()
		require.True(t, ok)
		require.Equal(t, models.StatusApproved, row.Status)

		h.press(runes("a"))
		require.True(t, s.menu)
		view := h.app.View()
		assert.Contains(t, view, "Actions")
		assert.Contains(t, view, "(unavailable)")

		h.press(keyOf(tea.KeyEnter))
		assert.True(t, s.menu, "menu stays open on a disabled action")
		assert.Empty(t, h.api.statuses)
	})

	t.Run("enter invokes the action and reloads", func(t *testing.T) {
		h := open(t)
		s := activeScreen[models.Member](t, h)

		h.press(runes("a"), keyOf(tea.KeyDown), keyOf(tea.KeyEnter))

		require.Len(t, h.api.statuses, 1)
		assert.Equal(t, statusCall{services.ResourceMember, "m01", models.StatusRejected}, h.api.statuses[0])
		assert.False(t, s.menu)
		assert.Equal(t, 2, h.api.loadCount("members"))

		text, ok := h.app.Notice()
		assert.True(t, ok)
		assert.Equal(t, "Reject done", text)
	})

	t.Run("action failures surface the server message", func(t *testing.T) {
		h := open(t)
		h.api.fail["status"] = &services.APIError{Status: 409, Message: "Member already reviewed"}

		h.press(runes("a"), keyOf(tea.KeyEnter))

		text, ok := h.app.Notice()
		assert.False(t, ok)
		assert.Equal(t, "Member already reviewed", text)
		assert.Equal(t, 1, h.api.loadCount("members"))
	})

	t.Run("esc returns home", func(t *testing.T) {
		h := open(t)
		h.press(keyOf(tea.KeyEsc))
		assert.Equal(t, HomeView, h.app.Model().ViewState())
		_, ok := h.app.Model().Active()
		assert.False(t, ok)
	})
}

func TestDashboard(t *testing.T) {
	t.Run("failed sections load on open", func(t *testing.T) {
		h := newHarness(t, models.RoleAdmin)
		h.api.fail["members"] = errors.New("boom")
		h.drain(h.app.Init())

		m := h.app.Model()
		assert.True(t, m.failed[tasks.SectionMembers])
		assert.Contains(t, h.app.View(), "could not load")

		delete(h.api.fail, "members")
		h.press(keyOf(tea.KeyEnter))
		assert.Equal(t, 2, h.api.loadCount("members"))
		assert.False(t, m.failed[tasks.SectionMembers])
		assert.Equal(t, 12, m.lookup(tasks.SectionMembers).Count())
	})

	t.Run("lookup screens load lazily", func(t *testing.T) {
		h := newHarness(t, models.RoleMember)
		h.drain(h.app.Init())
		assert.Zero(t, h.api.loadCount("genres"))

		m := h.app.Model()
		genres := m.lookup(tasks.SectionGenres)
		require.NotNil(t, genres)
		h.drain(m.open(genres))
		assert.Equal(t, 1, h.api.loadCount("genres"))
		assert.Equal(t, 1, genres.Count())
	})

	t.Run("member screens", func(t *testing.T) {
		h := newHarness(t, models.RoleMember)
		h.drain(h.app.Init())

		var names []string
		for _, s := range h.app.Model().screens {
			names = append(names, s.Name())
		}
		assert.Equal(t, []string{tasks.SectionTracks, tasks.SectionGenres, tasks.SectionLanguages, tasks.SectionCountries}, names)
		assert.Equal(t, 1, h.api.loadCount("member-tracks"))
		assert.Zero(t, h.api.loadCount("tracks"))
	})
}

func TestGuard(t *testing.T) {
	t.Run("forbidden screens stay closed", func(t *testing.T) {
		h := newHarness(t, models.RoleMember)
		m := h.app.Model()
		admin := newTableScreen(tasks.SectionMembers, adminOnly, MemberColumns(), nil,
			ViewOptions("Members", "", 5), h.api.Members, nil)

		h.drain(m.open(admin))

		assert.Equal(t, HomeView, m.ViewState())
		assert.Zero(t, h.api.loadCount("members"))
		text, ok := h.app.Notice()
		assert.False(t, ok)
		assert.Equal(t, "You do not have access to this view", text)
	})

	t.Run("anonymous switches redirect to sign-in", func(t *testing.T) {
		h := newHarness(t, models.RoleMember)
		m := h.app.Model()
		h.store.Invalidate()

		h.drain(m.goHome())

		assert.NotSame(t, m, h.app.Model())
		assert.Equal(t, SignInView, h.app.Model().ViewState())
	})
}

func TestRedirect(t *testing.T) {
	t.Run("logout rebuilds the model at sign-in", func(t *testing.T) {
		h := newHarness(t, models.RoleMember)
		h.drain(h.app.Init())
		before := h.app.Model()

		h.press(keyOf(tea.KeyCtrlL))

		assert.False(t, h.store.IsAuthenticated())
		assert.NotSame(t, before, h.app.Model())
		assert.Equal(t, SignInView, h.app.Model().ViewState())
		assert.Nil(t, h.app.Model().screens)

		text, ok := h.app.Notice()
		assert.True(t, ok)
		assert.Equal(t, session.MsgLogoutSuccess, text)
	})

	t.Run("rejected session mid-view", func(t *testing.T) {
		h := newHarness(t, models.RoleAdmin)
		h.drain(h.app.Init())
		h.press(keyOf(tea.KeyEnter))
		require.Equal(t, TableView, h.app.Model().ViewState())

		h.store.Reject()
		h.drain(nil)

		assert.Equal(t, SignInView, h.app.Model().ViewState())
		text, ok := h.app.Notice()
		assert.False(t, ok)
		assert.Equal(t, session.MsgSessionRejected, text)
	})

	t.Run("late results of a replaced model are dropped", func(t *testing.T) {
		h := newHarness(t, models.RoleAdmin)
		stale := h.app.Model()
		h.store.Invalidate()
		h.app.Update(redirectMsg(session.RootPath))
		require.NotSame(t, stale, h.app.Model())

		msg, ok := run(stale.own(func() tea.Msg { return signedInMsg(&models.Identity{Role: models.RoleAdmin}, nil) }))
		require.True(t, ok)
		h.app.Update(msg)

		assert.Equal(t, SignInView, h.app.Model().ViewState())
	})
}

func TestColumns(t *testing.T) {
	t.Run("money", func(t *testing.T) {
		assert.Equal(t, "12.50 EUR", money(12.5, "EUR"))
		assert.Equal(t, "3.00", money(3, ""))
	})

	t.Run("invoice amount renders with currency and sorts numerically", func(t *testing.T) {
		v := table.New(InvoiceColumns(), nil, ViewOptions("Invoices", "", 0))
		v.SetRows([]models.Invoice{{Number: "A", Amount: 100, Currency: "USD"}, {Number: "B", Amount: 9.5, Currency: "USD"}})
		require.True(t, v.ToggleSort("amount"))
		assert.Equal(t, "B", v.Sorted()[0].Number)
		assert.Equal(t, "9.50 USD", v.Cell(v.Sorted()[0], "amount"))
		assert.Equal(t, table.DefaultPageSize, v.Options().PageSize)
	})

	t.Run("file columns show the affordance only when a file exists", func(t *testing.T) {
		v := table.New(TrackColumns(), nil, ViewOptions("Tracks", "", 5))
		assert.Equal(t, table.FileAffordance, v.Cell(models.Track{FileURL: "/f.mp3"}, "file"))
		assert.Equal(t, table.Placeholder, v.Cell(models.Track{}, "file"))
	})

	t.Run("row actions", func(t *testing.T) {
		h := newHarness(t, models.RoleMember)
		a := actions{ctx: context.Background(), api: h.api, open: h.app.deps.Open}

		play := a.play(func(t models.Track) string { return t.FileURL })
		assert.False(t, play.IsVisible(models.Track{}))
		require.NoError(t, play.Handler(models.Track{FileURL: "/files/t1.mp3"}))
		assert.Equal(t, []string{"https://api.test/files/t1.mp3"}, h.opened)

		del := a.deleteTrack()
		assert.True(t, del.IsDisabled(models.Track{Status: models.StatusApproved}))
		require.NoError(t, del.Handler(models.Track{ID: "t2"}))
		assert.Equal(t, []string{"t2"}, h.api.deleted)
	})
}

func TestScreenItem(t *testing.T) {
	s := newTableScreen(tasks.SectionGenres, anyRole, LookupColumns(), nil, ViewOptions("Genres", "", 5), nil, nil)
	assert.Equal(t, "not loaded yet", screenItem{screen: s}.Description())

	s.setRows([]models.Lookup{{ID: "pop"}})
	assert.Equal(t, "1 record", screenItem{screen: s}.Description())
	assert.True(t, strings.HasPrefix(screenItem{screen: s, failed: true}.Description(), "could not load"))
}
