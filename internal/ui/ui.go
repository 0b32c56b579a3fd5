package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/services"
	"github.com/desertthunder/mrx/internal/session"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/table"
	"github.com/desertthunder/mrx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SignInView ViewState = iota
	HomeView
	TableView
)

const (
	defaultWidth  = 100
	defaultHeight = 30
)

// Deps are the long-lived collaborators shared by every [Model] an [App] builds.
type Deps struct {
	Store    *session.Store
	API      PortalAPI
	Loader   *tasks.Loader
	Logger   *log.Logger
	Open     func(url string) error
	PageSize int
}

// App is the root model. It owns the per-identity [Model] and replaces it wholesale on a redirect, so no state
// tied to a previous identity survives.
type App struct {
	ctx    context.Context
	deps   Deps
	model  *Model
	notice *notice
	width  int
	height int
}

var _ tea.Model = (*App)(nil)

// NewApp creates the root model. The store should already be initialized.
func NewApp(ctx context.Context, deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	if deps.Open == nil {
		deps.Open = shared.OpenURL
	}
	if deps.PageSize <= 0 {
		deps.PageSize = table.DefaultPageSize
	}
	if deps.Loader == nil && deps.API != nil {
		deps.Loader = tasks.NewLoader(deps.API)
	}
	a := &App{ctx: ctx, deps: deps, width: defaultWidth, height: defaultHeight}
	a.model = newModel(ctx, deps, a.width, a.height)
	return a
}

// sink routes session notifications and redirects into the program.
type sink struct {
	send func(tea.Msg)
}

func (s sink) Success(msg string)   { s.send(notifyMsg(true, msg)) }
func (s sink) Error(msg string)     { s.send(notifyMsg(false, msg)) }
func (s sink) Redirect(path string) { s.send(redirectMsg(path)) }

// Bind makes the session store deliver its notifications and redirects through send.
func (a *App) Bind(send func(tea.Msg)) {
	s := sink{send: send}
	a.deps.Store.SetNotifier(s)
	a.deps.Store.SetNavigator(s)
}

// Model returns the current per-identity model.
func (a *App) Model() *Model { return a.model }

// Notice returns the last notification and whether it was a success.
func (a *App) Notice() (string, bool) {
	if a.notice == nil {
		return "", false
	}
	return a.notice.text, a.notice.ok
}

// Init initializes the current model.
func (a *App) Init() tea.Cmd {
	return a.model.Init()
}

// Update handles redirects and notifications and delegates everything else to the current model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
	case tea.KeyMsg:
		a.notice = nil
	case Msg:
		if msg.owner != nil && msg.owner != a.model {
			return a, nil
		}
		switch msg.kind {
		case MsgRedirect:
			a.deps.Logger.Info("redirect", "path", msg.data)
			a.model = newModel(a.ctx, a.deps, a.width, a.height)
			return a, a.model.Init()
		case MsgNotify:
			n := msg.data.(notice)
			a.notice = &n
			return a, nil
		}
	}
	return a, a.model.Update(msg)
}

// View renders the current model with the notification line.
func (a *App) View() string {
	out := a.model.View()
	if a.notice == nil {
		return out
	}
	if a.notice.ok {
		return out + "\n" + styles.ok.Render("✓ "+a.notice.text)
	}
	return out + "\n" + styles.err.Render("✗ "+a.notice.text)
}

// Model is the TUI state for a single identity.
type Model struct {
	ctx     context.Context
	deps    Deps
	view    ViewState
	signin  signInForm
	home    list.Model
	screens []screen
	active  screen
	failed  map[string]bool
	width   int
	height  int

	dashboard    *tasks.Dashboard
	loading      bool
	progressChan chan tasks.ProgressUpdate
	doneChan     chan Msg
	progress     tasks.ProgressUpdate
	err          error

	help help.Model
	keys keyMap
}

func newModel(ctx context.Context, deps Deps, width, height int) *Model {
	m := &Model{
		ctx:    ctx,
		deps:   deps,
		view:   SignInView,
		signin: newSignInForm(),
		failed: map[string]bool{},
		width:  width,
		height: height,
		help:   help.New(),
		keys:   newKeyMap(),
	}
	if deps.Store.IsAuthenticated() {
		m.enterHome()
	}
	return m
}

// ViewState returns the active view state.
func (m *Model) ViewState() ViewState { return m.view }

// Active returns the open table screen, if any.
func (m *Model) Active() (string, bool) {
	if m.active == nil {
		return "", false
	}
	return m.active.Name(), true
}

// Init loads the dashboard for a restored session, or starts the sign-in cursor.
func (m *Model) Init() tea.Cmd {
	if m.view == HomeView {
		return m.loadDashboard()
	}
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.screens != nil {
			m.home.SetSize(msg.Width-4, msg.Height-8)
		}
		return nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return tea.Quit
		}
		switch m.view {
		case SignInView:
			return m.handleSignInKeys(msg)
		case HomeView:
			return m.handleHomeKeys(msg)
		case TableView:
			return m.handleTableKeys(msg)
		}
		return nil

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == SignInView {
		return m.signin.forward(msg)
	}
	if m.view == HomeView {
		var cmd tea.Cmd
		m.home, cmd = m.home.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleMsg(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgSignedIn:
		data := msg.data.(signedIn)
		if data.err != nil {
			m.deps.Logger.Warn("sign in failed", "error", data.err)
			m.signin.reset()
			return nil
		}
		m.deps.Logger.Info("signed in", "role", data.identity.Role)
		m.enterHome()
		return m.loadDashboard()

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m.waitForProgress()

	case MsgDashboardLoaded:
		data := msg.data.(dashboardLoaded)
		m.loading = false
		m.progressChan, m.doneChan = nil, nil
		if data.err != nil {
			m.err = data.err
			return nil
		}
		m.err = nil
		m.dashboard = data.dashboard
		m.failed = map[string]bool{}
		for _, sec := range data.dashboard.Failed() {
			m.deps.Logger.Warn("dashboard section failed", "section", sec.Name, "error", sec.Err)
			m.failed[sec.Name] = true
		}
		for _, s := range m.screens {
			s.Seed(data.dashboard)
		}
		return m.refreshHome()

	case MsgRowsLoaded:
		data := msg.data.(rowsLoaded)
		data.apply()
		if data.err != nil {
			m.deps.Logger.Warn("load failed", "screen", data.screen, "error", data.err)
			m.failed[data.screen] = true
			return notify(false, services.MessageOf(data.err, "Could not load "+data.screen))
		}
		delete(m.failed, data.screen)
		return m.refreshHome()

	case MsgActionDone:
		data := msg.data.(actionDone)
		if data.err != nil {
			m.deps.Logger.Warn("action failed", "screen", data.screen, "action", data.label, "error", data.err)
			return notify(false, services.MessageOf(data.err, data.label+" failed"))
		}
		if !data.ran {
			return nil
		}
		cmds := []tea.Cmd{notify(true, data.label+" done")}
		if s := m.lookup(data.screen); s != nil {
			cmds = append(cmds, m.own(s.Load(m.ctx)))
		}
		return tea.Batch(cmds...)
	}
	return nil
}

func (m *Model) handleSignInKeys(msg tea.KeyMsg) tea.Cmd {
	sub, cmd := m.signin.Update(msg)
	if sub == nil {
		return cmd
	}
	store, ctx := m.deps.Store, m.ctx
	return m.own(func() tea.Msg {
		identity, err := store.Login(ctx, sub.email, sub.password)
		return signedInMsg(identity, err)
	})
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.logout):
		return m.logout()
	case key.Matches(msg, m.keys.refresh):
		if !m.loading {
			return m.loadDashboard()
		}
		return nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.home.SelectedItem().(screenItem); ok {
			return m.open(item.screen)
		}
		return nil
	}

	var cmd tea.Cmd
	m.home, cmd = m.home.Update(msg)
	return cmd
}

func (m *Model) handleTableKeys(msg tea.KeyMsg) tea.Cmd {
	if m.active.Capturing() {
		return m.own(m.active.HandleKey(m.ctx, msg))
	}
	switch {
	case key.Matches(msg, m.keys.back):
		return m.goHome()
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.logout):
		return m.logout()
	}
	return m.own(m.active.HandleKey(m.ctx, msg))
}

// enterHome builds the screens for the signed-in role.
func (m *Model) enterHome() {
	role := m.deps.Store.Role()
	m.screens = buildScreens(m.ctx, role, m.deps.API, m.deps.Open, m.deps.PageSize)
	m.home = list.New(screenItems(m.screens, m.failed), list.NewDefaultDelegate(), m.width-4, m.height-8)
	m.home.DisableQuitKeybindings()
	m.home.SetFilteringEnabled(false)
	m.home.SetShowHelp(false)
	m.home.Title = homeTitle(m.deps.Store)
	m.view = HomeView
	m.active = nil
}

func homeTitle(store *session.Store) string {
	id, ok := store.Identity()
	if !ok {
		return "Home"
	}
	return fmt.Sprintf("%s home • %s", roleLabel(id.Role), id.Email)
}

func roleLabel(r models.Role) string {
	return table.StatusLabel(string(r))
}

func (m *Model) refreshHome() tea.Cmd {
	if m.screens == nil {
		return nil
	}
	return m.home.SetItems(screenItems(m.screens, m.failed))
}

// guard is the route check applied on every view switch.
func (m *Model) guard(roles ...models.Role) tea.Cmd {
	if session.Allow(m.deps.Store, roles...) {
		return nil
	}
	if !m.deps.Store.IsAuthenticated() {
		return func() tea.Msg { return redirectMsg(session.RootPath) }
	}
	return notify(false, "You do not have access to this view")
}

func (m *Model) goHome() tea.Cmd {
	if cmd := m.guard(); cmd != nil {
		return cmd
	}
	m.view = HomeView
	m.active = nil
	return m.refreshHome()
}

func (m *Model) open(s screen) tea.Cmd {
	if cmd := m.guard(s.Roles()...); cmd != nil {
		return cmd
	}
	m.deps.Logger.Debug("open screen", "screen", s.Name())
	m.active = s
	m.view = TableView
	if !s.Loaded() || m.failed[s.Name()] {
		return m.own(s.Load(m.ctx))
	}
	return nil
}

func (m *Model) lookup(name string) screen {
	for _, s := range m.screens {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// logout runs off the update loop; the store's navigator delivers the redirect.
func (m *Model) logout() tea.Cmd {
	store := m.deps.Store
	return func() tea.Msg {
		store.Logout()
		return nil
	}
}

func (m *Model) loadDashboard() tea.Cmd {
	if m.deps.Loader == nil {
		return nil
	}
	ch := make(chan tasks.ProgressUpdate, 16)
	done := make(chan Msg, 1)
	m.progressChan, m.doneChan = ch, done
	m.loading = true
	m.progress = tasks.ProgressUpdate{}

	loader, ctx, role := m.deps.Loader, m.ctx, m.deps.Store.Role()
	go func() {
		d, err := loader.Dashboard(ctx, role, ch)
		done <- dashboardLoadedMsg(d, err)
		close(ch)
	}()
	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	ch, done := m.progressChan, m.doneChan
	if ch == nil {
		return nil
	}
	return m.own(func() tea.Msg {
		if update, ok := <-ch; ok {
			return progressUpdateMsg(update)
		}
		return <-done
	})
}

// own tags the messages produced by cmd with m, so results that arrive after a redirect replaced m are dropped.
func (m *Model) own(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		msg := cmd()
		if x, ok := msg.(Msg); ok && x.owner == nil {
			x.owner = m
			return x
		}
		return msg
	}
}

func notify(ok bool, text string) tea.Cmd {
	return func() tea.Msg { return notifyMsg(ok, text) }
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SignInView:
		return m.signin.View()
	case HomeView:
		return m.renderHome()
	case TableView:
		return m.renderTable()
	default:
		return ""
	}
}

func (m *Model) renderHome() string {
	var b strings.Builder
	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}
	if m.loading {
		b.WriteString(styles.warn.Render("Loading dashboard... " + m.progress.Message))
		b.WriteString("\n\n")
	}
	b.WriteString(m.home.View())
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.refresh, m.keys.logout, m.keys.quit}))
	return b.String()
}

func (m *Model) renderTable() string {
	return fmt.Sprintf("%s\n%s", m.active.View(m.width-2), m.help.ShortHelpView(m.keys.tableHelp()))
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, deps Deps, opts ...tea.ProgramOption) error {
	app := NewApp(ctx, deps)
	p := tea.NewProgram(app, append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)...)
	// Sends happen from command goroutines and from Update itself, so they must not block the event loop.
	app.Bind(func(msg tea.Msg) { go p.Send(msg) })

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
