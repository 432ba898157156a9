package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fretless/tabstash/internal/formatter"
	"github.com/fretless/tabstash/internal/models"
	"github.com/fretless/tabstash/internal/session"
	"github.com/fretless/tabstash/internal/tabs"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	AuthView ViewState = iota
	ListView
	DetailView
	AddView
)

type authMode int

const (
	modeLogin authMode = iota
	modeSignup
)

type sessionChangedMsg struct {
	state session.State
}

type trackerReadyMsg struct {
	err error
}

type authResultMsg struct {
	mode authMode
	err  error
}

type refreshDoneMsg struct {
	err error
}

type submitDoneMsg struct {
	err error
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	tracker    *session.Tracker
	collection *tabs.Collection
	submitter  *tabs.Submitter

	view   ViewState
	state  session.State
	width  int
	height int

	emailInput    textinput.Model
	passwordInput textinput.Model
	authFocus     int
	authBusy      bool

	tabList     list.Model
	searchInput textinput.Model
	searching   bool
	query       string

	selected *models.Tab

	titleInput   textinput.Model
	artistInput  textinput.Model
	tuningInput  textinput.Model
	contentInput textarea.Model
	addFocus     int
	addBusy      bool

	spin    spinner.Model
	loading bool
	status  string
	errText string

	changes chan session.State
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model with the provided dependencies and
// subscribes to the tracker's change stream.
func NewModel(ctx context.Context, tracker *session.Tracker, collection *tabs.Collection, submitter *tabs.Submitter) *Model {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 40
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	search := textinput.New()
	search.Placeholder = "search by title or artist..."
	search.CharLimit = 128
	search.Width = 40

	title := textinput.New()
	title.Placeholder = "title"
	title.CharLimit = 200
	title.Width = 40

	artist := textinput.New()
	artist.Placeholder = "artist"
	artist.CharLimit = 200
	artist.Width = 40

	tuning := textinput.New()
	tuning.Placeholder = "tuning (optional)"
	tuning.CharLimit = 64
	tuning.Width = 40

	content := textarea.New()
	content.Placeholder = "tab content..."
	content.CharLimit = 0
	content.SetWidth(72)
	content.SetHeight(10)

	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Guitar Tabs"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	m := &Model{
		ctx:           ctx,
		tracker:       tracker,
		collection:    collection,
		submitter:     submitter,
		view:          AuthView,
		emailInput:    email,
		passwordInput: password,
		searchInput:   search,
		titleInput:    title,
		artistInput:   artist,
		tuningInput:   tuning,
		contentInput:  content,
		tabList:       l,
		spin:          spinner.New(spinner.WithSpinner(spinner.Dot)),
		changes:       make(chan session.State, 16),
		help:          help.New(),
		keys:          newKeyMap(),
	}

	tracker.OnChange(func(s session.State) {
		m.changes <- s
	})

	return m
}

// Init starts the tracker (startup session query + notification
// subscription) and arms the change-stream listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.startTracker(), m.waitForChange())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tabList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case sessionChangedMsg:
		return m.handleSessionChange(msg.state)

	case trackerReadyMsg:
		if msg.err != nil {
			m.errText = fmt.Sprintf("could not restore session: %v", msg.err)
		}
		return m, nil

	case authResultMsg:
		m.authBusy = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		m.errText = ""
		if msg.mode == modeSignup {
			m.status = "Signup successful! You're now logged in."
		} else {
			m.status = "Logged in successfully!"
		}
		m.passwordInput.SetValue("")
		return m, nil

	case refreshDoneMsg:
		m.loading = false
		m.applyFilter()
		return m, nil

	case submitDoneMsg:
		m.addBusy = false
		if msg.err != nil {
			// Inputs stay as typed so the submission can be retried.
			m.errText = msg.err.Error()
			return m, nil
		}
		m.errText = ""
		m.status = "Tab added!"
		m.titleInput.SetValue("")
		m.artistInput.SetValue("")
		m.tuningInput.SetValue("")
		m.contentInput.SetValue("")
		m.view = ListView
		m.applyFilter()
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case AuthView:
			return m.handleAuthKeys(msg)
		case ListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case AddView:
			return m.handleAddKeys(msg)
		}
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case AuthView:
		return m.renderAuth()
	case ListView:
		return m.renderList()
	case DetailView:
		return m.renderDetail()
	case AddView:
		return m.renderAdd()
	default:
		return ""
	}
}

// handleSessionChange applies a tracker transition to the view: logging in
// lands on the list, logging out clears the search filter, the cached
// snapshot view and any expanded entry, and returns to the auth form.
func (m *Model) handleSessionChange(state session.State) (tea.Model, tea.Cmd) {
	m.state = state

	if state.Visibility.LoggedIn {
		if m.view == AuthView {
			m.view = ListView
			m.errText = ""
		}
		m.applyFilter()
	} else {
		m.view = AuthView
		m.selected = nil
		m.query = ""
		m.searching = false
		m.searchInput.SetValue("")
		m.passwordInput.SetValue("")
		m.authFocus = 0
		m.emailInput.Focus()
		m.passwordInput.Blur()
		m.tabList.SetItems([]list.Item{})
		m.status = ""
	}

	return m, m.waitForChange()
}

func (m *Model) handleAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit

	case key.Matches(msg, m.keys.next), key.Matches(msg, m.keys.prev),
		key.Matches(msg, m.keys.up), key.Matches(msg, m.keys.down):
		m.authFocus = (m.authFocus + 1) % 2
		if m.authFocus == 0 {
			m.emailInput.Focus()
			m.passwordInput.Blur()
		} else {
			m.emailInput.Blur()
			m.passwordInput.Focus()
		}
		return m, textinput.Blink

	case msg.String() == "enter":
		return m, m.startAuth(modeLogin)

	case msg.String() == "ctrl+n":
		return m, m.startAuth(modeSignup)
	}

	var cmd tea.Cmd
	if m.authFocus == 0 {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.searchInput.Blur()
			return m, nil
		case "enter":
			m.searching = false
			m.searchInput.Blur()
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}

		// Filter re-runs synchronously on every keystroke.
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		m.query = m.searchInput.Value()
		m.applyFilter()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.search):
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.enter):
		if item, ok := m.tabList.SelectedItem().(tabItem); ok {
			tab := item.tab
			m.selected = &tab
			m.view = DetailView
		}
		return m, nil

	case key.Matches(msg, m.keys.add):
		if m.state.Visibility.Admin {
			m.view = AddView
			m.addFocus = 0
			m.focusAddField()
			m.errText = ""
			m.status = ""
		}
		return m, nil

	case key.Matches(msg, m.keys.refresh):
		m.loading = true
		return m, tea.Batch(m.spin.Tick, m.refreshTabs())

	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	}

	var cmd tea.Cmd
	m.tabList, cmd = m.tabList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.selected = nil
		m.view = ListView
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleAddKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit

	case msg.String() == "esc":
		m.view = ListView
		return m, nil

	case key.Matches(msg, m.keys.next):
		m.addFocus = (m.addFocus + 1) % 4
		m.focusAddField()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.prev):
		m.addFocus = (m.addFocus + 3) % 4
		m.focusAddField()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.submit):
		return m, m.startSubmit()
	}

	var cmd tea.Cmd
	switch m.addFocus {
	case 0:
		m.titleInput, cmd = m.titleInput.Update(msg)
	case 1:
		m.artistInput, cmd = m.artistInput.Update(msg)
	case 2:
		m.tuningInput, cmd = m.tuningInput.Update(msg)
	case 3:
		m.contentInput, cmd = m.contentInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) focusAddField() {
	m.titleInput.Blur()
	m.artistInput.Blur()
	m.tuningInput.Blur()
	m.contentInput.Blur()
	switch m.addFocus {
	case 0:
		m.titleInput.Focus()
	case 1:
		m.artistInput.Focus()
	case 2:
		m.tuningInput.Focus()
	case 3:
		m.contentInput.Focus()
	}
}

// applyFilter recomputes the filtered view from the current snapshot and
// query and replaces the list items.
func (m *Model) applyFilter() {
	filtered := tabs.Filter(m.collection.Snapshot(), m.query)
	items := make([]list.Item, len(filtered))
	for i, tab := range filtered {
		items[i] = tabItem{tab: tab}
	}
	m.tabList.SetItems(items)
}

// startAuth launches login or signup unless one is already in flight.
// The tracker enforces the per-action guard; the local flag only drives the
// spinner.
func (m *Model) startAuth(mode authMode) tea.Cmd {
	if m.authBusy {
		return nil
	}
	m.authBusy = true
	m.status = ""
	email := strings.TrimSpace(m.emailInput.Value())
	password := m.passwordInput.Value()

	return tea.Batch(m.spin.Tick, func() tea.Msg {
		var err error
		if mode == modeSignup {
			err = m.tracker.Signup(m.ctx, email, password)
		} else {
			err = m.tracker.Login(m.ctx, email, password)
		}
		return authResultMsg{mode: mode, err: err}
	})
}

func (m *Model) startSubmit() tea.Cmd {
	if m.addBusy {
		return nil
	}
	m.addBusy = true
	m.status = ""
	title := m.titleInput.Value()
	artist := m.artistInput.Value()
	tuning := m.tuningInput.Value()
	content := m.contentInput.Value()

	return tea.Batch(m.spin.Tick, func() tea.Msg {
		err := m.submitter.Submit(m.ctx, title, artist, tuning, content)
		return submitDoneMsg{err: err}
	})
}

func (m *Model) startTracker() tea.Cmd {
	return func() tea.Msg {
		err := m.tracker.Init(m.ctx)
		return trackerReadyMsg{err: err}
	}
}

func (m *Model) refreshTabs() tea.Cmd {
	return func() tea.Msg {
		err := m.collection.Refresh(m.ctx)
		return refreshDoneMsg{err: err}
	}
}

func (m *Model) logout() tea.Cmd {
	return func() tea.Msg {
		// Fire and forget; the UI transitions when the session-change
		// notification lands.
		m.tracker.Logout(m.ctx)
		return nil
	}
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		return sessionChangedMsg{state: <-m.changes}
	}
}

func (m *Model) renderAuth() string {
	title := styles.title.Render("tabstash — shared guitar tabs")

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\nPlease log in or sign up to view guitar tabs.\n\n")
	b.WriteString(m.emailInput.View())
	b.WriteString("\n")
	b.WriteString(m.passwordInput.View())
	b.WriteString("\n\n")

	if m.authBusy {
		b.WriteString(m.spin.View() + " working...\n")
	}
	if m.errText != "" {
		b.WriteString(styles.err.Render(m.errText) + "\n")
	}
	if m.status != "" {
		b.WriteString(styles.ok.Render(m.status) + "\n")
	}

	b.WriteString("\n" + styles.help.Render("enter login • ctrl+n sign up • tab switch field • ctrl+c quit"))
	return b.String()
}

func (m *Model) renderList() string {
	var b strings.Builder

	email := "logged in"
	if m.state.Session != nil {
		email = formatter.Escape(m.state.Session.Email)
	}
	header := email
	if m.state.Visibility.Admin {
		header += " " + styles.warn.Render("[admin]")
	}
	b.WriteString(styles.title.Render("Guitar Tabs") + "  " + styles.help.Render(header) + "\n")

	if m.searching || m.query != "" {
		b.WriteString("Search: " + m.searchInput.View() + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spin.View() + " Loading tabs...\n")

	case m.collection.LoadError() != nil:
		b.WriteString(styles.err.Render("Error loading tabs. Try refreshing.") + "\n")

	case len(m.tabList.Items()) == 0:
		query := strings.TrimSpace(m.query)
		if query != "" {
			b.WriteString(fmt.Sprintf("No tabs found matching %q.\n", query))
		} else {
			b.WriteString("No tabs found.\n")
			if m.state.Visibility.Admin {
				b.WriteString("Add your first tab with 'a'!\n")
			} else {
				b.WriteString("More songs coming soon — check back later!\n")
			}
		}

	default:
		b.WriteString(m.tabList.View() + "\n")
	}

	if m.errText != "" {
		b.WriteString(styles.err.Render(m.errText) + "\n")
	}
	if m.status != "" {
		b.WriteString(styles.ok.Render(m.status) + "\n")
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.search, m.keys.refresh}
	if m.state.Visibility.Admin {
		helpKeys = append(helpKeys, m.keys.add)
	}
	helpKeys = append(helpKeys, m.keys.logout, m.keys.quit)
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return "No tab selected.\n\n" + m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	}

	title := styles.title.Render(formatter.SummaryLine(*m.selected))
	content := formatter.Escape(m.selected.Content)

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, content, helpView)
}

func (m *Model) renderAdd() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Add Tab") + "\n")
	b.WriteString(m.titleInput.View() + "\n")
	b.WriteString(m.artistInput.View() + "\n")
	b.WriteString(m.tuningInput.View() + "\n\n")
	b.WriteString(m.contentInput.View() + "\n\n")

	if m.addBusy {
		b.WriteString(m.spin.View() + " Adding...\n")
	}
	if m.errText != "" {
		b.WriteString(styles.err.Render(m.errText) + "\n")
	}

	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.submit, m.keys.next, m.keys.back, m.keys.quit}))
	return b.String()
}
