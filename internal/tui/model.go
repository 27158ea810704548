// Package tui renders the dashboard with bubbletea. Screens are drawn from
// the controller's state; the model only owns the search form.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/horaculo/internal/database/repository"
	"github.com/jask/horaculo/internal/prefs"
	"github.com/jask/horaculo/internal/session"
)

const (
	appName       = "HORACULO"
	sidebarWidth  = 24
	recentLimit   = 5
	minSuggestLen = 2
)

// History is the read side of search history. *service.HistoryService
// satisfies it.
type History interface {
	Recent(ctx context.Context, limit int) ([]repository.SearchRecord, error)
	Suggest(ctx context.Context, query string, mode session.Mode) ([]string, error)
}

// Deps wires the model. Only Controller is required.
type Deps struct {
	Context     context.Context
	Controller  *session.Controller
	History     History
	Prefs       *prefs.Store
	Logger      *zap.Logger
	DefaultMode session.Mode
}

// ---------------------------------------------------------------------------
// Bubble Tea messages
// ---------------------------------------------------------------------------

type stateChangedMsg struct{}

type subscriptionClosedMsg struct{}

type searchDoneMsg struct {
	req session.SearchRequest
	err error
}

type historyLoadedMsg struct {
	recent []repository.SearchRecord
	err    error
}

type suggestionsMsg struct {
	seq   int
	items []string
}

// Model is the root bubbletea model.
type Model struct {
	ctx     context.Context
	ctrl    *session.Controller
	history History
	prefs   *prefs.Store
	logger  *zap.Logger
	keys    *KeyRegistry

	updates     <-chan struct{}
	unsubscribe func()

	state   session.State
	input   textinput.Model
	spinner spinner.Model
	mode    session.Mode

	formErr     string
	status      string
	recent      []repository.SearchRecord
	suggestions []string
	suggestSeq  int

	width  int
	height int
}

// New builds the model and subscribes it to the controller.
func New(d Deps) Model {
	ctx := d.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	mode := d.DefaultMode
	if !mode.Valid() {
		mode = session.ModeMacro
	}
	var last prefs.UI
	if d.Prefs != nil {
		p, err := d.Prefs.Load()
		if err != nil {
			logger.Warn("load ui prefs", zap.Error(err))
		}
		last = p
		if m, err := session.ParseMode(last.LastMode); err == nil {
			mode = m
		}
	}

	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 120
	ti.Width = 40
	ti.Placeholder = placeholder(mode)
	ti.SetValue(last.LastQuery)
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = infoStyle

	updates, unsubscribe := d.Controller.Subscribe()
	return Model{
		ctx:         ctx,
		ctrl:        d.Controller,
		history:     d.History,
		prefs:       d.Prefs,
		logger:      logger,
		keys:        NewKeyRegistry(),
		updates:     updates,
		unsubscribe: unsubscribe,
		state:       d.Controller.State(),
		input:       ti,
		spinner:     sp,
		mode:        mode,
	}
}

func placeholder(mode session.Mode) string {
	if mode == session.ModeCrypto {
		return "Ex: SOL, BTC, ETH..."
	}
	return "Ex: Oil, Gold, FED..."
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForState(m.updates), textinput.Blink, m.loadHistory())
}

// waitForState blocks on the controller subscription.
func waitForState(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return subscriptionClosedMsg{}
		}
		return stateChangedMsg{}
	}
}

func (m Model) loadHistory() tea.Cmd {
	if m.history == nil {
		return nil
	}
	h, ctx := m.history, m.ctx
	return func() tea.Msg {
		recent, err := h.Recent(ctx, recentLimit)
		return historyLoadedMsg{recent: recent, err: err}
	}
}

func (m Model) suggest(query string) (Model, tea.Cmd) {
	m.suggestSeq++
	q := strings.TrimSpace(query)
	if m.history == nil || len([]rune(q)) < minSuggestLen {
		m.suggestions = nil
		return m, nil
	}
	h, ctx, mode, seq, logger := m.history, m.ctx, m.mode, m.suggestSeq, m.logger
	return m, func() tea.Msg {
		items, err := h.Suggest(ctx, q, mode)
		if err != nil {
			logger.Debug("suggest", zap.Error(err))
		}
		return suggestionsMsg{seq: seq, items: items}
	}
}

func (m Model) runSearch(req session.SearchRequest) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return searchDoneMsg{req: req, err: ctrl.InitiateSearch(ctx, req)}
	}
}

// scope picks the key scope for the current focus.
func (m Model) scope() string {
	portal := m.state.ActiveScreen == session.ScreenPortal
	switch {
	case portal && m.input.Focused() && !m.state.Loading:
		return scopePortalInput
	case m.state.Loading:
		return scopeLoading
	case portal:
		return scopePortal
	default:
		return scopeScreen
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(min(m.width-sidebarWidth-12, 60), 10)
		return m, nil

	case stateChangedMsg:
		wasLoading := m.state.Loading
		m.state = m.ctrl.State()
		cmds := []tea.Cmd{waitForState(m.updates)}
		if m.state.Loading && !wasLoading {
			m.input.Blur()
			cmds = append(cmds, m.spinner.Tick)
		}
		if !m.state.Loading && wasLoading {
			cmds = append(cmds, m.loadHistory())
		}
		return m, tea.Batch(cmds...)

	case subscriptionClosedMsg:
		return m, tea.Quit

	case searchDoneMsg:
		return m.handleSearchDone(msg)

	case historyLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("load search history", zap.Error(msg.err))
			return m, nil
		}
		m.recent = msg.recent
		return m, nil

	case suggestionsMsg:
		if msg.seq == m.suggestSeq {
			m.suggestions = msg.items
		}
		return m, nil

	case spinner.TickMsg:
		if !m.state.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleSearchDone(msg searchDoneMsg) (tea.Model, tea.Cmd) {
	var ve *session.ValidationError
	switch {
	case msg.err == nil:
		m.status = "Scan complete: " + msg.req.Query
		m.formErr = ""
	case errors.As(msg.err, &ve):
		m.formErr = "Enter a query to scan."
	case errors.Is(msg.err, session.ErrSuperseded):
		// a newer search owns the state
	case errors.Is(msg.err, context.Canceled):
		m.status = "Scan cancelled."
	default:
		m.status = "Scan failed. See log."
		m.logger.Warn("search failed", zap.Error(msg.err))
	}
	if m.state.ActiveScreen == session.ScreenPortal && !m.state.Loading {
		m.input.Focus()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	scope := m.scope()
	b := m.keys.Lookup(msg.String(), scope)
	if b == nil {
		if scope == scopePortalInput {
			before := m.input.Value()
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			if m.input.Value() != before {
				m.formErr = ""
				var scmd tea.Cmd
				m, scmd = m.suggest(m.input.Value())
				return m, tea.Batch(cmd, scmd)
			}
			return m, cmd
		}
		return m, nil
	}

	switch b.Action {
	case actionQuit:
		m.unsubscribe()
		return m, tea.Quit
	case actionGoto:
		screens := session.Screens()
		idx := int(msg.String()[0] - '1')
		if idx >= 0 && idx < len(screens) {
			return m.navigate(screens[idx])
		}
	case actionNextScreen, actionPrevScreen:
		return m.navigate(m.cycle(b.Action == actionNextScreen))
	case actionFocusInput:
		m, _ = m.navigateModel(session.ScreenPortal)
		if !m.state.Loading {
			m.input.Focus()
			return m, textinput.Blink
		}
	case actionBlurInput:
		m.input.Blur()
	case actionToggleMode:
		m.mode = m.mode.Toggle()
		m.input.Placeholder = placeholder(m.mode)
		return m.suggest(m.input.Value())
	case actionAcceptMatch:
		if len(m.suggestions) > 0 {
			m.input.SetValue(m.suggestions[0])
			m.input.CursorEnd()
			m.suggestions = nil
		}
	case actionSubmit:
		return m.submit()
	case actionCancelScan:
		m.ctrl.Cancel()
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	req := session.SearchRequest{Query: m.input.Value(), Mode: m.mode}
	if err := req.Validate(); err != nil {
		m.formErr = "Enter a query to scan."
		return m, nil
	}
	m.formErr = ""
	m.status = ""
	m.suggestions = nil
	if m.prefs != nil {
		if err := m.prefs.Save(prefs.UI{LastMode: string(m.mode), LastQuery: strings.TrimSpace(req.Query)}); err != nil {
			m.logger.Warn("save ui prefs", zap.Error(err))
		}
	}
	m.input.Blur()
	return m, m.runSearch(req)
}

func (m Model) cycle(forward bool) session.ScreenID {
	screens := session.Screens()
	cur := 0
	for i, s := range screens {
		if s == m.state.ActiveScreen {
			cur = i
		}
	}
	step := 1
	if !forward {
		step = len(screens) - 1
	}
	return screens[(cur+step)%len(screens)]
}

func (m Model) navigate(screen session.ScreenID) (tea.Model, tea.Cmd) {
	return m.navigateModel(screen)
}

func (m Model) navigateModel(screen session.ScreenID) (Model, tea.Cmd) {
	if err := m.ctrl.Navigate(screen); err != nil {
		m.logger.Warn("navigate", zap.String("screen", string(screen)), zap.Error(err))
		return m, nil
	}
	// apply locally so the next frame does not wait for the notification
	m.state.ActiveScreen = screen
	if screen != session.ScreenPortal {
		m.input.Blur()
	}
	return m, nil
}

// Run starts the full-screen program and blocks until it exits.
func Run(d Deps) error {
	m := New(d)
	defer m.unsubscribe()
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if d.Context != nil {
		opts = append(opts, tea.WithContext(d.Context))
	}
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
