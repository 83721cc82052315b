package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/Zuo-Peng/chatview/internal/index"
	"github.com/Zuo-Peng/chatview/internal/ingest"
	"github.com/Zuo-Peng/chatview/internal/logging"
	"github.com/Zuo-Peng/chatview/internal/render"
	"github.com/Zuo-Peng/chatview/internal/search"
	"github.com/Zuo-Peng/chatview/internal/source"
)

const (
	debounceDelay = 200 * time.Millisecond
	menuWidth     = 28
	searchLimit   = 500
)

type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputOpen
)

// message types

type searchResultMsg struct {
	query   string
	seq     uint64
	results []search.Result
	err     error
}

type debounceTickMsg struct {
	query string
}

type statusMsg struct {
	text string
}

// reloadMsg is sent when the followed export changes on disk.
type reloadMsg struct {
	path string
}

// Options configures Run.
type Options struct {
	Orchestrator *ingest.Orchestrator
	DB           *index.DB // search is disabled when nil
	Notifier     *Notifier // must be the orchestrator's notifier
	Path         string    // export to load at startup; "" loads the sample
	Follow       bool      // reload Path when it changes on disk
}

// model

type model struct {
	orch *ingest.Orchestrator
	db   *index.DB
	log  zerolog.Logger

	startPath string
	state     ingest.State
	info      source.Info
	inflight  int

	menu       menuState
	menuCursor int
	menuOffset int

	mode   inputMode
	input  textinput.Model
	query  string
	hits   []search.Result
	hitIdx int

	timeline    viewport.Model
	timelineKey string // content on screen
	wantKey     string // latest requested render
	shownSeq    uint64

	alert  string
	status string

	width    int
	height   int
	ready    bool
	quitting bool
}

func initialModel(opts Options) model {
	ti := textinput.New()
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256

	return model{
		orch:      opts.Orchestrator,
		db:        opts.DB,
		log:       logging.Component("tui"),
		startPath: opts.Path,
		state:     opts.Orchestrator.State(),
		inflight:  1,
		input:     ti,
		timeline:  newViewport(0, 0),
	}
}

// Run starts the TUI and blocks until it exits.
func Run(opts Options) error {
	if opts.Orchestrator == nil {
		return errors.New("tui: no orchestrator")
	}
	m := initialModel(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if opts.Notifier != nil {
		opts.Notifier.attach(p.Send)
		defer opts.Notifier.attach(nil)
	}

	if opts.Follow {
		w, err := source.Watch(opts.Path, source.DefaultDebounce)
		if err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx, func() { p.Send(reloadMsg{path: w.Path()}) })
	}
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// Init starts the startup ingestion.
func (m model) Init() tea.Cmd {
	return ingestCmd(m.orch, m.startPath)
}

// Update handles messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.menu.markRendered()
		m.timeline = newViewport(m.timelineWidth(), m.panelHeight())
		m.timelineKey = ""
		m.wantKey = ""
		cmd := m.requestRender()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
			var cmd tea.Cmd
			m.timeline, cmd = m.timeline.Update(msg)
			return m, cmd
		}
		return m, nil

	case alertMsg:
		m.alert = msg.message
		return m, nil

	case statusMsg:
		m.status = msg.text
		return m, nil

	case ingestDoneMsg:
		return m.applyIngest(msg)

	case reloadMsg:
		// ignore changes to a file that is no longer on screen
		if msg.path == "" || msg.path != m.info.Path {
			return m, nil
		}
		m.inflight++
		m.status = "reloading " + m.info.Name
		return m, ingestCmd(m.orch, msg.path)

	case debounceTickMsg:
		// Only fire search if query hasn't changed since debounce was scheduled
		if msg.query == m.query {
			return m, m.doSearch(msg.query)
		}
		return m, nil

	case searchResultMsg:
		if msg.query != m.query || msg.seq != m.state.Seq {
			return m, nil
		}
		m.hitIdx = 0
		if msg.err != nil {
			m.hits = nil
			m.status = "search: " + msg.err.Error()
		} else {
			m.hits = msg.results
			if m.query != "" {
				m.status = fmt.Sprintf("%d hits", len(m.hits))
			}
		}
		cmd := m.requestRender()
		return m, cmd

	case timelineRenderedMsg:
		if msg.key != m.wantKey || msg.key == m.timelineKey {
			return m, nil // stale or already shown
		}
		m.timeline.SetContent(msg.content)
		switch {
		case msg.hitLine >= 0:
			m.timeline.SetYOffset(msg.hitLine)
		case m.shownSeq != m.state.Seq:
			m.timeline.GotoTop()
		}
		m.timelineKey = msg.key
		m.shownSeq = m.state.Seq
		return m, nil
	}

	if m.mode != inputNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) applyIngest(msg ingestDoneMsg) (tea.Model, tea.Cmd) {
	m.inflight--
	if m.inflight < 0 {
		m.inflight = 0
	}
	if errors.Is(msg.err, ingest.ErrStale) {
		return m, nil
	}
	if msg.err != nil {
		// the notifier raised the alert; the previous chat stays
		m.status = ""
		return m, nil
	}
	if msg.state.Seq < m.state.Seq {
		return m, nil
	}

	m.state = msg.state
	m.info = msg.info
	m.menuCursor = 0
	m.menuOffset = 0
	m.hits = nil
	m.hitIdx = 0
	m.status = "loaded " + msg.info.Name

	cmds := []tea.Cmd{m.requestRender()}
	if m.query != "" {
		cmds = append(cmds, m.doSearch(m.query))
	}
	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.alert != "" {
		m.alert = ""
		return m, nil
	}
	if m.mode != inputNone {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.CloseMenu):
		if m.menu.open {
			m.menu.close()
			cmd := m.relayout()
			return m, cmd
		}
		if m.query != "" {
			m.query = ""
			m.hits = nil
			m.status = ""
			cmd := m.requestRender()
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, keys.ToggleMenu):
		m.menu.toggle()
		cmd := m.relayout()
		return m, cmd

	case key.Matches(msg, keys.Up):
		if m.menu.open {
			if m.menuCursor > 0 {
				m.menuCursor--
				m.adjustMenuScroll(m.panelHeight())
			}
			return m, nil
		}
		m.timeline.LineUp(1)
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.menu.open {
			if m.menuCursor < len(m.state.Participants)-1 {
				m.menuCursor++
				m.adjustMenuScroll(m.panelHeight())
			}
			return m, nil
		}
		m.timeline.LineDown(1)
		return m, nil

	case key.Matches(msg, keys.PageUp):
		m.timeline.LineUp(m.panelHeight())
		return m, nil

	case key.Matches(msg, keys.PageDown):
		m.timeline.LineDown(m.panelHeight())
		return m, nil

	case key.Matches(msg, keys.Top):
		m.timeline.GotoTop()
		return m, nil

	case key.Matches(msg, keys.Bottom):
		m.timeline.GotoBottom()
		return m, nil

	case key.Matches(msg, keys.Select):
		if !m.menu.open || m.menuCursor >= len(m.state.Participants) {
			return m, nil
		}
		name := m.state.Participants[m.menuCursor]
		if err := m.orch.SetActive(name); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.log.Debug().Str("participant", name).Msg("active participant changed")
		m.state.ActiveParticipant = name
		cmd := m.requestRender()
		return m, cmd

	case key.Matches(msg, keys.Search):
		m.mode = inputSearch
		m.input.Prompt = "/ "
		m.input.Placeholder = "Search..."
		m.input.SetValue(m.query)
		m.input.CursorEnd()
		cmd := m.input.Focus()
		return m, tea.Batch(cmd, textinput.Blink)

	case key.Matches(msg, keys.OpenFile):
		m.mode = inputOpen
		m.input.Prompt = "open: "
		m.input.Placeholder = "path to export, empty for the sample"
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, tea.Batch(cmd, textinput.Blink)

	case key.Matches(msg, keys.NextHit):
		if len(m.hits) == 0 {
			return m, nil
		}
		m.hitIdx = (m.hitIdx + 1) % len(m.hits)
		cmd := m.requestRender()
		return m, cmd

	case key.Matches(msg, keys.PrevHit):
		if len(m.hits) == 0 {
			return m, nil
		}
		m.hitIdx = (m.hitIdx - 1 + len(m.hits)) % len(m.hits)
		cmd := m.requestRender()
		return m, cmd

	case key.Matches(msg, keys.Copy):
		return m, copyTimelineCmd(m.state, m.info.Name)
	}

	return m, nil
}

func (m model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyEsc:
		m.mode = inputNone
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = inputNone
		m.input.Blur()

		if mode == inputOpen {
			m.inflight++
			m.status = "loading " + displayPath(value)
			m.log.Debug().Str("path", value).Msg("ingest requested")
			return m, ingestCmd(m.orch, value)
		}

		m.query = value
		if value == "" {
			m.hits = nil
			m.status = ""
			cmd := m.requestRender()
			return m, cmd
		}
		return m, m.doSearch(value)
	}

	var cmds []tea.Cmd
	var tiCmd tea.Cmd
	m.input, tiCmd = m.input.Update(msg)
	cmds = append(cmds, tiCmd)

	// Check if query changed
	if m.mode == inputSearch {
		if q := m.input.Value(); q != m.query {
			m.query = q
			cmds = append(cmds, m.scheduleDebouncedSearch(q))
		}
	}
	return m, tea.Batch(cmds...)
}

// View renders the full TUI.
func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}
	if m.alert != "" {
		return m.alertView()
	}

	timelineW := m.timelineWidth()
	panelH := m.panelHeight()

	m.timeline.Width = timelineW
	m.timeline.Height = panelH

	timelineStyle, menuStyle := styleActiveBorder, stylePanelBorder
	if m.menu.open {
		timelineStyle, menuStyle = stylePanelBorder, styleActiveBorder
	}
	panels := timelineStyle.
		Width(timelineW).
		Height(panelH).
		Render(m.timeline.View())

	if m.menu.open {
		menuPanel := menuStyle.
			Width(menuWidth).
			Height(panelH).
			Render(m.renderMenu(menuWidth, panelH))
		panels = lipgloss.JoinHorizontal(lipgloss.Top, menuPanel, panels)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.topRow(), panels, m.statusBar())
}

func (m model) topRow() string {
	if m.mode != inputNone {
		return m.input.View()
	}
	btn := styleButton.Render("≡ Participants")
	if m.menu.focus == focusOpenButton {
		btn = styleButtonFocused.Render("≡ Participants")
	}
	return btn + " " + styleTitle.Render(m.info.Name)
}

func (m model) alertView() string {
	box := styleAlert.Render(m.alert + "\n\n" +
		lipgloss.NewStyle().Foreground(colorDim).Render("press any key"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// helper methods

func (m model) timelineWidth() int {
	if m.width <= 0 {
		return 60
	}
	// minus both borders, and the sidebar with its borders when open
	w := m.width - 4
	if m.menu.open {
		w -= menuWidth + 2
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// Subtract top row (1) + status bar (1) + borders (2)
	h := m.height - 4
	if h < 5 {
		h = 5
	}
	return h
}

func (m model) statusBar() string {
	var parts []string
	if m.inflight > 0 {
		parts = append(parts, "loading...")
	}
	parts = append(parts, fmt.Sprintf("%d messages", len(m.state.Visible())))
	if len(m.hits) > 0 {
		parts = append(parts, fmt.Sprintf("hit %d/%d", m.hitIdx+1, len(m.hits)))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts, "m participants")
	parts = append(parts, "/ search")
	parts = append(parts, "n/N hits")
	parts = append(parts, "o open")
	parts = append(parts, "y copy")
	parts = append(parts, "q quit")
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

func (m model) currentHit() int {
	if len(m.hits) == 0 || m.hitIdx >= len(m.hits) {
		return 0
	}
	return m.hits[m.hitIdx].Seq
}

// relayout resizes the timeline after the sidebar opens or closes.
func (m *model) relayout() tea.Cmd {
	m.timeline.Width = m.timelineWidth()
	return m.requestRender()
}

func (m *model) requestRender() tea.Cmd {
	if !m.ready {
		return nil
	}
	opts := renderOptions(*m)
	key := timelineCacheKey(m.state, opts.HitSeq, opts.Query, opts.Width)
	if key == m.wantKey {
		return nil // already showing or rendering this timeline
	}
	m.wantKey = key
	return renderTimelineCmd(m.state, key, opts)
}

func renderOptions(m model) render.Options {
	return render.Options{
		Title:   m.info.Name,
		HitSeq:  m.currentHit(),
		Context: -1,
		Width:   m.timelineWidth(),
		Query:   m.query,
	}
}

func (m model) doSearch(query string) tea.Cmd {
	db := m.db
	seq := m.state.Seq
	return func() tea.Msg {
		if db == nil || strings.TrimSpace(query) == "" {
			return searchResultMsg{query: query, seq: seq}
		}
		results, err := search.Search(db, search.Options{Query: query, Limit: searchLimit})
		return searchResultMsg{query: query, seq: seq, results: results, err: err}
	}
}

func (m model) scheduleDebouncedSearch(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceTickMsg{query: query}
	})
}

// copyTimelineCmd copies the visible chat as plain text.
func copyTimelineCmd(st ingest.State, title string) tea.Cmd {
	return func() tea.Msg {
		text, _ := render.RenderTimeline(st, render.Options{Title: title, Context: -1, NoColor: true})
		if err := clipboard.WriteAll(text); err != nil {
			return statusMsg{text: "copy failed: " + err.Error()}
		}
		return statusMsg{text: fmt.Sprintf("copied %d messages", len(st.Visible()))}
	}
}

func displayPath(path string) string {
	if path == "" {
		return source.SampleName
	}
	return path
}
