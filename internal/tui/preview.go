package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/Zuo-Peng/chatview/internal/ingest"
	"github.com/Zuo-Peng/chatview/internal/logging"
	"github.com/Zuo-Peng/chatview/internal/render"
	"github.com/Zuo-Peng/chatview/internal/source"
)

// timelineRenderedMsg is sent when an async timeline render completes.
type timelineRenderedMsg struct {
	key     string
	content string
	hitLine int
}

// ingestDoneMsg carries the outcome of one ingestion. state is the
// orchestrator state as of that ingestion's completion.
type ingestDoneMsg struct {
	info  source.Info
	state ingest.State
	err   error
}

// alertMsg raises the blocking error overlay.
type alertMsg struct {
	message string
	cause   error
}

// renderTimelineCmd renders the chat timeline async.
func renderTimelineCmd(st ingest.State, key string, opts render.Options) tea.Cmd {
	return func() tea.Msg {
		content, hitLine := render.RenderTimeline(st, opts)
		return timelineRenderedMsg{key: key, content: content, hitLine: hitLine}
	}
}

func timelineCacheKey(st ingest.State, hitSeq int, query string, width int) string {
	return fmt.Sprintf("%d:%s:%d:%s:%d", st.Seq, st.ActiveParticipant, hitSeq, query, width)
}

// ingestCmd issues the ticket now and reads path in the returned command,
// so the latest request wins however the reads interleave. An empty path
// loads the orchestrator's sample.
func ingestCmd(o *ingest.Orchestrator, path string) tea.Cmd {
	if path == "" {
		done := o.LoadSample(context.Background())
		return func() tea.Msg {
			err := <-done
			return ingestDoneMsg{info: source.SampleInfo(), state: o.State(), err: err}
		}
	}

	t := o.Begin()
	return func() tea.Msg {
		rc, info, err := source.Resolve(path)
		var text string
		if err != nil {
			err = &ingest.SourceReadError{Cause: err}
		} else {
			text, err = ingest.ReadSource(context.Background(), rc)
			rc.Close()
		}
		st, err := o.Complete(t, text, err)
		return ingestDoneMsg{info: info, state: st, err: err}
	}
}

// Notifier turns ingestion failures into the TUI's error overlay. It is
// safe to call from any goroutine; before a program is attached it only
// logs.
type Notifier struct {
	mu   sync.Mutex
	send func(tea.Msg)
	log  zerolog.Logger
}

func NewNotifier() *Notifier {
	return &Notifier{log: logging.Component("tui")}
}

func (n *Notifier) attach(send func(tea.Msg)) {
	n.mu.Lock()
	n.send = send
	n.mu.Unlock()
}

func (n *Notifier) Notify(message string, cause error) {
	n.log.Warn().Err(cause).Msg(message)

	n.mu.Lock()
	send := n.send
	n.mu.Unlock()
	if send != nil {
		send(alertMsg{message: message, cause: cause})
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	return viewport.New(width, height)
}
