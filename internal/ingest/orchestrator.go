package ingest

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Zuo-Peng/chatview/internal/chat"
	"github.com/Zuo-Peng/chatview/internal/logging"
)

var (
	// ErrStale is returned when a newer ingestion already published.
	ErrStale = errors.New("ingestion superseded by a newer one")

	ErrUnknownParticipant = errors.New("unknown participant")

	errInvalidUTF8 = errors.New("source is not valid UTF-8 text")
)

// SourceReadError reports a failure reading the file-like source itself.
type SourceReadError struct {
	Cause error
}

func (e *SourceReadError) Error() string {
	return "read source: " + e.Cause.Error()
}

func (e *SourceReadError) Unwrap() error {
	return e.Cause
}

// State is everything the viewer needs, published wholesale.
type State struct {
	Records           []chat.Message
	Participants      []string
	ActiveParticipant string
	LowerLimit        int
	UpperLimit        int
	Seq               uint64 // ticket of the ingestion that produced Records
}

// Visible returns the records inside the published window.
func (s State) Visible() []chat.Message {
	return sliceWindow(s.Records, s.LowerLimit, s.UpperLimit)
}

func (s State) clone() State {
	s.Records = slices.Clone(s.Records)
	s.Participants = slices.Clone(s.Participants)
	return s
}

// Publisher receives every published state. Publish runs with the
// orchestrator lock held, so it must not call back into the orchestrator.
type Publisher interface {
	Publish(State)
}

type PublisherFunc func(State)

func (f PublisherFunc) Publish(s State) { f(s) }

// Notifier is the user-facing error path.
type Notifier interface {
	Notify(message string, cause error)
}

type NotifierFunc func(message string, cause error)

func (f NotifierFunc) Notify(message string, cause error) { f(message, cause) }

type Options struct {
	Publisher Publisher
	Notifier  Notifier
	Logger    *zerolog.Logger
	// Sample opens the bundled export fed by LoadSample.
	Sample func() io.Reader
}

// Ticket identifies one ingestion attempt. Seq grows monotonically.
type Ticket struct {
	Seq uint64
	ID  string
}

type Orchestrator struct {
	adapter  *Adapter
	window   Window
	pub      Publisher
	notifier Notifier
	sample   func() io.Reader
	log      zerolog.Logger

	mu     sync.Mutex
	issued uint64
	state  State
}

func New(p Parser, w Window, opts Options) *Orchestrator {
	if w.isZero() {
		w = DefaultWindow()
	}
	o := &Orchestrator{
		adapter:  NewAdapter(p),
		window:   w,
		pub:      opts.Publisher,
		notifier: opts.Notifier,
		sample:   opts.Sample,
		state: State{
			Records:      []chat.Message{},
			Participants: []string{},
			LowerLimit:   w.Lower(),
			UpperLimit:   w.Upper(),
		},
	}
	if opts.Logger != nil {
		o.log = *opts.Logger
	} else {
		o.log = logging.Component("ingest")
	}
	if o.pub == nil {
		o.pub = PublisherFunc(func(State) {})
	}
	if o.notifier == nil {
		o.notifier = NotifierFunc(func(string, error) {})
	}
	return o
}

func (o *Orchestrator) Window() Window {
	return o.window
}

// State returns a copy of the last published state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Begin issues the ticket for a new ingestion.
func (o *Orchestrator) Begin() Ticket {
	o.mu.Lock()
	o.issued++
	t := Ticket{Seq: o.issued, ID: uuid.NewString()}
	o.mu.Unlock()

	o.log.Debug().Str("ingest_id", t.ID).Uint64("seq", t.Seq).Msg("ingest started")
	return t
}

// ReadSource reads the whole source. A read that has started is not
// cancelled; ctx is only checked before reading.
func ReadSource(ctx context.Context, src io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &SourceReadError{Cause: err}
	}
	b, err := io.ReadAll(src)
	if err != nil {
		return "", &SourceReadError{Cause: err}
	}
	if !utf8.Valid(b) {
		return "", &SourceReadError{Cause: errInvalidUTF8}
	}
	return string(b), nil
}

// Complete runs the pipeline for a finished read and publishes the
// result. On failure the previous state is kept and the notifier is
// called once. Completions older than the published state are dropped
// with ErrStale.
func (o *Orchestrator) Complete(t Ticket, text string, readErr error) (State, error) {
	log := o.log.With().Str("ingest_id", t.ID).Uint64("seq", t.Seq).Logger()

	if o.superseded(t) {
		log.Debug().Msg("dropping stale ingestion")
		return o.State(), ErrStale
	}

	if readErr != nil {
		return o.fail(log, readErr)
	}

	records, err := o.adapter.Parse(text)
	if err != nil {
		return o.fail(log, err)
	}
	records = Sanitize(records)
	participants := DeriveParticipants(records)

	next := State{
		Records:           records,
		Participants:      participants,
		ActiveParticipant: SelectActive(participants),
		LowerLimit:        o.window.Lower(),
		UpperLimit:        o.window.Upper(),
		Seq:               t.Seq,
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if t.Seq <= o.state.Seq {
		log.Debug().Msg("dropping stale ingestion")
		return o.state.clone(), ErrStale
	}
	o.state = next
	o.pub.Publish(next.clone())

	log.Info().
		Int("records", len(records)).
		Int("participants", len(participants)).
		Str("active", next.ActiveParticipant).
		Msg("ingest published")
	return next.clone(), nil
}

func (o *Orchestrator) superseded(t Ticket) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return t.Seq <= o.state.Seq
}

func (o *Orchestrator) fail(log zerolog.Logger, cause error) (State, error) {
	log.Error().Err(cause).Msg(FailureMessage)
	o.notifier.Notify(FailureMessage, cause)
	return o.State(), cause
}

// Ingest reads src to the end and runs the pipeline. A nil src is a no-op.
func (o *Orchestrator) Ingest(ctx context.Context, src io.Reader) error {
	if src == nil {
		return nil
	}
	t := o.Begin()
	text, err := ReadSource(ctx, src)
	_, err = o.Complete(t, text, err)
	return err
}

// IngestAsync is Ingest with the read and pipeline run in a goroutine.
// The ticket is issued before returning, so call order decides which
// ingestion wins. The channel yields one value and is closed.
func (o *Orchestrator) IngestAsync(ctx context.Context, src io.Reader) <-chan error {
	done := make(chan error, 1)
	if src == nil {
		close(done)
		return done
	}
	t := o.Begin()
	go func() {
		defer close(done)
		text, err := ReadSource(ctx, src)
		_, err = o.Complete(t, text, err)
		done <- err
	}()
	return done
}

// LoadSample feeds the bundled export through IngestAsync.
func (o *Orchestrator) LoadSample(ctx context.Context) <-chan error {
	if o.sample == nil {
		return o.IngestAsync(ctx, nil)
	}
	return o.IngestAsync(ctx, o.sample())
}

// SetActive switches the active participant until the next ingestion
// resets it.
func (o *Orchestrator) SetActive(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !slices.Contains(o.state.Participants, name) {
		return ErrUnknownParticipant
	}
	if o.state.ActiveParticipant == name {
		return nil
	}
	o.state.ActiveParticipant = name
	o.pub.Publish(o.state.clone())
	return nil
}
