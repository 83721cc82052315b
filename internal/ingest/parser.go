package ingest

import (
	"fmt"

	"github.com/Zuo-Peng/chatview/internal/chat"
)

// FailureMessage is the single user-facing text for any failed ingestion.
const FailureMessage = "An error has occurred while parsing the file"

// Parser turns raw export text into records.
type Parser interface {
	Parse(text string) ([]chat.Message, error)
}

// ParseError wraps whatever the underlying parser reported.
type ParseError struct {
	Msg   string
	Cause error
}

func (e *ParseError) Error() string {
	if e.Cause == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Cause.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Adapter normalizes parser failures into *ParseError and never lets a
// partial result escape.
type Adapter struct {
	parser Parser
}

func NewAdapter(p Parser) *Adapter {
	return &Adapter{parser: p}
}

func (a *Adapter) Parse(raw string) (msgs []chat.Message, err error) {
	defer func() {
		if r := recover(); r != nil {
			msgs = nil
			err = &ParseError{Msg: FailureMessage, Cause: fmt.Errorf("parser panic: %v", r)}
		}
	}()

	msgs, err = a.parser.Parse(raw)
	if err != nil {
		return nil, &ParseError{Msg: FailureMessage, Cause: err}
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return msgs, nil
}
