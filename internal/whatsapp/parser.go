// Package whatsapp parses the plaintext "Export chat" format into
// ordered chat records.
package whatsapp

import (
	"bufio"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Zuo-Peng/chatview/internal/chat"
)

const maxLineSize = 10 * 1024 * 1024 // 10MB

// ErrUnsupportedFormat is returned when the text does not start with a
// dated message header.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// TimestampError reports a header whose date or time cannot exist.
type TimestampError struct {
	Line   int
	Value  string
	Reason string
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("malformed timestamp %q on line %d: %s", e.Value, e.Line, e.Reason)
}

type Options struct {
	// DaysFirst decides day/month order when no date in the export
	// disambiguates it (both numbers <= 12 everywhere).
	DaysFirst bool
	// ParseAttachments fills Message.Attachment for attachment lines.
	ParseAttachments bool
}

func DefaultOptions() Options {
	return Options{DaysFirst: true}
}

// Parser adapts Parse to a reusable value with fixed options.
type Parser struct {
	Options Options
}

func NewParser(opts Options) *Parser {
	return &Parser{Options: opts}
}

func (p *Parser) Parse(text string) ([]chat.Message, error) {
	return Parse(text, p.Options)
}

var (
	// [31/12/2019, 10:00:00] Alice: hi
	// 12/31/19, 10:00 PM - Alice: hi
	headerRe = regexp.MustCompile(
		`^[\x{200E}\x{200F}]*\[?(\d{1,4})[-/.] ?(\d{1,4})[-/.] ?(\d{1,4})[,.]? \D*?` +
			`(\d{1,2})[.:](\d{1,2})(?:[.:](\d{1,2}))?` +
			`(?:[ \x{202F}\x{00A0}]?([aApP])\.? ?[mM]\.?)?\]?(?: -|:)? (.*)$`)
	authorRe     = regexp.MustCompile(`^(.+?): (?s:(.*))$`)
	attachedRe   = regexp.MustCompile(`<attached: ([^>]+)>`)
	fileAttachRe = regexp.MustCompile(`^(\S.*\.\w+) \(file attached\)`)
)

// rawHeader keeps the unparsed pieces of a header line until the
// day/month order of the whole export is known.
type rawHeader struct {
	line   int
	dateA  string
	dateB  string
	dateC  string
	hour   string
	minute string
	sec    string
	ampm   string
	rest   string
	body   []string
}

// Parse converts export text into records in file order. Whitespace-only
// text yields no records. Any malformed header fails the whole parse.
func Parse(text string, opts Options) ([]chat.Message, error) {
	text = strings.TrimPrefix(text, "\uFEFF")
	if strings.TrimSpace(text) == "" {
		return []chat.Message{}, nil
	}

	headers, err := scanHeaders(text)
	if err != nil {
		return nil, err
	}

	daysFirst := detectDaysFirst(headers, opts.DaysFirst)

	msgs := make([]chat.Message, 0, len(headers))
	for _, h := range headers {
		ts, err := h.timestamp(daysFirst)
		if err != nil {
			return nil, err
		}

		author := chat.SystemAuthor
		body := strings.Join(append([]string{h.rest}, h.body...), "\n")
		if m := authorRe.FindStringSubmatch(body); m != nil {
			author = trimMarks(m[1])
			body = m[2]
		}

		msg := chat.Message{
			Date:   ts,
			Author: author,
			Body:   body,
			Line:   h.line,
		}
		if opts.ParseAttachments {
			msg.Attachment = findAttachment(body)
		}
		msgs = append(msgs, msg)
	}

	return msgs, nil
}

func scanHeaders(text string) ([]*rawHeader, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var headers []*rawHeader
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSuffix(scanner.Text(), "\r")

		m := headerRe.FindStringSubmatch(line)
		if m == nil {
			if len(headers) == 0 {
				if strings.TrimSpace(line) == "" {
					continue
				}
				return nil, fmt.Errorf("line %d: %w", lineNum, ErrUnsupportedFormat)
			}
			// continuation of a multi-line body
			last := headers[len(headers)-1]
			last.body = append(last.body, line)
			continue
		}

		headers = append(headers, &rawHeader{
			line:   lineNum,
			dateA:  m[1],
			dateB:  m[2],
			dateC:  m[3],
			hour:   m[4],
			minute: m[5],
			sec:    m[6],
			ampm:   strings.ToLower(m[7]),
			rest:   m[8],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return headers, nil
}

// detectDaysFirst looks for a date component above 12 to settle the
// day/month order; year-first dates carry no signal.
func detectDaysFirst(headers []*rawHeader, fallback bool) bool {
	for _, h := range headers {
		if len(h.dateA) == 4 {
			continue
		}
		a, _ := strconv.Atoi(h.dateA)
		b, _ := strconv.Atoi(h.dateB)
		if a > 12 {
			return true
		}
		if b > 12 {
			return false
		}
	}
	return fallback
}

func (h *rawHeader) timestamp(daysFirst bool) (time.Time, error) {
	value := fmt.Sprintf("%s/%s/%s %s:%s", h.dateA, h.dateB, h.dateC, h.hour, h.minute)
	if h.sec != "" {
		value += ":" + h.sec
	}
	if h.ampm != "" {
		value += " " + h.ampm + "m"
	}
	fail := func(reason string) (time.Time, error) {
		return time.Time{}, &TimestampError{Line: h.line, Value: value, Reason: reason}
	}

	a, _ := strconv.Atoi(h.dateA)
	b, _ := strconv.Atoi(h.dateB)
	c, _ := strconv.Atoi(h.dateC)

	var year, month, day int
	switch {
	case len(h.dateA) == 4:
		year, month, day = a, b, c
	case daysFirst:
		day, month, year = a, b, c
	default:
		month, day, year = a, b, c
	}
	if len(h.dateC) <= 2 && len(h.dateA) != 4 {
		year += 2000
	}

	hour, _ := strconv.Atoi(h.hour)
	minute, _ := strconv.Atoi(h.minute)
	sec := 0
	if h.sec != "" {
		sec, _ = strconv.Atoi(h.sec)
	}

	switch h.ampm {
	case "a", "p":
		if hour < 1 || hour > 12 {
			return fail("hour out of range for 12-hour clock")
		}
		if hour == 12 {
			hour = 0
		}
		if h.ampm == "p" {
			hour += 12
		}
	default:
		if hour > 23 {
			return fail("hour out of range")
		}
	}
	if minute > 59 || sec > 59 {
		return fail("minute or second out of range")
	}
	if month < 1 || month > 12 {
		return fail("month out of range")
	}

	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.Local)
	if day < 1 || t.Day() != day {
		return fail("day out of range")
	}
	return t, nil
}

func findAttachment(body string) string {
	body = trimMarks(body)
	if m := attachedRe.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := fileAttachRe.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return ""
}

func trimMarks(s string) string {
	return strings.Trim(s, "\u200E\u200F")
}
