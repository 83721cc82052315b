package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/chatview/internal/chat"
	"github.com/Zuo-Peng/chatview/internal/ingest"
)

const (
	colorReset   = "\033[0m"
	colorActive  = "\033[1;32m" // bold green
	colorAuthor  = "\033[1;34m" // bold blue
	colorSystem  = "\033[2;3m"  // dim italic
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

type Options struct {
	Title   string
	HitSeq  int    // 1-based record to highlight, <= 0 for none
	Context int    // records before/after hit to show (0 = 10, < 0 = all)
	Width   int    // wrap width (0 = no wrap)
	Query   string // search query for keyword highlighting
	NoColor bool
}

// ftsOperators are FTS5 operators that should not be highlighted as keywords.
var ftsOperators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	var filtered []string
	for _, t := range strings.Fields(query) {
		t = strings.Trim(t, `"*()`)
		if t != "" && !ftsOperators[t] {
			filtered = append(filtered, t)
		}
	}
	for _, term := range filtered {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			if pos+len(term) > len(text) {
				break
			}
			orig := text[pos : pos+len(term)]
			replacement := colorBoldRed + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// WrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, skipping ANSI escape sequences when measuring width.
func WrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// Bounds returns the [start, end) positions into visible that a render
// with opts shows.
func Bounds(visible int, lowerLimit int, opts Options) (start, end int) {
	end = visible
	if opts.HitSeq <= 0 {
		return 0, end
	}
	ctx := opts.Context
	if ctx == 0 {
		ctx = 10
	}
	if ctx < 0 {
		return 0, end
	}
	hit := opts.HitSeq - lowerLimit
	if hit < 0 || hit >= visible {
		return 0, end
	}
	start = hit - ctx
	if start < 0 {
		start = 0
	}
	end = hit + ctx + 1
	if end > visible {
		end = visible
	}
	return start, end
}

// RenderTimeline renders the visible window of st and returns the content
// and the 0-based line of the hit record header (-1 if no hit).
func RenderTimeline(st ingest.State, opts Options) (string, int) {
	visible := st.Visible()
	if len(visible) == 0 {
		return "(empty chat)\n", -1
	}

	paint := func(color, s string) string {
		if opts.NoColor {
			return s
		}
		return color + s + colorReset
	}

	start, end := Bounds(len(visible), st.LowerLimit, opts)

	var b strings.Builder
	hitLine := -1
	lineCount := 0

	writeLine := func(s string) {
		for _, wl := range WrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	title := opts.Title
	if title == "" {
		title = "chat"
	}
	writeLine(paint(colorDim, fmt.Sprintf("--- %s [%d messages, %d participants] ---",
		title, len(st.Records), len(st.Participants))))

	if start > 0 {
		writeLine(paint(colorDim, fmt.Sprintf("... (%d messages before) ...", start)))
	}

	var lastDay string
	for i := start; i < end; i++ {
		m := visible[i]
		seq := st.LowerLimit + i

		day := m.Date.Format("Monday, 2 January 2006")
		if day != lastDay {
			writeLine(paint(colorDim, "── "+day+" ──"))
			lastDay = day
		}

		if seq == opts.HitSeq {
			hitLine = lineCount
		}
		writeLine(header(m, seq, st.ActiveParticipant, seq == opts.HitSeq, paint))

		text := m.Body
		if m.Attachment != "" {
			text += "\n[attachment: " + m.Attachment + "]"
		}
		if m.IsSystem() {
			text = paint(colorSystem, text)
		}
		if !opts.NoColor {
			text = highlightKeywords(text, opts.Query)
		}
		for _, tl := range strings.Split(indentLines(text, "  "), "\n") {
			writeLine(tl)
		}
	}

	if after := len(visible) - end; after > 0 {
		writeLine(paint(colorDim, fmt.Sprintf("... (%d messages after) ...", after)))
	}

	return b.String(), hitLine
}

func header(m chat.Message, seq int, active string, hit bool, paint func(string, string) string) string {
	ts := m.Date.Format("15:04")
	if hit {
		return paint(colorHit, fmt.Sprintf(">> #%d %s %s <<", seq, ts, m.Author))
	}
	switch {
	case m.IsSystem():
		return paint(colorDim, fmt.Sprintf("#%d %s", seq, ts))
	case m.Author == active:
		return paint(colorActive, "» "+m.Author) + " " + paint(colorDim, fmt.Sprintf("%s #%d", ts, seq))
	default:
		return paint(colorAuthor, m.Author) + " " + paint(colorDim, fmt.Sprintf("%s #%d", ts, seq))
	}
}
