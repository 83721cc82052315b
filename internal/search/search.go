package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/chatview/internal/index"
)

type Result struct {
	Seq     int // 1-based position in the timeline
	Ts      string
	Author  string
	Snippet string
	Rank    float64
}

type Options struct {
	Query  string
	Author string // "" = all
	Limit  int
	ByRank bool // order by relevance instead of timeline order
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	if idx < 0 || len(lower) != len(text) {
		// no match (or case folding changed byte offsets), return head
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}
	runes := []rune(text)
	qRunes := []rune(query)
	runePos := len([]rune(text[:idx]))
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + len(qRunes) + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

// Search finds messages matching opts.Query. Malformed FTS5 syntax falls
// back to a plain substring match.
func Search(db *index.DB, opts Options) ([]Result, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, nil
	}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	if containsCJK(opts.Query) {
		return searchLike(db, opts)
	}
	results, err := searchFTS(db, opts)
	if err != nil {
		return searchLike(db, opts)
	}
	return results, nil
}

func filters(opts Options, conditions []string, args []any) (string, []any) {
	if opts.Author != "" {
		conditions = append(conditions, "m.author = ?")
		args = append(args, opts.Author)
	}
	return strings.Join(conditions, " AND "), args
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	where, args := filters(opts, []string{"messages_fts MATCH ?"}, []any{opts.Query})

	order := "m.seq"
	if opts.ByRank {
		order = "rank, m.seq"
	}

	query := fmt.Sprintf(`
		SELECT
			m.seq,
			m.ts,
			m.author,
			snippet(messages_fts, 0, '>>>','<<<', '...', 16) as snip,
			bm25(messages_fts) as rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.seq
		WHERE %s
		ORDER BY %s
		LIMIT ?
	`, where, order)

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	where, args := filters(opts, []string{"m.body LIKE ?"}, []any{"%" + opts.Query + "%"})

	query := fmt.Sprintf(`
		SELECT m.seq, m.ts, m.author, m.body
		FROM messages m
		WHERE %s
		ORDER BY m.seq
		LIMIT ?
	`, where)

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var body string
		if err := rows.Scan(&r.Seq, &r.Ts, &r.Author, &body); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(body, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Seq, &r.Ts, &r.Author, &r.Snippet, &r.Rank); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
