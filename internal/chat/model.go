package chat

import "time"

// SystemAuthor is the reserved author of informational records
// (encryption notices, group events) that no participant wrote.
const SystemAuthor = "System"

type Message struct {
	Date       time.Time
	Author     string
	Body       string
	Attachment string // file name, only set when attachment parsing is on
	Line       int    // 1-based line in the export where the record starts
}

// IsSystem reports whether the record is authored by the sentinel.
func (m Message) IsSystem() bool {
	return m.Author == SystemAuthor
}
