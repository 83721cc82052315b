package ingest

import (
	"strings"

	"github.com/Zuo-Peng/chatview/internal/chat"
)

const (
	// NoticeScanLimit is how many leading records are checked for the
	// encryption notice. Exports emit it once near the top.
	NoticeScanLimit = 10

	encryptionNotice = "end-to-end"
)

// Sanitize returns a copy of records where encryption notices among the
// first NoticeScanLimit entries are attributed to chat.SystemAuthor.
func Sanitize(records []chat.Message) []chat.Message {
	out := make([]chat.Message, len(records))
	copy(out, records)
	for i := 0; i < len(out) && i < NoticeScanLimit; i++ {
		if strings.Contains(out[i].Body, encryptionNotice) {
			out[i].Author = chat.SystemAuthor
		}
	}
	return out
}
