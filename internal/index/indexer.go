package index

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Zuo-Peng/chatview/internal/ingest"
	"github.com/Zuo-Peng/chatview/internal/logging"
)

type Stats struct {
	Seq          uint64
	Records      int
	System       int
	Participants int
	Skipped      bool
}

func (s Stats) String() string {
	return fmt.Sprintf("seq=%d records=%d system=%d participants=%d skipped=%t",
		s.Seq, s.Records, s.System, s.Participants, s.Skipped)
}

// Replace swaps the indexed records for the ones in st. A state whose
// ingestion is already indexed (an active-participant change) is skipped.
func Replace(db *DB, st ingest.State) (Stats, error) {
	stats := Stats{Seq: st.Seq, Records: len(st.Records), Participants: len(st.Participants)}
	for _, r := range st.Records {
		if r.IsSystem() {
			stats.System++
		}
	}

	seq, err := db.IndexedSeq()
	if err != nil {
		return stats, fmt.Errorf("read indexed seq: %w", err)
	}
	if seq != 0 && seq == st.Seq {
		stats.Skipped = true
		return stats, nil
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return stats, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages"); err != nil {
		return stats, fmt.Errorf("clear messages: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (seq, ts, author, body, attachment, line_number)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return stats, err
	}
	defer stmt.Close()

	for i, r := range st.Records {
		// seq is the 1-based timeline position, matching the window limits
		if _, err := stmt.Exec(i+1, r.Date.Format(tsLayout), r.Author, r.Body, r.Attachment, r.Line); err != nil {
			return stats, err
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES ('seq', ?)",
		strconv.FormatUint(st.Seq, 10),
	); err != nil {
		return stats, err
	}

	return stats, tx.Commit()
}

// Publisher keeps the index in step with the orchestrator.
type Publisher struct {
	db  *DB
	log zerolog.Logger
}

func NewPublisher(db *DB) *Publisher {
	return &Publisher{db: db, log: logging.Component("index")}
}

func (p *Publisher) Publish(st ingest.State) {
	stats, err := Replace(p.db, st)
	if err != nil {
		p.log.Warn().Err(err).Uint64("seq", st.Seq).Msg("index rebuild failed")
		return
	}
	p.log.Debug().Str("stats", stats.String()).Msg("index rebuilt")
}
