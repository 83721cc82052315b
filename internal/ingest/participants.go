package ingest

import "github.com/Zuo-Peng/chatview/internal/chat"

// DeriveParticipants lists distinct authors in first-seen order, without
// the system sentinel.
func DeriveParticipants(records []chat.Message) []string {
	seen := make(map[string]struct{})
	participants := []string{}
	for _, r := range records {
		if _, ok := seen[r.Author]; ok {
			continue
		}
		seen[r.Author] = struct{}{}
		if r.Author == chat.SystemAuthor {
			continue
		}
		participants = append(participants, r.Author)
	}
	return participants
}

// SelectActive picks the first participant, or "" when there are none.
func SelectActive(participants []string) string {
	if len(participants) == 0 {
		return ""
	}
	return participants[0]
}
