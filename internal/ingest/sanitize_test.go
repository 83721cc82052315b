package ingest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/chatview/internal/chat"
)

var base = time.Date(2020, time.January, 1, 10, 0, 0, 0, time.UTC)

func msg(author, body string, minute int) chat.Message {
	return chat.Message{
		Date:   base.Add(time.Duration(minute) * time.Minute),
		Author: author,
		Body:   body,
		Line:   minute + 1,
	}
}

const notice = "Messages to this chat and calls are now secured with end-to-end encryption."

func scenarioRecords() []chat.Message {
	return []chat.Message{
		msg("+1 555", notice, 0),
		msg("Alice", "hi", 1),
		msg("Bob", "yo", 2),
	}
}

func TestSanitize_RewritesNoticeAuthor(t *testing.T) {
	in := scenarioRecords()
	out := Sanitize(in)

	require.Len(t, out, 3)
	assert.Equal(t, chat.SystemAuthor, out[0].Author)
	assert.Equal(t, notice, out[0].Body)
	assert.Equal(t, in[0].Date, out[0].Date)
	assert.Equal(t, "Alice", out[1].Author)
	assert.Equal(t, "Bob", out[2].Author)

	// input untouched
	assert.Equal(t, "+1 555", in[0].Author)
}

func TestSanitize_CutoffAtTenRecords(t *testing.T) {
	var in []chat.Message
	for i := 0; i < 15; i++ {
		in = append(in, msg(fmt.Sprintf("user%d", i%3), "plain", i))
	}
	in[9].Body = notice
	in[12].Body = notice

	out := Sanitize(in)
	assert.Equal(t, chat.SystemAuthor, out[9].Author)
	assert.Equal(t, in[12].Author, out[12].Author)
	assert.NotEqual(t, chat.SystemAuthor, out[12].Author)
}

func TestSanitize_OnlyAuthorChanges(t *testing.T) {
	in := []chat.Message{
		msg("A", "hello", 0),
		msg("B", "this is end-to-end stuff", 1),
		msg("C", "bye", 2),
	}
	out := Sanitize(in)

	require.Len(t, out, len(in))
	for i := range in {
		want := in[i]
		if i == 1 {
			want.Author = chat.SystemAuthor
		}
		assert.Equal(t, want, out[i])
	}
}

func TestSanitize_NoMatchAndEmpty(t *testing.T) {
	in := []chat.Message{msg("A", "hello", 0), msg("B", "hey", 1)}
	assert.Equal(t, in, Sanitize(in))

	out := Sanitize(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSanitize_Idempotent(t *testing.T) {
	once := Sanitize(scenarioRecords())
	twice := Sanitize(once)
	assert.Equal(t, once, twice)
}
