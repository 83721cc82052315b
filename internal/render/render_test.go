package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/chatview/internal/chat"
	"github.com/Zuo-Peng/chatview/internal/ingest"
)

func state(n int) ingest.State {
	base := time.Date(2021, time.June, 12, 9, 0, 0, 0, time.UTC)
	st := ingest.State{LowerLimit: 1, UpperLimit: 100000}
	authors := []string{"Maria", "Giulio"}
	for i := 0; i < n; i++ {
		st.Records = append(st.Records, chat.Message{
			Date:   base.Add(time.Duration(i) * time.Minute),
			Author: authors[i%2],
			Body:   "msg " + string(rune('a'+i)),
		})
	}
	st.Participants = ingest.DeriveParticipants(st.Records)
	st.ActiveParticipant = ingest.SelectActive(st.Participants)
	return st
}

func TestRenderTimeline_Plain(t *testing.T) {
	st := state(3)
	st.Records = append([]chat.Message{{
		Date:   st.Records[0].Date,
		Author: chat.SystemAuthor,
		Body:   "Messages are end-to-end encrypted.",
	}}, st.Records...)

	out, hit := RenderTimeline(st, Options{Title: "Pizza", NoColor: true})
	assert.Equal(t, -1, hit)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "--- Pizza [4 messages, 2 participants] ---", lines[0])
	assert.Equal(t, "── Saturday, 12 June 2021 ──", lines[1])
	assert.Equal(t, "#1 09:00", lines[2])
	assert.Equal(t, "  Messages are end-to-end encrypted.", lines[3])
	assert.Equal(t, "» Maria 09:00 #2", lines[4])
	assert.Equal(t, "  msg a", lines[5])
	assert.Equal(t, "Giulio 09:01 #3", lines[6])
}

func TestRenderTimeline_Window(t *testing.T) {
	st := state(6)
	st.LowerLimit, st.UpperLimit = 2, 3

	out, _ := RenderTimeline(st, Options{NoColor: true})
	assert.Contains(t, out, "#2")
	assert.Contains(t, out, "#3")
	assert.NotContains(t, out, "#1 ")
	assert.NotContains(t, out, "#4")
}

func TestRenderTimeline_HitContext(t *testing.T) {
	st := state(30)

	out, hit := RenderTimeline(st, Options{HitSeq: 15, Context: 2, NoColor: true})
	require.GreaterOrEqual(t, hit, 0)

	lines := strings.Split(out, "\n")
	assert.Equal(t, ">> #15 09:14 Maria <<", lines[hit])
	assert.Contains(t, out, "... (12 messages before) ...")
	assert.Contains(t, out, "... (13 messages after) ...")
	assert.Contains(t, out, "#13")
	assert.NotContains(t, out, "#12 ")
}

func TestRenderTimeline_Empty(t *testing.T) {
	out, hit := RenderTimeline(ingest.State{LowerLimit: 1, UpperLimit: 10}, Options{})
	assert.Equal(t, "(empty chat)\n", out)
	assert.Equal(t, -1, hit)
}

func TestBounds(t *testing.T) {
	s, e := Bounds(10, 1, Options{})
	assert.Equal(t, [2]int{0, 10}, [2]int{s, e})

	s, e = Bounds(10, 1, Options{HitSeq: 5, Context: -1})
	assert.Equal(t, [2]int{0, 10}, [2]int{s, e})

	s, e = Bounds(100, 1, Options{HitSeq: 50})
	assert.Equal(t, [2]int{39, 60}, [2]int{s, e})

	s, e = Bounds(10, 1, Options{HitSeq: 99, Context: 1})
	assert.Equal(t, [2]int{0, 10}, [2]int{s, e})
}

func TestHighlightKeywords(t *testing.T) {
	got := highlightKeywords("Pizza and pasta", "pizza AND pasta")
	assert.Equal(t, colorBoldRed+"Pizza"+colorReset+" and "+colorBoldRed+"pasta"+colorReset, got)
	assert.Equal(t, "plain", highlightKeywords("plain", ""))
}

func TestWrapLine(t *testing.T) {
	assert.Equal(t, []string{"abc", "def", "g"}, WrapLine("abcdefg", 3))
	assert.Equal(t, []string{"abcdefg"}, WrapLine("abcdefg", 0))
	assert.Equal(t, []string{""}, WrapLine("", 5))

	// escape sequences take no columns
	wrapped := WrapLine(colorDim+"abcd"+colorReset, 4)
	assert.Len(t, wrapped, 1)

	// wide runes count double
	assert.Equal(t, []string{"披萨", "吗"}, WrapLine("披萨吗", 4))
}
