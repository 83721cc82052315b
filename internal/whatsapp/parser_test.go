package whatsapp

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/chatview/internal/chat"
)

func TestParse_AndroidFormat(t *testing.T) {
	text := strings.Join([]string{
		"06/03/2017, 00:45 - Messages to this group are now secured with end-to-end encryption. Tap for more info.",
		"06/03/2017, 00:45 - You created group \"Pizza Club\"",
		"08/03/2017, 13:20 - Sample User: This is a test message",
		"08/03/2017, 13:21 - Another One: Hello!",
		"continued on the next line",
	}, "\n")

	msgs, err := Parse(text, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	assert.Equal(t, chat.SystemAuthor, msgs[0].Author)
	assert.Equal(t, chat.SystemAuthor, msgs[1].Author)
	assert.Equal(t, "Sample User", msgs[2].Author)
	assert.Equal(t, "This is a test message", msgs[2].Body)
	assert.Equal(t, "Another One", msgs[3].Author)
	assert.Equal(t, "Hello!\ncontinued on the next line", msgs[3].Body)
	assert.Equal(t, 4, msgs[3].Line)

	want := time.Date(2017, time.March, 8, 13, 20, 0, 0, time.Local)
	assert.True(t, want.Equal(msgs[2].Date), "got %v", msgs[2].Date)
}

func TestParse_IOSFormatWithSeconds(t *testing.T) {
	text := "[31/12/2019, 23:59:58] Alice: last one\r\n[01/01/2020, 00:00:01] Bob: first one\r\n"

	msgs, err := Parse(text, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "Alice", msgs[0].Author)
	assert.Equal(t, "last one", msgs[0].Body)
	assert.Equal(t, 58, msgs[0].Date.Second())
	assert.Equal(t, 2020, msgs[1].Date.Year())
}

func TestParse_TwelveHourClock(t *testing.T) {
	text := "12/31/19, 12:05 AM - Alice: midnight\n12/31/19, 1:15 PM - Bob: afternoon\n12/31/19, 12:30 PM - Bob: noon"

	msgs, err := Parse(text, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, 0, msgs[0].Date.Hour())
	assert.Equal(t, 13, msgs[1].Date.Hour())
	assert.Equal(t, 12, msgs[2].Date.Hour())
	// 31 in the second position forces month-first order
	assert.Equal(t, time.December, msgs[0].Date.Month())
	assert.Equal(t, 2019, msgs[0].Date.Year())
}

func TestParse_AmbiguousDatesUseOption(t *testing.T) {
	text := "01/02/2020, 10:00 - Alice: hi"

	msgs, err := Parse(text, Options{DaysFirst: true})
	require.NoError(t, err)
	assert.Equal(t, time.February, msgs[0].Date.Month())

	msgs, err = Parse(text, Options{DaysFirst: false})
	require.NoError(t, err)
	assert.Equal(t, time.January, msgs[0].Date.Month())
}

func TestParse_YearFirst(t *testing.T) {
	msgs, err := Parse("2021-07-04, 09:30 - Alice: hi", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, 2021, msgs[0].Date.Year())
	assert.Equal(t, time.July, msgs[0].Date.Month())
	assert.Equal(t, 4, msgs[0].Date.Day())
}

func TestParse_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   \n\n", "\uFEFF"} {
		msgs, err := Parse(text, DefaultOptions())
		require.NoError(t, err)
		assert.NotNil(t, msgs)
		assert.Empty(t, msgs)
	}
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := Parse("this is not a chat export\n10/10/2020, 10:00 - A: b", DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestParse_MalformedTimestamp(t *testing.T) {
	cases := map[string]string{
		"month":  "13/13/2020, 10:00 - Alice: hi",
		"day":    "31/02/2020, 10:00 - Alice: hi",
		"hour":   "10/10/2020, 25:00 - Alice: hi",
		"minute": "10/10/2020, 10:75 - Alice: hi",
		"ampm":   "10/10/2020, 13:00 PM - Alice: hi",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			msgs, err := Parse("10/10/2020, 09:00 - Alice: ok\n"+text, DefaultOptions())
			require.Error(t, err)
			assert.Nil(t, msgs)

			var tsErr *TimestampError
			require.True(t, errors.As(err, &tsErr))
			assert.Equal(t, 2, tsErr.Line)
		})
	}
}

func TestParse_Attachments(t *testing.T) {
	text := strings.Join([]string{
		"[06/03/2017, 00:45:10] Alice: \u200E<attached: 00000012-PHOTO-2017-03-06.jpg>",
		"06/03/2017, 00:46 - Bob: IMG-20170306-WA0001.jpg (file attached)",
		"06/03/2017, 00:47 - Bob: just text",
	}, "\n")

	msgs, err := Parse(text, Options{DaysFirst: true, ParseAttachments: true})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "00000012-PHOTO-2017-03-06.jpg", msgs[0].Attachment)
	assert.Equal(t, "IMG-20170306-WA0001.jpg", msgs[1].Attachment)
	assert.Empty(t, msgs[2].Attachment)

	msgs, err = Parse(text, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, msgs[0].Attachment)
}

func TestParser_UsesOptions(t *testing.T) {
	p := NewParser(Options{DaysFirst: false})
	msgs, err := p.Parse("03/04/2020, 10:00 - Alice: hi")
	require.NoError(t, err)
	assert.Equal(t, time.March, msgs[0].Date.Month())
}

func TestParse_RecordsInFileOrder(t *testing.T) {
	text := "02/01/2021, 09:00 - Ann: one\n" +
		"02/01/2021, 09:01 - Bob: two\nand more\n" +
		"02/01/2021, 09:02 - Ann added Cid\n"

	got, err := Parse(text, DefaultOptions())
	require.NoError(t, err)

	at := func(minute int) time.Time {
		return time.Date(2021, time.January, 2, 9, minute, 0, 0, time.Local)
	}
	want := []chat.Message{
		{Date: at(0), Author: "Ann", Body: "one", Line: 1},
		{Date: at(1), Author: "Bob", Body: "two\nand more", Line: 2},
		{Date: at(2), Author: chat.SystemAuthor, Body: "Ann added Cid", Line: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}
