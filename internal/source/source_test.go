package source

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/chatview/internal/whatsapp"
)

func TestSample_Parses(t *testing.T) {
	b, err := io.ReadAll(Sample())
	require.NoError(t, err)

	msgs, err := whatsapp.Parse(string(b), whatsapp.DefaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, msgs)
	assert.True(t, strings.Contains(msgs[0].Body, "end-to-end"))

	// each call is independent
	again, err := io.ReadAll(Sample())
	require.NoError(t, err)
	assert.Equal(t, b, again)
	assert.Equal(t, int64(len(b)), SampleInfo().Size)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "WhatsApp Chat.txt")
	require.NoError(t, os.WriteFile(path, []byte("01/01/2020, 10:00 - A: b\n"), 0o644))

	rc, info, err := Open(path)
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "01/01/2020, 10:00 - A: b\n", string(b))
	assert.Equal(t, "WhatsApp Chat.txt", info.Name)
	assert.Equal(t, path, info.Path)
	assert.Equal(t, int64(len(b)), info.Size)
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := Open(filepath.Join(dir, "missing.txt"))
	assert.True(t, os.IsNotExist(err))

	_, _, err = Open(dir)
	assert.Error(t, err)
}

func TestOpen_Stdin(t *testing.T) {
	rc, info, err := Open(Stdin)
	require.NoError(t, err)
	assert.Equal(t, "stdin", info.Name)
	assert.Empty(t, info.Path)
	assert.NoError(t, rc.Close())
}

func TestResolve(t *testing.T) {
	for _, path := range []string{"", SampleName} {
		rc, info, err := Resolve(path)
		require.NoError(t, err)
		assert.Equal(t, SampleInfo(), info)

		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, sample, b)
	}

	_, _, err := Resolve(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestFindExports(t *testing.T) {
	root := t.TempDir()
	older := filepath.Join(root, "WhatsApp Chat with Ann.txt")
	newer := filepath.Join(root, "ios", "_chat.txt")
	hidden := filepath.Join(root, ".cache", "_chat.txt")

	require.NoError(t, os.MkdirAll(filepath.Dir(newer), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(hidden), 0o755))
	for _, p := range []string{older, newer, hidden, filepath.Join(root, "notes.txt"), filepath.Join(root, "photo.jpg")} {
		require.NoError(t, os.WriteFile(p, []byte("01/01/2020, 10:00 - A: b\n"), 0o644))
	}
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	found, err := FindExports(root)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, newer, found[0].Path)
	assert.Equal(t, older, found[1].Path)

	rc, info, err := Open(root)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "_chat.txt", info.Name)
}
