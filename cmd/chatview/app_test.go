package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/chatview/internal/config"
	"github.com/Zuo-Peng/chatview/internal/ingest"
	"github.com/Zuo-Peng/chatview/internal/logging"
	"github.com/Zuo-Peng/chatview/internal/source"
)

func testApp() *app {
	return &app{cfg: config.Default()}
}

func TestLoad_Sample(t *testing.T) {
	a := testApp()
	var stderr bytes.Buffer
	o, err := a.orchestrator(nil, stderrNotifier{w: &stderr})
	require.NoError(t, err)

	st, info, err := load(context.Background(), o, "")
	require.NoError(t, err)
	assert.Equal(t, source.SampleName, info.Name)
	assert.Equal(t, "Maria", st.ActiveParticipant)
	assert.Empty(t, stderr.String())
}

func TestLoad_FileAndFailure(t *testing.T) {
	a := testApp()
	var stderr bytes.Buffer
	o, err := a.orchestrator(nil, stderrNotifier{w: &stderr})
	require.NoError(t, err)

	dir := t.TempDir()
	good := filepath.Join(dir, "chat.txt")
	require.NoError(t, os.WriteFile(good, []byte("01/02/2020, 10:00 - Ann: hi\n01/02/2020, 10:01 - Bob: hey\n"), 0o644))

	st, info, err := load(context.Background(), o, good)
	require.NoError(t, err)
	assert.Equal(t, "chat.txt", info.Name)
	assert.Equal(t, []string{"Ann", "Bob"}, st.Participants)

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("not an export\n"), 0o644))

	_, _, err = load(context.Background(), o, bad)
	require.Error(t, err)
	var perr *ingest.ParseError
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, ingest.FailureMessage+"\n", stderr.String())

	// the good chat is still published
	assert.Equal(t, st.Participants, o.State().Participants)

	_, _, err = load(context.Background(), o, filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestOrchestrator_UsesConfiguredWindow(t *testing.T) {
	a := testApp()
	a.cfg.LowerLimit = 2
	a.cfg.UpperLimit = 3

	o, err := a.orchestrator(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, o.Window().Lower())
	assert.Equal(t, 3, o.Window().Upper())

	a.cfg.LowerLimit = 0
	_, err = a.orchestrator(nil, nil)
	assert.Error(t, err)
}

func TestSetup_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	logPath := filepath.Join(t.TempDir(), "chatview.log")
	require.NoError(t, os.WriteFile(path, []byte("log_file = \""+logPath+"\"\n"), 0o644))

	prevLogger, prevLevel := logging.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	a := &app{configPath: path}
	require.NoError(t, a.setup(true))
	defer a.close()

	assert.Equal(t, logPath, a.cfg.LogFile)
	require.NotNil(t, a.logFile)
	_, err := os.Stat(logPath)
	assert.NoError(t, err)
}

func TestPlainSnippet(t *testing.T) {
	assert.Equal(t, "who is in for pizza", plainSnippet("who is in for >>>pizza<<<"))
	assert.Equal(t, sColorBoldRed+"x"+sColorReset, colorizeSnippet(">>>x<<<"))
}
