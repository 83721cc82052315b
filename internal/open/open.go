package open

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/chatview/internal/ingest"
)

// OpenRecord opens the export at the line where record seq (1-based)
// starts, using $EDITOR or less.
func OpenRecord(filePath string, st ingest.State, seq int) error {
	if filePath == "" {
		return fmt.Errorf("source has no file on disk")
	}
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s", filePath)
	}

	lineNum, err := LineFor(st, seq)
	if err != nil {
		return err
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	cmd := editorCommand(editor, filePath, lineNum)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// LineFor maps a record position to its line in the export. seq <= 0
// means the top of the file.
func LineFor(st ingest.State, seq int) (int, error) {
	if seq <= 0 {
		return 1, nil
	}
	if seq > len(st.Records) {
		return 0, fmt.Errorf("record %d out of range (chat has %d)", seq, len(st.Records))
	}
	if line := st.Records[seq-1].Line; line > 0 {
		return line, nil
	}
	return 1, nil
}

func editorCommand(editor, filePath string, lineNum int) *exec.Cmd {
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		return exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		return exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		return exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		return exec.Command(editor, filePath)
	}
}
