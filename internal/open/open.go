package open

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/ai-session-dataset/internal/jsonl"
	"github.com/tidwall/gjson"
)

var ErrNotFound = errors.New("record not found")

// FindLine returns the 1-based line number of the first record in path whose
// uuid equals id. Lines that are not JSON are passed over.
func FindLine(path, id string) (int, error) {
	for line, err := range jsonl.File(path) {
		if err != nil {
			return 0, err
		}
		if gjson.GetBytes(line.Data, "uuid").String() == id {
			return line.Number, nil
		}
	}
	return 0, fmt.Errorf("%s in %s: %w", id, path, ErrNotFound)
}

// OpenRecord opens path in $EDITOR (less when unset) at the line holding the
// record with the given uuid, or at the top when id is empty.
func OpenRecord(path, id string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}

	lineNum := 1
	if id != "" {
		n, err := FindLine(path, id)
		if err != nil {
			return err
		}
		lineNum = n
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	cmd := editorCommand(editor, path, lineNum)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
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
