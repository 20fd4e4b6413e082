package open

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"uuid":"u1","content":"a"}`+"\n"+
			"\n"+
			`not json`+"\n"+
			`{"uuid":"u2","content":"b"}`+"\n"), 0o644))

	n, err := FindLine(path, "u2")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = FindLine(path, "u9")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEditorCommand(t *testing.T) {
	tests := []struct {
		editor string
		want   []string
	}{
		{editor: "nvim", want: []string{"nvim", "+7", "f.jsonl"}},
		{editor: "code", want: []string{"code", "--goto", "f.jsonl:7"}},
		{editor: "less", want: []string{"less", "+7", "f.jsonl"}},
		{editor: "nano", want: []string{"nano", "f.jsonl"}},
	}
	for _, tt := range tests {
		t.Run(tt.editor, func(t *testing.T) {
			cmd := editorCommand(tt.editor, "f.jsonl", 7)
			assert.Equal(t, tt.want, cmd.Args)
		})
	}
}

func TestOpenRecordMissingFile(t *testing.T) {
	err := OpenRecord(filepath.Join(t.TempDir(), "nope.jsonl"), "")
	assert.Error(t, err)
}
