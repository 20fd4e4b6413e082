package jsonl

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinesSkipsBlankLines(t *testing.T) {
	input := "{\"a\":1}\n\n   \n{\"b\":2}\r\n{\"c\":3}"

	var got []string
	var nums []int
	for line, err := range Lines(strings.NewReader(input)) {
		require.NoError(t, err)
		got = append(got, string(line.Data))
		nums = append(nums, line.Number)
	}

	assert.Equal(t, []string{`{"a":1}`, `{"b":2}`, `{"c":3}`}, got)
	assert.Equal(t, []int{1, 4, 5}, nums)
}

func TestLinesHaveNoLengthLimit(t *testing.T) {
	big := `{"content":"` + strings.Repeat("x", 11*1024*1024) + `"}`
	input := "{\"a\":1}\n" + big + "\n{\"b\":2}\n"

	var sizes []int
	var nums []int
	for line, err := range Lines(strings.NewReader(input)) {
		require.NoError(t, err)
		sizes = append(sizes, len(line.Data))
		nums = append(nums, line.Number)
	}

	assert.Equal(t, []int{7, len(big), 7}, sizes)
	assert.Equal(t, []int{1, 2, 3}, nums)
}

func TestLinesLongFinalLineWithoutNewline(t *testing.T) {
	big := strings.Repeat("y", 3*readBufferSize+5)

	var got []string
	for line, err := range Lines(strings.NewReader("1\n" + big)) {
		require.NoError(t, err)
		got = append(got, string(line.Data))
	}
	assert.Equal(t, []string{"1", big}, got)
}

func TestLinesStopsWhenConsumerBreaks(t *testing.T) {
	count := 0
	for range Lines(strings.NewReader("1\n2\n3\n")) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestFileMissing(t *testing.T) {
	var gotErr error
	for _, err := range File(filepath.Join(t.TempDir(), "nope.jsonl")) {
		gotErr = err
	}
	require.Error(t, gotErr)
	assert.True(t, errors.Is(gotErr, os.ErrNotExist))
}

func TestFileReadsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{}\n{}\n"), 0o644))

	n := 0
	for _, err := range File(path) {
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 2, n)
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{in: "", want: PolicyAbort},
		{in: "abort", want: PolicyAbort},
		{in: "SKIP", want: PolicySkip},
		{in: " skip ", want: PolicySkip},
		{in: "ignore", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicyHandle(t *testing.T) {
	derr := &DecodeError{Path: "a.jsonl", Line: 3, Err: errors.New("bad")}

	err := PolicyAbort.Handle(nil, derr)
	var got *DecodeError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 3, got.Line)
	assert.Equal(t, "a.jsonl:3: malformed line: bad", err.Error())

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	assert.NoError(t, PolicySkip.Handle(logger, derr))
	assert.Contains(t, buf.String(), "skipping malformed line")
	assert.Contains(t, buf.String(), "line=3")
}
