// Package jsonl reads line-delimited JSON files and carries the policy
// applied to lines that fail to decode.
package jsonl

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"strings"
)

const readBufferSize = 64 * 1024

// ErrInvalidUTF8 marks a line whose bytes are not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// Policy decides what happens when a line cannot be decoded.
type Policy int

const (
	// PolicyAbort stops the run at the first malformed line.
	PolicyAbort Policy = iota
	// PolicySkip logs a warning, counts the line and keeps going.
	PolicySkip
)

func (p Policy) String() string {
	switch p {
	case PolicyAbort:
		return "abort"
	case PolicySkip:
		return "skip"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy accepts "abort" or "skip" (case-insensitive). Empty means abort.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return PolicyAbort, nil
	case "skip":
		return PolicySkip, nil
	default:
		return PolicyAbort, fmt.Errorf("unknown malformed-line policy %q (want abort or skip)", s)
	}
}

// Handle applies the policy to a decode error. Under PolicyAbort the error is
// returned unchanged; under PolicySkip it is logged and nil is returned.
func (p Policy) Handle(logger *slog.Logger, derr *DecodeError) error {
	if p != PolicySkip {
		return derr
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("skipping malformed line", "path", derr.Path, "line", derr.Line, "error", derr.Err)
	return nil
}

// DecodeError identifies a line that is not a usable JSON record.
type DecodeError struct {
	Path string
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s:%d: malformed line: %v", e.Path, e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Line is one non-blank line of input. Data aliases the read buffer and is
// only valid until the iteration advances.
type Line struct {
	Number int
	Data   []byte
}

// Lines yields the non-blank lines of r in order. Lines have no length limit.
// A read error is yielded once and ends the sequence.
func Lines(r io.Reader) iter.Seq2[Line, error] {
	return func(yield func(Line, error) bool) {
		br := bufio.NewReaderSize(r, readBufferSize)
		var buf []byte

		lineNum := 0
		for {
			chunk, err := br.ReadSlice('\n')
			buf = append(buf, chunk...)
			if errors.Is(err, bufio.ErrBufferFull) {
				continue
			}

			if len(buf) > 0 {
				lineNum++
				if data := bytes.TrimSpace(buf); len(data) > 0 {
					if !yield(Line{Number: lineNum, Data: data}, nil) {
						return
					}
				}
				buf = buf[:0]
			}

			if err == io.EOF {
				return
			}
			if err != nil {
				yield(Line{Number: lineNum + 1}, fmt.Errorf("read line %d: %w", lineNum+1, err))
				return
			}
		}
	}
}

// File is Lines over the file at path. The file is closed when the sequence
// finishes or the consumer stops early.
func File(path string) iter.Seq2[Line, error] {
	return func(yield func(Line, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(Line{}, err)
			return
		}
		defer f.Close()

		for line, err := range Lines(f) {
			if err != nil {
				yield(line, fmt.Errorf("%s: %w", path, err))
				return
			}
			if !yield(line, nil) {
				return
			}
		}
	}
}
