package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/Zuo-Peng/ai-session-dataset/internal/jsonl"
)

var errNotObject = errors.New("not a JSON object")

// Normalize turns one raw session-file line into a Record. ok is false for
// entries that are not user or assistant turns; those are not errors.
func Normalize(line []byte) (rec Record, ok bool, err error) {
	if !utf8.Valid(line) {
		return Record{}, false, jsonl.ErrInvalidUTF8
	}
	if !isObject(line) {
		return Record{}, false, errNotObject
	}

	var entry claudeEntry
	if err := json.Unmarshal(line, &entry); err != nil {
		return Record{}, false, err
	}

	kind := string(entry.Type)
	if kind != RoleUser && kind != RoleAssistant {
		return Record{}, false, nil
	}

	var msg claudeMessage
	if !isNull(entry.Message) {
		if !isObject(entry.Message) {
			return Record{}, false, fmt.Errorf("message: %w", errNotObject)
		}
		if err := json.Unmarshal(entry.Message, &msg); err != nil {
			return Record{}, false, fmt.Errorf("message: %w", err)
		}
	}

	role := string(msg.Role)
	if role != RoleUser && role != RoleAssistant {
		role = kind
	}

	rec = Record{
		SessionID:  string(entry.SessionID),
		UUID:       string(entry.UUID),
		ParentUUID: entry.ParentUUID.ptr(),
		Project:    string(entry.Cwd),
		Timestamp:  string(entry.Timestamp),
		Role:       role,
		Model:      string(msg.Model),
	}
	rec.Content, rec.Thinking, rec.ToolCalls = Flatten(DecodeContent(msg.Content))
	return rec, true, nil
}

// DecodeContent resolves the string-or-blocks content field. Missing, null or
// otherwise-shaped content is empty text. Sequence elements that are not
// objects are dropped.
func DecodeContent(raw json.RawMessage) Content {
	if isNull(raw) {
		return PlainText("")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return PlainText(s)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return PlainText("")
	}
	blocks := make(Blocks, 0, len(elems))
	for _, e := range elems {
		var b Block
		if err := json.Unmarshal(e, &b); err != nil {
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// Flatten joins text blocks with newlines, keeps the last thinking block and
// collects tool_use blocks in order. Unknown block kinds are ignored.
func Flatten(c Content) (text string, thinking *string, calls []ToolCall) {
	switch v := c.(type) {
	case PlainText:
		return string(v), nil, nil
	case Blocks:
		var parts []string
		for _, b := range v {
			switch b.Type {
			case "text":
				parts = append(parts, b.Text)
			case "thinking":
				t := b.Thinking
				thinking = &t
			case "tool_use":
				input := b.Input
				if len(input) == 0 {
					input = json.RawMessage("null")
				}
				calls = append(calls, ToolCall{Name: b.Name, Input: input})
			}
		}
		return strings.Join(parts, "\n"), thinking, calls
	}
	return "", nil, nil
}

// Reader reads session files into Records under a malformed-line policy.
type Reader struct {
	policy  jsonl.Policy
	logger  *slog.Logger
	skipped int
}

func NewReader(policy jsonl.Policy, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{policy: policy, logger: logger}
}

// Skipped reports how many malformed lines were passed over so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// Read yields the admissible Records of one session file in line order. It
// reopens the file on every range, so callers wanting one pass over a
// changing file should materialize the result.
func (r *Reader) Read(path string) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for line, err := range jsonl.File(path) {
			if err != nil {
				yield(Record{}, err)
				return
			}

			rec, ok, err := Normalize(line.Data)
			if err != nil {
				derr := &jsonl.DecodeError{Path: path, Line: line.Number, Err: err}
				if herr := r.policy.Handle(r.logger, derr); herr != nil {
					yield(Record{}, herr)
					return
				}
				r.skipped++
				continue
			}
			if !ok {
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// ReadSession reads one session file, aborting on the first malformed line.
func ReadSession(path string) iter.Seq2[Record, error] {
	return NewReader(jsonl.PolicyAbort, nil).Read(path)
}

func isNull(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func isObject(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
