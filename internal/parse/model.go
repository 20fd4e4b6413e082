package parse

import (
	"bytes"
	"encoding/json"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Record is one normalized conversational turn.
type Record struct {
	SessionID  string     `json:"session_id,omitempty"`
	UUID       string     `json:"uuid,omitempty"`
	ParentUUID *string    `json:"parent_uuid"`
	Project    string     `json:"project,omitempty"`
	Timestamp  string     `json:"timestamp,omitempty"`
	Role       string     `json:"role"`
	Model      string     `json:"model,omitempty"`
	Content    string     `json:"content"`
	Thinking   *string    `json:"thinking,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

type ToolCall struct {
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// Content is the message content after the string-or-blocks shape has been
// resolved. It is either PlainText or Blocks.
type Content interface {
	isContent()
}

type PlainText string

type Blocks []Block

func (PlainText) isContent() {}
func (Blocks) isContent()    {}

// Block is one typed element of a content sequence. Only the fields of the
// known kinds are decoded.
type Block struct {
	Type     string          `json:"type"`
	Text     string          `json:"text"`
	Thinking string          `json:"thinking"`
	Name     string          `json:"name"`
	Input    json.RawMessage `json:"input"`
}

// raw session-file shapes

type claudeEntry struct {
	Type       scalar          `json:"type"`
	SessionID  scalar          `json:"sessionId"`
	UUID       scalar          `json:"uuid"`
	ParentUUID *scalar         `json:"parentUuid"`
	Cwd        scalar          `json:"cwd"`
	Timestamp  scalar          `json:"timestamp"`
	Message    json.RawMessage `json:"message"`
}

type claudeMessage struct {
	Role    scalar          `json:"role"`
	Model   scalar          `json:"model"`
	Content json.RawMessage `json:"content"`
}

// scalar is a string field that also accepts numbers and booleans, kept as
// their JSON text. Null, objects and arrays decode as empty.
type scalar string

func (s *scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*s = ""
		return nil
	}
	switch data[0] {
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = scalar(str)
	case 'n', '{', '[':
		*s = ""
	default:
		*s = scalar(data)
	}
	return nil
}

func (s *scalar) ptr() *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}
