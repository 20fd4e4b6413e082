package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Zuo-Peng/ai-session-dataset/internal/parse"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func sampleRecords() []parse.Record {
	return []parse.Record{
		{SessionID: "s1", Project: "/p/a", UUID: "u1", Timestamp: "2025-01-01T00:00:00Z", Role: "user", Content: "how do I\nfix it"},
		{SessionID: "s1", Project: "/p/a", UUID: "u2", Timestamp: "2025-01-01T00:00:05Z", Role: "assistant", Model: "claude-x",
			Content: "like this", Thinking: strPtr("ponder"),
			ToolCalls: []parse.ToolCall{{Name: "Bash", Input: json.RawMessage(`{"command": "ls  -la"}`)}}},
		{SessionID: "s2", Project: "/p/b", UUID: "u3", Role: "user", Content: "next"},
	}
}

func TestRenderTranscriptPlain(t *testing.T) {
	out := RenderTranscript(sampleRecords(), Options{})

	assert.NotContains(t, out, "\033[")
	assert.Contains(t, out, "--- session s1 [/p/a] ---")
	assert.Contains(t, out, "--- session s2 [/p/b] ---")
	assert.Contains(t, out, "USER > 2025-01-01T00:00:00Z")
	assert.Contains(t, out, "ASST > 2025-01-01T00:00:05Z (claude-x)")
	assert.Contains(t, out, "  how do I\n  fix it\n")
	assert.Contains(t, out, "    ponder")
	assert.Contains(t, out, `TOOL > Bash {"command": "ls -la"}`)
	assert.Equal(t, 1, strings.Count(out, strings.Repeat("-", 50)))
}

func TestRenderTranscriptColor(t *testing.T) {
	out := RenderTranscript(sampleRecords(), Options{Color: true})
	assert.Contains(t, out, colorUser+"USER")
	assert.Contains(t, out, colorAssist+"ASST")
}

func TestRenderHideSections(t *testing.T) {
	out := RenderRecord(sampleRecords()[1], Options{HideThinking: true, HideTools: true})
	assert.NotContains(t, out, "ponder")
	assert.NotContains(t, out, "TOOL")
	assert.Contains(t, out, "like this")
}

func TestRenderEmpty(t *testing.T) {
	assert.Equal(t, "(no records)\n", RenderTranscript(nil, Options{}))
}

func TestWrapLine(t *testing.T) {
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, wrapLine("abcdefghij", 4))
	assert.Equal(t, []string{"abc"}, wrapLine("abc", 0))
	assert.Equal(t, []string{""}, wrapLine("", 10))
	// wide runes take two columns
	assert.Equal(t, []string{"日本", "語"}, wrapLine("日本語", 4))
	// escapes do not count toward width
	assert.Equal(t, []string{colorDim + "ab", "cd" + colorReset}, wrapLine(colorDim+"abcd"+colorReset, 2))
}

func TestToolInputTruncates(t *testing.T) {
	long := json.RawMessage(`"` + strings.Repeat("a", 50) + `"`)
	assert.Equal(t, `"aaaaaaaaa...`, toolInput(long, 10))
	assert.Equal(t, "null", toolInput(nil, 10))
}
