package tui

import (
	"strings"
	"testing"

	"github.com/Zuo-Peng/ai-session-dataset/internal/parse"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecords() []parse.Record {
	return []parse.Record{
		{SessionID: "s1", Project: "/home/me/proj", Timestamp: "2026-01-27T10:11:12.000Z", Role: "user", Content: "first question"},
		{SessionID: "s1", Project: "/home/me/proj", Timestamp: "2026-01-27T10:11:20.000Z", Role: "assistant", Content: "first answer"},
		{SessionID: "s2", Role: "user", Content: "", ToolCalls: []parse.ToolCall{{Name: "Bash"}}},
	}
}

func sized(t *testing.T, m model) model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(model)
}

func press(m model, k string) model {
	var msg tea.KeyMsg
	switch k {
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(model)
}

func TestCursorMovementClamps(t *testing.T) {
	m := sized(t, newModel("merged.jsonl", testRecords()))
	assert.Equal(t, 0, m.previewIdx)

	m = press(m, "up")
	assert.Equal(t, 0, m.cursor)

	m = press(m, "down")
	m = press(m, "down")
	m = press(m, "down")
	assert.Equal(t, 2, m.cursor)
	assert.Equal(t, 2, m.previewIdx)

	m = press(m, "g")
	assert.Equal(t, 0, m.cursor)
	m = press(m, "G")
	assert.Equal(t, 2, m.cursor)
}

func TestEnterSelectsRecord(t *testing.T) {
	m := sized(t, newModel("x", testRecords()))
	m = press(m, "down")
	m = press(m, "enter")
	require.NotNil(t, m.selected)
	assert.Equal(t, "first answer", m.selected.Content)
	assert.True(t, m.quitting)
}

func TestViewShowsListAndStatus(t *testing.T) {
	m := sized(t, newModel("merged.jsonl", testRecords()))
	view := m.View()
	assert.Contains(t, view, "merged.jsonl")
	assert.Contains(t, view, "1/3 records")
	assert.Contains(t, view, "first question")
	assert.Contains(t, view, "[tool] Bash")
}

func TestEmptyList(t *testing.T) {
	m := sized(t, newModel("empty", nil))
	m = press(m, "down")
	assert.Equal(t, 0, m.cursor)
	assert.Contains(t, m.View(), "No records")
}

func TestFormatRecordLine(t *testing.T) {
	lines := formatRecordLine(testRecords()[0], 40, false)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "  "))
	assert.Contains(t, lines[0], "01-27 10:11")
	assert.Contains(t, lines[0], "proj")
	assert.NotContains(t, lines[0], "/home")
}

func TestResumeCommand(t *testing.T) {
	recs := testRecords()
	assert.Equal(t, "cd /home/me/proj && claude --resume s1", ResumeCommand(recs[0]))
	assert.Equal(t, "claude --resume s2", ResumeCommand(recs[2]))
	assert.Equal(t, "", ResumeCommand(parse.Record{}))
}

func TestSessionJumps(t *testing.T) {
	recs := []parse.Record{
		{SessionID: "a", Role: "user"},
		{SessionID: "a", Role: "assistant"},
		{SessionID: "b", Role: "user"},
		{SessionID: "c", Role: "user"},
		{SessionID: "c", Role: "assistant"},
	}
	assert.Equal(t, 2, nextSession(recs, 0))
	assert.Equal(t, 3, nextSession(recs, 2))
	assert.Equal(t, 4, nextSession(recs, 4))

	assert.Equal(t, 2, prevSession(recs, 4))
	assert.Equal(t, 0, prevSession(recs, 2))
	assert.Equal(t, 0, prevSession(recs, 1))

	m := sized(t, newModel("x", recs))
	m = press(m, "n")
	assert.Equal(t, 2, m.cursor)
	m = press(m, "n")
	assert.Equal(t, 3, m.cursor)
	m = press(m, "N")
	assert.Equal(t, 2, m.cursor)
	assert.Equal(t, 2, m.previewIdx)
}
