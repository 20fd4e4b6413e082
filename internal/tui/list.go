package tui

import (
	"fmt"
	"strings"

	"github.com/Zuo-Peng/ai-session-dataset/internal/parse"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// linesPerItem is the number of terminal lines each record occupies.
const linesPerItem = 2

// renderList renders the left panel: the record list with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.records) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No records")
	}

	var lines []string
	for i := m.listOffset; i < len(m.records); i++ {
		if len(lines)+linesPerItem > height {
			break
		}
		lines = append(lines, formatRecordLine(m.records[i], width, i == m.cursor)...)
	}

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatRecordLine formats a record as two lines:
//
//	line 1: [>] role  time  project
//	line 2:    content head (dimmed)
func formatRecordLine(r parse.Record, width int, selected bool) []string {
	role := styleRoleUser.Render("user")
	if r.Role == parse.RoleAssistant {
		role = styleRoleAssistant.Render("asst")
	}

	// "2026-01-27T10:11:12.000Z" -> "01-27 10:11"
	ts := r.Timestamp
	if len(ts) >= 16 {
		ts = ts[5:10] + " " + ts[11:16]
	}

	project := r.Project
	if i := strings.LastIndexAny(project, `/\`); i >= 0 {
		project = project[i+1:]
	}
	projectMax := width - 2 - 5 - 12 - 1
	if projectMax < 0 {
		projectMax = 0
	}
	project = runewidth.Truncate(project, projectMax, "")

	line1 := fmt.Sprintf("%s %s %s", role, ts, project)
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	head := r.Content
	if head == "" && len(r.ToolCalls) > 0 {
		head = "[tool] " + r.ToolCalls[0].Name
	}
	head = strings.Join(strings.Fields(head), " ")
	headMax := width - 4
	if headMax < 0 {
		headMax = 0
	}
	head = runewidth.Truncate(head, headMax, "")
	line2 := "    " + lipgloss.NewStyle().Foreground(colorDim).Render(head)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
