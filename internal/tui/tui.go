package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/Zuo-Peng/ai-session-dataset/internal/parse"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type model struct {
	title      string
	records    []parse.Record
	cursor     int
	listOffset int
	preview    viewport.Model
	previewIdx int // record currently shown in the preview, -1 for none
	width      int
	height     int
	ready      bool
	quitting   bool
	selected   *parse.Record
}

func newModel(title string, records []parse.Record) model {
	return model{
		title:      title,
		records:    records,
		preview:    viewport.New(0, 0),
		previewIdx: -1,
	}
}

// Run opens the record browser and blocks until it exits. If the user
// selects a record, its resume command is copied to the clipboard, or
// printed to out when no clipboard is available.
func Run(title string, records []parse.Record, out io.Writer) error {
	p := tea.NewProgram(newModel(title, records), tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	fm := finalModel.(model)
	if fm.selected == nil {
		return nil
	}
	cmd := ResumeCommand(*fm.selected)
	if cmd == "" {
		return nil
	}
	if err := clipboard.WriteAll(cmd); err != nil {
		fmt.Fprintln(out, cmd)
		return nil
	}
	fmt.Fprintf(out, "Copied to clipboard: %s\n", cmd)
	return nil
}

// ResumeCommand is the shell command that resumes the record's session, or ""
// when the record carries no session id.
func ResumeCommand(r parse.Record) string {
	if r.SessionID == "" {
		return ""
	}
	cmd := "claude --resume " + r.SessionID
	if r.Project != "" {
		cmd = fmt.Sprintf("cd %s && %s", r.Project, cmd)
	}
	return cmd
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.preview = newViewport(m.previewWidth(), m.panelHeight())
		m.previewIdx = -1
		m.refreshPreview()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Enter):
			if m.cursor < len(m.records) {
				r := m.records[m.cursor]
				m.selected = &r
				m.quitting = true
				return m, tea.Quit
			}

		case key.Matches(msg, keys.Up):
			m.moveCursor(m.cursor - 1)

		case key.Matches(msg, keys.Down):
			m.moveCursor(m.cursor + 1)

		case key.Matches(msg, keys.Top):
			m.moveCursor(0)

		case key.Matches(msg, keys.Bottom):
			m.moveCursor(len(m.records) - 1)

		case key.Matches(msg, keys.NextSess):
			m.moveCursor(nextSession(m.records, m.cursor))

		case key.Matches(msg, keys.PrevSess):
			m.moveCursor(prevSession(m.records, m.cursor))

		case key.Matches(msg, keys.PreviewUp):
			m.preview.LineUp(m.panelHeight() / 2)

		case key.Matches(msg, keys.PreviewDn):
			m.preview.LineDown(m.panelHeight() / 2)

		case key.Matches(msg, keys.PageUp):
			m.preview.LineUp(m.panelHeight())

		case key.Matches(msg, keys.PageDown):
			m.preview.LineDown(m.panelHeight())
		}
		return m, nil

	case tea.MouseMsg:
		if !m.ready || len(m.records) == 0 {
			return m, nil
		}
		inList := msg.X <= m.listWidth()+1
		switch {
		case inList && msg.Button == tea.MouseButtonWheelUp:
			m.moveCursor(m.cursor - 1)
		case inList && msg.Button == tea.MouseButtonWheelDown:
			m.moveCursor(m.cursor + 1)
		case !inList && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown):
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

func (m *model) moveCursor(to int) {
	if len(m.records) == 0 {
		return
	}
	if to < 0 {
		to = 0
	}
	if to > len(m.records)-1 {
		to = len(m.records) - 1
	}
	m.cursor = to
	m.adjustListScroll(m.panelHeight())
	m.refreshPreview()
}

// nextSession returns the first record after i that starts a different
// session, or i when there is none.
func nextSession(records []parse.Record, i int) int {
	for j := i + 1; j < len(records); j++ {
		if records[j].SessionID != records[i].SessionID {
			return j
		}
	}
	return i
}

// prevSession returns the first record of the session before the one
// holding i. Within the first session it returns 0.
func prevSession(records []parse.Record, i int) int {
	if i <= 0 || i >= len(records) {
		return 0
	}
	start := sessionStart(records, i)
	if start == 0 {
		return 0
	}
	return sessionStart(records, start-1)
}

func sessionStart(records []parse.Record, i int) int {
	for i > 0 && records[i-1].SessionID == records[i].SessionID {
		i--
	}
	return i
}

func (m *model) refreshPreview() {
	if m.cursor >= len(m.records) || m.cursor == m.previewIdx {
		return
	}
	m.preview.SetContent(renderPreview(m.records[m.cursor], m.previewWidth()))
	m.preview.GotoTop()
	m.previewIdx = m.cursor
}

func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	previewW := m.previewWidth()
	panelH := m.panelHeight()

	header := styleHeader.Render(m.title)

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	m.preview.Width = previewW
	m.preview.Height = panelH
	previewPanel := styleActiveBorder.
		Width(previewW).
		Height(panelH).
		Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)

	return lipgloss.JoinVertical(lipgloss.Left, header, panels, m.statusBar())
}

func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	// 40% for list, minus border padding
	w := m.width*40/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	// 60% for preview, minus border padding
	w := m.width*60/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// Subtract header (1) + status bar (1) + borders (4)
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

func (m model) statusBar() string {
	pos := 0
	if len(m.records) > 0 {
		pos = m.cursor + 1
	}
	parts := []string{
		fmt.Sprintf("%d/%d records", pos, len(m.records)),
		"up/dn navigate",
		"n/N session",
		"C-u/C-d preview",
		"Enter copy resume cmd",
		"q quit",
	}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}
