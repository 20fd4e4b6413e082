package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Zuo-Peng/ai-session-dataset/internal/parse"
	"github.com/mattn/go-runewidth"
)

const (
	colorReset  = "\033[0m"
	colorUser   = "\033[1;34m" // bold blue
	colorAssist = "\033[1;32m" // bold green
	colorThink  = "\033[2;35m" // dim magenta for thinking
	colorTool   = "\033[33m"   // yellow for tool calls
	colorDim    = "\033[2m"
)

type Options struct {
	Width        int  // wrap width (0 = no wrap)
	Color        bool // emit ANSI escapes
	HideThinking bool
	HideTools    bool
	MaxInput     int // truncate tool input JSON to this many characters (0 = 200)
}

type palette struct {
	reset, user, assist, think, tool, dim string
}

func paletteFor(color bool) palette {
	if !color {
		return palette{}
	}
	return palette{colorReset, colorUser, colorAssist, colorThink, colorTool, colorDim}
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth && visW > 0 {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

type lineWriter struct {
	b     strings.Builder
	width int
	lines int
}

func (w *lineWriter) writeLine(s string) {
	for _, wl := range wrapLine(s, w.width) {
		w.b.WriteString(wl)
		w.b.WriteString("\n")
		w.lines++
	}
}

func (w *lineWriter) writeBlock(text string) {
	for _, tl := range strings.Split(text, "\n") {
		w.writeLine(tl)
	}
}

// Header is the one-line label for a record: role, timestamp and model.
func Header(rec parse.Record, color bool) string {
	p := paletteFor(color)
	roleColor, roleLabel := p.user, "USER"
	if rec.Role == parse.RoleAssistant {
		roleColor, roleLabel = p.assist, "ASST"
	}
	h := fmt.Sprintf("%s%s >%s %s%s%s", roleColor, roleLabel, p.reset, p.dim, rec.Timestamp, p.reset)
	if rec.Model != "" {
		h += fmt.Sprintf(" %s(%s)%s", p.dim, rec.Model, p.reset)
	}
	return h
}

// RenderRecord renders a single record: header, thinking, text and tool calls.
func RenderRecord(rec parse.Record, opts Options) string {
	w := &lineWriter{width: opts.Width}
	writeRecord(w, rec, opts)
	return w.b.String()
}

func writeRecord(w *lineWriter, rec parse.Record, opts Options) {
	p := paletteFor(opts.Color)

	w.writeLine(Header(rec, opts.Color))

	if rec.Thinking != nil && *rec.Thinking != "" && !opts.HideThinking {
		w.writeLine(fmt.Sprintf("  %sTHINK >%s", p.think, p.reset))
		w.writeBlock(p.dim + indentLines(*rec.Thinking, "    ") + p.reset)
	}

	if rec.Content != "" {
		w.writeBlock(indentLines(rec.Content, "  "))
	}

	if !opts.HideTools {
		for _, tc := range rec.ToolCalls {
			w.writeLine(fmt.Sprintf("  %sTOOL > %s%s %s", p.tool, tc.Name, p.reset, toolInput(tc.Input, opts.MaxInput)))
		}
	}
}

func toolInput(raw json.RawMessage, max int) string {
	if max <= 0 {
		max = 200
	}
	s := strings.Join(strings.Fields(string(raw)), " ")
	if s == "" {
		s = "null"
	}
	if utf8.RuneCountInString(s) > max {
		s = string([]rune(s)[:max]) + "..."
	}
	return s
}

// RenderTranscript renders records in order, grouped under a header line
// whenever the session changes.
func RenderTranscript(records []parse.Record, opts Options) string {
	if len(records) == 0 {
		return "(no records)\n"
	}

	p := paletteFor(opts.Color)
	w := &lineWriter{width: opts.Width}
	separator := p.dim + "--------------------------------------------------" + p.reset

	prevSession := "\x00"
	for i, rec := range records {
		if rec.SessionID != prevSession {
			if i > 0 {
				w.writeLine("")
			}
			w.writeLine(fmt.Sprintf("%s--- session %s [%s] ---%s", p.dim, orDash(rec.SessionID), orDash(rec.Project), p.reset))
			prevSession = rec.SessionID
		} else {
			w.writeLine(separator)
		}
		writeRecord(w, rec, opts)
	}
	return w.b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
