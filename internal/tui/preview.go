package tui

import (
	"github.com/Zuo-Peng/ai-session-dataset/internal/parse"
	"github.com/Zuo-Peng/ai-session-dataset/internal/render"
	"github.com/charmbracelet/bubbles/viewport"
)

// renderPreview renders the selected record for the right panel.
func renderPreview(r parse.Record, width int) string {
	return render.RenderRecord(r, render.Options{
		Width:    width,
		Color:    true,
		MaxInput: 2000,
	})
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
