package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Param is one labelled value shown in a header
type Param struct {
	Key   string
	Value string
}

// Header is the banner printed above a pretty result: the method name, the
// request line and a few labelled parameters.
type Header struct {
	Title   string  // e.g. "device_screenshot"
	Command string  // e.g. "GET /kmm/svc/DevicesScreenshot/987"
	Params  []Param // shown in order
	Width   int
}

// NewHeader creates a header sized to the terminal
func NewHeader(title, command string, params ...Param) *Header {
	return &Header{
		Title:   title,
		Command: command,
		Params:  params,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the width for rendering
func (h *Header) SetWidth(width int) *Header {
	h.Width = width
	return h
}

// Render returns the styled header
func (h *Header) Render() string {
	width := clampWidth(h.Width)

	titleLine := HeaderTitleStyle.Render(strings.ToUpper(h.Title))
	lines := []string{titleLine}
	if h.Command != "" {
		lines = append(lines, HeaderCommandStyle.Render(h.Command))
	}

	if len(h.Params) > 0 {
		lines = append(lines, "  "+RenderHorizontalDivider(width-8, "─"))
		for _, p := range h.Params {
			if p.Value == "" {
				continue
			}
			lines = append(lines, HeaderParamKeyStyle.Render(p.Key+":")+" "+HeaderParamValueStyle.Render(p.Value))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// String implements fmt.Stringer
func (h *Header) String() string {
	return h.Render()
}
