package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ResultType selects the color and marker of a result box
type ResultType int

const (
	ResultSuccess ResultType = iota // expected status code
	ResultWarning                   // any other status below 500
	ResultFailure                   // 5xx or a local error
)

// Result is a box around one response or one error.
type Result struct {
	Type            ResultType
	Title           string  // e.g. "200 OK"
	Details         []Param // shown above the body, in order
	Body            string  // formatted response body
	Error           error
	Troubleshooting []string
	Width           int
}

// NewResponseResult builds a box for a response. ok is the outcome of the
// client's success check; 5xx statuses always render as failures.
func NewResponseResult(status string, statusCode int, ok bool, body string) *Result {
	t := ResultWarning
	switch {
	case statusCode >= 500:
		t = ResultFailure
	case ok:
		t = ResultSuccess
	}
	return &Result{
		Type:  t,
		Title: status,
		Body:  body,
		Width: GetTerminalWidth(),
	}
}

// NewFailureResult builds a box for an error. Hint lines may carry their own
// "Troubleshooting:" title and bullets; both are stripped when rendering.
func NewFailureResult(title string, err error, troubleshooting []string) *Result {
	return &Result{
		Type:            ResultFailure,
		Title:           title,
		Error:           err,
		Troubleshooting: troubleshooting,
		Width:           GetTerminalWidth(),
	}
}

// SetWidth sets the width for rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddDetail appends a labelled value
func (r *Result) AddDetail(key, value string) *Result {
	r.Details = append(r.Details, Param{Key: key, Value: value})
	return r
}

// Render returns the styled box
func (r *Result) Render() string {
	width := clampWidth(r.Width)

	var (
		color  lipgloss.Color
		title  lipgloss.Style
		marker string
		label  string
	)
	switch r.Type {
	case ResultSuccess:
		color, title, marker, label = SuccessColor, SuccessTitleStyle, SuccessMarker, "SUCCESS"
	case ResultWarning:
		color, title, marker, label = WarningColor, WarningTitleStyle, WarningMarker, "UNEXPECTED"
	default:
		color, title, marker, label = ErrorColor, ErrorTitleStyle, FailureMarker, "FAILED"
	}

	lines := []string{"", title.Render(fmt.Sprintf(" %s  %s  ─  %s", marker, label, r.Title)), ""}

	for _, d := range r.Details {
		lines = append(lines, ResultKeyStyle.Render(" "+d.Key+":")+" "+ResultValueStyle.Render(d.Value))
	}
	if len(r.Details) > 0 {
		lines = append(lines, "")
	}

	if r.Error != nil {
		lines = append(lines, ErrorMessageStyle.Width(width-8).Render(" Error: "+r.Error.Error()), "")
	}

	if r.Body != "" {
		lines = append(lines, BodyStyle.Render(r.Body), "")
	}

	if tips := cleanTips(r.Troubleshooting); len(tips) > 0 {
		lines = append(lines, r.renderTroubleshootingBox(width, tips), "")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(color).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

func cleanTips(tips []string) []string {
	var out []string
	for _, tip := range tips {
		tip = strings.TrimSpace(tip)
		tip = strings.TrimSpace(strings.TrimPrefix(tip, "•"))
		if tip == "" || tip == "Troubleshooting:" {
			continue
		}
		out = append(out, tip)
	}
	return out
}

func (r *Result) renderTroubleshootingBox(width int, tips []string) string {
	lines := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
	for _, tip := range tips {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+tip))
	}

	innerWidth := width - 12
	if innerWidth < 40 {
		innerWidth = 40
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(innerWidth).
		Padding(0, 1).
		MarginLeft(1).
		Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}
