// Package ui renders kmmctl output for humans.
//
// When --pretty-print is set and stdout is a terminal, results are drawn
// with Lipgloss: a Header naming the method and request, then a Result box
// colored by outcome (green for the expected status, orange for any other
// status, red for 5xx and local errors). Piped output never goes through
// this package, so scripts always see the bare formatted body.
//
// PromptPassword reads a password with echo disabled when no --password
// was given and stdin is a terminal.
package ui
