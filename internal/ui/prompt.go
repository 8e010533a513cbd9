package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// PromptPassword asks for a password on stderr and reads it from stdin
// with echo turned off. It fails when stdin is not a terminal.
func PromptPassword(label string) (string, error) {
	if !IsTerminal(os.Stdin) {
		return "", fmt.Errorf("cannot prompt for a password: stdin is not a terminal")
	}

	prompt := lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	fmt.Fprint(os.Stderr, prompt.Render(label+": "))

	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}
