package util

import (
	"fmt"
	"strings"
)

// OrDash returns the string if non-empty, otherwise returns "-".
func OrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// OnOff renders a toggle.
func OnOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// HeadLines returns at most n lines of s, followed by a line counting the
// ones left out.
func HeadLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	rest := len(lines) - n
	return strings.Join(lines[:n], "\n") + fmt.Sprintf("\n… %d more lines", rest)
}

// CountChars counts characters, not bytes.
func CountChars(s string) int {
	return len([]rune(s))
}
