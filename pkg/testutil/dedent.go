package testutil

import "strings"

// Dedent removes the common leading whitespace of all non-blank lines in text.
// A leading newline is removed, so that raw strings can start on the line
// after the opening backtick.
func Dedent(text string) string {
	text = strings.TrimPrefix(text, "\n")
	lines := strings.Split(text, "\n")
	margin := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		if n := len(line) - len(trimmed); margin == -1 || n < margin {
			margin = n
		}
	}
	for i, line := range lines {
		if len(line) >= margin && margin > 0 {
			lines[i] = line[margin:]
		} else if strings.TrimLeft(line, " \t") == "" {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}
