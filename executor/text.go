package executor

import (
	"errors"
	"regexp"
	"strings"
)

// ansiRE matches ANSI escape sequences (colors, cursor movement, etc.)
var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes ANSI escape codes from a string. Some terminal
// servers inject formatting even into plain CLI sessions.
func StripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

// promptLineRE matches a line that is nothing but a device prompt
var promptLineRE = regexp.MustCompile(`^[\w\-.()/:]+[#>]\s*$`)

// promptPrefixRE matches a hostname-prompt marker glued to the front
// of a content line, e.g. "sw-core-1#show clock" left by echo races
var promptPrefixRE = regexp.MustCompile(`^[\w\-.()/:]+[#>]\s?`)

// CleanOutput normalizes one command's raw output: ANSI codes go,
// leading/trailing whitespace goes, residual pure-prompt lines go,
// and a hostname-prompt marker at the start of a line is stripped.
func CleanOutput(raw string) string {
	s := strings.TrimSpace(StripANSI(raw))
	if s == "" {
		return ""
	}

	var cleaned []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, " \r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			cleaned = append(cleaned, "")
			continue
		}
		if promptLineRE.MatchString(trimmed) {
			continue
		}
		if m := promptPrefixRE.FindString(trimmed); m != "" {
			rest := strings.TrimSpace(trimmed[len(m):])
			if rest != "" {
				line = rest
			}
		}
		cleaned = append(cleaned, line)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// deviceErrorPatterns are the IOS rejection markers a command can
// produce while the channel itself stays healthy.
var deviceErrorPatterns = []string{
	"% invalid input",
	"% incomplete command",
	"% ambiguous command",
	"% unknown command",
	"% bad ip address",
	"% access denied",
}

// classifyOutput detects a device-side command rejection in otherwise
// successful output.
func classifyOutput(out string) error {
	lower := strings.ToLower(out)
	for _, p := range deviceErrorPatterns {
		if strings.Contains(lower, p) {
			return errors.New("device rejected command: " + firstLine(out))
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
