package logger

import (
	"fmt"
	"regexp"
	"strings"
)

// ansiSeq matches CSI color and cursor sequences such as yt-dlp's colored
// "[download]" prefix.
var ansiSeq = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

// SanitizeForLog escapes control characters so one value cannot forge extra
// log entries or drive the terminal. Printable Unicode passes through.
func SanitizeForLog(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\n':
			result.WriteString("\\n")
		case '\r':
			result.WriteString("\\r")
		case '\t':
			result.WriteString("\\t")
		default:
			if r < 32 || r == 127 {
				result.WriteString(fmt.Sprintf("\\x%02x", r))
			} else {
				result.WriteRune(r)
			}
		}
	}
	return result.String()
}

// StripANSI removes terminal escape sequences.
func StripANSI(s string) string {
	return ansiSeq.ReplaceAllString(s, "")
}

// ProcessLine prepares one line of child process output for the log.
func ProcessLine(s string) string {
	return SanitizeForLog(StripANSI(s))
}
