// Package validation cleans user-supplied naming fragments before they reach
// synthesized output paths.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// maxNameLength is the common filesystem limit for one path element.
const maxNameLength = 255

// dangerousChars are replaced in file name fragments.
var dangerousChars = map[rune]bool{
	'"':  true,
	'\\': true,
	'/':  true,
	':':  true,
	'*':  true,
	'?':  true,
	'<':  true,
	'>':  true,
	'|':  true,
	'\n': true,
	'\r': true,
}

// SanitizeSuffix cleans a batch output suffix. It keeps Unicode, replaces
// separators and control characters with underscores and truncates to one
// path element. An empty result means "use the default".
func SanitizeSuffix(suffix string) string {
	result := strings.TrimSpace(replaceChars(suffix, dangerousChars))
	if isOnlyUnderscores(result) {
		return ""
	}
	return truncateToBytes(result, maxNameLength)
}

// templateChars are replaced in output templates; '/' stays because
// templates may create sub-folders.
var templateChars = map[rune]bool{
	'"':  true,
	'\\': true,
	'\n': true,
	'\r': true,
}

// SanitizeTemplate cleans a downloader output template. Absolute templates
// and ".." elements are rejected so files land inside the download folder.
func SanitizeTemplate(tmpl string) (string, error) {
	result := strings.TrimSpace(replaceChars(tmpl, templateChars))
	if result == "" {
		return "", nil
	}
	if filepath.IsAbs(result) || strings.HasPrefix(result, "/") {
		return "", fmt.Errorf("output template must be relative, got %q", tmpl)
	}
	for _, elem := range strings.Split(result, "/") {
		if elem == ".." {
			return "", fmt.Errorf("output template must not leave the download folder, got %q", tmpl)
		}
	}

	elems := strings.Split(result, "/")
	last := elems[len(elems)-1]
	if len(last) > maxNameLength {
		elems[len(elems)-1] = truncatePreservingExtension(last)
	}
	return strings.Join(elems, "/"), nil
}

func replaceChars(s string, set map[rune]bool) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r < 32 || r == 127 || set[r] {
			sb.WriteRune('_')
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func isOnlyUnderscores(s string) bool {
	for _, r := range s {
		if r != '_' {
			return false
		}
	}
	return true
}

func truncatePreservingExtension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || len(ext) >= maxNameLength {
		return truncateToBytes(name, maxNameLength)
	}
	base := name[:len(name)-len(ext)]
	return truncateToBytes(base, maxNameLength-len(ext)) + ext
}

// truncateToBytes cuts s to at most maxBytes without splitting a rune.
func truncateToBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
