// Package synth turns operation options into exact argument vectors for the
// transcoder and the downloader. Every function is pure: no filesystem
// access, no processes.
package synth

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bnema/cheval/internal/domain"
	"github.com/hbollon/go-edlib"
)

const progressTarget = "pipe:1"

// minSuggestionScore is the Jaro-Winkler similarity below which no
// "did you mean" hint is offered.
const minSuggestionScore = 0.7

func withProgress(args []string, output string) []string {
	return append(args, "-progress", progressTarget, output)
}

// derivePath builds {dir}/{stem}{suffix}{ext} next to the input.
func derivePath(input, suffix, ext string) string {
	return deriveIn("", input, suffix, ext)
}

func deriveIn(dir, input, suffix, ext string) string {
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, domain.Stem(input)+suffix+ext)
}

func requireFile(field, path, what string) error {
	if strings.TrimSpace(path) == "" {
		return domain.NewValidationError(field, "no %s selected", what)
	}
	return nil
}

func requireInput(path string) error {
	return requireFile("input", path, "input file")
}

func checkRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return domain.NewValidationError(field, "must be between %d and %d, got %d", lo, hi, v)
	}
	return nil
}

func checkRangeFloat(field string, v, lo, hi float64) error {
	if v < lo || v > hi {
		return domain.NewValidationError(field, "must be between %g and %g, got %g", lo, hi, v)
	}
	return nil
}

// checkChoice rejects values outside allowed, suggesting the closest match.
func checkChoice(field, value string, allowed []string) error {
	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	if hint := suggest(value, allowed); hint != "" {
		return domain.NewValidationError(field, "unsupported value %q (did you mean %q?)", value, hint)
	}
	return domain.NewValidationError(field, "unsupported value %q (expected one of %s)", value, strings.Join(allowed, ", "))
}

func suggest(value string, candidates []string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	best, bestScore := "", float32(0)
	for _, c := range candidates {
		score := edlib.JaroWinklerSimilarity(value, strings.ToLower(c))
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore < minSuggestionScore {
		return ""
	}
	return best
}

func orDefault(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

// formatFloat renders a float the way filter arguments expect it: shortest
// representation, always with a fractional part (1 -> "1.0", 0.25 -> "0.25").
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParseTimestamp accepts "SS", "MM:SS" or "HH:MM:SS(.ms)" and returns seconds.
func ParseTimestamp(ts string) (float64, bool) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return 0, false
	}
	parts := strings.Split(ts, ":")
	if len(parts) > 3 {
		return 0, false
	}
	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return 0, false
		}
		total = total*60 + v
	}
	return total, true
}

// segmentDuration estimates the output length of a [start, end] cut.
func segmentDuration(full float64, start, end string) float64 {
	s, _ := ParseTimestamp(start)
	stop := full
	if e, ok := ParseTimestamp(end); ok && (full <= 0 || e < full) {
		stop = e
	}
	if stop <= s {
		return 0
	}
	return stop - s
}

func kbps(v int) string {
	return fmt.Sprintf("%dk", v)
}

func fileExt(path string) string {
	return filepath.Ext(path)
}
