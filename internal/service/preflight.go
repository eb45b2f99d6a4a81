package service

import (
	"fmt"
	"os/exec"
	"strings"
)

// Binary is one external program cheval depends on.
type Binary struct {
	Name string `json:"name"`
	Path string `json:"path"`
	// Resolved is the absolute path found through PATH, empty when missing.
	Resolved string `json:"resolved,omitempty"`
	Found    bool   `json:"found"`
}

type lookPathFunc func(file string) (string, error)

// Preflight resolves each configured binary. The returned error names every
// missing one.
func Preflight(bins map[string]string) ([]Binary, error) {
	return preflight(bins, exec.LookPath)
}

func preflight(bins map[string]string, lookPath lookPathFunc) ([]Binary, error) {
	names := []string{"ffmpeg", "ffprobe", "yt-dlp"}
	var result []Binary
	var missing []string
	for _, name := range names {
		path, ok := bins[name]
		if !ok {
			continue
		}
		b := Binary{Name: name, Path: path}
		if resolved, err := lookPath(path); err == nil {
			b.Resolved = resolved
			b.Found = true
		} else {
			missing = append(missing, fmt.Sprintf("%s (%s)", name, path))
		}
		result = append(result, b)
	}
	if len(missing) > 0 {
		return result, fmt.Errorf("missing binaries: %s", strings.Join(missing, ", "))
	}
	return result, nil
}
