package runner

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// maxLineSize bounds a single output line; ffmpeg banners and yt-dlp JSON
// dumps stay well below it.
const maxLineSize = 1024 * 1024

// splitLines works like bufio.ScanLines but also breaks on a bare carriage
// return, which both tools use to redraw their status line in place.
func splitLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// scanLines calls emit for every non-blank trimmed line of r. On a scanner
// error the rest of r is drained so the writer never blocks on a full pipe.
func scanLines(r io.Reader, emit func(line string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	sc.Split(splitLines)
	for sc.Scan() {
		line := strings.TrimSpace(strings.ToValidUTF8(sc.Text(), "�"))
		if line == "" {
			continue
		}
		emit(line)
	}
	if err := sc.Err(); err != nil {
		_, _ = io.Copy(io.Discard, r)
		return err
	}
	return nil
}
