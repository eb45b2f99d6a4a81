package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/bnema/cheval/internal/domain"
	"github.com/bnema/cheval/internal/infrastructure/backoff"
	"github.com/bnema/cheval/internal/infrastructure/logger"
	"github.com/bnema/cheval/internal/port"
	"github.com/bnema/cheval/internal/synth"
)

const (
	DefaultTimeout = 60 * time.Second
	defaultRetries = 3
)

var ErrNoMetadata = errors.New("no metadata in yt-dlp output")

// transientMarkers appear in yt-dlp errors worth retrying.
var transientMarkers = []string{
	"timed out",
	"connection reset",
	"temporary failure in name resolution",
	"http error 429",
	"http error 500",
	"http error 502",
	"http error 503",
	"http error 504",
	"remote end closed connection",
}

type outputFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

type Fetcher struct {
	bin     string
	timeout time.Duration
	retries uint64
	backoff *backoff.Backoff
	output  outputFunc
}

func NewFetcher(bin string, timeout time.Duration) *Fetcher {
	if bin == "" {
		bin = "yt-dlp"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		bin:     bin,
		timeout: timeout,
		retries: defaultRetries,
		backoff: backoff.New(time.Second, 10*time.Second, 2),
		output:  commandOutput,
	}
}

// Fetch reads the metadata of url without downloading anything. Network
// hiccups are retried with exponential backoff.
func (f *Fetcher) Fetch(ctx context.Context, url string, noPlaylist bool) (*domain.VideoInfo, error) {
	if strings.TrimSpace(url) == "" {
		return nil, domain.NewValidationError("url", "no URL entered")
	}
	args := synth.FetchArgs(url, noPlaylist)

	attempt := 0
	return backoff.Do(ctx, f.backoff, f.retries, func(ctx context.Context) (*domain.VideoInfo, error) {
		attempt++
		info, err := f.fetchOnce(ctx, args)
		if err != nil && isTransient(err) {
			logger.Warn.Printf("fetch attempt %d for %s failed: %v", attempt, logger.SanitizeForLog(url), err)
			return nil, backoff.Retryable(err)
		}
		return info, err
	})
}

func (f *Fetcher) fetchOnce(ctx context.Context, args []string) (*domain.VideoInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	stdout, stderr, err := f.output(ctx, f.bin, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("yt-dlp timed out after %s: %w", f.timeout, ctx.Err())
		}
		if msg := lastErrorLine(stderr); msg != "" {
			return nil, fmt.Errorf("yt-dlp failed: %s: %w", msg, err)
		}
		return nil, fmt.Errorf("yt-dlp failed: %w", err)
	}
	return ParseInfo(stdout)
}

// ParseInfo decodes the first JSON object line of yt-dlp -j output. A
// playlist prints one object per entry; only the first is used.
func ParseInfo(out []byte) (*domain.VideoInfo, error) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if !bytes.HasPrefix(line, []byte("{")) {
			continue
		}
		var info domain.VideoInfo
		if err := json.Unmarshal(line, &info); err != nil {
			return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
		}
		return &info, nil
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read yt-dlp output: %w", err)
	}
	return nil, ErrNoMetadata
}

// CountEntries reports how many JSON objects the output holds.
func CountEntries(out []byte) int {
	n := 0
	for _, line := range bytes.Split(out, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimSpace(line), []byte("{")) {
			n++
		}
	}
	return n
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func lastErrorLine(stderr []byte) string {
	lines := strings.Split(strings.TrimSpace(string(stderr)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); strings.HasPrefix(l, "ERROR:") {
			return l
		}
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

func commandOutput(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

var _ port.Fetcher = (*Fetcher)(nil)
