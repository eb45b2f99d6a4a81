package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/bnema/cheval/internal/domain"
	"github.com/bnema/cheval/internal/port"
)

var (
	ErrEmptyPath   = errors.New("path is empty")
	ErrInvalidPath = errors.New("path contains invalid characters")
)

const DefaultTimeout = 15 * time.Second

// outputFunc runs a command and returns its stdout and stderr.
type outputFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

type Prober struct {
	bin     string
	timeout time.Duration
	output  outputFunc
}

func NewProber(bin string, timeout time.Duration) *Prober {
	if bin == "" {
		bin = "ffprobe"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{bin: bin, timeout: timeout, output: commandOutput}
}

func validatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if strings.ContainsRune(path, 0) {
		return ErrInvalidPath
	}
	return nil
}

// Probe describes the container and streams of path.
func (p *Prober) Probe(ctx context.Context, path string) (*domain.ProbeResult, error) {
	if err := validatePath(path); err != nil {
		return nil, fmt.Errorf("invalid input path: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
	stdout, stderr, err := p.output(ctx, p.bin, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffprobe timed out after %s: %w", p.timeout, ctx.Err())
		}
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return nil, fmt.Errorf("ffprobe failed: %s: %w", msg, err)
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return Parse(stdout)
}

// Parse decodes a JSON probe document.
func Parse(data []byte) (*domain.ProbeResult, error) {
	var result domain.ProbeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(result.Streams) == 0 && result.Format.FormatName == "" {
		return nil, fmt.Errorf("ffprobe returned no streams")
	}
	result.RawJSON = string(data)
	return &result, nil
}

func commandOutput(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

var _ port.Prober = (*Prober)(nil)
