package ffprobe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProbe = `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "r_frame_rate": "30000/1001"},
    {"index": 1, "codec_type": "audio", "codec_name": "aac", "sample_rate": "48000", "channels": 2},
    {"index": 2, "codec_type": "subtitle", "codec_name": "mov_text"}
  ],
  "format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "125.500000", "size": "5242880", "bit_rate": "2500000"}
}`

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"valid path", "/tmp/video.mp4", nil},
		{"valid path with spaces", "/tmp/my video.mp4", nil},
		{"valid relative path", "video.mp4", nil},
		{"empty path", "", ErrEmptyPath},
		{"null byte at start", "\x00/tmp/video.mp4", ErrInvalidPath},
		{"null byte in middle", "/tmp/\x00video.mp4", ErrInvalidPath},
		{"null byte at end", "/tmp/video.mp4\x00", ErrInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePath(tt.path)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func fakeProber(stdout, stderr string, err error) (*Prober, *[]string) {
	var got []string
	p := NewProber("", 0)
	p.output = func(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
		got = append([]string{name}, args...)
		return []byte(stdout), []byte(stderr), err
	}
	return p, &got
}

func TestProber_Probe(t *testing.T) {
	p, got := fakeProber(sampleProbe, "", nil)

	res, err := p.Probe(context.Background(), "/v/clip.mp4")
	require.NoError(t, err)

	assert.Equal(t, []string{"ffprobe", "-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", "/v/clip.mp4"}, *got)
	assert.InDelta(t, 125.5, res.DurationSeconds(), 1e-9)
	w, h := res.Dimensions()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
	assert.Equal(t, 48000, res.SampleRate())
	assert.Len(t, res.SubtitleStreams(), 1)
	assert.Equal(t, sampleProbe, res.RawJSON)
}

func TestProber_ProbeErrors(t *testing.T) {
	t.Run("invalid path", func(t *testing.T) {
		p, got := fakeProber(sampleProbe, "", nil)
		_, err := p.Probe(context.Background(), "/tmp/\x00video.mp4")
		assert.ErrorIs(t, err, ErrInvalidPath)
		assert.Contains(t, err.Error(), "invalid input path")
		assert.Empty(t, *got, "nothing is spawned")
	})

	t.Run("process failure keeps stderr", func(t *testing.T) {
		exitErr := errors.New("exit status 1")
		p, _ := fakeProber("", "/v/missing.mp4: No such file or directory\n", exitErr)
		_, err := p.Probe(context.Background(), "/v/missing.mp4")
		assert.ErrorIs(t, err, exitErr)
		assert.Contains(t, err.Error(), "No such file or directory")
	})

	t.Run("bad json", func(t *testing.T) {
		p, _ := fakeProber("not json", "", nil)
		_, err := p.Probe(context.Background(), "/v/a.mp4")
		assert.ErrorContains(t, err, "failed to parse ffprobe output")
	})

	t.Run("timeout", func(t *testing.T) {
		p := NewProber("ffprobe", 10*time.Millisecond)
		p.output = func(ctx context.Context, _ string, _ ...string) ([]byte, []byte, error) {
			<-ctx.Done()
			return nil, nil, ctx.Err()
		}
		_, err := p.Probe(context.Background(), "/v/a.mp4")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Contains(t, err.Error(), "timed out")
	})
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse([]byte(`{}`))
	assert.Error(t, err)
}
