package runner

import (
	"testing"

	"github.com/bnema/cheval/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTranscoderPercent(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		duration float64
		want     float64
		wantOK   bool
	}{
		{"microseconds", "out_time_us=5000000", 10, 50, true},
		{"clock", "out_time=00:01:15.500000", 151, 50, true},
		{"capped at 100", "out_time_us=20000000", 10, 100, true},
		{"unknown duration", "out_time_us=5000000", 0, 0, false},
		{"not yet known", "out_time_us=N/A", 10, 0, false},
		{"unrelated key", "bitrate=1024.0kbits/s", 10, 0, false},
		{"stats line", "frame=  120 fps= 30 q=28.0 size=512kB time=00:00:04.00", 10, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TranscoderPercent(tt.line, tt.duration)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDownloaderPercent(t *testing.T) {
	tests := []struct {
		line   string
		want   float64
		wantOK bool
	}{
		{"[download]  42.5% of 10.00MiB at 1.00MiB/s ETA 00:05", 42.5, true},
		{"[download] 100% of 10.00MiB in 00:10", 100, true},
		{"[download] Destination: video.mp4", 0, false},
		{"[youtube] abc: Downloading webpage", 0, false},
	}

	for _, tt := range tests {
		got, ok := DownloaderPercent(tt.line)
		assert.Equal(t, tt.wantOK, ok, tt.line)
		assert.InDelta(t, tt.want, got, 1e-9, tt.line)
	}
}

func TestProgressForPicksParser(t *testing.T) {
	dl := progressFor(domain.NewDownloaderJob([]string{"url"}))
	pct, ok := dl("[download]  12.0%")
	assert.True(t, ok)
	assert.InDelta(t, 12.0, pct, 1e-9)

	tc := progressFor(domain.NewTranscoderJob(nil, 20, "out.mp4"))
	pct, ok = tc("out_time_us=5000000")
	assert.True(t, ok)
	assert.InDelta(t, 25.0, pct, 1e-9)
	_, ok = tc("[download]  12.0%")
	assert.False(t, ok)
}
