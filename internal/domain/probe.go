package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type ProbeFormat struct {
	FormatName string            `json:"format_name"`
	FormatLong string            `json:"format_long_name"`
	Duration   string            `json:"duration"`
	Size       string            `json:"size"`
	BitRate    string            `json:"bit_rate"`
	NbStreams  int               `json:"nb_streams"`
	Tags       map[string]string `json:"tags"`
}

type ProbeStream struct {
	Index        int               `json:"index"`
	CodecType    string            `json:"codec_type"`
	CodecName    string            `json:"codec_name"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	RFrameRate   string            `json:"r_frame_rate"`
	AvgFrameRate string            `json:"avg_frame_rate"`
	Duration     string            `json:"duration"`
	BitRate      string            `json:"bit_rate"`
	SampleRate   string            `json:"sample_rate"`
	Channels     int               `json:"channels"`
	Tags         map[string]string `json:"tags"`
}

// ProbeResult mirrors the prober's JSON document.
type ProbeResult struct {
	Format  ProbeFormat   `json:"format"`
	Streams []ProbeStream `json:"streams"`
	RawJSON string        `json:"-"`
}

const (
	oneKilobyte      = 1024
	oneMegabyte      = oneKilobyte * 1024
	oneGigabyte      = oneMegabyte * 1024
	oneMegabitPerSec = 1000000
	oneKilobitPerSec = 1000

	DefaultSampleRate = 44100
)

func (p *ProbeResult) streamOfType(codecType string) *ProbeStream {
	for i := range p.Streams {
		if p.Streams[i].CodecType == codecType {
			return &p.Streams[i]
		}
	}
	return nil
}

func (p *ProbeResult) VideoStream() *ProbeStream {
	return p.streamOfType("video")
}

func (p *ProbeResult) AudioStream() *ProbeStream {
	return p.streamOfType("audio")
}

// SubtitleStreams returns subtitle streams in container order.
func (p *ProbeResult) SubtitleStreams() []ProbeStream {
	var subs []ProbeStream
	for _, s := range p.Streams {
		if s.CodecType == "subtitle" {
			subs = append(subs, s)
		}
	}
	return subs
}

func (p *ProbeResult) Dimensions() (width, height int) {
	if vs := p.VideoStream(); vs != nil {
		return vs.Width, vs.Height
	}
	return 0, 0
}

// DurationSeconds returns the container duration, or 0 when unknown.
func (p *ProbeResult) DurationSeconds() float64 {
	if p == nil {
		return 0
	}
	return ParseDuration(p.Format.Duration)
}

// SampleRate returns the first audio stream's sample rate, falling back to
// DefaultSampleRate.
func (p *ProbeResult) SampleRate() int {
	if p == nil {
		return DefaultSampleRate
	}
	as := p.AudioStream()
	if as == nil {
		return DefaultSampleRate
	}
	sr, err := strconv.Atoi(as.SampleRate)
	if err != nil || sr <= 0 {
		return DefaultSampleRate
	}
	return sr
}

// Summary renders the one-screen description shown by `cheval probe`.
func (p *ProbeResult) Summary() []string {
	lines := []string{
		"Duration: " + FormatDuration(p.DurationSeconds()),
	}
	if size := ParseSize(p.Format.Size); size > 0 {
		lines = append(lines, "Size: "+FormatSize(size))
	}
	if br := FormatBitrate(p.Format.BitRate); br != "" {
		lines = append(lines, "Bitrate: "+br)
	}
	if vs := p.VideoStream(); vs != nil {
		parts := []string{vs.CodecName, fmt.Sprintf("%dx%d", vs.Width, vs.Height)}
		if fps := FormatFrameRate(vs.RFrameRate); fps != "" {
			parts = append(parts, fps)
		}
		lines = append(lines, "Video: "+strings.Join(parts, ", "))
	}
	if as := p.AudioStream(); as != nil {
		parts := []string{as.CodecName}
		if sr := FormatSampleRate(as.SampleRate); sr != "" {
			parts = append(parts, sr)
		}
		if as.Channels > 0 {
			parts = append(parts, fmt.Sprintf("%d ch", as.Channels))
		}
		lines = append(lines, "Audio: "+strings.Join(parts, ", "))
	}
	if subs := p.SubtitleStreams(); len(subs) > 0 {
		lines = append(lines, fmt.Sprintf("Subtitles: %d track(s)", len(subs)))
	}
	return lines
}

func ParseFrameRate(fraction string) float64 {
	if fraction == "" || fraction == "0/0" {
		return 0
	}
	var num, den int
	if _, err := fmt.Sscanf(fraction, "%d/%d", &num, &den); err == nil && den > 0 {
		return float64(num) / float64(den)
	}
	return 0
}

func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "00:00"
	}
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

func FormatBitrate(bitrateStr string) string {
	if bitrateStr == "" {
		return ""
	}
	bitrate, err := strconv.ParseFloat(bitrateStr, 64)
	if err != nil {
		return bitrateStr
	}
	if bitrate >= oneMegabitPerSec {
		return fmt.Sprintf("%.1f Mbps", bitrate/oneMegabitPerSec)
	}
	if bitrate >= oneKilobitPerSec {
		return fmt.Sprintf("%.1f Kbps", bitrate/oneKilobitPerSec)
	}
	return fmt.Sprintf("%.0f bps", bitrate)
}

func FormatFrameRate(fraction string) string {
	fps := ParseFrameRate(fraction)
	if fps == 0 {
		return ""
	}
	if fps == math.Floor(fps) {
		return fmt.Sprintf("%.0f FPS", fps)
	}
	return fmt.Sprintf("%.2f FPS", fps)
}

func FormatSampleRate(sampleRateStr string) string {
	if sampleRateStr == "" {
		return ""
	}
	sampleRate, err := strconv.ParseFloat(sampleRateStr, 64)
	if err != nil {
		return sampleRateStr
	}
	return fmt.Sprintf("%.0f Hz", sampleRate)
}

func ParseSize(sizeStr string) int64 {
	size, err := strconv.ParseInt(sizeStr, 10, 64)
	if err != nil {
		return 0
	}
	return size
}

func ParseDuration(durationStr string) float64 {
	if durationStr == "" || durationStr == "N/A" {
		return 0
	}
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil || duration < 0 {
		return 0
	}
	return duration
}

func FormatSize(bytes int64) string {
	if bytes < oneKilobyte {
		return fmt.Sprintf("%d B", bytes)
	}
	if bytes < oneMegabyte {
		return fmt.Sprintf("%.1f KB", float64(bytes)/oneKilobyte)
	}
	if bytes < oneGigabyte {
		return fmt.Sprintf("%.1f MB", float64(bytes)/oneMegabyte)
	}
	return fmt.Sprintf("%.1f GB", float64(bytes)/oneGigabyte)
}
