package synth

import (
	"strconv"
	"strings"

	"github.com/bnema/cheval/internal/domain"
)

var ConvertFormats = []string{"mp4", "mkv", "webm", "avi"}

// Codecs accepted by each output container, preferred codec first.
var (
	convertVideoCodecs = map[string][]string{
		"mp4":  {"libx264", "libx265", "copy"},
		"mkv":  {"libx264", "libx265", "libsvtav1", "copy"},
		"webm": {"libvpx-vp9", "libsvtav1"},
		"avi":  {"libx264", "copy"},
	}
	convertAudioCodecs = map[string][]string{
		"mp4":  {"aac", "copy"},
		"mkv":  {"aac", "libopus", "flac", "copy"},
		"webm": {"libopus", "libvorbis"},
		"avi":  {"mp3", "copy"},
	}
)

var CompressCodecs = []string{"libx264", "libx265", "libsvtav1"}

// CompressPresets maps quality names to CRF values.
var CompressPresets = map[string]int{
	"high":     18,
	"balanced": 23,
	"small":    28,
}

const (
	DefaultCRF = 23

	// fallbackTargetKbps is used for target-size compression when the input
	// duration is unknown.
	fallbackTargetKbps = 2000
)

var AudioFormats = []string{"mp3", "flac", "wav", "aac", "opus"}

var audioFormatCodecs = map[string]string{
	"mp3":  "libmp3lame",
	"flac": "flac",
	"wav":  "pcm_s16le",
	"aac":  "aac",
	"opus": "libopus",
}

const (
	MinAudioBitrate     = 64
	MaxAudioBitrate     = 320
	DefaultAudioBitrate = 192
)

var ThumbnailFormats = []string{"png", "jpg"}

// ResizePresets are width-bound scale expressions; -2 keeps the height even.
var ResizePresets = map[string]string{
	"4k":    "3840:-2",
	"1080p": "1920:-2",
	"720p":  "1280:-2",
	"480p":  "854:-2",
}

const DefaultScale = "1920:-2"

// VideoCodecsFor returns the video codecs valid in a container.
func VideoCodecsFor(format string) []string {
	return append([]string(nil), convertVideoCodecs[format]...)
}

func AudioCodecsFor(format string) []string {
	return append([]string(nil), convertAudioCodecs[format]...)
}

type ConvertOptions struct {
	Input      string  `json:"input,omitempty"`
	Format     string  `json:"format,omitempty"`
	VideoCodec string  `json:"video_codec,omitempty"`
	AudioCodec string  `json:"audio_codec,omitempty"`
	CRF        int     `json:"crf,omitempty"`
	Duration   float64 `json:"duration,omitempty"`
}

func Convert(o ConvertOptions) (domain.Job, error) {
	if err := requireInput(o.Input); err != nil {
		return domain.Job{}, err
	}
	format := orDefault(o.Format, "mp4")
	if err := checkChoice("format", format, ConvertFormats); err != nil {
		return domain.Job{}, err
	}
	vcodec := orDefault(o.VideoCodec, convertVideoCodecs[format][0])
	if err := checkChoice("video_codec", vcodec, convertVideoCodecs[format]); err != nil {
		return domain.Job{}, err
	}
	acodec := orDefault(o.AudioCodec, convertAudioCodecs[format][0])
	if err := checkChoice("audio_codec", acodec, convertAudioCodecs[format]); err != nil {
		return domain.Job{}, err
	}
	if err := checkRange("crf", o.CRF, 0, 51); err != nil {
		return domain.Job{}, err
	}

	out := derivePath(o.Input, "_converted", "."+format)
	args := []string{"-y", "-i", o.Input}
	if vcodec == "copy" {
		args = append(args, "-c:v", "copy")
	} else {
		args = append(args, "-c:v", vcodec, "-crf", strconv.Itoa(o.CRF))
	}
	args = append(args, "-c:a", acodec)
	return domain.NewTranscoderJob(withProgress(args, out), o.Duration, out), nil
}

type CompressOptions struct {
	Input string `json:"input,omitempty"`
	Codec string `json:"codec,omitempty"`
	CRF   int    `json:"crf,omitempty"`
	// TargetSizeMB switches to average-bitrate mode when positive.
	TargetSizeMB float64 `json:"target_size_mb,omitempty"`
	Duration     float64 `json:"duration,omitempty"`
}

// TargetBitrate returns the video bitrate in kbps that fits sizeMB into
// duration seconds.
func TargetBitrate(sizeMB, duration float64) int {
	if duration <= 0 {
		return fallbackTargetKbps
	}
	return int(sizeMB * 8192 / duration)
}

func Compress(o CompressOptions) (domain.Job, error) {
	if err := requireInput(o.Input); err != nil {
		return domain.Job{}, err
	}
	codec := orDefault(o.Codec, CompressCodecs[0])
	if err := checkChoice("codec", codec, CompressCodecs); err != nil {
		return domain.Job{}, err
	}

	out := derivePath(o.Input, "_compressed", ".mp4")
	args := []string{"-y", "-i", o.Input}
	if o.TargetSizeMB > 0 {
		args = append(args, "-c:v", codec, "-b:v", kbps(TargetBitrate(o.TargetSizeMB, o.Duration)))
	} else {
		if err := checkRange("crf", o.CRF, 0, 51); err != nil {
			return domain.Job{}, err
		}
		args = append(args, "-c:v", codec, "-crf", strconv.Itoa(o.CRF), "-preset", "medium")
	}
	args = append(args, "-c:a", "aac", "-b:a", "128k")
	return domain.NewTranscoderJob(withProgress(args, out), o.Duration, out), nil
}

type ExtractAudioOptions struct {
	Input    string  `json:"input,omitempty"`
	Format   string  `json:"format,omitempty"`
	Bitrate  int     `json:"bitrate,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

func lossless(format string) bool {
	return format == "flac" || format == "wav"
}

func ExtractAudio(o ExtractAudioOptions) (domain.Job, error) {
	if err := requireInput(o.Input); err != nil {
		return domain.Job{}, err
	}
	format := orDefault(strings.ToLower(o.Format), "mp3")
	if err := checkChoice("format", format, AudioFormats); err != nil {
		return domain.Job{}, err
	}
	bitrate := o.Bitrate
	if bitrate == 0 {
		bitrate = DefaultAudioBitrate
	}
	if err := checkRange("bitrate", bitrate, MinAudioBitrate, MaxAudioBitrate); err != nil {
		return domain.Job{}, err
	}

	out := derivePath(o.Input, "", "."+format)
	return domain.NewTranscoderJob(withProgress(extractAudioArgs(o.Input, format, bitrate), out), o.Duration, out), nil
}

func extractAudioArgs(input, format string, bitrate int) []string {
	args := []string{"-y", "-i", input, "-vn", "-c:a", audioFormatCodecs[format]}
	if !lossless(format) {
		args = append(args, "-b:a", kbps(bitrate))
	}
	return args
}

type StripMetadataOptions struct {
	Input    string  `json:"input,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

func StripMetadata(o StripMetadataOptions) (domain.Job, error) {
	if err := requireInput(o.Input); err != nil {
		return domain.Job{}, err
	}
	out := derivePath(o.Input, "_clean", fileExt(o.Input))
	args := []string{"-y", "-i", o.Input, "-map_metadata", "-1", "-c", "copy"}
	return domain.NewTranscoderJob(withProgress(args, out), o.Duration, out), nil
}

type ThumbnailOptions struct {
	Input     string `json:"input,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Format    string `json:"format,omitempty"`
}

// Thumbnail grabs a single frame. The job reports no percentage.
func Thumbnail(o ThumbnailOptions) (domain.Job, error) {
	if err := requireInput(o.Input); err != nil {
		return domain.Job{}, err
	}
	format := orDefault(strings.ToLower(o.Format), "png")
	if err := checkChoice("format", format, ThumbnailFormats); err != nil {
		return domain.Job{}, err
	}
	out := derivePath(o.Input, "_thumb", "."+format)
	return domain.NewTranscoderJob(thumbnailArgs(o.Input, o.Timestamp, out), 0, out), nil
}

func thumbnailArgs(input, ts, out string) []string {
	return []string{"-y", "-ss", orDefault(ts, "00:00:00"), "-i", input, "-frames:v", "1", out}
}

type ResizeOptions struct {
	Input string `json:"input,omitempty"`
	// Scale is a preset name from ResizePresets or a raw W:H expression.
	Scale    string  `json:"scale,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// ResolveScale maps a preset name to its expression; anything else is used
// as a custom scale.
func ResolveScale(scale string) string {
	scale = strings.TrimSpace(scale)
	if scale == "" {
		return DefaultScale
	}
	if expr, ok := ResizePresets[strings.ToLower(scale)]; ok {
		return expr
	}
	return scale
}

func Resize(o ResizeOptions) (domain.Job, error) {
	if err := requireInput(o.Input); err != nil {
		return domain.Job{}, err
	}
	scale := ResolveScale(o.Scale)
	if !strings.Contains(scale, ":") {
		return domain.Job{}, domain.NewValidationError("scale", "expected W:H or a preset, got %q", scale)
	}
	out := derivePath(o.Input, "_resized", fileExt(o.Input))
	args := []string{"-y", "-i", o.Input, "-vf", "scale=" + scale, "-c:a", "copy"}
	return domain.NewTranscoderJob(withProgress(args, out), o.Duration, out), nil
}
