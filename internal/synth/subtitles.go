package synth

import (
	"strconv"
	"strings"

	"github.com/bnema/cheval/internal/domain"
)

type SubtitleMode string

const (
	SubtitleBurn    SubtitleMode = "burn"
	SubtitleEmbed   SubtitleMode = "embed"
	SubtitleExtract SubtitleMode = "extract"
)

var SubtitleFormats = []string{"srt", "ass", "vtt"}

const (
	MinSubtitleFontSize     = 8
	MaxSubtitleFontSize     = 120
	DefaultSubtitleFontSize = 24
	MaxSubtitleTrack        = 99

	assWhite = "&H00FFFFFF&"
)

type SubtitleOptions struct {
	Input    string       `json:"input,omitempty"`
	Mode     SubtitleMode `json:"mode,omitempty"`
	Subtitle string       `json:"subtitle,omitempty"`

	// burn
	FontSize int    `json:"font_size,omitempty"`
	Color    string `json:"color,omitempty"` // RRGGBB, with or without '#'
	Outline  bool   `json:"outline,omitempty"`
	Top      bool   `json:"top,omitempty"`

	// embed
	Language     string `json:"language,omitempty"`
	Default      bool   `json:"default,omitempty"`
	ExistingSubs int    `json:"existing_subs,omitempty"` // subtitle streams already in Input

	// extract
	Track  int    `json:"track,omitempty"`
	Format string `json:"format,omitempty"`

	Duration float64 `json:"duration,omitempty"`
}

// ASSColor converts an RRGGBB hex color to the &HAABBGGRR& form used by
// subtitle styles. Invalid input falls back to opaque white.
func ASSColor(hex string) string {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return assWhite
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return assWhite
	}
	hex = strings.ToUpper(hex)
	return "&H00" + hex[4:6] + hex[2:4] + hex[0:2] + "&"
}

// SubtitleStyle renders the force_style override for burned subtitles.
func SubtitleStyle(fontSize int, color string, outline, top bool) string {
	parts := []string{"FontSize=" + strconv.Itoa(fontSize), "PrimaryColour=" + ASSColor(color)}
	if outline {
		parts = append(parts, "OutlineColour=&H00000000&", "Outline=2", "Shadow=1")
	} else {
		parts = append(parts, "Outline=0", "Shadow=0")
	}
	if top {
		parts = append(parts, "Alignment=8", "MarginV=20")
	} else {
		parts = append(parts, "Alignment=2", "MarginV=20")
	}
	return strings.Join(parts, ",")
}

// escapeFilterPath makes a path safe inside a filter argument.
func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	return strings.ReplaceAll(p, ":", `\:`)
}

func Subtitles(o SubtitleOptions) (domain.Job, error) {
	if err := requireInput(o.Input); err != nil {
		return domain.Job{}, err
	}

	switch o.Mode {
	case SubtitleBurn:
		return burnSubtitles(o)
	case SubtitleEmbed:
		return embedSubtitles(o)
	case SubtitleExtract:
		return extractSubtitles(o)
	}
	return domain.Job{}, checkChoice("mode", string(o.Mode), []string{string(SubtitleBurn), string(SubtitleEmbed), string(SubtitleExtract)})
}

func burnSubtitles(o SubtitleOptions) (domain.Job, error) {
	if err := requireFile("subtitle", o.Subtitle, "subtitle file"); err != nil {
		return domain.Job{}, err
	}
	size := o.FontSize
	if size == 0 {
		size = DefaultSubtitleFontSize
	}
	if err := checkRange("font_size", size, MinSubtitleFontSize, MaxSubtitleFontSize); err != nil {
		return domain.Job{}, err
	}

	vf := "subtitles=" + escapeFilterPath(o.Subtitle) + ":force_style='" + SubtitleStyle(size, o.Color, o.Outline, o.Top) + "'"
	out := derivePath(o.Input, "_burned", fileExt(o.Input))
	args := []string{"-y", "-i", o.Input, "-vf", vf, "-c:a", "copy"}
	return domain.NewTranscoderJob(withProgress(args, out), o.Duration, out), nil
}

func embedSubtitles(o SubtitleOptions) (domain.Job, error) {
	if err := requireFile("subtitle", o.Subtitle, "subtitle file"); err != nil {
		return domain.Job{}, err
	}
	codec := "srt"
	if domain.MP4Family(o.Input) {
		codec = "mov_text"
	}
	disposition := "0"
	if o.Default {
		disposition = "default"
	}
	// The new track lands after the subtitle streams the input already has.
	track := strconv.Itoa(max(0, o.ExistingSubs))

	out := derivePath(o.Input, "_subs", strings.ToLower(fileExt(o.Input)))
	args := []string{
		"-y", "-i", o.Input, "-i", o.Subtitle,
		"-map", "0", "-map", "1",
		"-c", "copy", "-c:s", codec,
		"-metadata:s:s:" + track, "language=" + orDefault(o.Language, "und"),
		"-disposition:s:" + track, disposition,
	}
	return domain.NewTranscoderJob(withProgress(args, out), o.Duration, out), nil
}

func extractSubtitles(o SubtitleOptions) (domain.Job, error) {
	format := orDefault(strings.ToLower(o.Format), "srt")
	if err := checkChoice("format", format, SubtitleFormats); err != nil {
		return domain.Job{}, err
	}
	if err := checkRange("track", o.Track, 0, MaxSubtitleTrack); err != nil {
		return domain.Job{}, err
	}

	idx := strconv.Itoa(o.Track)
	out := derivePath(o.Input, "_sub"+idx, "."+format)
	args := []string{"-y", "-i", o.Input, "-map", "0:s:" + idx}
	return domain.NewTranscoderJob(withProgress(args, out), o.Duration, out), nil
}
