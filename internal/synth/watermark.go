package synth

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/bnema/cheval/internal/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Anchor string

const (
	AnchorTopLeft     Anchor = "top-left"
	AnchorTopRight    Anchor = "top-right"
	AnchorCenter      Anchor = "center"
	AnchorBottomLeft  Anchor = "bottom-left"
	AnchorBottomRight Anchor = "bottom-right"
)

var Anchors = []string{
	string(AnchorTopLeft), string(AnchorTopRight), string(AnchorCenter),
	string(AnchorBottomLeft), string(AnchorBottomRight),
}

const (
	MinWatermarkScale     = 10
	MaxWatermarkScale     = 100
	DefaultWatermarkScale = 25
	MinWatermarkFont      = 8
	MaxWatermarkFont      = 200
	DefaultWatermarkFont  = 48
	MaxWatermarkPadding   = 500
	DefaultPadding        = 20
)

type WatermarkOptions struct {
	Input  string `json:"input,omitempty"`
	Anchor Anchor `json:"anchor,omitempty"`
	// Padding is in pixels from the anchored edges.
	Padding int `json:"padding,omitempty"`

	// Image mode when Image is set.
	Image   string `json:"image,omitempty"`
	Scale   int    `json:"scale,omitempty"`   // percent of the main video width
	Opacity *int   `json:"opacity,omitempty"` // percent, unset is opaque

	// Text mode otherwise.
	Text       string `json:"text,omitempty"`
	FontSize   int    `json:"font_size,omitempty"`
	FontColor  string `json:"font_color,omitempty"`
	Box        bool   `json:"box,omitempty"`
	BoxColor   string `json:"box_color,omitempty"`
	VideoWidth int    `json:"video_width,omitempty"`

	Duration float64 `json:"duration,omitempty"`
}

// overlayPosition places the overlay input relative to the main video.
func overlayPosition(a Anchor, pad int) string {
	p := strconv.Itoa(pad)
	switch a {
	case AnchorTopLeft:
		return p + ":" + p
	case AnchorTopRight:
		return "main_w-overlay_w-" + p + ":" + p
	case AnchorCenter:
		return "(main_w-overlay_w)/2:(main_h-overlay_h)/2"
	case AnchorBottomLeft:
		return p + ":main_h-overlay_h-" + p
	default:
		return "main_w-overlay_w-" + p + ":main_h-overlay_h-" + p
	}
}

// textPosition uses text extents so placement is resolution-independent.
func textPosition(a Anchor, pad int) (x, y string) {
	p := strconv.Itoa(pad)
	switch a {
	case AnchorTopLeft:
		return p, p
	case AnchorTopRight:
		return "w-tw-" + p, p
	case AnchorCenter:
		return "(w-tw)/2", "(h-th)/2"
	case AnchorBottomLeft:
		return p, "h-th-" + p
	default:
		return "w-tw-" + p, "h-th-" + p
	}
}

var drawtextCleaner = transform.Chain(runes.Remove(runes.In(unicode.Cc)), norm.NFC)

// EscapeDrawtext normalizes text and escapes the characters drawtext treats
// specially: backslash, quote, colon and percent.
func EscapeDrawtext(text string) string {
	cleaned, _, err := transform.String(drawtextCleaner, text)
	if err != nil {
		cleaned = text
	}
	r := strings.NewReplacer(
		`\`, `\\\\`,
		"'", "’",
		":", `\:`,
		"%", "%%",
	)
	return r.Replace(cleaned)
}

func Watermark(o WatermarkOptions) (domain.Job, error) {
	if err := requireInput(o.Input); err != nil {
		return domain.Job{}, err
	}
	anchor := o.Anchor
	if anchor == "" {
		anchor = AnchorBottomRight
	}
	if err := checkChoice("anchor", string(anchor), Anchors); err != nil {
		return domain.Job{}, err
	}
	if err := checkRange("padding", o.Padding, 0, MaxWatermarkPadding); err != nil {
		return domain.Job{}, err
	}

	out := derivePath(o.Input, "_watermarked", fileExt(o.Input))
	var args []string
	if strings.TrimSpace(o.Image) != "" {
		fc, err := imageWatermarkFilter(o, anchor)
		if err != nil {
			return domain.Job{}, err
		}
		args = []string{"-y", "-i", o.Input, "-i", o.Image, "-filter_complex", fc, "-c:a", "copy"}
	} else {
		vf, err := textWatermarkFilter(o, anchor)
		if err != nil {
			return domain.Job{}, err
		}
		args = []string{"-y", "-i", o.Input, "-vf", vf, "-c:a", "copy"}
	}
	return domain.NewTranscoderJob(withProgress(args, out), o.Duration, out), nil
}

func imageWatermarkFilter(o WatermarkOptions, anchor Anchor) (string, error) {
	scale := o.Scale
	if scale == 0 {
		scale = DefaultWatermarkScale
	}
	if err := checkRange("scale", scale, MinWatermarkScale, MaxWatermarkScale); err != nil {
		return "", err
	}
	opacity := 100
	if o.Opacity != nil {
		opacity = *o.Opacity
	}
	if err := checkRange("opacity", opacity, 0, 100); err != nil {
		return "", err
	}

	pct := float64(scale) / 100
	width := "iw*" + formatFloat(pct)
	if o.VideoWidth > 0 {
		width = strconv.Itoa(int(float64(o.VideoWidth) * pct))
	}
	chain := "[1:v]scale=" + width + ":-1"
	if opacity < 100 {
		chain += ",format=rgba,colorchannelmixer=aa=" + formatFloat(float64(opacity)/100)
	}
	return chain + "[wm];[0:v][wm]overlay=" + overlayPosition(anchor, o.Padding), nil
}

func textWatermarkFilter(o WatermarkOptions, anchor Anchor) (string, error) {
	text := strings.TrimSpace(o.Text)
	if text == "" {
		return "", domain.NewValidationError("text", "no watermark image or text given")
	}
	size := o.FontSize
	if size == 0 {
		size = DefaultWatermarkFont
	}
	if err := checkRange("font_size", size, MinWatermarkFont, MaxWatermarkFont); err != nil {
		return "", err
	}

	x, y := textPosition(anchor, o.Padding)
	vf := "drawtext=text='" + EscapeDrawtext(text) + "'" +
		":fontsize=" + strconv.Itoa(size) +
		":fontcolor=" + orDefault(o.FontColor, "#ffffff") +
		":x=" + x + ":y=" + y
	if o.Box {
		vf += ":box=1:boxcolor=" + orDefault(o.BoxColor, "#000000@0.5") + ":boxborderw=" + strconv.Itoa(o.Padding/2)
	}
	return vf, nil
}
