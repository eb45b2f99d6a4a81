package synth

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bnema/cheval/internal/domain"
)

type Rotation string

const (
	RotateNone Rotation = "none"
	RotateCW   Rotation = "cw"
	RotateCCW  Rotation = "ccw"
	Rotate180  Rotation = "180"
)

var rotationFilters = map[Rotation]string{
	RotateNone: "",
	RotateCW:   "transpose=1",
	RotateCCW:  "transpose=2",
	Rotate180:  "transpose=1,transpose=1",
}

var CropRatios = []string{"16:9", "4:3", "1:1", "9:16"}

const (
	// cropdetect samples this many seconds starting at cropProbeOffset,
	// or at zero for clips no longer than cropProbeMinDuration.
	cropProbeWindow      = "10"
	cropProbeOffset      = "30"
	cropProbeMinDuration = 40
)

var (
	cropLine = regexp.MustCompile(`crop=(\d+:\d+:\d+:\d+)`)
	bareCrop = regexp.MustCompile(`^\d+:\d+:\d+:\d+$`)
)

// Crop is a manual rectangle. A zero Width or Height disables it.
type Crop struct {
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
	X      int `json:"x,omitempty"`
	Y      int `json:"y,omitempty"`
	// Center recomputes X and Y from the source dimensions.
	Center bool `json:"center,omitempty"`
}

type TransformOptions struct {
	Input    string   `json:"input,omitempty"`
	Rotation Rotation `json:"rotation,omitempty"`
	HFlip    bool     `json:"hflip,omitempty"`
	VFlip    bool     `json:"vflip,omitempty"`

	// DetectedCrop is a cropdetect rectangle ("W:H:X:Y" or "crop=W:H:X:Y").
	// When set it wins over Ratio and Crop.
	DetectedCrop string `json:"detected_crop,omitempty"`
	Ratio        string `json:"ratio,omitempty"`
	Crop         Crop   `json:"crop,omitempty"`

	// Source dimensions, used by Crop.Center.
	VideoWidth  int     `json:"video_width,omitempty"`
	VideoHeight int     `json:"video_height,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
}

// RatioCrop returns a resolution-independent centered crop for "W:H".
func RatioCrop(ratio string) (string, bool) {
	parts := strings.Split(ratio, ":")
	if len(parts) != 2 {
		return "", false
	}
	rw, err1 := strconv.Atoi(parts[0])
	rh, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || rw <= 0 || rh <= 0 {
		return "", false
	}
	w, h := strconv.Itoa(rw), strconv.Itoa(rh)
	return "crop='min(iw,ih*" + w + "/" + h + ")':'min(ih,iw*" + h + "/" + w + ")':'(iw-ow)/2':'(ih-oh)/2'", true
}

// Centered returns a copy of c positioned in the middle of a srcW x srcH frame.
func (c Crop) Centered(srcW, srcH int) Crop {
	c.X = max(0, (srcW-c.Width)/2)
	c.Y = max(0, (srcH-c.Height)/2)
	return c
}

func (c Crop) filter() string {
	return "crop=" + strconv.Itoa(c.Width) + ":" + strconv.Itoa(c.Height) + ":" + strconv.Itoa(c.X) + ":" + strconv.Itoa(c.Y)
}

// TransformFilter assembles rotation, flips and crop in that order.
func TransformFilter(o TransformOptions) (string, error) {
	var filters []string

	rotation := o.Rotation
	if rotation == "" {
		rotation = RotateNone
	}
	rf, ok := rotationFilters[rotation]
	if !ok {
		return "", checkChoice("rotation", string(rotation), []string{string(RotateNone), string(RotateCW), string(RotateCCW), string(Rotate180)})
	}
	if rf != "" {
		filters = append(filters, rf)
	}
	if o.HFlip {
		filters = append(filters, "hflip")
	}
	if o.VFlip {
		filters = append(filters, "vflip")
	}

	switch {
	case o.DetectedCrop != "":
		rect, ok := ParseCrop(o.DetectedCrop)
		if !ok {
			return "", domain.NewValidationError("detected_crop", "invalid crop rectangle %q", o.DetectedCrop)
		}
		filters = append(filters, "crop="+rect)
	case o.Ratio != "":
		expr, ok := RatioCrop(o.Ratio)
		if !ok {
			return "", checkChoice("ratio", o.Ratio, CropRatios)
		}
		filters = append(filters, expr)
	case o.Crop.Width > 0 && o.Crop.Height > 0:
		c := o.Crop
		if c.Center {
			c = c.Centered(o.VideoWidth, o.VideoHeight)
		}
		filters = append(filters, c.filter())
	}

	return strings.Join(filters, ","), nil
}

func Transform(o TransformOptions) (domain.Job, error) {
	if err := requireInput(o.Input); err != nil {
		return domain.Job{}, err
	}
	vf, err := TransformFilter(o)
	if err != nil {
		return domain.Job{}, err
	}

	out := derivePath(o.Input, "_transformed", fileExt(o.Input))
	args := []string{"-y", "-i", o.Input}
	if vf != "" {
		args = append(args, "-vf", vf)
	}
	args = append(args, "-c:a", "copy")
	return domain.NewTranscoderJob(withProgress(args, out), o.Duration, out), nil
}

// CropDetect builds the detection-only pass that precedes an auto-cropped
// Transform. Its output is discarded; only the log lines matter.
func CropDetect(input string, duration float64) (domain.Job, error) {
	if err := requireInput(input); err != nil {
		return domain.Job{}, err
	}
	offset := "0"
	if duration > cropProbeMinDuration {
		offset = cropProbeOffset
	}
	args := []string{
		"-ss", offset, "-i", input,
		"-t", cropProbeWindow, "-vf", "cropdetect=24:16:0",
		"-f", "null", "-",
	}
	return domain.NewTranscoderJob(args, 0, ""), nil
}

// ParseCrop extracts the last W:H:X:Y rectangle from a line of cropdetect
// output, or validates a bare rectangle.
func ParseCrop(line string) (string, bool) {
	if m := cropLine.FindAllStringSubmatch(line, -1); len(m) > 0 {
		return m[len(m)-1][1], true
	}
	if rect := strings.TrimSpace(line); bareCrop.MatchString(rect) {
		return rect, true
	}
	return "", false
}
