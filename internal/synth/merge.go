package synth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bnema/cheval/internal/domain"
)

type MergeMode string

const (
	MergeConcat    MergeMode = "concat"
	MergeReencode  MergeMode = "reencode"
	MergeCrossfade MergeMode = "crossfade"
)

var (
	MergeModes   = []string{string(MergeConcat), string(MergeReencode), string(MergeCrossfade)}
	MergeFormats = []string{"mp4", "mkv", "webm"}
)

const (
	MinFade     = 0.1
	MaxFade     = 10.0
	DefaultFade = 1.0
)

type MergeOptions struct {
	Inputs []string  `json:"inputs,omitempty"`
	Mode   MergeMode `json:"mode,omitempty"`
	Format string    `json:"format,omitempty"`
	Codec  string    `json:"codec,omitempty"`
	CRF    int       `json:"crf,omitempty"`
	// Fade is the crossfade length in seconds.
	Fade float64 `json:"fade,omitempty"`
	// Durations holds the probed length of each input, 0 when unknown.
	Durations []float64 `json:"durations,omitempty"`
	// ListPath is where the caller writes ConcatList for concat mode.
	ListPath string `json:"list_path,omitempty"`
}

// ConcatList renders the concat demuxer list for paths.
func ConcatList(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(p, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String()
}

// CrossfadeOffsets returns the xfade offset of each adjacent pair: where
// the accumulated stream ends minus the fades consumed so far.
func CrossfadeOffsets(durations []float64, fade float64) []float64 {
	if len(durations) < 2 {
		return nil
	}
	offsets := make([]float64, 0, len(durations)-1)
	var sum float64
	for i := 0; i < len(durations)-1; i++ {
		sum += durations[i]
		offsets = append(offsets, max(0, sum-float64(i+1)*fade))
	}
	return offsets
}

// CrossfadeFilter chains xfade and acrossfade across every input, ending in
// [outv] and [outa].
func CrossfadeFilter(durations []float64, fade float64) string {
	n := len(durations)
	if n < 2 {
		return ""
	}
	f := formatFloat(fade)
	offsets := CrossfadeOffsets(durations, fade)

	vparts := make([]string, 0, n-1)
	aparts := make([]string, 0, n-1)
	prevV, prevA := "[0:v]", "[0:a]"
	for i := 1; i < n; i++ {
		outV, outA := fmt.Sprintf("[xv%d]", i-1), fmt.Sprintf("[xa%d]", i-1)
		if i == n-1 {
			outV, outA = "[outv]", "[outa]"
		}
		vparts = append(vparts, fmt.Sprintf("%s[%d:v]xfade=transition=fade:duration=%s:offset=%s%s",
			prevV, i, f, formatFloat(offsets[i-1]), outV))
		aparts = append(aparts, fmt.Sprintf("%s[%d:a]acrossfade=d=%s%s", prevA, i, f, outA))
		prevV, prevA = outV, outA
	}
	return strings.Join(append(vparts, aparts...), ";")
}

func concatFilter(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "[%d:v:0][%d:a:0]", i, i)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=1:a=1[outv][outa]", n)
	return b.String()
}

// MergeDuration estimates the merged length; crossfades overlap by one fade
// per join.
func MergeDuration(durations []float64, mode MergeMode, fade float64) float64 {
	var sum float64
	for _, d := range durations {
		sum += d
	}
	if mode == MergeCrossfade && len(durations) > 1 {
		sum -= float64(len(durations)-1) * fade
	}
	return max(0, sum)
}

func Merge(o MergeOptions) (domain.Job, error) {
	if len(o.Inputs) < 2 {
		return domain.Job{}, domain.NewValidationError("inputs", "at least two files are needed, got %d", len(o.Inputs))
	}
	for i, in := range o.Inputs {
		if err := requireFile("inputs", in, "file #"+strconv.Itoa(i+1)); err != nil {
			return domain.Job{}, err
		}
	}
	mode := MergeMode(orDefault(string(o.Mode), string(MergeConcat)))
	if err := checkChoice("mode", string(mode), MergeModes); err != nil {
		return domain.Job{}, err
	}
	format := orDefault(o.Format, "mp4")
	if err := checkChoice("format", format, MergeFormats); err != nil {
		return domain.Job{}, err
	}

	durations := make([]float64, len(o.Inputs))
	copy(durations, o.Durations)
	fade := o.Fade
	if mode == MergeCrossfade {
		if fade == 0 {
			fade = DefaultFade
		}
		if err := checkRangeFloat("fade", fade, MinFade, MaxFade); err != nil {
			return domain.Job{}, err
		}
	}

	out := derivePath(o.Inputs[0], "_merged", "."+format)
	hint := MergeDuration(durations, mode, fade)

	if mode == MergeConcat {
		if err := requireFile("list_path", o.ListPath, "concat list"); err != nil {
			return domain.Job{}, err
		}
		args := []string{"-y", "-f", "concat", "-safe", "0", "-i", o.ListPath, "-c", "copy"}
		return domain.NewTranscoderJob(withProgress(args, out), hint, out), nil
	}

	codec := orDefault(o.Codec, "libx264")
	if err := checkRange("crf", o.CRF, 0, 51); err != nil {
		return domain.Job{}, err
	}
	args := []string{"-y"}
	for _, in := range o.Inputs {
		args = append(args, "-i", in)
	}
	filter := concatFilter(len(o.Inputs))
	if mode == MergeCrossfade {
		filter = CrossfadeFilter(durations, fade)
	}
	args = append(args,
		"-filter_complex", filter,
		"-map", "[outv]", "-map", "[outa]",
		"-c:v", codec, "-crf", strconv.Itoa(o.CRF),
		"-c:a", "aac", "-b:a", "128k",
	)
	return domain.NewTranscoderJob(withProgress(args, out), hint, out), nil
}
