package synth

import (
	"math"
	"strconv"
	"strings"

	"github.com/bnema/cheval/internal/domain"
)

type TrimOptions struct {
	Input string `json:"input,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
	// Copy cuts without re-encoding: fast, but cut points snap to keyframes.
	Copy     bool    `json:"copy,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

func Trim(o TrimOptions) (domain.Job, error) {
	if err := requireInput(o.Input); err != nil {
		return domain.Job{}, err
	}
	start := orDefault(o.Start, "00:00:00")
	if _, ok := ParseTimestamp(start); !ok {
		return domain.Job{}, domain.NewValidationError("start", "invalid timestamp %q", start)
	}
	end := strings.TrimSpace(o.End)
	if end != "" {
		if _, ok := ParseTimestamp(end); !ok {
			return domain.Job{}, domain.NewValidationError("end", "invalid timestamp %q", end)
		}
	}

	out := derivePath(o.Input, "_trimmed", fileExt(o.Input))
	args := []string{"-y", "-ss", start, "-i", o.Input}
	if end != "" {
		args = append(args, "-to", end)
	}
	if o.Copy {
		args = append(args, "-c", "copy")
	}
	return domain.NewTranscoderJob(withProgress(args, out), segmentDuration(o.Duration, start, end), out), nil
}

type SpeedAudio string

const (
	SpeedAudioTempo SpeedAudio = "tempo"
	SpeedAudioPitch SpeedAudio = "pitch"
	SpeedAudioDrop  SpeedAudio = "drop"
)

const (
	MinSpeed = 0.1
	MaxSpeed = 100.0
	MaxFPS   = 240

	minTempo = 0.5
	maxTempo = 100.0
)

type SpeedOptions struct {
	Input string     `json:"input,omitempty"`
	Speed float64    `json:"speed,omitempty"`
	Audio SpeedAudio `json:"audio,omitempty"`
	// Smooth interpolates motion; FPS > 0 also fixes its output rate.
	Smooth     bool    `json:"smooth,omitempty"`
	FPS        int     `json:"fps,omitempty"`
	SampleRate int     `json:"sample_rate,omitempty"`
	Duration   float64 `json:"duration,omitempty"`
}

// AtempoChain splits a speed factor into stages the tempo filter accepts.
// The product of the stages equals speed.
func AtempoChain(speed float64) []float64 {
	var chain []float64
	remaining := speed
	for remaining < minTempo {
		chain = append(chain, minTempo)
		remaining /= minTempo
	}
	for remaining > maxTempo {
		chain = append(chain, maxTempo)
		remaining /= maxTempo
	}
	return append(chain, remaining)
}

// AtempoFilter renders AtempoChain as a filter string.
func AtempoFilter(speed float64) string {
	chain := AtempoChain(speed)
	stages := make([]string, len(chain))
	last := len(chain) - 1
	for i, f := range chain {
		if i == last {
			stages[i] = "atempo=" + strconv.FormatFloat(f, 'g', 6, 64)
		} else {
			stages[i] = "atempo=" + formatFloat(f)
		}
	}
	return strings.Join(stages, ",")
}

// PitchShiftFilter changes pitch with the speed by relabelling the sample
// rate, then resamples back so the container keeps its original rate.
func PitchShiftFilter(sampleRate int, speed float64) string {
	if sampleRate <= 0 {
		sampleRate = domain.DefaultSampleRate
	}
	shifted := int(math.Round(float64(sampleRate) * speed))
	return "asetrate=" + strconv.Itoa(shifted) + ",aresample=" + strconv.Itoa(sampleRate)
}

func speedVideoFilter(speed float64, smooth bool, fps int) string {
	filters := []string{"setpts=PTS/" + formatFloat(speed)}
	switch {
	case smooth && fps > 0:
		filters = append(filters, "minterpolate=fps="+strconv.Itoa(fps)+":mi_mode=mci")
	case smooth:
		filters = append(filters, "minterpolate=mi_mode=mci")
	case fps > 0:
		filters = append(filters, "fps="+strconv.Itoa(fps))
	}
	return strings.Join(filters, ",")
}

func Speed(o SpeedOptions) (domain.Job, error) {
	if err := requireInput(o.Input); err != nil {
		return domain.Job{}, err
	}
	if err := checkRangeFloat("speed", o.Speed, MinSpeed, MaxSpeed); err != nil {
		return domain.Job{}, err
	}
	if err := checkRange("fps", o.FPS, 0, MaxFPS); err != nil {
		return domain.Job{}, err
	}
	audio := o.Audio
	if audio == "" {
		audio = SpeedAudioTempo
	}
	if err := checkChoice("audio", string(audio), []string{string(SpeedAudioTempo), string(SpeedAudioPitch), string(SpeedAudioDrop)}); err != nil {
		return domain.Job{}, err
	}

	out := derivePath(o.Input, "_"+formatFloat(o.Speed)+"x", fileExt(o.Input))
	args := []string{"-y", "-i", o.Input, "-vf", speedVideoFilter(o.Speed, o.Smooth, o.FPS)}
	switch audio {
	case SpeedAudioDrop:
		args = append(args, "-an")
	case SpeedAudioPitch:
		args = append(args, "-af", PitchShiftFilter(o.SampleRate, o.Speed))
	default:
		args = append(args, "-af", AtempoFilter(o.Speed))
	}

	// The runner compares elapsed output time, so the hint is the output length.
	return domain.NewTranscoderJob(withProgress(args, out), o.Duration/o.Speed, out), nil
}

const (
	MinGIFFPS       = 5
	MaxGIFFPS       = 30
	DefaultGIFFPS   = 15
	MinGIFWidth     = 120
	MaxGIFWidth     = 1920
	DefaultGIFWidth = 480
)

type GIFOptions struct {
	Input    string  `json:"input,omitempty"`
	Start    string  `json:"start,omitempty"`
	End      string  `json:"end,omitempty"`
	FPS      int     `json:"fps,omitempty"`
	Width    int     `json:"width,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// GIFFilter generates the palette from one branch of the frame stream and
// applies it to the other, so no palette file touches disk.
func GIFFilter(fps, width int) string {
	return "[0:v] fps=" + strconv.Itoa(fps) + ",scale=" + strconv.Itoa(width) + ":-1:flags=lanczos,split [a][b]; " +
		"[a] palettegen [pal]; [b][pal] paletteuse"
}

func GIF(o GIFOptions) (domain.Job, error) {
	if err := requireInput(o.Input); err != nil {
		return domain.Job{}, err
	}
	fps, width := o.FPS, o.Width
	if fps == 0 {
		fps = DefaultGIFFPS
	}
	if width == 0 {
		width = DefaultGIFWidth
	}
	if err := checkRange("fps", fps, MinGIFFPS, MaxGIFFPS); err != nil {
		return domain.Job{}, err
	}
	if err := checkRange("width", width, MinGIFWidth, MaxGIFWidth); err != nil {
		return domain.Job{}, err
	}
	start := orDefault(o.Start, "00:00:00")
	end := strings.TrimSpace(o.End)

	out := derivePath(o.Input, "", ".gif")
	args := []string{"-y", "-ss", start}
	if end != "" {
		args = append(args, "-to", end)
	}
	args = append(args, "-i", o.Input, "-filter_complex", GIFFilter(fps, width))
	return domain.NewTranscoderJob(withProgress(args, out), segmentDuration(o.Duration, start, end), out), nil
}
