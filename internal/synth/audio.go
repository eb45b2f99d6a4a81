package synth

import (
	"math"
	"strconv"
	"strings"

	"github.com/bnema/cheval/internal/domain"
)

type AudioMode string

const (
	AudioReplace   AudioMode = "replace"
	AudioAdd       AudioMode = "add"
	AudioMix       AudioMode = "mix"
	AudioRemove    AudioMode = "remove"
	AudioNormalize AudioMode = "normalize"
	AudioVolume    AudioMode = "volume"
)

var AudioModes = []string{
	string(AudioReplace), string(AudioAdd), string(AudioMix),
	string(AudioRemove), string(AudioNormalize), string(AudioVolume),
}

const (
	// SilenceDb stands in for -inf when the volume percentage is zero.
	SilenceDb = -60.0

	MaxVolumePercent = 500
	MaxGainDb        = 30.0
	DefaultLUFS      = -14
)

type AudioOptions struct {
	Input string    `json:"input,omitempty"`
	Mode  AudioMode `json:"mode,omitempty"`
	// Audio is the second input used by replace, add and mix.
	Audio string `json:"audio,omitempty"`

	Shortest bool   `json:"shortest,omitempty"` // replace
	Language string `json:"language,omitempty"` // add

	// Slider values 0-200; 100 keeps the level unchanged.
	OriginalVolume int `json:"original_volume,omitempty"`
	OverlayVolume  int `json:"overlay_volume,omitempty"`

	LUFS   int     `json:"lufs,omitempty"`    // normalize, -50..0
	GainDb float64 `json:"gain_db,omitempty"` // volume, -60..30
	// VolumePercent, when set, replaces GainDb; 100 keeps the level.
	VolumePercent *int `json:"volume_percent,omitempty"`

	Duration float64 `json:"duration,omitempty"`
}

// Audio builds one of the six audio-track operations.
func Audio(o AudioOptions) (domain.Job, error) {
	if err := requireInput(o.Input); err != nil {
		return domain.Job{}, err
	}
	if err := checkChoice("mode", string(o.Mode), AudioModes); err != nil {
		return domain.Job{}, err
	}

	out := derivePath(o.Input, "_audio", fileExt(o.Input))
	var args []string

	switch o.Mode {
	case AudioReplace:
		if err := requireFile("audio", o.Audio, "audio file"); err != nil {
			return domain.Job{}, err
		}
		args = []string{"-y", "-i", o.Input, "-i", o.Audio, "-c:v", "copy", "-map", "0:v", "-map", "1:a"}
		if o.Shortest {
			args = append(args, "-shortest")
		}
	case AudioAdd:
		if err := requireFile("audio", o.Audio, "audio file"); err != nil {
			return domain.Job{}, err
		}
		args = []string{"-y", "-i", o.Input, "-i", o.Audio, "-map", "0", "-map", "1:a", "-c", "copy"}
		if lang := strings.TrimSpace(o.Language); lang != "" {
			args = append(args, "-metadata:s:a:1", "language="+lang)
		}
	case AudioMix:
		if err := requireFile("audio", o.Audio, "audio file"); err != nil {
			return domain.Job{}, err
		}
		if err := checkRange("original_volume", o.OriginalVolume, 0, 200); err != nil {
			return domain.Job{}, err
		}
		if err := checkRange("overlay_volume", o.OverlayVolume, 0, 200); err != nil {
			return domain.Job{}, err
		}
		args = []string{
			"-y", "-i", o.Input, "-i", o.Audio,
			"-filter_complex", MixFilter(o.OriginalVolume, o.OverlayVolume),
			"-map", "0:v", "-map", "[aout]", "-c:v", "copy",
		}
	case AudioRemove:
		args = []string{"-y", "-i", o.Input, "-c:v", "copy", "-an"}
	case AudioNormalize:
		if err := checkRange("lufs", o.LUFS, -50, 0); err != nil {
			return domain.Job{}, err
		}
		args = []string{"-y", "-i", o.Input, "-c:v", "copy", "-af", LoudnormFilter(o.LUFS)}
	case AudioVolume:
		gain, err := volumeGain(o)
		if err != nil {
			return domain.Job{}, err
		}
		args = []string{"-y", "-i", o.Input, "-c:v", "copy", "-af", "volume=" + formatFloat(roundTo(gain, 2)) + "dB"}
	}

	return domain.NewTranscoderJob(withProgress(args, out), o.Duration, out), nil
}

// volumeGain resolves the volume mode's gain from either a percentage or
// a decibel value.
func volumeGain(o AudioOptions) (float64, error) {
	link := NewVolumeLink()
	if o.VolumePercent != nil {
		if err := checkRange("volume_percent", *o.VolumePercent, 0, MaxVolumePercent); err != nil {
			return 0, err
		}
		link.SetPercent(*o.VolumePercent)
		return link.Decibels(), nil
	}
	if err := checkRangeFloat("gain_db", o.GainDb, SilenceDb, MaxGainDb); err != nil {
		return 0, err
	}
	link.SetDecibels(o.GainDb)
	return link.Decibels(), nil
}

// MixFilter scales each input by its own linear factor and mixes them for
// the length of the first input.
func MixFilter(originalPct, overlayPct int) string {
	orig := formatFloat(float64(originalPct) / 100)
	overlay := formatFloat(float64(overlayPct) / 100)
	return "[0:a]volume=" + orig + "[a0];" +
		"[1:a]volume=" + overlay + "[a1];" +
		"[a0][a1]amix=inputs=2:duration=first:dropout_transition=0[aout]"
}

// LoudnormFilter is single-pass EBU R128 normalization with a -1.5 dBTP
// ceiling and a loudness range of 11.
func LoudnormFilter(lufs int) string {
	return "loudnorm=I=" + strconv.Itoa(lufs) + ":TP=-1.5:LRA=11"
}

// PercentToDb converts a volume percentage to a gain in decibels.
func PercentToDb(pct int) float64 {
	if pct <= 0 {
		return SilenceDb
	}
	return 20 * math.Log10(float64(pct)/100)
}

// DbToPercent is the inverse of PercentToDb, clamped to [0, MaxVolumePercent].
func DbToPercent(db float64) int {
	if db <= SilenceDb {
		return 0
	}
	pct := int(math.Round(math.Pow(10, db/20) * 100))
	return max(0, min(MaxVolumePercent, pct))
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// VolumeLink keeps a percentage and a decibel value in step. Setting one
// recomputes the other; the syncing flag stops an OnChange handler that
// writes back into the link from bouncing the update.
type VolumeLink struct {
	percent  int
	db       float64
	syncing  bool
	OnChange func(percent int, db float64)
}

func NewVolumeLink() *VolumeLink {
	return &VolumeLink{percent: 100}
}

func (v *VolumeLink) Percent() int {
	return v.percent
}

func (v *VolumeLink) Decibels() float64 {
	return v.db
}

func (v *VolumeLink) SetPercent(pct int) {
	if v.syncing {
		return
	}
	v.syncing = true
	defer func() { v.syncing = false }()

	v.percent = max(0, min(MaxVolumePercent, pct))
	v.db = PercentToDb(v.percent)
	v.notify()
}

func (v *VolumeLink) SetDecibels(db float64) {
	if v.syncing {
		return
	}
	v.syncing = true
	defer func() { v.syncing = false }()

	v.db = db
	v.percent = DbToPercent(db)
	v.notify()
}

func (v *VolumeLink) notify() {
	if v.OnChange != nil {
		v.OnChange(v.percent, v.db)
	}
}
