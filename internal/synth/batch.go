package synth

import (
	"strconv"
	"strings"

	"github.com/bnema/cheval/internal/domain"
)

type BatchOperation string

const (
	BatchConvert        BatchOperation = "convert"
	BatchCompress       BatchOperation = "compress"
	BatchExtractAudio   BatchOperation = "extract-audio"
	BatchResize         BatchOperation = "resize"
	BatchStripMetadata  BatchOperation = "strip-metadata"
	BatchNormalizeAudio BatchOperation = "normalize-audio"
	BatchThumbnail      BatchOperation = "thumbnail"
)

var BatchOperations = []string{
	string(BatchConvert), string(BatchCompress), string(BatchExtractAudio),
	string(BatchResize), string(BatchStripMetadata), string(BatchNormalizeAudio),
	string(BatchThumbnail),
}

var (
	BatchConvertFormats = []string{"mp4", "mkv", "webm"}
	BatchVideoCodecs    = []string{"libx264", "libx265", "libsvtav1"}
)

const (
	DefaultBatchSuffix = "_processed"
	MinBatchLUFS       = -70.0
	MaxBatchLUFS       = -5.0
	DefaultBatchLUFS   = -23.0
)

// BatchTemplate is one operation applied to every file of a batch.
// Zero values select the defaults.
type BatchTemplate struct {
	Operation BatchOperation `json:"operation"`
	Suffix    string         `json:"suffix,omitempty"`
	// OutputDir replaces each input's own directory when set.
	OutputDir string `json:"output_dir,omitempty"`

	Format    string  `json:"format,omitempty"`
	Codec     string  `json:"codec,omitempty"`
	CRF       int     `json:"crf,omitempty"`
	Bitrate   int     `json:"bitrate,omitempty"`
	Scale     string  `json:"scale,omitempty"`
	LUFS      float64 `json:"lufs,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
}

// Validate checks the template once, before any file is processed.
func (t BatchTemplate) Validate() error {
	_, err := t.Build("template-check.mp4", 0)
	return err
}

// Build synthesizes the job for one input of the batch.
func (t BatchTemplate) Build(input string, duration float64) (domain.Job, error) {
	if err := requireInput(input); err != nil {
		return domain.Job{}, err
	}
	if err := checkChoice("operation", string(t.Operation), BatchOperations); err != nil {
		return domain.Job{}, err
	}
	crf := t.CRF
	if crf == 0 {
		crf = DefaultCRF
	}
	if err := checkRange("crf", crf, 0, 51); err != nil {
		return domain.Job{}, err
	}

	ext := fileExt(input)
	var (
		out  string
		args []string
	)
	switch t.Operation {
	case BatchConvert:
		format := orDefault(t.Format, "mp4")
		if err := checkChoice("format", format, BatchConvertFormats); err != nil {
			return domain.Job{}, err
		}
		codec := orDefault(t.Codec, BatchVideoCodecs[0])
		if err := checkChoice("codec", codec, BatchVideoCodecs); err != nil {
			return domain.Job{}, err
		}
		out = t.output(input, "."+format)
		args = []string{"-y", "-i", input, "-c:v", codec, "-crf", strconv.Itoa(crf), "-c:a", "aac"}

	case BatchCompress:
		codec := orDefault(t.Codec, BatchVideoCodecs[0])
		if err := checkChoice("codec", codec, BatchVideoCodecs); err != nil {
			return domain.Job{}, err
		}
		out = t.output(input, ext)
		args = []string{
			"-y", "-i", input,
			"-c:v", codec, "-crf", strconv.Itoa(crf), "-preset", "medium",
			"-c:a", "aac", "-b:a", "128k",
		}

	case BatchExtractAudio:
		format := orDefault(strings.ToLower(t.Format), "mp3")
		if err := checkChoice("format", format, AudioFormats); err != nil {
			return domain.Job{}, err
		}
		bitrate := t.Bitrate
		if bitrate == 0 {
			bitrate = DefaultAudioBitrate
		}
		if err := checkRange("bitrate", bitrate, MinAudioBitrate, MaxAudioBitrate); err != nil {
			return domain.Job{}, err
		}
		out = t.output(input, "."+format)
		args = extractAudioArgs(input, format, bitrate)

	case BatchResize:
		scale := ResolveScale(t.Scale)
		if !strings.Contains(scale, ":") {
			return domain.Job{}, domain.NewValidationError("scale", "expected W:H or a preset, got %q", scale)
		}
		out = t.output(input, ext)
		args = []string{"-y", "-i", input, "-vf", "scale=" + scale, "-c:a", "copy"}

	case BatchStripMetadata:
		out = t.output(input, ext)
		args = []string{"-y", "-i", input, "-map_metadata", "-1", "-c", "copy"}

	case BatchNormalizeAudio:
		lufs := t.LUFS
		if lufs == 0 {
			lufs = DefaultBatchLUFS
		}
		if err := checkRangeFloat("lufs", lufs, MinBatchLUFS, MaxBatchLUFS); err != nil {
			return domain.Job{}, err
		}
		out = t.output(input, ext)
		args = []string{"-y", "-i", input, "-af", "loudnorm=I=" + formatFloat(lufs) + ":TP=-1.5:LRA=11", "-c:v", "copy"}

	case BatchThumbnail:
		format := orDefault(strings.ToLower(t.Format), "png")
		if err := checkChoice("format", format, ThumbnailFormats); err != nil {
			return domain.Job{}, err
		}
		out = t.output(input, "."+format)
		return domain.NewTranscoderJob(thumbnailArgs(input, t.Timestamp, out), 0, out), nil
	}
	return domain.NewTranscoderJob(withProgress(args, out), duration, out), nil
}

func (t BatchTemplate) output(input, ext string) string {
	suffix := t.Suffix
	if suffix == "" {
		suffix = DefaultBatchSuffix
	}
	return deriveIn(t.OutputDir, input, suffix, ext)
}
