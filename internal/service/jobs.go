package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bnema/cheval/internal/domain"
	"github.com/bnema/cheval/internal/infrastructure/logger"
	"github.com/bnema/cheval/internal/port"
	"github.com/bnema/cheval/internal/synth"
)

type Operation string

const (
	OpConvert       Operation = "convert"
	OpCompress      Operation = "compress"
	OpExtractAudio  Operation = "extract-audio"
	OpStripMetadata Operation = "strip-metadata"
	OpThumbnail     Operation = "thumbnail"
	OpResize        Operation = "resize"
	OpTrim          Operation = "trim"
	OpSpeed         Operation = "speed"
	OpGIF           Operation = "gif"
	OpAudio         Operation = "audio"
	OpTransform     Operation = "transform"
	OpSubtitles     Operation = "subtitles"
	OpWatermark     Operation = "watermark"
	OpMerge         Operation = "merge"
	OpDownload      Operation = "download"
)

var Operations = []string{
	string(OpConvert), string(OpCompress), string(OpExtractAudio), string(OpStripMetadata),
	string(OpThumbnail), string(OpResize), string(OpTrim), string(OpSpeed), string(OpGIF),
	string(OpAudio), string(OpTransform), string(OpSubtitles), string(OpWatermark),
	string(OpMerge), string(OpDownload),
}

const probeTimeout = 15 * time.Second

// TransformRequest adds the two-pass auto-crop to a transform.
type TransformRequest struct {
	synth.TransformOptions
	AutoCrop bool `json:"auto_crop,omitempty"`
}

// Plan is a synthesized operation ready for the runner.
type Plan struct {
	Operation Operation
	Job       domain.Job
	// Next, when set, runs after Job succeeds and produces the final job.
	Next func() (domain.Job, error)
	// Watch sees every event before the caller's observer.
	Watch port.Observer
	// Cleanup runs once the plan has finished or failed to start.
	Cleanup func()
}

// Jobs turns operation requests into runner jobs, filling probe-derived
// hints the request leaves out.
type Jobs struct {
	runner      port.ProcessRunner
	prober      port.Prober
	history     *History
	events      *EventBus
	downloadDir string

	mu      sync.Mutex
	current string
}

// NewJobs wires the job service. history and events may be nil; events,
// when set, receive every run's observer calls under the run ID.
func NewJobs(runner port.ProcessRunner, prober port.Prober, history *History, events *EventBus, downloadDir string) *Jobs {
	if history == nil {
		history = NewHistory(nil)
	}
	return &Jobs{runner: runner, prober: prober, history: history, events: events, downloadDir: downloadDir}
}

// Start plans op from its JSON options and hands it to the runner. It
// returns the run ID that observer events and history use.
func (s *Jobs) Start(ctx context.Context, op Operation, options json.RawMessage, obs port.Observer) (string, error) {
	plan, err := s.Plan(ctx, op, options)
	if err != nil {
		return "", err
	}
	return s.Run(ctx, plan, obs)
}

// Run starts an already planned operation.
func (s *Jobs) Run(ctx context.Context, plan *Plan, obs port.Observer) (string, error) {
	id, err := NewID()
	if err != nil {
		return "", err
	}

	// Bookkeeping runs first so observers see a settled service in Done.
	chain := port.MultiObserver{port.ObserverFuncs{OnDone: func(domain.Result) {
		s.clearCurrent(id)
		if plan.Cleanup != nil {
			plan.Cleanup()
		}
	}}}
	if plan.Watch != nil {
		chain = append(chain, plan.Watch)
	}
	if obs != nil {
		chain = append(chain, obs)
	}
	if s.events != nil {
		chain = append(chain, s.events.Observer(id))
	}

	start := func(o port.Observer) error {
		if plan.Next != nil {
			return s.runner.StartThen(plan.Job, plan.Next, o)
		}
		return s.runner.Start(plan.Job, o)
	}
	// Set before starting: Done may fire before Start returns.
	s.mu.Lock()
	prev := s.current
	s.current = id
	s.mu.Unlock()

	meta := RunMeta{ID: id, Operation: string(plan.Operation)}
	if _, err := s.history.Start(ctx, meta, plan.Job, start, chain); err != nil {
		// prev may have finished while this start was in flight.
		active := s.runner.Status().IsActive()
		s.mu.Lock()
		if s.current == id {
			s.current = ""
			if active {
				s.current = prev
			}
		}
		s.mu.Unlock()
		if plan.Cleanup != nil {
			plan.Cleanup()
		}
		return "", err
	}
	logger.Info.Printf("run %s: %s started", id, plan.Operation)
	return id, nil
}

func (s *Jobs) clearCurrent(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == id {
		s.current = ""
	}
}

// Current returns the ID of the run this service started that is still
// active, if any.
func (s *Jobs) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Cancel stops the active run. A non-empty id must name it.
func (s *Jobs) Cancel(id string) error {
	if !s.runner.Status().IsActive() {
		return domain.ErrNotRunning
	}
	if id != "" && id != s.Current() {
		return domain.ErrNotFound
	}
	s.runner.Cancel()
	return nil
}

func (s *Jobs) Status() domain.RunStatus {
	return s.runner.Status()
}

// Plan decodes options for op and synthesizes its job. Options start from
// the operation's defaults; fields present in the JSON override them.
func (s *Jobs) Plan(ctx context.Context, op Operation, options json.RawMessage) (*Plan, error) {
	switch op {
	case OpConvert:
		o := synth.ConvertOptions{CRF: synth.DefaultCRF}
		return s.simple(ctx, op, options, &o, &o.Input, &o.Duration, func() (domain.Job, error) { return synth.Convert(o) })
	case OpCompress:
		o := synth.CompressOptions{CRF: synth.DefaultCRF}
		return s.simple(ctx, op, options, &o, &o.Input, &o.Duration, func() (domain.Job, error) { return synth.Compress(o) })
	case OpExtractAudio:
		var o synth.ExtractAudioOptions
		return s.simple(ctx, op, options, &o, &o.Input, &o.Duration, func() (domain.Job, error) { return synth.ExtractAudio(o) })
	case OpStripMetadata:
		var o synth.StripMetadataOptions
		return s.simple(ctx, op, options, &o, &o.Input, &o.Duration, func() (domain.Job, error) { return synth.StripMetadata(o) })
	case OpThumbnail:
		var o synth.ThumbnailOptions
		return s.simple(ctx, op, options, &o, &o.Input, nil, func() (domain.Job, error) { return synth.Thumbnail(o) })
	case OpResize:
		var o synth.ResizeOptions
		return s.simple(ctx, op, options, &o, &o.Input, &o.Duration, func() (domain.Job, error) { return synth.Resize(o) })
	case OpTrim:
		var o synth.TrimOptions
		return s.simple(ctx, op, options, &o, &o.Input, &o.Duration, func() (domain.Job, error) { return synth.Trim(o) })
	case OpGIF:
		var o synth.GIFOptions
		return s.simple(ctx, op, options, &o, &o.Input, &o.Duration, func() (domain.Job, error) { return synth.GIF(o) })
	case OpSpeed:
		return s.planSpeed(ctx, options)
	case OpAudio:
		o := synth.AudioOptions{OriginalVolume: 100, OverlayVolume: 100, LUFS: synth.DefaultLUFS}
		return s.simple(ctx, op, options, &o, &o.Input, &o.Duration, func() (domain.Job, error) { return synth.Audio(o) })
	case OpTransform:
		return s.planTransform(ctx, options)
	case OpSubtitles:
		return s.planSubtitles(ctx, options)
	case OpWatermark:
		return s.planWatermark(ctx, options)
	case OpMerge:
		return s.planMerge(ctx, options)
	case OpDownload:
		return s.planDownload(options)
	}
	return nil, domain.NewValidationError("operation", "unknown operation %q", op)
}

// simple decodes into dst, fills the duration hint when the request has
// none and builds the job.
func (s *Jobs) simple(ctx context.Context, op Operation, options json.RawMessage, dst any, input *string, duration *float64, build func() (domain.Job, error)) (*Plan, error) {
	if err := decodeOptions(options, dst); err != nil {
		return nil, err
	}
	if duration != nil && *duration == 0 {
		*duration = s.probe(ctx, *input).DurationSeconds()
	}
	job, err := build()
	if err != nil {
		return nil, err
	}
	return &Plan{Operation: op, Job: job}, nil
}

func (s *Jobs) planSpeed(ctx context.Context, options json.RawMessage) (*Plan, error) {
	o := synth.SpeedOptions{Speed: 1}
	if err := decodeOptions(options, &o); err != nil {
		return nil, err
	}
	probe := s.probe(ctx, o.Input)
	if o.Duration == 0 {
		o.Duration = probe.DurationSeconds()
	}
	if o.SampleRate == 0 {
		o.SampleRate = probe.SampleRate()
	}
	job, err := synth.Speed(o)
	if err != nil {
		return nil, err
	}
	return &Plan{Operation: OpSpeed, Job: job}, nil
}

func (s *Jobs) planTransform(ctx context.Context, options json.RawMessage) (*Plan, error) {
	var req TransformRequest
	if err := decodeOptions(options, &req); err != nil {
		return nil, err
	}
	o := req.TransformOptions
	probe := s.probe(ctx, o.Input)
	if o.Duration == 0 {
		o.Duration = probe.DurationSeconds()
	}
	if o.VideoWidth == 0 && o.VideoHeight == 0 && probe != nil {
		o.VideoWidth, o.VideoHeight = probe.Dimensions()
	}

	if !req.AutoCrop || o.DetectedCrop != "" {
		job, err := synth.Transform(o)
		if err != nil {
			return nil, err
		}
		return &Plan{Operation: OpTransform, Job: job}, nil
	}

	// Validate the rest of the options before spending a detection pass.
	check := o
	check.DetectedCrop = "0:0:0:0"
	if _, err := synth.Transform(check); err != nil {
		return nil, err
	}
	detect, err := synth.CropDetect(o.Input, o.Duration)
	if err != nil {
		return nil, err
	}
	crop := &cropCollector{}
	return &Plan{
		Operation: OpTransform,
		Job:       detect,
		Watch:     crop,
		Next: func() (domain.Job, error) {
			rect := crop.Rect()
			if rect == "" {
				return domain.Job{}, domain.NewValidationError("detected_crop", "no crop values detected")
			}
			o.DetectedCrop = rect
			return synth.Transform(o)
		},
	}, nil
}

func (s *Jobs) planSubtitles(ctx context.Context, options json.RawMessage) (*Plan, error) {
	var o synth.SubtitleOptions
	if err := decodeOptions(options, &o); err != nil {
		return nil, err
	}
	probe := s.probe(ctx, o.Input)
	if o.Duration == 0 {
		o.Duration = probe.DurationSeconds()
	}
	if o.Mode == synth.SubtitleEmbed && o.ExistingSubs == 0 && probe != nil {
		o.ExistingSubs = len(probe.SubtitleStreams())
	}
	job, err := synth.Subtitles(o)
	if err != nil {
		return nil, err
	}
	return &Plan{Operation: OpSubtitles, Job: job}, nil
}

func (s *Jobs) planWatermark(ctx context.Context, options json.RawMessage) (*Plan, error) {
	var o synth.WatermarkOptions
	if err := decodeOptions(options, &o); err != nil {
		return nil, err
	}
	probe := s.probe(ctx, o.Input)
	if o.Duration == 0 {
		o.Duration = probe.DurationSeconds()
	}
	if o.VideoWidth == 0 && probe != nil {
		o.VideoWidth, _ = probe.Dimensions()
	}
	job, err := synth.Watermark(o)
	if err != nil {
		return nil, err
	}
	return &Plan{Operation: OpWatermark, Job: job}, nil
}

// planMerge probes every input for the duration hint and, in concat mode,
// writes the list file the job reads. The list is removed when the run ends.
func (s *Jobs) planMerge(ctx context.Context, options json.RawMessage) (*Plan, error) {
	o := synth.MergeOptions{CRF: synth.DefaultCRF}
	if err := decodeOptions(options, &o); err != nil {
		return nil, err
	}
	if len(o.Durations) == 0 {
		o.Durations = make([]float64, len(o.Inputs))
		for i, in := range o.Inputs {
			o.Durations[i] = s.probe(ctx, in).DurationSeconds()
		}
	}

	var cleanup func()
	if o.Mode == "" || o.Mode == synth.MergeConcat {
		path, err := writeConcatList(o.Inputs)
		if err != nil {
			return nil, err
		}
		o.ListPath = path
		cleanup = func() {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				logger.Warn.Printf("merge: failed to remove list %s: %v", path, err)
			}
		}
	}

	job, err := synth.Merge(o)
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		return nil, err
	}
	return &Plan{Operation: OpMerge, Job: job, Cleanup: once(cleanup)}, nil
}

func (s *Jobs) planDownload(options json.RawMessage) (*Plan, error) {
	o := synth.DownloadOptions{OutputDir: s.downloadDir}
	if err := decodeOptions(options, &o); err != nil {
		return nil, err
	}
	if o.OutputDir != "" {
		if err := os.MkdirAll(o.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("create download dir: %w", err)
		}
	}
	job, err := synth.Download(o)
	if err != nil {
		return nil, err
	}
	return &Plan{Operation: OpDownload, Job: job}, nil
}

// probe returns nil when the input cannot be probed; callers treat that as
// unknown duration and dimensions.
func (s *Jobs) probe(ctx context.Context, input string) *domain.ProbeResult {
	if s.prober == nil || input == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	res, err := s.prober.Probe(ctx, input)
	if err != nil {
		logger.Warn.Printf("probe %s: %v", input, err)
		return nil
	}
	return res
}

func decodeOptions(options json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(options)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(options))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.NewValidationError("options", "%v", err)
	}
	return nil
}

func writeConcatList(inputs []string) (string, error) {
	f, err := os.CreateTemp("", "cheval-concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create concat list: %w", err)
	}
	if _, err := f.WriteString(synth.ConcatList(inputs)); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write concat list: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close concat list: %w", err)
	}
	return f.Name(), nil
}

func once(f func()) func() {
	if f == nil {
		return nil
	}
	var o sync.Once
	return func() { o.Do(f) }
}

// cropCollector keeps the last rectangle cropdetect prints. The runner
// calls Log and the chained Next from the same goroutine.
type cropCollector struct {
	rect string
}

func (c *cropCollector) Progress(float64) {}

func (c *cropCollector) Log(line string) {
	if !strings.Contains(line, "crop=") {
		return
	}
	if rect, ok := synth.ParseCrop(line); ok {
		c.rect = rect
	}
}

func (c *cropCollector) Done(domain.Result) {}

func (c *cropCollector) Rect() string {
	return c.rect
}
