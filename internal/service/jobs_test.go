package service

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/cheval/internal/domain"
	"github.com/bnema/cheval/internal/port"
	"github.com/bnema/cheval/internal/port/mocks"
)

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func probeOf(duration string, w, h int) *domain.ProbeResult {
	return &domain.ProbeResult{
		Format:  domain.ProbeFormat{Duration: duration},
		Streams: []domain.ProbeStream{{CodecType: "video", Width: w, Height: h}, {CodecType: "subtitle"}},
	}
}

func TestJobsPlan_FillsDurationFromProbe(t *testing.T) {
	prober := mocks.NewProberMock(t)
	prober.EXPECT().Probe(mock.Anything, "/v/in.mp4").Return(probeOf("42.5", 1920, 1080), nil)

	s := NewJobs(&fakeRunner{}, prober, nil, nil, "")
	plan, err := s.Plan(context.Background(), OpCompress, json.RawMessage(`{"input":"/v/in.mp4"}`))
	require.NoError(t, err)

	assert.Equal(t, 42.5, plan.Job.ExpectedDuration)
	assert.Equal(t, "23", argAfter(plan.Job.Args, "-crf"))
	assert.Equal(t, "/v/in_compressed.mp4", plan.Job.Output)
}

func TestJobsPlan_RequestDurationWins(t *testing.T) {
	s := NewJobs(&fakeRunner{}, mocks.NewProberMock(t), nil, nil, "")
	plan, err := s.Plan(context.Background(), OpConvert, json.RawMessage(`{"input":"/v/in.mkv","duration":12,"crf":30}`))
	require.NoError(t, err)
	assert.Equal(t, 12.0, plan.Job.ExpectedDuration)
	assert.Equal(t, "30", argAfter(plan.Job.Args, "-crf"))
}

func TestJobsPlan_Errors(t *testing.T) {
	s := NewJobs(&fakeRunner{}, nil, nil, nil, "")
	tests := []struct {
		name    string
		op      Operation
		options string
	}{
		{"unknown operation", "explode", `{}`},
		{"unknown field", OpConvert, `{"input":"a.mp4","bogus":1}`},
		{"malformed json", OpConvert, `{"input":`},
		{"missing input", OpResize, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Plan(context.Background(), tt.op, json.RawMessage(tt.options))
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestJobsPlan_ProbeHints(t *testing.T) {
	prober := mocks.NewProberMock(t)
	prober.EXPECT().Probe(mock.Anything, "/v/in.mp4").Return(probeOf("10", 1280, 720), nil)
	s := NewJobs(&fakeRunner{}, prober, nil, nil, "")

	plan, err := s.Plan(context.Background(), OpSubtitles, json.RawMessage(`{"input":"/v/in.mp4","mode":"embed","subtitle":"/v/in.srt"}`))
	require.NoError(t, err)
	assert.Contains(t, plan.Job.Args, "-metadata:s:s:1")

	plan, err = s.Plan(context.Background(), OpWatermark, json.RawMessage(`{"input":"/v/in.mp4","image":"/v/logo.png","scale":10}`))
	require.NoError(t, err)
	assert.Contains(t, argAfter(plan.Job.Args, "-filter_complex"), "scale=128:-1")
}

func TestJobsStart_AutoCrop(t *testing.T) {
	runner := &fakeRunner{
		lines: func(job domain.Job) []string {
			if argAfter(job.Args, "-f") == "null" {
				return []string{
					"[Parsed_cropdetect_0 @ 0x1] x1:0 x2:1279 crop=1280:688:0:16",
					"[Parsed_cropdetect_0 @ 0x1] x1:0 x2:1279 crop=1280:680:0:20",
				}
			}
			return nil
		},
	}
	prober := mocks.NewProberMock(t)
	prober.EXPECT().Probe(mock.Anything, "/v/in.mp4").Return(probeOf("120", 1280, 720), nil)

	s := NewJobs(runner, prober, nil, nil, "")
	obs := newCollector()
	id, err := s.Start(context.Background(), OpTransform, json.RawMessage(`{"input":"/v/in.mp4","auto_crop":true}`), obs)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case <-obs.done:
	case <-time.After(5 * time.Second):
		t.Fatal("transform did not finish")
	}

	jobs := runner.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "30", argAfter(jobs[0].Args, "-ss"))
	assert.Equal(t, "crop=1280:680:0:20", argAfter(jobs[1].Args, "-vf"))
	assert.True(t, obs.Result().Success)
}

func TestJobsStart_AutoCropWithoutDetection(t *testing.T) {
	s := NewJobs(&fakeRunner{}, nil, nil, nil, "")
	obs := newCollector()
	_, err := s.Start(context.Background(), OpTransform, json.RawMessage(`{"input":"/v/in.mp4","auto_crop":true}`), obs)
	require.NoError(t, err)
	<-obs.done

	res := obs.Result()
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "no crop values detected")
}

func TestJobsStart_MergeListRemovedAfterRun(t *testing.T) {
	runner := &fakeRunner{}
	s := NewJobs(runner, nil, nil, nil, "")
	obs := newCollector()

	_, err := s.Start(context.Background(), OpMerge, json.RawMessage(`{"inputs":["/v/a.mp4","/v/b.mp4"]}`), obs)
	require.NoError(t, err)
	<-obs.done

	jobs := runner.Jobs()
	require.Len(t, jobs, 1)
	list := jobInput(jobs[0])
	require.NotEmpty(t, list)
	_, statErr := os.Stat(list)
	assert.True(t, os.IsNotExist(statErr), "concat list should be removed")
}

func TestJobsStart_BusyCleansUp(t *testing.T) {
	runner := &fakeRunner{active: true}
	s := NewJobs(runner, nil, nil, nil, "")

	plan, err := s.Plan(context.Background(), OpMerge, json.RawMessage(`{"inputs":["/v/a.mp4","/v/b.mp4"]}`))
	require.NoError(t, err)
	list := jobInput(plan.Job)
	_, err = os.Stat(list)
	require.NoError(t, err)

	_, err = s.Run(context.Background(), plan, nil)
	assert.ErrorIs(t, err, domain.ErrBusy)
	_, err = os.Stat(list)
	assert.True(t, os.IsNotExist(err))
}

func TestJobsPlan_DownloadUsesDefaultDir(t *testing.T) {
	dir := t.TempDir()
	s := NewJobs(&fakeRunner{}, nil, nil, nil, dir)
	plan, err := s.Plan(context.Background(), OpDownload, json.RawMessage(`{"url":"https://example.com/v"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.ProgramDownloader, plan.Job.Program)
	assert.Contains(t, argAfter(plan.Job.Args, "-o"), dir)
}

func TestJobsCancel_Idle(t *testing.T) {
	s := NewJobs(&fakeRunner{}, nil, nil, nil, "")
	assert.ErrorIs(t, s.Cancel(""), domain.ErrNotRunning)
	assert.Equal(t, domain.RunStatusIdle, s.Status())
}

func TestJobsRun_PublishesEventsUnderRunID(t *testing.T) {
	bus := NewEventBus()
	s := NewJobs(&fakeRunner{}, nil, nil, bus, "")
	obs := newCollector()

	id, err := s.Start(context.Background(), OpStripMetadata, json.RawMessage(`{"input":"/v/a.mp4"}`), obs)
	require.NoError(t, err)
	<-obs.done

	require.Eventually(t, func() bool {
		_, ok := bus.Finished(id)
		return ok
	}, 5*time.Second, 10*time.Millisecond)
	assert.Empty(t, s.Current())
}

func TestJobsCancel_MatchesRunID(t *testing.T) {
	release := make(chan struct{})
	runner := &fakeRunner{
		result: func(domain.Job) domain.Result {
			<-release
			return domain.Result{Success: true}
		},
	}
	s := NewJobs(runner, nil, nil, nil, "")
	obs := newCollector()

	id, err := s.Start(context.Background(), OpStripMetadata, json.RawMessage(`{"input":"/v/a.mp4"}`), obs)
	require.NoError(t, err)
	assert.Equal(t, id, s.Current())

	assert.ErrorIs(t, s.Cancel("someone-else"), domain.ErrNotFound)
	assert.NoError(t, s.Cancel(id))

	close(release)
	<-obs.done
}

func TestJobsPlan_MergeDefaultsCRF(t *testing.T) {
	tests := []struct {
		name    string
		options string
		want    string
	}{
		{"reencode", `{"inputs":["/v/a.mp4","/v/b.mp4"],"durations":[10,5],"mode":"reencode"}`, "23"},
		{"crossfade", `{"inputs":["/v/a.mp4","/v/b.mp4"],"durations":[10,5],"mode":"crossfade"}`, "23"},
		{"explicit crf", `{"inputs":["/v/a.mp4","/v/b.mp4"],"durations":[10,5],"mode":"reencode","crf":30}`, "30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewJobs(&fakeRunner{}, nil, nil, nil, "")
			plan, err := s.Plan(context.Background(), OpMerge, json.RawMessage(tt.options))
			require.NoError(t, err)
			assert.Equal(t, tt.want, argAfter(plan.Job.Args, "-crf"))
		})
	}
}

func TestJobsPlan_AudioVolume(t *testing.T) {
	tests := []struct {
		name    string
		options string
		want    string
		wantErr bool
	}{
		{name: "gain in decibels", options: `{"input":"/v/a.mp4","mode":"volume","gain_db":-6}`, want: "volume=-6.0dB"},
		{name: "percent converted to decibels", options: `{"input":"/v/a.mp4","mode":"volume","volume_percent":200}`, want: "volume=6.02dB"},
		{name: "percent wins over gain", options: `{"input":"/v/a.mp4","mode":"volume","volume_percent":50,"gain_db":10}`, want: "volume=-6.02dB"},
		{name: "zero percent is silence", options: `{"input":"/v/a.mp4","mode":"volume","volume_percent":0}`, want: "volume=-60.0dB"},
		{name: "gain above range", options: `{"input":"/v/a.mp4","mode":"volume","gain_db":900}`, wantErr: true},
		{name: "gain below range", options: `{"input":"/v/a.mp4","mode":"volume","gain_db":-90}`, wantErr: true},
		{name: "percent above range", options: `{"input":"/v/a.mp4","mode":"volume","volume_percent":501}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewJobs(&fakeRunner{}, nil, nil, nil, "")
			plan, err := s.Plan(context.Background(), OpAudio, json.RawMessage(tt.options))
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, argAfter(plan.Job.Args, "-af"))
		})
	}
}

// rejectingRunner refuses every start while reporting the status of the
// embedded fake.
type rejectingRunner struct {
	*fakeRunner
}

func (r rejectingRunner) Start(domain.Job, port.Observer) error {
	return domain.ErrBusy
}

func (r rejectingRunner) StartThen(domain.Job, func() (domain.Job, error), port.Observer) error {
	return domain.ErrBusy
}

func TestJobsRun_RejectedStartDoesNotRestoreFinishedRun(t *testing.T) {
	tests := []struct {
		name         string
		runnerActive bool
		wantCurrent  string
	}{
		{name: "previous run finished", runnerActive: false, wantCurrent: ""},
		{name: "previous run still active", runnerActive: true, wantCurrent: "run-prev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewJobs(rejectingRunner{&fakeRunner{active: tt.runnerActive}}, nil, nil, nil, "")
			s.current = "run-prev"

			_, err := s.Start(context.Background(), OpStripMetadata, json.RawMessage(`{"input":"/v/a.mp4"}`), nil)
			require.ErrorIs(t, err, domain.ErrBusy)
			assert.Equal(t, tt.wantCurrent, s.Current())
		})
	}
}
