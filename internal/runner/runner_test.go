package runner

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/cheval/internal/domain"
	"github.com/bnema/cheval/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess stands in for ffmpeg and yt-dlp. The first job argument
// picks the behavior.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 3 {
		os.Exit(2)
	}
	switch args[2] {
	case "progress":
		fmt.Println("frame=1")
		fmt.Println("out_time_us=5000000")
		fmt.Fprintln(os.Stderr, "progress=end")
	case "download":
		fmt.Print("[download]  42.5% of 10.00MiB\r[download] 100% of 10.00MiB\n")
	case "crop":
		fmt.Fprintln(os.Stderr, "[Parsed_cropdetect_0 @ 0x1] crop=1280:680:0:20")
	case "fail":
		fmt.Fprintln(os.Stderr, "Invalid argument")
		os.Exit(3)
	case "sleep":
		fmt.Println("waiting")
		time.Sleep(30 * time.Second)
	}
	os.Exit(0)
}

func helperCommand(name string, args ...string) *exec.Cmd {
	cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
	cmd := exec.Command(os.Args[0], cs...)
	cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
	return cmd
}

func newTestRunner() *Runner {
	return New(nil, WithCommandFactory(helperCommand))
}

type recorder struct {
	mu       sync.Mutex
	logs     []string
	progress []float64
	results  []domain.Result
	done     chan domain.Result
}

func newRecorder() *recorder {
	return &recorder{done: make(chan domain.Result, 4)}
}

func (r *recorder) Progress(p float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, p)
}

func (r *recorder) Log(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, line)
}

func (r *recorder) Done(res domain.Result) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
	r.done <- res
}

func (r *recorder) wait(t *testing.T) domain.Result {
	t.Helper()
	select {
	case res := <-r.done:
		return res
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for Done")
		return domain.Result{}
	}
}

func (r *recorder) snapshot() ([]string, []float64, []domain.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.logs...), append([]float64(nil), r.progress...), append([]domain.Result(nil), r.results...)
}

func TestRunner_StartSuccess(t *testing.T) {
	r := newTestRunner()
	rec := newRecorder()
	job := domain.NewTranscoderJob([]string{"progress"}, 10, "out.mp4")

	require.NoError(t, r.Start(job, rec))
	res := rec.wait(t)

	assert.True(t, res.Success)
	assert.Equal(t, "Done", res.Message)
	assert.Equal(t, domain.RunStatusCompleted, r.Status())

	logs, progress, _ := rec.snapshot()
	require.NotEmpty(t, logs)
	assert.Equal(t, "$ ffmpeg progress", logs[0])
	assert.Contains(t, logs, "out_time_us=5000000")
	assert.Contains(t, logs, "progress=end", "stderr shares the stream")
	assert.Equal(t, []float64{50, 100}, progress)
}

func TestRunner_DownloaderProgress(t *testing.T) {
	r := newTestRunner()
	rec := newRecorder()

	require.NoError(t, r.Start(domain.NewDownloaderJob([]string{"download"}), rec))
	res := rec.wait(t)

	require.True(t, res.Success)
	logs, progress, _ := rec.snapshot()
	assert.Equal(t, "$ yt-dlp download", logs[0])
	assert.Equal(t, []float64{42.5, 100, 100}, progress)
}

func TestRunner_NonZeroExit(t *testing.T) {
	r := newTestRunner()
	rec := newRecorder()

	require.NoError(t, r.Start(domain.NewTranscoderJob([]string{"fail"}, 10, ""), rec))
	res := rec.wait(t)

	assert.False(t, res.Success)
	assert.False(t, res.Cancelled)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "Exited with code 3", res.Message)
	assert.Equal(t, domain.RunStatusFailed, r.Status())

	logs, progress, _ := rec.snapshot()
	assert.Contains(t, logs, "Invalid argument")
	assert.Empty(t, progress)
}

func TestRunner_SpawnFailure(t *testing.T) {
	r := New(map[domain.Program]string{domain.ProgramTranscoder: "/nonexistent/cheval-ffmpeg"})
	rec := newRecorder()

	require.NoError(t, r.Start(domain.NewTranscoderJob([]string{"-version"}, 0, ""), rec))
	res := rec.wait(t)

	assert.False(t, res.Success)
	assert.True(t, strings.HasPrefix(res.Message, "Failed to start /nonexistent/cheval-ffmpeg"), res.Message)
	assert.Equal(t, domain.RunStatusFailed, r.Status())
}

func TestRunner_BusyWhileRunning(t *testing.T) {
	spawned := 0
	var mu sync.Mutex
	r := New(nil, WithCommandFactory(func(name string, args ...string) *exec.Cmd {
		mu.Lock()
		spawned++
		mu.Unlock()
		return helperCommand(name, args...)
	}))
	rec := newRecorder()

	require.NoError(t, r.Start(domain.NewTranscoderJob([]string{"sleep"}, 0, ""), rec))
	err := r.Start(domain.NewTranscoderJob([]string{"progress"}, 10, ""), newRecorder())
	assert.ErrorIs(t, err, domain.ErrBusy)

	r.Cancel()
	rec.wait(t)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, spawned)
}

func TestRunner_Cancel(t *testing.T) {
	r := newTestRunner()
	rec := newRecorder()

	require.NoError(t, r.Start(domain.NewTranscoderJob([]string{"sleep"}, 0, ""), rec))
	r.Cancel()
	assert.Equal(t, domain.RunStatusCancelling, r.Status())
	r.Cancel()

	res := rec.wait(t)
	assert.False(t, res.Success)
	assert.True(t, res.Cancelled)
	assert.Equal(t, "Cancelled", res.Message)
	assert.Equal(t, domain.RunStatusFailed, r.Status())

	_, progress, results := rec.snapshot()
	assert.Empty(t, progress)
	assert.Len(t, results, 1)
}

func TestRunner_CancelWhenIdle(t *testing.T) {
	r := newTestRunner()
	r.Cancel()
	assert.Equal(t, domain.RunStatusIdle, r.Status())
}

func TestRunner_UnknownProgram(t *testing.T) {
	r := newTestRunner()
	err := r.Start(domain.Job{Program: "ffplay"}, newRecorder())
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.RunStatusIdle, r.Status())
}

func TestRunner_StartFromDone(t *testing.T) {
	r := newTestRunner()
	second := newRecorder()
	startErr := make(chan error, 1)

	first := port.ObserverFuncs{OnDone: func(domain.Result) {
		startErr <- r.Start(domain.NewTranscoderJob([]string{"progress"}, 10, ""), second)
	}}

	require.NoError(t, r.Start(domain.NewTranscoderJob([]string{"fail"}, 0, ""), first))
	select {
	case err := <-startErr:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("first job never finished")
	}
	assert.True(t, second.wait(t).Success)
}

func TestRunner_StartThen(t *testing.T) {
	r := newTestRunner()
	rec := newRecorder()

	var cropLine string
	collect := port.MultiObserver{rec, port.ObserverFuncs{OnLog: func(line string) {
		if strings.Contains(line, "crop=") {
			cropLine = line
		}
	}}}
	next := func() (domain.Job, error) {
		assert.Equal(t, domain.RunStatusRunning, r.Status(), "no idle gap between phases")
		assert.NotEmpty(t, cropLine)
		return domain.NewTranscoderJob([]string{"progress"}, 10, "out.mp4"), nil
	}

	require.NoError(t, r.StartThen(domain.NewTranscoderJob([]string{"crop"}, 0, ""), next, collect))
	res := rec.wait(t)

	assert.True(t, res.Success)
	logs, progress, results := rec.snapshot()
	assert.Len(t, results, 1, "first phase completion is suppressed")
	assert.Equal(t, []float64{50, 100}, progress)
	assert.Equal(t, "$ ffmpeg crop", logs[0])
	assert.Contains(t, logs, "$ ffmpeg progress")
}

func TestRunner_StartThenFirstPhaseFails(t *testing.T) {
	r := newTestRunner()
	rec := newRecorder()
	called := false

	next := func() (domain.Job, error) {
		called = true
		return domain.NewTranscoderJob([]string{"progress"}, 10, ""), nil
	}
	require.NoError(t, r.StartThen(domain.NewTranscoderJob([]string{"fail"}, 0, ""), next, rec))
	res := rec.wait(t)

	assert.False(t, res.Success)
	assert.False(t, called)
}

func TestRunner_StartThenNextErrors(t *testing.T) {
	r := newTestRunner()
	rec := newRecorder()

	next := func() (domain.Job, error) {
		return domain.Job{}, fmt.Errorf("no crop found")
	}
	require.NoError(t, r.StartThen(domain.NewTranscoderJob([]string{"progress"}, 10, ""), next, rec))
	res := rec.wait(t)

	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "no crop found")
	_, progress, _ := rec.snapshot()
	assert.NotContains(t, progress, 100.0)
}

func TestCommandLine(t *testing.T) {
	assert.Equal(t, "$ ffmpeg", commandLine("ffmpeg", nil))
	assert.Equal(t, "$ yt-dlp -j URL", commandLine("yt-dlp", []string{"-j", "URL"}))
}
