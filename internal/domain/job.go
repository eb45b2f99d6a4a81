package domain

type Program string

const (
	ProgramTranscoder Program = "transcoder"
	ProgramDownloader Program = "downloader"
)

func (p Program) Valid() bool {
	return p == ProgramTranscoder || p == ProgramDownloader
}

// Job is one fully synthesized invocation. It is built once and handed to a
// runner as a value; Args must not be mutated after construction.
type Job struct {
	Program          Program  `json:"program"`
	Args             []string `json:"args"`
	ExpectedDuration float64  `json:"expected_duration"`
	Output           string   `json:"output,omitempty"`
}

func NewTranscoderJob(args []string, duration float64, output string) Job {
	return Job{
		Program:          ProgramTranscoder,
		Args:             append([]string(nil), args...),
		ExpectedDuration: duration,
		Output:           output,
	}
}

func NewDownloaderJob(args []string) Job {
	return Job{
		Program: ProgramDownloader,
		Args:    append([]string(nil), args...),
	}
}

// HasProgress reports whether the runner can compute a percentage for the job.
func (j Job) HasProgress() bool {
	return j.Program == ProgramDownloader || j.ExpectedDuration > 0
}
