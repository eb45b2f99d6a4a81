package runner

import (
	"regexp"
	"strconv"

	"github.com/bnema/cheval/internal/domain"
)

var (
	outTimeUsRe = regexp.MustCompile(`out_time_us=(\d+)`)
	outTimeRe   = regexp.MustCompile(`out_time=(\d+):(\d+):([\d.]+)`)
	downloadRe  = regexp.MustCompile(`\[download\]\s+([\d.]+)%`)
)

// progressFunc extracts a percentage from one line of process output.
type progressFunc func(line string) (float64, bool)

func progressFor(job domain.Job) progressFunc {
	if job.Program == domain.ProgramDownloader {
		return DownloaderPercent
	}
	duration := job.ExpectedDuration
	return func(line string) (float64, bool) {
		return TranscoderPercent(line, duration)
	}
}

// TranscoderPercent reads the elapsed output time from a -progress line and
// converts it to a share of duration. Nothing is reported without a duration.
func TranscoderPercent(line string, duration float64) (float64, bool) {
	if duration <= 0 {
		return 0, false
	}
	if m := outTimeUsRe.FindStringSubmatch(line); m != nil {
		us, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, false
		}
		return percentOf(float64(us)/1e6, duration), true
	}
	if m := outTimeRe.FindStringSubmatch(line); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		secs, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return 0, false
		}
		return percentOf(float64(h*3600+mins*60)+secs, duration), true
	}
	return 0, false
}

// DownloaderPercent reads the "[download]  NN.N%" status marker.
func DownloaderPercent(line string) (float64, bool) {
	m := downloadRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return clamp(pct), true
}

func percentOf(elapsed, duration float64) float64 {
	return clamp(elapsed / duration * 100)
}

func clamp(pct float64) float64 {
	return max(0, min(100, pct))
}
