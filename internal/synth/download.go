package synth

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bnema/cheval/internal/domain"
)

type FormatStrategy string

const (
	FormatBest   FormatStrategy = "best"
	FormatMerged FormatStrategy = "merged"
	FormatAudio  FormatStrategy = "audio"
	FormatWorst  FormatStrategy = "worst"
)

var formatSelectors = map[FormatStrategy]string{
	FormatBest:   "bv*+ba/b",
	FormatMerged: "bv+ba",
	FormatAudio:  "ba",
	FormatWorst:  "wv*+wa/w",
}

var (
	FormatStrategies = []string{string(FormatBest), string(FormatMerged), string(FormatAudio), string(FormatWorst)}
	MergeContainers  = []string{"mkv", "mp4", "webm"}
	RecodeTargets    = []string{"mp4", "mkv", "webm", "mp3", "flac", "wav", "ogg"}
	CookieBrowsers   = []string{"firefox", "chrome", "chromium", "brave", "edge", "opera", "safari"}
)

const (
	DefaultOutputTemplate = "%(title)s.%(ext)s"
	MaxFragments          = 16
)

type DownloadOptions struct {
	URL       string `json:"url,omitempty"`
	OutputDir string `json:"output_dir,omitempty"`
	Template  string `json:"template,omitempty"`
	Playlist  bool   `json:"playlist,omitempty"`

	AudioOnly bool           `json:"audio_only,omitempty"`
	Strategy  FormatStrategy `json:"strategy,omitempty"`
	// FormatID selects an exact format from the fetched listing and wins
	// over Strategy.
	FormatID string `json:"format_id,omitempty"`

	MergeFormat string `json:"merge_format,omitempty"`
	RecodeVideo string `json:"recode_video,omitempty"`

	Subtitles    bool   `json:"subtitles,omitempty"`
	SubLangs     string `json:"sub_langs,omitempty"`
	Thumbnail    bool   `json:"thumbnail,omitempty"`
	Metadata     bool   `json:"metadata,omitempty"`
	Chapters     bool   `json:"chapters,omitempty"`
	SponsorBlock bool   `json:"sponsor_block,omitempty"`
	// CookiesFrom names a browser to borrow cookies from.
	CookiesFrom string `json:"cookies_from,omitempty"`
	Aria2       bool   `json:"aria2,omitempty"`
	RateLimit   string `json:"rate_limit,omitempty"`
	Fragments   int    `json:"fragments,omitempty"`
	ExtraArgs   string `json:"extra_args,omitempty"`
}

func Download(o DownloadOptions) (domain.Job, error) {
	url := strings.TrimSpace(o.URL)
	if url == "" {
		return domain.Job{}, domain.NewValidationError("url", "no URL entered")
	}
	if o.FormatID == "" && o.Strategy != "" {
		if err := checkChoice("strategy", string(o.Strategy), FormatStrategies); err != nil {
			return domain.Job{}, err
		}
	}
	if o.MergeFormat != "" {
		if err := checkChoice("merge_format", o.MergeFormat, MergeContainers); err != nil {
			return domain.Job{}, err
		}
	}
	if o.RecodeVideo != "" {
		if err := checkChoice("recode_video", o.RecodeVideo, RecodeTargets); err != nil {
			return domain.Job{}, err
		}
	}
	if o.CookiesFrom != "" {
		if err := checkChoice("cookies_from", o.CookiesFrom, CookieBrowsers); err != nil {
			return domain.Job{}, err
		}
	}
	if o.Fragments != 0 {
		if err := checkRange("fragments", o.Fragments, 1, MaxFragments); err != nil {
			return domain.Job{}, err
		}
	}

	dir := orDefault(o.OutputDir, ".")
	args := []string{"-o", filepath.Join(dir, orDefault(o.Template, DefaultOutputTemplate))}
	if o.Playlist {
		args = append(args, "--yes-playlist")
	} else {
		args = append(args, "--no-playlist")
	}

	switch {
	case o.AudioOnly:
		args = append(args, "-x", "--audio-format", "mp3", "--audio-quality", "0")
	case strings.TrimSpace(o.FormatID) != "":
		args = append(args, "-f", strings.TrimSpace(o.FormatID))
	default:
		strategy := o.Strategy
		if strategy == "" {
			strategy = FormatBest
		}
		args = append(args, "-f", formatSelectors[strategy])
	}

	if !o.AudioOnly && o.MergeFormat != "" {
		args = append(args, "--merge-output-format", o.MergeFormat)
	}
	if o.RecodeVideo != "" {
		args = append(args, "--recode-video", o.RecodeVideo)
	}
	if o.Subtitles {
		args = append(args, "--write-subs", "--write-auto-subs", "--sub-langs", orDefault(o.SubLangs, "en"), "--embed-subs")
	}
	if o.Thumbnail {
		args = append(args, "--embed-thumbnail")
	}
	if o.Metadata {
		args = append(args, "--embed-metadata")
	}
	if o.Chapters {
		args = append(args, "--embed-chapters")
	}
	if o.SponsorBlock {
		args = append(args, "--sponsorblock-remove", "all")
	}
	if o.CookiesFrom != "" {
		args = append(args, "--cookies-from-browser", o.CookiesFrom)
	}
	if o.Aria2 {
		args = append(args, "--downloader", "aria2c")
	}
	if rate := strings.TrimSpace(o.RateLimit); rate != "" {
		args = append(args, "-r", rate)
	}
	if o.Fragments > 1 {
		args = append(args, "--concurrent-fragments", strconv.Itoa(o.Fragments))
	}
	args = append(args, strings.Fields(o.ExtraArgs)...)
	args = append(args, url)
	return domain.NewDownloaderJob(args), nil
}

// FetchArgs queries metadata as JSON without downloading.
func FetchArgs(url string, noPlaylist bool) []string {
	args := []string{"-j", "--no-download"}
	if noPlaylist {
		args = append(args, "--no-playlist")
	}
	return append(args, url)
}
