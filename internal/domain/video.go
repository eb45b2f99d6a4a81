package domain

import (
	"fmt"
	"strings"
)

// VideoInfo is the subset of the downloader's metadata document we use.
type VideoInfo struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Uploader       string   `json:"uploader"`
	DurationString string   `json:"duration_string"`
	Duration       float64  `json:"duration"`
	ViewCount      int64    `json:"view_count"`
	WebpageURL     string   `json:"webpage_url"`
	Formats        []Format `json:"formats"`
}

type Format struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	FPS            float64 `json:"fps"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
	FormatNote     string  `json:"format_note"`
}

func (f Format) HasVideo() bool {
	return f.VCodec != "" && f.VCodec != "none"
}

func (f Format) HasAudio() bool {
	return f.ACodec != "" && f.ACodec != "none"
}

// Size returns the exact size when known, else the approximation.
func (f Format) Size() int64 {
	if f.Filesize > 0 {
		return f.Filesize
	}
	return f.FilesizeApprox
}

// Label renders a one-line description used when listing formats.
func (f Format) Label() string {
	parts := []string{f.FormatID, f.Ext}
	switch {
	case f.HasVideo() && f.Height > 0:
		res := fmt.Sprintf("%dx%d", f.Width, f.Height)
		if f.FPS > 0 {
			res += fmt.Sprintf("@%g", f.FPS)
		}
		parts = append(parts, res)
	case !f.HasVideo() && f.HasAudio():
		parts = append(parts, "audio only")
	}
	if f.HasVideo() {
		parts = append(parts, f.VCodec)
	}
	if f.HasAudio() {
		parts = append(parts, f.ACodec)
	}
	if size := f.Size(); size > 0 {
		parts = append(parts, FormatSize(size))
	}
	if f.FormatNote != "" {
		parts = append(parts, f.FormatNote)
	}
	return strings.Join(parts, " | ")
}

// BatchSummary is the final tally of a batch run. Processed counts every file
// that reached a terminal event, failed or not.
type BatchSummary struct {
	ID        string `json:"id"`
	Total     int    `json:"total"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Stopped   bool   `json:"stopped"`
}

func (s BatchSummary) Message() string {
	if s.Stopped {
		return fmt.Sprintf("Stopped. Processed %d of %d files.", s.Processed, s.Total)
	}
	return fmt.Sprintf("Done. Processed %d of %d files.", s.Processed, s.Total)
}
