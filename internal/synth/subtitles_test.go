package synth

import (
	"testing"

	"github.com/bnema/cheval/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestASSColor(t *testing.T) {
	assert.Equal(t, "&H0033CCFF&", ASSColor("#ffcc33"))
	assert.Equal(t, "&H00563412&", ASSColor("123456"))
	assert.Equal(t, assWhite, ASSColor("red"))
	assert.Equal(t, assWhite, ASSColor("#GGGGGG"))
	assert.Equal(t, assWhite, ASSColor(""))
}

func TestSubtitleStyle(t *testing.T) {
	assert.Equal(t,
		"FontSize=24,PrimaryColour=&H00FFFFFF&,OutlineColour=&H00000000&,Outline=2,Shadow=1,Alignment=2,MarginV=20",
		SubtitleStyle(24, "", true, false))
	assert.Equal(t,
		"FontSize=30,PrimaryColour=&H0000FFFF&,Outline=0,Shadow=0,Alignment=8,MarginV=20",
		SubtitleStyle(30, "ffff00", false, true))
}

func TestSubtitles(t *testing.T) {
	tests := []struct {
		name     string
		opts     SubtitleOptions
		wantArgs []string
		wantErr  bool
	}{
		{
			name: "burn escapes the path",
			opts: SubtitleOptions{Input: "/v/a.mkv", Mode: SubtitleBurn, Subtitle: `C:\subs\a.srt`, Outline: true},
			wantArgs: []string{
				"-y", "-i", "/v/a.mkv",
				"-vf", `subtitles=C\:/subs/a.srt:force_style='FontSize=24,PrimaryColour=&H00FFFFFF&,OutlineColour=&H00000000&,Outline=2,Shadow=1,Alignment=2,MarginV=20'`,
				"-c:a", "copy", "-progress", "pipe:1", "/v/a_burned.mkv",
			},
		},
		{
			name: "embed into mp4 uses mov_text",
			opts: SubtitleOptions{Input: "/v/a.mp4", Mode: SubtitleEmbed, Subtitle: "/s/a.srt", Language: "eng", Default: true},
			wantArgs: []string{
				"-y", "-i", "/v/a.mp4", "-i", "/s/a.srt", "-map", "0", "-map", "1",
				"-c", "copy", "-c:s", "mov_text",
				"-metadata:s:s:0", "language=eng", "-disposition:s:0", "default",
				"-progress", "pipe:1", "/v/a_subs.mp4",
			},
		},
		{
			name: "embed after existing tracks",
			opts: SubtitleOptions{Input: "/v/a.mkv", Mode: SubtitleEmbed, Subtitle: "/s/a.srt", ExistingSubs: 2},
			wantArgs: []string{
				"-y", "-i", "/v/a.mkv", "-i", "/s/a.srt", "-map", "0", "-map", "1",
				"-c", "copy", "-c:s", "srt",
				"-metadata:s:s:2", "language=und", "-disposition:s:2", "0",
				"-progress", "pipe:1", "/v/a_subs.mkv",
			},
		},
		{
			name:     "extract",
			opts:     SubtitleOptions{Input: "/v/a.mkv", Mode: SubtitleExtract, Track: 3, Format: "vtt"},
			wantArgs: []string{"-y", "-i", "/v/a.mkv", "-map", "0:s:3", "-progress", "pipe:1", "/v/a_sub3.vtt"},
		},
		{name: "burn needs a file", opts: SubtitleOptions{Input: "/v/a.mkv", Mode: SubtitleBurn}, wantErr: true},
		{name: "font too big", opts: SubtitleOptions{Input: "/v/a.mkv", Mode: SubtitleBurn, Subtitle: "a.srt", FontSize: 200}, wantErr: true},
		{name: "track out of range", opts: SubtitleOptions{Input: "/v/a.mkv", Mode: SubtitleExtract, Track: 100}, wantErr: true},
		{name: "bad mode", opts: SubtitleOptions{Input: "/v/a.mkv", Mode: "burnin"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := Subtitles(tt.opts)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantArgs, job.Args)
		})
	}
}
