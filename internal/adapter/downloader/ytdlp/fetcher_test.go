package ytdlp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/cheval/internal/domain"
	"github.com/bnema/cheval/internal/infrastructure/backoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInfo = `{"id":"abc","title":"Sample clip","uploader":"someone","duration":62,"duration_string":"1:02","webpage_url":"https://example.com/abc","formats":[{"format_id":"18","ext":"mp4","width":640,"height":360,"vcodec":"avc1","acodec":"mp4a","filesize":1048576},{"format_id":"140","ext":"m4a","vcodec":"none","acodec":"mp4a"}]}`

type call struct {
	stdout, stderr string
	err            error
}

func fakeFetcher(calls ...call) (*Fetcher, *[][]string) {
	var seen [][]string
	f := NewFetcher("", time.Second)
	f.backoff = &backoff.Backoff{Min: time.Millisecond, Max: time.Millisecond, Factor: 1}
	f.output = func(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
		i := len(seen)
		seen = append(seen, append([]string{name}, args...))
		c := calls[min(i, len(calls)-1)]
		return []byte(c.stdout), []byte(c.stderr), c.err
	}
	return f, &seen
}

func TestFetcher_Fetch(t *testing.T) {
	f, seen := fakeFetcher(call{stdout: "WARNING: something\n" + sampleInfo + "\n"})

	info, err := f.Fetch(context.Background(), "https://example.com/abc", true)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"yt-dlp", "-j", "--no-download", "--no-playlist", "https://example.com/abc"}}, *seen)
	assert.Equal(t, "Sample clip", info.Title)
	assert.InDelta(t, 62.0, info.Duration, 1e-9)
	require.Len(t, info.Formats, 2)
	assert.True(t, info.Formats[0].HasVideo())
	assert.False(t, info.Formats[1].HasVideo())
}

func TestFetcher_RetriesTransientErrors(t *testing.T) {
	exit := errors.New("exit status 1")
	f, seen := fakeFetcher(
		call{stderr: "ERROR: Unable to download webpage: HTTP Error 503: Service Unavailable", err: exit},
		call{stderr: "ERROR: [Errno 104] Connection reset by peer", err: exit},
		call{stdout: sampleInfo},
	)

	info, err := f.Fetch(context.Background(), "https://example.com/abc", false)
	require.NoError(t, err)
	assert.Equal(t, "abc", info.ID)
	assert.Len(t, *seen, 3)
}

func TestFetcher_PermanentErrorNotRetried(t *testing.T) {
	exit := errors.New("exit status 1")
	f, seen := fakeFetcher(call{stderr: "WARNING: x\nERROR: Unsupported URL: https://example.com/nothing", err: exit})

	_, err := f.Fetch(context.Background(), "https://example.com/nothing", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, exit)
	assert.Contains(t, err.Error(), "Unsupported URL")
	assert.Len(t, *seen, 1)
}

func TestFetcher_GivesUp(t *testing.T) {
	exit := errors.New("exit status 1")
	f, seen := fakeFetcher(call{stderr: "ERROR: The read operation timed out", err: exit})

	_, err := f.Fetch(context.Background(), "https://example.com/abc", false)
	assert.ErrorIs(t, err, exit)
	assert.Len(t, *seen, int(defaultRetries)+1)
}

func TestFetcher_EmptyURL(t *testing.T) {
	f, seen := fakeFetcher(call{stdout: sampleInfo})
	_, err := f.Fetch(context.Background(), "  ", false)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, *seen)
}

func TestParseInfo(t *testing.T) {
	_, err := ParseInfo([]byte("nothing useful\n"))
	assert.ErrorIs(t, err, ErrNoMetadata)

	_, err = ParseInfo([]byte("{broken\n"))
	assert.ErrorContains(t, err, "failed to parse yt-dlp output")

	info, err := ParseInfo([]byte(sampleInfo + "\n" + `{"id":"second"}` + "\n"))
	require.NoError(t, err)
	assert.Equal(t, "abc", info.ID)
}

func TestCountEntries(t *testing.T) {
	assert.Equal(t, 2, CountEntries([]byte(sampleInfo+"\n"+`{"id":"b"}`+"\n")))
	assert.Equal(t, 0, CountEntries(nil))
}

func TestLastErrorLine(t *testing.T) {
	assert.Equal(t, "ERROR: boom", lastErrorLine([]byte("WARNING: a\nERROR: boom\nsome trailing note\n")))
	assert.Equal(t, "plain failure", lastErrorLine([]byte("plain failure\n")))
	assert.Equal(t, "", lastErrorLine(nil))
}
