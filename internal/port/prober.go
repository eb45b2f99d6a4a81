package port

import (
	"context"

	"github.com/bnema/cheval/internal/domain"
)

type Prober interface {
	Probe(ctx context.Context, path string) (*domain.ProbeResult, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, url string, noPlaylist bool) (*domain.VideoInfo, error)
}
