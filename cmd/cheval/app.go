package main

import (
	"fmt"

	"github.com/bnema/cheval/internal/adapter/downloader/ytdlp"
	"github.com/bnema/cheval/internal/adapter/prober/ffprobe"
	"github.com/bnema/cheval/internal/adapter/storage/sqlite"
	"github.com/bnema/cheval/internal/domain"
	"github.com/bnema/cheval/internal/runner"
	"github.com/bnema/cheval/internal/service"
)

// app holds the wired services for one command invocation.
type app struct {
	store   *sqlite.Store
	runner  *runner.Runner
	prober  *ffprobe.Prober
	fetcher *ytdlp.Fetcher
	history *service.History
	events  *service.EventBus
	jobs    *service.Jobs
	batch   *service.Batch
}

func newApp() (*app, error) {
	store, err := sqlite.Open(cfg.Paths.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	a := &app{
		store: store,
		runner: runner.New(map[domain.Program]string{
			domain.ProgramTranscoder: cfg.Binaries.FFmpeg,
			domain.ProgramDownloader: cfg.Binaries.YtDlp,
		}),
		prober:  ffprobe.NewProber(cfg.Binaries.FFprobe, cfg.ProbeTimeout()),
		fetcher: ytdlp.NewFetcher(cfg.Binaries.YtDlp, 0),
		history: service.NewHistory(store),
		events:  service.NewEventBus(),
	}
	a.jobs = service.NewJobs(a.runner, a.prober, a.history, a.events, cfg.Paths.DownloadDir)
	a.batch = service.NewBatch(a.runner, a.prober, a.history, a.events)
	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
