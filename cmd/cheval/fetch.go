package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/cheval/internal/adapter/downloader/ytdlp"
	"github.com/bnema/cheval/internal/domain"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Show a URL's title and available formats without downloading",
	Long: `Show a URL's title and available formats without downloading.

Transient network errors are retried with backoff.

Examples:
  cheval fetch https://example.com/watch?v=abc
  cheval fetch --no-playlist https://example.com/watch?v=abc&list=xyz`,
	Args: cobra.ExactArgs(1),
	RunE: runFetchCmd,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().Bool("no-playlist", false, "Only read the single video of a playlist URL")
}

func runFetchCmd(cmd *cobra.Command, args []string) error {
	noPlaylist, _ := cmd.Flags().GetBool("no-playlist")

	fetcher := ytdlp.NewFetcher(cfg.Binaries.YtDlp, 0)
	info, err := fetcher.Fetch(cmd.Context(), args[0], noPlaylist)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(info)
	}
	printVideoInfo(info)
	return nil
}

func printVideoInfo(info *domain.VideoInfo) {
	fmt.Printf("Title:    %s\n", info.Title)
	if info.Uploader != "" {
		fmt.Printf("Uploader: %s\n", info.Uploader)
	}
	if info.Duration > 0 {
		fmt.Printf("Duration: %s\n", domain.FormatDuration(info.Duration))
	}
	if len(info.Formats) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Formats:")
	for _, f := range info.Formats {
		fmt.Printf("  %s\n", f.Label())
	}
}
