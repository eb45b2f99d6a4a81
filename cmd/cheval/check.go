package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/cheval/internal/service"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that ffmpeg, ffprobe and yt-dlp can be found",
	Args:  cobra.NoArgs,
	RunE:  runCheckCmd,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheckCmd(_ *cobra.Command, _ []string) error {
	bins, err := service.Preflight(cfg.BinaryPaths())
	if jsonOutput {
		if perr := printJSON(bins); perr != nil {
			return perr
		}
	} else {
		for _, b := range bins {
			if b.Found {
				fmt.Printf("ok       %-8s %s\n", b.Name, b.Resolved)
			} else {
				fmt.Printf("missing  %-8s %s\n", b.Name, b.Path)
			}
		}
	}
	if err != nil {
		return exitError{code: 1}
	}
	return nil
}
