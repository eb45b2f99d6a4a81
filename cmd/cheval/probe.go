package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/cheval/internal/adapter/prober/ffprobe"
)

var probeCmd = &cobra.Command{
	Use:   "probe <file>",
	Short: "Show duration, streams and size of a media file",
	Args:  cobra.ExactArgs(1),
	RunE:  runProbeCmd,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbeCmd(cmd *cobra.Command, args []string) error {
	prober := ffprobe.NewProber(cfg.Binaries.FFprobe, cfg.ProbeTimeout())
	result, err := prober.Probe(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(result)
	}
	for _, line := range result.Summary() {
		fmt.Println(line)
	}
	return nil
}
