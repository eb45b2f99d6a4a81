package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/cheval/internal/adapter/http/validation"
	"github.com/bnema/cheval/internal/domain"
	"github.com/bnema/cheval/internal/infrastructure/logger"
	"github.com/bnema/cheval/internal/service"
	"github.com/bnema/cheval/internal/synth"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file-or-folder>...",
	Short: "Apply one operation to many files, one after another",
	Long: `Apply one operation to many files, one after another.

Folders are scanned recursively for video files. A failed file does not
stop the batch. Press Ctrl-C once to stop after the current file, twice to
cancel the current file as well.

Examples:
  cheval batch ~/Videos --operation compress --set crf=28
  cheval batch a.mkv b.mkv --operation convert --set format=mp4 --suffix _h264`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatchCmd,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().String("operation", "", "Batch operation (required)")
	batchCmd.Flags().String("suffix", "", "Output name suffix (default from config)")
	batchCmd.Flags().String("output-dir", "", "Write outputs here instead of next to each input")
	batchCmd.Flags().StringArray("set", nil, "Template option as key=value (repeatable)")
	_ = batchCmd.MarkFlagRequired("operation")
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	tmpl, err := batchTemplate(cmd)
	if err != nil {
		return err
	}
	files, err := service.ExpandInputs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no video files found in %v", args)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	term := newTerminal(os.Stdout, os.Stderr, jsonOutput)
	id, err := a.batch.Start(files, tmpl, term)
	if err != nil {
		return err
	}
	logger.Debug.Printf("batch %s started with %d file(s)", id, len(files))

	res := waitInterruptible(term.done,
		func() {
			if err := a.batch.Stop(); err != nil {
				logger.Warn.Printf("batch stop: %v", err)
			}
		},
		func() {
			logger.Warn.Printf("second interrupt, cancelling the current file")
			a.runner.Cancel()
		},
	)

	if jsonOutput {
		runs, err := a.history.Batch(cmd.Context(), id)
		if err != nil {
			return err
		}
		if err := printJSON(map[string]any{"id": id, "result": res, "runs": runs}); err != nil {
			return err
		}
	}
	if !res.Success {
		return exitError{code: 1}
	}
	return nil
}

func batchTemplate(cmd *cobra.Command) (synth.BatchTemplate, error) {
	op, _ := cmd.Flags().GetString("operation")
	suffix, _ := cmd.Flags().GetString("suffix")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	pairs, _ := cmd.Flags().GetStringArray("set")

	raw, err := buildOptions("", pairs)
	if err != nil {
		return synth.BatchTemplate{}, err
	}
	var tmpl synth.BatchTemplate
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&tmpl); err != nil {
		return synth.BatchTemplate{}, domain.NewValidationError("set", "%v", err)
	}
	tmpl.Operation = synth.BatchOperation(op)
	tmpl.OutputDir = outputDir
	tmpl.Suffix = validation.SanitizeSuffix(suffix)
	if tmpl.Suffix == "" {
		tmpl.Suffix = cfg.Batch.Suffix
	}
	return tmpl, nil
}
