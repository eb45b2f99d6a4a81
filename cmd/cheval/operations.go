package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bnema/cheval/internal/domain"
	"github.com/bnema/cheval/internal/infrastructure/logger"
	"github.com/bnema/cheval/internal/service"
)

var operationHelp = map[service.Operation]string{
	service.OpConvert:       "Re-encode into another container and codecs",
	service.OpCompress:      "Re-encode to hit a target size or quality",
	service.OpExtractAudio:  "Write the audio track to its own file",
	service.OpStripMetadata: "Copy streams without metadata and chapters",
	service.OpThumbnail:     "Grab one frame as an image",
	service.OpResize:        "Scale to a preset or custom size",
	service.OpTrim:          "Cut a segment, with or without re-encoding",
	service.OpSpeed:         "Change playback speed",
	service.OpGIF:           "Render a palette-optimized GIF",
	service.OpAudio:         "Mute, replace, mix, normalize or adjust volume",
	service.OpTransform:     "Rotate, flip, and crop (with optional auto-crop)",
	service.OpSubtitles:     "Burn in or embed a subtitle file",
	service.OpWatermark:     "Overlay an image or text",
	service.OpMerge:         "Concatenate or crossfade several files",
	service.OpDownload:      "Download a URL with yt-dlp",
}

func init() {
	for _, name := range service.Operations {
		rootCmd.AddCommand(newOperationCmd(service.Operation(name)))
	}
}

func newOperationCmd(op service.Operation) *cobra.Command {
	use := string(op) + " <input>"
	switch op {
	case service.OpMerge:
		use = string(op) + " <input>..."
	case service.OpDownload:
		use = string(op) + " <url>"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: operationHelp[op],
		Long: fmt.Sprintf(`%s.

Options are given as key=value pairs or as one JSON object; the positional
argument fills the input field.

Examples:
  cheval %s clip.mp4 --set key=value
  cheval %s clip.mp4 --options '{"key": "value"}' --dry-run`, operationHelp[op], op, op),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, op, args)
		},
	}
	if op != service.OpMerge {
		cmd.Args = cobra.ExactArgs(1)
	}
	cmd.Flags().StringArray("set", nil, "Option as key=value (repeatable)")
	cmd.Flags().String("options", "", "Options as a JSON object")
	cmd.Flags().Bool("dry-run", false, "Print the command instead of running it")
	cmd.Flags().BoolP("quiet", "q", false, "Only print the result")
	return cmd
}

func runOperation(cmd *cobra.Command, op service.Operation, args []string) error {
	pairs, _ := cmd.Flags().GetStringArray("set")
	base, _ := cmd.Flags().GetString("options")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	quiet, _ := cmd.Flags().GetBool("quiet")

	options, err := withInputs(op, args, base, pairs)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx := cmd.Context()
	plan, err := a.jobs.Plan(ctx, op, options)
	if err != nil {
		return err
	}
	if dryRun {
		defer func() {
			if plan.Cleanup != nil {
				plan.Cleanup()
			}
		}()
		return printPlan(plan)
	}

	term := newTerminal(os.Stdout, os.Stderr, quiet || jsonOutput)
	id, err := a.jobs.Run(ctx, plan, term)
	if err != nil {
		return err
	}
	logger.Debug.Printf("run %s started: %s", id, logger.SanitizeForLog(strings.Join(plan.Job.Args, " ")))

	res := waitInterruptible(term.done, func() {
		logger.Warn.Printf("interrupt received, cancelling run %s", id)
		_ = a.jobs.Cancel(id)
	})
	return report(ctx, a, id, res)
}

// withInputs places the positional arguments where the operation expects
// them before merging the remaining options.
func withInputs(op service.Operation, args []string, base string, pairs []string) (json.RawMessage, error) {
	options, err := buildOptions(base, pairs)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(options, &fields); err != nil {
		return nil, err
	}
	switch op {
	case service.OpMerge:
		fields["inputs"] = args
	case service.OpDownload:
		fields["url"] = args[0]
	default:
		fields["input"] = args[0]
	}
	return json.Marshal(fields)
}

// waitInterruptible waits for done. Each interrupt calls the next handler
// in order; an interrupt past the last handler exits at once.
func waitInterruptible(done <-chan domain.Result, handlers ...func()) domain.Result {
	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	for {
		select {
		case res := <-done:
			return res
		case <-sig:
			if len(handlers) == 0 {
				os.Exit(130)
			}
			handlers[0]()
			handlers = handlers[1:]
		}
	}
}

func report(ctx context.Context, a *app, id string, res domain.Result) error {
	if jsonOutput {
		run, err := a.history.Get(ctx, id)
		if err != nil {
			run = &domain.Run{ID: id, Status: res.Status(), ExitCode: res.ExitCode, Message: res.Message}
		}
		if err := printJSON(run); err != nil {
			return err
		}
	} else {
		fmt.Println(res.Message)
	}
	if !res.Success {
		code := res.ExitCode
		if code <= 0 {
			code = 1
		}
		return exitError{code: code}
	}
	return nil
}

type planView struct {
	Operation service.Operation `json:"operation"`
	Program   domain.Program    `json:"program"`
	Args      []string          `json:"args"`
	Output    string            `json:"output,omitempty"`
	TwoPass   bool              `json:"two_pass,omitempty"`
}

func printPlan(plan *service.Plan) error {
	view := planView{
		Operation: plan.Operation,
		Program:   plan.Job.Program,
		Args:      plan.Job.Args,
		Output:    plan.Job.Output,
		TwoPass:   plan.Next != nil,
	}
	if jsonOutput {
		return printJSON(view)
	}
	fmt.Println(binaryFor(plan.Job.Program) + " " + shellJoin(plan.Job.Args))
	if view.TwoPass {
		fmt.Println("# followed by a second pass built from the first pass's output")
	}
	return nil
}

func binaryFor(p domain.Program) string {
	if p == domain.ProgramDownloader {
		return cfg.Binaries.YtDlp
	}
	return cfg.Binaries.FFmpeg
}

// shellJoin quotes arguments for display so the line can be pasted into
// a POSIX shell.
func shellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		if arg != "" && !strings.ContainsAny(arg, " \t\n'\"\\$`!*?;&|<>()[]{}#~") {
			quoted[i] = arg
			continue
		}
		quoted[i] = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}
