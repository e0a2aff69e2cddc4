package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"annotator/config"
	"annotator/detection"
	"annotator/input"
	"annotator/recording"
	"annotator/session"
	"annotator/terminal"
	"annotator/ui"
	"annotator/video"
)

func runAnnotate(opts *RootOptions, cmd *cobra.Command) error {
	if opts.StartFrame < 0 {
		return fmt.Errorf("start frame must not be negative, got %d", opts.StartFrame)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := checkInputs(opts.Video, cfg.ModelPath); err != nil {
		return err
	}

	output := opts.Output
	if output == "" {
		output = recording.DefaultOutputPath(opts.Video)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	capture, err := video.Open(opts.Video)
	if err != nil {
		return fmt.Errorf("failed to open video: %w", err)
	}
	defer capture.Close()

	info := capture.Info()
	slog.Info("video opened", "path", opts.Video, "frames", info.TotalFrames, "fps", info.FPS, "width", info.Width, "height", info.Height)

	slog.Info("starting keypoint worker", "command", cfg.Detection.WorkerCommand, "model", cfg.ModelPath)
	worker, err := detection.StartWorker(ctx, cfg.Detection.WorkerCommand, cfg.ModelPath, cfg.Detection.RequestTimeout)
	if err != nil {
		return fmt.Errorf("failed to start keypoint worker: %w", err)
	}
	defer func() {
		if closeErr := worker.Close(); closeErr != nil {
			slog.Debug("keypoint worker exited", "error", closeErr)
		}
	}()

	out := cmd.OutOrStdout()
	input.PrintStartupInstructions()
	fmt.Fprintf(out, "[INFO] Annotations will be saved to: %s\n", output)
	if _, err := os.Stat(output); err == nil {
		fmt.Fprintf(out, "[INFO] %s already exists and will be overwritten on exit\n", output)
	}

	sessOpts := session.Options{
		Handedness: opts.Handedness(),
		OutputPath: output,
		StartFrame: opts.StartFrame,
		Config:     *cfg,
		Console:    out,
	}

	if opts.Journal != "" {
		journal, id, err := beginJournal(ctx, opts, output)
		if err != nil {
			slog.Warn("journal disabled", "path", opts.Journal, "error", err)
		} else {
			defer journal.Close()
			sessOpts.Journal = journal
			sessOpts.SessionID = id
		}
	}

	var display session.Display
	if opts.Headless {
		term := terminal.New(os.Stdin, out)
		if err := term.EnterRaw(); err != nil {
			return err
		}
		defer term.Close()
		display = term
	} else {
		window := ui.NewWindow(capture, cfg.Display)
		defer window.Close()
		display = window
	}

	sampler := detection.NewCache(worker, cfg.Detection.Interval)
	return session.New(sessOpts, capture, sampler, display).Run(ctx)
}

func beginJournal(ctx context.Context, opts *RootOptions, output string) (*recording.Journal, string, error) {
	journal, err := recording.OpenJournal(opts.Journal)
	if err != nil {
		return nil, "", err
	}

	id, err := journal.BeginSession(ctx, recording.Session{
		Video:      opts.Video,
		Handedness: string(opts.Handedness()),
		Output:     output,
	})
	if err != nil {
		journal.Close()
		return nil, "", err
	}

	slog.Info("journaling session", "path", opts.Journal, "session", id)
	return journal, id, nil
}
