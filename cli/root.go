package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"annotator/config"
	"annotator/types"
)

// RootOptions holds the flags of the annotate command
type RootOptions struct {
	Video      string
	Right      bool
	Left       bool
	Output     string
	Config     string
	StartFrame int
	Journal    string
	Headless   bool
	Verbose    bool
}

// Handedness returns the compartment chosen on the command line
func (o *RootOptions) Handedness() types.Handedness {
	if o.Left {
		return types.Left
	}
	return types.Right
}

// NewRootCommand creates the annotator command
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "annotator",
		Short: "Mark successful attempt intervals in a video",
		Long: `Step through a video frame by frame and mark the start and stop of
each successful attempt. Stepping back past a marked boundary undoes it.
The intervals are written to a CSV file on exit.

Example:
  annotator --video trial_03.mp4 --right
  annotator --video trial_03.mp4 -L --output trial_03.csv --journal annotations.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(opts.Verbose)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(opts, cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.Flags().StringVar(&opts.Video, "video", "", "path to the video file (required)")
	_ = cmd.MarkFlagRequired("video")
	cmd.Flags().BoolVarP(&opts.Right, "right", "R", false, "annotate the right compartment")
	cmd.Flags().BoolVarP(&opts.Left, "left", "L", false, "annotate the left compartment")
	cmd.MarkFlagsMutuallyExclusive("right", "left")
	cmd.MarkFlagsOneRequired("right", "left")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "CSV output path (default <video name>_sequence_annotations.csv)")
	cmd.Flags().StringVar(&opts.Config, "config", config.DefaultPath, "path to the YAML configuration file")
	cmd.Flags().IntVar(&opts.StartFrame, "start-frame", 0, "frame to open the video at")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "SQLite database to journal every annotation event to")
	cmd.Flags().BoolVar(&opts.Headless, "headless", false, "show frame info in the terminal instead of a window")

	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

func setupLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// checkInputs verifies the files that must exist before anything is opened
func checkInputs(videoPath, modelPath string) error {
	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("video file not found: %s", videoPath)
	}
	if _, err := os.Stat(modelPath); err != nil {
		return fmt.Errorf("keypoint model not found at %s", modelPath)
	}
	return nil
}
