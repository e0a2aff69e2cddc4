package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"annotator/input"
	"annotator/recording"
)

// HistoryOptions holds flags for the history command
type HistoryOptions struct {
	*RootOptions
	Database string
	Session  string
}

// NewHistoryCommand creates the history command
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled annotation sessions",
		Long: `List the sessions recorded in an annotation journal, or the events
of a single session.

Example:
  annotator history --journal annotations.db
  annotator history --journal annotations.db --session 6f1c...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "journal", "", "path to the SQLite journal (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().StringVar(&opts.Session, "session", "", "show the events of one session")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	journal, err := recording.OpenJournal(opts.Database)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer journal.Close()

	out := cmd.OutOrStdout()
	if opts.Session != "" {
		return printEntries(ctx, out, journal, opts.Session)
	}
	return printSessions(ctx, out, journal)
}

func printSessions(ctx context.Context, out io.Writer, journal *recording.Journal) error {
	sessions, err := journal.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded")
		return nil
	}

	for _, s := range sessions {
		status := fmt.Sprintf("saved %d", s.Saved)
		if s.EndedAt.IsZero() {
			status = "unfinished"
		}
		fmt.Fprintf(out, "%s  %s  %-5s  %-10s  %s\n",
			s.ID, s.StartedAt.Local().Format("2006-01-02 15:04"), s.Handedness, status, s.Video)
	}
	return nil
}

func printEntries(ctx context.Context, out io.Writer, journal *recording.Journal, sessionID string) error {
	entries, err := journal.Entries(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to read session %s: %w", sessionID, err)
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "No events recorded for session %s\n", sessionID)
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(out, "%4d  %-15s  frame %d", e.Seq, e.Kind, e.Frame)
		switch e.Kind {
		case string(input.ChangeSequenceSaved):
			fmt.Fprintf(out, "  (%d, %d)", e.Start, e.Stop)
		case string(input.ChangeStartDeleted), string(input.ChangeStartReopened):
			fmt.Fprintf(out, "  start %d", e.Start)
		}
		fmt.Fprintln(out)
	}
	return nil
}
