package recording

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"annotator/annotation"
)

// CSVHeader is the first row of every annotation file
var CSVHeader = []string{"Start Frame", "End Frame"}

// DefaultOutputPath derives "<video name>_sequence_annotations.csv" from the video path
func DefaultOutputPath(videoPath string) string {
	base := filepath.Base(videoPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return name + "_sequence_annotations.csv"
}

// WriteCSV writes the header and one row per interval
func WriteCSV(w io.Writer, intervals []annotation.Interval) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, iv := range intervals {
		if err := cw.Write([]string{strconv.Itoa(iv.Start), strconv.Itoa(iv.Stop)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the intervals to a file, replacing any existing one
func SaveCSV(path string, intervals []annotation.Interval) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}

	if err := WriteCSV(f, intervals); err != nil {
		f.Close()
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return f.Close()
}

// Persist saves the intervals at the end of a session. Nothing is written
// for an empty list. When the file cannot be written the intervals are
// dumped to console so no annotation work is lost.
func Persist(path string, intervals []annotation.Interval, console io.Writer) error {
	if len(intervals) == 0 {
		slog.Info("No sequences recorded, nothing saved")
		return nil
	}

	if err := SaveCSV(path, intervals); err != nil {
		fmt.Fprintf(console, "[ERROR] Could not save CSV: %v\n", err)
		fmt.Fprintln(console, "DUMPING DATA TO CONSOLE:")
		fmt.Fprintln(console, FormatIntervals(intervals))
		return err
	}

	fmt.Fprintf(console, "[SUCCESS] Saved %d annotations to %s\n", len(intervals), path)
	return nil
}

// FormatIntervals renders the list as "[(start, stop), ...]"
func FormatIntervals(intervals []annotation.Interval) string {
	parts := make([]string, len(intervals))
	for i, iv := range intervals {
		parts[i] = iv.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
