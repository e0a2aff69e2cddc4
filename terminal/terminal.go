// Package terminal renders annotation sessions as text on a raw terminal,
// for running without a display server.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"annotator/session"
)

// ANSI escape sequences
const (
	ClearScreen = "\033[2J"
	CursorHome  = "\033[H"
	Reset       = "\033[0m"
	FgRed       = "\033[31m"
	FgGreen     = "\033[32m"
	FgYellow    = "\033[33m"
)

const (
	keyCtrlC = 0x03
	keyCtrlD = 0x04
)

// Display prints each turn to out and reads single key presses from in
type Display struct {
	in       io.Reader
	out      io.Writer
	reader   *bufio.Reader
	oldState *term.State
	fd       int
}

// New creates a Display. Call EnterRaw before the first WaitKey when in is a terminal.
func New(in io.Reader, out io.Writer) *Display {
	return &Display{
		in:     in,
		out:    out,
		reader: bufio.NewReaderSize(in, 64),
		fd:     -1,
	}
}

// EnterRaw puts the input terminal into raw mode so keys arrive unbuffered.
// It does nothing when the input is not a terminal.
func (d *Display) EnterRaw() error {
	f, ok := d.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	if d.oldState != nil {
		return fmt.Errorf("terminal already in raw mode")
	}

	fd := int(f.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	d.oldState = oldState
	d.fd = fd
	return nil
}

// Close restores the terminal. Safe to call when not in raw mode.
func (d *Display) Close() error {
	if d.oldState == nil {
		return nil
	}
	if err := term.Restore(d.fd, d.oldState); err != nil {
		return fmt.Errorf("failed to restore terminal: %w", err)
	}
	d.oldState = nil
	return nil
}

// Render redraws the screen with the info lines, the overlay corners and the notice
func (d *Display) Render(view session.View) error {
	var b strings.Builder
	b.WriteString(ClearScreen + CursorHome)

	for _, line := range view.Lines() {
		b.WriteString(toneColor(line.Tone) + line.Text + Reset + "\r\n")
	}

	b.WriteString(FormatContour(view) + "\r\n")

	if view.Notice != "" {
		b.WriteString("\r\n" + FgRed + view.Notice + Reset + "\r\n")
	}

	_, err := io.WriteString(d.out, b.String())
	return err
}

// WaitKey blocks for one key press. Ctrl+C, Ctrl+D and end of input count as quit.
func (d *Display) WaitKey() int {
	c, err := d.reader.ReadByte()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			fmt.Fprintf(d.out, "error reading key: %v\r\n", err)
		}
		return 'q'
	}
	if c == keyCtrlC || c == keyCtrlD {
		return 'q'
	}
	return int(c)
}

// FormatContour describes the overlay polygon in one line
func FormatContour(view session.View) string {
	if view.Ended || view.Contour == nil {
		return "Overlay: none"
	}
	parts := make([]string, len(view.Contour))
	for i, p := range view.Contour {
		parts[i] = fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}
	return "Overlay: " + strings.Join(parts, " ")
}

func toneColor(t session.Tone) string {
	switch t {
	case session.ToneActive:
		return FgYellow
	case session.ToneWarning:
		return FgRed
	default:
		return FgGreen
	}
}
