package input

import (
	"errors"
	"fmt"
	"log/slog"

	"annotator/annotation"
	"annotator/feedback"
	"annotator/types"
)

// Command is a logical user command decoded from a key press
type Command int

const (
	None Command = iota
	Next
	Previous
	MarkStart
	MarkStop
	Quit
)

func (c Command) String() string {
	switch c {
	case Next:
		return "next"
	case Previous:
		return "previous"
	case MarkStart:
		return "mark_start"
	case MarkStop:
		return "mark_stop"
	case Quit:
		return "quit"
	default:
		return "none"
	}
}

// KeyToCommand maps a raw key code to a command. Only the low byte is significant.
func KeyToCommand(key int) Command {
	switch key & 0xFF {
	case 'q':
		return Quit
	case 'k':
		return Next
	case 'j':
		return Previous
	case '1':
		return MarkStart
	case '2':
		return MarkStop
	}
	return None
}

// Notice texts shown after a mark command
const (
	MsgStartMarked     = "Start Marked"
	MsgSequenceSaved   = "Sequence Saved"
	MsgAlreadyStarted  = "Error: Already Started"
	MsgStopBeforeStart = "Error: Stop < Start"
	MsgNoStart         = "Error: No Start Marked"
)

// ChangeKind names a state change worth journaling
type ChangeKind string

const (
	ChangeStartMarked   ChangeKind = "start_marked"
	ChangeSequenceSaved ChangeKind = "sequence_saved"
	ChangeStartDeleted  ChangeKind = "start_deleted"
	ChangeStartReopened ChangeKind = "start_reopened"
)

// Change describes one accepted state transition
type Change struct {
	Kind  ChangeKind
	Frame int
	Start int
	Stop  int
}

// Interpreter applies commands to the annotation state
type Interpreter struct {
	state  *annotation.State
	store  *annotation.Store
	nav    *annotation.Navigator
	board  *feedback.Board
	config types.FeedbackConfig
}

func NewInterpreter(state *annotation.State, nav *annotation.Navigator, board *feedback.Board, config types.FeedbackConfig) *Interpreter {
	return &Interpreter{
		state:  state,
		store:  annotation.NewStore(state),
		nav:    nav,
		board:  board,
		config: config,
	}
}

// ProcessKey decodes and handles a key press. It returns true when the session should end.
func (in *Interpreter) ProcessKey(key int) (bool, []Change) {
	return in.Handle(KeyToCommand(key))
}

// Handle applies one command. Domain errors become notices on the board and
// never end the session.
func (in *Interpreter) Handle(cmd Command) (bool, []Change) {
	switch cmd {
	case Quit:
		return true, nil

	case Next:
		_, events := in.nav.Advance()
		return false, in.rewound(events)

	case Previous:
		_, events := in.nav.Retreat()
		return false, in.rewound(events)

	case MarkStart:
		at := in.state.Current
		if err := in.store.MarkStart(at); err != nil {
			in.reject(cmd, err)
			return false, nil
		}
		in.board.Post(MsgStartMarked, in.config.ActionTurns)
		return false, []Change{{Kind: ChangeStartMarked, Frame: at, Start: at}}

	case MarkStop:
		at := in.state.Current
		iv, err := in.store.MarkStop(at)
		if err != nil {
			in.reject(cmd, err)
			return false, nil
		}
		in.board.Post(MsgSequenceSaved, in.config.ActionTurns)
		return false, []Change{{Kind: ChangeSequenceSaved, Frame: at, Start: iv.Start, Stop: iv.Stop}}
	}

	return false, nil
}

// rewound posts the last reconciliation event and converts all of them to changes
func (in *Interpreter) rewound(events []annotation.Event) []Change {
	if len(events) == 0 {
		return nil
	}

	changes := make([]Change, 0, len(events))
	for _, ev := range events {
		kind := ChangeStartDeleted
		if ev.Kind == annotation.StartReopened {
			kind = ChangeStartReopened
		}
		changes = append(changes, Change{Kind: kind, Frame: in.state.Current, Start: ev.Frame})
		slog.Debug("rewind reconciled", "event", ev.Message(), "frame", in.state.Current)
	}

	in.board.Post(events[len(events)-1].Message(), in.config.RewindTurns)
	return changes
}

func (in *Interpreter) reject(cmd Command, err error) {
	var msg string
	switch {
	case errors.Is(err, annotation.ErrAlreadyStarted):
		msg = MsgAlreadyStarted
	case errors.Is(err, annotation.ErrNonPositiveDuration):
		msg = MsgStopBeforeStart
	case errors.Is(err, annotation.ErrNoOpenInterval):
		msg = MsgNoStart
	default:
		msg = "Error: " + err.Error()
	}
	slog.Debug("command rejected", "command", cmd.String(), "frame", in.state.Current, "error", err)
	in.board.Post(msg, in.config.ActionTurns)
}

// PrintStartupInstructions prints the key bindings
func PrintStartupInstructions() {
	fmt.Println()
	fmt.Println("--- CONTROLS ---")
	fmt.Println(" [k] : Next Frame")
	fmt.Println(" [j] : Previous Frame")
	fmt.Println(" [1] : Mark Success START")
	fmt.Println(" [2] : Mark Success STOP")
	fmt.Println(" [q] : Save & Quit")
	fmt.Println("----------------")
	fmt.Println()
}
