package annotation

import "fmt"

// EventKind identifies what a reconciliation pass changed
type EventKind int

const (
	// StartDeleted means the open interval began after the current frame and was dropped
	StartDeleted EventKind = iota
	// StartReopened means the last committed interval was popped and its start reopened
	StartReopened
)

// Event records one reconciliation rule firing
type Event struct {
	Kind  EventKind
	Frame int
}

// Message is the text shown to the user for the event
func (e Event) Message() string {
	switch e.Kind {
	case StartDeleted:
		return fmt.Sprintf("REWIND: Deleted 'Start' at %d", e.Frame)
	case StartReopened:
		return fmt.Sprintf("REWIND: Re-opened 'Start' at %d", e.Frame)
	default:
		return ""
	}
}

// Reconcile repairs the state after the current frame moved so that no
// open or committed interval claims frames at or after a boundary the user
// rewound past. Each pass fires at most one rule, most recent boundary
// first; the returned events are in firing order.
func Reconcile(s *State) []Event {
	var events []Event

	// each pop can be followed by one clear, plus one clear up front
	for passes := 2*len(s.Committed) + 1; passes > 0; passes-- {
		if start, ok := s.Open(); ok && s.Current < start {
			s.clearOpen()
			events = append(events, Event{Kind: StartDeleted, Frame: start})
			continue
		}

		last, ok := s.Last()
		if !ok || s.Current >= last.Stop {
			break
		}
		s.popLast()
		s.setOpen(last.Start)
		events = append(events, Event{Kind: StartReopened, Frame: last.Start})
	}

	return events
}
