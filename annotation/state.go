package annotation

import "fmt"

// Interval is a committed success sequence. Start is always less than Stop.
type Interval struct {
	Start int
	Stop  int
}

func (iv Interval) String() string {
	return fmt.Sprintf("(%d, %d)", iv.Start, iv.Stop)
}

// State is the complete mutable state of an annotation session.
// It is owned by the turn loop and handed by pointer to the store,
// the navigator and the reconciler.
type State struct {
	Current   int
	Committed []Interval

	openStart int
	hasOpen   bool
}

// NewState creates a session positioned at the given frame with no intervals
func NewState(start int) *State {
	if start < 0 {
		start = 0
	}
	return &State{Current: start}
}

// Open returns the start frame of the pending interval, if any
func (s *State) Open() (int, bool) {
	return s.openStart, s.hasOpen
}

// Last returns the most recently committed interval
func (s *State) Last() (Interval, bool) {
	if len(s.Committed) == 0 {
		return Interval{}, false
	}
	return s.Committed[len(s.Committed)-1], true
}

// Intervals returns a copy of the committed list
func (s *State) Intervals() []Interval {
	out := make([]Interval, len(s.Committed))
	copy(out, s.Committed)
	return out
}

func (s *State) setOpen(start int) {
	s.openStart = start
	s.hasOpen = true
}

func (s *State) clearOpen() {
	s.openStart = 0
	s.hasOpen = false
}

func (s *State) popLast() Interval {
	last := s.Committed[len(s.Committed)-1]
	s.Committed = s.Committed[:len(s.Committed)-1]
	return last
}
