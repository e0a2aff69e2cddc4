package annotation

import "errors"

var (
	ErrAlreadyStarted      = errors.New("interval already started")
	ErrNoOpenInterval      = errors.New("no interval started")
	ErrNonPositiveDuration = errors.New("stop frame must be after start frame")
)

// Store marks interval boundaries on a State
type Store struct {
	state *State
}

func NewStore(state *State) *Store {
	return &Store{state: state}
}

// MarkStart opens a new interval at the given frame
func (s *Store) MarkStart(at int) error {
	if s.state.hasOpen {
		return ErrAlreadyStarted
	}
	s.state.setOpen(at)
	return nil
}

// MarkStop closes the open interval at the given frame and commits it
func (s *Store) MarkStop(at int) (Interval, error) {
	start, ok := s.state.Open()
	if !ok {
		return Interval{}, ErrNoOpenInterval
	}
	if at <= start {
		return Interval{}, ErrNonPositiveDuration
	}

	iv := Interval{Start: start, Stop: at}
	s.state.Committed = append(s.state.Committed, iv)
	s.state.clearOpen()
	return iv, nil
}
