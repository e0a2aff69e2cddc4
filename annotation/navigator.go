package annotation

// Navigator moves the current frame and reconciles the state after every move
type Navigator struct {
	state *State
	ended bool
}

func NewNavigator(state *State) *Navigator {
	return &Navigator{state: state}
}

// SetEnded records whether the frame at the current position could not be decoded
func (n *Navigator) SetEnded(ended bool) {
	n.ended = ended
}

// Ended reports whether the end of the stream was observed at the current position
func (n *Navigator) Ended() bool {
	return n.ended
}

// Advance moves one frame forward unless the end of the stream was reached
func (n *Navigator) Advance() (int, []Event) {
	if !n.ended {
		n.state.Current++
	}
	return n.state.Current, Reconcile(n.state)
}

// Retreat moves one frame back, staying at zero
func (n *Navigator) Retreat() (int, []Event) {
	if n.state.Current > 0 {
		n.state.Current--
	}
	return n.state.Current, Reconcile(n.state)
}
