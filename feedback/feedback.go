package feedback

// Board holds the single transient notice shown under the frame.
// Its lifetime is counted in rendered turns, not wall-clock time.
type Board struct {
	message   string
	remaining int
}

// Post replaces the current notice with message for the given number of turns
func (b *Board) Post(message string, turns int) {
	b.message = message
	b.remaining = turns
}

// Current returns the notice if it still has turns left
func (b *Board) Current() (string, bool) {
	if b.remaining <= 0 {
		return "", false
	}
	return b.message, true
}

// Tick consumes one turn of the notice's lifetime
func (b *Board) Tick() {
	if b.remaining > 0 {
		b.remaining--
	}
}

// Remaining returns how many more turns the notice will be shown
func (b *Board) Remaining() int {
	return b.remaining
}
