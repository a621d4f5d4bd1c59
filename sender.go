package forkwork

// WorkFunc is a unit of work executed in an isolated worker process, or
// inline under debug mode. It receives the send capability for its channel as
// an explicit first parameter and reports success with its return value; the
// launcher observes that boolean as the worker's exit code.
type WorkFunc func(s *Sender, args ...any) bool

// Sender is the one-directional send capability injected into a work
// function. It is bound to exactly one channel's worker side.
type Sender struct {
	ch *channel   // launcher-side (debug mode) binding
	t  *Transport // worker-process binding, rebuilt from the inherited fd
}

// Send reports one message back to the launcher. Messages larger than the
// channel's frame size fail with an *OverflowError and nothing is sent.
func (s *Sender) Send(v any) error {
	if s.ch != nil {
		return s.ch.send(v)
	}
	return s.t.Send(v)
}

// FrameSize returns the frame size of the bound channel.
func (s *Sender) FrameSize() int {
	if s.ch != nil {
		return s.ch.worker.FrameSize()
	}
	return s.t.FrameSize()
}
