package forkwork

import (
	"os"
	"sync"
)

// channel owns both halves of one connected pair: the worker-side Transport a
// spawned process sends on, and the launcher-side Transport its messages are
// drained from. One channel serves exactly one worker process.
type channel struct {
	launcher *Transport
	worker   *Transport
	orc      *Orchestrator

	mu           sync.Mutex
	closed       bool
	workerClosed bool
}

func newChannel(orc *Orchestrator, frameSize int) (*channel, error) {
	lf, wf, err := newSocketPair()
	if err != nil {
		return nil, &TransportCreateError{Err: err}
	}

	return &channel{
		launcher: newTransport(lf, frameSize),
		worker:   newTransport(wf, frameSize),
		orc:      orc,
	}, nil
}

// workerFile exposes the worker half for exec.Cmd.ExtraFiles.
func (c *channel) workerFile() *os.File {
	return c.worker.f
}

// send forwards to the worker-side Transport. In debug mode the transport is
// bypassed entirely: the value is round-tripped through the codec and appended
// straight to the orchestrator's message list, so serialization bugs in work
// functions surface in the launcher instead of dying with a child process.
func (c *channel) send(v any) error {
	if c.orc != nil && c.orc.debugging() {
		text, err := Encode(v)
		if err != nil {
			return &TransportError{Op: "send", Err: err}
		}
		c.orc.AddMessage(Decode(text))
		return nil
	}
	return c.worker.Send(v)
}

// receive forwards to the launcher-side Transport.
func (c *channel) receive() (any, bool, error) {
	return c.launcher.Receive()
}

// closeWorker closes the launcher's copy of the worker half once the child
// process owns it, so the launcher sees EOF when the child exits.
func (c *channel) closeWorker() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.workerClosed {
		return nil
	}
	c.workerClosed = true
	return c.worker.Close()
}

// close closes both halves. Idempotent: the second and later calls are no-ops.
func (c *channel) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	err := c.launcher.Close()
	if !c.workerClosed {
		c.workerClosed = true
		if werr := c.worker.Close(); err == nil {
			err = werr
		}
	}
	return err
}
