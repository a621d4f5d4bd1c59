package forkwork

import (
	"io"
	"os"
)

// DefaultFrameSize is the frame size used when none is configured.
const DefaultFrameSize = 1024

// Transport moves fixed-size frames over one half of a connected socket pair.
// Every frame is exactly frameSize bytes: the encoded message right-padded
// with ASCII spaces. The frame size is fixed at creation.
type Transport struct {
	f         *os.File
	frameSize int
}

func newTransport(f *os.File, frameSize int) *Transport {
	if frameSize < 1 {
		frameSize = DefaultFrameSize
	}
	return &Transport{f: f, frameSize: frameSize}
}

// FrameSize returns the fixed frame size in bytes.
func (t *Transport) FrameSize() int {
	return t.frameSize
}

// Send encodes v and writes it as one full frame. If the encoded text is
// larger than the frame size it returns an *OverflowError and writes nothing;
// partial frames never reach the wire.
func (t *Transport) Send(v any) error {
	text, err := Encode(v)
	if err != nil {
		return &TransportError{Op: "send", Err: err}
	}
	if len(text) > t.frameSize {
		return &OverflowError{MessageSize: len(text), FrameSize: t.frameSize}
	}

	frame := make([]byte, t.frameSize)
	n := copy(frame, text)
	for i := n; i < t.frameSize; i++ {
		frame[i] = ' '
	}

	if _, err := t.f.Write(frame); err != nil {
		return &TransportError{Op: "send", Err: err}
	}
	return nil
}

// Receive polls the transport without blocking. When no frame is pending it
// returns ok=false; otherwise it reads exactly one frame and decodes it.
func (t *Transport) Receive() (v any, ok bool, err error) {
	ready, err := readable(t.f.Fd())
	if err != nil {
		return nil, false, &TransportError{Op: "receive", Err: err}
	}
	if !ready {
		return nil, false, nil
	}

	frame := make([]byte, t.frameSize)
	n, err := io.ReadFull(t.f, frame)
	if n == 0 && err == io.EOF {
		// Peer closed without sending: nothing pending.
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &TransportError{Op: "receive", Err: err}
	}

	return Decode(string(frame)), true, nil
}

// Close releases the underlying descriptor. Closing twice surfaces the OS
// error; callers own exactly one Close per Transport.
func (t *Transport) Close() error {
	return t.f.Close()
}
