package forkwork

import (
	"fmt"
	"os"
	"strconv"
)

// Main dispatches worker-mode execution. Host programs call it at the top of
// main (and tests call it in TestMain), after all Register calls. In a
// launcher process it returns immediately with no effect. In a process
// spawned by Run it rebuilds the channel from the inherited descriptor, runs
// the requested work function and terminates the process: exit code 0 when
// the function returned true, 1 otherwise. It never returns in a worker
// process.
func Main() {
	if !inWorkerProcess() {
		return
	}
	os.Exit(workerMain())
}

func workerMain() int {
	name := os.Getenv(envWorkName)
	fn, err := lookupWork(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "forkwork worker: %v\n", err)
		return 1
	}

	frameSize := DefaultFrameSize
	if v := os.Getenv(envFrameSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fmt.Fprintf(os.Stderr, "forkwork worker: bad frame size %q\n", v)
			return 1
		}
		frameSize = n
	}

	args, err := unpackArgs(os.Getenv(envArgs))
	if err != nil {
		fmt.Fprintf(os.Stderr, "forkwork worker: %v\n", err)
		return 1
	}

	f := os.NewFile(channelFd, "forkwork-channel")
	if f == nil {
		fmt.Fprintln(os.Stderr, "forkwork worker: channel descriptor missing")
		return 1
	}
	t := newTransport(f, frameSize)
	defer t.Close()

	if fn(&Sender{t: t}, args...) {
		return 0
	}
	return 1
}
