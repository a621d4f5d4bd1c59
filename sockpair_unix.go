//go:build unix

package forkwork

import (
	"os"

	"golang.org/x/sys/unix"
)

// platformCheck reports whether this platform can create socket pairs and
// spawn worker processes.
func platformCheck() error {
	return nil
}

// newSocketPair returns the two halves of a connected AF_UNIX stream pair,
// launcher side first.
func newSocketPair() (*os.File, *os.File, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, nil, err
	}

	launcher := os.NewFile(uintptr(fds[0]), "forkwork-launcher")
	worker := os.NewFile(uintptr(fds[1]), "forkwork-worker")
	return launcher, worker, nil
}

// readable reports whether fd has pending data (or a closed peer), without
// blocking.
func readable(fd uintptr) (bool, error) {
	pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(pfd, 0)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		return n > 0 && pfd[0].Revents&(unix.POLLIN|unix.POLLHUP) != 0, nil
	}
}
