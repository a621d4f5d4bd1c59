//go:build !unix

package forkwork

import "os"

// Worker processes need AF_UNIX socket pairs inheritable across exec; no
// such primitive exists here, so construction fails up front.

func platformCheck() error {
	return ErrPlatformUnsupported
}

func newSocketPair() (*os.File, *os.File, error) {
	return nil, nil, ErrPlatformUnsupported
}

func readable(fd uintptr) (bool, error) {
	return false, ErrPlatformUnsupported
}
