//go:build linux

package main

import "golang.org/x/sys/unix"

// disableInputEcho turns off stdin echo so keystrokes do not scribble over the view.
func disableInputEcho(fd int) (func(), error) {
	state, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, err
	}

	updated := *state
	updated.Lflag &^= unix.ECHO
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &updated); err != nil {
		return nil, err
	}

	return func() {
		_ = unix.IoctlSetTermios(fd, unix.TCSETS, state)
	}, nil
}
