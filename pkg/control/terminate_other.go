//go:build !unix && !windows

package control

import "errors"

var errUnsupported = errors.New("process termination is not supported on this platform")

func terminate(pid uint32, force bool) error {
	return errUnsupported
}
