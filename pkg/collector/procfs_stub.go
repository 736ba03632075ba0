//go:build !linux
// +build !linux

package collector

import (
	"errors"
	"fmt"

	"github.com/srodi/procwatch/pkg/types"
)

var errUnsupported = errors.New("procfs source requires linux")

// ProcfsSource is a placeholder on non-Linux platforms.
type ProcfsSource struct{}

// NewProcfsSource returns a source that always fails off Linux.
func NewProcfsSource(root string) *ProcfsSource {
	return &ProcfsSource{}
}

// Acquire always fails on unsupported platforms.
func (s *ProcfsSource) Acquire() ([]types.ProcessRecord, error) {
	return nil, fmt.Errorf("%w: %w", ErrSnapshotUnavailable, errUnsupported)
}
