package memory

import (
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"
)

// virtualMemory allows tests to stub the host memory query.
var virtualMemory = mem.VirtualMemory

// TotalMemoryBytes returns the total system memory in bytes.
// TODO: future scenario, consider container memory limits
func TotalMemoryBytes() (uint64, error) {
	vm, err := virtualMemory()
	if err != nil {
		return 0, fmt.Errorf("reading virtual memory: %w", err)
	}
	if vm == nil || vm.Total == 0 {
		return 0, errors.New("total memory not reported")
	}
	return vm.Total, nil
}
