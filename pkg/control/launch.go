package control

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/shlex"
)

var errEmptyCommand = errors.New("empty command line")

// startProcess allows tests to stub process creation.
var startProcess = func(argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// The child outlives this call; nothing waits on it.
	return cmd.Process.Release()
}

// splitCommandLine tokenizes a command line with shell quoting rules.
func splitCommandLine(commandLine string) ([]string, error) {
	if strings.TrimSpace(commandLine) == "" {
		return nil, errEmptyCommand
	}
	argv, err := shlex.Split(commandLine)
	if err != nil {
		return nil, fmt.Errorf("parsing command line: %w", err)
	}
	if len(argv) == 0 {
		return nil, errEmptyCommand
	}
	return argv, nil
}
