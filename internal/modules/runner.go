// Package modules invokes the four external media-processing programs as
// subprocesses and interprets their results. The programs themselves are
// opaque collaborators; the only contract is the argument shape, the exit
// status, and the thumbnail manifest emitted on stdout.
package modules

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner runs one external module invocation to completion and
// returns its captured standard output.
type CommandRunner interface {
	Run(ctx context.Context, argv []string) ([]byte, error)
}

type execRunner struct{}

// NewExecRunner returns a CommandRunner backed by os/exec.
func NewExecRunner() CommandRunner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		if detail != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", argv[0], err, detail)
		}
		return nil, fmt.Errorf("%s failed: %w", argv[0], err)
	}

	return stdout.Bytes(), nil
}
