package ocr

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/tanmayhire99/finrag/internal/core/ports/driven"
)

// ExecRunner runs commands through os/exec. It is the production
// CommandRunner.
type ExecRunner struct{}

var _ driven.CommandRunner = ExecRunner{}

// NewExecRunner returns the production command runner.
func NewExecRunner() ExecRunner {
	return ExecRunner{}
}

// Run executes the command and returns its combined output. The
// combined output matters: ocrmypdf and tesseract report failures on
// stderr.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s: %w: %s", name, err, firstLine(out))
	}
	return out, nil
}

// LookPath reports whether name resolves on PATH.
func (ExecRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// firstLine keeps error messages to one line of tool output.
func firstLine(out []byte) string {
	for i, b := range out {
		if b == '\n' {
			return string(out[:i])
		}
	}
	return string(out)
}
