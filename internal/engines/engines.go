// Package engines wraps the external formatter, import sorter, and style
// checker binaries the tool orchestrates. Each engine pipes source text
// through its binary so script files and notebook cells are handled the same way.
package engines

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrEngineNotFound reports that an engine binary is not installed on PATH.
var ErrEngineNotFound = errors.New("engine binary not found")

// commandResult captures one engine invocation.
type commandResult struct {
	stdout   string
	stderr   string
	exitCode int
}

// runEngine pipes stdinText through the named binary and returns its output.
// A missing binary maps to ErrEngineNotFound; a non-zero exit is reported via
// exitCode, not as an error, because the engines use it to signal findings.
func runEngine(executionContext context.Context, binaryName string, arguments []string, stdinText string) (commandResult, error) {
	binaryPath, lookupError := exec.LookPath(binaryName)
	if lookupError != nil {
		return commandResult{}, fmt.Errorf("%w: %s", ErrEngineNotFound, binaryName)
	}

	// #nosec G204
	engineCommand := exec.CommandContext(executionContext, binaryPath, arguments...)
	engineCommand.Stdin = strings.NewReader(stdinText)
	var stdoutBuffer bytes.Buffer
	var stderrBuffer bytes.Buffer
	engineCommand.Stdout = &stdoutBuffer
	engineCommand.Stderr = &stderrBuffer

	runError := engineCommand.Run()
	if runError != nil {
		var exitError *exec.ExitError
		if errors.As(runError, &exitError) {
			return commandResult{
				stdout:   stdoutBuffer.String(),
				stderr:   stderrBuffer.String(),
				exitCode: exitError.ExitCode(),
			}, nil
		}
		return commandResult{}, fmt.Errorf("run %s: %w", binaryName, runError)
	}

	return commandResult{stdout: stdoutBuffer.String(), stderr: stderrBuffer.String()}, nil
}
