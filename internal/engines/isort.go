package engines

import (
	"context"
	"fmt"

	"github.com/secomind/colint/internal/config"
)

const (
	isortBinaryName    = "isort"
	isortProfileFlag   = "--profile"
	isortQuietFlag     = "--quiet"
	isortStdinArgument = "-"
)

// IsortEngine sorts Python import blocks through the isort binary.
type IsortEngine struct {
	parameters config.IsortParameters
}

// NewIsortEngine returns an engine configured with the given isort parameters.
func NewIsortEngine(parameters config.IsortParameters) *IsortEngine {
	return &IsortEngine{parameters: parameters}
}

// Arguments returns the argument vector used for a stdin sorting pass.
func (engine *IsortEngine) Arguments() []string {
	arguments := []string{isortQuietFlag}
	if engine.parameters.Profile != "" {
		arguments = append(arguments, isortProfileFlag, engine.parameters.Profile)
	}
	return append(arguments, isortStdinArgument)
}

// SortSource pipes sourceText through isort and returns the sorted text.
func (engine *IsortEngine) SortSource(executionContext context.Context, sourceText string) (string, error) {
	result, runError := runEngine(executionContext, isortBinaryName, engine.Arguments(), sourceText)
	if runError != nil {
		return "", runError
	}
	if result.exitCode != 0 {
		return "", fmt.Errorf("isort exited with status %d: %s", result.exitCode, result.stderr)
	}
	return result.stdout, nil
}
