package engines

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/secomind/colint/internal/config"
)

const (
	flake8BinaryName           = "flake8"
	flake8ExtendIgnoreFlag     = "--extend-ignore"
	flake8MaxComplexityFlag    = "--max-complexity"
	flake8StdinDisplayNameFlag = "--stdin-display-name"
	flake8StdinArgument        = "-"
)

// Flake8Engine checks Python source through the flake8 binary. It only
// reports findings and never rewrites source.
type Flake8Engine struct {
	parameters config.Flake8Parameters
}

// NewFlake8Engine returns an engine configured with the given flake8 parameters.
func NewFlake8Engine(parameters config.Flake8Parameters) *Flake8Engine {
	return &Flake8Engine{parameters: parameters}
}

// Arguments returns the argument vector used for a stdin check of the unit at
// displayPath. Per-file ignore codes whose pattern matches displayPath are
// folded into the extend-ignore list. The configured quiet level is never
// forwarded: "-q" flags suppress the per-finding lines CheckSource parses.
func (engine *Flake8Engine) Arguments(displayPath string) []string {
	ignoredCodes := append([]string{}, engine.parameters.ExtendIgnore...)
	for pathPattern, errorCodes := range engine.parameters.PerFileIgnores {
		if pathMatchesPattern(displayPath, pathPattern) {
			ignoredCodes = append(ignoredCodes, errorCodes...)
		}
	}

	var arguments []string
	if len(ignoredCodes) > 0 {
		arguments = append(arguments, flake8ExtendIgnoreFlag, strings.Join(ignoredCodes, ","))
	}
	if engine.parameters.MaxComplexity >= 0 {
		arguments = append(arguments, flake8MaxComplexityFlag, fmt.Sprintf("%d", engine.parameters.MaxComplexity))
	}
	arguments = append(arguments, flake8StdinDisplayNameFlag, displayPath)
	return append(arguments, flake8StdinArgument)
}

// CheckSource pipes sourceText through flake8 and returns the finding lines.
// An empty slice means the source is clean.
func (engine *Flake8Engine) CheckSource(executionContext context.Context, displayPath string, sourceText string) ([]string, error) {
	result, runError := runEngine(executionContext, flake8BinaryName, engine.Arguments(displayPath), sourceText)
	if runError != nil {
		return nil, runError
	}
	if result.exitCode > 1 {
		return nil, fmt.Errorf("flake8 exited with status %d: %s", result.exitCode, result.stderr)
	}

	var findings []string
	for _, outputLine := range strings.Split(result.stdout, "\n") {
		trimmedLine := strings.TrimSpace(outputLine)
		if len(trimmedLine) > 0 {
			findings = append(findings, trimmedLine)
		}
	}
	return findings, nil
}

// pathMatchesPattern matches a unit path against a per-file-ignores pattern,
// comparing the unit's base name so patterns like "tests/*.py" apply to the
// file name they target.
func pathMatchesPattern(displayPath string, pathPattern string) bool {
	if matched, matchError := filepath.Match(pathPattern, displayPath); matchError == nil && matched {
		return true
	}
	patternBase := filepath.Base(pathPattern)
	matched, matchError := filepath.Match(patternBase, filepath.Base(displayPath))
	return matchError == nil && matched
}
