package engines

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/secomind/colint/internal/config"
)

const (
	blackBinaryName        = "black"
	blackLineLengthFlag    = "--line-length"
	blackTargetVersionFlag = "--target-version"
	blackQuietFlag         = "--quiet"
	blackPreviewFlag       = "--preview"
	blackUnstableFlag      = "--unstable"
	blackStdinArgument     = "-"
)

// BlackEngine formats Python source through the black binary.
type BlackEngine struct {
	parameters config.BlackParameters
}

// NewBlackEngine returns an engine configured with the given black parameters.
func NewBlackEngine(parameters config.BlackParameters) *BlackEngine {
	return &BlackEngine{parameters: parameters}
}

// Arguments returns the argument vector used for a stdin formatting pass.
func (engine *BlackEngine) Arguments() []string {
	arguments := []string{blackQuietFlag, blackLineLengthFlag, strconv.Itoa(engine.parameters.LineLength)}
	for _, targetVersion := range engine.parameters.TargetVersions {
		arguments = append(arguments, blackTargetVersionFlag, blackCLITargetVersion(targetVersion))
	}
	if engine.parameters.Preview {
		arguments = append(arguments, blackPreviewFlag)
	}
	if engine.parameters.Unstable {
		arguments = append(arguments, blackUnstableFlag)
	}
	return append(arguments, blackStdinArgument)
}

// blackCLITargetVersion translates a configuration label into the token the
// black binary accepts: "py10" names Python 3.10, which black spells "py310".
func blackCLITargetVersion(configuredVersion string) string {
	return "py3" + strings.TrimPrefix(configuredVersion, "py")
}

// FormatSource pipes sourceText through black and returns the formatted text.
func (engine *BlackEngine) FormatSource(executionContext context.Context, sourceText string) (string, error) {
	result, runError := runEngine(executionContext, blackBinaryName, engine.Arguments(), sourceText)
	if runError != nil {
		return "", runError
	}
	if result.exitCode != 0 {
		return "", fmt.Errorf("black exited with status %d: %s", result.exitCode, result.stderr)
	}
	return result.stdout, nil
}
