// Package config loads the colint tool parameters from a TOML file using the
// pyproject-style [tool.*] table layout.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigFileName is the configuration file looked up in the
	// working directory when no explicit path is given.
	DefaultConfigFileName = "colint.toml"
	// DefaultLineLength is the wrap width applied when no configuration
	// overrides it.
	DefaultLineLength = 88

	toolTableKey           = "tool"
	colintTableKey         = "colint"
	isortTableKey          = "isort"
	flake8TableKey         = "flake8"
	blackTableKey          = "black"
	perFileIgnoreSeparator = ":"

	defaultFlake8Quiet         = 2
	defaultFlake8MaxComplexity = -1
)

// Typed configuration failures surfaced to the CLI.
var (
	ErrConfigNotFound           = errors.New("configuration file not found")
	ErrConfigNotValid           = errors.New("configuration file is not valid TOML")
	ErrInvalidPerFileIgnore     = errors.New("invalid per-file-ignores entry")
	ErrUnsupportedTargetVersion = errors.New("unsupported black target version")
)

// supportedBlackTargetVersions is the closed set of accepted target-version values.
var supportedBlackTargetVersions = map[string]struct{}{
	"py3": {}, "py4": {}, "py5": {}, "py6": {}, "py7": {}, "py8": {},
	"py9": {}, "py10": {}, "py11": {}, "py12": {}, "py13": {},
}

// Parameters aggregates the per-tool configuration tables.
type Parameters struct {
	Colint ColintParameters
	Isort  IsortParameters
	Flake8 Flake8Parameters
	Black  BlackParameters
}

// ColintParameters configures the docstring and comment reflow engine.
type ColintParameters struct {
	LineLength int `mapstructure:"line_length"`
}

// IsortParameters configures the import sorter engine.
type IsortParameters struct {
	Profile string `mapstructure:"profile"`
}

// Flake8Parameters configures the style checker engine.
type Flake8Parameters struct {
	PerFileIgnoresRaw string   `mapstructure:"per-file-ignores"`
	ExtendIgnore      []string `mapstructure:"extend-ignore"`
	MaxComplexity     int      `mapstructure:"max-complexity"`
	// Quiet is accepted so existing configuration files keep loading, but it
	// is never passed to flake8: quiet levels hide the finding lines the
	// check relies on.
	Quiet int `mapstructure:"quiet"`

	// PerFileIgnores is parsed from PerFileIgnoresRaw during loading.
	PerFileIgnores map[string][]string `mapstructure:"-"`
}

// BlackParameters configures the code formatter engine.
type BlackParameters struct {
	TargetVersions []string `mapstructure:"target-version"`
	LineLength     int      `mapstructure:"line_length"`
	Preview        bool     `mapstructure:"preview"`
	Unstable       bool     `mapstructure:"unstable"`
}

// LoadOptions controls configuration discovery.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// Default returns the parameters used when no configuration file exists.
func Default() Parameters {
	return Parameters{
		Colint: ColintParameters{LineLength: DefaultLineLength},
		Flake8: Flake8Parameters{
			MaxComplexity:  defaultFlake8MaxComplexity,
			Quiet:          defaultFlake8Quiet,
			PerFileIgnores: map[string][]string{},
		},
		Black: BlackParameters{
			TargetVersions: []string{"py10"},
			LineLength:     DefaultLineLength,
		},
	}
}

// Load reads tool parameters from the resolved configuration file. A missing
// implicit file falls back to defaults; a missing explicit file is an error.
func Load(options LoadOptions) (Parameters, error) {
	configPath, resolveError := resolveConfigPath(options)
	if resolveError != nil {
		return Parameters{}, resolveError
	}

	if _, statError := os.Stat(configPath); statError != nil {
		if os.IsNotExist(statError) {
			if options.ExplicitFilePath != "" {
				return Parameters{}, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
			}
			return Default(), nil
		}
		return Parameters{}, fmt.Errorf("stat configuration %s: %w", configPath, statError)
	}

	reader := viper.New()
	reader.SetConfigFile(configPath)
	reader.SetConfigType("toml")
	if readError := reader.ReadInConfig(); readError != nil {
		return Parameters{}, fmt.Errorf("%w: %s: %v", ErrConfigNotValid, configPath, readError)
	}

	parameters := Default()
	toolTable := reader.Sub(toolTableKey)
	if toolTable == nil {
		return parameters, nil
	}
	if decodeError := decodeToolTable(toolTable, colintTableKey, &parameters.Colint); decodeError != nil {
		return Parameters{}, decodeError
	}
	if decodeError := decodeToolTable(toolTable, isortTableKey, &parameters.Isort); decodeError != nil {
		return Parameters{}, decodeError
	}
	if decodeError := decodeToolTable(toolTable, flake8TableKey, &parameters.Flake8); decodeError != nil {
		return Parameters{}, decodeError
	}
	if decodeError := decodeToolTable(toolTable, blackTableKey, &parameters.Black); decodeError != nil {
		return Parameters{}, decodeError
	}

	perFileIgnores, parseError := ParsePerFileIgnores(parameters.Flake8.PerFileIgnoresRaw)
	if parseError != nil {
		return Parameters{}, parseError
	}
	parameters.Flake8.PerFileIgnores = perFileIgnores

	for _, targetVersion := range parameters.Black.TargetVersions {
		if _, supported := supportedBlackTargetVersions[targetVersion]; !supported {
			return Parameters{}, fmt.Errorf("%w: %s", ErrUnsupportedTargetVersion, targetVersion)
		}
	}

	return parameters, nil
}

// decodeToolTable unmarshals one [tool.<name>] table when present.
func decodeToolTable(toolTable *viper.Viper, tableName string, target any) error {
	tableReader := toolTable.Sub(tableName)
	if tableReader == nil {
		return nil
	}
	if decodeError := tableReader.Unmarshal(target); decodeError != nil {
		return fmt.Errorf("decode [%s.%s]: %w", toolTableKey, tableName, decodeError)
	}
	return nil
}

// ParsePerFileIgnores parses the flake8 multi-line "path: CODE, CODE" format
// into a map keyed by path pattern.
func ParsePerFileIgnores(rawValue string) (map[string][]string, error) {
	perFileIgnores := map[string][]string{}
	for _, rawLine := range strings.Split(rawValue, "\n") {
		trimmedLine := strings.TrimSpace(rawLine)
		if len(trimmedLine) == 0 {
			continue
		}
		separatorIndex := strings.Index(trimmedLine, perFileIgnoreSeparator)
		if separatorIndex < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPerFileIgnore, trimmedLine)
		}
		pathPattern := strings.TrimSpace(trimmedLine[:separatorIndex])
		var errorCodes []string
		for _, errorCode := range strings.Split(trimmedLine[separatorIndex+1:], ",") {
			errorCodes = append(errorCodes, strings.TrimSpace(errorCode))
		}
		perFileIgnores[pathPattern] = errorCodes
	}
	return perFileIgnores, nil
}

// resolveConfigPath resolves the configuration file location, preferring an
// explicit path over the working-directory default.
func resolveConfigPath(options LoadOptions) (string, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return "", fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}
	if options.ExplicitFilePath != "" {
		if filepath.IsAbs(options.ExplicitFilePath) {
			return options.ExplicitFilePath, nil
		}
		return filepath.Join(workingDirectory, options.ExplicitFilePath), nil
	}
	return filepath.Join(workingDirectory, DefaultConfigFileName), nil
}
