package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/secomind/colint/internal/config"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	configDirectory := t.TempDir()
	configPath := filepath.Join(configDirectory, config.DefaultConfigFileName)
	if writeError := os.WriteFile(configPath, []byte(contents), 0o600); writeError != nil {
		t.Fatalf("write config: %v", writeError)
	}
	return configDirectory
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	parameters, loadError := config.Load(config.LoadOptions{WorkingDirectory: t.TempDir()})
	if loadError != nil {
		t.Fatalf("unexpected error: %v", loadError)
	}
	if parameters.Colint.LineLength != config.DefaultLineLength {
		t.Fatalf("expected default line length %d, got %d", config.DefaultLineLength, parameters.Colint.LineLength)
	}
	if parameters.Flake8.Quiet != 2 {
		t.Fatalf("expected default flake8 quiet level 2, got %d", parameters.Flake8.Quiet)
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, loadError := config.Load(config.LoadOptions{
		WorkingDirectory: t.TempDir(),
		ExplicitFilePath: "nope.toml",
	})
	if !errors.Is(loadError, config.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", loadError)
	}
}

func TestLoadToolTables(t *testing.T) {
	configDirectory := writeConfigFile(t, `
[tool.colint]
line_length = 100

[tool.isort]
profile = "black"

[tool.flake8]
extend-ignore = ["E203", "W503"]
max-complexity = 12
per-file-ignores = """
__init__.py: F401
legacy.py: E501, W291
"""

[tool.black]
target-version = ["py11"]
line_length = 100
preview = true
`)

	parameters, loadError := config.Load(config.LoadOptions{WorkingDirectory: configDirectory})
	if loadError != nil {
		t.Fatalf("unexpected error: %v", loadError)
	}
	if parameters.Colint.LineLength != 100 {
		t.Fatalf("expected line length 100, got %d", parameters.Colint.LineLength)
	}
	if parameters.Isort.Profile != "black" {
		t.Fatalf("expected isort profile black, got %q", parameters.Isort.Profile)
	}
	if !reflect.DeepEqual(parameters.Flake8.ExtendIgnore, []string{"E203", "W503"}) {
		t.Fatalf("expected extend-ignore decoded, got %v", parameters.Flake8.ExtendIgnore)
	}
	expectedIgnores := map[string][]string{
		"__init__.py": {"F401"},
		"legacy.py":   {"E501", "W291"},
	}
	if !reflect.DeepEqual(parameters.Flake8.PerFileIgnores, expectedIgnores) {
		t.Fatalf("expected per-file ignores %v, got %v", expectedIgnores, parameters.Flake8.PerFileIgnores)
	}
	if !parameters.Black.Preview {
		t.Fatalf("expected black preview enabled")
	}
	if !reflect.DeepEqual(parameters.Black.TargetVersions, []string{"py11"}) {
		t.Fatalf("expected target versions [py11], got %v", parameters.Black.TargetVersions)
	}
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	configDirectory := writeConfigFile(t, "[tool.colint\nline_length = ???\n")
	_, loadError := config.Load(config.LoadOptions{WorkingDirectory: configDirectory})
	if !errors.Is(loadError, config.ErrConfigNotValid) {
		t.Fatalf("expected ErrConfigNotValid, got %v", loadError)
	}
}

func TestLoadRejectsUnsupportedTargetVersion(t *testing.T) {
	configDirectory := writeConfigFile(t, "[tool.black]\ntarget-version = [\"py99\"]\n")
	_, loadError := config.Load(config.LoadOptions{WorkingDirectory: configDirectory})
	if !errors.Is(loadError, config.ErrUnsupportedTargetVersion) {
		t.Fatalf("expected ErrUnsupportedTargetVersion, got %v", loadError)
	}
}

func TestParsePerFileIgnoresRejectsMissingSeparator(t *testing.T) {
	_, parseError := config.ParsePerFileIgnores("not a valid entry")
	if !errors.Is(parseError, config.ErrInvalidPerFileIgnore) {
		t.Fatalf("expected ErrInvalidPerFileIgnore, got %v", parseError)
	}
}
