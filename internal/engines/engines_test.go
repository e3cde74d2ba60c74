package engines_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/secomind/colint/internal/config"
	"github.com/secomind/colint/internal/engines"
)

func TestBlackEngineArguments(t *testing.T) {
	testCases := []struct {
		name              string
		parameters        config.BlackParameters
		expectedArguments string
	}{
		{
			name:              "defaults translate the target version",
			parameters:        config.BlackParameters{LineLength: 88, TargetVersions: []string{"py10"}},
			expectedArguments: "--quiet --line-length 88 --target-version py310 -",
		},
		{
			name: "multiple target versions with preview",
			parameters: config.BlackParameters{
				LineLength:     100,
				TargetVersions: []string{"py11", "py12"},
				Preview:        true,
			},
			expectedArguments: "--quiet --line-length 100 --target-version py311 --target-version py312 --preview -",
		},
		{
			name:              "oldest and newest supported versions",
			parameters:        config.BlackParameters{LineLength: 88, TargetVersions: []string{"py3", "py13"}},
			expectedArguments: "--quiet --line-length 88 --target-version py33 --target-version py313 -",
		},
		{
			name:              "unstable requires flag",
			parameters:        config.BlackParameters{LineLength: 88, Unstable: true},
			expectedArguments: "--quiet --line-length 88 --unstable -",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			arguments := strings.Join(engines.NewBlackEngine(testCase.parameters).Arguments(), " ")
			if arguments != testCase.expectedArguments {
				t.Fatalf("expected arguments %q, got %q", testCase.expectedArguments, arguments)
			}
		})
	}
}

func TestIsortEngineArguments(t *testing.T) {
	testCases := []struct {
		name              string
		parameters        config.IsortParameters
		expectedArguments string
	}{
		{
			name:              "no profile",
			parameters:        config.IsortParameters{},
			expectedArguments: "--quiet -",
		},
		{
			name:              "black profile",
			parameters:        config.IsortParameters{Profile: "black"},
			expectedArguments: "--quiet --profile black -",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			arguments := strings.Join(engines.NewIsortEngine(testCase.parameters).Arguments(), " ")
			if arguments != testCase.expectedArguments {
				t.Fatalf("expected arguments %q, got %q", testCase.expectedArguments, arguments)
			}
		})
	}
}

func TestFlake8EngineArguments(t *testing.T) {
	testCases := []struct {
		name              string
		parameters        config.Flake8Parameters
		displayPath       string
		expectedArguments string
	}{
		{
			name:              "defaults omit complexity",
			parameters:        config.Flake8Parameters{MaxComplexity: -1},
			displayPath:       "src/module.py",
			expectedArguments: "--stdin-display-name src/module.py -",
		},
		{
			name: "extend ignore with complexity",
			parameters: config.Flake8Parameters{
				ExtendIgnore:  []string{"E203", "W503"},
				MaxComplexity: 10,
			},
			displayPath:       "src/module.py",
			expectedArguments: "--extend-ignore E203,W503 --max-complexity 10 --stdin-display-name src/module.py -",
		},
		{
			name: "per file ignores apply to matching unit",
			parameters: config.Flake8Parameters{
				MaxComplexity:  -1,
				PerFileIgnores: map[string][]string{"__init__.py": {"F401"}},
			},
			displayPath:       "package/__init__.py",
			expectedArguments: "--extend-ignore F401 --stdin-display-name package/__init__.py -",
		},
		{
			name: "quiet level is never forwarded",
			parameters: config.Flake8Parameters{
				MaxComplexity: -1,
				Quiet:         2,
			},
			displayPath:       "src/module.py",
			expectedArguments: "--stdin-display-name src/module.py -",
		},
		{
			name: "per file ignores skip other units",
			parameters: config.Flake8Parameters{
				MaxComplexity:  -1,
				PerFileIgnores: map[string][]string{"__init__.py": {"F401"}},
			},
			displayPath:       "package/module.py",
			expectedArguments: "--stdin-display-name package/module.py -",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			arguments := strings.Join(engines.NewFlake8Engine(testCase.parameters).Arguments(testCase.displayPath), " ")
			if arguments != testCase.expectedArguments {
				t.Fatalf("expected arguments %q, got %q", testCase.expectedArguments, arguments)
			}
		})
	}
}

func TestMissingBinaryReportsEngineNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	engine := engines.NewBlackEngine(config.BlackParameters{LineLength: 88})
	_, formatError := engine.FormatSource(context.Background(), "x = 1\n")
	if !errors.Is(formatError, engines.ErrEngineNotFound) {
		t.Fatalf("expected ErrEngineNotFound, got %v", formatError)
	}
}
