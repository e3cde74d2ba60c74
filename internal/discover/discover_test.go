package discover_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/secomind/colint/internal/discover"
)

func createFile(t *testing.T, rootDirectory string, relativePath string) string {
	t.Helper()
	fullPath := filepath.Join(rootDirectory, relativePath)
	if makeError := os.MkdirAll(filepath.Dir(fullPath), 0o750); makeError != nil {
		t.Fatalf("mkdir: %v", makeError)
	}
	if writeError := os.WriteFile(fullPath, []byte("pass\n"), 0o600); writeError != nil {
		t.Fatalf("write: %v", writeError)
	}
	return fullPath
}

func TestCollectUnitsFiltersByExtensionAndGitignore(t *testing.T) {
	rootDirectory := t.TempDir()
	keptScript := createFile(t, rootDirectory, "pkg/module.py")
	keptNotebook := createFile(t, rootDirectory, "analysis.ipynb")
	createFile(t, rootDirectory, "README.md")
	createFile(t, rootDirectory, "build/generated.py")
	createFile(t, rootDirectory, ".git/hooks/sample.py")
	if writeError := os.WriteFile(filepath.Join(rootDirectory, ".gitignore"), []byte("# build artifacts\nbuild/\n"), 0o600); writeError != nil {
		t.Fatalf("write gitignore: %v", writeError)
	}

	collectedUnits, collectError := discover.CollectUnits(rootDirectory, discover.Options{
		Extensions:   []string{".py", ".ipynb"},
		UseGitignore: true,
	})
	if collectError != nil {
		t.Fatalf("unexpected error: %v", collectError)
	}

	expectedUnits := []string{keptNotebook, keptScript}
	if !reflect.DeepEqual(collectedUnits, expectedUnits) {
		t.Fatalf("expected %v, got %v", expectedUnits, collectedUnits)
	}
}

func TestCollectUnitsSingleFilePassesThrough(t *testing.T) {
	rootDirectory := t.TempDir()
	scriptPath := createFile(t, rootDirectory, "single.py")

	collectedUnits, collectError := discover.CollectUnits(scriptPath, discover.Options{Extensions: []string{".py"}})
	if collectError != nil {
		t.Fatalf("unexpected error: %v", collectError)
	}
	if !reflect.DeepEqual(collectedUnits, []string{scriptPath}) {
		t.Fatalf("expected single unit, got %v", collectedUnits)
	}
}

func TestCollectUnitsMissingPath(t *testing.T) {
	_, collectError := discover.CollectUnits(filepath.Join(t.TempDir(), "absent"), discover.Options{})
	if !errors.Is(collectError, discover.ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", collectError)
	}
}
