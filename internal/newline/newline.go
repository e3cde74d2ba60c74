// Package newline verifies that text files end with a trailing newline and
// appends one when repair is requested.
package newline

import (
	"fmt"
	"os"
	"strings"
)

const (
	trailingNewline     = "\n"
	filePermissionsMask = 0o600
)

// Process inspects the file at filePath and reports whether its trailing
// newline is missing. With onlyCheck false the file is rewritten with the
// newline appended. Empty files are compliant.
func Process(filePath string, onlyCheck bool) (bool, error) {
	fileContent, readError := os.ReadFile(filePath)
	if readError != nil {
		return false, fmt.Errorf("read %s: %w", filePath, readError)
	}

	fileText := string(fileContent)
	if len(fileText) == 0 || strings.HasSuffix(fileText, trailingNewline) {
		return false, nil
	}
	if onlyCheck {
		return true, nil
	}

	if writeError := os.WriteFile(filePath, []byte(fileText+trailingNewline), filePermissionsMask); writeError != nil {
		return false, fmt.Errorf("write %s: %w", filePath, writeError)
	}
	return true, nil
}
