// Package discover enumerates the source units an operation should process:
// Python scripts and notebooks under a root path, minus anything ignored by
// the repository's .gitignore.
package discover

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	gitIgnoreFileName    = ".gitignore"
	gitDirectoryName     = ".git"
	ignoreCommentMarker  = "#"
	pathSegmentSeparator = "/"
)

// ErrPathNotFound reports that the requested root path does not exist.
var ErrPathNotFound = errors.New("path not found")

// Options controls which files a walk yields.
type Options struct {
	// Extensions restricts results to the listed file extensions. Empty
	// means every file.
	Extensions []string
	// UseGitignore enables .gitignore pattern filtering.
	UseGitignore bool
}

// CollectUnits returns the files to process under rootPath in sorted order.
// A rootPath that is itself a file is returned as the single unit. A missing
// rootPath yields ErrPathNotFound.
func CollectUnits(rootPath string, options Options) ([]string, error) {
	rootInfo, statError := os.Stat(rootPath)
	if statError != nil {
		if os.IsNotExist(statError) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, rootPath)
		}
		return nil, fmt.Errorf("stat %s: %w", rootPath, statError)
	}
	if !rootInfo.IsDir() {
		return []string{rootPath}, nil
	}

	var ignorePatterns []string
	if options.UseGitignore {
		loadedPatterns, loadError := loadGitignorePatterns(filepath.Join(rootPath, gitIgnoreFileName))
		if loadError != nil {
			return nil, loadError
		}
		ignorePatterns = loadedPatterns
	}

	var collectedUnits []string
	walkError := filepath.WalkDir(rootPath, func(walkedPath string, directoryEntry os.DirEntry, accessError error) error {
		if accessError != nil {
			return accessError
		}
		relativePath, relativeError := filepath.Rel(rootPath, walkedPath)
		if relativeError != nil || relativePath == "." {
			return nil
		}
		if directoryEntry.IsDir() {
			if directoryEntry.Name() == gitDirectoryName {
				return filepath.SkipDir
			}
			if shouldIgnoreByPath(relativePath+pathSegmentSeparator, ignorePatterns) {
				return filepath.SkipDir
			}
			return nil
		}
		if shouldIgnoreByPath(relativePath, ignorePatterns) {
			return nil
		}
		if !matchesExtension(walkedPath, options.Extensions) {
			return nil
		}
		collectedUnits = append(collectedUnits, walkedPath)
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}

	sort.Strings(collectedUnits)
	return collectedUnits, nil
}

// matchesExtension reports whether the file carries one of the requested extensions.
func matchesExtension(filePath string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	fileExtension := filepath.Ext(filePath)
	for _, candidateExtension := range extensions {
		if fileExtension == candidateExtension {
			return true
		}
	}
	return false
}

// loadGitignorePatterns reads non-comment pattern lines from a .gitignore
// file. A missing file yields no patterns.
func loadGitignorePatterns(ignoreFilePath string) ([]string, error) {
	fileHandle, openError := os.Open(ignoreFilePath)
	if openError != nil {
		if os.IsNotExist(openError) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", ignoreFilePath, openError)
	}
	defer func() {
		if closeError := fileHandle.Close(); closeError != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", ignoreFilePath, closeError)
		}
	}()

	var ignorePatterns []string
	lineScanner := bufio.NewScanner(fileHandle)
	for lineScanner.Scan() {
		trimmedLine := strings.TrimSpace(lineScanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, ignoreCommentMarker) {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := lineScanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}

// shouldIgnoreByPath reports whether a slash-relative path matches any of the
// ignore patterns. A pattern with a trailing slash matches the directory and
// everything below it; a single-segment pattern matches the final path
// segment; a multi-segment pattern matches the exact path, with each segment
// evaluated using filepath.Match semantics.
func shouldIgnoreByPath(relativePath string, ignorePatterns []string) bool {
	normalizedPath := strings.TrimSuffix(filepath.ToSlash(relativePath), pathSegmentSeparator)
	pathSegments := strings.Split(normalizedPath, pathSegmentSeparator)
	lastSegment := pathSegments[len(pathSegments)-1]

	for _, patternValue := range ignorePatterns {
		normalizedPattern := strings.TrimPrefix(filepath.ToSlash(patternValue), pathSegmentSeparator)

		isDirectoryPattern := strings.HasSuffix(normalizedPattern, pathSegmentSeparator)
		trimmedPattern := strings.TrimSuffix(normalizedPattern, pathSegmentSeparator)
		patternSegments := strings.Split(trimmedPattern, pathSegmentSeparator)

		if isDirectoryPattern {
			if len(pathSegments) >= len(patternSegments) && segmentsMatch(pathSegments[:len(patternSegments)], patternSegments) {
				return true
			}
			continue
		}

		if len(patternSegments) == 1 {
			if isMatched, matchError := filepath.Match(patternSegments[0], lastSegment); matchError == nil && isMatched {
				return true
			}
			continue
		}

		if len(pathSegments) == len(patternSegments) && segmentsMatch(pathSegments, patternSegments) {
			return true
		}
	}

	return false
}

// segmentsMatch reports whether each pattern segment matches the
// corresponding path segment using filepath.Match semantics.
func segmentsMatch(pathSegments, patternSegments []string) bool {
	for segmentIndex, patternSegment := range patternSegments {
		if isMatched, matchError := filepath.Match(patternSegment, pathSegments[segmentIndex]); matchError != nil || !isMatched {
			return false
		}
	}
	return true
}
