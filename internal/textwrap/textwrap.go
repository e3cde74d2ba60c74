// Package textwrap implements greedy fixed-width word wrapping for prose text.
package textwrap

import (
	"errors"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	// MinimumUsableWidth is the smallest width at which wrapping still produces readable output.
	MinimumUsableWidth = 10
	// wordSeparator joins words back together on a wrapped line.
	wordSeparator = " "
	paddingRune   = ' '
)

// ErrPrefixTooWide reports that the prefix leaves fewer than MinimumUsableWidth
// columns for text. Callers receive the original text unmodified alongside this error.
var ErrPrefixTooWide = errors.New("prefix leaves too little room for wrapping")

// Wrap splits text into lines of at most width display columns using greedy
// word packing. Consecutive whitespace collapses to a single separator. Every
// emitted line is right-padded with spaces to exactly width columns, except a
// single word that is itself wider than width, which is emitted alone and unsplit.
// Whitespace-only input produces no lines.
func Wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var wrappedLines []string
	var currentWords []string
	currentWidth := 0

	for _, word := range words {
		wordWidth := runewidth.StringWidth(word)
		if currentWidth == 0 && wordWidth >= width {
			wrappedLines = append(wrappedLines, word)
			continue
		}
		if currentWidth+wordWidth+len(currentWords) > width {
			wrappedLines = append(wrappedLines, padLine(currentWords, width))
			currentWords = nil
			currentWidth = 0
		}
		currentWords = append(currentWords, word)
		currentWidth += wordWidth
	}
	if len(currentWords) > 0 {
		wrappedLines = append(wrappedLines, padLine(currentWords, width))
	}

	return wrappedLines
}

// WrapWithPrefix wraps text so that every output line, including the prefix,
// fits within lineLength display columns. When the prefix leaves fewer than
// MinimumUsableWidth columns the original text is returned split on newlines
// together with ErrPrefixTooWide, so the caller can warn and keep the input as is.
func WrapWithPrefix(text string, prefix string, lineLength int) ([]string, error) {
	if len(strings.TrimSpace(text)) == 0 {
		return nil, nil
	}
	usableWidth := lineLength - runewidth.StringWidth(prefix)
	if usableWidth < MinimumUsableWidth {
		return strings.Split(text, "\n"), ErrPrefixTooWide
	}
	wrappedLines := Wrap(text, usableWidth)
	prefixedLines := make([]string, 0, len(wrappedLines))
	for _, wrappedLine := range wrappedLines {
		prefixedLines = append(prefixedLines, prefix+wrappedLine)
	}
	return prefixedLines, nil
}

// padLine joins words with single spaces and right-pads the result to width columns.
func padLine(words []string, width int) string {
	joinedLine := strings.Join(words, wordSeparator)
	paddingWidth := width - runewidth.StringWidth(joinedLine)
	if paddingWidth <= 0 {
		return joinedLine
	}
	return joinedLine + strings.Repeat(string(paddingRune), paddingWidth)
}
