package docformat

import (
	"errors"
	"strings"

	"github.com/secomind/colint/internal/textwrap"
)

const (
	tabIndentColumns  = 4
	columnsPerIndent  = 4
	commentLinePrefix = "# "
)

// wrapCommentLine re-wraps one standalone comment line at the indentation
// depth implied by its leading whitespace run, a tab counting as four
// columns. A comment whose indentation leaves too little room is kept as is.
func (formatter *Formatter) wrapCommentLine(commentLine string) []string {
	markerIndex := strings.Index(commentLine, commentMarker)
	leadingWhitespace := commentLine[:markerIndex]
	indentColumns := strings.Count(leadingWhitespace, "\t")*tabIndentColumns + strings.Count(leadingWhitespace, " ")
	indentLevel := indentColumns / columnsPerIndent

	commentText := strings.TrimSpace(commentLine[markerIndex+len(commentMarker):])
	wrapPrefix := strings.Repeat(indentStep, indentLevel) + commentLinePrefix

	wrappedLines, wrapError := textwrap.WrapWithPrefix(commentText, wrapPrefix, formatter.lineLength)
	if errors.Is(wrapError, textwrap.ErrPrefixTooWide) {
		formatter.logWidthWarnings([]WidthWarning{{Text: commentText}})
		return []string{commentLine}
	}
	if len(wrappedLines) == 0 {
		return []string{strings.TrimRight(wrapPrefix, " ")}
	}
	return wrappedLines
}
