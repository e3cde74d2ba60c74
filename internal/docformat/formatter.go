package docformat

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	// maxReductionDepth bounds the recursive reduction of nested docstring
	// literals. Anything deeper is kept verbatim.
	maxReductionDepth = 8

	emptyDocstringLiteral     = `""" """`
	paragraphSeparator        = "\n\n"
	widthWarningMessageFormat = "line length %d leaves no room to wrap, keeping text as is"
)

// docstringLiteralPattern matches one triple-quoted string literal, either
// double or single quoted, across line boundaries.
var docstringLiteralPattern = regexp.MustCompile(`(?s)""".*?"""|'''.*?'''`)

// Formatter rewrites docstrings and standalone comments in Python source
// units. All spans of a unit are rewritten back to front so pending spans
// keep valid line offsets.
type Formatter struct {
	scanner    *Scanner
	logger     *zap.Logger
	lineLength int
}

// NewFormatter constructs a Formatter that wraps prose at lineLength columns.
func NewFormatter(logger *zap.Logger, lineLength int) *Formatter {
	return &Formatter{
		scanner:    NewScanner(),
		logger:     logger,
		lineLength: lineLength,
	}
}

// reduction is the outcome of normalizing one docstring span: any raw text
// preceding the first literal, the merged docstring body lines, the
// indentation level to render at, and whether a literal was found at all.
type reduction struct {
	prefixLines    []string
	docstringLines []string
	indentLevel    int
	literalFound   bool
}

// FormatDocstrings rewrites every docstring literal in the source unit into
// canonical Google-style layout and returns the new full text. The result
// has trailing whitespace stripped from every line and exactly one trailing
// newline. Running it on its own output is a no-op.
func (formatter *Formatter) FormatDocstrings(source string) (string, error) {
	scanResult, scanError := formatter.scanner.Scan(source)
	if scanError != nil {
		return "", scanError
	}

	sourceLines := strings.Split(source, "\n")
	for spanIndex := len(scanResult.DocstringSpans) - 1; spanIndex >= 0; spanIndex-- {
		currentSpan := scanResult.DocstringSpans[spanIndex]
		spanText := strings.Join(sourceLines[currentSpan.StartLine:currentSpan.EndLine+1], "\n")
		indentEntry := scanResult.Indentation[currentSpan.StartLine]

		reduced := reduceDocstringSpan(spanText, indentEntry.Level, indentEntry.OpensBlock, 0)

		var replacementLines []string
		replacementLines = append(replacementLines, reduced.prefixLines...)
		switch {
		case len(reduced.docstringLines) > 0:
			styledLines, widthWarnings := ApplyGoogleStyle(reduced.docstringLines, reduced.indentLevel, formatter.lineLength)
			formatter.logWidthWarnings(widthWarnings)
			replacementLines = append(replacementLines, styledLines...)
		case reduced.literalFound:
			// Only whitespace between the delimiters: keep a collapsed empty
			// literal instead of dropping the statement.
			replacementLines = append(replacementLines, strings.Repeat(indentStep, reduced.indentLevel)+emptyDocstringLiteral)
		}

		sourceLines = spliceLines(sourceLines, currentSpan, replacementLines)
	}

	return normalizeTrailingWhitespace(sourceLines), nil
}

// FormatComments re-wraps every standalone comment line of the source unit at
// its original indentation depth and returns the new full text. Comment lines
// wrap independently; code lines pass through unchanged.
func (formatter *Formatter) FormatComments(source string) (string, error) {
	scanResult, scanError := formatter.scanner.Scan(source)
	if scanError != nil {
		return "", scanError
	}

	sourceLines := strings.Split(source, "\n")
	var rewrittenLines []string
	for lineIndex, sourceLine := range sourceLines {
		if _, isComment := scanResult.CommentLines[lineIndex]; !isComment {
			rewrittenLines = append(rewrittenLines, sourceLine)
			continue
		}
		rewrittenLines = append(rewrittenLines, formatter.wrapCommentLine(sourceLine)...)
	}

	return normalizeTrailingWhitespace(rewrittenLines), nil
}

// logWidthWarnings reports spans left unwrapped because the indentation
// consumed too much of the configured line length.
func (formatter *Formatter) logWidthWarnings(widthWarnings []WidthWarning) {
	for range widthWarnings {
		formatter.logger.Sugar().Warnf(widthWarningMessageFormat, formatter.lineLength)
	}
}

// reduceDocstringSpan normalizes the raw text of one docstring span. Text
// before the first triple-quoted literal is preserved as prefix lines; when
// several literals are concatenated their de-quoted contents merge into a
// single docstring separated by blank lines.
func reduceDocstringSpan(spanText string, indentLevel int, opensBlock bool, depth int) reduction {
	if depth >= maxReductionDepth {
		return reduction{prefixLines: strings.Split(spanText, "\n"), indentLevel: indentLevel}
	}

	literalMatches := docstringLiteralPattern.FindAllStringIndex(spanText, -1)
	if len(literalMatches) == 0 {
		return reduction{prefixLines: strings.Split(spanText, "\n"), indentLevel: indentLevel}
	}

	firstLiteralStart := literalMatches[0][0]
	if len(strings.TrimSpace(spanText[:firstLiteralStart])) > 0 {
		nestedIndentLevel := indentLevel
		if opensBlock {
			nestedIndentLevel = indentLevel + 1
		}
		nestedReduction := reduceDocstringSpan(spanText[firstLiteralStart:], nestedIndentLevel, false, depth+1)
		return reduction{
			prefixLines:    strings.Split(spanText[:firstLiteralStart], "\n"),
			docstringLines: nestedReduction.docstringLines,
			indentLevel:    nestedIndentLevel,
			literalFound:   nestedReduction.literalFound,
		}
	}

	var literalText string
	if len(literalMatches) > 1 {
		var nonEmptyContents []string
		for _, matchLocation := range literalMatches {
			literalContent := strings.TrimSpace(stripTripleQuotes(spanText[matchLocation[0]:matchLocation[1]]))
			if len(literalContent) > 0 {
				nonEmptyContents = append(nonEmptyContents, literalContent)
			}
		}
		literalText = tripleQuote + strings.Join(nonEmptyContents, paragraphSeparator) + "\n" + tripleQuote
	} else {
		literalText = strings.TrimSpace(spanText[literalMatches[0][0]:literalMatches[0][1]])
	}

	return reduction{
		docstringLines: docstringBodyLines(literalText),
		indentLevel:    indentLevel,
		literalFound:   true,
	}
}

// docstringBodyLines strips the delimiters from a literal and splits the
// content into paragraph-separated lines, re-attaching the opening delimiter
// to the first line and a bare closing delimiter as the last. An empty body
// yields no lines.
func docstringBodyLines(literalText string) []string {
	docstringContent := strings.TrimSpace(stripTripleQuotes(literalText))
	if len(docstringContent) == 0 {
		return nil
	}
	rebuiltDocstring := tripleQuote + docstringContent + "\n" + tripleQuote

	var bodyLines []string
	for paragraphIndex, paragraphText := range splitIntoParagraphs(rebuiltDocstring) {
		if paragraphIndex > 0 {
			bodyLines = append(bodyLines, blankLine)
		}
		bodyLines = append(bodyLines, strings.Split(paragraphText, "\n")...)
	}
	return bodyLines
}

// splitIntoParagraphs groups consecutive non-blank lines, dropping the blank
// separators between them.
func splitIntoParagraphs(text string) []string {
	var paragraphs []string
	var currentParagraph []string
	for _, textLine := range strings.Split(text, "\n") {
		if len(strings.TrimSpace(textLine)) == 0 {
			if len(currentParagraph) > 0 {
				paragraphs = append(paragraphs, strings.Join(currentParagraph, "\n"))
				currentParagraph = nil
			}
			continue
		}
		currentParagraph = append(currentParagraph, textLine)
	}
	if len(currentParagraph) > 0 {
		paragraphs = append(paragraphs, strings.Join(currentParagraph, "\n"))
	}
	return paragraphs
}

// stripTripleQuotes removes the three-character delimiters from both ends of
// a literal.
func stripTripleQuotes(literalText string) string {
	return literalText[3 : len(literalText)-3]
}

// spliceLines replaces the span's lines with the replacement lines.
func spliceLines(sourceLines []string, replacedSpan Span, replacementLines []string) []string {
	splicedLines := make([]string, 0, len(sourceLines)-(replacedSpan.EndLine-replacedSpan.StartLine+1)+len(replacementLines))
	splicedLines = append(splicedLines, sourceLines[:replacedSpan.StartLine]...)
	splicedLines = append(splicedLines, replacementLines...)
	splicedLines = append(splicedLines, sourceLines[replacedSpan.EndLine+1:]...)
	return splicedLines
}

// normalizeTrailingWhitespace strips trailing whitespace from every line,
// drops trailing blank lines, and terminates the text with a single newline.
func normalizeTrailingWhitespace(textLines []string) string {
	strippedLines := make([]string, 0, len(textLines))
	for _, textLine := range textLines {
		strippedLines = append(strippedLines, strings.TrimRight(textLine, " \t"))
	}
	joinedText := strings.Join(strippedLines, "\n")
	return strings.TrimRight(joinedText, "\n") + "\n"
}
