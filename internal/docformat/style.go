package docformat

import (
	"errors"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/secomind/colint/internal/textwrap"
)

const (
	indentStep       = "    "
	tripleQuote      = `"""`
	blankLine        = ""
	headingSeparator = " "
)

// WidthWarning records a span whose surrounding indentation left too little
// room for wrapping. The affected text is kept verbatim.
type WidthWarning struct {
	Text string
}

// renderResult accumulates formatted lines plus any width warnings raised
// while rendering them.
type renderResult struct {
	lines    []string
	warnings []WidthWarning
}

func (result *renderResult) appendWrapped(text string, prefix string, lineLength int) {
	wrappedLines, wrapError := textwrap.WrapWithPrefix(text, prefix, lineLength)
	if errors.Is(wrapError, textwrap.ErrPrefixTooWide) {
		result.warnings = append(result.warnings, WidthWarning{Text: text})
	}
	result.lines = append(result.lines, wrappedLines...)
}

// collapseToSingleLine joins the docstring lines into the canonical one-line
// form: all words separated by single spaces with the closing delimiter glued
// to the final word.
func collapseToSingleLine(docstringLines []string, indentationLevel int) string {
	joinedText := strings.Join(docstringLines, "\n")
	joinedText = strings.TrimRight(strings.TrimRight(joinedText, " \t\n"), `"`)
	words := strings.Fields(joinedText)
	if len(words) == 0 {
		return strings.Repeat(indentStep, indentationLevel) + tripleQuote + tripleQuote
	}
	words[len(words)-1] += tripleQuote
	return strings.Repeat(indentStep, indentationLevel) + strings.Join(words, headingSeparator)
}

// hasInteriorPeriod reports whether the collapsed docstring contains a period
// anywhere other than as the final sentence terminator.
func hasInteriorPeriod(singleLine string) bool {
	trimmedLine := strings.TrimRight(singleLine, `"`)
	trimmedLine = strings.TrimRight(trimmedLine, " \t")
	trimmedLine = strings.TrimRight(trimmedLine, ".")
	return strings.Contains(trimmedLine, ".")
}

// ApplyGoogleStyle renders docstring lines into the canonical Google-style
// layout at the given indentation level. Short single-sentence docstrings
// collapse to one line; everything else is classified into sections and
// re-wrapped. The returned warnings mark spans left unwrapped because the
// indentation consumed too much of the line length.
func ApplyGoogleStyle(docstringLines []string, indentationLevel int, lineLength int) ([]string, []WidthWarning) {
	singleLine := collapseToSingleLine(docstringLines, indentationLevel)
	if runewidth.StringWidth(singleLine) <= lineLength && !hasInteriorPeriod(singleLine) {
		return []string{singleLine}, nil
	}

	bodyLines := docstringLines[:len(docstringLines)-1]
	classifiedSections := DivideIntoSections(bodyLines)

	baseIndent := strings.Repeat(indentStep, indentationLevel)
	sectionIndent := baseIndent + indentStep
	continuationIndent := sectionIndent + indentStep

	var result renderResult
	for _, currentSection := range classifiedSections {
		if currentSection.TitleSummary {
			result.appendWrapped(strings.Join(currentSection.Lines, "\n"), baseIndent, lineLength)
			result.lines = append(result.lines, blankLine)
			continue
		}
		result.lines = append(result.lines, baseIndent+strings.TrimSpace(currentSection.Heading))
		result.appendWrapped(strings.Join(currentSection.Lines, "\n"), sectionIndent, lineLength)
		for _, element := range currentSection.Elements {
			renderListElement(&result, element, sectionIndent, continuationIndent, lineLength)
		}
		result.lines = append(result.lines, blankLine)
	}

	for len(result.lines) > 0 && result.lines[len(result.lines)-1] == blankLine {
		result.lines = result.lines[:len(result.lines)-1]
	}
	result.lines = append(result.lines, baseIndent+tripleQuote)
	return result.lines, result.warnings
}

// renderListElement emits the element heading with as much body text as fits
// on the first line, then wraps the remaining words one indent level deeper.
func renderListElement(result *renderResult, element ListElement, sectionIndent string, continuationIndent string, lineLength int) {
	elementText := strings.Join(element.Lines, "\n")
	firstLinePrefix := sectionIndent + element.Heading + headingSeparator
	firstLines, wrapError := textwrap.WrapWithPrefix(elementText, firstLinePrefix, lineLength)
	if errors.Is(wrapError, textwrap.ErrPrefixTooWide) {
		result.warnings = append(result.warnings, WidthWarning{Text: elementText})
		result.lines = append(result.lines, strings.TrimRight(firstLinePrefix+elementText, " "))
		return
	}
	if len(firstLines) == 0 {
		result.lines = append(result.lines, strings.TrimRight(firstLinePrefix, " "))
		return
	}
	firstLine := firstLines[0]
	result.lines = append(result.lines, firstLine)

	consumedWords := strings.Fields(strings.TrimSpace(firstLine)[len(element.Heading):])
	allWords := strings.Fields(elementText)
	remainingText := strings.Join(allWords[len(consumedWords):], headingSeparator)
	result.appendWrapped(remainingText, continuationIndent, lineLength)
}
