// Package docformat implements the docstring and comment reflow engine. It
// scans Python source for docstring literals and standalone comments, splits
// docstring bodies into Google-style sections, and re-renders them at a
// configured line length.
package docformat

import (
	"fmt"
	"regexp"
	"strings"
)

// ListElement is one bullet, parameter, or field entry inside a labeled
// section. Heading is whatever introduces the entry: a list marker ("-",
// "3."), or a name with optional type annotation followed by a colon
// ("timeout (int):"). Lines holds the entry body text.
type ListElement struct {
	Heading string
	Lines   []string
}

// Section is one block of a docstring body. A summary section holds the
// opening prose before any recognized heading; every other section carries a
// canonicalized heading ("Returns:") and its list elements.
type Section struct {
	TitleSummary bool
	Lines        []string
	Heading      string
	Elements     []ListElement
}

// sectionHeadingKeys is the closed vocabulary of recognized section labels.
var sectionHeadingKeys = []string{
	"Args",
	"Attributes",
	"Deprecated",
	"Examples",
	"Methods",
	"Notes",
	"Overridden",
	"Properties",
	"Raises",
	"References",
	"Returns",
	"See Also",
	"TODO",
	"Warnings",
	"Yields",
}

var sectionHeadingPatterns = compileSectionHeadingPatterns()

func compileSectionHeadingPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(sectionHeadingKeys))
	for _, headingKey := range sectionHeadingKeys {
		patterns = append(patterns, regexp.MustCompile(fmt.Sprintf(`(?i)^%s\s*:$`, regexp.QuoteMeta(headingKey))))
	}
	return patterns
}

var (
	parameterPattern   = regexp.MustCompile(`^\*{0,2}\w+\s*(\([^)]*\))?\s*:`)
	datatypePattern    = regexp.MustCompile(`^\w+\s*(\[[^)]*\])?\s*:`)
	listMarkerPattern  = regexp.MustCompile(`^(-|\d+\.)`)
	headingColonSuffix = ":"
)

// matchSectionHeading returns the canonical heading ("Label:") when the line
// is a recognized section heading, or the empty string otherwise.
func matchSectionHeading(line string) string {
	trimmedLine := strings.TrimSpace(line)
	for patternIndex, headingPattern := range sectionHeadingPatterns {
		if headingPattern.MatchString(trimmedLine) {
			return sectionHeadingKeys[patternIndex] + headingColonSuffix
		}
	}
	return ""
}

// matchListElement tests a line against the parameter, bracketed-datatype and
// list-marker patterns in priority order. On a match it returns the
// normalized element heading and the remaining text on the line, with
// matched reporting success so an empty rest still opens an element.
func matchListElement(line string) (heading string, restOfLine string, matched bool) {
	trimmedLine := strings.TrimSpace(line)

	if location := parameterPattern.FindStringIndex(trimmedLine); location != nil {
		matchedText := trimmedLine[:location[1]]
		normalizedHeading := strings.Join(strings.Fields(strings.TrimSuffix(matchedText, headingColonSuffix)), " ")
		return normalizedHeading + headingColonSuffix, strings.TrimSpace(trimmedLine[location[1]:]), true
	}

	if location := datatypePattern.FindStringIndex(trimmedLine); location != nil {
		matchedText := strings.TrimSpace(strings.TrimSuffix(trimmedLine[:location[1]], headingColonSuffix))
		if bracketIndex := strings.Index(matchedText, "["); bracketIndex >= 0 {
			typeName := strings.TrimSpace(matchedText[:bracketIndex])
			matchedText = typeName + strings.TrimSpace(matchedText[bracketIndex:])
		}
		return matchedText + headingColonSuffix, strings.TrimSpace(trimmedLine[location[1]:]), true
	}

	if location := listMarkerPattern.FindStringIndex(trimmedLine); location != nil {
		return strings.TrimSpace(trimmedLine[:location[1]]), strings.TrimSpace(trimmedLine[location[1]:]), true
	}

	return "", "", false
}

// DivideIntoSections classifies docstring body lines into an ordered sequence
// of sections. A blank line closes the current section, a recognized heading
// opens a labeled section, and within a labeled section lines that look like
// parameter or list entries open list elements. Sections with neither prose
// nor a heading are dropped.
func DivideIntoSections(bodyLines []string) []Section {
	currentSection := Section{TitleSummary: true}
	var collectedSections []Section

	for _, bodyLine := range bodyLines {
		if len(strings.TrimSpace(bodyLine)) == 0 {
			collectedSections = append(collectedSections, currentSection)
			currentSection = Section{TitleSummary: true}
			continue
		}
		if sectionHeading := matchSectionHeading(bodyLine); sectionHeading != "" {
			collectedSections = append(collectedSections, currentSection)
			currentSection = Section{Heading: sectionHeading}
			continue
		}
		if currentSection.TitleSummary {
			currentSection.Lines = append(currentSection.Lines, bodyLine)
			continue
		}
		elementHeading, restOfLine, matched := matchListElement(bodyLine)
		if !matched {
			if len(currentSection.Elements) == 0 {
				currentSection.Lines = append(currentSection.Lines, bodyLine)
			} else {
				lastElement := &currentSection.Elements[len(currentSection.Elements)-1]
				lastElement.Lines = append(lastElement.Lines, bodyLine)
			}
			continue
		}
		currentSection.Elements = append(currentSection.Elements, ListElement{
			Heading: elementHeading,
			Lines:   []string{restOfLine},
		})
	}
	collectedSections = append(collectedSections, currentSection)

	retainedSections := make([]Section, 0, len(collectedSections))
	for _, candidateSection := range collectedSections {
		if len(candidateSection.Lines) > 0 || candidateSection.Heading != "" {
			retainedSections = append(retainedSections, candidateSection)
		}
	}
	return retainedSections
}
