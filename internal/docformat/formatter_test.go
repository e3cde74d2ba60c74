package docformat_test

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/secomind/colint/internal/docformat"
)

const defaultTestLineLength = 79

func newTestFormatter(lineLength int) *docformat.Formatter {
	return docformat.NewFormatter(zap.NewNop(), lineLength)
}

func TestFormatDocstringsCanonicalLayout(t *testing.T) {
	sourceText := strings.Join([]string{
		"def compute(x):",
		`    """Do the thing carefully.`,
		"    Args:",
		"        x (int): the value to use",
		`    """`,
		"    return True",
		"",
	}, "\n")
	expectedText := strings.Join([]string{
		"def compute(x):",
		`    """Do the thing carefully.`,
		"",
		"    Args:",
		"        x (int): the value to use",
		`    """`,
		"    return True",
		"",
	}, "\n")

	result, formatError := newTestFormatter(defaultTestLineLength).FormatDocstrings(sourceText)
	if formatError != nil {
		t.Fatalf("unexpected error: %v", formatError)
	}
	if result != expectedText {
		t.Fatalf("expected:\n%s\ngot:\n%s", expectedText, result)
	}
}

func TestFormatDocstringsSingleLineCollapse(t *testing.T) {
	sourceText := strings.Join([]string{
		"def ping():",
		`    """`,
		"    Check the remote endpoint",
		`    """`,
		"    pass",
		"",
	}, "\n")
	expectedText := strings.Join([]string{
		"def ping():",
		`    """Check the remote endpoint"""`,
		"    pass",
		"",
	}, "\n")

	result, formatError := newTestFormatter(defaultTestLineLength).FormatDocstrings(sourceText)
	if formatError != nil {
		t.Fatalf("unexpected error: %v", formatError)
	}
	if result != expectedText {
		t.Fatalf("expected:\n%s\ngot:\n%s", expectedText, result)
	}
}

func TestFormatDocstringsIdempotent(t *testing.T) {
	sourceText := strings.Join([]string{
		"class Widget:",
		`    """A widget that does several things. It exists to exercise the multi-line path.`,
		"    Args:",
		"        size (int): how large the widget should be rendered when it is finally drawn on screen",
		"    Returns:",
		"        bool: whether construction succeeded",
		`    """`,
		"",
	}, "\n")

	formatter := newTestFormatter(defaultTestLineLength)
	firstPass, firstError := formatter.FormatDocstrings(sourceText)
	if firstError != nil {
		t.Fatalf("unexpected error on first pass: %v", firstError)
	}
	secondPass, secondError := formatter.FormatDocstrings(firstPass)
	if secondError != nil {
		t.Fatalf("unexpected error on second pass: %v", secondError)
	}
	if firstPass != secondPass {
		t.Fatalf("expected idempotent output, first pass:\n%s\nsecond pass:\n%s", firstPass, secondPass)
	}
}

func TestFormatDocstringsWidthInvariant(t *testing.T) {
	sourceText := strings.Join([]string{
		"def describe():",
		`    """Summary that is deliberately made much longer than the narrow width. It keeps going.`,
		"    Args:",
		"        preference (str): a rather wordy explanation that has to be folded across lines",
		`    """`,
		"",
	}, "\n")
	const lineLength = 40

	result, formatError := newTestFormatter(lineLength).FormatDocstrings(sourceText)
	if formatError != nil {
		t.Fatalf("unexpected error: %v", formatError)
	}
	for _, resultLine := range strings.Split(result, "\n") {
		if len(resultLine) > lineLength && len(strings.Fields(resultLine)) > 1 {
			t.Fatalf("line exceeds width %d: %q", lineLength, resultLine)
		}
	}
}

func TestFormatDocstringsPreservesWords(t *testing.T) {
	sourceText := strings.Join([]string{
		"def move(dx, dy):",
		`    """Translate the shape by the given offsets. Also notifies observers registered on it.`,
		"    Args:",
		"        dx (int): horizontal offset measured in pixels from the current anchor position",
		"        dy (int): vertical offset measured in pixels from the current anchor position",
		`    """`,
		"",
	}, "\n")

	result, formatError := newTestFormatter(defaultTestLineLength).FormatDocstrings(sourceText)
	if formatError != nil {
		t.Fatalf("unexpected error: %v", formatError)
	}
	expectedWords := strings.Fields(sourceText)
	resultWords := strings.Fields(result)
	if len(resultWords) != len(expectedWords) {
		t.Fatalf("expected %d words preserved, got %d\noutput:\n%s", len(expectedWords), len(resultWords), result)
	}
}

func TestFormatDocstringsMergesConcatenatedLiterals(t *testing.T) {
	sourceText := strings.Join([]string{
		"def f():",
		`    """first part""" """second part"""`,
		"    pass",
		"",
	}, "\n")

	result, formatError := newTestFormatter(defaultTestLineLength).FormatDocstrings(sourceText)
	if formatError != nil {
		t.Fatalf("unexpected error: %v", formatError)
	}
	if !strings.Contains(result, "first part") || !strings.Contains(result, "second part") {
		t.Fatalf("expected both literal contents merged, got:\n%s", result)
	}
	if strings.Count(result, `"""`) != 2 {
		t.Fatalf("expected a single merged literal, got:\n%s", result)
	}
}

func TestFormatDocstringsPreservesCodeBeforeLiteral(t *testing.T) {
	sourceText := strings.Join([]string{
		`def fetch(): """Fetch the rows"""`,
		"",
	}, "\n")
	expectedText := strings.Join([]string{
		"def fetch():",
		`    """Fetch the rows"""`,
		"",
	}, "\n")

	result, formatError := newTestFormatter(defaultTestLineLength).FormatDocstrings(sourceText)
	if formatError != nil {
		t.Fatalf("unexpected error: %v", formatError)
	}
	if result != expectedText {
		t.Fatalf("expected:\n%s\ngot:\n%s", expectedText, result)
	}
}

func TestFormatDocstringsPreservesEmptyLiteral(t *testing.T) {
	sourceText := strings.Join([]string{
		"def noop():",
		`    """   """`,
		"    pass",
		"",
	}, "\n")

	result, formatError := newTestFormatter(defaultTestLineLength).FormatDocstrings(sourceText)
	if formatError != nil {
		t.Fatalf("unexpected error: %v", formatError)
	}
	if !strings.Contains(result, `"""`) {
		t.Fatalf("expected empty docstring literal preserved, got:\n%s", result)
	}
}

func TestFormatDocstringsWideRunesUseDisplayWidth(t *testing.T) {
	wideSummary := strings.Repeat("値", 30)
	sourceText := strings.Join([]string{
		"def describe():",
		`    """` + wideSummary + `"""`,
		"    pass",
		"",
	}, "\n")

	result, formatError := newTestFormatter(defaultTestLineLength).FormatDocstrings(sourceText)
	if formatError != nil {
		t.Fatalf("unexpected error: %v", formatError)
	}
	if result != sourceText {
		t.Fatalf("expected docstring within display width to stay single line, got:\n%s", result)
	}
}

func TestFormatDocstringsParseFailure(t *testing.T) {
	_, formatError := newTestFormatter(defaultTestLineLength).FormatDocstrings("def broken(:\n")
	if !errors.Is(formatError, docformat.ErrParseFailure) {
		t.Fatalf("expected ErrParseFailure, got %v", formatError)
	}
}

func TestFormatComments(t *testing.T) {
	sourceText := strings.Join([]string{
		"if ready:",
		"    # this is a very long comment that needs wrapping at some width",
		"    pass",
		"",
	}, "\n")
	expectedText := strings.Join([]string{
		"if ready:",
		"    # this is a very long",
		"    # comment that needs",
		"    # wrapping at some width",
		"    pass",
		"",
	}, "\n")

	result, formatError := newTestFormatter(30).FormatComments(sourceText)
	if formatError != nil {
		t.Fatalf("unexpected error: %v", formatError)
	}
	if result != expectedText {
		t.Fatalf("expected:\n%s\ngot:\n%s", expectedText, result)
	}
}

func TestFormatCommentsLeavesCodeAndInlineHashesAlone(t *testing.T) {
	sourceText := strings.Join([]string{
		`value = "#not a comment"`,
		"total = 1  # trailing comments stay untouched",
		"",
	}, "\n")

	result, formatError := newTestFormatter(30).FormatComments(sourceText)
	if formatError != nil {
		t.Fatalf("unexpected error: %v", formatError)
	}
	if result != sourceText {
		t.Fatalf("expected source unchanged, got:\n%s", result)
	}
}

func TestFormatCommentsNarrowWidthKeepsOriginal(t *testing.T) {
	commentLine := "    # deeply indented comment kept verbatim"
	sourceText := strings.Join([]string{
		"if ready:",
		commentLine,
		"    pass",
		"",
	}, "\n")

	result, formatError := newTestFormatter(12).FormatComments(sourceText)
	if formatError != nil {
		t.Fatalf("unexpected error: %v", formatError)
	}
	if !strings.Contains(result, commentLine) {
		t.Fatalf("expected narrow width to keep the original line, got:\n%s", result)
	}
}
