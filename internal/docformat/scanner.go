package docformat

import (
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	python "github.com/smacker/go-tree-sitter/python"
)

const (
	moduleNodeType              = "module"
	blockNodeType               = "block"
	expressionStatementNodeType = "expression_statement"
	stringNodeType              = "string"
	concatenatedStringNodeType  = "concatenated_string"
	commentNodeType             = "comment"
	commentMarker               = "#"
)

// blockOpeningNodeTypes lists the constructs whose bodies sit one indentation
// level deeper. Async variants share the same node types in the Python grammar.
var blockOpeningNodeTypes = map[string]struct{}{
	"function_definition": {},
	"class_definition":    {},
	"if_statement":        {},
	"for_statement":       {},
	"while_statement":     {},
	"try_statement":       {},
	"with_statement":      {},
}

// ErrParseFailure reports that a unit's source text is not syntactically
// valid Python. Formatting is all-or-nothing per unit, so no partial output
// accompanies this error.
var ErrParseFailure = errors.New("source is not parseable")

// Span is the 0-indexed inclusive line range of one docstring literal.
type Span struct {
	StartLine int
	EndLine   int
}

// IndentEntry describes the nesting of a line that begins a syntactic
// construct. OpensBlock is true when content after the line sits one level deeper.
type IndentEntry struct {
	Level      int
	OpensBlock bool
}

// ScanResult is everything the formatter needs to know about one source unit:
// docstring spans in document order, the indentation table keyed by 0-indexed
// line number, and the set of comment-only lines.
type ScanResult struct {
	DocstringSpans []Span
	Indentation    map[int]IndentEntry
	CommentLines   map[int]struct{}
}

// Scanner parses Python source units with tree-sitter.
type Scanner struct {
	parser *sitter.Parser
}

// NewScanner constructs a Scanner with the Python grammar loaded.
func NewScanner() *Scanner {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &Scanner{parser: parser}
}

// Scan parses the source text and collects docstring spans, the indentation
// table, and comment-only lines in a single traversal each.
func (scanner *Scanner) Scan(source string) (ScanResult, error) {
	sourceBytes := []byte(source)
	tree := scanner.parser.Parse(nil, sourceBytes)
	if tree == nil {
		return ScanResult{}, fmt.Errorf("parse returned no tree: %w", ErrParseFailure)
	}
	rootNode := tree.RootNode()
	if rootNode.HasError() {
		return ScanResult{}, fmt.Errorf("syntax error in source: %w", ErrParseFailure)
	}

	result := ScanResult{
		Indentation:  map[int]IndentEntry{},
		CommentLines: map[int]struct{}{},
	}
	collectDocstringSpans(rootNode, &result.DocstringSpans)
	collectIndentation(rootNode, 0, result.Indentation)

	codeStartLines := map[int]struct{}{}
	collectCodeStartLines(rootNode, codeStartLines)
	for lineIndex, sourceLine := range strings.Split(source, "\n") {
		if _, hostsCode := codeStartLines[lineIndex]; hostsCode {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(sourceLine), commentMarker) {
			result.CommentLines[lineIndex] = struct{}{}
		}
	}

	return result, nil
}

// collectDocstringSpans walks the tree in document order and records every
// expression statement whose sole expression is a string literal, including
// implicitly concatenated literals.
func collectDocstringSpans(node *sitter.Node, spans *[]Span) {
	if node.Type() == expressionStatementNodeType && node.NamedChildCount() == 1 {
		expressionType := node.NamedChild(0).Type()
		if expressionType == stringNodeType || expressionType == concatenatedStringNodeType {
			*spans = append(*spans, Span{
				StartLine: int(node.StartPoint().Row),
				EndLine:   int(node.EndPoint().Row),
			})
			return
		}
	}
	for childIndex := 0; childIndex < int(node.NamedChildCount()); childIndex++ {
		collectDocstringSpans(node.NamedChild(childIndex), spans)
	}
}

// collectIndentation records, for the first construct starting on each line,
// the inherited nesting level and whether the construct opens a new block.
// A block-opening construct deepens its own children, not itself.
func collectIndentation(node *sitter.Node, level int, table map[int]IndentEntry) {
	for childIndex := 0; childIndex < int(node.NamedChildCount()); childIndex++ {
		childNode := node.NamedChild(childIndex)
		_, opensBlock := blockOpeningNodeTypes[childNode.Type()]
		childLine := int(childNode.StartPoint().Row)
		if _, alreadyRecorded := table[childLine]; !alreadyRecorded {
			table[childLine] = IndentEntry{Level: level, OpensBlock: opensBlock}
		}
		childLevel := level
		if opensBlock {
			childLevel = level + 1
		}
		collectIndentation(childNode, childLevel, table)
	}
}

// collectCodeStartLines gathers the start line of every non-comment node, so
// a "#" that merely appears inside a literal is not mistaken for a comment
// line. Module and block containers are skipped: both can begin at a leading
// comment and would otherwise mask it.
func collectCodeStartLines(node *sitter.Node, startLines map[int]struct{}) {
	switch node.Type() {
	case commentNodeType, moduleNodeType, blockNodeType:
	default:
		startLines[int(node.StartPoint().Row)] = struct{}{}
	}
	for childIndex := 0; childIndex < int(node.NamedChildCount()); childIndex++ {
		collectCodeStartLines(node.NamedChild(childIndex), startLines)
	}
}
