// Package notebook reads and writes Jupyter notebook files, exposing code
// cells as independent text units and supporting output cleaning. Unknown
// JSON keys on the notebook and on every cell are preserved across a
// read-modify-write cycle.
package notebook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	cellTypeKey       = "cell_type"
	sourceKey         = "source"
	outputsKey        = "outputs"
	executionCountKey = "execution_count"
	cellsKey          = "cells"

	// CellTypeCode identifies executable notebook cells.
	CellTypeCode = "code"
	// CellTypeMarkdown identifies prose notebook cells.
	CellTypeMarkdown = "markdown"

	notebookFilePermissions = 0o600
)

var (
	// ErrInvalidCellData reports a cell object missing required keys.
	ErrInvalidCellData = errors.New("invalid notebook cell data")
	// ErrInvalidNotebookData reports a notebook object without a cells list.
	ErrInvalidNotebookData = errors.New("invalid notebook data")
)

// Cell is one notebook cell. Metadata keys beyond the well-known ones are
// retained untouched.
type Cell struct {
	cellType       string
	sourceLines    []string
	outputs        []json.RawMessage
	executionCount json.RawMessage
	extraFields    map[string]json.RawMessage
}

// newCell validates and decodes a raw cell object.
func newCell(rawCell map[string]json.RawMessage) (*Cell, error) {
	rawCellType, hasCellType := rawCell[cellTypeKey]
	if !hasCellType {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidCellData, cellTypeKey)
	}
	var decodedCellType string
	if decodeError := json.Unmarshal(rawCellType, &decodedCellType); decodeError != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCellData, decodeError)
	}

	rawSource, hasSource := rawCell[sourceKey]
	if !hasSource {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidCellData, sourceKey)
	}
	sourceLines, sourceError := decodeSourceLines(rawSource)
	if sourceError != nil {
		return nil, sourceError
	}

	cell := &Cell{
		cellType:    decodedCellType,
		sourceLines: sourceLines,
		extraFields: map[string]json.RawMessage{},
	}

	if decodedCellType == CellTypeCode {
		rawOutputs, hasOutputs := rawCell[outputsKey]
		if !hasOutputs {
			return nil, fmt.Errorf("%w: code cell missing %s", ErrInvalidCellData, outputsKey)
		}
		if decodeError := json.Unmarshal(rawOutputs, &cell.outputs); decodeError != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCellData, decodeError)
		}
		cell.executionCount = rawCell[executionCountKey]
	}

	for fieldKey, fieldValue := range rawCell {
		switch fieldKey {
		case cellTypeKey, sourceKey, outputsKey, executionCountKey:
		default:
			cell.extraFields[fieldKey] = fieldValue
		}
	}
	return cell, nil
}

// decodeSourceLines accepts the standard list-of-strings form as well as the
// single-string form some tools emit.
func decodeSourceLines(rawSource json.RawMessage) ([]string, error) {
	var listForm []string
	if listError := json.Unmarshal(rawSource, &listForm); listError == nil {
		return listForm, nil
	}
	var stringForm string
	if stringError := json.Unmarshal(rawSource, &stringForm); stringError == nil {
		return []string{stringForm}, nil
	}
	return nil, fmt.Errorf("%w: unreadable %s", ErrInvalidCellData, sourceKey)
}

// Type returns the cell type.
func (cell *Cell) Type() string {
	return cell.cellType
}

// Text returns the cell source as one string.
func (cell *Cell) Text() string {
	return strings.Join(cell.sourceLines, "")
}

// SetText replaces the cell source, storing one entry per line. Every line
// keeps its newline except the last, matching the layout notebooks use.
func (cell *Cell) SetText(text string) {
	textLines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	cell.sourceLines = make([]string, 0, len(textLines))
	for lineIndex, textLine := range textLines {
		if lineIndex < len(textLines)-1 {
			textLine += "\n"
		}
		cell.sourceLines = append(cell.sourceLines, textLine)
	}
}

// HasCode reports whether the cell contains at least one line that is neither
// blank nor a comment.
func (cell *Cell) HasCode() bool {
	if cell.cellType != CellTypeCode {
		return false
	}
	for _, sourceLine := range cell.sourceLines {
		trimmedLine := strings.TrimSpace(sourceLine)
		if len(trimmedLine) > 0 && !strings.HasPrefix(trimmedLine, "#") {
			return true
		}
	}
	return false
}

// HasOutput reports whether the cell carries outputs. With picky set, a
// recorded execution count alone also counts.
func (cell *Cell) HasOutput(picky bool) bool {
	if len(cell.outputs) > 0 {
		return true
	}
	return picky && len(cell.executionCount) > 0 && !bytes.Equal(cell.executionCount, []byte("null"))
}

// ClearOutputs removes the cell outputs, optionally resetting the execution count.
func (cell *Cell) ClearOutputs(resetExecutionCount bool) {
	cell.outputs = []json.RawMessage{}
	if resetExecutionCount {
		cell.executionCount = json.RawMessage("null")
	}
}

// toRaw reassembles the cell object for serialization.
func (cell *Cell) toRaw() (map[string]json.RawMessage, error) {
	rawCell := map[string]json.RawMessage{}
	for fieldKey, fieldValue := range cell.extraFields {
		rawCell[fieldKey] = fieldValue
	}
	encodedCellType, cellTypeError := json.Marshal(cell.cellType)
	if cellTypeError != nil {
		return nil, cellTypeError
	}
	rawCell[cellTypeKey] = encodedCellType
	encodedSource, sourceError := json.Marshal(cell.sourceLines)
	if sourceError != nil {
		return nil, sourceError
	}
	rawCell[sourceKey] = encodedSource
	if cell.cellType == CellTypeCode {
		encodedOutputs, outputsError := json.Marshal(cell.outputs)
		if outputsError != nil {
			return nil, outputsError
		}
		rawCell[outputsKey] = encodedOutputs
		executionCount := cell.executionCount
		if len(executionCount) == 0 {
			executionCount = json.RawMessage("null")
		}
		rawCell[executionCountKey] = executionCount
	}
	return rawCell, nil
}

// Notebook is a parsed notebook file.
type Notebook struct {
	cells       []*Cell
	extraFields map[string]json.RawMessage
}

// Parse decodes notebook JSON. Empty input yields an empty notebook.
func Parse(notebookData []byte) (*Notebook, error) {
	if len(bytes.TrimSpace(notebookData)) == 0 {
		return &Notebook{extraFields: map[string]json.RawMessage{}}, nil
	}

	var rawNotebook map[string]json.RawMessage
	if decodeError := json.Unmarshal(notebookData, &rawNotebook); decodeError != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNotebookData, decodeError)
	}
	rawCells, hasCells := rawNotebook[cellsKey]
	if !hasCells {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidNotebookData, cellsKey)
	}
	var rawCellList []map[string]json.RawMessage
	if decodeError := json.Unmarshal(rawCells, &rawCellList); decodeError != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNotebookData, decodeError)
	}

	parsedNotebook := &Notebook{extraFields: map[string]json.RawMessage{}}
	for _, rawCell := range rawCellList {
		parsedCell, cellError := newCell(rawCell)
		if cellError != nil {
			return nil, cellError
		}
		parsedNotebook.cells = append(parsedNotebook.cells, parsedCell)
	}
	for fieldKey, fieldValue := range rawNotebook {
		if fieldKey != cellsKey {
			parsedNotebook.extraFields[fieldKey] = fieldValue
		}
	}
	return parsedNotebook, nil
}

// Open reads and parses a notebook file.
func Open(notebookPath string) (*Notebook, error) {
	notebookData, readError := os.ReadFile(notebookPath)
	if readError != nil {
		return nil, fmt.Errorf("read notebook %s: %w", notebookPath, readError)
	}
	return Parse(notebookData)
}

// Cells returns every cell in order.
func (parsedNotebook *Notebook) Cells() []*Cell {
	return parsedNotebook.cells
}

// CodeCells returns the code cells in order, optionally skipping cells with
// no effective code.
func (parsedNotebook *Notebook) CodeCells(excludeEmpty bool) []*Cell {
	var codeCells []*Cell
	for _, currentCell := range parsedNotebook.cells {
		if currentCell.cellType != CellTypeCode {
			continue
		}
		if excludeEmpty && !currentCell.HasCode() {
			continue
		}
		codeCells = append(codeCells, currentCell)
	}
	return codeCells
}

// Marshal serializes the notebook back to JSON.
func (parsedNotebook *Notebook) Marshal() ([]byte, error) {
	rawNotebook := map[string]json.RawMessage{}
	for fieldKey, fieldValue := range parsedNotebook.extraFields {
		rawNotebook[fieldKey] = fieldValue
	}
	rawCellList := make([]map[string]json.RawMessage, 0, len(parsedNotebook.cells))
	for _, currentCell := range parsedNotebook.cells {
		rawCell, cellError := currentCell.toRaw()
		if cellError != nil {
			return nil, cellError
		}
		rawCellList = append(rawCellList, rawCell)
	}
	encodedCells, cellsError := json.Marshal(rawCellList)
	if cellsError != nil {
		return nil, cellsError
	}
	rawNotebook[cellsKey] = encodedCells
	return json.Marshal(rawNotebook)
}

// Save writes the notebook back to disk.
func (parsedNotebook *Notebook) Save(notebookPath string) error {
	notebookData, marshalError := parsedNotebook.Marshal()
	if marshalError != nil {
		return marshalError
	}
	if writeError := os.WriteFile(notebookPath, notebookData, notebookFilePermissions); writeError != nil {
		return fmt.Errorf("write notebook %s: %w", notebookPath, writeError)
	}
	return nil
}
