package notebook_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/secomind/colint/internal/notebook"
)

const sampleNotebookJSON = `{
	"nbformat": 4,
	"metadata": {"kernelspec": {"name": "python3"}},
	"cells": [
		{
			"cell_type": "code",
			"source": ["import os\n", "print(os.name)\n"],
			"outputs": [{"output_type": "stream", "text": ["posix\n"]}],
			"execution_count": 3,
			"metadata": {"tags": ["keep-me"]}
		},
		{
			"cell_type": "markdown",
			"source": ["# Title\n"],
			"metadata": {}
		},
		{
			"cell_type": "code",
			"source": ["# only a comment\n"],
			"outputs": [],
			"execution_count": null,
			"metadata": {}
		}
	]
}`

func TestParseAndInspectCells(t *testing.T) {
	parsedNotebook, parseError := notebook.Parse([]byte(sampleNotebookJSON))
	if parseError != nil {
		t.Fatalf("unexpected error: %v", parseError)
	}

	if cellCount := len(parsedNotebook.Cells()); cellCount != 3 {
		t.Fatalf("expected 3 cells, got %d", cellCount)
	}
	if codeCellCount := len(parsedNotebook.CodeCells(false)); codeCellCount != 2 {
		t.Fatalf("expected 2 code cells, got %d", codeCellCount)
	}
	if nonEmptyCount := len(parsedNotebook.CodeCells(true)); nonEmptyCount != 1 {
		t.Fatalf("expected 1 non-empty code cell, got %d", nonEmptyCount)
	}

	firstCell := parsedNotebook.CodeCells(false)[0]
	if firstCell.Text() != "import os\nprint(os.name)\n" {
		t.Fatalf("unexpected cell text %q", firstCell.Text())
	}
	if !firstCell.HasOutput(false) {
		t.Fatalf("expected first cell to have outputs")
	}

	commentOnlyCell := parsedNotebook.CodeCells(false)[1]
	if commentOnlyCell.HasOutput(true) {
		t.Fatalf("expected comment-only cell without outputs or execution count")
	}
}

func TestClearOutputsAndRoundTrip(t *testing.T) {
	parsedNotebook, parseError := notebook.Parse([]byte(sampleNotebookJSON))
	if parseError != nil {
		t.Fatalf("unexpected error: %v", parseError)
	}

	firstCell := parsedNotebook.CodeCells(false)[0]
	firstCell.ClearOutputs(true)
	if firstCell.HasOutput(true) {
		t.Fatalf("expected outputs cleared")
	}

	serializedNotebook, marshalError := parsedNotebook.Marshal()
	if marshalError != nil {
		t.Fatalf("unexpected error: %v", marshalError)
	}

	var roundTripped map[string]json.RawMessage
	if decodeError := json.Unmarshal(serializedNotebook, &roundTripped); decodeError != nil {
		t.Fatalf("round trip produced invalid JSON: %v", decodeError)
	}
	if _, hasMetadata := roundTripped["metadata"]; !hasMetadata {
		t.Fatalf("expected notebook metadata preserved")
	}
	if !strings.Contains(string(serializedNotebook), "keep-me") {
		t.Fatalf("expected cell metadata preserved, got %s", serializedNotebook)
	}
	if strings.Contains(string(serializedNotebook), "posix") {
		t.Fatalf("expected outputs removed, got %s", serializedNotebook)
	}
}

func TestSetTextRewritesSourceLines(t *testing.T) {
	parsedNotebook, parseError := notebook.Parse([]byte(sampleNotebookJSON))
	if parseError != nil {
		t.Fatalf("unexpected error: %v", parseError)
	}

	firstCell := parsedNotebook.CodeCells(false)[0]
	firstCell.SetText("a = 1\nb = 2\n")
	if firstCell.Text() != "a = 1\nb = 2" {
		t.Fatalf("unexpected text after SetText: %q", firstCell.Text())
	}
}

func TestParseEmptyInput(t *testing.T) {
	parsedNotebook, parseError := notebook.Parse([]byte("  \n"))
	if parseError != nil {
		t.Fatalf("unexpected error: %v", parseError)
	}
	if len(parsedNotebook.Cells()) != 0 {
		t.Fatalf("expected empty notebook")
	}
}

func TestParseRejectsMissingCells(t *testing.T) {
	_, parseError := notebook.Parse([]byte(`{"nbformat": 4}`))
	if !errors.Is(parseError, notebook.ErrInvalidNotebookData) {
		t.Fatalf("expected ErrInvalidNotebookData, got %v", parseError)
	}
}

func TestParseRejectsInvalidCell(t *testing.T) {
	_, parseError := notebook.Parse([]byte(`{"cells": [{"source": ["x\n"]}]}`))
	if !errors.Is(parseError, notebook.ErrInvalidCellData) {
		t.Fatalf("expected ErrInvalidCellData, got %v", parseError)
	}
}
