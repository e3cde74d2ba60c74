// Package types defines cross-package constants and data structures used by
// the colint CLI.
package types

const (
	OperationSortLibraries  = "sort-libraries"
	OperationCodeFormat     = "code-format"
	OperationGrammarCheck   = "grammar-check"
	OperationNewlineFix     = "newline-fix"
	OperationCleanNotebooks = "clean-jupyter"
	OperationDocformat      = "docformat"
	OperationLint           = "lint"

	PythonFileExtension   = ".py"
	NotebookFileExtension = ".ipynb"
)

// FileReport is one per-file outcome reported to the user after an operation.
// Flagged is set when the unit needed changes, whether or not they were
// written back.
type FileReport struct {
	Path    string
	Message string
	Flagged bool
}

// OperationResult aggregates the reports of one operation across all
// processed units.
type OperationResult struct {
	Operation string
	Reports   []FileReport
}

// HasIssues reports whether any processed file was flagged.
func (result OperationResult) HasIssues() bool {
	for _, fileReport := range result.Reports {
		if fileReport.Flagged {
			return true
		}
	}
	return false
}
