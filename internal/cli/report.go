package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/secomind/colint/internal/types"
)

const (
	operationHeaderFormat = "== %s ==\n"
	fileReportFormat      = "%s: %s\n"
	cleanRunMessage       = "all files are compliant"
	issueCountFormat      = "%d file report(s)\n"
)

var (
	operationHeaderStyle = color.New(color.Bold)
	flaggedPathStyle     = color.New(color.FgYellow)
	cleanRunStyle        = color.New(color.FgGreen)
)

// renderRunReport writes the styled per-operation report to writer.
func renderRunReport(writer io.Writer, results []types.OperationResult) {
	for _, operationResult := range results {
		operationHeaderStyle.Fprintf(writer, operationHeaderFormat, operationResult.Operation)
		if len(operationResult.Reports) == 0 {
			cleanRunStyle.Fprintln(writer, cleanRunMessage)
			continue
		}
		for _, fileReport := range operationResult.Reports {
			fmt.Fprintf(writer, fileReportFormat, flaggedPathStyle.Sprint(fileReport.Path), fileReport.Message)
		}
		fmt.Fprintf(writer, issueCountFormat, len(operationResult.Reports))
	}
}

// renderPlainReport renders the report without styling for clipboard use.
func renderPlainReport(results []types.OperationResult) string {
	var reportBuilder strings.Builder
	for _, operationResult := range results {
		fmt.Fprintf(&reportBuilder, operationHeaderFormat, operationResult.Operation)
		if len(operationResult.Reports) == 0 {
			fmt.Fprintln(&reportBuilder, cleanRunMessage)
			continue
		}
		for _, fileReport := range operationResult.Reports {
			fmt.Fprintf(&reportBuilder, fileReportFormat, fileReport.Path, fileReport.Message)
		}
		fmt.Fprintf(&reportBuilder, issueCountFormat, len(operationResult.Reports))
	}
	return reportBuilder.String()
}
