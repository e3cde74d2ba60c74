package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/secomind/colint/internal/config"
	"github.com/secomind/colint/internal/discover"
	"github.com/secomind/colint/internal/docformat"
	"github.com/secomind/colint/internal/engines"
	"github.com/secomind/colint/internal/newline"
	"github.com/secomind/colint/internal/notebook"
	"github.com/secomind/colint/internal/types"
)

const (
	unsupportedOperationMessage = "unsupported operation"
	notebookCellDisplayFormat   = "%s:cell %d"
	wouldReformatMessage        = "would be reformatted"
	reformattedMessage          = "reformatted"
	missingNewlineMessage       = "missing trailing newline"
	newlineAppendedMessage      = "trailing newline appended"
	wouldCleanMessage           = "has outputs or execution counts"
	cleanedMessage              = "outputs and execution counts removed"
	filePermissionsMask         = 0o600
)

// lintOperationOrder is the fixed sequence the lint operation runs. The
// style check comes after the rewriting passes so it sees their output.
var lintOperationOrder = []string{
	types.OperationSortLibraries,
	types.OperationCodeFormat,
	types.OperationGrammarCheck,
	types.OperationNewlineFix,
}

// runnerOptions configures one operation run.
type runnerOptions struct {
	onlyCheck             bool
	useGitignore          bool
	includeCleanNotebooks bool
}

// runner executes operations over the units discovered under a root path.
type runner struct {
	logger     *zap.Logger
	parameters config.Parameters
	options    runnerOptions
}

// newRunner constructs a runner with the given configuration.
func newRunner(logger *zap.Logger, parameters config.Parameters, options runnerOptions) *runner {
	return &runner{logger: logger, parameters: parameters, options: options}
}

// run executes the named operation and returns one result per operation run.
// The lint operation expands into the full sequence.
func (operationRunner *runner) run(executionContext context.Context, operationName string, rootPath string) ([]types.OperationResult, error) {
	operationNames := []string{operationName}
	if operationName == types.OperationLint {
		operationNames = lintOperationOrder
		if operationRunner.options.includeCleanNotebooks {
			operationNames = append([]string{types.OperationCleanNotebooks}, operationNames...)
		}
	}

	var results []types.OperationResult
	for _, currentOperation := range operationNames {
		operationResult, operationError := operationRunner.runSingle(executionContext, currentOperation, rootPath)
		if operationError != nil {
			return nil, fmt.Errorf("%s: %w", currentOperation, operationError)
		}
		results = append(results, operationResult)
	}
	return results, nil
}

// runSingle executes one operation over the units under rootPath.
func (operationRunner *runner) runSingle(executionContext context.Context, operationName string, rootPath string) (types.OperationResult, error) {
	var reports []types.FileReport
	var collectError error

	switch operationName {
	case types.OperationSortLibraries:
		sortEngine := engines.NewIsortEngine(operationRunner.parameters.Isort)
		reports, collectError = operationRunner.transformUnits(executionContext, rootPath, codeUnitExtensions,
			func(transformContext context.Context, displayPath string, sourceText string) (string, error) {
				return sortEngine.SortSource(transformContext, sourceText)
			})
	case types.OperationCodeFormat:
		formatEngine := engines.NewBlackEngine(operationRunner.parameters.Black)
		reports, collectError = operationRunner.transformUnits(executionContext, rootPath, codeUnitExtensions,
			func(transformContext context.Context, displayPath string, sourceText string) (string, error) {
				return formatEngine.FormatSource(transformContext, sourceText)
			})
	case types.OperationDocformat:
		docstringFormatter := docformat.NewFormatter(operationRunner.logger, operationRunner.parameters.Colint.LineLength)
		reports, collectError = operationRunner.transformUnits(executionContext, rootPath, codeUnitExtensions,
			func(transformContext context.Context, displayPath string, sourceText string) (string, error) {
				formattedText, formatError := docstringFormatter.FormatDocstrings(sourceText)
				if formatError != nil {
					return "", formatError
				}
				return docstringFormatter.FormatComments(formattedText)
			})
	case types.OperationGrammarCheck:
		reports, collectError = operationRunner.checkUnits(executionContext, rootPath)
	case types.OperationNewlineFix:
		reports, collectError = operationRunner.fixNewlines(executionContext, rootPath)
	case types.OperationCleanNotebooks:
		reports, collectError = operationRunner.cleanNotebooks(executionContext, rootPath)
	default:
		return types.OperationResult{}, fmt.Errorf("%s: %s", unsupportedOperationMessage, operationName)
	}

	if collectError != nil {
		return types.OperationResult{}, collectError
	}
	sortReports(reports)
	return types.OperationResult{Operation: operationName, Reports: reports}, nil
}

// codeUnitExtensions selects the units that carry Python source.
var codeUnitExtensions = []string{types.PythonFileExtension, types.NotebookFileExtension}

// collectUnits discovers the units under rootPath with the given extensions.
func (operationRunner *runner) collectUnits(rootPath string, extensions []string) ([]string, error) {
	return discover.CollectUnits(rootPath, discover.Options{
		Extensions:   extensions,
		UseGitignore: operationRunner.options.useGitignore,
	})
}

// forEachUnit runs process over every unit concurrently and gathers the
// produced reports.
func (operationRunner *runner) forEachUnit(
	executionContext context.Context,
	unitPaths []string,
	process func(processContext context.Context, unitPath string) ([]types.FileReport, error),
) ([]types.FileReport, error) {
	var reportsMutex sync.Mutex
	var reports []types.FileReport

	group, groupContext := errgroup.WithContext(executionContext)
	group.SetLimit(runtime.NumCPU())
	for _, unitPath := range unitPaths {
		currentPath := unitPath
		group.Go(func() error {
			unitReports, processError := process(groupContext, currentPath)
			if processError != nil {
				return fmt.Errorf("%s: %w", currentPath, processError)
			}
			reportsMutex.Lock()
			reports = append(reports, unitReports...)
			reportsMutex.Unlock()
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}
	return reports, nil
}

// sourceTransform rewrites one chunk of Python source.
type sourceTransform func(transformContext context.Context, displayPath string, sourceText string) (string, error)

// transformUnits applies transform to every discovered unit, rewriting script
// files whole and notebooks cell by cell.
func (operationRunner *runner) transformUnits(
	executionContext context.Context,
	rootPath string,
	extensions []string,
	transform sourceTransform,
) ([]types.FileReport, error) {
	unitPaths, collectError := operationRunner.collectUnits(rootPath, extensions)
	if collectError != nil {
		return nil, collectError
	}

	return operationRunner.forEachUnit(executionContext, unitPaths, func(processContext context.Context, unitPath string) ([]types.FileReport, error) {
		if strings.HasSuffix(unitPath, types.NotebookFileExtension) {
			return operationRunner.transformNotebook(processContext, unitPath, transform)
		}
		return operationRunner.transformScript(processContext, unitPath, transform)
	})
}

// transformScript applies transform to one Python file.
func (operationRunner *runner) transformScript(
	executionContext context.Context,
	unitPath string,
	transform sourceTransform,
) ([]types.FileReport, error) {
	sourceBytes, readError := os.ReadFile(unitPath)
	if readError != nil {
		return nil, fmt.Errorf("read: %w", readError)
	}

	sourceText := string(sourceBytes)
	transformedText, transformError := transform(executionContext, unitPath, sourceText)
	if transformError != nil {
		return nil, transformError
	}
	if transformedText == sourceText {
		return nil, nil
	}

	if operationRunner.options.onlyCheck {
		return []types.FileReport{{Path: unitPath, Message: wouldReformatMessage, Flagged: true}}, nil
	}
	if writeError := os.WriteFile(unitPath, []byte(transformedText), filePermissionsMask); writeError != nil {
		return nil, fmt.Errorf("write: %w", writeError)
	}
	return []types.FileReport{{Path: unitPath, Message: reformattedMessage, Flagged: true}}, nil
}

// transformNotebook applies transform to every non-empty code cell of one
// notebook. Cell text carries no trailing newline, so the newline the
// transform appends is dropped before comparison.
func (operationRunner *runner) transformNotebook(
	executionContext context.Context,
	unitPath string,
	transform sourceTransform,
) ([]types.FileReport, error) {
	parsedNotebook, openError := notebook.Open(unitPath)
	if openError != nil {
		return nil, openError
	}

	notebookModified := false
	for cellIndex, codeCell := range parsedNotebook.CodeCells(true) {
		cellText := codeCell.Text()
		displayPath := fmt.Sprintf(notebookCellDisplayFormat, unitPath, cellIndex)
		transformedText, transformError := transform(executionContext, displayPath, cellText+"\n")
		if transformError != nil {
			return nil, transformError
		}
		transformedText = strings.TrimSuffix(transformedText, "\n")
		if transformedText != cellText {
			codeCell.SetText(transformedText)
			notebookModified = true
		}
	}
	if !notebookModified {
		return nil, nil
	}

	if operationRunner.options.onlyCheck {
		return []types.FileReport{{Path: unitPath, Message: wouldReformatMessage, Flagged: true}}, nil
	}
	if saveError := parsedNotebook.Save(unitPath); saveError != nil {
		return nil, saveError
	}
	return []types.FileReport{{Path: unitPath, Message: reformattedMessage, Flagged: true}}, nil
}

// checkUnits runs the style check over every discovered unit. Notebook cells
// are checked one by one under a cell-qualified display name.
func (operationRunner *runner) checkUnits(executionContext context.Context, rootPath string) ([]types.FileReport, error) {
	unitPaths, collectError := operationRunner.collectUnits(rootPath, codeUnitExtensions)
	if collectError != nil {
		return nil, collectError
	}

	checkEngine := engines.NewFlake8Engine(operationRunner.parameters.Flake8)
	return operationRunner.forEachUnit(executionContext, unitPaths, func(processContext context.Context, unitPath string) ([]types.FileReport, error) {
		if strings.HasSuffix(unitPath, types.NotebookFileExtension) {
			return checkNotebook(processContext, checkEngine, unitPath)
		}

		sourceBytes, readError := os.ReadFile(unitPath)
		if readError != nil {
			return nil, fmt.Errorf("read: %w", readError)
		}
		findings, checkError := checkEngine.CheckSource(processContext, unitPath, string(sourceBytes))
		if checkError != nil {
			return nil, checkError
		}
		return findingReports(unitPath, findings), nil
	})
}

// checkNotebook style-checks the code cells of one notebook.
func checkNotebook(executionContext context.Context, checkEngine *engines.Flake8Engine, unitPath string) ([]types.FileReport, error) {
	parsedNotebook, openError := notebook.Open(unitPath)
	if openError != nil {
		return nil, openError
	}

	var reports []types.FileReport
	for cellIndex, codeCell := range parsedNotebook.CodeCells(true) {
		displayPath := fmt.Sprintf(notebookCellDisplayFormat, unitPath, cellIndex)
		findings, checkError := checkEngine.CheckSource(executionContext, displayPath, codeCell.Text()+"\n")
		if checkError != nil {
			return nil, checkError
		}
		reports = append(reports, findingReports(displayPath, findings)...)
	}
	return reports, nil
}

// findingReports converts style findings into flagged reports.
func findingReports(unitPath string, findings []string) []types.FileReport {
	var reports []types.FileReport
	for _, finding := range findings {
		reports = append(reports, types.FileReport{Path: unitPath, Message: finding, Flagged: true})
	}
	return reports
}

// fixNewlines repairs missing trailing newlines over every Python file.
func (operationRunner *runner) fixNewlines(executionContext context.Context, rootPath string) ([]types.FileReport, error) {
	unitPaths, collectError := operationRunner.collectUnits(rootPath, []string{types.PythonFileExtension})
	if collectError != nil {
		return nil, collectError
	}

	return operationRunner.forEachUnit(executionContext, unitPaths, func(processContext context.Context, unitPath string) ([]types.FileReport, error) {
		newlineMissing, processError := newline.Process(unitPath, operationRunner.options.onlyCheck)
		if processError != nil {
			return nil, processError
		}
		if !newlineMissing {
			return nil, nil
		}
		reportMessage := newlineAppendedMessage
		if operationRunner.options.onlyCheck {
			reportMessage = missingNewlineMessage
		}
		return []types.FileReport{{Path: unitPath, Message: reportMessage, Flagged: true}}, nil
	})
}

// cleanNotebooks strips outputs and execution counts from every notebook.
func (operationRunner *runner) cleanNotebooks(executionContext context.Context, rootPath string) ([]types.FileReport, error) {
	unitPaths, collectError := operationRunner.collectUnits(rootPath, []string{types.NotebookFileExtension})
	if collectError != nil {
		return nil, collectError
	}

	return operationRunner.forEachUnit(executionContext, unitPaths, func(processContext context.Context, unitPath string) ([]types.FileReport, error) {
		parsedNotebook, openError := notebook.Open(unitPath)
		if openError != nil {
			return nil, openError
		}

		notebookDirty := false
		for _, codeCell := range parsedNotebook.CodeCells(false) {
			if codeCell.HasOutput(true) {
				notebookDirty = true
			}
			codeCell.ClearOutputs(true)
		}
		if !notebookDirty {
			return nil, nil
		}

		if operationRunner.options.onlyCheck {
			return []types.FileReport{{Path: unitPath, Message: wouldCleanMessage, Flagged: true}}, nil
		}
		if saveError := parsedNotebook.Save(unitPath); saveError != nil {
			return nil, saveError
		}
		return []types.FileReport{{Path: unitPath, Message: cleanedMessage, Flagged: true}}, nil
	})
}

// sortReports orders reports by path so concurrent processing stays
// deterministic in the rendered output.
func sortReports(reports []types.FileReport) {
	sort.Slice(reports, func(firstIndex, secondIndex int) bool {
		if reports[firstIndex].Path != reports[secondIndex].Path {
			return reports[firstIndex].Path < reports[secondIndex].Path
		}
		return reports[firstIndex].Message < reports[secondIndex].Message
	})
}
