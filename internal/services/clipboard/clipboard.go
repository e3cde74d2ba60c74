// Package clipboard copies rendered run reports to the system clipboard.
package clipboard

import (
	"github.com/atotto/clipboard"
)

// ReportCopier copies a rendered report to the system clipboard.
type ReportCopier interface {
	CopyReport(reportText string) error
}

// Service implements ReportCopier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a clipboard service implementation.
func NewService() *Service {
	return &Service{}
}

// CopyReport writes reportText to the system clipboard.
func (service *Service) CopyReport(reportText string) error {
	return clipboard.WriteAll(reportText)
}

var _ ReportCopier = (*Service)(nil)
