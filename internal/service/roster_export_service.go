package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-enrollment-roster/internal/models"
	appErrors "github.com/noah-isme/sma-enrollment-roster/pkg/errors"
	"github.com/noah-isme/sma-enrollment-roster/pkg/export"
)

// Supported roster export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var rosterExportHeaders = []string{"ID", "Name", "Email", "Contact Number", "Course", "Status", "Registration Date"}

type tableRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// RosterSource is anything that can list records newest first.
type RosterSource interface {
	All() []models.StudentRecord
}

// ExportFile is a rendered roster ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// RosterExportService renders the roster listing as a downloadable table.
type RosterExportService struct {
	renderers map[string]tableRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewRosterExportService wires the CSV and PDF renderers.
func NewRosterExportService(csv, pdf tableRenderer, logger *zap.Logger) *RosterExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	renderers := map[string]tableRenderer{}
	if csv != nil {
		renderers[ExportFormatCSV] = csv
	}
	if pdf != nil {
		renderers[ExportFormatPDF] = pdf
	}
	return &RosterExportService{
		renderers: renderers,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Export renders roster newest first in the requested format.
func (s *RosterExportService) Export(roster RosterSource, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}

	records := roster.All()
	dataset := export.Dataset{
		Title:   "Student Registry",
		Headers: rosterExportHeaders,
		Rows:    make([][]string, 0, len(records)),
	}
	for _, rec := range records {
		dataset.Rows = append(dataset.Rows, []string{
			rec.ID,
			rec.Name,
			rec.Email,
			rec.ContactNumber,
			string(rec.Course),
			string(rec.Status),
			rec.RegistrationDate.Format(time.RFC3339),
		})
	}

	body, err := renderer.Render(dataset)
	if err != nil {
		s.logger.Error("roster export failed", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("students-%s.%s", s.now().Format("20060102-150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}
