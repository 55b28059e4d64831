package service

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-enrollment-roster/internal/models"
	appErrors "github.com/noah-isme/sma-enrollment-roster/pkg/errors"
	"github.com/noah-isme/sma-enrollment-roster/pkg/export"
)

type staticRoster []models.StudentRecord

func (s staticRoster) All() []models.StudentRecord { return s }

func sampleRoster() staticRoster {
	registered := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	return staticRoster{
		{ID: "2", Name: "Ben", Email: "ben@school.edu", ContactNumber: "555 000 1111", Course: models.CourseScience, Status: models.EnrollmentStatusPending, RegistrationDate: registered.Add(time.Minute)},
		{ID: "1", Name: "Ann", Email: "ann@school.edu", ContactNumber: "(555) 123-4567", Course: models.CourseMaths, Status: models.EnrollmentStatusEnrolled, RegistrationDate: registered},
	}
}

func TestRosterExportCSV(t *testing.T) {
	svc := NewRosterExportService(export.NewCSVExporter(), export.NewPDFExporter(), zap.NewNop())

	file, err := svc.Export(sampleRoster(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	rows, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, rosterExportHeaders, rows[0])
	assert.Equal(t, "Ben", rows[1][1])
	assert.Equal(t, "(555) 123-4567", rows[2][3])
	assert.Equal(t, "2024-05-02T10:00:00Z", rows[2][6])
}

func TestRosterExportDefaultsToCSV(t *testing.T) {
	svc := NewRosterExportService(export.NewCSVExporter(), export.NewPDFExporter(), zap.NewNop())

	file, err := svc.Export(staticRoster{}, " ")
	require.NoError(t, err)
	assert.Contains(t, file.ContentType, "text/csv")
}

func TestRosterExportPDF(t *testing.T) {
	svc := NewRosterExportService(export.NewCSVExporter(), export.NewPDFExporter(), zap.NewNop())

	file, err := svc.Export(sampleRoster(), "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestRosterExportUnsupportedFormat(t *testing.T) {
	svc := NewRosterExportService(export.NewCSVExporter(), nil, zap.NewNop())

	_, err := svc.Export(sampleRoster(), "pdf")
	assert.ErrorIs(t, err, appErrors.ErrUnsupportedFormat)

	_, err = svc.Export(sampleRoster(), "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrUnsupportedFormat)
}
