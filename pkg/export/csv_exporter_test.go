package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Name", "Contact Number", "Course"},
		Rows: [][]string{
			{"Ann, Jr.", "(555) 123-4567", "Maths"},
			{"Ben"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Name,Contact Number,Course\n\"Ann, Jr.\",(555) 123-4567,Maths\nBen,,\n", string(out))
}

func TestCSVExporterNeutralisesFormulas(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Name", "Email", "Contact Number"},
		Rows: [][]string{
			{"=HYPERLINK(\"http://x\")", "@evil.com", "+1 555 123 4567"},
			{"-2+3", "ann@school.edu", "555-123-4567"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Name,Email,Contact Number\n"+
		"\"'=HYPERLINK(\"\"http://x\"\")\",'@evil.com,'+1 555 123 4567\n"+
		"'-2+3,ann@school.edu,555-123-4567\n", string(out))
}

func TestCSVExporterRejectsBadShapes(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)

	_, err = NewCSVExporter().Render(Dataset{Headers: []string{"A"}, Rows: [][]string{{"1", "2"}}})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	rows := make([][]string, 0, 80)
	for i := 0; i < 80; i++ {
		rows = append(rows, []string{"Student", "Pending"})
	}
	out, err := NewPDFExporter().Render(Dataset{Title: "Student Registry", Headers: []string{"Name", "Status"}, Rows: rows})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))

	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}
