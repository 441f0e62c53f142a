package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Plan 2026-W42",
		Headers: []string{"Teacher", "Site"},
		Rows:    [][]string{{"Ana Muñoz", "Sede Norte"}, {"Luis, Jr.", "Sur"}},
		Widths:  []float64{2, 1},
		Footer:  "Budget 4.5 / 10 h",
	}
}

func TestCSVExporterQuotesAndSkipsTitle(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Teacher,Site\nAna Muñoz,Sede Norte\n\"Luis, Jr.\",Sur\n", string(out))
}

func TestExportersRejectRaggedRows(t *testing.T) {
	data := sampleDataset()
	data.Rows = append(data.Rows, []string{"only one"})
	_, err := NewCSVExporter().Render(data)
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(data)
	assert.Error(t, err)
}

func TestPDFExporterPaginates(t *testing.T) {
	data := sampleDataset()
	for i := 0; i < 80; i++ {
		data.Rows = append(data.Rows, []string{"Teacher", "Site"})
	}
	out, err := NewPDFExporter().Render(data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestColumnWidthsFallBackToEqual(t *testing.T) {
	widths := columnWidths(Dataset{Headers: []string{"a", "b"}, Widths: []float64{1}})
	assert.InDelta(t, pageWidth/2, widths[0], 1e-9)
	weighted := columnWidths(sampleDataset())
	assert.InDelta(t, pageWidth*2/3, weighted[0], 1e-9)
}
