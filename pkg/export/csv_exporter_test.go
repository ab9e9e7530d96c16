package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()

	data := Dataset{
		Title:   "Event Report",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Confirmed", "10"},
			{"Attended", "8"},
		},
	}
	content, err := exporter.Render(data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Metric,Value", lines[0])
	require.Equal(t, "Confirmed,10", lines[1])
	require.NotContains(t, string(content), "Event Report")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}

func TestCSVExporterRejectsRaggedRows(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{
		Headers: []string{"Metric", "Value"},
		Rows:    [][]string{{"Confirmed"}},
	})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()

	data := Dataset{
		Title:   "Event Report",
		Headers: []string{"Metric", "Value"},
		Rows:    [][]string{{"Confirmed", "10"}},
	}
	content, err := exporter.Render(data)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(content), "%PDF"))
}

func TestColumnWidthsFillThePage(t *testing.T) {
	for _, count := range []int{1, 2, 5} {
		widths := columnWidths(count)
		require.Len(t, widths, count)
		var sum float64
		for _, w := range widths {
			sum += w
		}
		require.InDelta(t, pdfPageWidth, sum, 0.001)
	}
}
