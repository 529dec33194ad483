package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Title", "Subject", "Status"},
		Rows: [][]string{
			{"Notes Ch1", "DPP20023", "APPROVED"},
			{"Final 2025", "DPP20033", "PENDING"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	require.Contains(t, string(out), "Title,Subject,Status")
	require.Contains(t, string(out), "Notes Ch1,DPP20023,APPROVED")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Material Catalog")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
