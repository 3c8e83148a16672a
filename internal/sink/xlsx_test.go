package sink

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestXLSXSink_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	s := NewXLSXSink(path)

	require.NoError(t, s.Write(context.Background(), sampleLeads()))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Leads", sheet.Name)
	require.Len(t, sheet.Rows, 3)

	for i, col := range Columns {
		assert.Equal(t, col, sheet.Rows[0].Cells[i].Value)
	}
	assert.Equal(t, "Sushi Tomi", sheet.Rows[1].Cells[0].Value)
	assert.Equal(t, "1200", sheet.Rows[1].Cells[3].Value)
	assert.Equal(t, "N/A", sheet.Rows[2].Cells[2].Value)
}

func TestXLSXSink_EmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	s := NewXLSXSink(path)

	require.NoError(t, s.Write(context.Background(), nil))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, file.Sheets[0].Rows, 1)
}
