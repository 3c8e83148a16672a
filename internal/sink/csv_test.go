package sink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func sampleLeads() []model.Lead {
	return []model.Lead{
		{
			Name:        "Sushi Tomi",
			Address:     "635 W Dana St, Mountain View",
			Rating:      "4.5",
			RatingCount: 1200,
			SourceURL:   "https://www.google.com/maps/search/?api=1&query=Google&query_place_id=id-tomi",
		},
		{
			Name:        "New Spot",
			Address:     "1 Castro St, Mountain View",
			Rating:      model.SentinelNA,
			RatingCount: 0,
			SourceURL:   "https://www.google.com/maps/search/?api=1&query=Google&query_place_id=id-new",
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVSink_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")
	s := NewCSVSink(path)

	require.NoError(t, s.Write(context.Background(), sampleLeads()))

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, Columns, records[0])
	assert.Equal(t, []string{
		"Sushi Tomi",
		"635 W Dana St, Mountain View",
		"4.5",
		"1200",
		"https://www.google.com/maps/search/?api=1&query=Google&query_place_id=id-tomi",
	}, records[1])
	assert.Equal(t, "N/A", records[2][2])
	assert.Equal(t, "0", records[2][3])
}

func TestCSVSink_EmptyBatchWritesHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")
	s := NewCSVSink(path)

	require.NoError(t, s.Write(context.Background(), nil))

	records := readCSV(t, path)
	require.Len(t, records, 1)
	assert.Equal(t, Columns, records[0])
}

func TestCSVSink_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")
	s := NewCSVSink(path)

	require.NoError(t, s.Write(context.Background(), sampleLeads()))
	require.NoError(t, s.Write(context.Background(), sampleLeads()[:1]))

	records := readCSV(t, path)
	assert.Len(t, records, 2)
}

func TestCSVSink_CreateError(t *testing.T) {
	s := NewCSVSink(filepath.Join(t.TempDir(), "missing", "leads.csv"))
	assert.Error(t, s.Write(context.Background(), sampleLeads()))
}

func TestRow_SentinelFallbacks(t *testing.T) {
	got := row(model.Lead{Name: "Bare", Address: "1 Main St"})
	assert.Equal(t, []string{"Bare", "1 Main St", "N/A", "0", "N/A"}, got)
}
