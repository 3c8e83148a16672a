package sink

import (
	"context"
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// CSVSink writes leads to a CSV file with the shared column order.
type CSVSink struct {
	Path string
}

// NewCSVSink creates a CSVSink writing to path.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{Path: path}
}

// Write creates (or truncates) the output file and writes a header row plus
// one row per lead.
func (s *CSVSink) Write(_ context.Context, leads []model.Lead) error {
	f, err := os.Create(s.Path)
	if err != nil {
		return eris.Wrap(err, "sink: create csv file")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(Columns); err != nil {
		return eris.Wrap(err, "sink: write csv header")
	}

	for _, l := range leads {
		if err := w.Write(row(l)); err != nil {
			return eris.Wrapf(err, "sink: write csv row for %s", l.Name)
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "sink: flush csv")
}
