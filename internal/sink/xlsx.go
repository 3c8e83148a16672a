package sink

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// XLSXSink writes leads to a single-sheet XLSX workbook with the shared
// column order.
type XLSXSink struct {
	Path string
}

// NewXLSXSink creates an XLSXSink writing to path.
func NewXLSXSink(path string) *XLSXSink {
	return &XLSXSink{Path: path}
}

func (s *XLSXSink) Write(_ context.Context, leads []model.Lead) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "sink: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range Columns {
		header.AddCell().Value = col
	}

	for _, l := range leads {
		r := sheet.AddRow()
		for _, cell := range row(l) {
			r.AddCell().Value = cell
		}
	}

	return eris.Wrap(file.Save(s.Path), "sink: save xlsx file")
}
