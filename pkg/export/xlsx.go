package export

import (
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet worth of rows; the first row is conventionally a
// header.
type Sheet struct {
	Name string
	Rows [][]any
}

// AmortRow is one month of an amortization schedule as it lands in the
// workbook.
type AmortRow struct {
	Month       int
	Interest    float64
	TSF         float64
	Capital     float64
	Annuity     float64
	Outstanding float64
}

func buildWorkbook(sheets []Sheet) (*excelize.File, error) {
	f := excelize.NewFile()
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return nil, err
		}
		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// WriteWorkbook saves a multi-sheet workbook at the local counterpart of a
// public /files/ path.
func (e Exporter) WriteWorkbook(public string, sheets []Sheet) error {
	path, err := e.Resolve(public)
	if err != nil {
		return err
	}
	f, err := buildWorkbook(sheets)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// WriteAmortization streams an amortization workbook, used by the xlsx
// export endpoint which serves the file without touching disk.
func WriteAmortization(w io.Writer, rows []AmortRow) error {
	sheet := Sheet{
		Name: "Amortization",
		Rows: [][]any{{"Month", "Interest", "TSF", "Capital", "Annuity", "Outstanding"}},
	}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, []any{r.Month, r.Interest, r.TSF, r.Capital, r.Annuity, r.Outstanding})
	}
	f, err := buildWorkbook([]Sheet{sheet})
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}
