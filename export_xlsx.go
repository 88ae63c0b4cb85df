package reconcile

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WritePositionsXLSX writes the position snapshot as a spreadsheet, one
// sheet with the same columns as the CSV snapshot.
func WritePositionsXLSX(w io.Writer, t *PositionTable) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	const sheet = "Positions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("cannot rename sheet: %w", err)
	}

	headers := []any{"Ticker", "Name", "Quantity", "Equity", "Quote", "Type", "Percentage"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("cannot write header %v: %w", h, err)
		}
	}

	total := t.TotalEquity()
	row := 2
	for p := range t.All() {
		values := []any{
			p.Ticker,
			p.Name,
			p.Quantity.String(),
			csvMoney(p.Equity),
			csvMoney(p.Quote),
			string(p.Class),
		}
		if p.Equity.Known() && !total.IsZero() {
			values = append(values, Percent(p.Equity.AsFloat()/total.AsFloat()*100).String())
		} else {
			values = append(values, "")
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("cannot write row for %q: %w", p.Ticker, err)
			}
		}
		row++
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("cannot write xlsx: %w", err)
	}
	return nil
}
