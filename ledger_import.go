package reconcile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// sectionMarker is the line that opens the securities table in the ledger
// export. Everything before it is free-form account metadata.
const sectionMarker = "Securities"

// LedgerRow is one raw security row from the ledger export, untouched
// strings straight from the file.
type LedgerRow struct {
	Symbol string
	Name   string
	Shares string // "Close Shares" column
	Value  string // "Close Value" column, currency formatted
}

// requiredColumns of the export's securities table.
var requiredColumns = []string{"Symbol", "Name", "Close Shares", "Close Value"}

// ReadLedgerExportFile opens and parses a ledger export file.
func ReadLedgerExportFile(path string) ([]LedgerRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputFile, err)
	}
	defer f.Close()
	rows, err := ReadLedgerExport(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ReadLedgerExport parses a ledger export: metadata header lines, then the
// securities section marker, then the exact header row, then delimited
// security rows.
//
// It fails with ErrInputFile when the section marker is missing, and with
// ErrMalformedInput when a required column is absent from the header row.
func ReadLedgerExport(r io.Reader) ([]LedgerRow, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputFile, err)
	}
	lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")

	// Locate the securities section marker. The export prepends a variable
	// number of metadata lines, so scan rather than count.
	start := -1
	for i, line := range lines {
		if firstField(line) == sectionMarker {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("%w: no %q section marker", ErrInputFile, sectionMarker)
	}

	// The header row is the first non-blank line after the marker.
	header := -1
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, fmt.Errorf("%w: %q section has no header row", ErrInputFile, sectionMarker)
	}

	cr := csv.NewReader(strings.NewReader(strings.Join(lines[header:], "\n")))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty securities table", ErrMalformedInput)
	}

	// Map required columns to their index.
	cols := make(map[string]int)
	for i, name := range records[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedInput, name)
		}
	}

	var rows []LedgerRow
	for _, record := range records[1:] {
		if len(record) == 0 || strings.TrimSpace(strings.Join(record, "")) == "" {
			continue
		}
		if len(record) < len(records[0]) {
			return nil, fmt.Errorf("%w: short row %q", ErrMalformedInput, strings.Join(record, ","))
		}
		rows = append(rows, LedgerRow{
			Symbol: strings.TrimSpace(record[cols["Symbol"]]),
			Name:   strings.TrimSpace(record[cols["Name"]]),
			Shares: strings.TrimSpace(record[cols["Close Shares"]]),
			Value:  strings.TrimSpace(record[cols["Close Value"]]),
		})
	}
	return rows, nil
}

// firstField returns the first comma-separated field of a line.
func firstField(line string) string {
	if i := strings.IndexByte(line, ','); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}
