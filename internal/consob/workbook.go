package consob

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ternarybob/shortwatch/internal/models"
)

// publicationDateCell holds the publication date in the date sheet.
const publicationDateCell = "A2"

// dateLayouts are attempted in order when parsing spreadsheet date cells.
// The publication sheet uses DD/MM/YYYY; data-sheet cells come back in
// whatever display format the workbook applies.
var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"01-02-06",
	"02-01-2006",
	"2006-01-02 15:04:05",
}

// ParseWorkbook parses the three required sheets of a downloaded spreadsheet.
// Data sheets skip the first (banner) row; the second row carries the column
// headers. A missing sheet, missing column or malformed date is an error.
func ParseWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	current, err := parsePositionSheet(f, SheetCurrent)
	if err != nil {
		return nil, err
	}

	historical, err := parsePositionSheet(f, SheetHistoric)
	if err != nil {
		return nil, err
	}

	pubDate, err := parsePublicationDate(f)
	if err != nil {
		return nil, err
	}

	return &Workbook{
		Current:         current,
		Historical:      historical,
		PublicationDate: pubDate,
	}, nil
}

func parsePositionSheet(f *excelize.File, sheet string) ([]models.PositionRecord, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Sheet: sheet, Reason: err.Error()}
	}
	if len(rows) < 2 {
		return nil, &ParseError{Sheet: sheet, Reason: "expected a banner row followed by a header row"}
	}

	columns := make(map[string]int)
	for i, name := range rows[1] {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{ColISIN, ColHolder, ColNetShort, ColPositionDate, ColIssuer} {
		if _, ok := columns[required]; !ok {
			return nil, &ParseError{Sheet: sheet, Reason: fmt.Sprintf("missing column %q", required)}
		}
	}

	records := make([]models.PositionRecord, 0, len(rows)-2)
	for n, row := range rows[2:] {
		if isBlankRow(row) {
			continue
		}

		percent, err := parsePercent(cellAt(row, columns[ColNetShort]))
		if err != nil {
			return nil, &ParseError{Sheet: sheet, Reason: fmt.Sprintf("row %d: %v", n+3, err)}
		}

		posDate, err := parseDate(cellAt(row, columns[ColPositionDate]))
		if err != nil {
			return nil, &ParseError{Sheet: sheet, Reason: fmt.Sprintf("row %d: %v", n+3, err)}
		}

		records = append(records, models.PositionRecord{
			ISIN:            strings.TrimSpace(cellAt(row, columns[ColISIN])),
			Holder:          strings.TrimSpace(cellAt(row, columns[ColHolder])),
			NetShortPercent: percent,
			PositionDate:    posDate,
			Issuer:          strings.TrimSpace(cellAt(row, columns[ColIssuer])),
		})
	}

	return records, nil
}

func parsePublicationDate(f *excelize.File) (time.Time, error) {
	value, err := f.GetCellValue(SheetPublicationDate, publicationDateCell)
	if err != nil {
		return time.Time{}, &ParseError{Sheet: SheetPublicationDate, Reason: err.Error()}
	}

	date, err := parseDate(value)
	if err != nil {
		return time.Time{}, &ParseError{Sheet: SheetPublicationDate, Reason: err.Error()}
	}

	return date, nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date cell")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date format %q", value)
}

func parsePercent(value string) (float64, error) {
	value = strings.TrimSpace(strings.ReplaceAll(value, ",", "."))
	if value == "" {
		return 0, fmt.Errorf("empty net short position cell")
	}

	percent, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid net short position %q", value)
	}
	return percent, nil
}

func cellAt(row []string, i int) string {
	// GetRows truncates trailing empty cells
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
