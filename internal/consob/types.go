// Package consob downloads and parses the CONSOB net short-position
// spreadsheet. This package centralizes all interactions with the regulator's
// publication endpoint.
package consob

import (
	"fmt"
	"time"

	"github.com/ternarybob/shortwatch/internal/models"
)

// Required sheet names, exact including surrounding spaces.
const (
	SheetCurrent         = " Correnti - Current "
	SheetHistoric        = " Storiche - Historic "
	SheetPublicationDate = " Pubb. Data - Pubb. Date "
)

// Column headers of the data sheets (second row; the first row is a banner).
const (
	ColISIN         = "ISIN"
	ColHolder       = "Position Holder"
	ColNetShort     = "Net Short Position (%)"
	ColPositionDate = "Position Date"
	ColIssuer       = "Share Issuer"
)

// Workbook holds the parsed content of one downloaded spreadsheet.
type Workbook struct {
	Current         []models.PositionRecord
	Historical      []models.PositionRecord
	PublicationDate time.Time
	RawPath         string // Where the raw xlsx bytes were saved
}

// APIError represents a non-2xx response from the publication endpoint.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("CONSOB download error: %s (status: %d, url: %s)", e.Message, e.StatusCode, e.URL)
}

// ParseError represents a workbook layout or value the parser cannot handle.
type ParseError struct {
	Sheet  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("CONSOB workbook parse error in sheet %q: %s", e.Sheet, e.Reason)
}
