// Package analyzer diffs current and historical short-position tables
// against a publication date. Pure in-memory transformation, no I/O.
package analyzer

import (
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/shortwatch/internal/models"
)

// Service analyzes short-position disclosures.
type Service struct {
	logger arbor.ILogger
}

// NewService creates a new analyzer service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Analyze partitions the tables by publication date and groups current
// positions by ISIN. New positions are current rows whose position date
// equals the publication date; closed positions are the matching historical
// rows. A publication date matching no rows yields empty sets.
func (s *Service) Analyze(current, historical []models.PositionRecord, publicationDate time.Time) *models.AnalysisResult {
	result := &models.AnalysisResult{
		PublicationDate: publicationDate,
		NewPositions:    filterByDate(current, publicationDate),
		ClosedPositions: filterByDate(historical, publicationDate),
		ByAsset:         groupByAsset(current),
	}

	if s.logger != nil {
		s.logger.Info().
			Str("publication_date", publicationDate.Format("2006-01-02")).
			Int("new", len(result.NewPositions)).
			Int("closed", len(result.ClosedPositions)).
			Int("assets", len(result.ByAsset)).
			Msg("Position analysis complete")
	}

	return result
}

// filterByDate keeps rows whose position date falls on the same calendar day
// as the publication date. Exact day match, no timezone drift.
func filterByDate(records []models.PositionRecord, date time.Time) []models.PositionRecord {
	matched := make([]models.PositionRecord, 0)
	for _, rec := range records {
		if sameDay(rec.PositionDate, date) {
			matched = append(matched, rec)
		}
	}
	return matched
}

// groupByAsset groups records by ISIN preserving input order. Holder names
// and percentages are collected in row order without deduplication; the
// issuer name is the first one encountered per group.
func groupByAsset(records []models.PositionRecord) []models.AssetAggregate {
	index := make(map[string]int)
	aggregates := make([]models.AssetAggregate, 0)

	for _, rec := range records {
		i, ok := index[rec.ISIN]
		if !ok {
			i = len(aggregates)
			index[rec.ISIN] = i
			aggregates = append(aggregates, models.AssetAggregate{
				ISIN:   rec.ISIN,
				Issuer: rec.Issuer,
			})
		}
		aggregates[i].Holders = append(aggregates[i].Holders, rec.Holder)
		aggregates[i].Percentages = append(aggregates[i].Percentages, rec.NetShortPercent)
	}

	return aggregates
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
