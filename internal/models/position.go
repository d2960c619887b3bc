package models

import "time"

// PositionRecord is a single short-position disclosure row from the CONSOB
// spreadsheet. Rows carry no uniqueness constraint: the same holder/issuer
// pair may appear more than once across disclosure cycles.
type PositionRecord struct {
	ISIN            string    `json:"isin"`
	Holder          string    `json:"position_holder"`
	NetShortPercent float64   `json:"net_short_percent"`
	PositionDate    time.Time `json:"position_date"`
	Issuer          string    `json:"share_issuer"`
}

// AssetAggregate groups current positions by ISIN. Holders and Percentages
// are parallel, ordered by first appearance in the source table; Issuer is
// the first-encountered issuer name for the group.
type AssetAggregate struct {
	ISIN        string    `json:"isin"`
	Issuer      string    `json:"share_issuer"`
	Holders     []string  `json:"position_holders"`
	Percentages []float64 `json:"net_short_percents"`
}

// AnalysisResult is the output of one analyzer pass. Recomputed on every run,
// never persisted.
type AnalysisResult struct {
	PublicationDate time.Time        `json:"publication_date"`
	NewPositions    []PositionRecord `json:"new_positions"`
	ClosedPositions []PositionRecord `json:"closed_positions"`
	ByAsset         []AssetAggregate `json:"by_asset"`
}
