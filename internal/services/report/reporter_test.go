package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/shortwatch/internal/models"
)

func date(day int) time.Time {
	return time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC)
}

func TestWriteAnalysisTableOrder(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(&buf)

	result := &models.AnalysisResult{
		NewPositions: []models.PositionRecord{
			{ISIN: "IT0003132476", Holder: "Marshall Wace LLP", NetShortPercent: 0.61, PositionDate: date(9), Issuer: "ENI"},
		},
		ClosedPositions: []models.PositionRecord{
			{ISIN: "IT0005239360", Holder: "AQR Capital", NetShortPercent: 0.5, PositionDate: date(9), Issuer: "UNICREDIT"},
		},
		ByAsset: []models.AssetAggregate{
			{ISIN: "IT0003132476", Issuer: "ENI", Holders: []string{"Marshall Wace LLP", "Citadel"}, Percentages: []float64{0.61, 0.52}},
		},
	}

	require.NoError(t, reporter.WriteAnalysis(result))
	out := buf.String()

	newIdx := strings.Index(out, "New Short Positions:")
	closedIdx := strings.Index(out, "Closed Short Positions:")
	assetIdx := strings.Index(out, "Short Positions by Asset:")
	require.NotEqual(t, -1, newIdx)
	require.NotEqual(t, -1, closedIdx)
	require.NotEqual(t, -1, assetIdx)
	assert.Less(t, newIdx, closedIdx)
	assert.Less(t, closedIdx, assetIdx)

	assert.Contains(t, out, "Marshall Wace LLP")
	assert.Contains(t, out, "09/01/2024")
	assert.Contains(t, out, "Marshall Wace LLP, Citadel")
	assert.Contains(t, out, "0.61, 0.52")
}

func TestWriteAnalysisEmptySections(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(&buf)

	require.NoError(t, reporter.WriteAnalysis(&models.AnalysisResult{}))
	out := buf.String()

	assert.Equal(t, 3, strings.Count(out, "(none)"))
}

func TestFormatPercentTrimsZeros(t *testing.T) {
	assert.Equal(t, "0.5", formatPercent(0.5))
	assert.Equal(t, "1", formatPercent(1.0))
	assert.Equal(t, "0.61", formatPercent(0.61))
}

func TestWriteExplanation(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(&buf)

	require.NoError(t, reporter.WriteExplanation("ENI", "earnings miss expected"))
	assert.Contains(t, buf.String(), "Why short positions on ENI:")
	assert.Contains(t, buf.String(), "earnings miss expected")

	buf.Reset()
	require.NoError(t, reporter.WriteExplanation("ENI", ""))
	assert.Contains(t, buf.String(), "No explanation available for ENI.")
}
