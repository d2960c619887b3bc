// Package report renders analysis results as aligned console tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/ternarybob/shortwatch/internal/models"
)

const dateLayout = "02/01/2006"

// Reporter writes position tables and the generated explanation to an
// output stream.
type Reporter struct {
	out io.Writer
}

// NewReporter creates a reporter writing to out.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// WriteAnalysis prints the three result tables in a fixed order: new
// positions, closed positions, positions grouped by asset.
func (r *Reporter) WriteAnalysis(result *models.AnalysisResult) error {
	if err := r.writePositionTable("New Short Positions", result.NewPositions); err != nil {
		return err
	}
	if err := r.writePositionTable("Closed Short Positions", result.ClosedPositions); err != nil {
		return err
	}
	return r.writeAssetTable("Short Positions by Asset", result.ByAsset)
}

// WriteExplanation prints the generated explanation for a company. Empty
// explanations are noted rather than silently dropped.
func (r *Reporter) WriteExplanation(company, explanation string) error {
	if explanation == "" {
		_, err := fmt.Fprintf(r.out, "\nNo explanation available for %s.\n", company)
		return err
	}
	_, err := fmt.Fprintf(r.out, "\nWhy short positions on %s:\n%s\n", company, explanation)
	return err
}

func (r *Reporter) writePositionTable(title string, positions []models.PositionRecord) error {
	if _, err := fmt.Fprintf(r.out, "\n%s:\n", title); err != nil {
		return err
	}

	if len(positions) == 0 {
		_, err := fmt.Fprintln(r.out, "  (none)")
		return err
	}

	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ISIN\tPosition Holder\tNet Short (%)\tPosition Date\tShare Issuer")
	for _, p := range positions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.ISIN,
			p.Holder,
			formatPercent(p.NetShortPercent),
			p.PositionDate.Format(dateLayout),
			p.Issuer,
		)
	}
	return w.Flush()
}

func (r *Reporter) writeAssetTable(title string, aggregates []models.AssetAggregate) error {
	if _, err := fmt.Fprintf(r.out, "\n%s:\n", title); err != nil {
		return err
	}

	if len(aggregates) == 0 {
		_, err := fmt.Fprintln(r.out, "  (none)")
		return err
	}

	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ISIN\tShare Issuer\tPosition Holders\tNet Short (%)")
	for _, a := range aggregates {
		percents := make([]string, len(a.Percentages))
		for i, p := range a.Percentages {
			percents[i] = formatPercent(p)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			a.ISIN,
			a.Issuer,
			strings.Join(a.Holders, ", "),
			strings.Join(percents, ", "),
		)
	}
	return w.Flush()
}

// formatPercent trims trailing zeros so 0.50 prints as 0.5 and 1.00 as 1.
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
