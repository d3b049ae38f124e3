package types

import (
	"strings"
	"time"
)

// CrusadeStats is the single derived-aggregate row shown on the
// donation page. total_raised and total_donors are always recomputed
// from the donation set, never incremented in place.
type CrusadeStats struct {
	ID                  int       `db:"id"`
	TotalRaisedCents    int64     `db:"total_raised_cents"`
	TotalDonors         int       `db:"total_donors"`
	BudgetedAmountCents int64     `db:"budgeted_amount_cents"`
	CrusadesPlanned     int       `db:"crusades_planned"`
	CountriesList       *string   `db:"countries_list"`
	LastUpdated         time.Time `db:"last_updated"`
}

func (s *CrusadeStats) Countries() []string {
	if s.CountriesList == nil || strings.TrimSpace(*s.CountriesList) == "" {
		return []string{}
	}

	parts := strings.Split(*s.CountriesList, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
