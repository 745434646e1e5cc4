package spend

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Known provider buckets.
const (
	ProviderAWS = "AWS"
	ProviderGCP = "GCP"
)

// KnownProviders lists the provider buckets in display order.
var KnownProviders = []string{ProviderAWS, ProviderGCP}

// UnknownTeam labels records without a team.
const UnknownTeam = "Unknown"

// Aggregates summarizes a record set.
type Aggregates struct {
	TotalRecords   int
	ProvidersCount int
	TotalSpend     decimal.Decimal

	// TotalsByProvider always carries every known bucket, even at zero.
	TotalsByProvider map[string]decimal.Decimal
	// Unattributed is the spend of records whose provider matches no bucket.
	Unattributed decimal.Decimal
	TotalsByTeam map[string]decimal.Decimal
}

// ProviderBucket maps a provider string onto a known bucket by substring,
// AWS first, so "AWS-GOV" lands in AWS.
func ProviderBucket(provider string) (string, bool) {
	p := strings.ToUpper(provider)
	for _, known := range KnownProviders {
		if strings.Contains(p, known) {
			return known, true
		}
	}
	return "", false
}

// TeamName returns the record team, or UnknownTeam when empty.
func TeamName(r Record) string {
	if t := strings.TrimSpace(r.Team); t != "" {
		return t
	}
	return UnknownTeam
}

// Aggregate reduces records into summary counts and totals.
func Aggregate(records []Record) Aggregates {
	agg := Aggregates{
		TotalRecords:     len(records),
		TotalsByProvider: make(map[string]decimal.Decimal, len(KnownProviders)),
		TotalsByTeam:     make(map[string]decimal.Decimal),
	}
	for _, p := range KnownProviders {
		agg.TotalsByProvider[p] = decimal.Zero
	}

	providers := make(map[string]struct{})
	for _, r := range records {
		provider := r.Provider()
		if provider != "" {
			providers[provider] = struct{}{}
		}

		agg.TotalSpend = agg.TotalSpend.Add(r.CostUSD)
		if bucket, ok := ProviderBucket(provider); ok {
			agg.TotalsByProvider[bucket] = agg.TotalsByProvider[bucket].Add(r.CostUSD)
		} else {
			agg.Unattributed = agg.Unattributed.Add(r.CostUSD)
		}

		team := TeamName(r)
		agg.TotalsByTeam[team] = agg.TotalsByTeam[team].Add(r.CostUSD)
	}
	agg.ProvidersCount = len(providers)
	return agg
}

// NamedTotal is one entry of a breakdown.
type NamedTotal struct {
	Name  string
	Total decimal.Decimal
}

// ProviderTotals returns the known buckets in display order.
func (a Aggregates) ProviderTotals() []NamedTotal {
	out := make([]NamedTotal, 0, len(KnownProviders))
	for _, p := range KnownProviders {
		out = append(out, NamedTotal{Name: p, Total: a.TotalsByProvider[p]})
	}
	return out
}

// TeamTotals returns team totals sorted by spend descending, then name.
func (a Aggregates) TeamTotals() []NamedTotal {
	out := make([]NamedTotal, 0, len(a.TotalsByTeam))
	for name, total := range a.TotalsByTeam {
		out = append(out, NamedTotal{Name: name, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// DailyTotal is the spend of one calendar day.
type DailyTotal struct {
	Date  string
	Spend decimal.Decimal
}

// DailyTotals sums spend per calendar day in ascending date order. Records
// without a date are skipped.
func DailyTotals(records []Record) []DailyTotal {
	byDay := make(map[string]decimal.Decimal)
	for _, r := range records {
		day := r.Day()
		if day == "" {
			continue
		}
		byDay[day] = byDay[day].Add(r.CostUSD)
	}

	out := make([]DailyTotal, 0, len(byDay))
	for day, total := range byDay {
		out = append(out, DailyTotal{Date: day, Spend: total})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}
