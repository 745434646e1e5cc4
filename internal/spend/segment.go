package spend

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SegmentKind selects how records are grouped into a segment.
type SegmentKind string

const (
	SegmentProvider SegmentKind = "provider"
	SegmentTeam     SegmentKind = "team"
)

// SegmentDetail describes one provider or team slice of a record set.
type SegmentDetail struct {
	Kind        SegmentKind
	Name        string
	Title       string
	Description string
	TotalSpend  decimal.Decimal
	// PercentOfTotal is the segment's share of the whole set's spend, 0..100.
	PercentOfTotal float64
	Records        int
	TeamsCount     int
	ServicesCount  int
}

// SegmentName returns the segment r belongs to for kind.
func SegmentName(r Record, kind SegmentKind) string {
	if kind == SegmentTeam {
		return TeamName(r)
	}
	provider := r.Provider()
	if bucket, ok := ProviderBucket(provider); ok {
		return bucket
	}
	return provider
}

// Segment summarizes the records of rows that fall into the named segment.
func Segment(rows []Record, kind SegmentKind, name string) SegmentDetail {
	detail := SegmentDetail{Kind: kind, Name: name}
	if kind == SegmentTeam {
		detail.Title = name + " team"
		detail.Description = fmt.Sprintf("Spend attributed to the %s team in the current view.", name)
	} else {
		detail.Title = name + " spend"
		detail.Description = fmt.Sprintf("Spend on %s in the current view.", name)
	}

	total := decimal.Zero
	teams := make(map[string]struct{})
	services := make(map[string]struct{})
	for _, r := range rows {
		total = total.Add(r.CostUSD)
		if !strings.EqualFold(SegmentName(r, kind), name) {
			continue
		}
		detail.Records++
		detail.TotalSpend = detail.TotalSpend.Add(r.CostUSD)
		teams[TeamName(r)] = struct{}{}
		if svc := strings.TrimSpace(r.Service); svc != "" {
			services[svc] = struct{}{}
		}
	}
	detail.TeamsCount = len(teams)
	detail.ServicesCount = len(services)

	if total.IsPositive() {
		detail.PercentOfTotal = detail.TotalSpend.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	return detail
}

// Explain renders a one-sentence description of a record, or "" when the
// record carries no provider, service, team or environment.
func Explain(r Record) string {
	var parts []string
	if p := r.Provider(); p != "" {
		parts = append(parts, p)
	}
	if s := strings.TrimSpace(r.Service); s != "" {
		parts = append(parts, s)
	}
	subject := strings.Join(parts, " ")

	var team, env string
	if t := strings.TrimSpace(r.Team); t != "" {
		team = t + " team"
	}
	if e := strings.TrimSpace(r.Env); e != "" {
		env = e + " environment"
	}

	if subject == "" && team == "" && env == "" {
		return ""
	}
	if subject == "" {
		subject = "cloud spend"
	}
	if team == "" {
		team = "unspecified team"
	}
	if env == "" {
		env = "unspecified environment"
	}
	return fmt.Sprintf("This is %s from the %s in the %s.", subject, team, env)
}
