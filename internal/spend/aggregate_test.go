package spend

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func rec(date, cloud, service, team, env, cost string) Record {
	return Record{
		Date:    date,
		Cloud:   cloud,
		Service: service,
		Team:    team,
		Env:     env,
		CostUSD: decimal.RequireFromString(cost),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAggregate_Example(t *testing.T) {
	records := []Record{
		rec("2024-01-01", "AWS", "EC2", "Web", "prod", "10"),
		rec("2024-01-02", "gcp", "BigQuery", "Data", "dev", "5"),
		rec("2024-01-03", "AWS", "S3", "", "prod", "2.5"),
	}

	agg := Aggregate(records)
	assert.Equal(t, 3, agg.TotalRecords)
	assert.Equal(t, 2, agg.ProvidersCount)
	assert.True(t, agg.TotalSpend.Equal(dec("17.5")))
	assert.True(t, agg.TotalsByProvider[ProviderAWS].Equal(dec("12.5")))
	assert.True(t, agg.TotalsByProvider[ProviderGCP].Equal(dec("5")))
	assert.True(t, agg.Unattributed.IsZero())
	assert.True(t, agg.TotalsByTeam[UnknownTeam].Equal(dec("2.5")))
}

func TestAggregate_Empty(t *testing.T) {
	agg := Aggregate(nil)
	assert.Equal(t, 0, agg.TotalRecords)
	assert.Equal(t, 0, agg.ProvidersCount)
	assert.True(t, agg.TotalSpend.IsZero())
	assert.Contains(t, agg.TotalsByProvider, ProviderAWS)
	assert.Contains(t, agg.TotalsByProvider, ProviderGCP)
}

func TestAggregate_UnknownProvider(t *testing.T) {
	records := []Record{
		rec("2024-01-01", "Azure", "VM", "Core", "prod", "4"),
		rec("2024-01-01", "aws-gov", "EC2", "Core", "prod", "1"),
		rec("2024-01-01", "", "misc", "Core", "prod", "2"),
	}

	agg := Aggregate(records)
	assert.Equal(t, 2, agg.ProvidersCount)
	assert.True(t, agg.TotalsByProvider[ProviderAWS].Equal(dec("1")))
	assert.True(t, agg.Unattributed.Equal(dec("6")))

	sum := agg.Unattributed
	for _, v := range agg.TotalsByProvider {
		sum = sum.Add(v)
	}
	assert.True(t, sum.Equal(agg.TotalSpend))
}

func TestProviderBucket(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"AWS", ProviderAWS, true},
		{"aws", ProviderAWS, true},
		{"GCP-EU", ProviderGCP, true},
		{"AWSGCP", ProviderAWS, true},
		{"Azure", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ProviderBucket(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
	}
}

func TestTeamTotals_Order(t *testing.T) {
	agg := Aggregate([]Record{
		rec("2024-01-01", "AWS", "EC2", "Web", "prod", "1"),
		rec("2024-01-01", "AWS", "EC2", "Data", "prod", "5"),
		rec("2024-01-01", "AWS", "EC2", "Core", "prod", "1"),
	})
	totals := agg.TeamTotals()
	names := []string{totals[0].Name, totals[1].Name, totals[2].Name}
	assert.Equal(t, []string{"Data", "Core", "Web"}, names)
}

func TestDailyTotals(t *testing.T) {
	daily := DailyTotals([]Record{
		rec("2024-01-02T10:00:00Z", "AWS", "EC2", "Web", "prod", "1"),
		rec("2024-01-01", "AWS", "EC2", "Web", "prod", "2"),
		rec("2024-01-02", "GCP", "GCE", "Web", "prod", "3"),
		rec("", "GCP", "GCE", "Web", "prod", "9"),
	})

	assert.Len(t, daily, 2)
	assert.Equal(t, "2024-01-01", daily[0].Date)
	assert.True(t, daily[1].Spend.Equal(dec("4")))
}
