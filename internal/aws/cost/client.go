package cost

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/shopspring/decimal"

	"tasnim.dev/cloudspend/internal/spend"
)

// CostExplorerAPI is the subset of the AWS Cost Explorer client we use.
type CostExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

// Client wraps the AWS Cost Explorer API.
type Client struct {
	ce  CostExplorerAPI
	now func() time.Time // injectable for testing; defaults to time.Now
}

// NewClient creates a new Cost Explorer client from an AWS config.
func NewClient(cfg aws.Config) *Client {
	return &Client{ce: costexplorer.NewFromConfig(cfg), now: time.Now}
}

// NewClientWithAPI creates a client with a custom API implementation (for testing).
func NewClientWithAPI(api CostExplorerAPI) *Client {
	return &Client{ce: api, now: time.Now}
}

// dateRange computes the [start, end) window covering the current month and
// the months-1 before it, ending tomorrow so today's partial spend is included.
func dateRange(now time.Time, months int) (start, end time.Time) {
	if months < 1 {
		months = DefaultMonths
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return monthStart.AddDate(0, -(months - 1), 0), today.AddDate(0, 0, 1)
}

// groupValue strips the "key$" prefix Cost Explorer puts on tag group keys.
func groupValue(key string) string {
	if _, v, ok := strings.Cut(key, "$"); ok {
		return v
	}
	return key
}

// recordsFromResults flattens grouped daily results into spend records.
func recordsFromResults(results []types.ResultByTime, teamTag bool) []spend.Record {
	var records []spend.Record
	for _, result := range results {
		date := aws.ToString(result.TimePeriod.Start)
		for _, group := range result.Groups {
			if len(group.Keys) == 0 {
				continue
			}
			metric := group.Metrics[metricName]
			amount, err := decimal.NewFromString(aws.ToString(metric.Amount))
			if err != nil {
				amount = decimal.Zero
			}

			r := spend.Record{
				Date:    date,
				Cloud:   spend.ProviderAWS,
				Service: group.Keys[0],
				CostUSD: amount,
			}
			if teamTag && len(group.Keys) > 1 {
				r.Team = groupValue(group.Keys[1])
			}
			records = append(records, r)
		}
	}
	return records
}

// FetchRecords retrieves daily unblended cost grouped by service and, when a
// team tag is configured, by that tag. Result pages are followed to the end.
func (c *Client) FetchRecords(ctx context.Context, q Query) ([]spend.Record, error) {
	start, end := dateRange(c.now(), q.Months)

	groupBy := []types.GroupDefinition{
		{Type: types.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
	}
	if q.TeamTag != "" {
		groupBy = append(groupBy, types.GroupDefinition{
			Type: types.GroupDefinitionTypeTag,
			Key:  aws.String(q.TeamTag),
		})
	}

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &types.DateInterval{
			Start: aws.String(start.Format(time.DateOnly)),
			End:   aws.String(end.Format(time.DateOnly)),
		},
		Granularity: types.GranularityDaily,
		Metrics:     []string{metricName},
		GroupBy:     groupBy,
	}

	var records []spend.Record
	for {
		out, err := c.ce.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("GetCostAndUsage: %w", err)
		}
		records = append(records, recordsFromResults(out.ResultsByTime, q.TeamTag != "")...)

		if aws.ToString(out.NextPageToken) == "" {
			return records, nil
		}
		input.NextPageToken = out.NextPageToken
	}
}
