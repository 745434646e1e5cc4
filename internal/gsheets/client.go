// Package gsheets reads spend rows from a Google Sheets range whose first
// row holds the column names.
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"tasnim.dev/cloudspend/internal/spend"
)

// ValuesAPI reads a cell range as a matrix.
type ValuesAPI interface {
	Get(ctx context.Context, spreadsheetID, readRange string) ([][]any, error)
}

type Client struct {
	api ValuesAPI
}

func NewClientWithAPI(api ValuesAPI) *Client {
	return &Client{api: api}
}

// NewClient creates a read-only Sheets client from a service account file.
// An empty path falls back to GOOGLE_APPLICATION_CREDENTIALS.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	path := strings.TrimSpace(credentialsFile)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing Google credentials (set google_credentials_file or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	credentialsJSON, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{api: &serviceValues{svc: svc}}, nil
}

type serviceValues struct {
	svc *gsheet.Service
}

func (s *serviceValues) Get(ctx context.Context, spreadsheetID, readRange string) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// FetchRecords reads readRange and converts every data row to a record.
func (c *Client) FetchRecords(ctx context.Context, spreadsheetID, readRange string) ([]spend.Record, error) {
	values, err := c.api.Get(ctx, spreadsheetID, readRange)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", readRange, err)
	}
	return parseRows(values), nil
}

// parseRows maps each row after the header onto named fields. Blank rows are
// skipped; short rows leave trailing fields unset.
func parseRows(values [][]any) []spend.Record {
	if len(values) == 0 {
		return nil
	}
	headers := toStrings(values[0])

	var records []spend.Record
	for _, row := range values[1:] {
		if isBlank(row) {
			continue
		}
		fields := make([]spend.Field, 0, len(headers))
		for i, name := range headers {
			if name == "" {
				continue
			}
			var v any
			if i < len(row) {
				v = row[i]
			}
			fields = append(fields, spend.Field{Name: name, Value: v})
		}
		records = append(records, spend.FromFields(fields))
	}
	return records
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func isBlank(row []any) bool {
	for _, v := range row {
		if v != nil && strings.TrimSpace(fmt.Sprint(v)) != "" {
			return false
		}
	}
	return true
}
