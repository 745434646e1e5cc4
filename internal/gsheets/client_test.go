package gsheets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockValuesAPI struct {
	getFunc func(ctx context.Context, spreadsheetID, readRange string) ([][]any, error)
}

func (m *mockValuesAPI) Get(ctx context.Context, spreadsheetID, readRange string) ([][]any, error) {
	return m.getFunc(ctx, spreadsheetID, readRange)
}

func TestFetchRecords(t *testing.T) {
	mock := &mockValuesAPI{
		getFunc: func(ctx context.Context, spreadsheetID, readRange string) ([][]any, error) {
			assert.Equal(t, "sheet-123", spreadsheetID)
			assert.Equal(t, "Spend!A:F", readRange)
			return [][]any{
				{"date", "Cloud", "service", "team", "env", "cost_usd"},
				{"2024-01-01", "aws", "EC2", "Web", "prod", 12.5},
				{},
				{"", "", "", "", ""},
				{"2024-01-02", "GCP", "BigQuery"},
			}, nil
		},
	}

	records, err := NewClientWithAPI(mock).FetchRecords(context.Background(), "sheet-123", "Spend!A:F")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "AWS", records[0].Provider())
	assert.Equal(t, "12.5", records[0].CostUSD.String())
	assert.Equal(t, "Web", records[0].Team)

	assert.Equal(t, "BigQuery", records[1].Service)
	assert.Equal(t, "", records[1].Team)
	assert.True(t, records[1].CostUSD.IsZero())
	assert.Len(t, records[1].Fields, 6)
}

func TestFetchRecords_Error(t *testing.T) {
	mock := &mockValuesAPI{
		getFunc: func(ctx context.Context, spreadsheetID, readRange string) ([][]any, error) {
			return nil, errors.New("permission denied")
		},
	}

	_, err := NewClientWithAPI(mock).FetchRecords(context.Background(), "id", "A:B")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read A:B: permission denied")
}

func TestParseRows_Empty(t *testing.T) {
	assert.Nil(t, parseRows(nil))
	assert.Nil(t, parseRows([][]any{{"date", "cost"}}))
}

func TestParseRows_SkipsUnnamedColumns(t *testing.T) {
	records := parseRows([][]any{
		{"date", "", "cost"},
		{"2024-01-01", "ignored", "3"},
	})
	require.Len(t, records, 1)
	assert.Len(t, records[0].Fields, 2)
	assert.Equal(t, "3", records[0].CostUSD.String())
}

func TestNewClient_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := NewClient(context.Background(), "")
	assert.ErrorContains(t, err, "missing Google credentials")
}
