package source

import (
	"context"
	"fmt"
	"net/http"
	"os"

	awscost "tasnim.dev/cloudspend/internal/aws/cost"
	"tasnim.dev/cloudspend/internal/constants"
	"tasnim.dev/cloudspend/internal/spend"
)

const (
	DefaultSQLiteTable = "spend"
	DefaultSheetRange  = "A:Z"
)

// HTTP fetches a JSON payload with a GET request.
type HTTP struct {
	URL    string
	Client *http.Client
}

func (h *HTTP) Fetch(ctx context.Context) ([]spend.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %s", resp.Status)
	}
	return spend.DecodeJSON(resp.Body, constants.MaxPayloadSize)
}

// File reads a JSON payload from disk.
type File struct {
	Path string
}

func (f *File) Fetch(ctx context.Context) ([]spend.Record, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return spend.DecodeJSON(file, constants.MaxPayloadSize)
}

type s3Reader interface {
	FetchRecords(ctx context.Context, bucket, key string) ([]spend.Record, error)
}

// S3 reads one export object, or every .json object under a prefix.
type S3 struct {
	Client s3Reader
	Bucket string
	Key    string
}

func (s *S3) Fetch(ctx context.Context) ([]spend.Record, error) {
	return s.Client.FetchRecords(ctx, s.Bucket, s.Key)
}

type costReader interface {
	FetchRecords(ctx context.Context, q awscost.Query) ([]spend.Record, error)
}

// CostExplorer loads daily AWS spend straight from Cost Explorer.
type CostExplorer struct {
	Client costReader
	Query  awscost.Query
}

func (c *CostExplorer) Fetch(ctx context.Context) ([]spend.Record, error) {
	return c.Client.FetchRecords(ctx, c.Query)
}

type sheetsReader interface {
	FetchRecords(ctx context.Context, spreadsheetID, readRange string) ([]spend.Record, error)
}

// Sheets reads a header-first range from a spreadsheet.
type Sheets struct {
	Client        sheetsReader
	SpreadsheetID string
	Range         string
}

func (s *Sheets) Fetch(ctx context.Context) ([]spend.Record, error) {
	return s.Client.FetchRecords(ctx, s.SpreadsheetID, s.Range)
}
