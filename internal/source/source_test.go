package source

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasnim.dev/cloudspend/internal/spend"
)

func TestHTTP_Fetch(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantRows int
		wantErr  string
	}{
		{"array body", http.StatusOK, `[{"cloud":"AWS","cost_usd":10},{"cloud":"GCP","cost_usd":5}]`, 2, ""},
		{"rows envelope", http.StatusOK, `{"rows":[{"cloud":"AWS"}]}`, 1, ""},
		{"no rows field", http.StatusOK, `{"total":0}`, 0, ""},
		{"not found", http.StatusNotFound, `nope`, 0, "HTTP 404 Not Found"},
		{"server error", http.StatusInternalServerError, `[]`, 0, "HTTP 500 Internal Server Error"},
		{"malformed", http.StatusOK, `[{"cloud":`, 0, "decoding records"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
				assert.Equal(t, http.MethodGet, r.Method)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			src, err := Open(context.Background(), srv.URL+"/api/spend", Options{HTTPClient: srv.Client()})
			require.NoError(t, err)

			records, err := src.Fetch(context.Background())
			if tt.wantErr != "" {
				var fe *FetchError
				require.ErrorAs(t, err, &fe)
				assert.Contains(t, fe.Err.Error(), tt.wantErr)
				assert.Contains(t, err.Error(), "failed to load data")
				return
			}
			require.NoError(t, err)
			assert.Len(t, records, tt.wantRows)
		})
	}
}

func TestHTTP_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src, err := Open(ctx, srv.URL, Options{HTTPClient: srv.Client()})
	require.NoError(t, err)
	_, err = src.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFile_Fetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spend.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"date":"2024-01-01","cloud":"gcp","cost":"3.25"}]`), 0o644))

	for _, spec := range []string{path, "file://" + path} {
		src, err := Open(context.Background(), spec, Options{})
		require.NoError(t, err)

		records, err := src.Fetch(context.Background())
		require.NoError(t, err, spec)
		require.Len(t, records, 1)
		assert.Equal(t, "GCP", records[0].Provider())
		assert.Equal(t, "3.25", records[0].CostUSD.String())
	}
}

func TestFile_Missing(t *testing.T) {
	src, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.json"), Options{})
	require.NoError(t, err)

	_, err = src.Fetch(context.Background())
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func writeSpendDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spend.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE spend (id TEXT, date TEXT, cloud_provider TEXT, service TEXT, team TEXT, env TEXT, cost_usd REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO spend VALUES
		('r1', '2024-01-01', 'aws', 'EC2', 'Web', 'prod', 10.5),
		('r2', '2024-01-02', 'gcp', 'GCE', NULL, 'dev', 4)`)
	require.NoError(t, err)
	return path
}

func TestSQLite_Fetch(t *testing.T) {
	path := writeSpendDB(t)

	src, err := Open(context.Background(), "sqlite://"+path+"?table=spend", Options{})
	require.NoError(t, err)

	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "r1", records[0].Key())
	assert.Equal(t, "AWS", records[0].Provider())
	assert.Equal(t, "10.5", records[0].CostUSD.String())
	assert.Equal(t, "", records[1].Team)
	assert.Equal(t, "4", records[1].CostUSD.String())
	assert.Len(t, records[1].Fields, 7)
}

func TestSQLite_InvalidTable(t *testing.T) {
	path := writeSpendDB(t)
	s := &SQLite{Path: path, Table: `spend"; DROP TABLE spend; --`}
	_, err := s.Fetch(context.Background())
	assert.ErrorContains(t, err, "invalid table name")
}

func TestSQLite_MissingFile(t *testing.T) {
	s := &SQLite{Path: filepath.Join(t.TempDir(), "none.db"), Table: "spend"}
	_, err := s.Fetch(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type fetchFunc func(ctx context.Context) ([]spend.Record, error)

func (f fetchFunc) Fetch(ctx context.Context) ([]spend.Record, error) { return f(ctx) }

func rows(services ...string) fetchFunc {
	return func(ctx context.Context) ([]spend.Record, error) {
		out := make([]spend.Record, len(services))
		for i, s := range services {
			out[i] = spend.Record{Service: s}
		}
		return out, nil
	}
}

func TestMulti_ConcatenatesInOrder(t *testing.T) {
	m := NewMulti(
		NewSource("a", rows("a1", "a2"), nil),
		NewSource("b", rows("b1"), nil),
		NewSource("c", rows(), nil),
	)

	records, err := m.Fetch(context.Background())
	require.NoError(t, err)

	var got []string
	for _, r := range records {
		got = append(got, r.Service)
	}
	assert.Equal(t, []string{"a1", "a2", "b1"}, got)
	assert.Equal(t, []string{"a", "b", "c"}, m.Names())
}

func TestMulti_AnyFailureFails(t *testing.T) {
	var calls atomic.Int32
	failing := fetchFunc(func(ctx context.Context) ([]spend.Record, error) {
		calls.Add(1)
		return nil, errors.New("boom")
	})

	m := NewMulti(NewSource("ok", rows("x"), nil), NewSource("bad", failing, nil))
	_, err := m.Fetch(context.Background())

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "bad", fe.Source)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSource_AddsAPIErrorCode(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "not authorized"}
	src := NewSource("aws-ce://", fetchFunc(func(ctx context.Context) ([]spend.Record, error) {
		return nil, apiErr
	}), nil)

	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[AccessDeniedException]")

	var got smithy.APIError
	assert.ErrorAs(t, err, &got)
}

func TestOpen_Schemes(t *testing.T) {
	opts := Options{
		LoadAWSConfig: func(ctx context.Context) (awssdk.Config, error) {
			return awssdk.Config{Region: "us-east-1"}, nil
		},
	}

	tests := []struct {
		spec  string
		check func(t *testing.T, f Fetcher)
	}{
		{"https://example.com/api/spend", func(t *testing.T, f Fetcher) {
			assert.IsType(t, &HTTP{}, f)
		}},
		{"./data/spend.json", func(t *testing.T, f Fetcher) {
			assert.Equal(t, "./data/spend.json", f.(*File).Path)
		}},
		{"file://data/spend.json", func(t *testing.T, f Fetcher) {
			assert.Equal(t, "data/spend.json", f.(*File).Path)
		}},
		{"sqlite:///var/lib/spend.db", func(t *testing.T, f Fetcher) {
			s := f.(*SQLite)
			assert.Equal(t, "/var/lib/spend.db", s.Path)
			assert.Equal(t, DefaultSQLiteTable, s.Table)
		}},
		{"s3://billing/exports/", func(t *testing.T, f Fetcher) {
			s := f.(*S3)
			assert.Equal(t, "billing", s.Bucket)
			assert.Equal(t, "exports/", s.Key)
		}},
		{"aws-ce://?months=3&team_tag=team", func(t *testing.T, f Fetcher) {
			c := f.(*CostExplorer)
			assert.Equal(t, 3, c.Query.Months)
			assert.Equal(t, "team", c.Query.TeamTag)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			src, err := Open(context.Background(), tt.spec, opts)
			require.NoError(t, err)
			tt.check(t, src.fetcher)
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr string
	}{
		{"", "empty source"},
		{"ftp://host/file", "unsupported scheme"},
		{"s3:///key", "missing bucket"},
		{"aws-ce://?months=0", "months must be 1..12"},
		{"sheets:///A:F", "missing spreadsheet id"},
	}
	for _, tt := range tests {
		_, err := Open(context.Background(), tt.spec, Options{})
		assert.ErrorContains(t, err, tt.wantErr, tt.spec)
	}
}

func TestNew_LoadsAWSConfigOnce(t *testing.T) {
	var loads atomic.Int32
	opts := Options{
		LoadAWSConfig: func(ctx context.Context) (awssdk.Config, error) {
			loads.Add(1)
			return awssdk.Config{Region: "us-east-1"}, nil
		},
	}

	m, err := New(context.Background(), []string{"s3://a/x.json", "aws-ce://", "s3://b/"}, opts)
	require.NoError(t, err)
	assert.Len(t, m.Names(), 3)
	assert.Equal(t, int32(1), loads.Load())

	_, err = New(context.Background(), nil, opts)
	assert.Error(t, err)
}

func TestOpen_SheetsMissingCredentials(t *testing.T) {
	src, err := Open(context.Background(), "sheets://abc", Options{GoogleCredentialsFile: filepath.Join(t.TempDir(), "missing.json")})
	assert.Nil(t, src)
	assert.ErrorContains(t, err, "read credentials file")
}
