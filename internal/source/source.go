// Package source loads spend records from the backend selected by a source
// string: an HTTP endpoint, a local file, S3, Cost Explorer, SQLite or a
// Google Sheets range.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awss3sdk "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	awsclient "tasnim.dev/cloudspend/internal/aws"
	awscost "tasnim.dev/cloudspend/internal/aws/cost"
	awss3 "tasnim.dev/cloudspend/internal/aws/s3"
	"tasnim.dev/cloudspend/internal/gsheets"
	"tasnim.dev/cloudspend/internal/logging"
	"tasnim.dev/cloudspend/internal/spend"
)

// Fetcher loads the full record set on each call.
type Fetcher interface {
	Fetch(ctx context.Context) ([]spend.Record, error)
}

// FetchError is the single error kind a data load surfaces.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to load data from %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Options configure backend construction.
type Options struct {
	AWSProfile            string
	AWSRegion             string
	GoogleCredentialsFile string
	HTTPClient            *http.Client
	Logger                *logging.Logger

	// LoadAWSConfig overrides how AWS credentials are resolved. Pass one
	// awsclient.NewConfigLoader to share the config with other callers.
	LoadAWSConfig awsclient.LoadFunc
}

func (o Options) logger() *logging.Logger {
	if o.Logger == nil {
		return logging.Discard()
	}
	return o.Logger
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// Source is one named backend. Its errors are always *FetchError.
type Source struct {
	Name    string
	fetcher Fetcher
	log     *logging.Logger
}

// NewSource names an arbitrary fetcher.
func NewSource(name string, f Fetcher, log *logging.Logger) *Source {
	if log == nil {
		log = logging.Discard()
	}
	return &Source{Name: name, fetcher: f, log: log.WithComponent("source")}
}

func (s *Source) Fetch(ctx context.Context) ([]spend.Record, error) {
	start := time.Now()
	records, err := s.fetcher.Fetch(ctx)
	if err != nil {
		err = withAPICode(err)
		if ctx.Err() == nil {
			s.log.Warn("fetch failed", "source", s.Name, "error", err)
		}
		return nil, &FetchError{Source: s.Name, Err: err}
	}
	s.log.Info("fetched", "source", s.Name, "rows", len(records), "duration", time.Since(start))
	return records, nil
}

// withAPICode appends the AWS API error code to the message.
func withAPICode(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() != "" {
		return fmt.Errorf("%w [%s]", err, apiErr.ErrorCode())
	}
	return err
}

// New opens every source string and combines them.
func New(ctx context.Context, specs []string, opts Options) (*Multi, error) {
	if len(specs) == 0 {
		return nil, errors.New("no data source configured")
	}
	opts.LoadAWSConfig = awsclient.Cached(opts.loadAWS)

	sources := make([]*Source, 0, len(specs))
	for _, spec := range specs {
		s, err := Open(ctx, spec, opts)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return NewMulti(sources...), nil
}

// Open builds the backend for one source string.
func Open(ctx context.Context, spec string, opts Options) (*Source, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, errors.New("empty source")
	}

	u, err := url.Parse(spec)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain path (a single-letter scheme is a drive letter).
		return NewSource(spec, &File{Path: spec}, opts.Logger), nil
	}

	var f Fetcher
	name := spec
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		f = &HTTP{URL: spec, Client: opts.httpClient()}
		name = u.Redacted()
	case "file":
		f = &File{Path: hostPath(u)}
	case "sqlite":
		table := u.Query().Get("table")
		if table == "" {
			table = DefaultSQLiteTable
		}
		f = &SQLite{Path: hostPath(u), Table: table}
	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("source %q: missing bucket", spec)
		}
		cfg, err := opts.loadAWS(ctx)
		if err != nil {
			return nil, err
		}
		f = &S3{
			Client: awss3.NewClient(awss3sdk.NewFromConfig(cfg)),
			Bucket: u.Host,
			Key:    strings.TrimPrefix(u.Path, "/"),
		}
	case "aws-ce":
		q, err := costQuery(u)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", spec, err)
		}
		cfg, err := opts.loadAWS(ctx)
		if err != nil {
			return nil, err
		}
		f = &CostExplorer{Client: awscost.NewClient(cfg), Query: q}
	case "sheets":
		if u.Host == "" {
			return nil, fmt.Errorf("source %q: missing spreadsheet id", spec)
		}
		client, err := gsheets.NewClient(ctx, opts.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", spec, err)
		}
		f = &Sheets{Client: client, SpreadsheetID: u.Host, Range: sheetRange(u)}
	default:
		return nil, fmt.Errorf("source %q: unsupported scheme %q", spec, u.Scheme)
	}
	return NewSource(name, f, opts.Logger), nil
}

func (o Options) loadAWS(ctx context.Context) (awssdk.Config, error) {
	if o.LoadAWSConfig != nil {
		return o.LoadAWSConfig(ctx)
	}
	return awsclient.LoadConfig(ctx, o.AWSProfile, o.AWSRegion)
}

// hostPath rejoins host and path so relative paths like file://data/x.json work.
func hostPath(u *url.URL) string {
	return u.Host + u.Path
}

func sheetRange(u *url.URL) string {
	if r := strings.TrimPrefix(u.Path, "/"); r != "" {
		return r
	}
	return DefaultSheetRange
}

func costQuery(u *url.URL) (awscost.Query, error) {
	q := awscost.Query{Months: awscost.DefaultMonths, TeamTag: u.Query().Get("team_tag")}
	if m := u.Query().Get("months"); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil || n < 1 || n > 12 {
			return awscost.Query{}, fmt.Errorf("months must be 1..12, got %q", m)
		}
		q.Months = n
	}
	return q, nil
}
