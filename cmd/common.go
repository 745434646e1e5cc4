package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"

	awsclient "tasnim.dev/cloudspend/internal/aws"
	"tasnim.dev/cloudspend/internal/config"
	"tasnim.dev/cloudspend/internal/logging"
	"tasnim.dev/cloudspend/internal/source"
	"tasnim.dev/cloudspend/internal/spend"
)

// commonFlags are shared by every command that loads spend data.
type commonFlags struct {
	sources  []string
	profile  string
	region   string
	pageSize int
	logFile  string
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.sources, "source", "s", nil,
		"spend source (repeatable): http(s) URL, file path, s3://, aws-ce://, sheets://, sqlite://")
	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", "AWS profile to use")
	cmd.Flags().StringVarP(&f.region, "region", "r", "", "AWS region to use")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "rows per page (10, 25, 50 or 100)")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "write JSON logs to this file")
}

// session is the resolved configuration of one command run.
type session struct {
	cfg      *config.Config
	profile  string
	region   string
	sources  []string
	pageSize int
	sort     spend.SortSpec
	log      *logging.Logger
	closeLog func() error

	// awsConfig is shared by the AWS sources and the account lookup.
	awsConfig     awsclient.LoadFunc
	callerAccount func(ctx context.Context, cfg aws.Config) (string, error)
}

// load resolves config file, environment and flags, in increasing precedence.
func (f *commonFlags) load(getenv func(string) string) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if f.pageSize != 0 {
		cfg.PageSize = f.pageSize
	}
	if f.logFile != "" {
		cfg.LogFile = f.logFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	sort, err := cfg.Sort()
	if err != nil {
		return nil, fmt.Errorf("invalid config: default_sort: %w", err)
	}
	log, closeLog, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	profile, region := cfg.Merge(f.profile, f.region)
	return &session{
		cfg:      cfg,
		profile:  profile,
		region:   region,
		sources:  cfg.SourceList(f.sources),
		pageSize: cfg.PageSizeOrDefault(),
		sort:     sort,
		log:      log,
		closeLog: closeLog,

		awsConfig:     awsclient.NewConfigLoader(profile, region),
		callerAccount: awsclient.GetAccountID,
	}, nil
}

func (s *session) openSources(ctx context.Context) (*source.Multi, error) {
	multi, err := source.New(ctx, s.sources, source.Options{
		AWSProfile:            s.profile,
		AWSRegion:             s.region,
		GoogleCredentialsFile: s.cfg.GoogleCredentialsFile,
		Logger:                s.log,
		LoadAWSConfig:         s.awsConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("opening sources: %w", err)
	}
	return multi, nil
}

// usesAWS reports whether any source reads from AWS.
func (s *session) usesAWS() bool {
	for _, spec := range s.sources {
		u, err := url.Parse(strings.TrimSpace(spec))
		if err != nil {
			continue
		}
		switch strings.ToLower(u.Scheme) {
		case "s3", "aws-ce":
			return true
		}
	}
	return false
}

// accountID resolves the caller's AWS account, or "" when unavailable.
func (s *session) accountID(ctx context.Context) string {
	cfg, err := s.awsConfig(ctx)
	if err != nil {
		s.log.Warn("resolving AWS account", "error", err)
		return ""
	}
	id, err := s.callerAccount(ctx, cfg)
	if err != nil {
		s.log.Warn("resolving AWS account", "profile", s.profile, "error", err)
		return ""
	}
	return id
}
