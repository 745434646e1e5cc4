// Package aws resolves the shared AWS config and caller identity used by the
// S3 and Cost Explorer sources.
package aws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// LoadFunc resolves an AWS config.
type LoadFunc func(ctx context.Context) (aws.Config, error)

// LoadConfig loads an AWS config with optional profile and region overrides.
func LoadConfig(ctx context.Context, profile, region string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config (profile %q): %w", profile, err)
	}
	return cfg, nil
}

// Cached runs load at most once. Every call, including concurrent ones,
// gets the first result, error included.
func Cached(load LoadFunc) LoadFunc {
	var (
		once sync.Once
		cfg  aws.Config
		err  error
	)
	return func(ctx context.Context) (aws.Config, error) {
		once.Do(func() { cfg, err = load(ctx) })
		return cfg, err
	}
}

// NewConfigLoader returns a cached loader for profile and region, meant to be
// shared by every source and the account lookup of one run.
func NewConfigLoader(profile, region string) LoadFunc {
	return Cached(func(ctx context.Context) (aws.Config, error) {
		return LoadConfig(ctx, profile, region)
	})
}

// CallerIdentityAPI is the subset of the STS client used to name the account.
type CallerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// AccountID returns the account of the calling identity.
func AccountID(ctx context.Context, api CallerIdentityAPI) (string, error) {
	out, err := api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("GetCallerIdentity: %w", err)
	}
	id := aws.ToString(out.Account)
	if id == "" {
		return "", fmt.Errorf("GetCallerIdentity: no account in response")
	}
	return id, nil
}

// GetAccountID returns the account ID for cfg.
func GetAccountID(ctx context.Context, cfg aws.Config) (string, error) {
	return AccountID(ctx, sts.NewFromConfig(cfg))
}
