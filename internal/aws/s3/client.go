package s3

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"tasnim.dev/cloudspend/internal/constants"
	"tasnim.dev/cloudspend/internal/spend"
)

// S3API is the subset of the S3 client used to read spend exports.
type S3API interface {
	GetBucketLocation(ctx context.Context, params *awss3.GetBucketLocationInput, optFns ...func(*awss3.Options)) (*awss3.GetBucketLocationOutput, error)
	ListObjectsV2(ctx context.Context, params *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

// maxConcurrentGets bounds parallel object reads under a prefix.
const maxConcurrentGets = 8

type Client struct {
	api S3API
}

func NewClient(api S3API) *Client {
	return &Client{api: api}
}

// BucketRegion resolves the bucket's region. An empty constraint means us-east-1.
func (c *Client) BucketRegion(ctx context.Context, bucket string) (string, error) {
	out, err := c.api.GetBucketLocation(ctx, &awss3.GetBucketLocationInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return "", fmt.Errorf("GetBucketLocation(%s): %w", bucket, err)
	}
	region := string(out.LocationConstraint)
	if region == "" {
		region = "us-east-1"
	}
	return region, nil
}

func regionOpts(region string) []func(*awss3.Options) {
	if region == "" {
		return nil
	}
	return []func(*awss3.Options){func(o *awss3.Options) { o.Region = region }}
}

// ListObjects returns one page of objects under prefix.
func (c *Client) ListObjects(ctx context.Context, bucket, prefix, continuationToken, region string) (ListObjectsResult, error) {
	input := &awss3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		MaxKeys: aws.Int32(1000),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	if continuationToken != "" {
		input.ContinuationToken = aws.String(continuationToken)
	}

	out, err := c.api.ListObjectsV2(ctx, input, regionOpts(region)...)
	if err != nil {
		return ListObjectsResult{}, fmt.Errorf("ListObjectsV2: %w", err)
	}

	var objects []S3Object
	for _, obj := range out.Contents {
		objects = append(objects, S3Object{
			Key:  aws.ToString(obj.Key),
			Size: aws.ToInt64(obj.Size),
		})
	}

	result := ListObjectsResult{Objects: objects}
	if aws.ToBool(out.IsTruncated) {
		result.NextToken = aws.ToString(out.NextContinuationToken)
	}
	return result, nil
}

// jsonKeys lists every .json object under prefix, in key order.
func (c *Client) jsonKeys(ctx context.Context, bucket, prefix, region string) ([]string, error) {
	var keys []string
	token := ""
	for {
		page, err := c.ListObjects(ctx, bucket, prefix, token, region)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Objects {
			if strings.EqualFold(path.Ext(obj.Key), ".json") {
				keys = append(keys, obj.Key)
			}
		}
		if page.NextToken == "" {
			return keys, nil
		}
		token = page.NextToken
	}
}

// GetRecords reads and decodes one spend export object.
func (c *Client) GetRecords(ctx context.Context, bucket, key, region string) ([]spend.Record, error) {
	out, err := c.api.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, regionOpts(region)...)
	if err != nil {
		return nil, fmt.Errorf("GetObject(%s): %w", key, err)
	}
	defer out.Body.Close()

	records, err := spend.DecodeJSON(out.Body, constants.MaxPayloadSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return records, nil
}

// FetchRecords loads spend records from s3://bucket/key. A key ending in "/"
// (or empty) is a prefix: every .json object under it is read and the rows
// are concatenated in key order.
func (c *Client) FetchRecords(ctx context.Context, bucket, key string) ([]spend.Record, error) {
	region, err := c.BucketRegion(ctx, bucket)
	if err != nil {
		return nil, err
	}

	if key != "" && !strings.HasSuffix(key, "/") {
		return c.GetRecords(ctx, bucket, key, region)
	}

	keys, err := c.jsonKeys(ctx, bucket, key, region)
	if err != nil {
		return nil, err
	}

	parts := make([][]spend.Record, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentGets)
	for i, k := range keys {
		g.Go(func() error {
			records, err := c.GetRecords(gctx, bucket, k, region)
			if err != nil {
				return err
			}
			parts[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []spend.Record
	for _, p := range parts {
		all = append(all, p...)
	}
	return all, nil
}
