// Package archive uploads generated report files to S3-compatible object
// storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Options configures an S3 archive.
type Options struct {
	Bucket string
	Region string
	// Prefix is prepended to every object key, e.g. "reports/".
	Prefix string
	// Endpoint overrides the AWS endpoint for S3-compatible services.
	// Path-style addressing is used whenever it is set.
	Endpoint string
	// AccessKeyID and SecretAccessKey select static credentials; when either
	// is empty the default AWS credential chain applies.
	AccessKeyID     string
	SecretAccessKey string
}

// putter is the subset of *s3.Client the archive uses.
type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 stores report files as objects in one bucket.
type S3 struct {
	client putter
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3 loads the AWS configuration for opts and returns an archive.
func NewS3(ctx context.Context, opts Options) (*S3, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("archive.NewS3: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("archive.NewS3: load AWS config: %w", err)
	}

	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3(client, opts.Bucket, opts.Prefix), nil
}

func newS3(client putter, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// Archive uploads data under the key returned by Key.
func (a *S3) Archive(ctx context.Context, name, contentType string, data []byte) error {
	key := a.Key(name)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("archive.S3.Archive: put %s: %w", key, err)
	}
	return nil
}

// Key returns the object key a file name is stored under: the prefix, the
// upload date as yyyy/mm/dd, then the base name. Only the base name is used,
// so a name can never escape its dated folder.
func (a *S3) Key(name string) string {
	return a.prefix + a.now().Format("2006/01/02/") + path.Base("/"+name)
}
