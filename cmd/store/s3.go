package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/leg100/kdr/pkg/blob"
	"github.com/spf13/pflag"
)

// Retries made by the SDK upon throttling and server errors
const s3MaxRetries = 5

func init() {
	addProvider("s3", newS3Flags)
}

type s3Flags struct {
	bucket    string
	region    string
	endpoint  string
	pathStyle bool
}

func newS3Flags() flags {
	return &s3Flags{}
}

func (f *s3Flags) addToFlagSet(fs *pflag.FlagSet) {
	fs.StringVar(&f.bucket, "s3-bucket", "", "Specify s3 bucket for backups")
	fs.StringVar(&f.region, "s3-region", "", "Specify s3 region for backups")
	fs.StringVar(&f.endpoint, "s3-endpoint", "", "Override s3 endpoint, e.g. for an s3-compatible store")
	fs.BoolVar(&f.pathStyle, "s3-path-style", false, "Use path-style s3 addressing")
}

func (f *s3Flags) createStore(ctx context.Context) (blob.Store, error) {
	cfg := &aws.Config{
		Region:           aws.String(f.region),
		MaxRetries:       aws.Int(s3MaxRetries),
		S3ForcePathStyle: aws.Bool(f.pathStyle),
	}
	if f.endpoint != "" {
		cfg.Endpoint = aws.String(f.endpoint)
	}
	return blob.NewS3(ctx, f.bucket, cfg)
}

func (f *s3Flags) validate() error {
	if f.bucket == "" {
		return fmt.Errorf("%w: missing s3 bucket name", ErrInvalidConfig)
	}
	if f.region == "" {
		return fmt.Errorf("%w: missing s3 region name", ErrInvalidConfig)
	}
	return nil
}
