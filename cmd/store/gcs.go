package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/leg100/kdr/pkg/blob"
	"github.com/spf13/pflag"
	"google.golang.org/api/option"
)

func init() {
	addProvider("gcs", newGcsFlags)
}

type gcsFlags struct {
	bucket   string
	endpoint string
}

func newGcsFlags() flags {
	return &gcsFlags{}
}

func (f *gcsFlags) addToFlagSet(fs *pflag.FlagSet) {
	fs.StringVar(&f.bucket, "gcs-bucket", "", "Specify gcs bucket for backups")
	fs.StringVar(&f.endpoint, "gcs-endpoint", "", "Override gcs endpoint, e.g. for an emulator")
}

func (f *gcsFlags) createStore(ctx context.Context) (blob.Store, error) {
	var opts []option.ClientOption
	if f.endpoint != "" {
		opts = append(opts, option.WithEndpoint(f.endpoint), option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gcs client: %w", err)
	}
	return blob.NewGCS(ctx, f.bucket, client)
}

func (f *gcsFlags) validate() error {
	if f.bucket == "" {
		return fmt.Errorf("%w: missing gcs bucket name", ErrInvalidConfig)
	}
	return nil
}
