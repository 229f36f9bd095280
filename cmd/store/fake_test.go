package store

import (
	"context"
	"fmt"

	"github.com/leg100/kdr/pkg/blob"
	"github.com/spf13/pflag"
)

type fakeFlags struct {
	bucket string
	region string
}

func newFakeFlags() flags {
	return &fakeFlags{}
}

func (f *fakeFlags) addToFlagSet(fs *pflag.FlagSet) {
	fs.StringVar(&f.bucket, "fake-bucket", "", "Specify fake bucket for backups")
	fs.StringVar(&f.region, "fake-region", "", "Specify fake region for backups")
}

func (f *fakeFlags) createStore(ctx context.Context) (blob.Store, error) {
	return blob.NewMemory(nil), nil
}

func (f *fakeFlags) validate() error {
	if f.bucket == "" {
		return fmt.Errorf("%w: missing fake bucket name", ErrInvalidConfig)
	}
	if f.region == "" {
		return fmt.Errorf("%w: missing fake region name", ErrInvalidConfig)
	}
	return nil
}
