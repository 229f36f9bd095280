package store

import (
	"context"
	"fmt"

	"github.com/leg100/kdr/pkg/blob"
	"github.com/spf13/pflag"
)

func init() {
	addProvider("file", newFileFlags)
}

type fileFlags struct {
	root string
}

func newFileFlags() flags {
	return &fileFlags{}
}

func (f *fileFlags) addToFlagSet(fs *pflag.FlagSet) {
	fs.StringVar(&f.root, "file-root", "", "Specify local directory for backups")
}

func (f *fileFlags) createStore(ctx context.Context) (blob.Store, error) {
	return blob.NewFS(f.root)
}

func (f *fileFlags) validate() error {
	if f.root == "" {
		return fmt.Errorf("%w: missing file root directory", ErrInvalidConfig)
	}
	return nil
}
