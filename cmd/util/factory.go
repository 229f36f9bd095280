package util

import (
	"io"

	"github.com/leg100/kdr/pkg/client"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/klog/v2"
)

// Factory pertaining to kdr commands
type Factory struct {
	// Deferred creation of clients
	client.ClientCreator

	IOStreams
}

// IOStreams provides the standard names for iostreams.  This is useful for embedding and for unit testing.
// Inconsistent and different names make it hard to read and review code
type IOStreams struct {
	// In think, os.Stdin
	In io.Reader
	// Out think, os.Stdout
	Out io.Writer
	// ErrOut think, os.Stderr
	ErrOut io.Writer
}

func NewFactory(out, errout io.Writer, in io.Reader) *Factory {
	f := &Factory{
		ClientCreator: client.NewClientCreator(),
		IOStreams: IOStreams{
			Out:    out,
			ErrOut: errout,
			In:     in,
		},
	}
	// Set logger output device
	klog.LogToStderr(false)
	klog.SetOutput(f.ErrOut)
	return f
}

func NewFakeFactory(out io.Writer, objs ...runtime.Object) *Factory {
	return &Factory{
		ClientCreator: client.NewFakeClientCreator(objs...),
		IOStreams: IOStreams{
			Out:    out,
			ErrOut: io.Discard,
		},
	}
}
