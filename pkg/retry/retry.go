// Package retry retries calls to the kubernetes API that fail transiently
package retry

import (
	"time"

	kdrerrors "github.com/leg100/kdr/pkg/errors"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/util/retry"
)

// DefaultBackoff makes up to five attempts, doubling the delay from one
// second
var DefaultBackoff = wait.Backoff{
	Steps:    5,
	Duration: time.Second,
	Factor:   2.0,
	Jitter:   0.1,
}

// OnTransient invokes fn until it succeeds, returns a non-transient error,
// or backoff is exhausted, in which case the last error is returned
func OnTransient(backoff wait.Backoff, fn func() error) error {
	return retry.OnError(backoff, kdrerrors.IsTransient, fn)
}
