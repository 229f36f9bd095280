package errors

import (
	goerrors "errors"
	"io"
	"net/http"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	utilnet "k8s.io/apimachinery/pkg/util/net"
)

var (
	// ErrInvalidArgument is wrapped within errors caused by bad caller input,
	// e.g. an empty namespace or selector
	ErrInvalidArgument = goerrors.New("invalid argument")

	// ErrUnsupportedKind is wrapped when a kind is not known to the catalog
	ErrUnsupportedKind = goerrors.New("unsupported kind")

	// ErrMalformedKey is wrapped when a storage key cannot be encoded or
	// decoded
	ErrMalformedKey = goerrors.New("malformed key")

	// ErrUnresolvedTemplate is wrapped when a prefix template references a
	// field missing from the cluster metadata
	ErrUnresolvedTemplate = goerrors.New("unresolved template field")
)

// IsConflict determines whether err is an API error with HTTP status 409,
// i.e. the resource already exists or a write conflicted with another.
func IsConflict(err error) bool {
	var status apierrors.APIStatus
	if goerrors.As(err, &status) {
		return status.Status().Code == http.StatusConflict
	}
	return false
}

// IsTransient determines whether err is worth retrying
func IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case apierrors.IsServerTimeout(err),
		apierrors.IsTimeout(err),
		apierrors.IsTooManyRequests(err),
		apierrors.IsServiceUnavailable(err),
		apierrors.IsInternalError(err):
		return true
	case utilnet.IsConnectionReset(err), utilnet.IsProbableEOF(err):
		return true
	case goerrors.Is(err, io.ErrUnexpectedEOF):
		return true
	}
	return false
}
