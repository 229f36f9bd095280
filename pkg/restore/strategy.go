package restore

import "context"

// Strategy applies restored resources to a cluster. For each namespace,
// StartNamespace is called once, then ProcessResource for each resource in
// restore order, then FinishNamespace.
type Strategy interface {
	StartNamespace(ctx context.Context, namespace string) error
	// ProcessResource receives a single YAML document. An error that
	// represents an HTTP 409 conflict is tolerated.
	ProcessResource(ctx context.Context, data []byte) error
	FinishNamespace(ctx context.Context) error
}
