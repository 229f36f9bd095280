// Package cluster reads and deletes resources in a kubernetes cluster
package cluster

import (
	"context"

	"github.com/leg100/kdr/pkg/catalog"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

const (
	// ConfigMap holding cluster metadata
	MetadataNamespace = "kube-system"
	MetadataName      = "cluster-data"
)

// Page is a single page of a list. Continue is empty on the last page.
type Page struct {
	Items    []catalog.Document
	Continue string
}

// Provider reads and deletes resources of catalogued kinds. Documents are
// returned in full, with apiVersion and kind populated.
type Provider interface {
	ReadNamespace(ctx context.Context, name string) (catalog.Document, error)
	// ListNamespaces lists namespaces matching a label selector
	ListNamespaces(ctx context.Context, selector, cont string) (Page, error)

	ListKind(ctx context.Context, namespace, kind, cont string) (Page, error)
	ReadKind(ctx context.Context, namespace, kind, name string) (catalog.Document, error)
	DeleteKind(ctx context.Context, namespace, kind, name string) error

	ListCustomKind(ctx context.Context, namespace string, gvr schema.GroupVersionResource, cont string) (Page, error)
	ReadCustomKind(ctx context.Context, namespace string, gvr schema.GroupVersionResource, name string) (catalog.Document, error)

	// ClusterMetadata returns the contents of the cluster metadata config
	// map
	ClusterMetadata(ctx context.Context) (map[string]string, error)
}
