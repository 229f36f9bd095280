package key

import (
	"fmt"
	"strings"

	kdrerrors "github.com/leg100/kdr/pkg/errors"
)

// Root is the location in the object store of a single cluster's backups.
// The prefix is resolved once, upon construction.
type Root struct {
	Prefix      string
	ClusterSet  string
	ClusterName string
}

// NewRoot resolves template against meta and reads the cluster identity
// from meta
func NewRoot(template string, meta map[string]string) (Root, error) {
	prefix, err := ResolvePrefix(template, meta)
	if err != nil {
		return Root{}, err
	}

	root := Root{
		Prefix:      prefix,
		ClusterSet:  meta[MetaClusterSet],
		ClusterName: meta[MetaClusterName],
	}
	if err := root.validate(); err != nil {
		return Root{}, err
	}
	return root, nil
}

func (r Root) validate() error {
	if r.ClusterSet == "" {
		return fmt.Errorf("%w: missing %s", kdrerrors.ErrInvalidArgument, MetaClusterSet)
	}
	if r.ClusterName == "" {
		return fmt.Errorf("%w: missing %s", kdrerrors.ErrInvalidArgument, MetaClusterName)
	}
	if strings.Contains(r.ClusterSet, "/") || strings.Contains(r.ClusterName, "/") {
		return fmt.Errorf("%w: cluster identity cannot contain a slash", kdrerrors.ErrInvalidArgument)
	}
	return nil
}

// Key returns the storage key for a resource in the root's cluster
func (r Root) Key(namespace, kind, apiVersion, name string) (string, error) {
	return Encode(Identity{
		ClusterSet:  r.ClusterSet,
		ClusterName: r.ClusterName,
		Namespace:   namespace,
		Kind:        kind,
		APIVersion:  apiVersion,
		Name:        name,
	}, r.Prefix)
}

// Parse strips the root's prefix from k and decodes the remainder
func (r Root) Parse(k string) (Identity, error) {
	stripped, err := StripPrefix(k, r.Prefix)
	if err != nil {
		return Identity{}, err
	}
	return Decode(stripped)
}

// ClusterPath is the listing prefix for every key in the cluster
func (r Root) ClusterPath() string {
	return r.join(r.ClusterSet, r.ClusterName) + "/"
}

// NamespacePath is the listing prefix for every key in namespace. The
// trailing slash stops app from matching app2.
func (r Root) NamespacePath(namespace string) string {
	return r.join(r.ClusterSet, r.ClusterName, namespace) + "/"
}

// KindPath is the listing prefix for every key of kind in namespace. The
// trailing slash stops Service from matching ServiceAccount.
func (r Root) KindPath(namespace, kind string) string {
	return r.join(r.ClusterSet, r.ClusterName, namespace, kind) + "/"
}

func (r Root) join(parts ...string) string {
	if r.Prefix != "" {
		parts = append([]string{r.Prefix}, parts...)
	}
	return strings.Join(parts, "/")
}
