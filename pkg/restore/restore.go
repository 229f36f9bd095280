// Package restore replays backed up resources through a Strategy, namespace
// by namespace, in dependency order.
package restore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/leg100/kdr/pkg/blob"
	"github.com/leg100/kdr/pkg/catalog"
	"github.com/leg100/kdr/pkg/cluster"
	kdrerrors "github.com/leg100/kdr/pkg/errors"
	"github.com/leg100/kdr/pkg/key"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/klog/v2"
)

// Engine restores namespaces from an object store
type Engine struct {
	store    blob.Store
	strategy Strategy
	prefix   string
	catalog  *catalog.Catalog
	exclude  ExcludeFunc
	logger   logr.Logger

	// When non-nil, live resources are deleted before being restored
	replace cluster.Provider
}

type Option func(*Engine)

// WithPrefix sets the resolved key prefix
func WithPrefix(prefix string) Option {
	return func(e *Engine) {
		e.prefix = prefix
	}
}

func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

func WithExclude(exclude ExcludeFunc) Option {
	return func(e *Engine) {
		e.exclude = exclude
	}
}

func WithLogger(logger logr.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithReplaceExisting deletes each live resource of a built-in kind before it
// is restored. Namespaces are never deleted.
func WithReplaceExisting(provider cluster.Provider) Option {
	return func(e *Engine) {
		e.replace = provider
	}
}

func New(store blob.Store, strategy Strategy, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		strategy: strategy,
		catalog:  catalog.Default(),
		exclude:  ExcludeCheck,
		logger:   klog.Background(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) root(set, clusterName string) (key.Root, error) {
	if e.store == nil {
		return key.Root{}, fmt.Errorf("%w: no store", kdrerrors.ErrInvalidArgument)
	}
	if set == "" || clusterName == "" {
		return key.Root{}, fmt.Errorf("%w: cluster set and name are required", kdrerrors.ErrInvalidArgument)
	}
	return key.Root{Prefix: e.prefix, ClusterSet: set, ClusterName: clusterName}, nil
}

// DiscoverNamespaces returns the namespaces backed up for a cluster, in the
// order first encountered. A key that cannot be parsed is an error.
func (e *Engine) DiscoverNamespaces(ctx context.Context, set, clusterName string) ([]string, error) {
	root, err := e.root(set, clusterName)
	if err != nil {
		return nil, err
	}
	return e.discover(ctx, root)
}

func (e *Engine) discover(ctx context.Context, root key.Root) ([]string, error) {
	keys, err := e.store.List(ctx, root.ClusterPath())
	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}

	seen := sets.New[string]()
	var namespaces []string
	for _, k := range keys {
		id, err := root.Parse(k)
		if err != nil {
			return nil, err
		}
		if !seen.Has(id.Namespace) {
			seen.Insert(id.Namespace)
			namespaces = append(namespaces, id.Namespace)
		}
	}
	return namespaces, nil
}

// RestoreNamespaces restores every backed up namespace matching selector,
// returning the number of resources processed
func (e *Engine) RestoreNamespaces(ctx context.Context, set, clusterName string, selector Selector) (int, error) {
	root, err := e.root(set, clusterName)
	if err != nil {
		return 0, err
	}
	if len(selector) == 0 {
		return 0, fmt.Errorf("%w: empty namespace selector", kdrerrors.ErrInvalidArgument)
	}
	if e.strategy == nil {
		return 0, fmt.Errorf("%w: no restore strategy", kdrerrors.ErrInvalidArgument)
	}

	namespaces, err := e.discover(ctx, root)
	if err != nil {
		return 0, err
	}

	var total int
	for _, ns := range namespaces {
		if !selector.Matches(ns) {
			continue
		}
		n, err := e.restoreNamespace(ctx, root, ns)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (e *Engine) restoreNamespace(ctx context.Context, root key.Root, namespace string) (int, error) {
	logger := e.logger.WithValues("namespace", namespace)
	start := time.Now()
	defer func() {
		logger.V(2).Info("restore finished", "elapsed", time.Since(start))
	}()

	if err := e.strategy.StartNamespace(ctx, namespace); err != nil {
		return 0, fmt.Errorf("starting restore of namespace %s: %w", namespace, err)
	}

	var processed int
	for _, kind := range e.catalog.RestoreOrder() {
		keys, err := e.store.List(ctx, root.KindPath(namespace, kind))
		if err != nil {
			return processed, fmt.Errorf("listing backups of %s: %w", kind, err)
		}

		for _, k := range keys {
			id, err := root.Parse(k)
			if err != nil {
				return processed, err
			}
			if e.exclude(id.Namespace, id.Kind, id.Name) {
				logger.V(1).Info("excluded resource", "kind", id.Kind, "name", id.Name)
				continue
			}

			// Fetch the backup before touching the live resource
			data, err := e.store.Get(ctx, k)
			if err != nil {
				return processed, fmt.Errorf("retrieving %s: %w", k, err)
			}

			if err := e.removeExisting(ctx, id); err != nil {
				return processed, err
			}

			if err := e.strategy.ProcessResource(ctx, data); err != nil {
				if kdrerrors.IsConflict(err) {
					logger.Info("resource already exists, skipping", "kind", id.Kind, "name", id.Name)
					continue
				}
				return processed, fmt.Errorf("restoring %s: %w", k, err)
			}
			logger.V(1).Info("restored resource", "kind", id.Kind, "name", id.Name)
			processed++
		}
	}

	if err := e.strategy.FinishNamespace(ctx); err != nil {
		return processed, fmt.Errorf("finishing restore of namespace %s: %w", namespace, err)
	}
	logger.Info("restored namespace", "processed", processed)
	return processed, nil
}

// removeExisting deletes the live counterpart of a built-in resource, if
// replacement is enabled
func (e *Engine) removeExisting(ctx context.Context, id key.Identity) error {
	if e.replace == nil || id.Kind == catalog.Namespace.Kind {
		return nil
	}
	spec, err := e.catalog.Lookup(id.Kind)
	if err != nil {
		return err
	}
	if spec.Custom {
		return nil
	}

	err = e.replace.DeleteKind(ctx, id.Namespace, id.Kind, id.Name)
	switch {
	case apierrors.IsNotFound(err):
		return nil
	case err != nil:
		return fmt.Errorf("removing existing %s %s: %w", id.Kind, id.Name, err)
	}
	e.logger.V(1).Info("removed existing resource", "namespace", id.Namespace, "kind", id.Kind, "name", id.Name)
	return nil
}
