// Package backup copies the resources of a namespace to an object store,
// removing stored copies of resources that no longer exist.
package backup

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
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/klog/v2"
)

// ReadFailurePolicy determines what happens when a listed resource cannot be
// read
type ReadFailurePolicy int

const (
	// Abort the backup
	Abort ReadFailurePolicy = iota
	// Skip the resource, keeping any copy from a previous backup
	Skip
)

// Result summarises a backup of a namespace
type Result struct {
	// Number of unique keys written
	Stored int
	// Number of orphaned keys removed
	Deleted int
	// Number of resources skipped because they could not be read
	Skipped int
}

// Engine backs up namespaces of a single cluster
type Engine struct {
	provider cluster.Provider
	store    blob.Store
	root     key.Root
	catalog  *catalog.Catalog
	policy   ReadFailurePolicy
	logger   logr.Logger
}

type Option func(*Engine)

func WithLogger(logger logr.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

func WithReadFailurePolicy(policy ReadFailurePolicy) Option {
	return func(e *Engine) {
		e.policy = policy
	}
}

func New(provider cluster.Provider, store blob.Store, root key.Root, opts ...Option) *Engine {
	e := &Engine{
		provider: provider,
		store:    store,
		root:     root,
		catalog:  catalog.Default(),
		policy:   Abort,
		logger:   klog.Background(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// pass is the state of a single namespace backup
type pass struct {
	*Engine

	namespace string
	logger    logr.Logger

	// Keys written during this pass
	stored sets.Set[string]
	// Keys of resources that could not be read, whose previous copies are
	// retained
	retained sets.Set[string]
}

// BackupNamespace stores every catalogued resource in namespace and then
// deletes stored keys for the namespace that were not written
func (e *Engine) BackupNamespace(ctx context.Context, namespace string) (Result, error) {
	if namespace == "" {
		return Result{}, fmt.Errorf("%w: empty namespace", kdrerrors.ErrInvalidArgument)
	}
	if e.provider == nil || e.store == nil {
		return Result{}, fmt.Errorf("%w: provider and store are required", kdrerrors.ErrInvalidArgument)
	}

	start := time.Now()
	p := &pass{
		Engine:    e,
		namespace: namespace,
		logger:    e.logger.WithValues("namespace", namespace),
		stored:    sets.New[string](),
		retained:  sets.New[string](),
	}
	defer func() {
		p.logger.V(2).Info("backup finished", "elapsed", time.Since(start))
	}()

	ns, err := e.provider.ReadNamespace(ctx, namespace)
	if err != nil {
		return Result{}, fmt.Errorf("reading namespace %s: %w", namespace, err)
	}
	if err := p.put(ctx, ns); err != nil {
		return Result{}, err
	}

	for _, spec := range e.catalog.Builtins() {
		kind := spec.Kind
		list := func(cont string) (cluster.Page, error) {
			return e.provider.ListKind(ctx, namespace, kind, cont)
		}
		read := func(name string) (catalog.Document, error) {
			return e.provider.ReadKind(ctx, namespace, kind, name)
		}
		if err := p.walk(ctx, spec, list, read); err != nil {
			return Result{}, err
		}
	}

	for _, spec := range e.catalog.Customs() {
		gvr := spec.GroupVersionResource()
		list := func(cont string) (cluster.Page, error) {
			return e.provider.ListCustomKind(ctx, namespace, gvr, cont)
		}
		read := func(name string) (catalog.Document, error) {
			return e.provider.ReadCustomKind(ctx, namespace, gvr, name)
		}
		if err := p.walk(ctx, spec, list, read); err != nil {
			if apierrors.IsNotFound(err) {
				// Custom resource definition is not installed
				p.logger.V(1).Info("skipping custom kind not served by cluster", "kind", spec.Kind)
				continue
			}
			return Result{}, err
		}
	}

	deleted, err := p.reconcile(ctx)
	if err != nil {
		return Result{}, err
	}

	result := Result{Stored: p.stored.Len(), Deleted: deleted, Skipped: p.retained.Len()}
	p.logger.Info("backed up namespace", "stored", result.Stored, "deleted", result.Deleted, "skipped", result.Skipped)
	return result, nil
}

// walk lists every page of a kind, reading and storing each item
func (p *pass) walk(ctx context.Context, spec catalog.KindSpec, list func(string) (cluster.Page, error), read func(string) (catalog.Document, error)) error {
	var cont string
	for {
		page, err := list(cont)
		if err != nil {
			return fmt.Errorf("listing %s: %w", spec.Kind, err)
		}

		for _, item := range page.Items {
			name := (&unstructured.Unstructured{Object: item}).GetName()

			doc, err := read(name)
			switch {
			case apierrors.IsNotFound(err):
				// Deleted since it was listed
				p.logger.V(1).Info("resource vanished", "kind", spec.Kind, "name", name)
				continue
			case err != nil && p.policy == Skip:
				k, kerr := p.keyFor(item)
				if kerr != nil {
					return kerr
				}
				p.logger.Error(err, "skipping unreadable resource", "kind", spec.Kind, "name", name)
				p.retained.Insert(k)
				continue
			case err != nil:
				return fmt.Errorf("reading %s %s: %w", spec.Kind, name, err)
			}

			if err := p.put(ctx, doc); err != nil {
				return err
			}
		}

		if cont = page.Continue; cont == "" {
			return nil
		}
	}
}

// put normalizes and stores doc, recording its key
func (p *pass) put(ctx context.Context, doc catalog.Document) error {
	k, err := p.keyFor(doc)
	if err != nil {
		return err
	}

	data, err := catalog.Marshal(catalog.Normalize(doc))
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", k, err)
	}

	if err := p.store.Put(ctx, k, data); err != nil {
		return fmt.Errorf("storing %s: %w", k, err)
	}
	p.stored.Insert(k)

	p.logger.V(1).Info("stored resource", "key", k)
	return nil
}

// keyFor derives the key for doc. The namespace segment is the resource's
// own namespace, or its name if it is a Namespace.
func (p *pass) keyFor(doc catalog.Document) (string, error) {
	u := unstructured.Unstructured{Object: doc}

	namespace := u.GetNamespace()
	if u.GetKind() == catalog.Namespace.Kind {
		namespace = u.GetName()
	}
	if namespace == "" {
		namespace = p.namespace
	}
	return p.root.Key(namespace, u.GetKind(), u.GetAPIVersion(), u.GetName())
}

// reconcile deletes stored keys for the namespace that were neither written
// nor retained during this pass
func (p *pass) reconcile(ctx context.Context) (int, error) {
	existing, err := p.store.List(ctx, p.root.NamespacePath(p.namespace))
	if err != nil {
		return 0, fmt.Errorf("listing stored keys: %w", err)
	}

	var deleted int
	for _, k := range existing {
		if p.stored.Has(k) || p.retained.Has(k) {
			continue
		}
		if err := p.store.Delete(ctx, k); err != nil {
			return deleted, fmt.Errorf("deleting orphaned key %s: %w", k, err)
		}
		p.logger.V(1).Info("deleted orphaned key", "key", k)
		deleted++
	}
	return deleted, nil
}
