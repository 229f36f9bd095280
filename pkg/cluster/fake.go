package cluster

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/leg100/kdr/pkg/catalog"
	kdrerrors "github.com/leg100/kdr/pkg/errors"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Fake is an in-memory Provider for tests. Objects must carry apiVersion,
// kind and metadata.name; namespaced objects also metadata.namespace.
type Fake struct {
	Objects []catalog.Document

	// Maximum items per page; zero means unlimited
	PageSize int

	// Errors returned when reading an object, keyed by object name
	ReadErrors map[string]error

	// Custom resources the cluster does not serve
	Unserved []schema.GroupVersionResource

	// Contents of cluster metadata config map; nil means it does not exist
	Metadata map[string]string

	catalog *catalog.Catalog

	mu sync.Mutex
	// Deleted records "namespace/kind/name" of each deleted object
	Deleted []string
}

// NewFake constructs a fake provider populated with objs
func NewFake(objs ...catalog.Document) *Fake {
	return &Fake{Objects: objs, catalog: catalog.Default()}
}

// WithCatalog sets the catalog used to map custom resources onto kinds
func (f *Fake) WithCatalog(c *catalog.Catalog) *Fake {
	f.catalog = c
	return f
}

func (f *Fake) kinds() *catalog.Catalog {
	if f.catalog == nil {
		return catalog.Default()
	}
	return f.catalog
}

func (f *Fake) ReadNamespace(ctx context.Context, name string) (catalog.Document, error) {
	return f.read(ctx, "", "Namespace", name)
}

func (f *Fake) ListNamespaces(ctx context.Context, selector, cont string) (Page, error) {
	sel, err := labels.Parse(selector)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %s", kdrerrors.ErrInvalidArgument, err.Error())
	}

	var matches []catalog.Document
	for _, obj := range f.filter("", "Namespace") {
		u := unstructured.Unstructured{Object: obj}
		if sel.Matches(labels.Set(u.GetLabels())) {
			matches = append(matches, obj)
		}
	}
	return f.paginate(matches, cont)
}

func (f *Fake) ListKind(ctx context.Context, namespace, kind, cont string) (Page, error) {
	if _, err := f.kinds().Lookup(kind); err != nil {
		return Page{}, err
	}
	return f.paginate(f.filter(namespace, kind), cont)
}

func (f *Fake) ReadKind(ctx context.Context, namespace, kind, name string) (catalog.Document, error) {
	if _, err := f.kinds().Lookup(kind); err != nil {
		return nil, err
	}
	return f.read(ctx, namespace, kind, name)
}

func (f *Fake) DeleteKind(ctx context.Context, namespace, kind, name string) error {
	if _, err := f.read(ctx, namespace, kind, name); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for i, obj := range f.Objects {
		u := unstructured.Unstructured{Object: obj}
		if u.GetKind() == kind && u.GetNamespace() == namespace && u.GetName() == name {
			f.Objects = append(f.Objects[:i], f.Objects[i+1:]...)
			break
		}
	}
	f.Deleted = append(f.Deleted, fmt.Sprintf("%s/%s/%s", namespace, kind, name))
	return nil
}

func (f *Fake) ListCustomKind(ctx context.Context, namespace string, gvr schema.GroupVersionResource, cont string) (Page, error) {
	kind, err := f.customKind(gvr)
	if err != nil {
		return Page{}, err
	}
	return f.paginate(f.filter(namespace, kind), cont)
}

func (f *Fake) ReadCustomKind(ctx context.Context, namespace string, gvr schema.GroupVersionResource, name string) (catalog.Document, error) {
	kind, err := f.customKind(gvr)
	if err != nil {
		return nil, err
	}
	return f.read(ctx, namespace, kind, name)
}

func (f *Fake) ClusterMetadata(ctx context.Context) (map[string]string, error) {
	if f.Metadata == nil {
		return nil, apierrors.NewNotFound(schema.GroupResource{Resource: "configmaps"}, MetadataName)
	}
	return f.Metadata, nil
}

func (f *Fake) customKind(gvr schema.GroupVersionResource) (string, error) {
	for _, u := range f.Unserved {
		if u == gvr {
			return "", apierrors.NewNotFound(gvr.GroupResource(), "")
		}
	}
	for _, s := range f.kinds().Customs() {
		if s.GroupVersionResource() == gvr {
			return s.Kind, nil
		}
	}
	return "", fmt.Errorf("%w: %s", kdrerrors.ErrUnsupportedKind, gvr.String())
}

func (f *Fake) read(ctx context.Context, namespace, kind, name string) (catalog.Document, error) {
	if err, ok := f.ReadErrors[name]; ok {
		return nil, err
	}
	for _, obj := range f.filter(namespace, kind) {
		if (&unstructured.Unstructured{Object: obj}).GetName() == name {
			return obj, nil
		}
	}
	return nil, apierrors.NewNotFound(schema.GroupResource{Resource: kind}, name)
}

// filter returns objects of kind in namespace, sorted by name
func (f *Fake) filter(namespace, kind string) (objs []catalog.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, obj := range f.Objects {
		u := unstructured.Unstructured{Object: obj}
		if u.GetKind() == kind && u.GetNamespace() == namespace {
			objs = append(objs, obj)
		}
	}
	sort.Slice(objs, func(i, j int) bool {
		return (&unstructured.Unstructured{Object: objs[i]}).GetName() < (&unstructured.Unstructured{Object: objs[j]}).GetName()
	})
	return objs
}

// paginate returns the page starting at offset cont
func (f *Fake) paginate(objs []catalog.Document, cont string) (Page, error) {
	start := 0
	if cont != "" {
		var err error
		start, err = strconv.Atoi(cont)
		if err != nil || start > len(objs) {
			return Page{}, apierrors.NewBadRequest("invalid continue token: " + cont)
		}
	}
	if f.PageSize == 0 || start+f.PageSize >= len(objs) {
		return Page{Items: objs[start:]}, nil
	}
	end := start + f.PageSize
	return Page{Items: objs[start:end], Continue: strconv.Itoa(end)}, nil
}
