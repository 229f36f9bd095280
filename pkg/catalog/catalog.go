// Package catalog holds the static table of resource kinds that are backed up
// and restored, along with the order in which they are restored.
package catalog

import (
	"fmt"

	kdrerrors "github.com/leg100/kdr/pkg/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// KindSpec describes a resource kind
type KindSpec struct {
	Kind    string
	Group   string
	Version string
	// Plural lowercase name used in API paths
	Resource string
	// Custom kinds are served by the dynamic client rather than a typed
	// client
	Custom bool
}

// APIVersion returns the kind's group/version, or just version for the
// core group
func (k KindSpec) APIVersion() string {
	return k.GroupVersionKind().GroupVersion().String()
}

func (k KindSpec) GroupVersionKind() schema.GroupVersionKind {
	return schema.GroupVersionKind{Group: k.Group, Version: k.Version, Kind: k.Kind}
}

func (k KindSpec) GroupVersionResource() schema.GroupVersionResource {
	return schema.GroupVersionResource{Group: k.Group, Version: k.Version, Resource: k.Resource}
}

// Namespace is backed up and restored ahead of all other kinds
var Namespace = KindSpec{Kind: "Namespace", Version: "v1", Resource: "namespaces"}

var (
	builtins = []KindSpec{
		{Kind: "ConfigMap", Version: "v1", Resource: "configmaps"},
		{Kind: "LimitRange", Version: "v1", Resource: "limitranges"},
		{Kind: "ResourceQuota", Version: "v1", Resource: "resourcequotas"},
		{Kind: "Secret", Version: "v1", Resource: "secrets"},
		{Kind: "Service", Version: "v1", Resource: "services"},
		{Kind: "ServiceAccount", Version: "v1", Resource: "serviceaccounts"},
		{Kind: "PodTemplate", Version: "v1", Resource: "podtemplates"},
		{Kind: "Deployment", Group: "apps", Version: "v1", Resource: "deployments"},
		{Kind: "Role", Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "roles"},
		{Kind: "RoleBinding", Group: "rbac.authorization.k8s.io", Version: "v1", Resource: "rolebindings"},
		{Kind: "HorizontalPodAutoscaler", Group: "autoscaling", Version: "v1", Resource: "horizontalpodautoscalers"},
	}

	customs = []KindSpec{
		{Kind: "VirtualService", Group: "networking.istio.io", Version: "v1alpha3", Resource: "virtualservices", Custom: true},
		{Kind: "Gateway", Group: "networking.istio.io", Version: "v1alpha3", Resource: "gateways", Custom: true},
	}

	// Built-in kinds in the order in which they are restored; dependencies
	// first
	builtinRestoreOrder = []string{
		"Namespace",
		"LimitRange",
		"ResourceQuota",
		"ConfigMap",
		"Secret",
		"Service",
		"Role",
		"ServiceAccount",
		"RoleBinding",
		"HorizontalPodAutoscaler",
		"PodTemplate",
		"Deployment",
	}

	customRestoreOrder = []string{
		"Gateway",
		"VirtualService",
	}
)

// Catalog is an immutable set of kinds
type Catalog struct {
	builtins []KindSpec
	customs  []KindSpec
	order    []string
}

// Default returns the catalog of kinds supported out of the box
func Default() *Catalog {
	c := &Catalog{
		builtins: append([]KindSpec{}, builtins...),
		customs:  append([]KindSpec{}, customs...),
	}
	c.order = append(append([]string{}, builtinRestoreOrder...), customRestoreOrder...)
	return c
}

// WithCustomKinds returns a copy of the catalog with additional custom kinds,
// restored after all others in the order given. Kinds already in the
// catalog are ignored.
func (c *Catalog) WithCustomKinds(specs ...KindSpec) *Catalog {
	cp := &Catalog{
		builtins: c.builtins,
		customs:  append([]KindSpec{}, c.customs...),
		order:    append([]string{}, c.order...),
	}
	for _, s := range specs {
		if _, err := cp.Lookup(s.Kind); err == nil {
			continue
		}
		s.Custom = true
		cp.customs = append(cp.customs, s)
		cp.order = append(cp.order, s.Kind)
	}
	return cp
}

// Builtins returns the built-in kinds, excluding Namespace
func (c *Catalog) Builtins() []KindSpec {
	return c.builtins
}

// Customs returns the custom kinds
func (c *Catalog) Customs() []KindSpec {
	return c.customs
}

// RestoreOrder returns every kind name, Namespace first, in restore order
func (c *Catalog) RestoreOrder() []string {
	return c.order
}

// Lookup returns the KindSpec for kind
func (c *Catalog) Lookup(kind string) (KindSpec, error) {
	if kind == Namespace.Kind {
		return Namespace, nil
	}
	for _, specs := range [][]KindSpec{c.builtins, c.customs} {
		for _, s := range specs {
			if s.Kind == kind {
				return s, nil
			}
		}
	}
	return KindSpec{}, fmt.Errorf("%w: %s", kdrerrors.ErrUnsupportedKind, kind)
}
