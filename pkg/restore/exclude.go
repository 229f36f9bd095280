package restore

import "strings"

// ExcludeFunc determines whether a stored resource is skipped on restore
type ExcludeFunc func(namespace, kind, name string) bool

type excluded struct {
	namespace, kind, name string
}

// Resources managed by the control plane
var denyList = []excluded{
	{"default", "Service", "kubernetes"},
	{"default", "Endpoints", "kubernetes"},
}

// ExcludeCheck skips resources recreated by the cluster itself: the API
// server's own service and endpoints, and default service accounts along
// with their token secrets. Any Secret or ServiceAccount whose name contains
// "default" is skipped.
func ExcludeCheck(namespace, kind, name string) bool {
	for _, e := range denyList {
		if e.namespace == namespace && e.kind == kind && e.name == name {
			return true
		}
	}

	switch kind {
	case "Secret", "ServiceAccount":
		return strings.Contains(name, "default")
	}
	return false
}

// Selector selects namespaces by name. "*" selects every namespace.
type Selector []string

// All selects every namespace
var All = Selector{"*"}

func (s Selector) Matches(namespace string) bool {
	for _, sel := range s {
		if sel == "*" || sel == namespace {
			return true
		}
	}
	return false
}
