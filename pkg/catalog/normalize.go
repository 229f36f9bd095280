package catalog

import (
	"strings"

	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"
)

// Document is a resource as a tree of maps, slices and scalars, as produced
// by runtime.DefaultUnstructuredConverter
type Document = map[string]interface{}

var (
	// Fields removed wherever they appear: server-populated or otherwise
	// unsuitable for re-creating the resource
	noisyFields = map[string]struct{}{
		"clusterName":       {},
		"creationTimestamp": {},
		"deletionTimestamp": {},
		"finalizers":        {},
		"stringData":        {},
		"generation":        {},
		"initializers":      {},
		"managedFields":     {},
		"ownerReferences":   {},
		"resourceVersion":   {},
		"uid":               {},
		"selfLink":          {},
		"status":            {},
	}

	// Maps of user data, copied verbatim
	opaqueFields = map[string]struct{}{
		"data":        {},
		"binaryData":  {},
		"labels":      {},
		"annotations": {},
	}
)

// Normalize returns a copy of doc stripped of noisy fields, null values and
// keys beginning with an underscore, at every level of nesting. doc is left
// unmodified.
func Normalize(doc Document) Document {
	return normalizeMap(doc)
}

func normalizeMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		if v == nil || strings.HasPrefix(k, "_") {
			continue
		}
		if _, ok := noisyFields[k]; ok {
			continue
		}
		if _, ok := opaqueFields[k]; ok {
			out[k] = runtime.DeepCopyJSONValue(v)
			continue
		}
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return normalizeMap(t)
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			out = append(out, normalizeValue(item))
		}
		return out
	default:
		return v
	}
}

// Marshal serializes doc to YAML with keys sorted
func Marshal(doc Document) ([]byte, error) {
	return yaml.Marshal(doc)
}
