// Package key maps resource identities onto object store keys and back.
//
// A key has the form:
//
//	[prefix/]set/cluster/namespace/kind/apiVersion/name.yaml
//
// where any slash in apiVersion is escaped as an underscore.
package key

import (
	"fmt"
	"os"
	"strings"

	kdrerrors "github.com/leg100/kdr/pkg/errors"
)

const (
	// Extension is the suffix of every key
	Extension = ".yaml"

	// Metadata keys holding the cluster identity
	MetaClusterName = "cluster.name"
	MetaClusterSet  = "cluster.set"

	// Number of segments in a key once its prefix is stripped
	segments = 6
)

// Identity uniquely identifies a resource across clusters
type Identity struct {
	ClusterSet  string
	ClusterName string
	Namespace   string
	Kind        string
	// Escaped or unescaped; Encode escapes it, Decode returns the escaped
	// form
	APIVersion string
	Name       string
}

// EscapeAPIVersion replaces slashes, e.g. apps/v1 becomes apps_v1
func EscapeAPIVersion(apiVersion string) string {
	return strings.ReplaceAll(apiVersion, "/", "_")
}

// UnescapeAPIVersion reverses EscapeAPIVersion. Lossy if the group itself
// contains an underscore, which valid DNS subdomains cannot.
func UnescapeAPIVersion(escaped string) string {
	return strings.ReplaceAll(escaped, "_", "/")
}

// Encode derives the storage key for id, prepending prefix if non-empty
func Encode(id Identity, prefix string) (string, error) {
	parts := []string{
		id.ClusterSet,
		id.ClusterName,
		id.Namespace,
		id.Kind,
		EscapeAPIVersion(id.APIVersion),
		id.Name,
	}
	for _, p := range parts {
		if p == "" {
			return "", fmt.Errorf("%w: empty segment in %v", kdrerrors.ErrMalformedKey, id)
		}
		if strings.Contains(p, "/") {
			return "", fmt.Errorf("%w: segment %q contains a slash", kdrerrors.ErrMalformedKey, p)
		}
	}

	k := strings.Join(parts, "/") + Extension
	if prefix != "" {
		k = prefix + "/" + k
	}
	return k, nil
}

// Decode parses a key whose prefix has already been stripped
func Decode(k string) (Identity, error) {
	parts := strings.Split(k, "/")
	if len(parts) != segments {
		return Identity{}, fmt.Errorf("%w: %s: expected %d segments, got %d", kdrerrors.ErrMalformedKey, k, segments, len(parts))
	}
	if !strings.HasSuffix(parts[5], Extension) {
		return Identity{}, fmt.Errorf("%w: %s: missing %s extension", kdrerrors.ErrMalformedKey, k, Extension)
	}
	name := strings.TrimSuffix(parts[5], Extension)

	for _, p := range append(parts[:5:5], name) {
		if p == "" {
			return Identity{}, fmt.Errorf("%w: %s: empty segment", kdrerrors.ErrMalformedKey, k)
		}
	}

	return Identity{
		ClusterSet:  parts[0],
		ClusterName: parts[1],
		Namespace:   parts[2],
		Kind:        parts[3],
		APIVersion:  parts[4],
		Name:        name,
	}, nil
}

// StripPrefix removes prefix and its separator from k. It is an error if k
// does not carry prefix.
func StripPrefix(k, prefix string) (string, error) {
	if prefix == "" {
		return k, nil
	}
	if !strings.HasPrefix(k, prefix+"/") {
		return "", fmt.Errorf("%w: %s: missing prefix %s", kdrerrors.ErrMalformedKey, k, prefix)
	}
	return strings.TrimPrefix(k, prefix+"/"), nil
}

// ResolvePrefix substitutes $field and ${field} placeholders in template
// with values from meta, whose keys have any dots replaced with underscores
// (cluster.name is referenced as $cluster_name). $$ yields a literal $.
func ResolvePrefix(template string, meta map[string]string) (string, error) {
	if template == "" {
		return "", nil
	}

	fields := make(map[string]string, len(meta))
	for k, v := range meta {
		fields[strings.ReplaceAll(k, ".", "_")] = v
	}

	var missing []string
	resolved := os.Expand(strings.ReplaceAll(template, "$$", "${__dollar__}"), func(field string) string {
		if field == "__dollar__" {
			return "$"
		}
		v, ok := fields[field]
		if !ok {
			missing = append(missing, field)
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s: %s", kdrerrors.ErrUnresolvedTemplate, template, strings.Join(missing, ","))
	}

	return strings.Trim(resolved, "/"), nil
}
