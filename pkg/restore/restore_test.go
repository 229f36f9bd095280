package restore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/leg100/kdr/pkg/blob"
	"github.com/leg100/kdr/pkg/cluster"
	kdrerrors "github.com/leg100/kdr/pkg/errors"
	"github.com/leg100/kdr/pkg/testobj"
	"github.com/leg100/kdr/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// recorder is a strategy that records the calls made to it. Documents
// containing a key in failures fail with the corresponding error.
type recorder struct {
	calls    []string
	failures map[string]error
}

func (r *recorder) StartNamespace(ctx context.Context, namespace string) error {
	r.calls = append(r.calls, "start "+namespace)
	return nil
}

func (r *recorder) ProcessResource(ctx context.Context, data []byte) error {
	for match, err := range r.failures {
		if bytes.Contains(data, []byte(match)) {
			return err
		}
	}
	r.calls = append(r.calls, string(bytes.TrimSpace(data)))
	return nil
}

func (r *recorder) FinishNamespace(ctx context.Context) error {
	r.calls = append(r.calls, "finish")
	return nil
}

// seed stores each key with content identifying the resource
func seed(t *testutil.T, keys ...string) *blob.Memory {
	store := blob.NewMemory(nil)
	for _, k := range keys {
		require.NoError(t, store.Put(context.Background(), k, []byte(k)))
	}
	return store
}

var twoNamespaces = []string{
	"default/cluster1/kube-system/Namespace/v1/kube-system.yaml",
	"default/cluster1/app1/Namespace/v1/app1.yaml",
}

func TestRestoreNamespaces(t *testing.T) {
	tests := []struct {
		name      string
		keys      []string
		prefix    string
		set       string
		cluster   string
		selector  Selector
		failures  map[string]error
		processed int
		calls     []string
		err       error
	}{
		{
			name:      "all namespaces",
			keys:      twoNamespaces,
			set:       "default",
			cluster:   "cluster1",
			selector:  All,
			processed: 2,
			calls: []string{
				"start app1",
				"default/cluster1/app1/Namespace/v1/app1.yaml",
				"finish",
				"start kube-system",
				"default/cluster1/kube-system/Namespace/v1/kube-system.yaml",
				"finish",
			},
		},
		{
			name:      "single namespace",
			keys:      twoNamespaces,
			set:       "default",
			cluster:   "cluster1",
			selector:  Selector{"kube-system"},
			processed: 1,
			calls: []string{
				"start kube-system",
				"default/cluster1/kube-system/Namespace/v1/kube-system.yaml",
				"finish",
			},
		},
		{
			name:      "unmatched selector",
			keys:      twoNamespaces,
			set:       "default",
			cluster:   "cluster1",
			selector:  Selector{"app2"},
			processed: 0,
		},
		{
			name:      "other cluster",
			keys:      twoNamespaces,
			set:       "default",
			cluster:   "cluster2",
			selector:  All,
			processed: 0,
		},
		{
			name: "restore order",
			keys: []string{
				"default/cluster1/app1/VirtualService/networking.istio.io_v1alpha3/web.yaml",
				"default/cluster1/app1/Gateway/networking.istio.io_v1alpha3/web.yaml",
				"default/cluster1/app1/Deployment/apps_v1/web.yaml",
				"default/cluster1/app1/RoleBinding/rbac.authorization.k8s.io_v1/web.yaml",
				"default/cluster1/app1/ServiceAccount/v1/web.yaml",
				"default/cluster1/app1/Role/rbac.authorization.k8s.io_v1/web.yaml",
				"default/cluster1/app1/Service/v1/web.yaml",
				"default/cluster1/app1/Secret/v1/web.yaml",
				"default/cluster1/app1/ConfigMap/v1/web.yaml",
				"default/cluster1/app1/Namespace/v1/app1.yaml",
			},
			set:       "default",
			cluster:   "cluster1",
			selector:  All,
			processed: 10,
			calls: []string{
				"start app1",
				"default/cluster1/app1/Namespace/v1/app1.yaml",
				"default/cluster1/app1/ConfigMap/v1/web.yaml",
				"default/cluster1/app1/Secret/v1/web.yaml",
				"default/cluster1/app1/Service/v1/web.yaml",
				"default/cluster1/app1/Role/rbac.authorization.k8s.io_v1/web.yaml",
				"default/cluster1/app1/ServiceAccount/v1/web.yaml",
				"default/cluster1/app1/RoleBinding/rbac.authorization.k8s.io_v1/web.yaml",
				"default/cluster1/app1/Deployment/apps_v1/web.yaml",
				"default/cluster1/app1/Gateway/networking.istio.io_v1alpha3/web.yaml",
				"default/cluster1/app1/VirtualService/networking.istio.io_v1alpha3/web.yaml",
				"finish",
			},
		},
		{
			name: "exclusions",
			keys: []string{
				"default/cluster1/default/Namespace/v1/default.yaml",
				"default/cluster1/default/Service/v1/kubernetes.yaml",
				"default/cluster1/default/Service/v1/web.yaml",
				"default/cluster1/default/ServiceAccount/v1/default.yaml",
				"default/cluster1/default/Secret/v1/default-token-abcde.yaml",
			},
			set:       "default",
			cluster:   "cluster1",
			selector:  All,
			processed: 2,
			calls: []string{
				"start default",
				"default/cluster1/default/Namespace/v1/default.yaml",
				"default/cluster1/default/Service/v1/web.yaml",
				"finish",
			},
		},
		{
			name: "tolerates conflicts",
			keys: []string{
				"default/cluster1/app1/Namespace/v1/app1.yaml",
				"default/cluster1/app1/ConfigMap/v1/web.yaml",
			},
			set:       "default",
			cluster:   "cluster1",
			selector:  All,
			failures:  map[string]error{"Namespace": apierrors.NewAlreadyExists(schema.GroupResource{Resource: "namespaces"}, "app1")},
			processed: 1,
			calls: []string{
				"start app1",
				"default/cluster1/app1/ConfigMap/v1/web.yaml",
				"finish",
			},
		},
		{
			name: "aborts on other errors",
			keys: []string{
				"default/cluster1/app1/Namespace/v1/app1.yaml",
				"default/cluster1/app1/ConfigMap/v1/web.yaml",
				"default/cluster1/app1/Secret/v1/web.yaml",
			},
			set:       "default",
			cluster:   "cluster1",
			selector:  All,
			failures:  map[string]error{"ConfigMap": errors.New("connection refused")},
			processed: 1,
			calls: []string{
				"start app1",
				"default/cluster1/app1/Namespace/v1/app1.yaml",
			},
			err: errors.New("connection refused"),
		},
		{
			name: "with prefix",
			keys: []string{
				"cluster1/application-backups/default/cluster1/app1/Namespace/v1/app1.yaml",
			},
			prefix:    "cluster1/application-backups",
			set:       "default",
			cluster:   "cluster1",
			selector:  All,
			processed: 1,
			calls: []string{
				"start app1",
				"cluster1/application-backups/default/cluster1/app1/Namespace/v1/app1.yaml",
				"finish",
			},
		},
		{
			name: "malformed key",
			keys: []string{
				"default/cluster1/app1/Namespace/app1.yaml",
			},
			set:      "default",
			cluster:  "cluster1",
			selector: All,
			err:      kdrerrors.ErrMalformedKey,
		},
		{
			name:     "empty selector",
			keys:     twoNamespaces,
			set:      "default",
			cluster:  "cluster1",
			selector: Selector{},
			err:      kdrerrors.ErrInvalidArgument,
		},
		{
			name:     "missing cluster",
			keys:     twoNamespaces,
			set:      "default",
			selector: All,
			err:      kdrerrors.ErrInvalidArgument,
		},
	}
	for _, tt := range tests {
		testutil.Run(t, tt.name, func(t *testutil.T) {
			store := seed(t, tt.keys...)
			strategy := &recorder{failures: tt.failures}

			engine := New(store, strategy, WithPrefix(tt.prefix), WithLogger(testr.New(t.T)))

			processed, err := engine.RestoreNamespaces(context.Background(), tt.set, tt.cluster, tt.selector)
			if tt.err != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.err) || bytes.Contains([]byte(err.Error()), []byte(tt.err.Error())), err.Error())
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.processed, processed)
			assert.Equal(t, tt.calls, strategy.calls)
		})
	}
}

func TestDiscoverNamespaces(t *testing.T) {
	store := blob.NewMemory(map[string][]byte{
		"default/cluster1/kube-system/Namespace/v1/kube-system.yaml":        nil,
		"default/cluster1/kube-system/ConfigMap/v1/coredns.yaml":            nil,
		"default/cluster1/app1/Namespace/v1/app1.yaml":                      nil,
		"default/cluster1/app1/Deployment/apps_v1/web.yaml":                 nil,
		"default/cluster2/app2/Namespace/v1/app2.yaml":                      nil,
		"staging/cluster1/app3/Namespace/v1/app3.yaml":                      nil,
		"default/cluster1/bank-app2/VirtualService/v1/ingress-podinfo.yaml": nil,
	})

	namespaces, err := New(store, &recorder{}).DiscoverNamespaces(context.Background(), "default", "cluster1")
	require.NoError(t, err)
	assert.Equal(t, []string{"app1", "bank-app2", "kube-system"}, namespaces)

	_, err = New(store, &recorder{}).DiscoverNamespaces(context.Background(), "", "cluster1")
	assert.True(t, errors.Is(err, kdrerrors.ErrInvalidArgument))
}

func TestRestoreReplaceExisting(t *testing.T) {
	store := blob.NewMemory(map[string][]byte{
		"default/cluster1/app1/Namespace/v1/app1.yaml":                            []byte("kind: Namespace"),
		"default/cluster1/app1/ConfigMap/v1/settings.yaml":                        []byte("kind: ConfigMap"),
		"default/cluster1/app1/Deployment/apps_v1/web.yaml":                       []byte("kind: Deployment"),
		"default/cluster1/app1/Gateway/networking.istio.io_v1alpha3/ingress.yaml": []byte("kind: Gateway"),
	})
	live := cluster.NewFake(
		testobj.Document(testobj.Namespace("app1"), "v1", "Namespace"),
		testobj.Document(testobj.ConfigMap("app1", "settings"), "v1", "ConfigMap"),
		testobj.Gateway("app1", "ingress").Object,
	)

	processed, err := New(store, &recorder{}, WithReplaceExisting(live), WithLogger(testr.New(t))).
		RestoreNamespaces(context.Background(), "default", "cluster1", All)
	require.NoError(t, err)
	assert.Equal(t, 4, processed)

	// Only the live config map is removed: the namespace is never removed,
	// the deployment does not exist and gateways are custom
	assert.Equal(t, []string{"app1/ConfigMap/settings"}, live.Deleted)
}

// unreadableStore fails to retrieve keys containing any of the given
// substrings
type unreadableStore struct {
	*blob.Memory
	unreadable []string
}

func (s *unreadableStore) Get(ctx context.Context, key string) ([]byte, error) {
	for _, match := range s.unreadable {
		if strings.Contains(key, match) {
			return nil, errors.New("transient s3 outage")
		}
	}
	return s.Memory.Get(ctx, key)
}

func TestRestoreReplaceExistingUnreadableBackup(t *testing.T) {
	store := &unreadableStore{
		Memory: blob.NewMemory(map[string][]byte{
			"default/cluster1/app1/Namespace/v1/app1.yaml":     []byte("kind: Namespace"),
			"default/cluster1/app1/ConfigMap/v1/settings.yaml": []byte("kind: ConfigMap"),
		}),
		unreadable: []string{"ConfigMap/v1/settings.yaml"},
	}
	live := cluster.NewFake(
		testobj.Document(testobj.Namespace("app1"), "v1", "Namespace"),
		testobj.Document(testobj.ConfigMap("app1", "settings"), "v1", "ConfigMap"),
	)

	processed, err := New(store, &recorder{}, WithReplaceExisting(live), WithLogger(testr.New(t))).
		RestoreNamespaces(context.Background(), "default", "cluster1", All)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transient s3 outage")
	assert.Equal(t, 1, processed)

	// The live config map survives a backup that could not be read
	assert.Empty(t, live.Deleted)
	_, err = live.ReadKind(context.Background(), "app1", "ConfigMap", "settings")
	assert.NoError(t, err)
}

func TestRestoreNamespacesMissingDependencies(t *testing.T) {
	tests := []struct {
		name     string
		store    blob.Store
		strategy Strategy
	}{
		{
			name:  "no strategy",
			store: blob.NewMemory(nil),
		},
		{
			name:     "no store",
			strategy: &recorder{},
		},
	}
	for _, tt := range tests {
		testutil.Run(t, tt.name, func(t *testutil.T) {
			processed, err := New(tt.store, tt.strategy).RestoreNamespaces(context.Background(), "default", "cluster1", All)
			assert.True(t, errors.Is(err, kdrerrors.ErrInvalidArgument), err)
			assert.Equal(t, 0, processed)
		})
	}
}

func TestExcludeCheck(t *testing.T) {
	tests := []struct {
		namespace, kind, name string
		want                  bool
	}{
		{"default", "Service", "kubernetes", true},
		{"default", "Endpoints", "kubernetes", true},
		{"app1", "Service", "kubernetes", false},
		{"default", "Service", "web", false},
		{"app1", "Secret", "default-token-x7k2p", true},
		{"app1", "ServiceAccount", "default", true},
		{"app1", "Secret", "db-credentials", false},
		{"app1", "ConfigMap", "default-settings", false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s/%s", tt.namespace, tt.kind, tt.name), func(t *testing.T) {
			assert.Equal(t, tt.want, ExcludeCheck(tt.namespace, tt.kind, tt.name))
			// Deterministic
			assert.Equal(t, tt.want, ExcludeCheck(tt.namespace, tt.kind, tt.name))
		})
	}
}
