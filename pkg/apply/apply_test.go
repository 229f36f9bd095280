package apply

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	kdrerrors "github.com/leg100/kdr/pkg/errors"
	"github.com/leg100/kdr/pkg/scheme"
	"github.com/leg100/kdr/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
)

// Fake that prints any args to out
type fakeExecutorEchoArgs struct {
	out io.Writer
}

func (fe *fakeExecutorEchoArgs) run(ctx context.Context, args []string) error {
	fmt.Fprintf(fe.out, "%v", args)
	return nil
}

// Fake that fails as kubectl would upon a non-zero exit
type fakeExecutorFailing struct{}

func (fe *fakeExecutorFailing) run(ctx context.Context, args []string) error {
	return fmt.Errorf("unable to run command %v: %w", args, errors.New("exit status 1"))
}

const (
	namespaceDoc = "apiVersion: v1\nkind: Namespace\nmetadata:\n  name: app1\n"
	configMapDoc = "apiVersion: v1\ndata:\n  color: blue\nkind: ConfigMap\nmetadata:\n  name: settings\n  namespace: app1\n"
)

func TestKubectl(t *testing.T) {
	tests := []struct {
		name string
		opts []KubectlOption
		args string
	}{
		{
			name: "apply",
			args: "[kubectl apply -f %s]",
		},
		{
			name: "dry run with context",
			opts: []KubectlOption{WithDryRun(true), WithKubeContext("prod")},
			args: "[kubectl apply -f %s --context prod --dry-run=client]",
		},
	}
	for _, tt := range tests {
		testutil.Run(t, tt.name, func(t *testutil.T) {
			dir := t.NewTempDir()
			out := new(bytes.Buffer)

			opts := append([]KubectlOption{withExecutor(&fakeExecutorEchoArgs{out: out})}, tt.opts...)
			k := NewKubectl(dir.Root(), out, out, opts...)

			ctx := context.Background()
			require.NoError(t, k.StartNamespace(ctx, "app1"))
			require.NoError(t, k.ProcessResource(ctx, []byte(namespaceDoc)))
			require.NoError(t, k.ProcessResource(ctx, []byte("apiVersion: v1\nkind: Secret\nmetadata:\n  name: creds")))
			require.NoError(t, k.FinishNamespace(ctx))

			assert.Equal(t, namespaceDoc+"---\napiVersion: v1\nkind: Secret\nmetadata:\n  name: creds\n---\n", dir.ReadFile("app1.yaml"))
			assert.Equal(t, fmt.Sprintf(tt.args, dir.Path("app1.yaml")), out.String())
		})
	}
}

func TestKubectlLeavesCallerBufferIntact(t *testing.T) {
	dir := t.TempDir()
	k := NewKubectl(dir, io.Discard, io.Discard, withExecutor(&fakeExecutorEchoArgs{out: io.Discard}))

	ctx := context.Background()
	require.NoError(t, k.StartNamespace(ctx, "app1"))

	// Spare capacity beyond the document must not be written to
	buf := []byte("kind: Secret" + "XXXX")
	doc := buf[:len("kind: Secret")]
	require.NoError(t, k.ProcessResource(ctx, doc))
	require.NoError(t, k.FinishNamespace(ctx))

	assert.Equal(t, "kind: SecretXXXX", string(buf))

	written, err := os.ReadFile(filepath.Join(dir, "app1.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "kind: Secret\n---\n", string(written))
}

func TestKubectlFailure(t *testing.T) {
	k := NewKubectl(t.TempDir(), io.Discard, io.Discard, withExecutor(&fakeExecutorFailing{}))

	ctx := context.Background()
	require.NoError(t, k.StartNamespace(ctx, "app1"))
	require.NoError(t, k.ProcessResource(ctx, []byte(namespaceDoc)))
	assert.Error(t, k.FinishNamespace(ctx))
}

func TestKubectlNotStarted(t *testing.T) {
	k := NewKubectl(t.TempDir(), io.Discard, io.Discard)

	assert.Error(t, k.ProcessResource(context.Background(), []byte(namespaceDoc)))
	assert.Error(t, k.FinishNamespace(context.Background()))
}

func TestAPI(t *testing.T) {
	c := fake.NewClientBuilder().WithScheme(scheme.Scheme).Build()

	ctx := context.Background()
	a := NewAPI(c, false)

	require.NoError(t, a.StartNamespace(ctx, "app1"))
	require.NoError(t, a.ProcessResource(ctx, []byte(namespaceDoc)))
	require.NoError(t, a.ProcessResource(ctx, []byte(configMapDoc)))
	require.NoError(t, a.FinishNamespace(ctx))

	var ns corev1.Namespace
	require.NoError(t, c.Get(ctx, client.ObjectKey{Name: "app1"}, &ns))

	var cm corev1.ConfigMap
	require.NoError(t, c.Get(ctx, client.ObjectKey{Namespace: "app1", Name: "settings"}, &cm))
	assert.Equal(t, "blue", cm.Data["color"])

	// Restoring again conflicts
	require.NoError(t, a.StartNamespace(ctx, "app1"))
	err := a.ProcessResource(ctx, []byte(configMapDoc))
	assert.True(t, kdrerrors.IsConflict(err))

	// Garbage is rejected
	assert.Error(t, a.ProcessResource(ctx, []byte("not: [valid")))
	assert.Error(t, a.ProcessResource(ctx, []byte("foo: bar\n")))
}

func TestNull(t *testing.T) {
	n := &Null{}
	ctx := context.Background()

	require.NoError(t, n.StartNamespace(ctx, "app1"))
	require.NoError(t, n.ProcessResource(ctx, []byte(namespaceDoc)))
	require.NoError(t, n.ProcessResource(ctx, []byte(configMapDoc)))
	require.NoError(t, n.FinishNamespace(ctx))

	assert.Equal(t, 2, n.Processed)
}
