package cluster

import (
	"context"
	"testing"

	"github.com/leg100/kdr/pkg/testobj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

func TestFakePagination(t *testing.T) {
	f := NewFake(
		testobj.Document(testobj.ConfigMap("app1", "a"), "v1", "ConfigMap"),
		testobj.Document(testobj.ConfigMap("app1", "b"), "v1", "ConfigMap"),
		testobj.Document(testobj.ConfigMap("app1", "c"), "v1", "ConfigMap"),
		testobj.Document(testobj.ConfigMap("app2", "d"), "v1", "ConfigMap"),
	)
	f.PageSize = 2

	var names []string
	var pages int
	cont := ""
	for {
		page, err := f.ListKind(context.Background(), "app1", "ConfigMap", cont)
		require.NoError(t, err)
		pages++
		for _, item := range page.Items {
			names = append(names, item["metadata"].(map[string]interface{})["name"].(string))
		}
		if cont = page.Continue; cont == "" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, 2, pages)
}

func TestFakeUnserved(t *testing.T) {
	f := NewFake()
	f.Unserved = append(f.Unserved, gateways)

	_, err := f.ListCustomKind(context.Background(), "app1", gateways, "")
	assert.True(t, apierrors.IsNotFound(err))

	_, err = f.ListCustomKind(context.Background(), "app1", virtualServices, "")
	assert.NoError(t, err)
}

func TestFakeDelete(t *testing.T) {
	f := NewFake(testobj.Document(testobj.Deployment("app1", "web"), "apps/v1", "Deployment"))

	require.NoError(t, f.DeleteKind(context.Background(), "app1", "Deployment", "web"))
	assert.Equal(t, []string{"app1/Deployment/web"}, f.Deleted)

	err := f.DeleteKind(context.Background(), "app1", "Deployment", "web")
	assert.True(t, apierrors.IsNotFound(err))
}
