package apply

import (
	"context"
	"fmt"

	"github.com/leg100/kdr/pkg/catalog"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/klog/v2"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/yaml"
)

// API creates resources directly via the kubernetes API. Resources that
// already exist are reported as conflicts and left untouched.
type API struct {
	client    client.Client
	namespace string
	dryRun    bool
}

func NewAPI(c client.Client, dryRun bool) *API {
	return &API{client: c, dryRun: dryRun}
}

func (a *API) StartNamespace(ctx context.Context, namespace string) error {
	a.namespace = namespace
	return nil
}

func (a *API) ProcessResource(ctx context.Context, data []byte) error {
	obj := &unstructured.Unstructured{}
	if err := yaml.Unmarshal(data, &obj.Object); err != nil {
		return fmt.Errorf("decoding resource: %w", err)
	}
	if obj.GetKind() == "" || obj.GetName() == "" {
		return fmt.Errorf("decoding resource: missing kind or name")
	}
	if obj.GetKind() != catalog.Namespace.Kind {
		obj.SetNamespace(a.namespace)
	}

	var opts []client.CreateOption
	if a.dryRun {
		opts = append(opts, client.DryRunAll)
	}
	if err := a.client.Create(ctx, obj, opts...); err != nil {
		return err
	}
	klog.V(1).Infof("created %s %s/%s", obj.GetKind(), obj.GetNamespace(), obj.GetName())
	return nil
}

func (a *API) FinishNamespace(ctx context.Context) error {
	a.namespace = ""
	return nil
}
