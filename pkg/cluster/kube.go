package cluster

import (
	"context"
	"fmt"

	"github.com/leg100/kdr/pkg/catalog"
	kdrerrors "github.com/leg100/kdr/pkg/errors"
	"github.com/leg100/kdr/pkg/retry"
	appsv1 "k8s.io/api/apps/v1"
	autoscalingv1 "k8s.io/api/autoscaling/v1"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"
)

// DefaultPageSize is the maximum number of items requested per list call
const DefaultPageSize = 100

// typedClient is the subset of a generated client-go client used to back up
// and restore a kind
type typedClient[T, L runtime.Object] interface {
	List(ctx context.Context, opts metav1.ListOptions) (L, error)
	Get(ctx context.Context, name string, opts metav1.GetOptions) (T, error)
	Delete(ctx context.Context, name string, opts metav1.DeleteOptions) error
}

// kindOps are the calls for a single built-in kind
type kindOps struct {
	gvk    schema.GroupVersionKind
	list   func(ctx context.Context, namespace string, opts metav1.ListOptions) (runtime.Object, error)
	get    func(ctx context.Context, namespace, name string) (runtime.Object, error)
	delete func(ctx context.Context, namespace, name string) error
}

func newKindOps[T, L runtime.Object](gvk schema.GroupVersionKind, client func(namespace string) typedClient[T, L]) kindOps {
	return kindOps{
		gvk: gvk,
		list: func(ctx context.Context, namespace string, opts metav1.ListOptions) (runtime.Object, error) {
			return client(namespace).List(ctx, opts)
		},
		get: func(ctx context.Context, namespace, name string) (runtime.Object, error) {
			return client(namespace).Get(ctx, name, metav1.GetOptions{})
		},
		delete: func(ctx context.Context, namespace, name string) error {
			return client(namespace).Delete(ctx, name, metav1.DeleteOptions{})
		},
	}
}

// Kube is a Provider backed by client-go
type Kube struct {
	kc kubernetes.Interface
	dc dynamic.Interface

	// Built-in kinds keyed by kind name
	ops map[string]kindOps

	pageSize int64
	backoff  wait.Backoff
}

type KubeOption func(*Kube)

// WithBackoff sets the retry policy for transient errors
func WithBackoff(backoff wait.Backoff) KubeOption {
	return func(k *Kube) {
		k.backoff = backoff
	}
}

// WithPageSize sets the maximum number of items per list call
func WithPageSize(size int64) KubeOption {
	return func(k *Kube) {
		k.pageSize = size
	}
}

func NewKube(kc kubernetes.Interface, dc dynamic.Interface, opts ...KubeOption) *Kube {
	k := &Kube{
		kc:       kc,
		dc:       dc,
		pageSize: DefaultPageSize,
		backoff:  retry.DefaultBackoff,
	}
	for _, o := range opts {
		o(k)
	}

	core := corev1.SchemeGroupVersion
	apps := appsv1.SchemeGroupVersion
	rbac := rbacv1.SchemeGroupVersion
	autoscaling := autoscalingv1.SchemeGroupVersion

	table := []kindOps{
		newKindOps(core.WithKind("ConfigMap"), func(ns string) typedClient[*corev1.ConfigMap, *corev1.ConfigMapList] {
			return kc.CoreV1().ConfigMaps(ns)
		}),
		newKindOps(core.WithKind("LimitRange"), func(ns string) typedClient[*corev1.LimitRange, *corev1.LimitRangeList] {
			return kc.CoreV1().LimitRanges(ns)
		}),
		newKindOps(core.WithKind("ResourceQuota"), func(ns string) typedClient[*corev1.ResourceQuota, *corev1.ResourceQuotaList] {
			return kc.CoreV1().ResourceQuotas(ns)
		}),
		newKindOps(core.WithKind("Secret"), func(ns string) typedClient[*corev1.Secret, *corev1.SecretList] {
			return kc.CoreV1().Secrets(ns)
		}),
		newKindOps(core.WithKind("Service"), func(ns string) typedClient[*corev1.Service, *corev1.ServiceList] {
			return kc.CoreV1().Services(ns)
		}),
		newKindOps(core.WithKind("ServiceAccount"), func(ns string) typedClient[*corev1.ServiceAccount, *corev1.ServiceAccountList] {
			return kc.CoreV1().ServiceAccounts(ns)
		}),
		newKindOps(core.WithKind("PodTemplate"), func(ns string) typedClient[*corev1.PodTemplate, *corev1.PodTemplateList] {
			return kc.CoreV1().PodTemplates(ns)
		}),
		newKindOps(apps.WithKind("Deployment"), func(ns string) typedClient[*appsv1.Deployment, *appsv1.DeploymentList] {
			return kc.AppsV1().Deployments(ns)
		}),
		newKindOps(rbac.WithKind("Role"), func(ns string) typedClient[*rbacv1.Role, *rbacv1.RoleList] {
			return kc.RbacV1().Roles(ns)
		}),
		newKindOps(rbac.WithKind("RoleBinding"), func(ns string) typedClient[*rbacv1.RoleBinding, *rbacv1.RoleBindingList] {
			return kc.RbacV1().RoleBindings(ns)
		}),
		newKindOps(autoscaling.WithKind("HorizontalPodAutoscaler"), func(ns string) typedClient[*autoscalingv1.HorizontalPodAutoscaler, *autoscalingv1.HorizontalPodAutoscalerList] {
			return kc.AutoscalingV1().HorizontalPodAutoscalers(ns)
		}),
	}

	k.ops = make(map[string]kindOps, len(table))
	for _, o := range table {
		k.ops[o.gvk.Kind] = o
	}
	return k
}

func (k *Kube) lookup(kind string) (kindOps, error) {
	o, ok := k.ops[kind]
	if !ok {
		return kindOps{}, fmt.Errorf("%w: %s", kdrerrors.ErrUnsupportedKind, kind)
	}
	return o, nil
}

func (k *Kube) ReadNamespace(ctx context.Context, name string) (catalog.Document, error) {
	var ns *corev1.Namespace
	err := retry.OnTransient(k.backoff, func() (err error) {
		ns, err = k.kc.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return toDocument(ns, corev1.SchemeGroupVersion.WithKind("Namespace"))
}

func (k *Kube) ListNamespaces(ctx context.Context, selector, cont string) (Page, error) {
	var list *corev1.NamespaceList
	err := retry.OnTransient(k.backoff, func() (err error) {
		list, err = k.kc.CoreV1().Namespaces().List(ctx, k.listOptions(cont, selector))
		return err
	})
	if err != nil {
		return Page{}, err
	}
	return toPage(list, corev1.SchemeGroupVersion.WithKind("Namespace"))
}

func (k *Kube) ListKind(ctx context.Context, namespace, kind, cont string) (Page, error) {
	o, err := k.lookup(kind)
	if err != nil {
		return Page{}, err
	}

	var list runtime.Object
	err = retry.OnTransient(k.backoff, func() (err error) {
		list, err = o.list(ctx, namespace, k.listOptions(cont, ""))
		return err
	})
	if err != nil {
		return Page{}, err
	}
	klog.V(3).Infof("listed %s in namespace %s", kind, namespace)
	return toPage(list, o.gvk)
}

func (k *Kube) ReadKind(ctx context.Context, namespace, kind, name string) (catalog.Document, error) {
	o, err := k.lookup(kind)
	if err != nil {
		return nil, err
	}

	var obj runtime.Object
	err = retry.OnTransient(k.backoff, func() (err error) {
		obj, err = o.get(ctx, namespace, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toDocument(obj, o.gvk)
}

func (k *Kube) DeleteKind(ctx context.Context, namespace, kind, name string) error {
	o, err := k.lookup(kind)
	if err != nil {
		return err
	}

	return retry.OnTransient(k.backoff, func() error {
		return o.delete(ctx, namespace, name)
	})
}

func (k *Kube) ListCustomKind(ctx context.Context, namespace string, gvr schema.GroupVersionResource, cont string) (Page, error) {
	var list *unstructured.UnstructuredList
	err := retry.OnTransient(k.backoff, func() (err error) {
		list, err = k.dc.Resource(gvr).Namespace(namespace).List(ctx, k.listOptions(cont, ""))
		return err
	})
	if err != nil {
		return Page{}, err
	}

	page := Page{Continue: list.GetContinue()}
	for _, item := range list.Items {
		page.Items = append(page.Items, item.Object)
	}
	return page, nil
}

func (k *Kube) ReadCustomKind(ctx context.Context, namespace string, gvr schema.GroupVersionResource, name string) (catalog.Document, error) {
	var obj *unstructured.Unstructured
	err := retry.OnTransient(k.backoff, func() (err error) {
		obj, err = k.dc.Resource(gvr).Namespace(namespace).Get(ctx, name, metav1.GetOptions{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return obj.Object, nil
}

func (k *Kube) ClusterMetadata(ctx context.Context) (map[string]string, error) {
	var cm *corev1.ConfigMap
	err := retry.OnTransient(k.backoff, func() (err error) {
		cm, err = k.kc.CoreV1().ConfigMaps(MetadataNamespace).Get(ctx, MetadataName, metav1.GetOptions{})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("reading cluster metadata from %s/%s: %w", MetadataNamespace, MetadataName, err)
	}
	return cm.Data, nil
}

func (k *Kube) listOptions(cont, selector string) metav1.ListOptions {
	return metav1.ListOptions{
		Limit:         k.pageSize,
		Continue:      cont,
		LabelSelector: selector,
	}
}

// toDocument converts a typed object into a document, populating apiVersion
// and kind, which typed clients leave empty
func toDocument(obj runtime.Object, gvk schema.GroupVersionKind) (catalog.Document, error) {
	doc, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", gvk.Kind, err)
	}
	doc["apiVersion"] = gvk.GroupVersion().String()
	doc["kind"] = gvk.Kind
	return doc, nil
}

func toPage(list runtime.Object, gvk schema.GroupVersionKind) (Page, error) {
	accessor, err := meta.ListAccessor(list)
	if err != nil {
		return Page{}, err
	}
	items, err := meta.ExtractList(list)
	if err != nil {
		return Page{}, err
	}

	page := Page{Continue: accessor.GetContinue()}
	for _, item := range items {
		doc, err := toDocument(item, gvk)
		if err != nil {
			return Page{}, err
		}
		page.Items = append(page.Items, doc)
	}
	return page, nil
}
