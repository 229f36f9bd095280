package client

import (
	"github.com/leg100/kdr/pkg/catalog"
	"github.com/leg100/kdr/pkg/scheme"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	kfake "k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/testing"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
)

// Implements ClientCreator
type FakeClientCreator struct {
	// Fake objs
	objs     []runtime.Object
	reactors []testing.SimpleReactor
}

func NewFakeClientCreator(objs ...runtime.Object) *FakeClientCreator {
	return &FakeClientCreator{objs: objs}
}

// Create splits objs between clients: unstructured objs are served by the
// dynamic client, everything else by the built-in and runtime clients.
func (f *FakeClientCreator) Create(kubeCtx string) (*Client, error) {
	var kubeObjs, customObjs []runtime.Object
	for _, obj := range f.objs {
		switch obj.(type) {
		case *unstructured.Unstructured:
			customObjs = append(customObjs, obj)
		default:
			kubeObjs = append(kubeObjs, obj)
		}
	}

	// The dynamic fake needs to know the list kind of every resource it serves
	listKinds := make(map[schema.GroupVersionResource]string)
	for _, spec := range catalog.Default().Customs() {
		listKinds[spec.GroupVersionResource()] = spec.Kind + "List"
	}
	gvrs := make([]schema.GroupVersionResource, len(customObjs))
	for i, obj := range customObjs {
		gvrs[i] = customResource(obj.GetObjectKind().GroupVersionKind())
		listKinds[gvrs[i]] = obj.GetObjectKind().GroupVersionKind().Kind + "List"
	}

	// Seed through the tracker, which would otherwise guess resource names
	dc := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(), listKinds)
	for i, obj := range customObjs {
		ns := obj.(*unstructured.Unstructured).GetNamespace()
		if err := dc.Tracker().Create(gvrs[i], obj, ns); err != nil {
			return nil, err
		}
	}

	kc := kfake.NewSimpleClientset(kubeObjs...)
	for _, r := range f.reactors {
		kc.PrependReactor(r.Verb, r.Resource, r.Reaction)
	}

	return &Client{
		Config:        &rest.Config{},
		KubeClient:    kc,
		DynamicClient: dc,
		RuntimeClient: fake.NewClientBuilder().WithScheme(scheme.Scheme).WithRuntimeObjects(kubeObjs...).Build(),
	}, nil
}

// Add a reactor to the list of reactors to be prepended to the built-in client.
func (f *FakeClientCreator) PrependReactor(verb, resource string, reaction testing.ReactionFunc) {
	f.reactors = append(f.reactors, testing.SimpleReactor{Verb: verb, Resource: resource, Reaction: reaction})
}

// customResource maps a custom kind to its resource, preferring the catalog's
// plural over a guess
func customResource(gvk schema.GroupVersionKind) schema.GroupVersionResource {
	if spec, err := catalog.Default().Lookup(gvk.Kind); err == nil && spec.Custom {
		return spec.GroupVersionResource()
	}
	gvr, _ := meta.UnsafeGuessKindToResource(gvk)
	return gvr
}
