package testobj

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

// VirtualService constructs an istio virtual service routing to host
func VirtualService(namespace, name, host string) *unstructured.Unstructured {
	return &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "networking.istio.io/v1alpha3",
			"kind":       "VirtualService",
			"metadata": map[string]interface{}{
				"name":            name,
				"namespace":       namespace,
				"resourceVersion": "7",
			},
			"spec": map[string]interface{}{
				"hosts": []interface{}{host},
			},
		},
	}
}

// Gateway constructs an istio gateway
func Gateway(namespace, name string) *unstructured.Unstructured {
	return &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "networking.istio.io/v1alpha3",
			"kind":       "Gateway",
			"metadata": map[string]interface{}{
				"name":      name,
				"namespace": namespace,
			},
			"spec": map[string]interface{}{
				"selector": map[string]interface{}{"istio": "ingressgateway"},
			},
		},
	}
}

// Document converts obj into a document carrying apiVersion and kind
func Document(obj runtime.Object, apiVersion, kind string) map[string]interface{} {
	doc, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		panic(err.Error())
	}
	doc["apiVersion"] = apiVersion
	doc["kind"] = kind
	return doc
}
