package client

import (
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	runtimeclient "sigs.k8s.io/controller-runtime/pkg/client"
)

// Client bundles the kubernetes clients needed to back up and restore a
// cluster
type Client struct {
	// Client config
	Config *rest.Config

	// Kubernetes built-in client
	KubeClient kubernetes.Interface

	// Client for custom resources with no generated clientset
	DynamicClient dynamic.Interface

	// controller-runtime client, used to create arbitrary resources
	RuntimeClient runtimeclient.Client
}
