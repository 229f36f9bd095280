package apply

import (
	"context"

	"k8s.io/klog/v2"
	"sigs.k8s.io/yaml"
)

// Null discards resources, logging each one
type Null struct {
	namespace string

	// Processed counts resources received across all namespaces
	Processed int
}

func (n *Null) StartNamespace(ctx context.Context, namespace string) error {
	n.namespace = namespace
	klog.Infof("restoring namespace %s", namespace)
	return nil
}

func (n *Null) ProcessResource(ctx context.Context, data []byte) error {
	var meta struct {
		Kind     string `json:"kind"`
		Metadata struct {
			Name string `json:"name"`
		} `json:"metadata"`
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return err
	}
	n.Processed++
	klog.Infof("would restore %s %s/%s", meta.Kind, n.namespace, meta.Metadata.Name)
	return nil
}

func (n *Null) FinishNamespace(ctx context.Context) error {
	klog.V(1).Infof("finished namespace %s", n.namespace)
	return nil
}
