package testobj

import (
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
)

func Namespace(name string, opts ...func(*corev1.Namespace)) *corev1.Namespace {
	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name: name,
			UID:  types.UID("uid-" + name),
		},
		Status: corev1.NamespaceStatus{Phase: corev1.NamespaceActive},
	}
	for _, o := range opts {
		o(ns)
	}
	return ns
}

func WithNamespaceLabels(labels map[string]string) func(*corev1.Namespace) {
	return func(ns *corev1.Namespace) {
		ns.Labels = labels
	}
}

func ConfigMap(namespace, name string, opts ...func(*corev1.ConfigMap)) *corev1.ConfigMap {
	var configMap = &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:            name,
			Namespace:       namespace,
			ResourceVersion: "1",
		},
	}
	for _, o := range opts {
		o(configMap)
	}

	return configMap
}

func WithData(data map[string]string) func(*corev1.ConfigMap) {
	return func(cm *corev1.ConfigMap) {
		cm.Data = data
	}
}

func Secret(namespace, name string, opts ...func(*corev1.Secret)) *corev1.Secret {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Type: corev1.SecretTypeOpaque,
	}
	for _, o := range opts {
		o(secret)
	}
	return secret
}

func ServiceAccount(namespace, name string) *corev1.ServiceAccount {
	return &corev1.ServiceAccount{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
	}
}

func Service(namespace, name string) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Spec: corev1.ServiceSpec{
			Ports: []corev1.ServicePort{{Name: "http", Port: 80}},
		},
	}
}

func Deployment(namespace, name string, opts ...func(*appsv1.Deployment)) *appsv1.Deployment {
	replicas := int32(1)
	deploy := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:       name,
			Namespace:  namespace,
			Generation: 1,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{
				MatchLabels: map[string]string{"app": name},
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: map[string]string{"app": name},
				},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{Name: name, Image: name}},
				},
			},
		},
		Status: appsv1.DeploymentStatus{Replicas: replicas},
	}
	for _, o := range opts {
		o(deploy)
	}
	return deploy
}

func Role(namespace, name string, opts ...func(*rbacv1.Role)) *rbacv1.Role {
	role := &rbacv1.Role{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: namespace,
			Name:      name,
		},
	}

	for _, option := range opts {
		option(role)
	}

	return role
}

func WithRule(rule rbacv1.PolicyRule) func(role *rbacv1.Role) {
	return func(role *rbacv1.Role) {
		role.Rules = append(role.Rules, rule)
	}
}
