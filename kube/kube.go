package kube

import (
	"fmt"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

type Options struct {
	Node string
}

func (options Options) IsSet() bool {
	return options.Node != ""
}

type Kube struct {
	client  kubernetes.Interface
	options Options
}

func New(options Options) (*Kube, error) {
	var kube = Kube{
		options: options,
	}

	if config, err := rest.InClusterConfig(); err != nil {
		return nil, fmt.Errorf("k8s.io/client-go/rest:InClusterConfig: %w", err)
	} else if client, err := kubernetes.NewForConfig(config); err != nil {
		return nil, fmt.Errorf("k8s.io/client-go/kubernetes:NewForConfig: %w", err)
	} else {
		kube.client = client
	}

	return &kube, nil
}

// NewWithClient uses the given client instead of the in-cluster config.
func NewWithClient(options Options, client kubernetes.Interface) *Kube {
	return &Kube{
		client:  client,
		options: options,
	}
}

func (kube *Kube) Node() *Node {
	return &Node{
		client: kube.client.CoreV1(),
		name:   kube.options.Node,
	}
}
