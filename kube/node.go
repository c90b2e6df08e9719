package kube

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	corev1client "k8s.io/client-go/kubernetes/typed/core/v1"
	"k8s.io/client-go/util/retry"
)

type Node struct {
	client corev1client.CoreV1Interface
	name   string
}

func (node *Node) String() string {
	return fmt.Sprintf("kube.Node[%v]", node.name)
}

func (node *Node) get(ctx context.Context) (*corev1.Node, error) {
	if obj, err := node.client.Nodes().Get(ctx, node.name, metav1.GetOptions{}); err != nil {
		return nil, fmt.Errorf("Get %v: %w", node, err)
	} else {
		return obj, nil
	}
}

// replaces the condition of the same type, keeping the transition time if the status is unchanged
func (node *Node) setCondition(obj *corev1.Node, condition corev1.NodeCondition) {
	for i, c := range obj.Status.Conditions {
		if c.Type != condition.Type {
			continue
		}

		if c.Status == condition.Status && !c.LastTransitionTime.IsZero() {
			condition.LastTransitionTime = c.LastTransitionTime
		}

		obj.Status.Conditions[i] = condition

		return
	}

	obj.Status.Conditions = append(obj.Status.Conditions, condition)
}

func (node *Node) getCondition(obj *corev1.Node, conditionType corev1.NodeConditionType) (condition corev1.NodeCondition, exists bool) {
	for _, c := range obj.Status.Conditions {
		if c.Type == conditionType {
			return c, true
		}
	}

	return condition, false
}

func (node *Node) SetCondition(ctx context.Context, condition corev1.NodeCondition) error {
	return retry.RetryOnConflict(retry.DefaultBackoff, func() error {
		if obj, err := node.get(ctx); err != nil {
			return err
		} else {
			node.setCondition(obj, condition)

			if _, err := node.client.Nodes().UpdateStatus(ctx, obj, metav1.UpdateOptions{}); err != nil {
				return err // unmodified for RetryOnConflict
			}
		}

		return nil
	})
}

func (node *Node) GetCondition(ctx context.Context, conditionType corev1.NodeConditionType) (condition corev1.NodeCondition, exists bool, err error) {
	if obj, err := node.get(ctx); err != nil {
		return condition, false, err
	} else if condition, exists := node.getCondition(obj, conditionType); !exists {
		return condition, false, nil
	} else {
		return condition, true, nil
	}
}
