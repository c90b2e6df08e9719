package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/kontena/pharos-host-watchdog/kube"
	"github.com/kontena/pharos-host-watchdog/watchdog"
)

type KubeOptions struct {
	kube.Options
}

type Kube struct {
	node *kube.Node
}

func makeKube(options Options) (Kube, error) {
	var k Kube

	if !options.Kube.IsSet() {
		zap.S().Infof("No --kube-node configuration")
		return k, nil
	}

	zap.S().Infof("Using --kube-node=%v", options.Kube.Node)

	if kube, err := kube.New(options.Kube.Options); err != nil {
		return k, err
	} else {
		k.node = kube.Node()
	}

	return k, nil
}

// Update the node status condition for a run, returning true if the status or reason changed.
// Failures are only logged.
func (k Kube) UpdateWatchdogCondition(ctx context.Context, host HostInfo, result watchdog.Result, runErr error) bool {
	if k.node == nil {
		zap.S().Debugf("Skip kube node condition")
		return false
	}

	var condition = MakeWatchdogCondition(host, result, runErr)
	var changed bool

	if previous, exists, err := k.node.GetCondition(ctx, condition.Type); err != nil {
		zap.S().Warnf("Failed to get node %v condition: %v", k.node, err)
		return false
	} else if !exists {
		zap.S().Infof("Initialize kube node %v condition %v=%v: %v", k.node, condition.Type, condition.Status, condition.Reason)

		changed = true
	} else if previous.Status != condition.Status || previous.Reason != condition.Reason {
		zap.S().Infof("Change kube node %v condition %v=%v: %v (was %v: %v)", k.node, condition.Type, condition.Status, condition.Reason, previous.Status, previous.Reason)

		changed = true
	} else {
		zap.S().Debugf("Update kube node %v condition %v=%v: %v", k.node, condition.Type, condition.Status, condition.Reason)
	}

	if err := k.node.SetCondition(ctx, condition); err != nil {
		zap.S().Warnf("Failed to update node %v condition: %v", k.node, err)
		return false
	}

	return changed
}
