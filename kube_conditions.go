package main

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kontena/pharos-host-watchdog/watchdog"
)

const WatchdogConditionType corev1.NodeConditionType = "HostWatchdog"

const (
	ConditionReasonHealthy      = "Healthy"
	ConditionReasonDisconnected = "Disconnected"
	ConditionReasonFeedStale    = "FeedStale"
	ConditionReasonCheckFailed  = "CheckFailed"
)

// MakeWatchdogCondition reports a run. The transition time is kept by kube.Node if the status is unchanged.
func MakeWatchdogCondition(host HostInfo, result watchdog.Result, err error) corev1.NodeCondition {
	var condition = corev1.NodeCondition{
		Type:               WatchdogConditionType,
		LastHeartbeatTime:  metav1.Now(),
		LastTransitionTime: metav1.Now(),
	}

	if err != nil {
		condition.Status = corev1.ConditionUnknown
		condition.Reason = ConditionReasonCheckFailed
		condition.Message = err.Error()
	} else if !result.Reboot {
		condition.Status = corev1.ConditionTrue
		condition.Reason = ConditionReasonHealthy
		condition.Message = fmt.Sprintf("Feed updated %v seconds ago", result.FeedAge)

		if !host.BootTime.IsZero() {
			condition.LastTransitionTime = metav1.NewTime(host.BootTime)
		}
	} else {
		condition.Status = corev1.ConditionFalse

		switch result.Reason {
		case watchdog.ReasonDisconnected:
			condition.Reason = ConditionReasonDisconnected
			condition.Message = "Internet not connected"
		default:
			condition.Reason = ConditionReasonFeedStale
			condition.Message = fmt.Sprintf("Feed not updated for %v seconds", result.FeedAge)
		}

		if result.RebootScheduled {
			condition.LastTransitionTime = metav1.NewTime(result.RebootTime)
			condition.Message += fmt.Sprintf(", rebooting at %v", result.RebootTime.Format("15:04:05"))
		} else {
			condition.Message += ", not rebooting"
		}
	}

	return condition
}
