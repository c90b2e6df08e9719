package main

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	corev1 "k8s.io/api/core/v1"

	"github.com/kontena/pharos-host-watchdog/watchdog"
)

var testBootTime = time.Date(2021, 2, 22, 11, 0, 0, 0, time.UTC)
var testHost = HostInfo{Hostname: "pi-1", BootTime: testBootTime}

func TestMakeWatchdogConditionHealthy(t *testing.T) {
	condition := MakeWatchdogCondition(testHost, watchdog.Result{Reason: watchdog.ReasonFresh, FeedAge: 120}, nil)

	assert.Equal(t, WatchdogConditionType, condition.Type)
	assert.Equal(t, corev1.ConditionTrue, condition.Status)
	assert.Equal(t, "Healthy", condition.Reason)
	assert.Equal(t, "Feed updated 120 seconds ago", condition.Message)
	assert.True(t, testBootTime.Equal(condition.LastTransitionTime.Time))
}

func TestMakeWatchdogConditionStale(t *testing.T) {
	rebootTime := time.Date(2021, 2, 22, 12, 1, 0, 0, time.UTC)
	condition := MakeWatchdogCondition(testHost, watchdog.Result{
		Reason:          watchdog.ReasonStale,
		FeedAge:         3660,
		Reboot:          true,
		RebootScheduled: true,
		RebootTime:      rebootTime,
	}, nil)

	assert.Equal(t, corev1.ConditionFalse, condition.Status)
	assert.Equal(t, "FeedStale", condition.Reason)
	assert.Equal(t, "Feed not updated for 3660 seconds, rebooting at 12:01:00", condition.Message)
	assert.True(t, rebootTime.Equal(condition.LastTransitionTime.Time))
}

func TestMakeWatchdogConditionDisconnectedNoReboot(t *testing.T) {
	condition := MakeWatchdogCondition(testHost, watchdog.Result{
		Reason: watchdog.ReasonDisconnected,
		Reboot: true,
	}, nil)

	assert.Equal(t, corev1.ConditionFalse, condition.Status)
	assert.Equal(t, "Disconnected", condition.Reason)
	assert.Equal(t, "Internet not connected, not rebooting", condition.Message)
}

func TestMakeWatchdogConditionError(t *testing.T) {
	err := &watchdog.Error{Kind: watchdog.KindFeedFetch, Err: fmt.Errorf("feed greenhouse-temp: HTTP 401 Unauthorized")}
	condition := MakeWatchdogCondition(testHost, watchdog.Result{}, err)

	assert.Equal(t, corev1.ConditionUnknown, condition.Status)
	assert.Equal(t, "CheckFailed", condition.Reason)
	assert.Equal(t, "feed-fetch: feed greenhouse-temp: HTTP 401 Unauthorized", condition.Message)
}
