package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerOnce(t *testing.T) {
	var calls int

	scheduler, err := makeScheduler(Options{})
	require.NoError(t, err)

	err = scheduler.Run(context.Background(), func(ctx context.Context) (bool, error) {
		calls++
		return false, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestSchedulerOnceError(t *testing.T) {
	scheduler, err := makeScheduler(Options{})
	require.NoError(t, err)

	err = scheduler.Run(context.Background(), func(ctx context.Context) (bool, error) {
		return false, fmt.Errorf("boot-time: missing")
	})

	assert.EqualError(t, err, "boot-time: missing")
}

func TestSchedulerInvalid(t *testing.T) {
	_, err := makeScheduler(Options{Schedule: "every day"})

	assert.ErrorContains(t, err, "Invalid --schedule=every day")
}

func TestSchedulerStopsAfterReboot(t *testing.T) {
	var calls int32

	scheduler, err := makeScheduler(Options{Schedule: "@every 1s"})
	require.NoError(t, err)

	err = scheduler.Run(context.Background(), func(ctx context.Context) (bool, error) {
		return atomic.AddInt32(&calls, 1) >= 2, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSchedulerStopsOnError(t *testing.T) {
	scheduler, err := makeScheduler(Options{Schedule: "@every 1s"})
	require.NoError(t, err)

	err = scheduler.Run(context.Background(), func(ctx context.Context) (bool, error) {
		return false, fmt.Errorf("reboot: login1.ScheduleShutdown: denied")
	})

	assert.EqualError(t, err, "reboot: login1.ScheduleShutdown: denied")
}

func TestSchedulerCancelDuringRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler, err := makeScheduler(Options{Schedule: "@every 1s"})
	require.NoError(t, err)

	err = scheduler.Run(ctx, func(ctx context.Context) (bool, error) {
		cancel()

		<-ctx.Done()

		return false, ctx.Err()
	})

	assert.NoError(t, err)
}

func TestSchedulerCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	scheduler, err := makeScheduler(Options{Schedule: "@every 1h"})
	require.NoError(t, err)

	err = scheduler.Run(ctx, func(ctx context.Context) (bool, error) {
		t.Fatal("unexpected run")
		return false, nil
	})

	assert.NoError(t, err)
}
