package watchdog

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootGateDelay(t *testing.T) {
	gate := NewBootGate(testConfig(), nil, nil, testLogger(t))

	for _, test := range []struct {
		uptime time.Duration
		delay  time.Duration
	}{
		{0, 90 * time.Second},
		{30 * time.Second, 60 * time.Second},
		{80 * time.Second, 10 * time.Second},
		{85 * time.Second, 10 * time.Second},
		{89 * time.Second, 10 * time.Second},
		{90 * time.Second, 0},
		{3 * time.Hour, 0},
	} {
		assert.Equalf(t, test.delay, gate.Delay(test.uptime), "uptime=%v", test.uptime)
	}
}

func TestBootGateDelayNoWait(t *testing.T) {
	config := testConfig()
	config.Wait = 0

	gate := NewBootGate(config, nil, nil, testLogger(t))

	assert.Equal(t, time.Duration(0), gate.Delay(0))
}

func TestBootGateWaitSleeps(t *testing.T) {
	var sleep recordingSleep

	gate := NewBootGate(testConfig(), fixedUptime(30*time.Second), sleep.Sleep, testLogger(t))

	uptime, err := gate.Wait(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, uptime)
	assert.Equal(t, []time.Duration{60 * time.Second}, sleep.sleeps)
}

func TestBootGateWaitImmediate(t *testing.T) {
	var sleep recordingSleep

	gate := NewBootGate(testConfig(), fixedUptime(90*time.Second), sleep.Sleep, testLogger(t))

	_, err := gate.Wait(context.Background())

	require.NoError(t, err)
	assert.Empty(t, sleep.sleeps)
}

func TestBootGateUptimeError(t *testing.T) {
	var sleep recordingSleep

	gate := NewBootGate(testConfig(), failingUptime(errors.New("open /proc/uptime: no such file or directory")), sleep.Sleep, testLogger(t))

	_, err := gate.Wait(context.Background())

	assert.Equal(t, KindBootTime, ErrorKind(err))
	assert.EqualError(t, err, "boot-time: open /proc/uptime: no such file or directory")
	assert.Empty(t, sleep.sleeps)
}

func TestBootGateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gate := NewBootGate(testConfig(), fixedUptime(0), ClockSleep(testClock()), testLogger(t))

	_, err := gate.Wait(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Kind(""), ErrorKind(err))
}

func TestClockSleep(t *testing.T) {
	mock := testClock()
	sleep := ClockSleep(mock)
	done := make(chan error)

	go func() {
		done <- sleep(context.Background(), 10*time.Second)
	}()

	// the timer may be registered after any given Add, keep advancing until it fires
	for {
		select {
		case err := <-done:
			assert.NoError(t, err)
			assert.False(t, mock.Now().Before(testNow.Add(10*time.Second)))
			return
		default:
			mock.Add(time.Second)
			runtime.Gosched()
		}
	}
}
