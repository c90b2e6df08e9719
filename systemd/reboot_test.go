package systemd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCall struct {
	method string
	args   []interface{}
}

type fakeBus struct {
	calls  []fakeCall
	body   []interface{}
	err    error
	closed int
}

func (bus *fakeBus) CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call {
	bus.calls = append(bus.calls, fakeCall{method, args})

	return &dbus.Call{Method: method, Args: args, Err: bus.err, Body: bus.body}
}

func (bus *fakeBus) connector() busConnector {
	return func() (busCaller, func() error, error) {
		return bus, func() error { bus.closed++; return nil }, nil
	}
}

func testLogind(bus *fakeBus, now time.Time) *Logind {
	return &Logind{
		connect: bus.connector(),
		now:     func() time.Time { return now },
	}
}

func TestLogindSchedule(t *testing.T) {
	var bus fakeBus
	var now = time.Date(2021, 2, 22, 12, 0, 0, 0, time.UTC)

	err := testLogind(&bus, now).Schedule(context.Background(), time.Minute)

	require.NoError(t, err)
	require.Len(t, bus.calls, 1)
	assert.Equal(t, "org.freedesktop.login1.Manager.ScheduleShutdown", bus.calls[0].method)
	assert.Equal(t, []interface{}{"reboot", uint64(now.Add(time.Minute).UnixMicro())}, bus.calls[0].args)
	assert.Equal(t, 1, bus.closed)
}

func TestLogindScheduleError(t *testing.T) {
	var bus = fakeBus{err: errors.New("Interactive authentication required.")}

	err := testLogind(&bus, time.Now()).Schedule(context.Background(), time.Minute)

	assert.EqualError(t, err, "login1.ScheduleShutdown: Interactive authentication required.")
	assert.Equal(t, 1, bus.closed)
}

func TestLogindCancel(t *testing.T) {
	var bus = fakeBus{body: []interface{}{true}}

	err := testLogind(&bus, time.Now()).Cancel(context.Background())

	require.NoError(t, err)
	require.Len(t, bus.calls, 1)
	assert.Equal(t, "org.freedesktop.login1.Manager.CancelScheduledShutdown", bus.calls[0].method)
	assert.Empty(t, bus.calls[0].args)
}

func TestLogindConnectError(t *testing.T) {
	logind := &Logind{
		connect: func() (busCaller, func() error, error) {
			return nil, nil, errors.New("dbus.ConnectSystemBus: no such file or directory")
		},
		now: time.Now,
	}

	assert.Error(t, logind.Cancel(context.Background()))
}
