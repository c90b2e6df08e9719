package systemd

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	login1Dest    = "org.freedesktop.login1"
	login1Path    = dbus.ObjectPath("/org/freedesktop/login1")
	login1Manager = "org.freedesktop.login1.Manager"

	ShutdownTypeReboot = "reboot"
)

type busCaller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

type busConnector func() (busCaller, func() error, error)

func connectLogind() (busCaller, func() error, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, nil, fmt.Errorf("dbus.ConnectSystemBus: %w", err)
	}

	return conn.Object(login1Dest, login1Path), conn.Close, nil
}

// Logind schedules reboots through systemd-logind, the same way shutdown(8) does.
type Logind struct {
	connect busConnector
	now     func() time.Time
}

func NewLogind() *Logind {
	return &Logind{
		connect: connectLogind,
		now:     time.Now,
	}
}

func (logind *Logind) String() string {
	return "logind"
}

func (logind *Logind) call(ctx context.Context, method string, args ...interface{}) (*dbus.Call, error) {
	caller, closeConn, err := logind.connect()
	if err != nil {
		return nil, err
	}
	defer closeConn()

	call := caller.CallWithContext(ctx, login1Manager+"."+method, 0, args...)
	if call.Err != nil {
		return call, fmt.Errorf("login1.%v: %w", method, call.Err)
	}

	return call, nil
}

// Schedule a reboot at now+delay; the pending reboot can be cancelled with `shutdown -c`.
func (logind *Logind) Schedule(ctx context.Context, delay time.Duration) error {
	when := logind.now().Add(delay)

	zap.S().Infof("systemd/reboot: schedule %v at %v", ShutdownTypeReboot, when)

	if _, err := logind.call(ctx, "ScheduleShutdown", ShutdownTypeReboot, uint64(when.UnixMicro())); err != nil {
		return err
	}

	return nil
}

// Cancel any scheduled shutdown. Having nothing to cancel is not an error.
func (logind *Logind) Cancel(ctx context.Context) error {
	var cancelled bool

	if call, err := logind.call(ctx, "CancelScheduledShutdown"); err != nil {
		return err
	} else if err := call.Store(&cancelled); err != nil {
		return fmt.Errorf("login1.CancelScheduledShutdown: %w", err)
	}

	zap.S().Infof("systemd/reboot: cancel scheduled shutdown: cancelled=%v", cancelled)

	return nil
}
