package watchdog

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// UptimeFunc returns the time elapsed since the host booted.
type UptimeFunc func() (time.Duration, error)

// SleepFunc blocks for the given duration, or until the context is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ClockSleep sleeps on the given clock.
func ClockSleep(clk clock.Clock) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		select {
		case <-clk.After(d):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// BootGate holds the checks back until the host has been up for the configured grace wait.
type BootGate struct {
	wait   time.Duration
	uptime UptimeFunc
	sleep  SleepFunc
	logger *zap.SugaredLogger
}

func NewBootGate(config Config, uptime UptimeFunc, sleep SleepFunc, logger *zap.SugaredLogger) *BootGate {
	return &BootGate{
		wait:   config.Wait,
		uptime: uptime,
		sleep:  sleep,
		logger: logger.Named("bootgate"),
	}
}

// Delay returns how long to sleep for the given uptime: zero once the grace wait has passed,
// otherwise the remainder of the wait but never less than MinGateSleep.
func (gate *BootGate) Delay(uptime time.Duration) time.Duration {
	if uptime >= gate.wait {
		return 0
	} else if delay := gate.wait - uptime; delay < MinGateSleep {
		return MinGateSleep
	} else {
		return delay
	}
}

// Wait returns the uptime read before any sleep.
func (gate *BootGate) Wait(ctx context.Context) (time.Duration, error) {
	uptime, err := gate.uptime()
	if err != nil {
		return 0, fatal(KindBootTime, err)
	}

	gate.logger.Infof("%v since last reboot", uptime)

	if delay := gate.Delay(uptime); delay == 0 {
		return uptime, nil
	} else {
		gate.logger.Infof("sleeping for %v", delay)

		if err := gate.sleep(ctx, delay); err != nil {
			return uptime, err
		}
	}

	return uptime, nil
}
