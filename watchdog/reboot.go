package watchdog

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RebootService is the host's power management.
// Both operations are fire-and-forget.
type RebootService interface {
	// Schedule a reboot to happen after the given delay.
	Schedule(ctx context.Context, delay time.Duration) error
	// Cancel any pending scheduled reboot.
	Cancel(ctx context.Context) error
}

// RebootController is the only component that changes the host power state.
type RebootController struct {
	noReboot bool
	delay    time.Duration
	service  RebootService
	logger   *zap.SugaredLogger
}

func NewRebootController(config Config, service RebootService, logger *zap.SugaredLogger) *RebootController {
	return &RebootController{
		noReboot: config.NoReboot,
		delay:    config.RebootDelay,
		service:  service,
		logger:   logger.Named("reboot"),
	}
}

// Reboot returns true if a reboot was scheduled.
func (controller *RebootController) Reboot(ctx context.Context) (bool, error) {
	if controller.noReboot {
		controller.logger.Infof("Not rebooting, just notify")

		// no reboot is wanted, so an unprivileged cancel is not fatal
		if err := controller.service.Cancel(ctx); err != nil {
			controller.logger.Warnf("Failed to cancel pending reboot: %v", err)
		}

		return false, nil
	}

	controller.logger.Infof("Rebooting: %v to cancel (shutdown -c)", controller.delay)

	if err := controller.service.Schedule(ctx, controller.delay); err != nil {
		return false, fatal(KindReboot, err)
	}

	return true, nil
}
