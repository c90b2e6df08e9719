package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kontena/pharos-host-watchdog/shutdown"
	"github.com/kontena/pharos-host-watchdog/systemd"
	"github.com/kontena/pharos-host-watchdog/watchdog"
)

const (
	RebootMethodLogind   = "logind"
	RebootMethodShutdown = "shutdown"
)

func makeRebootService(options Options) (watchdog.RebootService, error) {
	var service watchdog.RebootService

	switch options.RebootMethod {
	case "", RebootMethodLogind:
		service = systemd.NewLogind()
	case RebootMethodShutdown:
		service = shutdown.New(options.ShutdownPath)
	default:
		return nil, watchdog.ConfigError(fmt.Errorf("Invalid --reboot-method=%v: expected %v or %v", options.RebootMethod, RebootMethodLogind, RebootMethodShutdown))
	}

	zap.S().Infof("Using --reboot-method=%v: %v", options.RebootMethod, service)

	return service, nil
}
