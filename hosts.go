package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"github.com/kontena/pharos-host-watchdog/proc"
)

type HostInfo struct {
	Hostname      string
	Platform      string
	KernelVersion string
	BootTime      time.Time
}

func (info HostInfo) String() string {
	return fmt.Sprintf("%v (%v %v)", info.Hostname, info.Platform, info.KernelVersion)
}

// probeHost collects host facts for logs and the kube node condition.
func probeHost(ctx context.Context) (HostInfo, error) {
	var info HostInfo

	if hostInfo, err := host.InfoWithContext(ctx); err != nil {
		return info, fmt.Errorf("host.Info: %w", err)
	} else {
		info.Hostname = hostInfo.Hostname
		info.Platform = fmt.Sprintf("%v %v", hostInfo.Platform, hostInfo.PlatformVersion)
		info.KernelVersion = hostInfo.KernelVersion
	}

	if stat, err := proc.ReadStat(); err != nil {
		return info, fmt.Errorf("proc.ReadStat: %w", err)
	} else {
		info.BootTime = stat.BootTime
	}

	zap.S().Infof("Probed host %v, booted at %v", info, info.BootTime)

	return info, nil
}
