package proc

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const UptimePath = "/proc/uptime"

// parseUptime returns the first field of /proc/uptime, truncated to whole seconds.
func parseUptime(data string) (time.Duration, error) {
	fields := strings.Fields(data)

	if len(fields) < 1 {
		return 0, fmt.Errorf("Empty uptime")
	} else if secs, err := strconv.ParseFloat(fields[0], 64); err != nil {
		return 0, fmt.Errorf("Invalid uptime %q: %w", fields[0], err)
	} else if secs < 0 {
		return 0, fmt.Errorf("Negative uptime %v", secs)
	} else {
		return time.Duration(int64(secs)) * time.Second, nil
	}
}

// ReadUptimeFile reads the time since boot from a /proc/uptime formatted file.
func ReadUptimeFile(path string) (time.Duration, error) {
	if data, err := os.ReadFile(path); err != nil {
		return 0, err
	} else if uptime, err := parseUptime(string(data)); err != nil {
		return 0, fmt.Errorf("%v: %w", path, err)
	} else {
		return uptime, nil
	}
}

func ReadUptime() (time.Duration, error) {
	return ReadUptimeFile(UptimePath)
}
