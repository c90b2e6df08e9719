package proc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const StatPath = "/proc/stat"

type Stat struct {
	BootTime time.Time
}

func (stat *Stat) set(field string, args []string) error {
	switch field {
	case "btime":
		var sec int64

		if len(args) < 1 {
			return fmt.Errorf("Missing arg")
		} else if _, err := fmt.Sscanf(args[0], "%d", &sec); err != nil {
			return err
		} else {
			stat.BootTime = time.Unix(sec, 0)
		}
	}

	return nil
}

func parseStat(r io.Reader) (Stat, error) {
	var stat Stat

	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())

		if len(fields) < 1 {
			continue
		} else if err := stat.set(fields[0], fields[1:]); err != nil {
			return stat, fmt.Errorf("Invalid stat field %v: %w", fields[0], err)
		}
	}

	if err := scanner.Err(); err != nil {
		return stat, err
	} else if stat.BootTime.IsZero() {
		return stat, fmt.Errorf("Missing btime")
	}

	return stat, nil
}

// ReadStatFile reads the kernel boot time from a /proc/stat formatted file.
func ReadStatFile(path string) (Stat, error) {
	if file, err := os.Open(path); err != nil {
		return Stat{}, err
	} else {
		defer file.Close()

		if stat, err := parseStat(file); err != nil {
			return stat, fmt.Errorf("%v: %w", path, err)
		} else {
			return stat, nil
		}
	}
}

func ReadStat() (Stat, error) {
	return ReadStatFile(StatPath)
}
