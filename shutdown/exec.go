// Package shutdown schedules reboots by running shutdown(8).
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultPath = "shutdown"

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Command runs `shutdown -r +N` and `shutdown -c`.
type Command struct {
	path string
	run  runFunc
}

func New(path string) *Command {
	if path == "" {
		path = DefaultPath
	}

	return &Command{path: path, run: run}
}

func (command *Command) String() string {
	return command.path
}

func (command *Command) exec(ctx context.Context, args ...string) error {
	zap.S().Infof("%v %v...", command.path, strings.Join(args, " "))

	if out, err := command.run(ctx, command.path, args...); err == nil {
		zap.S().Infof("%v %v: %v", command.path, strings.Join(args, " "), string(out))

		return nil
	} else if exitErr := (*exec.ExitError)(nil); errors.As(err, &exitErr) {
		return fmt.Errorf("%v %v: %v: %v", command.path, strings.Join(args, " "), exitErr.String(), strings.TrimSpace(string(exitErr.Stderr)))
	} else {
		return fmt.Errorf("%v %v: %w", command.path, strings.Join(args, " "), err)
	}
}

// shutdown(8) only takes whole minutes, round up
func minutes(delay time.Duration) int64 {
	m := int64(delay / time.Minute)

	if delay%time.Minute != 0 {
		m++
	}

	return m
}

func (command *Command) Schedule(ctx context.Context, delay time.Duration) error {
	return command.exec(ctx, "-r", fmt.Sprintf("+%d", minutes(delay)))
}

func (command *Command) Cancel(ctx context.Context) error {
	return command.exec(ctx, "-c")
}
