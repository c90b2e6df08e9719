package main

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RunFunc makes one watchdog run, returning true once a reboot has been scheduled.
type RunFunc func(ctx context.Context) (bool, error)

// adapts cron's key-value logging to zap
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}

type Scheduler struct {
	option   string
	schedule cron.Schedule
	logger   *zap.SugaredLogger
}

func makeScheduler(options Options) (Scheduler, error) {
	var scheduler = Scheduler{
		option: options.Schedule,
		logger: zap.S().Named("scheduler"),
	}

	if options.Schedule == "" {
		scheduler.logger.Infof("No --schedule given, will run once")

		return scheduler, nil
	} else if schedule, err := cron.ParseStandard(options.Schedule); err != nil {
		return scheduler, fmt.Errorf("Invalid --schedule=%v: %w", options.Schedule, err)
	} else {
		scheduler.schedule = schedule
	}

	return scheduler, nil
}

// Run once without a schedule. With a schedule, run until a reboot is scheduled, a run fails, or ctx is cancelled.
func (scheduler Scheduler) Run(ctx context.Context, f RunFunc) error {
	if scheduler.schedule == nil {
		_, err := f(ctx)

		return err
	}

	var done = make(chan error, 1)
	var finish = func(err error) {
		select {
		case done <- err:
		default:
		}
	}
	var logger = cronLogger{scheduler.logger}
	var c = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	c.Schedule(scheduler.schedule, cron.FuncJob(func() {
		t0 := time.Now()

		if rebooting, err := f(ctx); err != nil && ctx.Err() != nil {
			// interrupted by the stop signal, not a failed check
			scheduler.logger.Infof("Run interrupted: %v", err)
			finish(nil)
			return
		} else if err != nil {
			finish(err)
			return
		} else if rebooting {
			scheduler.logger.Infof("Reboot scheduled, stopping")
			finish(nil)
			return
		}

		t1 := time.Now()
		t2 := scheduler.schedule.Next(t1)

		scheduler.logger.Infof("Schedule run completed in %v, next check at: %v (in %v)", t1.Sub(t0), t2, t2.Sub(t1))
	}))

	t0 := time.Now()
	t1 := scheduler.schedule.Next(t0)

	scheduler.logger.Infof("Using --schedule=%#v, first check at: %v (in %v)", scheduler.option, t1, t1.Sub(t0))

	c.Start()
	defer func() {
		<-c.Stop().Done()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		scheduler.logger.Infof("Stopping: %v", ctx.Err())

		return nil
	}
}
