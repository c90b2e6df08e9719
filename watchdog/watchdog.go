// Package watchdog decides whether a host must be rebooted: it waits out the
// post-boot grace period, probes internet connectivity and the freshness of a
// remote feed, and schedules a reboot when either check fails.
package watchdog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

const (
	StateStart        = "start"
	StateGateWait     = "gate-wait"
	StateConnectivity = "connectivity-check"
	StateFreshness    = "freshness-check"
	StateDisconnected = "disconnected"
	StateReboot       = "reboot"
	StateNoAction     = "no-action"
	StateEnd          = "end"
	StateAbort        = "abort"

	EventGate         = "gate"
	EventGatePassed   = "gate-passed"
	EventConnected    = "connected"
	EventDisconnected = "disconnected"
	EventStale        = "stale"
	EventFresh        = "fresh"
	EventReboot       = "reboot"
	EventDone         = "done"
	EventAbort        = "abort"
)

var transitions = fsm.Events{
	{Name: EventGate, Src: []string{StateStart}, Dst: StateGateWait},
	{Name: EventGatePassed, Src: []string{StateGateWait}, Dst: StateConnectivity},
	{Name: EventConnected, Src: []string{StateConnectivity}, Dst: StateFreshness},
	{Name: EventDisconnected, Src: []string{StateConnectivity}, Dst: StateDisconnected},
	{Name: EventStale, Src: []string{StateFreshness}, Dst: StateReboot},
	{Name: EventFresh, Src: []string{StateFreshness}, Dst: StateNoAction},
	{Name: EventReboot, Src: []string{StateDisconnected}, Dst: StateReboot},
	{Name: EventDone, Src: []string{StateReboot, StateNoAction}, Dst: StateEnd},
	{Name: EventAbort, Src: []string{StateGateWait, StateConnectivity, StateFreshness, StateDisconnected, StateReboot}, Dst: StateAbort},
}

// Reason explains a reboot decision.
type Reason string

const (
	ReasonDisconnected Reason = "disconnected"
	ReasonStale        Reason = "stale"
	ReasonFresh        Reason = "fresh"
)

// Result of a single run.
type Result struct {
	Uptime       time.Duration
	Connectivity ConnectivityVerdict

	// only set when the feed was checked
	FeedChecked bool
	FeedAge     int64

	Reason Reason
	// the reboot decision
	Reboot bool
	// false for --noreboot
	RebootScheduled bool
	RebootTime      time.Time

	State string
}

func (result Result) String() string {
	return fmt.Sprintf("reason=%v reboot=%v scheduled=%v state=%v", result.Reason, result.Reboot, result.RebootScheduled, result.State)
}

// Deps are the host and network collaborators of the watchdog.
type Deps struct {
	Uptime     UptimeFunc
	Sleep      SleepFunc
	HTTPClient *http.Client
	Feed       FeedReader
	Reboot     RebootService
	Clock      clock.Clock
}

type Watchdog struct {
	config       Config
	clock        clock.Clock
	gate         *BootGate
	connectivity *ConnectivityProbe
	freshness    *FreshnessProbe
	reboot       *RebootController
	logger       *zap.SugaredLogger
}

func New(config Config, deps Deps, logger *zap.SugaredLogger) *Watchdog {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Sleep == nil {
		deps.Sleep = ClockSleep(deps.Clock)
	}

	return &Watchdog{
		config:       config,
		clock:        deps.Clock,
		gate:         NewBootGate(config, deps.Uptime, deps.Sleep, logger),
		connectivity: NewConnectivityProbe(config, deps.HTTPClient, logger),
		freshness:    NewFreshnessProbe(config, deps.Feed, deps.Clock, logger),
		reboot:       NewRebootController(config, deps.Reboot, logger),
		logger:       logger,
	}
}

type run struct {
	machine *fsm.FSM
	result  Result
	logger  *zap.SugaredLogger
}

func (r *run) transition(ctx context.Context, event string) error {
	// the state machine only tracks progress, it must not see the run being cancelled
	if err := r.machine.Event(context.WithoutCancel(ctx), event); err != nil {
		return fmt.Errorf("watchdog %v -> %v: %w", r.machine.Current(), event, err)
	}

	r.result.State = r.machine.Current()

	return nil
}

func (r *run) abort(ctx context.Context, err error) (Result, error) {
	r.logger.Errorf("Aborting in state %v: %v", r.machine.Current(), err)

	if abortErr := r.transition(ctx, EventAbort); abortErr != nil {
		r.logger.Warnf("%v", abortErr)
	}

	return r.result, err
}

func (watchdog *Watchdog) newRun() *run {
	var r = run{
		logger: watchdog.logger,
	}

	r.machine = fsm.NewFSM(
		StateStart,
		transitions,
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				r.logger.Debugf("state %v -> %v (%v)", e.Src, e.Dst, e.Event)
			},
		},
	)
	r.result.State = r.machine.Current()

	return &r
}

// Run makes one reboot decision. A returned error is fatal and means no decision was acted on.
func (watchdog *Watchdog) Run(ctx context.Context) (Result, error) {
	r := watchdog.newRun()

	if err := r.transition(ctx, EventGate); err != nil {
		return r.result, err
	}

	if uptime, err := watchdog.gate.Wait(ctx); err != nil {
		return r.abort(ctx, err)
	} else {
		r.result.Uptime = uptime
	}

	if err := r.transition(ctx, EventGatePassed); err != nil {
		return r.result, err
	}

	r.result.Connectivity = watchdog.connectivity.Check(ctx)

	if !r.result.Connectivity.Connected {
		r.result.Reason = ReasonDisconnected

		if err := r.transition(ctx, EventDisconnected); err != nil {
			return r.result, err
		} else if err := r.transition(ctx, EventReboot); err != nil {
			return r.result, err
		}
	} else if err := r.transition(ctx, EventConnected); err != nil {
		return r.result, err
	} else if tooOld, age, err := watchdog.freshness.TooOld(ctx); err != nil {
		return r.abort(ctx, err)
	} else {
		r.result.FeedChecked = true
		r.result.FeedAge = age

		if tooOld {
			r.result.Reason = ReasonStale

			if err := r.transition(ctx, EventStale); err != nil {
				return r.result, err
			}
		} else {
			r.result.Reason = ReasonFresh

			if err := r.transition(ctx, EventFresh); err != nil {
				return r.result, err
			}
		}
	}

	if r.machine.Is(StateReboot) {
		r.result.Reboot = true

		if scheduled, err := watchdog.reboot.Reboot(ctx); err != nil {
			return r.abort(ctx, err)
		} else if scheduled {
			r.result.RebootScheduled = true
			r.result.RebootTime = watchdog.clock.Now().Add(watchdog.config.RebootDelay)
		}
	} else {
		watchdog.logger.Infof("No action, feed updated %v seconds ago", r.result.FeedAge)
	}

	if err := r.transition(ctx, EventDone); err != nil {
		return r.result, err
	}

	return r.result, nil
}
