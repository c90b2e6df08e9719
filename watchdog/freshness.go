package watchdog

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/kontena/pharos-host-watchdog/feed"
)

// FeedReader fetches the latest sample of a named feed.
type FeedReader interface {
	Last(ctx context.Context, feed string) (feed.Sample, error)
}

// FreshnessProbe measures the age of the latest sample of the remote feed.
type FreshnessProbe struct {
	feed    FeedIdentity
	stale   time.Duration
	timeout time.Duration
	verbose bool
	reader  FeedReader
	clock   clock.Clock
	logger  *zap.SugaredLogger
}

func NewFreshnessProbe(config Config, reader FeedReader, clk clock.Clock, logger *zap.SugaredLogger) *FreshnessProbe {
	return &FreshnessProbe{
		feed:    config.Feed,
		stale:   config.Stale,
		timeout: config.FeedTimeout,
		verbose: config.Verbose,
		reader:  reader,
		clock:   clk,
		logger:  logger.Named("freshness"),
	}
}

// SecondsSinceLastUpdate returns the whole seconds elapsed since the latest feed sample was created.
func (probe *FreshnessProbe) SecondsSinceLastUpdate(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, probe.timeout)
	defer cancel()

	sample, err := probe.reader.Last(ctx, probe.feed.Feed)
	if err != nil {
		return 0, fatal(KindFeedFetch, err)
	}

	if probe.verbose {
		probe.logger.Infof("feed %v: %+v", probe.feed, sample)
	}

	elapsed := probe.clock.Now().UTC().Sub(sample.CreatedAt)

	return int64(elapsed / time.Second), nil
}

// TooOld is true iff the latest sample is strictly older than the staleness threshold.
func (probe *FreshnessProbe) TooOld(ctx context.Context) (bool, int64, error) {
	seconds, err := probe.SecondsSinceLastUpdate(ctx)
	if err != nil {
		return false, 0, err
	}

	staleSeconds := int64(probe.stale / time.Second)

	probe.logger.Infof("%v seconds since last measurement, reboot if > %v", seconds, staleSeconds)

	return seconds > staleSeconds, seconds, nil
}
