package watchdog

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/h2non/gock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/kontena/pharos-host-watchdog/feed"
)

var testNow = time.Date(2021, 2, 22, 12, 0, 0, 0, time.UTC)

func testLogger(t *testing.T) *zap.SugaredLogger {
	return zaptest.NewLogger(t).Sugar()
}

func testConfig() Config {
	config := DefaultConfig()
	config.Feed = FeedIdentity{User: "pi", Key: "aio_secret", Feed: "feed-temp"}

	return config
}

func testClock() *clock.Mock {
	mock := clock.NewMock()
	mock.Set(testNow)

	return mock
}

func fixedUptime(uptime time.Duration) UptimeFunc {
	return func() (time.Duration, error) {
		return uptime, nil
	}
}

func failingUptime(err error) UptimeFunc {
	return func() (time.Duration, error) {
		return 0, err
	}
}

type recordingSleep struct {
	sleeps []time.Duration
}

func (rs *recordingSleep) Sleep(ctx context.Context, d time.Duration) error {
	rs.sleeps = append(rs.sleeps, d)

	return ctx.Err()
}

type fakeFeed struct {
	sample   feed.Sample
	err      error
	calls    []string
	deadline bool
}

func (ff *fakeFeed) Last(ctx context.Context, name string) (feed.Sample, error) {
	ff.calls = append(ff.calls, name)
	_, ff.deadline = ctx.Deadline()

	return ff.sample, ff.err
}

func feedUpdated(ago time.Duration) *fakeFeed {
	return &fakeFeed{sample: feed.Sample{ID: "test", Value: "21.5", CreatedAt: testNow.Add(-ago)}}
}

type fakeRebootService struct {
	schedules []time.Duration
	cancels   int
	err       error
}

func (frs *fakeRebootService) Schedule(ctx context.Context, delay time.Duration) error {
	frs.schedules = append(frs.schedules, delay)

	return frs.err
}

func (frs *fakeRebootService) Cancel(ctx context.Context) error {
	frs.cancels++

	return frs.err
}

func (frs *fakeRebootService) calls() int {
	return len(frs.schedules) + frs.cancels
}

// intercepts the client with gock until the test ends
func mockHTTPClient(t *testing.T) *http.Client {
	client := &http.Client{}

	gock.InterceptClient(client)

	t.Cleanup(func() {
		gock.RestoreClient(client)
		gock.OffAll()
	})

	return client
}

func mockConnected() {
	gock.New(DefaultConnectivityURL).
		Get("/").
		Reply(200).
		BodyString("<html></html>")
}

func mockStatus(status int) {
	gock.New(DefaultConnectivityURL).
		Get("/").
		Reply(status)
}

func mockTimeout() {
	gock.New(DefaultConnectivityURL).
		Get("/").
		ReplyError(context.DeadlineExceeded)
}

var errAuth = errors.New("feed feed-temp: HTTP 401 Unauthorized")
