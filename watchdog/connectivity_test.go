package watchdog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
)

func TestConnectivityConnected(t *testing.T) {
	client := mockHTTPClient(t)
	mockConnected()

	verdict := NewConnectivityProbe(testConfig(), client, testLogger(t)).Check(context.Background())

	assert.True(t, verdict.Connected)
	assert.NoError(t, verdict.Err)
	assert.True(t, gock.IsDone())
}

func TestConnectivityErrorStatus(t *testing.T) {
	for _, status := range []int{404, 503} {
		client := mockHTTPClient(t)
		mockStatus(status)

		verdict := NewConnectivityProbe(testConfig(), client, testLogger(t)).Check(context.Background())

		assert.False(t, verdict.Connected, "HTTP %d", status)
		assert.EqualError(t, verdict.Err, fmt.Sprintf("%v: HTTP %d", DefaultConnectivityURL, status))
		assert.True(t, gock.IsDone())

		gock.OffAll()
	}
}

func TestConnectivityRedirect(t *testing.T) {
	client := mockHTTPClient(t)

	gock.New(DefaultConnectivityURL).
		Get("/").
		Reply(302).
		SetHeader("Location", "https://www.google.com/home")
	gock.New("https://www.google.com").
		Get("/home").
		Reply(200)

	verdict := NewConnectivityProbe(testConfig(), client, testLogger(t)).Check(context.Background())

	assert.True(t, verdict.Connected)
	assert.NoError(t, verdict.Err)
}

func TestConnectivityTimeout(t *testing.T) {
	client := mockHTTPClient(t)
	mockTimeout()

	verdict := NewConnectivityProbe(testConfig(), client, testLogger(t)).Check(context.Background())

	assert.False(t, verdict.Connected)
	assert.ErrorIs(t, verdict.Err, context.DeadlineExceeded)
}

func TestConnectivityDNSFailure(t *testing.T) {
	client := mockHTTPClient(t)

	gock.New(DefaultConnectivityURL).
		Get("/").
		ReplyError(errors.New("dial tcp: lookup www.google.com: no such host"))

	verdict := NewConnectivityProbe(testConfig(), client, testLogger(t)).Check(context.Background())

	assert.False(t, verdict.Connected)
	assert.ErrorContains(t, verdict.Err, "no such host")
}

func TestConnectivityNoInternet(t *testing.T) {
	client := mockHTTPClient(t)
	mockConnected()

	config := testConfig()
	config.NoInternet = true

	verdict := NewConnectivityProbe(config, client, testLogger(t)).Check(context.Background())

	assert.False(t, verdict.Connected)
	assert.False(t, gock.IsDone(), "no request is made with --nointernet")
}
