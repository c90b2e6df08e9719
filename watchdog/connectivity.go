package watchdog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ConnectivityVerdict is the outcome of a connectivity probe.
// Err is only kept for logging.
type ConnectivityVerdict struct {
	Connected bool
	Err       error
}

// ConnectivityProbe checks that a well-known external endpoint is reachable.
type ConnectivityProbe struct {
	url        string
	timeout    time.Duration
	noInternet bool
	verbose    bool
	client     *http.Client
	logger     *zap.SugaredLogger
}

func NewConnectivityProbe(config Config, client *http.Client, logger *zap.SugaredLogger) *ConnectivityProbe {
	if client == nil {
		client = &http.Client{}
	}

	return &ConnectivityProbe{
		url:        config.ConnectivityURL,
		timeout:    config.ConnectivityTimeout,
		noInternet: config.NoInternet,
		verbose:    config.Verbose,
		client:     client,
		logger:     logger.Named("connectivity"),
	}
}

func (probe *ConnectivityProbe) get(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probe.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probe.url, nil)
	if err != nil {
		return err
	}

	resp, err := probe.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	// redirects are followed by the client, error statuses count as not connected
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%v: HTTP %d", probe.url, resp.StatusCode)
	}

	return nil
}

// Check never fails: every transport error maps to a disconnected verdict.
func (probe *ConnectivityProbe) Check(ctx context.Context) ConnectivityVerdict {
	if probe.noInternet {
		probe.logger.Infof("internet NOT connected test")

		return ConnectivityVerdict{Connected: false, Err: fmt.Errorf("forced by --nointernet")}
	}

	if err := probe.get(ctx); err != nil {
		probe.logger.Infof("internet NOT connected: %v", err)

		return ConnectivityVerdict{Connected: false, Err: err}
	}

	if probe.verbose {
		probe.logger.Infof("internet connected")
	} else {
		probe.logger.Debugf("internet connected via %v", probe.url)
	}

	return ConnectivityVerdict{Connected: true}
}
