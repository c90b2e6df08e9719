// Package feed reads samples from the Adafruit IO REST API.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const DefaultBaseURL = "https://io.adafruit.com"

// Timestamps returned by the API; the zone is mandatory.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05Z07:00",
}

var ErrUnauthorized = errors.New("unauthorized")

// Options identify the feed and the account owning it.
type Options struct {
	BaseURL string
	User    string
	Key     string
}

// Sample is the most recent data point of a feed.
type Sample struct {
	ID        string
	Value     string
	FeedID    int64
	FeedKey   string
	CreatedAt time.Time
}

type sampleJSON struct {
	ID        string          `json:"id"`
	Value     json.RawMessage `json:"value"`
	FeedID    int64           `json:"feed_id"`
	FeedKey   string          `json:"feed_key"`
	CreatedAt string          `json:"created_at"`
}

type errorJSON struct {
	Error string `json:"error"`
}

// StatusError is a non-2xx API response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (err StatusError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("HTTP %d %v", err.StatusCode, http.StatusText(err.StatusCode))
	}

	return fmt.Sprintf("HTTP %d %v: %v", err.StatusCode, http.StatusText(err.StatusCode), err.Message)
}

func (err StatusError) Unwrap() error {
	switch err.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return nil
	}
}

type Client struct {
	options Options
	http    *http.Client
}

func New(options Options, httpClient *http.Client) *Client {
	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		options: options,
		http:    httpClient,
	}
}

func (client *Client) String() string {
	return fmt.Sprintf("%v/%v", client.options.BaseURL, client.options.User)
}

func (client *Client) lastURL(feed string) string {
	return fmt.Sprintf("%v/api/v2/%v/feeds/%v/data/last",
		strings.TrimRight(client.options.BaseURL, "/"),
		url.PathEscape(client.options.User),
		url.PathEscape(feed),
	)
}

// Last fetches the most recent sample of the named feed.
func (client *Client) Last(ctx context.Context, feed string) (Sample, error) {
	var sample Sample

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.lastURL(feed), nil)
	if err != nil {
		return sample, fmt.Errorf("feed %v: %w", feed, err)
	}

	req.Header.Set("X-AIO-Key", client.options.Key)
	req.Header.Set("Accept", "application/json")

	resp, err := client.http.Do(req)
	if err != nil {
		return sample, fmt.Errorf("feed %v: %w", feed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return sample, fmt.Errorf("feed %v: read response: %w", feed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorJSON

		// error bodies are best-effort
		_ = json.Unmarshal(body, &apiErr)

		return sample, fmt.Errorf("feed %v: %w", feed, StatusError{StatusCode: resp.StatusCode, Message: apiErr.Error})
	}

	if sample, err = decodeSample(body); err != nil {
		return sample, fmt.Errorf("feed %v: %w", feed, err)
	}

	return sample, nil
}

func decodeSample(body []byte) (Sample, error) {
	var data sampleJSON
	var sample Sample

	if err := json.Unmarshal(body, &data); err != nil {
		return sample, fmt.Errorf("Invalid sample: %w", err)
	} else if data.CreatedAt == "" {
		return sample, fmt.Errorf("Invalid sample: missing created_at")
	} else if createdAt, err := ParseTime(data.CreatedAt); err != nil {
		return sample, err
	} else {
		sample = Sample{
			ID:        data.ID,
			Value:     decodeValue(data.Value),
			FeedID:    data.FeedID,
			FeedKey:   data.FeedKey,
			CreatedAt: createdAt,
		}
	}

	return sample, nil
}

// values are strings, but some feeds return bare numbers
func decodeValue(raw json.RawMessage) string {
	var s string

	if len(raw) == 0 {
		return ""
	} else if err := json.Unmarshal(raw, &s); err == nil {
		return s
	} else {
		return string(raw)
	}
}

// ParseTime parses an absolute, zone-qualified timestamp.
func ParseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("Invalid timestamp %q: expected RFC3339 with zone", value)
}
