package watchdog

import (
	"fmt"
	"time"
)

const (
	DefaultStale               = 3600 * time.Second
	DefaultWait                = 90 * time.Second
	DefaultConnectivityURL     = "https://www.google.com/"
	DefaultConnectivityTimeout = 10 * time.Second
	DefaultFeedTimeout         = 30 * time.Second
	DefaultRebootDelay         = 1 * time.Minute

	// lower bound for the post-boot sleep
	MinGateSleep = 10 * time.Second
)

// FeedIdentity names the remote feed and the credentials used to read it.
type FeedIdentity struct {
	User string
	Key  string
	Feed string
}

func (f FeedIdentity) String() string {
	return fmt.Sprintf("%v/%v", f.User, f.Feed)
}

// Config is built once at startup and passed by value into every component.
type Config struct {
	Stale      time.Duration
	Wait       time.Duration
	NoReboot   bool
	NoInternet bool
	Verbose    bool
	Feed       FeedIdentity

	ConnectivityURL     string
	ConnectivityTimeout time.Duration
	FeedTimeout         time.Duration
	RebootDelay         time.Duration
}

func DefaultConfig() Config {
	return Config{
		Stale:               DefaultStale,
		Wait:                DefaultWait,
		ConnectivityURL:     DefaultConnectivityURL,
		ConnectivityTimeout: DefaultConnectivityTimeout,
		FeedTimeout:         DefaultFeedTimeout,
		RebootDelay:         DefaultRebootDelay,
	}
}

func (config Config) Validate() error {
	if config.Stale <= 0 {
		return fmt.Errorf("Invalid stale=%v: must be positive", config.Stale)
	}
	if config.Wait < 0 {
		return fmt.Errorf("Invalid wait=%v: must not be negative", config.Wait)
	}
	if config.Feed.User == "" {
		return fmt.Errorf("Missing feed user")
	}
	if config.Feed.Key == "" {
		return fmt.Errorf("Missing feed key")
	}
	if config.Feed.Feed == "" {
		return fmt.Errorf("Missing feed name")
	}
	if config.ConnectivityURL == "" {
		return fmt.Errorf("Missing connectivity URL")
	}
	if config.ConnectivityTimeout <= 0 || config.FeedTimeout <= 0 {
		return fmt.Errorf("Invalid timeouts: connectivity=%v feed=%v", config.ConnectivityTimeout, config.FeedTimeout)
	}
	if config.RebootDelay < time.Minute {
		return fmt.Errorf("Invalid reboot delay=%v: minimum is 1m", config.RebootDelay)
	}

	return nil
}
