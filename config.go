package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/ini.v1"

	"github.com/kontena/pharos-host-watchdog/watchdog"
)

const (
	iniSectionAdafruitIO = "adafruit-io"
	iniKeyUsername       = "username"
	iniKeyKey            = "key"
)

// loads the [adafruit-io] credentials and the sensor feed name, sensor keys override adafruit-io keys
func loadIniFile(path string, sensor string, feedOption string) (watchdog.FeedIdentity, error) {
	var identity watchdog.FeedIdentity
	var values = make(map[string]string)

	if _, err := os.Stat(path); err != nil {
		return identity, err
	}

	file, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, path)
	if err != nil {
		return identity, err
	}

	for _, name := range []string{iniSectionAdafruitIO, sensor} {
		if section, err := file.GetSection(name); err != nil {
			return identity, fmt.Errorf("Missing [%v] section", name)
		} else {
			for key, value := range section.KeysHash() {
				values[key] = value
			}
		}
	}

	identity.User = values[iniKeyUsername]
	identity.Key = values[iniKeyKey]
	identity.Feed = values[strings.ToLower(feedOption)]

	return identity, nil
}

func makeConfig(options Options) (watchdog.Config, error) {
	var config = watchdog.DefaultConfig()

	config.Stale = time.Duration(options.Stale) * time.Second
	config.Wait = time.Duration(options.Wait) * time.Second
	config.NoReboot = options.NoReboot
	config.NoInternet = options.NoInternet
	config.Verbose = options.Verbose

	if options.ConnectivityURL != "" {
		config.ConnectivityURL = options.ConnectivityURL
	}
	if options.FeedTimeout != 0 {
		config.FeedTimeout = options.FeedTimeout
	}

	if path := options.IniFile; path == "" {

	} else if identity, err := loadIniFile(path, options.Sensor, options.FeedOption); err != nil {
		return config, fmt.Errorf("Failed to load --inifile=%v: %w", path, err)
	} else {
		zap.S().Infof("Load config from --inifile=%v [%v] %v", path, options.Sensor, options.FeedOption)

		config.Feed = identity
	}

	if options.User != "" {
		config.Feed.User = options.User
	}
	if options.Key != "" {
		config.Feed.Key = options.Key
	}
	if options.Feed != "" {
		config.Feed.Feed = options.Feed
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// loadConfig returns a config error before anything is probed.
func loadConfig(options Options) (watchdog.Config, error) {
	if config, err := makeConfig(options); err != nil {
		return config, watchdog.ConfigError(err)
	} else {
		if config.Verbose {
			zap.S().Debugf("Using feed %v, stale=%v wait=%v", config.Feed, config.Stale, config.Wait)
		}

		return config, nil
	}
}
