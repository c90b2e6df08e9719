package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kontena/pharos-host-watchdog/feed"
	"github.com/kontena/pharos-host-watchdog/logging"
	"github.com/kontena/pharos-host-watchdog/proc"
	"github.com/kontena/pharos-host-watchdog/watchdog"
)

const (
	DefaultIniFile    = "/home/pi/src/iot.ini"
	DefaultSensor     = "sensor-0"
	DefaultFeedOption = "feed_t"
)

type Options struct {
	IniFile    string
	Sensor     string
	FeedOption string
	Stale      int
	Wait       int
	User       string
	Key        string
	Feed       string
	Verbose    bool
	NoReboot   bool
	NoInternet bool

	Schedule        string
	RebootMethod    string
	ShutdownPath    string
	ConnectivityURL string
	FeedURL         string
	FeedTimeout     time.Duration
	MetricsTextfile string
	Journal         bool
	LogLevel        string
	LogFormat       string
	Kube            KubeOptions
}

func parseOptions(args []string) (Options, error) {
	var options Options
	var flags = pflag.NewFlagSet("host-watchdog", pflag.ContinueOnError)

	flags.BoolVarP(&options.Verbose, "verbose", "v", false, "print out lots of values")
	flags.BoolVar(&options.NoReboot, "noreboot", false, "do not reboot, only cancel any pending reboot")
	flags.BoolVar(&options.NoInternet, "nointernet", false, "force no internet test")
	flags.StringVarP(&options.IniFile, "inifile", "f", DefaultIniFile, "inifile to get the Adafruit IO user and key from")
	flags.StringVar(&options.Sensor, "sensor", DefaultSensor, "name of the inifile sensor section")
	flags.StringVar(&options.FeedOption, "feed-option", DefaultFeedOption, "name of the feed option in the sensor section")
	flags.IntVarP(&options.Stale, "stale", "s", int(watchdog.DefaultStale/time.Second), "seconds with no updates before we reboot")
	flags.IntVarP(&options.Wait, "wait", "w", int(watchdog.DefaultWait/time.Second), "seconds to wait after we reboot")
	flags.StringVarP(&options.User, "user", "u", "", "Adafruit IO user (read from inifile)")
	flags.StringVarP(&options.Key, "key", "k", "", "Adafruit IO key (read from inifile)")
	flags.StringVarP(&options.Feed, "feed", "d", "", "Adafruit IO feed (read from inifile)")

	flags.StringVar(&options.Schedule, "schedule", "", "Scheduled checks (cron syntax), run once if empty")
	flags.StringVar(&options.RebootMethod, "reboot-method", RebootMethodLogind, "Reboot using logind over dbus, or the shutdown command")
	flags.StringVar(&options.ShutdownPath, "shutdown-path", "shutdown", "Path to shutdown(8) for --reboot-method=shutdown")
	flags.StringVar(&options.ConnectivityURL, "connectivity-url", watchdog.DefaultConnectivityURL, "URL probed for internet connectivity")
	flags.StringVar(&options.FeedURL, "feed-url", feed.DefaultBaseURL, "Adafruit IO base URL")
	flags.DurationVar(&options.FeedTimeout, "feed-timeout", watchdog.DefaultFeedTimeout, "Timeout for fetching the last feed sample")
	flags.StringVar(&options.MetricsTextfile, "metrics-textfile", "", "Write node_exporter textfile metrics to this path after each run")
	flags.BoolVar(&options.Journal, "journal", false, "Also log to journald")
	flags.StringVar(&options.LogLevel, "log-level", "", "Log level (debug, info, warn, error), debug if --verbose")
	flags.StringVar(&options.LogFormat, "log-format", logging.FormatConsole, "Log format (console, json)")
	flags.StringVar(&options.Kube.Node, "kube-node", os.Getenv("KUBE_NODE"), "Name of kube Node to report the HostWatchdog condition on (KUBE_NODE)")

	if err := flags.Parse(args); err != nil {
		return options, err
	} else if flags.NArg() > 0 {
		return options, fmt.Errorf("Unexpected arguments: %v", flags.Args())
	}

	return options, nil
}

func makeLogger(options Options) (*zap.Logger, error) {
	var level = options.LogLevel

	if level == "" && options.Verbose {
		level = "debug"
	}

	return logging.New(logging.Options{
		Level:   level,
		Format:  options.LogFormat,
		Journal: options.Journal,
	})
}

func run(ctx context.Context, options Options) error {
	var logger = zap.S()

	logger.Infof("------------------------------")

	config, err := loadConfig(options)
	if err != nil {
		return err
	}

	host, err := probeHost(ctx)
	if err != nil {
		// only used for reporting
		logger.Warnf("Failed to probe host: %v", err)
	}

	rebootService, err := makeRebootService(options)
	if err != nil {
		return err
	}

	kube, err := makeKube(options)
	if err != nil {
		return fmt.Errorf("Failed to connect to kube: %w", err)
	}

	scheduler, err := makeScheduler(options)
	if err != nil {
		return err
	}

	var metrics *watchdog.Metrics

	if options.MetricsTextfile != "" {
		logger.Infof("Using --metrics-textfile=%v", options.MetricsTextfile)

		metrics = watchdog.NewMetrics()
	}

	if config.NoReboot {
		logger.Infof("Using --noreboot, will not reboot the host")
	}

	var httpClient = &http.Client{}
	var wd = watchdog.New(config, watchdog.Deps{
		Uptime:     proc.ReadUptime,
		HTTPClient: httpClient,
		Feed: feed.New(feed.Options{
			BaseURL: options.FeedURL,
			User:    config.Feed.User,
			Key:     config.Feed.Key,
		}, httpClient),
		Reboot: rebootService,
		Clock:  clock.New(),
	}, logger)

	return scheduler.Run(ctx, func(ctx context.Context) (bool, error) {
		result, err := wd.Run(ctx)

		if err == nil {
			logger.Infof("Watchdog run done: %v", result)
		}

		kube.UpdateWatchdogCondition(ctx, host, result, err)

		if metrics == nil {

		} else if metricsErr := writeMetrics(metrics, options.MetricsTextfile, result, err); metricsErr != nil {
			logger.Warnf("Failed to write --metrics-textfile=%v: %v", options.MetricsTextfile, metricsErr)
		}

		return result.RebootScheduled, err
	})
}

func writeMetrics(metrics *watchdog.Metrics, path string, result watchdog.Result, err error) error {
	metrics.Observe(result, err, float64(time.Now().Unix()))

	return metrics.WriteTextfile(path)
}

func main() {
	options, err := parseOptions(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	logger, err := makeLogger(options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, options); err != nil {
		if kind := watchdog.ErrorKind(err); kind != "" {
			logger.Sugar().Errorf("Fatal %v error", kind)
		}

		logger.Sugar().Fatalf("%+v", err)
	}

	_ = logger.Sync()
}
