// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kontena/pharos-host-watchdog/systemd"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"

	Identifier = "host-watchdog"
)

type Options struct {
	Level   string
	Format  string
	Journal bool
	Output  io.Writer
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05"))
}

func encoder(format string) (zapcore.Encoder, error) {
	var config = zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "component",
		CallerKey:      zapcore.OmitKey,
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	switch strings.ToLower(format) {
	case "", FormatConsole:
		config.EncodeLevel = zapcore.CapitalLevelEncoder
		config.EncodeTime = timeEncoder
		config.ConsoleSeparator = " "

		return zapcore.NewConsoleEncoder(config), nil
	case FormatJSON:
		config.EncodeLevel = zapcore.LowercaseLevelEncoder
		config.EncodeTime = zapcore.ISO8601TimeEncoder

		return zapcore.NewJSONEncoder(config), nil
	default:
		return nil, fmt.Errorf("Invalid log format %q: expected %v or %v", format, FormatConsole, FormatJSON)
	}
}

// New returns a logger writing to Output (stdout by default), teeing to journald if requested and available.
func New(options Options) (*zap.Logger, error) {
	var level zapcore.Level
	var output = options.Output

	if options.Level == "" {
		level = zapcore.InfoLevel
	} else if err := level.UnmarshalText([]byte(options.Level)); err != nil {
		return nil, fmt.Errorf("Invalid log level %q: %w", options.Level, err)
	}

	if output == nil {
		output = os.Stdout
	}

	enc, err := encoder(options.Format)
	if err != nil {
		return nil, err
	}

	var atomicLevel = zap.NewAtomicLevelAt(level)
	var core = zapcore.NewCore(enc, zapcore.AddSync(output), atomicLevel)

	if !options.Journal {

	} else if !systemd.JournalEnabled() {
		fmt.Fprintf(output, "journald socket not available, logging to stdout only\n")
	} else {
		core = zapcore.NewTee(core, systemd.NewJournalCore(Identifier, atomicLevel))
	}

	return zap.New(core), nil
}
