package systemd

import (
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"go.uber.org/zap/zapcore"
)

type journalSend func(message string, priority journal.Priority, vars map[string]string) error

// JournalEnabled is true if the native journald socket is available.
func JournalEnabled() bool {
	return journal.Enabled()
}

// journalCore is a zapcore.Core writing entries to journald, fields as journal variables.
type journalCore struct {
	zapcore.LevelEnabler

	identifier string
	fields     []zapcore.Field
	send       journalSend
}

func NewJournalCore(identifier string, enabler zapcore.LevelEnabler) zapcore.Core {
	return &journalCore{
		LevelEnabler: enabler,
		identifier:   identifier,
		send:         journal.Send,
	}
}

func (core *journalCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *core
	clone.fields = append(append([]zapcore.Field{}, core.fields...), fields...)

	return &clone
}

func (core *journalCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if core.Enabled(entry.Level) {
		return checked.AddCore(entry, core)
	}

	return checked
}

func (core *journalCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	var enc = zapcore.NewMapObjectEncoder()
	var vars = map[string]string{}

	for _, field := range core.fields {
		field.AddTo(enc)
	}
	for _, field := range fields {
		field.AddTo(enc)
	}

	for key, value := range enc.Fields {
		if name := journalField(key); name != "" {
			vars[name] = fmt.Sprint(value)
		}
	}

	if core.identifier != "" {
		vars["SYSLOG_IDENTIFIER"] = core.identifier
	}
	if entry.LoggerName != "" {
		vars["COMPONENT"] = entry.LoggerName
	}
	if entry.Caller.Defined {
		vars["CODE_FILE"] = entry.Caller.File
		vars["CODE_LINE"] = fmt.Sprint(entry.Caller.Line)
	}

	return core.send(entry.Message, journalPriority(entry.Level), vars)
}

func (core *journalCore) Sync() error {
	return nil
}

func journalPriority(level zapcore.Level) journal.Priority {
	switch level {
	case zapcore.DebugLevel:
		return journal.PriDebug
	case zapcore.InfoLevel:
		return journal.PriInfo
	case zapcore.WarnLevel:
		return journal.PriWarning
	case zapcore.ErrorLevel:
		return journal.PriErr
	default:
		return journal.PriCrit
	}
}

// journal variable names are upper case ASCII letters, digits and underscores, not starting with an underscore
func journalField(key string) string {
	var b strings.Builder

	for _, r := range strings.ToUpper(key) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	return strings.TrimLeft(b.String(), "_0123456789")
}
