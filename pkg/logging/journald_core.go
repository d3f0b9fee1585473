package logging

import (
	"github.com/icinga/icingacore/pkg/strcase"
	"github.com/pkg/errors"
	"github.com/ssgreg/journald"
	"go.uber.org/zap/zapcore"
	"strconv"
	"strings"
)

// priorities maps zapcore.Level to journal.Priority.
var priorities = map[zapcore.Level]journald.Priority{
	zapcore.DebugLevel:  journald.PriorityDebug,
	zapcore.InfoLevel:   journald.PriorityInfo,
	zapcore.WarnLevel:   journald.PriorityWarning,
	zapcore.ErrorLevel:  journald.PriorityErr,
	zapcore.FatalLevel:  journald.PriorityCrit,
	zapcore.PanicLevel:  journald.PriorityCrit,
	zapcore.DPanicLevel: journald.PriorityCrit,
}

// NewJournaldCore returns a zapcore.Core that sends log entries to systemd-journald and
// uses the given identifier as a prefix for structured logging context that is sent as journal fields.
// The caller, if known, is sent as the well-known CODE_FILE and CODE_LINE fields.
func NewJournaldCore(identifier string, enab zapcore.LevelEnabler) zapcore.Core {
	return &journaldCore{
		LevelEnabler: enab,
		identifier:   identifier,
		identifierU:  strings.ToUpper(identifier),
	}
}

type journaldCore struct {
	zapcore.LevelEnabler
	context     []zapcore.Field
	identifier  string
	identifierU string
}

func (c *journaldCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}

	return ce
}

func (c *journaldCore) Sync() error {
	return nil
}

func (c *journaldCore) With(fields []zapcore.Field) zapcore.Core {
	cc := *c
	cc.context = append(cc.context[:len(cc.context):len(cc.context)], fields...)

	return &cc
}

func (c *journaldCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	pri, ok := priorities[ent.Level]
	if !ok {
		return errors.Errorf("unknown log level %q", ent.Level)
	}

	message, vars := c.entry(ent, fields)

	return journald.Send(message, pri, vars)
}

// entry returns the journal message and fields of a log entry.
// Structured context becomes <IDENTIFIER>_<SCREAMING_SNAKE_KEY>, e.g. ICINGACORE_LEGACY_ID.
func (c *journaldCore) entry(ent zapcore.Entry, fields []zapcore.Field) (string, map[string]interface{}) {
	enc := zapcore.NewMapObjectEncoder()
	for _, fs := range [][]zapcore.Field{fields, c.context} {
		for _, f := range fs {
			f.Key = c.identifierU + "_" + strcase.ScreamingSnake(f.Key)
			f.AddTo(enc)
		}
	}

	enc.Fields["SYSLOG_IDENTIFIER"] = c.identifier

	if ent.Caller.Defined {
		enc.Fields["CODE_FILE"] = ent.Caller.File
		enc.Fields["CODE_LINE"] = strconv.Itoa(ent.Caller.Line)
	}

	message := ent.Message
	if ent.LoggerName != c.identifier {
		// Child loggers are named "<identifier>.<child>", e.g. icingacore.comments.
		message = strings.TrimPrefix(ent.LoggerName, c.identifier+".") + ": " + message
	}

	return message, enc.Fields
}
