package logging

import (
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"testing"
)

func TestJournaldCore_entry(t *testing.T) {
	core := NewJournaldCore("icingacore", zapcore.DebugLevel).With([]zapcore.Field{zap.String("notification", "web1-http")})
	jc := core.(*journaldCore)

	tests := []struct {
		name    string
		entry   zapcore.Entry
		message string
	}{
		{"default logger", zapcore.Entry{LoggerName: "icingacore", Message: "Starting"}, "Starting"},
		{"child logger", zapcore.Entry{LoggerName: "icingacore.comments", Message: "Refreshed"}, "comments: Refreshed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message, fields := jc.entry(tt.entry, []zapcore.Field{zap.Int("legacyId", 42)})

			require.Equal(t, tt.message, message)
			require.Equal(t, "icingacore", fields["SYSLOG_IDENTIFIER"])
			require.EqualValues(t, 42, fields["ICINGACORE_LEGACY_ID"])
			require.Equal(t, "web1-http", fields["ICINGACORE_NOTIFICATION"])
			require.NotContains(t, fields, "CODE_FILE")
		})
	}
}

func TestJournaldCore_Enabled(t *testing.T) {
	core := NewJournaldCore("icingacore", zapcore.WarnLevel)

	require.False(t, core.Enabled(zapcore.InfoLevel))
	require.True(t, core.Enabled(zapcore.ErrorLevel))
}
