package objects

import (
	"github.com/icinga/icingacore/pkg/macro"
	"strconv"
	"time"
)

// Application is the singleton representing the running process.
type Application struct {
	Macros macro.Macros

	startTime time.Time
	now       func() time.Time
}

// NewApplication returns a new Application started now.
func NewApplication(macros macro.Macros) *Application {
	return &Application{
		Macros:    macros,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// StartTime returns the time the process was started.
func (a *Application) StartTime() time.Time {
	return a.startTime
}

// DynamicMacros returns the macros computed from the current time and the process.
func (a *Application) DynamicMacros() macro.Macros {
	now := a.now()

	return macro.Macros{
		"TIMET":            strconv.FormatInt(now.Unix(), 10),
		"LONGDATETIME":     now.Format("2006-01-02 15:04:05 -0700"),
		"SHORTDATETIME":    now.Format("2006-01-02 15:04:05"),
		"DATE":             now.Format("2006-01-02"),
		"TIME":             now.Format("15:04:05 -0700"),
		"PROCESSSTARTTIME": strconv.FormatInt(a.startTime.Unix(), 10),
	}
}
