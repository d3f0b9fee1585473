// Package notification dispatches notifications to their recipients.
package notification

import (
	"context"
	"github.com/icinga/icinga-go-library/periodic"
	"github.com/icinga/icingacore/pkg/logging"
	"github.com/icinga/icingacore/pkg/macro"
	"github.com/icinga/icingacore/pkg/metrics"
	"github.com/icinga/icingacore/pkg/objects"
	"github.com/icinga/icingacore/pkg/task"
	"github.com/icinga/icingacore/pkg/types"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"sync"
	"sync/atomic"
	"time"
)

// Engine resolves notifications and sends them to each of their recipients asynchronously.
type Engine struct {
	registry *objects.Registry
	tasks    *task.Registry
	logger   *logging.Logger

	inFlight sync.WaitGroup

	// sent and failed count completed sends since the last summary.
	sent   atomic.Uint64
	failed atomic.Uint64
}

// NewEngine returns a new Engine.
func NewEngine(registry *objects.Registry, tasks *task.Registry, logger *logging.Logger) *Engine {
	return &Engine{
		registry: registry,
		tasks:    tasks,
		logger:   logger,
	}
}

// BeginExecuteNotification starts one send per distinct recipient of n, or a single one if n has no recipients.
// It returns once all sends are started. The sends outlive ctx's cancellation.
//
// If the service, host or a user of n can't be resolved, no send is started
// and an error matching objects.IsNotFound is returned.
func (e *Engine) BeginExecuteNotification(ctx context.Context, n *objects.Notification, nt types.NotificationType) error {
	service, err := n.GetService(e.registry)
	if err != nil {
		return errors.Wrapf(err, "can't resolve service of notification %q", n.Name())
	}

	host, err := e.registry.HostOf(service)
	if err != nil {
		return errors.Wrapf(err, "can't resolve host of notification %q", n.Name())
	}

	users, err := n.GetUsers(e.registry)
	if err != nil {
		return errors.Wrapf(err, "can't resolve users of notification %q", n.Name())
	}

	app := e.registry.Application()
	macros := macro.Merge(
		macro.Macros{"NOTIFICATIONTYPE": nt.String()},
		n.Macros,
		service.Macros,
		service.DynamicMacros(),
		host.Macros,
		host.DynamicMacros(),
		app.Macros,
		app.DynamicMacros(),
	)

	ctx = context.WithoutCancel(ctx)

	if len(users) == 0 {
		e.execute(ctx, n, service, nil, macros, nt)
		return nil
	}

	for _, user := range users {
		e.execute(ctx, n, service, user, macros, nt)
	}

	return nil
}

// NotifyService calls BeginExecuteNotification for every notification of the service.
// An error of one notification doesn't prevent the others. All errors are combined.
func (e *Engine) NotifyService(ctx context.Context, service *objects.Service, nt types.NotificationType) error {
	var errs error
	for _, n := range e.registry.NotificationsFor(service) {
		errs = multierr.Append(errs, e.BeginExecuteNotification(ctx, n, nt))
	}

	return errs
}

// Run logs a summary of completed sends every logging interval until ctx is canceled.
func (e *Engine) Run(ctx context.Context) error {
	defer periodic.Start(ctx, e.logger.Interval(), func(periodic.Tick) {
		e.logSummary(e.logger.Interval())
	}).Stop()

	<-ctx.Done()

	return nil
}

func (e *Engine) logSummary(interval time.Duration) {
	sent, failed := e.sent.Swap(0), e.failed.Swap(0)
	if sent+failed > 0 {
		e.logger.Infof("Sent %d notifications, %d failed in the last %s", sent, failed, interval)
	}
}

// Wait blocks until all started sends have completed.
func (e *Engine) Wait() {
	e.inFlight.Wait()
}

// execute starts a send of n to user, which may be nil.
func (e *Engine) execute(
	ctx context.Context, n *objects.Notification, service *objects.Service, user *objects.User,
	macros macro.Macros, nt types.NotificationType,
) {
	logger := e.logger.With(zap.String("notification", n.Name()), zap.String("type", nt.String()))

	if user != nil {
		macros = macro.Merge(user.Macros, user.DynamicMacros(), macros)
		logger = logger.With(zap.String("user", user.Name()))
	}

	t, ok := e.tasks.MakeMethodTask(ctx, n, task.NotifyMethod, task.Arguments{
		Name:    n.Name(),
		Command: n.Command,
		Macros:  macros,
		Type:    nt,
	})
	if !ok {
		metrics.RecordMissingCapability()
		logger.Warn("Notification has no notify method, not sending")

		return
	}

	n.AddTask(t)
	e.inFlight.Add(1)
	metrics.RecordSendStarted()

	logger.Debugf("Sending notification for service %q", service.Name())

	t.Start(func(t *task.Task) {
		defer e.inFlight.Done()

		e.completed(logger, n, service, t)
	})
}

// completed handles the completion of a send.
func (e *Engine) completed(logger *logging.Logger, n *objects.Notification, service *objects.Service, t *task.Task) {
	n.RemoveTask(t)

	if _, err := t.Result(); err != nil {
		e.failed.Add(1)
		metrics.RecordSendCompleted(metrics.ResultFailure)
		logger.Warnw("Can't send notification", zap.String("service", service.Name()), zap.Error(err))

		return
	}

	e.sent.Add(1)
	metrics.RecordSendCompleted(metrics.ResultSuccess)
	logger.Infow("Sent notification", zap.String("service", service.Name()))
}
