package main

import (
	"context"
	"github.com/icinga/icingacore/internal"
	"github.com/icinga/icingacore/internal/command"
	"github.com/icinga/icingacore/pkg/api"
	"github.com/icinga/icingacore/pkg/comments"
	"github.com/icinga/icingacore/pkg/notification"
	"github.com/icinga/icingacore/pkg/objects"
	"github.com/icinga/icingacore/pkg/state"
	"github.com/icinga/icingacore/pkg/task"
	"github.com/okzk/sdnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	ExitSuccess = 0
	ExitFailure = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := command.New()
	logs := cmd.Logging
	logger := cmd.Logger
	defer logs.Sync()

	logger.Infof("Starting icingacore daemon (%s)", internal.Version.Version)

	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	store, err := state.Open(ctx, &cmd.Config.Database, logs.GetChildLogger("state"))
	if err != nil {
		logger.Errorf("%+v", errors.Wrap(err, "can't open state database"))
		return ExitFailure
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Errorf("%+v", errors.Wrap(err, "can't close state database"))
		}
	}()

	registry := objects.NewRegistry(objects.NewApplication(cmd.Config.Objects.Vars), store)
	if err := cmd.Config.Objects.Populate(registry); err != nil {
		logger.Errorf("%+v", errors.Wrap(err, "can't register objects"))
		return ExitFailure
	}

	if err := store.Load(ctx, registry); err != nil {
		logger.Errorf("%+v", errors.Wrap(err, "can't load comments"))
		return ExitFailure
	}

	cache := comments.NewCache(ctx, registry, logs.GetChildLogger("comments"), cmd.Config.Comments)
	defer func() { _ = cache.Close() }()

	registry.AttachCache(cache)

	tasks := task.NewNotificationRegistry(cmd.Config.Notifications, task.ShoutrrrSender{})
	engine := notification.NewEngine(registry, tasks, logs.GetChildLogger("notification"))

	server := &http.Server{
		Addr:              cmd.Config.API.Listen,
		Handler:           api.NewServer(registry, cache, engine, logs.GetChildLogger("api"), cmd.Config.API).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return store.Run(gctx)
	})

	g.Go(func() error {
		return engine.Run(gctx)
	})

	g.Go(func() error {
		logger.Infof("Listening on %s", server.Addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "can't serve API")
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return errors.Wrap(server.Shutdown(shutdownCtx), "can't shut down API server")
	})

	_ = sdnotify.Ready()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	exitCode := ExitSuccess

	select {
	case s := <-sig:
		logger.Infow("Exiting due to signal", zap.String("signal", s.String()))
	case <-gctx.Done():
	}

	_ = sdnotify.Stopping()
	cancelCtx()

	if err := g.Wait(); err != nil {
		logger.Errorf("%+v", err)
		exitCode = ExitFailure
	}

	logger.Info("Waiting for pending notifications")
	engine.Wait()

	return exitCode
}
