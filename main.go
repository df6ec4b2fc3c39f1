package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"go.uber.org/zap"
	"relloyd/focustrack/aggregator"
	"relloyd/focustrack/config"
	"relloyd/focustrack/host"
	"relloyd/focustrack/rules"
	"relloyd/focustrack/store"
	"relloyd/focustrack/syncer"
	"relloyd/focustrack/tracker"
	"relloyd/focustrack/web"
)

// Functionality:
//   INPUT
//     Host adapter - receives tab/window/idle/control events from the browser bridge and answers tab lookups
//   DOES STUFF
//     Tracker      - turns host events into closed activity records, persisted per day
//     Aggregator   - rolls a day's records into a summary on demand
//     Syncer       - periodically posts the day's summary and records to the collector
//     Web          - JSON control surface (state, pause, today, summary, sync)

type cleanupFunc func() error

func recoverFunc(logger *zap.Logger) {
	if r := recover(); r != nil {
		logger.Error("Recovered from panic",
			zap.Any("message", r),
			zap.String("stack", string(debug.Stack())),
		)
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup logger.
	logger := config.MustGetLogger()
	defer func(logger *zap.SugaredLogger) {
		_ = logger.Sync()
	}(logger)

	logger.Infof("Build version %v", config.BuildVersion)

	// Recovery.
	defer recoverFunc(logger.Desugar())

	// Cleanup functions.
	var cleanupFuncs []cleanupFunc

	// Domain classifier.
	ruleLists, err := config.LoadCategoryRules()
	if err != nil {
		logger.Fatalf("Failed to load category rules: %v", err)
	}
	classifier, err := rules.NewClassifier(ruleLists)
	if err != nil {
		logger.Fatalf("Failed to setup classifier: %v", err)
	}
	logger.Info("Domain classifier created")

	// Persistent store.
	st, err := store.Open(logger, config.AppCfg.TrackerConfig.StoreFilePath)
	if err != nil {
		logger.Fatalf("Failed to open store: %v", err)
	}
	logger.Info("Store opened")

	// Host adapter.
	adapter := host.NewAdapter(logger)

	// Activity tracker.
	t, err := tracker.NewTracker(logger, &config.AppCfg.TrackerConfig, st, classifier, adapter)
	if err != nil {
		logger.Fatalf("Failed to setup activity tracker: %v", err)
	}
	adapter.RegisterEventSink(t)
	logger.Info("Activity tracker created")

	cleanupFuncs = append(cleanupFuncs, func() error {
		// Close any interval still open so its time is not lost.
		t.Stop()
		return nil
	})

	// Daily aggregator.
	agg := aggregator.NewAggregator(&config.AppCfg.AggregatorConfig)

	// Sync dispatcher.
	d, err := syncer.NewDispatcher(logger, &config.AppCfg.SyncConfig, st, agg)
	if err != nil {
		logger.Fatalf("Failed to setup sync dispatcher: %v", err)
	}
	go d.Run(ctx)
	logger.Info("Sync dispatcher started")

	// Web server start.
	if config.AppCfg.WebConfig.WebEnabled {
		s := web.NewServer(logger, t, d, agg, st, adapter)
		go func() {
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatalln("Error starting web server:", err)
			}
			logger.Info("Web server quit")
		}()
		logger.Info("Web server started")

		cleanupFuncs = append(cleanupFuncs, func() error {
			// Shutdown the web server.
			ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelSrv()
			if err := s.Shutdown(ctxSrv); err != nil {
				logger.Errorf("Error shutting down web server: %v", err)
				return err
			}
			return nil
		})
	}

	// Capture SIGINT and SIGTERM to shut down gracefully.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info("Signal received, shutting down...")

	// Clean up and exit.
	failure := false
	for _, f := range cleanupFuncs {
		if err := f(); err != nil {
			logger.Errorf("Error during cleanup: %v", err)
			failure = true
		}
	}
	if failure {
		os.Exit(1)
	}
}
