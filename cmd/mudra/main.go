package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/recognize"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	gestureClassifier, err := buildGestureClassifier(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build gesture classifier", zap.Error(err))
	}

	backend, err := store.NewMongoBackend(context.Background(), cfg.MongoURI, cfg.DBName)
	if err != nil {
		logger.Fatal("failed to initialize event store backend", zap.Error(err))
	}
	events := store.NewResilient(backend, store.NewConnState(store.StateOffline), cfg.StoreTimeout, logger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := events.Close(ctx); err != nil {
			logger.Warn("error closing event store", zap.Error(err))
		}
	}()

	emitter := event.NewEmitter(events, cfg.StoreTimeout, logger)
	defer emitter.Close()

	coordinator := recognize.New(
		gestureClassifier,
		classify.NewExpressionRules(),
		emitter,
		recognize.Config{
			MinConfidence:  cfg.MinConfidence,
			DebounceFrames: cfg.DebounceFrames,
		},
		logger,
	)

	liveResults := server.NewResultsHandler(logger)
	coordinator.OnResult(liveResults.Publish)

	application := app.New(app.Config{
		CameraID:     cfg.CameraID,
		MotionThresh: cfg.MotionThresh,
	}, coordinator, logger)

	if err := application.Start(); err != nil {
		logger.Fatal("failed to start recognition pipeline", zap.Error(err))
	}
	application.SetEnabled(true)
	defer application.Stop()

	srv := server.New(server.Config{
		Store:       events,
		Capturer:    coordinator,
		LiveResults: liveResults,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe(cfg.Addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("HTTP server stopped", zap.Error(err))
	}
}

// buildGestureClassifier selects the gesture classifier variant. Forest mode
// requires the model artifact; template mode loads recorded pose templates
// from the local database.
func buildGestureClassifier(cfg config.Config, logger *zap.Logger) (classify.Classifier, error) {
	switch cfg.ClassifierMode {
	case config.ClassifierTemplate:
		templates, err := store.OpenTemplates(cfg.TemplateDB)
		if err != nil {
			return nil, err
		}
		defer templates.Close()

		loaded, err := templates.List()
		if err != nil {
			return nil, err
		}

		tc := classify.NewTemplateClassifier()
		for _, t := range loaded {
			tc.AddTemplate(t)
		}
		logger.Info("using template gesture classifier", zap.Int("templates", tc.Len()))
		return tc, nil

	default:
		forest, err := classify.LoadForest(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		logger.Info("using forest gesture classifier",
			zap.String("model", cfg.ModelPath),
			zap.String("version", forest.Version()))
		return forest, nil
	}
}
