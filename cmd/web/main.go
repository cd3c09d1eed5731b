package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jcoeder/video-archive/cmd/web/auth"
	"github.com/jcoeder/video-archive/cmd/web/internal/web"
	"github.com/jcoeder/video-archive/internal/application"
	"github.com/jcoeder/video-archive/internal/archive"
	"github.com/jcoeder/video-archive/internal/config"
	"github.com/jcoeder/video-archive/internal/db"
	"github.com/jcoeder/video-archive/internal/storage"
	"github.com/jcoeder/video-archive/internal/tasks"
	"github.com/jcoeder/video-archive/pkg/whisper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting web service")

	conf, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if conf.DatabaseRetries <= 0 {
		conf.DatabaseRetries = 10
	}

	pool, err := application.OpenDBPoolWithRetry(ctx, *conf)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	dbc, err := db.NewDatabaseConnection(ctx, pool)
	if err != nil {
		slog.Error("failed to create database connection", "error", err)
		os.Exit(1)
	}
	defer dbc.Close()

	if err := dbc.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	layout := storage.NewLayout(conf.UploadRoot, conf.ThumbnailRoot)

	queue := tasks.NewQueue(conf.TaskWorkers)
	defer queue.Shutdown()

	var transcriber *archive.Transcriber
	if conf.TranscribeEnabled {
		client := whisper.New(conf.WhisperCmd, conf.WhisperModel, conf.WhisperLanguage)
		transcriber = archive.NewTranscriber(dbc.Queries(ctx), client, conf.TranscribeTimeout())
	} else {
		slog.Info("Transcription disabled")
	}

	pipeline := archive.NewPipeline(dbc, layout, conf, queue, transcriber)
	exporter := archive.NewExporter(dbc)

	reconciler := archive.NewReconciler(dbc.Queries(ctx), conf, conf.ReconcileInterval())
	go reconciler.Run(ctx)

	sessionMgr := auth.NewSessionManager(conf.SessionSecret)

	e, err := web.NewWebserver(conf, dbc, layout, pipeline, exporter, sessionMgr)
	if err != nil {
		slog.Error("failed to create webserver", "error", err)
		os.Exit(1)
	}

	addr := ":" + strconv.Itoa(conf.WebServerPort)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	slog.Info("Listening", "addr", addr)
	if err := e.Start(addr); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		// Echo returns an error on Shutdown; treat it as normal if context is done.
		if ctx.Err() != nil {
			return
		}
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
