package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqio/go-nsq"

	"vodsheet/internal/app"
	"vodsheet/internal/config"
	"vodsheet/internal/logger"
)

func main() {
	logHandler := logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(slog.New(logHandler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	deps, err := app.Bootstrap(cfg)
	if err != nil {
		slog.Error("failed to bootstrap", "error", err)
		os.Exit(1)
	}
	defer deps.DB.Close()
	slog.Info("migrations applied successfully")

	application, err := app.New(cfg, deps.DB, deps.NSQProducer)
	if err != nil {
		slog.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	nsqCfg := nsq.NewConfig()

	videoConsumer, err := nsq.NewConsumer(config.TopicVideoProcess, "backend", nsqCfg)
	if err != nil {
		slog.Error("failed to create video consumer", "error", err)
		os.Exit(1)
	}
	videoConsumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
		return application.VideoConsumer.HandleMessage(m)
	}))
	if err := videoConsumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
		slog.Error("failed to connect video consumer to NSQLookupd", "error", err)
	} else {
		slog.Info("video consumer connected", "topic", config.TopicVideoProcess)
	}

	cheatsheetConsumer, err := nsq.NewConsumer(config.TopicCheatsheetGenerate, "backend", nsqCfg)
	if err != nil {
		slog.Error("failed to create cheatsheet consumer", "error", err)
		os.Exit(1)
	}
	cheatsheetConsumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
		return application.CheatsheetConsumer.HandleMessage(m)
	}))
	if err := cheatsheetConsumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
		slog.Error("failed to connect cheatsheet consumer to NSQLookupd", "error", err)
	} else {
		slog.Info("cheatsheet consumer connected", "topic", config.TopicCheatsheetGenerate)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	videoConsumer.Stop()
	cheatsheetConsumer.Stop()
}
