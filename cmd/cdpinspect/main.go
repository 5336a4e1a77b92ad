package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cdpinspect/internal/client"
	"cdpinspect/internal/config"
	"cdpinspect/internal/logger"
	"cdpinspect/internal/storage"
	"cdpinspect/pkg/api"
)

func main() {
	archiveOnExit := flag.Bool("archive", true, "persist the captured session to sqlite on exit")
	duration := flag.Duration("duration", 0, "capture window; 0 runs until interrupted")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	l := logger.New(logger.Options{
		Level:   cfg.Log.Level,
		Writers: cfg.Log.Writer,
		File:    cfg.Log.File,
	})

	var archive *storage.Archive
	if *archiveOnExit {
		archive, err = storage.Open(cfg, l)
		if err != nil {
			l.Err(err, "session archive unavailable, continuing without it")
			archive = nil
		}
	}

	c := client.New(cfg, l)
	svc := api.NewService(c, archive, l)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if res := svc.Connect(ctx); !res.Success {
		cancel()
		l.Error("connect failed", "error", res.Error)
		os.Exit(1)
	}
	cancel()

	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	svc.RegisterEventHandler("Page.loadEventFired", func(params []byte) {
		l.Info("page load event fired")
	})
	svc.EnableDomains(ctx)

	if res := svc.TargetInfo(ctx); res.Success {
		l.Debug("target info", "data", res.Data)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	if *duration > 0 {
		select {
		case <-sig:
		case <-time.After(*duration):
		}
	} else {
		<-sig
	}

	if archive != nil {
		if res := svc.ArchiveSession(); !res.Success {
			l.Error("archive failed", "error", res.Error)
		}
	}
	svc.Disconnect()
}
