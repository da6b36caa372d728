package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"icon-server/internal/handlers"
	"icon-server/internal/raster"
	"icon-server/internal/state"
	"icon-server/internal/websocket"
	"icon-server/pkg/config"

	"github.com/sirupsen/logrus"
)

func main() {
	// Configure logrus
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	logrus.SetLevel(cfg.Level())

	loader := &raster.Loader{MaxBytes: cfg.MaxSVGBytes}
	if cfg.AllowRemote {
		loader.Client = &http.Client{Timeout: cfg.FetchTimeout}
	}

	stats := state.Global()
	hub := websocket.NewHub(stats)
	srv := &handlers.Server{
		Rasterizer:   raster.NewSVG(loader, cfg.Supersample),
		Loader:       loader,
		Hub:          hub,
		Stats:        stats,
		DefaultSizes: cfg.DefaultSizes,
		MaxSVGBytes:  cfg.MaxSVGBytes,
	}

	mux := http.NewServeMux()
	srv.Routes(mux, hub)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"port":         cfg.Port,
			"defaultSizes": cfg.DefaultSizes,
			"supersample":  cfg.Supersample,
			"allowRemote":  cfg.AllowRemote,
		}).Infof("Server started on http://localhost:%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logrus.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Graceful shutdown failed")
	}
}
