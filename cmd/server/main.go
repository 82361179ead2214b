package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"tgadmin/impl/auth"
	"tgadmin/impl/core"
	"tgadmin/internal/config"
	"tgadmin/internal/database"
	"tgadmin/internal/http-server/api"
	"tgadmin/internal/metrics"
	"tgadmin/internal/profile"
	"tgadmin/internal/telegram"
	"tgadmin/lib/logger"
	"tgadmin/lib/sl"
)

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, conf.LogPath)
	lg.Info("starting tgadmin", slog.String("config", *configPath), slog.String("env", conf.Env))

	var directory profile.Directory
	flushAlerts := func() {}
	if conf.Telegram.Token != "" {
		tg, err := telegram.New(telegram.Config{
			Token:      conf.Telegram.Token,
			APIURL:     conf.Telegram.APIURL,
			AlertChats: conf.Telegram.AlertChats,
		}, lg)
		if err != nil {
			lg.Error("telegram client", sl.Err(err))
		} else {
			directory = tg
			lg, flushAlerts = logger.WithTelegram(lg, tg, conf.Telegram.AlertSlogLevel())
		}
	} else {
		lg.Warn("bot token not set; profile lookups disabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongo, err := database.Connect(ctx, conf.Mongo)
	if err != nil {
		cancel()
		lg.Error("mongo client", sl.Err(err))
		flushAlerts()
		os.Exit(1)
	}
	if err = mongo.EnsureIndexes(ctx); err != nil {
		lg.Warn("ensure indexes", sl.Err(err))
	}
	cancel()
	lg.Info("mongo client initialized")

	if conf.Metrics.Enabled {
		metrics.MustRegister()
	}

	profiles, err := profile.New(directory, profile.Config{
		Capacity: conf.ProfileCache.Capacity,
		TTL:      conf.ProfileCache.TTL,
	}, lg)
	if err != nil {
		lg.Error("profile cache", sl.Err(err))
		flushAlerts()
		os.Exit(1)
	}

	authService := auth.New(conf.Auth.Secret, conf.Auth.TokenTTL, conf.Auth.LegacyPlaintext)
	handler := core.New(mongo, profiles, authService, lg)

	server := api.New(conf, lg, handler)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("api server", sl.Err(err))
			flushAlerts()
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	lg.Info("stopping", slog.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		lg.Error("api server shutdown", sl.Err(err))
	}
	profiles.Close()
	if err = mongo.Disconnect(shutdownCtx); err != nil {
		lg.Error("mongo disconnect", sl.Err(err))
	}
	flushAlerts()
	log.Print("tgadmin stopped")
}
