package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/icodeforyou/weatherboard-go/cache"
	"github.com/icodeforyou/weatherboard-go/config"
	"github.com/icodeforyou/weatherboard-go/dashboard"
	"github.com/icodeforyou/weatherboard-go/database"
	"github.com/icodeforyou/weatherboard-go/geocoding"
	"github.com/icodeforyou/weatherboard-go/hours"
	"github.com/icodeforyou/weatherboard-go/logging"
	"github.com/icodeforyou/weatherboard-go/openweathermap"
	"github.com/icodeforyou/weatherboard-go/publish"
	"github.com/icodeforyou/weatherboard-go/task"
	"github.com/icodeforyou/weatherboard-go/www"
	"github.com/lmittmann/tint"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := hours.SetGuiTimezone(cnfg.Gui.GetTimezone()); err != nil {
		panic(fmt.Sprintf("failed to set GUI timezone: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.New(consoleHandler).Debug("weatherboard is starting...", slog.String("version", Version))

	db, err := database.New(ctx, cnfg.Database.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to database: %v", err))
	}
	defer db.Close()

	logger := slog.New(logging.NewMultiHandler(
		consoleHandler,
		logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
	slog.SetDefault(logger)

	// Now we can use the logger to log database operations into the database itself
	db.SetLogger(logger.With("module", "database"))

	owm := openweathermap.New(
		cnfg.OpenWeatherMap.ApiKey,
		cnfg.OpenWeatherMap.GetBaseURL(),
		cnfg.OpenWeatherMap.GetTimeout(),
		cnfg.OpenWeatherMap.GetRequestsPerSecond(),
		cnfg.OpenWeatherMap.GetBurst())
	weather := cache.New(owm, db, cnfg.Cache.GetTtl())

	locations := geocoding.New(
		cnfg.Geocoding.GetBaseURL(),
		cnfg.Geocoding.GetCount(),
		cnfg.OpenWeatherMap.GetTimeout(),
		cnfg.Geocoding.GetPriorityCountries())

	registry := dashboard.NewRegistry(weather, db, cnfg.OpenWeatherMap.GetTimeout())

	var publisher task.Publisher
	if cnfg.Mqtt.Enabled() && !isDevMode() {
		p := publish.New(
			cnfg.Mqtt.Host,
			cnfg.Mqtt.Port,
			cnfg.Mqtt.Username,
			cnfg.Mqtt.Password,
			cnfg.Mqtt.GetTopicPrefix())
		if err := p.Connect(); err != nil {
			panic(fmt.Sprintf("mqtt connection error: %v", err))
		}
		defer p.Disconnect()
		publisher = p
	} else {
		logger.Info("mqtt publishing disabled")
	}

	server, err := www.NewServer(cnfg, db, registry, locations, weather.Stats, Version)
	if err != nil {
		panic(fmt.Sprintf("failed to create server: %v", err))
	}

	tasks := task.NewTasks(db, weather, publisher, registry, server.BroadcastRefresh, cnfg)
	if isDevMode() {
		logger.Info("dev mode, skipping task scheduling")
	} else {
		if err := tasks.Run(); err != nil {
			panic(fmt.Sprintf("failed to schedule tasks: %v", err))
		}
		defer tasks.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
			logger.Info("main context done")
		case sig := <-sigCh:
			logger.Info("received signal", slog.Any("signal", sig))
			cancel()
		}
	}()

	server.Run(ctx)
}

func isDevMode() bool {
	return strings.EqualFold(os.Getenv("APP_ENV"), "development")
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}
	if syncer, ok := logger.Handler().(interface{ Sync() error }); ok {
		if syncErr := syncer.Sync(); syncErr != nil {
			logger.Error("failed to flush logger", slog.Any("error", syncErr))
		}
	}

	time.Sleep(2 * time.Second)
	os.Exit(1)
}
