package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/pixil98/go-mmo/cmd/mmo/command"
)

func main() {
	logger := logrus.New()

	configPath := flag.String("config", "config.json", "path to the server config")
	ip := flag.String("ip", "", "address to accept clients on, overrides the config")
	port := flag.Uint("port", uint(defaultPort), "port to accept clients on, overrides the config")
	withConsole := flag.Bool("console", false, "run the operator console in this terminal")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	cfg, err := command.LoadConfig(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("loading config")
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["ip"] {
		cfg.Listener.IP = *ip
	}
	if set["port"] || cfg.Listener.Port == 0 {
		cfg.Listener.Port = uint16(*port)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	setLogOutput(os.Stderr, level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := command.BuildWorkers(cfg, *withConsole, cancel)
	if err != nil {
		logger.WithError(err).Fatal("creating application")
	}
	if app.LogView != nil {
		setLogOutput(app.LogView.Writer(), level)
	}

	slog.Info("starting server", "ip", cfg.Listener.IP, "port", cfg.Listener.Port)
	if err := app.Workers.Start(ctx); err != nil {
		logger.WithError(err).Fatal("running application")
	}

	logger.Info("exiting")
}

func setLogOutput(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
