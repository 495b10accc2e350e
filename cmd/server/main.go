package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/synthetizer/cmd/cli/config"
	"github.com/inferloop/synthetizer/internal/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := ParseFlags(args)
	if err != nil {
		return err
	}

	if flags.Version {
		info := GetBuildInfo()
		fmt.Printf("Version: %s\n", info.Version)
		fmt.Printf("Git Commit: %s\n", info.GitCommit)
		fmt.Printf("Build Date: %s\n", info.BuildDate)
		fmt.Printf("Go Version: %s\n", info.GoVersion)
		fmt.Printf("Platform: %s\n", info.Platform)
		return nil
	}

	cfg, err := config.LoadConfig(flags.ConfigFile)
	if err != nil {
		return err
	}
	applyFlags(cfg, flags)

	logger, err := cfg.Log.NewLogger(false)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"version":   Version,
		"commit":    GitCommit,
		"buildDate": BuildDate,
	}).Info("Starting synthetic value sampling server")

	srv, err := server.NewServer(&cfg.Server, &cfg.Sampling, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	if err := srv.Stop(context.Background()); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
		return err
	}

	logger.Info("Server stopped")
	return nil
}

func applyFlags(cfg *config.CLIConfig, flags *Flags) {
	if flags.Host != "" {
		cfg.Server.Host = flags.Host
	}
	if flags.Port != 0 {
		cfg.Server.Port = flags.Port
	}
	if flags.MetricsPort != 0 {
		cfg.Server.MetricsPort = flags.MetricsPort
	}
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		cfg.Log.Format = flags.LogFormat
	}
	if flags.Seed != 0 {
		cfg.Sampling.Seed = flags.Seed
	}
}
