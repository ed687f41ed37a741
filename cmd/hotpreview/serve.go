// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/hotpreview/hotpreview/lib/automation"
	"github.com/hotpreview/hotpreview/lib/cli"
	"github.com/hotpreview/hotpreview/lib/config"
	"github.com/hotpreview/hotpreview/lib/protocol"
	"github.com/hotpreview/hotpreview/lib/tooling"
)

type serveParams struct {
	configPath        string
	listenAddress     string
	automationAddress string
	noAutomation      bool
	logLevel          string
}

func serveCommand() *cli.Command {
	var params serveParams
	return &cli.Command{
		Name:    "serve",
		Summary: "Run the tooling server",
		Description: `Run the tooling server until interrupted.

Apps connect to the listen address and register their project. The
automation API serves the registered apps to editors and to the other
hotpreview commands.

Configuration comes from --config, or the file named by
HOTPREVIEW_CONFIG, or built-in defaults. Flags override the file.

navigation.bring_app_to_front has no effect in this build: no platform
window foregrounder is included, and serve warns when it is set.`,
		Examples: []cli.Example{
			{Description: "Serve with defaults", Command: "hotpreview serve"},
			{Description: "Serve with a config file", Command: "hotpreview serve --config ~/.hotpreview.yaml"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("serve", pflag.ContinueOnError)
			flagSet.StringVar(&params.configPath, "config", "", "path to the hotpreview.yaml config file")
			flagSet.StringVar(&params.listenAddress, "listen", "", "address apps connect to (overrides listen.address)")
			flagSet.StringVar(&params.automationAddress, "automation-address", "", "automation API address (overrides automation.address)")
			flagSet.BoolVar(&params.noAutomation, "no-automation", false, "do not start the automation API")
			flagSet.StringVar(&params.logLevel, "log-level", "", "debug, info, warn, or error (overrides log.level)")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			cfg, err := loadServeConfig(params)
			if err != nil {
				return err
			}
			return serve(ctx, cfg)
		},
	}
}

func loadServeConfig(params serveParams) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case params.configPath != "":
		cfg, err = config.LoadFile(params.configPath)
	case os.Getenv(config.EnvVar) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if params.listenAddress != "" {
		cfg.Listen.Address = params.listenAddress
	}
	if params.automationAddress != "" {
		cfg.Automation.Address = params.automationAddress
	}
	if params.noAutomation {
		cfg.Automation.Enabled = false
	}
	if params.logLevel != "" {
		cfg.Log.Level = params.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := cli.NewCommandLogger(cfg.LogLevel()).With("command", "serve")

	metricsRegistry := prometheus.NewRegistry()
	metricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := tooling.NewMetrics(tooling.MetricsConfig{Registerer: metricsRegistry})
	statusHub := automation.NewStatusHub(nil, logger)

	directory := tooling.NewDirectory(tooling.DirectoryConfig{
		Logger:  logger,
		Metrics: metrics,
		Status: tooling.StatusFunc(func(message string) {
			logger.Debug("status", "message", message)
			statusHub.Status(message)
		}),
		BringToFront:       cfg.Navigation.BringAppToFront,
		SnapshotDirName:    cfg.Snapshots.DirectoryName,
		CaptureConcurrency: cfg.Snapshots.Concurrency,
	})
	for _, project := range cfg.PinnedProjects {
		directory.Pin(project)
		logger.Info("app pinned", "project", project)
	}

	toolingServer := tooling.NewServer(tooling.ServerConfig{
		Address:             cfg.Listen.Address,
		AppConnectionString: cfg.Listen.AppConnectionString,
		Directory:           directory,
		Logger:              logger,
		Metrics:             metrics,
	})

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return toolingServer.Serve(groupCtx)
	})
	if cfg.Automation.Enabled {
		handler := automation.NewHandler(automation.HandlerConfig{
			Directory: directory,
			ToolingInfo: protocol.ToolingInfo{
				ProtocolVersion:     protocol.ProtocolVersion,
				AppConnectionString: cfg.Listen.AppConnectionString,
			},
			Status:   statusHub,
			Gatherer: metricsRegistry,
			Logger:   logger,
		})
		automationServer := automation.NewServer(automation.ServerConfig{
			Address: cfg.Automation.Address,
			Handler: handler,
			Logger:  logger,
		})
		group.Go(func() error {
			return automationServer.Serve(groupCtx)
		})
	}
	return group.Wait()
}
