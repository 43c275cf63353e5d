// Command nldi-server runs the NLDI HTTP service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/internetofwater/nldi-go/internal/anchor"
	"github.com/internetofwater/nldi-go/internal/core/config"
	"github.com/internetofwater/nldi-go/internal/core/httpclient"
	"github.com/internetofwater/nldi-go/internal/core/observability"
	"github.com/internetofwater/nldi-go/internal/core/router"
	"github.com/internetofwater/nldi-go/internal/core/server"
	"github.com/internetofwater/nldi-go/internal/db"
	"github.com/internetofwater/nldi-go/internal/geoprocessing"
	"github.com/internetofwater/nldi-go/internal/logger"
	"github.com/internetofwater/nldi-go/internal/lookup"
	"github.com/internetofwater/nldi-go/internal/model"
	"github.com/internetofwater/nldi-go/internal/navigation"
	"github.com/internetofwater/nldi-go/internal/registry"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	configPath := flag.String("config", os.Getenv("NLDI_CONFIG"), "path to the NLDI YAML config file")
	alignSources := flag.Bool("align", false, "reconcile nldi_data.crawler_source with the config's sources: list, then exit")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "nldi-server: -config (or NLDI_CONFIG) is required")
		os.Exit(2)
	}

	if err := run(*configPath, *alignSources); err != nil {
		fmt.Fprintln(os.Stderr, "nldi-server:", err)
		os.Exit(1)
	}
}

func run(configPath string, align bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	zl := logger.Build(logger.Config{Level: cfg.LogLevel, Console: true, Component: "nldi-server"}, os.Stdout)
	slogger := logger.NewSlog(&zl)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gw, err := db.Open(ctx, cfg.Database.DSN(), cfg.Database.PoolSize, cfg.Database.AcquireTimeout)
	if err != nil {
		return err
	}
	defer gw.Close()

	if err := gw.Ping(ctx); err != nil {
		return err
	}

	reg, err := registry.New(ctx, gw)
	if err != nil {
		return err
	}

	if align {
		wanted := make([]registry.SourceConfig, 0, len(cfg.Sources))
		for _, s := range cfg.Sources {
			wanted = append(wanted, registry.SourceConfig{
				SourceID:         s.SourceID,
				Suffix:           s.Suffix,
				SourceName:       s.SourceName,
				SourceURI:        s.SourceURI,
				IdentifierColumn: s.FeatureID,
				NameColumn:       s.FeatureName,
				URIColumn:        s.FeatureURI,
				IngestType:       stringToIngestType(s.IngestType),
				FeatureType:      s.FeatureType,
			})
		}
		if err := reg.Align(ctx, wanted); err != nil {
			return err
		}
		slogger.Info("source registry aligned", "count", len(wanted))
		return nil
	}

	observability.Init(prometheus.DefaultRegisterer, true)

	flowlines := lookup.NewFlowlineLookup(gw)
	features := lookup.NewFeatureLookup(gw)
	catchments := lookup.NewCatchmentLookup(gw)
	mainstems := lookup.NewMainstemLookup(gw)
	basins := lookup.NewBasinLookup(gw)

	outbound := httpclient.NewOutbound()
	if cfg.Geoprocessing.Timeout > 0 {
		outbound.Timeout = cfg.Geoprocessing.Timeout
	}
	geoproc, err := geoprocessing.New(slogger, outbound, cfg.Geoprocessing.URL, cfg.Geoprocessing.Enabled)
	if err != nil {
		return err
	}

	resolver := anchor.NewResolver(reg, flowlines, features, catchments, geoproc)
	engine := navigation.NewEngine(gw)

	app := &router.App{
		Config:     cfg,
		Logger:     slogger,
		Registry:   reg,
		Flowlines:  flowlines,
		Features:   features,
		Catchments: catchments,
		Mainstems:  mainstems,
		Basins:     basins,
		Anchors:    resolver,
		Nav:        engine,
	}

	slogger.Info("starting nldi-server", "addr", cfg.Server.Addr, "path", cfg.Server.Path)
	return server.Run(ctx, cfg, slogger, app, gw)
}

func stringToIngestType(s string) model.IngestType {
	return model.IngestType(s)
}
