package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/shortwatch/internal/app"
	"github.com/ternarybob/shortwatch/internal/common"
	"github.com/ternarybob/shortwatch/internal/scheduler"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	secretsFile  = flag.String("secrets", "", "YAML secrets file with API credentials")
	watchMode    = flag.Bool("watch", false, "Run on the configured cron schedule instead of once")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Shortwatch version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Startup sequence:
	// 1. Load config (defaults -> files -> secrets -> env)
	// 2. Initialize logger
	// 3. Print banner
	// 4. Build and run the pipeline

	if len(configFiles) == 0 {
		if _, err := os.Stat("shortwatch.toml"); err == nil {
			configFiles = append(configFiles, "shortwatch.toml")
		} else if _, err := os.Stat("deployments/local/shortwatch.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/shortwatch.toml")
		}
	}

	config, err := common.LoadFromFiles(*secretsFile, configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)

	common.PrintBanner(common.GetVersion())

	logger.Debug().
		Str("environment", config.Environment).
		Str("provider", config.RAG.Provider).
		Bool("persist", config.Storage.Persist).
		Str("log_level", config.Logging.Level).
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	if *watchMode || config.Watch.Enabled {
		runWatch(ctx, config, application, logger)
		return
	}

	if err := application.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Analysis run failed")
		os.Exit(1)
	}
}

// runWatch runs once immediately, then repeats on the configured schedule
// until interrupted.
func runWatch(ctx context.Context, config *common.Config, application *app.App, logger arbor.ILogger) {
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Initial analysis run failed")
	}

	sched := scheduler.NewScheduler(application.Run, logger)
	if err := sched.Start(ctx, config.Watch.Schedule); err != nil {
		logger.Fatal().Err(err).Str("schedule", config.Watch.Schedule).Msg("Failed to start scheduler")
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info().Msg("Shutdown signal received")
	sched.Stop()
}
