package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/nomis52/dagrun/buildinfo"
	"github.com/nomis52/dagrun/config"
	"github.com/nomis52/dagrun/executor"
	"github.com/nomis52/dagrun/history"
	"github.com/nomis52/dagrun/logging"
	"github.com/nomis52/dagrun/metrics"
	"github.com/nomis52/dagrun/pipeline"
	"github.com/nomis52/dagrun/tasks"
)

type Args struct {
	ConfigPath  string
	Pipeline    string
	ShowVersion bool
	Validate    bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := parseArgs()

	if args.ShowVersion {
		showVersion()
		return nil
	}

	if args.ConfigPath == "" {
		return fmt.Errorf("config flag (-c or --config) is required")
	}

	cfg, err := config.LoadConfig(args.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if args.Validate {
		fmt.Printf("Configuration validation successful: %s\n", args.ConfigPath)
		return nil
	}

	loggerConfig := logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Output:    cfg.Logging.Output,
		AddSource: cfg.Logging.AddSource,
	}
	logger, err := logging.New(loggerConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	props := buildinfo.Get()
	logger.Info("dagrun started",
		"build_time", props.BuildTime,
		"git_commit", props.GitCommit,
		"config_path", args.ConfigPath,
	)

	store, err := history.NewDiskStore(cfg.History.Dir, cfg.History.MaxRuns, logger)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}

	execOpts := []executor.Option{
		executor.WithLogger(logger),
		executor.WithStore(store),
	}

	registry, err := newRegistry(cfg.Monitoring, logger)
	if err != nil {
		return err
	}
	if registry != nil {
		observer, err := metrics.NewRunObserver(registry)
		if err != nil {
			return fmt.Errorf("failed to register run metrics: %w", err)
		}
		execOpts = append(execOpts, executor.WithObserver(observer))
	}

	exec := executor.New(execOpts...)
	taskRegistry := tasks.Default()

	selected, err := selectPipelines(cfg, args.Pipeline)
	if err != nil {
		return err
	}

	for _, pc := range selected {
		g, err := pipeline.Build(pc, taskRegistry)
		if err != nil {
			return err
		}

		logger.Info("running pipeline", "pipeline", g.ID(), "tasks", g.Len())
		if _, err := exec.Run(g, nil); err != nil {
			return fmt.Errorf("pipeline %s failed: %w", g.ID(), err)
		}
	}

	logger.Info("dagrun completed successfully")
	return nil
}

// newRegistry builds the metrics registry for the configured monitoring
// mode. A nil registry means metrics are off.
func newRegistry(cfg config.MonitoringConfig, logger *slog.Logger) (metrics.Registry, error) {
	switch cfg.Mode {
	case "push":
		hostname, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("failed to get hostname: %w", err)
		}
		return metrics.NewPushRegistry(metrics.PushConfig{
			URL:      cfg.URL,
			Prefix:   cfg.MetricsPrefix,
			Job:      cfg.JobName,
			Instance: hostname,
		}), nil
	case "scrape":
		registry, err := metrics.NewScrapeRegistry()
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics registry: %w", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", registry.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Listen, mux); err != nil {
				logger.Error("metrics listener failed", "listen", cfg.Listen, "error", err)
			}
		}()
		return registry, nil
	default:
		return nil, nil
	}
}

// selectPipelines resolves the -pipeline flag against the config. An
// empty name selects every pipeline in file order.
func selectPipelines(cfg config.Config, name string) ([]config.PipelineConfig, error) {
	if name == "" {
		return cfg.Pipelines, nil
	}
	for _, pc := range cfg.Pipelines {
		if pc.ID == name {
			return []config.PipelineConfig{pc}, nil
		}
	}
	return nil, fmt.Errorf("pipeline %q not found in config", name)
}

func showVersion() {
	props := buildinfo.Get()
	fmt.Printf("dagrun\n")
	fmt.Printf("Built: %s\n", props.BuildTime)
	fmt.Printf("Commit: %s\n", props.GitCommit)
}

func parseArgs() Args {
	configPath := flag.String("config", "", "Path to config file")
	configPathShort := flag.String("c", "", "Path to config file (shorthand)")
	pipelineName := flag.String("pipeline", "", "Run only the named pipeline")
	showVersion := flag.Bool("version", false, "Show version information")
	versionShort := flag.Bool("v", false, "Show version information (shorthand)")
	validate := flag.Bool("validate", false, "Validate configuration and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPipeline runner\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --config /etc/dagrun/config.yaml\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --config config.yaml --pipeline nightly_etl\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --config config.yaml --validate\n", os.Args[0])
	}

	flag.Parse()

	path := *configPath
	if path == "" && *configPathShort != "" {
		path = *configPathShort
	}

	version := *showVersion || *versionShort

	return Args{
		ConfigPath:  path,
		Pipeline:    *pipelineName,
		ShowVersion: version,
		Validate:    *validate,
	}
}
