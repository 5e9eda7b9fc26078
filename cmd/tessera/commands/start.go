package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tesseralab/tessera/internal/logger"
	"github.com/tesseralab/tessera/internal/telemetry"
	"github.com/tesseralab/tessera/pkg/config"
	"github.com/tesseralab/tessera/pkg/editor"
	"github.com/tesseralab/tessera/pkg/metrics"
	"github.com/tesseralab/tessera/pkg/metrics/prometheus"
	"github.com/tesseralab/tessera/pkg/realtime"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Tessera server",
	Long: `Start the Tessera server with the specified configuration.

The server runs in the foreground; use a process supervisor for
daemonization.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/tessera/config.yaml.

Examples:
  # Start with default config location
  tessera start

  # Start with custom config file
  tessera start --config /etc/tessera/config.yaml

  # Start with environment variable overrides
  TESSERA_LOGGING_LEVEL=DEBUG tessera start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry (if enabled)
	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "tessera",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	// Initialize Pyroscope profiling (if enabled)
	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "tessera",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	fmt.Println("Tessera - Realtime collaborative editing backbone")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	// Initialize metrics FIRST (before creating components that use metrics)
	// so metrics.IsEnabled() returns true when the constructors run
	metrics.Init(cfg.Metrics.Enabled)
	editorMetrics := prometheus.NewEditorMetrics()
	realtimeMetrics := prometheus.NewRealtimeMetrics()
	if cfg.Metrics.Enabled {
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}

	// Assemble the editing engine
	locks := editor.NewLockTable(cfg.Editor.LockTTL)
	sessions := editor.NewSessionRegistry(cfg.Editor.SessionIdle, cfg.Editor.SessionSweepInterval, editorMetrics)
	store := editor.NewStore(locks, sessions, editorMetrics)
	logger.Info("Editing engine initialized",
		"documents", store.DocumentCount(),
		"session_idle", cfg.Editor.SessionIdle,
		"lock_ttl", cfg.Editor.LockTTL)

	// Assemble the realtime server; it shares the session registry so
	// disconnects end the sessions bound to the connection
	srv := realtime.NewServer(realtime.Options{
		Port:            cfg.Server.Port,
		FrontendOrigin:  cfg.Server.FrontendOrigin,
		PingInterval:    cfg.Server.PingInterval,
		PingTimeout:     cfg.Server.PingTimeout,
		MaxEventLog:     cfg.Events.MaxLog,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, sessions, realtimeMetrics)
	logger.Info("Realtime server configured",
		"port", cfg.Server.Port,
		"max_event_log", cfg.Events.MaxLog)

	// Background workers: session reaper, metrics endpoint, config watch
	go sessions.Run(ctx)

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Port); err != nil {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	// Hot-reload the log level when the config file is rewritten
	go func() {
		if err := config.Watch(ctx, GetConfigFile(), func(next *config.Config) {
			logger.SetLevel(next.Logging.Level)
			logger.SetFormat(next.Logging.Format)
		}); err != nil {
			logger.Warn("config watch stopped", "error", err)
		}
	}()

	// Start server in background
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start(ctx)
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		// Wait for server to shut down gracefully
		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error", "error", err)
			return err
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("Server error", "error", err)
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
