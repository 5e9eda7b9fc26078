package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// sampleConfig is the commented configuration written by "tessera init".
// Values match the compiled-in defaults.
const sampleConfig = `# Tessera Configuration File
#
# All values shown are the defaults; edit them to customize your setup.
#
# Any option can be overridden with an environment variable using the
# TESSERA_ prefix, e.g. TESSERA_LOGGING_LEVEL=DEBUG or
# TESSERA_SERVER_PORT=9000.

logging:
  # Minimum log level: DEBUG, INFO, WARN, ERROR
  level: INFO
  # Output format: text, json
  format: text
  # Destination: stdout, stderr, or a file path
  output: stdout

telemetry:
  # OpenTelemetry distributed tracing (OTLP gRPC)
  enabled: false
  endpoint: localhost:4317
  insecure: true
  sample_rate: 1.0
  profiling:
    # Pyroscope continuous profiling
    enabled: false
    endpoint: http://localhost:4040

# Maximum time to wait for graceful shutdown
shutdown_timeout: 30s

server:
  # HTTP listen port for the WebSocket endpoint
  port: 8080
  # Restrict WebSocket upgrades to one origin; empty allows any
  frontend_origin: ""
  # Connection liveness: the server pings every ping_interval and drops
  # connections silent for ping_timeout
  ping_interval: 25s
  ping_timeout: 60s

editor:
  # How long an edit session stays live without activity
  session_idle: 30s
  # How often the session reaper runs
  session_sweep_interval: 10s
  # Default lifetime of a path lock
  lock_ttl: 60s

events:
  # In-memory replay log bound; oldest events are evicted past it
  max_log: 1000

metrics:
  # Prometheus /metrics endpoint on a dedicated port
  enabled: false
  port: 9090
`

// InitConfig creates a sample configuration file at the default location
// ($XDG_CONFIG_HOME/tessera/config.yaml). Returns the path of the created
// file. Fails if the file already exists unless force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath creates a sample configuration file at the given path,
// creating parent directories as needed. Fails if the file already exists
// unless force is set.
func InitConfigToPath(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
