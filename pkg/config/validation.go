package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration against the struct validation tags
// and a few cross-field rules the tags cannot express.
func Validate(cfg *Config) error {
	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid configuration: %s", formatValidationErrors(verrs))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Ping cadence must leave room for at least one missed ping before
	// the timeout fires.
	if cfg.Server.PingInterval >= cfg.Server.PingTimeout {
		return fmt.Errorf("invalid configuration: server.ping_interval (%s) must be shorter than server.ping_timeout (%s)",
			cfg.Server.PingInterval, cfg.Server.PingTimeout)
	}

	// The reaper must run at least as often as sessions expire, or idle
	// sessions linger past their timeout.
	if cfg.Editor.SessionSweepInterval > cfg.Editor.SessionIdle {
		return fmt.Errorf("invalid configuration: editor.session_sweep_interval (%s) must not exceed editor.session_idle (%s)",
			cfg.Editor.SessionSweepInterval, cfg.Editor.SessionIdle)
	}

	return nil
}

// formatValidationErrors renders validator errors as a readable list.
func formatValidationErrors(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %q", fieldPath(fe), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// fieldPath renders the struct namespace without the leading type name.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
