package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskdeck/pkg/domain/interfaces"
	"github.com/secmon-lab/riskdeck/pkg/repository/memory"
	"github.com/secmon-lab/riskdeck/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for the session store
type Repository struct {
	maxSessions int
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "max-sessions",
			Usage:       "Maximum number of loaded workbooks kept in memory (0 for unlimited)",
			Value:       16,
			Sources:     cli.EnvVars("RISKDECK_MAX_SESSIONS"),
			Destination: &r.maxSessions,
		},
	}
}

// MaxSessions returns the configured session limit
func (r *Repository) MaxSessions() int {
	return r.maxSessions
}

// Configure returns the in-memory session store
func (r *Repository) Configure() (interfaces.Repository, error) {
	if r.maxSessions < 0 {
		return nil, goerr.Wrap(ErrInvalidConfig, "max-sessions must not be negative", goerr.V("max_sessions", r.maxSessions))
	}
	logging.Default().Info("Using in-memory session store", "max_sessions", r.maxSessions)
	return memory.New(memory.WithMaxSessions(r.maxSessions)), nil
}
