package memory

import (
	"github.com/secmon-lab/riskdeck/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	session *sessionRepository
}

var _ interfaces.Repository = &Memory{}

type Option func(*Memory)

// WithMaxSessions bounds the number of stored sessions. When the bound is
// reached the oldest session is discarded. Zero means unbounded.
func WithMaxSessions(n int) Option {
	return func(m *Memory) {
		m.session.maxSessions = n
	}
}

func New(opts ...Option) *Memory {
	m := &Memory{
		session: newSessionRepository(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Session() interfaces.SessionRepository {
	return m.session
}
