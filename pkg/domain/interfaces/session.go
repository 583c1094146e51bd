package interfaces

import (
	"context"

	"github.com/secmon-lab/riskdeck/pkg/domain/model"
)

type SessionRepository interface {
	// Put stores a session, replacing any session with the same ID
	Put(ctx context.Context, session *model.Session) error

	// Get retrieves a session by ID
	Get(ctx context.Context, id model.SessionID) (*model.Session, error)

	// List retrieves all sessions ordered by load time
	List(ctx context.Context) ([]*model.Session, error)

	// Delete discards a session and its tables
	Delete(ctx context.Context, id model.SessionID) error
}
