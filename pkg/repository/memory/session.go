package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskdeck/pkg/domain/model"
	"github.com/secmon-lab/riskdeck/pkg/utils/logging"
)

type sessionRepository struct {
	mu          sync.RWMutex
	sessions    map[model.SessionID]*model.Session
	maxSessions int
}

func newSessionRepository() *sessionRepository {
	return &sessionRepository{
		sessions: make(map[model.SessionID]*model.Session),
	}
}

func (r *sessionRepository) Put(ctx context.Context, session *model.Session) error {
	if session == nil {
		return goerr.New("session is nil")
	}
	if err := session.ID.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; !exists && r.maxSessions > 0 {
		for len(r.sessions) >= r.maxSessions {
			r.evictOldest(ctx)
		}
	}

	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

// evictOldest must be called with the write lock held
func (r *sessionRepository) evictOldest(ctx context.Context) {
	var oldest *model.Session
	for _, s := range r.sessions {
		if oldest == nil || s.LoadedAt.Before(oldest.LoadedAt) {
			oldest = s
		}
	}
	if oldest != nil {
		delete(r.sessions, oldest.ID)
		logging.From(ctx).Info("session evicted",
			model.SessionIDKey, oldest.ID,
			"source", oldest.Source,
			"loaded_at", oldest.LoadedAt,
			"max_sessions", r.maxSessions,
		)
	}
}

func (r *sessionRepository) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrSessionNotFound, "session not found", goerr.V(model.SessionIDKey, id))
	}

	// Tables are immutable, so a shallow copy is enough
	found := *session
	return &found, nil
}

func (r *sessionRepository) List(ctx context.Context) ([]*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*model.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		found := *s
		sessions = append(sessions, &found)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].LoadedAt.Equal(sessions[j].LoadedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].LoadedAt.Before(sessions[j].LoadedAt)
	})
	return sessions, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id model.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id]; !exists {
		return goerr.Wrap(model.ErrSessionNotFound, "session not found", goerr.V(model.SessionIDKey, id))
	}
	delete(r.sessions, id)
	return nil
}
