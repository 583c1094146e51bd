package repository_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskdeck/pkg/domain/interfaces"
	"github.com/secmon-lab/riskdeck/pkg/domain/model"
	"github.com/secmon-lab/riskdeck/pkg/repository/memory"
	"github.com/secmon-lab/riskdeck/pkg/utils/logging"
)

func newSession(source string, loadedAt time.Time) *model.Session {
	return &model.Session{
		ID:       model.NewSessionID(),
		Source:   source,
		LoadedAt: loadedAt,
		Tables:   model.NewTableSet(source, nil, nil, nil, nil),
	}
}

func runSessionRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put and Get round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		s := newSession("register.xlsx", time.Now())

		gt.NoError(t, repo.Session().Put(ctx, s)).Required()

		got, err := repo.Session().Get(ctx, s.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(s.ID)
		gt.Value(t, got.Source).Equal("register.xlsx")
		gt.Value(t, got.Tables).Equal(s.Tables)
	})

	t.Run("Get returns a copy", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		s := newSession("register.xlsx", time.Now())
		gt.NoError(t, repo.Session().Put(ctx, s)).Required()

		got, err := repo.Session().Get(ctx, s.ID)
		gt.NoError(t, err).Required()
		got.Source = "changed.xlsx"

		again, err := repo.Session().Get(ctx, s.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, again.Source).Equal("register.xlsx")
	})

	t.Run("Put rejects invalid IDs", func(t *testing.T) {
		repo := newRepo(t)
		s := newSession("register.xlsx", time.Now())
		s.ID = "not-a-uuid"

		err := repo.Session().Put(context.Background(), s)
		gt.Error(t, err).Is(model.ErrInvalidSession)
	})

	t.Run("Get unknown session", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Session().Get(context.Background(), model.NewSessionID())
		gt.Error(t, err).Is(model.ErrSessionNotFound)
	})

	t.Run("List orders by load time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now()
		later := newSession("later.xlsx", now.Add(time.Minute))
		earlier := newSession("earlier.xlsx", now)

		gt.NoError(t, repo.Session().Put(ctx, later)).Required()
		gt.NoError(t, repo.Session().Put(ctx, earlier)).Required()

		sessions, err := repo.Session().List(ctx)
		gt.NoError(t, err).Required()
		gt.A(t, sessions).Length(2).Required()
		gt.Value(t, sessions[0].Source).Equal("earlier.xlsx")
		gt.Value(t, sessions[1].Source).Equal("later.xlsx")
	})

	t.Run("Delete discards the session", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		s := newSession("register.xlsx", time.Now())
		gt.NoError(t, repo.Session().Put(ctx, s)).Required()

		gt.NoError(t, repo.Session().Delete(ctx, s.ID)).Required()

		_, err := repo.Session().Get(ctx, s.ID)
		gt.Error(t, err).Is(model.ErrSessionNotFound)
		gt.Error(t, repo.Session().Delete(ctx, s.ID)).Is(model.ErrSessionNotFound)
	})

	t.Run("concurrent access", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s := newSession("register.xlsx", time.Now())
				if err := repo.Session().Put(ctx, s); err != nil {
					t.Errorf("failed to put session: %v", err)
					return
				}
				if _, err := repo.Session().Get(ctx, s.ID); err != nil {
					t.Errorf("failed to get session: %v", err)
				}
			}()
		}
		wg.Wait()

		sessions, err := repo.Session().List(ctx)
		gt.NoError(t, err).Required()
		gt.A(t, sessions).Length(20)
	})
}

func TestMemorySessionRepository(t *testing.T) {
	runSessionRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestMemorySessionRepository_MaxSessions(t *testing.T) {
	repo := memory.New(memory.WithMaxSessions(2))
	var logs bytes.Buffer
	ctx := logging.With(context.Background(), slog.New(slog.NewJSONHandler(&logs, nil)))
	now := time.Now()

	first := newSession("first.xlsx", now)
	second := newSession("second.xlsx", now.Add(time.Second))
	third := newSession("third.xlsx", now.Add(2*time.Second))

	for _, s := range []*model.Session{first, second, third} {
		gt.NoError(t, repo.Session().Put(ctx, s)).Required()
	}

	_, err := repo.Session().Get(ctx, first.ID)
	if !errors.Is(err, model.ErrSessionNotFound) {
		t.Errorf("expected oldest session to be evicted, got %v", err)
	}

	sessions, err := repo.Session().List(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, sessions).Length(2)

	gt.String(t, logs.String()).Contains(`"msg":"session evicted"`)
	gt.String(t, logs.String()).Contains(string(first.ID))
	gt.String(t, logs.String()).NotContains(string(second.ID))

	// replacing an existing session does not evict
	gt.NoError(t, repo.Session().Put(ctx, second)).Required()
	_, err = repo.Session().Get(ctx, third.ID)
	gt.NoError(t, err)
}
