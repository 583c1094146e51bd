package usecase

import (
	"context"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskdeck/pkg/domain/interfaces"
	"github.com/secmon-lab/riskdeck/pkg/domain/model"
	"github.com/secmon-lab/riskdeck/pkg/service/workbook"
	"github.com/secmon-lab/riskdeck/pkg/utils/logging"
	"github.com/secmon-lab/riskdeck/pkg/utils/safe"
)

// SessionUseCase owns the lifecycle of uploaded workbooks. Each upload
// becomes a new session with its own tables; closing a session discards them.
type SessionUseCase struct {
	repo   interfaces.Repository
	ingest *IngestUseCase
	now    func() time.Time
}

func NewSessionUseCase(repo interfaces.Repository, ingest *IngestUseCase) *SessionUseCase {
	return &SessionUseCase{
		repo:   repo,
		ingest: ingest,
		now:    time.Now,
	}
}

// Open reads an uploaded workbook, validates it and stores a new session
func (uc *SessionUseCase) Open(ctx context.Context, name string, r io.Reader) (*model.Session, error) {
	wb, err := workbook.Open(ctx, name, r)
	if err != nil {
		return nil, err
	}
	defer safe.Close(ctx, wb)

	return uc.OpenSource(ctx, wb)
}

// OpenSource validates an already opened workbook and stores a new session
func (uc *SessionUseCase) OpenSource(ctx context.Context, src interfaces.WorkbookSource) (*model.Session, error) {
	ts, err := uc.ingest.Load(ctx, src)
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		ID:       model.NewSessionID(),
		Source:   src.Name(),
		LoadedAt: uc.now().UTC(),
		Tables:   ts,
	}
	if err := uc.repo.Session().Put(ctx, session); err != nil {
		return nil, goerr.Wrap(err, "failed to store session", goerr.V(model.SessionIDKey, session.ID))
	}

	logging.From(ctx).Info("session opened", "session_id", session.ID, "workbook", session.Source)
	return session, nil
}

func (uc *SessionUseCase) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return uc.repo.Session().Get(ctx, id)
}

// Portfolio returns the query view of a session's tables
func (uc *SessionUseCase) Portfolio(ctx context.Context, id model.SessionID) (*Portfolio, error) {
	session, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewPortfolio(session.Tables), nil
}

func (uc *SessionUseCase) List(ctx context.Context) ([]*model.Session, error) {
	return uc.repo.Session().List(ctx)
}

// Close discards a session and its tables
func (uc *SessionUseCase) Close(ctx context.Context, id model.SessionID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if err := uc.repo.Session().Delete(ctx, id); err != nil {
		return err
	}
	logging.From(ctx).Info("session closed", "session_id", id)
	return nil
}
