package usecase

import (
	"github.com/secmon-lab/riskdeck/pkg/domain/interfaces"
	"github.com/secmon-lab/riskdeck/pkg/domain/model"
)

type UseCases struct {
	repo         interfaces.Repository
	registry     *model.SchemaRegistry
	ingestOption []IngestOption
	Ingest       *IngestUseCase
	Session      *SessionUseCase
}

type Option func(*UseCases)

// WithSchemaRegistry replaces the default workbook layout
func WithSchemaRegistry(registry *model.SchemaRegistry) Option {
	return func(uc *UseCases) {
		uc.registry = registry
	}
}

// WithIngestOptions passes options to the ingestion use case
func WithIngestOptions(opts ...IngestOption) Option {
	return func(uc *UseCases) {
		uc.ingestOption = append(uc.ingestOption, opts...)
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		registry: model.DefaultSchemaRegistry(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Ingest = NewIngestUseCase(uc.registry, uc.ingestOption...)
	uc.Session = NewSessionUseCase(repo, uc.Ingest)

	return uc
}

// Registry returns the workbook layout in use
func (uc *UseCases) Registry() *model.SchemaRegistry {
	return uc.registry
}
