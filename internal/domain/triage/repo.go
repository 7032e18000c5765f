package triage

import (
	"context"

	"github.com/google/uuid"
)

type RangeConfigRepository interface {
	Create(ctx context.Context, c *AgeBandConfig) error
	GetByID(ctx context.Context, id uuid.UUID) (*AgeBandConfig, error)
	ListByMetric(ctx context.Context, metric string) ([]*AgeBandConfig, error)
	ListAll(ctx context.Context) ([]*AgeBandConfig, error)
	Update(ctx context.Context, c *AgeBandConfig) error
	Delete(ctx context.Context, id uuid.UUID) error
}
