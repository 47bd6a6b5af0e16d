package services

import (
	"context"

	"github.com/SscSPs/expense_tracker/internal/core/domain"
)

// NormalizerSvc turns a draft from any ingestion channel into the canonical shape.
type NormalizerSvc interface {
	Normalize(ctx context.Context, raw domain.RawDraft) (*domain.CanonicalDraft, error)
}
