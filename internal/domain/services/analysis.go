package services

import (
	"context"

	"medchain/internal/domain/models"
)

// Analyzer derives a structured suggestion from free-text observations
type Analyzer interface {
	Analyze(ctx context.Context, symptoms, notes string) (*models.Analysis, error)
}
