package ports

import (
	"context"

	"github.com/hsdfat8/gridops/internal/domain/models"
)

// Advisor is the optional AI capability. Implementations absorb every
// external failure and report it as a degraded outcome instead of an error.
type Advisor interface {
	AnalyzeLogs(ctx context.Context, logs []*models.ActivityLog) models.LogAnalysisResult
	RecommendEnergy(ctx context.Context, readings []*models.EnergyReading) models.EnergyRecommendationsResult
}
