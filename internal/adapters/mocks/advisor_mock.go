package mocks

import (
	"context"
	"sync"

	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
)

// MockAdvisor is a mock implementation of Advisor for testing.
// Without overrides it answers with the degraded fallbacks.
type MockAdvisor struct {
	mu           sync.Mutex
	LastLogs     []*models.ActivityLog
	LastReadings []*models.EnergyReading

	// Function overrides for testing
	AnalyzeLogsFunc     func(ctx context.Context, logs []*models.ActivityLog) models.LogAnalysisResult
	RecommendEnergyFunc func(ctx context.Context, readings []*models.EnergyReading) models.EnergyRecommendationsResult
}

var _ ports.Advisor = (*MockAdvisor)(nil)

// NewMockAdvisor creates a new mock advisor
func NewMockAdvisor() *MockAdvisor {
	return &MockAdvisor{}
}

func (m *MockAdvisor) AnalyzeLogs(ctx context.Context, logs []*models.ActivityLog) models.LogAnalysisResult {
	m.mu.Lock()
	m.LastLogs = logs
	m.mu.Unlock()
	if m.AnalyzeLogsFunc != nil {
		return m.AnalyzeLogsFunc(ctx, logs)
	}
	return models.LogAnalysisResult{
		Outcome:  models.AdvisorDegraded,
		Analysis: models.FallbackLogAnalysis(),
		Reason:   "mock",
	}
}

func (m *MockAdvisor) RecommendEnergy(ctx context.Context, readings []*models.EnergyReading) models.EnergyRecommendationsResult {
	m.mu.Lock()
	m.LastReadings = readings
	m.mu.Unlock()
	if m.RecommendEnergyFunc != nil {
		return m.RecommendEnergyFunc(ctx, readings)
	}
	return models.EnergyRecommendationsResult{
		Outcome:         models.AdvisorDegraded,
		Recommendations: models.FallbackEnergyRecommendations(),
		Reason:          "mock",
	}
}
