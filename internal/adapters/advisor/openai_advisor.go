package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
	"github.com/hsdfat8/gridops/internal/observability"
)

var _ ports.Advisor = (*OpenAIAdvisor)(nil)

const completionsPath = "/v1/chat/completions"

const logAnalysisPrompt = `You are an expert analyst for electrical substation and grid operations.
Analyze the activity logs provided by the user and respond with a JSON object of the form:
{"summary": string,
 "potentialIssues": [{"issue": string, "severity": "low"|"medium"|"high", "recommendation": string}],
 "performanceInsights": [string],
 "anomalies": [{"description": string, "severity": "low"|"medium"|"high", "timestamp": string}]}`

const energyPrompt = `You are an energy efficiency expert for electrical grid infrastructure.
Review the energy readings provided by the user and respond with a JSON object of the form:
{"summary": string,
 "recommendations": [{"title": string, "description": string, "priority": "low"|"medium"|"high", "potentialSavings": string}],
 "potentialSavings": string}`

// Config holds the chat completions client settings
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// OpenAIAdvisor asks an OpenAI-compatible chat completions endpoint for
// narrative analyses. Every failure degrades to the fixed fallback.
type OpenAIAdvisor struct {
	client *resty.Client
	model  string
	log    observability.Logger
}

// NewOpenAIAdvisor creates an advisor. The caller keeps the advisor nil when
// no API key is configured.
func NewOpenAIAdvisor(cfg Config) *OpenAIAdvisor {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &OpenAIAdvisor{
		client: client,
		model:  cfg.Model,
		log:    observability.New("advisor", ""),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (a *OpenAIAdvisor) AnalyzeLogs(ctx context.Context, logs []*models.ActivityLog) models.LogAnalysisResult {
	var analysis models.LogAnalysis
	if err := a.complete(ctx, logAnalysisPrompt, logs, &analysis); err != nil {
		a.log.Warnw("Log analysis degraded", "error", err, "logs", len(logs))
		return models.LogAnalysisResult{
			Outcome:  models.AdvisorDegraded,
			Analysis: models.FallbackLogAnalysis(),
			Reason:   err.Error(),
		}
	}

	if analysis.PotentialIssues == nil {
		analysis.PotentialIssues = []models.Issue{}
	}
	if analysis.PerformanceInsights == nil {
		analysis.PerformanceInsights = []string{}
	}
	if analysis.Anomalies == nil {
		analysis.Anomalies = []models.Anomaly{}
	}
	return models.LogAnalysisResult{Outcome: models.AdvisorOK, Analysis: analysis}
}

func (a *OpenAIAdvisor) RecommendEnergy(ctx context.Context, readings []*models.EnergyReading) models.EnergyRecommendationsResult {
	var recs models.EnergyRecommendations
	if err := a.complete(ctx, energyPrompt, readings, &recs); err != nil {
		a.log.Warnw("Energy recommendations degraded", "error", err, "readings", len(readings))
		return models.EnergyRecommendationsResult{
			Outcome:         models.AdvisorDegraded,
			Recommendations: models.FallbackEnergyRecommendations(),
			Reason:          err.Error(),
		}
	}

	if recs.Recommendations == nil {
		recs.Recommendations = []models.Recommendation{}
	}
	return models.EnergyRecommendationsResult{Outcome: models.AdvisorOK, Recommendations: recs}
}

// complete sends payload as the user message and decodes the JSON content of
// the first choice into out.
func (a *OpenAIAdvisor) complete(ctx context.Context, prompt string, payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req := chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: string(data)},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	var result chatResponse
	var failure apiError
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&failure).
		Post(completionsPath)
	if err != nil {
		return fmt.Errorf("chat completion request: %w", err)
	}
	if resp.IsError() {
		if failure.Error.Message != "" {
			return fmt.Errorf("chat completion status %d: %s", resp.StatusCode(), failure.Error.Message)
		}
		return fmt.Errorf("chat completion status %d", resp.StatusCode())
	}

	if len(result.Choices) == 0 {
		return errors.New("chat completion returned no choices")
	}
	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return errors.New("chat completion returned empty content")
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode analysis: %w", err)
	}

	a.log.Debugw("Chat completion succeeded", "model", a.model, "status", resp.StatusCode())
	return nil
}
