package models

// Issue is a potential problem surfaced by log analysis
type Issue struct {
	Issue          string `json:"issue"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation"`
}

// Anomaly is an unusual pattern surfaced by log analysis
type Anomaly struct {
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// LogAnalysis is the narrative analysis of recent activity logs
type LogAnalysis struct {
	Summary             string    `json:"summary,omitempty"`
	PotentialIssues     []Issue   `json:"potentialIssues"`
	PerformanceInsights []string  `json:"performanceInsights"`
	Anomalies           []Anomaly `json:"anomalies"`
}

// Recommendation is a single energy optimisation suggestion
type Recommendation struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Priority         string `json:"priority"`
	PotentialSavings string `json:"potentialSavings,omitempty"`
}

// EnergyRecommendations is the narrative analysis of recent energy readings
type EnergyRecommendations struct {
	Summary          string           `json:"summary,omitempty"`
	Recommendations  []Recommendation `json:"recommendations"`
	PotentialSavings string           `json:"potentialSavings"`
}

// AdvisorOutcome tells callers whether an analysis is genuine or the fallback
type AdvisorOutcome string

const (
	AdvisorOK       AdvisorOutcome = "ok"
	AdvisorDegraded AdvisorOutcome = "degraded"
)

// LogAnalysisResult is either a model analysis or the degraded fallback
type LogAnalysisResult struct {
	Outcome  AdvisorOutcome
	Analysis LogAnalysis
	Reason   string
}

// EnergyRecommendationsResult is either a model analysis or the degraded fallback
type EnergyRecommendationsResult struct {
	Outcome         AdvisorOutcome
	Recommendations EnergyRecommendations
	Reason          string
}

// FallbackLogAnalysis is returned whenever the AI service cannot produce an analysis
func FallbackLogAnalysis() LogAnalysis {
	return LogAnalysis{
		PotentialIssues: []Issue{{
			Issue:          "AI analysis service unavailable",
			Severity:       "low",
			Recommendation: "Review the activity logs manually until the analysis service is restored.",
		}},
		PerformanceInsights: []string{},
		Anomalies:           []Anomaly{},
	}
}

// FallbackEnergyRecommendations is returned whenever the AI service cannot produce recommendations
func FallbackEnergyRecommendations() EnergyRecommendations {
	return EnergyRecommendations{
		Recommendations: []Recommendation{{
			Title:       "AI recommendation service unavailable",
			Description: "Energy recommendations could not be generated. Review consumption trends manually.",
			Priority:    "low",
		}},
		PotentialSavings: "unknown",
	}
}
