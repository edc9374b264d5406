package model

// ScoringMethod records how a run arrived at its scores.
type ScoringMethod string

const (
	// ScoringMethodHybrid is the normal mode: rule points plus AI points.
	ScoringMethodHybrid ScoringMethod = "hybrid"
	// ScoringMethodRuleOnly reports a run that started with no classifier
	// configured.
	ScoringMethodRuleOnly ScoringMethod = "rule-based only"
)

// ScoreBreakdown splits a final score into its rule and AI components.
type ScoreBreakdown struct {
	RuleScore int `json:"rule_score"`
	AIScore   int `json:"ai_score"`
}

// ScoreResult is one scored lead within a run report. Breakdown is nil for
// leads scored in the rule-only fallback, which has no AI component.
type ScoreResult struct {
	Name      string          `json:"name"`
	Role      string          `json:"role"`
	Company   string          `json:"company"`
	Intent    Intent          `json:"intent"`
	Score     int             `json:"score"`
	Reasoning string          `json:"reasoning"`
	Breakdown *ScoreBreakdown `json:"score_breakdown,omitempty"`
}

// RunReport summarizes a completed scoring run. Skipped counts leads left
// unscored by per-lead failures; they are picked up again by the next run.
type RunReport struct {
	Results       []ScoreResult `json:"results"`
	TotalScored   int           `json:"total_scored"`
	Skipped       int           `json:"skipped,omitempty"`
	ScoringMethod ScoringMethod `json:"scoring_method"`
}
