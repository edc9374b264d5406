package model

import "time"

// Intent buckets a lead's final score into a buying-intent label.
type Intent string

const (
	IntentHigh   Intent = "High"
	IntentMedium Intent = "Medium"
	IntentLow    Intent = "Low"
)

// Intent thresholds over the 0-100 final score.
const (
	HighIntentMin   = 70
	MediumIntentMin = 40
)

// IntentForScore maps a final score to its intent bucket.
func IntentForScore(score int) Intent {
	switch {
	case score >= HighIntentMin:
		return IntentHigh
	case score >= MediumIntentMin:
		return IntentMedium
	default:
		return IntentLow
	}
}

// Lead is a prospect row. Score, Intent and Reasoning are nil until a
// scoring run has persisted a result for the lead. Seq is the store's
// insertion counter; duplicate handling uses it to break created_at ties.
type Lead struct {
	ID          string    `json:"id"`
	Seq         int64     `json:"-"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Company     string    `json:"company"`
	Industry    string    `json:"industry"`
	Location    string    `json:"location"`
	LinkedInBio string    `json:"linkedin_bio"`
	Intent      *Intent   `json:"intent,omitempty"`
	Score       *int      `json:"score,omitempty"`
	Reasoning   *string   `json:"reasoning,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Scored reports whether the lead carries a persisted score.
func (l *Lead) Scored() bool {
	return l.Score != nil
}
