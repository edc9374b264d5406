package model

import "time"

// Offer is the product being sold, against which leads are scored.
type Offer struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ValueProps    []string  `json:"value_props"`
	IdealUseCases []string  `json:"ideal_use_cases"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
