package domain

import "time"

// AssessmentCompleted se publica cuando un usuario termina la evaluacion.
type AssessmentCompleted struct {
	UserID      string         `json:"user_id"`
	SessionID   string         `json:"session_id,omitempty"`
	OceanScores map[string]int `json:"ocean_scores"`
	RiasecCode  string         `json:"riasec_code"`
	CompletedAt time.Time      `json:"completed_at"`
}
