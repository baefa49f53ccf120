package domain

import "time"

const (
	EducationSecondary     = "Secondary"
	EducationPostSecondary = "Post-Secondary"
)

type User struct {
	ID             string    `json:"user_id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	EducationLevel string    `json:"education_level"`
	CreatedAt      time.Time `json:"created_at"`
}

// ValidEducationLevel reporta si el nivel educativo es uno de los soportados.
func ValidEducationLevel(level string) bool {
	return level == EducationSecondary || level == EducationPostSecondary
}
