package domain

import "time"

// UnknownRiasecCode marca un perfil que todavia no completo la evaluacion.
const UnknownRiasecCode = "UNK"

// Profile es el resultado persistido de la evaluacion OCEAN/RIASEC de un usuario.
type Profile struct {
	UserID      string         `json:"user_id"`
	RiasecCode  string         `json:"riasec_code"`
	OceanScores map[string]int `json:"ocean_scores"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// DefaultOceanScores devuelve el perfil neutro (50 por rasgo) de un usuario nuevo.
func DefaultOceanScores() map[string]int {
	return map[string]int{
		"Openness":          50,
		"Conscientiousness": 50,
		"Extraversion":      50,
		"Agreeableness":     50,
		"Neuroticism":       50,
	}
}

// UserView es la forma que devuelven /login y /user/{id}.
type UserView struct {
	UserID         string         `json:"user_id"`
	Username       string         `json:"username"`
	EducationLevel string         `json:"education_level"`
	RiasecCode     string         `json:"riasec_code"`
	OceanScores    map[string]int `json:"ocean_scores"`
}

func NewUserView(u User, p Profile) UserView {
	scores := p.OceanScores
	if scores == nil {
		scores = map[string]int{}
	}
	return UserView{
		UserID:         u.ID,
		Username:       u.Username,
		EducationLevel: u.EducationLevel,
		RiasecCode:     p.RiasecCode,
		OceanScores:    scores,
	}
}
