package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"student-compass/internal/domain"
)

type ProfileRepository interface {
	Upsert(ctx context.Context, profile domain.Profile) error
	GetByUserID(ctx context.Context, userID string) (domain.Profile, error)
}

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

func (r *PgProfileRepository) Upsert(ctx context.Context, profile domain.Profile) error {
	const query = `
		INSERT INTO user_profiles (user_id, riasec_code, ocean_scores, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET
			riasec_code = EXCLUDED.riasec_code,
			ocean_scores = EXCLUDED.ocean_scores,
			updated_at = EXCLUDED.updated_at
	`
	scores, err := json.Marshal(profile.OceanScores)
	if err != nil {
		return fmt.Errorf("encode ocean scores: %w", err)
	}
	_, err = r.pool.Exec(ctx, query,
		profile.UserID,
		profile.RiasecCode,
		scores,
		profile.UpdatedAt,
	)
	return translatePgError(err)
}

func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	const query = `
		SELECT user_id, riasec_code, ocean_scores, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`
	var (
		profile domain.Profile
		raw     []byte
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.RiasecCode,
		&raw,
		&profile.UpdatedAt,
	)
	if err != nil {
		return domain.Profile{}, translatePgError(err)
	}
	if err := json.Unmarshal(raw, &profile.OceanScores); err != nil {
		return domain.Profile{}, fmt.Errorf("decode ocean scores: %w", err)
	}
	return profile, nil
}
