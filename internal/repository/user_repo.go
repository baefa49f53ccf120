package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"student-compass/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	// CreateWithProfile inserta el usuario y su perfil inicial en una sola transaccion.
	CreateWithProfile(ctx context.Context, user domain.User, profile domain.Profile) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) CreateWithProfile(ctx context.Context, user domain.User, profile domain.Profile) error {
	scores, err := json.Marshal(profile.OceanScores)
	if err != nil {
		return fmt.Errorf("encode ocean scores: %w", err)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insertUser = `
		INSERT INTO users (id, username, password_hash, education_level, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, insertUser,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.EducationLevel,
		user.CreatedAt,
	); err != nil {
		return translatePgError(err)
	}

	const insertProfile = `
		INSERT INTO user_profiles (user_id, riasec_code, ocean_scores, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, insertProfile,
		profile.UserID,
		profile.RiasecCode,
		scores,
		profile.UpdatedAt,
	); err != nil {
		return translatePgError(err)
	}

	return tx.Commit(ctx)
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, username, password_hash, education_level, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(ctx, query, id)
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	const query = `
		SELECT id, username, password_hash, education_level, created_at
		FROM users
		WHERE username = $1
	`
	return r.scanOne(ctx, query, username)
}

func (r *PgUserRepository) scanOne(ctx context.Context, query string, arg string) (domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.EducationLevel,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, translatePgError(err)
	}
	return u, nil
}
