package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"student-compass/internal/domain"
)

// Los repositorios SQLite guardan timestamps como texto de ancho fijo en UTC
// para que ORDER BY sobre la columna respete el orden cronologico.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	_ UserRepository    = (*SqliteUserRepository)(nil)
	_ ProfileRepository = (*SqliteProfileRepository)(nil)
	_ BookingRepository = (*SqliteBookingRepository)(nil)
	_ UserRepository    = (*PgUserRepository)(nil)
	_ ProfileRepository = (*PgProfileRepository)(nil)
	_ BookingRepository = (*PgBookingRepository)(nil)
)

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, s)
}

type SqliteUserRepository struct {
	db *sql.DB
}

func NewSqliteUserRepository(db *sql.DB) *SqliteUserRepository {
	return &SqliteUserRepository{db: db}
}

func (r *SqliteUserRepository) CreateWithProfile(ctx context.Context, user domain.User, profile domain.Profile) error {
	scores, err := json.Marshal(profile.OceanScores)
	if err != nil {
		return fmt.Errorf("encode ocean scores: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, education_level, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash, user.EducationLevel, formatTime(user.CreatedAt),
	); err != nil {
		return translateSQLiteError(err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, riasec_code, ocean_scores, updated_at)
		VALUES (?, ?, ?, ?)`,
		profile.UserID, profile.RiasecCode, string(scores), formatTime(profile.UpdatedAt),
	); err != nil {
		return translateSQLiteError(err)
	}
	return tx.Commit()
}

func (r *SqliteUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.scanOne(ctx, `
		SELECT id, username, password_hash, education_level, created_at
		FROM users WHERE id = ?`, id)
}

func (r *SqliteUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.scanOne(ctx, `
		SELECT id, username, password_hash, education_level, created_at
		FROM users WHERE username = ?`, username)
}

func (r *SqliteUserRepository) scanOne(ctx context.Context, query, arg string) (domain.User, error) {
	var (
		u       domain.User
		created string
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.EducationLevel, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return domain.User{}, fmt.Errorf("parse created_at: %w", err)
	}
	return u, nil
}

type SqliteProfileRepository struct {
	db *sql.DB
}

func NewSqliteProfileRepository(db *sql.DB) *SqliteProfileRepository {
	return &SqliteProfileRepository{db: db}
}

func (r *SqliteProfileRepository) Upsert(ctx context.Context, profile domain.Profile) error {
	scores, err := json.Marshal(profile.OceanScores)
	if err != nil {
		return fmt.Errorf("encode ocean scores: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, riasec_code, ocean_scores, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			riasec_code = excluded.riasec_code,
			ocean_scores = excluded.ocean_scores,
			updated_at = excluded.updated_at`,
		profile.UserID, profile.RiasecCode, string(scores), formatTime(profile.UpdatedAt),
	)
	return translateSQLiteError(err)
}

func (r *SqliteProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	var (
		p       domain.Profile
		raw     string
		updated string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, riasec_code, ocean_scores, updated_at
		FROM user_profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.RiasecCode, &raw, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, err
	}
	if err := json.Unmarshal([]byte(raw), &p.OceanScores); err != nil {
		return domain.Profile{}, fmt.Errorf("decode ocean scores: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.Profile{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return p, nil
}

type SqliteBookingRepository struct {
	db *sql.DB
}

func NewSqliteBookingRepository(db *sql.DB) *SqliteBookingRepository {
	return &SqliteBookingRepository{db: db}
}

func (r *SqliteBookingRepository) Create(ctx context.Context, b domain.Booking) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bookings (booking_id, user_id, event_id, event_type, status, booking_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.EventID, b.EventType, b.Status, formatTime(b.BookingDate),
	)
	return translateSQLiteError(err)
}

func (r *SqliteBookingRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT booking_id, user_id, event_id, event_type, status, booking_date
		FROM bookings WHERE user_id = ?
		ORDER BY booking_date, booking_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		var (
			b    domain.Booking
			date string
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.EventID, &b.EventType, &b.Status, &date); err != nil {
			return nil, err
		}
		if b.BookingDate, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("parse booking_date: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
