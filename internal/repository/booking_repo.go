package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"student-compass/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking domain.Booking) error
	ListByUserID(ctx context.Context, userID string) ([]domain.Booking, error)
}

type PgBookingRepository struct {
	pool *pgxpool.Pool
}

func NewPgBookingRepository(pool *pgxpool.Pool) *PgBookingRepository {
	return &PgBookingRepository{pool: pool}
}

func (r *PgBookingRepository) Create(ctx context.Context, booking domain.Booking) error {
	const query = `
		INSERT INTO bookings (booking_id, user_id, event_id, event_type, status, booking_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.EventID,
		booking.EventType,
		booking.Status,
		booking.BookingDate,
	)
	return translatePgError(err)
}

func (r *PgBookingRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Booking, error) {
	const query = `
		SELECT booking_id, user_id, event_id, event_type, status, booking_date
		FROM bookings
		WHERE user_id = $1
		ORDER BY booking_date, booking_id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.EventID,
			&b.EventType,
			&b.Status,
			&b.BookingDate,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}
