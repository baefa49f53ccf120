package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"student-compass/internal/domain"
	"student-compass/internal/metrics"
	"student-compass/internal/repository"
)

var (
	ErrInvalidEventType = errors.New("invalid event type")
	ErrInvalidEventID   = errors.New("invalid event id")
)

// BookingService registra reservas de cursos y eventos.
type BookingService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	bookings repository.BookingRepository
}

func NewBookingService(logger *zap.Logger, users repository.UserRepository, bookings repository.BookingRepository) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{logger: logger, users: users, bookings: bookings}
}

func (s *BookingService) Book(ctx context.Context, userID, eventID, eventType string) (domain.Booking, error) {
	if s.bookings == nil || s.users == nil {
		return domain.Booking{}, ErrServiceNotConfigured
	}
	userID = strings.TrimSpace(userID)
	eventID = strings.TrimSpace(eventID)
	eventType = strings.ToLower(strings.TrimSpace(eventType))

	if eventID == "" {
		return domain.Booking{}, ErrInvalidEventID
	}
	if eventType != domain.EventTypeCourse && eventType != domain.EventTypeEvent {
		return domain.Booking{}, ErrInvalidEventType
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Booking{}, ErrUserNotFound
		}
		return domain.Booking{}, err
	}

	booking := domain.Booking{
		ID:          uuid.NewString(),
		UserID:      userID,
		EventID:     eventID,
		EventType:   eventType,
		Status:      domain.BookingStatusConfirmed,
		BookingDate: time.Now().UTC(),
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return domain.Booking{}, fmt.Errorf("create booking: %w", err)
	}

	metrics.BookingsCreated.WithLabelValues(eventType).Inc()
	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("user_id", userID),
		zap.String("event_type", eventType),
	)
	return booking, nil
}

// ListBookings devuelve las reservas del usuario ordenadas por fecha.
func (s *BookingService) ListBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	if s.bookings == nil || s.users == nil {
		return nil, ErrServiceNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.bookings.ListByUserID(ctx, userID)
}
