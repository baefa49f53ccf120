package domain

import "time"

const (
	EventTypeCourse = "course"
	EventTypeEvent  = "event"

	BookingStatusConfirmed = "confirmed"
)

type Booking struct {
	ID          string    `json:"booking_id"`
	UserID      string    `json:"user_id"`
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	Status      string    `json:"status"`
	BookingDate time.Time `json:"booking_date"`
}
