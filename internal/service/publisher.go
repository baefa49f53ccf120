package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"student-compass/internal/domain"
)

const DefaultCompletedSubject = "assessment.completed"

// ResultPublisher difunde los resultados de evaluaciones completadas.
type ResultPublisher interface {
	PublishCompleted(ctx context.Context, event domain.AssessmentCompleted) error
}

// natsPublisher es el subconjunto de *nats.Conn que usa el publisher.
type natsPublisher interface {
	Publish(subject string, data []byte) error
}

type NATSResultPublisher struct {
	conn    natsPublisher
	subject string
}

func NewNATSResultPublisher(conn *nats.Conn, subject string) *NATSResultPublisher {
	if strings.TrimSpace(subject) == "" {
		subject = DefaultCompletedSubject
	}
	return &NATSResultPublisher{conn: conn, subject: subject}
}

func (p *NATSResultPublisher) PublishCompleted(ctx context.Context, event domain.AssessmentCompleted) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal assessment event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	return nil
}

// NoopResultPublisher se usa cuando NATS_URL no esta configurado.
type NoopResultPublisher struct{}

func (NoopResultPublisher) PublishCompleted(context.Context, domain.AssessmentCompleted) error {
	return nil
}
