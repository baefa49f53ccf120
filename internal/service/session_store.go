package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"student-compass/internal/assessment"
)

var (
	// ErrSessionNotFound se devuelve cuando la sesion no existe o ya expiro.
	ErrSessionNotFound = errors.New("assessment session not found")
	// ErrSessionSubmitted se devuelve cuando otra request ya envio la sesion.
	ErrSessionSubmitted = errors.New("assessment session already submitted")
)

const defaultSessionTTL = 2 * time.Hour

// AssessmentSessionStore persiste el estado de las sesiones de evaluacion en curso.
type AssessmentSessionStore interface {
	Save(ctx context.Context, state assessment.SessionState) error
	Load(ctx context.Context, id string) (assessment.SessionState, error)
	Delete(ctx context.Context, id string) error
	// ClaimSubmit marca la sesion como enviada; solo el primer llamador recibe true.
	ClaimSubmit(ctx context.Context, id string) (bool, error)
	// ReleaseSubmit libera el claim cuando el envio no llego a persistirse.
	ReleaseSubmit(ctx context.Context, id string) error
}

type memorySessionEntry struct {
	state     assessment.SessionState
	expiresAt time.Time
}

type memorySessionStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	items  map[string]memorySessionEntry
	claims map[string]time.Time
}

func NewMemorySessionStore(ttl time.Duration) AssessmentSessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &memorySessionStore{
		ttl:    ttl,
		items:  make(map[string]memorySessionEntry),
		claims: make(map[string]time.Time),
	}
}

func (s *memorySessionStore) Save(_ context.Context, state assessment.SessionState) error {
	id := strings.TrimSpace(state.ID)
	if id == "" {
		return fmt.Errorf("save session: empty id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	state.Answers = state.Answers.Clone()
	s.items[id] = memorySessionEntry{state: state, expiresAt: time.Now().UTC().Add(s.ttl)}
	return nil
}

func (s *memorySessionStore) Load(_ context.Context, id string) (assessment.SessionState, error) {
	id = strings.TrimSpace(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[id]
	if !ok {
		return assessment.SessionState{}, ErrSessionNotFound
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(s.items, id)
		return assessment.SessionState{}, ErrSessionNotFound
	}
	state := entry.state
	state.Answers = state.Answers.Clone()
	return state, nil
}

func (s *memorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, strings.TrimSpace(id))
	return nil
}

// Los claims sobreviven al Delete de la sesion hasta que vence el TTL.
func (s *memorySessionStore) ClaimSubmit(_ context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, ErrSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for key, expiresAt := range s.claims {
		if now.After(expiresAt) {
			delete(s.claims, key)
		}
	}
	if _, taken := s.claims[id]; taken {
		return false, nil
	}
	s.claims[id] = now.Add(s.ttl)
	return true, nil
}

func (s *memorySessionStore) ReleaseSubmit(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claims, strings.TrimSpace(id))
	return nil
}

// redisSessionStore guarda cada sesion como JSON con TTL; cada Save renueva la expiracion.
type redisSessionStore struct {
	client redisKV
	prefix string
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) AssessmentSessionStore {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &redisSessionStore{
		client: client,
		prefix: "assessment:session:",
		ttl:    ttl,
	}
}

func (s *redisSessionStore) Save(ctx context.Context, state assessment.SessionState) error {
	id := strings.TrimSpace(state.ID)
	if id == "" {
		return fmt.Errorf("save session: empty id")
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()
	return s.client.Set(ctx, s.prefix+id, payload, s.ttl).Err()
}

func (s *redisSessionStore) Load(ctx context.Context, id string) (assessment.SessionState, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return assessment.SessionState{}, ErrSessionNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()
	raw, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return assessment.SessionState{}, ErrSessionNotFound
		}
		return assessment.SessionState{}, err
	}
	var state assessment.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return assessment.SessionState{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	if state.Answers == nil {
		state.Answers = assessment.AnswerSet{}
	}
	return state, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()
	return s.client.Del(ctx, s.prefix+id).Err()
}

// ClaimSubmit usa SETNX sobre <prefix><id>:submitted con el TTL de la sesion.
func (s *redisSessionStore) ClaimSubmit(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, ErrSessionNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()
	return s.client.SetNX(ctx, s.prefix+id+":submitted", "1", s.ttl).Result()
}

func (s *redisSessionStore) ReleaseSubmit(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()
	return s.client.Del(ctx, s.prefix+id+":submitted").Err()
}
