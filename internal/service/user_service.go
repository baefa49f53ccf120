package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"student-compass/internal/domain"
	"student-compass/internal/repository"
)

// UserService coordina reglas de negocio para usuarios.
type UserService struct {
	logger       *zap.Logger
	users        repository.UserRepository
	profiles     repository.ProfileRepository
	loginLimiter LoginRateLimiter
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, profiles repository.ProfileRepository, loginLimiter LoginRateLimiter) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loginLimiter == nil {
		loginLimiter = NewLoginRateLimiter(10*time.Minute, 5)
	}
	return &UserService{
		logger:       logger,
		users:        users,
		profiles:     profiles,
		loginLimiter: loginLimiter,
	}
}

type RegisterInput struct {
	Username       string
	Password       string
	EducationLevel string
}

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrUsernameTaken        = errors.New("username already registered")
	ErrInvalidUsername      = errors.New("invalid username")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrInvalidEducation     = errors.New("invalid education level")
	ErrRateLimited          = errors.New("rate limited")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrServiceNotConfigured = errors.New("service not configured")
)

// Register crea el usuario y su perfil neutro (riasec "UNK", OCEAN en 50).
func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.UserView, error) {
	if s.users == nil {
		return domain.UserView{}, ErrServiceNotConfigured
	}

	username := normalizeUsername(input.Username)
	if username == "" {
		return domain.UserView{}, ErrInvalidUsername
	}
	if strings.TrimSpace(input.Password) == "" {
		return domain.UserView{}, ErrInvalidPassword
	}
	education := strings.TrimSpace(input.EducationLevel)
	if !domain.ValidEducationLevel(education) {
		return domain.UserView{}, ErrInvalidEducation
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return domain.UserView{}, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.UserView{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserView{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:             uuid.NewString(),
		Username:       username,
		PasswordHash:   string(hashBytes),
		EducationLevel: education,
		CreatedAt:      now,
	}
	profile := domain.Profile{
		UserID:      user.ID,
		RiasecCode:  domain.UnknownRiasecCode,
		OceanScores: domain.DefaultOceanScores(),
		UpdatedAt:   now,
	}

	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.UserView{}, ErrUsernameTaken
		}
		return domain.UserView{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("education_level", education))
	return domain.NewUserView(user, profile), nil
}

// Login valida credenciales y devuelve el usuario junto a su perfil.
func (s *UserService) Login(ctx context.Context, username, password string) (domain.User, domain.UserView, error) {
	if s.users == nil {
		return domain.User{}, domain.UserView{}, ErrServiceNotConfigured
	}

	username = normalizeUsername(username)
	if username == "" || password == "" {
		return domain.User{}, domain.UserView{}, ErrInvalidCredentials
	}
	if s.loginLimiter.Blocked(ctx, username) {
		return domain.User{}, domain.UserView{}, ErrRateLimited
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.loginLimiter.Fail(ctx, username)
			return domain.User{}, domain.UserView{}, ErrInvalidCredentials
		}
		return domain.User{}, domain.UserView{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.loginLimiter.Fail(ctx, username)
		s.logger.Warn("login rejected", zap.String("user_id", user.ID))
		return domain.User{}, domain.UserView{}, ErrInvalidCredentials
	}
	s.loginLimiter.Reset(ctx, username)

	profile, err := s.profileOrEmpty(ctx, user.ID)
	if err != nil {
		return domain.User{}, domain.UserView{}, err
	}
	return user, domain.NewUserView(user, profile), nil
}

// GetUser devuelve el usuario con su perfil.
func (s *UserService) GetUser(ctx context.Context, id string) (domain.UserView, error) {
	if s.users == nil {
		return domain.UserView{}, ErrServiceNotConfigured
	}
	user, err := s.users.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.UserView{}, ErrUserNotFound
		}
		return domain.UserView{}, err
	}
	profile, err := s.profileOrEmpty(ctx, user.ID)
	if err != nil {
		return domain.UserView{}, err
	}
	return domain.NewUserView(user, profile), nil
}

// Un usuario sin fila de perfil se muestra con riasec vacio y sin puntajes.
func (s *UserService) profileOrEmpty(ctx context.Context, userID string) (domain.Profile, error) {
	if s.profiles == nil {
		return domain.Profile{UserID: userID}, nil
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Profile{UserID: userID}, nil
	}
	return profile, err
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// LoginRateLimiter cuenta logins fallidos por usuario. Un login correcto limpia
// el contador; con max fallos dentro de la ventana el usuario queda bloqueado.
type LoginRateLimiter interface {
	Blocked(ctx context.Context, key string) bool
	Fail(ctx context.Context, key string)
	Reset(ctx context.Context, key string)
}

type loginRateLimiter struct {
	mu       sync.Mutex
	window   time.Duration
	max      int
	failures map[string][]time.Time
}

// NewLoginRateLimiter crea el limiter en memoria con ventana deslizante.
func NewLoginRateLimiter(window time.Duration, max int) LoginRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &loginRateLimiter{
		window:   window,
		max:      max,
		failures: make(map[string][]time.Time),
	}
}

func (l *loginRateLimiter) Blocked(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.recent(key, time.Now().UTC())) >= l.max
}

func (l *loginRateLimiter) Fail(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now().UTC()
	l.failures[key] = append(l.recent(key, now), now)
}

func (l *loginRateLimiter) Reset(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, key)
}

// recent descarta los fallos fuera de la ventana. Requiere l.mu tomado.
func (l *loginRateLimiter) recent(key string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	entries := l.failures[key]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(l.failures, key)
		return nil
	}
	l.failures[key] = kept
	return kept
}
