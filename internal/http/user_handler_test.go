package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-compass/internal/assessment"
	"student-compass/internal/domain"
	"student-compass/internal/repository"
	"student-compass/internal/service"
)

type memoryStore struct {
	mu         sync.Mutex
	users      map[string]domain.User
	byUsername map[string]string
	profiles   map[string]domain.Profile
	bookings   []domain.Booking
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:      make(map[string]domain.User),
		byUsername: make(map[string]string),
		profiles:   make(map[string]domain.Profile),
	}
}

func (m *memoryStore) CreateWithProfile(_ context.Context, user domain.User, profile domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byUsername[user.Username]; ok {
		return repository.ErrConflict
	}
	m.users[user.ID] = user
	m.byUsername[user.Username] = user.ID
	m.profiles[user.ID] = profile
	return nil
}

func (m *memoryStore) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (m *memoryStore) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.byUsername[username]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return m.GetByID(ctx, id)
}

type profileStore struct{ *memoryStore }

func (p profileStore) Upsert(_ context.Context, profile domain.Profile) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles[profile.UserID] = profile
	return nil
}

func (p profileStore) GetByUserID(_ context.Context, userID string) (domain.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	profile, ok := p.profiles[userID]
	if !ok {
		return domain.Profile{}, repository.ErrNotFound
	}
	return profile, nil
}

type bookingStore struct{ *memoryStore }

func (b bookingStore) Create(_ context.Context, booking domain.Booking) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bookings = append(b.bookings, booking)
	return nil
}

func (b bookingStore) ListByUserID(_ context.Context, userID string) ([]domain.Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []domain.Booking{}
	for _, bk := range b.bookings {
		if bk.UserID == userID {
			out = append(out, bk)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BookingDate.Before(out[j].BookingDate) })
	return out, nil
}

type testServer struct {
	router *gin.Engine
	store  *memoryStore
	jwt    *service.JWTService
}

func newTestServer(t *testing.T, jwtSecret string) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	store := newMemoryStore()

	jwtSvc := service.NewJWTServiceWithStore(jwtSecret, 15*time.Minute, 30*time.Minute, service.NewMemoryRefreshTokenStore())
	userSvc := service.NewUserService(logger, store, profileStore{store}, service.NewLoginRateLimiter(time.Minute, 100))
	assessmentSvc := service.NewAssessmentService(logger, nil, assessment.ValueReject, service.NewMemorySessionStore(time.Minute), store, profileStore{store}, nil)
	bookingSvc := service.NewBookingService(logger, store, bookingStore{store})

	router := NewRouter(logger, jwtSvc,
		NewUserHandler(logger, userSvc, jwtSvc),
		NewAssessmentHandler(logger, assessmentSvc),
		NewBookingHandler(logger, bookingSvc),
	)
	return testServer{router: router, store: store, jwt: jwtSvc}
}

func (s testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s testServer) register(t *testing.T, username string) domain.UserView {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/register", map[string]string{
		"username":        username,
		"password":        "secret",
		"education_level": domain.EducationSecondary,
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", username, rec.Code, rec.Body.String())
	}
	var view domain.UserView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode register: %v", err)
	}
	return view
}

func TestRegisterAndGetUser(t *testing.T) {
	srv := newTestServer(t, "")

	view := srv.register(t, "ada")
	if view.RiasecCode != domain.UnknownRiasecCode || view.OceanScores["Openness"] != 50 {
		t.Fatalf("expected default profile, got %+v", view)
	}

	rec := srv.do(t, http.MethodGet, "/user/"+view.UserID, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got domain.UserView
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if got.Username != "ada" || got.EducationLevel != domain.EducationSecondary {
		t.Fatalf("unexpected user: %+v", got)
	}

	if rec := srv.do(t, http.MethodGet, "/user/missing", nil, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", rec.Code)
	}
}

func TestRegisterValidationAndConflict(t *testing.T) {
	srv := newTestServer(t, "")
	srv.register(t, "ada")

	rec := srv.do(t, http.MethodPost, "/register", map[string]string{
		"username": "ada", "password": "x", "education_level": domain.EducationSecondary,
	}, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["detail"] == "" || body["detail"] != body["error"] {
		t.Fatalf("expected detail mirroring error, got %+v", body)
	}

	rec = srv.do(t, http.MethodPost, "/register", map[string]string{
		"username": "bob", "password": "x", "education_level": "Kindergarten",
	}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad education level, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, "/register", map[string]string{"username": "bob"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", rec.Code)
	}
}

func TestLoginWithoutJWT(t *testing.T) {
	srv := newTestServer(t, "")
	srv.register(t, "ada")

	rec := srv.do(t, http.MethodPost, "/login", map[string]string{"username": "ada", "password": "secret"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if body["username"] != "ada" {
		t.Fatalf("expected flat user view, got %v", body)
	}
	if _, ok := body["tokens"]; ok {
		t.Fatalf("expected no tokens without JWT secret")
	}

	rec = srv.do(t, http.MethodPost, "/login", map[string]string{"username": "ada", "password": "nope"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginIssuesTokensAndRefresh(t *testing.T) {
	srv := newTestServer(t, "secret")
	srv.register(t, "ada")

	rec := srv.do(t, http.MethodPost, "/login", map[string]string{"username": "ada", "password": "secret"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		UserID string            `json:"user_id"`
		Tokens service.TokenPair `json:"tokens"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens in login response")
	}

	rec = srv.do(t, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": resp.Tokens.RefreshToken}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected refresh 200, got %d", rec.Code)
	}
	rec = srv.do(t, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": resp.Tokens.RefreshToken}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected rotated refresh token rejected, got %d", rec.Code)
	}
}

func TestLogoutRevokesRefresh(t *testing.T) {
	srv := newTestServer(t, "secret")
	view := srv.register(t, "ada")
	pair, err := srv.jwt.GeneratePair(context.Background(), domain.User{ID: view.UserID, Username: "ada"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	rec := srv.do(t, http.MethodPost, "/auth/logout", map[string]string{"refresh_token": pair.RefreshToken}, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = srv.do(t, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": pair.RefreshToken}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestUserRoutesRequireOwnToken(t *testing.T) {
	srv := newTestServer(t, "secret")
	ada := srv.register(t, "ada")
	bob := srv.register(t, "bob")

	if rec := srv.do(t, http.MethodGet, "/user/"+ada.UserID, nil, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	pair, err := srv.jwt.GeneratePair(context.Background(), domain.User{ID: bob.UserID, Username: "bob"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if rec := srv.do(t, http.MethodGet, "/user/"+ada.UserID, nil, pair.AccessToken); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for other user's id, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodGet, "/user/"+bob.UserID, nil, pair.AccessToken); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for own id, got %d", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, "")

	if rec := srv.do(t, http.MethodGet, "/healthz", nil, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}
	rec := srv.do(t, http.MethodGet, "/metrics", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("student_compass_http_request_duration_seconds")) {
		t.Fatalf("expected request histogram in metrics output")
	}
}
