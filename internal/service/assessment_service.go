package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"student-compass/internal/assessment"
	"student-compass/internal/domain"
	"student-compass/internal/metrics"
	"student-compass/internal/repository"
)

var ErrInvalidProfile = errors.New("invalid assessment profile")

// AssessmentService orquesta el motor de scoring con la persistencia de perfiles.
type AssessmentService struct {
	logger       *zap.Logger
	bank         *assessment.Bank
	scorer       *assessment.Scorer
	strictScorer *assessment.Scorer
	sessions     AssessmentSessionStore
	users        repository.UserRepository
	profiles     repository.ProfileRepository
	publisher    ResultPublisher
}

func NewAssessmentService(
	logger *zap.Logger,
	bank *assessment.Bank,
	policy assessment.ValuePolicy,
	sessions AssessmentSessionStore,
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	publisher ResultPublisher,
) *AssessmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bank == nil {
		bank = assessment.DefaultBank()
	}
	if sessions == nil {
		sessions = NewMemorySessionStore(defaultSessionTTL)
	}
	if publisher == nil {
		publisher = NoopResultPublisher{}
	}
	return &AssessmentService{
		logger:       logger,
		bank:         bank,
		scorer:       assessment.NewScorer(bank, assessment.WithValuePolicy(policy)),
		strictScorer: assessment.NewScorer(bank, assessment.WithValuePolicy(policy), assessment.WithStrict(true)),
		sessions:     sessions,
		users:        users,
		profiles:     profiles,
		publisher:    publisher,
	}
}

// SessionView es lo que ve el cliente de una sesion en curso.
type SessionView struct {
	SessionID string               `json:"session_id"`
	UserID    string               `json:"user_id"`
	Cursor    int                  `json:"cursor"`
	Answered  int                  `json:"answered"`
	Total     int                  `json:"total"`
	Complete  bool                 `json:"complete"`
	Current   *assessment.Question `json:"current,omitempty"`
	Answers   assessment.AnswerSet `json:"answers"`
	StartedAt time.Time            `json:"started_at"`
}

func newSessionView(s *assessment.Session) SessionView {
	state := s.State()
	answered, total := s.Progress()
	view := SessionView{
		SessionID: state.ID,
		UserID:    state.UserID,
		Cursor:    state.Cursor,
		Answered:  answered,
		Total:     total,
		Complete:  s.Complete(),
		Answers:   state.Answers,
		StartedAt: state.StartedAt,
	}
	if q, ok := s.Current(); ok {
		view.Current = &q
	}
	return view
}

func (s *AssessmentService) Questions() []assessment.Question {
	return s.bank.AllQuestions()
}

// Score puntua un answer set sin persistir nada.
func (s *AssessmentService) Score(answers assessment.AnswerSet, strict bool) (assessment.Result, error) {
	scorer := s.scorer
	if strict {
		scorer = s.strictScorer
	}
	result, err := scorer.Score(answers)
	if err != nil {
		observeScoringError(err)
		return assessment.Result{}, err
	}
	metrics.AssessmentsScored.WithLabelValues("stateless").Inc()
	return result, nil
}

func (s *AssessmentService) StartSession(ctx context.Context, userID string) (SessionView, error) {
	userID = strings.TrimSpace(userID)
	if err := s.ensureUser(ctx, userID); err != nil {
		return SessionView{}, err
	}
	session := assessment.NewSession(s.bank, uuid.NewString(), userID)
	if err := s.sessions.Save(ctx, session.State()); err != nil {
		return SessionView{}, fmt.Errorf("save session: %w", err)
	}
	metrics.SessionsStarted.Inc()
	s.logger.Info("assessment session started",
		zap.String("session_id", session.State().ID),
		zap.String("user_id", userID),
	)
	return newSessionView(session), nil
}

func (s *AssessmentService) GetSession(ctx context.Context, id string) (SessionView, error) {
	session, err := s.loadSession(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	return newSessionView(session), nil
}

// AnswerSession responde questionID, o la pregunta actual si questionID esta vacio.
// Responder la pregunta actual avanza el cursor.
func (s *AssessmentService) AnswerSession(ctx context.Context, id, questionID string, value int) (SessionView, error) {
	session, err := s.loadSession(ctx, id)
	if err != nil {
		return SessionView{}, err
	}

	questionID = strings.TrimSpace(questionID)
	current, hasCurrent := session.Current()
	switch {
	case questionID == "" || (hasCurrent && current.ID == questionID):
		err = session.Answer(value)
	default:
		err = session.AnswerQuestion(questionID, value)
	}
	if err != nil {
		return SessionView{}, err
	}

	if err := s.sessions.Save(ctx, session.State()); err != nil {
		return SessionView{}, fmt.Errorf("save session: %w", err)
	}
	return newSessionView(session), nil
}

func (s *AssessmentService) BackSession(ctx context.Context, id string) (SessionView, error) {
	session, err := s.loadSession(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	session.Back()
	if err := s.sessions.Save(ctx, session.State()); err != nil {
		return SessionView{}, fmt.Errorf("save session: %w", err)
	}
	return newSessionView(session), nil
}

// SubmitSession puntua una sesion completa, persiste el perfil y descarta la sesion.
// Con envios concurrentes solo uno persiste y publica; el resto recibe ErrSessionSubmitted.
func (s *AssessmentService) SubmitSession(ctx context.Context, id string) (assessment.Result, error) {
	session, err := s.loadSession(ctx, id)
	if err != nil {
		return assessment.Result{}, err
	}
	result, err := session.Finish(s.scorer)
	if err != nil {
		observeScoringError(err)
		return assessment.Result{}, err
	}

	state := session.State()
	claimed, err := s.sessions.ClaimSubmit(ctx, state.ID)
	if err != nil {
		return assessment.Result{}, fmt.Errorf("claim session: %w", err)
	}
	if !claimed {
		return assessment.Result{}, ErrSessionSubmitted
	}
	if err := s.persist(ctx, state.UserID, state.ID, result); err != nil {
		if rerr := s.sessions.ReleaseSubmit(ctx, state.ID); rerr != nil {
			s.logger.Warn("release session claim", zap.String("session_id", state.ID), zap.Error(rerr))
		}
		return assessment.Result{}, err
	}
	metrics.AssessmentsScored.WithLabelValues("session").Inc()

	if err := s.sessions.Delete(ctx, state.ID); err != nil {
		s.logger.Warn("delete finished session", zap.String("session_id", state.ID), zap.Error(err))
	}
	return result, nil
}

// SubmitAnswers puntua un answer set completo de una sola vez y lo persiste.
func (s *AssessmentService) SubmitAnswers(ctx context.Context, userID string, answers assessment.AnswerSet) (assessment.Result, error) {
	userID = strings.TrimSpace(userID)
	if err := s.ensureUser(ctx, userID); err != nil {
		return assessment.Result{}, err
	}
	result, err := s.strictScorer.Score(answers)
	if err != nil {
		observeScoringError(err)
		return assessment.Result{}, err
	}
	if err := s.persist(ctx, userID, "", result); err != nil {
		return assessment.Result{}, err
	}
	metrics.AssessmentsScored.WithLabelValues("submit").Inc()
	return result, nil
}

// SaveProfile persiste un resultado calculado por el cliente tras validar su forma.
func (s *AssessmentService) SaveProfile(ctx context.Context, userID string, ocean map[string]int, code string) (domain.Profile, error) {
	userID = strings.TrimSpace(userID)
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := validateProfileShape(ocean, code); err != nil {
		return domain.Profile{}, err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return domain.Profile{}, err
	}
	profile := domain.Profile{
		UserID:      userID,
		RiasecCode:  code,
		OceanScores: copyScores(ocean),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.upsertProfile(ctx, profile); err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}

func (s *AssessmentService) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	if s.profiles == nil {
		return domain.Profile{}, ErrServiceNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if err := s.ensureUser(ctx, userID); err != nil {
		return domain.Profile{}, err
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	return profile, nil
}

func (s *AssessmentService) persist(ctx context.Context, userID, sessionID string, result assessment.Result) error {
	now := time.Now().UTC()
	profile := domain.Profile{
		UserID:      userID,
		RiasecCode:  string(result.RiasecCode),
		OceanScores: copyScores(result.OceanScores),
		UpdatedAt:   now,
	}
	if err := s.upsertProfile(ctx, profile); err != nil {
		return err
	}

	event := domain.AssessmentCompleted{
		UserID:      userID,
		SessionID:   sessionID,
		OceanScores: profile.OceanScores,
		RiasecCode:  profile.RiasecCode,
		CompletedAt: now,
	}
	if err := s.publisher.PublishCompleted(ctx, event); err != nil {
		// el perfil ya quedo guardado; el evento es best-effort
		s.logger.Warn("publish assessment completed", zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}

func (s *AssessmentService) upsertProfile(ctx context.Context, profile domain.Profile) error {
	if s.profiles == nil {
		return ErrServiceNotConfigured
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	metrics.ObserveProfile(profile.RiasecCode)
	s.logger.Info("profile saved",
		zap.String("user_id", profile.UserID),
		zap.String("riasec_code", profile.RiasecCode),
	)
	return nil
}

func (s *AssessmentService) loadSession(ctx context.Context, id string) (*assessment.Session, error) {
	state, err := s.sessions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	session, err := assessment.RestoreSession(s.bank, state)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return session, nil
}

// ensureUser solo verifica existencia cuando hay repositorio de usuarios.
func (s *AssessmentService) ensureUser(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUserNotFound
	}
	if s.users == nil {
		return nil
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func validateProfileShape(ocean map[string]int, code string) error {
	names := assessment.OceanTraitNames()
	if len(ocean) != len(names) {
		return fmt.Errorf("%w: expected %d ocean scores, got %d", ErrInvalidProfile, len(names), len(ocean))
	}
	for _, name := range names {
		v, ok := ocean[name]
		if !ok {
			return fmt.Errorf("%w: missing ocean score %s", ErrInvalidProfile, name)
		}
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: %s=%d outside [0,100]", ErrInvalidProfile, name, v)
		}
	}
	if !assessment.ValidRiasecCode(code) {
		return fmt.Errorf("%w: riasec code %q", ErrInvalidProfile, code)
	}
	return nil
}

func copyScores(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func observeScoringError(err error) {
	switch {
	case errors.Is(err, assessment.ErrInvalidAnswer):
		metrics.AssessmentErrors.WithLabelValues("invalid_answer").Inc()
	case errors.Is(err, assessment.ErrIncompleteAnswers), errors.Is(err, assessment.ErrSessionIncomplete):
		metrics.AssessmentErrors.WithLabelValues("incomplete").Inc()
	default:
		metrics.AssessmentErrors.WithLabelValues("other").Inc()
	}
}
