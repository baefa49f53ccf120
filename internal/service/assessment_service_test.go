package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"student-compass/internal/assessment"
	"student-compass/internal/domain"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.AssessmentCompleted
	err    error
}

func (p *recordingPublisher) PublishCompleted(_ context.Context, event domain.AssessmentCompleted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type assessmentFixture struct {
	svc       *AssessmentService
	users     *mockUserRepo
	profiles  *mockProfileRepo
	publisher *recordingPublisher
	userID    string
}

func newAssessmentFixture(t *testing.T) assessmentFixture {
	t.Helper()
	profiles := newMockProfileRepo()
	users := newMockUserRepo(profiles)
	user := domain.User{ID: "u1", Username: "ada", EducationLevel: domain.EducationSecondary, CreatedAt: time.Now().UTC()}
	profile := domain.Profile{UserID: "u1", RiasecCode: domain.UnknownRiasecCode, OceanScores: domain.DefaultOceanScores()}
	if err := users.CreateWithProfile(context.Background(), user, profile); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	pub := &recordingPublisher{}
	svc := NewAssessmentService(zap.NewNop(), nil, assessment.ValueReject, NewMemorySessionStore(time.Minute), users, profiles, pub)
	return assessmentFixture{svc: svc, users: users, profiles: profiles, publisher: pub, userID: "u1"}
}

func fullAnswers(value int) assessment.AnswerSet {
	answers := assessment.AnswerSet{}
	for _, q := range assessment.DefaultBank().AllQuestions() {
		answers[q.ID] = value
	}
	return answers
}

func TestAssessmentService_QuestionsAndScore(t *testing.T) {
	f := newAssessmentFixture(t)

	if got := len(f.svc.Questions()); got != 40 {
		t.Fatalf("expected 40 questions, got %d", got)
	}

	result, err := f.svc.Score(assessment.AnswerSet{"O1": 5}, false)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if len(result.OceanScores) != 5 || len(result.RiasecCode) != 3 {
		t.Fatalf("unexpected result shape: %+v", result)
	}

	_, err = f.svc.Score(assessment.AnswerSet{"O1": 5}, true)
	var incomplete *assessment.IncompleteAnswersError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteAnswersError in strict mode, got %v", err)
	}
	if len(incomplete.Missing) != 39 {
		t.Fatalf("expected 39 missing ids, got %d", len(incomplete.Missing))
	}

	if _, err := f.svc.Score(assessment.AnswerSet{"O1": 9}, false); !errors.Is(err, assessment.ErrInvalidAnswer) {
		t.Fatalf("expected ErrInvalidAnswer, got %v", err)
	}
}

func TestAssessmentService_SessionLifecycle(t *testing.T) {
	f := newAssessmentFixture(t)
	ctx := context.Background()

	view, err := f.svc.StartSession(ctx, f.userID)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if view.Current == nil || view.Current.ID != "O1" || view.Total != 40 {
		t.Fatalf("unexpected initial view: %+v", view)
	}

	view, err = f.svc.AnswerSession(ctx, view.SessionID, "", 4)
	if err != nil {
		t.Fatalf("answer current: %v", err)
	}
	if view.Cursor != 1 || view.Answered != 1 || view.Current.ID != "O2" {
		t.Fatalf("expected cursor to advance, got %+v", view)
	}

	view, err = f.svc.BackSession(ctx, view.SessionID)
	if err != nil {
		t.Fatalf("back: %v", err)
	}
	if view.Cursor != 0 || view.Current.ID != "O1" {
		t.Fatalf("expected back to O1, got %+v", view)
	}

	// re-answering overwrites
	view, err = f.svc.AnswerSession(ctx, view.SessionID, "O1", 2)
	if err != nil {
		t.Fatalf("re-answer: %v", err)
	}
	if view.Answers["O1"] != 2 || view.Answered != 1 {
		t.Fatalf("expected overwrite, got %+v", view)
	}

	if _, err := f.svc.SubmitSession(ctx, view.SessionID); !errors.Is(err, assessment.ErrSessionIncomplete) {
		t.Fatalf("expected ErrSessionIncomplete, got %v", err)
	}

	for _, q := range assessment.DefaultBank().AllQuestions() {
		if view, err = f.svc.AnswerSession(ctx, view.SessionID, q.ID, 3); err != nil {
			t.Fatalf("answer %s: %v", q.ID, err)
		}
	}
	if !view.Complete {
		t.Fatalf("expected complete session")
	}

	result, err := f.svc.SubmitSession(ctx, view.SessionID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.RiasecCode != "RIA" || result.OceanScores["Openness"] != 50 {
		t.Fatalf("unexpected result: %+v", result)
	}

	stored := f.profiles.profiles[f.userID]
	if stored.RiasecCode != "RIA" || stored.OceanScores["Neuroticism"] != 50 {
		t.Fatalf("expected profile persisted, got %+v", stored)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].SessionID != view.SessionID {
		t.Fatalf("expected one completed event, got %+v", f.publisher.events)
	}
	if _, err := f.svc.GetSession(ctx, view.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session discarded after submit, got %v", err)
	}
}

func completedSession(t *testing.T, f assessmentFixture) string {
	t.Helper()
	ctx := context.Background()
	view, err := f.svc.StartSession(ctx, f.userID)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	for _, q := range assessment.DefaultBank().AllQuestions() {
		if _, err := f.svc.AnswerSession(ctx, view.SessionID, q.ID, 4); err != nil {
			t.Fatalf("answer %s: %v", q.ID, err)
		}
	}
	return view.SessionID
}

func TestAssessmentService_ConcurrentSubmitPersistsOnce(t *testing.T) {
	f := newAssessmentFixture(t)
	id := completedSession(t, f)

	const callers = 20
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.SubmitSession(context.Background(), id)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSessionSubmitted), errors.Is(err, ErrSessionNotFound):
		default:
			t.Fatalf("unexpected submit error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful submit, got %d", succeeded)
	}
	if len(f.publisher.events) != 1 {
		t.Fatalf("expected one completed event, got %d", len(f.publisher.events))
	}
}

func TestAssessmentService_SubmitRetryAfterPersistFailure(t *testing.T) {
	f := newAssessmentFixture(t)
	id := completedSession(t, f)
	ctx := context.Background()

	f.profiles.upsertErr = errors.New("db down")
	if _, err := f.svc.SubmitSession(ctx, id); err == nil {
		t.Fatalf("expected submit to fail while profiles are unavailable")
	}

	f.profiles.upsertErr = nil
	result, err := f.svc.SubmitSession(ctx, id)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if result.RiasecCode != "RIA" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(f.publisher.events) != 1 {
		t.Fatalf("expected one completed event, got %d", len(f.publisher.events))
	}
}

func TestAssessmentService_AnswerSessionErrors(t *testing.T) {
	f := newAssessmentFixture(t)
	ctx := context.Background()

	if _, err := f.svc.StartSession(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := f.svc.GetSession(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	view, err := f.svc.StartSession(ctx, f.userID)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if _, err := f.svc.AnswerSession(ctx, view.SessionID, "Z9", 3); !errors.Is(err, assessment.ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}
	if _, err := f.svc.AnswerSession(ctx, view.SessionID, "", 6); !errors.Is(err, assessment.ErrInvalidAnswer) {
		t.Fatalf("expected ErrInvalidAnswer, got %v", err)
	}
	after, err := f.svc.GetSession(ctx, view.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if after.Cursor != 0 || after.Answered != 0 {
		t.Fatalf("expected rejected answers to leave session untouched, got %+v", after)
	}
}

func TestAssessmentService_SubmitAnswers(t *testing.T) {
	f := newAssessmentFixture(t)
	ctx := context.Background()

	if _, err := f.svc.SubmitAnswers(ctx, f.userID, assessment.AnswerSet{"O1": 3}); !errors.Is(err, assessment.ErrIncompleteAnswers) {
		t.Fatalf("expected ErrIncompleteAnswers, got %v", err)
	}
	if f.profiles.profiles[f.userID].RiasecCode != domain.UnknownRiasecCode {
		t.Fatalf("expected profile untouched after failed submit")
	}

	result, err := f.svc.SubmitAnswers(ctx, f.userID, fullAnswers(5))
	if err != nil {
		t.Fatalf("submit answers: %v", err)
	}
	// una pregunta inversa por rasgo: 5+5+5+1 = 16 -> 75
	if result.OceanScores["Openness"] != 75 {
		t.Fatalf("expected Openness 75, got %d", result.OceanScores["Openness"])
	}
	if result.RiasecCode != "RIA" {
		t.Fatalf("expected tie-break RIA, got %s", result.RiasecCode)
	}
	if len(f.publisher.events) != 1 {
		t.Fatalf("expected one event, got %d", len(f.publisher.events))
	}

	if _, err := f.svc.SubmitAnswers(ctx, "ghost", fullAnswers(3)); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAssessmentService_PublishFailureDoesNotFailSubmit(t *testing.T) {
	f := newAssessmentFixture(t)
	f.publisher.err = errors.New("nats down")

	if _, err := f.svc.SubmitAnswers(context.Background(), f.userID, fullAnswers(3)); err != nil {
		t.Fatalf("expected submit to succeed despite publish error, got %v", err)
	}
	if f.profiles.profiles[f.userID].RiasecCode != "RIA" {
		t.Fatalf("expected profile persisted")
	}
}

func TestAssessmentService_SaveProfile(t *testing.T) {
	f := newAssessmentFixture(t)
	ctx := context.Background()
	valid := map[string]int{
		"Openness":          80,
		"Conscientiousness": 60,
		"Extraversion":      40,
		"Agreeableness":     70,
		"Neuroticism":       20,
	}

	profile, err := f.svc.SaveProfile(ctx, f.userID, valid, "ias")
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if profile.RiasecCode != "IAS" {
		t.Fatalf("expected normalized code IAS, got %q", profile.RiasecCode)
	}
	got, err := f.svc.GetProfile(ctx, f.userID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got.OceanScores["Openness"] != 80 || got.RiasecCode != "IAS" {
		t.Fatalf("unexpected stored profile: %+v", got)
	}

	bad := []struct {
		name  string
		ocean map[string]int
		code  string
	}{
		{"missing trait", map[string]int{"Openness": 50}, "IAS"},
		{"out of range", map[string]int{"Openness": 101, "Conscientiousness": 60, "Extraversion": 40, "Agreeableness": 70, "Neuroticism": 20}, "IAS"},
		{"unknown trait", map[string]int{"Openness": 50, "Conscientiousness": 60, "Extraversion": 40, "Agreeableness": 70, "Honesty": 20}, "IAS"},
		{"repeated letter", valid, "IIA"},
		{"bad letter", valid, "XYZ"},
		{"short code", valid, "IA"},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.SaveProfile(ctx, f.userID, tc.ocean, tc.code); !errors.Is(err, ErrInvalidProfile) {
				t.Fatalf("expected ErrInvalidProfile, got %v", err)
			}
		})
	}

	if _, err := f.svc.SaveProfile(ctx, "ghost", valid, "IAS"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAssessmentService_GetProfileMissing(t *testing.T) {
	f := newAssessmentFixture(t)
	delete(f.profiles.profiles, f.userID)

	if _, err := f.svc.GetProfile(context.Background(), f.userID); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if _, err := f.svc.GetProfile(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
