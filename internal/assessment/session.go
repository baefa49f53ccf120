package assessment

import (
	"fmt"
	"time"
)

// SessionState is the serializable snapshot of a Session.
type SessionState struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Answers   AnswerSet `json:"answers"`
	Cursor    int       `json:"cursor"`
	StartedAt time.Time `json:"started_at"`
}

// Session walks the bank in authoring order collecting one answer per question.
// Answering an id twice overwrites the previous value. A Session is not safe for
// concurrent use.
type Session struct {
	bank  *Bank
	state SessionState
}

// NewSession starts an empty session on bank (DefaultBank when nil).
func NewSession(bank *Bank, id, userID string) *Session {
	if bank == nil {
		bank = DefaultBank()
	}
	return &Session{
		bank: bank,
		state: SessionState{
			ID:        id,
			UserID:    userID,
			Answers:   AnswerSet{},
			StartedAt: time.Now().UTC(),
		},
	}
}

// RestoreSession rebuilds a session from a snapshot, dropping answers to
// questions the bank no longer has.
func RestoreSession(bank *Bank, state SessionState) (*Session, error) {
	if bank == nil {
		bank = DefaultBank()
	}
	if state.Cursor < 0 || state.Cursor > bank.Len() {
		return nil, fmt.Errorf("session %s: cursor %d out of range", state.ID, state.Cursor)
	}
	answers := make(AnswerSet, len(state.Answers))
	for id, v := range state.Answers {
		if _, ok := bank.Lookup(id); !ok {
			continue
		}
		if v < MinValue || v > MaxValue {
			return nil, &ValidationError{QuestionID: id, Value: v}
		}
		answers[id] = v
	}
	state.Answers = answers
	return &Session{bank: bank, state: state}, nil
}

// Current returns the question at the cursor; false once past the last question.
func (s *Session) Current() (Question, bool) {
	return s.bank.At(s.state.Cursor)
}

// Answer records value for the current question and advances the cursor.
func (s *Session) Answer(value int) error {
	q, ok := s.Current()
	if !ok {
		return fmt.Errorf("no current question: %w", ErrUnknownQuestion)
	}
	if err := s.AnswerQuestion(q.ID, value); err != nil {
		return err
	}
	s.state.Cursor++
	return nil
}

// AnswerQuestion records value for id without moving the cursor.
func (s *Session) AnswerQuestion(id string, value int) error {
	if _, ok := s.bank.Lookup(id); !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownQuestion)
	}
	if value < MinValue || value > MaxValue {
		return &ValidationError{QuestionID: id, Value: value}
	}
	s.state.Answers[id] = value
	return nil
}

// Back moves the cursor to the previous question. No-op on the first question.
func (s *Session) Back() {
	if s.state.Cursor > 0 {
		s.state.Cursor--
	}
}

// Value returns the recorded answer for id.
func (s *Session) Value(id string) (int, bool) {
	v, ok := s.state.Answers[id]
	return v, ok
}

// Progress returns the number of answered questions and the bank size.
func (s *Session) Progress() (answered, total int) {
	return len(s.state.Answers), s.bank.Len()
}

// Complete reports whether every bank question has an answer.
func (s *Session) Complete() bool {
	return len(s.bank.Missing(s.state.Answers)) == 0
}

// Missing lists unanswered question ids in authoring order.
func (s *Session) Missing() []string {
	return s.bank.Missing(s.state.Answers)
}

// Answers returns a copy of the collected answers.
func (s *Session) Answers() AnswerSet {
	return s.state.Answers.Clone()
}

// State returns a snapshot suitable for persistence.
func (s *Session) State() SessionState {
	st := s.state
	st.Answers = s.state.Answers.Clone()
	return st
}

// Finish scores the completed answer set. It fails with ErrSessionIncomplete
// while any question is unanswered.
func (s *Session) Finish(scorer *Scorer) (Result, error) {
	if missing := s.Missing(); len(missing) > 0 {
		return Result{}, fmt.Errorf("%w: %d of %d unanswered", ErrSessionIncomplete, len(missing), s.bank.Len())
	}
	if scorer == nil {
		scorer = NewScorer(s.bank)
	}
	return scorer.Score(s.state.Answers)
}
