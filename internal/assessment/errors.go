package assessment

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAnswer     = errors.New("answer out of range")
	ErrIncompleteAnswers = errors.New("incomplete answers")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrSessionIncomplete = errors.New("assessment session incomplete")
)

// ValidationError reports a Likert value outside [MinValue, MaxValue].
type ValidationError struct {
	QuestionID string
	Value      int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %s: value %d outside [%d,%d]", e.QuestionID, e.Value, MinValue, MaxValue)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidAnswer
}

// IncompleteAnswersError lists the bank questions absent from an answer set.
type IncompleteAnswersError struct {
	Missing []string
}

func (e *IncompleteAnswersError) Error() string {
	return fmt.Sprintf("incomplete answers: %d missing (%s)", len(e.Missing), strings.Join(e.Missing, ","))
}

func (e *IncompleteAnswersError) Is(target error) bool {
	return target == ErrIncompleteAnswers
}
