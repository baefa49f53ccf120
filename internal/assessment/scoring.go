package assessment

import (
	"sort"
	"strings"
)

// OceanScores maps full Big Five trait names to a 0..100 percentage.
type OceanScores map[string]int

// RiasecCode is the top three Holland codes, highest first (e.g. "IAS").
type RiasecCode string

// Result bundles both scoring outputs of one assessment.
type Result struct {
	OceanScores OceanScores `json:"ocean_scores" yaml:"ocean_scores"`
	RiasecCode  RiasecCode  `json:"riasec_code" yaml:"riasec_code"`
}

// ValuePolicy decides what happens to Likert values outside [1,5].
type ValuePolicy int

const (
	// ValueReject fails scoring with a *ValidationError.
	ValueReject ValuePolicy = iota
	// ValueClamp pulls the value into [1,5].
	ValueClamp
)

type scorerOptions struct {
	strict bool
	policy ValuePolicy
}

// Option configures a Scorer.
type Option func(*scorerOptions)

// WithStrict makes scoring fail with *IncompleteAnswersError when any bank
// question is unanswered. Off by default: missing answers count as neutral.
func WithStrict(strict bool) Option {
	return func(o *scorerOptions) {
		o.strict = strict
	}
}

// WithValuePolicy sets how out-of-range values are handled.
func WithValuePolicy(p ValuePolicy) Option {
	return func(o *scorerOptions) {
		o.policy = p
	}
}

// Scorer computes OCEAN percentages and RIASEC codes against a bank. It holds no
// mutable state and is safe for concurrent use.
type Scorer struct {
	bank *Bank
	opts scorerOptions
}

// NewScorer builds a scorer. A nil bank means DefaultBank.
func NewScorer(bank *Bank, opts ...Option) *Scorer {
	if bank == nil {
		bank = DefaultBank()
	}
	s := &Scorer{bank: bank}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

// ScoreOcean sums each trait's answers (reverse items flipped via 6-v) and
// rescales the sum from [n,5n] to 0..100, rounding half up.
func (s *Scorer) ScoreOcean(answers AnswerSet) (OceanScores, error) {
	if err := s.check(answers); err != nil {
		return nil, err
	}
	scores := make(OceanScores, len(OceanTraits))
	for _, trait := range OceanTraits {
		questions := s.bank.QuestionsForTrait(KindOCEAN, trait)
		n := len(questions)
		raw := 0
		for _, q := range questions {
			v := s.value(answers, q.ID)
			if q.Reverse {
				v = MinValue + MaxValue - v
			}
			raw += v
		}
		scores[OceanLabel(trait)] = percentage(raw, n)
	}
	return scores, nil
}

// ScoreRiasec ranks the six Holland codes by summed answers and returns the top
// three. Ties keep the R,I,A,S,E,C enumeration order.
func (s *Scorer) ScoreRiasec(answers AnswerSet) (RiasecCode, error) {
	if err := s.check(answers); err != nil {
		return "", err
	}
	sums := make(map[string]int, len(RiasecTraits))
	for _, trait := range RiasecTraits {
		for _, q := range s.bank.QuestionsForTrait(KindRIASEC, trait) {
			sums[trait] += s.value(answers, q.ID)
		}
	}
	return rankRiasec(sums), nil
}

// Score runs both scorers.
func (s *Scorer) Score(answers AnswerSet) (Result, error) {
	ocean, err := s.ScoreOcean(answers)
	if err != nil {
		return Result{}, err
	}
	code, err := s.ScoreRiasec(answers)
	if err != nil {
		return Result{}, err
	}
	return Result{OceanScores: ocean, RiasecCode: code}, nil
}

func (s *Scorer) check(answers AnswerSet) error {
	if s.opts.policy == ValueReject {
		for _, q := range s.bank.questions {
			v, ok := answers[q.ID]
			if ok && (v < MinValue || v > MaxValue) {
				return &ValidationError{QuestionID: q.ID, Value: v}
			}
		}
	}
	if s.opts.strict {
		if missing := s.bank.Missing(answers); len(missing) > 0 {
			return &IncompleteAnswersError{Missing: missing}
		}
	}
	return nil
}

func (s *Scorer) value(answers AnswerSet, id string) int {
	v, ok := answers[id]
	if !ok {
		return NeutralValue
	}
	if v < MinValue {
		return MinValue
	}
	if v > MaxValue {
		return MaxValue
	}
	return v
}

// percentage computes round((raw-n)/(4n)*100) in integers; raw >= n always holds
// once values are within range.
func percentage(raw, n int) int {
	span := (MaxValue - MinValue) * n
	return (200*(raw-n) + span) / (2 * span)
}

func rankRiasec(sums map[string]int) RiasecCode {
	ranked := make([]string, len(RiasecTraits))
	copy(ranked, RiasecTraits)
	sort.SliceStable(ranked, func(i, j int) bool {
		return sums[ranked[i]] > sums[ranked[j]]
	})
	return RiasecCode(strings.Join(ranked[:3], ""))
}

// ValidRiasecCode reports whether code is three distinct RIASEC letters.
func ValidRiasecCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	seen := make(map[rune]bool, 3)
	for _, r := range code {
		if !validTrait(KindRIASEC, string(r)) || seen[r] {
			return false
		}
		seen[r] = true
	}
	return true
}

// ScoreOcean scores answers against the default bank with default options.
func ScoreOcean(answers AnswerSet) (OceanScores, error) {
	return defaultScorer.ScoreOcean(answers)
}

// ScoreRiasec scores answers against the default bank with default options.
func ScoreRiasec(answers AnswerSet) (RiasecCode, error) {
	return defaultScorer.ScoreRiasec(answers)
}

var defaultScorer = NewScorer(nil)
