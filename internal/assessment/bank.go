package assessment

import (
	"fmt"
)

// Bank is an immutable, validated question bank.
type Bank struct {
	questions []Question
	byID      map[string]int
	byTrait   map[Kind]map[string][]int
}

// NewBank validates the questions and builds the lookup indexes. Order is kept as
// given: it is the order the session driver presents questions in.
func NewBank(questions []Question) (*Bank, error) {
	b := &Bank{
		questions: make([]Question, len(questions)),
		byID:      make(map[string]int, len(questions)),
		byTrait: map[Kind]map[string][]int{
			KindOCEAN:  {},
			KindRIASEC: {},
		},
	}
	copy(b.questions, questions)

	for i, q := range b.questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d: empty id", i)
		}
		if _, dup := b.byID[q.ID]; dup {
			return nil, fmt.Errorf("question %s: duplicate id", q.ID)
		}
		if !validTrait(q.Kind, q.Trait) {
			return nil, fmt.Errorf("question %s: unknown trait %q for kind %q", q.ID, q.Trait, q.Kind)
		}
		if q.Reverse && q.Kind == KindRIASEC {
			return nil, fmt.Errorf("question %s: RIASEC questions cannot be reverse-scored", q.ID)
		}
		b.byID[q.ID] = i
		b.byTrait[q.Kind][q.Trait] = append(b.byTrait[q.Kind][q.Trait], i)
	}

	for _, kind := range []Kind{KindOCEAN, KindRIASEC} {
		for _, trait := range traitsOf(kind) {
			if len(b.byTrait[kind][trait]) == 0 {
				return nil, fmt.Errorf("%s trait %s has no questions", kind, trait)
			}
		}
	}
	return b, nil
}

// MustNewBank is NewBank for banks compiled into the binary.
func MustNewBank(questions []Question) *Bank {
	b, err := NewBank(questions)
	if err != nil {
		panic(err)
	}
	return b
}

// AllQuestions returns OCEAN and RIASEC questions in authoring order.
func (b *Bank) AllQuestions() []Question {
	out := make([]Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// QuestionsForTrait returns the questions of one trait in authoring order.
func (b *Bank) QuestionsForTrait(kind Kind, trait string) []Question {
	idx := b.byTrait[kind][trait]
	out := make([]Question, 0, len(idx))
	for _, i := range idx {
		out = append(out, b.questions[i])
	}
	return out
}

// Lookup finds a question by id.
func (b *Bank) Lookup(id string) (Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	return b.questions[i], true
}

// Len is the number of questions in the bank.
func (b *Bank) Len() int {
	return len(b.questions)
}

// At returns the question at position i of the authoring order.
func (b *Bank) At(i int) (Question, bool) {
	if i < 0 || i >= len(b.questions) {
		return Question{}, false
	}
	return b.questions[i], true
}

// Missing returns the ids of bank questions absent from answers, in authoring order.
func (b *Bank) Missing(answers AnswerSet) []string {
	var missing []string
	for _, q := range b.questions {
		if _, ok := answers[q.ID]; !ok {
			missing = append(missing, q.ID)
		}
	}
	return missing
}
