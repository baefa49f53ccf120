// Package assessment holds the OCEAN/RIASEC question bank, the scorers that turn
// Likert answers into trait percentages and Holland codes, and the session driver
// that walks the bank one question at a time.
package assessment

// Kind is the scoring system a question feeds.
type Kind string

const (
	KindOCEAN  Kind = "OCEAN"
	KindRIASEC Kind = "RIASEC"
)

// Likert bounds. NeutralValue is used for unanswered questions.
const (
	MinValue     = 1
	MaxValue     = 5
	NeutralValue = 3
)

// Question is a single prompt of the bank.
type Question struct {
	ID      string `json:"id" yaml:"id"`
	Kind    Kind   `json:"type" yaml:"type"`
	Trait   string `json:"trait" yaml:"trait"`
	Text    string `json:"text" yaml:"text"`
	Reverse bool   `json:"reverse" yaml:"reverse"`
}

// AnswerSet maps question id to a Likert value.
type AnswerSet map[string]int

// Clone returns an independent copy of the answer set.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// OceanTraits lists the Big Five trait codes in scoring order.
var OceanTraits = []string{"O", "C", "E", "A", "N"}

// RiasecTraits lists the Holland codes in enumeration order. Ranking ties are
// resolved in this order.
var RiasecTraits = []string{"R", "I", "A", "S", "E", "C"}

var oceanLabels = map[string]string{
	"O": "Openness",
	"C": "Conscientiousness",
	"E": "Extraversion",
	"A": "Agreeableness",
	"N": "Neuroticism",
}

var riasecLabels = map[string]string{
	"R": "Realistic",
	"I": "Investigative",
	"A": "Artistic",
	"S": "Social",
	"E": "Enterprising",
	"C": "Conventional",
}

// OceanLabel returns the full trait name for an OCEAN code ("O" -> "Openness").
func OceanLabel(trait string) string {
	return oceanLabels[trait]
}

// RiasecLabel returns the full Holland name for a RIASEC code ("I" -> "Investigative").
func RiasecLabel(trait string) string {
	return riasecLabels[trait]
}

// OceanTraitNames returns the five full OCEAN trait names in scoring order.
func OceanTraitNames() []string {
	names := make([]string, 0, len(OceanTraits))
	for _, t := range OceanTraits {
		names = append(names, oceanLabels[t])
	}
	return names
}

func validTrait(kind Kind, trait string) bool {
	switch kind {
	case KindOCEAN:
		_, ok := oceanLabels[trait]
		return ok
	case KindRIASEC:
		_, ok := riasecLabels[trait]
		return ok
	default:
		return false
	}
}

func traitsOf(kind Kind) []string {
	if kind == KindOCEAN {
		return OceanTraits
	}
	return RiasecTraits
}
