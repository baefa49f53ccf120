package assessment

// referenceQuestions is the 40-question bank: 4 per OCEAN trait, then
// 4/4/3/3/3/3 per RIASEC code. RIASEC ids carry an H (Holland) prefix so they
// never collide with OCEAN ids in an AnswerSet.
var referenceQuestions = []Question{
	{ID: "O1", Kind: KindOCEAN, Trait: "O", Text: "I enjoy exploring new ideas and trying new things"},
	{ID: "O2", Kind: KindOCEAN, Trait: "O", Text: "I am imaginative and creative"},
	{ID: "O3", Kind: KindOCEAN, Trait: "O", Text: "I prefer routine and familiar experiences over novelty", Reverse: true},
	{ID: "O4", Kind: KindOCEAN, Trait: "O", Text: "I enjoy artistic and cultural activities"},

	{ID: "C1", Kind: KindOCEAN, Trait: "C", Text: "I am organized and pay attention to detail"},
	{ID: "C2", Kind: KindOCEAN, Trait: "C", Text: "I complete tasks thoroughly and on time"},
	{ID: "C3", Kind: KindOCEAN, Trait: "C", Text: "I tend to be messy and disorganized", Reverse: true},
	{ID: "C4", Kind: KindOCEAN, Trait: "C", Text: "I make plans and stick to them"},

	{ID: "E1", Kind: KindOCEAN, Trait: "E", Text: "I feel energized when spending time with others"},
	{ID: "E2", Kind: KindOCEAN, Trait: "E", Text: "I enjoy being the center of attention"},
	{ID: "E3", Kind: KindOCEAN, Trait: "E", Text: "I prefer quiet, solitary activities", Reverse: true},
	{ID: "E4", Kind: KindOCEAN, Trait: "E", Text: "I find it easy to start conversations with strangers"},

	{ID: "A1", Kind: KindOCEAN, Trait: "A", Text: "I am compassionate and caring towards others"},
	{ID: "A2", Kind: KindOCEAN, Trait: "A", Text: "I trust people and believe in their good intentions"},
	{ID: "A3", Kind: KindOCEAN, Trait: "A", Text: "I often put my own needs before others", Reverse: true},
	{ID: "A4", Kind: KindOCEAN, Trait: "A", Text: "I enjoy helping others and working cooperatively"},

	{ID: "N1", Kind: KindOCEAN, Trait: "N", Text: "I often feel anxious or worried"},
	{ID: "N2", Kind: KindOCEAN, Trait: "N", Text: "My mood changes frequently"},
	{ID: "N3", Kind: KindOCEAN, Trait: "N", Text: "I remain calm in stressful situations", Reverse: true},
	{ID: "N4", Kind: KindOCEAN, Trait: "N", Text: "I tend to be emotionally sensitive"},

	{ID: "HR1", Kind: KindRIASEC, Trait: "R", Text: "I enjoy working with tools, machines, or equipment"},
	{ID: "HR2", Kind: KindRIASEC, Trait: "R", Text: "I prefer hands-on physical work over desk work"},
	{ID: "HR3", Kind: KindRIASEC, Trait: "R", Text: "I like outdoor activities and working with my hands"},
	{ID: "HR4", Kind: KindRIASEC, Trait: "R", Text: "I enjoy building, repairing, or fixing things"},

	{ID: "HI1", Kind: KindRIASEC, Trait: "I", Text: "I enjoy solving complex problems and thinking analytically"},
	{ID: "HI2", Kind: KindRIASEC, Trait: "I", Text: "I am curious about how things work scientifically"},
	{ID: "HI3", Kind: KindRIASEC, Trait: "I", Text: "I like conducting research and analyzing data"},
	{ID: "HI4", Kind: KindRIASEC, Trait: "I", Text: "I enjoy learning about math, science, or technology"},

	{ID: "HA1", Kind: KindRIASEC, Trait: "A", Text: "I enjoy creative expression through art, music, or writing"},
	{ID: "HA2", Kind: KindRIASEC, Trait: "A", Text: "I prefer unstructured environments that allow creativity"},
	{ID: "HA3", Kind: KindRIASEC, Trait: "A", Text: "I am drawn to design, aesthetics, and self-expression"},

	{ID: "HS1", Kind: KindRIASEC, Trait: "S", Text: "I enjoy helping people and making a positive impact"},
	{ID: "HS2", Kind: KindRIASEC, Trait: "S", Text: "I like teaching, counseling, or supporting others"},
	{ID: "HS3", Kind: KindRIASEC, Trait: "S", Text: "I am skilled at understanding and relating to people"},

	{ID: "HE1", Kind: KindRIASEC, Trait: "E", Text: "I enjoy leading projects and persuading others"},
	{ID: "HE2", Kind: KindRIASEC, Trait: "E", Text: "I am motivated by business, sales, or entrepreneurship"},
	{ID: "HE3", Kind: KindRIASEC, Trait: "E", Text: "I like taking risks and being competitive"},

	{ID: "HC1", Kind: KindRIASEC, Trait: "C", Text: "I prefer structured, organized work environments"},
	{ID: "HC2", Kind: KindRIASEC, Trait: "C", Text: "I enjoy working with data, numbers, and details"},
	{ID: "HC3", Kind: KindRIASEC, Trait: "C", Text: "I am skilled at following procedures and maintaining accuracy"},
}

var defaultBank = MustNewBank(referenceQuestions)

// DefaultBank returns the process-wide reference bank. It is never mutated.
func DefaultBank() *Bank {
	return defaultBank
}
