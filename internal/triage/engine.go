package triage

// Evaluation is the outcome of one engine pass. Both output projections are
// computed from it.
type Evaluation struct {
	Input           SymptomInput
	Emergency       bool
	Matches         []Match
	KeywordHits     []Match
	Conditions      []Condition
	Urgency         Urgency
	Recommendations []string
	HomeRemedies    []string
	Medicines       []string
	Tests           []string
	Specialist      string
	CatalogVersion  string
}

// FirstKeywordMatch returns the first catalog hit in declaration order,
// including entries whose title a combination rule already produced.
func (ev *Evaluation) FirstKeywordMatch() (Match, bool) {
	if len(ev.KeywordHits) == 0 {
		return Match{}, false
	}
	return ev.KeywordHits[0], true
}

// Engine is the rule-based triage engine. It is safe for concurrent use.
type Engine struct {
	catalog *Catalog
	matcher *Matcher
}

func NewEngine(catalog *Catalog) *Engine {
	return &Engine{catalog: catalog, matcher: NewMatcher(catalog)}
}

// Catalog returns the catalog the engine matches against.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Evaluate validates the input and runs the emergency gate, the matcher and
// the aggregator.
func (e *Engine) Evaluate(in SymptomInput) (*Evaluation, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if isEmergency(in) {
		return newEvaluation(in, true, nil, emergencyAggregate(), e.catalog.Version()), nil
	}

	hits := e.matcher.keywordMatches(in)
	matches := mergeMatches(in, hits)
	ev := newEvaluation(in, false, matches, aggregateRules(in, matches), e.catalog.Version())
	ev.KeywordHits = hits
	return ev, nil
}

// Assess returns the structured assessment for in.
func (e *Engine) Assess(in SymptomInput) (*AssessmentResult, error) {
	ev, err := e.Evaluate(in)
	if err != nil {
		return nil, err
	}
	return ComposeAssessment(ev), nil
}

// Reply returns the chatbot reply for in.
func (e *Engine) Reply(in SymptomInput) (*ChatReply, error) {
	ev, err := e.Evaluate(in)
	if err != nil {
		return nil, err
	}
	return ComposeReply(ev), nil
}

func newEvaluation(in SymptomInput, emergency bool, matches []Match, st *aggregate, version string) *Evaluation {
	return &Evaluation{
		Input:           in,
		Emergency:       emergency,
		Matches:         matches,
		Conditions:      st.conditions,
		Urgency:         st.urgency,
		Recommendations: st.recommendations,
		HomeRemedies:    st.remedies,
		Medicines:       st.medicines,
		Tests:           st.tests,
		Specialist:      st.specialist,
		CatalogVersion:  version,
	}
}
