package triage

import "strings"

// MatchSource tells whether a match came from a combination rule or from a
// catalog keyword.
type MatchSource string

const (
	SourceRule    MatchSource = "rule"
	SourceKeyword MatchSource = "keyword"
)

// Condition is a possible condition with its confidence.
type Condition struct {
	Title       string `json:"conditionTitle"`
	Probability int    `json:"probability"`
	Severity    Tier   `json:"severityTier"`
	Description string `json:"description"`
}

// Match is one hit produced by the Matcher. Entry and Keywords are set only
// for keyword matches.
type Match struct {
	Condition Condition
	Source    MatchSource
	Entry     *ConditionEntry
	Keywords  []string
}

// Matcher finds catalog and combination-rule hits for an input.
type Matcher struct {
	catalog *Catalog
}

func NewMatcher(catalog *Catalog) *Matcher {
	return &Matcher{catalog: catalog}
}

// Match returns combination-rule matches in rule order followed by keyword
// matches in catalog order. A title seen earlier in the sequence is dropped.
func (m *Matcher) Match(in SymptomInput) []Match {
	return mergeMatches(in, m.keywordMatches(in))
}

// mergeMatches puts rule hits ahead of the catalog hits and drops repeated
// titles.
func mergeMatches(in SymptomInput, keywordHits []Match) []Match {
	var out []Match
	seen := make(map[string]bool)
	add := func(match Match) {
		key := strings.ToLower(match.Condition.Title)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, match)
	}

	for _, r := range combinationRules {
		if !r.when(in) {
			continue
		}
		for _, c := range r.conditions(in) {
			add(Match{Condition: c, Source: SourceRule})
		}
	}
	for _, match := range keywordHits {
		add(match)
	}
	return out
}

func (m *Matcher) keywordMatches(in SymptomInput) []Match {
	tokens := in.tokens()
	if len(tokens) == 0 {
		return nil
	}

	var out []Match
	for _, e := range m.catalog.entries {
		hits := e.matchedKeywords(tokens...)
		if len(hits) == 0 {
			continue
		}
		entry := e.clone()
		out = append(out, Match{
			Condition: Condition{
				Title:       entry.Title,
				Probability: keywordProbability(len(hits)),
				Severity:    entry.Urgency,
				Description: entry.Cause,
			},
			Source:   SourceKeyword,
			Entry:    &entry,
			Keywords: hits,
		})
	}
	return out
}

// keywordProbability grows with the number of distinct keywords hit and
// stays below the emergency confidence.
func keywordProbability(hits int) int {
	p := 40 + 15*hits
	if p > 80 {
		p = 80
	}
	return p
}
