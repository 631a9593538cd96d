package triage

import (
	"sort"
	"strings"
)

const (
	DefaultSpecialist      = "General Physician"
	CardiologistSpecialist = "Cardiologist"
	DermatologySpecialist  = "Dermatologist"

	emergencyTitle       = "Cardiac Emergency"
	emergencyProbability = 85
)

// emergencyKeywords short-circuit the assessment when found in free text.
var emergencyKeywords = []string{
	"emergency", "urgent", "severe", "ambulance", "can't breathe", "chest pain", "unconscious",
}

var emergencyRecommendations = []string{
	"Call emergency services immediately: 108 (ambulance) or 102",
	"Do not drive yourself to the hospital",
	"Chew an aspirin (325mg) if you are not allergic to it",
	"Sit upright and loosen any tight clothing",
	"Stay calm and keep someone with you until help arrives",
}

var generalMalaise = Condition{
	Title:       "General Malaise",
	Probability: 50,
	Severity:    TierLow,
	Description: "A general feeling of discomfort without a specific pattern",
}

var (
	coldFluRemedies = []string{
		"Drink warm fluids like ginger tea with honey",
		"Steam inhalation 2-3 times a day",
		"Gargle with warm salt water",
		"Get plenty of rest",
	}
	coldFluMedicines = []string{
		"Paracetamol 500mg every 6 hours for fever (max 4 doses/day)",
		"Cetirizine 10mg once daily at night for runny nose",
		"Dextromethorphan cough syrup 10ml three times a day",
	}
	coldFluTests = []string{
		"Complete Blood Count (CBC)",
		"COVID-19 RT-PCR if symptoms persist",
	}

	gastroRemedies = []string{
		"Drink ORS after every loose stool or vomit",
		"Eat bland foods like rice, bananas and toast",
		"Avoid dairy, spicy and oily food",
		"Sip water frequently in small amounts",
	}
	gastroMedicines = []string{
		"ORS sachet dissolved in 1 litre of water, sip through the day",
		"Ondansetron 4mg for vomiting (up to 3 times a day)",
		"Loperamide 2mg after each loose stool (max 8mg/day)",
	}
	gastroTests = []string{
		"Stool Routine Examination",
		"Serum Electrolytes",
	}

	headacheRemedies = []string{
		"Rest in a quiet, dark room",
		"Apply a cold compress to the forehead",
		"Drink plenty of water",
		"Limit screen time",
	}
	headacheMedicines = []string{
		"Paracetamol 500mg every 6 hours as needed",
		"Ibuprofen 400mg after food (max 3 times a day)",
	}

	rashMedicines = []string{
		"Cetirizine 10mg for itching",
		"Calamine lotion twice daily on the rash",
		"Hydrocortisone 1% cream for inflamed patches",
	}
)

// rule is one combination block of the aggregator. conditions accumulate
// across rules; apply assigns advice fields, so the last rule to set a field
// wins.
type rule struct {
	name       string
	when       func(in SymptomInput) bool
	conditions func(in SymptomInput) []Condition
	apply      func(in SymptomInput, st *aggregate)
}

var combinationRules = []rule{
	{
		name: "cold-flu",
		when: func(in SymptomInput) bool { return in.Has(Fever) && in.Has(Cough) },
		conditions: func(in SymptomInput) []Condition {
			var out []Condition
			if in.Has(RunnyNose) || in.Has(SoreThroat) {
				out = append(out,
					Condition{Title: "Common Cold", Probability: 70, Severity: TierLow, Description: "Viral infection of the nose and throat"},
					Condition{Title: "Influenza", Probability: 60, Severity: TierMedium, Description: "Seasonal flu caused by influenza viruses"},
				)
			}
			if in.Has(BodyPain) && in.Has(Fatigue) {
				out = append(out, Condition{Title: "Viral Fever", Probability: 75, Severity: TierMedium, Description: "Fever with body ache and tiredness from a viral infection"})
			}
			return out
		},
		apply: func(in SymptomInput, st *aggregate) {
			st.remedies = coldFluRemedies
			st.medicines = coldFluMedicines
			st.tests = coldFluTests
		},
	},
	{
		name: "gastro",
		when: func(in SymptomInput) bool { return in.Has(Nausea) || in.Has(Vomiting) || in.Has(Diarrhea) },
		conditions: func(in SymptomInput) []Condition {
			return []Condition{
				{Title: "Gastroenteritis", Probability: 80, Severity: TierMedium, Description: "Inflammation of the stomach and intestines"},
				{Title: "Food Poisoning", Probability: 65, Severity: TierMedium, Description: "Illness caused by contaminated food or water"},
			}
		},
		apply: func(in SymptomInput, st *aggregate) {
			st.remedies = gastroRemedies
			st.medicines = gastroMedicines
			st.tests = gastroTests
			if in.SeverityLevel == SeveritySevere {
				st.urgency = UrgencyUrgent
			} else {
				st.urgency = UrgencySoon
			}
			st.urgencyLocked = true
		},
	},
	{
		name: "headache",
		when: func(in SymptomInput) bool { return in.Has(Headache) },
		conditions: func(in SymptomInput) []Condition {
			if in.Has(Nausea) || in.Has(Dizziness) {
				return []Condition{{Title: "Migraine", Probability: 70, Severity: TierMedium, Description: "Recurring headache often with nausea or dizziness"}}
			}
			return []Condition{{Title: "Tension Headache", Probability: 80, Severity: TierLow, Description: "Headache from stress, posture or eye strain"}}
		},
		apply: func(in SymptomInput, st *aggregate) {
			st.remedies = headacheRemedies
			st.medicines = headacheMedicines
		},
	},
	{
		name: "rash",
		when: func(in SymptomInput) bool { return in.Has(Rash) },
		conditions: func(in SymptomInput) []Condition {
			return []Condition{
				{Title: "Allergic Reaction", Probability: 60, Severity: TierMedium, Description: "Skin reaction to an allergen"},
				{Title: "Dermatitis", Probability: 50, Severity: TierLow, Description: "Irritation and inflammation of the skin"},
			}
		},
		apply: func(in SymptomInput, st *aggregate) {
			st.medicines = rashMedicines
			st.specialist = DermatologySpecialist
		},
	},
}

// aggregate is the mutable state of one aggregator pass.
type aggregate struct {
	conditions      []Condition
	urgency         Urgency
	urgencyLocked   bool
	remedies        []string
	medicines       []string
	tests           []string
	specialist      string
	recommendations []string
}

// isEmergency reports whether the input hits the emergency flag pair or an
// emergency keyword in its free text.
func isEmergency(in SymptomInput) bool {
	if in.Has(ChestPain) && in.Has(BreathingDifficulty) {
		return true
	}
	text := normalizeText(in.FreeText)
	if strings.TrimSpace(text) == "" {
		return false
	}
	for _, kw := range emergencyKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func emergencyAggregate() *aggregate {
	return &aggregate{
		conditions: []Condition{{
			Title:       emergencyTitle,
			Probability: emergencyProbability,
			Severity:    TierHigh,
			Description: "Chest pain with breathing difficulty or other emergency warning signs needs immediate medical attention",
		}},
		urgency:         UrgencyEmergency,
		urgencyLocked:   true,
		specialist:      CardiologistSpecialist,
		recommendations: emergencyRecommendations,
	}
}

// aggregateRules applies the combination rules, the urgency fallback and the
// generic recommendations to the matcher output.
func aggregateRules(in SymptomInput, matches []Match) *aggregate {
	st := &aggregate{urgency: UrgencyRoutine, specialist: DefaultSpecialist}

	for _, m := range matches {
		if m.Source == SourceRule {
			st.conditions = append(st.conditions, m.Condition)
		}
	}
	for _, r := range combinationRules {
		if r.when(in) {
			r.apply(in, st)
		}
	}

	flags := in.ActiveCount()
	if !st.urgencyLocked {
		switch {
		case in.SeverityLevel == SeveritySevere || flags > 5:
			st.urgency = UrgencyUrgent
		case in.SeverityLevel == SeverityModerate || flags > 3:
			st.urgency = UrgencySoon
		}
	}

	if len(st.conditions) == 0 {
		keyword := keywordConditions(matches)
		for _, m := range keyword {
			st.conditions = append(st.conditions, m.Condition)
		}
	}
	if len(st.conditions) == 0 {
		st.conditions = []Condition{generalMalaise}
	}

	st.recommendations = generalRecommendations(flags)
	return st
}

// keywordConditions orders keyword matches by hit count, keeping catalog
// order for ties.
func keywordConditions(matches []Match) []Match {
	var out []Match
	for _, m := range matches {
		if m.Source == SourceKeyword {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Keywords) > len(out[j].Keywords)
	})
	return out
}

func generalRecommendations(flags int) []string {
	recs := []string{
		"Monitor your symptoms and note any changes",
		"Keep a symptom diary with timings and possible triggers",
		"Stay hydrated and get adequate rest",
		"Avoid self-medication beyond the suggested over-the-counter doses",
	}
	if flags > 3 {
		recs = append(recs, "Book an appointment with a doctor within 24-48 hours")
	} else {
		recs = append(recs, "Consider a teleconsultation if symptoms do not improve")
	}
	return recs
}
