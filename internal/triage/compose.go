package triage

import (
	"fmt"
	"strings"
)

// Chat action suggestions.
const (
	ActionCallAmbulance        = "Call Ambulance"
	ActionEmergencyAppointment = "Book Emergency Appointment"
	ActionRegularAppointment   = "Book Regular Appointment"
	ActionFindPharmacy         = "Find Nearby Pharmacy"
	ActionTalkToDoctor         = "Talk to Doctor"
)

// AssessmentResult is the structured projection of an Evaluation. Empty
// advice lists are omitted from the JSON form.
type AssessmentResult struct {
	PossibleConditions  []Condition `json:"possibleConditions"`
	OverallUrgency      Urgency     `json:"overallUrgency"`
	Recommendations     []string    `json:"recommendations"`
	HomeRemedies        []string    `json:"homeRemedies,omitempty"`
	SuggestedMedicines  []string    `json:"suggestedMedicines,omitempty"`
	RecommendedTests    []string    `json:"recommendedTests,omitempty"`
	SuggestedSpecialist string      `json:"suggestedSpecialist"`
	Actions             []string    `json:"actions"`
}

// ReplyCondition names the condition a chat reply is about.
type ReplyCondition struct {
	Title   string `json:"title"`
	Urgency Tier   `json:"urgency"`
}

// ChatReply is the chatbot projection of an Evaluation.
type ChatReply struct {
	Message     string          `json:"message"`
	Condition   *ReplyCondition `json:"condition,omitempty"`
	Urgency     Urgency         `json:"urgency"`
	Suggestions []string        `json:"suggestions"`
}

// ComposeAssessment builds the structured result. It copies every slice so
// the result shares nothing with ev.
func ComposeAssessment(ev *Evaluation) *AssessmentResult {
	specialist := ev.Specialist
	if specialist == "" {
		specialist = DefaultSpecialist
	}
	return &AssessmentResult{
		PossibleConditions:  append([]Condition(nil), ev.Conditions...),
		OverallUrgency:      ev.Urgency,
		Recommendations:     copyStrings(ev.Recommendations),
		HomeRemedies:        copyStrings(ev.HomeRemedies),
		SuggestedMedicines:  copyStrings(ev.Medicines),
		RecommendedTests:    copyStrings(ev.Tests),
		SuggestedSpecialist: specialist,
		Actions:             assessmentActions(ev.Urgency),
	}
}

// assessmentActions are the follow-on hints for the booking and pharmacy
// subsystems.
func assessmentActions(u Urgency) []string {
	switch u {
	case UrgencyEmergency:
		return []string{ActionCallAmbulance, ActionEmergencyAppointment, ActionTalkToDoctor}
	case UrgencyUrgent:
		return suggestionsFor(TierHigh)
	default:
		return suggestionsFor(TierLow)
	}
}

// ComposeReply builds the chatbot reply around the first catalog hit.
func ComposeReply(ev *Evaluation) *ChatReply {
	if ev.Emergency {
		return &ChatReply{
			Message: "This may be a medical emergency. Call 108 for an ambulance or 102 right away, " +
				"do not drive yourself, and stay with someone until help arrives.",
			Urgency:     UrgencyEmergency,
			Suggestions: assessmentActions(UrgencyEmergency),
		}
	}

	m, ok := ev.FirstKeywordMatch()
	if !ok {
		return &ChatReply{
			Message: "I could not match your symptoms to a known condition. " +
				"Please describe them in a little more detail, or talk to a doctor.",
			Urgency:     ev.Urgency,
			Suggestions: suggestionsFor(TierLow),
		}
	}

	return &ChatReply{
		Message:     formatEntry(*m.Entry),
		Condition:   &ReplyCondition{Title: m.Entry.Title, Urgency: m.Entry.Urgency},
		Urgency:     ev.Urgency,
		Suggestions: suggestionsFor(m.Entry.Urgency),
	}
}

func suggestionsFor(tier Tier) []string {
	first := ActionRegularAppointment
	if tier == TierHigh {
		first = ActionEmergencyAppointment
	}
	return []string{first, ActionFindPharmacy, ActionTalkToDoctor}
}

func formatEntry(e ConditionEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "It sounds like %s.\n\n", e.Title)
	fmt.Fprintf(&b, "Possible cause: %s\n", e.Cause)
	fmt.Fprintf(&b, "Home remedy: %s\n", e.HomeRemedy)
	fmt.Fprintf(&b, "Over the counter: %s\n", e.OTCAdvice)
	fmt.Fprintf(&b, "See a doctor if: %s", e.DangerSigns)
	return b.String()
}

func copyStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return append([]string(nil), in...)
}
