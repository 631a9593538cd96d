package triage

import (
	"fmt"
	"sort"
	"strings"
)

// SymptomInput is one assessment request.
type SymptomInput struct {
	FreeText       string           `json:"freeText,omitempty"`
	SelectedFlags  map[Symptom]bool `json:"selectedFlags,omitempty"`
	SeverityLevel  Severity         `json:"severityLevel,omitempty"`
	DurationBucket Duration         `json:"durationBucket,omitempty"`
}

// EmptyInputError is returned when a request carries no usable symptom signal.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "select at least one symptom or describe your condition"
}

// InvalidInputError is returned for values outside the accepted enumerations.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Has reports whether the checkbox for s is ticked.
func (in SymptomInput) Has(s Symptom) bool {
	return in.SelectedFlags[s]
}

// ActiveCount returns the number of ticked checkboxes.
func (in SymptomInput) ActiveCount() int {
	n := 0
	for _, on := range in.SelectedFlags {
		if on {
			n++
		}
	}
	return n
}

// Active returns ticked symptoms in vocabulary order.
func (in SymptomInput) Active() []Symptom {
	var out []Symptom
	for _, info := range vocabulary {
		if in.SelectedFlags[info.Key] {
			out = append(out, info.Key)
		}
	}
	return out
}

// Validate checks enumerations first and then the empty-input condition.
func (in SymptomInput) Validate() error {
	if len(in.SelectedFlags) > 0 {
		var unknown []string
		for s := range in.SelectedFlags {
			if !s.Known() {
				unknown = append(unknown, string(s))
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return &InvalidInputError{Field: "selectedFlags", Reason: "unknown symptom " + strings.Join(unknown, ", ")}
		}
	}
	if !in.SeverityLevel.valid() {
		return &InvalidInputError{Field: "severityLevel", Reason: fmt.Sprintf("%q is not one of mild, moderate, severe", in.SeverityLevel)}
	}
	if !in.DurationBucket.valid() {
		return &InvalidInputError{Field: "durationBucket", Reason: fmt.Sprintf("%q is not one of today, 2-3days, week, 2weeks, month+", in.DurationBucket)}
	}

	if strings.TrimSpace(in.FreeText) == "" && in.ActiveCount() == 0 && in.SeverityLevel == "" {
		return &EmptyInputError{}
	}
	return nil
}

// normalizeText lowercases text and folds typographic apostrophes so that
// "can’t breathe" matches "can't breathe".
func normalizeText(text string) string {
	text = strings.ToLower(text)
	return strings.NewReplacer("’", "'", "‘", "'").Replace(text)
}

// tokens returns the lowercase texts keyword matching runs against: the free
// text first, then one phrase per ticked checkbox.
func (in SymptomInput) tokens() []string {
	var out []string
	if text := strings.TrimSpace(in.FreeText); text != "" {
		out = append(out, normalizeText(text))
	}
	for _, s := range in.Active() {
		out = append(out, s.Phrase())
	}
	return out
}
