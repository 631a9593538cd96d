package triage

// Tier is the static urgency of a catalog entry and the severity of a
// possible condition.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

func (t Tier) valid() bool {
	switch t {
	case TierLow, TierMedium, TierHigh:
		return true
	}
	return false
}

// Urgency is the overall recommendation computed for one assessment.
type Urgency string

const (
	UrgencyRoutine   Urgency = "routine"
	UrgencySoon      Urgency = "soon"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyEmergency Urgency = "emergency"
)

// Severity is the user-declared severity of their symptoms.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

func (s Severity) valid() bool {
	switch s {
	case "", SeverityMild, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// Duration is how long the symptoms have been present.
type Duration string

const (
	DurationToday     Duration = "today"
	DurationFewDays   Duration = "2-3days"
	DurationWeek      Duration = "week"
	DurationTwoWeeks  Duration = "2weeks"
	DurationMonthPlus Duration = "month+"
)

func (d Duration) valid() bool {
	switch d {
	case "", DurationToday, DurationFewDays, DurationWeek, DurationTwoWeeks, DurationMonthPlus:
		return true
	}
	return false
}
