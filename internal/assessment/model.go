package assessment

import (
	"time"

	"github.com/google/uuid"

	"healthbridge/internal/triage"
)

// Kind tells which projection a record stores.
type Kind string

const (
	KindAssessment Kind = "assessment"
	KindChat       Kind = "chat"
)

// AnonymousPatient is used when a request carries no patient id.
const AnonymousPatient = "anonymous"

// Record is one stored triage interaction. Records are append-only.
type Record struct {
	ID             uuid.UUID                `json:"id" db:"id"`
	PatientID      string                   `json:"patientId" db:"patient_id"`
	Kind           Kind                     `json:"kind" db:"kind"`
	Input          triage.SymptomInput      `json:"input" db:"input"`
	Result         *triage.AssessmentResult `json:"result,omitempty" db:"result"`
	Reply          *triage.ChatReply        `json:"reply,omitempty" db:"reply"`
	OverallUrgency triage.Urgency           `json:"overallUrgency" db:"overall_urgency"`
	Emergency      bool                     `json:"emergency" db:"emergency"`
	CatalogVersion string                   `json:"catalogVersion" db:"catalog_version"`
	CreatedAt      time.Time                `json:"createdAt" db:"created_at"`
}

// CompletedPayload is published on the events channel after every stored
// record.
type CompletedPayload struct {
	RecordID       string         `json:"recordId"`
	PatientID      string         `json:"patientId"`
	Kind           Kind           `json:"kind"`
	OverallUrgency triage.Urgency `json:"overallUrgency"`
	Emergency      bool           `json:"emergency"`
	Conditions     []string       `json:"conditions,omitempty"`
}

// EventCompleted is the event type for CompletedPayload.
const EventCompleted = "assessment.completed"

func newRecord(patientID string, kind Kind, ev *triage.Evaluation) *Record {
	return &Record{
		ID:             uuid.New(),
		PatientID:      patientID,
		Kind:           kind,
		Input:          ev.Input,
		OverallUrgency: ev.Urgency,
		Emergency:      ev.Emergency,
		CatalogVersion: ev.CatalogVersion,
		CreatedAt:      time.Now().UTC(),
	}
}

func (r *Record) completedPayload() CompletedPayload {
	p := CompletedPayload{
		RecordID:       r.ID.String(),
		PatientID:      r.PatientID,
		Kind:           r.Kind,
		OverallUrgency: r.OverallUrgency,
		Emergency:      r.Emergency,
	}
	if r.Result != nil {
		for _, c := range r.Result.PossibleConditions {
			p.Conditions = append(p.Conditions, c.Title)
		}
	}
	if r.Reply != nil && r.Reply.Condition != nil {
		p.Conditions = append(p.Conditions, r.Reply.Condition.Title)
	}
	return p
}
