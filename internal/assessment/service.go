package assessment

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"healthbridge/internal/platform/events"
	"healthbridge/internal/triage"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100

	reportTimeout = 30 * time.Second
)

// ReportService defines the interface for sending emergency reports
type ReportService interface {
	SendEmergencyReport(ctx context.Context, rec Record) error
}

type Service interface {
	Assess(ctx context.Context, patientID string, in triage.SymptomInput) (*triage.AssessmentResult, error)
	Chat(ctx context.Context, patientID string, in triage.SymptomInput) (*triage.ChatReply, error)
	History(ctx context.Context, patientID string, limit int) ([]Record, error)
	Catalog() *triage.Catalog
}

type service struct {
	engine    *triage.Engine
	repo      Repository
	publisher events.Publisher
	reportSvc ReportService
}

// NewService wires the engine to its collaborators. publisher and report
// may be nil.
func NewService(engine *triage.Engine, repo Repository, publisher events.Publisher, report ReportService) Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &service{
		engine:    engine,
		repo:      repo,
		publisher: publisher,
		reportSvc: report,
	}
}

func (s *service) Catalog() *triage.Catalog {
	return s.engine.Catalog()
}

func (s *service) Assess(ctx context.Context, patientID string, in triage.SymptomInput) (*triage.AssessmentResult, error) {
	ev, err := s.engine.Evaluate(in)
	if err != nil {
		return nil, err
	}

	result := triage.ComposeAssessment(ev)
	rec := newRecord(normalizePatientID(patientID), KindAssessment, ev)
	rec.Result = result

	s.record(ctx, rec)
	return result, nil
}

func (s *service) Chat(ctx context.Context, patientID string, in triage.SymptomInput) (*triage.ChatReply, error) {
	ev, err := s.engine.Evaluate(in)
	if err != nil {
		return nil, err
	}

	reply := triage.ComposeReply(ev)
	rec := newRecord(normalizePatientID(patientID), KindChat, ev)
	rec.Reply = reply

	s.record(ctx, rec)
	return reply, nil
}

func (s *service) History(ctx context.Context, patientID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.repo.ListByPatient(ctx, normalizePatientID(patientID), limit)
}

// record persists, publishes and escalates rec. None of these steps can
// fail the triage call.
func (s *service) record(ctx context.Context, rec *Record) {
	logger := log.With().
		Str("record_id", rec.ID.String()).
		Str("patient_id", rec.PatientID).
		Str("kind", string(rec.Kind)).
		Str("urgency", string(rec.OverallUrgency)).
		Logger()

	if err := s.repo.Append(ctx, rec); err != nil {
		logger.Error().Err(err).Msg("failed to store assessment")
	}

	if err := s.publisher.Publish(ctx, events.NewEvent(EventCompleted, rec.completedPayload())); err != nil {
		logger.Warn().Err(err).Msg("failed to publish assessment event")
	}

	logger.Info().Bool("emergency", rec.Emergency).Msg("triage completed")

	if !rec.Emergency || s.reportSvc == nil {
		return
	}

	go func(r Record) {
		// Detached from the request; the caller has already been answered.
		bgCtx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()

		if err := s.reportSvc.SendEmergencyReport(bgCtx, r); err != nil {
			logger.Error().Err(err).Msg("failed to send emergency report")
			return
		}
		logger.Info().Msg("emergency report sent")
	}(*rec)
}

func normalizePatientID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return AnonymousPatient
	}
	return id
}
