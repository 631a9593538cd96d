package assessment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthbridge/internal/platform/events"
	"healthbridge/internal/triage"
)

type stubRepo struct {
	mu        sync.Mutex
	appended  []Record
	appendErr error
	lastLimit int
}

func (s *stubRepo) Append(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, *rec)
	return nil
}

func (s *stubRepo) ListByPatient(ctx context.Context, patientID string, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLimit = limit
	var out []Record
	for _, r := range s.appended {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, nil
}

type stubPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *stubPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type stubReport struct {
	sent chan Record
	err  error
}

func (r *stubReport) SendEmergencyReport(ctx context.Context, rec Record) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("report context has no deadline")
	}
	r.sent <- rec
	return r.err
}

func newTestService(repo Repository, pub events.Publisher, report ReportService) Service {
	return NewService(triage.NewEngine(triage.DefaultCatalog()), repo, pub, report)
}

func TestService_AssessRecordsAndPublishes(t *testing.T) {
	repo := &stubRepo{}
	pub := &stubPublisher{}
	report := &stubReport{sent: make(chan Record, 1)}
	svc := newTestService(repo, pub, report)

	result, err := svc.Assess(context.Background(), " p-1 ", triage.SymptomInput{
		SelectedFlags: map[triage.Symptom]bool{triage.Headache: true, triage.Nausea: true},
	})
	require.NoError(t, err)
	assert.Equal(t, triage.UrgencyRoutine, result.OverallUrgency)

	require.Len(t, repo.appended, 1)
	rec := repo.appended[0]
	assert.Equal(t, "p-1", rec.PatientID)
	assert.Equal(t, KindAssessment, rec.Kind)
	assert.Equal(t, result, rec.Result)
	assert.Nil(t, rec.Reply)
	assert.False(t, rec.Emergency)
	assert.Equal(t, "2024.1", rec.CatalogVersion)

	require.Len(t, pub.events, 1)
	assert.Equal(t, EventCompleted, pub.events[0].Type)
	payload, ok := pub.events[0].Payload.(CompletedPayload)
	require.True(t, ok)
	assert.Equal(t, rec.ID.String(), payload.RecordID)
	assert.Equal(t, []string{"Migraine"}, payload.Conditions)

	select {
	case <-report.sent:
		t.Fatal("non-emergency assessment must not trigger a report")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestService_ValidationErrorStoresNothing(t *testing.T) {
	repo := &stubRepo{}
	pub := &stubPublisher{}
	svc := newTestService(repo, pub, nil)

	_, err := svc.Assess(context.Background(), "p-1", triage.SymptomInput{})
	var empty *triage.EmptyInputError
	require.ErrorAs(t, err, &empty)

	_, err = svc.Chat(context.Background(), "p-1", triage.SymptomInput{FreeText: "cough", SeverityLevel: "extreme"})
	var invalid *triage.InvalidInputError
	require.ErrorAs(t, err, &invalid)

	assert.Empty(t, repo.appended)
	assert.Empty(t, pub.events)
}

func TestService_EmergencyDispatchesReport(t *testing.T) {
	repo := &stubRepo{}
	report := &stubReport{sent: make(chan Record, 1)}
	svc := newTestService(repo, nil, report)

	result, err := svc.Assess(context.Background(), "p-9", triage.SymptomInput{
		SelectedFlags: map[triage.Symptom]bool{triage.ChestPain: true, triage.BreathingDifficulty: true},
	})
	require.NoError(t, err)
	assert.Equal(t, triage.UrgencyEmergency, result.OverallUrgency)

	select {
	case rec := <-report.sent:
		assert.Equal(t, "p-9", rec.PatientID)
		assert.True(t, rec.Emergency)
		require.NotNil(t, rec.Result)
		assert.Equal(t, "Cardiac Emergency", rec.Result.PossibleConditions[0].Title)
	case <-time.After(time.Second):
		t.Fatal("emergency report was not dispatched")
	}
}

func TestService_CollaboratorFailuresAreSwallowed(t *testing.T) {
	repo := &stubRepo{appendErr: errors.New("db down")}
	pub := &stubPublisher{err: errors.New("redis down")}
	report := &stubReport{sent: make(chan Record, 1), err: errors.New("telegram down")}
	svc := newTestService(repo, pub, report)

	reply, err := svc.Chat(context.Background(), "", triage.SymptomInput{FreeText: "I can't breathe"})
	require.NoError(t, err)
	assert.Equal(t, triage.UrgencyEmergency, reply.Urgency)
	assert.Len(t, pub.events, 1)

	select {
	case <-report.sent:
	case <-time.After(time.Second):
		t.Fatal("emergency report was not attempted")
	}
}

func TestService_ChatRecordsReply(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil, nil)

	reply, err := svc.Chat(context.Background(), "", triage.SymptomInput{FreeText: "I have a bad headache"})
	require.NoError(t, err)

	require.Len(t, repo.appended, 1)
	rec := repo.appended[0]
	assert.Equal(t, AnonymousPatient, rec.PatientID)
	assert.Equal(t, KindChat, rec.Kind)
	assert.Equal(t, reply, rec.Reply)
	assert.Nil(t, rec.Result)
	assert.Equal(t, []string{"Headache"}, rec.completedPayload().Conditions)
}

func TestService_HistoryLimits(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.History(ctx, "p-1", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryLimit, repo.lastLimit)

	_, err = svc.History(ctx, "p-1", 5000)
	require.NoError(t, err)
	assert.Equal(t, MaxHistoryLimit, repo.lastLimit)

	_, err = svc.History(ctx, "p-1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.lastLimit)
}

func TestMemoryRepository_NewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo, nil, nil)
	ctx := context.Background()

	for _, text := range []string{"cough", "headache", "rash"} {
		_, err := svc.Assess(ctx, "p-1", triage.SymptomInput{FreeText: text})
		require.NoError(t, err)
	}
	_, err := svc.Assess(ctx, "p-2", triage.SymptomInput{FreeText: "fever"})
	require.NoError(t, err)

	records, err := svc.History(ctx, "p-1", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "rash", records[0].Input.FreeText)
	assert.Equal(t, "headache", records[1].Input.FreeText)

	records, err = svc.History(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
