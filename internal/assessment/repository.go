package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

const tableName = "triage_assessments"

// Repository stores triage records. Implementations never update or delete.
type Repository interface {
	Append(ctx context.Context, rec *Record) error
	ListByPatient(ctx context.Context, patientID string, limit int) ([]Record, error)
}

type postgresRepo struct {
	db   *sql.DB
	goqu *goqu.Database
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db, goqu: goqu.New("postgres", db)}
}

func (r *postgresRepo) Append(ctx context.Context, rec *Record) error {
	inputJSON, err := json.Marshal(rec.Input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}
	resultJSON, err := nullableJSON(rec.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	replyJSON, err := nullableJSON(rec.Reply)
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}

	record := goqu.Record{
		"id":              rec.ID.String(),
		"patient_id":      rec.PatientID,
		"kind":            string(rec.Kind),
		"input":           string(inputJSON),
		"result":          resultJSON,
		"reply":           replyJSON,
		"overall_urgency": string(rec.OverallUrgency),
		"emergency":       rec.Emergency,
		"catalog_version": rec.CatalogVersion,
		"created_at":      rec.CreatedAt,
	}

	query, args, err := r.goqu.Insert(tableName).Rows(record).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to append assessment: %w", err)
	}
	return nil
}

func (r *postgresRepo) ListByPatient(ctx context.Context, patientID string, limit int) ([]Record, error) {
	query, args, err := r.goqu.Select(
		"id", "patient_id", "kind", "input", "result", "reply",
		"overall_urgency", "emergency", "catalog_version", "created_at",
	).From(tableName).
		Where(goqu.Ex{"patient_id": patientID}).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		var inputJSON, resultJSON, replyJSON []byte

		if err := rows.Scan(
			&rec.ID,
			&rec.PatientID,
			&rec.Kind,
			&inputJSON,
			&resultJSON,
			&replyJSON,
			&rec.OverallUrgency,
			&rec.Emergency,
			&rec.CatalogVersion,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}

		if err := json.Unmarshal(inputJSON, &rec.Input); err != nil {
			return nil, fmt.Errorf("failed to unmarshal input: %w", err)
		}
		if len(resultJSON) > 0 {
			if err := json.Unmarshal(resultJSON, &rec.Result); err != nil {
				return nil, fmt.Errorf("failed to unmarshal result: %w", err)
			}
		}
		if len(replyJSON) > 0 {
			if err := json.Unmarshal(replyJSON, &rec.Reply); err != nil {
				return nil, fmt.Errorf("failed to unmarshal reply: %w", err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assessments: %w", err)
	}
	return records, nil
}

// nullableJSON marshals v, returning nil for a nil pointer so the column
// stays NULL.
func nullableJSON[T any](v *T) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

type memoryRepo struct {
	mu      sync.RWMutex
	records map[string][]Record
}

// NewMemoryRepository keeps records in process memory. It backs the
// service when no database is configured.
func NewMemoryRepository() Repository {
	return &memoryRepo{records: make(map[string][]Record)}
}

func (r *memoryRepo) Append(ctx context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.PatientID] = append(r.records[rec.PatientID], *rec)
	return nil
}

func (r *memoryRepo) ListByPatient(ctx context.Context, patientID string, limit int) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.records[patientID]
	out := make([]Record, 0, min(limit, len(stored)))
	for i := len(stored) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}
