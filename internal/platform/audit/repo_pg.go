package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medichain/medichain/internal/platform/clock"
)

// PGLog persists audit entries in Postgres. Seq comes from a BIGSERIAL so
// the total order matches insert commit order.
type PGLog struct {
	pool *pgxpool.Pool
}

// NewPGLog creates a Postgres-backed audit log on the given pool.
func NewPGLog(pool *pgxpool.Pool) *PGLog {
	return &PGLog{pool: pool}
}

// EnsureSchema creates the audit_log table if it does not exist.
func (l *PGLog) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS audit_log (
			seq        BIGSERIAL PRIMARY KEY,
			id         UUID NOT NULL,
			actor      TEXT NOT NULL,
			actor_role TEXT NOT NULL,
			action     TEXT NOT NULL,
			patient    TEXT NOT NULL DEFAULT '',
			ts         BIGINT NOT NULL,
			emergency  BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE INDEX IF NOT EXISTS audit_log_patient_idx ON audit_log (patient, seq);
		CREATE INDEX IF NOT EXISTS audit_log_actor_idx ON audit_log (actor, seq)`

	if _, err := l.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("audit: ensure schema: %w", err)
	}
	return nil
}

func (l *PGLog) Append(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()

	const query = `
		INSERT INTO audit_log (id, actor, actor_role, action, patient, ts, emergency)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq`

	err := l.pool.QueryRow(ctx, query,
		e.ID, e.Actor, e.ActorRole, string(e.Action), e.Patient, int64(e.Timestamp), e.Emergency,
	).Scan(&e.Seq)
	if err != nil {
		return fmt.Errorf("audit: append: %w", err)
	}
	return nil
}

func (l *PGLog) QueryByPatient(ctx context.Context, patient string) ([]Entry, error) {
	const query = `
		SELECT seq, id, actor, actor_role, action, patient, ts, emergency
		FROM audit_log WHERE patient = $1 ORDER BY seq`
	return l.query(ctx, query, patient)
}

func (l *PGLog) QueryByActor(ctx context.Context, actor string) ([]Entry, error) {
	const query = `
		SELECT seq, id, actor, actor_role, action, patient, ts, emergency
		FROM audit_log WHERE actor = $1 ORDER BY seq`
	return l.query(ctx, query, actor)
}

func (l *PGLog) query(ctx context.Context, query, arg string) ([]Entry, error) {
	rows, err := l.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("audit: query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var action string
		var ts int64
		if err := rows.Scan(&e.Seq, &e.ID, &e.Actor, &e.ActorRole, &action, &e.Patient, &ts, &e.Emergency); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		e.Action = Action(action)
		e.Timestamp = clock.Tick(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}
