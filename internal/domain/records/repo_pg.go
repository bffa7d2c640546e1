package records

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medichain/medichain/internal/platform/clock"
)

// PGStore persists record references in Postgres. Insertion order per patient
// is preserved by the serial id.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a Postgres-backed record reference store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// EnsureSchema creates the record_reference table if it does not exist.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS record_reference (
			id            BIGSERIAL PRIMARY KEY,
			patient_id    TEXT NOT NULL,
			content_hash  TEXT NOT NULL,
			metadata_hash TEXT NOT NULL,
			record_type   TEXT NOT NULL,
			checksum      TEXT NOT NULL,
			uploaded_by   TEXT NOT NULL,
			created_at    BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS record_reference_patient_idx ON record_reference (patient_id, id)`

	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("records: ensure schema: %w", err)
	}
	return nil
}

func (s *PGStore) Append(ctx context.Context, ref *Reference) error {
	const query = `
		INSERT INTO record_reference (patient_id, content_hash, metadata_hash, record_type, checksum, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		ref.PatientID, ref.ContentHash, ref.MetadataHash, ref.RecordType, ref.Checksum, ref.UploadedBy, int64(ref.CreatedAt))
	if err != nil {
		return fmt.Errorf("records: append: %w", err)
	}
	return nil
}

func (s *PGStore) List(ctx context.Context, patientID string) ([]Reference, error) {
	const query = `
		SELECT patient_id, content_hash, metadata_hash, record_type, checksum, uploaded_by, created_at
		FROM record_reference WHERE patient_id = $1 ORDER BY id`

	rows, err := s.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("records: list: %w", err)
	}
	defer rows.Close()

	var out []Reference
	for rows.Next() {
		var ref Reference
		var createdAt int64
		if err := rows.Scan(&ref.PatientID, &ref.ContentHash, &ref.MetadataHash, &ref.RecordType, &ref.Checksum, &ref.UploadedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("records: scan: %w", err)
		}
		ref.CreatedAt = clock.Tick(createdAt)
		out = append(out, ref)
	}
	return out, rows.Err()
}
