// Package records keeps the per-patient list of references to externally
// stored, encrypted medical documents. References are immutable and
// append-only; payload bytes never pass through this system.
package records

import (
	"github.com/medichain/medichain/internal/platform/clock"
)

// RecordTypeLabResult marks references created by lab submission approval.
const RecordTypeLabResult = "lab_result"

// Reference is an immutable pointer to one stored document. The hashes and
// checksum are computed by the storage collaborator before the reference is
// appended here.
type Reference struct {
	PatientID    string     `json:"patient_id"`
	ContentHash  string     `json:"content_hash"`
	MetadataHash string     `json:"metadata_hash"`
	RecordType   string     `json:"record_type"`
	Checksum     string     `json:"checksum"`
	UploadedBy   string     `json:"uploaded_by"`
	CreatedAt    clock.Tick `json:"created_at"`
}
