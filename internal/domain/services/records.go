package services

import (
	"context"

	"medchain/internal/domain/models"
)

// RecordService runs the commit-and-anchor workflow
type RecordService interface {
	// Submit commits the record privately, then anchors its fingerprint.
	// A returned error means nothing was committed. Anchor failures are
	// reported through SubmitResult.Status instead.
	Submit(ctx context.Context, req *SubmitRecordRequest) (*models.SubmitResult, error)

	// GetRecord returns the committed record, decrypting sensitive fields when asked
	GetRecord(ctx context.Context, recordID string, decrypt bool) (*models.Record, error)

	// Verify recomputes the fingerprint and compares it with the anchor registry
	Verify(ctx context.Context, recordID string) (*models.Verification, error)

	// Reanchor anchors the committed record's current fingerprint unless it is already anchored
	Reanchor(ctx context.Context, recordID string) (*models.SubmitResult, error)

	// ReconcilePending retries up to limit degraded anchors
	ReconcilePending(ctx context.Context, limit int) (*models.ReconcileReport, error)
}

// SubmitRecordRequest is a draft record as handed over by the record builder
type SubmitRecordRequest struct {
	RecordID    string `json:"recordId,omitempty"` // Generated when empty
	PatientID   string `json:"patientId"`
	PatientName string `json:"patientName"`
	Department  string `json:"department"`
	Symptoms    string `json:"symptoms"`
	Diagnosis   string `json:"diagnosis,omitempty"`
	Treatment   string `json:"treatment,omitempty"`
	DoctorName  string `json:"doctorName"`
	Notes       string `json:"notes"`
	Encrypt     bool   `json:"isEncrypted"`

	// Analysis is an already computed suggestion. When nil and Analyze is
	// set, the service asks its analyzer before building the record.
	Analysis *models.Analysis `json:"analysis,omitempty"`
	Analyze  bool             `json:"analyze,omitempty"`
}
