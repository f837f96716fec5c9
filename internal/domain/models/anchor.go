package models

import "time"

// AnchorEntryStatus tracks whether a fingerprint reached the public ledger
type AnchorEntryStatus string

const (
	AnchorEntryAnchored AnchorEntryStatus = "anchored"
	AnchorEntryPending  AnchorEntryStatus = "pending" // Degraded; awaiting reconciliation
)

// AnchorEntry is the registry row for one record reference.
// It holds the latest fingerprint submitted for the record and its public outcome.
type AnchorEntry struct {
	RecordRef     string            `json:"recordRef"`
	ContentHash   string            `json:"contentHash"`
	Timestamp     int64             `json:"timestamp"` // Commit time passed to the anchor call
	Status        AnchorEntryStatus `json:"status"`
	TransactionID string            `json:"transactionId,omitempty"`
	LastError     string            `json:"lastError,omitempty"`
	Attempts      int               `json:"attempts"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// IsAnchoredWith reports whether this entry already anchors the given hash
func (e *AnchorEntry) IsAnchoredWith(contentHash string) bool {
	return e != nil && e.Status == AnchorEntryAnchored && e.ContentHash == contentHash
}

// ReconcileReport summarizes one pass over the pending-anchor queue
type ReconcileReport struct {
	Attempted int             `json:"attempted"`
	Anchored  int             `json:"anchored"`
	Failed    int             `json:"failed"`
	Results   []*SubmitResult `json:"results"`
}
