package services

import "context"

// AnchorClient publishes a record fingerprint to the public ledger.
// Errors are *domain.AnchorUnavailableError or *domain.AnchorRejectedError.
type AnchorClient interface {
	// Anchor returns the public transaction identifier.
	// timestamp is the commit time in milliseconds since epoch.
	Anchor(ctx context.Context, recordRef, contentHash string, timestamp int64) (string, error)
}
