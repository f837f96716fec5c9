package config

const (
	// MaxRecordIDLength is the maximum length for private-ledger keys.
	// Keys double as the public anchor's record reference, which is
	// stored on-chain as a Move string, so they are kept short.
	MaxRecordIDLength = 128

	// MaxIdentityFieldLength bounds patient id/name, department and doctor name.
	MaxIdentityFieldLength = 255

	// MaxClinicalFieldLength bounds symptoms, diagnosis, treatment and summary text.
	MaxClinicalFieldLength = 8192

	// MaxNotesLength bounds free-text doctor notes.
	MaxNotesLength = 32768

	// MaxReconcileBatch is the largest number of pending anchors retried per reconcile call.
	MaxReconcileBatch = 500

	// DefaultReconcileBatch is used when the caller does not pass a limit.
	DefaultReconcileBatch = 50
)
