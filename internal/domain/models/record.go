package models

// DocTypeRecord is the discriminator stored with every clinical record.
// Other document kinds may share the ledger keyspace in the future.
const DocTypeRecord = "record"

// Record field names as they appear in the ledger document
const (
	FieldPatientID   = "patientId"
	FieldPatientName = "patientName"
	FieldDepartment  = "department"
	FieldSymptoms    = "symptoms"
	FieldDiagnosis   = "diagnosis"
	FieldTreatment   = "treatment"
	FieldDoctorName  = "doctorName"
	FieldNotes       = "notes"
	FieldAIAnalysis  = "aiAnalysis"
)

// Record is one clinical encounter as committed to the private ledger.
//
// Field order is the canonical order: encoders walk the struct, so two
// records with equal values always produce the same bytes. AIAnalysis is
// the only optional field and is omitted entirely when absent.
type Record struct {
	DocType     string  `json:"docType"`
	RecordID    string  `json:"recordId"`
	PatientID   string  `json:"patientId"`
	PatientName string  `json:"patientName"`
	Department  string  `json:"department"`
	Symptoms    string  `json:"symptoms"`
	Diagnosis   string  `json:"diagnosis"`
	Treatment   string  `json:"treatment"`
	DoctorName  string  `json:"doctorName"`
	Notes       string  `json:"notes"`
	AIAnalysis  *string `json:"aiAnalysis,omitempty"`
	IsEncrypted bool    `json:"isEncrypted"`
	Timestamp   int64   `json:"timestamp"` // Commit time, milliseconds since epoch
}

// FieldNames returns every named attribute in canonical order
func FieldNames() []string {
	return []string{
		FieldPatientID,
		FieldPatientName,
		FieldDepartment,
		FieldSymptoms,
		FieldDiagnosis,
		FieldTreatment,
		FieldDoctorName,
		FieldNotes,
		FieldAIAnalysis,
	}
}

// Field returns a pointer to the named attribute's value.
// ok is false for unknown names and for an absent AIAnalysis.
func (r *Record) Field(name string) (value *string, ok bool) {
	switch name {
	case FieldPatientID:
		return &r.PatientID, true
	case FieldPatientName:
		return &r.PatientName, true
	case FieldDepartment:
		return &r.Department, true
	case FieldSymptoms:
		return &r.Symptoms, true
	case FieldDiagnosis:
		return &r.Diagnosis, true
	case FieldTreatment:
		return &r.Treatment, true
	case FieldDoctorName:
		return &r.DoctorName, true
	case FieldNotes:
		return &r.Notes, true
	case FieldAIAnalysis:
		if r.AIAnalysis == nil {
			return nil, false
		}
		return r.AIAnalysis, true
	default:
		return nil, false
	}
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	c := *r
	if r.AIAnalysis != nil {
		summary := *r.AIAnalysis
		c.AIAnalysis = &summary
	}
	return &c
}

// WorkflowState is a state of the commit-and-anchor workflow
type WorkflowState string

const (
	StateDraft          WorkflowState = "Draft"
	StateCommitting     WorkflowState = "Committing"
	StateCommitted      WorkflowState = "Committed"
	StateHashing        WorkflowState = "Hashing"
	StateAnchoring      WorkflowState = "Anchoring"
	StateAnchored       WorkflowState = "Anchored"
	StateAnchorDegraded WorkflowState = "AnchorDegraded"
	StateRejected       WorkflowState = "Rejected"
)

// IsTerminal reports whether no further transition is possible
func (s WorkflowState) IsTerminal() bool {
	return s == StateAnchored || s == StateAnchorDegraded || s == StateRejected
}

// SubmitResult is the outcome of a submission whose private commit succeeded.
// Callers must inspect Status: a degraded anchor is reported here, not as an error.
type SubmitResult struct {
	RecordID      string        `json:"recordId"`
	Status        WorkflowState `json:"status"` // Anchored or AnchorDegraded
	ContentHash   string        `json:"contentHash"`
	TransactionID string        `json:"transactionId,omitempty"`
	RetryRequired bool          `json:"retryRequired"` // Public anchor must be retried out-of-band
	AnchorError   string        `json:"anchorError,omitempty"`
	Timestamp     int64         `json:"timestamp"`
}

// Verification compares a committed record against its public anchor
type Verification struct {
	RecordID      string `json:"recordId"`
	ContentHash   string `json:"contentHash"`            // Recomputed from the committed record
	AnchoredHash  string `json:"anchoredHash,omitempty"` // Hash the registry says was anchored
	TransactionID string `json:"transactionId,omitempty"`
	Anchored      bool   `json:"anchored"`
	Matches       bool   `json:"matches"`
}
