// Package records runs the dual-ledger workflow: encrypt, commit to the
// private ledger, fingerprint the committed record and anchor it publicly.
package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"medchain/internal/catalog"
	"medchain/internal/domain"
	"medchain/internal/domain/models"
	"medchain/internal/domain/repositories"
	"medchain/internal/domain/services"
)

// DefaultAnchorTimeout bounds one public anchor call
const DefaultAnchorTimeout = 20 * time.Second

// Dependencies wires the collaborators of the record service.
// Cipher and Analyzer are optional.
type Dependencies struct {
	Ledger        services.PrivateLedger
	Cipher        services.FieldCipher
	Canonicalizer services.Canonicalizer
	Digester      services.Digester
	Anchor        services.AnchorClient
	Anchors       repositories.AnchorRepository
	Analyzer      services.Analyzer
	Catalog       *catalog.Catalog

	AnchorTimeout time.Duration
	Clock         func() time.Time // Defaults to time.Now
	NewID         func() string    // Defaults to REC-<uuid>
}

type recordService struct {
	ledger        services.PrivateLedger
	cipher        services.FieldCipher
	canonicalizer services.Canonicalizer
	digester      services.Digester
	anchor        services.AnchorClient
	anchors       repositories.AnchorRepository
	analyzer      services.Analyzer
	catalog       *catalog.Catalog
	anchorTimeout time.Duration
	clock         func() time.Time
	newID         func() string
	logger        *slog.Logger
}

// NewService creates the record service. It holds no state between calls.
func NewService(deps Dependencies, logger *slog.Logger) (services.RecordService, error) {
	switch {
	case deps.Ledger == nil:
		return nil, errors.New("records: ledger is required")
	case deps.Canonicalizer == nil || deps.Digester == nil:
		return nil, errors.New("records: canonicalizer and digester are required")
	case deps.Anchor == nil || deps.Anchors == nil:
		return nil, errors.New("records: anchor client and anchor registry are required")
	case deps.Catalog == nil:
		return nil, errors.New("records: catalog is required")
	}

	s := &recordService{
		ledger:        deps.Ledger,
		cipher:        deps.Cipher,
		canonicalizer: deps.Canonicalizer,
		digester:      deps.Digester,
		anchor:        deps.Anchor,
		anchors:       deps.Anchors,
		analyzer:      deps.Analyzer,
		catalog:       deps.Catalog,
		anchorTimeout: deps.AnchorTimeout,
		clock:         deps.Clock,
		newID:         deps.NewID,
		logger:        logger,
	}
	if s.anchorTimeout <= 0 {
		s.anchorTimeout = DefaultAnchorTimeout
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return "REC-" + uuid.New().String() }
	}
	return s, nil
}

// Submit runs Draft → Committing → Committed → Hashing → Anchoring → {Anchored, AnchorDegraded}.
// Errors before the commit leave the private ledger untouched. A canonicalization
// error after the commit is returned with the record already stored.
func (s *recordService) Submit(ctx context.Context, req *services.SubmitRecordRequest) (*models.SubmitResult, error) {
	s.trace(recordRef(req), models.StateDraft)
	if err := s.validateSubmitRequest(req); err != nil {
		s.finish(recordRef(req), models.StateRejected)
		return nil, err
	}

	record := s.buildRecord(ctx, req)
	if err := validateRecordFields(record); err != nil {
		s.finish(record.RecordID, models.StateRejected)
		return nil, err
	}
	if err := s.canonicalizer.Validate(record); err != nil {
		s.finish(record.RecordID, models.StateRejected)
		return nil, err
	}

	if req.Encrypt {
		if err := s.encryptFields(ctx, record); err != nil {
			s.finish(record.RecordID, models.StateRejected)
			return nil, err
		}
		record.IsEncrypted = true
	}

	s.trace(record.RecordID, models.StateCommitting)
	record.Timestamp = s.clock().UnixMilli()

	// A commit, once issued, must not be abandoned because the caller went away
	if err := s.ledger.Commit(context.WithoutCancel(ctx), record.RecordID, record); err != nil {
		s.finish(record.RecordID, models.StateRejected)
		return nil, fmt.Errorf("commit record: %w", err)
	}
	s.trace(record.RecordID, models.StateCommitted)

	result, err := s.anchorCommitted(ctx, record)
	if err != nil {
		s.finish(record.RecordID, models.StateCommitted)
		return nil, err
	}
	s.finish(record.RecordID, result.Status)
	return result, nil
}

func recordRef(req *services.SubmitRecordRequest) string {
	if req == nil {
		return ""
	}
	return req.RecordID
}

// buildRecord turns a draft into a plaintext record, folding in the analysis
func (s *recordService) buildRecord(ctx context.Context, req *services.SubmitRecordRequest) *models.Record {
	recordID := req.RecordID
	if recordID == "" {
		recordID = s.newID()
	}

	analysis := req.Analysis
	if analysis == nil && req.Analyze {
		analysis = s.analyze(ctx, req.Symptoms, req.Notes)
	}

	defaults := s.catalog.Defaults()
	record := &models.Record{
		DocType:     models.DocTypeRecord,
		RecordID:    recordID,
		PatientID:   req.PatientID,
		PatientName: req.PatientName,
		Department:  req.Department,
		Symptoms:    req.Symptoms,
		Diagnosis:   req.Diagnosis,
		Treatment:   req.Treatment,
		DoctorName:  req.DoctorName,
		Notes:       req.Notes,
	}

	if analysis != nil {
		if record.Diagnosis == "" {
			record.Diagnosis = analysis.SuggestedDiagnosis
		}
		if record.Treatment == "" {
			record.Treatment = analysis.Treatment()
		}
		if analysis.Summary != "" {
			summary := analysis.Summary
			record.AIAnalysis = &summary
		}
	}
	if record.Diagnosis == "" {
		record.Diagnosis = defaults.Diagnosis
	}
	if record.Treatment == "" {
		record.Treatment = defaults.Treatment
	}
	return record
}

// analyze is best effort: a failed analysis leaves the defaults in place
func (s *recordService) analyze(ctx context.Context, symptoms, notes string) *models.Analysis {
	if s.analyzer == nil {
		s.logger.Warn("analysis requested but no analyzer configured")
		return nil
	}
	analysis, err := s.analyzer.Analyze(ctx, symptoms, notes)
	if err != nil {
		s.logger.Warn("analysis failed, using defaults", "error", err)
		return nil
	}
	if !analysisFits(analysis) {
		s.logger.Warn("analysis exceeds field limits, using defaults")
		return nil
	}
	return analysis
}

// anchorCommitted fingerprints a committed record and anchors it unless the
// registry already holds an anchored entry with the same hash.
// Only canonicalization failures are returned; anchor failures degrade.
func (s *recordService) anchorCommitted(ctx context.Context, record *models.Record) (*models.SubmitResult, error) {
	recordID := record.RecordID

	s.trace(recordID, models.StateHashing)
	data, err := s.canonicalizer.Canonicalize(record)
	if err != nil {
		s.logger.Error("committed record is not canonicalizable", "record_id", recordID, "error", err)
		return nil, fmt.Errorf("canonicalize %s: %w", recordID, err)
	}
	contentHash := s.digester.Digest(data)

	result := &models.SubmitResult{
		RecordID:    recordID,
		ContentHash: contentHash,
		Timestamp:   record.Timestamp,
	}

	// Registry reads and writes outlive the request like the commit does
	registryCtx := context.WithoutCancel(ctx)
	previous := s.lookupEntry(registryCtx, recordID)
	if previous.IsAnchoredWith(contentHash) {
		anchorAttemptsTotal.WithLabelValues("skipped").Inc()
		s.logger.Info("fingerprint already anchored",
			"record_id", recordID,
			"content_hash", contentHash,
			"transaction_id", previous.TransactionID,
		)
		result.Status = models.StateAnchored
		result.TransactionID = previous.TransactionID
		return result, nil
	}

	s.trace(recordID, models.StateAnchoring)
	anchorCtx, cancel := context.WithTimeout(ctx, s.anchorTimeout)
	start := time.Now()
	txID, err := s.anchor.Anchor(anchorCtx, recordID, contentHash, record.Timestamp)
	cancel()
	anchorDuration.Observe(time.Since(start).Seconds())

	entry := &models.AnchorEntry{
		RecordRef:   recordID,
		ContentHash: contentHash,
		Timestamp:   record.Timestamp,
		UpdatedAt:   s.clock().UTC(),
	}

	if err != nil {
		if !domain.IsAnchorFailure(err) {
			err = &domain.AnchorUnavailableError{Reason: "anchor call failed", Err: err}
		}
		anchorAttemptsTotal.WithLabelValues("degraded").Inc()
		s.trace(recordID, models.StateAnchorDegraded)
		s.logger.Warn("public anchor failed, retry required",
			"record_id", recordID,
			"content_hash", contentHash,
			"error", err,
		)

		entry.Status = models.AnchorEntryPending
		entry.LastError = err.Error()
		entry.Attempts = 1
		if previous != nil && previous.Status == models.AnchorEntryPending && previous.ContentHash == contentHash {
			entry.Attempts = previous.Attempts + 1
		}
		s.saveEntry(registryCtx, entry)

		result.Status = models.StateAnchorDegraded
		result.RetryRequired = true
		result.AnchorError = err.Error()
		return result, nil
	}

	anchorAttemptsTotal.WithLabelValues("anchored").Inc()
	s.trace(recordID, models.StateAnchored)
	s.logger.Info("record anchored",
		"record_id", recordID,
		"content_hash", contentHash,
		"transaction_id", txID,
	)

	entry.Status = models.AnchorEntryAnchored
	entry.TransactionID = txID
	if previous != nil && previous.ContentHash == contentHash {
		entry.Attempts = previous.Attempts
	}
	entry.Attempts++
	s.saveEntry(registryCtx, entry)

	result.Status = models.StateAnchored
	result.TransactionID = txID
	return result, nil
}

// lookupEntry returns nil when the record has no registry entry or the registry is unreadable
func (s *recordService) lookupEntry(ctx context.Context, recordID string) *models.AnchorEntry {
	entry, err := s.anchors.Get(ctx, recordID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("anchor registry read failed", "record_id", recordID, "error", err)
		}
		return nil
	}
	return entry
}

// saveEntry never changes the workflow outcome
func (s *recordService) saveEntry(ctx context.Context, entry *models.AnchorEntry) {
	if err := s.anchors.Save(ctx, entry); err != nil {
		s.logger.Error("anchor registry write failed",
			"record_id", entry.RecordRef,
			"status", entry.Status,
			"error", err,
		)
	}
}

func (s *recordService) trace(recordID string, state models.WorkflowState) {
	s.logger.Debug("workflow state", "record_id", recordID, "state", state)
}

// finish counts the state a submission ended in
func (s *recordService) finish(recordID string, state models.WorkflowState) {
	submissionsTotal.WithLabelValues(string(state)).Inc()
	if !state.IsTerminal() {
		s.logger.Warn("submission stopped before a terminal state", "record_id", recordID, "state", state)
		return
	}
	s.trace(recordID, state)
}
