package records

import (
	"context"
	"errors"
	"fmt"

	"medchain/internal/config"
	"medchain/internal/domain"
	"medchain/internal/domain/models"
	"medchain/internal/service/ledger"
)

// GetRecord returns the committed record. With decrypt set, an encrypted
// record comes back with its sensitive fields in plaintext.
func (s *recordService) GetRecord(ctx context.Context, recordID string, decrypt bool) (*models.Record, error) {
	if err := ledger.ValidateKey(recordID); err != nil {
		return nil, err
	}

	record, err := s.ledger.Query(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if decrypt && record.IsEncrypted {
		if err := s.decryptFields(ctx, record); err != nil {
			return nil, err
		}
	}
	return record, nil
}

// Verify recomputes the fingerprint of the committed record and compares it
// with what the registry says was anchored
func (s *recordService) Verify(ctx context.Context, recordID string) (*models.Verification, error) {
	if err := ledger.ValidateKey(recordID); err != nil {
		return nil, err
	}

	record, err := s.ledger.Query(ctx, recordID)
	if err != nil {
		return nil, err
	}

	data, err := s.canonicalizer.Canonicalize(record)
	if err != nil {
		return nil, fmt.Errorf("canonicalize %s: %w", recordID, err)
	}

	v := &models.Verification{
		RecordID:    recordID,
		ContentHash: s.digester.Digest(data),
	}

	entry, err := s.anchors.Get(ctx, recordID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read anchor registry: %w", err)
	}

	v.AnchoredHash = entry.ContentHash
	v.Anchored = entry.Status == models.AnchorEntryAnchored
	v.TransactionID = entry.TransactionID
	v.Matches = v.Anchored && entry.ContentHash == v.ContentHash
	return v, nil
}

// Reanchor anchors the committed record's current fingerprint.
// Nothing is sent to the public ledger when that fingerprint is already anchored.
func (s *recordService) Reanchor(ctx context.Context, recordID string) (*models.SubmitResult, error) {
	if err := ledger.ValidateKey(recordID); err != nil {
		return nil, err
	}

	record, err := s.ledger.Query(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return s.anchorCommitted(ctx, record)
}

// ReconcilePending retries degraded anchors, oldest first. Each retry hashes
// the record as it is committed now, so a record overwritten since its
// degraded submission is anchored with its current fingerprint.
func (s *recordService) ReconcilePending(ctx context.Context, limit int) (*models.ReconcileReport, error) {
	if limit <= 0 {
		limit = config.DefaultReconcileBatch
	}
	if limit > config.MaxReconcileBatch {
		limit = config.MaxReconcileBatch
	}

	pending, err := s.anchors.ListPending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending anchors: %w", err)
	}

	report := &models.ReconcileReport{Results: make([]*models.SubmitResult, 0, len(pending))}
	for _, entry := range pending {
		if err := ctx.Err(); err != nil {
			break
		}
		report.Attempted++

		record, err := s.ledger.Query(ctx, entry.RecordRef)
		if err != nil {
			report.Failed++
			reconciledTotal.WithLabelValues("missing").Inc()
			s.logger.Warn("pending anchor has no committed record",
				"record_id", entry.RecordRef,
				"error", err,
			)
			s.requeue(ctx, entry, err)
			continue
		}

		result, err := s.anchorCommitted(ctx, record)
		if err != nil {
			report.Failed++
			reconciledTotal.WithLabelValues("failed").Inc()
			s.requeue(ctx, entry, err)
			continue
		}

		report.Results = append(report.Results, result)
		if result.Status == models.StateAnchored {
			report.Anchored++
			reconciledTotal.WithLabelValues("anchored").Inc()
		} else {
			report.Failed++
			reconciledTotal.WithLabelValues("degraded").Inc()
		}
	}

	s.logger.Info("pending anchors reconciled",
		"attempted", report.Attempted,
		"anchored", report.Anchored,
		"failed", report.Failed,
	)
	return report, nil
}

// requeue moves a pending entry that could not be retried behind the rest of
// the queue, so it cannot occupy the head of every later pass.
func (s *recordService) requeue(ctx context.Context, entry *models.AnchorEntry, cause error) {
	entry.Attempts++
	entry.LastError = cause.Error()
	entry.UpdatedAt = s.clock().UTC()
	s.saveEntry(context.WithoutCancel(ctx), entry)
}
