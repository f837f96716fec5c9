// Package memory is an in-process public anchor used by tests and dev runs.
package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"

	"medchain/internal/domain"
	"medchain/internal/domain/services"
)

// Call is one recorded anchor invocation
type Call struct {
	RecordRef   string
	ContentHash string
	Timestamp   int64
}

// FailureMode selects how the next calls fail
type FailureMode int

const (
	FailNone FailureMode = iota
	FailUnavailable
	FailRejected
)

// Client records every call and returns digests derived from its arguments
type Client struct {
	mu    sync.Mutex
	calls []Call
	fail  FailureMode
}

var _ services.AnchorClient = (*Client)(nil)

// NewClient creates a client that succeeds until told otherwise
func NewClient() *Client {
	return &Client{}
}

// SetFailure makes subsequent calls fail with the given mode
func (c *Client) SetFailure(mode FailureMode) {
	c.mu.Lock()
	c.fail = mode
	c.mu.Unlock()
}

// Anchor records the call. Failed calls are recorded too.
func (c *Client) Anchor(ctx context.Context, recordRef, contentHash string, timestamp int64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, Call{RecordRef: recordRef, ContentHash: contentHash, Timestamp: timestamp})

	if err := ctx.Err(); err != nil {
		return "", &domain.AnchorUnavailableError{Reason: "context done", Err: err}
	}
	switch c.fail {
	case FailUnavailable:
		return "", &domain.AnchorUnavailableError{Reason: "no signer connected"}
	case FailRejected:
		return "", &domain.AnchorRejectedError{Reason: "simulated move abort", Code: 1}
	}

	sum := sha256.Sum256([]byte(recordRef + "\x00" + contentHash + "\x00" + strconv.FormatInt(timestamp, 10)))
	return "0x" + hex.EncodeToString(sum[:]), nil
}

// Calls returns a copy of every recorded call
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}
