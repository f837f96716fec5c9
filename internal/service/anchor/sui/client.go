// Package sui anchors record fingerprints on Sui by calling
// record_tracking::create_record through the fullnode JSON-RPC API.
package sui

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"

	"medchain/internal/domain"
	"medchain/internal/domain/services"
)

const (
	// ModuleName and FunctionName identify the single on-chain entry point
	ModuleName   = "record_tracking"
	FunctionName = "create_record"

	// DefaultTimeout is the HTTP timeout for one JSON-RPC round trip
	DefaultTimeout = 15 * time.Second
)

// Config holds the fullnode endpoint and transaction parameters
type Config struct {
	RPCURL    string
	PackageID string
	GasBudget uint64
	Timeout   time.Duration
}

// Client implements services.AnchorClient against a Sui fullnode
type Client struct {
	cfg        Config
	signer     *Signer
	httpClient *http.Client
	logger     *slog.Logger
	nextID     atomic.Int64
}

var _ services.AnchorClient = (*Client)(nil)

// NewClient creates a Sui anchor client. A nil signer is allowed: every
// Anchor call then fails with AnchorUnavailableError.
func NewClient(cfg Config, signer *Signer, logger *slog.Logger) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("sui rpc url is required")
	}
	if cfg.PackageID == "" {
		return nil, fmt.Errorf("sui package id is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:        cfg,
		signer:     signer,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// Target is the fully qualified Move function
func (c *Client) Target() string {
	return c.cfg.PackageID + "::" + ModuleName + "::" + FunctionName
}

// Anchor builds, signs and executes create_record(recordRef, contentHash, timestamp)
func (c *Client) Anchor(ctx context.Context, recordRef, contentHash string, timestamp int64) (string, error) {
	if c.signer == nil {
		return "", &domain.AnchorUnavailableError{Reason: "no signer connected"}
	}
	if timestamp < 0 {
		return "", &domain.AnchorRejectedError{Reason: "timestamp must be a u64"}
	}

	built, err := c.call(ctx, "unsafe_moveCall", []any{
		c.signer.Address(),
		c.cfg.PackageID,
		ModuleName,
		FunctionName,
		[]string{},
		[]any{recordRef, contentHash, strconv.FormatInt(timestamp, 10)},
		nil,
		strconv.FormatUint(c.cfg.GasBudget, 10),
	})
	if err != nil {
		return "", err
	}

	txB64 := built.Get("txBytes").String()
	txBytes, err := base64.StdEncoding.DecodeString(txB64)
	if err != nil || len(txBytes) == 0 {
		return "", &domain.AnchorRejectedError{Reason: "unsafe_moveCall returned no transaction bytes"}
	}

	executed, err := c.call(ctx, "sui_executeTransactionBlock", []any{
		txB64,
		[]string{c.signer.SignTransaction(txBytes)},
		map[string]bool{"showEffects": true},
		"WaitForLocalExecution",
	})
	if err != nil {
		return "", err
	}

	digest := executed.Get("digest").String()
	status := executed.Get("effects.status.status").String()
	if status != "success" {
		reason := executed.Get("effects.status.error").String()
		if reason == "" {
			reason = "transaction status " + strconv.Quote(status)
		}
		return "", &domain.AnchorRejectedError{Reason: reason}
	}
	if digest == "" {
		return "", &domain.AnchorRejectedError{Reason: "executed transaction has no digest"}
	}

	c.logger.Debug("sui transaction executed",
		"record_ref", recordRef,
		"digest", digest,
		"target", c.Target(),
	)
	return digest, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// call performs one JSON-RPC request and returns its result member.
// Transport failures are AnchorUnavailableError; error objects are AnchorRejectedError.
func (c *Client) call(ctx context.Context, method string, params []any) (gjson.Result, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return gjson.Result{}, &domain.AnchorRejectedError{Reason: fmt.Sprintf("marshal %s: %v", method, err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RPCURL, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, &domain.AnchorUnavailableError{Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, &domain.AnchorUnavailableError{Reason: method, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, &domain.AnchorUnavailableError{Reason: "read " + method + " response", Err: err}
	}

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return gjson.Result{}, &domain.AnchorUnavailableError{
			Reason: fmt.Sprintf("%s: status %d", method, resp.StatusCode),
			Err:    errors.New(string(body)),
		}
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &domain.AnchorRejectedError{
			Reason: fmt.Sprintf("%s: invalid response (status %d)", method, resp.StatusCode),
			Code:   resp.StatusCode,
		}
	}

	parsed := gjson.ParseBytes(body)
	if rpcErr := parsed.Get("error"); rpcErr.Exists() {
		return gjson.Result{}, &domain.AnchorRejectedError{
			Reason: method + ": " + rpcErr.Get("message").String(),
			Code:   int(rpcErr.Get("code").Int()),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, &domain.AnchorRejectedError{
			Reason: fmt.Sprintf("%s: status %d", method, resp.StatusCode),
			Code:   resp.StatusCode,
		}
	}

	result := parsed.Get("result")
	if !result.Exists() {
		return gjson.Result{}, &domain.AnchorRejectedError{Reason: method + ": response has no result"}
	}
	return result, nil
}
