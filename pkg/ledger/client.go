// Package ledger provides the HTTP client for a node's action-style JSON
// RPC. It normalizes the node's stringly responses into typed values and
// tags "not found" outcomes with sentinel errors so the rest of the wallet
// never branches on raw response fields.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/nanokit/nanokit/internal/log"
	"github.com/nanokit/nanokit/pkg/raw"
	"github.com/nanokit/nanokit/pkg/types"
)

// Client is an HTTP client for the node RPC.
type Client struct {
	endpoint string
	username string
	password string
	http     *http.Client
	log      zerolog.Logger
}

// New creates a new RPC client targeting the given endpoint URL.
func New(endpoint string) *Client {
	return NewWithTimeout(endpoint, 30*time.Second)
}

// NewWithTimeout creates a new RPC client with a custom HTTP timeout.
func NewWithTimeout(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: timeout,
		},
		log: log.Ledger,
	}
}

// SetBasicAuth configures HTTP basic auth credentials for every request.
func (c *Client) SetBasicAuth(username, password string) {
	c.username = username
	c.password = password
}

// nodeErrAccountNotFound and nodeErrBlockNotFound are the node's literal
// error strings for the two not-found outcomes.
const (
	nodeErrAccountNotFound = "Account not found"
	nodeErrBlockNotFound   = "Block not found"
)

// call posts an action request and unmarshals the result into out.
// Node-reported errors are classified: the two not-found outcomes map to
// their sentinels, everything else to *Error with the message verbatim.
func (c *Client) call(ctx context.Context, action string, params map[string]any, out any) error {
	payload := map[string]any{"action": action}
	for k, v := range params {
		payload[k] = v
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	c.log.Debug().Str("action", action).Msg("rpc call")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if probe.Error != "" {
		switch probe.Error {
		case nodeErrAccountNotFound:
			return ErrAccountNotFound
		case nodeErrBlockNotFound:
			return ErrBlockNotFound
		default:
			return &Error{Message: probe.Error}
		}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}

// AccountInfo fetches the account's frontier, representative, balance and
// counters. Returns ErrAccountNotFound for unopened accounts.
func (c *Client) AccountInfo(ctx context.Context, account types.Address) (*AccountInfo, error) {
	var resp struct {
		Frontier            string `json:"frontier"`
		Representative      string `json:"representative"`
		RepresentativeBlock string `json:"representative_block"`
		OpenBlock           string `json:"open_block"`
		Balance             string `json:"balance"`
		Receivable          string `json:"receivable"`
		ConfirmationHeight  string `json:"confirmation_height"`
		BlockCount          string `json:"block_count"`
		Weight              string `json:"weight"`
	}
	err := c.call(ctx, "account_info", map[string]any{
		"account":        account.String(),
		"representative": "true",
		"weight":         "true",
		"receivable":     "true",
	}, &resp)
	if err != nil {
		return nil, err
	}

	info := &AccountInfo{}
	if info.Frontier, err = types.HexToHash(resp.Frontier); err != nil {
		return nil, fmt.Errorf("account_info frontier: %w", err)
	}
	if info.Representative, err = types.ParseAddress(resp.Representative); err != nil {
		return nil, fmt.Errorf("account_info representative: %w", err)
	}
	if resp.RepresentativeBlock != "" {
		if info.RepresentativeBlock, err = types.HexToHash(resp.RepresentativeBlock); err != nil {
			return nil, fmt.Errorf("account_info representative_block: %w", err)
		}
	}
	if resp.OpenBlock != "" {
		if info.OpenBlock, err = types.HexToHash(resp.OpenBlock); err != nil {
			return nil, fmt.Errorf("account_info open_block: %w", err)
		}
	}
	if info.Balance, err = raw.FromRaw(resp.Balance); err != nil {
		return nil, fmt.Errorf("account_info balance: %w", err)
	}
	if resp.Receivable != "" {
		if info.Receivable, err = raw.FromRaw(resp.Receivable); err != nil {
			return nil, fmt.Errorf("account_info receivable: %w", err)
		}
	}
	if resp.Weight != "" {
		if info.Weight, err = raw.FromRaw(resp.Weight); err != nil {
			return nil, fmt.Errorf("account_info weight: %w", err)
		}
	}
	if info.ConfirmationHeight, err = parseCount(resp.ConfirmationHeight); err != nil {
		return nil, fmt.Errorf("account_info confirmation_height: %w", err)
	}
	if info.BlockCount, err = parseCount(resp.BlockCount); err != nil {
		return nil, fmt.Errorf("account_info block_count: %w", err)
	}
	return info, nil
}

// BlockInfo fetches a single block. Returns ErrBlockNotFound when the node
// does not know the hash.
func (c *Client) BlockInfo(ctx context.Context, hash types.Hash) (*BlockInfo, error) {
	var resp struct {
		BlockAccount   string `json:"block_account"`
		SourceAccount  string `json:"source_account"`
		Amount         string `json:"amount"`
		Balance        string `json:"balance"`
		Height         string `json:"height"`
		LocalTimestamp string `json:"local_timestamp"`
		Subtype        string `json:"subtype"`
		Confirmed      string `json:"confirmed"`
	}
	err := c.call(ctx, "block_info", map[string]any{
		"json_block": "true",
		"source":     "true",
		"hash":       hash.String(),
	}, &resp)
	if err != nil {
		return nil, err
	}

	info := &BlockInfo{
		Subtype:   resp.Subtype,
		Confirmed: resp.Confirmed == "true",
	}
	if resp.BlockAccount != "" {
		if info.BlockAccount, err = types.ParseAddress(resp.BlockAccount); err != nil {
			return nil, fmt.Errorf("block_info block_account: %w", err)
		}
	}
	// The node reports "0" when the source is not applicable.
	if resp.SourceAccount != "" && resp.SourceAccount != "0" {
		if info.SourceAccount, err = types.ParseAddress(resp.SourceAccount); err != nil {
			return nil, fmt.Errorf("block_info source_account: %w", err)
		}
	}
	if resp.Amount != "" {
		if info.Amount, err = raw.FromRaw(resp.Amount); err != nil {
			return nil, fmt.Errorf("block_info amount: %w", err)
		}
	}
	if resp.Balance != "" {
		if info.Balance, err = raw.FromRaw(resp.Balance); err != nil {
			return nil, fmt.Errorf("block_info balance: %w", err)
		}
	}
	if info.Height, err = parseCount(resp.Height); err != nil {
		return nil, fmt.Errorf("block_info height: %w", err)
	}
	if info.Timestamp, err = parseCount(resp.LocalTimestamp); err != nil {
		return nil, fmt.Errorf("block_info local_timestamp: %w", err)
	}
	return info, nil
}

// Receivable lists send blocks addressed to the account at or above the
// threshold, with their source accounts. An unopened account yields an
// empty set, never an error.
func (c *Client) Receivable(ctx context.Context, account types.Address, threshold raw.Amount) ([]ReceivableEntry, error) {
	// The node reports an empty set either as a missing blocks field or as
	// the literal "". A raw message absorbs both.
	var resp struct {
		Blocks json.RawMessage `json:"blocks"`
	}
	err := c.call(ctx, "receivable", map[string]any{
		"account":   account.String(),
		"threshold": threshold.String(),
		"source":    "true",
	}, &resp)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(resp.Blocks) == 0 || string(resp.Blocks) == `""` || string(resp.Blocks) == `[]` {
		return nil, nil
	}

	var blocks map[string]struct {
		Amount string `json:"amount"`
		Source string `json:"source"`
	}
	if err := json.Unmarshal(resp.Blocks, &blocks); err != nil {
		return nil, fmt.Errorf("decode receivable blocks: %w", err)
	}

	entries := make([]ReceivableEntry, 0, len(blocks))
	for hashHex, blk := range blocks {
		var entry ReceivableEntry
		if entry.BlockHash, err = types.HexToHash(hashHex); err != nil {
			return nil, fmt.Errorf("receivable hash: %w", err)
		}
		if entry.Amount, err = raw.FromRaw(blk.Amount); err != nil {
			return nil, fmt.Errorf("receivable amount for %s: %w", hashHex, err)
		}
		if blk.Source != "" {
			if entry.Source, err = types.ParseAddress(blk.Source); err != nil {
				return nil, fmt.Errorf("receivable source for %s: %w", hashHex, err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// WorkGenerate requests proof-of-work for the given hash from the node.
func (c *Client) WorkGenerate(ctx context.Context, hash types.Hash, usePeers bool) (string, error) {
	var resp struct {
		Work string `json:"work"`
	}
	err := c.call(ctx, "work_generate", map[string]any{
		"hash":      hash.String(),
		"use_peers": strconv.FormatBool(usePeers),
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Work == "" {
		return "", &Error{Message: "work_generate response missing work"}
	}
	return resp.Work, nil
}

// Process submits a finished block and returns the hash the node assigned.
func (c *Client) Process(ctx context.Context, block *Block) (types.Hash, error) {
	var resp struct {
		Hash string `json:"hash"`
	}
	err := c.call(ctx, "process", map[string]any{
		"json_block": "true",
		"block":      block,
	}, &resp)
	if err != nil {
		return types.Hash{}, err
	}
	hash, err := types.HexToHash(resp.Hash)
	if err != nil {
		return types.Hash{}, fmt.Errorf("process hash: %w", err)
	}
	return hash, nil
}

// AccountHistory returns the account's past blocks, newest first. count < 0
// requests the full history; head, when nonzero, starts from that block.
// An unopened account yields an empty history.
func (c *Client) AccountHistory(ctx context.Context, account types.Address, count int, head types.Hash) ([]HistoryEntry, error) {
	params := map[string]any{
		"account": account.String(),
		"count":   strconv.Itoa(count),
		"raw":     "true",
	}
	if !head.IsZero() {
		params["head"] = head.String()
	}

	var resp struct {
		History []struct {
			Hash           string `json:"hash"`
			Type           string `json:"type"`
			Subtype        string `json:"subtype"`
			Account        string `json:"account"`
			Representative string `json:"representative"`
			Previous       string `json:"previous"`
			Amount         string `json:"amount"`
			Balance        string `json:"balance"`
			LocalTimestamp string `json:"local_timestamp"`
			Height         string `json:"height"`
			Confirmed      string `json:"confirmed"`
			Link           string `json:"link"`
			Signature      string `json:"signature"`
			Work           string `json:"work"`
		} `json:"history"`
	}
	err := c.call(ctx, "account_history", params, &resp)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, nil
		}
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(resp.History))
	for _, h := range resp.History {
		entry := HistoryEntry{
			Type:      h.Type,
			Subtype:   h.Subtype,
			Confirmed: h.Confirmed == "true",
			Work:      h.Work,
		}
		if entry.Hash, err = types.HexToHash(h.Hash); err != nil {
			return nil, fmt.Errorf("history hash: %w", err)
		}
		if h.Account != "" {
			if entry.Account, err = types.ParseAddress(h.Account); err != nil {
				return nil, fmt.Errorf("history account: %w", err)
			}
		}
		if h.Representative != "" {
			if entry.Representative, err = types.ParseAddress(h.Representative); err != nil {
				return nil, fmt.Errorf("history representative: %w", err)
			}
		}
		if h.Previous != "" {
			if entry.Previous, err = types.HexToHash(h.Previous); err != nil {
				return nil, fmt.Errorf("history previous: %w", err)
			}
		}
		if h.Amount != "" {
			if entry.Amount, err = raw.FromRaw(h.Amount); err != nil {
				return nil, fmt.Errorf("history amount: %w", err)
			}
		}
		if h.Balance != "" {
			if entry.Balance, err = raw.FromRaw(h.Balance); err != nil {
				return nil, fmt.Errorf("history balance: %w", err)
			}
		}
		if h.Link != "" {
			if entry.Link, err = types.HexToHash(h.Link); err != nil {
				return nil, fmt.Errorf("history link: %w", err)
			}
		}
		if h.Signature != "" {
			if entry.Signature, err = types.HexToSignature(h.Signature); err != nil {
				return nil, fmt.Errorf("history signature: %w", err)
			}
		}
		if entry.Timestamp, err = parseCount(h.LocalTimestamp); err != nil {
			return nil, fmt.Errorf("history local_timestamp: %w", err)
		}
		if entry.Height, err = parseCount(h.Height); err != nil {
			return nil, fmt.Errorf("history height: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// parseCount parses the node's stringly unsigned counters; empty means 0.
func parseCount(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}
