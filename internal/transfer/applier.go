// Package transfer calls the ledger service that moves distributed yield.
package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"yieldRecon/internal/model"
)

// Effect is one value transfer derived from a matched event.
type Effect struct {
	Fingerprint string
	PoolID      string
	LoanID      string
	Amount      *big.Int
	Metadata    map[string]string
}

// Receipt is the ledger acknowledgement of an applied effect.
type Receipt struct {
	Reference string
}

// Applier performs the external side effect. Implementations are not assumed
// to be idempotent.
type Applier interface {
	Apply(ctx context.Context, effect Effect) (Receipt, error)
}

// Config configures the HTTP ledger client.
type Config struct {
	BaseURL       string
	Token         string
	TokenDecimals int32
	Timeout       time.Duration
}

// HTTPApplier posts transfers to the ledger API as JSON.
type HTTPApplier struct {
	cfg    Config
	client *http.Client
}

type transferRequest struct {
	PoolID    string            `json:"pool_id"`
	LoanID    string            `json:"loan_id"`
	Amount    string            `json:"amount"`
	AmountRaw string            `json:"amount_raw"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type transferResponse struct {
	TransferID string `json:"transfer_id"`
	TxRef      string `json:"tx_ref"`
}

func NewHTTPApplier(cfg Config) *HTTPApplier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &HTTPApplier{
		cfg: cfg,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
			Timeout: cfg.Timeout,
		},
	}
}

// Apply posts the transfer. Any transport error or non-2xx status is an action failure.
func (a *HTTPApplier) Apply(ctx context.Context, effect Effect) (Receipt, error) {
	if effect.Amount == nil || effect.Amount.Sign() <= 0 {
		return Receipt{}, fmt.Errorf("%w: amount must be positive", model.ErrActionFailure)
	}

	body, err := json.Marshal(transferRequest{
		PoolID:    effect.PoolID,
		LoanID:    effect.LoanID,
		Amount:    FormatAmount(effect.Amount, a.cfg.TokenDecimals),
		AmountRaw: effect.Amount.String(),
		Metadata:  effect.Metadata,
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("marshal transfer: %w", err)
	}

	url := strings.TrimRight(a.cfg.BaseURL, "/") + "/transfers"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: build request: %w", model.ErrActionFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.Token)
	}
	if effect.Fingerprint != "" {
		req.Header.Set("Idempotency-Key", effect.Fingerprint)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: post transfer: %w", model.ErrActionFailure, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: read response: %w", model.ErrActionFailure, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Receipt{}, fmt.Errorf("%w: ledger returned %d: %s", model.ErrActionFailure, resp.StatusCode, truncate(string(payload), 256))
	}

	var out transferResponse
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &out); err != nil {
			return Receipt{}, fmt.Errorf("%w: decode response: %w", model.ErrActionFailure, err)
		}
	}
	ref := out.TxRef
	if ref == "" {
		ref = out.TransferID
	}
	return Receipt{Reference: ref}, nil
}

// FormatAmount renders a raw token amount with the given number of decimals.
func FormatAmount(amount *big.Int, decimals int32) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -decimals).String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
