package chain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"

	"yieldRecon/internal/model"
)

// JSON-RPC codes providers use for oversized or malformed log queries.
const (
	codeInvalidParams = -32602
	codeLimitExceeded = -32005
)

var rejectedMessages = []string{
	"query returned more than",
	"block range",
	"range too large",
	"range is too large",
	"exceed maximum block range",
	"too many results",
	"response size exceeded",
	"log response size",
}

var transientMessages = []string{
	"rate limit",
	"too many requests",
	"timeout",
	"temporarily unavailable",
	"header not found",
}

// Classify wraps err as model.ErrRPCRejected when the provider refused the
// request shape, and as model.ErrRPCTransient otherwise.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrRPCRejected) || errors.Is(err, model.ErrRPCTransient) {
		return err
	}
	if isRejected(err) {
		return fmt.Errorf("%w: %w", model.ErrRPCRejected, err)
	}
	return fmt.Errorf("%w: %w", model.ErrRPCTransient, err)
}

func isRejected(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, m := range transientMessages {
		if strings.Contains(msg, m) {
			return false
		}
	}
	for _, m := range rejectedMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 400 || httpErr.StatusCode == 413
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case codeInvalidParams, codeLimitExceeded:
			return true
		}
	}
	return false
}
