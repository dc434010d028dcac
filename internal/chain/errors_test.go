package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"

	"yieldRecon/internal/model"
)

type codedError struct {
	code int
	msg  string
}

func (e codedError) Error() string  { return e.msg }
func (e codedError) ErrorCode() int { return e.code }

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		rejected bool
	}{
		{"range message", errors.New("query returned more than 10000 results"), true},
		{"block range", errors.New("eth_getLogs block range too large, max 2000"), true},
		{"invalid params code", codedError{code: codeInvalidParams, msg: "invalid argument"}, true},
		{"rate limit beats code", codedError{code: codeLimitExceeded, msg: "request rate limit exceeded"}, false},
		{"http 413", rpc.HTTPError{StatusCode: 413, Status: "413 Payload Too Large"}, true},
		{"http 502", rpc.HTTPError{StatusCode: 502, Status: "502 Bad Gateway"}, false},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), false},
		{"generic", errors.New("connection reset by peer"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.err)
			if errors.Is(got, model.ErrRPCRejected) != tc.rejected {
				t.Fatalf("rejected mismatch for %v: %v", tc.err, got)
			}
			if !tc.rejected && !errors.Is(got, model.ErrRPCTransient) {
				t.Fatalf("expected transient for %v: %v", tc.err, got)
			}
			if !wraps(got, tc.err) {
				t.Fatalf("original error lost: %v", got)
			}
		})
	}

	if Classify(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}

// wraps reports whether got still carries want. rpc.HTTPError holds a byte
// slice, so it is matched by status code instead of equality.
func wraps(got, want error) bool {
	var wantHTTP rpc.HTTPError
	if errors.As(want, &wantHTTP) {
		var gotHTTP rpc.HTTPError
		return errors.As(got, &gotHTTP) && gotHTTP.StatusCode == wantHTTP.StatusCode
	}
	return errors.Is(got, want)
}
