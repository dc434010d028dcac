package idempotency

import (
	"strings"
	"testing"

	"yieldRecon/internal/model"
)

func TestFingerprintDeterministic(t *testing.T) {
	event := model.RawEvent{BlockNumber: 130, TxHash: "0xABC", LogIndex: 2}

	a := Fingerprint("yield_distribution", event, "L")
	b := Fingerprint("yield_distribution", model.RawEvent{BlockNumber: 130, TxHash: "0xabc", LogIndex: 2}, "L")
	if a != b {
		t.Fatalf("fingerprint must ignore tx hash case: %s != %s", a, b)
	}
	if !strings.HasPrefix(a, NamespaceYield+":0x") {
		t.Fatalf("unexpected namespace: %s", a)
	}

	variants := []string{
		Fingerprint("other_stream", event, "L"),
		Fingerprint("yield_distribution", model.RawEvent{BlockNumber: 131, TxHash: "0xabc", LogIndex: 2}, "L"),
		Fingerprint("yield_distribution", model.RawEvent{BlockNumber: 130, TxHash: "0xabc", LogIndex: 3}, "L"),
		Fingerprint("yield_distribution", event, "M"),
	}
	for i, v := range variants {
		if v == a {
			t.Fatalf("variant %d collides with base fingerprint", i)
		}
	}
}
