package postgres

import (
	"math/big"
	"testing"
)

func TestBigString(t *testing.T) {
	if got := bigString(nil); got != "0" {
		t.Fatalf("nil should format as 0, got %s", got)
	}
	v, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	if got := bigString(v); got != v.String() {
		t.Fatalf("unexpected format: %s", got)
	}
}

func TestParseBig(t *testing.T) {
	v, err := parseBig("500")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("unexpected value %s", v)
	}
	if _, err := parseBig("5e2"); err == nil {
		t.Fatalf("expected error for non-integer numeric")
	}
}
