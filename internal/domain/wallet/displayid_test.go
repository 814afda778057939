package wallet

import (
	"strings"
	"testing"
)

func TestDisplayIDPrefix(t *testing.T) {
	cases := []struct {
		txType TransactionType
		prefix string
	}{
		{TypeDeposit, "TX"},
		{TypeWithdrawal, "WD"},
		{TypePurchase, "SF"},
		{TypeRefund, "TX"},
		{TypeRejectionRefund, "TX"},
		{TypeAdminCredit, "TX"},
		{TypeAdminDebit, "TX"},
	}

	for _, c := range cases {
		if got := DisplayIDPrefix(c.txType); got != c.prefix {
			t.Errorf("prefix for %s: expected %s, got %s", c.txType, c.prefix, got)
		}
	}
}

func TestNewDisplayIDFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewDisplayID("WD")

		if !strings.HasPrefix(id, "WD-") {
			t.Fatalf("expected WD- prefix, got %s", id)
		}
		suffix := strings.TrimPrefix(id, "WD-")
		if len(suffix) != displayIDSuffixLength {
			t.Fatalf("expected %d char suffix, got %q", displayIDSuffixLength, suffix)
		}
		for _, ch := range suffix {
			if !((ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')) {
				t.Fatalf("unexpected character %q in %s", ch, id)
			}
		}
		seen[id] = true
	}

	// 100 draws from a 36^6 space colliding en masse means broken randomness
	if len(seen) < 95 {
		t.Fatalf("too many collisions: %d unique out of 100", len(seen))
	}
}

func TestTransactionTypeValid(t *testing.T) {
	for _, valid := range []TransactionType{
		TypeDeposit, TypeWithdrawal, TypePurchase, TypeRefund,
		TypeRejectionRefund, TypeAdminCredit, TypeAdminDebit,
	} {
		if !valid.Valid() {
			t.Errorf("expected %s to be valid", valid)
		}
	}

	for _, invalid := range []TransactionType{"", "top_up", "payment", "DEPOSIT"} {
		if invalid.Valid() {
			t.Errorf("expected %q to be invalid", invalid)
		}
	}
}
