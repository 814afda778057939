package fee

import (
	"errors"
	"testing"

	"github.com/linkbazaar/linkbazaar-api/internal/domain/settings"
)

func testSettings() *settings.PlatformSettings {
	return &settings.PlatformSettings{
		PlatformFeeType:     settings.FeeTypePercentage,
		PlatformFeeValue:    500, // 5%
		MinDepositAmount:    100,
		MaxDepositAmount:    1000000,
		MinWithdrawalAmount: 500,
		MaxWithdrawalAmount: 500000,
	}
}

func TestComputePercentage(t *testing.T) {
	s := testSettings()

	cases := []struct {
		amount int64
		want   int64
	}{
		{10000, 500},
		{100, 5},
		{1, 0}, // rounds down
		{0, 0},
		{-50, 0},
	}

	for _, c := range cases {
		if got := Compute(c.amount, s); got != c.want {
			t.Errorf("Compute(%d) = %d, want %d", c.amount, got, c.want)
		}
	}
}

func TestComputeFlat(t *testing.T) {
	s := testSettings()
	s.PlatformFeeType = settings.FeeTypeFlat
	s.PlatformFeeValue = 250

	if got := Compute(10000, s); got != 250 {
		t.Errorf("flat fee: expected 250, got %d", got)
	}
	if got := Compute(100, s); got != 250 {
		t.Errorf("flat fee ignores amount: expected 250, got %d", got)
	}
	if got := Compute(0, s); got != 0 {
		t.Errorf("no fee on zero amount: expected 0, got %d", got)
	}
}

func TestValidateAmountBounds(t *testing.T) {
	s := testSettings()

	cases := []struct {
		name   string
		amount int64
		kind   Kind
		want   error
	}{
		{"deposit at min", 100, KindDeposit, nil},
		{"deposit below min", 99, KindDeposit, ErrBelowMinimum},
		{"deposit at max", 1000000, KindDeposit, nil},
		{"deposit above max", 1000001, KindDeposit, ErrAboveMaximum},
		{"withdrawal at min", 500, KindWithdrawal, nil},
		{"withdrawal below min", 499, KindWithdrawal, ErrBelowMinimum},
		{"withdrawal above max", 500001, KindWithdrawal, ErrAboveMaximum},
		{"unknown kind", 1000, Kind("transfer"), ErrUnknownKind},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidateAmount(c.amount, c.kind, s)
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
		})
	}
}

func TestValidateAmountNoCap(t *testing.T) {
	s := testSettings()
	s.MaxDepositAmount = 0 // zero max means uncapped

	if err := ValidateAmount(1<<40, KindDeposit, s); err != nil {
		t.Fatalf("expected uncapped deposit to pass, got %v", err)
	}
}
