package rational_test

import (
	"testing"

	"github.com/kouellette/rcv/rational"
)

func TestArithmeticIsExact(t *testing.T) {
	one := rational.FromInt(1)
	three := rational.FromInt(3)
	third := one.Quo(three)

	sum := third.Add(third).Add(third)
	if sum.Cmp(one) != 0 {
		t.Fatalf("1/3 + 1/3 + 1/3 = %s, want 1", sum)
	}
}

func TestSurplusFraction(t *testing.T) {
	tally := rational.FromInt(6)
	threshold := rational.FromInt(4)
	surplus := tally.Sub(threshold)
	frac := surplus.Quo(tally)

	want, err := rational.FromString("1/3")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	if frac.Cmp(want) != 0 {
		t.Fatalf("surplus fraction = %s, want %s", frac, want)
	}

	transferred := rational.FromInt(1).Mul(frac)
	if transferred.Cmp(want) != 0 {
		t.Fatalf("transferred weight = %s, want %s", transferred, want)
	}
}

func TestRoundHalfUpAndBankers(t *testing.T) {
	w, err := rational.FromString("2.5")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}

	if got := w.Round(0, false); got.String() != "3" {
		t.Errorf("half-up round of 2.5 = %s, want 3", got)
	}
	if got := w.Round(0, true); got.String() != "2" {
		t.Errorf("banker's round of 2.5 = %s, want 2", got)
	}
}

func TestFromStringRejectsGarbage(t *testing.T) {
	if _, err := rational.FromString("not-a-number"); err == nil {
		t.Fatal("expected an error for invalid literal")
	}
}

func TestCmpAndZero(t *testing.T) {
	if !rational.Zero.IsZero() {
		t.Fatal("Zero.IsZero() = false")
	}

	a := rational.FromInt(2)
	b := rational.FromInt(3)
	if !b.GreaterThan(a) {
		t.Fatal("3 > 2 expected")
	}
	if !a.GreaterThanOrEqual(a) {
		t.Fatal("2 >= 2 expected")
	}
}
