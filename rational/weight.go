// Package rational implements exact fractional arithmetic for ballot
// weights and tallies.
//
// The tabulation engine must never round or truncate inside the
// transfer loop: a ballot's weight after two surplus transfers is the
// exact product of two fractions, not a repeatedly-rounded decimal.
// Weight wraps math/big.Rat (arbitrary-precision numerator over
// arbitrary-precision denominator) to guarantee that.
package rational

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Weight is an exact, non-negative fraction.
type Weight struct {
	r *big.Rat
}

// Zero is the additive identity.
var Zero = Weight{r: new(big.Rat)}

// FromInt builds a Weight for a whole number.
func FromInt(n int64) Weight {
	return Weight{r: new(big.Rat).SetInt64(n)}
}

// FromFrac builds a Weight equal to num/den. den must be non-zero.
func FromFrac(num, den int64) Weight {
	if den == 0 {
		panic("rational: zero denominator")
	}
	return Weight{r: new(big.Rat).SetFrac64(num, den)}
}

// FromString parses a decimal or fractional literal ("1", "0.5", "2/3").
func FromString(s string) (Weight, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Weight{}, fmt.Errorf("rational: invalid literal %q", s)
	}
	return Weight{r: r}, nil
}

func (w Weight) rat() *big.Rat {
	if w.r == nil {
		return new(big.Rat)
	}
	return w.r
}

// Add returns w + other.
func (w Weight) Add(other Weight) Weight {
	return Weight{r: new(big.Rat).Add(w.rat(), other.rat())}
}

// Sub returns w - other.
func (w Weight) Sub(other Weight) Weight {
	return Weight{r: new(big.Rat).Sub(w.rat(), other.rat())}
}

// Mul returns w * other.
func (w Weight) Mul(other Weight) Weight {
	return Weight{r: new(big.Rat).Mul(w.rat(), other.rat())}
}

// Quo returns w / other. Panics if other is zero; callers must guard.
func (w Weight) Quo(other Weight) Weight {
	if other.IsZero() {
		panic("rational: division by zero")
	}
	return Weight{r: new(big.Rat).Quo(w.rat(), other.rat())}
}

// Cmp returns -1, 0, or 1 as w is less than, equal to, or greater than other.
func (w Weight) Cmp(other Weight) int {
	return w.rat().Cmp(other.rat())
}

// IsZero reports whether w is exactly zero.
func (w Weight) IsZero() bool {
	return w.rat().Sign() == 0
}

// GreaterThanOrEqual reports whether w >= other.
func (w Weight) GreaterThanOrEqual(other Weight) bool {
	return w.Cmp(other) >= 0
}

// GreaterThan reports whether w > other.
func (w Weight) GreaterThan(other Weight) bool {
	return w.Cmp(other) > 0
}

// Floor returns the greatest integer Weight <= w. w must be non-negative.
func (w Weight) Floor() Weight {
	num := new(big.Int).Set(w.rat().Num())
	den := w.rat().Denom()
	q := new(big.Int)
	q.Div(num, den) // big.Int.Div floors for non-negative operands
	return Weight{r: new(big.Rat).SetInt(q)}
}

// FloatString renders w with prec digits after the decimal point,
// rounding the last digit to nearest (halves away from zero), as
// big.Rat.FloatString does. Used only by callers that
// need a quick human-readable approximation; Round should be preferred
// when emitting reportable tallies.
func (w Weight) FloatString(prec int) string {
	return w.rat().FloatString(prec)
}

// String implements fmt.Stringer, rendering the fraction as "num/den"
// (or the bare integer when den == 1).
func (w Weight) String() string {
	return w.rat().RatString()
}

// Round converts w to a decimal.Decimal with the given number of places
// after the decimal point, the one place exact rationals are allowed to
// become lossy decimals: when a RoundTally is written out for a Result.
// halfToEven selects banker's rounding (config.roundTalliesHalfToEven);
// otherwise half-away-from-zero rounding is used.
func (w Weight) Round(places int32, halfToEven bool) decimal.Decimal {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	num := new(big.Int).Mul(w.rat().Num(), scale)
	den := w.rat().Denom()
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	switch new(big.Int).Lsh(r, 1).Cmp(den) {
	case 1:
		q.Add(q, big.NewInt(1))
	case 0:
		if !halfToEven || q.Bit(0) == 1 {
			q.Add(q, big.NewInt(1))
		}
	}
	return decimal.NewFromBigInt(q, -places)
}

// MarshalJSON encodes the weight as its decimal string at a generous
// fixed precision, sufficient for audit logs; reportable tallies should
// be rounded explicitly via Round before serialization.
func (w Weight) MarshalJSON() ([]byte, error) {
	return []byte(`"` + w.rat().FloatString(12) + `"`), nil
}

// UnmarshalJSON parses a quoted decimal or fractional string.
func (w *Weight) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := FromString(s)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
