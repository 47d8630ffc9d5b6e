// Package numeric holds the arbitrary-magnitude helpers the assembler needs on
// top of shopspring/decimal: real-valued powers, the persisted
// sign/layer/magnitude codec, and display formatting.
package numeric

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"quantumassembler/pkg/domain"
)

// MaxExponent bounds the base-10 exponent of every value this package
// produces. Larger results saturate at 10^MaxExponent. decimal rescales both
// operands to the smaller exponent on Add and Cmp, so unbounded exponents
// turn into unbounded big.Int work.
const MaxExponent = 4096

// precisionDigits is the magnitude gap beyond which the smaller operand of
// Add no longer changes the result at any precision the game displays.
const precisionDigits = 40

// fractionDigits caps the decimal places kept by Mul and Div.
const fractionDigits = 32

var saturated = decimal.New(1, MaxExponent)

// safeInteger is 2^53-1; magnitudes below it persist as layer 0.
var safeInteger = decimal.NewFromInt(1<<53 - 1)

// scientificThreshold is where Format switches to scientific notation.
var scientificThreshold = decimal.New(1, 15)

var one = decimal.NewFromInt(1)

// Log10 returns the base-10 logarithm of a positive value. It works on the
// coefficient digits so values beyond float64 range are supported.
func Log10(d decimal.Decimal) float64 {
	if d.Sign() <= 0 {
		return math.Inf(-1)
	}
	digits := d.Coefficient().String()
	const keep = 17
	shift := 0
	if len(digits) > keep {
		shift = len(digits) - keep
		digits = digits[:keep]
	}
	m, err := strconv.ParseFloat(digits, 64)
	if err != nil || m <= 0 {
		return math.Inf(-1)
	}
	return math.Log10(m) + float64(shift) + float64(d.Exponent())
}

// Exp10 returns 10^e.
func Exp10(e float64) decimal.Decimal {
	switch {
	case math.IsNaN(e):
		return decimal.Zero
	case e > MaxExponent:
		return saturated
	case e < -MaxExponent:
		return decimal.Zero
	}
	ip := math.Floor(e)
	m := math.Pow(10, e-ip)
	return decimal.NewFromFloat(m).Shift(int32(ip))
}

// Pow returns base^exp. Integer exponents up to 64 are computed exactly when
// the result stays small; everything else goes through logarithms.
func Pow(base, exp decimal.Decimal) decimal.Decimal {
	if exp.IsZero() {
		return one
	}
	switch base.Sign() {
	case 0:
		if exp.Sign() > 0 {
			return decimal.Zero
		}
		return saturated
	case -1:
		if !isInteger(exp) {
			return decimal.Zero
		}
		out := Pow(base.Neg(), exp)
		if exp.Mod(decimal.NewFromInt(2)).IsZero() {
			return out
		}
		return out.Neg()
	}
	if base.Equal(one) {
		return one
	}
	if isInteger(exp) && exp.Sign() > 0 && Cmp(exp, decimal.NewFromInt(64)) <= 0 &&
		Log10(base)*exp.InexactFloat64() < 300 {
		out := one
		for i := exp.IntPart(); i > 0; i-- {
			out = out.Mul(base)
		}
		return out
	}
	return Exp10(Log10(base) * exp.InexactFloat64())
}

func isInteger(d decimal.Decimal) bool {
	if d.Exponent() >= 0 {
		return true
	}
	return d.Equal(d.Truncate(0))
}

// Saturated reports whether |d| is above 10^MaxExponent.
func Saturated(d decimal.Decimal) bool {
	return d.Sign() != 0 && Log10(d.Abs()) > MaxExponent
}

// Clamp saturates d at ±10^MaxExponent.
func Clamp(d decimal.Decimal) decimal.Decimal {
	if !Saturated(d) {
		return d
	}
	if d.Sign() < 0 {
		return saturated.Neg()
	}
	return saturated
}

func signed(sign int, v decimal.Decimal) decimal.Decimal {
	if sign < 0 {
		return v.Neg()
	}
	return v
}

// Add returns a+b. When the operands are more than precisionDigits orders of
// magnitude apart the larger one is returned unchanged.
func Add(a, b decimal.Decimal) decimal.Decimal {
	switch {
	case a.Sign() == 0:
		return Clamp(b)
	case b.Sign() == 0:
		return Clamp(a)
	}
	la, lb := Log10(a.Abs()), Log10(b.Abs())
	switch {
	case la-lb > precisionDigits:
		return Clamp(a)
	case lb-la > precisionDigits:
		return Clamp(b)
	}
	return Clamp(a.Add(b))
}

// Sub returns a-b with the same guarantees as Add.
func Sub(a, b decimal.Decimal) decimal.Decimal { return Add(a, b.Neg()) }

// Mul returns a*b, saturating above 10^MaxExponent and flushing to zero below
// 10^-MaxExponent.
func Mul(a, b decimal.Decimal) decimal.Decimal {
	if a.Sign() == 0 || b.Sign() == 0 {
		return decimal.Zero
	}
	sign := a.Sign() * b.Sign()
	e := Log10(a.Abs()) + Log10(b.Abs())
	switch {
	case e > MaxExponent:
		return signed(sign, saturated)
	case e < -MaxExponent:
		return decimal.Zero
	}
	p := a.Mul(b)
	if p.Exponent() < -fractionDigits {
		p = p.Round(fractionDigits)
	}
	return Clamp(p)
}

// Div returns a/b. A zero divisor leaves a unchanged.
func Div(a, b decimal.Decimal) decimal.Decimal {
	if b.Sign() == 0 || a.Sign() == 0 {
		return a
	}
	sign := a.Sign() * b.Sign()
	e := Log10(a.Abs()) - Log10(b.Abs())
	switch {
	case e > MaxExponent:
		return signed(sign, saturated)
	case e < -fractionDigits:
		return decimal.Zero
	}
	return Clamp(a.DivRound(b, fractionDigits))
}

// Cmp compares a and b like decimal.Cmp without rescaling operands that are
// far apart in magnitude.
func Cmp(a, b decimal.Decimal) int {
	sa, sb := a.Sign(), b.Sign()
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	case sa == 0:
		return 0
	}
	la, lb := Log10(a.Abs()), Log10(b.Abs())
	if math.Abs(la-lb) > precisionDigits {
		if la > lb {
			return sa
		}
		return -sa
	}
	return a.Cmp(b)
}

// Round0 rounds to an integer. Values without a fractional part are returned
// as is.
func Round0(d decimal.Decimal) decimal.Decimal {
	if d.Exponent() >= 0 {
		return d
	}
	if Log10(d.Abs()) < -1 {
		return decimal.Zero
	}
	return d.Round(0)
}

// ToData converts a value into its persisted sign/layer/magnitude form.
func ToData(d decimal.Decimal) domain.DecimalData {
	sign := d.Sign()
	if sign == 0 {
		return domain.DecimalData{}
	}
	abs := d.Abs()
	if Cmp(abs, safeInteger) <= 0 {
		return domain.DecimalData{Sign: sign, Layer: 0, Mag: abs.InexactFloat64()}
	}
	return domain.DecimalData{Sign: sign, Layer: 1, Mag: Log10(abs)}
}

// FromData rebuilds a value from its persisted form. Missing or inconsistent
// fields degrade to the closest representable value rather than failing, and
// magnitudes above 10^MaxExponent saturate.
func FromData(data domain.DecimalData) decimal.Decimal {
	if data.Sign == 0 || math.IsNaN(data.Mag) {
		return decimal.Zero
	}
	mag := math.Abs(data.Mag)
	var out decimal.Decimal
	switch {
	case data.Layer <= 0:
		if math.IsInf(mag, 0) {
			out = saturated
		} else {
			out = Clamp(decimal.NewFromFloat(mag))
		}
	case data.Layer == 1:
		out = Exp10(mag)
	default:
		e := mag
		for layer := data.Layer; layer > 1 && e <= MaxExponent; layer-- {
			e = math.Pow(10, e)
		}
		out = Exp10(e)
	}
	if data.Sign < 0 {
		return out.Neg()
	}
	return out
}

// Format renders a value for display: grouped digits below 1e15, scientific
// notation above.
func Format(d decimal.Decimal) string {
	abs := d.Abs()
	if Cmp(abs, scientificThreshold) < 0 {
		return humanize.CommafWithDigits(d.InexactFloat64(), 2)
	}
	e := Log10(abs)
	ip := math.Floor(e)
	m := math.Pow(10, e-ip)
	if m >= 9.995 {
		m /= 10
		ip++
	}
	sign := ""
	if d.Sign() < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%.2fe%d", sign, m, int64(ip))
}

// FormatGain renders a per-second rate.
func FormatGain(rate decimal.Decimal) string {
	return Format(rate) + "/s"
}
