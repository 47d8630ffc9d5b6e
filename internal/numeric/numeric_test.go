package numeric

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"quantumassembler/pkg/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPowIntegerExponentIsExact(t *testing.T) {
	if got := Pow(d("3"), d("2")); !got.Equal(d("9")) {
		t.Fatalf("3^2 = %s", got)
	}
	if got := Pow(d("2"), d("10")); !got.Equal(d("1024")) {
		t.Fatalf("2^10 = %s", got)
	}
	if got := Pow(d("-2"), d("3")); !got.Equal(d("-8")) {
		t.Fatalf("-2^3 = %s", got)
	}
}

func TestPowRealExponent(t *testing.T) {
	got := Pow(d("2"), d("4.5")).Round(0)
	if !got.Equal(d("23")) {
		t.Fatalf("2^4.5 rounded = %s, want 23", got)
	}
	if got := Pow(d("1"), d("7.25")); !got.Equal(d("1")) {
		t.Fatalf("1^7.25 = %s", got)
	}
	if got := Pow(decimal.Zero, d("2.5")); !got.IsZero() {
		t.Fatalf("0^2.5 = %s", got)
	}
	if got := Pow(d("5"), decimal.Zero); !got.Equal(d("1")) {
		t.Fatalf("5^0 = %s", got)
	}
}

func TestPowBeyondFloatRange(t *testing.T) {
	got := Pow(d("10"), d("1000.5"))
	if e := Log10(got); math.Abs(e-1000.5) > 1e-9 {
		t.Fatalf("log10(10^1000.5) = %v", e)
	}
}

func TestExp10AndLog10(t *testing.T) {
	if got := Exp10(1000); !got.Equal(decimal.New(1, 1000)) {
		t.Fatalf("Exp10(1000) = %s", got)
	}
	if got := Log10(decimal.New(1, 1000)); got != 1000 {
		t.Fatalf("Log10(1e1000) = %v", got)
	}
	if got := Log10(decimal.Zero); !math.IsInf(got, -1) {
		t.Fatalf("Log10(0) = %v", got)
	}
}

func TestDataRoundTrip(t *testing.T) {
	cases := []string{"0", "3", "0.3", "-12.5", "9007199254740991"}
	for _, c := range cases {
		v := d(c)
		if got := FromData(ToData(v)); !got.Equal(v) {
			t.Fatalf("round trip %s -> %s", c, got)
		}
	}
	big := decimal.New(1, 20)
	data := ToData(big)
	if data.Layer != 1 || data.Mag != 20 || data.Sign != 1 {
		t.Fatalf("unexpected layer-1 data %+v", data)
	}
	if got := FromData(data); !got.Equal(big) {
		t.Fatalf("layer-1 round trip -> %s", got)
	}
}

func TestFromDataLayerTwo(t *testing.T) {
	got := FromData(domain.DecimalData{Sign: 1, Layer: 2, Mag: 2})
	if !got.Equal(decimal.New(1, 100)) {
		t.Fatalf("10^10^2 = %s", got)
	}
	huge := FromData(domain.DecimalData{Sign: -1, Layer: 3, Mag: 10})
	if huge.Sign() != -1 {
		t.Fatalf("expected saturated negative value, got %s", huge)
	}
}

func TestFromDataSaturatesHugeTiers(t *testing.T) {
	cases := []domain.DecimalData{
		{Sign: 1, Layer: 2, Mag: 9},
		{Sign: 1, Layer: 1, Mag: 1e300},
		{Sign: 1, Layer: 0, Mag: math.Inf(1)},
		{Sign: 1, Layer: 1 << 40, Mag: 1},
	}
	for _, c := range cases {
		got := FromData(c)
		if !got.Equal(decimal.New(1, MaxExponent)) {
			t.Fatalf("FromData(%+v) = %s, want 1e%d", c, got, MaxExponent)
		}
		if Saturated(got) {
			t.Fatalf("FromData(%+v) is above the cap", c)
		}
	}
}

func TestArithmeticOnSaturatedValues(t *testing.T) {
	top := FromData(domain.DecimalData{Sign: 1, Layer: 2, Mag: 9})
	if got := Add(top, d("1")); !got.Equal(top) {
		t.Fatalf("top+1 = %s", got)
	}
	if got := Add(d("1"), top); !got.Equal(top) {
		t.Fatalf("1+top = %s", got)
	}
	if got := Sub(top, d("5")); !got.Equal(top) {
		t.Fatalf("top-5 = %s", got)
	}
	if got := Mul(top, top); !got.Equal(top) {
		t.Fatalf("top*top = %s", got)
	}
	if got := Mul(top, d("-2")); !got.Equal(top.Neg()) {
		t.Fatalf("top*-2 = %s", got)
	}
	if got := Div(d("1"), top); !got.IsZero() {
		t.Fatalf("1/top = %s", got)
	}
	if got := Pow(top, d("3")); !got.Equal(top) {
		t.Fatalf("top^3 = %s", got)
	}
	if Cmp(top, d("1")) != 1 || Cmp(d("1"), top) != -1 || Cmp(top.Neg(), d("-1")) != -1 {
		t.Fatalf("comparison across a large gap is wrong")
	}
	if got := ToData(top); got.Layer != 1 || got.Mag != MaxExponent {
		t.Fatalf("ToData(top) = %+v", got)
	}
	if got := Format(top); got != "1.00e4096" {
		t.Fatalf("Format(top) = %q", got)
	}
}

func TestArithmeticMatchesDecimalForOrdinaryValues(t *testing.T) {
	if got := Add(d("1.5"), d("2.25")); !got.Equal(d("3.75")) {
		t.Fatalf("Add = %s", got)
	}
	if got := Sub(d("10"), d("12")); !got.Equal(d("-2")) {
		t.Fatalf("Sub = %s", got)
	}
	if got := Mul(d("1.5"), d("4")); !got.Equal(d("6")) {
		t.Fatalf("Mul = %s", got)
	}
	if got := Div(d("10"), d("4")); !got.Equal(d("2.5")) {
		t.Fatalf("Div = %s", got)
	}
	if got := Div(d("10"), decimal.Zero); !got.Equal(d("10")) {
		t.Fatalf("Div by zero = %s", got)
	}
	if Cmp(d("2"), d("3")) != -1 || Cmp(d("3"), d("3")) != 0 || Cmp(d("0"), d("-1")) != 1 {
		t.Fatalf("Cmp mismatch")
	}
	if got := Round0(d("7.6")); !got.Equal(d("8")) {
		t.Fatalf("Round0 = %s", got)
	}
	if got := Clamp(decimal.New(1, MaxExponent+5)); !got.Equal(decimal.New(1, MaxExponent)) {
		t.Fatalf("Clamp = %s", got)
	}
}

func TestFromDataToleratesMalformedJSON(t *testing.T) {
	cases := map[string]string{
		`{"sign":1,"layer":0,"mag":3}`: "3",
		`{"mag":3}`:                    "3",
		`{"mag":-4}`:                   "-4",
		`{"sign":1,"mag":20,"layer":1}`: "100000000000000000000",
		`5`:                            "5",
		`"7.5"`:                        "7.5",
		`null`:                         "0",
		`{}`:                           "0",
		`"three"`:                      "0",
		`true`:                         "0",
		`[1,2,3]`:                      "0",
		`{"mag":"x"}`:                  "0",
		`{"mag":"12"}`:                 "12",
		`{"sign":1,"layer":1e300,"mag":2}`: "1e4096",
	}
	for raw, want := range cases {
		var data domain.DecimalData
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if got := FromData(data); !got.Equal(d(want)) {
			t.Fatalf("%s -> %s, want %s", raw, got, want)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"3":       "3",
		"0.3":     "0.3",
		"1234.5":  "1,234.5",
		"1e20":    "1.00e20",
		"-2.5e30": "-2.50e30",
	}
	for in, want := range cases {
		if got := Format(d(in)); got != want {
			t.Fatalf("Format(%s) = %q, want %q", in, got, want)
		}
	}
	if got := FormatGain(d("0.3")); got != "0.3/s" {
		t.Fatalf("FormatGain = %q", got)
	}
}
