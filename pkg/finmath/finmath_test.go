package finmath

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSum(t *testing.T) {
	values := []decimal.Decimal{dec("1.10"), dec("2.20"), dec("-0.30")}
	got := Sum(values)
	if !got.Equal(dec("3")) {
		t.Errorf("Sum = %s, want 3", got)
	}
}

func TestSumEmpty(t *testing.T) {
	if got := Sum(nil); !got.IsZero() {
		t.Errorf("Sum(nil) = %s, want 0", got)
	}
}

func TestNPVSingleFlow(t *testing.T) {
	// 110 received in one year at 10% is worth exactly 100 today.
	got := NPV(dec("0.1"), []decimal.Decimal{dec("110")})
	if !got.Equal(dec("100")) {
		t.Errorf("NPV = %s, want 100", got)
	}
}

func TestNPVTwoPeriods(t *testing.T) {
	// 121 in year two at 10%: 121 / 1.21 = 100.
	got := NPV(dec("0.1"), []decimal.Decimal{decimal.Zero, dec("121")})
	if !got.Equal(dec("100")) {
		t.Errorf("NPV = %s, want 100", got)
	}
}

func TestNPVZeroRate(t *testing.T) {
	flows := []decimal.Decimal{dec("50"), dec("50"), dec("-25")}
	got := NPV(decimal.Zero, flows)
	if !got.Equal(dec("75")) {
		t.Errorf("NPV at zero rate = %s, want 75", got)
	}
}

func TestNPVDeterministic(t *testing.T) {
	flows := []decimal.Decimal{dec("1000000"), dec("1100000.55"), dec("-350000.01")}
	first := NPV(dec("0.08"), flows)
	second := NPV(dec("0.08"), flows)
	if first.String() != second.String() {
		t.Errorf("NPV not deterministic: %s vs %s", first, second)
	}
}

func TestNPVRateAtNegativeOne(t *testing.T) {
	got := NPV(dec("-1"), []decimal.Decimal{dec("100")})
	if !got.IsZero() {
		t.Errorf("NPV at rate -1 = %s, want 0", got)
	}
}

func TestIRRSimple(t *testing.T) {
	// -1000 now, 1100 in a year: IRR is exactly 10%.
	got, ok := IRR([]decimal.Decimal{dec("-1000"), dec("1100")})
	if !ok {
		t.Fatal("expected IRR to be defined")
	}
	if !got.Equal(dec("0.1")) {
		t.Errorf("IRR = %s, want 0.1", got)
	}
}

func TestIRRTwoPeriods(t *testing.T) {
	// -1000, 500, 700 has an IRR near 12.32%.
	got, ok := IRR([]decimal.Decimal{dec("-1000"), dec("500"), dec("700")})
	if !ok {
		t.Fatal("expected IRR to be defined")
	}
	if diff := math.Abs(got.InexactFloat64() - 0.1232); diff > 0.001 {
		t.Errorf("IRR = %s, want ~0.1232", got)
	}
}

func TestIRRUndefinedAllPositive(t *testing.T) {
	if _, ok := IRR([]decimal.Decimal{dec("100"), dec("200")}); ok {
		t.Error("expected IRR to be undefined for all-positive flows")
	}
}

func TestIRRUndefinedAllNegative(t *testing.T) {
	if _, ok := IRR([]decimal.Decimal{dec("-100"), dec("-200")}); ok {
		t.Error("expected IRR to be undefined for all-negative flows")
	}
}

func TestIRRDeterministic(t *testing.T) {
	flows := []decimal.Decimal{dec("-2458500"), dec("900000"), dec("1100000"), dec("1300000")}
	first, ok1 := IRR(flows)
	second, ok2 := IRR(flows)
	if !ok1 || !ok2 {
		t.Fatal("expected IRR to be defined")
	}
	if first.String() != second.String() {
		t.Errorf("IRR not deterministic: %s vs %s", first, second)
	}
}
