package classify

import (
	"math"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestQuantize(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		minutes int
		want    float64
	}{
		{5, 0.2},
		{12, 0.2},
		{18, 0.4},
		{30, 0.6},
		{36, 0.6},
		{60, 1.0},
		{90, 1.6}, // 1.5h / 0.2 = 7.5, half rounds up
		{0, 0.2},
		{120, 2.0},
	}

	for _, tt := range tests {
		got := Quantize(base, base.Add(time.Duration(tt.minutes)*time.Minute))
		if got != tt.want {
			t.Errorf("Quantize(%d min) = %v, want %v", tt.minutes, got, tt.want)
		}
	}
}

func TestQuantize_MultipleOfUnitAndFloored(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	rapid.Check(t, func(t *rapid.T) {
		minutes := rapid.IntRange(0, 24*60).Draw(t, "minutes")
		got := Quantize(base, base.Add(time.Duration(minutes)*time.Minute))

		if got < BillingUnit {
			t.Fatalf("Quantize(%d min) = %v, below floor %v", minutes, got, BillingUnit)
		}
		tenths := got * 5
		if math.Abs(tenths-math.Round(tenths)) > 1e-9 {
			t.Fatalf("Quantize(%d min) = %v, not a multiple of %v", minutes, got, BillingUnit)
		}
	})
}

func TestQuantize_Deterministic(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(47 * time.Minute)

	if Quantize(start, end) != Quantize(start, end) {
		t.Error("expected identical results for identical inputs")
	}
}
