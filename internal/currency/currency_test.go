package currency

import (
	"math"
	"testing"
)

const epsilon = 1e-6

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		from, to string
		rate     float64
		want     float64
		wantDesc bool
	}{
		{"same currency", 100, "CRC", "CRC", 520, 100, false},
		{"usd to crc", 100, "USD", "CRC", 500, 50000, true},
		{"crc to usd", 50000, "CRC", "USD", 500, 100, true},
		{"case and whitespace folded", 10, " usd ", "crc", 500, 5000, true},
		{"unknown pair is a no-op", 100, "EUR", "CRC", 500, 100, false},
		{"zero rate falls back to 520", 100, "USD", "CRC", 0, 52000, true},
		{"negative rate falls back to 520", 100, "USD", "CRC", -3, 52000, true},
		{"empty code defaults to CRC", 100, "", "CRC", 500, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Convert(tt.amount, tt.from, tt.to, tt.rate)
			if diff := got.Amount - tt.want; diff > epsilon || diff < -epsilon {
				t.Errorf("Convert() amount = %v, want %v", got.Amount, tt.want)
			}
			if (got.Description != "") != tt.wantDesc {
				t.Errorf("Convert() description = %q, wantDesc=%v", got.Description, tt.wantDesc)
			}
		})
	}
}

func TestConvertRoundTrip(t *testing.T) {
	for _, rate := range []float64{1, 0.5, 500, 520, 643.27} {
		x := 123.45
		there := Convert(x, "USD", "CRC", rate)
		back := Convert(there.Amount, "CRC", "USD", rate)
		if diff := back.Amount - x; diff > epsilon || diff < -epsilon {
			t.Errorf("round trip at rate %v: got %v, want %v", rate, back.Amount, x)
		}
	}
}

func TestRate(t *testing.T) {
	if got := Rate(500); got != 500 {
		t.Errorf("Rate(500) = %v", got)
	}
	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if got := Rate(bad); got != FallbackRate {
			t.Errorf("Rate(%v) = %v, want %v", bad, got, FallbackRate)
		}
	}
}
