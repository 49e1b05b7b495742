package cmd

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParsePositiveAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"12.50", 1250, false},
		{"$1,000", 100000, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"1.005", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parsePositiveAmount(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePositiveAmount(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parsePositiveAmount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMinor(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"9.95", 995, false},
		{"-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseMinor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseMinor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseMinor(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseUnits(t *testing.T) {
	got, err := parseUnits(" 2.5 ")
	if err != nil {
		t.Fatalf("parseUnits() error = %v", err)
	}
	if !got.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("parseUnits() = %s, want 2.5", got)
	}
	if _, err := parseUnits("two"); err == nil {
		t.Errorf("parseUnits(\"two\") expected error, got nil")
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2024-03-15")
	if err != nil {
		t.Fatalf("parseDate() error = %v", err)
	}
	if want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("parseDate() = %v, want %v", got, want)
	}
	if _, err := parseDate("15/03/2024"); err == nil {
		t.Errorf("parseDate() expected error for non-ISO date")
	}
}

func TestDisplayMoney(t *testing.T) {
	if got := displayMoney(1234, "USD"); got != "$12.34" {
		t.Errorf("displayMoney() = %q, want %q", got, "$12.34")
	}
}
