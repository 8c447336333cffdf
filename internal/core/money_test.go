package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseNonNegativeCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"0", 0, true},
		{"0.00", 0, true},
		{"", 0, true},
		{"1234.56", 123456, true},
		{"-5", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseNonNegativeCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{123456, "1234.56"},
		{5, "0.05"},
		{0, "0.00"},
		{-100, "-1.00"},
		{-5, "-0.05"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("Money{%d}.String() = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestDivRoundHalfUp(t *testing.T) {
	cases := []struct {
		n, d, want int64
	}{
		{10, 4, 3}, // 2.5 rounds up
		{10, 3, 3}, // 3.33 rounds down
		{11, 3, 4}, // 3.67 rounds up
		{-10, 4, -3},
		{0, 7, 0},
	}
	for _, tc := range cases {
		if got := DivRoundHalfUp(tc.n, tc.d); got != tc.want {
			t.Fatalf("DivRoundHalfUp(%d, %d) = %d, want %d", tc.n, tc.d, got, tc.want)
		}
	}
}

func TestCeilDiv(t *testing.T) {
	cases := []struct {
		n, d, want int64
	}{
		{1200000, 100000, 12},
		{1200001, 100000, 13},
		{1, 100000, 1},
	}
	for _, tc := range cases {
		if got := CeilDiv(tc.n, tc.d); got != tc.want {
			t.Fatalf("CeilDiv(%d, %d) = %d, want %d", tc.n, tc.d, got, tc.want)
		}
	}
}

func TestMulBasisPoints(t *testing.T) {
	cases := []struct {
		cents, bp, want int64
	}{
		{40000, 7500, 30000},
		{40000, 2500, 10000},
		{10000, 3333, 3333},
		{1, 5000, 1}, // 0.5 cent rounds up
	}
	for _, tc := range cases {
		if got := MulBasisPoints(tc.cents, tc.bp); got != tc.want {
			t.Fatalf("MulBasisPoints(%d, %d) = %d, want %d", tc.cents, tc.bp, got, tc.want)
		}
	}
}
