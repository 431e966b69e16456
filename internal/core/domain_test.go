package core

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1500", 1500, true},
		{"12.34", 12.34, true},
		{"12,34", 12.34, true},
		{" 7 ", 7, true},
		{"", 0, false},
		{"abc", 0, false},
		{"0", 0, false},
		{"-5", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for i, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d (%q) expected ok, got %v", i, tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d (%q) expected error", i, tc.in)
		}
		if tc.ok && math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("case %d (%q) = %v, want %v", i, tc.in, got, tc.want)
		}
	}
}

func TestTransactionInputValidate(t *testing.T) {
	good := TransactionInput{Amount: 1500, Category: "Transport", Type: Expense}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Any non-empty category passes, including ones outside the fixed list.
	free := TransactionInput{Amount: 10, Category: "Cadeaux", Type: Income}
	if err := free.Validate(); err != nil {
		t.Fatalf("expected free-form category to pass, got %v", err)
	}

	bads := []TransactionInput{
		{Amount: 0, Category: "Transport", Type: Expense},
		{Amount: -3, Category: "Transport", Type: Expense},
		{Amount: 10, Category: "", Type: Expense},
		{Amount: 10, Category: "   ", Type: Expense},
		{Amount: 10, Category: "Transport", Type: "transfer"},
	}
	for i, in := range bads {
		if err := in.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionTypeIsValid(t *testing.T) {
	if !Income.IsValid() || !Expense.IsValid() {
		t.Fatal("known types should be valid")
	}
	if TransactionType("transfer").IsValid() {
		t.Fatal("unknown type should be invalid")
	}
}
