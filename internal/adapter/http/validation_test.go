package http

import (
	"errors"
	"strings"
	"testing"
)

func containsFieldMsg(fe []FieldError, field, substr string) bool {
	for _, e := range fe {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestUintStrValidation(t *testing.T) {
	type P struct {
		Amount string `validate:"uint_str"`
	}
	cv := NewValidator()

	for _, s := range []string{"0", "1", "1000000000000000000", strings.Repeat("9", 78)} {
		if err := cv.Validate(P{Amount: s}); err != nil {
			t.Fatalf("expected uint_str OK for %q, got %v", s, err)
		}
	}
	for _, s := range []string{
		"",
		"-1",
		"1.5",
		"1e18",
		" 1",
		"0x10",
		strings.Repeat("9", 79),
	} {
		err := cv.Validate(P{Amount: s})
		if err == nil {
			t.Fatalf("expected uint_str error for %q", s)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "Amount", "unsigned integer string") {
			t.Fatalf("expected uint_str message for %q, got %+v", s, fe)
		}
	}
}

func TestEthAddrValidation(t *testing.T) {
	type P struct {
		Asset string `validate:"eth_addr"`
	}
	cv := NewValidator()

	for _, s := range []string{
		"0x0000000000000000000000000000000000000000",
		"0xFF34B3d4Aee8ddCd6F9AFFFB6Fe49bD371b8a357",
	} {
		if err := cv.Validate(P{Asset: s}); err != nil {
			t.Fatalf("expected eth_addr OK for %q, got %v", s, err)
		}
	}
	for _, s := range []string{
		"FF34B3d4Aee8ddCd6F9AFFFB6Fe49bD371b8a357", // no prefix
		"0xFF34B3d4Aee8ddCd6F9AFFFB6Fe49bD371b8a3",  // 19 bytes
		"0xZZ34B3d4Aee8ddCd6F9AFFFB6Fe49bD371b8a357", // non-hex
	} {
		err := cv.Validate(P{Asset: s})
		if err == nil {
			t.Fatalf("expected eth_addr error for %q", s)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "Asset", "20-byte hex address") {
			t.Fatalf("expected eth_addr message for %q, got %+v", s, fe)
		}
	}
}

func TestRequiredAndBoundsMapping(t *testing.T) {
	type P struct {
		Name   string `validate:"required"`
		Min    int    `validate:"gte=10"`
		Max    int    `validate:"lte=5"`
		Symbol string `validate:"max=4"`
	}
	cv := NewValidator()

	err := cv.Validate(P{Name: "", Min: 9, Max: 6, Symbol: "TOOLONG"})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	fe := ToFieldErrors(err)

	if !containsFieldMsg(fe, "Name", "is required") {
		t.Fatalf("missing 'is required' for Name: %+v", fe)
	}
	if !containsFieldMsg(fe, "Min", "greater than or equal to 10") {
		t.Fatalf("missing gte message for Min: %+v", fe)
	}
	if !containsFieldMsg(fe, "Max", "less than or equal to 5") {
		t.Fatalf("missing lte message for Max: %+v", fe)
	}
	if !containsFieldMsg(fe, "Symbol", "at most 4 characters") {
		t.Fatalf("missing max message for Symbol: %+v", fe)
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	err := errors.New("boom")
	fe := ToFieldErrors(err)
	if len(fe) != 1 {
		t.Fatalf("expected 1 field error, got %d", len(fe))
	}
	if fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe[0])
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[string]int{
		"InvalidRate":          422,
		"LoanNotActive":        409,
		"LoanDefaulted":        409,
		"OnlyBorrowerCanRepay": 403,
		"Unauthorized":         403,
		"NotFound":             404,
		"PayoutFailed":         402,
		"Internal":             500,
		"":                     500,
	}
	for code, want := range cases {
		if got := StatusFor(code); got != want {
			t.Fatalf("StatusFor(%q) = %d, want %d", code, got, want)
		}
	}
}
