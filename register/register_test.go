package register_test

import (
	"testing"

	"github.com/pusty/f0x86/register"
)

func TestByName(t *testing.T) {
	tests := []struct {
		name string
		bits register.Width
		enc  uint8
	}{
		{"eax", register.Width32, 0},
		{"EAX", register.Width32, 0},
		{"al", register.Width8, 0},
		{"ah", register.Width8, 4},
		{"sp", register.Width16, 4},
		{"rdi", register.Width64, 7},
	}
	for _, tc := range tests {
		r, ok := register.ByName(tc.name)
		if !ok {
			t.Fatalf("ByName(%q) not found", tc.name)
		}
		if r.Bits != tc.bits || r.Enc != tc.enc {
			t.Errorf("ByName(%q) = %+v, want bits=%d enc=%d", tc.name, r, tc.bits, tc.enc)
		}
	}
}

func TestByNameMiss(t *testing.T) {
	if _, ok := register.ByName("notareg"); ok {
		t.Fatalf("expected miss for unknown register name")
	}
}

// Every register in the catalogue must round-trip through ByEncoding.
func TestByEncodingRoundTrip(t *testing.T) {
	for _, r := range register.All() {
		got, ok := register.ByEncoding(r.Bits, r.Enc)
		if !ok {
			t.Fatalf("ByEncoding(%d, %d) not found for %+v", r.Bits, r.Enc, r)
		}
		if got != r {
			t.Errorf("ByEncoding(%d, %d) = %+v, want %+v", r.Bits, r.Enc, got, r)
		}
	}
}

func TestByWidth(t *testing.T) {
	regs := register.ByWidth(register.Width32)
	if len(regs) != 8 {
		t.Fatalf("ByWidth(32) returned %d registers, want 8", len(regs))
	}
	for _, r := range regs {
		if r.Bits != register.Width32 {
			t.Errorf("ByWidth(32) returned %+v", r)
		}
	}
}

func TestWidthName(t *testing.T) {
	tests := []struct {
		bits register.Width
		name string
	}{
		{register.Width8, "byte"},
		{register.Width16, "word"},
		{register.Width32, "dword"},
		{register.Width64, "qword"},
		{99, "UNKNOWN"},
	}
	for _, tc := range tests {
		if got := register.WidthName(tc.bits); got != tc.name {
			t.Errorf("WidthName(%d) = %q, want %q", tc.bits, got, tc.name)
		}
	}
}
