package disassembler_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/pusty/f0x86/disassembler"
)

func mustDecode(t *testing.T, h string) string {
	t.Helper()
	d, err := disassembler.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	code, err := hex.DecodeString(h)
	if err != nil {
		t.Fatalf("decoding hex %q: %v", h, err)
	}
	text, _, err := d.DecodeOne(code)
	if err != nil {
		t.Fatalf("DecodeOne(%q) error: %v", h, err)
	}
	return text
}

func TestDecodeOneBasics(t *testing.T) {
	tests := []struct {
		hex  string
		text string
	}{
		{"90", "nop"},
		{"c3", "ret"},
		{"b844332211", "mov eax, 0x11223344"},
		{"01c8", "add eax, ecx"},
	}
	for _, tc := range tests {
		if got := mustDecode(t, tc.hex); got != tc.text {
			t.Errorf("DecodeOne(%q) = %q, want %q", tc.hex, got, tc.text)
		}
	}
}

func TestDisassembleSweepSynthesizesLabels(t *testing.T) {
	d, err := disassembler.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// jmp +1 (skip the nop), nop, ret
	code, err := hex.DecodeString("eb0190c3")
	if err != nil {
		t.Fatalf("decoding hex: %v", err)
	}
	listing, err := d.Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble error: %v", err)
	}
	if !strings.Contains(listing, "loc_0003:") {
		t.Errorf("listing %q missing synthesized loc_0003 label", listing)
	}
	if !strings.Contains(listing, "jmp loc_0003") {
		t.Errorf("listing %q missing jmp to synthesized label", listing)
	}
}

func TestDisassembleSweepLabelsCallTargets(t *testing.T) {
	d, err := disassembler.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// call +0 (straight into the next instruction), ret
	code, err := hex.DecodeString("e800000000c3")
	if err != nil {
		t.Fatalf("decoding hex: %v", err)
	}
	listing, err := d.Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble error: %v", err)
	}
	if !strings.Contains(listing, "sub_0005:") {
		t.Errorf("listing %q missing synthesized sub_0005 label", listing)
	}
}

func TestDisassembleUnreachableBytesRenderAsData(t *testing.T) {
	d, err := disassembler.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// ret, then two bytes that are never reached by the control-flow
	// walk and so must render as a data block instead of instructions.
	code, err := hex.DecodeString("c3aabb")
	if err != nil {
		t.Fatalf("decoding hex: %v", err)
	}
	listing, err := d.Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble error: %v", err)
	}
	if !strings.Contains(listing, "db 0xaa, 0xbb") {
		t.Errorf("listing %q missing trailing data block", listing)
	}
}

func TestDecodeOneMalformed(t *testing.T) {
	d, err := disassembler.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := d.DecodeOne(nil); err == nil {
		t.Fatalf("expected error for empty buffer")
	}
}
