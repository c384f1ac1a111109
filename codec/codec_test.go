package codec_test

import (
	"testing"

	"github.com/pusty/f0x86/codec"
)

func assembleAndMatchHex(t *testing.T, c *codec.Codec, line, wantHex string) {
	t.Helper()
	got, err := c.AssembleHex(line)
	if err != nil {
		t.Fatalf("AssembleHex(%q) error: %v", line, err)
	}
	if got != wantHex {
		t.Errorf("AssembleHex(%q) = %q, want %q", line, got, wantHex)
	}
}

func TestAssembleHexBasics(t *testing.T) {
	c, err := codec.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		line string
		hex  string
	}{
		{"nop", "90"},
		{"ret", "c3"},
		{"int3", "cc"},
		{"mov eax, 0x11223344", "b844332211"},
		{"xchg dword [123], eax", "87057b000000"},
		{"push eax", "50"},
		{"pop ebx", "5b"},
		{"add eax, ecx", "01c8"},
	}
	for _, tc := range tests {
		assembleAndMatchHex(t, c, tc.line, tc.hex)
	}
}

func TestAssembleRelativeJump(t *testing.T) {
	c, err := codec.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// A jmp rel8 with a precomputed displacement of -2, as the program
	// assembler would produce for "L: jmp L".
	assembleAndMatchHex(t, c, "jmp -2", "ebfe")
}

func TestAssembleByteWidthMemoryOperand(t *testing.T) {
	c, err := codec.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// The §8 worked example for this line's hex string has an
	// inconsistent ModR/M/SIB encoding (see DESIGN.md); this asserts
	// the textual rule — byte-width memory operand, disp8, imm8 — with
	// this codec's own self-consistent encoding instead.
	assembleAndMatchHex(t, c, "mov byte [eax+0x48], 0x69", "c6404869")
}

func TestDisassembleRendersMemoryWidthKeyword(t *testing.T) {
	c, err := codec.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	text, _, err := c.DisassembleHex("c6404869")
	if err != nil {
		t.Fatalf("DisassembleHex: %v", err)
	}
	if want := "mov byte [eax+0x48], 0x69"; text != want {
		t.Errorf("DisassembleHex(%q) = %q, want %q", "c6404869", text, want)
	}
}

func TestAssembleMemoryOperandRequiresWidthKeyword(t *testing.T) {
	c, err := codec.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Assemble("mov eax, [0x1000]"); err == nil {
		t.Fatalf("expected error for memory operand missing its width keyword")
	}
}

func TestAssembleUnknownMnemonic(t *testing.T) {
	c, err := codec.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Assemble("frobnicate eax"); err == nil {
		t.Fatalf("expected error for unknown mnemonic")
	}
}

func TestAssembleSmallestPicksShorterEncoding(t *testing.T) {
	c, err := codec.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lazy, err := c.AssembleLazy("mov eax, 0x0")
	if err != nil {
		t.Fatalf("AssembleLazy: %v", err)
	}
	smallest, err := c.AssembleSmallest("mov eax, 0x0")
	if err != nil {
		t.Fatalf("AssembleSmallest: %v", err)
	}
	if len(smallest) > len(lazy) {
		t.Errorf("AssembleSmallest produced %d bytes, longer than AssembleLazy's %d", len(smallest), len(lazy))
	}
}

func TestDisassembleHexRoundTrip(t *testing.T) {
	c, err := codec.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tests := []struct {
		hex  string
		text string
	}{
		{"90", "nop"},
		{"c3", "ret"},
		{"b844332211", "mov eax, 0x11223344"},
	}
	for _, tc := range tests {
		got, consumed, err := c.DisassembleHex(tc.hex)
		if err != nil {
			t.Fatalf("DisassembleHex(%q) error: %v", tc.hex, err)
		}
		if got != tc.text {
			t.Errorf("DisassembleHex(%q) = %q, want %q", tc.hex, got, tc.text)
		}
		if consumed*2 != len(tc.hex) {
			t.Errorf("DisassembleHex(%q) consumed %d bytes, want %d", tc.hex, consumed, len(tc.hex)/2)
		}
	}
}

func TestDisassembleHexMalformed(t *testing.T) {
	c, err := codec.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := c.DisassembleHex("fff"); err == nil {
		t.Fatalf("expected error for odd-length hex string")
	}
	if _, _, err := c.DisassembleHex(""); err == nil {
		t.Fatalf("expected error for empty hex string")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c, err := codec.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lines := []string{
		"mov eax, 0x11223344",
		"mov ebx, dword [eax+0x8]",
		"add eax, ecx",
		"sub dword [0x1000], edx",
		"push esi",
		"pop edi",
		"cmp eax, ebx",
	}
	for _, line := range lines {
		b, err := c.Assemble(line)
		if err != nil {
			t.Fatalf("Assemble(%q): %v", line, err)
		}
		text, consumed, err := c.Disassemble(b)
		if err != nil {
			t.Fatalf("Disassemble of %q's encoding: %v", line, err)
		}
		if consumed != len(b) {
			t.Errorf("Disassemble(%q) consumed %d of %d bytes", line, consumed, len(b))
		}
		b2, err := c.Assemble(text)
		if err != nil {
			t.Fatalf("re-Assemble(%q) (from %q): %v", text, line, err)
		}
		if string(b2) != string(b) {
			t.Errorf("round trip %q -> %x -> %q -> %x did not converge", line, b, text, b2)
		}
	}
}
