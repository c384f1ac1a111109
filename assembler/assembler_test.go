package assembler_test

import (
	"strings"
	"testing"

	"github.com/pusty/f0x86/assembler"
)

func assembleAndMatchHex(t *testing.T, src string, base uint32, wantHex string) *assembler.Assembler {
	t.Helper()
	asm, err := assembler.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	code, err := asm.Assemble(src, base)
	if err != nil {
		t.Fatalf("Assemble(%q) error: %v", src, err)
	}
	if got := assembler.Hexify(code); got != wantHex {
		t.Errorf("Assemble(%q) = %q, want %q", src, got, wantHex)
	}
	return asm
}

func TestAssembleSimpleProgram(t *testing.T) {
	src := "mov eax, 0x1\nadd eax, ecx\nret\n"
	assembleAndMatchHex(t, src, 0x1000, "b801000000"+"01c8"+"c3")
}

func TestAssembleForwardLabelReference(t *testing.T) {
	// "jmp done" skips exactly one "nop", so the displacement is 1.
	src := "jmp done\nnop\ndone:\nret\n"
	assembleAndMatchHex(t, src, 0x1000, "eb01"+"90"+"c3")
}

func TestAssembleBackwardLabelReference(t *testing.T) {
	// "loop:" sits right at the jmp, so "jmp loop" is a self-branch
	// with a displacement of -2.
	src := "loop:\njmp loop\n"
	assembleAndMatchHex(t, src, 0x1000, "ebfe")
}

func TestAssembleEquDirective(t *testing.T) {
	src := "count equ 0x5\nmov eax, count\n"
	assembleAndMatchHex(t, src, 0x1000, "b805000000")
}

func TestAssembleEquReferencingEarlierEqu(t *testing.T) {
	src := "base equ 0x10\ntotal equ base + 0x4\nmov eax, total\n"
	assembleAndMatchHex(t, src, 0x1000, "b814000000")
}

func TestAssembleOrgDirective(t *testing.T) {
	// org moves the cursor before the label, so "call target" must
	// compute its displacement relative to the new address.
	src := "call target\norg 0x2000\ntarget:\nret\n"
	asm, err := assembler.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	code, err := asm.Assemble(src, 0x1000)
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	// call is 5 bytes (e8 + rel32), so it ends at 0x1005; target is at
	// 0x2000, a displacement of 0x2000-0x1005 = 0xFFB.
	want := "e8fb0f0000" + "c3"
	if got := assembler.Hexify(code); got != want {
		t.Errorf("Assemble = %q, want %q", got, want)
	}
}

func TestAssembleDataDirectives(t *testing.T) {
	src := "db 0x1, 0x2\ndw 0x3\ndd 0x4\ndq 0x5\n"
	assembleAndMatchHex(t, src, 0x1000,
		"0102"+"0300"+"04000000"+"0500000000000000")
}

func TestAssembleQuotedStringDirective(t *testing.T) {
	src := `db "AB", 0x0`
	assembleAndMatchHex(t, src, 0x1000, "414200")
}

func TestAssembleExpressionInOperand(t *testing.T) {
	src := "mov eax, dword [ecx+4*2+1]\n"
	asm, err := assembler.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	code, err := asm.Assemble(src, 0x1000)
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if len(code) == 0 {
		t.Fatalf("expected non-empty code")
	}
}

func TestAssembleRelativeJumpToFixedSymbol(t *testing.T) {
	// "target" is bound by equ to a fixed address, not a position in
	// this program, so "jmp target" can't use a PC-relative rel8/rel32
	// displacement; it must substitute the indirect "dword [0x1234]"
	// form and encode through jmp's r/m32 template (FF /4).
	src := "target equ 0x1234\njmp target\n"
	assembleAndMatchHex(t, src, 0x1000, "ff2534120000")
}

func TestAssembleMacroDiagnostic(t *testing.T) {
	asm, err := assembler.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := asm.Assemble("#macro foo\nret\n", 0x1000); err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if len(asm.Diagnostics) != 1 {
		t.Fatalf("Diagnostics = %v, want exactly one entry", asm.Diagnostics)
	}
	if !strings.Contains(asm.Diagnostics[0].String(), "macro") {
		t.Errorf("Diagnostics[0] = %q, want it to mention macro", asm.Diagnostics[0])
	}
}

func TestAssembleUnknownMnemonicFails(t *testing.T) {
	asm, err := assembler.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := asm.Assemble("frobnicate eax\n", 0x1000); err == nil {
		t.Fatalf("expected error for unknown mnemonic")
	}
}
