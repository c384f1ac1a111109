package assembler

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/pusty/f0x86/register"
)

var identifier = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*`)

// relativeMnemonics is the set of instructions whose final operand is
// a branch target, substituted as a PC-relative displacement rather
// than an absolute address. This mirrors which templates in the
// bundled opcode table use a rel8/rel32 pattern.
var relativeMnemonics = map[string]bool{
	"jmp": true, "je": true, "jz": true, "jne": true, "jnz": true,
	"jl": true, "jge": true, "jle": true, "jg": true, "call": true,
}

// substituteLabels replaces every whole-word identifier in text that
// names a known label or equ symbol with its numeric value, leaving
// register names and anything else untouched.
//
// A label marks an offset within the program and, under a
// relative-branch mnemonic, substitutes as the signed displacement
// from the end of this instruction (addr+size) rather than its
// absolute address — that's the ordinary "jmp forward_label" case.
//
// An equ symbol instead binds a name to a fixed value outside the
// program's own layout. Under a relative-branch mnemonic that fixed
// value can't be reached by a rel8/rel32 displacement at all, so it is
// substituted as an indirect memory operand instead: "jmp target"
// becomes "jmp dword [0x<value>]", which the opcode table encodes as
// an indirect jump/call through r/m32.
func (asm *Assembler) substituteLabels(mnemonic, text string, addr, size uint32) string {
	return identifier.ReplaceAllStringFunc(text, func(word string) string {
		if _, isReg := register.ByName(word); isReg {
			return word
		}
		lower := toLower(word)
		if relativeMnemonics[mnemonic] {
			if val, ok := asm.symbols[lower]; ok {
				return fmt.Sprintf("dword [0x%x]", uint32(val))
			}
			if target, ok := asm.labels[lower]; ok {
				rel := int64(target) - int64(addr+size)
				return strconv.FormatInt(rel, 10)
			}
		}
		if target, ok := asm.labels[lower]; ok {
			return strconv.FormatUint(uint64(target), 10)
		}
		if val, ok := asm.symbols[lower]; ok {
			return strconv.FormatInt(val, 10)
		}
		return word
	})
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
