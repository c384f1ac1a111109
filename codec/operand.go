package codec

import (
	"fmt"
	"strings"

	"github.com/pusty/f0x86/register"
)

// OperandKind classifies a parsed runtime operand value, as opposed to
// a template Pattern, which classifies a *slot*.
type OperandKind int

const (
	OpRegister OperandKind = iota
	OpMemory
	OpImmediate
)

// MemRef is a decoded or parsed memory reference: an optional base
// register plus a signed displacement, and the mandatory width keyword
// ("byte"/"word"/"dword"/"qword") that every memory operand carries in
// text form. "dword [0x1000]" has no base and a displacement of
// 0x1000; "dword [eax+8]" has base eax and displacement 8.
type MemRef struct {
	HasBase bool
	Base    register.Register
	Disp    int64
	Width   register.Width
}

// Operand is one runtime operand value, either built by a caller
// assembling a line by hand or produced by Decode.
type Operand struct {
	Kind OperandKind
	Reg  register.Register
	Mem  MemRef
	Imm  int64
}

// String renders the operand the way the disassembler and the
// assembler's own error messages do: "eax", "dword [eax+0x8]", "0x69".
func (o Operand) String() string {
	switch o.Kind {
	case OpRegister:
		return o.Reg.Name
	case OpMemory:
		width := register.WidthName(o.Mem.Width)
		if !o.Mem.HasBase {
			return fmt.Sprintf("%s [0x%x]", width, o.Mem.Disp)
		}
		if o.Mem.Disp == 0 {
			return fmt.Sprintf("%s [%s]", width, o.Mem.Base.Name)
		}
		if o.Mem.Disp < 0 {
			return fmt.Sprintf("%s [%s-0x%x]", width, o.Mem.Base.Name, -o.Mem.Disp)
		}
		return fmt.Sprintf("%s [%s+0x%x]", width, o.Mem.Base.Name, o.Mem.Disp)
	case OpImmediate:
		if o.Imm < 0 {
			return fmt.Sprintf("-0x%x", -o.Imm)
		}
		return fmt.Sprintf("0x%x", o.Imm)
	default:
		return "?"
	}
}

// memoryWidths maps the mandatory width keyword that prefixes every
// memory operand's bracketed form to its register.Width.
var memoryWidths = map[string]register.Width{
	"byte":  register.Width8,
	"word":  register.Width16,
	"dword": register.Width32,
	"qword": register.Width64,
}

// ParseOperand parses one Intel-syntax operand out of assembled source
// text: a bare register name, a width-prefixed bracketed memory
// reference ("byte [eax+0x8]", "dword [123]"), or a bare numeric
// literal immediate.
func ParseOperand(text string) (Operand, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Operand{}, fmt.Errorf("empty operand")
	}

	if br := strings.IndexByte(text, '['); br >= 0 && strings.HasSuffix(text, "]") {
		widthWord := strings.TrimSpace(text[:br])
		width, ok := memoryWidths[strings.ToLower(widthWord)]
		if !ok {
			return Operand{}, fmt.Errorf("memory operand %q: %q is not a width keyword (byte/word/dword/qword)", text, widthWord)
		}
		return parseMemoryOperand(text[br+1:len(text)-1], width)
	}

	if reg, ok := register.ByName(text); ok {
		return Operand{Kind: OpRegister, Reg: reg}, nil
	}

	v, err := ParseNumber(text)
	if err != nil {
		return Operand{}, fmt.Errorf("operand %q is neither register, memory, nor immediate: %w", text, err)
	}
	return Operand{Kind: OpImmediate, Imm: v}, nil
}

func parseMemoryOperand(inner string, width register.Width) (Operand, error) {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return Operand{}, fmt.Errorf("empty memory operand")
	}

	sign := 1
	splitAt := -1
	for i := 1; i < len(inner); i++ {
		if inner[i] == '+' || inner[i] == '-' {
			splitAt = i
			if inner[i] == '-' {
				sign = -1
			}
			break
		}
	}

	if splitAt < 0 {
		// Either a bare register ("[eax]") or a bare displacement ("[0x1000]").
		if reg, ok := register.ByName(inner); ok {
			return Operand{Kind: OpMemory, Mem: MemRef{HasBase: true, Base: reg, Width: width}}, nil
		}
		disp, err := ParseNumber(inner)
		if err != nil {
			return Operand{}, fmt.Errorf("memory operand %q: %w", inner, err)
		}
		return Operand{Kind: OpMemory, Mem: MemRef{Disp: disp, Width: width}}, nil
	}

	baseText := strings.TrimSpace(inner[:splitAt])
	dispText := strings.TrimSpace(inner[splitAt+1:])
	reg, ok := register.ByName(baseText)
	if !ok {
		return Operand{}, fmt.Errorf("memory operand %q: %q is not a register", inner, baseText)
	}
	disp, err := ParseNumber(dispText)
	if err != nil {
		return Operand{}, fmt.Errorf("memory operand %q: %w", inner, err)
	}
	return Operand{Kind: OpMemory, Mem: MemRef{HasBase: true, Base: reg, Disp: int64(sign) * disp, Width: width}}, nil
}
