package codec

import (
	"fmt"
	"strings"
)

// Template is one parsed line of the opcode table: a mnemonic, the
// operand pattern it matches, and the directive list that encodes and
// decodes it. One mnemonic typically has several templates, one per
// operand-form/opcode pairing (register-form, memory-form, immediate
// form, and so on); Codec.candidates picks the ones whose pattern fits the
// operands on hand.
type Template struct {
	Mnemonic string
	Pats     []Pattern
	Dirs     []directive
	raw      string
}

// ParseTemplate parses one non-blank, non-comment line of the opcode
// table: "mnemonic pattern, pattern = opcode descriptor".
func ParseTemplate(line string) (*Template, error) {
	raw := line
	line = strings.TrimSpace(line)
	eq := strings.Index(line, "=")
	if eq < 0 {
		return nil, fmt.Errorf("template line %q has no '=' separator", raw)
	}
	left := strings.TrimSpace(line[:eq])
	right := strings.TrimSpace(line[eq+1:])
	if left == "" {
		return nil, fmt.Errorf("template line %q has no mnemonic", raw)
	}
	if right == "" {
		return nil, fmt.Errorf("template line %q has no opcode descriptor", raw)
	}

	fields := strings.Fields(left)
	mnemonic := strings.ToLower(fields[0])
	operandText := strings.TrimSpace(strings.TrimPrefix(left, fields[0]))

	var pats []Pattern
	if operandText != "" {
		for _, tok := range strings.Split(operandText, ",") {
			p, err := parsePattern(strings.TrimSpace(tok))
			if err != nil {
				return nil, fmt.Errorf("template line %q: %w", raw, err)
			}
			pats = append(pats, p)
		}
	}

	dirs, err := parseOpcodeDescriptor(right, pats)
	if err != nil {
		return nil, fmt.Errorf("template line %q: %w", raw, err)
	}

	return &Template{Mnemonic: mnemonic, Pats: pats, Dirs: dirs, raw: raw}, nil
}

// matches reports whether the given runtime operands fit this
// template's pattern list: same arity, and each operand's concrete
// kind and width is compatible with its slot.
func (t *Template) matches(ops []Operand) bool {
	if len(ops) != len(t.Pats) {
		return false
	}
	for i, p := range t.Pats {
		if !patternAccepts(p, ops[i]) {
			return false
		}
	}
	return true
}

func patternAccepts(p Pattern, op Operand) bool {
	switch p.Kind {
	case KindReg:
		return op.Kind == OpRegister && op.Reg.Bits == p.Bits
	case KindRM:
		if op.Kind == OpRegister {
			return op.Reg.Bits == p.Bits
		}
		return op.Kind == OpMemory && op.Mem.Width == p.Bits
	case KindMem:
		return op.Kind == OpMemory && op.Mem.Width == p.Bits
	case KindImm:
		return op.Kind == OpImmediate && fitsWidth(op.Imm, p.Bits)
	case KindRel:
		// A displacement is sign-extended by the CPU, so only the signed
		// range of the slot fits.
		if op.Kind != OpImmediate {
			return false
		}
		if p.Bits >= 64 {
			return true
		}
		half := int64(1) << (p.Bits - 1)
		return op.Imm >= -half && op.Imm < half
	case KindFixedReg:
		return op.Kind == OpRegister && op.Reg == p.Fixed
	default:
		return false
	}
}
