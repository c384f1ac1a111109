package codec

import (
	"fmt"

	"github.com/pusty/f0x86/register"
)

// Encode renders this template against the given concrete operands. It
// does not check t.matches(ops); callers (Codec.candidates) are expected to
// have already picked a template whose pattern fits.
func (t *Template) Encode(ops []Operand) ([]byte, error) {
	var out []byte

	if needsREXW(t.Pats, ops) {
		out = append(out, 0x48)
	}

	rmIdx, regIdx := modrmRoles(t.Pats)

	for i, d := range t.Dirs {
		switch d.kind {
		case dirByte:
			out = append(out, d.value)

		case dirByteReg:
			reg := ops[d.regOperand].Reg
			out = append(out, d.value+reg.Enc)

		case dirModRM:
			if rmIdx < 0 {
				return nil, fmt.Errorf("template %q directive %d: no rm operand resolved", t.raw, i)
			}
			var regField byte
			if d.digitFixed {
				regField = d.digit
			} else {
				regField = ops[regIdx].Reg.Enc
			}
			bytes, err := buildModRM(ops[rmIdx], regField)
			if err != nil {
				return nil, fmt.Errorf("template %q: %w", t.raw, err)
			}
			out = append(out, bytes...)

		case dirImm:
			out = append(out, leBytes(ops[d.operand].Imm, register.WidthBytes(d.bits))...)

		case dirRel:
			out = append(out, leBytes(ops[d.operand].Imm, register.WidthBytes(d.bits))...)

		default:
			return nil, fmt.Errorf("template %q: unhandled directive kind %d", t.raw, d.kind)
		}
	}
	return out, nil
}

// needsREXW reports whether any operand resolves to a 64-bit register,
// which requires a REX.W prefix ahead of the opcode bytes proper.
func needsREXW(pats []Pattern, ops []Operand) bool {
	for _, p := range pats {
		if (p.Kind == KindReg || p.Kind == KindRM) && p.Bits == register.Width64 {
			return true
		}
	}
	for _, op := range ops {
		if op.Kind == OpRegister && op.Reg.Bits == register.Width64 {
			return true
		}
	}
	return false
}
