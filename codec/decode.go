package codec

import (
	"fmt"

	"github.com/pusty/f0x86/register"
)

// Decode attempts to read this template's byte pattern from the front
// of code. ok is false (with a nil error) when code does not match
// this template — the normal "try the next template" case — including
// when the buffer ends before a ModR/M byte, displacement or immediate
// the template calls for. err is non-nil only when the template holds
// a directive kind Decode does not handle.
func (t *Template) Decode(code []byte) (ops []Operand, consumed int, ok bool, err error) {
	offset := 0
	if templateIs64(t.Pats) {
		if len(code) == 0 || code[0] != 0x48 {
			return nil, 0, false, nil
		}
		offset = 1
	}

	ops = make([]Operand, len(t.Pats))
	for i, p := range t.Pats {
		if p.Kind == KindFixedReg {
			ops[i] = Operand{Kind: OpRegister, Reg: p.Fixed}
		}
	}

	rmIdx, regIdx := modrmRoles(t.Pats)
	rmBits := 0
	if rmIdx >= 0 {
		rmBits = int(t.Pats[rmIdx].Bits)
	}
	regBits := 0
	if regIdx >= 0 {
		regBits = int(t.Pats[regIdx].Bits)
	}

	for _, d := range t.Dirs {
		switch d.kind {
		case dirByte:
			if offset >= len(code) || code[offset] != d.value {
				return nil, 0, false, nil
			}
			offset++

		case dirByteReg:
			if offset >= len(code) || code[offset]&0xF8 != d.value {
				return nil, 0, false, nil
			}
			enc := code[offset] & 0x07
			r, found := regForWidth(int(t.Pats[d.regOperand].Bits), enc)
			if !found {
				return nil, 0, false, nil
			}
			ops[d.regOperand] = Operand{Kind: OpRegister, Reg: r}
			offset++

		case dirModRM:
			regField, rm, n, derr := decodeModRM(code, offset, rmBits, regBits)
			if derr != nil {
				return nil, 0, false, nil
			}
			if d.digitFixed {
				if regField != d.digit {
					return nil, 0, false, nil
				}
			} else {
				r, found := regForWidth(regBits, regField)
				if !found {
					return nil, 0, false, nil
				}
				ops[regIdx] = Operand{Kind: OpRegister, Reg: r}
			}
			ops[rmIdx] = rm
			offset += n

		case dirImm:
			n := register.WidthBytes(d.bits)
			v, consumedN, rerr := readLE(code, offset, n)
			if rerr != nil {
				return nil, 0, false, nil
			}
			ops[d.operand] = Operand{Kind: OpImmediate, Imm: v}
			offset += consumedN

		case dirRel:
			n := register.WidthBytes(d.bits)
			v, consumedN, rerr := readLE(code, offset, n)
			if rerr != nil {
				return nil, 0, false, nil
			}
			ops[d.operand] = Operand{Kind: OpImmediate, Imm: v}
			offset += consumedN

		default:
			return nil, 0, false, fmt.Errorf("template %q: unhandled directive kind %d", t.raw, d.kind)
		}
	}

	return ops, offset, true, nil
}

func templateIs64(pats []Pattern) bool {
	for _, p := range pats {
		if (p.Kind == KindReg || p.Kind == KindRM) && p.Bits == register.Width64 {
			return true
		}
	}
	return false
}
