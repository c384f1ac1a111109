package codec

import (
	"fmt"

	"github.com/pusty/f0x86/register"
)

// modrmRoles decides, for a template's two ModR/M-eligible operand
// slots, which one supplies the ModR/M rm field and which supplies the
// reg field: the memory-capable operand (if either is memory) always
// takes rm; otherwise the first listed operand takes rm and the second
// takes reg. This keeps encode and decode exact inverses through the
// same template regardless of whether the opcode is a load or a store
// form.
func modrmRoles(pats []Pattern) (rmIdx, regIdx int) {
	var eligible []int
	for i, p := range pats {
		if p.modrmEligible() {
			eligible = append(eligible, i)
		}
	}
	switch len(eligible) {
	case 0:
		return -1, -1
	case 1:
		return eligible[0], -1
	default:
		a, b := eligible[0], eligible[1]
		if pats[b].canBeMemory() && !pats[a].canBeMemory() {
			return b, a
		}
		return a, b
	}
}

// buildModRM encodes a ModR/M byte (plus any trailing displacement
// bytes) for the operand occupying the rm role. reg is the 3-bit value
// that goes in the reg field, already resolved by the caller (either a
// fixed digit or a register operand's encoding).
func buildModRM(rm Operand, reg byte) ([]byte, error) {
	switch rm.Kind {
	case OpRegister:
		modrm := 0xC0 | (reg << 3) | rm.Reg.Enc
		return []byte{modrm}, nil

	case OpMemory:
		if !rm.Mem.HasBase {
			// Pure displacement: mod=00, rm=101 (disp32, no base) in
			// 32-bit addressing.
			modrm := (reg << 3) | 0x05
			return append([]byte{modrm}, leBytes(rm.Mem.Disp, 4)...), nil
		}
		if rm.Mem.Base.Enc == 0x04 {
			return nil, fmt.Errorf("SIB-requiring base register %q is not supported", rm.Mem.Base.Name)
		}
		switch {
		case rm.Mem.Disp == 0 && rm.Mem.Base.Enc != 0x05:
			modrm := (reg << 3) | rm.Mem.Base.Enc
			return []byte{modrm}, nil
		case fitsInt8(rm.Mem.Disp):
			modrm := 0x40 | (reg << 3) | rm.Mem.Base.Enc
			return append([]byte{modrm}, leBytes(rm.Mem.Disp, 1)...), nil
		default:
			modrm := 0x80 | (reg << 3) | rm.Mem.Base.Enc
			return append([]byte{modrm}, leBytes(rm.Mem.Disp, 4)...), nil
		}

	default:
		return nil, fmt.Errorf("operand %v cannot occupy a ModR/M rm field", rm)
	}
}

// decodeModRM reads a ModR/M byte (plus any trailing displacement) out
// of code starting at off, returning the reg field, the resolved rm
// operand at the given width, and the total number of bytes consumed
// (1 for the ModR/M byte itself plus any displacement).
func decodeModRM(code []byte, off int, rmBits, regBits int) (reg byte, rm Operand, consumed int, err error) {
	if off >= len(code) {
		return 0, Operand{}, 0, fmt.Errorf("truncated ModR/M byte at offset %d", off)
	}
	b := code[off]
	mod := b >> 6
	regField := (b >> 3) & 0x07
	rmField := b & 0x07

	if rmField == 0x04 && mod != 0x03 {
		return 0, Operand{}, 0, fmt.Errorf("SIB-requiring ModR/M byte 0x%02x is not supported", b)
	}

	if mod == 0x03 {
		r, ok := regForWidth(rmBits, rmField)
		if !ok {
			return 0, Operand{}, 0, fmt.Errorf("no register of width %d for encoding %d", rmBits, rmField)
		}
		return regField, Operand{Kind: OpRegister, Reg: r}, 1, nil
	}

	width := register.Width(rmBits)

	if mod == 0x00 && rmField == 0x05 {
		disp, n, err := readLE(code, off+1, 4)
		if err != nil {
			return 0, Operand{}, 0, err
		}
		return regField, Operand{Kind: OpMemory, Mem: MemRef{Disp: disp, Width: width}}, 1 + n, nil
	}

	base, ok := regForWidth(32, rmField)
	if !ok {
		return 0, Operand{}, 0, fmt.Errorf("no base register for encoding %d", rmField)
	}

	switch mod {
	case 0x00:
		return regField, Operand{Kind: OpMemory, Mem: MemRef{HasBase: true, Base: base, Width: width}}, 1, nil
	case 0x01:
		disp, n, err := readLE(code, off+1, 1)
		if err != nil {
			return 0, Operand{}, 0, err
		}
		return regField, Operand{Kind: OpMemory, Mem: MemRef{HasBase: true, Base: base, Disp: disp, Width: width}}, 1 + n, nil
	default: // 0x02
		disp, n, err := readLE(code, off+1, 4)
		if err != nil {
			return 0, Operand{}, 0, err
		}
		return regField, Operand{Kind: OpMemory, Mem: MemRef{HasBase: true, Base: base, Disp: disp, Width: width}}, 1 + n, nil
	}
}

func fitsInt8(v int64) bool {
	return v >= -128 && v <= 127
}
