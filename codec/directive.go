package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pusty/f0x86/register"
)

// dirKind classifies one token of an opcode descriptor.
type dirKind int

const (
	// dirByte emits one fixed literal byte.
	dirByte dirKind = iota
	// dirByteReg emits one byte whose low 3 bits come from a register
	// operand's encoding nibble ("+r" folded into the literal byte that
	// precedes it, so encode and decode read it as a single unit).
	dirByteReg
	// dirModRM emits a ModR/M byte. Either the reg field is fixed
	// (digitFixed, "/digit") or it comes from a register-kind operand
	// ("/r"); the rm field always comes from the memory-or-register
	// operand per the roles resolved in modrm.go.
	dirModRM
	// dirImm emits an operand's value as a little-endian immediate.
	dirImm
	// dirRel emits an operand's value as a little-endian relative
	// displacement, matching the same widths as dirImm.
	dirRel
)

type directive struct {
	kind dirKind

	// dirByte / dirByteReg
	value byte

	// dirByteReg
	regOperand int

	// dirModRM
	digitFixed bool
	digit      byte

	// dirImm / dirRel
	bits    register.Width
	operand int
}

// parseOpcodeDescriptor parses the right-hand side of a template line
// ("B8+r id", "87 /r", "EB cb") into an ordered directive list, given
// the already-parsed operand patterns so "+r"/"/r"/"ib" etc. can be
// bound to the operand slot that supplies their value.
func parseOpcodeDescriptor(desc string, pats []Pattern) ([]directive, error) {
	fields := strings.Fields(desc)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty opcode descriptor")
	}

	var dirs []directive
	regIdx, hasReg := firstRegOperand(pats)
	_, hasRM := firstRMOperand(pats)
	immIdx, immBits, hasImm := firstImmOperand(pats)
	relIdx, relBits, hasRel := firstRelOperand(pats)

	for _, f := range fields {
		switch {
		case strings.HasSuffix(f, "+r"):
			lit := strings.TrimSuffix(f, "+r")
			b, err := parseHexByte(lit)
			if err != nil {
				return nil, fmt.Errorf("opcode descriptor %q: %w", desc, err)
			}
			if !hasReg {
				return nil, fmt.Errorf("opcode descriptor %q: %q requires a register-kind operand", desc, f)
			}
			dirs = append(dirs, directive{kind: dirByteReg, value: b, regOperand: regIdx})

		case f == "/r":
			if !hasReg {
				return nil, fmt.Errorf("opcode descriptor %q: /r requires a register-kind operand", desc)
			}
			if !hasRM {
				return nil, fmt.Errorf("opcode descriptor %q: /r requires a register-or-memory operand", desc)
			}
			// The actual rm/reg role split is resolved per-call by
			// modrmRoles, since it depends on which operand is the
			// memory-capable one, not on declaration order.
			dirs = append(dirs, directive{kind: dirModRM})

		case strings.HasPrefix(f, "/") && len(f) == 2 && f[1] >= '0' && f[1] <= '7':
			if !hasRM {
				return nil, fmt.Errorf("opcode descriptor %q: %q requires a register-or-memory operand", desc, f)
			}
			dirs = append(dirs, directive{kind: dirModRM, digitFixed: true, digit: f[1] - '0'})

		case f == "ib" || f == "iw" || f == "id" || f == "iq":
			if !hasImm {
				return nil, fmt.Errorf("opcode descriptor %q: %q requires an immediate operand", desc, f)
			}
			dirs = append(dirs, directive{kind: dirImm, bits: immBits, operand: immIdx})

		case f == "cb" || f == "cd":
			if !hasRel {
				return nil, fmt.Errorf("opcode descriptor %q: %q requires a relative operand", desc, f)
			}
			dirs = append(dirs, directive{kind: dirRel, bits: relBits, operand: relIdx})

		default:
			b, err := parseHexByte(f)
			if err != nil {
				return nil, fmt.Errorf("opcode descriptor %q: %w", desc, err)
			}
			dirs = append(dirs, directive{kind: dirByte, value: b})
		}
	}
	return dirs, nil
}

func parseHexByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid opcode byte %q: %w", s, err)
	}
	return byte(v), nil
}

func firstRegOperand(pats []Pattern) (int, bool) {
	for i, p := range pats {
		if p.Kind == KindReg {
			return i, true
		}
	}
	return -1, false
}

func firstRMOperand(pats []Pattern) (int, bool) {
	for i, p := range pats {
		if p.modrmEligible() {
			return i, true
		}
	}
	return -1, false
}

func firstImmOperand(pats []Pattern) (int, register.Width, bool) {
	for i, p := range pats {
		if p.Kind == KindImm {
			return i, p.Bits, true
		}
	}
	return -1, 0, false
}

func firstRelOperand(pats []Pattern) (int, register.Width, bool) {
	for i, p := range pats {
		if p.Kind == KindRel {
			return i, p.Bits, true
		}
	}
	return -1, 0, false
}
