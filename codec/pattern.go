package codec

import (
	"fmt"
	"strings"

	"github.com/pusty/f0x86/register"
)

// Kind classifies one operand slot in a template's pattern list.
type Kind int

const (
	// KindReg matches a bare register of a fixed width (register-direct only).
	KindReg Kind = iota
	// KindRM matches a register or a memory operand of a fixed width.
	KindRM
	// KindMem matches a memory operand only.
	KindMem
	// KindImm matches an immediate integer of a fixed width.
	KindImm
	// KindRel matches a relative branch/call displacement of a fixed width.
	KindRel
	// KindFixedReg matches one specific, named register exactly (e.g. "eax").
	KindFixedReg
)

// Pattern is one parsed operand slot from a template's mnemonic line.
type Pattern struct {
	Kind  Kind
	Bits  register.Width
	Fixed register.Register // only set when Kind == KindFixedReg
}

// parsePattern parses one whitespace-delimited operand token from the
// pattern half of a template line: "r32", "r/m8", "m16", "imm32",
// "rel8", or a literal register name such as "eax".
func parsePattern(tok string) (Pattern, error) {
	tok = strings.TrimSpace(tok)
	switch {
	case strings.HasPrefix(tok, "r/m"):
		bits, err := widthSuffix(tok[3:])
		if err != nil {
			return Pattern{}, fmt.Errorf("pattern %q: %w", tok, err)
		}
		return Pattern{Kind: KindRM, Bits: bits}, nil
	case strings.HasPrefix(tok, "r") && len(tok) > 1 && isDigit(tok[1]):
		bits, err := widthSuffix(tok[1:])
		if err != nil {
			return Pattern{}, fmt.Errorf("pattern %q: %w", tok, err)
		}
		return Pattern{Kind: KindReg, Bits: bits}, nil
	case strings.HasPrefix(tok, "m") && len(tok) > 1 && isDigit(tok[1]):
		bits, err := widthSuffix(tok[1:])
		if err != nil {
			return Pattern{}, fmt.Errorf("pattern %q: %w", tok, err)
		}
		return Pattern{Kind: KindMem, Bits: bits}, nil
	case strings.HasPrefix(tok, "imm"):
		bits, err := widthSuffix(tok[3:])
		if err != nil {
			return Pattern{}, fmt.Errorf("pattern %q: %w", tok, err)
		}
		return Pattern{Kind: KindImm, Bits: bits}, nil
	case strings.HasPrefix(tok, "rel"):
		bits, err := widthSuffix(tok[3:])
		if err != nil {
			return Pattern{}, fmt.Errorf("pattern %q: %w", tok, err)
		}
		return Pattern{Kind: KindRel, Bits: bits}, nil
	default:
		reg, ok := register.ByName(tok)
		if !ok {
			return Pattern{}, fmt.Errorf("unrecognised operand pattern %q", tok)
		}
		return Pattern{Kind: KindFixedReg, Bits: reg.Bits, Fixed: reg}, nil
	}
}

func widthSuffix(s string) (register.Width, error) {
	switch s {
	case "8":
		return register.Width8, nil
	case "16":
		return register.Width16, nil
	case "32":
		return register.Width32, nil
	case "64":
		return register.Width64, nil
	default:
		return 0, fmt.Errorf("unrecognised width suffix %q", s)
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// modrmEligible reports whether this pattern occupies a ModR/M field
// (register-direct or register-or-memory), as opposed to an immediate,
// displacement, or fixed-register slot.
func (p Pattern) modrmEligible() bool {
	return p.Kind == KindReg || p.Kind == KindRM || p.Kind == KindMem
}

// canBeMemory reports whether this pattern's operand, when matched
// against real input, is permitted to resolve to a memory reference.
func (p Pattern) canBeMemory() bool {
	return p.Kind == KindRM || p.Kind == KindMem
}
