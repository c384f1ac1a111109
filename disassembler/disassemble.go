// Package disassembler renders a byte buffer back to assembly text: a
// single line for one instruction, or a full listing with synthesized
// labels for a whole program image.
package disassembler

import (
	"fmt"
	"strings"

	"github.com/pusty/f0x86/codec"
)

// Disassembler wraps a loaded opcode table for repeated decoding.
type Disassembler struct {
	codec *codec.Codec
}

// New creates a Disassembler backed by the bundled opcode table.
func New() (*Disassembler, error) {
	c, err := codec.New()
	if err != nil {
		return nil, fmt.Errorf("loading opcode table: %w", err)
	}
	return &Disassembler{codec: c}, nil
}

// DecodeOne renders exactly one instruction from the front of code.
func (d *Disassembler) DecodeOne(code []byte) (text string, consumed int, err error) {
	return d.codec.Disassemble(code)
}

// Disassemble performs a three-stage disassembly of a whole buffer,
// the way a conventional disassembler does: a linear sweep decodes
// instructions back to back from address 0 (stepping one byte past
// anything that does not decode), a control-flow walk from address 0
// marks which of those are actually reachable code, and a render pass
// prints code with synthesized labels and anything left over as raw
// data bytes. A branch target that falls inside an instruction of the
// sweep is not decoded separately.
func (d *Disassembler) Disassemble(code []byte) (string, error) {
	if len(code) == 0 {
		return "", nil
	}

	// --- Stage 1: linear sweep ---
	instructions := make(map[uint32]*Instruction)
	for pc := 0; pc < len(code); {
		mnemonic, ops, n, err := d.codec.DecodeOne(code[pc:])
		if err != nil || n == 0 {
			pc++
			continue
		}
		instructions[uint32(pc)] = &Instruction{
			Address:  uint32(pc),
			Mnemonic: mnemonic,
			Ops:      ops,
			Size:     uint32(n),
		}
		pc += n
	}

	// --- Stage 2: control-flow walk ---
	labelTargets := make(map[uint32]LabelType)
	q := newQueue()
	q.push(0)
	for {
		addr, ok := q.pop()
		if !ok {
			break
		}
		inst, exists := instructions[addr]
		if !exists || inst.IsCode {
			continue
		}
		inst.IsCode = true

		if !isTerminal(inst.Mnemonic) {
			q.push(addr + inst.Size)
		}
		if target, ok := branchTarget(*inst); ok {
			q.push(target)
			if isCallMnemonic(inst.Mnemonic) {
				labelTargets[target] = SubroutineEntry
			} else if _, exists := labelTargets[target]; !exists {
				labelTargets[target] = JumpTarget
			}
		}
	}

	// --- Stage 3: render ---
	var out strings.Builder
	pc := uint32(0)
	total := uint32(len(code))
	for pc < total {
		inst, isCode := instructions[pc]
		if !isCode || !inst.IsCode {
			dataStart := pc
			dataEnd := dataStart
			for dataEnd < total {
				if next, ok := instructions[dataEnd]; ok && next.IsCode {
					break
				}
				dataEnd++
			}
			writeDataBlock(&out, code[dataStart:dataEnd], dataStart)
			pc = dataEnd
			continue
		}

		if lt, exists := labelTargets[pc]; exists {
			fmt.Fprintf(&out, "%s:\n", labelName(pc, lt))
		}
		fmt.Fprintf(&out, "    %s\n", renderWithLabels(*inst, labelTargets))
		pc += inst.Size
	}

	return out.String(), nil
}

// renderWithLabels renders one instruction's mnemonic and operands,
// substituting a synthesized label for a branch/call's resolved
// target instead of the raw relative displacement.
func renderWithLabels(inst Instruction, labelTargets map[uint32]LabelType) string {
	if len(inst.Ops) == 0 {
		return inst.Mnemonic
	}
	parts := make([]string, len(inst.Ops))
	for i, op := range inst.Ops {
		parts[i] = op.String()
	}
	if target, ok := branchTarget(inst); ok {
		if lt, exists := labelTargets[target]; exists {
			parts[len(parts)-1] = labelName(target, lt)
		}
	}
	return inst.Mnemonic + " " + strings.Join(parts, ", ")
}

func writeDataBlock(out *strings.Builder, b []byte, addr uint32) {
	fmt.Fprintf(out, "    db ")
	for i, c := range b {
		if i > 0 {
			out.WriteString(", ")
		}
		fmt.Fprintf(out, "0x%02x", c)
	}
	fmt.Fprintf(out, " ; %#04x\n", addr)
}
