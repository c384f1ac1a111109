package disassembler

import (
	"fmt"

	"github.com/pusty/f0x86/codec"
)

var relativeMnemonics = map[string]bool{
	"jmp": true, "je": true, "jz": true, "jne": true, "jnz": true,
	"jl": true, "jge": true, "jle": true, "jg": true, "call": true,
}

func isBranchMnemonic(mn string) bool {
	return relativeMnemonics[mn] && mn != "call"
}

func isCallMnemonic(mn string) bool {
	return mn == "call"
}

// isTerminal reports whether an instruction unconditionally stops
// linear execution, so the control-flow walk should not also queue the
// position right after it.
func isTerminal(mn string) bool {
	return mn == "ret" || mn == "jmp"
}

// branchTarget computes the absolute address a relative jmp/call
// targets, given the instruction's own address and size and its
// decoded relative-displacement operand (always the last operand for
// every branch template in the bundled table).
func branchTarget(inst Instruction) (uint32, bool) {
	if !relativeMnemonics[inst.Mnemonic] || len(inst.Ops) == 0 {
		return 0, false
	}
	rel := inst.Ops[len(inst.Ops)-1]
	if rel.Kind != codec.OpImmediate {
		return 0, false
	}
	return uint32(int64(inst.Address+inst.Size) + rel.Imm), true
}

// labelName synthesizes a disassembly label the way conventional
// disassembler output does: "loc_" for a branch target, "sub_" for a
// call target.
func labelName(addr uint32, t LabelType) string {
	prefix := "loc_"
	if t == SubroutineEntry {
		prefix = "sub_"
	}
	return fmt.Sprintf("%s%04x", prefix, addr)
}

// addrQueue is a dedup worklist of addresses still to visit.
type addrQueue struct {
	items []uint32
	seen  map[uint32]bool
}

func newQueue() *addrQueue {
	return &addrQueue{seen: make(map[uint32]bool)}
}

func (q *addrQueue) push(addr uint32) {
	if !q.seen[addr] {
		q.items = append(q.items, addr)
		q.seen[addr] = true
	}
}

func (q *addrQueue) pop() (uint32, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	a := q.items[0]
	q.items = q.items[1:]
	return a, true
}
