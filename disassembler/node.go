package disassembler

import "github.com/pusty/f0x86/codec"

// LabelType distinguishes a plain branch target from a call target, so
// rendering can pick "loc_" or "sub_" the way the synthesized labels in
// a conventional disassembly listing do.
type LabelType int

const (
	// JumpTarget is the destination of a jmp or jcc.
	JumpTarget LabelType = iota
	// SubroutineEntry is the destination of a call.
	SubroutineEntry
)

// Instruction is one decoded instruction at a fixed address in a
// whole-buffer sweep.
type Instruction struct {
	Address  uint32
	Mnemonic string
	Ops      []codec.Operand
	Size     uint32
	IsCode   bool
}
