// Package assembler turns a small multi-line x86 program into machine
// code: it resolves labels and equ symbols, folds arithmetic in operand
// text, and hands each resolved instruction line to the codec package
// for encoding.
package assembler

import (
	"fmt"
	"strings"

	"github.com/pusty/f0x86/codec"
)

// placeholderSize is the conservative estimate used for an instruction
// whose operands cannot yet be resolved during the sizing pass.
const placeholderSize = 4

// Assembler holds the mutable state of one assembly run: equ symbols,
// resolved label addresses, and any diagnostics collected along the way.
type Assembler struct {
	codec       *codec.Codec
	symbols     map[string]int64
	labels      map[string]uint32
	Diagnostics Diagnostics
}

// New creates an Assembler backed by the bundled opcode table.
func New() (*Assembler, error) {
	c, err := codec.New()
	if err != nil {
		return nil, fmt.Errorf("loading opcode table: %w", err)
	}
	return &Assembler{
		codec:   c,
		symbols: make(map[string]int64),
		labels:  make(map[string]uint32),
	}, nil
}

// Assemble translates src into machine code starting at baseAddress.
// It resolves equ values, then repeats a combined sizing and
// label-address pass (placeholder sizes for instructions that can't
// yet be resolved) until nothing changes, then runs one final encoding
// pass: any instruction whose final size differs from the size the
// sizing passes settled on gets a diagnostic rather than failing
// outright.
func (asm *Assembler) Assemble(src string, baseAddress uint32) ([]byte, error) {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	nodes := parseLines(lines)

	if err := asm.resolveEquValues(nodes); err != nil {
		return nil, err
	}

	if err := asm.settleSizes(nodes, baseAddress); err != nil {
		return nil, err
	}

	return asm.encodePass(nodes, baseAddress)
}

// resolveEquValues evaluates every "name equ expr" directive up front,
// in source order, so later equ values can reference earlier ones.
func (asm *Assembler) resolveEquValues(nodes []*Node) error {
	for _, n := range nodes {
		if n.Type != NodeDirective || n.Directive != "equ" {
			continue
		}
		sp := strings.IndexAny(n.Args, " \t")
		if sp < 0 {
			return fmt.Errorf("line %d: equ requires a name and a value", n.LineNo)
		}
		name := strings.ToLower(strings.TrimSpace(n.Args[:sp]))
		expr := evaluateMath(asm.substituteLabels("", strings.TrimSpace(n.Args[sp+1:]), 0, 0))
		val, err := codec.ParseNumber(expr)
		if err != nil {
			return fmt.Errorf("line %d: equ %q: %w", n.LineNo, name, err)
		}
		asm.symbols[name] = val
	}
	return nil
}

// settleSizes runs a fixed-point loop over label addresses and
// instruction sizes: each iteration substitutes the currently-known
// label addresses into instruction text and attempts an encode; an
// instruction that still references an unresolved label keeps the
// placeholder size. The loop stops once no label address or
// instruction size changes between iterations. A label defined more
// than once keeps its first definition and gets a diagnostic.
func (asm *Assembler) settleSizes(nodes []*Node, baseAddress uint32) error {
	for pass := 0; ; pass++ {
		changed := false
		addr := baseAddress
		defined := make(map[string]bool)
		for _, n := range nodes {
			switch n.Type {
			case NodeLabel:
				if defined[n.Label] {
					if pass == 0 {
						asm.Diagnostics.add(n.LineNo, "duplicate label %q", n.Label)
					}
					continue
				}
				defined[n.Label] = true
				if cur, ok := asm.labels[n.Label]; !ok || cur != addr {
					asm.labels[n.Label] = addr
					changed = true
				}
			case NodeDirective:
				if n.Directive == "org" {
					v, err := codec.ParseNumber(evaluateMath(n.Args))
					if err != nil {
						return fmt.Errorf("line %d: org: %w", n.LineNo, err)
					}
					addr = uint32(v)
					continue
				}
				size, err := asm.directiveSize(n)
				if err != nil {
					return fmt.Errorf("line %d: %w", n.LineNo, err)
				}
				if n.Size != size {
					n.Size = size
					changed = true
				}
				addr += size
			case NodeMacro:
				continue
			case NodeInstruction:
				size := asm.sizeInstruction(n, addr)
				if n.Size != size {
					n.Size = size
					changed = true
				}
				addr += size
			}
		}
		if !changed {
			return nil
		}
	}
}

// sizeInstruction attempts to encode n against the labels known so
// far; on success its real size is used, otherwise the placeholder.
func (asm *Assembler) sizeInstruction(n *Node, addr uint32) uint32 {
	b, err := asm.tryEncodeInstruction(n, addr, n.Size)
	if err != nil {
		return placeholderSize
	}
	return uint32(len(b))
}

// tryEncodeInstruction substitutes labels and folds arithmetic, then
// hands the resolved line to the codec.
func (asm *Assembler) tryEncodeInstruction(n *Node, addr, settledSize uint32) ([]byte, error) {
	mnemonic := instructionMnemonic(n.Text)
	text := asm.substituteLabels(mnemonic, n.Text, addr, settledSize)
	text = evaluateMath(text)
	return asm.codec.Assemble(text)
}

// encodePass is the final code-generation walk. Any instruction whose
// final encoded size differs from the size settled on during
// settleSizes gets a "size changed" diagnostic instead of aborting
// assembly — the bytes from this pass are used either way.
func (asm *Assembler) encodePass(nodes []*Node, baseAddress uint32) ([]byte, error) {
	var out []byte
	addr := baseAddress
	for _, n := range nodes {
		switch n.Type {
		case NodeLabel:
			continue
		case NodeMacro:
			asm.Diagnostics.add(n.LineNo, "macro not implemented")
			continue
		case NodeDirective:
			if n.Directive == "org" {
				v, err := codec.ParseNumber(evaluateMath(n.Args))
				if err != nil {
					return nil, fmt.Errorf("line %d: org: %w", n.LineNo, err)
				}
				addr = uint32(v)
				continue
			}
			b, err := asm.directiveCode(n)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n.LineNo, err)
			}
			out = append(out, b...)
			addr += uint32(len(b))
		case NodeInstruction:
			b, err := asm.tryEncodeInstruction(n, addr, n.Size)
			if err != nil {
				return nil, fmt.Errorf("line %d: %q: %w", n.LineNo, n.Text, err)
			}
			if uint32(len(b)) != n.Size {
				asm.Diagnostics.add(n.LineNo, "size changed: settled on %d bytes, encoded to %d", n.Size, len(b))
			}
			out = append(out, b...)
			addr += uint32(len(b))
		}
	}
	return out, nil
}

// Hexify renders machine code as a lowercase hex string, matching the
// codec package's own AssembleHex/DisassembleHex convention.
func Hexify(code []byte) string {
	var sb strings.Builder
	for _, b := range code {
		fmt.Fprintf(&sb, "%02x", b)
	}
	return sb.String()
}
