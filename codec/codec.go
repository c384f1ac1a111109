// Package codec implements the table-driven x86 instruction encoder and
// decoder: one Template per opcode form, loaded from a text resource and
// matched against parsed operands at Assemble/Disassemble time.
package codec

import (
	_ "embed"
	"encoding/hex"
	"fmt"
	"strings"
)

//go:embed base.tbl
var baseTable string

// Codec holds a loaded opcode table, both grouped by mnemonic (so
// AssembleLazy/AssembleSmallest can pick among a mnemonic's own
// templates) and as one flat list in declaration order (so DecodeOne
// can try every template, across all mnemonics, in the catalogue
// author's insertion order).
type Codec struct {
	byMnemonic map[string][]*Template
	templates  []*Template
}

// New builds a Codec from the bundled opcode table.
func New() (*Codec, error) {
	return Load(baseTable)
}

// Load builds a Codec from an arbitrary opcode table text, in the same
// "mnemonic pattern = opcode descriptor" line format as the bundled
// table. Blank lines and lines starting with "#" or ";" are skipped.
func Load(table string) (*Codec, error) {
	c := &Codec{byMnemonic: make(map[string][]*Template)}
	for lineNo, line := range strings.Split(table, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		t, err := ParseTemplate(trimmed)
		if err != nil {
			return nil, fmt.Errorf("opcode table line %d: %w", lineNo+1, err)
		}
		c.byMnemonic[t.Mnemonic] = append(c.byMnemonic[t.Mnemonic], t)
		c.templates = append(c.templates, t)
	}
	return c, nil
}

// splitInstruction splits "mnemonic op1, op2" into a lowercase
// mnemonic and a slice of parsed operands.
func splitInstruction(line string) (string, []Operand, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil, fmt.Errorf("empty instruction")
	}
	sp := strings.IndexAny(line, " \t")
	if sp < 0 {
		return strings.ToLower(line), nil, nil
	}
	mnemonic := strings.ToLower(line[:sp])
	rest := strings.TrimSpace(line[sp+1:])
	if rest == "" {
		return mnemonic, nil, nil
	}
	parts := strings.Split(rest, ",")
	ops := make([]Operand, len(parts))
	for i, p := range parts {
		op, err := ParseOperand(p)
		if err != nil {
			return "", nil, fmt.Errorf("operand %d: %w", i+1, err)
		}
		ops[i] = op
	}
	return mnemonic, ops, nil
}

func (c *Codec) candidates(mnemonic string, ops []Operand) ([]*Template, error) {
	tmpls, found := c.byMnemonic[mnemonic]
	if !found {
		return nil, fmt.Errorf("unknown mnemonic %q", mnemonic)
	}
	var fit []*Template
	for _, t := range tmpls {
		if t.matches(ops) {
			fit = append(fit, t)
		}
	}
	if len(fit) == 0 {
		return nil, fmt.Errorf("no template for %q matches the given operands", mnemonic)
	}
	return fit, nil
}

// AssembleLazy encodes line using the first matching template declared
// for its mnemonic, without considering whether a shorter encoding
// exists for the same operands.
func (c *Codec) AssembleLazy(line string) ([]byte, error) {
	mnemonic, ops, err := splitInstruction(line)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", line, err)
	}
	fit, err := c.candidates(mnemonic, ops)
	if err != nil {
		return nil, fmt.Errorf("assembling %q: %w", line, err)
	}
	out, err := fit[0].Encode(ops)
	if err != nil {
		return nil, fmt.Errorf("assembling %q: %w", line, err)
	}
	return out, nil
}

// AssembleSmallest encodes line using whichever matching template
// produces the fewest bytes, breaking ties in declaration order.
func (c *Codec) AssembleSmallest(line string) ([]byte, error) {
	mnemonic, ops, err := splitInstruction(line)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", line, err)
	}
	fit, err := c.candidates(mnemonic, ops)
	if err != nil {
		return nil, fmt.Errorf("assembling %q: %w", line, err)
	}

	var best []byte
	for _, t := range fit {
		out, err := t.Encode(ops)
		if err != nil {
			continue
		}
		if best == nil || len(out) < len(best) {
			best = out
		}
	}
	if best == nil {
		return nil, fmt.Errorf("assembling %q: no candidate template encoded successfully", line)
	}
	return best, nil
}

// Assemble encodes line the same way AssembleLazy does: the reference
// Java original's default assemble path uses the lazy match, not the
// smallest, and this mirrors that.
func (c *Codec) Assemble(line string) ([]byte, error) {
	return c.AssembleLazy(line)
}

// AssembleHex is Assemble with the result rendered as a lowercase hex
// string.
func (c *Codec) AssembleHex(line string) (string, error) {
	b, err := c.Assemble(line)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Disassemble decodes exactly one instruction from the front of code,
// trying templates in the order they were declared in the opcode table
// and returning the first one that matches. Ambiguity between
// templates is resolved by table order, not by byte count: the
// catalogue author is expected to place more-specific templates before
// more-general ones.
func (c *Codec) Disassemble(code []byte) (text string, consumed int, err error) {
	mnemonic, ops, consumed, err := c.DecodeOne(code)
	if err != nil {
		return "", 0, err
	}
	return renderInstruction(mnemonic, ops), consumed, nil
}

// DecodeOne is the operand-level form of Disassemble: it returns the
// matched mnemonic and its resolved operands without rendering them to
// text, so a caller that needs the raw operand values — a whole-buffer
// disassembler resolving branch targets, say — doesn't have to
// re-parse its own rendered text.
func (c *Codec) DecodeOne(code []byte) (mnemonic string, ops []Operand, consumed int, err error) {
	if len(code) == 0 {
		return "", nil, 0, fmt.Errorf("empty instruction buffer")
	}

	for _, t := range c.templates {
		candidateOps, n, ok, derr := t.Decode(code)
		if derr != nil {
			return "", nil, 0, fmt.Errorf("decoding: %w", derr)
		}
		if ok {
			return t.Mnemonic, candidateOps, n, nil
		}
	}

	n := len(code)
	if n > 8 {
		n = 8
	}
	return "", nil, 0, fmt.Errorf("no template matches byte sequence starting %x", code[:n])
}

func renderInstruction(mnemonic string, ops []Operand) string {
	if len(ops) == 0 {
		return mnemonic
	}
	parts := make([]string, len(ops))
	for i, o := range ops {
		parts[i] = o.String()
	}
	return mnemonic + " " + strings.Join(parts, ", ")
}

// DisassembleHex decodes one instruction from a hex-encoded byte
// sequence, returning the rendered text and how many bytes it consumed.
func (c *Codec) DisassembleHex(s string) (text string, consumed int, err error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return "", 0, fmt.Errorf("decoding hex %q: %w", s, err)
	}
	return c.Disassemble(b)
}
