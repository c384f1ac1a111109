package assembler

import (
	"fmt"
	"strings"

	"github.com/pusty/f0x86/codec"
)

// directiveSize returns the byte size a directive will occupy, without
// generating its bytes — used during the sizing pass.
func (asm *Assembler) directiveSize(n *Node) (uint32, error) {
	switch n.Directive {
	case "org", "equ":
		return 0, nil
	case "db", "dw", "dd", "dq":
		return sizeOfValues(n.Directive, n.Args)
	default:
		return 0, fmt.Errorf("unknown directive %q", n.Directive)
	}
}

// directiveCode generates a directive's bytes. org and equ emit
// nothing; they only affect assembler state, handled in Assemble.
func (asm *Assembler) directiveCode(n *Node) ([]byte, error) {
	switch n.Directive {
	case "org", "equ":
		return nil, nil
	case "db", "dw", "dd", "dq":
		return asm.encodeValues(n.Directive, n.Args)
	default:
		return nil, fmt.Errorf("unknown directive %q", n.Directive)
	}
}

func elementSize(directive string) uint32 {
	switch directive {
	case "db":
		return 1
	case "dw":
		return 2
	case "dd":
		return 4
	case "dq":
		return 8
	default:
		return 1
	}
}

func sizeOfValues(directive, values string) (uint32, error) {
	width := elementSize(directive)
	var size uint32
	for _, tok := range splitValues(values) {
		if tok.quoted {
			size += uint32(len(tok.text))
		} else {
			size += width
		}
	}
	return size, nil
}

func (asm *Assembler) encodeValues(directive, values string) ([]byte, error) {
	width := int(elementSize(directive))
	var out []byte
	for _, tok := range splitValues(values) {
		if tok.quoted {
			out = append(out, []byte(tok.text)...)
			continue
		}
		v, err := codec.ParseNumber(evaluateMath(tok.text))
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", tok.text, err)
		}
		u := uint64(v)
		for i := 0; i < width; i++ {
			out = append(out, byte(u>>(8*i)))
		}
	}
	return out, nil
}

type valueToken struct {
	text   string
	quoted bool
}

// splitValues splits a comma-separated directive argument list,
// treating quoted strings ('...' or "...") as single unsplit tokens
// whose contents are emitted byte-for-byte.
func splitValues(s string) []valueToken {
	var tokens []valueToken
	inQuote := false
	var quoteChar rune
	var cur strings.Builder
	flush := func(quoted bool) {
		text := cur.String()
		if !quoted {
			text = strings.TrimSpace(text)
		}
		if text != "" {
			tokens = append(tokens, valueToken{text: text, quoted: quoted})
		}
		cur.Reset()
	}
	for _, c := range s {
		switch {
		case c == '\'' || c == '"':
			if inQuote && c == quoteChar {
				flush(true)
				inQuote = false
			} else if !inQuote {
				inQuote = true
				quoteChar = c
			} else {
				cur.WriteRune(c)
			}
		case c == ',' && !inQuote:
			flush(false)
		default:
			cur.WriteRune(c)
		}
	}
	if !inQuote {
		flush(false)
	}
	return tokens
}
