package assembler

import (
	"regexp"
	"strconv"

	"github.com/pusty/f0x86/codec"
)

// numeral matches one bare numeric literal in any base the table and
// operand grammar accept: a "0x" prefix, an "h"/"b"/"o" suffix, or
// plain decimal.
const numeral = `(?:0[xX][0-9a-fA-F]+|[0-9][0-9a-fA-F]*[hH]|[01]+[bB]|[0-7]+[oO]|[0-9]+)`

var (
	mulDivPair = regexp.MustCompile(numeral + `\s*([*/%])\s*` + numeral)
	addSubPair = regexp.MustCompile(numeral + `\s*([+\-])\s*` + numeral)
	pairSplit  = regexp.MustCompile(`^(` + numeral + `)\s*([*/%+\-])\s*(` + numeral + `)$`)
)

// evaluateMath reduces every maximal run of numeric-literal arithmetic
// in text to its decimal result, in two left-to-right sweeps: first
// every "*", "/", "%" pair, then every "+", "-" pair. Anything that is
// not a recognised numeral (register names, brackets, commas) passes
// through untouched, so an operand like "dword [eax+4*2+8]" reduces to
// "dword [eax+16]" without disturbing "eax".
func evaluateMath(text string) string {
	text = reduceTier(text, mulDivPair)
	text = reduceTier(text, addSubPair)
	return text
}

func reduceTier(text string, pair *regexp.Regexp) string {
	for {
		replaced := false
		next := pair.ReplaceAllStringFunc(text, func(m string) string {
			parts := pairSplit.FindStringSubmatch(m)
			if parts == nil {
				return m
			}
			lhs, err1 := codec.ParseNumber(parts[1])
			rhs, err2 := codec.ParseNumber(parts[3])
			if err1 != nil || err2 != nil {
				return m
			}
			var result int64
			switch parts[2] {
			case "*":
				result = lhs * rhs
			case "/":
				if rhs == 0 {
					return m
				}
				result = lhs / rhs
			case "%":
				if rhs == 0 {
					return m
				}
				result = lhs % rhs
			case "+":
				result = lhs + rhs
			case "-":
				result = lhs - rhs
			default:
				return m
			}
			replaced = true
			return strconv.FormatInt(result, 10)
		})
		text = next
		if !replaced {
			return text
		}
	}
}
