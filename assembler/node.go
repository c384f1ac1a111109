package assembler

// NodeType defines the type of an assembly node.
type NodeType int

const (
	// NodeInstruction is one machine instruction line.
	NodeInstruction NodeType = iota
	// NodeLabel marks a program position ("name:").
	NodeLabel
	// NodeDirective is a data or assignment directive (db/dw/dd/dq/equ/org).
	NodeDirective
	// NodeMacro is a "#macro" line. Macro expansion is not implemented;
	// it is kept as a node type so a diagnostic can be attached to the
	// position it occupies rather than silently dropped.
	NodeMacro
)

// Node is one parsed element of a source program.
type Node struct {
	Type NodeType

	Label string // set for NodeLabel
	Text  string // set for NodeInstruction: "mnemonic operand, operand"

	Directive string // set for NodeDirective: "db", "dw", "dd", "dq", "equ", or "org"
	Args      string // set for NodeDirective: the raw text after the directive keyword

	LineNo int
	Size   uint32 // settles across the sizing and encoding passes
}
