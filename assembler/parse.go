package assembler

import "strings"

// parseLines converts raw source lines into a slice of Node objects,
// stripping comments and splitting out leading labels.
func parseLines(lines []string) []*Node {
	var nodes []*Node
	for i, line := range lines {
		if c := strings.IndexRune(line, ';'); c != -1 {
			line = line[:c]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if c := strings.Index(line, ":"); c != -1 {
			label := strings.TrimSpace(line[:c])
			if label != "" && !strings.ContainsAny(label, " \t") {
				nodes = append(nodes, &Node{Type: NodeLabel, Label: strings.ToLower(label), LineNo: i + 1})
				line = strings.TrimSpace(line[c+1:])
			}
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#macro") {
			nodes = append(nodes, &Node{Type: NodeMacro, LineNo: i + 1})
			continue
		}

		fields := strings.Fields(line)
		if len(fields) >= 3 && strings.ToLower(fields[1]) == "equ" {
			rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
			rest = strings.TrimSpace(strings.TrimPrefix(rest, fields[1]))
			nodes = append(nodes, &Node{Type: NodeDirective, Directive: "equ", Args: fields[0] + " " + rest, LineNo: i + 1})
			continue
		}

		firstSpace := strings.IndexAny(line, " \t")
		var head, rest string
		if firstSpace == -1 {
			head = line
		} else {
			head = line[:firstSpace]
			rest = strings.TrimSpace(line[firstSpace:])
		}

		switch strings.ToLower(head) {
		case "db", "dw", "dd", "dq", "org":
			nodes = append(nodes, &Node{Type: NodeDirective, Directive: strings.ToLower(head), Args: rest, LineNo: i + 1})
		default:
			nodes = append(nodes, &Node{Type: NodeInstruction, Text: line, LineNo: i + 1})
		}
	}
	return nodes
}

// instructionMnemonic returns the lowercase first word of an
// instruction node's text.
func instructionMnemonic(text string) string {
	sp := strings.IndexAny(text, " \t")
	if sp == -1 {
		return strings.ToLower(text)
	}
	return strings.ToLower(text[:sp])
}
