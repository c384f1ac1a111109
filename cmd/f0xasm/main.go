// Command f0xasm assembles a text source file into raw machine code.
package main

import (
	"fmt"
	"os"

	"github.com/grimdork/climate"

	"github.com/pusty/f0x86/assembler"
)

// Options holds the command-line flags for f0xasm.
type Options struct {
	Input   string `arg:"1" name:"input" description:"source file to assemble"`
	Output  string `short:"o" long:"output" description:"output file for the machine code (default: stdout, hex-encoded)"`
	BaseHex string `short:"b" long:"base" default:"0x1000" description:"base address, as a hex literal"`
}

func main() {
	var opt Options
	if err := climate.Parse(&opt); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	data, err := os.ReadFile(opt.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %v\n", opt.Input, err)
		os.Exit(1)
	}

	base, err := parseBase(opt.BaseHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid base address %q: %v\n", opt.BaseHex, err)
		os.Exit(1)
	}

	asm, err := assembler.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	code, err := asm.Assemble(string(data), base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "assembling %s: %v\n", opt.Input, err)
		os.Exit(1)
	}
	for _, d := range asm.Diagnostics {
		fmt.Fprintf(os.Stderr, "%s: %s\n", opt.Input, d)
	}

	if opt.Output == "" {
		fmt.Println(assembler.Hexify(code))
		return
	}
	if err := os.WriteFile(opt.Output, code, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "writing %s: %v\n", opt.Output, err)
		os.Exit(1)
	}
}

func parseBase(s string) (uint32, error) {
	var v uint32
	_, err := fmt.Sscanf(s, "0x%x", &v)
	if err != nil {
		_, err = fmt.Sscanf(s, "%d", &v)
	}
	return v, err
}
