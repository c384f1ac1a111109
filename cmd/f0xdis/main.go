// Command f0xdis disassembles raw machine code, either a single
// instruction from a hex string or a whole buffer from a binary file.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/grimdork/climate"

	"github.com/pusty/f0x86/disassembler"
)

// Options holds the command-line flags for f0xdis.
type Options struct {
	Input string `arg:"1" name:"input" description:"binary file to disassemble, or a hex string with --hex"`
	Hex   bool   `short:"x" long:"hex" description:"treat input as a hex-encoded byte string instead of a file path"`
	One   bool   `short:"1" long:"one" description:"decode only the first instruction instead of sweeping the whole buffer"`
}

func main() {
	var opt Options
	if err := climate.Parse(&opt); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	code, err := loadCode(opt)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	dis, err := disassembler.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if opt.One {
		text, _, err := dis.DecodeOne(code)
		if err != nil {
			fmt.Fprintf(os.Stderr, "disassembling: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(text)
		return
	}

	listing, err := dis.Disassemble(code)
	if err != nil {
		fmt.Fprintf(os.Stderr, "disassembling: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(listing)
}

func loadCode(opt Options) ([]byte, error) {
	if opt.Hex {
		b, err := hex.DecodeString(strings.TrimSpace(opt.Input))
		if err != nil {
			return nil, fmt.Errorf("decoding hex input: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(opt.Input)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", opt.Input, err)
	}
	return b, nil
}
