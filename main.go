package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
)

var parser = flags.NewNamedParser("fmribatch", flags.PassDoubleDash)

func printHelp(parser *flags.Parser, w io.Writer) {
	// Print help for active command
	if parser.Command.Active != nil {
		parser.Command = parser.Command.Active
	}
	var b bytes.Buffer
	parser.WriteHelp(&b)
	fmt.Fprintln(w, b.String())
}

func errHandler(err error, stdout, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	switch flagsErr := err.(type) {
	case *flags.Error:
		if flagsErr.Type == flags.ErrHelp {
			printHelp(parser, stdout)
			return 0
		}
		// Unknown flag, missing argument, unknown command: usage on
		// stderr, non-zero exit, nothing generated.
		fmt.Fprintln(stderr, flagsErr.Error())
		printHelp(parser, stderr)
		return 1
	default:
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
}

func main() {
	_, err := parser.Parse()
	os.Exit(errHandler(err, os.Stdout, os.Stderr))
}
