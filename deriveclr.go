package main

import (
	"flag"
	"fmt"
	"io"
)

// deriveClr writes <prefix>.clr using the clear range command,
// replacing any existing file.
type deriveClr struct {
	runOptions
}

func (cmd *deriveClr) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	cmd.addFlags(flags)
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}
	err = cmd.setup(prog, flags, stderr)
	if err != nil {
		return 2
	}
	err = cmd.deriveClearRanges(stderr)
	if err != nil {
		return 1
	}
	fmt.Fprintln(stdout, cmd.clrFile)
	return 0
}
