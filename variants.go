package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"time"

	"git.arvados.org/asmcontig.git/hgvs"
	log "github.com/sirupsen/logrus"
)

// variantReport lists, for every rendered read, how it differs from
// the ungapped consensus it is placed on.
type variantReport struct {
	runOptions
	outputFile string
}

func (cmd *variantReport) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	cmd.addFlags(flags)
	flags.StringVar(&cmd.outputFile, "o", "-", "output `file`")
	timeout := flags.Duration("timeout", 0, "per-read diff timeout (examples: \"1s\", \"1ms\")")
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

	asm, err := cmd.load(stderr)
	if err != nil {
		return 1
	}
	output, err := openOutput(cmd.outputFile, stdout)
	if err != nil {
		return 1
	}
	defer output.Close()
	bufw := bufio.NewWriter(output)
	err = asm.EachContig(func(cl *contigLayout) error {
		return writeReadVariants(bufw, cl, *timeout)
	})
	if err != nil {
		return 1
	}
	err = bufw.Flush()
	if err != nil {
		return 1
	}
	err = output.Close()
	if err != nil {
		return 1
	}
	return 0
}

func ungap(seq []byte) []byte {
	return bytes.Replace(seq, []byte{'-'}, nil, -1)
}

// writeReadVariants writes one TSV line per difference between each
// read of cl and the consensus under it. Positions are 1-based
// ungapped consensus coordinates.
func writeReadVariants(w io.Writer, cl *contigLayout, timeout time.Duration) error {
	cns := bytes.ToUpper(ungap(cl.consensus))
	for _, rl := range cl.reads {
		start, end := rl.AsmLeft-1, rl.AsmRight
		if start < 0 {
			start = 0
		}
		if end > len(cns) {
			end = len(cns)
		}
		if start > end {
			start = end
		}
		variants, timedOut := hgvs.Diff(string(cns[start:end]), string(ungap(rl.Seq)), timeout)
		if timedOut {
			log.Warnf("contig %s read %s: diff timed out", cl.Accession, rl.Name)
		}
		for _, v := range variants {
			v.Position += start
			_, err := fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", cl.Accession, rl.Name, v.Position, v.String())
			if err != nil {
				return err
			}
		}
	}
	return nil
}
