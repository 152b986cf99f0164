package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/kshedden/gonpy"
	log "github.com/sirupsen/logrus"
)

// Columns of the exported read layout matrix.
const (
	npyAccession = iota
	npyLeft
	npyRight
	npyReverse
	npyBases
	npyAsmLeft
	npyAsmRight
	npyCols
)

type exportNumpy struct {
	runOptions
	outputFile string
}

func (cmd *exportNumpy) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
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
	out, rows, err := layoutMatrix(asm)
	if err != nil {
		return 1
	}
	log.Printf("exporting %d placements", rows)

	output, err := openOutput(cmd.outputFile, stdout)
	if err != nil {
		return 1
	}
	defer output.Close()
	bufw := bufio.NewWriter(output)
	npw, err := gonpy.NewWriter(nopCloser{bufw})
	if err != nil {
		return 1
	}
	npw.Shape = []int{rows, npyCols}
	err = npw.WriteInt32(out)
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

// layoutMatrix flattens every rendered placement, in report order,
// into a row-major int32 matrix with npyCols columns.
func layoutMatrix(asm *assembly) ([]int32, int, error) {
	var out []int32
	rows := 0
	err := asm.EachContig(func(cl *contigLayout) error {
		acc, err := strconv.ParseInt(cl.Accession, 10, 32)
		if err != nil {
			acc = -1
		}
		for _, rl := range cl.reads {
			row := make([]int32, npyCols)
			row[npyAccession] = int32(acc)
			row[npyLeft] = int32(rl.Left)
			row[npyRight] = int32(rl.Right)
			if rl.Reverse {
				row[npyReverse] = 1
			}
			row[npyBases] = int32(rl.Bases)
			row[npyAsmLeft] = int32(rl.AsmLeft)
			row[npyAsmRight] = int32(rl.AsmRight)
			out = append(out, row...)
			rows++
		}
		return nil
	})
	return out, rows, err
}
