package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"git.arvados.org/arvados.git/sdk/go/arvados"
)

type contigReport struct {
	runOptions
	outputFile  string
	projectUUID string
}

func (cmd *contigReport) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	cmd.addFlags(flags)
	flags.StringVar(&cmd.outputFile, "o", "", "output `file` (default <prefix>.contig, \"-\" for stdout)")
	flags.StringVar(&cmd.projectUUID, "project", "", "run in an arvados container, saving output to project `UUID`")
	priority := flags.Int("priority", 500, "container request priority")
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
	if cmd.outputFile == "" {
		cmd.outputFile = cmd.prefix + ".contig"
	}

	if cmd.projectUUID != "" {
		var output string
		output, err = cmd.runInContainer(*priority)
		if err != nil {
			return 1
		}
		fmt.Fprintln(stdout, output)
		return 0
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
	err = asm.WriteReport(bufw)
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

// runInContainer reruns this command in an arvados container with
// inputs mounted from their collections. A clear range file that was
// not given explicitly is derived inside the container.
func (cmd *contigReport) runInContainer(priority int) (string, error) {
	runner := arvadosContainerRunner{
		Name:        "asmcontig contig",
		Client:      arvados.NewClientFromEnv(),
		ProjectUUID: cmd.projectUUID,
		RAM:         16 << 30,
		VCPUs:       1,
		Priority:    priority,
	}
	base := filepath.Base(cmd.prefix)
	clrFile := cmd.clrFile
	if clrFile == cmd.prefix+".clr" {
		clrFile = "/mnt/output/" + base + ".clr"
	} else if err := runner.TranslatePaths(&clrFile); err != nil {
		return "", err
	}
	asmFile, frgFile := cmd.asmFile, cmd.frgFile
	err := runner.TranslatePaths(&asmFile, &frgFile)
	if err != nil {
		return "", err
	}
	runner.Args = []string{"contig",
		"-asm", asmFile,
		"-frg", frgFile,
		"-clr", clrFile,
		"-clr-cmd", cmd.clrCmd,
		"-loglevel", cmd.loglevel,
		"-o", "/mnt/output/" + base + ".contig",
		"/mnt/output/" + base,
	}
	output, err := runner.Run()
	if err != nil {
		return "", err
	}
	return output + "/" + base + ".contig", nil
}
