package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
)

const runtimeImage = "asmcontig-runtime"

// buildDockerImage builds the image used for arvados containers,
// with the clear range command installed as asmToCLR.sh.
type buildDockerImage struct{}

func (cmd *buildDockerImage) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	clrCmd := flags.String("clr-cmd", "", "clear range `script` to install in the image")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}
	tmpdir, err := ioutil.TempDir("", "")
	if err != nil {
		return 1
	}
	defer os.RemoveAll(tmpdir)
	err = writeDockerContext(tmpdir, *clrCmd)
	if err != nil {
		return 1
	}
	docker := exec.Command("docker", "build", "--tag="+runtimeImage, tmpdir)
	docker.Stdout = stdout
	docker.Stderr = stderr
	err = docker.Run()
	if err != nil {
		return 1
	}
	return 0
}

// writeDockerContext writes a Dockerfile (and the clear range
// script, if given) into dir.
func writeDockerContext(dir, clrScript string) error {
	dockerfile := "FROM debian:10\n"
	if clrScript != "" {
		buf, err := ioutil.ReadFile(clrScript)
		if err != nil {
			return err
		}
		err = ioutil.WriteFile(filepath.Join(dir, "asmToCLR.sh"), buf, 0755)
		if err != nil {
			return err
		}
		dockerfile += "COPY asmToCLR.sh /usr/local/bin/asmToCLR.sh\n"
	}
	return ioutil.WriteFile(filepath.Join(dir, "Dockerfile"), []byte(dockerfile), 0644)
}
