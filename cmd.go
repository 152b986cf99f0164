package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"

	"git.arvados.org/arvados.git/lib/cmd"
	log "github.com/sirupsen/logrus"
)

var (
	handler = cmd.Multi(map[string]cmd.Handler{
		"version":   cmd.Version,
		"-version":  cmd.Version,
		"--version": cmd.Version,

		"contig":       &contigReport{},
		"derive-clr":   &deriveClr{},
		"export-numpy": &exportNumpy{},
		"variants":     &variantReport{},

		"build-docker-image": &buildDockerImage{},
	})
)

func main() {
	os.Exit(handler.RunCommand(os.Args[0], os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// runOptions are the flags shared by every command that reads an
// assembly prefix.
type runOptions struct {
	inputFiles
	loglevel string
	pprof    string
}

func (opts *runOptions) addFlags(flags *flag.FlagSet) {
	opts.inputFiles.addFlags(flags)
	flags.StringVar(&opts.loglevel, "loglevel", "info", "logging threshold (trace, debug, info, warn, error, fatal, or panic)")
	flags.StringVar(&opts.pprof, "pprof", "", "serve Go profile data at http://`[addr]:port`")
}

// setup applies logging and profiling flags and takes the prefix
// from the single positional argument.
func (opts *runOptions) setup(prog string, flags *flag.FlagSet, stderr io.Writer) error {
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: %s [options] prefix", prog)
	}
	lvl, err := log.ParseLevel(opts.loglevel)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	log.SetOutput(stderr)
	if opts.pprof != "" {
		go func() {
			log.Println(http.ListenAndServe(opts.pprof, nil))
		}()
	}
	opts.setPrefix(flags.Arg(0))
	return nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// openOutput returns stdout for "-", otherwise a new file.
func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{stdout}, nil
	}
	return os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
}
