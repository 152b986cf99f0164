package main

import (
	"bufio"
	"compress/gzip"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
)

// inputFiles names the inputs of one conversion. Empty paths are
// derived from the prefix.
type inputFiles struct {
	prefix   string
	asmFile  string
	frgFile  string
	clrFile  string
	clrCmd   string
	cacheDir string
}

func (in *inputFiles) addFlags(flags *flag.FlagSet) {
	flags.StringVar(&in.asmFile, "asm", "", "assembly `file` (default <prefix>.asm)")
	flags.StringVar(&in.frgFile, "frg", "", "fragment `file` (default <prefix>.frg)")
	flags.StringVar(&in.clrFile, "clr", "", "clear range `file` (default <prefix>.clr)")
	flags.StringVar(&in.clrCmd, "clr-cmd", "asmToCLR.sh", "`command` that prints the clear range table for an assembly file")
	flags.StringVar(&in.cacheDir, "cache-dir", "", "cache parsed tables in `dir`")
}

func (in *inputFiles) setPrefix(prefix string) {
	in.prefix = prefix
	for _, f := range []struct {
		path   *string
		suffix string
	}{
		{&in.asmFile, ".asm"},
		{&in.frgFile, ".frg"},
		{&in.clrFile, ".clr"},
	} {
		if *f.path == "" {
			*f.path = prefix + f.suffix
		}
	}
}

// openInput opens path for reading, decompressing if the name ends
// in .gz.
func openInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: gzip: %s", path, err)
	}
	return gzipFile{Reader: gz, f: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (gf gzipFile) Close() error {
	err := gf.Reader.Close()
	if err2 := gf.f.Close(); err == nil {
		err = err2
	}
	return err
}

func parseFile(path string, parse func(label string, rdr io.Reader) error) error {
	rdr, err := openInput(path)
	if err != nil {
		return err
	}
	defer rdr.Close()
	return parse(path, rdr)
}

// deriveClearRanges runs the clear range command on the assembly
// file and saves its stdout as the clear range table.
func (in *inputFiles) deriveClearRanges(stderr io.Writer) error {
	log.Printf("%s: running %s %s", in.clrFile, in.clrCmd, in.asmFile)
	f, err := os.OpenFile(in.clrFile+".tmp", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	defer f.Close()
	bufw := bufio.NewWriter(f)
	cmd := exec.Command(in.clrCmd, in.asmFile)
	cmd.Stdout = bufw
	cmd.Stderr = stderr
	err = cmd.Run()
	if err != nil {
		return fmt.Errorf("%s: %s", in.clrCmd, err)
	}
	err = bufw.Flush()
	if err != nil {
		return err
	}
	err = f.Close()
	if err != nil {
		return err
	}
	return os.Rename(f.Name(), in.clrFile)
}

func (in *inputFiles) ensureClearRanges(stderr io.Writer) error {
	_, err := os.Stat(in.clrFile)
	if err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return in.deriveClearRanges(stderr)
}

// load builds the fragment and contig tables, using the table cache
// when one is configured.
func (in *inputFiles) load(stderr io.Writer) (*assembly, error) {
	asm := newAssembly()
	cache := tableCache{dir: in.cacheDir}

	err := in.ensureClearRanges(stderr)
	if err != nil {
		return nil, err
	}
	fragKey, err := cacheKey("fragments", in.clrFile, in.frgFile)
	if err != nil {
		return nil, err
	}
	if ok, err := cache.Load(fragKey, &asm.fragments); err != nil {
		return nil, err
	} else if !ok {
		asm.fragments = fragmentTable{}
		if err = parseFile(in.clrFile, asm.fragments.LoadClearRanges); err != nil {
			return nil, err
		}
		if err = parseFile(in.frgFile, asm.fragments.LoadFragments); err != nil {
			return nil, err
		}
		if err = cache.Store(fragKey, asm.fragments); err != nil {
			return nil, err
		}
	}

	contigKey, err := cacheKey("contigs", in.asmFile)
	if err != nil {
		return nil, err
	}
	if ok, err := cache.Load(contigKey, &asm.contigs); err != nil {
		return nil, err
	} else if !ok {
		asm.contigs = contigTable{}
		if err = parseFile(in.asmFile, asm.contigs.LoadContigs); err != nil {
			return nil, err
		}
		if err = cache.Store(contigKey, asm.contigs); err != nil {
			return nil, err
		}
	}
	return asm, nil
}
