package main

import (
	"bytes"
	"compress/gzip"
	"io/ioutil"
	"os"
	"path/filepath"

	"gopkg.in/check.v1"
)

type convertSuite struct {
	tempdir string
}

var _ = check.Suite(&convertSuite{})

func (s *convertSuite) SetUpTest(c *check.C) {
	s.tempdir = c.MkDir()
}

// copyFixture copies testdata/tiny.<ext> files into the temp dir and
// returns the new prefix.
func (s *convertSuite) copyFixture(c *check.C, exts ...string) string {
	prefix := filepath.Join(s.tempdir, "tiny")
	for _, ext := range exts {
		buf, err := ioutil.ReadFile("testdata/tiny." + ext)
		c.Assert(err, check.IsNil)
		err = ioutil.WriteFile(prefix+"."+ext, buf, 0644)
		c.Assert(err, check.IsNil)
	}
	return prefix
}

func (s *convertSuite) expected(c *check.C) string {
	buf, err := ioutil.ReadFile("testdata/tiny.contig")
	c.Assert(err, check.IsNil)
	return string(buf)
}

func (s *convertSuite) TestContig(c *check.C) {
	prefix := s.copyFixture(c, "asm", "frg", "clr")
	var stdout bytes.Buffer
	exited := (&contigReport{}).RunCommand("contig", []string{prefix}, nil, &stdout, os.Stderr)
	c.Assert(exited, check.Equals, 0)
	c.Check(stdout.Len(), check.Equals, 0)
	buf, err := ioutil.ReadFile(prefix + ".contig")
	c.Assert(err, check.IsNil)
	c.Check(string(buf), check.Equals, s.expected(c))
}

func (s *convertSuite) TestContigStdout(c *check.C) {
	var stdout bytes.Buffer
	exited := (&contigReport{}).RunCommand("contig", []string{"-o", "-", "testdata/tiny"}, nil, &stdout, os.Stderr)
	c.Assert(exited, check.Equals, 0)
	c.Check(stdout.String(), check.Equals, s.expected(c))
}

func (s *convertSuite) TestGzipInput(c *check.C) {
	buf, err := ioutil.ReadFile("testdata/tiny.asm")
	c.Assert(err, check.IsNil)
	f, err := os.Create(filepath.Join(s.tempdir, "tiny.asm.gz"))
	c.Assert(err, check.IsNil)
	gz := gzip.NewWriter(f)
	_, err = gz.Write(buf)
	c.Assert(err, check.IsNil)
	c.Assert(gz.Close(), check.IsNil)
	c.Assert(f.Close(), check.IsNil)

	var stdout bytes.Buffer
	exited := (&contigReport{}).RunCommand("contig", []string{"-asm", f.Name(), "-o", "-", "testdata/tiny"}, nil, &stdout, os.Stderr)
	c.Assert(exited, check.Equals, 0)
	c.Check(stdout.String(), check.Equals, s.expected(c))
}

func (s *convertSuite) TestCache(c *check.C) {
	prefix := s.copyFixture(c, "asm", "frg", "clr")
	cachedir := c.MkDir()
	for i := 0; i < 2; i++ {
		var stdout bytes.Buffer
		exited := (&contigReport{}).RunCommand("contig", []string{"-cache-dir", cachedir, "-o", "-", prefix}, nil, &stdout, os.Stderr)
		c.Assert(exited, check.Equals, 0)
		c.Check(stdout.String(), check.Equals, s.expected(c))
	}
	entries, err := filepath.Glob(filepath.Join(cachedir, "*.gob"))
	c.Assert(err, check.IsNil)
	c.Check(entries, check.HasLen, 2)

	// changing an input invalidates its cache entry
	err = ioutil.WriteFile(prefix+".frg", []byte("{FRG\n"), 0644)
	c.Assert(err, check.IsNil)
	var stdout bytes.Buffer
	exited := (&contigReport{}).RunCommand("contig", []string{"-cache-dir", cachedir, "-o", "-", prefix}, nil, &stdout, os.Stderr)
	c.Check(exited, check.Equals, 1)
}

func (s *convertSuite) TestDeriveClearRanges(c *check.C) {
	prefix := s.copyFixture(c, "asm", "frg")
	script := filepath.Join(s.tempdir, "clr.sh")
	err := ioutil.WriteFile(script, []byte("#!/bin/sh\ntest -f \"$1\" || exit 1\nprintf 'F1 2 8\\nF2 0 6\\n'\n"), 0755)
	c.Assert(err, check.IsNil)

	var stdout bytes.Buffer
	exited := (&contigReport{}).RunCommand("contig", []string{"-clr-cmd", script, "-o", "-", prefix}, nil, &stdout, os.Stderr)
	c.Assert(exited, check.Equals, 0)
	c.Check(stdout.String(), check.Equals, s.expected(c))
	buf, err := ioutil.ReadFile(prefix + ".clr")
	c.Assert(err, check.IsNil)
	c.Check(string(buf), check.Equals, "F1 2 8\nF2 0 6\n")

	stdout.Reset()
	exited = (&deriveClr{}).RunCommand("derive-clr", []string{"-clr-cmd", "false", prefix}, nil, &stdout, os.Stderr)
	c.Check(exited, check.Equals, 1)
	_, err = os.Stat(prefix + ".clr.tmp")
	c.Check(os.IsNotExist(err), check.Equals, true)
}

func (s *convertSuite) TestUsage(c *check.C) {
	var stderr bytes.Buffer
	exited := (&contigReport{}).RunCommand("contig", nil, nil, &bytes.Buffer{}, &stderr)
	c.Check(exited, check.Equals, 2)
	c.Check(stderr.String(), check.Matches, `usage: contig .*\n`)

	exited = (&contigReport{}).RunCommand("contig", []string{"-loglevel", "info", filepath.Join(s.tempdir, "missing")}, nil, &bytes.Buffer{}, &stderr)
	c.Check(exited, check.Equals, 1)
}
