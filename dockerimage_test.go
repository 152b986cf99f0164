package main

import (
	"io/ioutil"
	"path/filepath"

	"gopkg.in/check.v1"
)

type dockerSuite struct{}

var _ = check.Suite(&dockerSuite{})

func (s *dockerSuite) TestDockerContext(c *check.C) {
	script := filepath.Join(c.MkDir(), "clr.sh")
	err := ioutil.WriteFile(script, []byte("#!/bin/sh\n"), 0755)
	c.Assert(err, check.IsNil)

	dir := c.MkDir()
	err = writeDockerContext(dir, script)
	c.Assert(err, check.IsNil)
	dockerfile, err := ioutil.ReadFile(filepath.Join(dir, "Dockerfile"))
	c.Assert(err, check.IsNil)
	c.Check(string(dockerfile), check.Matches, `(?s)FROM debian:10\n.*COPY asmToCLR.sh /usr/local/bin/asmToCLR.sh\n`)
	installed, err := ioutil.ReadFile(filepath.Join(dir, "asmToCLR.sh"))
	c.Assert(err, check.IsNil)
	c.Check(string(installed), check.Equals, "#!/bin/sh\n")

	dir = c.MkDir()
	err = writeDockerContext(dir, "")
	c.Assert(err, check.IsNil)
	dockerfile, err = ioutil.ReadFile(filepath.Join(dir, "Dockerfile"))
	c.Assert(err, check.IsNil)
	c.Check(string(dockerfile), check.Not(check.Matches), `(?s).*COPY.*`)
}
