package main

import (
	"gopkg.in/check.v1"
)

type arvadosSuite struct{}

var _ = check.Suite(&arvadosSuite{})

func (s *arvadosSuite) TestTranslatePaths(c *check.C) {
	runner := arvadosContainerRunner{}
	asm := "/mnt/keep/by_id/zzzzz-4zz18-aaaaaaaaaaaaaaa/run1/tiny.asm"
	frg := "/mnt/keep/0123456789abcdef0123456789abcdef+1234/tiny.frg"
	clr := "zzzzz-4zz18-aaaaaaaaaaaaaaa/run1/tiny.clr"
	empty := ""
	err := runner.TranslatePaths(&asm, &frg, &clr, &empty)
	c.Assert(err, check.IsNil)
	c.Check(asm, check.Equals, "/mnt/zzzzz-4zz18-aaaaaaaaaaaaaaa/run1/tiny.asm")
	c.Check(frg, check.Equals, "/mnt/0123456789abcdef0123456789abcdef+1234/tiny.frg")
	c.Check(clr, check.Equals, "/mnt/zzzzz-4zz18-aaaaaaaaaaaaaaa/run1/tiny.clr")
	c.Check(empty, check.Equals, "")
	c.Check(runner.Mounts, check.DeepEquals, map[string]map[string]interface{}{
		"/mnt/zzzzz-4zz18-aaaaaaaaaaaaaaa": {
			"kind": "collection",
			"uuid": "zzzzz-4zz18-aaaaaaaaaaaaaaa",
		},
		"/mnt/0123456789abcdef0123456789abcdef+1234": {
			"kind":               "collection",
			"portable_data_hash": "0123456789abcdef0123456789abcdef+1234",
		},
	})

	bad := "/tmp/tiny.asm"
	c.Check(runner.TranslatePaths(&bad), check.ErrorMatches, `cannot find uuid in path: .*`)
}
