package main

import (
	"os"
	"strings"

	"gopkg.in/check.v1"
)

type fragmentSuite struct{}

var _ = check.Suite(&fragmentSuite{})

func (s *fragmentSuite) TestClearRanges(c *check.C) {
	ftab := fragmentTable{}
	err := ftab.LoadClearRanges("test.clr", strings.NewReader(`F1 2 8
F2	0	6

F3 x 5
F4 1
F5 6 2
F1 3 9
`))
	c.Assert(err, check.IsNil)
	c.Check(ftab, check.HasLen, 2)
	c.Check(*ftab["F1"], check.DeepEquals, fragment{ID: "F1", ClearLeft: 3, ClearRight: 9})
	c.Check(*ftab["F2"], check.DeepEquals, fragment{ID: "F2", ClearLeft: 0, ClearRight: 6})
}

func (s *fragmentSuite) TestLoadFragments(c *check.C) {
	ftab := fragmentTable{}
	err := parseFile("testdata/tiny.clr", ftab.LoadClearRanges)
	c.Assert(err, check.IsNil)
	err = parseFile("testdata/tiny.frg", ftab.LoadFragments)
	c.Assert(err, check.IsNil)

	c.Check(ftab, check.HasLen, 4)
	c.Check(ftab["F9"], check.IsNil)

	c.Check(ftab["F1"].Name, check.Equals, "F1")
	seq, err := ftab["F1"].Seq.Unpack()
	c.Assert(err, check.IsNil)
	c.Check(string(seq), check.Equals, "AACCGGTTAA")

	// first acc wins
	c.Check(ftab["F2"].Name, check.Equals, "read2")
	seq, err = ftab["F2"].Seq.Unpack()
	c.Assert(err, check.IsNil)
	c.Check(string(seq), check.Equals, "ACGTAC")

	c.Check(ftab["F3"].Name, check.Equals, "r3")
	seq, err = ftab["F3"].Seq.Unpack()
	c.Assert(err, check.IsNil)
	c.Check(string(seq), check.Equals, "ggatcc")

	c.Check(ftab["F4"].Seq, check.IsNil)
}

func (s *fragmentSuite) TestDotName(c *check.C) {
	ftab := fragmentTable{"F7": {ID: "F7", ClearLeft: 0, ClearRight: 2}}
	err := ftab.LoadFragments("test.frg", strings.NewReader("{FRG\nacc:F7\nsrc:\n.\n.\nseq:\nAC\n.\n}\n"))
	c.Assert(err, check.IsNil)
	c.Check(ftab["F7"].Name, check.Equals, "F7")
}

func (s *fragmentSuite) TestClearRangeBeyondSequence(c *check.C) {
	ftab := fragmentTable{"F7": {ID: "F7", ClearLeft: 0, ClearRight: 5}}
	err := ftab.LoadFragments("test.frg", strings.NewReader("{FRG\nacc:F7\nseq:\nACGT\n.\n}\n"))
	c.Assert(err, check.IsNil)
	c.Check(ftab["F7"].Seq, check.IsNil)
}

func (s *fragmentSuite) TestTruncated(c *check.C) {
	ftab := fragmentTable{}
	err := ftab.LoadFragments("test.frg", strings.NewReader("{FRG\nacc:F7\nseq:\nACGT\n"))
	c.Check(err, check.ErrorMatches, `test.frg line 4: unexpected end of input inside block`)
}

func (s *fragmentSuite) TestMissingFile(c *check.C) {
	ftab := fragmentTable{}
	err := parseFile("testdata/does-not-exist.frg", ftab.LoadFragments)
	c.Check(os.IsNotExist(err), check.Equals, true)
}

func (s *fragmentSuite) TestNormalizeSymbols(c *check.C) {
	seq, err := packSeq([]byte("ACgtRYn-")).Unpack()
	c.Assert(err, check.IsNil)
	c.Check(string(seq), check.Equals, "ACgtNNN-")

	seq, err = packSeq(nil).Unpack()
	c.Assert(err, check.IsNil)
	c.Check(seq, check.HasLen, 0)
	c.Check(packSeq(nil), check.NotNil)
}
