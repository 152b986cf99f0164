package main

import (
	"bytes"
	"os"

	"github.com/kshedden/gonpy"
	"gopkg.in/check.v1"
)

type exportSuite struct{}

var _ = check.Suite(&exportSuite{})

func (s *exportSuite) TestLayoutToNumpy(c *check.C) {
	var output bytes.Buffer
	exited := (&exportNumpy{}).RunCommand("export-numpy", []string{"testdata/tiny"}, nil, &output, os.Stderr)
	c.Assert(exited, check.Equals, 0)
	npy, err := gonpy.NewReader(&output)
	c.Assert(err, check.IsNil)
	c.Check(npy.Shape, check.DeepEquals, []int{2, npyCols})
	layout, err := npy.GetInt32()
	c.Assert(err, check.IsNil)
	c.Check(layout, check.DeepEquals, []int32{
		20, 2, 8, 0, 6, 3, 7,
		20, 2, 9, 1, 7, 3, 8,
	})
}

func (s *exportSuite) TestNonNumericAccession(c *check.C) {
	asm := newAssembly()
	asm.fragments["F"] = &fragment{ID: "F", Name: "F", Seq: packSeq([]byte("ACGT")), ClearRight: 4}
	asm.contigs["ctg"] = &contig{
		Accession:  "ctg",
		Consensus:  packSeq([]byte("ACGT")),
		Placements: []placement{{FragmentID: "F", Left: 0, Right: 4}},
	}
	layout, rows, err := layoutMatrix(asm)
	c.Assert(err, check.IsNil)
	c.Check(rows, check.Equals, 1)
	c.Check(layout, check.DeepEquals, []int32{-1, 0, 4, 0, 4, 1, 4})
}
