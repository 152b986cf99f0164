package main

import (
	"fmt"
	"io"
	"sort"
)

// assembly holds the fragment and contig tables for one run.
type assembly struct {
	fragments fragmentTable
	contigs   contigTable
}

func newAssembly() *assembly {
	return &assembly{
		fragments: fragmentTable{},
		contigs:   contigTable{},
	}
}

// Accessions returns contig accessions in report order.
func (asm *assembly) Accessions() []string {
	accs := make([]string, 0, len(asm.contigs))
	for acc := range asm.contigs {
		accs = append(accs, acc)
	}
	sort.Strings(accs)
	return accs
}

// contigLayout is a contig with its placements resolved, sorted and
// mapped to ungapped coordinates.
type contigLayout struct {
	*contig
	consensus []byte
	reads     []*readLayout
}

func (asm *assembly) layoutContig(ctg *contig) (*contigLayout, error) {
	cns, err := ctg.Consensus.Unpack()
	if err != nil {
		return nil, fmt.Errorf("contig %s: %s", ctg.Accession, err)
	}
	cl := &contigLayout{contig: ctg, consensus: cns}
	plcs := append([]placement(nil), ctg.Placements...)
	sortPlacements(asm.fragments, plcs)
	offsets := newOffsetTable(cns)
	for _, plc := range plcs {
		rl, err := layoutPlacement(asm.fragments, offsets, plc)
		if err != nil {
			return nil, fmt.Errorf("contig %s: %s", ctg.Accession, err)
		}
		if rl != nil {
			cl.reads = append(cl.reads, rl)
		}
	}
	return cl, nil
}

// EachContig calls fn for every contig in accession order.
func (asm *assembly) EachContig(fn func(*contigLayout) error) error {
	for _, acc := range asm.Accessions() {
		cl, err := asm.layoutContig(asm.contigs[acc])
		if err != nil {
			return err
		}
		if err = fn(cl); err != nil {
			return err
		}
	}
	return nil
}

func (cl *contigLayout) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "##%s %d %d bases, 00000000 checksum.\n", cl.Accession, cl.PlacementCount, len(cl.consensus))
	total := int64(n)
	if err != nil {
		return total, err
	}
	m, err := writeWrapped(w, cl.consensus)
	total += m
	if err != nil {
		return total, err
	}
	for _, rl := range cl.reads {
		m, err = rl.WriteTo(w)
		total += m
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteReport writes the contig report for every contig.
func (asm *assembly) WriteReport(w io.Writer) error {
	return asm.EachContig(func(cl *contigLayout) error {
		_, err := cl.WriteTo(w)
		return err
	})
}
