package main

import (
	"bytes"
	"fmt"
	"io"
	"sort"
)

const seqLineWidth = 60

// offsetTable maps a gapped consensus column i to the number of
// non-gap consensus bases in columns 0..i.
type offsetTable []int

func newOffsetTable(consensus []byte) offsetTable {
	t := make(offsetTable, len(consensus))
	coord := 0
	for i, b := range consensus {
		if b != '-' {
			coord++
		}
		t[i] = coord
	}
	return t
}

// Span translates a gapped [left, right) placement into ungapped
// consensus coordinates. The right end is first clamped so the span
// is no longer than the rendered read (readlen).
func (t offsetTable) Span(left, right, readlen int) (asml, asmr int) {
	if len(t) == 0 {
		return 0, 0
	}
	if right-left > readlen {
		right = left + readlen - 1
	}
	switch {
	case right <= 0:
		asmr = t[0]
	case right > len(t):
		asmr = t[len(t)-1]
	default:
		asmr = t[right-1]
	}
	switch {
	case left >= len(t):
		asml = t[len(t)-1]
	case left < 0:
		asml = t[0]
	default:
		asml = t[left]
	}
	return
}

var revcompBase = func() []byte {
	r := make([]byte, 256)
	for i := range r {
		r[i] = 'N'
	}
	for _, pair := range []string{"AT", "CG", "GC", "TA", "at", "cg", "gc", "ta"} {
		r[int(pair[0])] = pair[1]
	}
	return r
}()

// reverseComplement returns the reverse complement of seq. Any
// symbol other than ACGT (either case) becomes N.
func reverseComplement(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = revcompBase[int(b)]
	}
	return out
}

// insertGaps inserts a '-' before each of the given positions. The
// k'th insertion (0-based) lands at positions[k]+k, so positions
// refer to the read before any gaps were added. Positions past the
// end of the read append.
func insertGaps(seq []byte, positions []int) []byte {
	out := make([]byte, 0, len(seq)+len(positions))
	out = append(out, seq...)
	for k, pos := range positions {
		at := pos + k
		if at < 0 {
			at = 0
		} else if at > len(out) {
			at = len(out)
		}
		out = append(out, 0)
		copy(out[at+1:], out[at:])
		out[at] = '-'
	}
	return out
}

// readLayout is one placement as it appears in the contig report.
type readLayout struct {
	Name     string
	Left     int // gapped consensus start, as placed
	Right    int
	Reverse  bool
	Bases    int
	SeqLeft  int // 1-based clear range ends, swapped when Reverse
	SeqRight int
	AsmLeft  int // ungapped consensus span
	AsmRight int
	Seq      []byte
}

// layoutPlacement builds the report entry for plc. It returns nil if
// the placed fragment is unknown or has no sequence.
func layoutPlacement(ftab fragmentTable, offsets offsetTable, plc placement) (*readLayout, error) {
	frag, ok := ftab[plc.FragmentID]
	if !ok || frag.Seq == nil {
		return nil, nil
	}
	full, err := frag.Seq.Unpack()
	if err != nil {
		return nil, fmt.Errorf("fragment %s: %s", frag.ID, err)
	}
	if frag.ClearRight > len(full) || frag.ClearLeft > frag.ClearRight {
		return nil, fmt.Errorf("fragment %s: clear range %d,%d outside sequence length %d", frag.ID, frag.ClearLeft, frag.ClearRight, len(full))
	}
	seq := bytes.ToUpper(full[frag.ClearLeft:frag.ClearRight])
	rl := &readLayout{
		Name:     frag.Name,
		Left:     plc.Left,
		Right:    plc.Right,
		Reverse:  plc.Reverse,
		Bases:    plc.GapCount + frag.ClearRight - frag.ClearLeft,
		SeqLeft:  frag.ClearLeft + 1,
		SeqRight: frag.ClearRight,
	}
	if plc.Reverse {
		seq = reverseComplement(seq)
		rl.SeqLeft, rl.SeqRight = rl.SeqRight, rl.SeqLeft
	}
	if plc.GapCount > 0 {
		seq = insertGaps(seq, plc.GapPositions)
	}
	rl.Seq = seq
	rl.AsmLeft, rl.AsmRight = offsets.Span(plc.Left, plc.Right, len(seq))
	return rl, nil
}

func (rl *readLayout) WriteTo(w io.Writer) (int64, error) {
	rc := ""
	if rl.Reverse {
		rc = "RC"
	}
	n, err := fmt.Fprintf(w, "#%s(%d) [%s] %d bases, 00000000 checksum. {%d %d} <%d %d>\n",
		rl.Name, rl.Left, rc, rl.Bases, rl.SeqLeft, rl.SeqRight, rl.AsmLeft, rl.AsmRight)
	if err != nil {
		return int64(n), err
	}
	m, err := writeWrapped(w, rl.Seq)
	return int64(n) + m, err
}

// writeWrapped writes seq in lines of seqLineWidth bases.
func writeWrapped(w io.Writer, seq []byte) (int64, error) {
	var total int64
	for i := 0; i < len(seq); i += seqLineWidth {
		end := i + seqLineWidth
		if end > len(seq) {
			end = len(seq)
		}
		n, err := w.Write(seq[i:end])
		total += int64(n)
		if err != nil {
			return total, err
		}
		n, err = w.Write([]byte{'\n'})
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// sortPlacements orders placements by gapped left end, then by read
// length (gap count plus clear range length). Equal keys keep their
// input order.
func sortPlacements(ftab fragmentTable, plcs []placement) {
	readlen := func(plc placement) int {
		n := plc.GapCount + 1
		if frag, ok := ftab[plc.FragmentID]; ok {
			n += frag.ClearRight - frag.ClearLeft
		}
		return n
	}
	sort.SliceStable(plcs, func(i, j int) bool {
		if plcs[i].Left != plcs[j].Left {
			return plcs[i].Left < plcs[j].Left
		}
		return readlen(plcs[i]) < readlen(plcs[j])
	})
}
