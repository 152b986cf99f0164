// Package hgvs describes differences between a reference sequence
// and a read using HGVS-style notation.
package hgvs

import (
	"fmt"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Variant is one difference. Position is 1-based in the reference.
type Variant struct {
	Position int
	Ref      string
	New      string
}

func (v *Variant) String() string {
	switch {
	case len(v.New) == 0 && len(v.Ref) == 1:
		return fmt.Sprintf("%ddel", v.Position)
	case len(v.New) == 0:
		return fmt.Sprintf("%d_%ddel", v.Position, v.Position+len(v.Ref)-1)
	case len(v.Ref) == 1 && len(v.New) == 1:
		return fmt.Sprintf("%d%s>%s", v.Position, v.Ref, v.New)
	case len(v.Ref) == 0:
		return fmt.Sprintf("%d_%dins%s", v.Position-1, v.Position, v.New)
	case len(v.Ref) == 1:
		return fmt.Sprintf("%ddelins%s", v.Position, v.New)
	default:
		return fmt.Sprintf("%d_%ddelins%s", v.Position, v.Position+len(v.Ref)-1, v.New)
	}
}

// Diff returns the variants that turn ref into alt. If timeout is
// positive and the diff takes longer, the result is a coarser diff
// and timedOut is true.
func Diff(ref, alt string, timeout time.Duration) (variants []Variant, timedOut bool) {
	if ref == alt {
		return nil, false
	}
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	dmp := diffmatchpatch.New()
	diffs := cleanup(dmp.DiffCleanupEfficiency(dmp.DiffBisect(ref, alt, deadline)))
	if timeout > 0 && time.Now().After(deadline) {
		timedOut = true
	}
	pos := 1
	for i := 0; i < len(diffs); i++ {
		switch diffs[i].Type {
		case diffmatchpatch.DiffEqual:
			pos += len(diffs[i].Text)
		case diffmatchpatch.DiffDelete:
			v := Variant{Position: pos, Ref: diffs[i].Text}
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
				v.New = diffs[i+1].Text
				i++
			}
			variants = append(variants, v)
			pos += len(v.Ref)
		case diffmatchpatch.DiffInsert:
			v := Variant{Position: pos, New: diffs[i].Text}
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffDelete {
				v.Ref = diffs[i+1].Text
				i++
			}
			variants = append(variants, v)
			pos += len(v.Ref)
		}
	}
	return
}

// cleanup merges adjacent diffs of the same type.
func cleanup(in []diffmatchpatch.Diff) (out []diffmatchpatch.Diff) {
	for i := 0; i < len(in); i++ {
		d := in[i]
		for i < len(in)-1 && in[i].Type == in[i+1].Type {
			d.Text += in[i+1].Text
			i++
		}
		out = append(out, d)
	}
	return
}
