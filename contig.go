package main

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// A placement locates one read in the gapped consensus of its contig.
type placement struct {
	FragmentID   string
	Left         int // gapped consensus coordinates, Left <= Right
	Right        int
	Reverse      bool
	GapCount     int
	GapPositions []int
}

type contig struct {
	Accession      string
	Length         int
	PlacementCount int
	Consensus      packedSeq
	Placements     []placement
}

type contigTable map[string]*contig

var contigAccRe = regexp.MustCompile(`^\((\d+)`)

// LoadContigs reads {CCO} messages from an assembly stream. Other
// message types are skipped. A later contig with the same accession
// replaces an earlier one.
func (ctab contigTable) LoadContigs(label string, rdr io.Reader) error {
	rs := newRecordScanner(label, rdr)
	for rs.Scan() {
		tok := rs.Token()
		if tok.kind != tokenOpen {
			continue
		}
		if tok.name != "CCO" {
			if err := rs.SkipBlock(); err != nil {
				return err
			}
			continue
		}
		start := rs.line
		ctg, err := readCCO(rs)
		if err != nil {
			return err
		}
		if ctg == nil {
			log.Warnf("%s line %d: CCO message skipped", label, start)
			continue
		}
		ctab[ctg.Accession] = ctg
		if len(ctab)%10000 == 0 {
			log.Printf("%s: %d contigs", label, len(ctab))
		}
	}
	if err := rs.Err(); err != nil {
		return err
	}
	log.Printf("%s: %d contigs loaded", label, len(ctab))
	return nil
}

// readCCO parses the body of a CCO message. It returns nil (and no
// error) if the message was malformed but could be skipped.
func readCCO(rs *recordScanner) (*contig, error) {
	ctg := &contig{}
	ok := true
	for {
		if !rs.Scan() {
			return nil, rs.eof()
		}
		tok := rs.Token()
		switch tok.kind {
		case tokenClose:
			if ctg.Accession == "" {
				log.Warnf("%s line %d: CCO message has no acc:(NUMBER field", rs.label, rs.line)
				ok = false
			}
			if !ok {
				return nil, nil
			}
			return ctg, nil
		case tokenOpen:
			if tok.name != "MPS" {
				// VAR, UPS and anything else we don't report
				if err := rs.SkipBlock(); err != nil {
					return nil, err
				}
				continue
			}
			plc, err := readMPS(rs)
			if err != nil {
				return nil, err
			}
			if plc != nil {
				ctg.Placements = append(ctg.Placements, *plc)
			}
		case tokenField:
			var err error
			switch tok.name {
			case "acc":
				if ctg.Accession == "" {
					if m := contigAccRe.FindStringSubmatch(tok.value); m != nil {
						ctg.Accession = m[1]
					}
				}
			case "len":
				ctg.Length, err = strconv.Atoi(strings.TrimSpace(tok.value))
			case "npc":
				ctg.PlacementCount, err = strconv.Atoi(strings.TrimSpace(tok.value))
			case "cns":
				var cns string
				cns, err = rs.ReadRaw()
				if err != nil {
					return nil, err
				}
				ctg.Consensus = packSeq([]byte(cns))
			case "qlt":
				if _, err = rs.ReadRaw(); err != nil {
					return nil, err
				}
			}
			if err != nil {
				log.Warnf("%s line %d: %s field: %s", rs.label, rs.line, tok.name, err)
				ok = false
			}
		}
	}
}

// readMPS parses the body of an MPS message. It returns nil (and no
// error) for placements that are not reads or whose gap list does
// not match the declared gap count. The whole block is consumed in
// every non-error case.
func readMPS(rs *recordScanner) (*placement, error) {
	plc := &placement{}
	ok := true
	sawGaps := false
	discard := func(format string, args ...interface{}) {
		log.Debugf("%s line %d: placement discarded: %s", rs.label, rs.line, fmt.Sprintf(format, args...))
		ok = false
	}
	finish := func() *placement {
		if ok && plc.GapCount > 0 && !sawGaps {
			discard("dln:%d without del field", plc.GapCount)
		}
		if !ok {
			return nil
		}
		return plc
	}
	for {
		if !rs.Scan() {
			return nil, rs.eof()
		}
		tok := rs.Token()
		switch tok.kind {
		case tokenClose:
			return finish(), nil
		case tokenOpen:
			if err := rs.SkipBlock(); err != nil {
				return nil, err
			}
		case tokenField:
			switch tok.name {
			case "typ":
				if typ := strings.TrimSpace(tok.value); typ != "R" {
					if err := rs.SkipBlock(); err != nil {
						return nil, err
					}
					log.Debugf("%s line %d: placement type %q ignored", rs.label, rs.line, typ)
					return nil, nil
				}
			case "mid":
				plc.FragmentID = strings.TrimSpace(tok.value)
			case "src":
				if _, err := rs.ReadRaw(); err != nil {
					return nil, err
				}
			case "pos":
				left, right, err := parsePair(tok.value)
				if err != nil {
					discard("pos: %s", err)
					continue
				}
				if left > right {
					left, right = right, left
					plc.Reverse = true
				}
				plc.Left, plc.Right = left, right
			case "dln":
				n, err := strconv.Atoi(strings.TrimSpace(tok.value))
				if err != nil || n < 0 {
					discard("dln: bad gap count %q", tok.value)
					continue
				}
				plc.GapCount = n
			case "del":
				// gap positions run to the end of the block
				lines, err := rs.ReadUntilClose()
				if err != nil {
					return nil, err
				}
				sawGaps = true
				gaps, err := parseInts(append([]string{tok.value}, lines...))
				if err != nil {
					discard("del: %s", err)
				} else if len(gaps) != plc.GapCount {
					discard("dln:%d but %d gap positions", plc.GapCount, len(gaps))
				} else {
					plc.GapPositions = gaps
				}
				return finish(), nil
			}
		}
	}
}

func parsePair(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected L,R, got %q", s)
	}
	left, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	right, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return left, right, nil
}

func parseInts(lines []string) ([]int, error) {
	var ints []int
	for _, line := range lines {
		for _, f := range strings.Fields(line) {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("bad integer %q", f)
			}
			ints = append(ints, n)
		}
	}
	return ints, nil
}
