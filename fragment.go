package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// A fragment is one sequencing read. Stubs are created from the
// clear-range table; Name and Seq are filled in from the FRG stream.
type fragment struct {
	ID         string
	Name       string
	Seq        packedSeq
	ClearLeft  int // 0-based, inclusive
	ClearRight int // 0-based, exclusive
}

type fragmentTable map[string]*fragment

// LoadClearRanges builds fragment stubs from a whitespace-separated
// "id left right" table. Malformed rows are logged and skipped.
func (ftab fragmentTable) LoadClearRanges(label string, rdr io.Reader) error {
	scanner := bufio.NewScanner(rdr)
	lineno, rows, bad := 0, 0, 0
	for scanner.Scan() {
		lineno++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		frag, err := parseClearRange(fields)
		if err != nil {
			log.Warnf("%s line %d: %s", label, lineno, err)
			bad++
			continue
		}
		ftab[frag.ID] = frag
		rows++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%s: %s", label, err)
	}
	log.Printf("%s: %d clear ranges loaded, %d rows skipped", label, rows, bad)
	return nil
}

func parseClearRange(fields []string) (*fragment, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("expected 3 columns, found %d", len(fields))
	}
	left, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("bad clear range left %q", fields[1])
	}
	right, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("bad clear range right %q", fields[2])
	}
	if left < 0 || left > right {
		return nil, fmt.Errorf("invalid clear range %d,%d", left, right)
	}
	return &fragment{ID: fields[0], ClearLeft: left, ClearRight: right}, nil
}

// LoadFragments reads {FRG} messages and copies name and sequence
// into the matching clear-range stubs. Fragments without a stub are
// dropped. Other message types are skipped.
func (ftab fragmentTable) LoadFragments(label string, rdr io.Reader) error {
	rs := newRecordScanner(label, rdr)
	enriched, orphans := 0, 0
	for rs.Scan() {
		tok := rs.Token()
		if tok.kind != tokenOpen {
			continue
		}
		if tok.name != "FRG" {
			if err := rs.SkipBlock(); err != nil {
				return err
			}
			continue
		}
		frag, err := readFRG(rs)
		if err != nil {
			return err
		}
		if frag.ID == "" {
			log.Warnf("%s line %d: FRG message has no acc field", label, rs.line)
			continue
		}
		stub, ok := ftab[frag.ID]
		if !ok {
			log.Debugf("%s: fragment %s has no clear range, skipped", label, frag.ID)
			orphans++
			continue
		}
		if frag.Seq != nil && stub.ClearRight > frag.seqlen {
			log.Warnf("%s: fragment %s clear range %d,%d exceeds sequence length %d", label, frag.ID, stub.ClearLeft, stub.ClearRight, frag.seqlen)
			continue
		}
		stub.Name = frag.Name
		stub.Seq = frag.Seq
		enriched++
	}
	if err := rs.Err(); err != nil {
		return err
	}
	log.Printf("%s: %d fragments loaded, %d without clear range", label, enriched, orphans)
	return nil
}

type frgMessage struct {
	fragment
	seqlen int
}

func readFRG(rs *recordScanner) (*frgMessage, error) {
	var frag frgMessage
	accSet := false
	for {
		if !rs.Scan() {
			return nil, rs.eof()
		}
		tok := rs.Token()
		switch tok.kind {
		case tokenClose:
			if frag.Name == "" || frag.Name == "." {
				frag.Name = frag.ID
			}
			return &frag, nil
		case tokenOpen:
			if err := rs.SkipBlock(); err != nil {
				return nil, err
			}
		case tokenField:
			switch tok.name {
			case "acc":
				if !accSet {
					frag.ID = strings.TrimSpace(tok.value)
					accSet = true
				}
			case "src":
				name, err := rs.ReadRaw()
				if err != nil {
					return nil, err
				}
				frag.Name = name
			case "seq":
				seq, err := rs.ReadRaw()
				if err != nil {
					return nil, err
				}
				frag.Seq = packSeq([]byte(seq))
				frag.seqlen = len(seq)
			case "qlt":
				if _, err := rs.ReadRaw(); err != nil {
					return nil, err
				}
			}
		}
	}
}
