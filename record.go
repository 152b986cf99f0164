package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenOpen
	tokenClose
	tokenField
)

// A token is one classified line of an assembler message stream.
type token struct {
	kind  tokenKind
	name  string // block name (tokenOpen) or field key (tokenField)
	value string // field value (tokenField) or the whole line (tokenText)
}

var (
	errUnexpectedEOF = errors.New("unexpected end of input inside block")

	openRe  = regexp.MustCompile(`^\{(\w+)$`)
	fieldRe = regexp.MustCompile(`^([A-Za-z]{3}):(.*)$`)
)

func classifyLine(line string) token {
	if line == "}" {
		return token{kind: tokenClose}
	} else if m := openRe.FindStringSubmatch(line); m != nil {
		return token{kind: tokenOpen, name: m[1]}
	} else if m := fieldRe.FindStringSubmatch(line); m != nil {
		return token{kind: tokenField, name: m[1], value: m[2]}
	}
	return token{kind: tokenText, value: line}
}

// recordScanner reads a nested {NAME ... } message stream one line
// at a time. It does not track nesting: callers consume (or skip)
// the content of a block before resuming at the sibling level.
type recordScanner struct {
	label   string
	scanner *bufio.Scanner
	line    int
	tok     token
	err     error
}

func newRecordScanner(label string, rdr io.Reader) *recordScanner {
	scanner := bufio.NewScanner(rdr)
	scanner.Buffer(nil, 64*1024*1024)
	return &recordScanner{label: label, scanner: scanner}
}

func (rs *recordScanner) readLine() (string, bool) {
	if !rs.scanner.Scan() {
		return "", false
	}
	rs.line++
	return strings.TrimRight(rs.scanner.Text(), "\r"), true
}

// Scan advances to the next token. It returns false at end of input
// or on a read error (see Err).
func (rs *recordScanner) Scan() bool {
	line, ok := rs.readLine()
	if !ok {
		return false
	}
	rs.tok = classifyLine(line)
	return true
}

func (rs *recordScanner) Token() token {
	return rs.tok
}

func (rs *recordScanner) Err() error {
	if rs.err != nil {
		return rs.err
	}
	if err := rs.scanner.Err(); err != nil {
		return fmt.Errorf("%s: %s", rs.label, err)
	}
	return nil
}

// errorf returns an error annotated with the current input position.
func (rs *recordScanner) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%s line %d: %s", rs.label, rs.line, fmt.Sprintf(format, args...))
}

func (rs *recordScanner) eof() error {
	if err := rs.scanner.Err(); err != nil {
		rs.err = fmt.Errorf("%s: %s", rs.label, err)
	} else {
		rs.err = fmt.Errorf("%s line %d: %w", rs.label, rs.line, errUnexpectedEOF)
	}
	return rs.err
}

// ReadRaw reads lines verbatim up to (not including) a line
// consisting of a single ".", and returns them concatenated.
func (rs *recordScanner) ReadRaw() (string, error) {
	var buf strings.Builder
	for {
		line, ok := rs.readLine()
		if !ok {
			return "", rs.eof()
		}
		if line == "." {
			return buf.String(), nil
		}
		buf.WriteString(line)
	}
}

// ReadUntilClose returns the raw lines up to the "}" that closes the
// current block. The closing line is consumed.
func (rs *recordScanner) ReadUntilClose() ([]string, error) {
	var lines []string
	for {
		line, ok := rs.readLine()
		if !ok {
			return nil, rs.eof()
		}
		if line == "}" {
			return lines, nil
		}
		lines = append(lines, line)
	}
}

// SkipBlock discards everything up to the "}" matching an open
// token that has already been consumed, including nested blocks.
func (rs *recordScanner) SkipBlock() error {
	depth := 1
	for {
		line, ok := rs.readLine()
		if !ok {
			return rs.eof()
		}
		switch classifyLine(line).kind {
		case tokenClose:
			depth--
		case tokenOpen:
			depth++
		}
		if depth == 0 {
			return nil
		}
	}
}
