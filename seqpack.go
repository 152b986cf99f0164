package main

import (
	"github.com/golang/snappy"
)

// packedSeq is a snappy-compressed nucleotide sequence. A nil
// packedSeq means no sequence was stored.
type packedSeq []byte

var normbase = func() []byte {
	r := make([]byte, 256)
	for i := range r {
		r[i] = 'N'
	}
	for _, b := range []byte("ACGTacgt-") {
		r[int(b)] = b
	}
	return r
}()

// packSeq normalizes unknown symbols to N and compresses the result.
func packSeq(seq []byte) packedSeq {
	norm := make([]byte, len(seq))
	for i, b := range seq {
		norm[i] = normbase[int(b)]
	}
	return snappy.Encode(nil, norm)
}

func (p packedSeq) Unpack() ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return snappy.Decode(nil, p)
}
