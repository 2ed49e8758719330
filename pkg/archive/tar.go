package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
)

const blockSize = 512

// checksum field of a tar header block.
const (
	chksumOff = 148
	chksumLen = 8
)

// sniffTar reports whether data holds a tar stream, possibly compressed,
// by validating the checksum of its first header block.
func sniffTar(data []byte) (Compression, bool) {
	comp := sniffCompression(data)
	r, closeFn, err := comp.open(bytes.NewReader(data))
	if err != nil {
		return CompressionNone, false
	}
	defer closeFn()

	block := make([]byte, blockSize)
	if _, err := io.ReadFull(r, block); err != nil {
		return CompressionNone, false
	}
	return comp, validHeader(block)
}

// validHeader reports whether block is a tar header with a correct checksum.
// Both the unsigned and the historic signed byte sums are accepted.
// An all-zero block marks the end of an archive, so an archive that starts
// with one is empty and not reported as tar.
func validHeader(block []byte) bool {
	if len(block) < blockSize || isZero(block) {
		return false
	}
	want, ok := parseOctal(block[chksumOff : chksumOff+chksumLen])
	if !ok {
		return false
	}
	var unsigned, signed int64
	for i, c := range block[:blockSize] {
		if i >= chksumOff && i < chksumOff+chksumLen {
			c = ' '
		}
		unsigned += int64(c)
		signed += int64(int8(c))
	}
	return want == unsigned || want == signed
}

func parseOctal(field []byte) (int64, bool) {
	s := strings.Trim(string(field), " \x00")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 8, 64)
	return n, err == nil
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// tarMembers yields the names of regular-file members. Any read error,
// including a truncated stream, ends the sequence without reporting it.
func tarMembers(data []byte, comp Compression, yield func(string) bool) {
	r, closeFn, err := comp.open(bytes.NewReader(data))
	if err != nil {
		return
	}
	defer closeFn()

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err != nil && !(errors.Is(err, tar.ErrInsecurePath) && hdr != nil) {
			return
		}
		if !isRegular(hdr.Typeflag) {
			continue
		}
		if !yield(hdr.Name) {
			return
		}
	}
}

func isRegular(flag byte) bool {
	switch flag {
	case tar.TypeReg, tar.TypeCont, tar.TypeGNUSparse:
		return true
	}
	return false
}
