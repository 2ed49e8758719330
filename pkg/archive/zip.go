package archive

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"

	errs "github.com/matzehuels/langpatch/pkg/errors"
)

var localHeaderSig = []byte{0x50, 0x4b, 0x03, 0x04}

// Layout of a zip local file header.
const (
	localHeaderLen = 30
	nameLenOff     = 26
)

// zipMembers scans data for local file headers and yields each declared
// file name. A bad candidate is dropped without ending the scan; names that
// are present but not valid UTF-8 are also passed to skip when it is set.
func zipMembers(data []byte, yield func(string) bool, skip func(error)) {
	off := 0
	for {
		i := bytes.Index(data[off:], localHeaderSig)
		if i < 0 {
			return
		}
		start := off + i
		off = start + len(localHeaderSig)

		name, ok := localName(data, start)
		if !ok {
			continue
		}
		if !utf8.ValidString(name) {
			if skip != nil {
				skip(errs.New(errs.ErrCodeUndecodablePath, "member name at offset %d is not valid UTF-8", start))
			}
			continue
		}
		if !yield(name) {
			return
		}
	}
}

// localName reads the raw file name of the local header at start. It fails
// when the header or the name would overrun data or the name is empty.
func localName(data []byte, start int) (string, bool) {
	end := start + localHeaderLen
	if end > len(data) {
		return "", false
	}
	n := int(binary.LittleEndian.Uint16(data[start+nameLenOff : start+nameLenOff+2]))
	if n < 1 || end+n > len(data) {
		return "", false
	}
	return string(data[end : end+n]), true
}
