package archive

import (
	"bytes"
	"fmt"
	"iter"
	"os"

	errs "github.com/matzehuels/langpatch/pkg/errors"
)

// ErrNotContainer is returned when a buffer is neither a tar nor a zip container.
var ErrNotContainer = errs.New(errs.ErrCodeFormatUnrecognized, "not a tar or zip container")

// Format identifies the container family.
type Format int

const (
	FormatTar Format = iota + 1
	FormatZip
)

// String returns "tar" or "zip".
func (f Format) String() string {
	switch f {
	case FormatTar:
		return "tar"
	case FormatZip:
		return "zip"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Container is a recognised archive held in memory.
type Container struct {
	Format      Format
	Compression Compression

	// OnSkip, when set, receives an UNDECODABLE_PATH error for every zip
	// member whose name is dropped because it is not valid text.
	OnSkip func(error)

	data []byte
}

// Inspect recognises the container family of data.
// It returns ErrNotContainer if data is neither tar nor zip.
func Inspect(data []byte) (*Container, error) {
	if comp, ok := sniffTar(data); ok {
		return &Container{Format: FormatTar, Compression: comp, data: data}, nil
	}
	if bytes.HasPrefix(data, zipPrefix) {
		return &Container{Format: FormatZip, data: data}, nil
	}
	return nil, ErrNotContainer
}

// InspectFile reads the file at path and calls [Inspect].
func InspectFile(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return Inspect(data)
}

// Members returns the member paths of the container in archive order.
// The sequence is lazy, can be iterated more than once, and stops quietly
// at the first unreadable tar header.
func (c *Container) Members() iter.Seq[string] {
	return func(yield func(string) bool) {
		switch c.Format {
		case FormatTar:
			tarMembers(c.data, c.Compression, yield)
		case FormatZip:
			zipMembers(c.data, yield, c.OnSkip)
		}
	}
}

// Size returns the number of bytes held by the container.
func (c *Container) Size() int { return len(c.data) }
