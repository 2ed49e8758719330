package patch

import (
	"fmt"
	"regexp"
	"strings"

	errs "github.com/matzehuels/langpatch/pkg/errors"
	"github.com/matzehuels/langpatch/pkg/langs"
)

// Indent is the indentation of a generated line inside a class body.
const Indent = "    "

// declFormat must stay byte-compatible with tooling that scans for it.
const declFormat = `depends_on("%s", type="build")  # generated`

var declaredRe = regexp.MustCompile(`(?m)^[ \t]*depends_on\("([a-z]+)",[ \t]*type="build"\)[ \t]*#[ \t]*generated[ \t]*$`)

// Declaration returns the generated line for a single language.
func Declaration(l langs.Language) string {
	return Indent + fmt.Sprintf(declFormat, l.Tag())
}

// Declarations returns one generated line per language in s, in canonical
// order (C, C++, Fortran).
func Declarations(s langs.Set) []string {
	out := make([]string, 0, s.Len())
	for _, l := range s.Languages() {
		out = append(out, Declaration(l))
	}
	return out
}

// Declared returns the languages that already have a generated declaration
// in src.
func Declared(src string) langs.Set {
	var s langs.Set
	for _, m := range declaredRe.FindAllStringSubmatch(src, -1) {
		if l, ok := langs.FromTag(m[1]); ok {
			s = s.Add(l)
		}
	}
	return s
}

// LineCount returns the number of lines in src. A trailing newline does not
// start another line.
func LineCount(src string) int {
	if src == "" {
		return 0
	}
	n := strings.Count(src, "\n")
	if !strings.HasSuffix(src, "\n") {
		n++
	}
	return n
}

// Insert places a blank line followed by decls, verbatim, immediately after
// the 1-based line. Line 0 inserts at the top of the text.
//
// It fails with LINE_OUT_OF_RANGE when line is negative or beyond the
// text's line count.
func Insert(src string, line int, decls []string) (string, error) {
	if line < 0 || line > LineCount(src) {
		return "", errs.New(errs.ErrCodeLineOutOfRange,
			"line %d out of range (text has %d lines)", line, LineCount(src))
	}

	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines)+len(decls)+1)
	out = append(out, lines[:line]...)
	out = append(out, "")
	out = append(out, decls...)
	out = append(out, lines[line:]...)
	return strings.Join(out, "\n"), nil
}
