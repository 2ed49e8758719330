package langs

import (
	"encoding/json"
	"fmt"
	"iter"
	"strings"
)

// Language is a compiled language that needs a toolchain at build time.
type Language uint8

const (
	C Language = 1 << iota
	CXX
	Fortran
)

// All lists every known language in canonical order.
var All = []Language{C, CXX, Fortran}

var extensions = map[string]Language{
	".c":   C,
	".cpp": CXX,
	".cc":  CXX,
	".cxx": CXX,
	".c++": CXX,
	".f":   Fortran,
	".f77": Fortran,
	".f90": Fortran,
	".f95": Fortran,
	".f03": Fortran,
	".f08": Fortran,
}

// Tag returns the dependency name used in generated declarations
// ("c", "cxx", "fortran").
func (l Language) Tag() string {
	switch l {
	case C:
		return "c"
	case CXX:
		return "cxx"
	case Fortran:
		return "fortran"
	}
	return ""
}

// String returns the human-readable language name.
func (l Language) String() string {
	switch l {
	case C:
		return "C"
	case CXX:
		return "C++"
	case Fortran:
		return "Fortran"
	}
	return fmt.Sprintf("Language(%d)", uint8(l))
}

// FromTag returns the language for a declaration tag.
func FromTag(tag string) (Language, bool) {
	for _, l := range All {
		if l.Tag() == tag {
			return l, true
		}
	}
	return 0, false
}

// Detect returns the language of a single member path, if its extension is
// in the table.
func Detect(p string) (Language, bool) {
	l, ok := extensions[ext(p)]
	return l, ok
}

// ext returns the lowercase extension of p. Leading dots of the base name
// never start an extension, so ".c" and "..c" have none. A path ending in
// "/" names a directory and has no extension either.
func ext(p string) string {
	base := p[strings.LastIndexByte(p, '/')+1:]
	stripped := strings.TrimLeft(base, ".")
	i := strings.LastIndexByte(stripped, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(stripped[i:])
}

// Classify reduces a member path sequence to a language set. The whole
// sequence is consumed even when every language has already been seen.
func Classify(paths iter.Seq[string]) Set {
	var s Set
	for p := range paths {
		if l, ok := Detect(p); ok {
			s = s.Add(l)
		}
	}
	return s
}

// Set is an immutable set of languages.
type Set uint8

// Of builds a set from the given languages.
func Of(ls ...Language) Set {
	var s Set
	for _, l := range ls {
		s = s.Add(l)
	}
	return s
}

// Add returns s with l added.
func (s Set) Add(l Language) Set { return s | Set(l) }

// Has reports whether l is in s.
func (s Set) Has(l Language) bool { return s&Set(l) != 0 }

// Without returns the languages of s that are not in other.
func (s Set) Without(other Set) Set { return s &^ other }

// Empty reports whether s has no languages.
func (s Set) Empty() bool { return s == 0 }

// Len returns the number of languages in s.
func (s Set) Len() int {
	n := 0
	for _, l := range All {
		if s.Has(l) {
			n++
		}
	}
	return n
}

// Languages returns the members of s in canonical order.
func (s Set) Languages() []Language {
	var out []Language
	for _, l := range All {
		if s.Has(l) {
			out = append(out, l)
		}
	}
	return out
}

// Tags returns the declaration tags of s in canonical order.
func (s Set) Tags() []string {
	var out []string
	for _, l := range s.Languages() {
		out = append(out, l.Tag())
	}
	return out
}

// String formats s as "{C, C++}".
func (s Set) String() string {
	names := make([]string, 0, 3)
	for _, l := range s.Languages() {
		names = append(names, l.String())
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// MarshalJSON encodes s as its list of tags.
func (s Set) MarshalJSON() ([]byte, error) {
	tags := s.Tags()
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

// UnmarshalJSON decodes a list of tags.
func (s *Set) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	var out Set
	for _, t := range tags {
		l, ok := FromTag(t)
		if !ok {
			return fmt.Errorf("unknown language tag %q", t)
		}
		out = out.Add(l)
	}
	*s = out
	return nil
}
