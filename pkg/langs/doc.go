// Package langs reduces the member paths of a source archive to the set of
// compiled languages it contains.
//
// Detection is purely extension based, using a fixed table:
//
//	.c                                 → C
//	.cpp .cc .cxx .c++                 → C++
//	.f .f77 .f90 .f95 .f03 .f08        → Fortran
//
// Extensions are compared case-insensitively. A [Set] always reports its
// members in canonical order (C, C++, Fortran). An empty set carries no
// information: callers must not record it as "checked, nothing found".
//
// # Usage
//
//	c, err := archive.InspectFile(path)
//	if err != nil {
//	    return err
//	}
//	set := langs.Classify(c.Members())
//	for _, l := range set.Languages() {
//	    fmt.Println(l.Tag())
//	}
package langs
