// Package patch rewrites package definition text by inserting generated
// build dependency declarations.
//
// Insertion is a pure text transformation: the text is split on "\n", a
// blank separator line and the declarations are placed after the anchor
// line, and the lines are joined again. Nothing else in the text changes.
//
// Generated lines carry a trailing "# generated" marker so that later runs
// can recognise them with [Declared] and only add what is missing:
//
//	have := patch.Declared(src)
//	missing := detected.Without(have)
//	out, err := patch.Insert(src, line, patch.Declarations(missing))
package patch
