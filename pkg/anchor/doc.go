// Package anchor finds where generated declarations belong in a package
// definition.
//
// A package definition is a Python class whose body declares its versions
// with calls such as version("1.2.3", sha256="..."). [Locate] parses the
// definition with tree-sitter, finds the class with the requested name and
// walks its body in pre-order, left to right. Every version(...) call
// overwrites the remembered anchor with the statements enclosing it, so the
// final anchor belongs to the lexically last call. The returned line is the
// end line of the outermost remembered statement: a call directly in the
// class body anchors on itself, a call inside an if/with block anchors on
// the end of that whole block.
//
// Which subtrees are entered is decided by a [Policy]. [DefaultPolicy]
// treats function bodies, lambdas and call arguments as opaque, so an
// anchor can never land inside a method.
//
// Note: "last" means last in source order, not newest version. A class
// whose version table is not sorted anchors after whichever call is written
// last.
package anchor
