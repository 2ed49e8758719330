package anchor

import sitter "github.com/smacker/go-tree-sitter"

// Policy decides whether a [Visitor] enters a node's children.
type Policy interface {
	ShouldDescend(n *sitter.Node) bool
}

// PolicyFunc adapts a function to the [Policy] interface.
type PolicyFunc func(n *sitter.Node) bool

// ShouldDescend calls f(n).
func (f PolicyFunc) ShouldDescend(n *sitter.Node) bool { return f(n) }

// DefaultPolicy skips function definitions (decorated or not), lambdas and
// call expressions. Everything else, including nested classes and
// conditional blocks, is entered.
var DefaultPolicy Policy = PolicyFunc(func(n *sitter.Node) bool {
	switch n.Type() {
	case nodeFunction, nodeLambda, nodeCall:
		return false
	case nodeDecorated:
		if def := n.ChildByFieldName("definition"); def != nil && def.Type() == nodeFunction {
			return false
		}
	}
	return true
})

// DescendAll enters every node. It is useful for searching a whole module.
var DescendAll Policy = PolicyFunc(func(*sitter.Node) bool { return true })
