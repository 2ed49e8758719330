package anchor

import sitter "github.com/smacker/go-tree-sitter"

// tree-sitter-python node types.
const (
	nodeClass     = "class_definition"
	nodeFunction  = "function_definition"
	nodeDecorated = "decorated_definition"
	nodeLambda    = "lambda"
	nodeCall      = "call"
	nodeIdent     = "identifier"
)

// Visitor walks named nodes in pre-order while keeping the stack of
// entered ancestors. Visit is called before the policy is consulted; when
// it returns false the node is neither pushed nor entered.
type Visitor struct {
	Policy Policy
	Visit  func(n *sitter.Node, stack []*sitter.Node) bool

	stack []*sitter.Node
}

// Walk visits n and, policy permitting, its named descendants.
func (v *Visitor) Walk(n *sitter.Node) {
	if n == nil {
		return
	}
	if v.Visit != nil && !v.Visit(n, v.stack) {
		return
	}
	if v.Policy != nil && !v.Policy.ShouldDescend(n) {
		return
	}
	v.stack = append(v.stack, n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		v.Walk(n.NamedChild(i))
	}
	v.stack = v.stack[:len(v.stack)-1]
}

// WalkChildren visits the named children of n without pushing n itself.
func (v *Visitor) WalkChildren(n *sitter.Node) {
	if n == nil {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		v.Walk(n.NamedChild(i))
	}
}
