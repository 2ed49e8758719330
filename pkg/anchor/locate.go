package anchor

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	errs "github.com/matzehuels/langpatch/pkg/errors"
)

// versionCallee is the directive whose calls mark version declarations.
const versionCallee = "version"

// Span is the 1-based line range of a syntax node.
type Span struct {
	Kind      string
	StartLine int
	EndLine   int
}

// Anchor is the result of a successful search.
type Anchor struct {
	// Line is the 1-based line after which declarations are inserted.
	Line int
	// Stack holds the statements enclosing the last version call,
	// outermost first. Stack[0] determines Line.
	Stack []Span
	// Versions counts the version calls seen in the definition body.
	Versions int
}

// Locator finds anchors using a configurable traversal policy.
type Locator struct {
	Policy Policy
}

// Locate returns the insertion line for the definition named class in src
// using [DefaultPolicy].
//
// Errors carry one of three codes: SYNTAX_ERROR when src does not parse,
// DEFINITION_NOT_FOUND when no class named class exists, and
// ANCHOR_NOT_FOUND when the class body has no version call outside of
// opaque subtrees.
func Locate(src []byte, class string) (int, error) {
	a, err := (&Locator{Policy: DefaultPolicy}).Locate(src, class)
	if err != nil {
		return 0, err
	}
	return a.Line, nil
}

// Locate runs the search with l's policy.
func (l *Locator) Locate(src []byte, class string) (*Anchor, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSyntax, err, "parse definition")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, errs.New(errs.ErrCodeSyntax, "definition source has syntax errors")
	}

	def := FindClass(root, src, class)
	if def == nil {
		return nil, errs.New(errs.ErrCodeDefinitionNotFound, "class %s not found", class)
	}
	return l.anchorIn(def, src, class)
}

// FindClass returns the first class definition named name in pre-order,
// searching nested scopes of every kind.
func FindClass(root *sitter.Node, src []byte, name string) *sitter.Node {
	var found *sitter.Node
	v := &Visitor{
		Policy: DescendAll,
		Visit: func(n *sitter.Node, _ []*sitter.Node) bool {
			if found != nil {
				return false
			}
			if n.Type() == nodeClass {
				if id := n.ChildByFieldName("name"); id != nil && id.Content(src) == name {
					found = n
					return false
				}
			}
			return true
		},
	}
	v.Walk(root)
	return found
}

func (l *Locator) anchorIn(def *sitter.Node, src []byte, class string) (*Anchor, error) {
	policy := l.Policy
	if policy == nil {
		policy = DefaultPolicy
	}

	var last []*sitter.Node
	count := 0
	v := &Visitor{
		Policy: policy,
		Visit: func(n *sitter.Node, stack []*sitter.Node) bool {
			if isVersionCall(n, src) {
				last = append(last[:0], stack...)
				count++
				return false
			}
			return true
		},
	}
	v.WalkChildren(def.ChildByFieldName("body"))

	if len(last) == 0 {
		return nil, errs.New(errs.ErrCodeAnchorNotFound, "no version() call in class %s", class)
	}

	stack := make([]Span, len(last))
	for i, n := range last {
		stack[i] = spanOf(n)
	}
	return &Anchor{Line: stack[0].EndLine, Stack: stack, Versions: count}, nil
}

func isVersionCall(n *sitter.Node, src []byte) bool {
	if n.Type() != nodeCall {
		return false
	}
	fn := n.ChildByFieldName("function")
	return fn != nil && fn.Type() == nodeIdent && fn.Content(src) == versionCallee
}

// spanOf converts tree-sitter's 0-based rows to 1-based lines. A node that
// ends at column 0 ends on the previous line.
func spanOf(n *sitter.Node) Span {
	start, end := n.StartPoint(), n.EndPoint()
	endLine := int(end.Row) + 1
	if end.Column == 0 && end.Row > start.Row {
		endLine--
	}
	return Span{Kind: n.Type(), StartLine: int(start.Row) + 1, EndLine: endLine}
}
