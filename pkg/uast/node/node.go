// Package node provides the generic UAST node structure the measurement
// engine consumes, plus traversal and construction helpers. The tree is
// produced by pkg/uast from tree-sitter output; the analyzers never see
// the concrete grammar.
package node

import "slices"

// UAST node type constants.
const (
	UASTFile       = "File"
	UASTModule     = "Module"
	UASTFunction   = "Function"
	UASTMethod     = "Method"
	UASTImpl       = "Impl"
	UASTStruct     = "Struct"
	UASTEnum       = "Enum"
	UASTTrait      = "Trait"
	UASTBlock      = "Block"
	UASTIf         = "If"
	UASTLoop       = "Loop"
	UASTMatch      = "Match"
	UASTCase       = "Case"
	UASTGuard      = "Guard"
	UASTBinaryOp   = "BinaryOp"
	UASTUnaryOp    = "UnaryOp"
	UASTTryExpr    = "TryExpr"
	UASTCall       = "Call"
	UASTMacroCall  = "MacroCall"
	UASTLambda     = "Lambda"
	UASTReturn     = "Return"
	UASTBreak      = "Break"
	UASTContinue   = "Continue"
	UASTVariable   = "Variable"
	UASTAssignment = "Assignment"
	UASTParameter  = "Parameter"
	UASTAttribute  = "Attribute"
	UASTIdentifier = "Identifier"
	UASTLiteral    = "Literal"
	UASTComment    = "Comment"
	UASTSynthetic  = "Synthetic"
)

// Loop kind values stored in Props[PropKind].
const (
	LoopKindWhile    = "while"
	LoopKindFor      = "for"
	LoopKindInfinite = "loop"
)

// Well-known property keys.
const (
	PropName     = "name"
	PropKind     = "kind"
	PropOperator = "operator"
	PropType     = "type"
	PropArgs     = "args"
)

// Role constants for syntactic and semantic labeling.
const (
	RoleFunction    = "Function"
	RoleDeclaration = "Declaration"
	RoleName        = "Name"
	RolePublic      = "Public"
	RoleStatement   = "Statement"
	RoleCondition   = "Condition"
	RoleBody        = "Body"
	RoleBranch      = "Branch"
	RoleLoop        = "Loop"
	RoleParameter   = "Parameter"
	RoleAttribute   = "Attribute"
	RoleOperator    = "Operator"
	RoleType        = "Type"
	RoleLiteral     = "Literal"
	RoleComment     = "Comment"
)

// Role represents a syntactic/semantic label for a node.
type Role string

// Type represents a type label for a node.
type Type string

// Positions holds byte and line/col offsets for a node.
// Line/col fields are 1-based; offsets are byte offsets.
type Positions struct {
	StartLine   uint `json:"start_line,omitempty"`
	StartCol    uint `json:"start_col,omitempty"`
	StartOffset uint `json:"start_offset,omitempty"`
	EndLine     uint `json:"end_line,omitempty"`
	EndCol      uint `json:"end_col,omitempty"`
	EndOffset   uint `json:"end_offset,omitempty"`
}

// NewPositions builds a Positions value from start/end coordinates.
func NewPositions(startLine, startCol, startOffset, endLine, endCol, endOffset uint) *Positions {
	return &Positions{
		StartLine:   startLine,
		StartCol:    startCol,
		StartOffset: startOffset,
		EndLine:     endLine,
		EndCol:      endCol,
		EndOffset:   endOffset,
	}
}

// Node is the canonical UAST node structure.
//
// Fields:
//
//	Type: node type (e.g. "Function", "If").
//	Token: string value for leaf nodes.
//	Roles: semantic/syntactic roles.
//	Pos: source position info (optional).
//	Props: additional properties (operator text, loop kind, ...).
//	Children: child nodes (ordered).
type Node struct {
	Token    string            `json:"token,omitempty"`
	Type     Type              `json:"type,omitempty"`
	Roles    []Role            `json:"roles,omitempty"`
	Pos      *Positions        `json:"pos,omitempty"`
	Props    map[string]string `json:"props,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// New creates a node of the given type.
func New(typ Type) *Node {
	return &Node{Type: typ}
}

// NewWithToken creates a leaf node with the given type and token.
func NewWithToken(typ Type, token string) *Node {
	return &Node{Type: typ, Token: token}
}

// AddChild appends a child node and returns the receiver for chaining.
func (n *Node) AddChild(child *Node) *Node {
	if child != nil {
		n.Children = append(n.Children, child)
	}

	return n
}

// AddRole appends a role if not already present and returns the receiver.
func (n *Node) AddRole(role Role) *Node {
	if !slices.Contains(n.Roles, role) {
		n.Roles = append(n.Roles, role)
	}

	return n
}

// SetProp sets a property value, allocating the map on first use.
func (n *Node) SetProp(key, value string) *Node {
	if n.Props == nil {
		n.Props = make(map[string]string, 4)
	}

	n.Props[key] = value

	return n
}

// Prop returns the property value for key, or "" when absent.
func (n *Node) Prop(key string) string {
	if n == nil || n.Props == nil {
		return ""
	}

	return n.Props[key]
}

// HasAnyType reports whether the node's type is one of the given types.
func (n *Node) HasAnyType(types ...Type) bool {
	if n == nil {
		return false
	}

	return slices.Contains(types, n.Type)
}

// HasAnyRole reports whether the node carries at least one of the given roles.
func (n *Node) HasAnyRole(roles ...Role) bool {
	if n == nil {
		return false
	}

	for _, role := range roles {
		if slices.Contains(n.Roles, role) {
			return true
		}
	}

	return false
}

// HasAllRoles reports whether the node carries every one of the given roles.
func (n *Node) HasAllRoles(roles ...Role) bool {
	if n == nil {
		return false
	}

	for _, role := range roles {
		if !slices.Contains(n.Roles, role) {
			return false
		}
	}

	return true
}

// visitFrame supports iterative pre-order traversal.
type visitFrame struct {
	node *Node
}

// VisitPreOrder visits the node and all descendants depth-first,
// left-to-right. The visit function must not mutate Children of nodes it
// has not yet visited.
func (n *Node) VisitPreOrder(visit func(*Node)) {
	if n == nil {
		return
	}

	stack := make([]visitFrame, 1, 64)
	stack[0] = visitFrame{node: n}

	for len(stack) > 0 {
		last := len(stack) - 1
		current := stack[last].node
		stack = stack[:last]

		visit(current)

		// Push children in reverse so the leftmost child pops first.
		for idx := len(current.Children) - 1; idx >= 0; idx-- {
			if current.Children[idx] != nil {
				stack = append(stack, visitFrame{node: current.Children[idx]})
			}
		}
	}
}

// FindAllByType returns every descendant (including the receiver) whose type
// is one of the given types, in pre-order.
func (n *Node) FindAllByType(types ...Type) []*Node {
	var found []*Node

	n.VisitPreOrder(func(current *Node) {
		if current.HasAnyType(types...) {
			found = append(found, current)
		}
	})

	return found
}

// ChildByRole returns the first direct child carrying the given role, or nil.
func (n *Node) ChildByRole(role Role) *Node {
	if n == nil {
		return nil
	}

	for _, child := range n.Children {
		if child.HasAnyRole(role) {
			return child
		}
	}

	return nil
}

// ChildrenByType returns the direct children of the given type, in order.
func (n *Node) ChildrenByType(typ Type) []*Node {
	if n == nil {
		return nil
	}

	var out []*Node

	for _, child := range n.Children {
		if child != nil && child.Type == typ {
			out = append(out, child)
		}
	}

	return out
}

// Name returns the node's declared name: the "name" prop when set,
// otherwise the token of the first child with RoleName.
func (n *Node) Name() string {
	if n == nil {
		return ""
	}

	if name := n.Prop(PropName); name != "" {
		return name
	}

	if nameNode := n.ChildByRole(RoleName); nameNode != nil {
		return nameNode.Token
	}

	return ""
}
