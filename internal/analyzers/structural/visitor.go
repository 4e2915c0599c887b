package structural

import (
	"github.com/anchorscope/anchorscope/pkg/uast/node"
)

// Complexity holds the two path measures for one function body.
type Complexity struct {
	Cyclomatic int
	Cognitive  int
}

// complexityVisitor walks one function body. Nesting depth is passed by
// value to each recursive call, so an unbalanced push/pop cannot exist.
type complexityVisitor struct {
	complexity int
	maxDepth   int
}

// Measure computes cyclomatic complexity and maximum branching nesting
// depth for one function or method. State is fresh per call: nothing leaks
// between sibling functions or into nested definitions, which are skipped
// and measured on their own.
func Measure(fn *node.Node) Complexity {
	v := &complexityVisitor{complexity: 1}

	for _, child := range fn.Children {
		v.walk(child, 0)
	}

	return Complexity{Cyclomatic: v.complexity, Cognitive: v.maxDepth}
}

func (v *complexityVisitor) walk(n *node.Node, depth int) {
	if n == nil {
		return
	}

	switch n.Type {
	case node.UASTFunction, node.UASTMethod:
		// Nested definitions measure independently.
		return
	case node.UASTIf, node.UASTLoop:
		v.complexity++
		v.descend(n, depth)

		return
	case node.UASTMatch:
		v.addMatchComplexity(n)
		v.descend(n, depth)

		return
	case node.UASTBinaryOp:
		if isLogicalOperator(n.Prop(node.PropOperator)) {
			v.complexity++
		}
	case node.UASTTryExpr:
		v.complexity++
	}

	for _, child := range n.Children {
		v.walk(child, depth)
	}
}

// descend visits all children one nesting level deeper. The maximum is
// recorded on entry, before the nested content is visited.
func (v *complexityVisitor) descend(n *node.Node, depth int) {
	inner := depth + 1
	if inner > v.maxDepth {
		v.maxDepth = inner
	}

	for _, child := range n.Children {
		v.walk(child, inner)
	}
}

// addMatchComplexity applies the multi-way branch rule: N arms contribute
// N-1 decision points, and each guarded arm contributes one more.
func (v *complexityVisitor) addMatchComplexity(match *node.Node) {
	arms := match.ChildrenByType(node.UASTCase)
	if len(arms) >= 1 {
		v.complexity += len(arms) - 1
	}

	for _, arm := range arms {
		v.complexity += len(arm.ChildrenByType(node.UASTGuard))
	}
}

func isLogicalOperator(op string) bool {
	return op == "&&" || op == "||"
}
