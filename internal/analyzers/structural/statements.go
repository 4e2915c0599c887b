package structural

import (
	"github.com/anchorscope/anchorscope/pkg/uast/node"
)

// statementCounter walks a whole file tree once, attributing each statement
// node to the innermost enclosing function or method definition. Entering a
// nested definition pushes a fresh counting context; the enclosing
// function's count resumes when it is left.
type statementCounter struct {
	counts map[*node.Node]int
	stack  []*node.Node
}

// CountStatements returns the per-function statement counts for every
// function and method reachable from root. Statements are counted through
// nested control-flow blocks but never across a nested definition boundary.
func CountStatements(root *node.Node) map[*node.Node]int {
	counter := &statementCounter{counts: make(map[*node.Node]int)}
	counter.walk(root)

	return counter.counts
}

func (c *statementCounter) walk(n *node.Node) {
	if n == nil {
		return
	}

	isDefinition := n.HasAnyType(node.UASTFunction, node.UASTMethod)
	if isDefinition {
		c.stack = append(c.stack, n)
		c.counts[n] += 0 // functions with empty bodies still get an entry
	}

	if n.HasAnyRole(node.RoleStatement) && len(c.stack) > 0 {
		c.counts[c.stack[len(c.stack)-1]]++
	}

	for _, child := range n.Children {
		c.walk(child)
	}

	if isDefinition {
		c.stack = c.stack[:len(c.stack)-1]
	}
}
