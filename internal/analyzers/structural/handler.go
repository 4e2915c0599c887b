package structural

import (
	"strings"

	"github.com/anchorscope/anchorscope/pkg/uast/node"
)

// Handler classification signals. A declaration is a contract handler when
// any one of the three matches; evaluation short-circuits in this order.
var (
	// entryAttributes are attribute path segments marking an entry point.
	entryAttributes = map[string]struct{}{
		"instruction": {},
		"handler":     {},
	}

	// handlerVerbs are the name prefixes of conventional handler names.
	handlerVerbs = []string{
		"initialize",
		"update",
		"transfer",
		"swap",
		"deposit",
		"withdraw",
	}

	// handlerNames are exact names treated as handlers when public.
	handlerNames = map[string]struct{}{
		"validate": {},
		"execute":  {},
	}

	// constraintAttributes are account-binding attribute names whose
	// parenthesized argument lists encode validation constraints.
	constraintAttributes = map[string]struct{}{
		"account":  {},
		"accounts": {},
	}
)

const handlerNameSuffix = "_handler"

// contextTypePrefix is the leading identifier of the framework's
// per-invocation request context type.
const contextTypePrefix = "Context"

// IsHandler reports whether a function or method declaration is an
// externally invocable contract entry point. Pure predicate; applied
// identically to free functions and impl-block methods.
func IsHandler(fn *node.Node) bool {
	if fn == nil {
		return false
	}

	return hasEntryAttribute(fn) || hasHandlerName(fn) || hasContextParameter(fn)
}

// hasEntryAttribute checks for an instruction/handler marker attribute.
func hasEntryAttribute(fn *node.Node) bool {
	for _, attr := range fn.ChildrenByType(node.UASTAttribute) {
		if _, ok := entryAttributes[attributePathTail(attr.Prop(node.PropName))]; ok {
			return true
		}
	}

	return false
}

// hasHandlerName checks the naming convention: the declaration must be
// public and its name must match one of the known handler shapes.
func hasHandlerName(fn *node.Node) bool {
	if !fn.HasAnyRole(node.RolePublic) {
		return false
	}

	name := fn.Name()
	if name == "" {
		return false
	}

	if strings.HasSuffix(name, handlerNameSuffix) {
		return true
	}

	if _, ok := handlerNames[name]; ok {
		return true
	}

	for _, verb := range handlerVerbs {
		if strings.HasPrefix(name, verb) {
			return true
		}
	}

	return false
}

// hasContextParameter checks for a parameter typed as (or generic-
// instantiated from) the framework request context type, in bare,
// fully qualified, or prelude-qualified form.
func hasContextParameter(fn *node.Node) bool {
	for _, param := range fn.ChildrenByType(node.UASTParameter) {
		if isContextType(param.Prop(node.PropType)) {
			return true
		}
	}

	return false
}

// isContextType reports whether a declared type's leading path segment
// begins with the Context identifier, after stripping references and
// generic arguments.
func isContextType(declared string) bool {
	s := strings.TrimSpace(declared)
	s = strings.TrimPrefix(s, "&")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "mut ")

	// Leading lifetime on a reference type: &'info Context<...>.
	if strings.HasPrefix(s, "'") {
		if _, rest, ok := strings.Cut(s, " "); ok {
			s = rest
		}
	}

	if idx := strings.IndexByte(s, '<'); idx >= 0 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, contextTypePrefix) {
		return true
	}

	// Qualified forms: the instantiated identifier is the last segment.
	if idx := strings.LastIndex(s, "::"); idx >= 0 {
		return strings.HasPrefix(s[idx+2:], contextTypePrefix)
	}

	return false
}

// ConstraintComplexity counts account-constraint attributes carrying a
// parenthesized argument list on a handler declaration. This is a shallow
// count of constraint-bearing attributes, not a parse of the constraint
// grammar.
func ConstraintComplexity(fn *node.Node) int {
	count := 0

	for _, attr := range fn.ChildrenByType(node.UASTAttribute) {
		name := attributePathTail(attr.Prop(node.PropName))
		if _, ok := constraintAttributes[name]; !ok {
			continue
		}

		if strings.HasPrefix(strings.TrimSpace(attr.Prop(node.PropArgs)), "(") {
			count++
		}
	}

	return count
}

// attributePathTail returns the final segment of an attribute path:
// "anchor_lang::instruction" -> "instruction".
func attributePathTail(path string) string {
	path = strings.TrimSpace(path)
	if idx := strings.LastIndex(path, "::"); idx >= 0 {
		return path[idx+2:]
	}

	return path
}
