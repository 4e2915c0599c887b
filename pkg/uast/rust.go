package uast

import (
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/anchorscope/anchorscope/pkg/uast/node"
)

// Tree-sitter Rust grammar node type names handled by the converter.
const (
	tsSourceFile     = "source_file"
	tsFunctionItem   = "function_item"
	tsImplItem       = "impl_item"
	tsModItem        = "mod_item"
	tsStructItem     = "struct_item"
	tsEnumItem       = "enum_item"
	tsTraitItem      = "trait_item"
	tsConstItem      = "const_item"
	tsStaticItem     = "static_item"
	tsBlock          = "block"
	tsDeclList       = "declaration_list"
	tsIfExpr         = "if_expression"
	tsElseClause     = "else_clause"
	tsWhileExpr      = "while_expression"
	tsForExpr        = "for_expression"
	tsLoopExpr       = "loop_expression"
	tsMatchExpr      = "match_expression"
	tsMatchBlock     = "match_block"
	tsMatchArm       = "match_arm"
	tsMatchPattern   = "match_pattern"
	tsBinaryExpr     = "binary_expression"
	tsUnaryExpr      = "unary_expression"
	tsRefExpr        = "reference_expression"
	tsTryExpr        = "try_expression"
	tsAwaitExpr      = "await_expression"
	tsCallExpr       = "call_expression"
	tsMacroInvoke    = "macro_invocation"
	tsClosureExpr    = "closure_expression"
	tsLetDecl        = "let_declaration"
	tsExprStatement  = "expression_statement"
	tsEmptyStatement = "empty_statement"
	tsAssignExpr     = "assignment_expression"
	tsCompoundAssign = "compound_assignment_expr"
	tsReturnExpr     = "return_expression"
	tsBreakExpr      = "break_expression"
	tsContinueExpr   = "continue_expression"
	tsAttributeItem  = "attribute_item"
	tsInnerAttribute = "inner_attribute_item"
	tsAttribute      = "attribute"
	tsTokenTree      = "token_tree"
	tsVisibilityMod  = "visibility_modifier"
	tsLineComment    = "line_comment"
	tsBlockComment   = "block_comment"
	tsParameter      = "parameter"
	tsSelfParameter  = "self_parameter"
)

// Grammar field names.
const (
	fieldName        = "name"
	fieldBody        = "body"
	fieldCondition   = "condition"
	fieldConsequence = "consequence"
	fieldAlternative = "alternative"
	fieldValue       = "value"
	fieldPattern     = "pattern"
	fieldGuard       = "guard"
	fieldOperator    = "operator"
	fieldLeft        = "left"
	fieldRight       = "right"
	fieldType        = "type"
	fieldParameters  = "parameters"
)

// converter walks a tree-sitter CST and produces the canonical UAST.
// One converter is created per Parse call; it is not reused.
type converter struct {
	source []byte
}

// text returns the source text covered by a CST node.
func (c *converter) text(ts sitter.Node) string {
	start, end := ts.StartByte(), ts.EndByte()
	if end <= uint(len(c.source)) {
		return string(c.source[start:end])
	}

	return ""
}

// positions maps a CST node's span onto UAST positions (1-based line/col).
func (c *converter) positions(ts sitter.Node) *node.Positions {
	start, end := ts.StartPoint(), ts.EndPoint()

	return node.NewPositions(
		uint(start.Row)+1,
		uint(start.Column)+1,
		uint(ts.StartByte()),
		uint(end.Row)+1,
		uint(end.Column)+1,
		uint(ts.EndByte()),
	)
}

func (c *converter) convertFile(root sitter.Node) *node.Node {
	file := node.New(node.UASTFile)
	file.Pos = c.positions(root)
	file.Children = c.convertChildren(root, false, false)

	return file
}

// convertChildren converts the named children of a CST node. Outer
// attributes bind to the declaration or statement that follows them, so
// pending attribute nodes are prepended to the next converted child.
// When stmtPos is set, converted children other than nested definitions
// gain RoleStatement.
func (c *converter) convertChildren(ts sitter.Node, inImpl, stmtPos bool) []*node.Node {
	count := ts.NamedChildCount()
	children := make([]*node.Node, 0, count)

	var pending []*node.Node

	for idx := range count {
		child := ts.NamedChild(idx)

		switch child.Type() {
		case tsLineComment, tsBlockComment:
			continue
		case tsAttributeItem, tsInnerAttribute:
			if attr := c.convertAttribute(child); attr != nil {
				pending = append(pending, attr)
			}

			continue
		}

		converted := c.convert(child, inImpl)
		if converted == nil {
			continue
		}

		if len(pending) > 0 {
			converted.Children = append(pending, converted.Children...)
			pending = nil
		}

		if stmtPos && !converted.HasAnyType(node.UASTFunction, node.UASTMethod) {
			converted.AddRole(node.RoleStatement)
		}

		children = append(children, converted)
	}

	// Trailing attributes with nothing to bind to stay as siblings.
	children = append(children, pending...)

	return children
}

// convert maps a single CST node to its UAST counterpart. Returns nil for
// nodes with no UAST representation.
func (c *converter) convert(ts sitter.Node, inImpl bool) *node.Node {
	switch ts.Type() {
	case tsFunctionItem:
		return c.convertFunction(ts, inImpl)
	case tsImplItem:
		return c.convertImpl(ts)
	case tsModItem:
		return c.convertNamed(ts, node.UASTModule)
	case tsStructItem:
		return c.convertNamed(ts, node.UASTStruct)
	case tsEnumItem:
		return c.convertNamed(ts, node.UASTEnum)
	case tsTraitItem:
		return c.convertNamed(ts, node.UASTTrait)
	case tsConstItem, tsStaticItem, tsLetDecl:
		return c.convertVariable(ts)
	case tsBlock:
		return c.convertBlock(ts)
	case tsIfExpr:
		return c.convertIf(ts)
	case tsWhileExpr:
		return c.convertLoop(ts, node.LoopKindWhile)
	case tsForExpr:
		return c.convertLoop(ts, node.LoopKindFor)
	case tsLoopExpr:
		return c.convertLoop(ts, node.LoopKindInfinite)
	case tsMatchExpr:
		return c.convertMatch(ts)
	case tsBinaryExpr:
		return c.convertBinary(ts)
	case tsUnaryExpr, tsRefExpr:
		return c.passthrough(ts, node.UASTUnaryOp)
	case tsTryExpr:
		return c.passthrough(ts, node.UASTTryExpr)
	case tsCallExpr:
		return c.passthrough(ts, node.UASTCall)
	case tsMacroInvoke:
		return c.convertMacro(ts)
	case tsClosureExpr:
		return c.passthrough(ts, node.UASTLambda)
	case tsExprStatement:
		return c.unwrapStatement(ts, inImpl)
	case tsEmptyStatement:
		return nil
	case tsAssignExpr, tsCompoundAssign:
		return c.passthrough(ts, node.UASTAssignment)
	case tsReturnExpr:
		return c.passthrough(ts, node.UASTReturn)
	case tsBreakExpr:
		return c.passthrough(ts, node.UASTBreak)
	case tsContinueExpr:
		return c.passthrough(ts, node.UASTContinue)
	case tsLineComment, tsBlockComment:
		return nil
	}

	return c.convertDefault(ts)
}

// convertDefault handles identifiers, literals, and any construct without a
// dedicated mapping. Unknown inner nodes keep their subtree visible so the
// visitors still reach branching constructs nested inside them.
func (c *converter) convertDefault(ts sitter.Node) *node.Node {
	typ := ts.Type()

	if strings.HasSuffix(typ, "_literal") || typ == "string_literal" {
		lit := node.NewWithToken(node.UASTLiteral, c.text(ts))
		lit.AddRole(node.RoleLiteral)
		lit.Pos = c.positions(ts)

		return lit
	}

	if strings.HasSuffix(typ, "identifier") || typ == "self" || typ == "metavariable" {
		ident := node.NewWithToken(node.UASTIdentifier, c.text(ts))
		ident.Pos = c.positions(ts)

		return ident
	}

	out := node.New(node.UASTSynthetic)
	out.SetProp(node.PropKind, typ)
	out.Pos = c.positions(ts)

	if ts.NamedChildCount() == 0 {
		out.Token = c.text(ts)

		return out
	}

	out.Children = c.convertChildren(ts, false, false)

	return out
}

func (c *converter) convertFunction(ts sitter.Node, inImpl bool) *node.Node {
	typ := node.Type(node.UASTFunction)
	if inImpl {
		typ = node.UASTMethod
	}

	fn := node.New(typ)
	fn.AddRole(node.RoleFunction)
	fn.AddRole(node.RoleDeclaration)
	fn.Pos = c.positions(ts)

	if c.hasVisibilityModifier(ts) {
		fn.AddRole(node.RolePublic)
	}

	if name := ts.ChildByFieldName(fieldName); !name.IsNull() {
		fn.SetProp(node.PropName, c.text(name))

		ident := node.NewWithToken(node.UASTIdentifier, c.text(name))
		ident.AddRole(node.RoleName)
		fn.AddChild(ident)
	}

	if params := ts.ChildByFieldName(fieldParameters); !params.IsNull() {
		c.convertParameters(fn, params)
	}

	if body := ts.ChildByFieldName(fieldBody); !body.IsNull() {
		block := c.convertBlock(body)
		block.AddRole(node.RoleBody)
		fn.AddChild(block)
	}

	return fn
}

// hasVisibilityModifier reports whether a declaration carries `pub` (in any
// restricted form: pub, pub(crate), pub(super), ...).
func (c *converter) hasVisibilityModifier(ts sitter.Node) bool {
	for idx := range ts.NamedChildCount() {
		child := ts.NamedChild(idx)
		if child.Type() == tsVisibilityMod {
			return strings.HasPrefix(c.text(child), "pub")
		}
	}

	return false
}

func (c *converter) convertParameters(fn *node.Node, params sitter.Node) {
	for idx := range params.NamedChildCount() {
		child := params.NamedChild(idx)

		switch child.Type() {
		case tsParameter:
			param := node.New(node.UASTParameter)
			param.AddRole(node.RoleParameter)
			param.Pos = c.positions(child)

			if pattern := child.ChildByFieldName(fieldPattern); !pattern.IsNull() {
				param.SetProp(node.PropName, c.text(pattern))
			}

			if paramType := child.ChildByFieldName(fieldType); !paramType.IsNull() {
				param.SetProp(node.PropType, c.text(paramType))
			}

			fn.AddChild(param)
		case tsSelfParameter:
			param := node.New(node.UASTParameter)
			param.AddRole(node.RoleParameter)
			param.SetProp(node.PropName, "self")
			fn.AddChild(param)
		}
	}
}

func (c *converter) convertImpl(ts sitter.Node) *node.Node {
	impl := node.New(node.UASTImpl)
	impl.Pos = c.positions(ts)

	if implType := ts.ChildByFieldName(fieldType); !implType.IsNull() {
		impl.SetProp(node.PropName, c.text(implType))
	}

	if body := ts.ChildByFieldName(fieldBody); !body.IsNull() {
		impl.Children = append(impl.Children, c.convertChildren(body, true, false)...)
	}

	return impl
}

func (c *converter) convertNamed(ts sitter.Node, typ node.Type) *node.Node {
	out := node.New(typ)
	out.AddRole(node.RoleDeclaration)
	out.Pos = c.positions(ts)

	if c.hasVisibilityModifier(ts) {
		out.AddRole(node.RolePublic)
	}

	if name := ts.ChildByFieldName(fieldName); !name.IsNull() {
		out.SetProp(node.PropName, c.text(name))
	}

	if body := ts.ChildByFieldName(fieldBody); !body.IsNull() {
		out.Children = append(out.Children, c.convertChildren(body, false, false)...)
	}

	return out
}

func (c *converter) convertVariable(ts sitter.Node) *node.Node {
	out := node.New(node.UASTVariable)
	out.Pos = c.positions(ts)

	if name := ts.ChildByFieldName(fieldName); !name.IsNull() {
		out.SetProp(node.PropName, c.text(name))
	} else if pattern := ts.ChildByFieldName(fieldPattern); !pattern.IsNull() {
		out.SetProp(node.PropName, c.text(pattern))
	}

	if value := ts.ChildByFieldName(fieldValue); !value.IsNull() {
		if converted := c.convert(value, false); converted != nil {
			out.AddChild(converted)
		}
	}

	return out
}

func (c *converter) convertBlock(ts sitter.Node) *node.Node {
	block := node.New(node.UASTBlock)
	block.Pos = c.positions(ts)
	block.Children = c.convertChildren(ts, false, true)

	return block
}

func (c *converter) convertIf(ts sitter.Node) *node.Node {
	out := node.New(node.UASTIf)
	out.AddRole(node.RoleBranch)
	out.Pos = c.positions(ts)

	if cond := ts.ChildByFieldName(fieldCondition); !cond.IsNull() {
		if converted := c.convert(cond, false); converted != nil {
			converted.AddRole(node.RoleCondition)
			out.AddChild(converted)
		}
	}

	if consequence := ts.ChildByFieldName(fieldConsequence); !consequence.IsNull() {
		block := c.convertBlock(consequence)
		block.AddRole(node.RoleBody)
		out.AddChild(block)
	}

	if alt := ts.ChildByFieldName(fieldAlternative); !alt.IsNull() {
		out.AddChild(c.convertElse(alt))
	}

	return out
}

// convertElse maps an else_clause to either a Block (plain else) or a
// nested If (else-if chain).
func (c *converter) convertElse(ts sitter.Node) *node.Node {
	for idx := range ts.NamedChildCount() {
		child := ts.NamedChild(idx)

		switch child.Type() {
		case tsBlock:
			block := c.convertBlock(child)
			block.AddRole(node.RoleBranch)

			return block
		case tsIfExpr:
			return c.convertIf(child)
		}
	}

	return nil
}

func (c *converter) convertLoop(ts sitter.Node, kind string) *node.Node {
	out := node.New(node.UASTLoop)
	out.AddRole(node.RoleLoop)
	out.SetProp(node.PropKind, kind)
	out.Pos = c.positions(ts)

	if cond := ts.ChildByFieldName(fieldCondition); !cond.IsNull() {
		if converted := c.convert(cond, false); converted != nil {
			converted.AddRole(node.RoleCondition)
			out.AddChild(converted)
		}
	}

	if value := ts.ChildByFieldName(fieldValue); !value.IsNull() {
		if converted := c.convert(value, false); converted != nil {
			out.AddChild(converted)
		}
	}

	if body := ts.ChildByFieldName(fieldBody); !body.IsNull() {
		block := c.convertBlock(body)
		block.AddRole(node.RoleBody)
		out.AddChild(block)
	}

	return out
}

func (c *converter) convertMatch(ts sitter.Node) *node.Node {
	out := node.New(node.UASTMatch)
	out.AddRole(node.RoleBranch)
	out.Pos = c.positions(ts)

	if value := ts.ChildByFieldName(fieldValue); !value.IsNull() {
		if converted := c.convert(value, false); converted != nil {
			converted.AddRole(node.RoleCondition)
			out.AddChild(converted)
		}
	}

	if body := ts.ChildByFieldName(fieldBody); !body.IsNull() && body.Type() == tsMatchBlock {
		for idx := range body.NamedChildCount() {
			arm := body.NamedChild(idx)
			if arm.Type() == tsMatchArm {
				out.AddChild(c.convertMatchArm(arm))
			}
		}
	}

	return out
}

func (c *converter) convertMatchArm(ts sitter.Node) *node.Node {
	arm := node.New(node.UASTCase)
	arm.Pos = c.positions(ts)

	if pattern := ts.ChildByFieldName(fieldPattern); !pattern.IsNull() {
		arm.SetProp("pattern", c.text(pattern))

		// Guard clauses live as a condition field on the match pattern.
		if pattern.Type() == tsMatchPattern {
			if cond := pattern.ChildByFieldName(fieldCondition); !cond.IsNull() {
				arm.AddChild(c.convertGuard(cond))
			}
		}
	}

	// Older grammar revisions expose the guard as a direct field.
	if guard := ts.ChildByFieldName(fieldGuard); !guard.IsNull() {
		arm.AddChild(c.convertGuard(guard))
	}

	if value := ts.ChildByFieldName(fieldValue); !value.IsNull() {
		if converted := c.convert(value, false); converted != nil {
			converted.AddRole(node.RoleBody)
			arm.AddChild(converted)
		}
	}

	return arm
}

func (c *converter) convertGuard(ts sitter.Node) *node.Node {
	guard := node.New(node.UASTGuard)
	guard.AddRole(node.RoleCondition)
	guard.Pos = c.positions(ts)

	if converted := c.convert(ts, false); converted != nil {
		guard.AddChild(converted)
	}

	return guard
}

func (c *converter) convertBinary(ts sitter.Node) *node.Node {
	out := node.New(node.UASTBinaryOp)
	out.Pos = c.positions(ts)

	if op := ts.ChildByFieldName(fieldOperator); !op.IsNull() {
		out.SetProp(node.PropOperator, c.text(op))
	}

	if left := ts.ChildByFieldName(fieldLeft); !left.IsNull() {
		if converted := c.convert(left, false); converted != nil {
			out.AddChild(converted)
		}
	}

	if right := ts.ChildByFieldName(fieldRight); !right.IsNull() {
		if converted := c.convert(right, false); converted != nil {
			out.AddChild(converted)
		}
	}

	return out
}

func (c *converter) convertMacro(ts sitter.Node) *node.Node {
	out := node.New(node.UASTMacroCall)
	out.Pos = c.positions(ts)

	if macro := ts.ChildByFieldName("macro"); !macro.IsNull() {
		out.SetProp(node.PropName, c.text(macro))
	}

	// Macro bodies are token trees; branching inside them is opaque.
	return out
}

// unwrapStatement lifts the expression out of an expression_statement so
// statement position is represented once, on the expression itself.
func (c *converter) unwrapStatement(ts sitter.Node, inImpl bool) *node.Node {
	for idx := range ts.NamedChildCount() {
		child := ts.NamedChild(idx)
		if child.Type() == tsLineComment || child.Type() == tsBlockComment {
			continue
		}

		return c.convert(child, inImpl)
	}

	return nil
}

// passthrough converts a CST node to the given UAST type, converting all
// named children generically.
func (c *converter) passthrough(ts sitter.Node, typ node.Type) *node.Node {
	out := node.New(typ)
	out.Pos = c.positions(ts)
	out.Children = c.convertChildren(ts, false, false)

	return out
}

// convertAttribute maps an attribute_item (#[...]) or inner_attribute_item
// (#![...]) to an Attribute node with its path and argument list captured.
func (c *converter) convertAttribute(ts sitter.Node) *node.Node {
	attr := node.New(node.UASTAttribute)
	attr.AddRole(node.RoleAttribute)
	attr.Pos = c.positions(ts)
	attr.Token = c.text(ts)

	for idx := range ts.NamedChildCount() {
		child := ts.NamedChild(idx)
		if child.Type() != tsAttribute {
			continue
		}

		if child.NamedChildCount() > 0 {
			attr.SetProp(node.PropName, c.text(child.NamedChild(0)))
		}

		for inner := range child.NamedChildCount() {
			if arg := child.NamedChild(inner); arg.Type() == tsTokenTree {
				attr.SetProp(node.PropArgs, c.text(arg))
			}
		}
	}

	return attr
}
