package structural //nolint:testpackage // testing internal implementation.

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anchorscope/anchorscope/pkg/uast/node"
)

// newFunction builds a function declaration with the given body statements.
func newFunction(name string, body ...*node.Node) *node.Node {
	fn := node.New(node.UASTFunction)
	fn.AddRole(node.RoleFunction)
	fn.AddRole(node.RoleDeclaration)
	fn.SetProp(node.PropName, name)

	block := node.New(node.UASTBlock)
	block.AddRole(node.RoleBody)
	block.Children = body
	fn.AddChild(block)

	return fn
}

func newIf(children ...*node.Node) *node.Node {
	out := node.New(node.UASTIf)
	out.AddRole(node.RoleBranch)

	body := node.New(node.UASTBlock)
	body.AddRole(node.RoleBody)
	body.Children = children
	out.AddChild(body)

	return out
}

func newMatch(arms int, guardedArms int) *node.Node {
	match := node.New(node.UASTMatch)
	match.AddRole(node.RoleBranch)

	for i := range arms {
		arm := node.New(node.UASTCase)
		if i < guardedArms {
			guard := node.New(node.UASTGuard)
			guard.AddRole(node.RoleCondition)
			arm.AddChild(guard)
		}

		match.AddChild(arm)
	}

	return match
}

func newBinary(op string) *node.Node {
	out := node.New(node.UASTBinaryOp)
	out.SetProp(node.PropOperator, op)

	return out
}

func TestMeasure_PlainFunction(t *testing.T) {
	t.Parallel()

	fn := newFunction("plain", node.NewWithToken(node.UASTCall, ""))

	got := Measure(fn)

	assert.Equal(t, 1, got.Cyclomatic)
	assert.Equal(t, 0, got.Cognitive)
}

func TestMeasure_SingleIf(t *testing.T) {
	t.Parallel()

	fn := newFunction("one_branch", newIf())

	got := Measure(fn)

	assert.Equal(t, 2, got.Cyclomatic)
	assert.Equal(t, 1, got.Cognitive)
}

func TestMeasure_TripleNestedIf(t *testing.T) {
	t.Parallel()

	fn := newFunction("deep", newIf(newIf(newIf())))

	got := Measure(fn)

	assert.Equal(t, 4, got.Cyclomatic)
	assert.Equal(t, 3, got.Cognitive)
}

func TestMeasure_MatchArms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		arms           int
		guards         int
		wantCyclomatic int
	}{
		{name: "single arm adds nothing", arms: 1, guards: 0, wantCyclomatic: 1},
		{name: "n arms add n minus one", arms: 4, guards: 0, wantCyclomatic: 4},
		{name: "guards add one each", arms: 3, guards: 2, wantCyclomatic: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fn := newFunction("matcher", newMatch(tt.arms, tt.guards))

			got := Measure(fn)

			assert.Equal(t, tt.wantCyclomatic, got.Cyclomatic)
			assert.Equal(t, 1, got.Cognitive)
		})
	}
}

func TestMeasure_LogicalOperators(t *testing.T) {
	t.Parallel()

	// if a && b || c { ... } -> base 1 + if 1 + && 1 + || 1.
	condition := newBinary("||")
	condition.AddChild(newBinary("&&"))

	branch := newIf()
	branch.Children = append([]*node.Node{condition}, branch.Children...)

	fn := newFunction("guards", branch)

	got := Measure(fn)

	assert.Equal(t, 4, got.Cyclomatic)
}

func TestMeasure_ComparisonOperatorsDoNotCount(t *testing.T) {
	t.Parallel()

	fn := newFunction("compare", newBinary("=="), newBinary("<"), newBinary("+"))

	got := Measure(fn)

	assert.Equal(t, 1, got.Cyclomatic)
}

func TestMeasure_TryExpressions(t *testing.T) {
	t.Parallel()

	fn := newFunction("fallible",
		node.New(node.UASTTryExpr),
		node.New(node.UASTTryExpr),
	)

	got := Measure(fn)

	assert.Equal(t, 3, got.Cyclomatic)
	assert.Equal(t, 0, got.Cognitive)
}

func TestMeasure_LoopsNestAndCount(t *testing.T) {
	t.Parallel()

	loop := node.New(node.UASTLoop)
	loop.AddRole(node.RoleLoop)
	loop.AddChild(newIf())

	fn := newFunction("looper", loop)

	got := Measure(fn)

	assert.Equal(t, 3, got.Cyclomatic)
	assert.Equal(t, 2, got.Cognitive)
}

func TestMeasure_NestedDefinitionSkipped(t *testing.T) {
	t.Parallel()

	inner := newFunction("inner", newIf(newIf()))
	outer := newFunction("outer", newIf(), inner)

	got := Measure(outer)

	// Only the outer if counts; the nested definition's branches do not.
	assert.Equal(t, 2, got.Cyclomatic)
	assert.Equal(t, 1, got.Cognitive)

	gotInner := Measure(inner)

	assert.Equal(t, 3, gotInner.Cyclomatic)
	assert.Equal(t, 2, gotInner.Cognitive)
}

func TestMeasure_SiblingBranchesShareDepth(t *testing.T) {
	t.Parallel()

	// Two sibling ifs never accumulate depth across each other.
	fn := newFunction("siblings", newIf(), newIf(), newIf())

	got := Measure(fn)

	assert.Equal(t, 4, got.Cyclomatic)
	assert.Equal(t, 1, got.Cognitive)
}
