package structural //nolint:testpackage // testing internal implementation.

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anchorscope/anchorscope/pkg/uast/node"
)

func attribute(name, args string) *node.Node {
	attr := node.New(node.UASTAttribute)
	attr.AddRole(node.RoleAttribute)
	attr.SetProp(node.PropName, name)

	if args != "" {
		attr.SetProp(node.PropArgs, args)
	}

	return attr
}

func parameter(name, declaredType string) *node.Node {
	param := node.New(node.UASTParameter)
	param.AddRole(node.RoleParameter)
	param.SetProp(node.PropName, name)
	param.SetProp(node.PropType, declaredType)

	return param
}

func TestIsHandler_EntryAttribute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		attrName string
		want     bool
	}{
		{name: "instruction marker", attrName: "instruction", want: true},
		{name: "handler marker", attrName: "handler", want: true},
		{name: "qualified instruction marker", attrName: "anchor_lang::instruction", want: true},
		{name: "unrelated attribute", attrName: "derive", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fn := newFunction("process")
			fn.Children = append([]*node.Node{attribute(tt.attrName, "")}, fn.Children...)

			assert.Equal(t, tt.want, IsHandler(fn))
		})
	}
}

func TestIsHandler_NamingConvention(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fnName string
		public bool
		want   bool
	}{
		{name: "public initialize prefix", fnName: "initialize_vault", public: true, want: true},
		{name: "public transfer prefix", fnName: "transfer_tokens", public: true, want: true},
		{name: "public handler suffix", fnName: "do_stuff_handler", public: true, want: true},
		{name: "public validate exact", fnName: "validate", public: true, want: true},
		{name: "public execute exact", fnName: "execute", public: true, want: true},
		{name: "private initialize prefix", fnName: "initialize_vault", public: false, want: false},
		{name: "public unrelated name", fnName: "compute_fee", public: true, want: false},
		{name: "validate as prefix only", fnName: "validate_input", public: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fn := newFunction(tt.fnName)
			if tt.public {
				fn.AddRole(node.RolePublic)
			}

			assert.Equal(t, tt.want, IsHandler(fn))
		})
	}
}

func TestIsHandler_ContextParameter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		declared string
		want     bool
	}{
		{name: "bare generic", declared: "Context<Initialize>", want: true},
		{name: "reference", declared: "&Context<Initialize>", want: true},
		{name: "mutable reference", declared: "&mut Context<Initialize>", want: true},
		{name: "lifetime reference", declared: "&'info Context<'info, Initialize>", want: true},
		{name: "fully qualified", declared: "anchor_lang::context::Context<Initialize>", want: true},
		{name: "prelude qualified", declared: "prelude::Context<Initialize>", want: true},
		{name: "unrelated type", declared: "Pubkey", want: false},
		{name: "prefix match is intentional", declared: "ContextWrapper", want: true},
		{name: "contains but not prefixed", declared: "MyContextual", want: false},
		{name: "unrelated generic", declared: "Account<'info, Vault>", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fn := newFunction("anything")
			fn.AddChild(parameter("ctx", tt.declared))

			assert.Equal(t, tt.want, IsHandler(fn))
		})
	}
}

func TestIsHandler_NoSignals(t *testing.T) {
	t.Parallel()

	fn := newFunction("helper")
	fn.AddChild(parameter("amount", "u64"))

	assert.False(t, IsHandler(fn))
	assert.False(t, IsHandler(nil))
}

func TestIsHandler_MethodSameRules(t *testing.T) {
	t.Parallel()

	method := node.New(node.UASTMethod)
	method.AddRole(node.RoleFunction)
	method.AddRole(node.RolePublic)
	method.SetProp(node.PropName, "withdraw_fees")

	assert.True(t, IsHandler(method))
}

func TestConstraintComplexity(t *testing.T) {
	t.Parallel()

	fn := newFunction("initialize")
	fn.Children = append([]*node.Node{
		attribute("account", "(mut, has_one = authority)"),
		attribute("account", "(init, payer = user, space = 8)"),
		attribute("accounts", "(signer)"),
		attribute("account", ""),        // bare marker, no argument list
		attribute("derive", "(Clone)"),  // not a constraint attribute
		attribute("instruction", "(x)"), // entry marker, not a constraint
	}, fn.Children...)

	assert.Equal(t, 3, ConstraintComplexity(fn))
}

func TestConstraintComplexity_NoAttributes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ConstraintComplexity(newFunction("plain")))
}
