package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"slate/internal/types"
)

func TestInferredTypeSlot(t *testing.T) {
	lit := &IntLit{Value: 42, Raw: "42"}
	assert.Nil(t, lit.Type(), "the slot starts empty")

	lit.SetType(types.IntType)
	assert.Equal(t, types.IntType, lit.Type())
}

func TestExprStringForms(t *testing.T) {
	add := &BinaryExpr{
		Op:    "+",
		Left:  &IntLit{Value: 1, Raw: "1"},
		Right: &BinaryExpr{Op: "*", Left: &IntLit{Value: 2, Raw: "2"}, Right: &IntLit{Value: 3, Raw: "3"}},
	}
	assert.Equal(t, "(1 + (2 * 3))", add.String())

	call := &MethodCallExpr{
		Receiver: &IdentExpr{Name: "p"},
		Method:   Ident{Value: "getX"},
	}
	assert.Equal(t, "p.getX()", call.String())

	apply := &MethodCallExpr{
		Receiver: &IdentExpr{Name: "f"},
		Method:   Ident{Value: "apply"},
		Args:     []Expr{&IntLit{Value: 3, Raw: "3"}},
	}
	assert.Equal(t, "f(3)", apply.String(), "apply calls print as plain application")
}

func TestDeclStringForms(t *testing.T) {
	fn := &FunctionDecl{
		Name: Ident{Value: "inc"},
		Params: []*Param{{
			Name: Ident{Value: "x"},
			Ann:  &SimpleTypeAnn{Name: Ident{Value: "Int"}},
		}},
		Return: &SimpleTypeAnn{Name: Ident{Value: "Int"}},
		Body: &BlockExpr{Stmts: []Stmt{
			&ExprStmt{Expr: &BinaryExpr{Op: "+", Left: &IdentExpr{Name: "x"}, Right: &IntLit{Value: 1, Raw: "1"}}},
		}},
	}
	assert.Equal(t, "fun inc(x: Int): Int {\n  (x + 1)\n}", fn.String())
}

func TestTypeAnnStringForms(t *testing.T) {
	fnAnn := &FunctionTypeAnn{
		Params: []TypeAnn{&SimpleTypeAnn{Name: Ident{Value: "Int"}}},
		Return: &SimpleTypeAnn{Name: Ident{Value: "Int"}},
	}
	assert.Equal(t, "(Int) => Int", fnAnn.String())

	structural := &StructuralTypeAnn{Members: []*StructuralMemberAnn{
		{Name: Ident{Value: "getX"}, Ann: fnAnn},
	}}
	assert.Equal(t, "{ getX: (Int) => Int }", structural.String())
}

func TestNodeTypesAreDistinct(t *testing.T) {
	nodes := []Node{
		&IntLit{}, &DoubleLit{}, &StringLit{}, &BoolLit{}, &NullLit{},
		&IdentExpr{}, &ThisExpr{}, &BinaryExpr{}, &UnaryExpr{},
		&MethodCallExpr{}, &FieldAccessExpr{}, &AssignExpr{},
		&BlockExpr{}, &IfExpr{}, &WhileExpr{}, &ListLitExpr{}, &MapLitExpr{}, &LambdaExpr{},
		&ExprStmt{}, &VarDeclStmt{}, &ReturnStmt{},
		&FunctionDecl{}, &FieldDecl{}, &AbstractMethodDecl{},
		&ClassDecl{}, &TraitDecl{}, &ObjectDecl{}, &ExtensionDecl{},
		&SimpleTypeAnn{}, &GenericTypeAnn{}, &FunctionTypeAnn{}, &StructuralTypeAnn{},
	}
	seen := make(map[NodeType]bool)
	for _, node := range nodes {
		assert.False(t, seen[node.NodeType()], "duplicate node type for %T", node)
		seen[node.NodeType()] = true
	}
}
