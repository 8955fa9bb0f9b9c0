package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slate/internal/ast"
)

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, parseErrs, scanErrs := ParseSource("test.sl", source)
	require.Empty(t, scanErrs, "should have no scan errors")
	require.Empty(t, parseErrs, "should have no parse errors")
	require.NotNil(t, program)
	return program
}

func TestParseFunctionDecl(t *testing.T) {
	program := parse(t, "fun add(x: Int, y: Int): Int { x + y }")
	require.Len(t, program.Decls, 1)

	fn, ok := program.Decls[0].(*ast.FunctionDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name.Value)
	assert.Len(t, fn.Params, 2)
	assert.NotNil(t, fn.Return)
	assert.Len(t, fn.Body.Stmts, 1)
}

func TestParseFactorial(t *testing.T) {
	program := parse(t, `fun factorial(n: Int): Int {
  if (n <= 1) { 1 } else { n * factorial(n - 1) }
}`)
	fn := program.Decls[0].(*ast.FunctionDecl)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)

	ifExpr, ok := stmt.Expr.(*ast.IfExpr)
	require.True(t, ok)
	assert.NotNil(t, ifExpr.Else)

	cond, ok := ifExpr.Cond.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "<=", cond.Op)
}

func TestParseCallNormalisesToApply(t *testing.T) {
	program := parse(t, "fun main(): Int { add(5, 3) }")
	fn := program.Decls[0].(*ast.FunctionDecl)
	call := fn.Body.Stmts[0].(*ast.ExprStmt).Expr.(*ast.MethodCallExpr)

	assert.Equal(t, "apply", call.Method.Value)
	recv, ok := call.Receiver.(*ast.IdentExpr)
	require.True(t, ok)
	assert.Equal(t, "add", recv.Name)
	assert.Len(t, call.Args, 2)
}

func TestParseMethodCallAndFieldAccess(t *testing.T) {
	program := parse(t, "fun main(): Int { p.getX() + p.x }")
	fn := program.Decls[0].(*ast.FunctionDecl)
	bin := fn.Body.Stmts[0].(*ast.ExprStmt).Expr.(*ast.BinaryExpr)

	call, ok := bin.Left.(*ast.MethodCallExpr)
	require.True(t, ok)
	assert.Equal(t, "getX", call.Method.Value)

	access, ok := bin.Right.(*ast.FieldAccessExpr)
	require.True(t, ok)
	assert.Equal(t, "x", access.Field.Value)
}

func TestParsePrecedence(t *testing.T) {
	program := parse(t, "fun main(): Int { 1 + 2 * 3 }")
	fn := program.Decls[0].(*ast.FunctionDecl)
	expr := fn.Body.Stmts[0].(*ast.ExprStmt).Expr
	assert.Equal(t, "(1 + (2 * 3))", expr.String())
}

func TestParseAssignmentRightAssociative(t *testing.T) {
	program := parse(t, "fun main(): Unit { a = b = 1 }")
	fn := program.Decls[0].(*ast.FunctionDecl)
	outer := fn.Body.Stmts[0].(*ast.ExprStmt).Expr.(*ast.AssignExpr)

	_, ok := outer.Value.(*ast.AssignExpr)
	assert.True(t, ok, "a = (b = 1)")
}

func TestParseClassWithConstructor(t *testing.T) {
	program := parse(t, `class Point(x: Int, y: Int) {
  fun getX(): Int { x }
  fun getY(): Int { y }
}`)
	class := program.Decls[0].(*ast.ClassDecl)
	assert.Equal(t, "Point", class.Name.Value)
	require.NotNil(t, class.Ctor)
	assert.Len(t, class.Ctor.Params, 2)
	assert.Len(t, class.Members, 2)
}

func TestParseClassInheritance(t *testing.T) {
	program := parse(t, `class Circle(r: Double) extends Shape with Drawable with Comparable {
  val name: String = "circle"
}`)
	class := program.Decls[0].(*ast.ClassDecl)
	assert.NotNil(t, class.Super)
	assert.Len(t, class.Traits, 2)

	field, ok := class.Members[0].(*ast.FieldDecl)
	require.True(t, ok)
	assert.False(t, field.Mutable)
	assert.NotNil(t, field.Init)
}

func TestParseTraitMembers(t *testing.T) {
	program := parse(t, `trait Shape {
  def area(): Double
  fun describe(): String { "a shape" }
}`)
	trait := program.Decls[0].(*ast.TraitDecl)
	require.Len(t, trait.Members, 2)

	_, isAbstract := trait.Members[0].(*ast.AbstractMethodDecl)
	assert.True(t, isAbstract)
	_, isConcrete := trait.Members[1].(*ast.FunctionDecl)
	assert.True(t, isConcrete)
}

func TestParseObject(t *testing.T) {
	program := parse(t, `object Math {
  fun pi(): Double { 3.14159 }
  fun square(x: Int): Int { x * x }
}`)
	obj := program.Decls[0].(*ast.ObjectDecl)
	assert.Equal(t, "Math", obj.Name.Value)
	assert.Len(t, obj.Members, 2)
}

func TestParseExtension(t *testing.T) {
	program := parse(t, `extension Int {
  fun isEven(): Boolean { this % 2 == 0 }
  fun double(): Int { this * 2 }
}`)
	ext := program.Decls[0].(*ast.ExtensionDecl)
	assert.Len(t, ext.Methods, 2)

	target, ok := ext.Target.(*ast.SimpleTypeAnn)
	require.True(t, ok)
	assert.Equal(t, "Int", target.Name.Value)
}

func TestParseParenLambdaVsParenExpr(t *testing.T) {
	program := parse(t, "fun main(): Int { twice((x: Int) => x * 2, (3)) }")
	fn := program.Decls[0].(*ast.FunctionDecl)
	call := fn.Body.Stmts[0].(*ast.ExprStmt).Expr.(*ast.MethodCallExpr)
	require.Len(t, call.Args, 2)

	lambda, ok := call.Args[0].(*ast.LambdaExpr)
	require.True(t, ok)
	require.Len(t, lambda.Params, 1)
	assert.Equal(t, "x", lambda.Params[0].Name.Value)
	assert.NotNil(t, lambda.Params[0].Ann)

	_, isLit := call.Args[1].(*ast.IntLit)
	assert.True(t, isLit, "parenthesised expression stays an expression")
}

func TestParseTrailingLambdaForms(t *testing.T) {
	cases := []struct {
		source string
		params int
	}{
		{"fun main(): Unit { run { => 1 } }", 0},
		{"fun main(): Unit { xs.each { x => x } }", 1},
		{"fun main(): Unit { xs.each { x: Int => x } }", 1},
		{"fun main(): Unit { zip { a, b => a } }", 2},
		{"fun main(): Unit { zip { (a, b) => a } }", 2},
	}
	for _, tc := range cases {
		program := parse(t, tc.source)
		fn := program.Decls[0].(*ast.FunctionDecl)
		call := fn.Body.Stmts[0].(*ast.ExprStmt).Expr.(*ast.MethodCallExpr)
		require.Len(t, call.Args, 1, tc.source)

		lambda, ok := call.Args[0].(*ast.LambdaExpr)
		require.True(t, ok, tc.source)
		assert.Len(t, lambda.Params, tc.params, tc.source)
	}
}

func TestParseTrailingLambdaAppendsToCall(t *testing.T) {
	program := parse(t, "fun main(): Unit { fold(0) { acc, x => acc + x } }")
	fn := program.Decls[0].(*ast.FunctionDecl)
	call := fn.Body.Stmts[0].(*ast.ExprStmt).Expr.(*ast.MethodCallExpr)
	require.Len(t, call.Args, 2)

	_, isLambda := call.Args[1].(*ast.LambdaExpr)
	assert.True(t, isLambda, "trailing lambda appended as extra argument")
}

func TestParseTypeAnnotations(t *testing.T) {
	program := parse(t, `fun apply(f: Int => Int, g: (Int, Double) => String, xs: List<Int>, p: { getX: () => Int }): Unit {
  val m: Map<String, Int> = [ "a" -> 1 ]
}`)
	fn := program.Decls[0].(*ast.FunctionDecl)
	require.Len(t, fn.Params, 4)

	shorthand, ok := fn.Params[0].Ann.(*ast.FunctionTypeAnn)
	require.True(t, ok, "Int => Int is shorthand for (Int) => Int")
	assert.Len(t, shorthand.Params, 1)

	full, ok := fn.Params[1].Ann.(*ast.FunctionTypeAnn)
	require.True(t, ok)
	assert.Len(t, full.Params, 2)

	generic, ok := fn.Params[2].Ann.(*ast.GenericTypeAnn)
	require.True(t, ok)
	assert.Equal(t, "List", generic.Name.Value)

	structural, ok := fn.Params[3].Ann.(*ast.StructuralTypeAnn)
	require.True(t, ok)
	assert.Len(t, structural.Members, 1)
}

func TestParseNestedGenericAnnotation(t *testing.T) {
	program := parse(t, "fun f(xs: List<List<Int>>): Unit { }")
	fn := program.Decls[0].(*ast.FunctionDecl)

	outer, ok := fn.Params[0].Ann.(*ast.GenericTypeAnn)
	require.True(t, ok)
	inner, ok := outer.Args[0].(*ast.GenericTypeAnn)
	require.True(t, ok)
	assert.Equal(t, "List", inner.Name.Value)
}

func TestParseTypeParameters(t *testing.T) {
	program := parse(t, "class Box<+T <: Shape, -U, V>(value: T) { }")
	class := program.Decls[0].(*ast.ClassDecl)
	require.Len(t, class.TypeParams, 3)

	assert.Equal(t, ast.Covariant, class.TypeParams[0].Variance)
	assert.NotNil(t, class.TypeParams[0].Upper)
	assert.Equal(t, ast.Contravariant, class.TypeParams[1].Variance)
	assert.Equal(t, ast.Invariant, class.TypeParams[2].Variance)
}

func TestParseListAndMapLiterals(t *testing.T) {
	program := parse(t, `fun main(): Unit {
  val xs = [1, 2, 3]
  val empty = []
  val m = [ "a" -> 1, "b" -> 2 ]
}`)
	fn := program.Decls[0].(*ast.FunctionDecl)

	xs := fn.Body.Stmts[0].(*ast.VarDeclStmt).Init.(*ast.ListLitExpr)
	assert.Len(t, xs.Elements, 3)

	empty := fn.Body.Stmts[1].(*ast.VarDeclStmt).Init.(*ast.ListLitExpr)
	assert.Empty(t, empty.Elements)

	m := fn.Body.Stmts[2].(*ast.VarDeclStmt).Init.(*ast.MapLitExpr)
	assert.Len(t, m.Entries, 2)
}

func TestParseWhileAndVarStatements(t *testing.T) {
	program := parse(t, `fun main(): Int {
  var i = 0
  while (i < 10) { i = i + 1 }
  return i
}`)
	fn := program.Decls[0].(*ast.FunctionDecl)
	require.Len(t, fn.Body.Stmts, 3)

	decl := fn.Body.Stmts[0].(*ast.VarDeclStmt)
	assert.True(t, decl.Mutable)

	_, isWhile := fn.Body.Stmts[1].(*ast.ExprStmt).Expr.(*ast.WhileExpr)
	assert.True(t, isWhile)

	ret := fn.Body.Stmts[2].(*ast.ReturnStmt)
	assert.NotNil(t, ret.Value)
}

func TestParseReservedKeywordRejected(t *testing.T) {
	for _, source := range []string{
		"fun main(): Unit { match }",
		"fun main(): Unit { for }",
		"match Thing { }",
	} {
		_, parseErrs, scanErrs := ParseSource("test.sl", source)
		assert.Empty(t, scanErrs, source)
		var found bool
		for _, err := range parseErrs {
			if containsNotSupported(err.Message) {
				found = true
			}
		}
		assert.True(t, found, "expected a 'not supported' error for %q, got %v", source, parseErrs)
	}
}

func containsNotSupported(message string) bool {
	for i := 0; i+len("not supported") <= len(message); i++ {
		if message[i:i+len("not supported")] == "not supported" {
			return true
		}
	}
	return false
}

func TestParseErrorCarriesPosition(t *testing.T) {
	_, parseErrs, _ := ParseSource("test.sl", "fun (): Int { 1 }")
	require.NotEmpty(t, parseErrs)
	assert.Equal(t, 1, parseErrs[0].Position.Line)
	assert.Greater(t, parseErrs[0].Position.Column, 1)
}

func TestParseDeterminism(t *testing.T) {
	source := `fun twice(f: Int => Int, x: Int): Int { f(f(x)) }
class Point(x: Int, y: Int) { fun getX(): Int { x } }
object Math { fun pi(): Double { 3.14159 } }
extension Int { fun double(): Int { this * 2 } }`

	first := parse(t, source)
	second := parse(t, source)
	assert.Equal(t, first.String(), second.String())
}
