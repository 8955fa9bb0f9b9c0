package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slate/internal/ast"
	"slate/internal/errors"
	"slate/internal/parser"
	"slate/internal/types"
)

func analyze(t *testing.T, source string) (*ast.Program, []errors.CompilerError) {
	t.Helper()
	program, parseErrs, scanErrs := parser.ParseSource("test.sl", source)
	require.Empty(t, scanErrs, "should have no scan errors")
	require.Empty(t, parseErrs, "should have no parse errors")

	analyzer := NewAnalyzer()
	return program, analyzer.Analyze(program)
}

func assertClean(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, errs := analyze(t, source)
	var messages []string
	for _, err := range errs {
		messages = append(messages, err.Message)
	}
	require.Empty(t, messages, "expected no type errors")
	return program
}

func assertError(t *testing.T, source, fragment string) {
	t.Helper()
	_, errs := analyze(t, source)
	require.NotEmpty(t, errs, "expected a type error")
	var found bool
	for _, err := range errs {
		if assert.NotEmpty(t, err.Message) && contains(err.Message, fragment) {
			found = true
		}
	}
	assert.True(t, found, "expected an error mentioning %q, got %v", fragment, errs)
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func TestSimpleFunction(t *testing.T) {
	assertClean(t, "fun add(x: Int, y: Int): Int { x + y }")
}

func TestRecursion(t *testing.T) {
	assertClean(t, `fun factorial(n: Int): Int {
  if (n <= 1) { 1 } else { n * factorial(n - 1) }
}`)
}

func TestForwardReference(t *testing.T) {
	assertClean(t, `fun first(): Int { second() }
fun second(): Int { 42 }`)
}

func TestUndefinedName(t *testing.T) {
	assertError(t, "fun broken(x: Int): Int { undefined_variable + x }", "undefined name")
}

func TestUndefinedNameSuggestion(t *testing.T) {
	_, errs := analyze(t, "fun f(count: Int): Int { conut }")
	require.NotEmpty(t, errs)
	require.NotEmpty(t, errs[0].Suggestions)
	assert.Contains(t, errs[0].Suggestions[0], "count")
}

func TestArityMismatch(t *testing.T) {
	assertError(t, `fun add(x: Int, y: Int): Int { x + y }
fun main(): Int { add(1) }`, "expects 2 argument")
}

func TestArgumentSubtyping(t *testing.T) {
	assertError(t, `fun add(x: Int, y: Int): Int { x + y }
fun main(): Int { add(1, "two") }`, "type mismatch")
}

func TestNonBooleanCondition(t *testing.T) {
	assertError(t, "fun f(x: Int): Unit { if (x) { } }", "condition must be Boolean")
	assertError(t, "fun f(x: Int): Unit { while (x) { } }", "condition must be Boolean")
}

func TestReturnTypeChecked(t *testing.T) {
	assertError(t, `fun f(): Int { "nope" }`, "type mismatch")
	assertError(t, `fun f(): Int { return "nope" }`, "type mismatch")
	assertClean(t, "fun f(): Int { return 1 }")
}

func TestMissingParameterAnnotation(t *testing.T) {
	assertError(t, "fun f(x): Int { 1 }", "requires a type annotation")
}

func TestLocalVariableInference(t *testing.T) {
	assertClean(t, `fun f(): Int {
  val x = 1
  val y: Int = x
  y
}`)
	assertError(t, `fun f(): Unit { val x: Int = "s" }`, "type mismatch")
	assertError(t, "fun f(): Unit { val x }", "requires a type annotation")
}

func TestAssignToImmutable(t *testing.T) {
	assertError(t, `fun f(): Unit {
  val x = 1
  x = 2
}`, "immutable")
	assertClean(t, `fun f(): Unit {
  var x = 1
  x = 2
}`)
}

func TestArithmeticTyping(t *testing.T) {
	program := assertClean(t, `fun f(): Double { 1 + 2.0 }
fun g(): Int { 3 % 2 }
fun h(): String { "n = " + 42 }`)
	require.Len(t, program.Decls, 3)
}

func TestLogicalOperatorsRequireBoolean(t *testing.T) {
	assertError(t, "fun f(): Boolean { 1 && true }", "invalid operation")
	assertClean(t, "fun f(a: Boolean, b: Boolean): Boolean { a && b || !a }")
}

func TestComparisonRequiresComparable(t *testing.T) {
	assertError(t, `fun f(): Boolean { 1 == "one" }`, "invalid operation")
	assertClean(t, "fun f(): Boolean { 1 < 2 }")
}

func TestIfBranchUnification(t *testing.T) {
	assertClean(t, `class Shape() { }
class Circle() extends Shape { }
fun pick(c: Boolean): Shape {
  if (c) { Shape() } else { Circle() }
}`)
	assertError(t, `fun f(c: Boolean): Int { if (c) { 1 } else { "one" } }`, "no common supertype")
}

func TestIfWithoutElseIsUnit(t *testing.T) {
	assertError(t, "fun f(c: Boolean): Int { if (c) { 1 } }", "type mismatch")
}

func TestEmptyListGetsFreshVariable(t *testing.T) {
	program := assertClean(t, "fun f(): Unit { val xs = [] }")
	fn := program.Decls[0].(*ast.FunctionDecl)
	decl := fn.Body.Stmts[0].(*ast.VarDeclStmt)

	listType, ok := decl.Init.Type().(*types.ListType)
	require.True(t, ok, "empty list literal should infer a list type")
	_, isVar := listType.Elem.(*types.TypeVar)
	assert.True(t, isVar, "element type should be a fresh type variable")
}

func TestClassMembersAndConstructorParams(t *testing.T) {
	assertClean(t, `class Point(x: Int, y: Int) {
  fun getX(): Int { x }
  fun getY(): Int { y }
  fun sum(): Int { getX() + getY() }
}`)
}

func TestClassMemberAccessFromOutside(t *testing.T) {
	assertClean(t, `class Point(x: Int, y: Int) {
  fun getX(): Int { x }
}
fun use(): Int {
  val p = Point(1, 2)
  p.getX()
}`)
	assertError(t, `class Point(x: Int) { }
fun use(): Int {
  val p = Point(1)
  p.missing()
}`, "no member")
}

func TestDuplicateDeclarations(t *testing.T) {
	assertError(t, `fun f(): Int { 1 }
fun f(): Int { 2 }`, "duplicate declaration")
	assertError(t, `class C() { }
class C() { }`, "duplicate declaration")
}

func TestObjectSingleton(t *testing.T) {
	assertClean(t, `object Math {
  fun pi(): Double { 3.14159 }
  fun square(x: Int): Int { x * x }
}
fun area(r: Int): Double {
  Math.pi() * Math.square(r)
}`)
}

func TestTraitMembers(t *testing.T) {
	assertClean(t, `trait Shape {
  def area(): Double
  fun describe(): String { "area" }
}
class Circle(r: Double) with Shape {
  fun area(): Double { 3.14 * r * r }
}
fun use(c: Circle): Double { c.area() }`)
}

func TestExtensionThisBinding(t *testing.T) {
	assertClean(t, `extension Int {
  fun isEven(): Boolean { this % 2 == 0 }
  fun double(): Int { this * 2 }
}
fun use(n: Int): Boolean { n.isEven() }`)
}

func TestThisOutsideContext(t *testing.T) {
	assertError(t, "fun f(): Int { this }", "'this' used outside")
}

func TestFunctionValuesAndLambdas(t *testing.T) {
	assertClean(t, `fun twice(f: Int => Int, x: Int): Int { f(f(x)) }
fun main(): Int { twice((x: Int) => x * 2, 3) }`)
}

func TestLambdaParameterPushdown(t *testing.T) {
	assertClean(t, `fun apply(f: Int => Int, x: Int): Int { f(x) }
fun main(): Int { apply((n) => n + 1, 1) }`)
}

func TestFunctionValueWrongArgument(t *testing.T) {
	assertError(t, `fun apply(f: Int => Int, x: Int): Int { f(x) }
fun main(): Int { apply((s: String) => 1, 2) }`, "type mismatch")
}

func TestBuiltinContainerMembers(t *testing.T) {
	assertClean(t, `fun f(xs: List<Int>): Int {
  xs.add(4)
  if (xs.contains(1)) { xs.get(0) } else { xs.size() }
}
fun g(s: String): String { s.substring(0, s.length()) }
fun h(m: Map<String, Int>): Int {
  m.put("k", 1)
  m.get("k")
}`)
}

func TestStructuralParameter(t *testing.T) {
	assertClean(t, `class Point(x: Int) {
  fun getX(): Int { x }
}
fun readX(p: { getX: () => Int }): Int { p.getX() }
fun main(): Int { readX(Point(5)) }`)
}

func TestGenericClass(t *testing.T) {
	assertClean(t, `class Box<T>(value: T) {
  fun get(): T { value }
}
fun main(): Int {
  val b = Box(5)
  b.get()
}`)
}

func TestGenericTypeArgumentCount(t *testing.T) {
	assertError(t, `class Box<T>(value: T) { }
fun f(b: Box<Int, String>): Unit { }`, "type argument")
	assertError(t, "fun f(xs: List): Unit { }", "type argument")
}

func TestUnknownTypeAnnotation(t *testing.T) {
	assertError(t, "fun f(x: Widget): Unit { }", "unknown type")
}

func TestUnknownTypeSuggestion(t *testing.T) {
	_, errs := analyze(t, `class Widget() { }
fun f(x: Wiget): Unit { }`)
	require.NotEmpty(t, errs)
	require.NotEmpty(t, errs[0].Suggestions)
	assert.Contains(t, errs[0].Suggestions[0], "Widget")
}

func TestMutualMemberReference(t *testing.T) {
	assertClean(t, `class Counter(start: Int) {
  fun current(): Int { start }
  fun next(): Int { current() + 1 }
}`)
}
