package codegen

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slate/internal/errors"
	"slate/internal/parser"
	"slate/internal/semantic"
	"slate/internal/types"
)

func compile(t *testing.T, source string) ([]Artifact, []errors.CompilerError) {
	t.Helper()
	program, parseErrs, scanErrs := parser.ParseSource("test.sl", source)
	require.Empty(t, scanErrs)
	require.Empty(t, parseErrs)

	analyzer := semantic.NewAnalyzer()
	semErrs := analyzer.Analyze(program)
	require.Empty(t, semErrs, "program should type-check")

	emitter := NewEmitter(analyzer.Info(), "test.sl")
	return emitter.Emit(program)
}

func compileClean(t *testing.T, source string) []Artifact {
	t.Helper()
	artifacts, errs := compile(t, source)
	require.Empty(t, errs, "program should lower cleanly")
	return artifacts
}

func artifactNames(artifacts []Artifact) []string {
	names := make([]string, len(artifacts))
	for i, a := range artifacts {
		names[i] = a.Name
	}
	return names
}

func assertClassFile(t *testing.T, artifact Artifact) {
	t.Helper()
	require.GreaterOrEqual(t, len(artifact.Bytes), 8)
	assert.Equal(t, uint32(0xCAFEBABE), binary.BigEndian.Uint32(artifact.Bytes[0:4]))
	assert.Equal(t, uint16(52), binary.BigEndian.Uint16(artifact.Bytes[6:8]), "major version supports invokedynamic")
}

func TestEmitTopLevelFunction(t *testing.T) {
	artifacts := compileClean(t, "fun add(x: Int, y: Int): Int { x + y }")
	require.Len(t, artifacts, 1)
	assert.Equal(t, "add$.class", artifacts[0].Name)
	assertClassFile(t, artifacts[0])
	assert.True(t, bytes.Contains(artifacts[0].Bytes, []byte("add")), "method name in constant pool")
	assert.True(t, bytes.Contains(artifacts[0].Bytes, []byte("(II)I")), "descriptor in constant pool")
}

func TestEmitFactorial(t *testing.T) {
	artifacts := compileClean(t, `fun factorial(n: Int): Int {
  if (n <= 1) { 1 } else { n * factorial(n - 1) }
}`)
	require.Len(t, artifacts, 1)
	assertClassFile(t, artifacts[0])
	assert.True(t, bytes.Contains(artifacts[0].Bytes, []byte("StackMapTable")),
		"branching code carries frames")
}

func TestEmitClass(t *testing.T) {
	artifacts := compileClean(t, `class Point(x: Int, y: Int) {
  fun getX(): Int { x }
  fun getY(): Int { y }
}`)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "Point.class", artifacts[0].Name)
	assertClassFile(t, artifacts[0])
	assert.True(t, bytes.Contains(artifacts[0].Bytes, []byte("<init>")))
	assert.True(t, bytes.Contains(artifacts[0].Bytes, []byte("getX")))
}

func TestEmitObjectSingleton(t *testing.T) {
	artifacts := compileClean(t, `object Math {
  fun pi(): Double { 3.14159 }
  fun square(x: Int): Int { x * x }
}`)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "Math.class", artifacts[0].Name)
	assertClassFile(t, artifacts[0])
	assert.True(t, bytes.Contains(artifacts[0].Bytes, []byte("INSTANCE")))
	assert.True(t, bytes.Contains(artifacts[0].Bytes, []byte("<clinit>")))
}

func TestEmitTraitAsInterface(t *testing.T) {
	artifacts := compileClean(t, `trait Shape {
  def area(): Double
  fun describe(): String { "a shape" }
}`)
	require.Len(t, artifacts, 1)
	assertClassFile(t, artifacts[0])

	flags := binary.BigEndian.Uint16(artifacts[0].Bytes[classAccessFlagsOffset(t, artifacts[0].Bytes):])
	assert.NotZero(t, flags&0x0200, "trait lowers to an interface")
}

// classAccessFlagsOffset walks past the constant pool to the access flags.
func classAccessFlagsOffset(t *testing.T, b []byte) int {
	t.Helper()
	count := int(binary.BigEndian.Uint16(b[8:10]))
	off := 10
	for i := 1; i < count; i++ {
		tag := b[off]
		off++
		switch tag {
		case 1: // Utf8
			off += 2 + int(binary.BigEndian.Uint16(b[off:]))
		case 3, 4: // Integer, Float
			off += 4
		case 5, 6: // Long, Double
			off += 8
			i++
		case 7, 8, 16: // Class, String, MethodType
			off += 2
		case 15: // MethodHandle
			off += 3
		default: // refs, NameAndType, InvokeDynamic
			off += 4
		}
	}
	return off
}

func TestEmitExtension(t *testing.T) {
	artifacts := compileClean(t, `extension Int {
  fun isEven(): Boolean { this % 2 == 0 }
  fun double(): Int { this * 2 }
}`)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "Int$Extension.class", artifacts[0].Name)
	assertClassFile(t, artifacts[0])
	assert.True(t, bytes.Contains(artifacts[0].Bytes, []byte("isEven")))
	assert.True(t, bytes.Contains(artifacts[0].Bytes, []byte("(I)Z")), "receiver becomes the first parameter")
	assert.True(t, bytes.Contains(artifacts[0].Bytes, []byte("(I)I")))
}

func TestEmitLambdaCallsite(t *testing.T) {
	artifacts := compileClean(t, `fun twice(f: Int => Int, x: Int): Int { f(f(x)) }
fun main(): Int { twice((x: Int) => x * 2, 3) }`)
	require.Len(t, artifacts, 2)

	var mainClass Artifact
	for _, a := range artifacts {
		if a.Name == "main$.class" {
			mainClass = a
		}
	}
	require.NotEmpty(t, mainClass.Name)
	assert.True(t, bytes.Contains(mainClass.Bytes, []byte("LambdaMetafactory")))
	assert.True(t, bytes.Contains(mainClass.Bytes, []byte("BootstrapMethods")))
	assert.True(t, bytes.Contains(mainClass.Bytes, []byte("IntUnaryOperator")))
	assert.True(t, bytes.Contains(mainClass.Bytes, []byte("lambda$0")))
}

func TestEmitFunctionReference(t *testing.T) {
	artifacts := compileClean(t, `fun double(x: Int): Int { x * 2 }
fun apply(f: Int => Int, x: Int): Int { f(x) }
fun main(): Int { apply(double, 3) }`)

	var mainClass Artifact
	for _, a := range artifacts {
		if a.Name == "main$.class" {
			mainClass = a
		}
	}
	require.NotEmpty(t, mainClass.Name)
	assert.True(t, bytes.Contains(mainClass.Bytes, []byte("double$")),
		"method reference bootstraps against the wrapper class")
	assert.True(t, bytes.Contains(mainClass.Bytes, []byte("LambdaMetafactory")))
}

func TestEmitListLiteral(t *testing.T) {
	artifacts := compileClean(t, `fun nums(): List<Int> { [1, 2, 3] }`)
	require.Len(t, artifacts, 1)
	assert.True(t, bytes.Contains(artifacts[0].Bytes, []byte("java/util/ArrayList")))
	assert.True(t, bytes.Contains(artifacts[0].Bytes, []byte("java/lang/Integer")), "elements box on the way in")
}

func TestEmitWhileLoop(t *testing.T) {
	artifacts := compileClean(t, `fun count(n: Int): Int {
  var i = 0
  while (i < n) { i = i + 1 }
  i
}`)
	require.Len(t, artifacts, 1)
	assertClassFile(t, artifacts[0])
	assert.True(t, bytes.Contains(artifacts[0].Bytes, []byte("StackMapTable")))
}

func TestEmitStringConcat(t *testing.T) {
	artifacts := compileClean(t, `fun label(n: Int): String { "n = " + n }`)
	require.Len(t, artifacts, 1)
	assert.True(t, bytes.Contains(artifacts[0].Bytes, []byte("valueOf")))
	assert.True(t, bytes.Contains(artifacts[0].Bytes, []byte("concat")))
}

func TestEmitAllScenariosTogether(t *testing.T) {
	artifacts := compileClean(t, `fun add(x: Int, y: Int): Int { x + y }
fun factorial(n: Int): Int { if (n <= 1) { 1 } else { n * factorial(n - 1) } }
class Point(x: Int, y: Int) { fun getX(): Int { x } fun getY(): Int { y } }
object Math { fun pi(): Double { 3.14159 } fun square(x: Int): Int { x * x } }
extension Int { fun isEven(): Boolean { this % 2 == 0 } fun double(): Int { this * 2 } }
fun twice(f: Int => Int, x: Int): Int { f(f(x)) }
fun main(): Int { twice((x: Int) => x * 2, 3) }`)

	assert.Equal(t, []string{
		"add$.class",
		"factorial$.class",
		"Point.class",
		"Math.class",
		"Int$Extension.class",
		"twice$.class",
		"main$.class",
	}, artifactNames(artifacts))
	for _, a := range artifacts {
		assertClassFile(t, a)
	}
}

func TestEmitGenericClassErasure(t *testing.T) {
	artifacts := compileClean(t, `class Box<T>(value: T) {
  fun get(): T { value }
}
fun main(): Int {
  val b = Box(5)
  b.get()
}`)
	require.Len(t, artifacts, 2)

	box := artifacts[0]
	assert.Equal(t, "Box.class", box.Name)
	assert.True(t, bytes.Contains(box.Bytes, []byte("()Ljava/lang/Object;")),
		"type parameters erase to Object in method descriptors")

	main := artifacts[1]
	assert.True(t, bytes.Contains(main.Bytes, []byte("intValue")),
		"call sites unbox erased returns back to the instantiated type")
}

func TestEmitUnsupportedLambdaArity(t *testing.T) {
	program, parseErrs, scanErrs := parser.ParseSource("test.sl",
		"fun f(g: (Int, Int, Int) => Int): Int { g(1, 2, 3) }")
	require.Empty(t, scanErrs)
	require.Empty(t, parseErrs)

	analyzer := semantic.NewAnalyzer()
	require.Empty(t, analyzer.Analyze(program))

	emitter := NewEmitter(analyzer.Info(), "test.sl")
	artifacts, errs := emitter.Emit(program)
	assert.Nil(t, artifacts, "failed compiles produce no artifacts")
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "cannot be materialised")
}

func TestEmitterIsSingleUse(t *testing.T) {
	source := "fun f(): Int { 1 }"
	program, _, _ := parser.ParseSource("test.sl", source)
	analyzer := semantic.NewAnalyzer()
	require.Empty(t, analyzer.Analyze(program))

	emitter := NewEmitter(analyzer.Info(), "test.sl")
	_, errs := emitter.Emit(program)
	require.Empty(t, errs)

	_, errs = emitter.Emit(program)
	assert.NotEmpty(t, errs, "a fresh emitter is required per program")
}

func TestShapeTable(t *testing.T) {
	cases := []struct {
		params []types.Type
		ret    types.Type
		iface  string
	}{
		{nil, types.IntType, "java/util/function/Supplier"},
		{[]types.Type{types.IntType}, types.IntType, "java/util/function/IntUnaryOperator"},
		{[]types.Type{types.IntType}, types.DoubleType, "java/util/function/IntToDoubleFunction"},
		{[]types.Type{types.IntType}, types.StringType, "java/util/function/IntFunction"},
		{[]types.Type{types.StringType}, types.IntType, "java/util/function/ToIntFunction"},
		{[]types.Type{types.StringType}, types.StringType, "java/util/function/Function"},
		{[]types.Type{types.IntType, types.IntType}, types.IntType, "java/util/function/IntBinaryOperator"},
		{[]types.Type{types.IntType, types.StringType}, types.StringType, "java/util/function/BiFunction"},
	}
	for _, tc := range cases {
		shape, ok := ShapeFor(&types.FunctionType{Params: tc.params, Return: tc.ret})
		require.True(t, ok)
		assert.Equal(t, tc.iface, shape.Interface)
	}

	_, ok := ShapeFor(&types.FunctionType{
		Params: []types.Type{types.IntType, types.IntType, types.IntType},
		Return: types.IntType,
	})
	assert.False(t, ok, "arity three has no shape")
}

func TestDescriptors(t *testing.T) {
	assert.Equal(t, "I", Descriptor(types.IntType))
	assert.Equal(t, "D", Descriptor(types.DoubleType))
	assert.Equal(t, "Z", Descriptor(types.BooleanType))
	assert.Equal(t, "V", Descriptor(types.UnitType))
	assert.Equal(t, "Ljava/lang/String;", Descriptor(types.StringType))
	assert.Equal(t, "Ljava/lang/Object;", Descriptor(types.AnyType))
	assert.Equal(t, "Ljava/util/List;", Descriptor(&types.ListType{Elem: types.IntType}))
	assert.Equal(t, "Ljava/util/function/IntUnaryOperator;",
		Descriptor(&types.FunctionType{Params: []types.Type{types.IntType}, Return: types.IntType}))
}

func TestInstantiatedDescriptor(t *testing.T) {
	fn := &types.FunctionType{Params: []types.Type{types.IntType}, Return: types.StringType}
	shape, ok := ShapeFor(fn)
	require.True(t, ok)
	assert.Equal(t, "(I)Ljava/lang/String;", instantiatedDesc(fn, shape))

	boxed := &types.FunctionType{Params: []types.Type{types.StringType, types.IntType}, Return: types.IntType}
	shape, ok = ShapeFor(boxed)
	require.True(t, ok)
	assert.Equal(t, "(Ljava/lang/String;Ljava/lang/Integer;)Ljava/lang/Integer;", instantiatedDesc(boxed, shape))
}
