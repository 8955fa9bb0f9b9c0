package codegen

import (
	"strings"

	"slate/internal/types"
)

// Shape is the functional-interface form chosen for a function type:
// interface, single abstract method, and the erased method descriptor.
type Shape struct {
	Interface string
	Method    string
	Desc      string
}

// ShapeFor picks the platform functional interface for a function type,
// preferring primitive-specialised shapes and falling back to the
// object-typed ones. Arities above two have no shape.
func ShapeFor(fn *types.FunctionType) (Shape, bool) {
	intOf := func(t types.Type) bool { return types.IsPrim(t, types.KindInt) }
	doubleOf := func(t types.Type) bool { return types.IsPrim(t, types.KindDouble) }

	switch len(fn.Params) {
	case 0:
		return Shape{
			Interface: "java/util/function/Supplier",
			Method:    "get",
			Desc:      "()Ljava/lang/Object;",
		}, true

	case 1:
		p, r := fn.Params[0], fn.Return
		switch {
		case intOf(p) && intOf(r):
			return Shape{
				Interface: "java/util/function/IntUnaryOperator",
				Method:    "applyAsInt",
				Desc:      "(I)I",
			}, true
		case intOf(p) && doubleOf(r):
			return Shape{
				Interface: "java/util/function/IntToDoubleFunction",
				Method:    "applyAsDouble",
				Desc:      "(I)D",
			}, true
		case intOf(p):
			return Shape{
				Interface: "java/util/function/IntFunction",
				Method:    "apply",
				Desc:      "(I)Ljava/lang/Object;",
			}, true
		case intOf(r):
			return Shape{
				Interface: "java/util/function/ToIntFunction",
				Method:    "applyAsInt",
				Desc:      "(Ljava/lang/Object;)I",
			}, true
		default:
			return Shape{
				Interface: "java/util/function/Function",
				Method:    "apply",
				Desc:      "(Ljava/lang/Object;)Ljava/lang/Object;",
			}, true
		}

	case 2:
		if intOf(fn.Params[0]) && intOf(fn.Params[1]) && intOf(fn.Return) {
			return Shape{
				Interface: "java/util/function/IntBinaryOperator",
				Method:    "applyAsInt",
				Desc:      "(II)I",
			}, true
		}
		return Shape{
			Interface: "java/util/function/BiFunction",
			Method:    "apply",
			Desc:      "(Ljava/lang/Object;Ljava/lang/Object;)Ljava/lang/Object;",
		}, true
	}

	return Shape{}, false
}

// instantiatedDesc is the specialised method type the callsite claims for
// its shape: primitive slots stay primitive, erased slots take the boxed or
// declared reference type.
func instantiatedDesc(fn *types.FunctionType, shape Shape) string {
	erased := splitShapeParams(shape.Desc)

	var b strings.Builder
	b.WriteString("(")
	for i, p := range fn.Params {
		if i < len(erased) && erased[i] != "Ljava/lang/Object;" {
			b.WriteString(erased[i])
		} else {
			b.WriteString(boxedDescriptor(p))
		}
	}
	b.WriteString(")")
	if retDesc := shapeReturn(shape.Desc); retDesc != "Ljava/lang/Object;" {
		b.WriteString(retDesc)
	} else {
		b.WriteString(boxedDescriptor(fn.Return))
	}
	return b.String()
}

func splitShapeParams(desc string) []string {
	var params []string
	i := 1
	for i < len(desc) && desc[i] != ')' {
		start := i
		for desc[i] == '[' {
			i++
		}
		if desc[i] == 'L' {
			for desc[i] != ';' {
				i++
			}
		}
		i++
		params = append(params, desc[start:i])
	}
	return params
}

func shapeReturn(desc string) string {
	return desc[strings.IndexByte(desc, ')')+1:]
}
