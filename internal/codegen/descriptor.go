package codegen

import (
	"strings"

	"slate/internal/classfile"
	"slate/internal/types"
)

// Descriptor maps a semantic type onto its JVM field descriptor. Type
// variables and structural types erase to Object.
func Descriptor(t types.Type) string {
	switch tt := t.(type) {
	case *types.Primitive:
		switch tt.Kind {
		case types.KindInt:
			return "I"
		case types.KindDouble:
			return "D"
		case types.KindBoolean:
			return "Z"
		case types.KindUnit:
			return "V"
		case types.KindString:
			return "Ljava/lang/String;"
		}
		return "Ljava/lang/Object;"
	case *types.ListType:
		return "Ljava/util/List;"
	case *types.SetType:
		return "Ljava/util/Set;"
	case *types.MapType:
		return "Ljava/util/Map;"
	case *types.FunctionType:
		if shape, ok := ShapeFor(tt); ok {
			return "L" + shape.Interface + ";"
		}
		return "Ljava/lang/Object;"
	case *types.NamedType:
		return "L" + tt.Name + ";"
	}
	return "Ljava/lang/Object;"
}

func MethodDescriptor(params []types.Type, ret types.Type) string {
	var b strings.Builder
	b.WriteString("(")
	for _, p := range params {
		b.WriteString(Descriptor(p))
	}
	b.WriteString(")")
	b.WriteString(Descriptor(ret))
	return b.String()
}

// internalName is the receiver class for invokes and casts on values of t.
func internalName(t types.Type) string {
	desc := Descriptor(t)
	if strings.HasPrefix(desc, "L") {
		return strings.TrimSuffix(strings.TrimPrefix(desc, "L"), ";")
	}
	return "java/lang/Object"
}

// boxedClass is the wrapper class for a primitive's reference view.
func boxedClass(t types.Type) (string, bool) {
	if p, ok := t.(*types.Primitive); ok {
		switch p.Kind {
		case types.KindInt:
			return "java/lang/Integer", true
		case types.KindDouble:
			return "java/lang/Double", true
		case types.KindBoolean:
			return "java/lang/Boolean", true
		}
	}
	return "", false
}

// boxedDescriptor is the descriptor of t seen through an Object-typed slot.
func boxedDescriptor(t types.Type) string {
	if class, ok := boxedClass(t); ok {
		return "L" + class + ";"
	}
	return Descriptor(t)
}

func verifTypeOf(t types.Type) (classfile.VerifType, bool) {
	switch Descriptor(t) {
	case "I", "Z":
		return classfile.IntVT(), true
	case "D":
		return classfile.DoubleVT(), true
	case "V":
		return classfile.TopVT(), false
	default:
		return classfile.ObjectVT(internalName(t)), true
	}
}

func isUnit(t types.Type) bool {
	return t == nil || types.IsPrim(t, types.KindUnit)
}

func isJVMPrimitive(t types.Type) bool {
	switch Descriptor(t) {
	case "I", "Z", "D":
		return true
	}
	return false
}
