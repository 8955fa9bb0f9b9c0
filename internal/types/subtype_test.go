package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTypes() []Type {
	shape := &NamedType{Kind: TraitKind, Name: "Shape", Members: map[string]Type{
		"area": &FunctionType{Return: DoubleType},
	}}
	circle := &NamedType{Kind: ClassKind, Name: "Circle", Traits: []Type{shape}, Members: map[string]Type{
		"area":   &FunctionType{Return: DoubleType},
		"radius": DoubleType,
	}}
	return []Type{
		IntType, DoubleType, StringType, BooleanType, UnitType, AnyType, NothingType, NullType,
		&ListType{Elem: IntType},
		&ListType{Elem: AnyType},
		&SetType{Elem: StringType},
		&MapType{Key: StringType, Value: IntType},
		&FunctionType{Params: []Type{IntType}, Return: IntType},
		&FunctionType{Params: []Type{AnyType}, Return: NothingType},
		&StructuralType{Members: map[string]Type{"x": IntType}},
		&StructuralType{Members: map[string]Type{"x": IntType, "y": IntType}},
		shape,
		circle,
	}
}

func TestSubtypingReflexivity(t *testing.T) {
	for _, ty := range sampleTypes() {
		assert.True(t, Subtype(ty, ty), "%s <: %s", ty, ty)
	}
}

func TestSubtypingTransitivity(t *testing.T) {
	samples := sampleTypes()
	for _, a := range samples {
		for _, b := range samples {
			if !Subtype(a, b) {
				continue
			}
			for _, c := range samples {
				if Subtype(b, c) {
					assert.True(t, Subtype(a, c), "%s <: %s <: %s", a, b, c)
				}
			}
		}
	}
}

func TestPrimitiveRules(t *testing.T) {
	for _, ty := range sampleTypes() {
		assert.True(t, Subtype(NothingType, ty), "Nothing <: %s", ty)
		assert.True(t, Subtype(ty, AnyType), "%s <: Any", ty)
	}

	assert.True(t, Subtype(NullType, StringType))
	assert.True(t, Subtype(NullType, &ListType{Elem: IntType}))
	assert.False(t, Subtype(NullType, IntType))
	assert.False(t, Subtype(NullType, BooleanType))
	assert.False(t, Subtype(NullType, UnitType))

	assert.False(t, Subtype(IntType, DoubleType))
	assert.False(t, Subtype(DoubleType, IntType))
	assert.False(t, Subtype(AnyType, IntType))
}

func TestListCovariance(t *testing.T) {
	assert.True(t, Subtype(&ListType{Elem: IntType}, &ListType{Elem: AnyType}))
	assert.False(t, Subtype(&ListType{Elem: AnyType}, &ListType{Elem: IntType}))
	assert.True(t, Subtype(&SetType{Elem: NothingType}, &SetType{Elem: StringType}))
	assert.True(t, Subtype(
		&MapType{Key: StringType, Value: IntType},
		&MapType{Key: AnyType, Value: AnyType}))
	assert.False(t, Subtype(
		&MapType{Key: AnyType, Value: IntType},
		&MapType{Key: StringType, Value: IntType}))
}

func TestFunctionVariance(t *testing.T) {
	prims := []Type{IntType, DoubleType, StringType, AnyType, NothingType}
	for _, a := range prims {
		for _, b := range prims {
			for _, r1 := range prims {
				for _, r2 := range prims {
					s := &FunctionType{Params: []Type{a}, Return: r1}
					u := &FunctionType{Params: []Type{b}, Return: r2}
					expected := Subtype(b, a) && Subtype(r1, r2)
					assert.Equal(t, expected, Subtype(s, u), "(%s) => %s <: (%s) => %s", a, r1, b, r2)
				}
			}
		}
	}
}

func TestFunctionArityMustMatch(t *testing.T) {
	one := &FunctionType{Params: []Type{IntType}, Return: IntType}
	two := &FunctionType{Params: []Type{IntType, IntType}, Return: IntType}
	assert.False(t, Subtype(one, two))
	assert.False(t, Subtype(two, one))
}

func TestStructuralWidthSubtyping(t *testing.T) {
	narrow := &StructuralType{Members: map[string]Type{"x": IntType}}
	wide := &StructuralType{Members: map[string]Type{"x": IntType, "y": StringType}}

	assert.True(t, Subtype(wide, narrow), "more members is a subtype")
	assert.False(t, Subtype(narrow, wide))
}

func TestStructuralDepthSubtyping(t *testing.T) {
	intMember := &StructuralType{Members: map[string]Type{"v": IntType}}
	anyMember := &StructuralType{Members: map[string]Type{"v": AnyType}}
	assert.True(t, Subtype(intMember, anyMember))
	assert.False(t, Subtype(anyMember, intMember))
}

func TestClassSatisfiesStructuralType(t *testing.T) {
	point := &NamedType{Kind: ClassKind, Name: "Point", Members: map[string]Type{
		"getX": &FunctionType{Return: IntType},
		"getY": &FunctionType{Return: IntType},
	}}
	hasGetX := &StructuralType{Members: map[string]Type{
		"getX": &FunctionType{Return: IntType},
	}}
	assert.True(t, Subtype(point, hasGetX))
	assert.False(t, Subtype(hasGetX, point), "structural types are not named types")
}

func TestNamedSubtypingThroughSupersAndTraits(t *testing.T) {
	drawable := &NamedType{Kind: TraitKind, Name: "Drawable", Members: map[string]Type{}}
	shape := &NamedType{Kind: ClassKind, Name: "Shape", Traits: []Type{drawable}, Members: map[string]Type{}}
	circle := &NamedType{Kind: ClassKind, Name: "Circle", Super: shape, Members: map[string]Type{}}

	assert.True(t, Subtype(circle, shape))
	assert.True(t, Subtype(circle, drawable), "transitively through the superclass's trait")
	assert.False(t, Subtype(shape, circle))
}

func TestUnmarkedGenericInvariance(t *testing.T) {
	box := func(arg Type) *NamedType {
		return &NamedType{
			Kind:     ClassKind,
			Name:     "Box",
			TypeArgs: []Type{arg},
			Params:   []TypeParam{{Name: "T", Variance: Invariant}},
			Members:  map[string]Type{},
		}
	}
	assert.True(t, Subtype(box(IntType), box(IntType)))
	assert.False(t, Subtype(box(IntType), box(AnyType)))
	assert.False(t, Subtype(box(AnyType), box(IntType)))
}

func TestDeclaredVariance(t *testing.T) {
	covariant := func(arg Type) *NamedType {
		return &NamedType{
			Kind:     ClassKind,
			Name:     "Producer",
			TypeArgs: []Type{arg},
			Params:   []TypeParam{{Name: "T", Variance: Covariant}},
			Members:  map[string]Type{},
		}
	}
	contravariant := func(arg Type) *NamedType {
		return &NamedType{
			Kind:     ClassKind,
			Name:     "Consumer",
			TypeArgs: []Type{arg},
			Params:   []TypeParam{{Name: "T", Variance: Contravariant}},
			Members:  map[string]Type{},
		}
	}

	assert.True(t, Subtype(covariant(IntType), covariant(AnyType)))
	assert.False(t, Subtype(covariant(AnyType), covariant(IntType)))

	assert.True(t, Subtype(contravariant(AnyType), contravariant(IntType)))
	assert.False(t, Subtype(contravariant(IntType), contravariant(AnyType)))
}

func TestTypeVariableBounds(t *testing.T) {
	bounded := &TypeVar{Name: "T", ID: 1, Upper: StringType}
	unbounded := &TypeVar{Name: "U", ID: 2}

	assert.True(t, Subtype(bounded, StringType))
	assert.True(t, Subtype(bounded, AnyType))
	assert.False(t, Subtype(bounded, IntType))

	assert.True(t, Subtype(unbounded, AnyType))
	assert.False(t, Subtype(unbounded, StringType))
}

func TestSatisfiesBounds(t *testing.T) {
	param := TypeParam{Name: "T", Upper: AnyType, Lower: NothingType}
	assert.True(t, SatisfiesBounds(IntType, param))

	strict := TypeParam{Name: "T", Upper: StringType}
	assert.True(t, SatisfiesBounds(StringType, strict))
	assert.True(t, SatisfiesBounds(NothingType, strict))
	assert.False(t, SatisfiesBounds(IntType, strict))
}

func TestUnify(t *testing.T) {
	unified, ok := Unify(IntType, IntType)
	assert.True(t, ok)
	assert.True(t, Equal(unified, IntType))

	unified, ok = Unify(NothingType, StringType)
	assert.True(t, ok)
	assert.True(t, Equal(unified, StringType))

	unified, ok = Unify(&ListType{Elem: IntType}, &ListType{Elem: AnyType})
	assert.True(t, ok)
	assert.True(t, Equal(unified, &ListType{Elem: AnyType}))

	_, ok = Unify(IntType, StringType)
	assert.False(t, ok)
}

func TestSubstituteAndInstantiate(t *testing.T) {
	v := &TypeVar{Name: "T", ID: 7}
	base := &NamedType{
		Kind:     ClassKind,
		Name:     "Box",
		TypeArgs: []Type{v},
		Params:   []TypeParam{{Name: "T"}},
		Members: map[string]Type{
			"value": v,
			"get":   &FunctionType{Return: v},
		},
	}
	def := &GenericDef{Name: "Box", Params: base.Params, Base: base}

	instance, ok := Instantiate(def, []Type{IntType}).(*NamedType)
	assert.True(t, ok)
	assert.True(t, Equal(instance.TypeArgs[0], IntType))
	assert.True(t, Equal(instance.Members["value"], IntType))
	assert.True(t, Equal(instance.Members["get"].(*FunctionType).Return, IntType))

	// the definition itself is untouched
	assert.True(t, Equal(base.Members["value"], v))
}

func TestRegistryFreshVarsAreUnique(t *testing.T) {
	r := NewRegistry()
	a := r.FreshVar("T")
	b := r.FreshVar("T")
	assert.NotEqual(t, a.ID, b.ID)
}
