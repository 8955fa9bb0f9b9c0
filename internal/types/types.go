package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the closed sum of semantic types. Instances are produced while
// resolving annotations and during inference; they live for one compile.
type Type interface {
	isType()
	String() string
}

type PrimKind int

const (
	KindInt PrimKind = iota
	KindDouble
	KindString
	KindBoolean
	KindUnit
	KindAny
	KindNothing
	KindNull
)

// Primitive is one of the built-in singleton types. Always compare by kind:
// callers may construct their own instances.
type Primitive struct {
	Kind PrimKind
}

var (
	IntType     = &Primitive{KindInt}
	DoubleType  = &Primitive{KindDouble}
	StringType  = &Primitive{KindString}
	BooleanType = &Primitive{KindBoolean}
	UnitType    = &Primitive{KindUnit}
	AnyType     = &Primitive{KindAny}
	NothingType = &Primitive{KindNothing}
	NullType    = &Primitive{KindNull}
)

// ListType is the built-in covariant list.
type ListType struct {
	Elem Type
}

// SetType is the built-in covariant set.
type SetType struct {
	Elem Type
}

// MapType is the built-in map, covariant in both key and value position.
type MapType struct {
	Key   Type
	Value Type
}

// FunctionType is the type of function values and methods.
type FunctionType struct {
	Params []Type
	Return Type
}

// StructuralType is a shape: any type carrying at least these members,
// at compatible types, satisfies it.
type StructuralType struct {
	Members map[string]Type
}

type NamedKind int

const (
	ClassKind NamedKind = iota
	TraitKind
	ObjectKind
)

// NamedType is a declared class, trait, or object. Members is the flattened
// member map including everything inherited from Super and Traits. Params
// carries the declaring definition's type parameters so the subtype relation
// can apply the right variance to TypeArgs.
type NamedType struct {
	Kind     NamedKind
	Name     string
	TypeArgs []Type
	Params   []TypeParam
	Super    Type
	Traits   []Type
	Members  map[string]Type
}

// TypeParam is a declared type parameter with its variance annotation and
// optional bounds.
type TypeParam struct {
	Name     string
	Variance Variance
	Upper    Type
	Lower    Type
}

type Variance int

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

// TypeVar is a fresh unknown introduced by inference. ID is unique within a
// checking pass.
type TypeVar struct {
	Name  string
	ID    int
	Upper Type
}

// GenericDef is the one-per-declaration registration of a generic type,
// instantiated into NamedType on use.
type GenericDef struct {
	Name   string
	Params []TypeParam
	Base   Type
}

func (*Primitive) isType()      {}
func (*ListType) isType()       {}
func (*SetType) isType()        {}
func (*MapType) isType()        {}
func (*FunctionType) isType()   {}
func (*StructuralType) isType() {}
func (*NamedType) isType()      {}
func (*TypeVar) isType()        {}
func (*GenericDef) isType()     {}

var primNames = map[PrimKind]string{
	KindInt:     "Int",
	KindDouble:  "Double",
	KindString:  "String",
	KindBoolean: "Boolean",
	KindUnit:    "Unit",
	KindAny:     "Any",
	KindNothing: "Nothing",
	KindNull:    "Null",
}

func (p *Primitive) String() string { return primNames[p.Kind] }

func (l *ListType) String() string { return "List<" + l.Elem.String() + ">" }

func (s *SetType) String() string { return "Set<" + s.Elem.String() + ">" }

func (m *MapType) String() string {
	return "Map<" + m.Key.String() + ", " + m.Value.String() + ">"
}

func (f *FunctionType) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ") => " + f.Return.String()
}

func (s *StructuralType) String() string {
	names := make([]string, 0, len(s.Members))
	for name := range s.Members {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + s.Members[name].String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (n *NamedType) String() string {
	if len(n.TypeArgs) == 0 {
		return n.Name
	}
	parts := make([]string, len(n.TypeArgs))
	for i, a := range n.TypeArgs {
		parts[i] = a.String()
	}
	return n.Name + "<" + strings.Join(parts, ", ") + ">"
}

func (v *TypeVar) String() string { return fmt.Sprintf("%s#%d", v.Name, v.ID) }

func (g *GenericDef) String() string {
	parts := make([]string, len(g.Params))
	for i, p := range g.Params {
		parts[i] = p.Name
	}
	return g.Name + "<" + strings.Join(parts, ", ") + ">"
}

// IsPrim reports whether t is the primitive of the given kind.
func IsPrim(t Type, kind PrimKind) bool {
	p, ok := t.(*Primitive)
	return ok && p.Kind == kind
}

// IsNumeric reports whether t is Int or Double.
func IsNumeric(t Type) bool {
	return IsPrim(t, KindInt) || IsPrim(t, KindDouble)
}

// IsReference reports whether values of t live on the heap on the target VM.
// Null is assignable exactly to reference types.
func IsReference(t Type) bool {
	if p, ok := t.(*Primitive); ok {
		switch p.Kind {
		case KindInt, KindDouble, KindBoolean, KindUnit, KindNothing:
			return false
		}
	}
	return true
}

// Equal is deep structural equality. Named types are equal when their names
// and type arguments are; type variables when their IDs are.
func Equal(a, b Type) bool {
	switch at := a.(type) {
	case *Primitive:
		bt, ok := b.(*Primitive)
		return ok && at.Kind == bt.Kind
	case *ListType:
		bt, ok := b.(*ListType)
		return ok && Equal(at.Elem, bt.Elem)
	case *SetType:
		bt, ok := b.(*SetType)
		return ok && Equal(at.Elem, bt.Elem)
	case *MapType:
		bt, ok := b.(*MapType)
		return ok && Equal(at.Key, bt.Key) && Equal(at.Value, bt.Value)
	case *FunctionType:
		bt, ok := b.(*FunctionType)
		if !ok || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return Equal(at.Return, bt.Return)
	case *StructuralType:
		bt, ok := b.(*StructuralType)
		if !ok || len(at.Members) != len(bt.Members) {
			return false
		}
		for name, t := range at.Members {
			other, present := bt.Members[name]
			if !present || !Equal(t, other) {
				return false
			}
		}
		return true
	case *NamedType:
		bt, ok := b.(*NamedType)
		if !ok || at.Name != bt.Name || len(at.TypeArgs) != len(bt.TypeArgs) {
			return false
		}
		for i := range at.TypeArgs {
			if !Equal(at.TypeArgs[i], bt.TypeArgs[i]) {
				return false
			}
		}
		return true
	case *TypeVar:
		bt, ok := b.(*TypeVar)
		return ok && at.ID == bt.ID
	case *GenericDef:
		bt, ok := b.(*GenericDef)
		return ok && at.Name == bt.Name
	}
	return false
}
