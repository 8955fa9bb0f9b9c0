package ast

// Decl is the top-level declaration family.
type Decl interface {
	Node
	isDecl()
}

func (*FunctionDecl) isDecl() {}

func (*ClassDecl) isDecl() {}

func (*TraitDecl) isDecl() {}

func (*ObjectDecl) isDecl() {}

func (*ExtensionDecl) isDecl() {}

// ClassMember is anything allowed in a class or object body.
type ClassMember interface {
	Node
	isClassMember()
}

func (*FunctionDecl) isClassMember() {}

func (*FieldDecl) isClassMember() {}

// TraitMember is anything allowed in a trait body: concrete methods ("fun")
// and abstract signatures ("def").
type TraitMember interface {
	Node
	isTraitMember()
}

func (*FunctionDecl) isTraitMember() {}

func (*AbstractMethodDecl) isTraitMember() {}

// TypeAnn is the surface type annotation family, resolved to semantic types
// by the checker.
type TypeAnn interface {
	Node
	isTypeAnn()
}

func (*SimpleTypeAnn) isTypeAnn() {}

func (*GenericTypeAnn) isTypeAnn() {}

func (*FunctionTypeAnn) isTypeAnn() {}

func (*StructuralTypeAnn) isTypeAnn() {}
