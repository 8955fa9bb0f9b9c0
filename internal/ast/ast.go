package ast

import "slate/internal/types"

// Position tracks location information for error reporting and tooling
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// Ident represents any identifier: variable names, type names, method names.
type Ident struct {
	Pos    Position
	EndPos Position
	Value  string
}

// Program is one compilation unit: a flat sequence of top-level declarations.
type Program struct {
	Pos    Position
	EndPos Position
	Decls  []Decl
}

// Variance is a declaration-site annotation on a type parameter:
// '+' lifts the subtype relation covariantly through that position,
// '-' contravariantly, unmarked keeps it invariant.
type Variance int

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

// Param is a value parameter of a function, method, constructor, or lambda.
// Ann may be nil only for lambda parameters and local bindings.
type Param struct {
	Pos     Position
	EndPos  Position
	Name    Ident
	Ann     TypeAnn
	Default Expr
}

// TypeParamNode is a declared type parameter, e.g. "+T <: Shape".
type TypeParamNode struct {
	Pos      Position
	EndPos   Position
	Name     Ident
	Variance Variance
	Upper    TypeAnn
	Lower    TypeAnn
}

// Constructor holds a class's primary constructor parameters. Parameters
// become fields; the optional body runs after field initialisation.
type Constructor struct {
	Pos    Position
	EndPos Position
	Params []*Param
	Body   *BlockExpr
}

// MapEntry is one "key -> value" pair of a map literal.
type MapEntry struct {
	Pos    Position
	EndPos Position
	Key    Expr
	Value  Expr
}

// StructuralMemberAnn is one "name: Type" member of a structural annotation.
type StructuralMemberAnn struct {
	Pos    Position
	EndPos Position
	Name   Ident
	Ann    TypeAnn
}

// --- Declarations ---

// FunctionDecl is a top-level function or a concrete method (keyword "fun").
type FunctionDecl struct {
	Pos        Position
	EndPos     Position
	Name       Ident
	TypeParams []*TypeParamNode
	Params     []*Param
	Return     TypeAnn
	Body       *BlockExpr
}

// FieldDecl is a "val"/"var" member inside a class or object body.
type FieldDecl struct {
	Pos     Position
	EndPos  Position
	Name    Ident
	Ann     TypeAnn
	Mutable bool
	Init    Expr
}

// AbstractMethodDecl is a trait method signature (keyword "def"): no body,
// implementors must provide one.
type AbstractMethodDecl struct {
	Pos    Position
	EndPos Position
	Name   Ident
	Params []*Param
	Return TypeAnn
}

// ClassDecl declares a class with an optional primary constructor, an
// optional superclass, and implemented traits.
type ClassDecl struct {
	Pos        Position
	EndPos     Position
	Name       Ident
	TypeParams []*TypeParamNode
	Ctor       *Constructor
	Super      TypeAnn
	Traits     []TypeAnn
	Members    []ClassMember
}

// TraitDecl declares a trait: concrete methods plus abstract signatures.
type TraitDecl struct {
	Pos         Position
	EndPos      Position
	Name        Ident
	TypeParams  []*TypeParamNode
	SuperTraits []TypeAnn
	Members     []TraitMember
}

// ObjectDecl declares a singleton object.
type ObjectDecl struct {
	Pos    Position
	EndPos Position
	Name   Ident
	Super  TypeAnn
	Traits []TypeAnn
	Members []ClassMember
}

// ExtensionDecl adds methods to an existing type; inside the methods "this"
// is bound to the target type.
type ExtensionDecl struct {
	Pos     Position
	EndPos  Position
	Target  TypeAnn
	Methods []*FunctionDecl
}

// --- Statements ---

// ExprStmt wraps an expression used in statement position.
type ExprStmt struct {
	Pos    Position
	EndPos Position
	Expr   Expr
}

// VarDeclStmt is a local "val"/"var" binding. The annotation and the
// initializer are each optional, though the checker requires at least one.
type VarDeclStmt struct {
	Pos     Position
	EndPos  Position
	Name    Ident
	Ann     TypeAnn
	Init    Expr
	Mutable bool
}

// ReturnStmt returns from the enclosing function, with an optional value.
type ReturnStmt struct {
	Pos    Position
	EndPos Position
	Value  Expr
}

// --- Expressions ---

// IntLit is an integer literal like "42".
type IntLit struct {
	Pos    Position
	EndPos Position
	Value  int64
	Raw    string
	ty     types.Type
}

// DoubleLit is a floating literal like "3.14".
type DoubleLit struct {
	Pos    Position
	EndPos Position
	Value  float64
	Raw    string
	ty     types.Type
}

// StringLit is a string literal; Value holds the decoded text.
type StringLit struct {
	Pos    Position
	EndPos Position
	Value  string
	Raw    string
	ty     types.Type
}

// BoolLit is "true" or "false".
type BoolLit struct {
	Pos    Position
	EndPos Position
	Value  bool
	ty     types.Type
}

// NullLit is the "null" literal; it inhabits every reference type.
type NullLit struct {
	Pos    Position
	EndPos Position
	ty     types.Type
}

// IdentExpr is a bare identifier in expression position.
type IdentExpr struct {
	Pos    Position
	EndPos Position
	Name   string
	ty     types.Type
}

// ThisExpr is the receiver reference inside classes, objects, and extensions.
type ThisExpr struct {
	Pos    Position
	EndPos Position
	ty     types.Type
}

// BinaryExpr is "left op right".
type BinaryExpr struct {
	Pos    Position
	EndPos Position
	Op     string
	Left   Expr
	Right  Expr
	ty     types.Type
}

// UnaryExpr is "op value" for "!", "-", "+".
type UnaryExpr struct {
	Pos    Position
	EndPos Position
	Op     string
	Value  Expr
	ty     types.Type
}

// MethodCallExpr is "receiver.method(args)". The surface call "f(args)"
// normalises to receiver f with the synthetic method name "apply"; later
// stages recognise that shape to lower direct calls.
type MethodCallExpr struct {
	Pos      Position
	EndPos   Position
	Receiver Expr
	Method   Ident
	TypeArgs []TypeAnn
	Args     []Expr
	ty       types.Type
}

// FieldAccessExpr is "receiver.name" without a call.
type FieldAccessExpr struct {
	Pos    Position
	EndPos Position
	Target Expr
	Field  Ident
	ty     types.Type
}

// AssignExpr is "target = value"; the target must be an l-value.
type AssignExpr struct {
	Pos    Position
	EndPos Position
	Target Expr
	Value  Expr
	ty     types.Type
}

// BlockExpr is a brace-enclosed statement sequence; its value is the last
// statement's value.
type BlockExpr struct {
	Pos    Position
	EndPos Position
	Stmts  []Stmt
	ty     types.Type
}

// IfExpr is "if (cond) block else expr"; Else is nil, a block, or another if.
type IfExpr struct {
	Pos    Position
	EndPos Position
	Cond   Expr
	Then   *BlockExpr
	Else   Expr
	ty     types.Type
}

// WhileExpr is "while (cond) block"; its value is unit.
type WhileExpr struct {
	Pos    Position
	EndPos Position
	Cond   Expr
	Body   *BlockExpr
	ty     types.Type
}

// ListLitExpr is "[e1, e2, ...]".
type ListLitExpr struct {
	Pos      Position
	EndPos   Position
	Elements []Expr
	ty       types.Type
}

// MapLitExpr is "[k1 -> v1, k2 -> v2]".
type MapLitExpr struct {
	Pos     Position
	EndPos  Position
	Entries []*MapEntry
	ty      types.Type
}

// LambdaExpr is "{ params => body }" or "(params) => body". Lambdas read
// only their parameters and the enclosing type's members.
type LambdaExpr struct {
	Pos    Position
	EndPos Position
	Params []*Param
	Body   Expr
	ty     types.Type
}

// --- Type annotations ---

// SimpleTypeAnn is a bare type name.
type SimpleTypeAnn struct {
	Pos    Position
	EndPos Position
	Name   Ident
}

// GenericTypeAnn is "Name<A1, ...>".
type GenericTypeAnn struct {
	Pos    Position
	EndPos Position
	Name   Ident
	Args   []TypeAnn
}

// FunctionTypeAnn is "(P1, ...) => R"; "P => R" is shorthand for one param.
type FunctionTypeAnn struct {
	Pos    Position
	EndPos Position
	Params []TypeAnn
	Return TypeAnn
}

// StructuralTypeAnn is "{ name: Type, ... }".
type StructuralTypeAnn struct {
	Pos     Position
	EndPos  Position
	Members []*StructuralMemberAnn
}
