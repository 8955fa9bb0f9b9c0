package ast

import "slate/internal/types"

type Node interface {
	NodePos() Position
	NodeEndPos() Position
	NodeType() NodeType
	String() string
}

func (i *Ident) NodePos() Position    { return i.Pos }
func (i *Ident) NodeEndPos() Position { return i.EndPos }
func (*Ident) NodeType() NodeType     { return IDENT }

func (p *Program) NodePos() Position    { return p.Pos }
func (p *Program) NodeEndPos() Position { return p.EndPos }
func (*Program) NodeType() NodeType     { return PROGRAM }

func (p *Param) NodePos() Position    { return p.Pos }
func (p *Param) NodeEndPos() Position { return p.EndPos }
func (*Param) NodeType() NodeType     { return PARAM }

func (tp *TypeParamNode) NodePos() Position    { return tp.Pos }
func (tp *TypeParamNode) NodeEndPos() Position { return tp.EndPos }
func (*TypeParamNode) NodeType() NodeType      { return TYPE_PARAM }

func (c *Constructor) NodePos() Position    { return c.Pos }
func (c *Constructor) NodeEndPos() Position { return c.EndPos }
func (*Constructor) NodeType() NodeType     { return CONSTRUCTOR }

func (m *MapEntry) NodePos() Position    { return m.Pos }
func (m *MapEntry) NodeEndPos() Position { return m.EndPos }
func (*MapEntry) NodeType() NodeType     { return MAP_ENTRY }

func (m *StructuralMemberAnn) NodePos() Position    { return m.Pos }
func (m *StructuralMemberAnn) NodeEndPos() Position { return m.EndPos }
func (*StructuralMemberAnn) NodeType() NodeType     { return STRUCTURAL_MEMBER_ANN }

func (f *FunctionDecl) NodePos() Position    { return f.Pos }
func (f *FunctionDecl) NodeEndPos() Position { return f.EndPos }
func (*FunctionDecl) NodeType() NodeType     { return FUNCTION_DECL }

func (f *FieldDecl) NodePos() Position    { return f.Pos }
func (f *FieldDecl) NodeEndPos() Position { return f.EndPos }
func (*FieldDecl) NodeType() NodeType     { return FIELD_DECL }

func (a *AbstractMethodDecl) NodePos() Position    { return a.Pos }
func (a *AbstractMethodDecl) NodeEndPos() Position { return a.EndPos }
func (*AbstractMethodDecl) NodeType() NodeType     { return ABSTRACT_METHOD_DECL }

func (c *ClassDecl) NodePos() Position    { return c.Pos }
func (c *ClassDecl) NodeEndPos() Position { return c.EndPos }
func (*ClassDecl) NodeType() NodeType     { return CLASS_DECL }

func (t *TraitDecl) NodePos() Position    { return t.Pos }
func (t *TraitDecl) NodeEndPos() Position { return t.EndPos }
func (*TraitDecl) NodeType() NodeType     { return TRAIT_DECL }

func (o *ObjectDecl) NodePos() Position    { return o.Pos }
func (o *ObjectDecl) NodeEndPos() Position { return o.EndPos }
func (*ObjectDecl) NodeType() NodeType     { return OBJECT_DECL }

func (e *ExtensionDecl) NodePos() Position    { return e.Pos }
func (e *ExtensionDecl) NodeEndPos() Position { return e.EndPos }
func (*ExtensionDecl) NodeType() NodeType     { return EXTENSION_DECL }

func (e *ExprStmt) NodePos() Position    { return e.Pos }
func (e *ExprStmt) NodeEndPos() Position { return e.EndPos }
func (*ExprStmt) NodeType() NodeType     { return EXPR_STMT }

func (v *VarDeclStmt) NodePos() Position    { return v.Pos }
func (v *VarDeclStmt) NodeEndPos() Position { return v.EndPos }
func (*VarDeclStmt) NodeType() NodeType     { return VAR_DECL_STMT }

func (r *ReturnStmt) NodePos() Position    { return r.Pos }
func (r *ReturnStmt) NodeEndPos() Position { return r.EndPos }
func (*ReturnStmt) NodeType() NodeType     { return RETURN_STMT }

func (l *IntLit) NodePos() Position    { return l.Pos }
func (l *IntLit) NodeEndPos() Position { return l.EndPos }
func (*IntLit) NodeType() NodeType     { return INT_LIT }

func (l *DoubleLit) NodePos() Position    { return l.Pos }
func (l *DoubleLit) NodeEndPos() Position { return l.EndPos }
func (*DoubleLit) NodeType() NodeType     { return DOUBLE_LIT }

func (l *StringLit) NodePos() Position    { return l.Pos }
func (l *StringLit) NodeEndPos() Position { return l.EndPos }
func (*StringLit) NodeType() NodeType     { return STRING_LIT }

func (l *BoolLit) NodePos() Position    { return l.Pos }
func (l *BoolLit) NodeEndPos() Position { return l.EndPos }
func (*BoolLit) NodeType() NodeType     { return BOOL_LIT }

func (l *NullLit) NodePos() Position    { return l.Pos }
func (l *NullLit) NodeEndPos() Position { return l.EndPos }
func (*NullLit) NodeType() NodeType     { return NULL_LIT }

func (i *IdentExpr) NodePos() Position    { return i.Pos }
func (i *IdentExpr) NodeEndPos() Position { return i.EndPos }
func (*IdentExpr) NodeType() NodeType     { return IDENT_EXPR }

func (t *ThisExpr) NodePos() Position    { return t.Pos }
func (t *ThisExpr) NodeEndPos() Position { return t.EndPos }
func (*ThisExpr) NodeType() NodeType     { return THIS_EXPR }

func (b *BinaryExpr) NodePos() Position    { return b.Pos }
func (b *BinaryExpr) NodeEndPos() Position { return b.EndPos }
func (*BinaryExpr) NodeType() NodeType     { return BINARY_EXPR }

func (u *UnaryExpr) NodePos() Position    { return u.Pos }
func (u *UnaryExpr) NodeEndPos() Position { return u.EndPos }
func (*UnaryExpr) NodeType() NodeType     { return UNARY_EXPR }

func (m *MethodCallExpr) NodePos() Position    { return m.Pos }
func (m *MethodCallExpr) NodeEndPos() Position { return m.EndPos }
func (*MethodCallExpr) NodeType() NodeType     { return METHOD_CALL_EXPR }

func (f *FieldAccessExpr) NodePos() Position    { return f.Pos }
func (f *FieldAccessExpr) NodeEndPos() Position { return f.EndPos }
func (*FieldAccessExpr) NodeType() NodeType     { return FIELD_ACCESS_EXPR }

func (a *AssignExpr) NodePos() Position    { return a.Pos }
func (a *AssignExpr) NodeEndPos() Position { return a.EndPos }
func (*AssignExpr) NodeType() NodeType     { return ASSIGN_EXPR }

func (b *BlockExpr) NodePos() Position    { return b.Pos }
func (b *BlockExpr) NodeEndPos() Position { return b.EndPos }
func (*BlockExpr) NodeType() NodeType     { return BLOCK_EXPR }

func (i *IfExpr) NodePos() Position    { return i.Pos }
func (i *IfExpr) NodeEndPos() Position { return i.EndPos }
func (*IfExpr) NodeType() NodeType     { return IF_EXPR }

func (w *WhileExpr) NodePos() Position    { return w.Pos }
func (w *WhileExpr) NodeEndPos() Position { return w.EndPos }
func (*WhileExpr) NodeType() NodeType     { return WHILE_EXPR }

func (l *ListLitExpr) NodePos() Position    { return l.Pos }
func (l *ListLitExpr) NodeEndPos() Position { return l.EndPos }
func (*ListLitExpr) NodeType() NodeType     { return LIST_LIT_EXPR }

func (m *MapLitExpr) NodePos() Position    { return m.Pos }
func (m *MapLitExpr) NodeEndPos() Position { return m.EndPos }
func (*MapLitExpr) NodeType() NodeType     { return MAP_LIT_EXPR }

func (l *LambdaExpr) NodePos() Position    { return l.Pos }
func (l *LambdaExpr) NodeEndPos() Position { return l.EndPos }
func (*LambdaExpr) NodeType() NodeType     { return LAMBDA_EXPR }

func (s *SimpleTypeAnn) NodePos() Position    { return s.Pos }
func (s *SimpleTypeAnn) NodeEndPos() Position { return s.EndPos }
func (*SimpleTypeAnn) NodeType() NodeType     { return SIMPLE_TYPE_ANN }

func (g *GenericTypeAnn) NodePos() Position    { return g.Pos }
func (g *GenericTypeAnn) NodeEndPos() Position { return g.EndPos }
func (*GenericTypeAnn) NodeType() NodeType     { return GENERIC_TYPE_ANN }

func (f *FunctionTypeAnn) NodePos() Position    { return f.Pos }
func (f *FunctionTypeAnn) NodeEndPos() Position { return f.EndPos }
func (*FunctionTypeAnn) NodeType() NodeType     { return FUNCTION_TYPE_ANN }

func (s *StructuralTypeAnn) NodePos() Position    { return s.Pos }
func (s *StructuralTypeAnn) NodeEndPos() Position { return s.EndPos }
func (*StructuralTypeAnn) NodeType() NodeType     { return STRUCTURAL_TYPE_ANN }

// Inferred-type slot accessors for every expression node.

func (l *IntLit) Type() types.Type     { return l.ty }
func (l *IntLit) SetType(t types.Type) { l.ty = t }

func (l *DoubleLit) Type() types.Type     { return l.ty }
func (l *DoubleLit) SetType(t types.Type) { l.ty = t }

func (l *StringLit) Type() types.Type     { return l.ty }
func (l *StringLit) SetType(t types.Type) { l.ty = t }

func (l *BoolLit) Type() types.Type     { return l.ty }
func (l *BoolLit) SetType(t types.Type) { l.ty = t }

func (l *NullLit) Type() types.Type     { return l.ty }
func (l *NullLit) SetType(t types.Type) { l.ty = t }

func (i *IdentExpr) Type() types.Type     { return i.ty }
func (i *IdentExpr) SetType(t types.Type) { i.ty = t }

func (e *ThisExpr) Type() types.Type     { return e.ty }
func (e *ThisExpr) SetType(t types.Type) { e.ty = t }

func (b *BinaryExpr) Type() types.Type     { return b.ty }
func (b *BinaryExpr) SetType(t types.Type) { b.ty = t }

func (u *UnaryExpr) Type() types.Type     { return u.ty }
func (u *UnaryExpr) SetType(t types.Type) { u.ty = t }

func (m *MethodCallExpr) Type() types.Type     { return m.ty }
func (m *MethodCallExpr) SetType(t types.Type) { m.ty = t }

func (f *FieldAccessExpr) Type() types.Type     { return f.ty }
func (f *FieldAccessExpr) SetType(t types.Type) { f.ty = t }

func (a *AssignExpr) Type() types.Type     { return a.ty }
func (a *AssignExpr) SetType(t types.Type) { a.ty = t }

func (b *BlockExpr) Type() types.Type     { return b.ty }
func (b *BlockExpr) SetType(t types.Type) { b.ty = t }

func (i *IfExpr) Type() types.Type     { return i.ty }
func (i *IfExpr) SetType(t types.Type) { i.ty = t }

func (w *WhileExpr) Type() types.Type     { return w.ty }
func (w *WhileExpr) SetType(t types.Type) { w.ty = t }

func (l *ListLitExpr) Type() types.Type     { return l.ty }
func (l *ListLitExpr) SetType(t types.Type) { l.ty = t }

func (m *MapLitExpr) Type() types.Type     { return m.ty }
func (m *MapLitExpr) SetType(t types.Type) { m.ty = t }

func (l *LambdaExpr) Type() types.Type     { return l.ty }
func (l *LambdaExpr) SetType(t types.Type) { l.ty = t }
