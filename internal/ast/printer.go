package ast

import (
	"fmt"
	"strings"
)

// String methods reconstruct a canonical source form of each node. The
// output round-trips through the parser but does not preserve the original
// layout; tests use it to display structure.

func (i *Ident) String() string { return i.Value }

func (p *Program) String() string {
	var b strings.Builder
	for i, d := range p.Decls {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(d.String())
	}
	return b.String()
}

func (p *Param) String() string {
	var b strings.Builder
	b.WriteString(p.Name.Value)
	if p.Ann != nil {
		b.WriteString(": ")
		b.WriteString(p.Ann.String())
	}
	if p.Default != nil {
		b.WriteString(" = ")
		b.WriteString(p.Default.String())
	}
	return b.String()
}

func (tp *TypeParamNode) String() string {
	var b strings.Builder
	switch tp.Variance {
	case Covariant:
		b.WriteString("+")
	case Contravariant:
		b.WriteString("-")
	}
	b.WriteString(tp.Name.Value)
	if tp.Upper != nil {
		b.WriteString(" <: ")
		b.WriteString(tp.Upper.String())
	}
	if tp.Lower != nil {
		b.WriteString(" >: ")
		b.WriteString(tp.Lower.String())
	}
	return b.String()
}

func (c *Constructor) String() string {
	return "(" + paramList(c.Params) + ")"
}

func (m *MapEntry) String() string {
	return m.Key.String() + " -> " + m.Value.String()
}

func (m *StructuralMemberAnn) String() string {
	return m.Name.Value + ": " + m.Ann.String()
}

func paramList(params []*Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

func typeParamList(params []*TypeParamNode) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func annList(anns []TypeAnn) string {
	parts := make([]string, len(anns))
	for i, a := range anns {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

func (f *FunctionDecl) String() string {
	var b strings.Builder
	b.WriteString("fun ")
	b.WriteString(f.Name.Value)
	b.WriteString(typeParamList(f.TypeParams))
	b.WriteString("(")
	b.WriteString(paramList(f.Params))
	b.WriteString(")")
	if f.Return != nil {
		b.WriteString(": ")
		b.WriteString(f.Return.String())
	}
	b.WriteString(" ")
	b.WriteString(f.Body.String())
	return b.String()
}

func (f *FieldDecl) String() string {
	var b strings.Builder
	if f.Mutable {
		b.WriteString("var ")
	} else {
		b.WriteString("val ")
	}
	b.WriteString(f.Name.Value)
	if f.Ann != nil {
		b.WriteString(": ")
		b.WriteString(f.Ann.String())
	}
	if f.Init != nil {
		b.WriteString(" = ")
		b.WriteString(f.Init.String())
	}
	return b.String()
}

func (a *AbstractMethodDecl) String() string {
	var b strings.Builder
	b.WriteString("def ")
	b.WriteString(a.Name.Value)
	b.WriteString("(")
	b.WriteString(paramList(a.Params))
	b.WriteString(")")
	if a.Return != nil {
		b.WriteString(": ")
		b.WriteString(a.Return.String())
	}
	return b.String()
}

func (c *ClassDecl) String() string {
	var b strings.Builder
	b.WriteString("class ")
	b.WriteString(c.Name.Value)
	b.WriteString(typeParamList(c.TypeParams))
	if c.Ctor != nil {
		b.WriteString(c.Ctor.String())
	}
	if c.Super != nil {
		b.WriteString(" extends ")
		b.WriteString(c.Super.String())
	}
	for _, tr := range c.Traits {
		b.WriteString(" with ")
		b.WriteString(tr.String())
	}
	b.WriteString(" {")
	for _, m := range c.Members {
		b.WriteString("\n  ")
		b.WriteString(indentTail(m.String()))
	}
	b.WriteString("\n}")
	return b.String()
}

func (t *TraitDecl) String() string {
	var b strings.Builder
	b.WriteString("trait ")
	b.WriteString(t.Name.Value)
	b.WriteString(typeParamList(t.TypeParams))
	for i, tr := range t.SuperTraits {
		if i == 0 {
			b.WriteString(" extends ")
		} else {
			b.WriteString(" with ")
		}
		b.WriteString(tr.String())
	}
	b.WriteString(" {")
	for _, m := range t.Members {
		b.WriteString("\n  ")
		b.WriteString(indentTail(m.String()))
	}
	b.WriteString("\n}")
	return b.String()
}

func (o *ObjectDecl) String() string {
	var b strings.Builder
	b.WriteString("object ")
	b.WriteString(o.Name.Value)
	if o.Super != nil {
		b.WriteString(" extends ")
		b.WriteString(o.Super.String())
	}
	for _, tr := range o.Traits {
		b.WriteString(" with ")
		b.WriteString(tr.String())
	}
	b.WriteString(" {")
	for _, m := range o.Members {
		b.WriteString("\n  ")
		b.WriteString(indentTail(m.String()))
	}
	b.WriteString("\n}")
	return b.String()
}

func (e *ExtensionDecl) String() string {
	var b strings.Builder
	b.WriteString("extension ")
	b.WriteString(e.Target.String())
	b.WriteString(" {")
	for _, m := range e.Methods {
		b.WriteString("\n  ")
		b.WriteString(indentTail(m.String()))
	}
	b.WriteString("\n}")
	return b.String()
}

func (e *ExprStmt) String() string { return e.Expr.String() }

func (v *VarDeclStmt) String() string {
	var b strings.Builder
	if v.Mutable {
		b.WriteString("var ")
	} else {
		b.WriteString("val ")
	}
	b.WriteString(v.Name.Value)
	if v.Ann != nil {
		b.WriteString(": ")
		b.WriteString(v.Ann.String())
	}
	if v.Init != nil {
		b.WriteString(" = ")
		b.WriteString(v.Init.String())
	}
	return b.String()
}

func (r *ReturnStmt) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return " + r.Value.String()
}

func (l *IntLit) String() string { return l.Raw }

func (l *DoubleLit) String() string { return l.Raw }

func (l *StringLit) String() string { return l.Raw }

func (l *BoolLit) String() string { return fmt.Sprintf("%t", l.Value) }

func (*NullLit) String() string { return "null" }

func (i *IdentExpr) String() string { return i.Name }

func (*ThisExpr) String() string { return "this" }

func (b *BinaryExpr) String() string {
	return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")"
}

func (u *UnaryExpr) String() string { return u.Op + u.Value.String() }

func (m *MethodCallExpr) String() string {
	var b strings.Builder
	b.WriteString(m.Receiver.String())
	if m.Method.Value != "apply" {
		b.WriteString(".")
		b.WriteString(m.Method.Value)
	}
	if len(m.TypeArgs) > 0 {
		b.WriteString("<")
		b.WriteString(annList(m.TypeArgs))
		b.WriteString(">")
	}
	b.WriteString("(")
	parts := make([]string, len(m.Args))
	for i, a := range m.Args {
		parts[i] = a.String()
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString(")")
	return b.String()
}

func (f *FieldAccessExpr) String() string {
	return f.Target.String() + "." + f.Field.Value
}

func (a *AssignExpr) String() string {
	return a.Target.String() + " = " + a.Value.String()
}

func (b *BlockExpr) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for _, s := range b.Stmts {
		sb.WriteString("\n  ")
		sb.WriteString(indentTail(s.String()))
	}
	sb.WriteString("\n}")
	return sb.String()
}

func (i *IfExpr) String() string {
	var b strings.Builder
	b.WriteString("if (")
	b.WriteString(i.Cond.String())
	b.WriteString(") ")
	b.WriteString(i.Then.String())
	if i.Else != nil {
		b.WriteString(" else ")
		b.WriteString(i.Else.String())
	}
	return b.String()
}

func (w *WhileExpr) String() string {
	return "while (" + w.Cond.String() + ") " + w.Body.String()
}

func (l *ListLitExpr) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (m *MapLitExpr) String() string {
	parts := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (l *LambdaExpr) String() string {
	return "{ " + paramList(l.Params) + " => " + l.Body.String() + " }"
}

func (s *SimpleTypeAnn) String() string { return s.Name.Value }

func (g *GenericTypeAnn) String() string {
	return g.Name.Value + "<" + annList(g.Args) + ">"
}

func (f *FunctionTypeAnn) String() string {
	return "(" + annList(f.Params) + ") => " + f.Return.String()
}

func (s *StructuralTypeAnn) String() string {
	parts := make([]string, len(s.Members))
	for i, m := range s.Members {
		parts[i] = m.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func indentTail(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}
