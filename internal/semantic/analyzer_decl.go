package semantic

import (
	"slate/internal/ast"
	"slate/internal/errors"
	"slate/internal/types"
)

// checkDeclarations walks bodies in source order. Signatures were all
// registered by the collection pass, so any body may reference any
// declaration.
func (a *Analyzer) checkDeclarations(program *ast.Program) {
	for _, decl := range program.Decls {
		switch node := decl.(type) {
		case *ast.FunctionDecl:
			a.checkFunction(node, a.globalScope, a.typeParamEnvs[node])
		case *ast.ClassDecl:
			a.checkClass(node)
		case *ast.TraitDecl:
			a.checkTrait(node)
		case *ast.ObjectDecl:
			a.checkObject(node)
		case *ast.ExtensionDecl:
			a.checkExtension(node)
		}
	}
}

// checkFunction checks one function or method body against its signature.
// Return statements are checked where they occur, so the trailing-expression
// check is skipped when the body ends in an explicit return.
func (a *Analyzer) checkFunction(fn *ast.FunctionDecl, parent *Scope, tpEnv map[string]types.Type) {
	scope := NewScope(parent)

	for _, param := range fn.Params {
		var t types.Type = types.AnyType
		if param.Ann != nil {
			t = a.resolveTypeAnn(param.Ann, tpEnv)
		}
		scope.Define(param.Name.Value, SymbolParameter, t, param.Name.Pos)
		if param.Default != nil {
			defType := a.inferExpr(param.Default, scope)
			if defType != nil && !types.Subtype(defType, t) {
				a.addError(errors.TypeMismatch(t.String(), defType.String(), param.Default.NodePos()))
			}
		}
	}

	var declaredRet types.Type
	if fn.Return != nil {
		declaredRet = a.resolveTypeAnn(fn.Return, tpEnv)
	}

	prevRet, prevEnv := a.currentReturn, a.currentTpEnv
	a.currentReturn, a.currentTpEnv = declaredRet, tpEnv
	bodyType := a.inferExpr(fn.Body, scope)
	a.currentReturn, a.currentTpEnv = prevRet, prevEnv

	if declaredRet == nil {
		// Harden the inferred return into the registered signature so
		// call sites and the emitter see the real type, not the
		// placeholder variable.
		a.solveReturn(fn.Name.Value, bodyType)
		return
	}
	if types.IsPrim(declaredRet, types.KindUnit) {
		return
	}
	if endsWithReturn(fn.Body) {
		return
	}
	if bodyType != nil && !types.Subtype(bodyType, declaredRet) {
		a.addError(errors.TypeMismatch(declaredRet.String(), bodyType.String(), fn.Body.EndPos))
	}
}

// solveReturn replaces a fresh return variable with the inferred body type
// in whichever signature registered this name.
func (a *Analyzer) solveReturn(name string, bodyType types.Type) {
	if bodyType == nil {
		return
	}
	update := func(sig *types.FunctionType) {
		if _, isVar := sig.Return.(*types.TypeVar); isVar {
			sig.Return = bodyType
		}
	}
	if sig, ok := a.functions[name]; ok {
		update(sig)
	}
	for _, methods := range a.extensions {
		if sig, ok := methods[name]; ok {
			update(sig)
		}
	}
	for _, registered := range a.registry.Names() {
		if named := a.lookupNamed(registered); named != nil {
			if member, ok := named.Members[name]; ok {
				if sig, isFn := member.(*types.FunctionType); isFn {
					update(sig)
				}
			}
		}
	}
}

func endsWithReturn(block *ast.BlockExpr) bool {
	if len(block.Stmts) == 0 {
		return false
	}
	_, ok := block.Stmts[len(block.Stmts)-1].(*ast.ReturnStmt)
	return ok
}

func (a *Analyzer) checkClass(decl *ast.ClassDecl) {
	named := a.lookupNamed(decl.Name.Value)
	if named == nil {
		return
	}
	if named.Super != nil {
		if super, ok := named.Super.(*types.NamedType); !ok || super.Kind != types.ClassKind {
			a.addError(errors.TypeMismatch("a class type", named.Super.String(), decl.Super.NodePos()))
		}
	}
	a.checkTraitRefs(named.Traits, decl.Traits)

	scope := a.memberScope(named, decl.Name.Pos)

	for _, member := range decl.Members {
		switch m := member.(type) {
		case *ast.FieldDecl:
			a.checkFieldInit(m, named, scope)
		case *ast.FunctionDecl:
			a.checkFunction(m, scope, a.typeParamEnvs[m])
		}
	}
	if decl.Ctor != nil && decl.Ctor.Body != nil {
		prevRet := a.currentReturn
		a.currentReturn = types.UnitType
		a.inferExpr(decl.Ctor.Body, scope)
		a.currentReturn = prevRet
	}
}

func (a *Analyzer) checkTraitRefs(resolved []types.Type, anns []ast.TypeAnn) {
	for i, tr := range resolved {
		if named, ok := tr.(*types.NamedType); !ok || named.Kind != types.TraitKind {
			pos := ast.Position{}
			if i < len(anns) {
				pos = anns[i].NodePos()
			}
			a.addError(errors.TypeMismatch("a trait type", tr.String(), pos))
		}
	}
}

// flattenAll copies inherited members into every named type's member map,
// parents first, so the structural check and member lookup see one flat
// view regardless of declaration order. Own members win.
func (a *Analyzer) flattenAll() {
	done := make(map[string]bool)
	var flatten func(named *types.NamedType)
	flatten = func(named *types.NamedType) {
		if done[named.Name] {
			return
		}
		done[named.Name] = true

		merge := func(from types.Type) {
			source, ok := from.(*types.NamedType)
			if !ok {
				return
			}
			flatten(source)
			for name, t := range source.Members {
				if _, exists := named.Members[name]; !exists {
					named.Members[name] = t
				}
			}
		}
		if named.Super != nil {
			merge(named.Super)
		}
		for _, tr := range named.Traits {
			merge(tr)
		}
	}

	for _, name := range a.registry.Names() {
		if named := a.lookupNamed(name); named != nil {
			flatten(named)
		}
	}
}

// memberScope binds "this", fields, and methods so bodies can reference
// sibling members before their own declarations are checked.
func (a *Analyzer) memberScope(named *types.NamedType, pos ast.Position) *Scope {
	scope := NewScope(a.globalScope)
	scope.SetThis(named)
	for name, t := range named.Members {
		kind := SymbolField
		if _, isFn := t.(*types.FunctionType); isFn {
			kind = SymbolMethod
		}
		scope.Define(name, kind, t, pos)
	}
	return scope
}

func (a *Analyzer) checkFieldInit(field *ast.FieldDecl, named *types.NamedType, scope *Scope) {
	if field.Init == nil {
		return
	}
	initType := a.inferExpr(field.Init, scope)
	declared := named.Members[field.Name.Value]
	if initType != nil && declared != nil && !types.Subtype(initType, declared) {
		a.addError(errors.TypeMismatch(declared.String(), initType.String(), field.Init.NodePos()))
	}
}

func (a *Analyzer) checkTrait(decl *ast.TraitDecl) {
	named := a.lookupNamed(decl.Name.Value)
	if named == nil {
		return
	}

	a.checkTraitRefs(named.Traits, decl.SuperTraits)

	scope := a.memberScope(named, decl.Name.Pos)
	for _, member := range decl.Members {
		if m, ok := member.(*ast.FunctionDecl); ok {
			a.checkFunction(m, scope, a.typeParamEnvs[m])
		}
	}
}

func (a *Analyzer) checkObject(decl *ast.ObjectDecl) {
	named := a.lookupNamed(decl.Name.Value)
	if named == nil {
		return
	}

	if named.Super != nil {
		if super, ok := named.Super.(*types.NamedType); !ok || super.Kind != types.ClassKind {
			a.addError(errors.TypeMismatch("a class type", named.Super.String(), decl.Super.NodePos()))
		}
	}
	a.checkTraitRefs(named.Traits, decl.Traits)

	scope := a.memberScope(named, decl.Name.Pos)
	for _, member := range decl.Members {
		switch m := member.(type) {
		case *ast.FieldDecl:
			a.checkFieldInit(m, named, scope)
		case *ast.FunctionDecl:
			a.checkFunction(m, scope, a.typeParamEnvs[m])
		}
	}
}

// checkExtension binds "this" to the target type while checking each method.
func (a *Analyzer) checkExtension(decl *ast.ExtensionDecl) {
	target := a.resolveTypeAnn(decl.Target, nil)

	scope := NewScope(a.globalScope)
	scope.SetThis(target)

	for _, method := range decl.Methods {
		a.checkFunction(method, scope, a.typeParamEnvs[method])
	}
}
