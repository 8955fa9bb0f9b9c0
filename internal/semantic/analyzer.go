package semantic

import (
	"slate/internal/ast"
	"slate/internal/errors"
	"slate/internal/types"
)

// Analyzer is the type checker and inferencer. It runs two passes: a
// collection pass that registers every top-level declaration's preliminary
// type, then a check pass over bodies. Because signatures are registered
// first, declaration order never matters for cross-references.
type Analyzer struct {
	program  *ast.Program
	registry *types.Registry
	errors   []errors.CompilerError

	globalScope  *Scope
	functions    map[string]*types.FunctionType
	constructors map[string]*types.FunctionType
	extensions   map[string]map[string]*types.FunctionType

	// Type-parameter environments per declaration, so the check pass sees
	// the same type variables the collection pass put into member types.
	typeParamEnvs map[ast.Node]map[string]types.Type

	currentReturn types.Type
	currentTpEnv  map[string]types.Type
}

// Info is the checked-program summary the emitter consumes.
type Info struct {
	Registry     *types.Registry
	Functions    map[string]*types.FunctionType
	Constructors map[string]*types.FunctionType
	Extensions   map[string]map[string]*types.FunctionType
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		registry:      types.NewRegistry(),
		errors:        make([]errors.CompilerError, 0),
		functions:     make(map[string]*types.FunctionType),
		constructors:  make(map[string]*types.FunctionType),
		extensions:    make(map[string]map[string]*types.FunctionType),
		typeParamEnvs: make(map[ast.Node]map[string]types.Type),
	}
}

func (a *Analyzer) Analyze(program *ast.Program) []errors.CompilerError {
	a.program = program
	a.globalScope = NewScope(nil)

	a.collectDeclarations(program)
	a.flattenAll()
	a.checkDeclarations(program)

	return a.errors
}

func (a *Analyzer) Errors() []errors.CompilerError {
	return a.errors
}

func (a *Analyzer) Info() *Info {
	return &Info{
		Registry:     a.registry,
		Functions:    a.functions,
		Constructors: a.constructors,
		Extensions:   a.extensions,
	}
}

func (a *Analyzer) addError(err errors.CompilerError) {
	a.errors = append(a.errors, err)
}

// collectDeclarations registers every top-level name before any member is
// resolved, then fills in signatures and member maps. Named types go into
// the registry as shells first so member annotations can mention any
// declared type, including the enclosing one.
func (a *Analyzer) collectDeclarations(program *ast.Program) {
	for _, decl := range program.Decls {
		switch node := decl.(type) {
		case *ast.ClassDecl:
			a.collectNamedShell(node.Name, types.ClassKind, node.TypeParams, node)
		case *ast.TraitDecl:
			a.collectNamedShell(node.Name, types.TraitKind, node.TypeParams, node)
		case *ast.ObjectDecl:
			a.collectNamedShell(node.Name, types.ObjectKind, nil, node)
		}
	}

	for _, decl := range program.Decls {
		switch node := decl.(type) {
		case *ast.FunctionDecl:
			a.collectFunction(node)
		case *ast.ClassDecl:
			a.collectClassMembers(node)
		case *ast.TraitDecl:
			a.collectTraitMembers(node)
		case *ast.ObjectDecl:
			a.collectObjectMembers(node)
		case *ast.ExtensionDecl:
			a.collectExtension(node)
		}
	}
}

func (a *Analyzer) collectNamedShell(name ast.Ident, kind types.NamedKind, typeParams []*ast.TypeParamNode, node ast.Node) {
	if _, exists := a.registry.Lookup(name.Value); exists {
		a.addError(errors.DuplicateDeclaration(name.Value, name.Pos))
		return
	}

	tpEnv := make(map[string]types.Type)
	var vars []types.Type
	var params []types.TypeParam
	for _, tp := range typeParams {
		v := a.registry.FreshVar(tp.Name.Value)
		tpEnv[tp.Name.Value] = v
		vars = append(vars, v)
		params = append(params, types.TypeParam{
			Name:     tp.Name.Value,
			Variance: variance(tp.Variance),
		})
	}

	named := &types.NamedType{
		Kind:     kind,
		Name:     name.Value,
		TypeArgs: vars,
		Params:   params,
		Members:  make(map[string]types.Type),
	}
	a.registry.Define(name.Value, named)
	a.typeParamEnvs[node] = tpEnv

	if len(params) > 0 {
		a.registry.DefineGeneric(&types.GenericDef{
			Name:   name.Value,
			Params: params,
			Base:   named,
		})
	}
}

func variance(v ast.Variance) types.Variance {
	switch v {
	case ast.Covariant:
		return types.Covariant
	case ast.Contravariant:
		return types.Contravariant
	}
	return types.Invariant
}

func (a *Analyzer) collectFunction(fn *ast.FunctionDecl) {
	if a.globalScope.LookupLocal(fn.Name.Value) != nil {
		a.addError(errors.DuplicateDeclaration(fn.Name.Value, fn.Name.Pos))
		return
	}

	tpEnv := a.bindTypeParams(fn.TypeParams, nil)
	a.typeParamEnvs[fn] = tpEnv

	sig := a.functionSignature(fn, tpEnv)
	a.functions[fn.Name.Value] = sig
	a.globalScope.Define(fn.Name.Value, SymbolFunction, sig, fn.Name.Pos)
}

// functionSignature resolves a declaration header to a function type. Every
// top-level parameter needs an annotation; the return annotation may be
// absent, in which case a fresh variable stands in until the body is
// inferred.
func (a *Analyzer) functionSignature(fn *ast.FunctionDecl, tpEnv map[string]types.Type) *types.FunctionType {
	params := make([]types.Type, len(fn.Params))
	for i, param := range fn.Params {
		if param.Ann == nil {
			a.addError(errors.MissingAnnotation("parameter", param.Name.Value, param.Name.Pos))
			params[i] = types.AnyType
			continue
		}
		params[i] = a.resolveTypeAnn(param.Ann, tpEnv)
	}

	var ret types.Type
	if fn.Return != nil {
		ret = a.resolveTypeAnn(fn.Return, tpEnv)
	} else {
		ret = a.registry.FreshVar("R")
	}
	return &types.FunctionType{Params: params, Return: ret}
}

func (a *Analyzer) bindTypeParams(typeParams []*ast.TypeParamNode, outer map[string]types.Type) map[string]types.Type {
	tpEnv := make(map[string]types.Type)
	for name, t := range outer {
		tpEnv[name] = t
	}
	for _, tp := range typeParams {
		v := a.registry.FreshVar(tp.Name.Value)
		if tp.Upper != nil {
			v.Upper = a.resolveTypeAnn(tp.Upper, tpEnv)
		}
		tpEnv[tp.Name.Value] = v
	}
	return tpEnv
}

func (a *Analyzer) collectClassMembers(decl *ast.ClassDecl) {
	named := a.lookupNamed(decl.Name.Value)
	if named == nil {
		return
	}
	tpEnv := a.typeParamEnvs[decl]

	if decl.Super != nil {
		named.Super = a.resolveTypeAnn(decl.Super, tpEnv)
	}
	for _, tr := range decl.Traits {
		named.Traits = append(named.Traits, a.resolveTypeAnn(tr, tpEnv))
	}

	var ctorParams []types.Type
	if decl.Ctor != nil {
		for _, param := range decl.Ctor.Params {
			if param.Ann == nil {
				a.addError(errors.MissingAnnotation("constructor parameter", param.Name.Value, param.Name.Pos))
				ctorParams = append(ctorParams, types.AnyType)
				continue
			}
			t := a.resolveTypeAnn(param.Ann, tpEnv)
			ctorParams = append(ctorParams, t)
			a.defineMember(named, param.Name.Value, t, param.Name.Pos)
		}
	}

	a.collectBodyMembers(named, decl.Members, tpEnv)

	// The class name doubles as its constructor in value position:
	// Point(10, 20) is an apply call on the identifier Point.
	if a.globalScope.LookupLocal(decl.Name.Value) != nil {
		a.addError(errors.DuplicateDeclaration(decl.Name.Value, decl.Name.Pos))
		return
	}
	ctor := &types.FunctionType{Params: ctorParams, Return: named}
	a.constructors[decl.Name.Value] = ctor
	a.globalScope.Define(decl.Name.Value, SymbolClass, ctor, decl.Name.Pos)
}

func (a *Analyzer) collectBodyMembers(named *types.NamedType, members []ast.ClassMember, tpEnv map[string]types.Type) {
	for _, member := range members {
		switch m := member.(type) {
		case *ast.FieldDecl:
			if m.Ann == nil {
				a.addError(errors.MissingAnnotation("field", m.Name.Value, m.Name.Pos))
				a.defineMember(named, m.Name.Value, types.AnyType, m.Name.Pos)
				continue
			}
			a.defineMember(named, m.Name.Value, a.resolveTypeAnn(m.Ann, tpEnv), m.Name.Pos)
		case *ast.FunctionDecl:
			env := a.bindTypeParams(m.TypeParams, tpEnv)
			a.typeParamEnvs[m] = env
			a.defineMember(named, m.Name.Value, a.functionSignature(m, env), m.Name.Pos)
		}
	}
}

func (a *Analyzer) defineMember(named *types.NamedType, name string, t types.Type, pos ast.Position) {
	if _, exists := named.Members[name]; exists {
		a.addError(errors.DuplicateDeclaration(name, pos))
		return
	}
	named.Members[name] = t
}

func (a *Analyzer) collectTraitMembers(decl *ast.TraitDecl) {
	named := a.lookupNamed(decl.Name.Value)
	if named == nil {
		return
	}
	tpEnv := a.typeParamEnvs[decl]

	for _, tr := range decl.SuperTraits {
		named.Traits = append(named.Traits, a.resolveTypeAnn(tr, tpEnv))
	}

	for _, member := range decl.Members {
		switch m := member.(type) {
		case *ast.FunctionDecl:
			env := a.bindTypeParams(m.TypeParams, tpEnv)
			a.typeParamEnvs[m] = env
			a.defineMember(named, m.Name.Value, a.functionSignature(m, env), m.Name.Pos)
		case *ast.AbstractMethodDecl:
			a.defineMember(named, m.Name.Value, a.abstractSignature(m, tpEnv), m.Name.Pos)
		}
	}
}

func (a *Analyzer) abstractSignature(m *ast.AbstractMethodDecl, tpEnv map[string]types.Type) *types.FunctionType {
	params := make([]types.Type, len(m.Params))
	for i, param := range m.Params {
		if param.Ann == nil {
			a.addError(errors.MissingAnnotation("parameter", param.Name.Value, param.Name.Pos))
			params[i] = types.AnyType
			continue
		}
		params[i] = a.resolveTypeAnn(param.Ann, tpEnv)
	}
	ret := types.Type(types.UnitType)
	if m.Return != nil {
		ret = a.resolveTypeAnn(m.Return, tpEnv)
	}
	return &types.FunctionType{Params: params, Return: ret}
}

func (a *Analyzer) collectObjectMembers(decl *ast.ObjectDecl) {
	named := a.lookupNamed(decl.Name.Value)
	if named == nil {
		return
	}

	if decl.Super != nil {
		named.Super = a.resolveTypeAnn(decl.Super, nil)
	}
	for _, tr := range decl.Traits {
		named.Traits = append(named.Traits, a.resolveTypeAnn(tr, nil))
	}
	a.collectBodyMembers(named, decl.Members, nil)

	// The singleton's name is a value of its own type.
	if a.globalScope.LookupLocal(decl.Name.Value) != nil {
		a.addError(errors.DuplicateDeclaration(decl.Name.Value, decl.Name.Pos))
		return
	}
	a.globalScope.Define(decl.Name.Value, SymbolObject, named, decl.Name.Pos)
}

// collectExtension registers every extension method as a static signature on
// the target type, keyed by the target's printed form.
func (a *Analyzer) collectExtension(decl *ast.ExtensionDecl) {
	target := a.resolveTypeAnn(decl.Target, nil)
	key := target.String()

	if a.extensions[key] == nil {
		a.extensions[key] = make(map[string]*types.FunctionType)
	}
	for _, method := range decl.Methods {
		if _, exists := a.extensions[key][method.Name.Value]; exists {
			a.addError(errors.DuplicateDeclaration(method.Name.Value, method.Name.Pos))
			continue
		}
		tpEnv := a.bindTypeParams(method.TypeParams, nil)
		a.typeParamEnvs[method] = tpEnv
		a.extensions[key][method.Name.Value] = a.functionSignature(method, tpEnv)
	}
}

func (a *Analyzer) lookupNamed(name string) *types.NamedType {
	t, ok := a.registry.Lookup(name)
	if !ok {
		return nil
	}
	named, ok := t.(*types.NamedType)
	if !ok {
		return nil
	}
	return named
}

// extensionLookup resolves an extension method against a receiver type.
func (a *Analyzer) extensionLookup(recv types.Type, name string) (*types.FunctionType, bool) {
	methods, ok := a.extensions[recv.String()]
	if !ok {
		return nil, false
	}
	sig, ok := methods[name]
	return sig, ok
}
