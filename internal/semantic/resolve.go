package semantic

import (
	"slate/internal/ast"
	"slate/internal/errors"
	"slate/internal/types"
)

var primitiveNames = map[string]types.Type{
	"Int":     types.IntType,
	"Double":  types.DoubleType,
	"String":  types.StringType,
	"Boolean": types.BooleanType,
	"Unit":    types.UnitType,
	"Any":     types.AnyType,
	"AnyRef":  types.AnyType,
	"Nothing": types.NothingType,
}

// resolveTypeAnn turns a surface annotation into a semantic type. Unknown
// names report a diagnostic and resolve to Any so checking can continue.
func (a *Analyzer) resolveTypeAnn(ann ast.TypeAnn, tpEnv map[string]types.Type) types.Type {
	switch node := ann.(type) {
	case *ast.SimpleTypeAnn:
		return a.resolveSimple(node, tpEnv)
	case *ast.GenericTypeAnn:
		return a.resolveGeneric(node, tpEnv)
	case *ast.FunctionTypeAnn:
		params := make([]types.Type, len(node.Params))
		for i, p := range node.Params {
			params[i] = a.resolveTypeAnn(p, tpEnv)
		}
		return &types.FunctionType{
			Params: params,
			Return: a.resolveTypeAnn(node.Return, tpEnv),
		}
	case *ast.StructuralTypeAnn:
		members := make(map[string]types.Type, len(node.Members))
		for _, m := range node.Members {
			members[m.Name.Value] = a.resolveTypeAnn(m.Ann, tpEnv)
		}
		return &types.StructuralType{Members: members}
	}
	return types.AnyType
}

func (a *Analyzer) resolveSimple(node *ast.SimpleTypeAnn, tpEnv map[string]types.Type) types.Type {
	name := node.Name.Value

	if prim, ok := primitiveNames[name]; ok {
		return prim
	}
	if tpEnv != nil {
		if v, ok := tpEnv[name]; ok {
			return v
		}
	}
	if t, ok := a.registry.Lookup(name); ok {
		if named, isNamed := t.(*types.NamedType); isNamed && len(named.Params) > 0 {
			a.addError(errors.TypeArgumentCount(name, len(named.Params), 0, node.Pos))
			return types.AnyType
		}
		return t
	}

	switch name {
	case "List", "Set", "Map":
		a.addError(errors.TypeArgumentCount(name, builtinArity(name), 0, node.Pos))
		return types.AnyType
	}

	similar := errors.FindSimilarNames(name, a.registry.Names())
	a.addError(errors.UnknownType(name, node.Pos, similar))
	return types.AnyType
}

func builtinArity(name string) int {
	if name == "Map" {
		return 2
	}
	return 1
}

func (a *Analyzer) resolveGeneric(node *ast.GenericTypeAnn, tpEnv map[string]types.Type) types.Type {
	name := node.Name.Value
	args := make([]types.Type, len(node.Args))
	for i, arg := range node.Args {
		args[i] = a.resolveTypeAnn(arg, tpEnv)
	}

	switch name {
	case "List":
		if len(args) != 1 {
			a.addError(errors.TypeArgumentCount(name, 1, len(args), node.Pos))
			return types.AnyType
		}
		return &types.ListType{Elem: args[0]}
	case "Set":
		if len(args) != 1 {
			a.addError(errors.TypeArgumentCount(name, 1, len(args), node.Pos))
			return types.AnyType
		}
		return &types.SetType{Elem: args[0]}
	case "Map":
		if len(args) != 2 {
			a.addError(errors.TypeArgumentCount(name, 2, len(args), node.Pos))
			return types.AnyType
		}
		return &types.MapType{Key: args[0], Value: args[1]}
	}

	def, ok := a.registry.Generic(name)
	if !ok {
		if _, isPlain := a.registry.Lookup(name); isPlain {
			a.addError(errors.TypeArgumentCount(name, 0, len(args), node.Pos))
		} else {
			similar := errors.FindSimilarNames(name, a.registry.Names())
			a.addError(errors.UnknownType(name, node.Pos, similar))
		}
		return types.AnyType
	}
	if len(args) != len(def.Params) {
		a.addError(errors.TypeArgumentCount(name, len(def.Params), len(args), node.Pos))
		return types.AnyType
	}
	for i, arg := range args {
		if !types.SatisfiesBounds(arg, def.Params[i]) {
			bound := "its bounds"
			if def.Params[i].Upper != nil {
				bound = def.Params[i].Upper.String()
			} else if def.Params[i].Lower != nil {
				bound = def.Params[i].Lower.String()
			}
			a.addError(errors.BoundViolation(arg.String(), def.Params[i].Name, bound, node.Args[i].NodePos()))
		}
	}
	return types.Instantiate(def, args)
}
