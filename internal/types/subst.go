package types

// Substitute replaces type variables by ID throughout t. Members of named
// types are rebuilt so instantiated generics carry instantiated members.
func Substitute(t Type, mapping map[int]Type) Type {
	if len(mapping) == 0 || t == nil {
		return t
	}

	switch tt := t.(type) {
	case *Primitive:
		return tt
	case *TypeVar:
		if repl, ok := mapping[tt.ID]; ok {
			return repl
		}
		return tt
	case *ListType:
		return &ListType{Elem: Substitute(tt.Elem, mapping)}
	case *SetType:
		return &SetType{Elem: Substitute(tt.Elem, mapping)}
	case *MapType:
		return &MapType{Key: Substitute(tt.Key, mapping), Value: Substitute(tt.Value, mapping)}
	case *FunctionType:
		params := make([]Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = Substitute(p, mapping)
		}
		return &FunctionType{Params: params, Return: Substitute(tt.Return, mapping)}
	case *StructuralType:
		members := make(map[string]Type, len(tt.Members))
		for name, m := range tt.Members {
			members[name] = Substitute(m, mapping)
		}
		return &StructuralType{Members: members}
	case *NamedType:
		args := make([]Type, len(tt.TypeArgs))
		changed := false
		for i, a := range tt.TypeArgs {
			args[i] = Substitute(a, mapping)
			if args[i] != tt.TypeArgs[i] {
				changed = true
			}
		}
		members := make(map[string]Type, len(tt.Members))
		for name, m := range tt.Members {
			members[name] = Substitute(m, mapping)
			if members[name] != tt.Members[name] {
				changed = true
			}
		}
		traits := make([]Type, len(tt.Traits))
		for i, tr := range tt.Traits {
			traits[i] = Substitute(tr, mapping)
			if traits[i] != tt.Traits[i] {
				changed = true
			}
		}
		super := Substitute(tt.Super, mapping)
		if super != tt.Super {
			changed = true
		}
		if !changed {
			return tt
		}
		return &NamedType{
			Kind:     tt.Kind,
			Name:     tt.Name,
			TypeArgs: args,
			Params:   tt.Params,
			Super:    super,
			Traits:   traits,
			Members:  members,
		}
	}
	return t
}

// Instantiate applies type arguments to a generic definition. The base
// type's TypeArgs are the definition's own parameter variables; they map
// positionally onto args.
func Instantiate(def *GenericDef, args []Type) Type {
	base, ok := def.Base.(*NamedType)
	if !ok {
		return def.Base
	}
	mapping := make(map[int]Type, len(args))
	for i, ta := range base.TypeArgs {
		if i >= len(args) {
			break
		}
		if v, isVar := ta.(*TypeVar); isVar {
			mapping[v.ID] = args[i]
		}
	}
	return Substitute(base, mapping)
}
