package types

// Subtype reports whether s <: t. The relation is reflexive and transitive;
// it is a pure function of its arguments.
func Subtype(s, t Type) bool {
	if Equal(s, t) {
		return true
	}

	// Nothing is the bottom type, Any the top.
	if IsPrim(s, KindNothing) {
		return true
	}
	if IsPrim(t, KindAny) {
		return true
	}

	// Null inhabits every reference type.
	if IsPrim(s, KindNull) {
		return IsReference(t)
	}

	// An unknown is compatible with whatever its bound is compatible with.
	if sv, ok := s.(*TypeVar); ok {
		return sv.Upper != nil && Subtype(sv.Upper, t)
	}

	switch tt := t.(type) {
	case *ListType:
		st, ok := s.(*ListType)
		return ok && Subtype(st.Elem, tt.Elem)

	case *SetType:
		st, ok := s.(*SetType)
		return ok && Subtype(st.Elem, tt.Elem)

	case *MapType:
		st, ok := s.(*MapType)
		return ok && Subtype(st.Key, tt.Key) && Subtype(st.Value, tt.Value)

	case *FunctionType:
		st, ok := s.(*FunctionType)
		if !ok || len(st.Params) != len(tt.Params) {
			return false
		}
		// Parameters are contravariant, the return type covariant.
		for i := range tt.Params {
			if !Subtype(tt.Params[i], st.Params[i]) {
				return false
			}
		}
		return Subtype(st.Return, tt.Return)

	case *StructuralType:
		members, ok := memberView(s)
		if !ok {
			return false
		}
		// Width plus depth: s needs every required member at a subtype.
		for name, required := range tt.Members {
			have, present := members[name]
			if !present || !Subtype(have, required) {
				return false
			}
		}
		return true

	case *NamedType:
		sn, ok := s.(*NamedType)
		if !ok {
			return false
		}
		if sn.Name == tt.Name {
			return argsConform(sn, tt)
		}
		// Otherwise a declared supertype or trait must reach t.
		if sn.Super != nil && Subtype(sn.Super, t) {
			return true
		}
		for _, tr := range sn.Traits {
			if Subtype(tr, t) {
				return true
			}
		}
		return false
	}

	return false
}

// argsConform relates two instantiations of the same named type under the
// declared per-parameter variance. Unmarked parameters require equal
// arguments.
func argsConform(s, t *NamedType) bool {
	if len(s.TypeArgs) != len(t.TypeArgs) {
		return false
	}
	params := t.Params
	if len(params) == 0 {
		params = s.Params
	}
	for i := range s.TypeArgs {
		variance := Invariant
		if i < len(params) {
			variance = params[i].Variance
		}
		switch variance {
		case Covariant:
			if !Subtype(s.TypeArgs[i], t.TypeArgs[i]) {
				return false
			}
		case Contravariant:
			if !Subtype(t.TypeArgs[i], s.TypeArgs[i]) {
				return false
			}
		default:
			if !Equal(s.TypeArgs[i], t.TypeArgs[i]) {
				return false
			}
		}
	}
	return true
}

// memberView exposes the member map a structural check runs against.
// Classes, traits, and objects satisfy shapes through their declared
// (flattened) members.
func memberView(t Type) (map[string]Type, bool) {
	switch tt := t.(type) {
	case *StructuralType:
		return tt.Members, true
	case *NamedType:
		return tt.Members, true
	}
	return nil, false
}

// SatisfiesBounds reports whether arg is a legal instantiation of param.
func SatisfiesBounds(arg Type, param TypeParam) bool {
	if param.Upper != nil && !Subtype(arg, param.Upper) {
		return false
	}
	if param.Lower != nil && !Subtype(param.Lower, arg) {
		return false
	}
	return true
}

// Unify returns the narrowest common supertype of a and b under the local
// rule: b if a <: b, else a if b <: a, else failure. There is no constraint
// solving.
func Unify(a, b Type) (Type, bool) {
	if Subtype(a, b) {
		return b, true
	}
	if Subtype(b, a) {
		return a, true
	}
	return nil, false
}
