package types

// BuiltinMember resolves the well-known operations on the built-in container
// and string types. The signatures are instantiated against the receiver's
// type arguments, so List<Int>.get is (Int) => Int.
func BuiltinMember(recv Type, name string) (*FunctionType, bool) {
	switch rt := recv.(type) {
	case *ListType:
		switch name {
		case "size":
			return &FunctionType{Return: IntType}, true
		case "isEmpty":
			return &FunctionType{Return: BooleanType}, true
		case "get":
			return &FunctionType{Params: []Type{IntType}, Return: rt.Elem}, true
		case "add":
			return &FunctionType{Params: []Type{rt.Elem}, Return: UnitType}, true
		case "contains":
			return &FunctionType{Params: []Type{rt.Elem}, Return: BooleanType}, true
		}

	case *SetType:
		switch name {
		case "size":
			return &FunctionType{Return: IntType}, true
		case "isEmpty":
			return &FunctionType{Return: BooleanType}, true
		case "add":
			return &FunctionType{Params: []Type{rt.Elem}, Return: UnitType}, true
		case "contains":
			return &FunctionType{Params: []Type{rt.Elem}, Return: BooleanType}, true
		}

	case *MapType:
		switch name {
		case "size":
			return &FunctionType{Return: IntType}, true
		case "isEmpty":
			return &FunctionType{Return: BooleanType}, true
		case "get":
			return &FunctionType{Params: []Type{rt.Key}, Return: rt.Value}, true
		case "put":
			return &FunctionType{Params: []Type{rt.Key, rt.Value}, Return: UnitType}, true
		case "containsKey":
			return &FunctionType{Params: []Type{rt.Key}, Return: BooleanType}, true
		}

	case *Primitive:
		if rt.Kind != KindString {
			return nil, false
		}
		switch name {
		case "length":
			return &FunctionType{Return: IntType}, true
		case "isEmpty":
			return &FunctionType{Return: BooleanType}, true
		case "substring":
			return &FunctionType{Params: []Type{IntType, IntType}, Return: StringType}, true
		case "contains":
			return &FunctionType{Params: []Type{StringType}, Return: BooleanType}, true
		}
	}
	return nil, false
}
