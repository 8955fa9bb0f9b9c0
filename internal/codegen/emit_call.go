package codegen

import (
	"strings"

	"slate/internal/ast"
	"slate/internal/errors"
	"slate/internal/types"
)

// emitCall lowers a method call. The synthetic "apply" shape on an
// identifier resolves, in order, to a function-typed local, a sibling
// method, a top-level function, or a constructor; anything else is a
// genuine member call on the receiver's type.
func (e *Emitter) emitCall(ctx *methodCtx, call *ast.MethodCallExpr) types.Type {
	if ident, ok := call.Receiver.(*ast.IdentExpr); ok && call.Method.Value == "apply" {
		return e.emitApplyOnIdent(ctx, call, ident)
	}

	recvT := e.emitExpr(ctx, call.Receiver)

	if call.Method.Value == "apply" {
		if fn, ok := recvT.(*types.FunctionType); ok {
			return e.emitFunctionValueCall(ctx, fn, call)
		}
		e.fail(errors.MethodRefNotSupported(recvT.String(), call.Receiver.NodePos()))
		return types.AnyType
	}

	if sig, ok := types.BuiltinMember(recvT, call.Method.Value); ok {
		return e.emitBuiltinCall(ctx, recvT, call, sig)
	}

	if named, ok := recvT.(*types.NamedType); ok {
		if result, done := e.emitMemberInvoke(ctx, named, call); done {
			return result
		}
	}

	if sigs, ok := e.info.Extensions[recvT.String()]; ok {
		if sig, exists := sigs[call.Method.Value]; exists {
			return e.emitExtensionCall(ctx, recvT, call, sig)
		}
	}

	if _, isStructural := recvT.(*types.StructuralType); isStructural {
		e.fail(errors.New(errors.ErrorUnsupportedLowering,
			"call on a structurally typed receiver cannot be lowered", call.Method.Pos).Build())
		return types.AnyType
	}

	e.fail(errors.UndefinedVariable(call.Method.Value, call.Method.Pos))
	return types.AnyType
}

func (e *Emitter) emitApplyOnIdent(ctx *methodCtx, call *ast.MethodCallExpr, ident *ast.IdentExpr) types.Type {
	// local variable or parameter holding a function value
	if v := ctx.scope.lookup(ident.Name); v != nil {
		fn, isFn := v.t.(*types.FunctionType)
		if !isFn {
			e.fail(errors.MethodRefNotSupported(ident.Name, ident.Pos))
			return types.AnyType
		}
		e.loadLocal(ctx, v)
		return e.emitFunctionValueCall(ctx, fn, call)
	}

	// sibling method of the enclosing class, object, or trait
	if named, ok := ctx.thisType.(*types.NamedType); ok {
		if sig := e.methodSignature(named, ident.Name); sig != nil {
			ctx.code.Aload(0)
			e.emitArgs(ctx, call.Args, sig.Params)
			if named.Kind == types.TraitKind {
				ctx.code.InvokeInterface(named.Name, ident.Name, MethodDescriptor(sig.Params, sig.Return))
			} else {
				ctx.code.InvokeVirtual(named.Name, ident.Name, MethodDescriptor(sig.Params, sig.Return))
			}
			return sig.Return
		}
	}

	// direct call of a top-level function
	if sig, ok := e.info.Functions[ident.Name]; ok {
		e.emitArgs(ctx, call.Args, sig.Params)
		ctx.code.InvokeStatic(ident.Name+"$", ident.Name, MethodDescriptor(sig.Params, sig.Return))
		return sig.Return
	}

	// constructor call: allocate, duplicate, initialise
	if sig, ok := e.info.Constructors[ident.Name]; ok {
		ctx.code.New(ident.Name)
		ctx.code.Dup()
		e.emitArgs(ctx, call.Args, sig.Params)
		ctx.code.InvokeSpecial(ident.Name, "<init>", MethodDescriptor(sig.Params, types.UnitType))
		// prefer the checker's instantiation for generic classes
		if inst, isNamed := typeOf(call).(*types.NamedType); isNamed {
			return inst
		}
		return sig.Return
	}

	// function value reachable through a member or object
	if named, ok := ctx.thisType.(*types.NamedType); ok {
		if member, exists := named.Members[ident.Name]; exists {
			if fn, isFn := member.(*types.FunctionType); isFn {
				e.emitThis(ctx, ident.Pos)
				ctx.code.GetField(internalName(named), ident.Name, Descriptor(member))
				return e.emitFunctionValueCall(ctx, fn, call)
			}
		}
	}

	e.fail(errors.UndefinedVariable(ident.Name, ident.Pos))
	return types.AnyType
}

// emitMemberInvoke lowers a member call on a named receiver. The call-site
// descriptor always comes from the class's definition (type variables erase
// to Object); the instantiated signature then narrows the result back.
func (e *Emitter) emitMemberInvoke(ctx *methodCtx, named *types.NamedType, call *ast.MethodCallExpr) (types.Type, bool) {
	def := e.namedType(named.Name)
	if def == nil {
		def = named
	}
	defSig := e.methodSignature(def, call.Method.Value)
	if defSig == nil {
		return nil, false
	}
	instSig := e.methodSignature(named, call.Method.Value)
	if instSig == nil {
		instSig = defSig
	}

	e.emitArgs(ctx, call.Args, defSig.Params)
	desc := MethodDescriptor(defSig.Params, defSig.Return)
	if named.Kind == types.TraitKind {
		ctx.code.InvokeInterface(named.Name, call.Method.Value, desc)
	} else {
		ctx.code.InvokeVirtual(named.Name, call.Method.Value, desc)
	}

	if Descriptor(defSig.Return) == "Ljava/lang/Object;" && Descriptor(instSig.Return) != "Ljava/lang/Object;" {
		e.adaptReturnFromObject(ctx, instSig.Return)
	}
	return instSig.Return, true
}

// emitFunctionValueCall invokes the functional-interface method of the
// value's chosen shape; the interface object is already on the stack.
func (e *Emitter) emitFunctionValueCall(ctx *methodCtx, fn *types.FunctionType, call *ast.MethodCallExpr) types.Type {
	shape, ok := ShapeFor(fn)
	if !ok {
		e.fail(errors.UnsupportedLambdaArity(len(fn.Params), call.Pos))
		return types.AnyType
	}

	erased := splitShapeParams(shape.Desc)
	for i, arg := range call.Args {
		actual := e.emitExpr(ctx, arg)
		if i >= len(erased) {
			continue
		}
		switch erased[i] {
		case "I":
			// already an int
		case "D":
			if types.IsPrim(actual, types.KindInt) {
				ctx.code.I2d()
			}
		default:
			e.box(ctx, actual)
		}
	}

	ctx.code.InvokeInterface(shape.Interface, shape.Method, shape.Desc)

	if shapeReturn(shape.Desc) == "Ljava/lang/Object;" {
		if isUnit(fn.Return) {
			ctx.code.PopValue()
			return types.UnitType
		}
		e.adaptReturnFromObject(ctx, fn.Return)
	}
	return fn.Return
}

// emitBuiltinCall lowers the well-known container and string operations
// onto the platform collection interfaces.
func (e *Emitter) emitBuiltinCall(ctx *methodCtx, recvT types.Type, call *ast.MethodCallExpr, sig *types.FunctionType) types.Type {
	name := call.Method.Value

	switch recv := recvT.(type) {
	case *types.ListType, *types.SetType:
		owner := "java/util/List"
		if _, isSet := recvT.(*types.SetType); isSet {
			owner = "java/util/Set"
		}
		switch name {
		case "size":
			ctx.code.InvokeInterface(owner, "size", "()I")
			return types.IntType
		case "isEmpty":
			ctx.code.InvokeInterface(owner, "isEmpty", "()Z")
			return types.BooleanType
		case "get":
			e.emitArgs(ctx, call.Args, sig.Params)
			ctx.code.InvokeInterface(owner, "get", "(I)Ljava/lang/Object;")
			e.adaptReturnFromObject(ctx, sig.Return)
			return sig.Return
		case "add":
			e.emitBoxedArgs(ctx, call.Args)
			ctx.code.InvokeInterface(owner, "add", "(Ljava/lang/Object;)Z")
			ctx.code.PopValue()
			return types.UnitType
		case "contains":
			e.emitBoxedArgs(ctx, call.Args)
			ctx.code.InvokeInterface(owner, "contains", "(Ljava/lang/Object;)Z")
			return types.BooleanType
		}

	case *types.MapType:
		switch name {
		case "size":
			ctx.code.InvokeInterface("java/util/Map", "size", "()I")
			return types.IntType
		case "isEmpty":
			ctx.code.InvokeInterface("java/util/Map", "isEmpty", "()Z")
			return types.BooleanType
		case "get":
			e.emitBoxedArgs(ctx, call.Args)
			ctx.code.InvokeInterface("java/util/Map", "get", "(Ljava/lang/Object;)Ljava/lang/Object;")
			e.adaptReturnFromObject(ctx, recv.Value)
			return recv.Value
		case "put":
			e.emitBoxedArgs(ctx, call.Args)
			ctx.code.InvokeInterface("java/util/Map", "put", "(Ljava/lang/Object;Ljava/lang/Object;)Ljava/lang/Object;")
			ctx.code.PopValue()
			return types.UnitType
		case "containsKey":
			e.emitBoxedArgs(ctx, call.Args)
			ctx.code.InvokeInterface("java/util/Map", "containsKey", "(Ljava/lang/Object;)Z")
			return types.BooleanType
		}

	case *types.Primitive:
		switch name {
		case "length":
			ctx.code.InvokeVirtual("java/lang/String", "length", "()I")
			return types.IntType
		case "isEmpty":
			ctx.code.InvokeVirtual("java/lang/String", "isEmpty", "()Z")
			return types.BooleanType
		case "substring":
			e.emitArgs(ctx, call.Args, sig.Params)
			ctx.code.InvokeVirtual("java/lang/String", "substring", "(II)Ljava/lang/String;")
			return types.StringType
		case "contains":
			e.emitArgs(ctx, call.Args, sig.Params)
			ctx.code.InvokeVirtual("java/lang/String", "contains", "(Ljava/lang/CharSequence;)Z")
			return types.BooleanType
		}
	}

	e.fail(errors.UndefinedVariable(name, call.Method.Pos))
	return types.AnyType
}

func (e *Emitter) emitExtensionCall(ctx *methodCtx, recvT types.Type, call *ast.MethodCallExpr, sig *types.FunctionType) types.Type {
	targetName := recvT.String()
	if cut := strings.IndexByte(targetName, '<'); cut >= 0 {
		targetName = targetName[:cut]
	}

	e.emitArgs(ctx, call.Args, sig.Params)
	fullParams := append([]types.Type{recvT}, sig.Params...)
	ctx.code.InvokeStatic(targetName+"$Extension", call.Method.Value,
		MethodDescriptor(fullParams, sig.Return))
	return sig.Return
}

func (e *Emitter) emitArgs(ctx *methodCtx, args []ast.Expr, params []types.Type) {
	for i, arg := range args {
		actual := e.emitExpr(ctx, arg)
		if i < len(params) {
			e.adapt(ctx, actual, params[i])
		}
	}
}

func (e *Emitter) emitBoxedArgs(ctx *methodCtx, args []ast.Expr) {
	for _, arg := range args {
		actual := e.emitExpr(ctx, arg)
		e.box(ctx, actual)
	}
}
