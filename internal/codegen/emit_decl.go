package codegen

import (
	"slate/internal/ast"
	"slate/internal/classfile"
	"slate/internal/errors"
	"slate/internal/types"
)

// emitFunctionClass lowers a top-level function to a wrapper class named
// "<name>$" carrying one public static method.
func (e *Emitter) emitFunctionClass(fn *ast.FunctionDecl) {
	sig, ok := e.info.Functions[fn.Name.Value]
	if !ok {
		e.fail(errors.UndefinedVariable(fn.Name.Value, fn.Name.Pos))
		return
	}

	e.openClass(fn.Name.Value+"$", "java/lang/Object", classfile.AccPublic|classfile.AccFinal|classfile.AccSuper)
	e.addDefaultConstructor(classfile.AccPrivate)

	code := e.compileBody(fn, sig, bodyOpts{isStatic: true})
	e.cls.AddMethod(classfile.AccPublic|classfile.AccStatic, fn.Name.Value, MethodDescriptor(sig.Params, sig.Return), code)
	e.closeClass()
}

func (e *Emitter) addDefaultConstructor(flags uint16) {
	code := classfile.NewCode(e.cls.Pool())
	code.SetLocal(0, classfile.ObjectVT(e.clsName))
	code.Aload(0)
	code.InvokeSpecial("java/lang/Object", "<init>", "()V")
	code.Return()
	e.cls.AddMethod(flags, "<init>", "()V", code)
}

func (e *Emitter) emitClass(decl *ast.ClassDecl) {
	named := e.namedType(decl.Name.Value)
	if named == nil {
		e.fail(errors.UndefinedVariable(decl.Name.Value, decl.Name.Pos))
		return
	}

	superName := "java/lang/Object"
	if superNamed, ok := named.Super.(*types.NamedType); ok {
		superName = superNamed.Name
	}

	e.openClass(decl.Name.Value, superName, classfile.AccPublic|classfile.AccSuper)
	e.thisType = named
	for _, tr := range named.Traits {
		if trNamed, ok := tr.(*types.NamedType); ok {
			e.cls.AddInterface(trNamed.Name)
		}
	}

	var ctorParams []*ast.Param
	if decl.Ctor != nil {
		ctorParams = decl.Ctor.Params
	}

	// Constructor parameters become private final fields; declared fields
	// follow their own mutability.
	for _, param := range ctorParams {
		t := e.memberType(named, param.Name.Value)
		e.cls.AddField(classfile.AccPrivate|classfile.AccFinal, param.Name.Value, Descriptor(t))
	}
	for _, member := range decl.Members {
		if field, ok := member.(*ast.FieldDecl); ok {
			flags := uint16(classfile.AccPrivate)
			if !field.Mutable {
				flags |= classfile.AccFinal
			}
			e.cls.AddField(flags, field.Name.Value, Descriptor(e.memberType(named, field.Name.Value)))
		}
	}

	e.emitConstructor(decl, named, superName, ctorParams)

	for _, member := range decl.Members {
		if method, ok := member.(*ast.FunctionDecl); ok {
			e.emitInstanceMethod(named, method)
		}
	}
	e.closeClass()
}

// emitConstructor initialises constructor-parameter fields, then declared
// field initialisers, then runs the optional constructor body.
func (e *Emitter) emitConstructor(decl *ast.ClassDecl, named *types.NamedType, superName string, ctorParams []*ast.Param) {
	var paramTypes []types.Type
	for _, param := range ctorParams {
		paramTypes = append(paramTypes, e.memberType(named, param.Name.Value))
	}

	code := classfile.NewCode(e.cls.Pool())
	ctx := &methodCtx{
		code:     code,
		scope:    newMethodScope(nil),
		nextSlot: 1,
		thisType: named,
		retType:  types.UnitType,
	}
	code.SetLocal(0, classfile.ObjectVT(e.clsName))

	code.Aload(0)
	code.InvokeSpecial(superName, "<init>", "()V")

	for i, param := range ctorParams {
		v := ctx.declare(param.Name.Value, paramTypes[i])
		code.Aload(0)
		e.loadLocal(ctx, v)
		code.PutField(e.clsName, param.Name.Value, Descriptor(paramTypes[i]))
	}

	for _, member := range decl.Members {
		field, ok := member.(*ast.FieldDecl)
		if !ok || field.Init == nil {
			continue
		}
		t := e.memberType(named, field.Name.Value)
		code.Aload(0)
		code.LineNumber(field.Init.NodePos().Line)
		actual := e.emitExpr(ctx, field.Init)
		e.adapt(ctx, actual, t)
		code.PutField(e.clsName, field.Name.Value, Descriptor(t))
	}

	if decl.Ctor != nil && decl.Ctor.Body != nil {
		e.emitBlock(ctx, decl.Ctor.Body, false)
	}
	code.Return()

	e.cls.AddMethod(classfile.AccPublic, "<init>", MethodDescriptor(paramTypes, types.UnitType), code)
}

func (e *Emitter) emitInstanceMethod(named *types.NamedType, method *ast.FunctionDecl) {
	sig := e.methodSignature(named, method.Name.Value)
	if sig == nil {
		e.fail(errors.UndefinedVariable(method.Name.Value, method.Name.Pos))
		return
	}
	code := e.compileBody(method, sig, bodyOpts{thisType: named})
	e.cls.AddMethod(classfile.AccPublic, method.Name.Value, MethodDescriptor(sig.Params, sig.Return), code)
}

func (e *Emitter) emitTrait(decl *ast.TraitDecl) {
	named := e.namedType(decl.Name.Value)
	if named == nil {
		e.fail(errors.UndefinedVariable(decl.Name.Value, decl.Name.Pos))
		return
	}

	e.openClass(decl.Name.Value, "java/lang/Object", classfile.AccPublic|classfile.AccInterface|classfile.AccAbstract)
	e.thisType = named
	for _, tr := range named.Traits {
		if trNamed, ok := tr.(*types.NamedType); ok {
			e.cls.AddInterface(trNamed.Name)
		}
	}

	for _, member := range decl.Members {
		switch m := member.(type) {
		case *ast.FunctionDecl:
			// concrete trait methods become default methods
			sig := e.methodSignature(named, m.Name.Value)
			if sig == nil {
				e.fail(errors.UndefinedVariable(m.Name.Value, m.Name.Pos))
				return
			}
			code := e.compileBody(m, sig, bodyOpts{thisType: named})
			e.cls.AddMethod(classfile.AccPublic, m.Name.Value, MethodDescriptor(sig.Params, sig.Return), code)
		case *ast.AbstractMethodDecl:
			sig := e.methodSignature(named, m.Name.Value)
			if sig == nil {
				continue
			}
			e.cls.AddMethod(classfile.AccPublic|classfile.AccAbstract, m.Name.Value, MethodDescriptor(sig.Params, sig.Return), nil)
		}
	}
	e.closeClass()
}

// emitObject lowers a singleton: a final class with a private constructor,
// a public static final INSTANCE initialised in <clinit>, and instance
// methods for the members.
func (e *Emitter) emitObject(decl *ast.ObjectDecl) {
	named := e.namedType(decl.Name.Value)
	if named == nil {
		e.fail(errors.UndefinedVariable(decl.Name.Value, decl.Name.Pos))
		return
	}

	superName := "java/lang/Object"
	if superNamed, ok := named.Super.(*types.NamedType); ok {
		superName = superNamed.Name
	}

	e.openClass(decl.Name.Value, superName, classfile.AccPublic|classfile.AccFinal|classfile.AccSuper)
	e.thisType = named
	for _, tr := range named.Traits {
		if trNamed, ok := tr.(*types.NamedType); ok {
			e.cls.AddInterface(trNamed.Name)
		}
	}

	selfDesc := "L" + decl.Name.Value + ";"
	e.cls.AddField(classfile.AccPublic|classfile.AccStatic|classfile.AccFinal, "INSTANCE", selfDesc)

	for _, member := range decl.Members {
		if field, ok := member.(*ast.FieldDecl); ok {
			flags := uint16(classfile.AccPrivate)
			if !field.Mutable {
				flags |= classfile.AccFinal
			}
			e.cls.AddField(flags, field.Name.Value, Descriptor(e.memberType(named, field.Name.Value)))
		}
	}

	e.emitObjectConstructor(decl, named, superName)

	// allocate, invoke the private constructor once, publish in INSTANCE
	clinit := classfile.NewCode(e.cls.Pool())
	clinit.New(decl.Name.Value)
	clinit.Dup()
	clinit.InvokeSpecial(decl.Name.Value, "<init>", "()V")
	clinit.PutStatic(decl.Name.Value, "INSTANCE", selfDesc)
	clinit.Return()
	e.cls.AddMethod(classfile.AccStatic, "<clinit>", "()V", clinit)

	for _, member := range decl.Members {
		if method, ok := member.(*ast.FunctionDecl); ok {
			e.emitInstanceMethod(named, method)
		}
	}
	e.closeClass()
}

func (e *Emitter) emitObjectConstructor(decl *ast.ObjectDecl, named *types.NamedType, superName string) {
	code := classfile.NewCode(e.cls.Pool())
	ctx := &methodCtx{
		code:     code,
		scope:    newMethodScope(nil),
		nextSlot: 1,
		thisType: named,
		retType:  types.UnitType,
	}
	code.SetLocal(0, classfile.ObjectVT(e.clsName))
	code.Aload(0)
	code.InvokeSpecial(superName, "<init>", "()V")

	for _, member := range decl.Members {
		field, ok := member.(*ast.FieldDecl)
		if !ok || field.Init == nil {
			continue
		}
		t := e.memberType(named, field.Name.Value)
		code.Aload(0)
		actual := e.emitExpr(ctx, field.Init)
		e.adapt(ctx, actual, t)
		code.PutField(e.clsName, field.Name.Value, Descriptor(t))
	}
	code.Return()
	e.cls.AddMethod(classfile.AccPrivate, "<init>", "()V", code)
}

// emitExtension lowers extension methods to public static methods on
// "<Target>$Extension"; the receiver is the first parameter and "this"
// inside the bodies reads it.
func (e *Emitter) emitExtension(decl *ast.ExtensionDecl) {
	targetName := extensionTargetName(decl.Target)
	target := e.annType(decl.Target)

	e.openClass(targetName+"$Extension", "java/lang/Object", classfile.AccPublic|classfile.AccFinal|classfile.AccSuper)
	e.addDefaultConstructor(classfile.AccPrivate)
	e.thisType = target

	sigs := e.info.Extensions[target.String()]
	for _, method := range decl.Methods {
		sig := sigs[method.Name.Value]
		if sig == nil {
			e.fail(errors.UndefinedVariable(method.Name.Value, method.Name.Pos))
			return
		}
		code := e.compileBody(method, sig, bodyOpts{isStatic: true, receiver: target})
		fullParams := append([]types.Type{target}, sig.Params...)
		e.cls.AddMethod(classfile.AccPublic|classfile.AccStatic, method.Name.Value,
			MethodDescriptor(fullParams, sig.Return), code)
	}
	e.closeClass()
}

func extensionTargetName(ann ast.TypeAnn) string {
	switch t := ann.(type) {
	case *ast.SimpleTypeAnn:
		return t.Name.Value
	case *ast.GenericTypeAnn:
		return t.Name.Value
	}
	return "Any"
}

// --- shared body compilation ---

type bodyOpts struct {
	isStatic bool
	thisType types.Type // instance methods: the enclosing named type
	receiver types.Type // extensions: the receiver bound to slot 0
}

func (e *Emitter) compileBody(fn *ast.FunctionDecl, sig *types.FunctionType, opts bodyOpts) *classfile.Code {
	code := classfile.NewCode(e.cls.Pool())
	ctx := &methodCtx{
		code:     code,
		scope:    newMethodScope(nil),
		isStatic: opts.isStatic,
		retType:  sig.Return,
	}

	switch {
	case opts.receiver != nil:
		// extension receiver occupies the leading parameter slots
		ctx.thisType = opts.receiver
		if vt, ok := verifTypeOf(opts.receiver); ok {
			code.SetLocal(0, vt)
		}
		ctx.nextSlot = 1
		if types.IsPrim(opts.receiver, types.KindDouble) {
			ctx.nextSlot = 2
		}
	case opts.thisType != nil:
		ctx.thisType = opts.thisType
		code.SetLocal(0, classfile.ObjectVT(e.clsName))
		ctx.nextSlot = 1
	}

	for i, param := range fn.Params {
		var t types.Type = types.AnyType
		if i < len(sig.Params) {
			t = sig.Params[i]
		}
		ctx.declare(param.Name.Value, t)
	}

	code.LineNumber(fn.Body.Pos.Line)
	wantValue := !isUnit(sig.Return)
	e.emitBlock(ctx, fn.Body, wantValue)
	if code.Reachable() {
		e.emitReturnOp(ctx)
	}
	return code
}

func (e *Emitter) emitReturnOp(ctx *methodCtx) {
	switch Descriptor(ctx.retType) {
	case "V":
		ctx.code.Return()
	case "I", "Z":
		ctx.code.Ireturn()
	case "D":
		ctx.code.Dreturn()
	default:
		ctx.code.Areturn()
	}
}

// --- lookup helpers ---

func (e *Emitter) namedType(name string) *types.NamedType {
	t, ok := e.info.Registry.Lookup(name)
	if !ok {
		return nil
	}
	named, ok := t.(*types.NamedType)
	if !ok {
		return nil
	}
	return named
}

func (e *Emitter) memberType(named *types.NamedType, name string) types.Type {
	if t, ok := named.Members[name]; ok {
		return t
	}
	return types.AnyType
}

func (e *Emitter) methodSignature(named *types.NamedType, name string) *types.FunctionType {
	if t, ok := named.Members[name]; ok {
		if sig, isFn := t.(*types.FunctionType); isFn {
			return sig
		}
	}
	return nil
}

// annType resolves an annotation to its semantic type locally, without
// re-running the checker; it is a descriptor-level approximation and never
// reports errors.
func (e *Emitter) annType(ann ast.TypeAnn) types.Type {
	switch t := ann.(type) {
	case *ast.SimpleTypeAnn:
		switch t.Name.Value {
		case "Int":
			return types.IntType
		case "Double":
			return types.DoubleType
		case "String":
			return types.StringType
		case "Boolean":
			return types.BooleanType
		case "Unit":
			return types.UnitType
		case "Nothing":
			return types.NothingType
		}
		if named := e.namedType(t.Name.Value); named != nil {
			return named
		}
	case *ast.GenericTypeAnn:
		args := make([]types.Type, len(t.Args))
		for i, arg := range t.Args {
			args[i] = e.annType(arg)
		}
		switch t.Name.Value {
		case "List":
			if len(args) == 1 {
				return &types.ListType{Elem: args[0]}
			}
		case "Set":
			if len(args) == 1 {
				return &types.SetType{Elem: args[0]}
			}
		case "Map":
			if len(args) == 2 {
				return &types.MapType{Key: args[0], Value: args[1]}
			}
		}
		if named := e.namedType(t.Name.Value); named != nil {
			return named
		}
	case *ast.FunctionTypeAnn:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = e.annType(p)
		}
		return &types.FunctionType{Params: params, Return: e.annType(t.Return)}
	case *ast.StructuralTypeAnn:
		members := make(map[string]types.Type, len(t.Members))
		for _, m := range t.Members {
			members[m.Name.Value] = e.annType(m.Ann)
		}
		return &types.StructuralType{Members: members}
	}
	return types.AnyType
}
