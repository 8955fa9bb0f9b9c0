package codegen

import (
	"fmt"

	"slate/internal/ast"
	"slate/internal/classfile"
	"slate/internal/errors"
	"slate/internal/types"
)

const metafactoryDesc = "(Ljava/lang/invoke/MethodHandles$Lookup;" +
	"Ljava/lang/String;" +
	"Ljava/lang/invoke/MethodType;" +
	"Ljava/lang/invoke/MethodType;" +
	"Ljava/lang/invoke/MethodHandle;" +
	"Ljava/lang/invoke/MethodType;)" +
	"Ljava/lang/invoke/CallSite;"

// emitLambda lifts the lambda body to a private static method on the
// enclosing class and materialises the functional interface through an
// invokedynamic callsite bootstrapped by the platform lambda factory.
// When the lambda sits in an instance context the receiver is passed as a
// captured argument so the body can read enclosing members.
func (e *Emitter) emitLambda(ctx *methodCtx, lam *ast.LambdaExpr) types.Type {
	fn, ok := typeOf(lam).(*types.FunctionType)
	if !ok {
		e.fail(errors.MethodRefNotSupported("lambda", lam.Pos))
		return types.AnyType
	}
	shape, ok := ShapeFor(fn)
	if !ok {
		e.fail(errors.UnsupportedLambdaArity(len(fn.Params), lam.Pos))
		return types.AnyType
	}

	captureThis := ctx.thisType != nil
	var capturedDesc string
	implParams := fn.Params
	if captureThis {
		capturedDesc = Descriptor(ctx.thisType)
		implParams = append([]types.Type{ctx.thisType}, fn.Params...)
	}

	implName := fmt.Sprintf("lambda$%d", e.lambdaSeq)
	e.lambdaSeq++
	implDesc := MethodDescriptor(implParams, fn.Return)

	code := e.compileLambdaBody(lam, fn, captureThis)
	e.cls.AddMethod(classfile.AccPrivate|classfile.AccStatic|classfile.AccSynthetic, implName, implDesc, code)

	if captureThis {
		e.emitThis(ctx, lam.Pos)
	}
	e.emitIndy(ctx, shape, fn, classfile.RefInvokeStatic, e.clsName, implName, implDesc, false, capturedDesc)
	return fn
}

func (e *Emitter) compileLambdaBody(lam *ast.LambdaExpr, fn *types.FunctionType, captureThis bool) *classfile.Code {
	code := classfile.NewCode(e.cls.Pool())
	ctx := &methodCtx{
		code:     code,
		scope:    newMethodScope(nil),
		isStatic: true,
		retType:  fn.Return,
	}

	if captureThis {
		ctx.thisType = e.thisType
		if vt, ok := verifTypeOf(e.thisType); ok {
			code.SetLocal(0, vt)
		}
		ctx.nextSlot = 1
		if types.IsPrim(e.thisType, types.KindDouble) {
			ctx.nextSlot = 2
		}
	}

	for i, param := range lam.Params {
		var t types.Type = types.AnyType
		if i < len(fn.Params) {
			t = fn.Params[i]
		}
		ctx.declare(param.Name.Value, t)
	}

	bodyT := e.emitExpr(ctx, lam.Body)
	if code.Reachable() {
		if isUnit(fn.Return) {
			if !isUnit(bodyT) {
				code.PopValue()
			}
			code.Return()
		} else {
			e.adapt(ctx, bodyT, fn.Return)
			e.emitReturnOp(ctx)
		}
	}
	return code
}

// materializeStaticFunction turns a top-level function name used in value
// position into a function object through the lambda factory.
func (e *Emitter) materializeStaticFunction(ctx *methodCtx, name string, sig *types.FunctionType, pos ast.Position) types.Type {
	shape, ok := ShapeFor(sig)
	if !ok {
		e.fail(errors.MethodRefNotSupported(name, pos))
		return types.AnyType
	}
	implDesc := MethodDescriptor(sig.Params, sig.Return)
	e.emitIndy(ctx, shape, sig, classfile.RefInvokeStatic, name+"$", name, implDesc, false, "")
	return sig
}

// materializeBoundMethod turns a sibling method into a function value bound
// to the current receiver.
func (e *Emitter) materializeBoundMethod(ctx *methodCtx, named *types.NamedType, name string, sig *types.FunctionType, pos ast.Position) types.Type {
	shape, ok := ShapeFor(sig)
	if !ok {
		e.fail(errors.MethodRefNotSupported(name, pos))
		return types.AnyType
	}

	refKind := byte(classfile.RefInvokeVirtual)
	ownerIsInterface := false
	if named.Kind == types.TraitKind {
		refKind = classfile.RefInvokeInterface
		ownerIsInterface = true
	}

	e.emitThis(ctx, pos)
	implDesc := MethodDescriptor(sig.Params, sig.Return)
	e.emitIndy(ctx, shape, sig, refKind, named.Name, name, implDesc, ownerIsInterface, Descriptor(named))
	return sig
}

// emitIndy assembles the BootstrapMethods entry and the invokedynamic
// instruction for one callsite. A non-empty capturedDesc means the captured
// receiver is already on the stack.
func (e *Emitter) emitIndy(ctx *methodCtx, shape Shape, fn *types.FunctionType,
	refKind byte, implOwner, implName, implDesc string, ownerIsInterface bool, capturedDesc string) {

	pool := e.cls.Pool()

	metafactory := pool.Methodref("java/lang/invoke/LambdaMetafactory", "metafactory", metafactoryDesc)
	bsmHandle := pool.MethodHandle(classfile.RefInvokeStatic, metafactory)

	var implRef uint16
	if ownerIsInterface {
		implRef = pool.InterfaceMethodref(implOwner, implName, implDesc)
	} else {
		implRef = pool.Methodref(implOwner, implName, implDesc)
	}

	args := []uint16{
		pool.MethodType(shape.Desc),
		pool.MethodHandle(refKind, implRef),
		pool.MethodType(instantiatedDesc(fn, shape)),
	}
	bsmIndex := e.cls.AddBootstrapMethod(bsmHandle, args)

	indyDesc := "(" + capturedDesc + ")L" + shape.Interface + ";"
	ctx.code.InvokeDynamic(bsmIndex, shape.Method, indyDesc)
}
