package codegen

import (
	"slate/internal/ast"
	"slate/internal/classfile"
	"slate/internal/errors"
	"slate/internal/types"
)

// emitExpr lowers one expression, leaving its value on the stack (nothing
// for Unit-typed expressions), and returns the static type of what it left.
// The checker's inferred-type slot is a hint; missing slots fall back to
// local recomputation.
func (e *Emitter) emitExpr(ctx *methodCtx, expr ast.Expr) types.Type {
	if e.failed() {
		return types.AnyType
	}
	ctx.code.LineNumber(expr.NodePos().Line)

	switch node := expr.(type) {
	case *ast.IntLit:
		ctx.code.Iconst(int32(node.Value))
		return types.IntType

	case *ast.DoubleLit:
		ctx.code.Dconst(node.Value)
		return types.DoubleType

	case *ast.StringLit:
		ctx.code.LdcString(node.Value)
		return types.StringType

	case *ast.BoolLit:
		if node.Value {
			ctx.code.Iconst(1)
		} else {
			ctx.code.Iconst(0)
		}
		return types.BooleanType

	case *ast.NullLit:
		ctx.code.AconstNull()
		return types.NullType

	case *ast.IdentExpr:
		return e.emitIdent(ctx, node)

	case *ast.ThisExpr:
		return e.emitThis(ctx, node.Pos)

	case *ast.BinaryExpr:
		return e.emitBinary(ctx, node)

	case *ast.UnaryExpr:
		return e.emitUnary(ctx, node)

	case *ast.MethodCallExpr:
		return e.emitCall(ctx, node)

	case *ast.FieldAccessExpr:
		return e.emitFieldAccess(ctx, node)

	case *ast.AssignExpr:
		e.emitAssign(ctx, node)
		return types.UnitType

	case *ast.BlockExpr:
		t := typeOf(node)
		e.emitBlock(ctx, node, !isUnit(t))
		return t

	case *ast.IfExpr:
		return e.emitIf(ctx, node)

	case *ast.WhileExpr:
		e.emitWhile(ctx, node)
		return types.UnitType

	case *ast.ListLitExpr:
		return e.emitListLit(ctx, node)

	case *ast.MapLitExpr:
		return e.emitMapLit(ctx, node)

	case *ast.LambdaExpr:
		return e.emitLambda(ctx, node)
	}
	return types.AnyType
}

func typeOf(expr ast.Expr) types.Type {
	if t := expr.Type(); t != nil {
		return t
	}
	return types.AnyType
}

// --- blocks and statements ---

func (e *Emitter) emitBlock(ctx *methodCtx, block *ast.BlockExpr, wantValue bool) {
	child := ctx.child()
	for i, stmt := range block.Stmts {
		if e.failed() || !child.code.Reachable() {
			return
		}
		last := i == len(block.Stmts)-1
		switch s := stmt.(type) {
		case *ast.ExprStmt:
			t := e.emitExpr(child, s.Expr)
			if !(last && wantValue) && !isUnit(t) {
				child.code.PopValue()
			}
		case *ast.VarDeclStmt:
			e.emitVarDecl(child, s)
		case *ast.ReturnStmt:
			e.emitReturn(child, s)
		}
	}
}

func (e *Emitter) emitVarDecl(ctx *methodCtx, node *ast.VarDeclStmt) {
	var declared types.Type
	if node.Ann != nil {
		declared = e.annType(node.Ann)
	}

	if node.Init != nil {
		actual := e.emitExpr(ctx, node.Init)
		if declared == nil {
			declared = actual
		}
		e.adapt(ctx, actual, declared)
	} else {
		if declared == nil {
			declared = types.AnyType
		}
		e.emitDefaultValue(ctx, declared)
	}

	v := ctx.declare(node.Name.Value, declared)
	e.storeLocal(ctx, v)
}

func (e *Emitter) emitDefaultValue(ctx *methodCtx, t types.Type) {
	switch Descriptor(t) {
	case "I", "Z":
		ctx.code.Iconst(0)
	case "D":
		ctx.code.Dconst(0)
	default:
		ctx.code.AconstNull()
	}
}

func (e *Emitter) emitReturn(ctx *methodCtx, node *ast.ReturnStmt) {
	if node.Value != nil {
		actual := e.emitExpr(ctx, node.Value)
		e.adapt(ctx, actual, ctx.retType)
		e.emitReturnOp(ctx)
		return
	}
	ctx.code.Return()
}

// --- identifiers and receivers ---

// emitIdent resolves a bare identifier: local variable, member of the
// enclosing "this", singleton object, then top-level function materialised
// as a function value.
func (e *Emitter) emitIdent(ctx *methodCtx, node *ast.IdentExpr) types.Type {
	if v := ctx.scope.lookup(node.Name); v != nil {
		e.loadLocal(ctx, v)
		return v.t
	}

	if named, ok := ctx.thisType.(*types.NamedType); ok {
		if member, exists := named.Members[node.Name]; exists {
			if sig, isFn := member.(*types.FunctionType); isFn {
				return e.materializeBoundMethod(ctx, named, node.Name, sig, node.Pos)
			}
			e.emitThis(ctx, node.Pos)
			ctx.code.GetField(internalName(named), node.Name, Descriptor(member))
			return member
		}
	}

	if named := e.namedType(node.Name); named != nil && named.Kind == types.ObjectKind {
		ctx.code.GetStatic(named.Name, "INSTANCE", "L"+named.Name+";")
		return named
	}

	if sig, ok := e.info.Functions[node.Name]; ok {
		return e.materializeStaticFunction(ctx, node.Name, sig, node.Pos)
	}

	e.fail(errors.UndefinedVariable(node.Name, node.Pos))
	return types.AnyType
}

func (e *Emitter) emitThis(ctx *methodCtx, pos ast.Position) types.Type {
	if ctx.thisType == nil {
		e.fail(errors.UndefinedVariable("this", pos))
		return types.AnyType
	}
	switch Descriptor(ctx.thisType) {
	case "I", "Z":
		ctx.code.Iload(0)
	case "D":
		ctx.code.Dload(0)
	default:
		ctx.code.Aload(0)
	}
	return ctx.thisType
}

func (e *Emitter) loadLocal(ctx *methodCtx, v *local) {
	switch Descriptor(v.t) {
	case "I", "Z":
		ctx.code.Iload(v.slot)
	case "D":
		ctx.code.Dload(v.slot)
	default:
		ctx.code.Aload(v.slot)
	}
}

func (e *Emitter) storeLocal(ctx *methodCtx, v *local) {
	switch Descriptor(v.t) {
	case "I", "Z":
		ctx.code.Istore(v.slot)
	case "D":
		ctx.code.Dstore(v.slot)
	default:
		ctx.code.Astore(v.slot)
	}
}

// --- operators ---

func (e *Emitter) emitBinary(ctx *methodCtx, node *ast.BinaryExpr) types.Type {
	switch node.Op {
	case "&&":
		return e.emitLogicalAnd(ctx, node)
	case "||":
		return e.emitLogicalOr(ctx, node)
	}

	leftT := typeOf(node.Left)
	rightT := typeOf(node.Right)

	switch node.Op {
	case "+", "-", "*", "/", "%":
		if node.Op == "+" && (types.IsPrim(leftT, types.KindString) || types.IsPrim(rightT, types.KindString)) {
			return e.emitStringConcat(ctx, node)
		}
		return e.emitArithmetic(ctx, node, leftT, rightT)
	case "==", "!=", "<", "<=", ">", ">=":
		return e.emitComparison(ctx, node, leftT, rightT)
	}

	e.fail(errors.New(errors.ErrorUnsupportedLowering, "operator '"+node.Op+"' cannot be lowered", node.Pos).Build())
	return types.AnyType
}

var intArith = map[string]byte{
	"+": classfile.OpIadd, "-": classfile.OpIsub, "*": classfile.OpImul,
	"/": classfile.OpIdiv, "%": classfile.OpIrem,
}

var doubleArith = map[string]byte{
	"+": classfile.OpDadd, "-": classfile.OpDsub, "*": classfile.OpDmul,
	"/": classfile.OpDdiv, "%": classfile.OpDrem,
}

func (e *Emitter) emitArithmetic(ctx *methodCtx, node *ast.BinaryExpr, leftT, rightT types.Type) types.Type {
	wide := types.IsPrim(leftT, types.KindDouble) || types.IsPrim(rightT, types.KindDouble)

	e.emitExpr(ctx, node.Left)
	if wide && types.IsPrim(leftT, types.KindInt) {
		ctx.code.I2d()
	}
	e.emitExpr(ctx, node.Right)
	if wide && types.IsPrim(rightT, types.KindInt) {
		ctx.code.I2d()
	}

	if wide {
		ctx.code.Dbinop(doubleArith[node.Op])
		return types.DoubleType
	}
	ctx.code.Ibinop(intArith[node.Op])
	return types.IntType
}

func (e *Emitter) emitStringConcat(ctx *methodCtx, node *ast.BinaryExpr) types.Type {
	e.emitExpr(ctx, node.Left)
	e.toString(ctx, typeOf(node.Left))
	e.emitExpr(ctx, node.Right)
	e.toString(ctx, typeOf(node.Right))
	ctx.code.InvokeVirtual("java/lang/String", "concat", "(Ljava/lang/String;)Ljava/lang/String;")
	return types.StringType
}

func (e *Emitter) toString(ctx *methodCtx, t types.Type) {
	switch Descriptor(t) {
	case "Ljava/lang/String;":
		return
	case "I":
		ctx.code.InvokeStatic("java/lang/String", "valueOf", "(I)Ljava/lang/String;")
	case "D":
		ctx.code.InvokeStatic("java/lang/String", "valueOf", "(D)Ljava/lang/String;")
	case "Z":
		ctx.code.InvokeStatic("java/lang/String", "valueOf", "(Z)Ljava/lang/String;")
	default:
		ctx.code.InvokeStatic("java/lang/String", "valueOf", "(Ljava/lang/Object;)Ljava/lang/String;")
	}
}

var intCompare = map[string]byte{
	"==": classfile.OpIfIcmpeq, "!=": classfile.OpIfIcmpne,
	"<": classfile.OpIfIcmplt, "<=": classfile.OpIfIcmple,
	">": classfile.OpIfIcmpgt, ">=": classfile.OpIfIcmpge,
}

var zeroCompare = map[string]byte{
	"==": classfile.OpIfeq, "!=": classfile.OpIfne,
	"<": classfile.OpIflt, "<=": classfile.OpIfle,
	">": classfile.OpIfgt, ">=": classfile.OpIfge,
}

// emitComparison pushes 0 or 1 through conditional jumps.
func (e *Emitter) emitComparison(ctx *methodCtx, node *ast.BinaryExpr, leftT, rightT types.Type) types.Type {
	e.emitExpr(ctx, node.Left)
	e.emitExpr(ctx, node.Right)

	trueL := ctx.code.NewLabel()
	end := ctx.code.NewLabel()

	switch {
	case types.IsPrim(leftT, types.KindDouble) || types.IsPrim(rightT, types.KindDouble):
		ctx.code.Dcmpl()
		ctx.code.Branch(zeroCompare[node.Op], trueL)
	case types.IsPrim(leftT, types.KindInt) || types.IsPrim(leftT, types.KindBoolean):
		ctx.code.Branch(intCompare[node.Op], trueL)
	default:
		switch node.Op {
		case "==":
			ctx.code.Branch(classfile.OpIfAcmpeq, trueL)
		case "!=":
			ctx.code.Branch(classfile.OpIfAcmpne, trueL)
		default:
			e.fail(errors.New(errors.ErrorUnsupportedLowering,
				"relational comparison on non-numeric operands cannot be lowered", node.Pos).Build())
			return types.BooleanType
		}
	}

	ctx.code.Iconst(0)
	ctx.code.Goto(end)
	ctx.code.Bind(trueL)
	ctx.code.Iconst(1)
	ctx.code.Bind(end)
	return types.BooleanType
}

func (e *Emitter) emitLogicalAnd(ctx *methodCtx, node *ast.BinaryExpr) types.Type {
	falseL := ctx.code.NewLabel()
	end := ctx.code.NewLabel()

	e.emitExpr(ctx, node.Left)
	ctx.code.Branch(classfile.OpIfeq, falseL)
	e.emitExpr(ctx, node.Right)
	ctx.code.Goto(end)
	ctx.code.Bind(falseL)
	ctx.code.Iconst(0)
	ctx.code.Bind(end)
	return types.BooleanType
}

func (e *Emitter) emitLogicalOr(ctx *methodCtx, node *ast.BinaryExpr) types.Type {
	trueL := ctx.code.NewLabel()
	end := ctx.code.NewLabel()

	e.emitExpr(ctx, node.Left)
	ctx.code.Branch(classfile.OpIfne, trueL)
	e.emitExpr(ctx, node.Right)
	ctx.code.Goto(end)
	ctx.code.Bind(trueL)
	ctx.code.Iconst(1)
	ctx.code.Bind(end)
	return types.BooleanType
}

func (e *Emitter) emitUnary(ctx *methodCtx, node *ast.UnaryExpr) types.Type {
	switch node.Op {
	case "-":
		t := e.emitExpr(ctx, node.Value)
		if types.IsPrim(t, types.KindDouble) {
			ctx.code.Dneg()
			return types.DoubleType
		}
		ctx.code.Ineg()
		return types.IntType

	case "+":
		return e.emitExpr(ctx, node.Value)

	case "!":
		e.emitExpr(ctx, node.Value)
		zero := ctx.code.NewLabel()
		end := ctx.code.NewLabel()
		ctx.code.Branch(classfile.OpIfne, zero)
		ctx.code.Iconst(1)
		ctx.code.Goto(end)
		ctx.code.Bind(zero)
		ctx.code.Iconst(0)
		ctx.code.Bind(end)
		return types.BooleanType
	}
	return types.AnyType
}

// --- control flow ---

func (e *Emitter) emitIf(ctx *methodCtx, node *ast.IfExpr) types.Type {
	resultT := typeOf(node)
	wantValue := !isUnit(resultT) && node.Else != nil

	elseL := ctx.code.NewLabel()
	end := ctx.code.NewLabel()

	e.emitExpr(ctx, node.Cond)
	ctx.code.Branch(classfile.OpIfeq, elseL)

	thenT := typeOf(node.Then)
	e.emitBlock(ctx, node.Then, wantValue)
	if wantValue {
		e.adapt(ctx, thenT, resultT)
	}

	if node.Else == nil {
		ctx.code.Bind(elseL)
		return types.UnitType
	}

	if ctx.code.Reachable() {
		ctx.code.Goto(end)
	}
	ctx.code.Bind(elseL)
	elseT := e.emitExpr(ctx, node.Else)
	if wantValue {
		e.adapt(ctx, elseT, resultT)
	} else if !isUnit(elseT) {
		ctx.code.PopValue()
	}
	ctx.code.Bind(end)

	if !wantValue {
		return types.UnitType
	}
	return resultT
}

func (e *Emitter) emitWhile(ctx *methodCtx, node *ast.WhileExpr) {
	loop := ctx.code.NewLabel()
	end := ctx.code.NewLabel()

	ctx.code.Bind(loop)
	e.emitExpr(ctx, node.Cond)
	ctx.code.Branch(classfile.OpIfeq, end)
	e.emitBlock(ctx, node.Body, false)
	if ctx.code.Reachable() {
		ctx.code.Goto(loop)
	}
	ctx.code.Bind(end)
}

// --- collection literals ---

func (e *Emitter) emitListLit(ctx *methodCtx, node *ast.ListLitExpr) types.Type {
	t := typeOf(node)

	ctx.code.New("java/util/ArrayList")
	ctx.code.Dup()
	ctx.code.InvokeSpecial("java/util/ArrayList", "<init>", "()V")

	for _, elem := range node.Elements {
		ctx.code.Dup()
		actual := e.emitExpr(ctx, elem)
		e.box(ctx, actual)
		ctx.code.InvokeVirtual("java/util/ArrayList", "add", "(Ljava/lang/Object;)Z")
		ctx.code.PopValue()
	}
	return t
}

func (e *Emitter) emitMapLit(ctx *methodCtx, node *ast.MapLitExpr) types.Type {
	t := typeOf(node)

	ctx.code.New("java/util/HashMap")
	ctx.code.Dup()
	ctx.code.InvokeSpecial("java/util/HashMap", "<init>", "()V")

	for _, entry := range node.Entries {
		ctx.code.Dup()
		keyT := e.emitExpr(ctx, entry.Key)
		e.box(ctx, keyT)
		valT := e.emitExpr(ctx, entry.Value)
		e.box(ctx, valT)
		ctx.code.InvokeVirtual("java/util/HashMap", "put",
			"(Ljava/lang/Object;Ljava/lang/Object;)Ljava/lang/Object;")
		ctx.code.PopValue()
	}
	return t
}

// --- field access and assignment ---

func (e *Emitter) emitFieldAccess(ctx *methodCtx, node *ast.FieldAccessExpr) types.Type {
	recvT := e.emitExpr(ctx, node.Target)

	named, ok := recvT.(*types.NamedType)
	if !ok {
		e.fail(errors.New(errors.ErrorUnsupportedLowering,
			"field access on "+recvT.String()+" cannot be lowered", node.Field.Pos).Build())
		return types.AnyType
	}
	member, exists := named.Members[node.Field.Value]
	if !exists {
		e.fail(errors.UndefinedVariable(node.Field.Value, node.Field.Pos))
		return types.AnyType
	}

	// fields of instantiated generics are declared at the erased type
	declared := member
	if def := e.namedType(named.Name); def != nil {
		if defMember, ok := def.Members[node.Field.Value]; ok {
			declared = defMember
		}
	}
	ctx.code.GetField(named.Name, node.Field.Value, Descriptor(declared))
	if Descriptor(declared) == "Ljava/lang/Object;" && Descriptor(member) != "Ljava/lang/Object;" {
		e.adaptReturnFromObject(ctx, member)
	}
	return member
}

func (e *Emitter) emitAssign(ctx *methodCtx, node *ast.AssignExpr) {
	switch target := node.Target.(type) {
	case *ast.IdentExpr:
		if v := ctx.scope.lookup(target.Name); v != nil {
			actual := e.emitExpr(ctx, node.Value)
			e.adapt(ctx, actual, v.t)
			e.storeLocal(ctx, v)
			return
		}
		if named, ok := ctx.thisType.(*types.NamedType); ok {
			if member, exists := named.Members[target.Name]; exists {
				e.emitThis(ctx, target.Pos)
				actual := e.emitExpr(ctx, node.Value)
				e.adapt(ctx, actual, member)
				ctx.code.PutField(internalName(named), target.Name, Descriptor(member))
				return
			}
		}
		e.fail(errors.UndefinedVariable(target.Name, target.Pos))

	case *ast.FieldAccessExpr:
		recvT := e.emitExpr(ctx, target.Target)
		named, ok := recvT.(*types.NamedType)
		if !ok {
			e.fail(errors.AssignToNonLValue(node.Pos))
			return
		}
		member, exists := named.Members[target.Field.Value]
		if !exists {
			e.fail(errors.UndefinedVariable(target.Field.Value, target.Field.Pos))
			return
		}
		declared := member
		if def := e.namedType(named.Name); def != nil {
			if defMember, ok := def.Members[target.Field.Value]; ok {
				declared = defMember
			}
		}
		actual := e.emitExpr(ctx, node.Value)
		e.adapt(ctx, actual, declared)
		ctx.code.PutField(named.Name, target.Field.Value, Descriptor(declared))

	default:
		e.fail(errors.AssignToNonLValue(node.Pos))
	}
}

// --- conversions ---

// adapt converts the value of type "actual" on the stack into the
// representation "expected" wants: numeric widening, boxing, unboxing, and
// reference downcasts.
func (e *Emitter) adapt(ctx *methodCtx, actual, expected types.Type) {
	if actual == nil || expected == nil {
		return
	}
	actualDesc := Descriptor(actual)
	expectedDesc := Descriptor(expected)
	if actualDesc == expectedDesc || expectedDesc == "V" {
		return
	}

	if actualDesc == "I" && expectedDesc == "D" {
		ctx.code.I2d()
		return
	}

	actualPrim := actualDesc == "I" || actualDesc == "Z" || actualDesc == "D"
	expectedRef := expectedDesc[0] == 'L'

	if actualPrim && expectedRef {
		e.box(ctx, actual)
		return
	}
	if !actualPrim && !expectedRef {
		e.unbox(ctx, expected)
		return
	}
	if !actualPrim && expectedRef && expectedDesc != "Ljava/lang/Object;" && actualDesc == "Ljava/lang/Object;" {
		ctx.code.Checkcast(internalName(expected))
	}
}

// box wraps a primitive on the stack into its reference view; references
// pass through.
func (e *Emitter) box(ctx *methodCtx, t types.Type) {
	switch Descriptor(t) {
	case "I":
		ctx.code.InvokeStatic("java/lang/Integer", "valueOf", "(I)Ljava/lang/Integer;")
	case "D":
		ctx.code.InvokeStatic("java/lang/Double", "valueOf", "(D)Ljava/lang/Double;")
	case "Z":
		ctx.code.InvokeStatic("java/lang/Boolean", "valueOf", "(Z)Ljava/lang/Boolean;")
	}
}

// unbox casts an object reference to the wrapper for "want" and extracts
// the primitive.
func (e *Emitter) unbox(ctx *methodCtx, want types.Type) {
	switch Descriptor(want) {
	case "I":
		ctx.code.Checkcast("java/lang/Integer")
		ctx.code.InvokeVirtual("java/lang/Integer", "intValue", "()I")
	case "D":
		ctx.code.Checkcast("java/lang/Double")
		ctx.code.InvokeVirtual("java/lang/Double", "doubleValue", "()D")
	case "Z":
		ctx.code.Checkcast("java/lang/Boolean")
		ctx.code.InvokeVirtual("java/lang/Boolean", "booleanValue", "()Z")
	}
}

// adaptReturnFromObject narrows an Object-typed call result to the semantic
// type: unbox primitives, downcast references.
func (e *Emitter) adaptReturnFromObject(ctx *methodCtx, want types.Type) {
	if isJVMPrimitive(want) {
		e.unbox(ctx, want)
		return
	}
	if name := internalName(want); name != "java/lang/Object" {
		ctx.code.Checkcast(name)
	}
}
