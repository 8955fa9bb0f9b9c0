package semantic

import (
	"slate/internal/ast"
	"slate/internal/errors"
	"slate/internal/types"
)

// inferExpr computes the type of an expression, records it in the node's
// inferred-type slot, and reports any mismatch it proves. Failed inferences
// resolve to Any so one mistake doesn't cascade.
func (a *Analyzer) inferExpr(expr ast.Expr, scope *Scope) types.Type {
	t := a.inferExprType(expr, scope)
	if t != nil {
		expr.SetType(t)
	}
	return t
}

func (a *Analyzer) inferExprType(expr ast.Expr, scope *Scope) types.Type {
	switch node := expr.(type) {
	case *ast.IntLit:
		return types.IntType
	case *ast.DoubleLit:
		return types.DoubleType
	case *ast.StringLit:
		return types.StringType
	case *ast.BoolLit:
		return types.BooleanType
	case *ast.NullLit:
		return types.NullType

	case *ast.IdentExpr:
		return a.inferIdent(node, scope)

	case *ast.ThisExpr:
		if this := scope.This(); this != nil {
			return this
		}
		a.addError(errors.ThisOutsideContext(node.Pos))
		return types.AnyType

	case *ast.BinaryExpr:
		return a.inferBinary(node, scope)

	case *ast.UnaryExpr:
		return a.inferUnary(node, scope)

	case *ast.MethodCallExpr:
		return a.inferMethodCall(node, scope)

	case *ast.FieldAccessExpr:
		return a.inferFieldAccess(node, scope)

	case *ast.AssignExpr:
		return a.inferAssign(node, scope)

	case *ast.BlockExpr:
		return a.inferBlock(node, scope)

	case *ast.IfExpr:
		return a.inferIf(node, scope)

	case *ast.WhileExpr:
		condType := a.inferExpr(node.Cond, scope)
		if condType != nil && !types.IsPrim(condType, types.KindBoolean) {
			a.addError(errors.NonBooleanCondition(condType.String(), node.Cond.NodePos()))
		}
		a.inferExpr(node.Body, scope)
		return types.UnitType

	case *ast.ListLitExpr:
		return a.inferListLit(node, scope)

	case *ast.MapLitExpr:
		return a.inferMapLit(node, scope)

	case *ast.LambdaExpr:
		return a.inferLambdaWith(node, scope, nil)
	}
	return types.AnyType
}

func (a *Analyzer) inferIdent(node *ast.IdentExpr, scope *Scope) types.Type {
	if sym := scope.Lookup(node.Name); sym != nil {
		return sym.Type
	}
	candidates := append(scope.Names(), a.registry.Names()...)
	a.addError(errors.UndefinedName(node.Name, node.Pos, errors.FindSimilarNames(node.Name, candidates)))
	return types.AnyType
}

func (a *Analyzer) inferBinary(node *ast.BinaryExpr, scope *Scope) types.Type {
	left := a.inferExpr(node.Left, scope)
	right := a.inferExpr(node.Right, scope)
	if left == nil || right == nil {
		return types.AnyType
	}

	switch node.Op {
	case "+", "-", "*", "/", "%":
		if node.Op == "+" && (types.IsPrim(left, types.KindString) || types.IsPrim(right, types.KindString)) {
			return types.StringType
		}
		if !types.IsNumeric(left) || !types.IsNumeric(right) {
			a.addError(errors.InvalidOperation(node.Op, left.String(), right.String(), node.Pos))
			return types.AnyType
		}
		if types.IsPrim(left, types.KindDouble) || types.IsPrim(right, types.KindDouble) {
			return types.DoubleType
		}
		return types.IntType

	case "==", "!=", "<", "<=", ">", ">=":
		if !types.Subtype(left, right) && !types.Subtype(right, left) {
			a.addError(errors.InvalidOperation(node.Op, left.String(), right.String(), node.Pos))
		}
		return types.BooleanType

	case "&&", "||":
		if !types.IsPrim(left, types.KindBoolean) || !types.IsPrim(right, types.KindBoolean) {
			a.addError(errors.InvalidOperation(node.Op, left.String(), right.String(), node.Pos))
		}
		return types.BooleanType
	}

	a.addError(errors.InvalidOperation(node.Op, left.String(), right.String(), node.Pos))
	return types.AnyType
}

func (a *Analyzer) inferUnary(node *ast.UnaryExpr, scope *Scope) types.Type {
	operand := a.inferExpr(node.Value, scope)
	if operand == nil {
		return types.AnyType
	}

	switch node.Op {
	case "!":
		if !types.IsPrim(operand, types.KindBoolean) {
			a.addError(errors.InvalidOperation(node.Op, operand.String(), "", node.Pos))
		}
		return types.BooleanType
	case "-", "+":
		if !types.IsNumeric(operand) {
			a.addError(errors.InvalidOperation(node.Op, operand.String(), "", node.Pos))
			return types.AnyType
		}
		return operand
	}
	return types.AnyType
}

// inferMethodCall distinguishes direct calls on function-typed identifiers
// (the synthetic "apply" shape) from genuine member lookup on the receiver's
// type, then falls back to built-in members and extension methods.
func (a *Analyzer) inferMethodCall(call *ast.MethodCallExpr, scope *Scope) types.Type {
	if ident, ok := call.Receiver.(*ast.IdentExpr); ok && call.Method.Value == "apply" {
		if sym := scope.Lookup(ident.Name); sym != nil {
			if fn, isFn := sym.Type.(*types.FunctionType); isFn {
				ident.SetType(fn)
				return a.checkCall(ident.Name, fn, call, scope)
			}
		}
	}

	recvType := a.inferExpr(call.Receiver, scope)
	if recvType == nil || types.IsPrim(recvType, types.KindAny) {
		// the receiver already failed to resolve; don't cascade
		return types.AnyType
	}

	if call.Method.Value == "apply" {
		if fn, ok := recvType.(*types.FunctionType); ok {
			return a.checkCall("function value", fn, call, scope)
		}
		a.addError(errors.NotCallable(recvType.String(), call.Receiver.NodePos()))
		return types.AnyType
	}

	if sig, ok := types.BuiltinMember(recvType, call.Method.Value); ok {
		return a.checkCall(call.Method.Value, sig, call, scope)
	}

	if member, ok := lookupMember(recvType, call.Method.Value); ok {
		fn, isFn := member.(*types.FunctionType)
		if !isFn {
			a.addError(errors.NotCallable(member.String(), call.Method.Pos))
			return types.AnyType
		}
		return a.checkCall(call.Method.Value, fn, call, scope)
	}

	if sig, ok := a.extensionLookup(recvType, call.Method.Value); ok {
		return a.checkCall(call.Method.Value, sig, call, scope)
	}

	a.addError(errors.MemberNotFound(recvType.String(), call.Method.Value, call.Method.Pos, memberNames(recvType)))
	return types.AnyType
}

// checkCall verifies arity and argument subtyping. Type variables in the
// signature are solved positionally from the argument types first, so
// generic constructors and methods infer their instantiations.
func (a *Analyzer) checkCall(name string, fn *types.FunctionType, call *ast.MethodCallExpr, scope *Scope) types.Type {
	if len(call.Args) != len(fn.Params) {
		a.addError(errors.ArityMismatch(name, len(fn.Params), len(call.Args), call.Method.Pos))
		return fn.Return
	}

	mapping := make(map[int]types.Type)
	argTypes := make([]types.Type, len(call.Args))
	for i, arg := range call.Args {
		expected := fn.Params[i]
		var argType types.Type
		if lambda, isLambda := arg.(*ast.LambdaExpr); isLambda {
			if expFn, isFn := expected.(*types.FunctionType); isFn {
				argType = a.inferLambdaWith(lambda, scope, expFn)
			}
		}
		if argType == nil {
			argType = a.inferExpr(arg, scope)
		}
		argTypes[i] = argType
		matchTypeVars(expected, argType, mapping)
	}

	resolved := fn
	if len(mapping) > 0 {
		resolved = types.Substitute(fn, mapping).(*types.FunctionType)
	}
	for i, argType := range argTypes {
		if argType != nil && !types.Subtype(argType, resolved.Params[i]) {
			a.addError(errors.TypeMismatch(resolved.Params[i].String(), argType.String(), call.Args[i].NodePos()))
		}
	}
	return resolved.Return
}

// matchTypeVars fills unsolved type variables in pattern with the shape of
// actual, positionally and without backtracking.
func matchTypeVars(pattern, actual types.Type, mapping map[int]types.Type) {
	if pattern == nil || actual == nil {
		return
	}
	switch pt := pattern.(type) {
	case *types.TypeVar:
		if _, solved := mapping[pt.ID]; !solved {
			mapping[pt.ID] = actual
		}
	case *types.ListType:
		if at, ok := actual.(*types.ListType); ok {
			matchTypeVars(pt.Elem, at.Elem, mapping)
		}
	case *types.SetType:
		if at, ok := actual.(*types.SetType); ok {
			matchTypeVars(pt.Elem, at.Elem, mapping)
		}
	case *types.MapType:
		if at, ok := actual.(*types.MapType); ok {
			matchTypeVars(pt.Key, at.Key, mapping)
			matchTypeVars(pt.Value, at.Value, mapping)
		}
	case *types.FunctionType:
		if at, ok := actual.(*types.FunctionType); ok && len(pt.Params) == len(at.Params) {
			for i := range pt.Params {
				matchTypeVars(pt.Params[i], at.Params[i], mapping)
			}
			matchTypeVars(pt.Return, at.Return, mapping)
		}
	case *types.NamedType:
		if at, ok := actual.(*types.NamedType); ok && pt.Name == at.Name && len(pt.TypeArgs) == len(at.TypeArgs) {
			for i := range pt.TypeArgs {
				matchTypeVars(pt.TypeArgs[i], at.TypeArgs[i], mapping)
			}
		}
	}
}

func lookupMember(t types.Type, name string) (types.Type, bool) {
	switch tt := t.(type) {
	case *types.NamedType:
		member, ok := tt.Members[name]
		return member, ok
	case *types.StructuralType:
		member, ok := tt.Members[name]
		return member, ok
	}
	return nil, false
}

func memberNames(t types.Type) []string {
	var names []string
	switch tt := t.(type) {
	case *types.NamedType:
		for name := range tt.Members {
			names = append(names, name)
		}
	case *types.StructuralType:
		for name := range tt.Members {
			names = append(names, name)
		}
	}
	return names
}

func (a *Analyzer) inferFieldAccess(node *ast.FieldAccessExpr, scope *Scope) types.Type {
	recvType := a.inferExpr(node.Target, scope)
	if recvType == nil || types.IsPrim(recvType, types.KindAny) {
		return types.AnyType
	}

	if member, ok := lookupMember(recvType, node.Field.Value); ok {
		return member
	}
	a.addError(errors.MemberNotFound(recvType.String(), node.Field.Value, node.Field.Pos, memberNames(recvType)))
	return types.AnyType
}

func (a *Analyzer) inferAssign(node *ast.AssignExpr, scope *Scope) types.Type {
	var targetType types.Type

	switch target := node.Target.(type) {
	case *ast.IdentExpr:
		sym := scope.Lookup(target.Name)
		if sym == nil {
			candidates := scope.Names()
			a.addError(errors.UndefinedName(target.Name, target.Pos, errors.FindSimilarNames(target.Name, candidates)))
			return types.UnitType
		}
		if sym.Kind == SymbolVariable && !sym.Mutable {
			a.addError(errors.AssignToImmutable(target.Name, target.Pos))
		}
		target.SetType(sym.Type)
		targetType = sym.Type
	case *ast.FieldAccessExpr:
		targetType = a.inferFieldAccess(target, scope)
		target.SetType(targetType)
	default:
		a.addError(errors.AssignToNonLValue(node.Target.NodePos()))
		return types.UnitType
	}

	valueType := a.inferExpr(node.Value, scope)
	if valueType != nil && targetType != nil && !types.Subtype(valueType, targetType) {
		a.addError(errors.TypeMismatch(targetType.String(), valueType.String(), node.Value.NodePos()))
	}
	return types.UnitType
}

// inferBlock types each statement in a child scope; the block's value is its
// last statement's value, where declarations and returns count as unit.
func (a *Analyzer) inferBlock(block *ast.BlockExpr, scope *Scope) types.Type {
	child := NewScope(scope)

	var last types.Type = types.UnitType
	for _, stmt := range block.Stmts {
		last = a.inferStmt(stmt, child)
	}
	return last
}

func (a *Analyzer) inferStmt(stmt ast.Stmt, scope *Scope) types.Type {
	switch node := stmt.(type) {
	case *ast.ExprStmt:
		t := a.inferExpr(node.Expr, scope)
		if t == nil {
			return types.UnitType
		}
		return t

	case *ast.VarDeclStmt:
		a.inferVarDecl(node, scope)
		return types.UnitType

	case *ast.ReturnStmt:
		a.inferReturn(node, scope)
		return types.UnitType
	}
	return types.UnitType
}

func (a *Analyzer) inferVarDecl(node *ast.VarDeclStmt, scope *Scope) {
	var declared types.Type
	if node.Ann != nil {
		declared = a.resolveTypeAnn(node.Ann, a.currentTpEnv)
	}

	var initType types.Type
	if node.Init != nil {
		initType = a.inferExpr(node.Init, scope)
	}

	switch {
	case declared != nil && initType != nil:
		if !types.Subtype(initType, declared) {
			a.addError(errors.TypeMismatch(declared.String(), initType.String(), node.Init.NodePos()))
		}
	case declared == nil && initType == nil:
		a.addError(errors.MissingAnnotation("variable", node.Name.Value, node.Name.Pos))
		declared = types.AnyType
	}

	t := declared
	if t == nil {
		t = initType
	}
	sym := scope.Define(node.Name.Value, SymbolVariable, t, node.Name.Pos)
	sym.Mutable = node.Mutable
}

func (a *Analyzer) inferReturn(node *ast.ReturnStmt, scope *Scope) {
	var valueType types.Type = types.UnitType
	if node.Value != nil {
		valueType = a.inferExpr(node.Value, scope)
	}
	if a.currentReturn != nil && valueType != nil && !types.Subtype(valueType, a.currentReturn) {
		a.addError(errors.TypeMismatch(a.currentReturn.String(), valueType.String(), node.Pos))
	}
}

func (a *Analyzer) inferIf(node *ast.IfExpr, scope *Scope) types.Type {
	condType := a.inferExpr(node.Cond, scope)
	if condType != nil && !types.IsPrim(condType, types.KindBoolean) {
		a.addError(errors.NonBooleanCondition(condType.String(), node.Cond.NodePos()))
	}

	thenType := a.inferExpr(node.Then, scope)
	if node.Else == nil {
		return types.UnitType
	}

	elseType := a.inferExpr(node.Else, scope)
	if thenType == nil || elseType == nil {
		return types.AnyType
	}
	unified, ok := types.Unify(thenType, elseType)
	if !ok {
		a.addError(errors.NoCommonSupertype(thenType.String(), elseType.String(), node.Pos))
		return types.AnyType
	}
	return unified
}

func (a *Analyzer) inferListLit(node *ast.ListLitExpr, scope *Scope) types.Type {
	if len(node.Elements) == 0 {
		return &types.ListType{Elem: a.registry.FreshVar("E")}
	}

	elem := a.inferExpr(node.Elements[0], scope)
	for _, e := range node.Elements[1:] {
		next := a.inferExpr(e, scope)
		if elem == nil || next == nil {
			continue
		}
		unified, ok := types.Unify(elem, next)
		if !ok {
			a.addError(errors.NoCommonSupertype(elem.String(), next.String(), e.NodePos()))
			continue
		}
		elem = unified
	}
	if elem == nil {
		elem = types.AnyType
	}
	return &types.ListType{Elem: elem}
}

func (a *Analyzer) inferMapLit(node *ast.MapLitExpr, scope *Scope) types.Type {
	var key, value types.Type
	for _, entry := range node.Entries {
		k := a.inferExpr(entry.Key, scope)
		v := a.inferExpr(entry.Value, scope)
		key = a.unifyInto(key, k, entry.Key)
		value = a.unifyInto(value, v, entry.Value)
	}
	if key == nil {
		key = a.registry.FreshVar("K")
	}
	if value == nil {
		value = a.registry.FreshVar("V")
	}
	return &types.MapType{Key: key, Value: value}
}

func (a *Analyzer) unifyInto(acc, next types.Type, at ast.Expr) types.Type {
	if acc == nil {
		return next
	}
	if next == nil {
		return acc
	}
	unified, ok := types.Unify(acc, next)
	if !ok {
		a.addError(errors.NoCommonSupertype(acc.String(), next.String(), at.NodePos()))
		return acc
	}
	return unified
}

// inferLambdaWith infers a lambda's type. Annotated parameters resolve;
// unannotated ones take the expected function type's parameter when one is
// pushed down from a call site, or a fresh variable otherwise.
func (a *Analyzer) inferLambdaWith(lambda *ast.LambdaExpr, scope *Scope, expected *types.FunctionType) types.Type {
	child := NewScope(scope)

	params := make([]types.Type, len(lambda.Params))
	for i, param := range lambda.Params {
		switch {
		case param.Ann != nil:
			params[i] = a.resolveTypeAnn(param.Ann, a.currentTpEnv)
		case expected != nil && i < len(expected.Params):
			params[i] = expected.Params[i]
		default:
			params[i] = a.registry.FreshVar(param.Name.Value)
		}
		child.Define(param.Name.Value, SymbolParameter, params[i], param.Name.Pos)
	}

	bodyType := a.inferExpr(lambda.Body, child)
	if bodyType == nil {
		bodyType = types.AnyType
	}

	t := &types.FunctionType{Params: params, Return: bodyType}
	lambda.SetType(t)
	return t
}
