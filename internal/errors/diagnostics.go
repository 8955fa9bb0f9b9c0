package errors

import (
	"fmt"
	"strings"

	"slate/internal/ast"
)

// Constructors for the diagnostics the checker and emitter raise. Each one
// attaches the suggestions and notes that make the message actionable.

func UndefinedName(name string, pos ast.Position, similar []string) CompilerError {
	b := New(ErrorUndefinedName, fmt.Sprintf("undefined name '%s'", name), pos).
		WithLength(len(name))
	if len(similar) > 0 {
		b = b.WithSuggestion(didYouMean(similar))
	} else {
		b = b.WithNote("names must be declared before use")
	}
	return b.Build()
}

func UnknownType(name string, pos ast.Position, similar []string) CompilerError {
	b := New(ErrorUnknownType, fmt.Sprintf("unknown type '%s'", name), pos).
		WithLength(len(name))
	if len(similar) > 0 {
		b = b.WithSuggestion(didYouMean(similar))
	}
	return b.Build()
}

func TypeMismatch(expected, actual string, pos ast.Position) CompilerError {
	return New(ErrorTypeMismatch,
		fmt.Sprintf("type mismatch: expected %s, found %s", expected, actual), pos).
		Build()
}

func ArityMismatch(name string, expected, actual int, pos ast.Position) CompilerError {
	return New(ErrorArityMismatch,
		fmt.Sprintf("'%s' expects %d argument(s), got %d", name, expected, actual), pos).
		WithHelp("check the signature for the declared parameters").
		Build()
}

func NonBooleanCondition(actual string, pos ast.Position) CompilerError {
	return New(ErrorNonBooleanCond,
		fmt.Sprintf("condition must be Boolean, found %s", actual), pos).
		WithSuggestion("use a comparison operator to produce a Boolean value").
		Build()
}

func MissingAnnotation(what, name string, pos ast.Position) CompilerError {
	return New(ErrorMissingAnnotation,
		fmt.Sprintf("%s '%s' requires a type annotation", what, name), pos).
		WithLength(len(name)).
		WithNote("only local variables and lambda parameters may omit annotations").
		Build()
}

func DuplicateDeclaration(name string, pos ast.Position) CompilerError {
	return New(ErrorDuplicateDecl, fmt.Sprintf("duplicate declaration: %s", name), pos).
		WithLength(len(name)).
		WithNote("top-level names are unique per compilation unit").
		Build()
}

func InvalidOperation(op, left, right string, pos ast.Position) CompilerError {
	b := New(ErrorInvalidOperation,
		fmt.Sprintf("invalid operation: %s %s %s", left, op, right), pos)
	switch op {
	case "+", "-", "*", "/", "%":
		b = b.WithNote("arithmetic requires Int or Double operands")
	case "&&", "||":
		b = b.WithNote("logical operators require Boolean operands")
	case "==", "!=", "<", "<=", ">", ">=":
		b = b.WithNote("comparison operands must be mutually comparable")
	}
	return b.Build()
}

func MemberNotFound(typeName, member string, pos ast.Position, available []string) CompilerError {
	b := New(ErrorMemberNotFound,
		fmt.Sprintf("%s has no member '%s'", typeName, member), pos).
		WithLength(len(member))
	if similar := FindSimilarNames(member, available); len(similar) > 0 {
		b = b.WithSuggestion(didYouMean(similar))
	}
	if len(available) > 0 {
		b = b.WithNote("available members: " + strings.Join(available, ", "))
	}
	return b.Build()
}

func NotCallable(typeName string, pos ast.Position) CompilerError {
	return New(ErrorNotCallable,
		fmt.Sprintf("%s is not a function and cannot be called", typeName), pos).
		Build()
}

func TypeArgumentCount(name string, expected, actual int, pos ast.Position) CompilerError {
	return New(ErrorTypeArgumentCount,
		fmt.Sprintf("type '%s' expects %d type argument(s), got %d", name, expected, actual), pos).
		Build()
}

func BoundViolation(arg, param, bound string, pos ast.Position) CompilerError {
	return New(ErrorBoundViolation,
		fmt.Sprintf("type argument %s does not satisfy the bound %s of parameter %s", arg, bound, param), pos).
		Build()
}

func NoCommonSupertype(a, b string, pos ast.Position) CompilerError {
	return New(ErrorNoCommonSupertype,
		fmt.Sprintf("no common supertype of %s and %s", a, b), pos).
		Build()
}

func ThisOutsideContext(pos ast.Position) CompilerError {
	return New(ErrorThisOutsideContext, "'this' used outside a class, object, or extension", pos).
		Build()
}

func NotSupported(what string, pos ast.Position) CompilerError {
	return New(ErrorNotSupported, fmt.Sprintf("'%s' is not supported", what), pos).
		Build()
}

// Emission-time diagnostics.

func UndefinedVariable(name string, pos ast.Position) CompilerError {
	return New(ErrorUndefinedVariable,
		fmt.Sprintf("undefined variable '%s' during code generation", name), pos).
		WithLength(len(name)).
		Build()
}

func AssignToImmutable(name string, pos ast.Position) CompilerError {
	return New(ErrorAssignNonLValue,
		fmt.Sprintf("cannot assign to immutable value '%s'", name), pos).
		WithLength(len(name)).
		WithSuggestion("declare it with 'var' to make it mutable").
		Build()
}

func AssignToNonLValue(pos ast.Position) CompilerError {
	return New(ErrorAssignNonLValue, "cannot assign to this expression", pos).
		WithNote("assignment targets are variables, fields, and 'this' members").
		Build()
}

func UnsupportedLambdaArity(arity int, pos ast.Position) CompilerError {
	return New(ErrorUnsupportedArity,
		fmt.Sprintf("functions of %d parameters cannot be materialised", arity), pos).
		WithNote("function values support at most two parameters").
		Build()
}

func MethodRefNotSupported(name string, pos ast.Position) CompilerError {
	return New(ErrorMethodRefShape,
		fmt.Sprintf("'%s' cannot be used as a function value here", name), pos).
		Build()
}

func didYouMean(similar []string) string {
	if len(similar) == 1 {
		return fmt.Sprintf("did you mean '%s'?", similar[0])
	}
	return fmt.Sprintf("did you mean one of: '%s'?", strings.Join(similar, "', '"))
}

// FindSimilarNames returns candidates within a small edit distance, used for
// "did you mean" suggestions.
func FindSimilarNames(target string, candidates []string) []string {
	var similar []string
	for _, candidate := range candidates {
		if candidate == target {
			continue
		}
		if levenshteinDistance(target, candidate) <= 2 && len(candidate) > 2 {
			similar = append(similar, candidate)
		}
	}
	return similar
}

func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}
	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min(matrix[i-1][j]+1, min(matrix[i][j-1]+1, matrix[i-1][j-1]+cost))
		}
	}
	return matrix[len(a)][len(b)]
}
