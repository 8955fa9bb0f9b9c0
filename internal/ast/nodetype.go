package ast

type NodeType int

const (
	ILLEGAL NodeType = iota

	// Support nodes
	IDENT
	PROGRAM
	PARAM
	TYPE_PARAM
	CONSTRUCTOR
	MAP_ENTRY
	STRUCTURAL_MEMBER_ANN

	// Declarations
	FUNCTION_DECL
	FIELD_DECL
	ABSTRACT_METHOD_DECL
	CLASS_DECL
	TRAIT_DECL
	OBJECT_DECL
	EXTENSION_DECL

	// Statements
	EXPR_STMT
	VAR_DECL_STMT
	RETURN_STMT

	// Expressions
	INT_LIT
	DOUBLE_LIT
	STRING_LIT
	BOOL_LIT
	NULL_LIT
	IDENT_EXPR
	THIS_EXPR
	BINARY_EXPR
	UNARY_EXPR
	METHOD_CALL_EXPR
	FIELD_ACCESS_EXPR
	ASSIGN_EXPR
	BLOCK_EXPR
	IF_EXPR
	WHILE_EXPR
	LIST_LIT_EXPR
	MAP_LIT_EXPR
	LAMBDA_EXPR

	// Type annotations
	SIMPLE_TYPE_ANN
	GENERIC_TYPE_ANN
	FUNCTION_TYPE_ANN
	STRUCTURAL_TYPE_ANN
)
