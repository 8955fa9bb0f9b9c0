package parser

import "slate/internal/ast"

// ParseSource scans and parses one compilation unit. Trivia tokens are
// dropped before parsing; scan and parse errors are returned separately so
// the driver can report both.
func ParseSource(path string, source string) (*ast.Program, []ParseError, []ScanError) {
	scanner := NewScanner(source)
	tokens := scanner.ScanTokens()

	parser := NewParser(path, tokens)
	program := parser.ParseProgram()

	return program, parser.errors, scanner.errors
}
