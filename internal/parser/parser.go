package parser

import "slate/internal/ast"

// Parser is a recursive-descent parser over the filtered token stream, with
// one-token lookahead plus the two bounded scans the grammar needs (lambda
// parameter lists and generic call arguments).
type Parser struct {
	filename string
	tokens   []Token
	current  int
	errors   []ParseError
}

type ParseError struct {
	Message  string
	Actual   Token
	Position Position
}

func NewParser(filename string, tokens []Token) *Parser {
	filtered := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		switch tok.Type {
		case NEWLINE, WHITESPACE, COMMENT, BLOCK_COMMENT:
			// trivia
		default:
			filtered = append(filtered, tok)
		}
	}
	return &Parser{filename: filename, tokens: filtered}
}

func (p *Parser) Errors() []ParseError {
	return p.errors
}

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	if len(p.tokens) > 0 {
		program.Pos = p.makePos(p.tokens[0])
	}

	for !p.isAtEnd() {
		if p.match(SEMICOLON) {
			continue
		}
		if decl := p.parseDecl(); decl != nil {
			program.Decls = append(program.Decls, decl)
		}
	}

	program.EndPos = p.makePos(p.peek())
	return program
}

func (p *Parser) parseDecl() ast.Decl {
	switch p.peek().Type {
	case FUN:
		return p.parseFunction()
	case CLASS:
		return p.parseClass()
	case TRAIT:
		return p.parseTrait()
	case OBJECT:
		return p.parseObject()
	case EXTENSION:
		return p.parseExtension()
	case RESERVED:
		p.errorAtCurrent("'" + p.peek().Lexeme + "' is not supported")
		p.advance()
		p.synchronize()
		return nil
	default:
		p.errorAtCurrent("expected declaration")
		p.advance()
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseFunction() *ast.FunctionDecl {
	start := p.consume(FUN, "expected 'fun'")

	name, ok := p.consumeIdent("expected function name")
	if !ok {
		p.synchronize()
		return nil
	}

	typeParams := p.parseTypeParams()
	params := p.parseParamList()

	var ret ast.TypeAnn
	if p.match(COLON) {
		ret = p.parseTypeAnn()
	}

	body := p.parseBlock()
	if body == nil {
		p.synchronize()
		return nil
	}

	return &ast.FunctionDecl{
		Pos:        p.makePos(start),
		EndPos:     body.EndPos,
		Name:       name,
		TypeParams: typeParams,
		Params:     params,
		Return:     ret,
		Body:       body,
	}
}

func (p *Parser) parseTypeParams() []*ast.TypeParamNode {
	if !p.match(LESS) {
		return nil
	}

	var params []*ast.TypeParamNode
	for {
		start := p.peek()
		variance := ast.Invariant
		if p.match(PLUS) {
			variance = ast.Covariant
		} else if p.match(MINUS) {
			variance = ast.Contravariant
		}

		name, ok := p.consumeIdent("expected type parameter name")
		if !ok {
			break
		}

		tp := &ast.TypeParamNode{
			Pos:      p.makePos(start),
			EndPos:   name.EndPos,
			Name:     name,
			Variance: variance,
		}
		if p.match(SUBTYPE_BOUND) {
			tp.Upper = p.parseTypeAnn()
			tp.EndPos = tp.Upper.NodeEndPos()
		}
		if p.match(SUPERTYPE_BOUND) {
			tp.Lower = p.parseTypeAnn()
			tp.EndPos = tp.Lower.NodeEndPos()
		}
		params = append(params, tp)

		if !p.match(COMMA) {
			break
		}
	}

	p.consume(GREATER, "expected '>' after type parameters")
	return params
}

// parseParamList parses a parenthesised parameter list. Annotations are
// optional here; the checker enforces them where the language requires them.
func (p *Parser) parseParamList() []*ast.Param {
	p.consume(LEFT_PAREN, "expected '('")
	var params []*ast.Param

	for !p.check(RIGHT_PAREN) && !p.isAtEnd() {
		param := p.parseParam()
		if param == nil {
			break
		}
		params = append(params, param)
		if !p.match(COMMA) {
			break
		}
	}

	p.consume(RIGHT_PAREN, "expected ')' after parameters")
	return params
}

func (p *Parser) parseParam() *ast.Param {
	name, ok := p.consumeIdent("expected parameter name")
	if !ok {
		return nil
	}

	param := &ast.Param{Pos: name.Pos, EndPos: name.EndPos, Name: name}
	if p.match(COLON) {
		param.Ann = p.parseTypeAnn()
		param.EndPos = param.Ann.NodeEndPos()
	}
	if p.match(EQUAL) {
		param.Default = p.parseExpr()
		param.EndPos = param.Default.NodeEndPos()
	}
	return param
}

func (p *Parser) parseClass() *ast.ClassDecl {
	start := p.consume(CLASS, "expected 'class'")

	name, ok := p.consumeIdent("expected class name")
	if !ok {
		p.synchronize()
		return nil
	}

	decl := &ast.ClassDecl{Pos: p.makePos(start), Name: name}
	decl.TypeParams = p.parseTypeParams()

	if p.check(LEFT_PAREN) {
		lparen := p.peek()
		params := p.parseParamList()
		decl.Ctor = &ast.Constructor{
			Pos:    p.makePos(lparen),
			EndPos: p.makeEndPos(p.previous()),
			Params: params,
		}
	}

	if p.match(EXTENDS) {
		decl.Super = p.parseTypeAnn()
	}
	for p.match(WITH) {
		decl.Traits = append(decl.Traits, p.parseTypeAnn())
	}

	decl.Members = p.parseClassBody()
	decl.EndPos = p.makeEndPos(p.previous())
	return decl
}

func (p *Parser) parseClassBody() []ast.ClassMember {
	p.consume(LEFT_BRACE, "expected '{' to open body")
	var members []ast.ClassMember

	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		switch p.peek().Type {
		case FUN:
			if method := p.parseFunction(); method != nil {
				members = append(members, method)
			}
		case VAL, VAR:
			if field := p.parseFieldDecl(); field != nil {
				members = append(members, field)
			}
		case SEMICOLON:
			p.advance()
		case RESERVED:
			p.errorAtCurrent("'" + p.peek().Lexeme + "' is not supported")
			p.advance()
			p.synchronize()
		default:
			p.errorAtCurrent("expected member declaration")
			p.advance()
			p.synchronize()
		}
	}

	p.consume(RIGHT_BRACE, "expected '}' to close body")
	return members
}

func (p *Parser) parseFieldDecl() *ast.FieldDecl {
	start := p.advance() // 'val' or 'var'
	mutable := start.Type == VAR

	name, ok := p.consumeIdent("expected field name")
	if !ok {
		p.synchronize()
		return nil
	}

	field := &ast.FieldDecl{
		Pos:     p.makePos(start),
		EndPos:  name.EndPos,
		Name:    name,
		Mutable: mutable,
	}
	if p.match(COLON) {
		field.Ann = p.parseTypeAnn()
		field.EndPos = field.Ann.NodeEndPos()
	}
	if p.match(EQUAL) {
		field.Init = p.parseExpr()
		field.EndPos = field.Init.NodeEndPos()
	}
	p.match(SEMICOLON)
	return field
}

func (p *Parser) parseTrait() *ast.TraitDecl {
	start := p.consume(TRAIT, "expected 'trait'")

	name, ok := p.consumeIdent("expected trait name")
	if !ok {
		p.synchronize()
		return nil
	}

	decl := &ast.TraitDecl{Pos: p.makePos(start), Name: name}
	decl.TypeParams = p.parseTypeParams()

	if p.match(EXTENDS) {
		decl.SuperTraits = append(decl.SuperTraits, p.parseTypeAnn())
		for p.match(WITH) {
			decl.SuperTraits = append(decl.SuperTraits, p.parseTypeAnn())
		}
	}

	p.consume(LEFT_BRACE, "expected '{' to open trait body")
	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		switch p.peek().Type {
		case FUN:
			if method := p.parseFunction(); method != nil {
				decl.Members = append(decl.Members, method)
			}
		case DEF:
			if sig := p.parseAbstractMethod(); sig != nil {
				decl.Members = append(decl.Members, sig)
			}
		case SEMICOLON:
			p.advance()
		default:
			p.errorAtCurrent("expected 'fun' or 'def' member")
			p.advance()
			p.synchronize()
		}
	}
	end := p.consume(RIGHT_BRACE, "expected '}' to close trait body")

	decl.EndPos = p.makeEndPos(end)
	return decl
}

func (p *Parser) parseAbstractMethod() *ast.AbstractMethodDecl {
	start := p.consume(DEF, "expected 'def'")

	name, ok := p.consumeIdent("expected method name")
	if !ok {
		p.synchronize()
		return nil
	}

	params := p.parseParamList()

	sig := &ast.AbstractMethodDecl{
		Pos:    p.makePos(start),
		EndPos: p.makeEndPos(p.previous()),
		Name:   name,
		Params: params,
	}
	if p.match(COLON) {
		sig.Return = p.parseTypeAnn()
		sig.EndPos = sig.Return.NodeEndPos()
	}
	p.match(SEMICOLON)
	return sig
}

func (p *Parser) parseObject() *ast.ObjectDecl {
	start := p.consume(OBJECT, "expected 'object'")

	name, ok := p.consumeIdent("expected object name")
	if !ok {
		p.synchronize()
		return nil
	}

	decl := &ast.ObjectDecl{Pos: p.makePos(start), Name: name}
	if p.match(EXTENDS) {
		decl.Super = p.parseTypeAnn()
	}
	for p.match(WITH) {
		decl.Traits = append(decl.Traits, p.parseTypeAnn())
	}

	decl.Members = p.parseClassBody()
	decl.EndPos = p.makeEndPos(p.previous())
	return decl
}

func (p *Parser) parseExtension() *ast.ExtensionDecl {
	start := p.consume(EXTENSION, "expected 'extension'")
	target := p.parseTypeAnn()

	decl := &ast.ExtensionDecl{Pos: p.makePos(start), Target: target}

	p.consume(LEFT_BRACE, "expected '{' to open extension body")
	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		switch p.peek().Type {
		case FUN:
			if method := p.parseFunction(); method != nil {
				decl.Methods = append(decl.Methods, method)
			}
		case SEMICOLON:
			p.advance()
		default:
			p.errorAtCurrent("expected 'fun' member in extension")
			p.advance()
			p.synchronize()
		}
	}
	end := p.consume(RIGHT_BRACE, "expected '}' to close extension body")

	decl.EndPos = p.makeEndPos(end)
	return decl
}
