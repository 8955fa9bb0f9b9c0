package parser

import "slate/internal/ast"

// parseTypeAnn parses a type annotation: a simple name, a generic
// application, a function type (with the single-parameter shorthand
// "Int => Int"), or a structural type.
func (p *Parser) parseTypeAnn() ast.TypeAnn {
	switch p.peek().Type {
	case LEFT_PAREN:
		return p.parseFunctionTypeAnn()
	case LEFT_BRACE:
		return p.parseStructuralTypeAnn()
	case TYPE_NAME, IDENTIFIER:
		return p.parseNamedTypeAnn()
	}

	p.errorAtCurrent("expected type")
	bad := &ast.SimpleTypeAnn{
		Pos:    p.makePos(p.peek()),
		EndPos: p.makeEndPos(p.peek()),
		Name:   ast.Ident{Value: "error"},
	}
	p.advance()
	return bad
}

func (p *Parser) parseNamedTypeAnn() ast.TypeAnn {
	tok := p.advance()
	name := p.makeIdent(tok)

	var base ast.TypeAnn
	if p.check(LESS) {
		p.advance()
		args := p.parseGenericAnnArgs()
		base = &ast.GenericTypeAnn{
			Pos:    name.Pos,
			EndPos: p.makeEndPos(p.previous()),
			Name:   name,
			Args:   args,
		}
	} else {
		base = &ast.SimpleTypeAnn{Pos: name.Pos, EndPos: name.EndPos, Name: name}
	}

	// "Int => Int" is shorthand for "(Int) => Int".
	if p.match(FAT_ARROW) {
		ret := p.parseTypeAnn()
		return &ast.FunctionTypeAnn{
			Pos:    base.NodePos(),
			EndPos: ret.NodeEndPos(),
			Params: []ast.TypeAnn{base},
			Return: ret,
		}
	}
	return base
}

// parseGenericAnnArgs parses the remainder of "<T1, ...>"; the '<' has been
// consumed.
func (p *Parser) parseGenericAnnArgs() []ast.TypeAnn {
	var args []ast.TypeAnn
	if !p.check(GREATER) {
		args = append(args, p.parseTypeAnn())
		for p.match(COMMA) {
			args = append(args, p.parseTypeAnn())
		}
	}
	p.consume(GREATER, "expected '>' after type arguments")
	return args
}

func (p *Parser) parseFunctionTypeAnn() ast.TypeAnn {
	start := p.consume(LEFT_PAREN, "expected '('")

	var params []ast.TypeAnn
	if !p.check(RIGHT_PAREN) {
		params = append(params, p.parseTypeAnn())
		for p.match(COMMA) {
			params = append(params, p.parseTypeAnn())
		}
	}
	p.consume(RIGHT_PAREN, "expected ')' in function type")
	p.consume(FAT_ARROW, "expected '=>' in function type")

	ret := p.parseTypeAnn()
	return &ast.FunctionTypeAnn{
		Pos:    p.makePos(start),
		EndPos: ret.NodeEndPos(),
		Params: params,
		Return: ret,
	}
}

func (p *Parser) parseStructuralTypeAnn() ast.TypeAnn {
	start := p.consume(LEFT_BRACE, "expected '{'")

	var members []*ast.StructuralMemberAnn
	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		name, ok := p.consumeIdent("expected member name")
		if !ok {
			break
		}
		p.consume(COLON, "expected ':' after member name")
		ann := p.parseTypeAnn()
		members = append(members, &ast.StructuralMemberAnn{
			Pos:    name.Pos,
			EndPos: ann.NodeEndPos(),
			Name:   name,
			Ann:    ann,
		})
		if !p.match(COMMA) {
			break
		}
	}
	end := p.consume(RIGHT_BRACE, "expected '}' after structural type")

	return &ast.StructuralTypeAnn{
		Pos:     p.makePos(start),
		EndPos:  p.makeEndPos(end),
		Members: members,
	}
}
