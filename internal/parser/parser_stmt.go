package parser

import "slate/internal/ast"

// parseBlock parses a brace-enclosed statement sequence. A block is itself
// an expression whose value is its last statement's value.
func (p *Parser) parseBlock() *ast.BlockExpr {
	lbrace := p.peek()
	if !p.match(LEFT_BRACE) {
		p.errorAtCurrent("expected '{' to open block")
		return nil
	}

	block := &ast.BlockExpr{Pos: p.makePos(lbrace)}
	p.parseBlockRest(block)
	return block
}

// parseBlockRest fills stmts up to and including the closing brace; the
// opening brace has already been consumed.
func (p *Parser) parseBlockRest(block *ast.BlockExpr) {
	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		if p.match(SEMICOLON) {
			continue
		}
		if stmt := p.parseStatement(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}
	end := p.consume(RIGHT_BRACE, "expected '}' to close block")
	block.EndPos = p.makeEndPos(end)
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.peek().Type {
	case VAL, VAR:
		return p.parseVarDecl()
	case RETURN:
		return p.parseReturn()
	case RESERVED:
		p.errorAtCurrent("'" + p.peek().Lexeme + "' is not supported")
		p.advance()
		p.synchronize()
		return nil
	default:
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		return &ast.ExprStmt{
			Pos:    expr.NodePos(),
			EndPos: expr.NodeEndPos(),
			Expr:   expr,
		}
	}
}

func (p *Parser) parseVarDecl() ast.Stmt {
	start := p.advance() // 'val' or 'var'
	mutable := start.Type == VAR

	name, ok := p.consumeIdent("expected variable name")
	if !ok {
		p.synchronize()
		return nil
	}

	stmt := &ast.VarDeclStmt{
		Pos:     p.makePos(start),
		EndPos:  name.EndPos,
		Name:    name,
		Mutable: mutable,
	}
	if p.match(COLON) {
		stmt.Ann = p.parseTypeAnn()
		stmt.EndPos = stmt.Ann.NodeEndPos()
	}
	if p.match(EQUAL) {
		stmt.Init = p.parseExpr()
		stmt.EndPos = stmt.Init.NodeEndPos()
	}
	return stmt
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.consume(RETURN, "expected 'return'")

	stmt := &ast.ReturnStmt{
		Pos:    p.makePos(start),
		EndPos: p.makeEndPos(start),
	}
	if !p.check(RIGHT_BRACE) && !p.check(SEMICOLON) && !p.isAtEnd() {
		stmt.Value = p.parseExpr()
		stmt.EndPos = stmt.Value.NodeEndPos()
	}
	return stmt
}
