package parser

import (
	"strconv"

	"slate/internal/ast"
)

var binaryPrecedence = map[TokenType]int{
	OR:            1,
	AND:           2,
	EQUAL_EQUAL:   3,
	BANG_EQUAL:    3,
	LESS:          4,
	LESS_EQUAL:    4,
	GREATER:       4,
	GREATER_EQUAL: 4,
	PLUS:          5,
	MINUS:         5,
	STAR:          6,
	SLASH:         6,
	PERCENT:       6,
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssignment()
}

// parseAssignment handles the lowest precedence level. Assignment is
// right-associative; whether the target is an l-value is checked later.
func (p *Parser) parseAssignment() ast.Expr {
	expr := p.parsePrattExpr(0)
	if expr == nil {
		return nil
	}

	if p.match(EQUAL) {
		value := p.parseAssignment()
		if value == nil {
			return expr
		}
		return &ast.AssignExpr{
			Pos:    expr.NodePos(),
			EndPos: value.NodeEndPos(),
			Target: expr,
			Value:  value,
		}
	}
	return expr
}

func (p *Parser) parsePrattExpr(minPrec int) ast.Expr {
	expr := p.parseUnary()
	if expr == nil {
		return nil
	}

	for {
		tok := p.peek()
		prec, ok := binaryPrecedence[tok.Type]
		if !ok || prec < minPrec {
			break
		}

		p.advance()
		right := p.parsePrattExpr(prec + 1)
		if right == nil {
			break
		}

		expr = &ast.BinaryExpr{
			Pos:    expr.NodePos(),
			EndPos: right.NodeEndPos(),
			Op:     tok.Lexeme,
			Left:   expr,
			Right:  right,
		}
	}

	return expr
}

func (p *Parser) parseUnary() ast.Expr {
	if p.match(BANG, MINUS, PLUS) {
		op := p.previous()
		value := p.parseUnary()
		if value == nil {
			return nil
		}
		return &ast.UnaryExpr{
			Pos:    p.makePos(op),
			EndPos: value.NodeEndPos(),
			Op:     op.Lexeme,
			Value:  value,
		}
	}

	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	return p.parsePostfix(expr)
}

func (p *Parser) parsePostfix(expr ast.Expr) ast.Expr {
	for {
		switch {
		case p.match(DOT):
			field, ok := p.consumeIdent("expected member name after '.'")
			if !ok {
				return expr
			}
			expr = p.parseMemberSuffix(expr, field)

		case p.check(LEFT_PAREN):
			// f(args) is a call on f with the synthetic method "apply";
			// later stages recognise the shape for direct lowering.
			p.advance()
			args := p.parseExprList()
			end := p.consume(RIGHT_PAREN, "expected ')' after arguments")
			call := &ast.MethodCallExpr{
				Pos:      expr.NodePos(),
				EndPos:   p.makeEndPos(end),
				Receiver: expr,
				Method:   ast.Ident{Pos: expr.NodePos(), EndPos: expr.NodePos(), Value: "apply"},
				Args:     args,
			}
			p.appendTrailingLambda(call)
			expr = call

		case p.check(LEFT_BRACE) && p.isIdentExpr(expr) && p.lambdaBraceAhead():
			// Trailing lambda with no parentheses: sugar for a call on that
			// identifier with the lambda as the sole argument.
			lambda := p.parseTrailingLambda()
			expr = &ast.MethodCallExpr{
				Pos:      expr.NodePos(),
				EndPos:   lambda.EndPos,
				Receiver: expr,
				Method:   ast.Ident{Pos: expr.NodePos(), EndPos: expr.NodePos(), Value: "apply"},
				Args:     []ast.Expr{lambda},
			}

		default:
			return expr
		}
	}
}

// parseMemberSuffix finishes "expr.name": a method call, a trailing-lambda
// method call, or a plain field access.
func (p *Parser) parseMemberSuffix(expr ast.Expr, field ast.Ident) ast.Expr {
	var typeArgs []ast.TypeAnn
	if p.check(LESS) && p.genericCallAhead() {
		p.advance()
		typeArgs = p.parseGenericAnnArgs()
	}

	if p.check(LEFT_PAREN) {
		p.advance()
		args := p.parseExprList()
		end := p.consume(RIGHT_PAREN, "expected ')' after arguments")
		call := &ast.MethodCallExpr{
			Pos:      expr.NodePos(),
			EndPos:   p.makeEndPos(end),
			Receiver: expr,
			Method:   field,
			TypeArgs: typeArgs,
			Args:     args,
		}
		p.appendTrailingLambda(call)
		return call
	}

	if p.check(LEFT_BRACE) && p.lambdaBraceAhead() {
		lambda := p.parseTrailingLambda()
		return &ast.MethodCallExpr{
			Pos:      expr.NodePos(),
			EndPos:   lambda.EndPos,
			Receiver: expr,
			Method:   field,
			TypeArgs: typeArgs,
			Args:     []ast.Expr{lambda},
		}
	}

	if typeArgs != nil {
		p.errorAtCurrent("expected '(' after type arguments")
	}
	return &ast.FieldAccessExpr{
		Pos:    expr.NodePos(),
		EndPos: field.EndPos,
		Target: expr,
		Field:  field,
	}
}

func (p *Parser) appendTrailingLambda(call *ast.MethodCallExpr) {
	if p.check(LEFT_BRACE) && p.lambdaBraceAhead() {
		lambda := p.parseTrailingLambda()
		call.Args = append(call.Args, lambda)
		call.EndPos = lambda.EndPos
	}
}

func (p *Parser) isIdentExpr(expr ast.Expr) bool {
	_, ok := expr.(*ast.IdentExpr)
	return ok
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()

	switch tok.Type {
	case INT_NUMBER:
		p.advance()
		return p.makeIntLit(tok)

	case DOUBLE_NUMBER:
		p.advance()
		return p.makeDoubleLit(tok)

	case STRING:
		p.advance()
		return &ast.StringLit{
			Pos:    p.makePos(tok),
			EndPos: p.makeEndPos(tok),
			Value:  tok.Lexeme,
			Raw:    tok.Raw,
		}

	case TRUE, FALSE:
		p.advance()
		return &ast.BoolLit{
			Pos:    p.makePos(tok),
			EndPos: p.makeEndPos(tok),
			Value:  tok.Type == TRUE,
		}

	case NULL:
		p.advance()
		return &ast.NullLit{Pos: p.makePos(tok), EndPos: p.makeEndPos(tok)}

	case THIS:
		p.advance()
		return &ast.ThisExpr{Pos: p.makePos(tok), EndPos: p.makeEndPos(tok)}

	case IDENTIFIER:
		p.advance()
		return &ast.IdentExpr{
			Pos:    p.makePos(tok),
			EndPos: p.makeEndPos(tok),
			Name:   tok.Lexeme,
		}

	case IF:
		return p.parseIf()

	case WHILE:
		return p.parseWhile()

	case LEFT_PAREN:
		if p.lambdaAhead() {
			return p.parseParenLambda()
		}
		p.advance()
		expr := p.parseExpr()
		p.consume(RIGHT_PAREN, "expected ')'")
		return expr

	case LEFT_BRACKET:
		return p.parseCollectionLit()

	case LEFT_BRACE:
		return p.parseBlock()

	case RESERVED:
		p.errorAtCurrent("'" + tok.Lexeme + "' is not supported")
		p.advance()
		return nil
	}

	p.errorAtCurrent("unexpected token in expression")
	p.advance()
	return nil
}

func (p *Parser) makeIntLit(tok Token) ast.Expr {
	value, err := strconv.ParseInt(tok.Lexeme, 10, 64)
	if err != nil {
		p.errors = append(p.errors, ParseError{
			Message:  "integer literal out of range",
			Actual:   tok,
			Position: tok.Position,
		})
	}
	return &ast.IntLit{
		Pos:    p.makePos(tok),
		EndPos: p.makeEndPos(tok),
		Value:  value,
		Raw:    tok.Raw,
	}
}

func (p *Parser) makeDoubleLit(tok Token) ast.Expr {
	value, _ := strconv.ParseFloat(tok.Lexeme, 64)
	return &ast.DoubleLit{
		Pos:    p.makePos(tok),
		EndPos: p.makeEndPos(tok),
		Value:  value,
		Raw:    tok.Raw,
	}
}

func (p *Parser) parseIf() ast.Expr {
	start := p.consume(IF, "expected 'if'")
	p.consume(LEFT_PAREN, "expected '(' after 'if'")
	cond := p.parseExpr()
	p.consume(RIGHT_PAREN, "expected ')' after condition")

	then := p.parseBlock()
	if then == nil {
		return nil
	}

	expr := &ast.IfExpr{
		Pos:    p.makePos(start),
		EndPos: then.EndPos,
		Cond:   cond,
		Then:   then,
	}
	if p.match(ELSE) {
		if p.check(IF) {
			expr.Else = p.parseIf()
		} else {
			expr.Else = p.parseBlock()
		}
		if expr.Else != nil {
			expr.EndPos = expr.Else.NodeEndPos()
		}
	}
	return expr
}

func (p *Parser) parseWhile() ast.Expr {
	start := p.consume(WHILE, "expected 'while'")
	p.consume(LEFT_PAREN, "expected '(' after 'while'")
	cond := p.parseExpr()
	p.consume(RIGHT_PAREN, "expected ')' after condition")

	body := p.parseBlock()
	if body == nil {
		return nil
	}

	return &ast.WhileExpr{
		Pos:    p.makePos(start),
		EndPos: body.EndPos,
		Cond:   cond,
		Body:   body,
	}
}

// parseCollectionLit parses "[...]": a list literal, or a map literal when
// the first element is followed by "->".
func (p *Parser) parseCollectionLit() ast.Expr {
	start := p.consume(LEFT_BRACKET, "expected '['")

	if p.check(RIGHT_BRACKET) {
		end := p.advance()
		return &ast.ListLitExpr{Pos: p.makePos(start), EndPos: p.makeEndPos(end)}
	}

	first := p.parseExpr()
	if p.match(ARROW) {
		return p.parseMapLitRest(start, first)
	}

	elements := []ast.Expr{first}
	for p.match(COMMA) {
		if p.check(RIGHT_BRACKET) {
			break
		}
		elements = append(elements, p.parseExpr())
	}
	end := p.consume(RIGHT_BRACKET, "expected ']' after list elements")

	return &ast.ListLitExpr{
		Pos:      p.makePos(start),
		EndPos:   p.makeEndPos(end),
		Elements: elements,
	}
}

func (p *Parser) parseMapLitRest(start Token, firstKey ast.Expr) ast.Expr {
	firstValue := p.parseExpr()
	entries := []*ast.MapEntry{{
		Pos:    firstKey.NodePos(),
		EndPos: firstValue.NodeEndPos(),
		Key:    firstKey,
		Value:  firstValue,
	}}

	for p.match(COMMA) {
		if p.check(RIGHT_BRACKET) {
			break
		}
		key := p.parseExpr()
		p.consume(ARROW, "expected '->' in map entry")
		value := p.parseExpr()
		entries = append(entries, &ast.MapEntry{
			Pos:    key.NodePos(),
			EndPos: value.NodeEndPos(),
			Key:    key,
			Value:  value,
		})
	}
	end := p.consume(RIGHT_BRACKET, "expected ']' after map entries")

	return &ast.MapLitExpr{
		Pos:     p.makePos(start),
		EndPos:  p.makeEndPos(end),
		Entries: entries,
	}
}

func (p *Parser) parseExprList() []ast.Expr {
	var args []ast.Expr
	if p.check(RIGHT_PAREN) {
		return args
	}

	for {
		arg := p.parseExpr()
		if arg == nil {
			break
		}
		args = append(args, arg)
		if !p.match(COMMA) {
			break
		}
	}

	return args
}
