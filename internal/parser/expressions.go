package parser

import (
	"github.com/nexuslang/nexus/internal/ast"
	"github.com/nexuslang/nexus/internal/lexer"
)

// Expression grammar, lowest to highest precedence (spec.md §4.2):
//
//	expr        → logicalOr
//	logicalOr   → logicalAnd ( "||" logicalAnd )*
//	logicalAnd  → equality ( "&&" equality )*
//	equality    → comparison ( ( "==" | "!=" ) comparison )*
//	comparison  → rangeExpr ( ( "<" | "<=" | ">" | ">=" ) rangeExpr )*
//	rangeExpr   → additive ( ".." additive )?        [non-associative]
//	additive    → multiplicative ( ( "+" | "-" ) multiplicative )*
//	multiplicative → unary ( ( "*" | "/" | "%" ) unary )*
//	unary       → ( "-" | "!" ) unary | postfix
//	postfix     → primary ( "(" args ")" | "[" expr "]" | "." IDENT )*
//	primary     → literal | IDENT | "(" expr ")" | array | mapping
//	            | "knowledge" "(" ... ")" | "listen" "(" ... ")" | "get_trait" "(" ... ")"

func (p *Parser) parseExpression() ast.ExprNode {
	return p.parseLogicalOr()
}

func (p *Parser) parseLogicalOr() ast.ExprNode {
	left := p.parseLogicalAnd()
	for p.check(lexer.TOKEN_DOUBLE_PIPE) {
		tok := p.advance()
		right := p.parseLogicalAnd()
		left = &ast.Binary{Op: "||", Left: left, Right: right, Pos: ast.TokenPosition(tok)}
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.ExprNode {
	left := p.parseEquality()
	for p.check(lexer.TOKEN_DOUBLE_AMP) {
		tok := p.advance()
		right := p.parseEquality()
		left = &ast.Binary{Op: "&&", Left: left, Right: right, Pos: ast.TokenPosition(tok)}
	}
	return left
}

func (p *Parser) parseEquality() ast.ExprNode {
	left := p.parseComparison()
	for p.check(lexer.TOKEN_EQ) || p.check(lexer.TOKEN_NEQ) {
		tok := p.advance()
		right := p.parseComparison()
		left = &ast.Binary{Op: tok.Lexeme, Left: left, Right: right, Pos: ast.TokenPosition(tok)}
	}
	return left
}

func (p *Parser) parseComparison() ast.ExprNode {
	left := p.parseRange()
	for p.check(lexer.TOKEN_LT) || p.check(lexer.TOKEN_LTE) ||
		p.check(lexer.TOKEN_GT) || p.check(lexer.TOKEN_GTE) {
		tok := p.advance()
		right := p.parseRange()
		left = &ast.Binary{Op: tok.Lexeme, Left: left, Right: right, Pos: ast.TokenPosition(tok)}
	}
	return left
}

// parseRange handles `a..b`. Range is non-associative: `a..b..c` is a
// ParseError, not a left- or right-leaning chain.
func (p *Parser) parseRange() ast.ExprNode {
	left := p.parseAdditive()
	if !p.check(lexer.TOKEN_RANGE) {
		return left
	}
	tok := p.advance()
	right := p.parseAdditive()
	rng := &ast.Range{Start: left, End: right, Pos: ast.TokenPosition(tok)}
	if p.check(lexer.TOKEN_RANGE) {
		p.fail("end of range expression (.. is non-associative)", p.peek())
	}
	return rng
}

func (p *Parser) parseAdditive() ast.ExprNode {
	left := p.parseMultiplicative()
	for p.check(lexer.TOKEN_PLUS) || p.check(lexer.TOKEN_MINUS) {
		tok := p.advance()
		right := p.parseMultiplicative()
		left = &ast.Binary{Op: tok.Lexeme, Left: left, Right: right, Pos: ast.TokenPosition(tok)}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.ExprNode {
	left := p.parseUnary()
	for p.check(lexer.TOKEN_STAR) || p.check(lexer.TOKEN_SLASH) || p.check(lexer.TOKEN_PERCENT) {
		tok := p.advance()
		right := p.parseUnary()
		left = &ast.Binary{Op: tok.Lexeme, Left: left, Right: right, Pos: ast.TokenPosition(tok)}
	}
	return left
}

func (p *Parser) parseUnary() ast.ExprNode {
	if p.check(lexer.TOKEN_MINUS) || p.check(lexer.TOKEN_BANG) {
		tok := p.advance()
		operand := p.parseUnary()
		return &ast.Unary{Op: tok.Lexeme, Operand: operand, Pos: ast.TokenPosition(tok)}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.ExprNode {
	expr := p.parsePrimary()
	for {
		switch {
		case p.check(lexer.TOKEN_LPAREN):
			expr = p.parseCallArgs(expr)
		case p.check(lexer.TOKEN_LBRACKET):
			tok := p.advance()
			idx := p.parseExpression()
			p.consume(lexer.TOKEN_RBRACKET, "']'")
			expr = &ast.Index{Target: expr, Index: idx, Pos: ast.TokenPosition(tok)}
		case p.check(lexer.TOKEN_DOT):
			tok := p.advance()
			nameTok := p.consume(lexer.TOKEN_IDENTIFIER, "member name")
			expr = &ast.Member{Target: expr, Name: nameTok.Lexeme, Pos: ast.TokenPosition(tok)}
		default:
			return expr
		}
	}
}

// parseCallArgs parses `( args )` where args may mix positional expressions
// followed by `name: value` named arguments. A name may not be repeated.
func (p *Parser) parseCallArgs(callee ast.ExprNode) ast.ExprNode {
	lparen := p.advance() // '('
	call := &ast.Call{Callee: callee, Pos: ast.TokenPosition(lparen)}
	seen := map[string]bool{}

	for !p.check(lexer.TOKEN_RPAREN) {
		if p.check(lexer.TOKEN_IDENTIFIER) && p.peekIsNamedArg() {
			nameTok := p.advance()
			p.advance() // ':'
			value := p.parseExpression()
			if seen[nameTok.Lexeme] {
				p.fail("unique named argument", nameTok)
			}
			seen[nameTok.Lexeme] = true
			call.NamedArgs = append(call.NamedArgs, ast.NamedArg{Name: nameTok.Lexeme, Value: value})
		} else {
			call.Args = append(call.Args, p.parseExpression())
		}
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}
	p.consume(lexer.TOKEN_RPAREN, "')'")
	return call
}

// peekIsNamedArg reports whether the token after the current IDENTIFIER is
// ':', distinguishing `name: value` from a bare expression that happens to
// start with an identifier.
func (p *Parser) peekIsNamedArg() bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Type == lexer.TOKEN_COLON
}

func (p *Parser) parsePrimary() ast.ExprNode {
	switch {
	case p.check(lexer.TOKEN_INT_LITERAL):
		tok := p.advance()
		return &ast.IntLit{Value: tok.Literal.(int64), Pos: ast.TokenPosition(tok)}
	case p.check(lexer.TOKEN_FLOAT_LITERAL):
		tok := p.advance()
		return &ast.FloatLit{Value: tok.Literal.(float64), Pos: ast.TokenPosition(tok)}
	case p.check(lexer.TOKEN_STRING_LITERAL):
		tok := p.advance()
		return &ast.StringLit{Value: tok.Literal.(string), Pos: ast.TokenPosition(tok)}
	case p.check(lexer.TOKEN_TRUE):
		tok := p.advance()
		return &ast.BoolLit{Value: true, Pos: ast.TokenPosition(tok)}
	case p.check(lexer.TOKEN_FALSE):
		tok := p.advance()
		return &ast.BoolLit{Value: false, Pos: ast.TokenPosition(tok)}
	case p.check(lexer.TOKEN_NULL):
		tok := p.advance()
		return &ast.NullLit{Pos: ast.TokenPosition(tok)}
	case p.check(lexer.TOKEN_IDENTIFIER):
		tok := p.advance()
		return &ast.Ident{Name: tok.Lexeme, Pos: ast.TokenPosition(tok)}
	case p.check(lexer.TOKEN_LPAREN):
		p.advance()
		expr := p.parseExpression()
		p.consume(lexer.TOKEN_RPAREN, "')'")
		return expr
	case p.check(lexer.TOKEN_LBRACKET):
		return p.parseArrayLit()
	case p.check(lexer.TOKEN_LBRACE):
		return p.parseMappingLit()
	case p.check(lexer.TOKEN_KNOWLEDGE):
		return p.parseKnowledgeQuery()
	case p.check(lexer.TOKEN_LISTEN):
		return p.parseListenExpr()
	case p.check(lexer.TOKEN_GET_TRAIT):
		return p.parseGetTrait()
	default:
		p.fail("expression", p.peek())
		panic("unreachable")
	}
}

func (p *Parser) parseArrayLit() ast.ExprNode {
	lbracket := p.advance() // '['
	arr := &ast.Array{Pos: ast.TokenPosition(lbracket)}
	for !p.check(lexer.TOKEN_RBRACKET) {
		arr.Elements = append(arr.Elements, p.parseExpression())
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}
	p.consume(lexer.TOKEN_RBRACKET, "']'")
	return arr
}

func (p *Parser) parseMappingLit() ast.ExprNode {
	lbrace := p.advance() // '{'
	lit := &ast.MappingLit{Pos: ast.TokenPosition(lbrace)}
	for !p.check(lexer.TOKEN_RBRACE) {
		var key ast.ExprNode
		if p.check(lexer.TOKEN_STRING_LITERAL) {
			key = p.parsePrimary()
		} else {
			nameTok := p.consume(lexer.TOKEN_IDENTIFIER, "mapping key")
			key = &ast.StringLit{Value: nameTok.Lexeme, Pos: ast.TokenPosition(nameTok)}
		}
		p.consume(lexer.TOKEN_COLON, "':'")
		value := p.parseExpression()
		lit.Pairs = append(lit.Pairs, ast.MappingPair{Key: key, Value: value})
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}
	p.consume(lexer.TOKEN_RBRACE, "'}'")
	return lit
}

func (p *Parser) parseKnowledgeQuery() ast.ExprNode {
	kwTok := p.advance() // 'knowledge'
	p.consume(lexer.TOKEN_LPAREN, "'('")
	query := p.parseExpression()

	node := &ast.KnowledgeQuery{Query: query, Pos: ast.TokenPosition(kwTok)}
	if p.match(lexer.TOKEN_COMMA) {
		node.Filters = p.parseExpression()
	}
	p.consume(lexer.TOKEN_RPAREN, "')'")
	return node
}

func (p *Parser) parseListenExpr() ast.ExprNode {
	kwTok := p.advance() // 'listen'
	p.consume(lexer.TOKEN_LPAREN, "'('")

	node := &ast.ListenExpr{Pos: ast.TokenPosition(kwTok)}
	seen := map[string]bool{}
	for !p.check(lexer.TOKEN_RPAREN) {
		nameTok := p.consume(lexer.TOKEN_IDENTIFIER, "named argument")
		p.consume(lexer.TOKEN_COLON, "':'")
		if seen[nameTok.Lexeme] {
			p.fail("unique named argument", nameTok)
		}
		seen[nameTok.Lexeme] = true
		value := p.parseExpression()
		switch nameTok.Lexeme {
		case "timeout":
			node.Timeout = value
		case "language":
			node.Language = value
		default:
			p.fail("one of timeout, language", nameTok)
		}
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}
	p.consume(lexer.TOKEN_RPAREN, "')'")
	return node
}

// parseGetTrait parses `get_trait(name)` into a Call node targeting the
// "get_trait" intrinsic, since the AST model has no dedicated node for it
// (spec.md §3 table) beyond the parser recognising the keyword.
func (p *Parser) parseGetTrait() ast.ExprNode {
	kwTok := p.advance() // 'get_trait'
	p.consume(lexer.TOKEN_LPAREN, "'('")
	name := p.parseExpression()
	p.consume(lexer.TOKEN_RPAREN, "')'")
	return &ast.Call{
		Callee: &ast.Ident{Name: "get_trait", Pos: ast.TokenPosition(kwTok)},
		Args:   []ast.ExprNode{name},
		Pos:    ast.TokenPosition(kwTok),
	}
}
