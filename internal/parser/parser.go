package parser

import (
	"github.com/nexuslang/nexus/internal/ast"
	"github.com/nexuslang/nexus/internal/lexer"
)

// Parser transforms a token stream into a NexusLang AST.
type Parser struct {
	tokens  []lexer.Token
	current int
}

// New creates a Parser over the given token stream.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// bailout unwinds the recursive descent back to Parse on the first syntax
// error, mirroring the "halt, don't recover" behaviour spec.md §4.2 and §9
// require.
type bailout struct {
	err *ParseError
}

// Parse parses the entire token stream into a Program. It returns the first
// ParseError encountered, if any; parsing stops there.
func (p *Parser) Parse() (prog *ast.Program, err *ParseError) {
	defer func() {
		if r := recover(); r != nil {
			if b, ok := r.(bailout); ok {
				err = b.err
				return
			}
			panic(r)
		}
	}()

	prog = &ast.Program{Pos: ast.Position{Line: 1, Column: 1}}
	if len(p.tokens) > 0 {
		prog.Pos = ast.TokenPosition(p.tokens[0])
	}

	for !p.isAtEnd() {
		prog.Statements = append(prog.Statements, p.parseTopStmt())
	}

	return prog, nil
}

func (p *Parser) parseTopStmt() ast.StmtNode {
	if p.check(lexer.TOKEN_PERSONALITY) {
		return p.parsePersonalityBlock()
	}
	return p.parseStatement()
}

func (p *Parser) parsePersonalityBlock() ast.StmtNode {
	kw := p.advance() // 'personality'
	p.consume(lexer.TOKEN_LBRACE, "'{'")

	block := &ast.PersonalityBlock{Pos: ast.TokenPosition(kw)}
	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		nameTok := p.consume(lexer.TOKEN_IDENTIFIER, "trait name")
		p.consume(lexer.TOKEN_COLON, "':'")
		if !p.check(lexer.TOKEN_FLOAT_LITERAL) && !p.check(lexer.TOKEN_INT_LITERAL) {
			p.fail("trait value (a number)", p.peek())
		}
		valueTok := p.advance()
		var value float64
		switch lit := valueTok.Literal.(type) {
		case float64:
			value = lit
		case int64:
			value = float64(lit)
		}
		if value < 0.0 || value > 1.0 {
			p.fail("trait value in [0.0, 1.0]", valueTok)
		}
		block.Traits = append(block.Traits, ast.TraitEntry{
			Name:  nameTok.Lexeme,
			Value: value,
			Pos:   ast.TokenPosition(nameTok),
		})
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}
	p.consume(lexer.TOKEN_RBRACE, "'}'")
	return block
}

func (p *Parser) parseStatement() ast.StmtNode {
	switch {
	case p.check(lexer.TOKEN_LET), p.check(lexer.TOKEN_CONST):
		return p.parseLetStmt()
	case p.check(lexer.TOKEN_FN):
		return p.parseFunctionDecl()
	case p.check(lexer.TOKEN_IF):
		return p.parseIfStmt()
	case p.check(lexer.TOKEN_WHILE):
		return p.parseWhileStmt()
	case p.check(lexer.TOKEN_FOR):
		return p.parseForStmt()
	case p.check(lexer.TOKEN_RETURN):
		return p.parseReturnStmt()
	case p.check(lexer.TOKEN_BREAK):
		tok := p.advance()
		return &ast.BreakStmt{Pos: ast.TokenPosition(tok)}
	case p.check(lexer.TOKEN_CONTINUE):
		tok := p.advance()
		return &ast.ContinueStmt{Pos: ast.TokenPosition(tok)}
	case p.check(lexer.TOKEN_VOICE):
		return p.parseVoiceBlock()
	case p.check(lexer.TOKEN_SAY):
		return p.parseSayStmt()
	case p.check(lexer.TOKEN_OPTIMIZE_SELF):
		return p.parseOptimizeSelfStmt()
	case p.check(lexer.TOKEN_LBRACE):
		return p.parseBlock()
	default:
		return p.parseAssignOrExprStmt()
	}
}

func (p *Parser) parseLetStmt() ast.StmtNode {
	kwTok := p.advance()
	isConst := kwTok.Type == lexer.TOKEN_CONST

	nameTok := p.consume(lexer.TOKEN_IDENTIFIER, "identifier")
	var typeHint string
	if p.match(lexer.TOKEN_COLON) {
		typeHint = p.parseTypeHint()
	}
	p.consume(lexer.TOKEN_EQUALS, "'='")
	value := p.parseExpression()

	return &ast.LetStmt{
		Name:     nameTok.Lexeme,
		Const:    isConst,
		TypeHint: typeHint,
		Value:    value,
		Pos:      ast.TokenPosition(kwTok),
	}
}

// parseTypeHint consumes a type annotation token sequence and renders it
// back to text. Type hints are parsed but never enforced (spec.md §4.2).
func (p *Parser) parseTypeHint() string {
	tok := p.consume(lexer.TOKEN_IDENTIFIER, "type name")
	return tok.Lexeme
}

func (p *Parser) parseFunctionDecl() ast.StmtNode {
	kwTok := p.advance() // 'fn'
	nameTok := p.consume(lexer.TOKEN_IDENTIFIER, "function name")
	p.consume(lexer.TOKEN_LPAREN, "'('")

	var params []ast.Param
	seenDefault := false
	for !p.check(lexer.TOKEN_RPAREN) {
		pname := p.consume(lexer.TOKEN_IDENTIFIER, "parameter name")
		if p.match(lexer.TOKEN_COLON) {
			p.parseTypeHint()
		}
		var def ast.ExprNode
		if p.match(lexer.TOKEN_EQUALS) {
			def = p.parseExpression()
			seenDefault = true
		} else if seenDefault {
			p.fail("parameter with default (defaults must come last)", p.peek())
		}
		params = append(params, ast.Param{Name: pname.Lexeme, Default: def})
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}
	p.consume(lexer.TOKEN_RPAREN, "')'")

	var returnType string
	if p.match(lexer.TOKEN_ARROW) {
		returnType = p.parseTypeHint()
	}

	body := p.parseBlock().(*ast.Block)
	return &ast.FunctionDecl{
		Name:       nameTok.Lexeme,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
		Pos:        ast.TokenPosition(kwTok),
	}
}

func (p *Parser) parseIfStmt() ast.StmtNode {
	kwTok := p.advance() // 'if'
	cond := p.parseExpression()
	then := p.parseBlock().(*ast.Block)

	stmt := &ast.IfStmt{Cond: cond, Then: then, Pos: ast.TokenPosition(kwTok)}
	if p.match(lexer.TOKEN_ELSE) {
		if p.check(lexer.TOKEN_IF) {
			stmt.Else = p.parseIfStmt()
		} else {
			stmt.Else = p.parseBlock()
		}
	}
	return stmt
}

func (p *Parser) parseWhileStmt() ast.StmtNode {
	kwTok := p.advance() // 'while'
	cond := p.parseExpression()
	body := p.parseBlock().(*ast.Block)
	return &ast.WhileStmt{Cond: cond, Body: body, Pos: ast.TokenPosition(kwTok)}
}

func (p *Parser) parseForStmt() ast.StmtNode {
	kwTok := p.advance() // 'for'
	nameTok := p.consume(lexer.TOKEN_IDENTIFIER, "loop variable")
	p.consume(lexer.TOKEN_IN, "'in'")
	iterable := p.parseExpression()
	body := p.parseBlock().(*ast.Block)
	return &ast.ForStmt{Name: nameTok.Lexeme, Iterable: iterable, Body: body, Pos: ast.TokenPosition(kwTok)}
}

func (p *Parser) parseReturnStmt() ast.StmtNode {
	kwTok := p.advance() // 'return'
	var value ast.ExprNode
	if !p.startsExpression() {
		return &ast.ReturnStmt{Pos: ast.TokenPosition(kwTok)}
	}
	value = p.parseExpression()
	return &ast.ReturnStmt{Value: value, Pos: ast.TokenPosition(kwTok)}
}

// startsExpression reports whether the current token can begin an
// expression, used to detect a bare `return` with no value.
func (p *Parser) startsExpression() bool {
	switch p.peek().Type {
	case lexer.TOKEN_RBRACE, lexer.TOKEN_EOF:
		return false
	default:
		return true
	}
}

func (p *Parser) parseVoiceBlock() ast.StmtNode {
	kwTok := p.advance() // 'voice'
	body := p.parseBlock().(*ast.Block)
	return &ast.VoiceBlock{Body: body, Pos: ast.TokenPosition(kwTok)}
}

func (p *Parser) parseSayStmt() ast.StmtNode {
	kwTok := p.advance() // 'say'
	p.consume(lexer.TOKEN_LPAREN, "'('")
	text := p.parseExpression()

	stmt := &ast.SayStmt{Text: text, Pos: ast.TokenPosition(kwTok)}
	seen := map[string]bool{}
	for p.match(lexer.TOKEN_COMMA) {
		nameTok := p.consume(lexer.TOKEN_IDENTIFIER, "named argument")
		p.consume(lexer.TOKEN_COLON, "':'")
		if seen[nameTok.Lexeme] {
			p.fail("unique named argument", nameTok)
		}
		seen[nameTok.Lexeme] = true
		value := p.parseExpression()
		switch nameTok.Lexeme {
		case "emotion":
			stmt.Emotion = value
		case "voice_id":
			stmt.VoiceID = value
		case "speed":
			stmt.Speed = value
		default:
			p.fail("one of emotion, voice_id, speed", nameTok)
		}
	}
	p.consume(lexer.TOKEN_RPAREN, "')'")
	return stmt
}

func (p *Parser) parseOptimizeSelfStmt() ast.StmtNode {
	kwTok := p.advance() // 'optimize_self'
	p.consume(lexer.TOKEN_LPAREN, "'('")

	stmt := &ast.OptimizeSelfStmt{Pos: ast.TokenPosition(kwTok)}
	seen := map[string]bool{}
	first := true
	for first || p.match(lexer.TOKEN_COMMA) {
		first = false
		if p.check(lexer.TOKEN_RPAREN) {
			break
		}
		nameTok := p.consume(lexer.TOKEN_IDENTIFIER, "named argument")
		p.consume(lexer.TOKEN_COLON, "':'")
		if seen[nameTok.Lexeme] {
			p.fail("unique named argument", nameTok)
		}
		seen[nameTok.Lexeme] = true
		value := p.parseExpression()
		switch nameTok.Lexeme {
		case "metric":
			stmt.Metric = value
		case "target":
			stmt.Target = value
		case "strategy":
			stmt.Strategy = value
		default:
			p.fail("one of metric, target, strategy", nameTok)
		}
	}
	p.consume(lexer.TOKEN_RPAREN, "')'")
	return stmt
}

func (p *Parser) parseBlock() ast.StmtNode {
	lbrace := p.consume(lexer.TOKEN_LBRACE, "'{'")
	block := &ast.Block{Pos: ast.TokenPosition(lbrace)}
	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		block.Statements = append(block.Statements, p.parseStatement())
	}
	p.consume(lexer.TOKEN_RBRACE, "'}'")
	return block
}

// parseAssignOrExprStmt parses either an assignment (ident/index/member
// target followed by `=`) or a plain expression statement. Both start
// identically, so the target is parsed once as an expression and then
// inspected for a following `=`.
func (p *Parser) parseAssignOrExprStmt() ast.StmtNode {
	startTok := p.peek()
	expr := p.parseExpression()

	if p.match(lexer.TOKEN_EQUALS) {
		switch expr.(type) {
		case *ast.Ident, *ast.Index, *ast.Member:
		default:
			p.fail("assignable target (identifier, index, or member)", startTok)
		}
		value := p.parseExpression()
		return &ast.AssignStmt{Target: expr, Value: value, Pos: ast.TokenPosition(startTok)}
	}

	return &ast.ExprStmt{Expr: expr, Pos: ast.TokenPosition(startTok)}
}

// --- token stream helpers ---

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TOKEN_EOF
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() lexer.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(t lexer.TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(t lexer.TokenType, expected string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	p.fail(expected, p.peek())
	panic("unreachable")
}

func (p *Parser) fail(expected string, found lexer.Token) {
	panic(bailout{err: newParseError(expected, found)})
}
