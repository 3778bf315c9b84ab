// internal/parser/parser.go
package parser

import (
	"strconv"
	"strings"

	"warpc/internal/errors"
	"warpc/internal/lexer"
	"warpc/internal/node"
	"warpc/internal/op"
)

// Parser is a hand-written Pratt parser: a lexer-produced token stream in,
// a single *node.Node out. Failure never panics past Parse — it
// is recovered into a node.Error, per spec.md §4.1/§7.
type Parser struct {
	tokens   []lexer.Token
	comments map[int]string
	current  int
	file     string
	source   []string
}

func New(tokens []lexer.Token, comments map[int]string, file, source string) *Parser {
	return &Parser{
		tokens:   tokens,
		comments: comments,
		file:     file,
		source:   strings.Split(source, "\n"),
	}
}

// Parse scans+parses a full program: a sequence of top-level forms
// separated by (possibly significant) newlines or semicolons, returned
// as a single Node — a List if more than one form was present.
func Parse(source, file string) (result *node.Node) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*errors.CompileError); ok {
				result = node.NewError(ce.Error())
				return
			}
			panic(r)
		}
	}()
	s := lexer.NewScanner(source, file)
	toks := s.ScanTokens()
	p := New(toks, s.Comments, file, source)
	return p.parseProgram()
}

func (p *Parser) parseProgram() *node.Node {
	var items []*node.Node
	sep := node.NoSeparator
	for {
		p.skipNewlines()
		if p.isAtEnd() {
			break
		}
		items = append(items, p.parseTopLevel())
		if p.checkAny(lexer.TokenSemicolon, lexer.TokenNewline) {
			if p.peek().Type == lexer.TokenSemicolon {
				sep = node.Promote(sep, node.SemicolonSep)
			} else {
				sep = node.Promote(sep, node.NewlineSep)
			}
			p.advance()
		}
	}
	if len(items) == 1 {
		return items[0]
	}
	return node.NewList(items, node.NoBracket, sep)
}

func (p *Parser) skipNewlines() {
	for p.check(lexer.TokenNewline) {
		p.advance()
	}
}

// parseTopLevel recognises the keyword forms of spec.md §4.1 before
// falling back to a plain expression.
func (p *Parser) parseTopLevel() *node.Node {
	if p.checkKeyword("use") {
		return p.parseUse()
	}
	if p.checkKeyword("import") {
		return p.parseImport()
	}
	if p.checkKeyword("global") {
		return p.parseGlobal()
	}
	if p.checkKeyword("def") || p.checkKeyword("fun") || p.checkKeyword("fn") ||
		p.checkKeyword("define") || p.checkKeyword("function") {
		return p.parseFunctionDef()
	}
	return p.parseExpression(0)
}

func (p *Parser) parseUse() *node.Node {
	start := p.advance() // 'use'
	name := p.expectIdent("Expect module name after 'use'")
	return p.decorate(start, node.NewList([]*node.Node{node.NewSymbol("use"), node.NewSymbol(name)}, node.NoBracket, node.SpaceSep))
}

func (p *Parser) parseImport() *node.Node {
	start := p.advance() // 'import'
	name := p.expectIdent("Expect symbol name after 'import'")
	items := []*node.Node{node.NewSymbol("import"), node.NewSymbol(name)}
	if p.checkKeyword("from") {
		p.advance()
		lib := p.expectStringOrIdent("Expect library name after 'from'")
		items = append(items, node.NewSymbol("from"), node.NewText(lib))
	}
	return p.decorate(start, node.NewList(items, node.NoBracket, node.SpaceSep))
}

func (p *Parser) parseGlobal() *node.Node {
	start := p.advance() // 'global'
	binding := p.parseExpression(0)
	return p.decorate(start, node.NewList([]*node.Node{node.NewSymbol("global"), binding}, node.NoBracket, node.SpaceSep))
}

// parseFunctionDef handles `def name(p1, p2): body`. The equivalent
// surface forms `name(p1) = body` and `name := body` fall out of the
// ordinary Pratt loop (see parseExpression/finishInfix) and produce the
// identical Key(signature, Assign|Define, body) shape.
func (p *Parser) parseFunctionDef() *node.Node {
	start := p.advance() // def/fun/fn/define/function
	name := p.expectIdent("Expect function name")
	sig := p.parseSignature(name)
	var o op.Op
	switch {
	case p.check(lexer.TokenColon):
		p.advance()
		o = op.Define
	case p.checkOpText("="):
		p.advance()
		o = op.Assign
	default:
		o = op.Define
	}
	body := p.parseExpression(0)
	return p.decorate(start, node.NewKey(sig, o, body))
}

// parseSignature parses `name(p1, p2, ...)` into List(Round)[Symbol(name), Symbol(p1), ...].
func (p *Parser) parseSignature(name string) *node.Node {
	items := []*node.Node{node.NewSymbol(name)}
	if p.check(lexer.TokenLParen) {
		p.advance()
		for !p.check(lexer.TokenRParen) && !p.isAtEnd() {
			items = append(items, node.NewSymbol(p.expectIdent("Expect parameter name")))
			if !p.check(lexer.TokenComma) {
				break
			}
			p.advance()
		}
		p.consume(lexer.TokenRParen, "Expect ')' after parameters")
	}
	return node.NewList(items, node.Round, node.CommaSep)
}

// --- Pratt expression parser -------------------------------------------

func (p *Parser) parseExpression(minBP int) *node.Node {
	left := p.parsePostfix(p.parsePrefix())
	for {
		o, ok := p.peekOp()
		if !ok {
			break
		}
		lbp, rbp := o.BindingPower()
		if lbp == 0 || lbp < minBP {
			break
		}
		tok := p.advanceOp()
		if rbp == 0 {
			// suffix
			left = p.parsePostfix(p.decorate(tok, node.NewKey(left, o, node.NewEmpty())))
			continue
		}
		if o == op.Cond {
			left = p.parseTernary(left, tok)
			continue
		}
		right := p.parseExpression(rbp)
		left = p.parsePostfix(p.decorate(tok, node.NewKey(left, o, right)))
	}
	return left
}

// parseTernary parses `cond ? then : else`: `?` is an ordinary binary
// operator with a low right binding power so `:` (bound just above `?`'s
// right bp) consumes only the "then" arm before the loop in
// parseExpression returns control here for the "else" arm.
func (p *Parser) parseTernary(cond *node.Node, qTok lexer.Token) *node.Node {
	_, rbp := op.Cond.BindingPower()
	thenArm := p.parseExpression(rbp)
	p.consume(lexer.TokenColon, "Expect ':' in conditional expression")
	elseArm := p.parseExpression(rbp)
	return p.decorate(qTok, node.NewKey(cond, op.Cond, node.NewKey(thenArm, op.Colon, elseArm)))
}

func (p *Parser) parsePrefix() *node.Node {
	if o, ok := p.peekOp(); ok && o.IsPrefix() {
		tok := p.advanceOp()
		_, rbp := o.BindingPower()
		operand := p.parseExpression(rbp)
		return p.decorate(tok, node.NewKey(node.NewEmpty(), o, operand))
	}
	return p.parsePrimary()
}

// parsePostfix handles the non-operator-table postfix forms: call
// argument lists and `[index]`, which loop like the teacher's
// parser.parseCall. parseExpression applies it to every operand it
// builds — after parsePrefix and after each binary/suffix result — so a
// call or index can appear on either side of an operator, not just at
// the tail of a whole expression.
func (p *Parser) parsePostfix(left *node.Node) *node.Node {
	for {
		switch {
		case p.check(lexer.TokenLParen):
			tok := p.peek()
			p.advance()
			args := []*node.Node{}
			for !p.check(lexer.TokenRParen) && !p.isAtEnd() {
				args = append(args, p.parseExpression(0))
				if !p.check(lexer.TokenComma) {
					break
				}
				p.advance()
			}
			p.consume(lexer.TokenRParen, "Expect ')' after arguments")
			items := append([]*node.Node{left}, args...)
			left = p.decorate(tok, node.NewList(items, node.Round, node.CommaSep))
		case p.check(lexer.TokenLBracket):
			tok := p.peek()
			p.advance()
			idx := p.parseExpression(0)
			p.consume(lexer.TokenRBracket, "Expect ']' after index")
			left = p.decorate(tok, node.NewKey(left, op.Index, idx))
		default:
			return left
		}
	}
}

func (p *Parser) parsePrimary() *node.Node {
	if p.isAtEnd() {
		panic(p.errAt(p.peek(), "Unexpected end of input"))
	}
	tok := p.advance()
	switch tok.Type {
	case lexer.TokenNumber:
		return p.decorate(tok, parseNumber(tok.Lexeme))
	case lexer.TokenString:
		return p.decorate(tok, node.NewText(tok.Lexeme))
	case lexer.TokenChar:
		r := []rune(tok.Lexeme)
		var c rune
		if len(r) > 0 {
			c = r[0]
		}
		return p.decorate(tok, node.NewChar(c))
	case lexer.TokenIdent:
		return p.decorate(tok, node.NewSymbol(tok.Lexeme))
	case lexer.TokenKeyword:
		return p.parseKeywordPrimary(tok)
	case lexer.TokenLParen:
		if p.check(lexer.TokenRParen) {
			p.advance()
			return p.decorate(tok, node.NewEmpty())
		}
		return p.parseBracketed(tok, lexer.TokenRParen, node.Round)
	case lexer.TokenLBracket:
		if p.check(lexer.TokenRBracket) {
			p.advance()
			return p.decorate(tok, node.NewList(nil, node.Square, node.NoSeparator))
		}
		return p.parseBracketed(tok, lexer.TokenRBracket, node.Square)
	case lexer.TokenLBrace:
		if p.check(lexer.TokenRBrace) {
			p.advance()
			return p.decorate(tok, node.NewList(nil, node.Curly, node.NoSeparator))
		}
		return p.parseBracketed(tok, lexer.TokenRBrace, node.Curly)
	}
	panic(p.errAt(tok, "Unexpected token in expression: '"+tok.Lexeme+"'"))
}

func (p *Parser) parseKeywordPrimary(tok lexer.Token) *node.Node {
	switch tok.Lexeme {
	case "true", "yes":
		return p.decorate(tok, node.NewTrue())
	case "false", "no":
		return p.decorate(tok, node.NewFalse())
	case "null", "empty":
		return p.decorate(tok, node.NewEmpty())
	case "not":
		operand := p.parseExpression(80)
		return p.decorate(tok, node.NewKey(node.NewEmpty(), op.Not, operand))
	case "if":
		return p.parseIf(tok)
	case "while":
		return p.parseWhile(tok)
	}
	panic(p.errAt(tok, "Unexpected keyword in expression: '"+tok.Lexeme+"'"))
}

// parseIf accepts every surface variant from spec.md §4.1:
// `if C then T else E`, `if C { T } else { E }`, `if C: T else E`,
// `if(C){T} else {E}`, and mixtures thereof.
func (p *Parser) parseIf(tok lexer.Token) *node.Node {
	cond := p.parseCondition()
	var thenBranch *node.Node
	switch {
	case p.checkKeyword("then"):
		p.advance()
		thenBranch = p.parseExpression(0)
	case p.check(lexer.TokenColon):
		p.advance()
		thenBranch = p.parseExpression(0)
	case p.check(lexer.TokenLBrace):
		thenBranch = p.parsePrimary()
	default:
		thenBranch = p.parseExpression(0)
	}
	elseBranch := node.NewEmpty()
	if p.checkKeyword("else") {
		p.advance()
		elseBranch = p.parseExpression(0)
	}
	return p.decorate(tok, node.NewList([]*node.Node{node.NewSymbol("if"), cond, thenBranch, elseBranch}, node.NoBracket, node.SpaceSep))
}

// parseCondition parses the condition, tolerating an optional
// parenthesised form (`if(C)`) without requiring it.
func (p *Parser) parseCondition() *node.Node {
	if p.check(lexer.TokenLParen) {
		tok := p.advance()
		cond := p.parseExpression(0)
		p.consume(lexer.TokenRParen, "Expect ')' after condition")
		return p.decorate(tok, cond)
	}
	return p.parseExpression(0)
}

func (p *Parser) parseWhile(tok lexer.Token) *node.Node {
	cond := p.parseCondition()
	var body *node.Node
	if p.checkKeyword("do") {
		p.advance()
		body = p.parseExpression(0)
	} else {
		body = p.parsePrimary()
	}
	return p.decorate(tok, node.NewList([]*node.Node{node.NewSymbol("while"), cond, body}, node.NoBracket, node.SpaceSep))
}

// parseBracketed parses the contents of a balanced bracket: a sequence
// of forms joined by a consistent separator. Mixed separators promote to
// the most general one seen (spec.md §4.1). A lone inner element returns
// that element directly, unmodified by a List wrapper.
func (p *Parser) parseBracketed(open lexer.Token, closeTok lexer.TokenType, bracket node.Bracket) *node.Node {
	var items []*node.Node
	sep := node.NoSeparator
	for {
		p.skipNewlines()
		if p.check(closeTok) || p.isAtEnd() {
			break
		}
		items = append(items, p.parseTopLevelInBracket())
		switch {
		case p.check(lexer.TokenComma):
			sep = node.Promote(sep, node.CommaSep)
			p.advance()
		case p.check(lexer.TokenSemicolon):
			sep = node.Promote(sep, node.SemicolonSep)
			p.advance()
		case p.check(lexer.TokenColon) && bracket == node.Curly:
			sep = node.Promote(sep, node.ColonSep)
			p.advance()
		case p.check(lexer.TokenNewline):
			sep = node.Promote(sep, node.NewlineSep)
			p.skipNewlines()
		default:
			if !p.check(closeTok) {
				sep = node.Promote(sep, node.SpaceSep)
			}
		}
	}
	p.consume(closeTok, "Expect closing bracket")
	if len(items) == 1 && bracket != node.Square {
		return items[0]
	}
	return p.decorate(open, node.NewList(items, bracket, sep))
}

func (p *Parser) parseTopLevelInBracket() *node.Node {
	if p.checkKeyword("def") || p.checkKeyword("fun") || p.checkKeyword("fn") {
		return p.parseFunctionDef()
	}
	return p.parseExpression(0)
}

// --- numbers ------------------------------------------------------------

func parseNumber(lexeme string) *node.Node {
	if strings.HasPrefix(lexeme, "0x") || strings.HasPrefix(lexeme, "0X") {
		v, err := strconv.ParseInt(lexeme[2:], 16, 64)
		if err != nil {
			return node.NewInt(0)
		}
		return node.NewInt(v)
	}
	if strings.ContainsAny(lexeme, ".eE") {
		f, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return node.NewFloat(0)
		}
		return node.NewFloat(f)
	}
	v, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return node.NewInt(0)
	}
	return node.NewInt(v)
}

// --- token-stream helpers ------------------------------------------------

func (p *Parser) decorate(tok lexer.Token, n *node.Node) *node.Node {
	comment := p.comments[p.tokenIndexOf(tok)]
	return node.WrapMeta(n, comment, tok.Line, tok.Column)
}

// tokenIndexOf finds tok's index in the stream by identity of position;
// cheap enough for the expected program sizes and avoids threading an
// index through every call site.
func (p *Parser) tokenIndexOf(tok lexer.Token) int {
	for i, t := range p.tokens {
		if t.Line == tok.Line && t.Column == tok.Column && t.Lexeme == tok.Lexeme {
			return i
		}
	}
	return -1
}

func (p *Parser) peek() lexer.Token { return p.tokens[p.current] }

func (p *Parser) isAtEnd() bool { return p.tokens[p.current].Type == lexer.TokenEOF }

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.current]
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) check(t lexer.TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) checkAny(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			return true
		}
	}
	return false
}

func (p *Parser) checkKeyword(word string) bool {
	tok := p.peek()
	return tok.Type == lexer.TokenKeyword && tok.Lexeme == word
}

func (p *Parser) checkOpText(text string) bool {
	tok := p.peek()
	return tok.Type == lexer.TokenOp && tok.Lexeme == text
}

func (p *Parser) peekOp() (op.Op, bool) {
	tok := p.peek()
	if tok.Type != lexer.TokenOp {
		return op.Invalid, false
	}
	return op.Lookup(tok.Lexeme)
}

func (p *Parser) advanceOp() lexer.Token {
	return p.advance()
}

func (p *Parser) consume(t lexer.TokenType, msg string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	panic(p.errAt(p.peek(), msg+" (got '"+p.peek().Lexeme+"')"))
}

func (p *Parser) consumeOpText(text, msg string) lexer.Token {
	if p.checkOpText(text) {
		return p.advance()
	}
	panic(p.errAt(p.peek(), msg))
}

func (p *Parser) expectIdent(msg string) string {
	tok := p.consume(lexer.TokenIdent, msg)
	return tok.Lexeme
}

func (p *Parser) expectStringOrIdent(msg string) string {
	if p.check(lexer.TokenString) {
		return p.advance().Lexeme
	}
	return p.expectIdent(msg)
}

func (p *Parser) errAt(tok lexer.Token, msg string) *errors.CompileError {
	err := errors.NewSyntaxError(msg, p.file, tok.Line, tok.Column)
	if tok.Line > 0 && tok.Line <= len(p.source) {
		err = err.WithSource(p.source[tok.Line-1])
	}
	return err
}
