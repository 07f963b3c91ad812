package query

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Expression is a compiled query, safe for reuse across evaluations.
type Expression struct {
	src  string
	root node
}

func (e *Expression) String() string { return e.src }

type node interface{}

type (
	fieldNode   struct{ name string }
	indexNode   struct{ index int }
	literalNode struct{ value any }
	currentNode struct{}

	// subNode evaluates right against the result of left (a.b).
	subNode struct{ left, right node }

	// pipeNode evaluates right against the fully realized result of left,
	// stopping any projection started on the left side.
	pipeNode struct{ left, right node }

	// projectNode maps right over the elements produced by left.
	// Object projections iterate map values instead of array elements.
	projectNode struct {
		left, right node
		object      bool
	}

	// filterNode keeps elements of left for which cond is truthy, then maps
	// right over the survivors.
	filterNode struct{ left, cond, right node }

	flattenNode struct{ child node }

	compareNode struct {
		op          tokenType
		left, right node
	}
	andNode struct{ left, right node }
	orNode  struct{ left, right node }
	notNode struct{ child node }

	multiListNode struct{ elems []node }
	multiHashNode struct {
		keys  []string
		elems []node
	}
)

// Compile parses an expression into a reusable form. A malformed expression
// returns a *SyntaxError.
func Compile(expr string) (*Expression, error) {
	lx := &lexer{expr: expr}
	tokens, err := lx.tokenize()
	if err != nil {
		return nil, err
	}
	p := &parser{expr: expr, tokens: tokens}
	root, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if p.current().typ != tokEOF {
		return nil, p.errf("unexpected token %q", p.current().value)
	}
	return &Expression{src: expr, root: root}, nil
}

// Search compiles expr and evaluates it against data in one step.
func Search(expr string, data any) (any, error) {
	compiled, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return compiled.Eval(data), nil
}

// Binding powers. Mirrors the operator precedence of the source language:
// pipe binds loosest, paths bind tightest.
const (
	bpPipe       = 1
	bpOr         = 2
	bpAnd        = 3
	bpComparator = 5
	bpFlatten    = 9
	bpStar       = 20
	bpFilter     = 21
	bpDot        = 40
	bpNot        = 45
	bpLBracket   = 55
)

func bindingPower(t tokenType) int {
	switch t {
	case tokPipe:
		return bpPipe
	case tokOr:
		return bpOr
	case tokAnd:
		return bpAnd
	case tokEQ, tokNE, tokLT, tokLTE, tokGT, tokGTE:
		return bpComparator
	case tokFlatten:
		return bpFlatten
	case tokStar:
		return bpStar
	case tokFilter:
		return bpFilter
	case tokDot:
		return bpDot
	case tokNot:
		return bpNot
	case tokLBracket:
		return bpLBracket
	default:
		return 0
	}
}

type parser struct {
	expr   string
	tokens []token
	pos    int
}

func (p *parser) current() token { return p.tokens[p.pos] }

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) errf(format string, args ...any) error {
	return &SyntaxError{
		Expression: p.expr,
		Position:   p.current().pos,
		Message:    fmt.Sprintf(format, args...),
	}
}

func (p *parser) expect(t tokenType, what string) error {
	if p.current().typ != t {
		return p.errf("expected %s, found %q", what, p.current().value)
	}
	p.advance()
	return nil
}

func (p *parser) parseExpression(rbp int) (node, error) {
	left, err := p.nud(p.advance())
	if err != nil {
		return nil, err
	}
	for bindingPower(p.current().typ) > rbp {
		left, err = p.led(p.advance(), left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// nud parses a token at the start of an expression (no left context).
func (p *parser) nud(tok token) (node, error) {
	switch tok.typ {
	case tokIdentifier:
		return fieldNode{tok.value}, nil
	case tokQuotedIdentifier:
		return fieldNode{tok.value}, nil
	case tokCurrent:
		return currentNode{}, nil
	case tokRawString:
		return literalNode{tok.value}, nil
	case tokNumber:
		f, err := strconv.ParseFloat(tok.value, 64)
		if err != nil {
			return nil, &SyntaxError{Expression: p.expr, Position: tok.pos, Message: "invalid number literal"}
		}
		return literalNode{f}, nil
	case tokJSONLiteral:
		var v any
		if err := json.Unmarshal([]byte(tok.value), &v); err != nil {
			return nil, &SyntaxError{Expression: p.expr, Position: tok.pos, Message: "invalid JSON literal"}
		}
		return literalNode{v}, nil
	case tokStar:
		right, err := p.parseProjectionRHS(bpStar)
		if err != nil {
			return nil, err
		}
		return projectNode{left: currentNode{}, right: right, object: true}, nil
	case tokFlatten:
		right, err := p.parseProjectionRHS(bpFlatten)
		if err != nil {
			return nil, err
		}
		return projectNode{left: flattenNode{currentNode{}}, right: right}, nil
	case tokFilter:
		return p.parseFilter(currentNode{})
	case tokLBracket:
		return p.parseBracket(currentNode{}, true)
	case tokLBrace:
		return p.parseMultiHash()
	case tokNot:
		child, err := p.parseExpression(bpNot)
		if err != nil {
			return nil, err
		}
		return notNode{child}, nil
	case tokLParen:
		inner, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case tokEOF:
		return nil, &SyntaxError{Expression: p.expr, Position: tok.pos, Message: "unexpected end of expression"}
	default:
		return nil, &SyntaxError{Expression: p.expr, Position: tok.pos, Message: "unexpected token " + strconv.Quote(tok.value)}
	}
}

// led parses a token with a left-hand expression already consumed.
func (p *parser) led(tok token, left node) (node, error) {
	switch tok.typ {
	case tokDot:
		if p.current().typ == tokStar {
			p.advance()
			right, err := p.parseProjectionRHS(bpStar)
			if err != nil {
				return nil, err
			}
			return projectNode{left: left, right: right, object: true}, nil
		}
		right, err := p.parseDotRHS(bpDot)
		if err != nil {
			return nil, err
		}
		return subNode{left, right}, nil
	case tokPipe:
		right, err := p.parseExpression(bpPipe)
		if err != nil {
			return nil, err
		}
		return pipeNode{left, right}, nil
	case tokOr:
		right, err := p.parseExpression(bpOr)
		if err != nil {
			return nil, err
		}
		return orNode{left, right}, nil
	case tokAnd:
		right, err := p.parseExpression(bpAnd)
		if err != nil {
			return nil, err
		}
		return andNode{left, right}, nil
	case tokEQ, tokNE, tokLT, tokLTE, tokGT, tokGTE:
		right, err := p.parseExpression(bpComparator)
		if err != nil {
			return nil, err
		}
		return compareNode{op: tok.typ, left: left, right: right}, nil
	case tokFlatten:
		right, err := p.parseProjectionRHS(bpFlatten)
		if err != nil {
			return nil, err
		}
		return projectNode{left: flattenNode{left}, right: right}, nil
	case tokFilter:
		return p.parseFilter(left)
	case tokLBracket:
		return p.parseBracket(left, false)
	default:
		return nil, &SyntaxError{Expression: p.expr, Position: tok.pos, Message: "unexpected token " + strconv.Quote(tok.value)}
	}
}

// parseBracket handles '[' already consumed: an index, a wildcard projection,
// or (only at the start of an expression) a multiselect list.
func (p *parser) parseBracket(left node, allowMultiselect bool) (node, error) {
	switch p.current().typ {
	case tokNumber:
		idx, err := strconv.Atoi(p.current().value)
		if err != nil {
			return nil, p.errf("invalid index %q", p.current().value)
		}
		p.advance()
		if err := p.expect(tokRBracket, "']'"); err != nil {
			return nil, err
		}
		return subNode{left, indexNode{idx}}, nil
	case tokStar:
		p.advance()
		if err := p.expect(tokRBracket, "']'"); err != nil {
			return nil, err
		}
		right, err := p.parseProjectionRHS(bpStar)
		if err != nil {
			return nil, err
		}
		return projectNode{left: left, right: right}, nil
	default:
		if !allowMultiselect {
			return nil, p.errf("expected an index or '*' inside brackets")
		}
		return p.parseMultiList()
	}
}

func (p *parser) parseMultiList() (node, error) {
	var elems []node
	for {
		elem, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if p.current().typ == tokComma {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(tokRBracket, "']'"); err != nil {
		return nil, err
	}
	return multiListNode{elems}, nil
}

func (p *parser) parseMultiHash() (node, error) {
	var keys []string
	var elems []node
	for {
		keyTok := p.current()
		if keyTok.typ != tokIdentifier && keyTok.typ != tokQuotedIdentifier {
			return nil, p.errf("expected a key name, found %q", keyTok.value)
		}
		p.advance()
		if err := p.expect(tokColon, "':'"); err != nil {
			return nil, err
		}
		elem, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		keys = append(keys, keyTok.value)
		elems = append(elems, elem)
		if p.current().typ == tokComma {
			p.advance()
			continue
		}
		break
	}
	if err := p.expect(tokRBrace, "'}'"); err != nil {
		return nil, err
	}
	return multiHashNode{keys: keys, elems: elems}, nil
}

func (p *parser) parseFilter(left node) (node, error) {
	cond, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokRBracket, "']'"); err != nil {
		return nil, err
	}
	right, err := p.parseProjectionRHS(bpFilter)
	if err != nil {
		return nil, err
	}
	return filterNode{left: left, cond: cond, right: right}, nil
}

// parseDotRHS parses what may legally follow a dot.
func (p *parser) parseDotRHS(rbp int) (node, error) {
	switch p.current().typ {
	case tokIdentifier, tokQuotedIdentifier:
		return p.parseExpression(rbp)
	case tokLBracket:
		p.advance()
		return p.parseMultiList()
	case tokLBrace:
		p.advance()
		return p.parseMultiHash()
	default:
		return nil, p.errf("expected a field name after '.', found %q", p.current().value)
	}
}

// parseProjectionRHS parses the expression a projection maps over its
// elements, or yields the identity when the projection ends here.
func (p *parser) parseProjectionRHS(rbp int) (node, error) {
	switch {
	case bindingPower(p.current().typ) < 10:
		return currentNode{}, nil
	case p.current().typ == tokDot:
		p.advance()
		return p.parseDotRHS(rbp)
	case p.current().typ == tokLBracket, p.current().typ == tokFilter, p.current().typ == tokFlatten:
		return p.parseExpression(rbp)
	default:
		return nil, p.errf("unexpected token %q after projection", p.current().value)
	}
}
