package query

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SyntaxError reports a malformed query expression. Position is a zero-based
// byte offset into the expression.
type SyntaxError struct {
	Expression string
	Position   int
	Message    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid query at position %d: %s", e.Position, e.Message)
}

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdentifier
	tokQuotedIdentifier
	tokRawString
	tokJSONLiteral
	tokNumber
	tokDot
	tokStar
	tokLBracket
	tokRBracket
	tokFlatten // "[]"
	tokFilter  // "[?"
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokComma
	tokColon
	tokPipe
	tokOr
	tokAnd
	tokNot
	tokEQ
	tokNE
	tokLT
	tokLTE
	tokGT
	tokGTE
	tokCurrent // "@"
)

type token struct {
	typ   tokenType
	value string
	pos   int
}

type lexer struct {
	expr string
	pos  int
}

func (l *lexer) errf(pos int, format string, args ...any) error {
	return &SyntaxError{Expression: l.expr, Position: pos, Message: fmt.Sprintf(format, args...)}
}

// tokenize scans the whole expression up front. Query strings are short, so
// there is no value in lexing lazily.
func (l *lexer) tokenize() ([]token, error) {
	var tokens []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.typ == tokEOF {
			return tokens, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.expr) && (l.expr[l.pos] == ' ' || l.expr[l.pos] == '\t' || l.expr[l.pos] == '\n') {
		l.pos++
	}
	if l.pos >= len(l.expr) {
		return token{typ: tokEOF, pos: l.pos}, nil
	}
	start := l.pos
	c := l.expr[l.pos]
	switch c {
	case '.':
		l.pos++
		return token{tokDot, ".", start}, nil
	case '*':
		l.pos++
		return token{tokStar, "*", start}, nil
	case '[':
		l.pos++
		if l.pos < len(l.expr) {
			switch l.expr[l.pos] {
			case ']':
				l.pos++
				return token{tokFlatten, "[]", start}, nil
			case '?':
				l.pos++
				return token{tokFilter, "[?", start}, nil
			}
		}
		return token{tokLBracket, "[", start}, nil
	case ']':
		l.pos++
		return token{tokRBracket, "]", start}, nil
	case '{':
		l.pos++
		return token{tokLBrace, "{", start}, nil
	case '}':
		l.pos++
		return token{tokRBrace, "}", start}, nil
	case '(':
		l.pos++
		return token{tokLParen, "(", start}, nil
	case ')':
		l.pos++
		return token{tokRParen, ")", start}, nil
	case ',':
		l.pos++
		return token{tokComma, ",", start}, nil
	case ':':
		l.pos++
		return token{tokColon, ":", start}, nil
	case '@':
		l.pos++
		return token{tokCurrent, "@", start}, nil
	case '|':
		l.pos++
		if l.pos < len(l.expr) && l.expr[l.pos] == '|' {
			l.pos++
			return token{tokOr, "||", start}, nil
		}
		return token{tokPipe, "|", start}, nil
	case '&':
		l.pos++
		if l.pos < len(l.expr) && l.expr[l.pos] == '&' {
			l.pos++
			return token{tokAnd, "&&", start}, nil
		}
		return token{}, l.errf(start, "expected '&&', found '&'")
	case '=':
		l.pos++
		if l.pos < len(l.expr) && l.expr[l.pos] == '=' {
			l.pos++
			return token{tokEQ, "==", start}, nil
		}
		return token{}, l.errf(start, "expected '==', found '='")
	case '!':
		l.pos++
		if l.pos < len(l.expr) && l.expr[l.pos] == '=' {
			l.pos++
			return token{tokNE, "!=", start}, nil
		}
		return token{tokNot, "!", start}, nil
	case '<':
		l.pos++
		if l.pos < len(l.expr) && l.expr[l.pos] == '=' {
			l.pos++
			return token{tokLTE, "<=", start}, nil
		}
		return token{tokLT, "<", start}, nil
	case '>':
		l.pos++
		if l.pos < len(l.expr) && l.expr[l.pos] == '=' {
			l.pos++
			return token{tokGTE, ">=", start}, nil
		}
		return token{tokGT, ">", start}, nil
	case '\'':
		return l.scanRawString()
	case '"':
		return l.scanQuotedIdentifier()
	case '`':
		return l.scanJSONLiteral()
	}
	if c == '-' || (c >= '0' && c <= '9') {
		return l.scanNumber()
	}
	if isIdentStart(rune(c)) {
		return l.scanIdentifier()
	}
	r, _ := utf8.DecodeRuneInString(l.expr[l.pos:])
	return token{}, l.errf(start, "unexpected character %q", r)
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *lexer) scanIdentifier() (token, error) {
	start := l.pos
	for l.pos < len(l.expr) {
		r, w := utf8.DecodeRuneInString(l.expr[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.pos += w
	}
	return token{tokIdentifier, l.expr[start:l.pos], start}, nil
}

func (l *lexer) scanNumber() (token, error) {
	start := l.pos
	if l.expr[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.expr) && (l.expr[l.pos] >= '0' && l.expr[l.pos] <= '9' || l.expr[l.pos] == '.') {
		l.pos++
	}
	val := l.expr[start:l.pos]
	if val == "-" {
		return token{}, l.errf(start, "expected digits after '-'")
	}
	return token{tokNumber, val, start}, nil
}

func (l *lexer) scanRawString() (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.expr) {
		c := l.expr[l.pos]
		if c == '\\' && l.pos+1 < len(l.expr) && l.expr[l.pos+1] == '\'' {
			sb.WriteByte('\'')
			l.pos += 2
			continue
		}
		if c == '\'' {
			l.pos++
			return token{tokRawString, sb.String(), start}, nil
		}
		sb.WriteByte(c)
		l.pos++
	}
	return token{}, l.errf(start, "unterminated raw string")
}

func (l *lexer) scanQuotedIdentifier() (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.expr) {
		c := l.expr[l.pos]
		if c == '\\' && l.pos+1 < len(l.expr) {
			sb.WriteByte(l.expr[l.pos+1])
			l.pos += 2
			continue
		}
		if c == '"' {
			l.pos++
			return token{tokQuotedIdentifier, sb.String(), start}, nil
		}
		sb.WriteByte(c)
		l.pos++
	}
	return token{}, l.errf(start, "unterminated quoted identifier")
}

func (l *lexer) scanJSONLiteral() (token, error) {
	start := l.pos
	l.pos++ // opening backtick
	var sb strings.Builder
	for l.pos < len(l.expr) {
		c := l.expr[l.pos]
		if c == '\\' && l.pos+1 < len(l.expr) && l.expr[l.pos+1] == '`' {
			sb.WriteByte('`')
			l.pos += 2
			continue
		}
		if c == '`' {
			l.pos++
			return token{tokJSONLiteral, sb.String(), start}, nil
		}
		sb.WriteByte(c)
		l.pos++
	}
	return token{}, l.errf(start, "unterminated JSON literal")
}
