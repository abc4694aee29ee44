package gramindex

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"gramsift/internal/gramquery"
	"gramsift/internal/serializer"
)

// Parser errors.
var (
	ErrEmptyQuery      = errors.New("empty query")
	ErrUnmatchedParen  = errors.New("unmatched parenthesis")
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrUnexpectedEOF   = errors.New("unexpected end of query")
	ErrDanglingEscape  = errors.New("escape at end of query")
	ErrUnescaped       = errors.New("unescaped reserved character")
)

// ParseError provides detailed error information including position.
type ParseError struct {
	Pos     int    // byte offset in input
	Message string // human-readable error message
	Err     error  // underlying sentinel error (for errors.Is)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(pos int, err error, msgFmt string, args ...any) *ParseError {
	return &ParseError{
		Pos:     pos,
		Message: fmt.Sprintf(msgFmt, args...),
		Err:     err,
	}
}

// tokenKind identifies the type of lexical token.
type tokenKind int

const (
	tokEOF      tokenKind = iota
	tokTerm               // gram, escapes processed and field prefix stripped
	tokAnd                // conjunction keyword
	tokOr                 // disjunction keyword
	tokMatchAll           // match-all query
	tokLParen             // (
	tokRParen             // )
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "EOF"
	case tokTerm:
		return "TERM"
	case tokAnd:
		return "AND"
	case tokOr:
		return "OR"
	case tokMatchAll:
		return "MATCHALL"
	case tokLParen:
		return "("
	case tokRParen:
		return ")"
	default:
		return "UNKNOWN"
	}
}

type token struct {
	kind tokenKind
	lit  string
	pos  int
}

type lexer struct {
	input string
	pos   int
	syn   serializer.Syntax
	and   string
	or    string
}

func newLexer(input string, syn serializer.Syntax) *lexer {
	return &lexer{
		input: input,
		syn:   syn,
		and:   strings.TrimSpace(syn.And),
		or:    strings.TrimSpace(syn.Or),
	}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += size
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	switch l.input[l.pos] {
	case '(':
		l.pos++
		return token{kind: tokLParen, lit: "(", pos: start}, nil
	case ')':
		l.pos++
		return token{kind: tokRParen, lit: ")", pos: start}, nil
	}
	if rest := l.input[l.pos:]; strings.HasPrefix(rest, l.syn.MatchAll) && l.boundary(l.pos+len(l.syn.MatchAll)) {
		l.pos += len(l.syn.MatchAll)
		return token{kind: tokMatchAll, lit: l.syn.MatchAll, pos: start}, nil
	}
	return l.scanWord()
}

// boundary reports whether a word may end at byte offset i.
func (l *lexer) boundary(i int) bool {
	if i >= len(l.input) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(l.input[i:])
	return r == '(' || r == ')' || unicode.IsSpace(r)
}

// scanWord scans up to the next unescaped whitespace or parenthesis.
func (l *lexer) scanWord() (token, error) {
	start := l.pos
	escaped := false
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if r == l.syn.Escape {
			if l.pos+size >= len(l.input) {
				return token{}, newParseError(l.pos, ErrDanglingEscape, "escape at end of query")
			}
			_, next := utf8.DecodeRuneInString(l.input[l.pos+size:])
			l.pos += size + next
			escaped = true
			continue
		}
		if l.boundary(l.pos) {
			break
		}
		l.pos += size
	}
	raw := l.input[start:l.pos]

	if !escaped {
		switch raw {
		case l.and:
			return token{kind: tokAnd, lit: raw, pos: start}, nil
		case l.or:
			return token{kind: tokOr, lit: raw, pos: start}, nil
		}
	}

	body, offset := raw, start
	if l.syn.Field != "" {
		if prefix := l.syn.Field + ":"; strings.HasPrefix(raw, prefix) {
			body = raw[len(prefix):]
			offset += len(prefix)
		}
	}
	lit, err := l.unescape(body, offset)
	if err != nil {
		return token{}, err
	}
	if lit == "" {
		return token{}, newParseError(start, ErrUnexpectedToken, "empty term %q", raw)
	}
	return token{kind: tokTerm, lit: lit, pos: start}, nil
}

func (l *lexer) unescape(body string, offset int) (string, error) {
	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); {
		r, size := utf8.DecodeRuneInString(body[i:])
		if r == l.syn.Escape {
			i += size
			r, size = utf8.DecodeRuneInString(body[i:])
		} else if strings.ContainsRune(l.syn.Reserved, r) {
			return "", newParseError(offset+i, ErrUnescaped, "unescaped %q in term", r)
		}
		sb.WriteRune(r)
		i += size
	}
	return sb.String(), nil
}

type parser struct {
	lex *lexer
	cur token
	err error
}

// ParseQuery parses a query string in syn back into a gram query. It
// accepts everything Serialize produces.
//
// Grammar (AND binds tighter than OR):
//
//	query    = or_expr EOF
//	or_expr  = and_expr { OR and_expr }
//	and_expr = primary { AND primary }
//	primary  = "(" or_expr ")" | TERM | MATCHALL
func ParseQuery(input string, syn serializer.Syntax) (*gramquery.Query, error) {
	p := &parser{lex: newLexer(input, syn)}
	p.advance()
	if p.err != nil {
		return nil, p.err
	}

	if p.cur.kind == tokEOF {
		return nil, newParseError(0, ErrEmptyQuery, "empty query")
	}

	q, err := p.parseOrExpr()
	if err != nil {
		return nil, err
	}

	if p.cur.kind != tokEOF {
		if p.cur.kind == tokRParen {
			return nil, newParseError(p.cur.pos, ErrUnmatchedParen, "unmatched closing parenthesis")
		}
		return nil, newParseError(p.cur.pos, ErrUnexpectedToken, "unexpected token %s", p.cur.kind)
	}
	return q, nil
}

func (p *parser) advance() {
	if p.err != nil {
		return
	}
	p.cur, p.err = p.lex.next()
}

func (p *parser) parseOrExpr() (*gramquery.Query, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	terms := []*gramquery.Query{left}
	for p.cur.kind == tokOr {
		p.advance()
		if p.err != nil {
			return nil, p.err
		}
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return left, nil
	}
	return gramquery.Or(terms...), nil
}

func (p *parser) parseAndExpr() (*gramquery.Query, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	terms := []*gramquery.Query{left}
	for p.cur.kind == tokAnd {
		p.advance()
		if p.err != nil {
			return nil, p.err
		}
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return left, nil
	}
	return gramquery.And(terms...), nil
}

func (p *parser) parsePrimary() (*gramquery.Query, error) {
	switch p.cur.kind {
	case tokLParen:
		open := p.cur.pos
		p.advance()
		if p.err != nil {
			return nil, p.err
		}
		q, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRParen {
			return nil, newParseError(open, ErrUnmatchedParen, "unmatched opening parenthesis")
		}
		p.advance()
		return q, p.err
	case tokTerm:
		q := gramquery.Leaf(p.cur.lit)
		p.advance()
		return q, p.err
	case tokMatchAll:
		p.advance()
		return gramquery.MatchAll(), p.err
	case tokEOF:
		return nil, newParseError(p.cur.pos, ErrUnexpectedEOF, "unexpected end of query")
	default:
		return nil, newParseError(p.cur.pos, ErrUnexpectedToken, "unexpected token %s", p.cur.kind)
	}
}
