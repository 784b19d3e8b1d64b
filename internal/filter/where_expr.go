package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vburojevic/logsift/internal/domain"
)

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokString
	tokNumber
	tokRegex
	tokLParen
	tokRParen
	tokAnd // &&
	tokOr  // ||
	tokNot // !
	tokOp  // comparison, operator text in val
)

type token struct {
	kind tokKind
	val  string
	pos  int
}

// two-character operators come first so "!=" never lexes as "!" "="
var comparisonOps = []string{"!=", "!~", ">=", "<=", "=", "~", "^", "$"}

type lexer struct {
	in   string
	pos  int
	toks []token
}

func lexWhere(in string) ([]token, error) {
	lx := &lexer{in: in}
	for {
		lx.skipSpace()
		if lx.pos >= len(in) {
			lx.emit(tokEOF, "", lx.pos)
			return lx.toks, nil
		}
		if err := lx.step(); err != nil {
			return nil, err
		}
	}
}

func (lx *lexer) emit(kind tokKind, val string, pos int) {
	lx.toks = append(lx.toks, token{kind: kind, val: val, pos: pos})
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.in) && isSpace(lx.in[lx.pos]) {
		lx.pos++
	}
}

func (lx *lexer) step() error {
	start := lx.pos
	rest := lx.in[start:]

	switch {
	case rest[0] == '(':
		lx.emit(tokLParen, "(", start)
		lx.pos++
		return nil
	case rest[0] == ')':
		lx.emit(tokRParen, ")", start)
		lx.pos++
		return nil
	case strings.HasPrefix(rest, "&&"):
		lx.emit(tokAnd, "&&", start)
		lx.pos += 2
		return nil
	case strings.HasPrefix(rest, "||"):
		lx.emit(tokOr, "||", start)
		lx.pos += 2
		return nil
	case rest[0] == '&' || rest[0] == '|':
		return fmt.Errorf("unexpected character %q at %d (use && or ||)", rest[0], start)
	case rest[0] == '\'' || rest[0] == '"':
		s, err := lx.quoted()
		if err != nil {
			return err
		}
		lx.emit(tokString, s, start)
		return nil
	case rest[0] == '/':
		re, err := lx.regexLiteral()
		if err != nil {
			return err
		}
		lx.emit(tokRegex, re, start)
		return nil
	}

	for _, op := range comparisonOps {
		if strings.HasPrefix(rest, op) {
			lx.emit(tokOp, op, start)
			lx.pos += len(op)
			return nil
		}
	}
	if rest[0] == '!' {
		lx.emit(tokNot, "!", start)
		lx.pos++
		return nil
	}
	if rest[0] == '>' || rest[0] == '<' {
		return fmt.Errorf("unexpected character %q at %d (use >= or <=)", rest[0], start)
	}

	for lx.pos < len(lx.in) && !isDelimiter(lx.in[lx.pos]) {
		lx.pos++
	}
	word := lx.in[start:lx.pos]
	if word == "" {
		return fmt.Errorf("unexpected character %q at %d", lx.in[start], start)
	}
	if _, err := strconv.ParseFloat(word, 64); err == nil {
		lx.emit(tokNumber, word, start)
	} else {
		lx.emit(tokIdent, word, start)
	}
	return nil
}

func (lx *lexer) quoted() (string, error) {
	start := lx.pos
	quote := lx.in[start]
	for i := start + 1; i < len(lx.in); i++ {
		switch lx.in[i] {
		case '\\':
			i++
		case quote:
			lit := lx.in[start : i+1]
			if quote == '\'' {
				// strconv only unquotes single-rune literals in single quotes
				body := strings.ReplaceAll(lit[1:len(lit)-1], `\'`, `'`)
				lit = `"` + strings.ReplaceAll(body, `"`, `\"`) + `"`
			}
			s, err := strconv.Unquote(lit)
			if err != nil {
				return "", fmt.Errorf("invalid quoted string at %d: %w", start, err)
			}
			lx.pos = i + 1
			return s, nil
		}
	}
	return "", fmt.Errorf("unterminated string starting at %d", start)
}

// regexLiteral reads /pattern/flags; a '/' inside the pattern is written \/
func (lx *lexer) regexLiteral() (string, error) {
	start := lx.pos
	for i := start + 1; i < len(lx.in); i++ {
		switch lx.in[i] {
		case '\\':
			i++
		case '/':
			pat := strings.ReplaceAll(lx.in[start+1:i], `\/`, "/")
			j := i + 1
			for j < len(lx.in) && isAlpha(lx.in[j]) {
				j++
			}
			flags, err := regexFlags(lx.in[i+1 : j])
			if err != nil {
				return "", fmt.Errorf("invalid regex flags at %d: %w", start, err)
			}
			lx.pos = j
			return flags + pat, nil
		}
	}
	return "", fmt.Errorf("unterminated regex literal starting at %d", start)
}

func regexFlags(flags string) (string, error) {
	var set []byte
	for i := 0; i < len(flags); i++ {
		c := flags[i] | 0x20 // lower
		if c != 'i' && c != 'm' && c != 's' {
			return "", fmt.Errorf("unsupported flag %q (supported: i, m, s)", flags[i])
		}
		if !strings.ContainsRune(string(set), rune(c)) {
			set = append(set, c)
		}
	}
	if len(set) == 0 {
		return "", nil
	}
	return "(?" + string(set) + ")", nil
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }

func isDelimiter(b byte) bool {
	return isSpace(b) || strings.IndexByte("()&|!><=~^$'\"/", b) >= 0
}

type whereNode interface {
	Match(r *domain.Record) bool
}

type andNode struct{ left, right whereNode }

func (n andNode) Match(r *domain.Record) bool { return n.left.Match(r) && n.right.Match(r) }

type orNode struct{ left, right whereNode }

func (n orNode) Match(r *domain.Record) bool { return n.left.Match(r) || n.right.Match(r) }

type notNode struct{ inner whereNode }

func (n notNode) Match(r *domain.Record) bool { return !n.inner.Match(r) }

// parser is a recursive descent parser; precedence from loosest: OR, AND, NOT
type parser struct {
	toks []token
	pos  int
	opts WhereOptions
}

func parseWhere(src string, opts WhereOptions) (whereNode, error) {
	toks, err := lexWhere(src)
	if err != nil {
		return nil, fmt.Errorf("invalid where expression %q: %w", src, err)
	}
	p := &parser{toks: toks, opts: opts}
	node, err := p.or()
	if err == nil && p.peek().kind != tokEOF {
		err = fmt.Errorf("unexpected token %q at %d", p.peek().val, p.peek().pos)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid where expression %q: %w", src, err)
	}
	return node, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// accept consumes the next token if it is kind or the given keyword
func (p *parser) accept(kind tokKind, keyword string) bool {
	t := p.peek()
	if t.kind == kind || (t.kind == tokIdent && strings.EqualFold(t.val, keyword)) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) or() (whereNode, error) {
	left, err := p.and()
	for err == nil && p.accept(tokOr, "or") {
		var right whereNode
		if right, err = p.and(); err == nil {
			left = orNode{left, right}
		}
	}
	return left, err
}

func (p *parser) and() (whereNode, error) {
	left, err := p.unary()
	for err == nil && p.accept(tokAnd, "and") {
		var right whereNode
		if right, err = p.unary(); err == nil {
			left = andNode{left, right}
		}
	}
	return left, err
}

func (p *parser) unary() (whereNode, error) {
	if p.accept(tokNot, "not") {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	if p.accept(tokLParen, "") {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.accept(tokRParen, "") {
			return nil, fmt.Errorf("expected ')' at %d", p.peek().pos)
		}
		return inner, nil
	}
	return p.comparison()
}

func (p *parser) comparison() (whereNode, error) {
	field := p.next()
	if field.kind != tokIdent {
		return nil, fmt.Errorf("expected field name at %d", field.pos)
	}
	op := p.next()
	if op.kind != tokOp {
		return nil, fmt.Errorf("expected operator after field %q at %d (use =, !=, ~, !~, >=, <=, ^, $)", field.val, op.pos)
	}
	val := p.next()
	switch val.kind {
	case tokIdent, tokString, tokNumber, tokRegex:
	default:
		return nil, fmt.Errorf("expected value after %q at %d", op.val, val.pos)
	}
	return newWhereClause(field.val, op.val, val.val, p.opts)
}
