// Package parse turns the formal text grammar into formal terms, predicates,
// problems and rules.
//
//	predicate := name '(' expr { ',' expr } ')'
//	expr      := term { ('+' | '-') term }
//	term      := unary { ('*' | '/') unary }
//	unary     := '-' unary | primary
//	primary   := integer | identifier | '(' expr ')'
//	rule      := predicate { ('∧' | '&') predicate } ('→' | '->') predicate
package parse

import (
	"fmt"
	"math/big"

	"github.com/cognicore/mathgraph/pkg/mathgraph/formal"
)

type identUse struct {
	name string
	span Span
}

type parser struct {
	input  string
	toks   []token
	pos    int
	idents []identUse
}

func newParser(input string) (*parser, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	return &parser{input: input, toks: toks}, nil
}

// Expression parses an arithmetic expression.
func Expression(text string) (formal.Term, error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	t, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokEOF); err != nil {
		return nil, err
	}
	return t, nil
}

// Predicate parses a single predicate such as eq(x + 7, 15).
func Predicate(text string) (formal.Predicate, error) {
	pred, _, err := predicateWithIdents(text)
	return pred, err
}

func predicateWithIdents(text string) (formal.Predicate, []identUse, error) {
	p, err := newParser(text)
	if err != nil {
		return formal.Predicate{}, nil, err
	}
	pred, err := p.predicate()
	if err != nil {
		return formal.Predicate{}, nil, err
	}
	if err := p.expect(tokEOF); err != nil {
		return formal.Predicate{}, nil, err
	}
	return pred, p.idents, nil
}

// Rule parses "p1 ∧ p2 → c". ASCII "&" and "->" are accepted as well.
func Rule(text string) ([]formal.Predicate, formal.Predicate, error) {
	p, err := newParser(text)
	if err != nil {
		return nil, formal.Predicate{}, err
	}
	var antecedents []formal.Predicate
	for {
		pred, err := p.predicate()
		if err != nil {
			return nil, formal.Predicate{}, err
		}
		antecedents = append(antecedents, pred)
		if p.peek().kind != tokAnd {
			break
		}
		p.next()
	}
	if err := p.expect(tokArrow); err != nil {
		return nil, formal.Predicate{}, err
	}
	consequent, err := p.predicate()
	if err != nil {
		return nil, formal.Predicate{}, err
	}
	if err := p.expect(tokEOF); err != nil {
		return nil, formal.Predicate{}, err
	}
	return antecedents, consequent, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) error {
	t := p.peek()
	if t.kind != kind {
		return p.unexpected(t, fmt.Sprintf("expected %s, found %s", kind, describe(t)))
	}
	p.next()
	return nil
}

func (p *parser) unexpected(t token, msg string) *Error {
	return &Error{Kind: UnexpectedToken, Span: t.span, Input: p.input, Msg: msg}
}

func describe(t token) string {
	if t.kind == tokEOF {
		return t.kind.String()
	}
	return fmt.Sprintf("%q", t.text)
}

func (p *parser) predicate() (formal.Predicate, error) {
	nameTok := p.peek()
	if nameTok.kind != tokIdent {
		return formal.Predicate{}, p.unexpected(nameTok, "expected predicate name, found "+describe(nameTok))
	}
	p.next()
	name := formal.Name(nameTok.text)
	arity, ok := name.Arity()
	if !ok {
		return formal.Predicate{}, &Error{
			Kind:  UnknownPredicate,
			Span:  nameTok.span,
			Input: p.input,
			Msg:   fmt.Sprintf("%q is not in the predicate vocabulary", nameTok.text),
		}
	}
	if err := p.expect(tokLParen); err != nil {
		return formal.Predicate{}, err
	}
	var args []formal.Term
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.expr()
			if err != nil {
				return formal.Predicate{}, err
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	closeTok := p.peek()
	if err := p.expect(tokRParen); err != nil {
		return formal.Predicate{}, err
	}
	if len(args) != arity {
		return formal.Predicate{}, &Error{
			Kind:  ArityMismatch,
			Span:  Span{nameTok.span.Start, closeTok.span.End},
			Input: p.input,
			Msg:   fmt.Sprintf("%s expects %d arguments, got %d", name, arity, len(args)),
		}
	}
	return formal.NewPredicate(name, args...)
}

func (p *parser) expr() (formal.Term, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		var op formal.Op
		switch p.peek().kind {
		case tokPlus:
			op = formal.OpAdd
		case tokMinus:
			op = formal.OpSub
		default:
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = formal.Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) term() (formal.Term, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		var op formal.Op
		switch p.peek().kind {
		case tokStar:
			op = formal.OpMul
		case tokSlash:
			op = formal.OpDiv
		default:
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = formal.Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) unary() (formal.Term, error) {
	if p.peek().kind != tokMinus {
		return p.primary()
	}
	p.next()
	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	if n, ok := operand.(formal.Number); ok {
		return formal.NumberOf(new(big.Rat).Neg(n.Rat())), nil
	}
	return formal.Mul(formal.Int(-1), operand), nil
}

func (p *parser) primary() (formal.Term, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.next()
		i, ok := new(big.Int).SetString(t.text, 10)
		if !ok {
			return nil, p.unexpected(t, "malformed integer")
		}
		return formal.NumberOf(new(big.Rat).SetInt(i)), nil
	case tokIdent:
		p.next()
		p.idents = append(p.idents, identUse{name: t.text, span: t.span})
		return formal.Var(t.text), nil
	case tokLParen:
		p.next()
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, p.unexpected(t, "expected number, identifier or '(', found "+describe(t))
}
