package parse

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokLParen
	tokRParen
	tokComma
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokAnd
	tokArrow
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokStar:
		return "'*'"
	case tokSlash:
		return "'/'"
	case tokAnd:
		return "'∧'"
	case tokArrow:
		return "'→'"
	}
	return "token"
}

type token struct {
	kind tokenKind
	text string
	span Span
}

var punct = map[byte]tokenKind{
	'(': tokLParen,
	')': tokRParen,
	',': tokComma,
	'+': tokPlus,
	'*': tokStar,
	'/': tokSlash,
	'&': tokAnd,
}

// lex splits input into tokens. Identifiers may start with a letter, '_'
// or '?' (a lone '?' is the goal's unknown); only integer literals exist.
func lex(input string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '→':
			toks = append(toks, token{tokArrow, "→", Span{i, i + size}})
			i += size
		case r == '∧':
			toks = append(toks, token{tokAnd, "∧", Span{i, i + size}})
			i += size
		case r == '-':
			if strings.HasPrefix(input[i:], "->") {
				toks = append(toks, token{tokArrow, "->", Span{i, i + 2}})
				i += 2
				continue
			}
			toks = append(toks, token{tokMinus, "-", Span{i, i + 1}})
			i++
		case r < utf8.RuneSelf && punct[byte(r)] != tokEOF:
			toks = append(toks, token{punct[byte(r)], string(r), Span{i, i + 1}})
			i++
		case r >= '0' && r <= '9':
			j := i
			for j < len(input) && input[j] >= '0' && input[j] <= '9' {
				j++
			}
			toks = append(toks, token{tokNumber, input[i:j], Span{i, j}})
			i = j
		case r == '_' || r == '?' || unicode.IsLetter(r):
			j := i + size
			for j < len(input) {
				r2, s2 := utf8.DecodeRuneInString(input[j:])
				if r2 != '_' && !unicode.IsLetter(r2) && !unicode.IsDigit(r2) {
					break
				}
				j += s2
			}
			toks = append(toks, token{tokIdent, input[i:j], Span{i, j}})
			i = j
		default:
			return nil, &Error{
				Kind:  UnexpectedToken,
				Span:  Span{i, i + size},
				Input: input,
				Msg:   fmt.Sprintf("unexpected character %q", r),
			}
		}
	}
	toks = append(toks, token{tokEOF, "", Span{len(input), len(input)}})
	return toks, nil
}
