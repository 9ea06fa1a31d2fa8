package cel

import (
	"fmt"
	"strings"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokString
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokColon
	tokComma
)

func (t tokenType) String() string {
	switch t {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokString:
		return "string"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokColon:
		return "':'"
	default:
		return "','"
	}
}

type token struct {
	typ   tokenType
	value string
	pos   int
}

var punctuation = map[byte]tokenType{
	'{': tokLBrace,
	'}': tokRBrace,
	'(': tokLParen,
	')': tokRParen,
	'[': tokLBracket,
	']': tokRBracket,
	':': tokColon,
	',': tokComma,
}

func tokenize(source string) ([]token, error) {
	var tokens []token
	pos := 0

	for pos < len(source) {
		ch := source[pos]

		switch {
		case isWhitespace(ch):
			pos++

		case isIdentPart(ch):
			start := pos
			for pos < len(source) && isIdentPart(source[pos]) {
				pos++
			}
			tokens = append(tokens, token{typ: tokIdent, value: source[start:pos], pos: start})

		case ch == '"':
			start := pos
			value, next, err := readString(source, pos+1)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{typ: tokString, value: value, pos: start})
			pos = next

		default:
			typ, ok := punctuation[ch]
			if !ok {
				return nil, fmt.Errorf("%w: unexpected character %q at offset %d", ErrMalformedExpression, ch, pos)
			}
			tokens = append(tokens, token{typ: typ, value: string(ch), pos: pos})
			pos++
		}
	}

	tokens = append(tokens, token{typ: tokEOF, pos: pos})
	return tokens, nil
}

// readString reads a string body starting after the opening quote and
// returns the unescaped value and the offset after the closing quote.
func readString(source string, pos int) (string, int, error) {
	var sb strings.Builder
	start := pos - 1

	for pos < len(source) {
		ch := source[pos]
		switch ch {
		case '"':
			return sb.String(), pos + 1, nil
		case '\\':
			if pos+1 >= len(source) {
				return "", 0, fmt.Errorf("%w: unterminated string at offset %d", ErrMalformedExpression, start)
			}
			switch esc := source[pos+1]; esc {
			case '"', '\\':
				sb.WriteByte(esc)
			case 'n':
				sb.WriteByte('\n')
			default:
				return "", 0, fmt.Errorf("%w: invalid escape \\%c at offset %d", ErrMalformedExpression, esc, pos)
			}
			pos += 2
		default:
			sb.WriteByte(ch)
			pos++
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated string at offset %d", ErrMalformedExpression, start)
}

func isIdentPart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
