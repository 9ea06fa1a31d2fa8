// Copyright (C) 2025 SAGE-X Project
//
// This file is part of sage-http-certification.
//
// sage-http-certification is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sage-http-certification is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with sage-http-certification.  If not, see <https://www.gnu.org/licenses/>.

package cel

import "fmt"

// Node is a node of a parsed expression. The set of implementations is
// closed: Object, Function, Array and String.
type Node interface {
	celNode()
}

// Object is a typed struct literal such as Empty{}.
type Object struct {
	Name   string
	Fields []Field
}

// Field is a key/value pair of an Object.
type Field struct {
	Key   string
	Value Node
}

// Function is a call such as default_certification(...).
type Function struct {
	Name string
	Args []Node
}

// Array is a list literal.
type Array []Node

// String is a string literal.
type String string

func (Object) celNode()   {}
func (Function) celNode() {}
func (Array) celNode()    {}
func (String) celNode()   {}

// Field returns the value of the named field.
func (o Object) Field(key string) (Node, bool) {
	for _, f := range o.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

type parser struct {
	tokens []token
	pos    int
}

func newParser(tokens []token) *parser {
	return &parser{tokens: tokens}
}

func (p *parser) current() token {
	if p.pos >= len(p.tokens) {
		return token{typ: tokEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) check(t tokenType) bool {
	return p.current().typ == t
}

func (p *parser) expect(t tokenType) (token, error) {
	tok := p.current()
	if tok.typ != t {
		return tok, fmt.Errorf("%w: expected %s at offset %d, got %s", ErrMalformedExpression, t, tok.pos, tok.typ)
	}
	return p.advance(), nil
}

// ParseAST parses source into its syntax tree without interpreting it.
func ParseAST(source string) (Node, error) {
	tokens, err := tokenize(source)
	if err != nil {
		return nil, err
	}
	p := newParser(tokens)

	node, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if !p.check(tokEOF) {
		tok := p.current()
		return nil, fmt.Errorf("%w: unexpected %s at offset %d", ErrMalformedExpression, tok.typ, tok.pos)
	}
	return node, nil
}

func (p *parser) parseValue() (Node, error) {
	tok := p.current()
	switch tok.typ {
	case tokString:
		p.advance()
		return String(tok.value), nil
	case tokLBracket:
		return p.parseArray()
	case tokIdent:
		p.advance()
		switch {
		case p.check(tokLBrace):
			return p.parseObject(tok.value)
		case p.check(tokLParen):
			return p.parseFunction(tok.value)
		}
		next := p.current()
		return nil, fmt.Errorf("%w: expected '{' or '(' after %q at offset %d", ErrMalformedExpression, tok.value, next.pos)
	}
	return nil, fmt.Errorf("%w: unexpected %s at offset %d", ErrMalformedExpression, tok.typ, tok.pos)
}

func (p *parser) parseObject(name string) (Node, error) {
	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	obj := Object{Name: name}
	seen := make(map[string]bool)

	if p.check(tokRBrace) {
		p.advance()
		return obj, nil
	}
	for {
		key, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		if seen[key.value] {
			return nil, fmt.Errorf("%w: duplicate field %q in %s", ErrMalformedExpression, key.value, name)
		}
		seen[key.value] = true

		if _, err := p.expect(tokColon); err != nil {
			return nil, err
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj.Fields = append(obj.Fields, Field{Key: key.value, Value: value})

		if p.check(tokComma) {
			p.advance()
			continue
		}
		if _, err := p.expect(tokRBrace); err != nil {
			return nil, err
		}
		return obj, nil
	}
}

func (p *parser) parseFunction(name string) (Node, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	args, err := p.parseList(tokRParen)
	if err != nil {
		return nil, err
	}
	return Function{Name: name, Args: args}, nil
}

func (p *parser) parseArray() (Node, error) {
	if _, err := p.expect(tokLBracket); err != nil {
		return nil, err
	}
	items, err := p.parseList(tokRBracket)
	if err != nil {
		return nil, err
	}
	return Array(items), nil
}

// parseList reads comma separated values up to and including end.
func (p *parser) parseList(end tokenType) ([]Node, error) {
	var items []Node
	if p.check(end) {
		p.advance()
		return items, nil
	}
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, v)

		if p.check(tokComma) {
			p.advance()
			continue
		}
		if _, err := p.expect(end); err != nil {
			return nil, err
		}
		return items, nil
	}
}
