package intr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/agentflare-ai/hvml-go/expr"
	"github.com/agentflare-ai/hvml-go/value"
)

// ParseAttribute parses a single HVML attribute-value expression (the
// contents of `on="..."`, `for="..."`, `with="..."`) into an expr.Node.
// This is a small recursive-descent parser over the operator grammar
// expr.Node's BinaryOp/UnaryOp/Call/Access table expects; it does not
// attempt the full EJSON/template grammar (`{{ }}` string interpolation
// is not parsed here, and this package has no template parser), matching the scope
// the original's expression tokenizer gives plain attribute values
// versus quoted content.
func ParseAttribute(src string) (expr.Node, error) {
	p := &parser{src: src}
	p.skipSpace()
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("intr: unexpected trailing input at %d in %q", p.pos, src)
	}
	return n, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) consumeToken(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *parser) parseOr() (expr.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		save := p.pos
		if p.consumeToken("||") {
			right, err := p.parseAnd()
			if err != nil {
				return nil, err
			}
			left = &expr.BinaryOp{Op: "||", Left: left, Right: right}
			continue
		}
		p.pos = save
		return left, nil
	}
}

func (p *parser) parseAnd() (expr.Node, error) {
	left, err := p.parseCompare()
	if err != nil {
		return nil, err
	}
	for {
		save := p.pos
		if p.consumeToken("&&") {
			right, err := p.parseCompare()
			if err != nil {
				return nil, err
			}
			left = &expr.BinaryOp{Op: "&&", Left: left, Right: right}
			continue
		}
		p.pos = save
		return left, nil
	}
}

var compareOps = []string{"==", "!=", "<=", ">=", "<", ">"}

func (p *parser) parseCompare() (expr.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for _, op := range compareOps {
		save := p.pos
		if p.consumeToken(op) {
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &expr.BinaryOp{Op: op, Left: left, Right: right}
			return left, nil
		}
		p.pos = save
	}
	return left, nil
}

func (p *parser) parseAdditive() (expr.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &expr.BinaryOp{Op: string(op), Left: left, Right: right}
	}
}

func (p *parser) parseMultiplicative() (expr.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '*' && op != '/' && op != '~' && op != '^' {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &expr.BinaryOp{Op: string(op), Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (expr.Node, error) {
	p.skipSpace()
	switch p.peek() {
	case '-':
		p.pos++
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &expr.UnaryOp{Op: "-", Operand: operand}, nil
	case '!':
		p.pos++
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &expr.UnaryOp{Op: "!", Operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (expr.Node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '.':
			p.pos++
			name := p.parseIdent()
			if name == "" {
				return nil, fmt.Errorf("intr: expected identifier after '.' at %d", p.pos)
			}
			n = &expr.Access{Base: n, Key: &expr.Literal{Value: value.MakeString(name)}, Kind: expr.AccessMember}
		case '[':
			p.pos++
			idx, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			p.skipSpace()
			if p.peek() != ']' {
				return nil, fmt.Errorf("intr: expected ']' at %d", p.pos)
			}
			p.pos++
			n = &expr.Access{Base: n, Key: idx, Kind: expr.AccessIndex}
		case '(':
			p.pos++
			var args []expr.Node
			p.skipSpace()
			if p.peek() != ')' {
				for {
					a, err := p.parseOr()
					if err != nil {
						return nil, err
					}
					args = append(args, a)
					p.skipSpace()
					if p.peek() == ',' {
						p.pos++
						continue
					}
					break
				}
			}
			p.skipSpace()
			if p.peek() != ')' {
				return nil, fmt.Errorf("intr: expected ')' at %d", p.pos)
			}
			p.pos++
			n = &expr.Call{Callee: n, Args: args}
		default:
			return n, nil
		}
	}
}

func (p *parser) parsePrimary() (expr.Node, error) {
	p.skipSpace()
	switch {
	case p.peek() == '(':
		p.pos++
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, fmt.Errorf("intr: expected ')' at %d", p.pos)
		}
		p.pos++
		return n, nil
	case p.peek() == '\'' || p.peek() == '"':
		return p.parseString()
	case p.peek() == '$':
		p.pos++
		name := p.parseIdent()
		return &expr.VarRef{Name: "$" + name}, nil
	case isDigit(p.peek()):
		return p.parseNumber()
	default:
		ident := p.parseIdent()
		switch ident {
		case "":
			return nil, fmt.Errorf("intr: unexpected character %q at %d", p.peek(), p.pos)
		case "true":
			return &expr.Literal{Value: value.MakeBool(true)}, nil
		case "false":
			return &expr.Literal{Value: value.MakeBool(false)}, nil
		case "null":
			return &expr.Literal{Value: value.Null()}, nil
		case "undefined":
			return &expr.Literal{Value: value.Undefined()}, nil
		default:
			return &expr.VarRef{Name: ident}, nil
		}
	}
}

func (p *parser) parseIdent() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c)) || c == '_' || c == '-' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *parser) parseString() (expr.Node, error) {
	quote := p.peek()
	p.pos++
	start := p.pos
	var sb strings.Builder
	for p.pos < len(p.src) && p.src[p.pos] != quote {
		if p.src[p.pos] == '\\' && p.pos+1 < len(p.src) {
			sb.WriteByte(p.src[p.pos+1])
			p.pos += 2
			continue
		}
		sb.WriteByte(p.src[p.pos])
		p.pos++
	}
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("intr: unterminated string starting at %d", start)
	}
	p.pos++ // closing quote
	return &expr.Literal{Value: value.MakeString(sb.String())}, nil
}

func (p *parser) parseNumber() (expr.Node, error) {
	start := p.pos
	for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
		p.pos++
	}
	text := p.src[start:p.pos]
	if strings.Contains(text, ".") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("intr: bad number %q", text)
		}
		return &expr.Literal{Value: value.MakeFloat64(f)}, nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("intr: bad number %q", text)
	}
	return &expr.Literal{Value: value.MakeInt64(i)}, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
