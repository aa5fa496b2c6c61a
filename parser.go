package der

import (
	"strconv"
)

func ParseFile(filename string, source []byte) ([]Stmt, error) {
	tokens, err := ScanTokens(filename, source)
	if err != nil {
		return nil, err
	}
	psr := NewParser(tokens)
	return psr.ParseProgram()
}

type Parser struct {
	tokens []Token
	index  int
	// functions is the nesting depth of function bodies; rje3 needs it > 0.
	functions int
}

func NewParser(tokens []Token) Parser {
	if len(tokens) == 0 {
		tokens = append(tokens, Token{})
	}
	if tokens[len(tokens)-1].Kind != EOF {
		tokens = append(tokens, Token{Kind: EOF})
	}
	return Parser{
		tokens: tokens,
		index:  0,
	}
}

func (p *Parser) ParseProgram() ([]Stmt, error) {
	stmts := make([]Stmt, 0)
	for p.next().Kind != EOF {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (p *Parser) parseStmt() (Stmt, error) {
	node, err := p.ParseExpr()
	if err != nil {
		return Stmt{}, err
	}
	if _, err := p.match(SEMICOLON); err != nil {
		return Stmt{}, err
	}
	return Stmt{
		Node: node,
		Pos:  node.Pos(),
	}, nil
}

func (p *Parser) parseBlock() ([]Stmt, error) {
	if _, err := p.match(LEFTBRACE); err != nil {
		return nil, err
	}
	stmts := make([]Stmt, 0)
	for p.next().Kind != RIGHTBRACE {
		if p.next().Kind == EOF {
			return nil, NewSyntaxError(p.next().Pos, "expected }, but got %s", p.next().Kind)
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance()
	return stmts, nil
}

func (p *Parser) ParseExpr() (Node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseExpr(lhs, 0)
}

func (p *Parser) ParseExprAndEof() (Node, error) {
	expr, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.match(EOF); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseExpr(lhs Node, minPrec int) (Node, error) {
	for precedence(p.next().Kind) >= minPrec {
		op := p.advance()
		if op.Kind == KANT {
			to, err := p.parseType()
			if err != nil {
				return nil, err
			}
			lhs = &CastExpr{
				Value: lhs,
				Kant:  op,
				To:    to,
			}
			continue
		}
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		next := p.next()
		for (precedence(next.Kind) > precedence(op.Kind)) ||
			(IsRightAssoc(next.Kind) && (precedence(next.Kind) == precedence(op.Kind))) {
			if IsRightAssoc(next.Kind) {
				rhs, err = p.parseExpr(rhs, precedence(op.Kind))
			} else {
				rhs, err = p.parseExpr(rhs, precedence(op.Kind)+1)
			}
			if err != nil {
				return nil, err
			}
			next = p.next()
		}
		lhs = combine(lhs, op, rhs)
	}
	return lhs, nil
}

func combine(lhs Node, op Token, rhs Node) Node {
	switch op.Kind {
	case ASSIGN:
		return &SetExpr{Target: lhs, Assign: op, Value: rhs}
	case DOUBLE_QST:
		return &SmolIfExpr{Cond: lhs, Body: rhs}
	case PIPE:
		return &PipeExpr{Left: lhs, Pipe: op, Right: rhs}
	case DOT:
		return &DotExpr{Left: lhs, Dot: op, Right: rhs}
	case AND, OR, EQUALITY, NOT_EQUAL, LESS, LESS_EQUAL, GREATER, GREATER_EQUAL:
		return &LogicalExpr{Left: lhs, Op: op, Right: rhs}
	}
	return &BinaryExpr{Left: lhs, Op: op, Right: rhs}
}

func IsRightAssoc(t TokenKind) bool {
	return t == ASSIGN || t == DOUBLE_QST
}

func precedence(t TokenKind) int {
	switch t {
	case DOUBLE_QST:
		return 1
	case ASSIGN:
		return 2
	case OR:
		return 11
	case AND:
		return 12
	case BIT_OR:
		return 13
	case BIT_AND:
		return 15
	case EQUALITY, NOT_EQUAL, LESS, LESS_EQUAL, GREATER, GREATER_EQUAL:
		return 16
	case PLUS, MINUS:
		return 19
	case STAR, SLASH, PERCENT:
		return 20
	case KANT:
		return 25
	case PIPE:
		return 50
	case DOT:
		return 60
	}
	return -1
}

func (p *Parser) parseUnary() (Node, error) {
	switch p.next().Kind {
	case MINUS, NOT:
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, Operand: operand}, nil
	case BIT_AND:
		amp := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &AddrOfExpr{Amp: amp, Operand: operand}, nil
	case STAR:
		star := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &DerefExpr{Star: star, Operand: operand}, nil
	}
	primary, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parsePostfix(primary)
}

func (p *Parser) parsePostfix(lhs Node) (Node, error) {
	for {
		switch p.next().Kind {
		case LEFTPAREN:
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			lhs = &CallExpr{Callee: lhs, Args: args}
		case LEFTBRACKET:
			p.advance()
			index, err := p.ParseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.match(RIGHTBRACKET); err != nil {
				return nil, err
			}
			lhs = &SubscriptExpr{Target: lhs, Index: index}
		default:
			return lhs, nil
		}
	}
}

func (p *Parser) parsePrimary() (Node, error) {
	switch t := p.next(); t.Kind {
	case INTEGER:
		return &IntegerLit{Token: p.advance()}, nil
	case FLOAT:
		return &DoubleLit{Token: p.advance()}, nil
	case STRING:
		return &StringLit{Token: p.advance()}, nil
	case CHAR:
		return &CharLit{Token: p.advance()}, nil
	case BOOL:
		return &BoolLit{Token: p.advance()}, nil
	case IDENTIFIER:
		return &Ident{Token: p.advance()}, nil
	case LEFTPAREN:
		left := p.advance()
		inner, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.match(RIGHTPAREN); err != nil {
			return nil, err
		}
		return &GroupedExpr{Left: left, Inner: inner}, nil
	case LEFTBRACKET:
		return p.parseArray()
	case DIR:
		return p.parseVariable()
	case DALATON:
		return p.parseFunction()
	case ILA:
		return p.parseIf()
	case JISM:
		return p.parseStruct()
	case TI3DAD:
		return p.parseEnum()
	case JADID:
		return p.parseStructInstance()
	case LKOLA:
		return p.parseFor()
	case RJE3:
		if p.functions == 0 {
			return nil, NewSyntaxError(t.Pos, "return statements aren't allowed outside of functions")
		}
		kw := p.advance()
		if p.next().Kind == SEMICOLON {
			return &ReturnStmt{Rje3: kw}, nil
		}
		value, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{Rje3: kw, Value: value}, nil
	}
	return nil, NewSyntaxError(p.next().Pos, "expected primary expression, but got %s", p.next().Kind)
}

func (p *Parser) next() Token {
	if p.index >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.index]
}

func (p *Parser) advance() Token {
	t := p.next()
	p.index++
	return t
}

func (p *Parser) match(k TokenKind) (Token, error) {
	t := p.next()
	if t.Kind != k {
		return Token{Kind: k}, NewSyntaxError(t.Pos, "expected %s, but got %s", k, t.Kind)
	}
	p.index++
	return t, nil
}

func (p *Parser) parseCallArgs() ([]Node, error) {
	args := make([]Node, 0)
	if _, err := p.match(LEFTPAREN); err != nil {
		return nil, err
	}
	for p.next().Kind != RIGHTPAREN {
		arg, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.next().Kind == COMMA {
			p.advance()
			continue
		}
		if p.next().Kind != RIGHTPAREN {
			return nil, NewSyntaxError(p.next().Pos, "expected ')' or ',', but got %s", p.next().Kind)
		}
	}
	p.advance()
	return args, nil
}

func (p *Parser) parseArray() (Node, error) {
	left := p.advance()
	elems := make([]Node, 0)
	for p.next().Kind != RIGHTBRACKET {
		elem, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if p.next().Kind == COMMA {
			p.advance()
			continue
		}
		if p.next().Kind != RIGHTBRACKET {
			return nil, NewSyntaxError(p.next().Pos, "expected ']' or ',', but got %s", p.next().Kind)
		}
	}
	p.advance()
	return &ArrayLit{Left: left, Elems: elems}, nil
}

func (p *Parser) parseVariable() (Node, error) {
	dir := p.advance()
	name, err := p.match(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.match(COLON); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.match(ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	return &VarDecl{
		Dir:   dir,
		Name:  name,
		Type:  typ,
		Value: value,
	}, nil
}

func (p *Parser) parseFunction() (Node, error) {
	fun := p.advance()
	name, err := p.match(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	generics, err := p.parseGenerics()
	if err != nil {
		return nil, err
	}
	params, err := p.parseFunParams()
	if err != nil {
		return nil, err
	}
	var returnType Type = &Void{}
	if p.next().Kind == COLON {
		p.advance()
		returnType, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	p.functions++
	body, err := p.parseBlock()
	p.functions--
	if err != nil {
		return nil, err
	}
	return &FunctionDecl{
		Dalaton:  fun,
		Name:     name,
		Generics: generics,
		Params:   params,
		Return:   returnType,
		Body:     body,
	}, nil
}

func (p *Parser) parseGenerics() ([]Token, error) {
	generics := make([]Token, 0)
	if p.next().Kind != LESS {
		return generics, nil
	}
	p.advance()
	for p.next().Kind != GREATER {
		g, err := p.match(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		generics = append(generics, g)
		if p.next().Kind == COMMA {
			p.advance()
			continue
		}
		if p.next().Kind != GREATER {
			return nil, NewSyntaxError(p.next().Pos, "expected '>' or ',', but got %s", p.next().Kind)
		}
	}
	p.advance()
	return generics, nil
}

func (p *Parser) parseFunParams() ([]FunParam, error) {
	params := make([]FunParam, 0)
	if _, err := p.match(LEFTPAREN); err != nil {
		return nil, err
	}
	for p.next().Kind != RIGHTPAREN {
		id, err := p.match(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if _, err := p.match(COLON); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, FunParam{
			Name: id,
			Type: typ,
		})
		if p.next().Kind == COMMA {
			p.advance()
			continue
		}
		if p.next().Kind != RIGHTPAREN {
			return nil, NewSyntaxError(p.next().Pos, "expected ')' or ',', but got %s", p.next().Kind)
		}
	}
	p.advance()
	return params, nil
}

func (p *Parser) parseType() (Type, error) {
	switch p.next().Kind {
	case IDENTIFIER:
		tok := p.advance()
		switch name := string(tok.Content); name {
		case "ra9m":
			return &Integer{}, nil
		case "ktba":
			return &String{}, nil
		case "bool":
			return &Bool{}, nil
		case "walo":
			return &Void{}, nil
		case "harf":
			return &Character{}, nil
		case "fasila":
			return &Double{}, nil
		default:
			return &Identifier{Name: name}, nil
		}
	case LEFTBRACKET:
		p.advance()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.match(SEMICOLON); err != nil {
			return nil, err
		}
		size, err := p.match(INTEGER)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(string(size.Content))
		if err != nil {
			return nil, NewSyntaxError(size.Pos, "invalid array size: %s", size.Content)
		}
		if _, err := p.match(RIGHTBRACKET); err != nil {
			return nil, err
		}
		return &Array{Elem: elem, Size: n}, nil
	case STAR:
		p.advance()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Pointer{Elem: elem}, nil
	}
	return nil, NewSyntaxError(p.next().Pos, "expected type, but got %s", p.next().Kind)
}

func (p *Parser) parseIf() (Node, error) {
	ila := p.advance()
	cond, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var otherwise []Stmt
	if p.next().Kind == AWLA {
		p.advance()
		otherwise, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &IfStmt{
		Ila:  ila,
		Cond: cond,
		Then: then,
		Else: otherwise,
	}, nil
}

func (p *Parser) parseStruct() (Node, error) {
	kw := p.advance()
	name, err := p.match(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.match(LEFTBRACE); err != nil {
		return nil, err
	}
	members := make([]StructField, 0)
	for p.next().Kind != RIGHTBRACE {
		member, err := p.match(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if _, err := p.match(COLON); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		members = append(members, StructField{
			Name: member,
			Type: typ,
		})
		if p.next().Kind == SEMICOLON {
			p.advance()
			continue
		}
		if p.next().Kind != RIGHTBRACE {
			return nil, NewSyntaxError(p.next().Pos, "expected ';' or }, but got %s", p.next().Kind)
		}
	}
	p.advance()
	return &StructDecl{
		Jism:    kw,
		Name:    name,
		Members: members,
	}, nil
}

func (p *Parser) parseEnum() (Node, error) {
	kw := p.advance()
	name, err := p.match(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.match(LEFTBRACE); err != nil {
		return nil, err
	}
	members := make([]Token, 0)
	for p.next().Kind != RIGHTBRACE {
		member, err := p.match(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
		if p.next().Kind == COMMA {
			p.advance()
			continue
		}
		if p.next().Kind != RIGHTBRACE {
			return nil, NewSyntaxError(p.next().Pos, "expected ',' or }, but got %s", p.next().Kind)
		}
	}
	p.advance()
	return &EnumDecl{
		Ti3dad:  kw,
		Name:    name,
		Members: members,
	}, nil
}

func (p *Parser) parseStructInstance() (Node, error) {
	kw := p.advance()
	name, err := p.match(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.match(LEFTBRACE); err != nil {
		return nil, err
	}
	fields := make([]StructInit, 0)
	for p.next().Kind != RIGHTBRACE {
		field, err := p.match(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if _, err := p.match(COLON); err != nil {
			return nil, err
		}
		value, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		fields = append(fields, StructInit{
			Name:  field,
			Value: value,
		})
		if p.next().Kind == COMMA {
			p.advance()
			continue
		}
		if p.next().Kind != RIGHTBRACE {
			return nil, NewSyntaxError(p.next().Pos, "expected ',' or }, but got %s", p.next().Kind)
		}
	}
	p.advance()
	return &StructInstanceExpr{
		Jadid:  kw,
		Name:   name,
		Fields: fields,
	}, nil
}

func (p *Parser) parseFor() (Node, error) {
	kw := p.advance()
	id, err := p.match(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.match(COLON); err != nil {
		return nil, err
	}
	from, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.match(RANGE); err != nil {
		return nil, err
	}
	to, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ForRange{
		Lkola: kw,
		Var:   id,
		From:  from,
		To:    to,
		Body:  body,
	}, nil
}
