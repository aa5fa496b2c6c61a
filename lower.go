package der

import "fmt"

// UnmappedCType is emitted for types that have no C spelling.
const UnmappedCType = "__der_unmapped"

var cOperators = map[TokenKind]string{
	PLUS:          "+",
	MINUS:         "-",
	STAR:          "*",
	SLASH:         "/",
	PERCENT:       "%",
	EQUALITY:      "==",
	NOT_EQUAL:     "!=",
	LESS:          "<",
	LESS_EQUAL:    "<=",
	GREATER:       ">",
	GREATER_EQUAL: ">=",
	AND:           "&&",
	OR:            "||",
	NOT:           "!",
	BIT_AND:       "&",
	BIT_OR:        "|",
}

func operatorText(kind TokenKind) string {
	if op, ok := cOperators[kind]; ok {
		return op
	}
	panic(fmt.Sprintf("no C operator for %s", kind))
}

// cType spells a resolved type in C.
func cType(t Type) string {
	switch t := t.(type) {
	case *Bool, *Integer:
		return "int"
	case *String:
		return "const char*"
	case *Double:
		return "double"
	case *Void:
		return "void"
	case *Character:
		return "char"
	case *Struct:
		return "struct " + t.Name
	case *Enum:
		return "enum " + t.Name
	case *EnumInstance:
		return "enum " + t.Enum.Name
	case *Pointer:
		return cType(t.Elem) + "*"
	}
	return UnmappedCType
}

// resolved maps a type written in the source to the declared struct, enum or
// deduced generic it names. Lowering runs on checked input only.
func (c *Checker) resolved(t Type) Type {
	switch t := t.(type) {
	case *Identifier:
		if d, ok := c.lowerGenerics[t.Name]; ok {
			return d
		}
		if named, ok := c.typeNames[t.Name]; ok {
			return named
		}
	case *Array:
		return &Array{Elem: c.resolved(t.Elem), Size: t.Size}
	case *Pointer:
		return &Pointer{Elem: c.resolved(t.Elem)}
	}
	return t
}

// cDecl spells the declaration of name with type t; array sizes go on the
// declarator.
func (c *Checker) cDecl(name string, t Type) CParam {
	t = c.resolved(t)
	if a, ok := t.(*Array); ok {
		return CParam{Type: cType(a.Elem), Name: fmt.Sprintf("%s[%d]", name, a.Size)}
	}
	return CParam{Type: cType(t), Name: name}
}

func (c *Checker) lowerTopLevel(node Node) []IR {
	fd, ok := node.(*FunctionDecl)
	if !ok || len(fd.Generics) == 0 {
		return []IR{c.LowerToIR(node)}
	}
	c.genericDecls[string(fd.Name.Content)] = fd
	return c.lowerInstances(fd)
}

// lowerInstances emits the specializations of fd not emitted yet.
func (c *Checker) lowerInstances(fd *FunctionDecl) []IR {
	var out []IR
	for _, inst := range c.Instances.Of(string(fd.Name.Content)) {
		if c.emitted[inst] {
			continue
		}
		c.emitted[inst] = true
		out = append(out, c.lowerInstance(fd, inst))
	}
	return out
}

func (c *Checker) lowerInstance(fd *FunctionDecl, inst *Instance) IR {
	generics := make([]string, 0, len(fd.Generics))
	for _, g := range fd.Generics {
		generics = append(generics, string(g.Content))
	}
	savedGenerics, savedWithin := c.lowerGenerics, c.within
	c.lowerGenerics, c.within = inst.Bindings(generics), inst
	defer func() {
		c.lowerGenerics, c.within = savedGenerics, savedWithin
	}()

	params := make([]CParam, 0, len(inst.Signature.Params))
	for _, p := range inst.Signature.Params {
		params = append(params, c.cDecl(p.Name, p.Type))
	}
	return &IRFunction{
		Return: cType(c.resolved(inst.Signature.Return)),
		Name:   inst.Name,
		Params: params,
		Body:   c.lowerStmts(fd.Body),
	}
}

func (c *Checker) lowerStmts(stmts []Stmt) []IR {
	out := make([]IR, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, c.lowerTopLevel(s.Node)...)
	}
	return out
}

func (c *Checker) lowerNodes(nodes []Node) []IR {
	out := make([]IR, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, c.LowerToIR(n))
	}
	return out
}

// LowerToIR transcribes a checked node to IR.
func (c *Checker) LowerToIR(node Node) IR {
	switch n := node.(type) {
	case *IntegerLit:
		return &IRInteger{Val: n.Value()}
	case *DoubleLit:
		return &IRDouble{Text: string(n.Token.Content)}
	case *StringLit:
		return &IRString{Val: string(n.Token.Content)}
	case *CharLit:
		return &IRChar{Val: string(n.Token.Content)}
	case *BoolLit:
		return &IRBool{Val: n.Value()}
	case *Ident:
		return &IRIdent{Name: string(n.Token.Content)}
	case *ArrayLit:
		return &IRArray{Elems: c.lowerNodes(n.Elems)}
	case *GroupedExpr:
		return &IRParen{Inner: c.LowerToIR(n.Inner)}
	case *BinaryExpr:
		return &IRBinary{
			Left:  c.LowerToIR(n.Left),
			Op:    operatorText(n.Op.Kind),
			Right: c.LowerToIR(n.Right),
		}
	case *LogicalExpr:
		return &IRLogical{
			Left:  c.LowerToIR(n.Left),
			Op:    operatorText(n.Op.Kind),
			Right: c.LowerToIR(n.Right),
		}
	case *UnaryExpr:
		return &IRUnary{Op: operatorText(n.Op.Kind), Operand: c.LowerToIR(n.Operand)}
	case *AddrOfExpr:
		return &IRAddrOf{Operand: c.LowerToIR(n.Operand)}
	case *DerefExpr:
		return &IRDeref{Operand: c.LowerToIR(n.Operand)}
	case *CastExpr:
		return &IRCast{To: cType(c.resolved(n.To)), Operand: c.LowerToIR(n.Value)}
	case *VarDecl:
		return c.lowerVar(n)
	case *FunctionDecl:
		return c.lowerFunction(n)
	case *CallExpr:
		return c.lowerCall(n)
	case *IfStmt:
		return &IRIf{
			Cond: c.LowerToIR(n.Cond),
			Then: c.lowerStmts(n.Then),
			Else: c.lowerStmts(n.Else),
		}
	case *SmolIfExpr:
		return &IRSmolIf{Cond: c.LowerToIR(n.Cond), Body: c.LowerToIR(n.Body)}
	case *PipeExpr:
		right := c.LowerToIR(unparen(n.Right))
		call, ok := right.(*IRFunctionCall)
		if !ok {
			panic("right hand of pipe lowered to a non-call")
		}
		call.Args = append(call.Args, c.LowerToIR(n.Left))
		return call
	case *DotExpr:
		return c.lowerDot(n)
	case *SubscriptExpr:
		return &IRSubscript{Target: c.LowerToIR(n.Target), Index: c.LowerToIR(n.Index)}
	case *StructDecl:
		members := make([]CParam, 0, len(n.Members))
		for _, m := range n.Members {
			members = append(members, c.cDecl(string(m.Name.Content), m.Type))
		}
		return &IRStruct{Name: string(n.Name.Content), Members: members}
	case *EnumDecl:
		members := make([]string, 0, len(n.Members))
		for _, m := range n.Members {
			members = append(members, string(m.Content))
		}
		return &IREnum{Name: string(n.Name.Content), Members: members}
	case *StructInstanceExpr:
		fields := make([]CFieldInit, 0, len(n.Fields))
		for _, f := range n.Fields {
			fields = append(fields, CFieldInit{Name: string(f.Name.Content), Value: c.LowerToIR(f.Value)})
		}
		return &IRStructInstance{Fields: fields}
	case *ForRange:
		return &IRRangedFor{
			Var:  string(n.Var.Content),
			From: c.LowerToIR(n.From),
			To:   c.LowerToIR(n.To),
			Body: c.lowerStmts(n.Body),
		}
	case *ReturnStmt:
		if n.Value == nil {
			return &IRReturn{}
		}
		return &IRReturn{Result: c.LowerToIR(n.Value)}
	case *SetExpr:
		return &IRSetOp{Target: c.LowerToIR(n.Target), Source: c.LowerToIR(n.Value)}
	}
	panic("unreachable")
}

func (c *Checker) lowerVar(n *VarDecl) IR {
	name := string(n.Name.Content)
	t := c.resolved(n.Type)
	if a, ok := t.(*Array); ok {
		return &IRArrayVariable{
			Type: cType(a.Elem),
			Name: name,
			Size: a.Size,
			Init: c.LowerToIR(n.Value),
		}
	}
	return &IRVariable{Type: cType(t), Name: name, Init: c.LowerToIR(n.Value)}
}

func (c *Checker) lowerFunction(n *FunctionDecl) IR {
	if len(n.Generics) > 0 {
		panic("generic functions lower through their instances")
	}
	params := make([]CParam, 0, len(n.Params))
	for _, p := range n.Params {
		params = append(params, c.cDecl(string(p.Name.Content), p.Type))
	}
	var ret Type = &Void{}
	if n.Return != nil {
		ret = c.resolved(n.Return)
	}
	return &IRFunction{
		Return: cType(ret),
		Name:   string(n.Name.Content),
		Params: params,
		Body:   c.lowerStmts(n.Body),
	}
}

func (c *Checker) lowerCall(n *CallExpr) IR {
	callee := c.LowerToIR(n.Callee)
	if inst, ok := c.calls[siteKey{site: n, within: c.within}]; ok {
		callee = &IRIdent{Name: inst.Name}
	}
	return &IRFunctionCall{Callee: callee, Args: c.lowerNodes(n.Args)}
}

// lowerDot emits enum member accesses as their enumerator; C has no value
// of enum type to select a member from.
func (c *Checker) lowerDot(n *DotExpr) IR {
	if inst, ok := c.members[siteKey{site: n, within: c.within}]; ok {
		return &IRIdent{Name: EnumConstant(inst.Enum.Name, inst.Member)}
	}
	return &IRDot{Left: c.LowerToIR(n.Left), Right: c.LowerToIR(n.Right)}
}

// unparen strips the parentheses around a node, as its declared type does.
func unparen(n Node) Node {
	for {
		g, ok := n.(*GroupedExpr)
		if !ok {
			return n
		}
		n = g.Inner
	}
}
