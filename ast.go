package der

import "strconv"

// Node is a parsed expression or statement. DeclaredType re-expresses the
// node's shape as a Type tree without validating it.
type Node interface {
	Pos() Pos
	DeclaredType() Type
	node()
}

// Stmt pairs a statement-level node with the location it is reported at.
type Stmt struct {
	Node Node
	Pos  Pos
}

type IntegerLit struct {
	Token Token
}

type DoubleLit struct {
	Token Token
}

type StringLit struct {
	Token Token
}

type CharLit struct {
	Token Token
}

type BoolLit struct {
	Token Token
}

type ArrayLit struct {
	Left  Token
	Elems []Node
}

type Ident struct {
	Token Token
}

type GroupedExpr struct {
	Left  Token
	Inner Node
}

type BinaryExpr struct {
	Left  Node
	Op    Token
	Right Node
}

type LogicalExpr struct {
	Left  Node
	Op    Token
	Right Node
}

type UnaryExpr struct {
	Op      Token
	Operand Node
}

type AddrOfExpr struct {
	Amp     Token
	Operand Node
}

type DerefExpr struct {
	Star    Token
	Operand Node
}

type CastExpr struct {
	Value Node
	Kant  Token
	To    Type
}

type VarDecl struct {
	Dir   Token
	Name  Token
	Type  Type
	Value Node
}

type FunParam struct {
	Name Token
	Type Type
}

type FunctionDecl struct {
	Dalaton  Token
	Name     Token
	Generics []Token
	Params   []FunParam
	Return   Type
	Body     []Stmt
}

type CallExpr struct {
	Callee Node
	Args   []Node
}

type IfStmt struct {
	Ila  Token
	Cond Node
	Then []Stmt
	Else []Stmt
}

type SmolIfExpr struct {
	Cond Node
	Body Node
}

type PipeExpr struct {
	Left  Node
	Pipe  Token
	Right Node
}

type DotExpr struct {
	Left  Node
	Dot   Token
	Right Node
}

type SubscriptExpr struct {
	Target Node
	Index  Node
}

type StructField struct {
	Name Token
	Type Type
}

type StructDecl struct {
	Jism    Token
	Name    Token
	Members []StructField
}

type EnumDecl struct {
	Ti3dad  Token
	Name    Token
	Members []Token
}

type StructInit struct {
	Name  Token
	Value Node
}

type StructInstanceExpr struct {
	Jadid  Token
	Name   Token
	Fields []StructInit
}

type ForRange struct {
	Lkola Token
	Var   Token
	From  Node
	To    Node
	Body  []Stmt
}

type ReturnStmt struct {
	Rje3  Token
	Value Node
}

type SetExpr struct {
	Target Node
	Assign Token
	Value  Node
}

func (n *IntegerLit) Pos() Pos         { return n.Token.Pos }
func (n *DoubleLit) Pos() Pos          { return n.Token.Pos }
func (n *StringLit) Pos() Pos          { return n.Token.Pos }
func (n *CharLit) Pos() Pos            { return n.Token.Pos }
func (n *BoolLit) Pos() Pos            { return n.Token.Pos }
func (n *ArrayLit) Pos() Pos           { return n.Left.Pos }
func (n *Ident) Pos() Pos              { return n.Token.Pos }
func (n *GroupedExpr) Pos() Pos        { return n.Left.Pos }
func (n *BinaryExpr) Pos() Pos         { return n.Left.Pos() }
func (n *LogicalExpr) Pos() Pos        { return n.Left.Pos() }
func (n *UnaryExpr) Pos() Pos          { return n.Op.Pos }
func (n *AddrOfExpr) Pos() Pos         { return n.Amp.Pos }
func (n *DerefExpr) Pos() Pos          { return n.Star.Pos }
func (n *CastExpr) Pos() Pos           { return n.Value.Pos() }
func (n *VarDecl) Pos() Pos            { return n.Dir.Pos }
func (n *FunctionDecl) Pos() Pos       { return n.Dalaton.Pos }
func (n *CallExpr) Pos() Pos           { return n.Callee.Pos() }
func (n *IfStmt) Pos() Pos             { return n.Ila.Pos }
func (n *SmolIfExpr) Pos() Pos         { return n.Cond.Pos() }
func (n *PipeExpr) Pos() Pos           { return n.Left.Pos() }
func (n *DotExpr) Pos() Pos            { return n.Left.Pos() }
func (n *SubscriptExpr) Pos() Pos      { return n.Target.Pos() }
func (n *StructDecl) Pos() Pos         { return n.Jism.Pos }
func (n *EnumDecl) Pos() Pos           { return n.Ti3dad.Pos }
func (n *StructInstanceExpr) Pos() Pos { return n.Jadid.Pos }
func (n *ForRange) Pos() Pos           { return n.Lkola.Pos }
func (n *ReturnStmt) Pos() Pos         { return n.Rje3.Pos }
func (n *SetExpr) Pos() Pos            { return n.Target.Pos() }

func (*IntegerLit) node()         {}
func (*DoubleLit) node()          {}
func (*StringLit) node()          {}
func (*CharLit) node()            {}
func (*BoolLit) node()            {}
func (*ArrayLit) node()           {}
func (*Ident) node()              {}
func (*GroupedExpr) node()        {}
func (*BinaryExpr) node()         {}
func (*LogicalExpr) node()        {}
func (*UnaryExpr) node()          {}
func (*AddrOfExpr) node()         {}
func (*DerefExpr) node()          {}
func (*CastExpr) node()           {}
func (*VarDecl) node()            {}
func (*FunctionDecl) node()       {}
func (*CallExpr) node()           {}
func (*IfStmt) node()             {}
func (*SmolIfExpr) node()         {}
func (*PipeExpr) node()           {}
func (*DotExpr) node()            {}
func (*SubscriptExpr) node()      {}
func (*StructDecl) node()         {}
func (*EnumDecl) node()           {}
func (*StructInstanceExpr) node() {}
func (*ForRange) node()           {}
func (*ReturnStmt) node()         {}
func (*SetExpr) node()            {}

func (n *IntegerLit) Value() int64 {
	v, err := strconv.ParseInt(string(n.Token.Content), 10, 64)
	if err != nil {
		panic(err)
	}
	return v
}

func (n *BoolLit) Value() bool {
	return string(n.Token.Content) == "sa7i7"
}

func (*IntegerLit) DeclaredType() Type { return &Integer{} }
func (*DoubleLit) DeclaredType() Type  { return &Double{} }
func (*StringLit) DeclaredType() Type  { return &String{} }
func (*CharLit) DeclaredType() Type    { return &Character{} }
func (*BoolLit) DeclaredType() Type    { return &Bool{} }

func (n *ArrayLit) DeclaredType() Type {
	return &ArrayLiteral{Elems: declaredTypes(n.Elems)}
}

func (n *Ident) DeclaredType() Type {
	return &Identifier{Name: string(n.Token.Content)}
}

func (n *GroupedExpr) DeclaredType() Type {
	return n.Inner.DeclaredType()
}

func (n *BinaryExpr) DeclaredType() Type {
	return &BinaryOp{
		Op:    n.Op.Kind,
		Left:  n.Left.DeclaredType(),
		Right: n.Right.DeclaredType(),
	}
}

func (n *LogicalExpr) DeclaredType() Type {
	return &LogicalOp{
		Op:    n.Op.Kind,
		Left:  n.Left.DeclaredType(),
		Right: n.Right.DeclaredType(),
	}
}

func (n *UnaryExpr) DeclaredType() Type {
	return &UnaryOp{
		Op:      n.Op.Kind,
		Operand: n.Operand.DeclaredType(),
	}
}

func (n *AddrOfExpr) DeclaredType() Type {
	return &AddrOf{Operand: n.Operand.DeclaredType()}
}

func (n *DerefExpr) DeclaredType() Type {
	return &Deref{Operand: n.Operand.DeclaredType()}
}

func (n *CastExpr) DeclaredType() Type {
	return &Cast{Value: n.Value.DeclaredType(), To: n.To}
}

func (n *VarDecl) DeclaredType() Type {
	return &Variable{
		Name:     string(n.Name.Content),
		Declared: n.Type,
		Actual:   n.Value.DeclaredType(),
	}
}

func (n *FunctionDecl) DeclaredType() Type {
	generics := make([]string, 0, len(n.Generics))
	for _, g := range n.Generics {
		generics = append(generics, string(g.Content))
	}
	params := make([]Param, 0, len(n.Params))
	for _, p := range n.Params {
		params = append(params, Param{
			Name: string(p.Name.Content),
			Type: p.Type,
			Pos:  p.Name.Pos,
		})
	}
	return &Function{
		Name:     string(n.Name.Content),
		Generics: generics,
		Params:   params,
		Body:     declaredStmts(n.Body),
		Return:   n.Return,
	}
}

func (n *CallExpr) DeclaredType() Type {
	return &Fcall{
		Callee: n.Callee.DeclaredType(),
		Args:   declaredTypes(n.Args),
		Site:   n,
	}
}

func (n *IfStmt) DeclaredType() Type {
	return &If{
		Cond: n.Cond.DeclaredType(),
		Then: declaredStmts(n.Then),
		Else: declaredStmts(n.Else),
	}
}

func (n *SmolIfExpr) DeclaredType() Type {
	return &SmolIf{
		Cond: n.Cond.DeclaredType(),
		Body: n.Body.DeclaredType(),
	}
}

func (n *PipeExpr) DeclaredType() Type {
	return &PipeOp{
		Left:  n.Left.DeclaredType(),
		Right: n.Right.DeclaredType(),
	}
}

func (n *DotExpr) DeclaredType() Type {
	return &DotOp{
		Left:  n.Left.DeclaredType(),
		Right: n.Right.DeclaredType(),
		Site:  n,
	}
}

func (n *SubscriptExpr) DeclaredType() Type {
	return &Subscript{
		Target: n.Target.DeclaredType(),
		Index:  n.Index.DeclaredType(),
	}
}

func (n *StructDecl) DeclaredType() Type {
	members := make([]StructMember, 0, len(n.Members))
	for _, m := range n.Members {
		members = append(members, StructMember{
			Name: string(m.Name.Content),
			Type: m.Type,
		})
	}
	return &Struct{
		Name:    string(n.Name.Content),
		Members: members,
	}
}

func (n *EnumDecl) DeclaredType() Type {
	members := make([]string, 0, len(n.Members))
	for _, m := range n.Members {
		members = append(members, string(m.Content))
	}
	return &Enum{
		Name:    string(n.Name.Content),
		Members: members,
	}
}

func (n *StructInstanceExpr) DeclaredType() Type {
	fields := make([]FieldInit, 0, len(n.Fields))
	for _, f := range n.Fields {
		fields = append(fields, FieldInit{
			Name:  string(f.Name.Content),
			Value: f.Value.DeclaredType(),
		})
	}
	return &StructInstance{
		Name:   string(n.Name.Content),
		Fields: fields,
	}
}

func (n *ForRange) DeclaredType() Type {
	return &RangedFor{
		Var:  string(n.Var.Content),
		From: n.From.DeclaredType(),
		To:   n.To.DeclaredType(),
		Body: declaredStmts(n.Body),
	}
}

func (n *ReturnStmt) DeclaredType() Type {
	if n.Value == nil {
		return &Return{}
	}
	return &Return{Value: n.Value.DeclaredType()}
}

func (n *SetExpr) DeclaredType() Type {
	return &SetOp{
		Target: n.Target.DeclaredType(),
		Value:  n.Value.DeclaredType(),
	}
}

func declaredTypes(nodes []Node) []Type {
	types := make([]Type, 0, len(nodes))
	for _, n := range nodes {
		types = append(types, n.DeclaredType())
	}
	return types
}

func declaredStmts(stmts []Stmt) []TypedStmt {
	typed := make([]TypedStmt, 0, len(stmts))
	for _, s := range stmts {
		typed = append(typed, TypedStmt{
			Type: s.Node.DeclaredType(),
			Pos:  s.Pos,
		})
	}
	return typed
}
