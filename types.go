package der

import (
	"fmt"
	"strings"
)

type Kind int

const (
	KindInteger Kind = iota
	KindDouble
	KindString
	KindBool
	KindCharacter
	KindVoid
	KindArray
	KindArrayLiteral
	KindPointer
	KindFunction
	KindFcall
	KindVariable
	KindStruct
	KindEnum
	KindStructInstance
	KindEnumInstance
	KindIf
	KindSmolIf
	KindBinaryOp
	KindLogicalOp
	KindUnaryOp
	KindDotOp
	KindPipeOp
	KindSetOp
	KindSubscript
	KindRangedFor
	KindReturn
	KindIdentifier
	KindGeneric
	KindCast
	KindAddrOf
	KindDeref
)

// Type is a structural description derived from the AST. IsSame is the
// assignability predicate; operator carriers never compare equal.
type Type interface {
	Kind() Kind
	IsSame(other Type) bool
	String() string
	typ()
}

// TypedStmt is a statement of the declared-type tree with its location.
type TypedStmt struct {
	Type Type
	Pos  Pos
}

type Param struct {
	Name string
	Type Type
	Pos  Pos
}

type StructMember struct {
	Name string
	Type Type
}

type FieldInit struct {
	Name  string
	Value Type
}

type Integer struct{}
type Double struct{}
type String struct{}
type Bool struct{}
type Character struct{}
type Void struct{}

type Array struct {
	Elem Type
	Size int
}

type ArrayLiteral struct {
	Elems []Type
}

type Pointer struct {
	Elem Type
}

type Function struct {
	Name     string
	Generics []string
	Params   []Param
	Body     []TypedStmt
	Return   Type
}

type Fcall struct {
	Callee Type
	Args   []Type
	Site   *CallExpr
}

type Variable struct {
	Name     string
	Declared Type
	Actual   Type
}

type Struct struct {
	Name    string
	Members []StructMember
}

type Enum struct {
	Name    string
	Members []string
}

type StructInstance struct {
	Name   string
	Fields []FieldInit
}

type EnumInstance struct {
	Enum   *Enum
	Member string
}

type If struct {
	Cond Type
	Then []TypedStmt
	Else []TypedStmt
}

type SmolIf struct {
	Cond Type
	Body Type
}

type BinaryOp struct {
	Op    TokenKind
	Left  Type
	Right Type
}

type LogicalOp struct {
	Op    TokenKind
	Left  Type
	Right Type
}

type UnaryOp struct {
	Op      TokenKind
	Operand Type
}

type DotOp struct {
	Left  Type
	Right Type
	Site  *DotExpr
}

type PipeOp struct {
	Left  Type
	Right Type
}

type SetOp struct {
	Target Type
	Value  Type
}

type Subscript struct {
	Target Type
	Index  Type
}

type RangedFor struct {
	Var  string
	From Type
	To   Type
	Body []TypedStmt
}

type Return struct {
	Value Type
}

type Identifier struct {
	Name string
}

type Generic struct {
	Name string
}

type Cast struct {
	Value Type
	To    Type
}

type AddrOf struct {
	Operand Type
}

type Deref struct {
	Operand Type
}

func (*Integer) Kind() Kind        { return KindInteger }
func (*Double) Kind() Kind         { return KindDouble }
func (*String) Kind() Kind         { return KindString }
func (*Bool) Kind() Kind           { return KindBool }
func (*Character) Kind() Kind      { return KindCharacter }
func (*Void) Kind() Kind           { return KindVoid }
func (*Array) Kind() Kind          { return KindArray }
func (*ArrayLiteral) Kind() Kind   { return KindArrayLiteral }
func (*Pointer) Kind() Kind        { return KindPointer }
func (*Function) Kind() Kind       { return KindFunction }
func (*Fcall) Kind() Kind          { return KindFcall }
func (*Variable) Kind() Kind       { return KindVariable }
func (*Struct) Kind() Kind         { return KindStruct }
func (*Enum) Kind() Kind           { return KindEnum }
func (*StructInstance) Kind() Kind { return KindStructInstance }
func (*EnumInstance) Kind() Kind   { return KindEnumInstance }
func (*If) Kind() Kind             { return KindIf }
func (*SmolIf) Kind() Kind         { return KindSmolIf }
func (*BinaryOp) Kind() Kind       { return KindBinaryOp }
func (*LogicalOp) Kind() Kind      { return KindLogicalOp }
func (*UnaryOp) Kind() Kind        { return KindUnaryOp }
func (*DotOp) Kind() Kind          { return KindDotOp }
func (*PipeOp) Kind() Kind         { return KindPipeOp }
func (*SetOp) Kind() Kind          { return KindSetOp }
func (*Subscript) Kind() Kind      { return KindSubscript }
func (*RangedFor) Kind() Kind      { return KindRangedFor }
func (*Return) Kind() Kind         { return KindReturn }
func (*Identifier) Kind() Kind     { return KindIdentifier }
func (*Generic) Kind() Kind        { return KindGeneric }
func (*Cast) Kind() Kind           { return KindCast }
func (*AddrOf) Kind() Kind         { return KindAddrOf }
func (*Deref) Kind() Kind          { return KindDeref }

func (*Integer) IsSame(other Type) bool   { return other.Kind() == KindInteger }
func (*Double) IsSame(other Type) bool    { return other.Kind() == KindDouble }
func (*String) IsSame(other Type) bool    { return other.Kind() == KindString }
func (*Bool) IsSame(other Type) bool      { return other.Kind() == KindBool }
func (*Character) IsSame(other Type) bool { return other.Kind() == KindCharacter }
func (*Void) IsSame(other Type) bool      { return other.Kind() == KindVoid }
func (*Function) IsSame(other Type) bool  { return other.Kind() == KindFunction }

func (a *Array) IsSame(other Type) bool {
	o, ok := other.(*Array)
	if !ok {
		return false
	}
	return a.Elem.IsSame(o.Elem) && a.Size == o.Size
}

func (p *Pointer) IsSame(other Type) bool {
	o, ok := other.(*Pointer)
	if !ok {
		return false
	}
	return p.Elem.IsSame(o.Elem)
}

func (s *Struct) IsSame(other Type) bool {
	o, ok := other.(*Struct)
	return ok && o.Name == s.Name
}

// IsSame accepts the enum itself and any selected member of it.
func (e *Enum) IsSame(other Type) bool {
	switch o := other.(type) {
	case *Enum:
		return e.equal(o)
	case *EnumInstance:
		return e.equal(o.Enum)
	}
	return false
}

func (e *Enum) equal(o *Enum) bool {
	if e.Name != o.Name || len(e.Members) != len(o.Members) {
		return false
	}
	for i := range e.Members {
		if e.Members[i] != o.Members[i] {
			return false
		}
	}
	return true
}

func (e *EnumInstance) IsSame(other Type) bool {
	o, ok := other.(*EnumInstance)
	if !ok {
		return false
	}
	return e.Enum.equal(o.Enum) && e.Member == o.Member
}

func (*ArrayLiteral) IsSame(Type) bool   { return false }
func (*Fcall) IsSame(Type) bool          { return false }
func (*Variable) IsSame(Type) bool       { return false }
func (*StructInstance) IsSame(Type) bool { return false }
func (*If) IsSame(Type) bool             { return false }
func (*SmolIf) IsSame(Type) bool         { return false }
func (*BinaryOp) IsSame(Type) bool       { return false }
func (*LogicalOp) IsSame(Type) bool      { return false }
func (*UnaryOp) IsSame(Type) bool        { return false }
func (*DotOp) IsSame(Type) bool          { return false }
func (*PipeOp) IsSame(Type) bool         { return false }
func (*SetOp) IsSame(Type) bool          { return false }
func (*Subscript) IsSame(Type) bool      { return false }
func (*RangedFor) IsSame(Type) bool      { return false }
func (*Return) IsSame(Type) bool         { return false }
func (*Identifier) IsSame(Type) bool     { return false }
func (*Generic) IsSame(Type) bool        { return false }
func (*Cast) IsSame(Type) bool           { return false }
func (*AddrOf) IsSame(Type) bool         { return false }
func (*Deref) IsSame(Type) bool          { return false }

func (*Integer) String() string   { return "ra9m" }
func (*Double) String() string    { return "fasila" }
func (*String) String() string    { return "ktba" }
func (*Bool) String() string      { return "bool" }
func (*Character) String() string { return "harf" }
func (*Void) String() string      { return "walo" }

func (a *Array) String() string {
	return fmt.Sprintf("[%s; %d]", a.Elem, a.Size)
}

func (a *ArrayLiteral) String() string {
	return fmt.Sprintf("array literal of %d elements", len(a.Elems))
}

func (p *Pointer) String() string {
	return "*" + p.Elem.String()
}

func (f *Function) String() string {
	params := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		params = append(params, fmt.Sprintf("%s: %s", p.Name, p.Type))
	}
	var generics string
	if len(f.Generics) > 0 {
		generics = "<" + strings.Join(f.Generics, ", ") + ">"
	}
	ret := "walo"
	if f.Return != nil {
		ret = f.Return.String()
	}
	return fmt.Sprintf("dalaton %s%s(%s): %s", f.Name, generics, strings.Join(params, ", "), ret)
}

func (f *Fcall) String() string            { return "function call" }
func (v *Variable) String() string         { return "variable " + v.Name }
func (s *Struct) String() string           { return "jism " + s.Name }
func (e *Enum) String() string             { return "ti3dad " + e.Name }
func (s *StructInstance) String() string   { return "jadid " + s.Name }
func (e *EnumInstance) String() string     { return e.Enum.Name + "." + e.Member }
func (*If) String() string                 { return "if statement" }
func (*SmolIf) String() string             { return "short if" }
func (b *BinaryOp) String() string         { return "binary operation " + b.Op.String() }
func (l *LogicalOp) String() string        { return "logical operation " + l.Op.String() }
func (u *UnaryOp) String() string          { return "unary operation " + u.Op.String() }
func (*DotOp) String() string              { return "dot operation" }
func (*PipeOp) String() string             { return "pipe operation" }
func (*SetOp) String() string              { return "assignment" }
func (*Subscript) String() string          { return "subscript" }
func (r *RangedFor) String() string        { return "ranged for over " + r.Var }
func (*Return) String() string             { return "return" }
func (i *Identifier) String() string       { return i.Name }
func (g *Generic) String() string          { return "generic " + g.Name }
func (c *Cast) String() string             { return "cast to " + c.To.String() }
func (*AddrOf) String() string             { return "address of" }
func (*Deref) String() string              { return "dereference" }

func (*Integer) typ()        {}
func (*Double) typ()         {}
func (*String) typ()         {}
func (*Bool) typ()           {}
func (*Character) typ()      {}
func (*Void) typ()           {}
func (*Array) typ()          {}
func (*ArrayLiteral) typ()   {}
func (*Pointer) typ()        {}
func (*Function) typ()       {}
func (*Fcall) typ()          {}
func (*Variable) typ()       {}
func (*Struct) typ()         {}
func (*Enum) typ()           {}
func (*StructInstance) typ() {}
func (*EnumInstance) typ()   {}
func (*If) typ()             {}
func (*SmolIf) typ()         {}
func (*BinaryOp) typ()       {}
func (*LogicalOp) typ()      {}
func (*UnaryOp) typ()        {}
func (*DotOp) typ()          {}
func (*PipeOp) typ()         {}
func (*SetOp) typ()          {}
func (*Subscript) typ()      {}
func (*RangedFor) typ()      {}
func (*Return) typ()         {}
func (*Identifier) typ()     {}
func (*Generic) typ()        {}
func (*Cast) typ()           {}
func (*AddrOf) typ()         {}
func (*Deref) typ()          {}

func (s *Struct) Member(name string) (Type, bool) {
	for _, m := range s.Members {
		if m.Name == name {
			return m.Type, true
		}
	}
	return nil, false
}

func (e *Enum) HasMember(name string) bool {
	for _, m := range e.Members {
		if m == name {
			return true
		}
	}
	return false
}
