package der

import (
	"fmt"
	"strconv"
	"strings"
)

// IR is a type-erased C construct. Value renders it as C source text,
// without the trailing statement terminator.
type IR interface {
	Value() string
	ir()
}

type IRInteger struct {
	Val int64
}

type IRBool struct {
	Val bool
}

// IRDouble keeps the literal's source spelling.
type IRDouble struct {
	Text string
}

// IRString and IRChar hold the literal's content with escapes left as written.
type IRString struct {
	Val string
}

type IRChar struct {
	Val string
}

type IRBinary struct {
	Left  IR
	Op    string
	Right IR
}

type IRLogical struct {
	Left  IR
	Op    string
	Right IR
}

type IRUnary struct {
	Op      string
	Operand IR
}

type IRParen struct {
	Inner IR
}

type IRCast struct {
	To      string
	Operand IR
}

type IRAddrOf struct {
	Operand IR
}

type IRDeref struct {
	Operand IR
}

type IRArray struct {
	Elems []IR
}

type IRFunctionCall struct {
	Callee IR
	Args   []IR
}

type IRIdent struct {
	Name string
}

type IRVariable struct {
	Type string
	Name string
	Init IR
}

type IRArrayVariable struct {
	Type string
	Name string
	Size int
	Init IR
}

type IRSetOp struct {
	Target IR
	Source IR
}

type IRRangedFor struct {
	Var  string
	From IR
	To   IR
	Body []IR
}

type IRSubscript struct {
	Target IR
	Index  IR
}

type IRDot struct {
	Left  IR
	Right IR
}

type CParam struct {
	Type string
	Name string
}

type IRFunction struct {
	Return string
	Name   string
	Params []CParam
	Body   []IR
}

type IRStruct struct {
	Name    string
	Members []CParam
}

type IREnum struct {
	Name    string
	Members []string
}

type CFieldInit struct {
	Name  string
	Value IR
}

type IRStructInstance struct {
	Fields []CFieldInit
}

type IRIf struct {
	Cond IR
	Then []IR
	Else []IR
}

type IRSmolIf struct {
	Cond IR
	Body IR
}

// IRReturn with a nil Result is a bare return.
type IRReturn struct {
	Result IR
}

func (n *IRInteger) Value() string { return strconv.FormatInt(n.Val, 10) }

func (n *IRBool) Value() string {
	if n.Val {
		return "1"
	}
	return "0"
}

func (n *IRDouble) Value() string  { return n.Text }
func (n *IRString) Value() string  { return `"` + n.Val + `"` }
func (n *IRChar) Value() string    { return "'" + n.Val + "'" }
func (n *IRIdent) Value() string   { return n.Name }
func (n *IRParen) Value() string   { return "(" + n.Inner.Value() + ")" }
func (n *IRUnary) Value() string   { return n.Op + n.Operand.Value() }
func (n *IRAddrOf) Value() string  { return "&" + n.Operand.Value() }
func (n *IRDeref) Value() string   { return "*" + n.Operand.Value() }
func (n *IRCast) Value() string    { return fmt.Sprintf("(%s)%s", n.To, n.Operand.Value()) }
func (n *IRDot) Value() string     { return n.Left.Value() + "." + n.Right.Value() }
func (n *IRSetOp) Value() string   { return n.Target.Value() + " = " + n.Source.Value() }
func (n *IRSmolIf) Value() string  { return fmt.Sprintf("if(%s) %s", n.Cond.Value(), n.Body.Value()) }
func (n *IRArray) Value() string   { return "{" + joinValues(n.Elems, ",") + "}" }
func (n *IRBinary) Value() string  { return fmt.Sprintf("%s %s %s", n.Left.Value(), n.Op, n.Right.Value()) }
func (n *IRLogical) Value() string { return fmt.Sprintf("%s %s %s", n.Left.Value(), n.Op, n.Right.Value()) }

func (n *IRSubscript) Value() string {
	return fmt.Sprintf("%s[%s]", n.Target.Value(), n.Index.Value())
}

func (n *IRFunctionCall) Value() string {
	return fmt.Sprintf("%s(%s)", n.Callee.Value(), joinValues(n.Args, ","))
}

func (n *IRVariable) Value() string {
	return fmt.Sprintf("%s %s = %s", n.Type, n.Name, n.Init.Value())
}

func (n *IRArrayVariable) Value() string {
	return fmt.Sprintf("%s %s[%d] = %s", n.Type, n.Name, n.Size, n.Init.Value())
}

func (n *IRRangedFor) Value() string {
	var b strings.Builder
	fmt.Fprintf(&b, "for(int %s = %s; %s<%s; ++%s) {\n", n.Var, n.From.Value(), n.Var, n.To.Value(), n.Var)
	writeBlock(&b, n.Body)
	b.WriteString("}")
	return b.String()
}

func (n *IRFunction) Value() string {
	params := make([]string, 0, len(n.Params))
	for _, p := range n.Params {
		params = append(params, p.Type+" "+p.Name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s(%s) {\n", n.Return, n.Name, strings.Join(params, ","))
	writeBlock(&b, n.Body)
	b.WriteString("}")
	return b.String()
}

func (n *IRStruct) Value() string {
	var b strings.Builder
	fmt.Fprintf(&b, "struct %s {\n", n.Name)
	for _, m := range n.Members {
		fmt.Fprintf(&b, "\t%s %s;\n", m.Type, m.Name)
	}
	b.WriteString("}")
	return b.String()
}

func (n *IREnum) Value() string {
	var b strings.Builder
	fmt.Fprintf(&b, "enum %s {\n", n.Name)
	for _, m := range n.Members {
		fmt.Fprintf(&b, "\t%s,\n", EnumConstant(n.Name, m))
	}
	b.WriteString("}")
	return b.String()
}

func (n *IRStructInstance) Value() string {
	fields := make([]string, 0, len(n.Fields))
	for _, f := range n.Fields {
		fields = append(fields, fmt.Sprintf(".%s = %s", f.Name, f.Value.Value()))
	}
	return "{" + strings.Join(fields, ", ") + "}"
}

func (n *IRIf) Value() string {
	var b strings.Builder
	fmt.Fprintf(&b, "if(%s) {\n", n.Cond.Value())
	writeBlock(&b, n.Then)
	b.WriteString("}")
	if len(n.Else) > 0 {
		b.WriteString(" else {\n")
		writeBlock(&b, n.Else)
		b.WriteString("}")
	}
	return b.String()
}

func (n *IRReturn) Value() string {
	if n.Result == nil {
		return "return"
	}
	return "return " + n.Result.Value()
}

// EnumConstant is the C enumerator emitted for a member of an enum.
func EnumConstant(enum, member string) string {
	return enum + "_" + member
}

func joinValues(nodes []IR, sep string) string {
	values := make([]string, 0, len(nodes))
	for _, n := range nodes {
		values = append(values, n.Value())
	}
	return strings.Join(values, sep)
}

func writeBlock(b *strings.Builder, body []IR) {
	for _, stmt := range body {
		lines := strings.Split(stmt.Value(), "\n")
		for i, line := range lines {
			b.WriteString("\t")
			b.WriteString(line)
			if i == len(lines)-1 {
				b.WriteString(";")
			}
			b.WriteString("\n")
		}
	}
}

func (*IRInteger) ir()        {}
func (*IRBool) ir()           {}
func (*IRDouble) ir()         {}
func (*IRString) ir()         {}
func (*IRChar) ir()           {}
func (*IRBinary) ir()         {}
func (*IRLogical) ir()        {}
func (*IRUnary) ir()          {}
func (*IRParen) ir()          {}
func (*IRCast) ir()           {}
func (*IRAddrOf) ir()         {}
func (*IRDeref) ir()          {}
func (*IRArray) ir()          {}
func (*IRFunctionCall) ir()   {}
func (*IRIdent) ir()          {}
func (*IRVariable) ir()       {}
func (*IRArrayVariable) ir()  {}
func (*IRSetOp) ir()          {}
func (*IRRangedFor) ir()      {}
func (*IRSubscript) ir()      {}
func (*IRDot) ir()            {}
func (*IRFunction) ir()       {}
func (*IRStruct) ir()         {}
func (*IREnum) ir()           {}
func (*IRStructInstance) ir() {}
func (*IRIf) ir()             {}
func (*IRSmolIf) ir()         {}
func (*IRReturn) ir()         {}
