package der

import (
	"io"
	"log"
	"sort"

	"github.com/hashicorp/go-set/v3"
)

// Checker validates statements against the language's static rules and
// lowers them to IR. It stops at the first violation.
type Checker struct {
	Scope     *Scope
	Instances *InstanceCache

	// generics is the generics scope of the specialization being checked.
	generics map[string]Type
	// returnType is the type of the last rje3 seen in the body being checked.
	returnType Type
	// typeNames keeps every struct and enum ever declared; lowering reads it
	// after the frames that declared them are gone.
	typeNames map[string]Type
	// calls maps each generic call site to the specialization it resolved to.
	calls map[siteKey]*Instance
	// members maps each enum member access to the member it resolved to.
	members map[siteKey]*EnumInstance
	// declScopes holds, per generic function, the bindings visible where it
	// was declared. Its specializations are checked against them.
	declScopes map[*Function]*Scope
	// within is the specialization whose body is being checked or lowered.
	within *Instance
	// lowerGenerics binds generic parameter names while an instance lowers.
	lowerGenerics map[string]Type

	genericDecls map[string]*FunctionDecl
	emitted      map[*Instance]bool

	log *log.Logger
}

// siteKey tells apart the same AST node inside different specializations of
// the generic function that contains it.
type siteKey struct {
	site   Node
	within *Instance
}

type CheckerOption func(*Checker)

// WithLogger routes the checker's trace output to l.
func WithLogger(l *log.Logger) CheckerOption {
	return func(c *Checker) {
		c.log = l
	}
}

func NewChecker(opts ...CheckerOption) *Checker {
	c := &Checker{
		Scope:        NewScope(),
		Instances:    NewInstanceCache(),
		typeNames:    make(map[string]Type),
		calls:        make(map[siteKey]*Instance),
		members:      make(map[siteKey]*EnumInstance),
		declScopes:   make(map[*Function]*Scope),
		genericDecls: make(map[string]*FunctionDecl),
		emitted:      make(map[*Instance]bool),
		log:          log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run checks every statement, then lowers them. Bindings made by the first
// pass stay in the checker's scope, so Run can be called again with more
// statements of the same unit.
func (c *Checker) Run(stmts []Stmt) ([]IR, error) {
	for _, stmt := range stmts {
		if err := c.CheckStatement(stmt.Node.DeclaredType(), stmt.Pos); err != nil {
			return nil, err
		}
	}
	out := make([]IR, 0, len(stmts))
	for _, stmt := range stmts {
		out = append(out, c.lowerTopLevel(stmt.Node)...)
	}
	// specializations of generic functions lowered by an earlier Run
	names := make([]string, 0, len(c.genericDecls))
	for name := range c.genericDecls {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, c.lowerInstances(c.genericDecls[name])...)
	}
	return out, nil
}

func (c *Checker) CheckStatement(t Type, pos Pos) error {
	c.log.Printf("%s: check %s", pos, t)
	switch t := t.(type) {
	case *Variable:
		return c.checkVar(t, pos)
	case *If:
		return c.checkIf(t, pos)
	case *Function:
		return c.checkFn(t, pos)
	case *Fcall:
		_, err := c.checkCall(t, pos)
		return err
	case *Struct:
		return c.checkStruct(t, pos)
	case *Enum:
		return c.checkEnum(t, pos)
	case *SetOp:
		return c.checkSet(t, pos)
	case *RangedFor:
		return c.checkFor(t, pos)
	case *SmolIf:
		return c.checkSmolIf(t, pos)
	case *Return:
		return c.checkReturn(t, pos)
	}
	_, err := c.ResolveExprType(t, pos)
	return err
}

func (c *Checker) ResolveExprType(t Type, pos Pos) (Type, error) {
	c.log.Printf("%s: resolve %s", pos, t)
	switch t := t.(type) {
	case *Integer, *Double, *String, *Bool, *Character, *Void,
		*Array, *Pointer, *Struct, *Enum, *EnumInstance, *Function:
		return t, nil
	case *ArrayLiteral:
		return c.checkArrayLiteral(t, pos)
	case *BinaryOp:
		return c.checkBinary(t, pos)
	case *LogicalOp:
		return c.checkLogical(t, pos)
	case *UnaryOp:
		return c.checkUnary(t, pos)
	case *Identifier:
		return c.checkIdentifier(t.Name, pos)
	case *DotOp:
		return c.checkDot(t, pos)
	case *Subscript:
		return c.checkSubscript(t, pos)
	case *PipeOp:
		return c.checkPipe(t, pos)
	case *StructInstance:
		return c.checkStructInstance(t, pos)
	case *Fcall:
		return c.checkCall(t, pos)
	case *Cast:
		return c.checkCast(t, pos)
	case *AddrOf:
		operand, err := c.ResolveExprType(t.Operand, pos)
		if err != nil {
			return nil, err
		}
		return &Pointer{Elem: operand}, nil
	case *Deref:
		operand, err := c.ResolveExprType(t.Operand, pos)
		if err != nil {
			return nil, err
		}
		p, ok := operand.(*Pointer)
		if !ok {
			return nil, NewError(ShapeError, pos, "cannot dereference %s", operand)
		}
		return p.Elem, nil
	}
	return nil, NewError(InternalError, pos, "%s is not an expression", t)
}

// resolveTypeExpr turns a type written in the source into the type it
// names. Identifiers in params name generic parameters.
func (c *Checker) resolveTypeExpr(t Type, pos Pos, params *set.Set[string]) (Type, error) {
	switch t := t.(type) {
	case *Identifier:
		if params != nil && params.Contains(t.Name) {
			return &Generic{Name: t.Name}, nil
		}
		if deduced, ok := c.generics[t.Name]; ok {
			return deduced, nil
		}
		bound, ok := c.Scope.Lookup(t.Name)
		if !ok {
			return nil, NewError(ScopeError, pos, "type '%s' not defined", t.Name)
		}
		switch b := bound.(type) {
		case *Struct:
			if b.Name == t.Name {
				return b, nil
			}
		case *Enum:
			if b.Name == t.Name {
				return b, nil
			}
		}
		return nil, NewError(ScopeError, pos, "'%s' is not a type", t.Name)
	case *Array:
		elem, err := c.resolveTypeExpr(t.Elem, pos, params)
		if err != nil {
			return nil, err
		}
		return &Array{Elem: elem, Size: t.Size}, nil
	case *Pointer:
		elem, err := c.resolveTypeExpr(t.Elem, pos, params)
		if err != nil {
			return nil, err
		}
		return &Pointer{Elem: elem}, nil
	}
	return t, nil
}

func (c *Checker) checkVar(v *Variable, pos Pos) error {
	if c.Scope.Has(v.Name) {
		return NewError(ScopeError, pos, "identifier '%s' already defined", v.Name)
	}
	declared, err := c.resolveTypeExpr(v.Declared, pos, nil)
	if err != nil {
		return err
	}
	actual, err := c.ResolveExprType(v.Actual, pos)
	if err != nil {
		return err
	}
	if !declared.IsSame(actual) {
		return NewError(TypeMismatchError, pos, "inconsistent variable type, var is %s, value is %s", declared, actual)
	}
	c.Scope.Define(v.Name, declared)
	return nil
}

// checkIf checks both branches in the enclosing frame; declarations made in
// a branch stay visible after the if.
func (c *Checker) checkIf(t *If, pos Pos) error {
	for _, s := range t.Then {
		if err := c.CheckStatement(s.Type, s.Pos); err != nil {
			return err
		}
	}
	for _, s := range t.Else {
		if err := c.CheckStatement(s.Type, s.Pos); err != nil {
			return err
		}
	}
	cond, err := c.ResolveExprType(t.Cond, pos)
	if err != nil {
		return err
	}
	if cond.Kind() != KindBool {
		return NewError(TypeMismatchError, pos, "if statement condition must be a boolean, got %s", cond)
	}
	return nil
}

func (c *Checker) signature(fn *Function, pos Pos) (*Function, error) {
	generics := set.From(fn.Generics)
	params := make([]Param, 0, len(fn.Params))
	for _, p := range fn.Params {
		typ, err := c.resolveTypeExpr(p.Type, p.Pos, generics)
		if err != nil {
			return nil, err
		}
		params = append(params, Param{Name: p.Name, Type: typ, Pos: p.Pos})
	}
	var ret Type = &Void{}
	if fn.Return != nil {
		var err error
		ret, err = c.resolveTypeExpr(fn.Return, pos, generics)
		if err != nil {
			return nil, err
		}
	}
	return &Function{
		Name:     fn.Name,
		Generics: fn.Generics,
		Params:   params,
		Body:     fn.Body,
		Return:   ret,
	}, nil
}

// checkFn registers the function before its body is checked, so bodies can
// recurse. Generic bodies are checked per specialization at call sites.
func (c *Checker) checkFn(fn *Function, pos Pos) error {
	sig, err := c.signature(fn, pos)
	if err != nil {
		return err
	}
	c.Scope.Define(sig.Name, sig)
	if len(sig.Generics) > 0 {
		c.declScopes[sig] = c.Scope.Capture()
		c.log.Printf("%s: %s deferred to its call sites", pos, sig)
		return nil
	}
	c.Scope.Push()
	defer c.Scope.Pop()
	for _, p := range sig.Params {
		c.Scope.Define(p.Name, p.Type)
	}
	return c.checkBody(sig, pos)
}

func (c *Checker) checkBody(sig *Function, pos Pos) error {
	saved := c.returnType
	c.returnType = nil
	defer func() {
		c.returnType = saved
	}()
	for _, s := range sig.Body {
		if err := c.CheckStatement(s.Type, s.Pos); err != nil {
			return err
		}
	}
	if c.returnType != nil && sig.Return != nil && !sig.Return.IsSame(c.returnType) {
		return NewError(TypeMismatchError, pos, "function '%s' returns %s, but its declared return type is %s", sig.Name, c.returnType, sig.Return)
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func (c *Checker) checkCall(fc *Fcall, pos Pos) (Type, error) {
	callee, err := c.ResolveExprType(fc.Callee, pos)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(*Function)
	if !ok {
		return nil, NewError(ShapeError, pos, "'%s' is not a function", callee)
	}
	if len(fc.Args) != len(fn.Params) {
		return nil, NewError(ShapeError, pos, "function call to '%s' arguments don't match, you supplied %d %s, function has %d %s",
			fn.Name, len(fc.Args), plural(len(fc.Args), "argument"), len(fn.Params), plural(len(fn.Params), "argument"))
	}
	args := make([]Type, 0, len(fc.Args))
	for _, arg := range fc.Args {
		argType, err := c.ResolveExprType(arg, pos)
		if err != nil {
			return nil, err
		}
		args = append(args, argType)
	}

	var inst *Instance
	if len(fn.Generics) == 0 {
		err = c.checkArgs(fn, args, pos)
	} else {
		inst, err = c.instantiate(fn, args, pos)
	}
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return fn.Return, nil
	}
	c.Scope.Define(inst.Name, inst.Signature)
	if fc.Site != nil {
		c.calls[siteKey{site: fc.Site, within: c.within}] = inst
	}
	return inst.Signature.Return, nil
}

func (c *Checker) checkArgs(fn *Function, args []Type, pos Pos) error {
	for i, param := range fn.Params {
		if !param.Type.IsSame(args[i]) {
			return NewError(TypeMismatchError, pos, "mismatched argument type, argument '%s' is %s, but you supplied %s", param.Name, param.Type, args[i])
		}
	}
	return nil
}

// instantiate deduces the generic parameters of fn from args and returns
// the specialization for them, checking its body the first time it is
// built. The body sees the bindings of fn's declaration site, never the
// caller's.
func (c *Checker) instantiate(fn *Function, args []Type, pos Pos) (*Instance, error) {
	generics := set.From(fn.Generics)
	deduced := make(map[string]Type)
	mangled := fn.Name
	params := make([]Param, 0, len(fn.Params))
	for i, param := range fn.Params {
		g, isGeneric := param.Type.(*Generic)
		switch {
		case isGeneric && generics.Contains(g.Name):
			prev, seen := deduced[g.Name]
			if !seen {
				deduced[g.Name] = args[i]
				mangled += "_e"
			} else if !prev.IsSame(args[i]) {
				return nil, NewError(GenericConflictError, pos, "generic '%s' deduced to '%s', but you supplied a '%s'", g.Name, prev, args[i])
			}
			params = append(params, Param{Name: param.Name, Type: deduced[g.Name], Pos: param.Pos})
		case !param.Type.IsSame(args[i]):
			return nil, NewError(TypeMismatchError, pos, "mismatched argument type, argument '%s' is %s, but you supplied %s", param.Name, param.Type, args[i])
		default:
			params = append(params, param)
		}
	}
	typeArgs := make([]Type, 0, len(fn.Generics))
	for _, g := range fn.Generics {
		d, ok := deduced[g]
		if !ok {
			return nil, NewError(GenericConflictError, pos, "cannot deduce generic '%s' of '%s' from the arguments", g, fn.Name)
		}
		typeArgs = append(typeArgs, d)
	}
	if inst, ok := c.Instances.Lookup(fn.Name, typeArgs); ok {
		return inst, nil
	}
	inst := c.Instances.Add(fn, typeArgs, mangled, params, substitute(fn.Return, deduced))
	c.log.Printf("%s: instantiated %s as %s", pos, fn.Name, inst.Signature)

	base, ok := c.declScopes[fn]
	if !ok {
		base = c.Scope
	}
	body := base.Capture()
	body.Push()
	for _, p := range inst.Signature.Params {
		body.Define(p.Name, p.Type)
	}

	savedScope, savedGenerics, savedWithin := c.Scope, c.generics, c.within
	c.Scope, c.generics, c.within = body, deduced, inst
	err := c.checkBody(inst.Signature, pos)
	c.Scope, c.generics, c.within = savedScope, savedGenerics, savedWithin
	if err != nil {
		c.Instances.Remove(inst)
		return nil, err
	}
	return inst, nil
}

func (c *Checker) checkStruct(s *Struct, pos Pos) error {
	if c.Scope.Has(s.Name) {
		return NewError(ScopeError, pos, "'%s' already defined", s.Name)
	}
	seen := set.New[string](len(s.Members))
	members := make([]StructMember, 0, len(s.Members))
	for _, m := range s.Members {
		if !seen.Insert(m.Name) {
			return NewError(ScopeError, pos, "duplicate member '%s' in struct '%s'", m.Name, s.Name)
		}
		typ, err := c.resolveTypeExpr(m.Type, pos, nil)
		if err != nil {
			return err
		}
		members = append(members, StructMember{Name: m.Name, Type: typ})
	}
	st := &Struct{Name: s.Name, Members: members}
	c.Scope.Define(s.Name, st)
	c.typeNames[s.Name] = st
	return nil
}

func (c *Checker) checkEnum(e *Enum, pos Pos) error {
	if c.Scope.Has(e.Name) {
		return NewError(ScopeError, pos, "'%s' already defined", e.Name)
	}
	seen := set.New[string](len(e.Members))
	for _, m := range e.Members {
		if !seen.Insert(m) {
			return NewError(ScopeError, pos, "duplicate member '%s' in enum '%s'", m, e.Name)
		}
	}
	c.Scope.Define(e.Name, e)
	c.typeNames[e.Name] = e
	return nil
}

func (c *Checker) checkSet(s *SetOp, pos Pos) error {
	target, ok := s.Target.(*Identifier)
	if !ok {
		return NewError(ShapeError, pos, "left hand of the assignment must be an identifier")
	}
	bound, ok := c.Scope.Lookup(target.Name)
	if !ok {
		return NewError(ScopeError, pos, "'%s' is not defined", target.Name)
	}
	value, err := c.ResolveExprType(s.Value, pos)
	if err != nil {
		return err
	}
	if !bound.IsSame(value) {
		return NewError(TypeMismatchError, pos, "cannot assign %s to '%s' of type %s", value, target.Name, bound)
	}
	c.Scope.Assign(target.Name, bound)
	return nil
}

func (c *Checker) checkFor(f *RangedFor, pos Pos) error {
	from, err := c.ResolveExprType(f.From, pos)
	if err != nil {
		return err
	}
	if from.Kind() != KindInteger {
		return NewError(TypeMismatchError, pos, "range start of the for loop must be an integer, got %s", from)
	}
	to, err := c.ResolveExprType(f.To, pos)
	if err != nil {
		return err
	}
	if to.Kind() != KindInteger {
		return NewError(TypeMismatchError, pos, "range end of the for loop must be an integer, got %s", to)
	}
	c.Scope.Push()
	defer c.Scope.Pop()
	c.Scope.Define(f.Var, &Integer{})
	for _, s := range f.Body {
		if err := c.CheckStatement(s.Type, s.Pos); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkSmolIf(s *SmolIf, pos Pos) error {
	cond, err := c.ResolveExprType(s.Cond, pos)
	if err != nil {
		return err
	}
	if cond.Kind() != KindBool {
		return NewError(TypeMismatchError, pos, "condition of '??' must be a boolean, got %s", cond)
	}
	switch s.Body.(type) {
	case *Variable, *Function, *Struct, *Enum, *If, *RangedFor:
		return NewError(ShapeError, pos, "body of '??' must be an expression, an assignment or a return")
	}
	return c.CheckStatement(s.Body, pos)
}

func (c *Checker) checkReturn(r *Return, pos Pos) error {
	if r.Value == nil {
		c.returnType = &Void{}
		return nil
	}
	value, err := c.ResolveExprType(r.Value, pos)
	if err != nil {
		return err
	}
	c.returnType = value
	return nil
}

func (c *Checker) checkArrayLiteral(a *ArrayLiteral, pos Pos) (Type, error) {
	if len(a.Elems) == 0 {
		return nil, NewError(ShapeError, pos, "empty array literal")
	}
	var elem Type
	for i, e := range a.Elems {
		t, err := c.ResolveExprType(e, pos)
		if err != nil {
			return nil, err
		}
		if elem == nil {
			elem = t
			continue
		}
		if !elem.IsSame(t) {
			return nil, NewError(TypeMismatchError, pos, "array elements must share a type, element %d is %s, expected %s", i, t, elem)
		}
	}
	return &Array{Elem: elem, Size: len(a.Elems)}, nil
}

// checkBinary only requires both operands to have the same kind; whether the
// operator makes sense for that kind is not checked.
func (c *Checker) checkBinary(b *BinaryOp, pos Pos) (Type, error) {
	left, err := c.ResolveExprType(b.Left, pos)
	if err != nil {
		return nil, err
	}
	right, err := c.ResolveExprType(b.Right, pos)
	if err != nil {
		return nil, err
	}
	if left.Kind() != right.Kind() {
		return nil, NewError(TypeMismatchError, pos, "binary operation not supported by different operand types, %s and %s", left, right)
	}
	return left, nil
}

func (c *Checker) checkLogical(l *LogicalOp, pos Pos) (Type, error) {
	left, err := c.ResolveExprType(l.Left, pos)
	if err != nil {
		return nil, err
	}
	right, err := c.ResolveExprType(l.Right, pos)
	if err != nil {
		return nil, err
	}
	if left.Kind() != right.Kind() {
		return nil, NewError(TypeMismatchError, pos, "logical binary operation not supported by different operand types, %s and %s", left, right)
	}
	return &Bool{}, nil
}

func (c *Checker) checkUnary(u *UnaryOp, pos Pos) (Type, error) {
	operand, err := c.ResolveExprType(u.Operand, pos)
	if err != nil {
		return nil, err
	}
	if u.Op == NOT {
		return &Bool{}, nil
	}
	return operand, nil
}

func (c *Checker) checkIdentifier(name string, pos Pos) (Type, error) {
	t, ok := c.Scope.Lookup(name)
	if !ok {
		return nil, NewError(ScopeError, pos, "'%s' is not defined", name)
	}
	return t, nil
}

func (c *Checker) checkDot(d *DotOp, pos Pos) (Type, error) {
	left, err := c.ResolveExprType(d.Left, pos)
	if err != nil {
		return nil, err
	}
	member, ok := d.Right.(*Identifier)
	if !ok {
		return nil, NewError(ShapeError, pos, "right hand of the dot operator must be an identifier")
	}
	switch l := left.(type) {
	case *Struct:
		t, ok := l.Member(member.Name)
		if !ok {
			return nil, NewError(ScopeError, pos, "'%s' is not a member of struct %s", member.Name, l.Name)
		}
		return t, nil
	case *Enum:
		if !l.HasMember(member.Name) {
			return nil, NewError(ScopeError, pos, "'%s' is not a member of enum %s", member.Name, l.Name)
		}
		inst := &EnumInstance{Enum: l, Member: member.Name}
		if d.Site != nil {
			c.members[siteKey{site: d.Site, within: c.within}] = inst
		}
		return inst, nil
	}
	return nil, NewError(ShapeError, pos, "dot operator only valid on structs and enums, got %s", left)
}

func (c *Checker) checkSubscript(s *Subscript, pos Pos) (Type, error) {
	target, err := c.ResolveExprType(s.Target, pos)
	if err != nil {
		return nil, err
	}
	var elem Type
	switch t := target.(type) {
	case *Array:
		elem = t.Elem
	case *String:
		elem = &Character{}
	default:
		return nil, NewError(ShapeError, pos, "subscript operator only valid on arrays and strings, got %s", target)
	}
	index, err := c.ResolveExprType(s.Index, pos)
	if err != nil {
		return nil, err
	}
	if index.Kind() != KindInteger {
		return nil, NewError(TypeMismatchError, pos, "subscript index must be an integer, got %s", index)
	}
	return elem, nil
}

// checkPipe checks `lhs |> f(args...)` as `f(args..., lhs)`.
func (c *Checker) checkPipe(p *PipeOp, pos Pos) (Type, error) {
	lhs, err := c.ResolveExprType(p.Left, pos)
	if err != nil {
		return nil, err
	}
	call, ok := p.Right.(*Fcall)
	if !ok {
		return nil, NewError(ShapeError, pos, "right hand of the pipe operator '|>' must be a function call")
	}
	args := make([]Type, 0, len(call.Args)+1)
	args = append(args, call.Args...)
	args = append(args, lhs)
	return c.checkCall(&Fcall{
		Callee: call.Callee,
		Args:   args,
		Site:   call.Site,
	}, pos)
}

// checkStructInstance matches initializers to members by position: the i-th
// initializer must name the i-th declared member.
func (c *Checker) checkStructInstance(s *StructInstance, pos Pos) (Type, error) {
	bound, ok := c.Scope.Lookup(s.Name)
	if !ok {
		return nil, NewError(ScopeError, pos, "struct '%s' is not defined", s.Name)
	}
	st, ok := bound.(*Struct)
	if !ok {
		return nil, NewError(ScopeError, pos, "'%s' is not a struct", s.Name)
	}
	if len(s.Fields) != len(st.Members) {
		return nil, NewError(ShapeError, pos, "struct '%s' has %d %s, you initialized %d", st.Name,
			len(st.Members), plural(len(st.Members), "member"), len(s.Fields))
	}
	for i, f := range s.Fields {
		m := st.Members[i]
		if f.Name != m.Name {
			return nil, NewError(ScopeError, pos, "member '%s' doesn't exist in struct '%s' at position %d, expected '%s'", f.Name, st.Name, i+1, m.Name)
		}
		value, err := c.ResolveExprType(f.Value, pos)
		if err != nil {
			return nil, err
		}
		if !m.Type.IsSame(value) {
			return nil, NewError(TypeMismatchError, pos, "mismatched types for member '%s', expected %s, got %s", m.Name, m.Type, value)
		}
	}
	return st, nil
}

func isScalar(t Type) bool {
	switch t.Kind() {
	case KindInteger, KindDouble, KindCharacter, KindBool:
		return true
	}
	return false
}

func (c *Checker) checkCast(cast *Cast, pos Pos) (Type, error) {
	value, err := c.ResolveExprType(cast.Value, pos)
	if err != nil {
		return nil, err
	}
	to, err := c.resolveTypeExpr(cast.To, pos, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case to.IsSame(value):
	case isScalar(to) && isScalar(value):
	case to.Kind() == KindPointer && value.Kind() == KindPointer:
	default:
		return nil, NewError(TypeMismatchError, pos, "cannot cast %s to %s", value, to)
	}
	return to, nil
}
