package der_test

import (
	"bytes"
	"der"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, source string) (*der.Checker, []der.IR, error) {
	t.Helper()
	stmts := parseProgram(t, source)
	c := der.NewChecker()
	nodes, err := c.Run(stmts)
	return c, nodes, err
}

func mustRun(t *testing.T, source string) (*der.Checker, []string) {
	t.Helper()
	c, nodes, err := run(t, source)
	require.NoError(t, err)
	values := make([]string, 0, len(nodes))
	for _, n := range nodes {
		values = append(values, n.Value())
	}
	return c, values
}

func compilationError(t *testing.T, source string) *der.CompilationError {
	t.Helper()
	_, _, err := run(t, source)
	var ce *der.CompilationError
	require.ErrorAs(t, err, &ce, "source %q", source)
	return ce
}

func TestIntegerVariable(t *testing.T) {
	c, values := mustRun(t, "dir a: ra9m = 5;")
	a, ok := c.Scope.Lookup("a")
	require.True(t, ok)
	assert.IsType(t, &der.Integer{}, a)
	assert.Equal(t, []string{"int a = 5"}, values)
}

func TestFunctionThenCall(t *testing.T) {
	_, nodes, err := run(t, "dalaton f(a: ra9m): ra9m { rje3 a; }; f(5);")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.IsType(t, &der.IRFunction{}, nodes[0])
	assert.IsType(t, &der.IRFunctionCall{}, nodes[1])
	assert.Equal(t, "int f(int a) {\n\treturn a;\n}", nodes[0].Value())
	assert.Equal(t, "f(5)", nodes[1].Value())
}

func TestInconsistentVariableType(t *testing.T) {
	ce := compilationError(t, `dir a: ra9m = "x";`)
	assert.Equal(t, der.TypeMismatchError, ce.Kind)
	assert.Contains(t, ce.Msg, "ra9m")
	assert.Contains(t, ce.Msg, "ktba")
	assert.Equal(t, 1, ce.Pos.Line)
	assert.Equal(t, 1, ce.Pos.Column)
	assert.Equal(t, `test.der:1:1: error: inconsistent variable type, var is ra9m, value is ktba`, ce.Error())
}

func TestRedefinition(t *testing.T) {
	ce := compilationError(t, "dir a: ra9m = 1; dir a: ra9m = 2;")
	assert.Equal(t, der.ScopeError, ce.Kind)
	assert.Equal(t, "identifier 'a' already defined", ce.Msg)
	assert.Equal(t, 18, ce.Pos.Column)

	ce = compilationError(t, "jism P { x: ra9m }; ti3dad P { A };")
	assert.Equal(t, der.ScopeError, ce.Kind)
	assert.Contains(t, ce.Msg, "already defined")

	ce = compilationError(t, "dir P: ra9m = 1; jism P { x: ra9m };")
	assert.Equal(t, der.ScopeError, ce.Kind)
}

func TestStructInstanceVariable(t *testing.T) {
	c, values := mustRun(t, "jism P { x: ra9m; y: ra9m; }; dir w: P = jadid P{x:1,y:2};")
	w, ok := c.Scope.Lookup("w")
	require.True(t, ok)
	require.IsType(t, &der.Struct{}, w)
	assert.Equal(t, "P", w.(*der.Struct).Name)
	assert.Equal(t, []string{
		"struct P {\n\tint x;\n\tint y;\n}",
		"struct P w = {.x = 1, .y = 2}",
	}, values)
}

func TestScopeRestoredAfterConstructs(t *testing.T) {
	c, _ := mustRun(t, `
dalaton f(a: ra9m) { dir b: ra9m = a; };
lkola i: 0...3 { dir inner: ra9m = i; };
f(1);
`)
	assert.True(t, c.Scope.Has("f"))
	for _, name := range []string{"a", "b", "i", "inner"} {
		assert.False(t, c.Scope.Has(name), name)
	}
	assert.Equal(t, 1, c.Scope.Depth())

	mustRun(t, `
dalaton f(a: ra9m) { dir b: ra9m = a; };
dir b: ktba = "redeclared after the body";
dir a: bool = sa7i7;
`)
}

func TestIfBranchesShareTheEnclosingScope(t *testing.T) {
	_, values := mustRun(t, `
dir c: bool = sa7i7;
ila c { dir z: ra9m = 1; } awla { dir y: ra9m = 2; };
z = y;
`)
	assert.Equal(t, "if(c) {\n\tint z = 1;\n} else {\n\tint y = 2;\n}", values[1])

	ce := compilationError(t, "ila 1 { };")
	assert.Equal(t, der.TypeMismatchError, ce.Kind)
	assert.Contains(t, ce.Msg, "if statement condition must be a boolean")
}

func TestEnumMemberResolution(t *testing.T) {
	c, values := mustRun(t, "ti3dad Cmp { AAA, BBB, CCC }; dir c: Cmp = Cmp.AAA;")
	assert.Equal(t, []string{
		"enum Cmp {\n\tCmp_AAA,\n\tCmp_BBB,\n\tCmp_CCC,\n}",
		"enum Cmp c = Cmp_AAA",
	}, values)

	member := func(name string) der.Type {
		return &der.DotOp{Left: &der.Identifier{Name: "Cmp"}, Right: &der.Identifier{Name: name}}
	}
	aaa, err := c.ResolveExprType(member("AAA"), der.Pos{})
	require.NoError(t, err)
	require.IsType(t, &der.EnumInstance{}, aaa)
	again, err := c.ResolveExprType(member("AAA"), der.Pos{})
	require.NoError(t, err)
	bbb, err := c.ResolveExprType(member("BBB"), der.Pos{})
	require.NoError(t, err)
	assert.True(t, aaa.IsSame(again))
	assert.False(t, aaa.IsSame(bbb))

	_, err = c.ResolveExprType(member("DDD"), der.Pos{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'DDD' is not a member of enum Cmp")

	ce := compilationError(t, "ti3dad E { A, B, A };")
	assert.Equal(t, der.ScopeError, ce.Kind)
	assert.Contains(t, ce.Msg, "duplicate member 'A'")
}

func TestEnumAccessLowering(t *testing.T) {
	_, values := mustRun(t, "ti3dad Cmp { AAA, BBB }; dir c: Cmp = Cmp.AAA; dir d: Cmp = c.BBB;")
	require.Len(t, values, 3)
	assert.Equal(t, "enum Cmp d = Cmp_BBB", values[2])

	_, values = mustRun(t, `
dalaton f() { ti3dad E { A, B }; };
jism S { x: ra9m; };
dir E: S = jadid S{x: 1};
dir y: ra9m = E.x;
`)
	require.Len(t, values, 4)
	assert.Equal(t, "int y = E.x", values[3])
}

func TestArityMismatch(t *testing.T) {
	ce := compilationError(t, "dalaton f(a: ra9m, b: ra9m) {}; f(1);")
	assert.Equal(t, der.ShapeError, ce.Kind)
	assert.Contains(t, ce.Msg, "you supplied 1 argument, function has 2 arguments")

	ce = compilationError(t, "dalaton f(a: ra9m, b: ra9m) {}; f(1, 2, 3);")
	assert.Equal(t, der.ShapeError, ce.Kind)
	assert.Contains(t, ce.Msg, "you supplied 3 arguments, function has 2 arguments")
}

func TestArgumentMismatch(t *testing.T) {
	ce := compilationError(t, `dalaton f(a: ra9m) {}; f("s");`)
	assert.Equal(t, der.TypeMismatchError, ce.Kind)
	assert.Contains(t, ce.Msg, "argument 'a' is ra9m")

	ce = compilationError(t, "dir a: ra9m = 1; a(1);")
	assert.Equal(t, der.ShapeError, ce.Kind)
	assert.Equal(t, "'ra9m' is not a function", ce.Msg)
}

func TestPipeRewriteEquivalence(t *testing.T) {
	const prelude = `dalaton f(a: ktba, b: ra9m): ra9m { rje3 b; }; dir x: ra9m = 2; `
	_, piped := mustRun(t, prelude+`x |> f("s");`)
	_, direct := mustRun(t, prelude+`f("s", x);`)
	assert.Equal(t, direct, piped)
	assert.Equal(t, `f("s",x)`, piped[2])

	_, grouped := mustRun(t, prelude+`x |> (f("s"));`)
	assert.Equal(t, direct, grouped)

	pipedErr := compilationError(t, prelude+`"y" |> f("s");`)
	directErr := compilationError(t, prelude+`f("s", "y");`)
	assert.Equal(t, directErr.Kind, pipedErr.Kind)
	assert.Equal(t, directErr.Msg, pipedErr.Msg)

	ce := compilationError(t, prelude+"x |> f;")
	assert.Equal(t, der.ShapeError, ce.Kind)
	assert.Contains(t, ce.Msg, "right hand of the pipe operator")
}

func TestGenericInstantiation(t *testing.T) {
	c, values := mustRun(t, `
dalaton id<T>(x: T): T { rje3 x; };
dir a: ra9m = id(5);
dir s: ktba = id("s");
dir b: ra9m = id(7);
`)
	assert.Equal(t, 2, c.Instances.Len())
	assert.Equal(t, []string{
		"int id_e(int x) {\n\treturn x;\n}",
		"const char* id_e_2(const char* x) {\n\treturn x;\n}",
		"int a = id_e(5)",
		`const char* s = id_e_2("s")`,
		"int b = id_e(7)",
	}, values)
	assert.True(t, c.Scope.Has("id_e"))
	assert.True(t, c.Scope.Has("id_e_2"))
}

func TestGenericCallsInsideGenericBodies(t *testing.T) {
	_, values := mustRun(t, `
dalaton id<T>(x: T): T { rje3 x; };
dalaton wrap<U>(x: U): U { rje3 id(x); };
dir a: ra9m = wrap(1);
dir s: ktba = wrap("s");
`)
	require.Len(t, values, 6)
	assert.Equal(t, "int wrap_e(int x) {\n\treturn id_e(x);\n}", values[2])
	assert.Equal(t, "const char* wrap_e_2(const char* x) {\n\treturn id_e_2(x);\n}", values[3])
}

func TestGenericPipe(t *testing.T) {
	_, values := mustRun(t, `
dalaton twice<T>(n: ra9m, x: T): T { rje3 x; };
dir s: ktba = "a" |> twice(2);
`)
	assert.Equal(t, `const char* s = twice_e(2,"a")`, values[1])
}

func TestGenericConflict(t *testing.T) {
	ce := compilationError(t, `dalaton pair<T>(a: T, b: T) {}; pair(1, "s");`)
	assert.Equal(t, der.GenericConflictError, ce.Kind)
	assert.Equal(t, "generic 'T' deduced to 'ra9m', but you supplied a 'ktba'", ce.Msg)

	ce = compilationError(t, `dalaton make<T>(): walo {}; make();`)
	assert.Equal(t, der.GenericConflictError, ce.Kind)
	assert.Contains(t, ce.Msg, "cannot deduce generic 'T'")
}

func TestGenericBodyCheckedPerSpecialization(t *testing.T) {
	mustRun(t, `dalaton first<T>(x: T): ra9m { rje3 x; }; first(1);`)

	ce := compilationError(t, `dalaton first<T>(x: T): ra9m { rje3 x; }; first("s");`)
	assert.Equal(t, der.TypeMismatchError, ce.Kind)
	assert.Contains(t, ce.Msg, "returns ktba, but its declared return type is ra9m")

	_, values := mustRun(t, `dalaton local<T>(x: T): T { dir y: T = x; rje3 y; }; local(1.5);`)
	assert.Equal(t, "double local_e(double x) {\n\tdouble y = x;\n\treturn y;\n}", values[0])
}

func TestGenericBodySeesDeclarationScope(t *testing.T) {
	ce := compilationError(t, `
dalaton g<T>(x: T): ra9m { rje3 y; };
dalaton h(): ra9m { dir y: ra9m = 1; rje3 g(y); };
`)
	assert.Equal(t, der.ScopeError, ce.Kind)
	assert.Equal(t, "'y' is not defined", ce.Msg)

	ce = compilationError(t, "dalaton g<T>(x: T): ra9m { rje3 late; }; dir late: ra9m = 1; g(1);")
	assert.Equal(t, "'late' is not defined", ce.Msg)

	_, values := mustRun(t, `
dalaton g<T>(x: T): ra9m { dir tmp: ra9m = 1; rje3 tmp; };
dalaton h(): ra9m { dir tmp: ra9m = 2; rje3 g(tmp); };
`)
	assert.Equal(t, []string{
		"int g_e(int x) {\n\tint tmp = 1;\n\treturn tmp;\n}",
		"int h() {\n\tint tmp = 2;\n\treturn g_e(tmp);\n}",
	}, values)

	mustRun(t, "dalaton r<T>(x: T): T { rje3 r(x); }; dir a: ra9m = r(1);")
}

func TestRecursion(t *testing.T) {
	mustRun(t, `
dalaton fact(n: ra9m): ra9m {
	ila n < 2 { rje3 1; };
	rje3 n * fact(n - 1);
};
dir x: ra9m = fact(5);
`)
}

func TestReturnMismatch(t *testing.T) {
	ce := compilationError(t, `dalaton f(): ra9m { rje3 "s"; };`)
	assert.Equal(t, der.TypeMismatchError, ce.Kind)
	assert.Equal(t, "function 'f' returns ktba, but its declared return type is ra9m", ce.Msg)

	mustRun(t, "dalaton g(): ra9m { dir a: ra9m = 1; };")
}

func TestStructInstanceErrors(t *testing.T) {
	const prelude = "jism P { x: ra9m; y: ra9m }; "
	tests := []struct {
		source string
		kind   der.ErrorKind
		msg    string
	}{
		{"dir w: P = jadid P{y: 1, x: 2};", der.ScopeError, "member 'y' doesn't exist in struct 'P' at position 1"},
		{"dir w: P = jadid P{x: 1};", der.ShapeError, "struct 'P' has 2 members, you initialized 1"},
		{`dir w: P = jadid P{x: 1, y: "s"};`, der.TypeMismatchError, "mismatched types for member 'y'"},
		{"dir w: P = jadid Q{x: 1};", der.ScopeError, "struct 'Q' is not defined"},
		{"dir a: ra9m = 1; dir w: P = jadid a{x: 1};", der.ScopeError, "'a' is not a struct"},
	}
	for _, test := range tests {
		ce := compilationError(t, prelude+test.source)
		assert.Equal(t, test.kind, ce.Kind, test.source)
		assert.Contains(t, ce.Msg, test.msg, test.source)
	}
}

func TestMemberAccess(t *testing.T) {
	_, values := mustRun(t, "jism P { x: ra9m }; dir w: P = jadid P{x: 1}; dir v: ra9m = w.x;")
	assert.Equal(t, "int v = w.x", values[2])

	ce := compilationError(t, "jism P { x: ra9m }; dir w: P = jadid P{x: 1}; w.y;")
	assert.Equal(t, der.ScopeError, ce.Kind)
	assert.Contains(t, ce.Msg, "'y' is not a member of struct P")

	ce = compilationError(t, "dir a: ra9m = 1; a.x;")
	assert.Equal(t, der.ShapeError, ce.Kind)
	assert.Contains(t, ce.Msg, "dot operator only valid on structs and enums")

	ce = compilationError(t, "ti3dad E { A }; E.(1);")
	assert.Equal(t, der.ShapeError, ce.Kind)
	assert.Contains(t, ce.Msg, "must be an identifier")
}

func TestSubscripts(t *testing.T) {
	_, values := mustRun(t, `
dir xs: [ra9m; 3] = [1, 2, 3];
dir y: ra9m = xs[0];
dir s: ktba = "abc";
dir ch: harf = s[1];
`)
	assert.Equal(t, "int xs[3] = {1,2,3}", values[0])
	assert.Equal(t, "int y = xs[0]", values[1])
	assert.Equal(t, "char ch = s[1]", values[3])

	ce := compilationError(t, `dir xs: [ra9m; 1] = [1]; xs["a"];`)
	assert.Equal(t, der.TypeMismatchError, ce.Kind)
	assert.Contains(t, ce.Msg, "subscript index must be an integer")

	ce = compilationError(t, "dir y: ra9m = 1; y[0];")
	assert.Equal(t, der.ShapeError, ce.Kind)
	assert.Contains(t, ce.Msg, "subscript operator only valid on arrays and strings")
}

func TestArrayLiterals(t *testing.T) {
	ce := compilationError(t, `dir xs: [ra9m; 2] = [1, "a"];`)
	assert.Equal(t, der.TypeMismatchError, ce.Kind)
	assert.Contains(t, ce.Msg, "array elements must share a type")

	ce = compilationError(t, "dir xs: [ra9m; 2] = [1, 2, 3];")
	assert.Equal(t, der.TypeMismatchError, ce.Kind)
	assert.Contains(t, ce.Msg, "inconsistent variable type, var is [ra9m; 2], value is [ra9m; 3]")

	ce = compilationError(t, "dir xs: [ra9m; 0] = [];")
	assert.Equal(t, der.ShapeError, ce.Kind)
}

func TestUndefinedNames(t *testing.T) {
	tests := []struct {
		source string
		msg    string
	}{
		{"b = 1;", "'b' is not defined"},
		{"dir x: ra9m = b;", "'b' is not defined"},
		{"dir x: Q = 1;", "type 'Q' not defined"},
		{"dir a: ra9m = 1; dir x: a = 1;", "'a' is not a type"},
		{"dalaton f(p: Q) {};", "type 'Q' not defined"},
	}
	for _, test := range tests {
		ce := compilationError(t, test.source)
		assert.Equal(t, der.ScopeError, ce.Kind, test.source)
		assert.Equal(t, test.msg, ce.Msg, test.source)
	}
}

func TestAssignment(t *testing.T) {
	_, values := mustRun(t, "dir a: ra9m = 1; a = a + 2;")
	assert.Equal(t, "a = a + 2", values[1])

	ce := compilationError(t, `dir a: ra9m = 1; a = "s";`)
	assert.Equal(t, der.TypeMismatchError, ce.Kind)
	assert.Equal(t, "cannot assign ktba to 'a' of type ra9m", ce.Msg)

	ce = compilationError(t, "dir a: ra9m = 1; 1 = a;")
	assert.Equal(t, der.ShapeError, ce.Kind)
}

func TestRangedFor(t *testing.T) {
	_, values := mustRun(t, "lkola i: 0...3 { dir x: ra9m = i; };")
	assert.Equal(t, "for(int i = 0; i<3; ++i) {\n\tint x = i;\n}", values[0])

	ce := compilationError(t, `lkola i: "a"...3 { };`)
	assert.Contains(t, ce.Msg, "range start")
	ce = compilationError(t, `lkola i: 0..."a" { };`)
	assert.Contains(t, ce.Msg, "range end")
}

func TestShortIf(t *testing.T) {
	_, values := mustRun(t, "dir c: bool = sa7i7; dir a: ra9m = 0; c ?? a = 5;")
	assert.Equal(t, []string{"int c = 1", "int a = 0", "if(c) a = 5"}, values)

	ce := compilationError(t, "dir a: ra9m = 0; 1 ?? a = 5;")
	assert.Equal(t, der.TypeMismatchError, ce.Kind)
	assert.Contains(t, ce.Msg, "condition of '??' must be a boolean")

	ce = compilationError(t, "sa7i7 ?? dir x: ra9m = 1;")
	assert.Equal(t, der.ShapeError, ce.Kind)
	assert.Contains(t, ce.Msg, "body of '??'")
}

func TestOperators(t *testing.T) {
	ce := compilationError(t, `dir a: ra9m = 1 + "s";`)
	assert.Equal(t, der.TypeMismatchError, ce.Kind)
	assert.Contains(t, ce.Msg, "binary operation not supported by different operand types")

	ce = compilationError(t, `dir b: bool = 1 < "s";`)
	assert.Equal(t, der.TypeMismatchError, ce.Kind)

	_, values := mustRun(t, "dir b: bool = (1 < 2) && !khata2; dir n: ra9m = -(2 * 3);")
	assert.Equal(t, "int b = (1 < 2) && !0", values[0])
	assert.Equal(t, "int n = -(2 * 3)", values[1])
}

func TestCastsAndPointers(t *testing.T) {
	_, values := mustRun(t, `
dir d: fasila = 1 kant fasila;
dir a: ra9m = 1;
dir p: *ra9m = &a;
dir b: ra9m = *p;
`)
	assert.Equal(t, []string{"double d = (double)1", "int a = 1", "int* p = &a", "int b = *p"}, values)

	ce := compilationError(t, "dir s: ktba = 1 kant ktba;")
	assert.Equal(t, der.TypeMismatchError, ce.Kind)
	assert.Equal(t, "cannot cast ra9m to ktba", ce.Msg)

	ce = compilationError(t, "dir a: ra9m = 1; dir b: ra9m = *a;")
	assert.Equal(t, der.ShapeError, ce.Kind)
}

func TestUnsupportedExpression(t *testing.T) {
	c := der.NewChecker()
	_, err := c.ResolveExprType(&der.If{Cond: &der.Bool{}}, der.Pos{Line: 3, Column: 4})
	var ce *der.CompilationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, der.InternalError, ce.Kind)
	assert.Equal(t, 3, ce.Pos.Line)
}

func TestRunAcrossCalls(t *testing.T) {
	c := der.NewChecker()
	_, err := c.Run(parseProgram(t, "dalaton id<T>(x: T): T { rje3 x; };"))
	require.NoError(t, err)
	nodes, err := c.Run(parseProgram(t, "dir a: ra9m = id(1);"))
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "int a = id_e(1)", nodes[0].Value())
	assert.Equal(t, "int id_e(int x) {\n\treturn x;\n}", nodes[1].Value())
}

func TestTraceLogger(t *testing.T) {
	var buf bytes.Buffer
	c := der.NewChecker(der.WithLogger(log.New(&buf, "", 0)))
	_, err := c.Run(parseProgram(t, "dir a: ra9m = 5;"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "test.der:1:1: check variable a")
}
