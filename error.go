package der

import "fmt"

type ErrorKind int

const (
	ScopeError ErrorKind = iota
	TypeMismatchError
	ShapeError
	GenericConflictError
	InternalError
)

func (k ErrorKind) String() string {
	switch k {
	case ScopeError:
		return "scope"
	case TypeMismatchError:
		return "type mismatch"
	case ShapeError:
		return "shape"
	case GenericConflictError:
		return "generic conflict"
	case InternalError:
		return "internal"
	}
	panic("unreachable")
}

// CompilationError is the single terminal error of the checker.
type CompilationError struct {
	Kind ErrorKind
	Pos  Pos
	Msg  string
}

func NewError(kind ErrorKind, pos Pos, format string, args ...interface{}) *CompilationError {
	return &CompilationError{
		Kind: kind,
		Pos:  pos,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("%s: error: %s", e.Pos, e.Msg)
}

type SyntaxError struct {
	Pos Pos
	Msg string
}

func NewSyntaxError(pos Pos, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{
		Pos: pos,
		Msg: fmt.Sprintf(format, args...),
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error: %s", e.Pos, e.Msg)
}
