package der

// Scope is the active name -> Type environment. Block-like constructs run
// inside a child frame; everything written while the frame is active,
// rebindings of outer names included, disappears when it is popped.
type Scope struct {
	frames []map[string]Type
}

func NewScope() *Scope {
	return &Scope{
		frames: []map[string]Type{{}},
	}
}

func (s *Scope) Push() {
	s.frames = append(s.frames, map[string]Type{})
}

func (s *Scope) Pop() {
	if len(s.frames) == 1 {
		panic("pop of the global frame")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *Scope) Depth() int {
	return len(s.frames)
}

func (s *Scope) Lookup(name string) (Type, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if t, ok := s.frames[i][name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (s *Scope) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

func (s *Scope) Define(name string, t Type) {
	s.frames[len(s.frames)-1][name] = t
}

// Assign rebinds name in the innermost frame, shadowing outer bindings
// until the frame is popped.
func (s *Scope) Assign(name string, t Type) {
	s.Define(name, t)
}

// Capture returns a scope whose global frame holds the bindings visible now.
// Later writes to s do not show through it.
func (s *Scope) Capture() *Scope {
	return &Scope{
		frames: []map[string]Type{s.Snapshot()},
	}
}

// Snapshot flattens the visible bindings.
func (s *Scope) Snapshot() map[string]Type {
	out := make(map[string]Type)
	for _, frame := range s.frames {
		for name, t := range frame {
			out[name] = t
		}
	}
	return out
}
