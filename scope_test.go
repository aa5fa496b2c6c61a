package der_test

import (
	"der"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeFrames(t *testing.T) {
	s := der.NewScope()
	s.Define("a", &der.Integer{})
	assert.Equal(t, 1, s.Depth())

	s.Push()
	assert.True(t, s.Has("a"), "outer bindings stay visible")
	s.Define("b", &der.String{})
	s.Assign("a", &der.Double{})
	a, _ := s.Lookup("a")
	assert.IsType(t, &der.Double{}, a)
	assert.Len(t, s.Snapshot(), 2)

	s.Pop()
	assert.False(t, s.Has("b"))
	a, ok := s.Lookup("a")
	assert.True(t, ok)
	assert.IsType(t, &der.Integer{}, a, "rebindings made in a popped frame are discarded")
}

func TestScopePopGlobalPanics(t *testing.T) {
	assert.Panics(t, func() {
		der.NewScope().Pop()
	})
}

func TestScopeCapture(t *testing.T) {
	s := der.NewScope()
	s.Define("a", &der.Integer{})
	s.Push()
	s.Define("b", &der.String{})

	captured := s.Capture()
	assert.Equal(t, 1, captured.Depth())
	assert.True(t, captured.Has("a"))
	assert.True(t, captured.Has("b"))

	s.Define("c", &der.Bool{})
	captured.Define("d", &der.Double{})
	assert.False(t, captured.Has("c"))
	assert.False(t, s.Has("d"))
}
