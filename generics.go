package der

import (
	"strconv"
	"strings"
)

// Instance is one specialization of a generic function.
type Instance struct {
	// Name is the identifier the specialization is emitted and called under.
	Name      string
	Generic   string
	TypeArgs  []Type
	Signature *Function
}

// InstanceCache maps (generic function, concrete type arguments) to the
// specialization built for them.
type InstanceCache struct {
	byKey  map[string]*Instance
	byFunc map[string][]*Instance
	// built counts specializations ever added per function; names are never reused.
	built map[string]int
}

func NewInstanceCache() *InstanceCache {
	return &InstanceCache{
		byKey:  make(map[string]*Instance),
		byFunc: make(map[string][]*Instance),
		built:  make(map[string]int),
	}
}

func instanceKey(name string, typeArgs []Type) string {
	args := make([]string, 0, len(typeArgs))
	for _, t := range typeArgs {
		args = append(args, t.String())
	}
	return name + "<" + strings.Join(args, ", ") + ">"
}

func (c *InstanceCache) Lookup(name string, typeArgs []Type) (*Instance, bool) {
	inst, ok := c.byKey[instanceKey(name, typeArgs)]
	return inst, ok
}

// Add registers a new specialization of fn. mangled is the display name
// (fn.Name plus "_e" per deduced generic); later specializations of the same
// function get an ordinal suffix so names stay unique.
func (c *InstanceCache) Add(fn *Function, typeArgs []Type, mangled string, params []Param, ret Type) *Instance {
	name := mangled
	c.built[fn.Name]++
	if n := c.built[fn.Name]; n > 1 {
		name = mangled + "_" + strconv.Itoa(n)
	}
	inst := &Instance{
		Name:     name,
		Generic:  fn.Name,
		TypeArgs: typeArgs,
		Signature: &Function{
			Name:   name,
			Params: params,
			Body:   fn.Body,
			Return: ret,
		},
	}
	c.byKey[instanceKey(fn.Name, typeArgs)] = inst
	c.byFunc[fn.Name] = append(c.byFunc[fn.Name], inst)
	return inst
}

// Remove drops a specialization whose body failed to check.
func (c *InstanceCache) Remove(inst *Instance) {
	delete(c.byKey, instanceKey(inst.Generic, inst.TypeArgs))
	insts := c.byFunc[inst.Generic]
	for i, other := range insts {
		if other == inst {
			c.byFunc[inst.Generic] = append(insts[:i:i], insts[i+1:]...)
			break
		}
	}
}

// Bindings maps each generic parameter name to the type it was deduced to.
func (inst *Instance) Bindings(generics []string) map[string]Type {
	out := make(map[string]Type, len(generics))
	for i, g := range generics {
		if i < len(inst.TypeArgs) {
			out[g] = inst.TypeArgs[i]
		}
	}
	return out
}

// Of returns the specializations of a generic function in creation order.
func (c *InstanceCache) Of(name string) []*Instance {
	return c.byFunc[name]
}

func (c *InstanceCache) Len() int {
	return len(c.byKey)
}

// substitute replaces deduced generic parameters inside t.
func substitute(t Type, deduced map[string]Type) Type {
	switch t := t.(type) {
	case *Generic:
		if d, ok := deduced[t.Name]; ok {
			return d
		}
	case *Array:
		return &Array{Elem: substitute(t.Elem, deduced), Size: t.Size}
	case *Pointer:
		return &Pointer{Elem: substitute(t.Elem, deduced)}
	}
	return t
}
