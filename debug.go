package der

import (
	"io"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"
)

var astDumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
	SortKeys:                true,
}

// DumpAST writes the parsed statements as a nested Go value dump.
func DumpAST(w io.Writer, stmts []Stmt) {
	for _, s := range stmts {
		astDumper.Fdump(w, s.Node)
	}
}

// DumpScope writes every visible binding as a YAML mapping from name to type.
func DumpScope(w io.Writer, scope *Scope) error {
	bindings := make(map[string]string)
	for name, t := range scope.Snapshot() {
		bindings[name] = t.String()
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(bindings); err != nil {
		return err
	}
	return enc.Close()
}
