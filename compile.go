package der

import (
	"bytes"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const SourceExt = ".der"

// Compile runs the whole pipeline on one source unit and returns the C text.
func Compile(filename string, source []byte, opts Options) (string, error) {
	stmts, err := ParseFile(filename, source)
	if err != nil {
		return "", err
	}
	checker := NewChecker(opts.CheckerOptions()...)
	nodes, err := checker.Run(stmts)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := Emit(&out, nodes, opts); err != nil {
		return "", err
	}
	return out.String(), nil
}

func CompileFile(path string, opts Options) (string, error) {
	filename, source, err := ReadSource(path)
	if err != nil {
		return "", err
	}
	return Compile(filename, source, opts)
}

// ReadSource reads a source file and returns it with the name diagnostics
// refer to it by.
func ReadSource(path string) (string, []byte, error) {
	if filepath.Ext(path) != SourceExt {
		return "", nil, errors.Errorf("%s: a source file with the extension %s is expected", path, SourceExt)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return "", nil, errors.Wrap(err, "reading source")
	}
	return filepath.Base(path), source, nil
}

// CheckerOptions turns the checking half of o into checker options.
func (o Options) CheckerOptions() []CheckerOption {
	if !o.Trace {
		return nil
	}
	return []CheckerOption{WithLogger(log.New(os.Stderr, "der: ", 0))}
}
