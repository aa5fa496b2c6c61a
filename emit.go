package der

import (
	"bufio"
	"io"
)

var cHeaders = []string{
	"#include <stdlib.h>",
	"#include <stdio.h>",
}

// Emit writes nodes as a C translation unit, one statement per line.
func Emit(w io.Writer, nodes []IR, opts Options) error {
	bw := bufio.NewWriter(w)
	if opts.Headers {
		for _, h := range cHeaders {
			bw.WriteString(h)
			bw.WriteString("\n")
		}
	}
	for _, n := range nodes {
		bw.WriteString(n.Value())
		bw.WriteString(";\n")
	}
	return bw.Flush()
}
