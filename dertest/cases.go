// Package dertest extracts compiler test cases from Markdown documents.
//
// A case starts at a heading "Test: <name>" and holds one ```der fence with
// the source, followed by any of ```c (the emitted C, without headers),
// ```error (the expected diagnostic) and ```scope (the YAML scope dump after
// checking).
package dertest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type FenceKind string

const (
	FenceSource FenceKind = "der"
	FenceC      FenceKind = "c"
	FenceError  FenceKind = "error"
	FenceScope  FenceKind = "scope"
)

type Case struct {
	Name   string
	Line   int
	Source string
	C      string
	Error  string
	Scope  string
}

// HasAssertion reports whether the case checks anything besides parsing.
func (c *Case) HasAssertion() bool {
	return c.C != "" || c.Error != "" || c.Scope != ""
}

func ExtractCases(markdown []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var cases []Case
	var current *Case
	finish := func() error {
		if current == nil {
			return nil
		}
		if current.Source == "" {
			return fmt.Errorf("test '%s' has no %s fence", current.Name, FenceSource)
		}
		if !current.HasAssertion() {
			return fmt.Errorf("test '%s' has no assertion fences", current.Name)
		}
		cases = append(cases, *current)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, markdown)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}
			if err := finish(); err != nil {
				return ast.WalkStop, err
			}
			current = &Case{
				Name: strings.TrimPrefix(heading, "Test: "),
				Line: lineOf(n, markdown),
			}
		case *ast.FencedCodeBlock:
			lang := FenceKind(n.Language(markdown))
			line := lineOf(n, markdown)
			if lang == "" {
				return ast.WalkContinue, nil
			}
			if current == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of a test case", line, lang)
			}
			content := strings.TrimRight(fenceContent(n, markdown), "\n")
			var slot *string
			switch lang {
			case FenceSource:
				slot = &current.Source
			case FenceC:
				slot = &current.C
			case FenceError:
				slot = &current.Error
			case FenceScope:
				slot = &current.Scope
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", line, lang, current.Name)
			}
			if *slot != "" {
				return ast.WalkStop, fmt.Errorf("line %d: multiple %s fences in test '%s'", line, lang, current.Name)
			}
			*slot = content
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown: %w", err)
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return cases, nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 0
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:start], []byte("\n")) + 1
}
