package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"der"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
)

const (
	historyFile = ".der_history"
	promptMain  = "> "
	promptCont  = ". "
)

func main() {
	os.Exit(repl())
}

func repl() int {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	checker := der.NewChecker()
	opts := der.DefaultOptions()
	opts.Headers = false

	for {
		code, ok := readBalanced(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		switch strings.TrimSpace(code) {
		case "":
			continue
		case ":quit":
			return 0
		case ":scope":
			if err := der.DumpScope(os.Stdout, checker.Scope); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		stmts, err := der.ParseFile("<repl>", []byte(code))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		nodes, err := checker.Run(stmts)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if err := der.Emit(os.Stdout, nodes, opts); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// readBalanced reads lines until every opened brace is closed.
func readBalanced(ln *liner.State) (string, bool) {
	var b strings.Builder
	depth := 0
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth <= 0 {
			return b.String(), true
		}
	}
}
