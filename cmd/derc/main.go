package main

import (
	"fmt"
	"io"
	"os"

	"der"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

type options struct {
	Config    string `short:"f" long:"config" description:"read options from a .properties file"`
	NoHeaders bool   `long:"no-headers" description:"don't include C standard library headers"`
	Output    string `short:"o" long:"output" description:"write the C source to this file instead of stdout"`
	Verbose   bool   `short:"v" long:"verbose" description:"trace the type checker to stderr"`
	DumpAST   bool   `long:"dump-ast" description:"dump the parsed statements to stderr"`
	DumpScope bool   `long:"dump-scope" description:"dump the global scope to stderr after checking"`
	Args      struct {
		Source string `positional-arg-name:"source" required:"yes"`
	} `positional-args:"yes"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}
	check(run(opts))
}

func run(opts options) error {
	config := der.DefaultOptions()
	if opts.Config != "" {
		var err error
		config, err = der.LoadOptions(opts.Config)
		if err != nil {
			return err
		}
	}
	if opts.NoHeaders {
		config.Headers = false
	}
	if opts.Output != "" {
		config.Output = opts.Output
	}
	if opts.Verbose {
		config.Trace = true
	}

	filename, source, err := der.ReadSource(opts.Args.Source)
	if err != nil {
		return err
	}
	stmts, err := der.ParseFile(filename, source)
	if err != nil {
		return err
	}
	if opts.DumpAST {
		der.DumpAST(os.Stderr, stmts)
	}
	checker := der.NewChecker(config.CheckerOptions()...)
	nodes, err := checker.Run(stmts)
	if err != nil {
		return err
	}
	if opts.DumpScope {
		if err := der.DumpScope(os.Stderr, checker.Scope); err != nil {
			return err
		}
	}

	var out io.Writer = os.Stdout
	if config.Output != "" {
		f, err := os.Create(config.Output)
		if err != nil {
			return errors.Wrap(err, "creating output")
		}
		defer f.Close()
		out = f
	}
	return der.Emit(out, nodes, config)
}

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
