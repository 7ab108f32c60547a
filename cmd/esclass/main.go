// Command esclass parses a script looking for class declarations and
// reports either a summary of what it found or the syntax errors
// encountered, with source positions.
package main

import (
	"flag"
	"fmt"
	"os"

	"esclass/pkg/lexer"
	"esclass/pkg/parser"
	"esclass/pkg/source"
)

func main() {
	exprFlag := flag.String("e", "", "parse the given expression/script text and exit")
	flag.Parse()

	var src *source.SourceFile
	switch {
	case *exprFlag != "":
		src = source.NewEvalSource(*exprFlag)
	case flag.NArg() == 1:
		path := flag.Arg(0)
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "esclass: %s\n", err)
			os.Exit(74) // I/O error
		}
		src = source.FromFile(path, string(content))
	default:
		fmt.Fprintf(os.Stderr, "Usage: esclass [script] or esclass -e \"class Foo {}\"\n")
		os.Exit(64) // command line usage error
	}

	l := lexer.NewLexerWithSource(src)
	in := parser.NewInterner()
	p := parser.New(l, src, in)
	prog := p.ParseProgram()

	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			pos := e.Pos()
			fmt.Fprintf(os.Stderr, "%s:%d:%d: %s: %s\n", src.DisplayPath(), pos.Line, pos.Column, e.Kind(), e.Message())
		}
		os.Exit(1)
	}

	report(prog, in)
}

// report prints a one-line summary per top-level class declaration found.
func report(prog *parser.Program, in *parser.Interner) {
	count := 0
	for _, stmt := range prog.Statements {
		cls, ok := stmt.(*parser.Class)
		if !ok {
			continue
		}
		count++
		name := "<anonymous>"
		if cls.HasName {
			name = in.Resolve(cls.Name)
		}
		heritage := ""
		if cls.SuperClass != nil {
			heritage = " extends " + cls.SuperClass.String()
		}
		fmt.Printf("class %s%s — %d element(s), constructor=%v\n", name, heritage, len(cls.Elements), cls.Constructor != nil)
	}
	if count == 0 {
		fmt.Println("no class declarations found")
	}
}
