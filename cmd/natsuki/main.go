/*
Natsuki compiles an AST-definition source file into a C++ node hierarchy.

It reads an ASTFILE (plain astdef text, or a markdown file with one or more
fenced ```natsuki code blocks), resolves and orders its declarations, and
emits a node-class header/implementation pair and/or a debug-printer
header/implementation pair.

Usage:

	natsuki [flags] ASTFILE

The flags are:

	-v, --version
		Give the current version of natsuki and then exit.

	-o, --output PREFIX
		Write generated output to PREFIX.h/PREFIX.cpp (and/or their _debug
		variants) instead of standard output.

	--generate_h
		Emit the header half of the selected backend(s).

	--generate_cpp
		Emit the implementation half of the selected backend(s).

	--generate_nodes
		Emit the node-class backend.

	--generate_debug
		Emit the debug-printer backend. Requires the input file's
		`visitable` option to be set.

	--list-types
		Print the resolved model's four symbol tables as tables and exit,
		without generating any C++.
*/
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dekarrin/natsuki/internal/ast"
	"github.com/dekarrin/natsuki/internal/gen"
	"github.com/dekarrin/natsuki/internal/literate"
	"github.com/dekarrin/natsuki/internal/order"
	"github.com/dekarrin/natsuki/internal/parse"
	"github.com/dekarrin/natsuki/internal/resolve"
	"github.com/dekarrin/natsuki/internal/version"
	"github.com/dekarrin/rosed"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitCompileError indicates an unsuccessful program execution due to a
	// lexer, parser, resolver, or generator error.
	ExitCompileError

	// ExitUsageError indicates an unsuccessful program execution due to
	// invalid flags or arguments.
	ExitUsageError
)

var (
	returnCode    int     = ExitSuccess
	flagVersion   *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	outputPrefix  *string = pflag.StringP("output", "o", "", "Path prefix for generated output files; defaults to standard output")
	flagHeader    *bool   = pflag.Bool("generate_h", false, "Generate the header half of the selected backend(s)")
	flagImpl      *bool   = pflag.Bool("generate_cpp", false, "Generate the implementation half of the selected backend(s)")
	flagNodes     *bool   = pflag.Bool("generate_nodes", false, "Generate the node-class backend")
	flagDebug     *bool   = pflag.Bool("generate_debug", false, "Generate the debug-printer backend")
	flagListTypes *bool   = pflag.Bool("list-types", false, "Print the resolved model's symbol tables and exit")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if pflag.NArg() < 1 {
		fmt.Println("ERROR: missing ASTFILE argument")
		returnCode = ExitUsageError
		return
	}
	astFile := pflag.Arg(0)

	if !*flagListTypes && ((!*flagNodes && !*flagDebug) || (!*flagHeader && !*flagImpl)) {
		fmt.Println("ERROR: select one of --generate_nodes/--generate_debug and one of --generate_h/--generate_cpp")
		returnCode = ExitUsageError
		return
	}

	f, declOrder, err := compile(astFile)
	if err != nil {
		fmt.Println(err.Error())
		returnCode = ExitCompileError
		return
	}

	if *flagListTypes {
		fmt.Println(listTypes(f))
		return
	}

	if err := emitAll(f, declOrder); err != nil {
		fmt.Println(err.Error())
		returnCode = ExitCompileError
		return
	}
}

// compile reads, lexes, parses, resolves, and orders astFile, transparently
// extracting embedded source first if the file is a markdown literate
// document.
func compile(astFile string) (*ast.File, []ast.Declaration, error) {
	data, err := os.ReadFile(astFile)
	if err != nil {
		return nil, nil, err
	}

	if literate.IsLiterate(astFile) {
		data = literate.ExtractFromMarkdown(data)
	}

	p := parse.New(strings.NewReader(string(data)))
	f, err := p.Parse()
	if err != nil {
		return nil, nil, err
	}

	if err := resolve.Resolve(f); err != nil {
		return nil, nil, err
	}

	return f, order.Order(f), nil
}

// emitAll generates and writes every (backend, file-kind) combination the
// flags selected. --generate_h/--generate_cpp and --generate_nodes/
// --generate_debug are independent toggles, not a mutually exclusive
// choice, so a single invocation may produce up to four output files.
func emitAll(f *ast.File, declOrder []ast.Declaration) error {
	// one token per run so the .h/.cpp of a pair agree; a UUID fragment
	// stands in for a wall-clock stamp so re-running never silently reuses
	// a stale guard.
	runToken := strings.ToUpper(uuid.New().String()[:8])

	type combo struct {
		out      gen.Output
		kind     gen.FileKind
		suffix   string
		headerOf string
	}

	var combos []combo
	if *flagNodes {
		if *flagHeader {
			combos = append(combos, combo{gen.OutputNodes, gen.FileHeader, ".h", ""})
		}
		if *flagImpl {
			combos = append(combos, combo{gen.OutputNodes, gen.FileImpl, ".cpp", ".h"})
		}
	}
	if *flagDebug {
		if *flagHeader {
			combos = append(combos, combo{gen.OutputDebug, gen.FileHeader, "_debug.h", ".h"})
		}
		if *flagImpl {
			combos = append(combos, combo{gen.OutputDebug, gen.FileImpl, "_debug.cpp", "_debug.h"})
		}
	}

	for _, c := range combos {
		opts := gen.Options{GuardToken: guardToken(basename(*outputPrefix)+c.suffix, runToken)}
		if c.headerOf != "" {
			opts.HeaderPath = basename(*outputPrefix) + c.headerOf
		}

		text, err := gen.GenerateFile(f, declOrder, c.out, c.kind, opts)
		if err != nil {
			return err
		}

		if *outputPrefix == "" {
			fmt.Print(text)
			continue
		}

		outPath := *outputPrefix + c.suffix
		if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
			return err
		}
	}

	return nil
}

// guardToken derives a header's include-guard identifier from its output
// file name plus the run token, e.g. "AST_DEBUG_H_1A2B3C4D".
func guardToken(fileName, runToken string) string {
	base := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(fileName))
	return base + "_" + runToken
}

func basename(prefix string) string {
	if prefix == "" {
		return "ast"
	}
	if idx := strings.LastIndexByte(prefix, '/'); idx >= 0 {
		return prefix[idx+1:]
	}
	return prefix
}

// listTypes renders the resolved model's four symbol tables as wrapped
// columns.
func listTypes(f *ast.File) string {
	tableOpts := rosed.Options{TableHeaders: true, NoTrailingLineSeparators: true}

	nodeData := [][]string{{"Node", "Parents", "Children"}}
	for _, n := range f.Symbols.Nodes() {
		nodeData = append(nodeData, []string{n.Name, strings.Join(n.Parents, ","), strings.Join(n.Children, ",")})
	}

	enumData := [][]string{{"Enum", "Literals"}}
	for _, e := range f.Symbols.Enums() {
		enumData = append(enumData, []string{e.Name, strings.Join(e.Literals, ",")})
	}

	typeData := [][]string{{"Type", "Underlying"}}
	for _, t := range f.Symbols.Types() {
		typeData = append(typeData, []string{t.Name, t.Underlying})
	}

	aggrData := [][]string{{"Union", "Variants"}}
	for _, u := range f.Symbols.Aggrs() {
		var names []string
		for _, v := range u.Variants {
			names = append(names, v.Name)
		}
		aggrData = append(aggrData, []string{u.Name, strings.Join(names, ",")})
	}

	out := "Nodes:\n" + rosed.Edit("").InsertTableOpts(0, nodeData, 80, tableOpts).String()
	out += "\n\nEnums:\n" + rosed.Edit("").InsertTableOpts(0, enumData, 80, tableOpts).String()
	out += "\n\nTypes:\n" + rosed.Edit("").InsertTableOpts(0, typeData, 80, tableOpts).String()
	out += "\n\nUnions:\n" + rosed.Edit("").InsertTableOpts(0, aggrData, 80, tableOpts).String()
	return out
}
