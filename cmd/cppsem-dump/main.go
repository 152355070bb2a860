// Command cppsem-dump runs the semantic core (C1-C9) over a fixture
// translation unit and dumps the resulting symbol tree and
// cross-reference index for inspection — a debug/test aid, not a
// renderer. Grounded on cmd/funxy/main.go's shape: flags, errors reported
// with fmt.Fprintf to stderr, and the dump printed to stdout, colored when
// stdout is a tty.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/mattn/go-isatty"

	"github.com/cppsem/cppsem/internal/session"
	"github.com/cppsem/cppsem/internal/sema"
	"github.com/cppsem/cppsem/internal/store"
	"github.com/cppsem/cppsem/internal/symbols"
	"github.com/cppsem/cppsem/internal/xref"
	"github.com/cppsem/cppsem/testdata"
)

func main() {
	snapshotPath := flag.String("snapshot", "", "also save the run as a sqlite snapshot at this path")
	label := flag.String("label", "latest", "snapshot label to save/replace")
	flag.Parse()

	sess := session.NewSession(session.DefaultConfig())
	pa := session.NewParsingArguments(sess)
	prog := testdata.SampleProgram()

	if err := sema.DriveProgram(pa, prog); err != nil {
		fmt.Fprintf(os.Stderr, "cppsem-dump: %v\n", err)
		os.Exit(1)
	}
	symbols.MintIDs(sess.Table.Root)

	color := isatty.IsTerminal(os.Stdout.Fd())
	dumpTree(sess.Table.Root, 0, color)
	dumpXrefs(sess.Recorder, color)

	if *snapshotPath != "" {
		s, err := store.Open(*snapshotPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cppsem-dump: opening snapshot: %v\n", err)
			os.Exit(1)
		}
		defer s.Close()
		if err := store.SaveSnapshot(s, *label, sess.Table.Root, sess.Recorder); err != nil {
			fmt.Fprintf(os.Stderr, "cppsem-dump: saving snapshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "saved snapshot %q to %s\n", *label, *snapshotPath)
	}
}

func dumpTree(sym *symbols.Symbol, depth int, color bool) {
	if depth > 0 {
		indent := ""
		for i := 0; i < depth-1; i++ {
			indent += "  "
		}
		typeStr := ""
		if sym.Type != nil {
			typeStr = sym.Type.String()
		}
		if color {
			fmt.Printf("%s\x1b[36m%s\x1b[0m %s : %s\n", indent, sym.Kind, sym.Name, typeStr)
		} else {
			fmt.Printf("%s%s %s : %s\n", indent, sym.Kind, sym.Name, typeStr)
		}
	}
	names := make([]string, 0, len(sym.Children))
	for n := range sym.Children {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		for _, child := range sym.Children[n] {
			dumpTree(child, depth+1, color)
		}
	}
}

func dumpXrefs(rec *xref.Recorder, color bool) {
	kinds := []xref.Kind{xref.Resolved, xref.OverloadedResolution, xref.NeedValueButType}
	for _, kind := range kinds {
		for _, span := range rec.AllSpans(kind) {
			syms := rec.SymbolsAt(kind, span)
			names := make([]string, len(syms))
			for i, s := range syms {
				names[i] = s.QualifiedName()
			}
			if color {
				fmt.Printf("\x1b[33m%s\x1b[0m %s:%d -> %v\n", kind, span.Origin.File, span.Origin.Line, names)
			} else {
				fmt.Printf("%s %s:%d -> %v\n", kind, span.Origin.File, span.Origin.Line, names)
			}
		}
	}
}
